// Package language provides the static registry of supported languages and
// their comment delimiter styles.
package language

// Comment is a single comment delimiter style. End is empty for
// line comments (//, #, --).
type Comment struct {
	Start string
	End   string
}

// Language describes one supported language: its display name, the file
// extensions it is keyed by, and its comment styles in match-priority order.
type Language struct {
	Name     string
	Exts     []string
	Comments []Comment
}

// Comment styles shared between languages.
var (
	styleC      = []Comment{{Start: "/*", End: "*/"}, {Start: "//"}}
	stylePython = []Comment{{Start: "#"}}
)

// languages is the full table. Order here is the declaration order; the
// extension index is built from it at init.
var languages = []Language{
	{Name: "python", Exts: []string{"py"}, Comments: stylePython},
	{Name: "javascript", Exts: []string{"js"}, Comments: styleC},
	{Name: "html5/javascript", Exts: []string{"html"}, Comments: append([]Comment{{Start: "<!--", End: "-->"}}, styleC...)},
	{Name: "java", Exts: []string{"java"}, Comments: styleC},
	{Name: "visual basic", Exts: []string{"vb"}, Comments: []Comment{{Start: "'"}}},
	{Name: "php", Exts: []string{"php"}, Comments: stylePython},
	{Name: "c", Exts: []string{"c"}, Comments: styleC},
	{Name: "c++", Exts: []string{"cpp"}, Comments: styleC},
	{Name: "ruby", Exts: []string{"rb"}, Comments: stylePython},
	{Name: "csharp", Exts: []string{"cs"}, Comments: styleC},
	{Name: "lua", Exts: []string{"lua"}, Comments: []Comment{{Start: "--"}}},
	{Name: "golang", Exts: []string{"go"}, Comments: styleC},
	{Name: "rust", Exts: []string{"rs"}, Comments: styleC},
}

var byExt = func() map[string]*Language {
	m := make(map[string]*Language, len(languages))
	for i := range languages {
		for _, ext := range languages[i].Exts {
			m[ext] = &languages[i]
		}
	}
	return m
}()

// ByExtension looks up a language by file extension (without leading dot).
// Returns nil if the extension is not registered.
func ByExtension(ext string) *Language {
	return byExt[ext]
}

// Extensions returns all registered file extensions in declaration order.
func Extensions() []string {
	exts := make([]string, 0, len(byExt))
	for _, l := range languages {
		exts = append(exts, l.Exts...)
	}
	return exts
}
