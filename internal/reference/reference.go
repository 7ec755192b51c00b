// Package reference renders the cross-language glossary: same-language
// files are amalgamated and their tagged lines bucketed by literal tag
// name. No graph resolution or boolean evaluation happens in this mode —
// a line tagged with a compound expression appears under every tag name the
// expression mentions.
package reference

import (
	"sort"
	"strings"
	"sync"

	"github.com/ComputingTeachers/language-reference/internal/filesource"
	"github.com/ComputingTeachers/language-reference/internal/language"
	"github.com/ComputingTeachers/language-reference/internal/parse"
)

// tagOrder is the curated priority sequence for the exposed tag list:
// common tutorial topics first, in canonical order. Tags not listed here
// sort alphabetically after it.
var tagOrder = []string{
	"title",
	"download",
	"help",
	"run",
	"hello_world",
	"read_line_from_console",
	"comment",
	"define_variables",
	"define_constants",
	"arithmetic",
	"if_statement",
	"if_statement_more",
	"while_loop",
	"until_loop",
	"for_loop",
	"for_each_loop",
	"file_write",
	"file_read",
	"string_concatenation",
	"split_strings",
	"convert_string_to_integer_and_back",
	"convert_double_to_string_and_back",
	"function",
	"function_with_return_value",
	"function_with_params_by_reference",
	"function_with_params_by_value",
	"function_with_param_function",
	"define_fixed_array",
	"define_list",
	"define_2d_arrays_with_nested_arrays",
	"define_2d_arrays_with_1d_array_with_lookup_function",
	"define_2d_arrays_with_dictionary",
	"define_map",
	"define_set",
	"error_handling",
	"join_strings",
	"random_number",
	"class",
	"read_csv_into_array_of_classs",
	"sleep",
	"list_comprehension",
	"dict_comprehension",
}

// Reference is the derived glossary view over an immutable file snapshot.
type Reference struct {
	amalgams map[string]string // extension -> concatenated file contents

	once      sync.Once
	languages map[string]map[string]string // extension -> tag -> snippet
}

// New amalgamates the given files by extension, preserving discovery order
// within each language, joined by line breaks. This lets a language spread
// its tags across several files and still expose them as one corpus.
func New(files []filesource.File) *Reference {
	perExt := make(map[string][]string)
	for _, f := range files {
		if language.ByExtension(f.Ext) == nil {
			continue
		}
		perExt[f.Ext] = append(perExt[f.Ext], string(f.Content))
	}

	amalgams := make(map[string]string, len(perExt))
	for ext, contents := range perExt {
		amalgams[ext] = strings.Join(contents, "\n")
	}
	return &Reference{amalgams: amalgams}
}

// Languages returns, per registered extension, the mapping from tag name to
// the joined detagged text of every line mentioning that tag, in original
// order. Every registered extension gets an entry, empty when no files of
// that language were discovered. The view is computed once and reused.
func (r *Reference) Languages() map[string]map[string]string {
	r.once.Do(func() {
		r.languages = make(map[string]map[string]string)
		for _, ext := range language.Extensions() {
			r.languages[ext] = buildBuckets(language.ByExtension(ext), r.amalgams[ext])
		}
	})
	return r.languages
}

// buildBuckets parses an amalgamated source and buckets detagged lines by
// literal tag token. Untagged lines belong to no bucket.
func buildBuckets(lang *language.Language, source string) map[string]string {
	buckets := make(map[string][]string)
	for _, line := range parse.ParseSource(lang, source) {
		for _, name := range line.Tag.Names() {
			if name == "" {
				continue
			}
			buckets[name] = append(buckets[name], line.TextWithoutTag)
		}
	}

	joined := make(map[string]string, len(buckets))
	for name, lines := range buckets {
		joined[name] = strings.Join(lines, "\n")
	}
	return joined
}

// AllTags returns every tag name seen across all languages: the curated
// order first, then the remainder alphabetically.
func (r *Reference) AllTags() []string {
	seen := make(map[string]bool)
	for _, buckets := range r.Languages() {
		for name := range buckets {
			seen[name] = true
		}
	}

	var tags []string
	for _, name := range tagOrder {
		if seen[name] {
			tags = append(tags, name)
			delete(seen, name)
		}
	}
	rest := make([]string, 0, len(seen))
	for name := range seen {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(tags, rest...)
}
