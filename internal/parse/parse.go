// Package parse turns annotated source text into positionally significant
// lines, separating each line from its VER tag annotation.
//
// An annotation is a comment of the form `<start> VER: <expr>` terminated by
// end of line, the style's closing delimiter, or a repeated line-comment
// opener (which allows a trailing human comment after the tag). Matching is
// a single regex attempt per comment style, first style wins; no full
// comment grammar is parsed.
package parse

import (
	"bufio"
	"regexp"
	"strings"
	"sync"

	"github.com/ComputingTeachers/language-reference/internal/language"
	"github.com/ComputingTeachers/language-reference/internal/tag"
)

// Line is one physical source line. Text has newline characters stripped;
// TextWithoutTag additionally has the tag annotation removed (and, when the
// annotation consumed the line's only leading comment marker, that marker
// removed too). Tag is the compiled evaluator; untagged lines carry the
// empty expression and both text variants are identical.
type Line struct {
	Text           string
	TextWithoutTag string
	Tag            *tag.Evaluator
}

var (
	regexMu    sync.Mutex
	verRegexes = make(map[language.Comment]*regexp.Regexp)
)

// verRegex returns (building once) the annotation regex for a comment style.
func verRegex(c language.Comment) *regexp.Regexp {
	regexMu.Lock()
	defer regexMu.Unlock()
	if re, ok := verRegexes[c]; ok {
		return re
	}
	terminator := c.End
	if terminator == "" {
		terminator = c.Start
	}
	re := regexp.MustCompile(
		`(?i)(` + regexp.QuoteMeta(c.Start) + `\s*VER:\s*(.+?)\s*)($|` + regexp.QuoteMeta(terminator) + `)`)
	verRegexes[c] = re
	return re
}

var (
	openerMu      sync.Mutex
	openerRegexes = make(map[language.Comment]*regexp.Regexp)
)

// openerRegex matches a lone leading comment opener.
func openerRegex(c language.Comment) *regexp.Regexp {
	openerMu.Lock()
	defer openerMu.Unlock()
	if re, ok := openerRegexes[c]; ok {
		return re
	}
	re := regexp.MustCompile(`^(\s*)` + regexp.QuoteMeta(c.Start) + `\s*(.*)`)
	openerRegexes[c] = re
	return re
}

var newlineStripper = strings.NewReplacer("\n", "", "\r", "")

// ParseLine parses one raw physical line using the language's comment styles
// in declaration order. Parsing never fails: a line with no matching
// annotation is simply untagged.
func ParseLine(lang *language.Language, raw string) Line {
	text := newlineStripper.Replace(raw)

	for _, comment := range lang.Comments {
		m := verRegex(comment).FindStringSubmatch(text)
		if m == nil {
			continue
		}
		// m[1] is the full annotation (opener, VER:, expression, trailing
		// whitespace); m[2] is the expression.
		without := strings.TrimRight(strings.ReplaceAll(text, m[1], ""), " \t")
		without = openerRegex(comment).ReplaceAllString(without, "${1}${2}")
		return Line{
			Text:           text,
			TextWithoutTag: without,
			Tag:            tag.Compile(m[2]),
		}
	}

	return Line{Text: text, TextWithoutTag: text, Tag: tag.Compile("")}
}

// ParseSource parses a whole source text into lines, preserving order.
func ParseSource(lang *language.Language, source string) []Line {
	var lines []Line
	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, ParseLine(lang, scanner.Text()))
	}
	return lines
}
