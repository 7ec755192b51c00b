package parse

import (
	"reflect"
	"testing"

	"github.com/ComputingTeachers/language-reference/internal/language"
)

func lang(t *testing.T, ext string) *language.Language {
	t.Helper()
	l := language.ByExtension(ext)
	if l == nil {
		t.Fatalf("language not registered: %q", ext)
	}
	return l
}

func TestParseLine_Python(t *testing.T) {
	line := ParseLine(lang(t, "py"), "    print('Hello World')  #  VER:  test1 test2 AND_\n\r")

	if line.Text != "    print('Hello World')  #  VER:  test1 test2 AND_" {
		t.Errorf("Text = %q", line.Text)
	}
	if line.TextWithoutTag != "    print('Hello World')" {
		t.Errorf("TextWithoutTag = %q", line.TextWithoutTag)
	}
	want := []string{"test1", "test2", "AND_"}
	if !reflect.DeepEqual(line.Tag.Tokens(), want) {
		t.Errorf("tokens = %q, want %q", line.Tag.Tokens(), want)
	}
}

func TestParseLine_TrailingComment(t *testing.T) {
	// A repeated line-comment opener terminates the tag expression.
	cases := []struct {
		ext, in, expr string
	}{
		{"py", "print('helloworld') # VER: 1|2|3 # More comments", "1|2|3"},
		{"py", "print('helloworld') # VER: 1|2|3#More comments", "1|2|3"},
		{"py", "print('helloworld') #VER:1|2|3", "1|2|3"},
		{"js", "console.log('helloworld') // VER: 1|2|3 // More comments", "1|2|3"},
		{"js", "console.log('helloworld') // VER: 1|2|3//More comments", "1|2|3"},
		{"js", "console.log('helloworld') //VER:1|2|3", "1|2|3"},
		{"html", `<a href=""> <!-- VER: 1|2|3 --><!-- more comments -->`, "1|2|3"},
		{"html", `<a href=""><!--VER:1|2|3-->`, "1|2|3"},
	}
	for _, c := range cases {
		line := ParseLine(lang(t, c.ext), c.in)
		if !line.Tag.Tagged() {
			t.Errorf("%q: expected a tagged line", c.in)
			continue
		}
		if got := line.Tag.Names(); len(got) != 1 || got[0] != c.expr {
			t.Errorf("%q: names = %q, want [%q]", c.in, got, c.expr)
		}
	}
}

func TestParseLine_UncommentsTaggedLine(t *testing.T) {
	// A line whose only purpose outside the tag is a commented-out statement
	// degrades to the bare statement.
	line := ParseLine(lang(t, "js"), `//console.log("Hello Test")    // VER: test4`)
	if line.TextWithoutTag != `console.log("Hello Test")` {
		t.Errorf("TextWithoutTag = %q", line.TextWithoutTag)
	}

	line = ParseLine(lang(t, "py"), "    #x=x+1  # VER: foo")
	if line.TextWithoutTag != "    x=x+1" {
		t.Errorf("TextWithoutTag = %q", line.TextWithoutTag)
	}
}

func TestParseLine_KeepsRealLeadingComment(t *testing.T) {
	// Only a single leading opener is stripped; a doubled opener keeps one.
	line := ParseLine(lang(t, "py"), "    ## Real comment # Again # VER: x")
	if line.TextWithoutTag != "    # Real comment # Again" {
		t.Errorf("TextWithoutTag = %q", line.TextWithoutTag)
	}
}

func TestParseLine_Untagged(t *testing.T) {
	line := ParseLine(lang(t, "py"), "print('Hello Test')")

	if line.Tag.Tagged() {
		t.Error("expected untagged line")
	}
	if line.TextWithoutTag != line.Text {
		t.Errorf("untagged line must round-trip: %q != %q", line.TextWithoutTag, line.Text)
	}
}

func TestParseLine_FirstStyleWins(t *testing.T) {
	// HTML tries <!-- --> before the C styles.
	line := ParseLine(lang(t, "html"), `<b>hi</b> <!-- VER: markup -->`)
	if got := line.Tag.Names(); len(got) != 1 || got[0] != "markup" {
		t.Errorf("names = %q", got)
	}
}

func TestParseSource_Order(t *testing.T) {
	src := "public class Test {  // VER: test1\n" +
		"    public Test() {  // VER: test2\n" +
		"    }  // VER: test2\n" +
		"}  // VER: test1\n"

	lines := ParseSource(lang(t, "java"), src)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[1].TextWithoutTag != "    public Test() {" {
		t.Errorf("line 2 = %q", lines[1].TextWithoutTag)
	}
	if lines[3].TextWithoutTag != "}" {
		t.Errorf("line 4 = %q", lines[3].TextWithoutTag)
	}
}

func TestParseSource_NoTrailingPhantomLine(t *testing.T) {
	lines := ParseSource(lang(t, "py"), "x = 1\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}
