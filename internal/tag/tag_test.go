package tag

import (
	"reflect"
	"testing"
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func mustMatch(t *testing.T, e *Evaluator, active map[string]bool) bool {
	t.Helper()
	ok, err := e.Matches(active)
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	return ok
}

func TestSingleName(t *testing.T) {
	e := Compile("collision_single")

	if !mustMatch(t, e, set("base", "collision_single", "parallax")) {
		t.Error("expected match when name is active")
	}
	if mustMatch(t, e, set("base")) {
		t.Error("expected no match when name is inactive")
	}
}

func TestAnd(t *testing.T) {
	e := Compile("A B AND_")

	if !mustMatch(t, e, set("A", "B")) {
		t.Error("A B AND_ should match {A,B}")
	}
	if mustMatch(t, e, set("A")) {
		t.Error("A B AND_ should not match {A}")
	}
	if mustMatch(t, e, set("B")) {
		t.Error("A B AND_ should not match {B}")
	}
}

func TestOr(t *testing.T) {
	e := Compile("block_move mines OR_")

	if mustMatch(t, e, set("base")) {
		t.Error("OR_ should not match when neither name is active")
	}
	if !mustMatch(t, e, set("base", "block_move")) {
		t.Error("OR_ should match on first name")
	}
	if !mustMatch(t, e, set("base", "mines")) {
		t.Error("OR_ should match on second name")
	}
}

func TestNotAnd(t *testing.T) {
	e := Compile("collision_single parallax NOT_ AND_")

	if !mustMatch(t, e, set("base", "collision_single")) {
		t.Error("should match when parallax is inactive")
	}
	if mustMatch(t, e, set("base", "collision_single", "parallax")) {
		t.Error("should not match when parallax is active")
	}
}

func TestImplicitAnd(t *testing.T) {
	bare := Compile("A B")
	explicit := Compile("A B AND_")

	for _, active := range []map[string]bool{set("A", "B"), set("A"), set("B"), set("C")} {
		want := mustMatch(t, explicit, active)
		got := mustMatch(t, bare, active)
		if got != want {
			t.Errorf("bare pair diverged from explicit AND_ for active=%v: got %v want %v", active, got, want)
		}
	}
}

func TestImplicitAndReservedException(t *testing.T) {
	e := Compile("list_comprehension dict_comprehension")
	if got := len(e.Tokens()); got != 2 {
		t.Errorf("reserved pair should not gain an implicit AND_, tokens=%q", e.Tokens())
	}
}

func TestCommasAsWhitespace(t *testing.T) {
	e := Compile("list_comprehension,dict_comprehension")
	want := []string{"dict_comprehension", "list_comprehension"}
	if got := e.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %q, want %q", got, want)
	}
}

func TestHideDropped(t *testing.T) {
	e := Compile("HIDE my_version")
	if !reflect.DeepEqual(e.Tokens(), []string{"my_version"}) {
		t.Errorf("hide token should be dropped, tokens=%q", e.Tokens())
	}
}

func TestHideOnlyIsMalformed(t *testing.T) {
	// A tag of nothing but hide tokens must not coerce to the untagged
	// form, which would render the line into every rooted version.
	for _, expr := range []string{"hide", "HIDE", "hide Hide"} {
		e := Compile(expr)
		if len(e.Tokens()) != 0 {
			t.Errorf("Compile(%q) tokens = %q, want none", expr, e.Tokens())
		}
		if ok, err := e.Matches(set("", "test1")); err == nil {
			t.Errorf("Compile(%q).Matches = %v, want error", expr, ok)
		}
	}
}

func TestInfixNotRewrite(t *testing.T) {
	e := Compile("a not b")
	want := []string{"a", "b", "NOT_", "AND_"}
	if !reflect.DeepEqual(e.Tokens(), want) {
		t.Fatalf("tokens = %q, want %q", e.Tokens(), want)
	}

	if !mustMatch(t, e, set("a")) {
		t.Error("a not b should match {a}")
	}
	if mustMatch(t, e, set("a", "b")) {
		t.Error("a not b should not match {a,b}")
	}
}

func TestInfixNotFourTokenRewrite(t *testing.T) {
	e := Compile("a not b c")
	want := []string{"a", "b", "NOT_", "c", "NOT_", "OR_", "AND_"}
	if !reflect.DeepEqual(e.Tokens(), want) {
		t.Fatalf("tokens = %q, want %q", e.Tokens(), want)
	}
}

func TestEmptyExpression(t *testing.T) {
	e := Compile("")

	if e.Tagged() {
		t.Error("empty expression should not be tagged")
	}
	if !mustMatch(t, e, set("", "test1")) {
		t.Error("untagged line should match a closure containing the root")
	}
	if mustMatch(t, e, set("test4")) {
		t.Error("untagged line should not match a closure without the root")
	}
}

func TestEmptyActiveSet(t *testing.T) {
	if mustMatch(t, Compile("anything"), nil) {
		t.Error("empty active set should never match")
	}
}

func TestMalformedUnderflow(t *testing.T) {
	if _, err := Compile("A NOT_ NOT_ AND_").Matches(set("A")); err == nil {
		t.Fatal("expected operand underflow error")
	}
}

func TestMalformedLeftover(t *testing.T) {
	if _, err := Compile("A B C").Matches(set("A")); err == nil {
		t.Fatal("expected leftover-values error")
	}
}

func TestNamesExcludeOperators(t *testing.T) {
	e := Compile("test1 test2 AND_ test3 NOT_ OR_")
	want := []string{"test1", "test2", "test3"}
	if got := e.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %q, want %q", got, want)
	}
}
