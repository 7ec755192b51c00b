// Package tag compiles and evaluates boolean tag expressions attached to
// source lines. Expressions are postfix (reverse-Polish): name tokens push
// membership in the active version set, operator tokens combine them.
package tag

import (
	"fmt"
	"sort"
	"strings"
)

// The closed operator set. Matching is case-sensitive.
const (
	opAnd = "AND_"
	opOr  = "OR_"
	opNot = "NOT_"
)

type opcode int

const (
	pushName opcode = iota
	applyAnd
	applyOr
	applyNot
)

type instr struct {
	op   opcode
	name string // set for pushName only
}

// Evaluator is a compiled tag expression. The zero expression (untagged
// line) compiles to a single push of the empty name, so it matches any
// active set that contains the implicit root "".
type Evaluator struct {
	tokens []string
	code   []instr
}

// Compile tokenizes, normalizes and compiles an expression string.
// An empty expression is valid and denotes an untagged line.
func Compile(expr string) *Evaluator {
	tokens := normalize(split(expr))

	code := make([]instr, len(tokens))
	for i, t := range tokens {
		switch t {
		case opAnd:
			code[i] = instr{op: applyAnd}
		case opOr:
			code[i] = instr{op: applyOr}
		case opNot:
			code[i] = instr{op: applyNot}
		default:
			code[i] = instr{op: pushName, name: t}
		}
	}

	return &Evaluator{tokens: tokens, code: code}
}

// split breaks an expression into raw tokens. Commas count as whitespace.
func split(expr string) []string {
	tokens := strings.Fields(strings.ReplaceAll(expr, ",", " "))
	if len(tokens) == 0 {
		return []string{""}
	}
	return tokens
}

// normalize applies the legacy tagging-convention rewrites carried over for
// compatibility with the old make_ver annotations. Isolated here so it can
// be deprecated independently of the evaluator proper.
func normalize(tokens []string) []string {
	// "hide" tokens are dropped entirely.
	kept := tokens[:0:0]
	for _, t := range tokens {
		if strings.EqualFold(t, "hide") {
			continue
		}
		kept = append(kept, t)
	}
	// A hide-only tag leaves no tokens; that is a malformed expression and
	// must fail at evaluation, not coerce to the untagged form.
	tokens = kept

	// "a not b" -> a AND NOT b.
	if len(tokens) == 3 && strings.EqualFold(tokens[1], "not") {
		return []string{tokens[0], tokens[2], opNot, opAnd}
	}

	// Four-token infix "not" form. The boolean logic here is dubious but is
	// preserved exactly; see DESIGN.md.
	if len(tokens) == 4 && strings.EqualFold(tokens[1], "not") {
		return []string{tokens[0], tokens[2], opNot, tokens[3], opNot, opOr, opAnd}
	}

	// A bare pair of names gets an implicit AND_. "list_comprehension" is a
	// reserved tag name that historically opted out of this rule.
	if len(tokens) == 2 && !contains(tokens, "list_comprehension") &&
		!contains(tokens, opAnd) && !contains(tokens, opOr) && !contains(tokens, opNot) {
		return append(tokens, opAnd)
	}

	return tokens
}

func contains(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

// Tokens returns the normalized token sequence.
func (e *Evaluator) Tokens() []string {
	return e.tokens
}

// Tagged reports whether the source line carried an explicit tag expression.
func (e *Evaluator) Tagged() bool {
	return len(e.tokens) != 1 || e.tokens[0] != ""
}

// Names returns every tag name the expression references, sorted. Operator
// tokens are excluded; the empty name (untagged line) is included as "".
func (e *Evaluator) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, in := range e.code {
		if in.op == pushName && !seen[in.name] {
			seen[in.name] = true
			names = append(names, in.name)
		}
	}
	sort.Strings(names)
	return names
}

// Matches evaluates the expression against a set of active version names.
// An empty active set never matches. A malformed expression (operand
// underflow, or more than one value left after evaluation) is an error and
// reports the token sequence and active set for diagnosis.
func (e *Evaluator) Matches(active map[string]bool) (bool, error) {
	if len(active) == 0 {
		return false, nil
	}

	var stack []bool
	pop := func() (bool, bool) {
		if len(stack) == 0 {
			return false, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}

	for _, in := range e.code {
		switch in.op {
		case pushName:
			stack = append(stack, active[in.name])
		case applyNot:
			v, ok := pop()
			if !ok {
				return false, e.malformed(active)
			}
			stack = append(stack, !v)
		case applyAnd, applyOr:
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				return false, e.malformed(active)
			}
			if in.op == applyAnd {
				stack = append(stack, a && b)
			} else {
				stack = append(stack, a || b)
			}
		}
	}

	if len(stack) != 1 {
		return false, fmt.Errorf("tag expression left %d values after evaluation: tokens=%q active=%v",
			len(stack), e.tokens, setNames(active))
	}
	return stack[0], nil
}

func (e *Evaluator) malformed(active map[string]bool) error {
	return fmt.Errorf("tag expression ran out of operands: tokens=%q active=%v",
		e.tokens, setNames(active))
}

func setNames(active map[string]bool) []string {
	names := make([]string, 0, len(active))
	for name := range active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
