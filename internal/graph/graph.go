// Package graph models the dependency graph of named snippet versions.
//
// Versions are nodes with zero or more named parents; the empty-string name
// is the implicit root. The graph is a read-only view decoded once from a
// description file; derived views (ancestor closures, single parents) are
// memoized and never invalidated.
package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Mutation is a declared text-substitution rule. Mutations are accepted and
// carried as inert metadata; core rendering does not apply them.
type Mutation struct {
	Type        string `json:"type"`
	Match       string `json:"match"`
	Replacement string `json:"replacement"`
}

// Node is one declared version.
type Node struct {
	Parents   []string   `json:"parents"`
	Mutations []Mutation `json:"mutations,omitempty"`
}

// Graph is the set of declared versions.
type Graph struct {
	nodes map[string]Node

	pathsOnce sync.Once
	paths     map[string]map[string]bool
}

// description is the wire format of a .ver.json file.
type description struct {
	Versions map[string]Node `json:"versions"`
}

// Decode parses a JSON graph description of the form
// {"versions": {name: {"parents": [...], "mutations": [...]}}}.
func Decode(data []byte) (*Graph, error) {
	var desc description
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("decoding version description: %w", err)
	}
	if desc.Versions == nil {
		return nil, fmt.Errorf("decoding version description: missing \"versions\" key")
	}
	return New(desc.Versions), nil
}

// New builds a graph from declared nodes.
func New(nodes map[string]Node) *Graph {
	return &Graph{nodes: nodes}
}

// Names returns all declared version names, sorted.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Node returns the declared node for a name.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Closure computes the ancestor closure of the given names: the names
// themselves plus, transitively, every declared parent. Names that are not
// declared nodes are kept as opaque leaves. A name is never re-queued once
// resolved, so cyclic parent declarations terminate.
func (g *Graph) Closure(names ...string) map[string]bool {
	pending := make([]string, len(names))
	copy(pending, names)

	resolved := make(map[string]bool)
	for len(pending) > 0 {
		name := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if resolved[name] {
			continue
		}
		resolved[name] = true

		node, ok := g.nodes[name]
		if !ok {
			continue
		}
		for _, parent := range node.Parents {
			if !resolved[parent] {
				pending = append(pending, parent)
			}
		}
	}
	return resolved
}

// Paths returns the memoized closure of every declared version.
func (g *Graph) Paths() map[string]map[string]bool {
	g.pathsOnce.Do(func() {
		g.paths = make(map[string]map[string]bool, len(g.nodes))
		for name := range g.nodes {
			g.paths[name] = g.Closure(name)
		}
	})
	return g.paths
}

// SingleParent returns the sole declared parent of a version. Versions
// declaring zero or two-or-more parents have no single parent; such
// versions are excluded from diff pairing.
func (g *Graph) SingleParent(name string) (string, bool) {
	node, ok := g.nodes[name]
	if !ok || len(node.Parents) != 1 {
		return "", false
	}
	return node.Parents[0], true
}

// Parents returns the single parent of every declared version, nil for
// versions without one. The map is shaped for JSON responses.
func (g *Graph) Parents() map[string]*string {
	parents := make(map[string]*string, len(g.nodes))
	for name := range g.nodes {
		if parent, ok := g.SingleParent(name); ok {
			p := parent
			parents[name] = &p
		} else {
			parents[name] = nil
		}
	}
	return parents
}

// Validate reports authoring mistakes the closure algorithm tolerates:
// parents that are not declared nodes, and parent cycles. Tolerated by
// default; surfaced only when strict validation is requested.
func (g *Graph) Validate() error {
	for name, node := range g.nodes {
		for _, parent := range node.Parents {
			if _, ok := g.nodes[parent]; !ok {
				return fmt.Errorf("version %q declares undeclared parent %q", name, parent)
			}
		}
	}

	// Cycle check: iterative DFS with colors.
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))
	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case grey:
			return fmt.Errorf("version %q participates in a parent cycle", name)
		case black:
			return nil
		}
		color[name] = grey
		for _, parent := range g.nodes[name].Parents {
			if _, ok := g.nodes[parent]; !ok {
				continue
			}
			if err := visit(parent); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}
	for _, name := range g.Names() {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
