// Package ignore provides gitignore-style pattern matching used to exclude
// directories and files from snippet discovery.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a single compiled exclusion pattern.
type Pattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher holds exclusion patterns and answers whether a path is excluded.
type Matcher struct {
	patterns []Pattern
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Defaults returns a matcher preloaded with the directories snippet
// discovery always skips: private/hidden trees and build output.
func Defaults() *Matcher {
	m := NewMatcher()
	m.AddPatterns([]string{
		"_*/",
		".*/",
		"cgi*/",
		"bin/",
		"obj/",
		"node_modules/",
	})
	return m
}

// AddPattern adds one gitignore-style pattern. Empty lines and comments are
// skipped.
func (m *Matcher) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	p := Pattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}

	// Unanchored patterns without a slash match at any depth.
	if !p.anchored && !strings.Contains(line, "/") {
		line = "**/" + line
	}

	p.pattern = line
	m.patterns = append(m.patterns, p)
}

// AddPatterns adds multiple patterns.
func (m *Matcher) AddPatterns(lines []string) {
	for _, line := range lines {
		m.AddPattern(line)
	}
}

// Match reports whether the path (relative, slash-separated) is excluded.
// Later patterns win, so negations can re-include earlier matches.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	excluded := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			// A file is excluded when any parent directory matches.
			if m.matchParent(p.pattern, path) {
				excluded = !p.negated
			}
			continue
		}
		if m.matchOne(p.pattern, path) {
			excluded = !p.negated
		}
	}
	return excluded
}

func (m *Matcher) matchParent(pattern, path string) bool {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if m.matchOne(pattern, strings.Join(parts[:i], "/")) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchOne(pattern, path string) bool {
	if ok, _ := doublestar.Match(pattern, path); ok {
		return true
	}
	// A directory pattern also covers everything beneath it.
	if !strings.HasSuffix(pattern, "/**") {
		if ok, _ := doublestar.Match(pattern+"/**", path); ok {
			return true
		}
	}
	return false
}
