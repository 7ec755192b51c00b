// Package project renders one tutorial project: per version of its graph,
// the full reconstructed source of each title and the unified diff against
// the version's single parent.
//
// A Project is an immutable snapshot; parsed lines and rendered text are
// lazily memoized derived views and are never invalidated. Changed inputs
// require a new Project.
package project

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ComputingTeachers/language-reference/internal/filesource"
	"github.com/ComputingTeachers/language-reference/internal/graph"
	"github.com/ComputingTeachers/language-reference/internal/language"
	"github.com/ComputingTeachers/language-reference/internal/parse"
)

// Construction-time failures, reported per project title. A missing
// description and a recognized-but-unsupported format are distinct.
var (
	ErrNoVersionInfo     = errors.New("no version information")
	ErrFormatUnsupported = errors.New("version file format not implemented")
)

// diffContext is the number of unchanged lines shown around each hunk.
const diffContext = 2

// Extensions that never form a title: graph descriptions and related
// metadata formats.
var descriptionExts = map[string]bool{
	"ver":      true,
	"json":     true,
	"yaml":     true,
	"yml":      true,
	"ver.json": true,
}

// Title identifies one source file of the project: its filename stem plus
// its language extension.
type Title struct {
	Stem string
	Ext  string
}

func (t Title) String() string {
	return t.Ext + ": " + t.Stem
}

// Project is a named group of same-title files across languages sharing one
// version-graph description.
type Project struct {
	name    string
	graph   *graph.Graph
	sources map[Title]string

	mu    sync.Mutex
	lines map[Title][]parse.Line
	full  map[Title]map[string]string
}

// New builds a project from its discovered files. It fails when the graph
// description is missing or in a recognized-but-unsupported format; either
// failure is scoped to this project only.
func New(name string, files []filesource.File) (*Project, error) {
	sources := make(map[Title]string)
	var graphData []byte
	sawYAML := false
	for _, f := range files {
		switch {
		case f.Ext == "yaml" || f.Ext == "yml":
			sawYAML = true
		case f.Ext == filesource.GraphExt:
			if graphData == nil {
				graphData = f.Content
			}
		case !descriptionExts[f.Ext]:
			sources[Title{Stem: f.Stem, Ext: f.Ext}] = string(f.Content)
		}
	}

	if sawYAML {
		return nil, fmt.Errorf("project %s: %w: yaml", name, ErrFormatUnsupported)
	}
	if graphData == nil {
		return nil, fmt.Errorf("project %s: %w", name, ErrNoVersionInfo)
	}

	g, err := graph.Decode(graphData)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", name, err)
	}

	return &Project{
		name:    name,
		graph:   g,
		sources: sources,
		lines:   make(map[Title][]parse.Line),
		full:    make(map[Title]map[string]string),
	}, nil
}

// Name returns the project name.
func (p *Project) Name() string {
	return p.name
}

// Graph returns the project's version graph.
func (p *Project) Graph() *graph.Graph {
	return p.graph
}

// Titles returns the project's source titles, sorted.
func (p *Project) Titles() []Title {
	titles := make([]Title, 0, len(p.sources))
	for t := range p.sources {
		titles = append(titles, t)
	}
	sort.Slice(titles, func(i, j int) bool { return titles[i].String() < titles[j].String() })
	return titles
}

// TitleLanguages maps each title's display name to its language extension.
func (p *Project) TitleLanguages() map[string]string {
	m := make(map[string]string, len(p.sources))
	for t := range p.sources {
		m[t.String()] = t.Ext
	}
	return m
}

// parsedLines parses a title's source once and reuses it for every version.
func (p *Project) parsedLines(title Title) ([]parse.Line, error) {
	source, ok := p.sources[title]
	if !ok {
		return nil, fmt.Errorf("project %s: unknown title %q", p.name, title)
	}
	lang := language.ByExtension(title.Ext)
	if lang == nil {
		return nil, fmt.Errorf("project %s: unknown language extension %q", p.name, title.Ext)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if lines, ok := p.lines[title]; ok {
		return lines, nil
	}
	lines := parse.ParseSource(lang, source)
	p.lines[title] = lines
	return lines, nil
}

// Full returns, per declared version, the title's full reconstructed text:
// the detagged lines whose tag expression matches the version's ancestor
// closure, in original file order, joined by line breaks.
func (p *Project) Full(title Title) (map[string]string, error) {
	p.mu.Lock()
	if cached, ok := p.full[title]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	lines, err := p.parsedLines(title)
	if err != nil {
		return nil, err
	}

	full := make(map[string]string, len(p.graph.Names()))
	for version, closure := range p.graph.Paths() {
		var kept []string
		for _, line := range lines {
			ok, err := line.Tag.Matches(closure)
			if err != nil {
				return nil, fmt.Errorf("project %s, title %s, version %q: %w", p.name, title, version, err)
			}
			if ok {
				kept = append(kept, line.TextWithoutTag)
			}
		}
		full[version] = strings.Join(kept, "\n")
	}

	p.mu.Lock()
	p.full[title] = full
	p.mu.Unlock()
	return full, nil
}

// Diff returns, per version with a single declared parent, the unified diff
// of the title's text from the parent version to that version. Headers use
// the bare version names; versions without a single parent are omitted.
func (p *Project) Diff(title Title) (map[string]string, error) {
	full, err := p.Full(title)
	if err != nil {
		return nil, err
	}

	diffs := make(map[string]string)
	for version, parent := range p.graph.Parents() {
		if parent == nil {
			continue
		}
		parentText, ok := full[*parent]
		if !ok {
			// Dangling single parent; nothing to diff against.
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(parentText),
			B:        difflib.SplitLines(full[version]),
			FromFile: *parent,
			ToFile:   version,
			Context:  diffContext,
		})
		if err != nil {
			return nil, fmt.Errorf("project %s, title %s: diffing %q against %q: %w", p.name, title, version, *parent, err)
		}
		diffs[version] = strings.TrimSuffix(text, "\n")
	}
	return diffs, nil
}

// FullPerVersion renders Full for every title, keyed by title display name.
func (p *Project) FullPerVersion() (map[string]map[string]string, error) {
	result := make(map[string]map[string]string, len(p.sources))
	for _, title := range p.Titles() {
		full, err := p.Full(title)
		if err != nil {
			return nil, err
		}
		result[title.String()] = full
	}
	return result, nil
}

// DiffPerVersion renders Diff for every title, keyed by title display name.
func (p *Project) DiffPerVersion() (map[string]map[string]string, error) {
	result := make(map[string]map[string]string, len(p.sources))
	for _, title := range p.Titles() {
		diffs, err := p.Diff(title)
		if err != nil {
			return nil, err
		}
		result[title.String()] = diffs
	}
	return result, nil
}
