// Package filesource discovers annotated snippet files under a root
// directory. Dispatch is purely extension-based: a file is collected when
// its multi-dot extension is a registered language extension or the
// reserved graph-description extension; content is never sniffed.
package filesource

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ComputingTeachers/language-reference/internal/ignore"
	"github.com/ComputingTeachers/language-reference/internal/language"
)

// GraphExt is the reserved extension of version-graph description files.
const GraphExt = "ver.json"

// File is one discovered snippet file.
type File struct {
	// Path is the slash-separated path relative to the collection root.
	Path string
	// Stem is the base name up to the first dot; Ext is everything after it,
	// so "test.ver.json" splits into ("test", "ver.json").
	Stem    string
	Ext     string
	Content []byte
}

// SplitName splits a base filename into stem and multi-dot extension.
// Returns ok=false for names without an extension.
func SplitName(base string) (stem, ext string, ok bool) {
	i := strings.Index(base, ".")
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}
	return base[:i], base[i+1:], true
}

// Collection is an ordered, immutable set of discovered files.
type Collection struct {
	Root  string
	Files []File
}

// Walk discovers files under root, skipping directories the matcher
// excludes. Files are returned in deterministic lexical walk order.
func Walk(root string, matcher *ignore.Matcher) (*Collection, error) {
	wanted := make(map[string]bool)
	for _, ext := range language.Extensions() {
		wanted[ext] = true
	}
	wanted[GraphExt] = true

	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(rel, false) {
			return nil
		}

		stem, ext, ok := SplitName(d.Name())
		if !ok || !wanted[ext] {
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", rel, readErr)
		}
		files = append(files, File{Path: rel, Stem: stem, Ext: ext, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return &Collection{Root: root, Files: files}, nil
}

// ProjectNames lists the projects in the collection: the relative path of
// every graph-description file with its ".ver.json" suffix removed.
func (c *Collection) ProjectNames() []string {
	var names []string
	for _, f := range c.Files {
		if f.Ext == GraphExt {
			names = append(names, strings.TrimSuffix(f.Path, "."+GraphExt))
		}
	}
	sort.Strings(names)
	return names
}

// ProjectFiles returns the files belonging to a project: files whose
// extension-less relative path starts with the project name.
func (c *Collection) ProjectFiles(name string) []File {
	var files []File
	for _, f := range c.Files {
		bare := strings.TrimSuffix(f.Path, "."+f.Ext)
		if strings.HasPrefix(bare, name) {
			files = append(files, f)
		}
	}
	return files
}
