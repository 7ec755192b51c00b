package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ComputingTeachers/language-reference/internal/api"
	"github.com/ComputingTeachers/language-reference/internal/config"
	"github.com/ComputingTeachers/language-reference/internal/filesource"
)

const testGraph = `{"versions": {
	"": {"parents": []},
	"v1": {"parents": [""]}
}}`

func TestRun(t *testing.T) {
	cfg := &config.Config{Version: "test"}
	languages := &filesource.Collection{
		Root: "languages",
		Files: []filesource.File{
			{Path: "hello.py", Stem: "hello", Ext: "py", Content: []byte(
				"print('Hello World')  # VER: hello_world\n")},
		},
	}
	projects := &filesource.Collection{
		Root: "projects",
		Files: []filesource.File{
			{Path: "demo/app.py", Stem: "app", Ext: "py", Content: []byte(
				"print('hi')  # VER: v1\n")},
			{Path: "demo/app.ver.json", Stem: "app", Ext: "ver.json", Content: []byte(testGraph)},
		},
	}
	h := api.NewRouter(api.NewHandler(cfg, languages, projects, nil))

	outDir := t.TempDir()
	written, err := Run(h, outDir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{
		"api/v1/language_reference.json",
		"api/v1/projects.json",
		"api/v1/projects/demo/app.json",
	}
	if len(written) != len(want) {
		t.Fatalf("written = %v, want %v", written, want)
	}
	for i, rel := range want {
		if written[i] != rel {
			t.Errorf("written[%d] = %q, want %q", i, written[i], rel)
		}
		if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing exported file %s: %v", rel, err)
		}
	}

	body, err := os.ReadFile(filepath.Join(outDir, "api", "v1", "projects", "demo", "app.json"))
	if err != nil {
		t.Fatalf("reading exported project: %v", err)
	}
	var resp api.ProjectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.FullPerVersion["py: app"]["v1"] != "print('hi')" {
		t.Errorf("full = %v", resp.FullPerVersion)
	}
}

func TestRunSkipsBrokenProjects(t *testing.T) {
	cfg := &config.Config{Version: "test"}
	projects := &filesource.Collection{
		Root: "projects",
		Files: []filesource.File{
			// No graph description, so rendering fails.
			{Path: "bare/app.py", Stem: "app", Ext: "py", Content: []byte("print('x')\n")},
			{Path: "bare/app.ver.json", Stem: "app", Ext: "ver.json", Content: []byte("not json")},
		},
	}
	h := api.NewRouter(api.NewHandler(cfg, nil, projects, nil))

	written, err := Run(h, t.TempDir())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// The project list still exports even when a project cannot render.
	if len(written) != 1 || written[0] != "api/v1/projects.json" {
		t.Errorf("written = %v", written)
	}
}
