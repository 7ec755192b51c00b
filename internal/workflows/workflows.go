// Package workflows generates per-language GitHub Actions workflows from a
// compose file. Each service in the compose file gets one workflow that
// rebuilds and runs that language's container when its files change.
package workflows

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const workflowTemplate = `name: language_reference_$LANGUAGE

on:
  push:
    branches:
      - main
    paths:
      - ".github/workflows/language_reference_$LANGUAGE.yml"
      - "language_reference/languages/$LANGUAGE/**"

jobs:
  language_check_$LANGUAGE:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@main

      - name: $LANGUAGE
        run: docker compose --project-directory language_reference up --build $LANGUAGE
`

// composeFile models the subset of a compose file we read: the service
// names only.
type composeFile struct {
	Services map[string]yaml.Node `yaml:"services"`
}

// Services reads the compose file at path and returns its service names,
// sorted.
func Services(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var compose composeFile
	if err := yaml.Unmarshal(data, &compose); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if compose.Services == nil {
		return nil, fmt.Errorf("parsing %s: no services key", path)
	}

	names := make([]string, 0, len(compose.Services))
	for name := range compose.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Generate writes one workflow file per compose service into outDir,
// creating it if needed. It returns the written filenames, sorted.
func Generate(composePath, outDir string) ([]string, error) {
	services, err := Services(composePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", outDir, err)
	}

	var written []string
	for _, name := range services {
		filename := "language_reference_" + name + ".yml"
		body := strings.ReplaceAll(workflowTemplate, "$LANGUAGE", name)
		if err := os.WriteFile(filepath.Join(outDir, filename), []byte(body), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", filename, err)
		}
		written = append(written, filename)
	}
	return written, nil
}
