// Package export renders the API to static files. It replays each API
// route through the handler in memory and writes the response bodies
// under an output directory, mirroring the URL paths, so the result can
// be served by any static file host.
package export

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/ComputingTeachers/language-reference/internal/api"
)

// Run exports every API endpoint served by h into outDir. It returns the
// list of written file paths relative to outDir, in export order.
func Run(h http.Handler, outDir string) ([]string, error) {
	var written []string

	body, err := fetch(h, "/api/v1/language_reference.json")
	if err == nil {
		path, werr := writeFile(outDir, "api/v1/language_reference.json", body)
		if werr != nil {
			return written, werr
		}
		written = append(written, path)
	} else {
		log.Printf("skipping language reference: %v", err)
	}

	body, err = fetch(h, "/api/v1/projects.json")
	if err != nil {
		log.Printf("skipping projects: %v", err)
		return written, nil
	}
	path, err := writeFile(outDir, "api/v1/projects.json", body)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	var list api.ProjectListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return written, fmt.Errorf("decoding project list: %w", err)
	}
	for _, name := range list.Projects {
		urlPath := "/api/v1/projects/" + name + ".json"
		body, err := fetch(h, urlPath)
		if err != nil {
			// One broken project must not abort the whole export.
			log.Printf("skipping project %s: %v", name, err)
			continue
		}
		path, err := writeFile(outDir, "api/v1/projects/"+name+".json", body)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// fetch replays one GET request through the handler without a network
// listener.
func fetch(h http.Handler, urlPath string) ([]byte, error) {
	req := httptest.NewRequest(http.MethodGet, urlPath, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", urlPath, w.Code)
	}
	return w.Body.Bytes(), nil
}

func writeFile(outDir, rel string, body []byte) (string, error) {
	path := filepath.Join(outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", rel, err)
	}
	return rel, nil
}
