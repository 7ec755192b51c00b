// Package api provides the HTTP API over the rendering engine.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ComputingTeachers/language-reference/internal/cache"
	"github.com/ComputingTeachers/language-reference/internal/config"
	"github.com/ComputingTeachers/language-reference/internal/filesource"
	"github.com/ComputingTeachers/language-reference/internal/project"
	"github.com/ComputingTeachers/language-reference/internal/reference"
	"github.com/ComputingTeachers/language-reference/internal/util"
)

// Handler wraps the engine views and config for HTTP handlers. All views
// are derived from the file collections taken at construction time; a
// changed tree requires a new Handler.
type Handler struct {
	cfg       *config.Config
	languages *filesource.Collection
	projects  *filesource.Collection
	ref       *reference.Reference
	renders   *cache.RenderCache
}

// NewHandler creates an API handler over the given file collections.
// Either collection may be nil, which disables its routes. The render
// cache is optional.
func NewHandler(cfg *config.Config, languages, projects *filesource.Collection, renders *cache.RenderCache) *Handler {
	h := &Handler{
		cfg:       cfg,
		languages: languages,
		projects:  projects,
		renders:   renders,
	}
	if languages != nil {
		h.ref = reference.New(languages.Files)
	}
	return h
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /healthz", h.Health)

	if h.cfg.StaticPath != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(h.cfg.StaticPath))))
	}
	if h.languages != nil {
		mux.HandleFunc("GET /api/v1/language_reference.json", h.LanguageReference)
	}
	if h.projects != nil {
		mux.HandleFunc("GET /api/v1/projects.json", h.ListProjects)
		mux.HandleFunc("GET /api/v1/projects/{name...}", h.GetProject)
	}

	return mux
}

// ----- Health -----

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.cfg.Version})
}

// ----- Index -----

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/static/index.html", http.StatusFound)
}

// ----- Reference mode -----

func (h *Handler) LanguageReference(w http.ResponseWriter, r *http.Request) {
	writeJSONBody(w, r, http.StatusOK, LanguageReferenceResponse{
		Versions:  h.ref.AllTags(),
		Languages: h.ref.Languages(),
	})
}

// ----- Project mode -----

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSONBody(w, r, http.StatusOK, ProjectListResponse{
		Projects: h.projects.ProjectNames(),
	})
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(r.PathValue("name"), ".json")

	files := h.projects.ProjectFiles(name)
	if len(files) == 0 {
		writeError(w, http.StatusNotFound, "project not found", nil)
		return
	}

	// Rendering is pure in the file snapshot, so a digest of the inputs
	// keys the cached response.
	digest := projectDigest(name, files)
	if h.renders != nil {
		if body, err := h.renders.Get(digest); err == nil && body != nil {
			serveBody(w, r, http.StatusOK, body)
			return
		}
	}

	resp, err := renderProject(name, files)
	if err != nil {
		if errors.Is(err, project.ErrNoVersionInfo) || errors.Is(err, project.ErrFormatUnsupported) {
			writeError(w, http.StatusUnprocessableEntity, "project cannot be rendered", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to render project", err)
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode project", err)
		return
	}
	if h.renders != nil {
		if err := h.renders.Put(digest, body, time.Now().UnixMilli()); err != nil {
			log.Printf("render cache write failed for %s: %v", name, err)
		}
	}
	serveBody(w, r, http.StatusOK, body)
}

// renderProject builds the full project response.
func renderProject(name string, files []filesource.File) (*ProjectResponse, error) {
	p, err := project.New(name, files)
	if err != nil {
		return nil, err
	}

	full, err := p.FullPerVersion()
	if err != nil {
		return nil, err
	}
	diffs, err := p.DiffPerVersion()
	if err != nil {
		return nil, err
	}

	paths := make(map[string][]string)
	for version, closure := range p.Graph().Paths() {
		names := make([]string, 0, len(closure))
		for n := range closure {
			names = append(names, n)
		}
		sort.Strings(names)
		paths[version] = names
	}

	return &ProjectResponse{
		Versions: ProjectVersions{
			Paths:               paths,
			Parents:             p.Graph().Parents(),
			TitlesToLanguageExt: p.TitleLanguages(),
		},
		FullPerVersion:  full,
		DiffsPerVersion: diffs,
	}, nil
}

func projectDigest(name string, files []filesource.File) string {
	buf := []byte(name)
	for _, f := range files {
		buf = append(buf, 0)
		buf = append(buf, f.Path...)
		buf = append(buf, 0)
		buf = append(buf, f.Content...)
	}
	return util.Blake3HashHex(buf)
}

// ----- Helpers -----

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONBody marshals v up front so the response carries an ETag and
// conditional requests can short-circuit with 304.
func writeJSONBody(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode response", err)
		return
	}
	serveBody(w, r, status, body)
}

func serveBody(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	etag := `"` + util.Blake3HashHex(body) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
