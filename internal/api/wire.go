package api

// LanguageReferenceResponse is returned by GET /api/v1/language_reference.json.
type LanguageReferenceResponse struct {
	Versions  []string                     `json:"versions"`
	Languages map[string]map[string]string `json:"languages"`
}

// ProjectListResponse is returned by GET /api/v1/projects.json.
type ProjectListResponse struct {
	Projects []string `json:"projects"`
}

// ProjectVersions carries the resolved graph views of one project.
type ProjectVersions struct {
	// Paths maps each version to its ancestor closure, sorted.
	Paths map[string][]string `json:"paths"`
	// Parents maps each version to its single parent, null when the
	// version declares zero or multiple parents.
	Parents map[string]*string `json:"parents"`
	// TitlesToLanguageExt maps title display names to language extensions.
	TitlesToLanguageExt map[string]string `json:"titles_to_language_ext"`
}

// ProjectResponse is returned by GET /api/v1/projects/{name}.json.
type ProjectResponse struct {
	Versions        ProjectVersions              `json:"versions"`
	FullPerVersion  map[string]map[string]string `json:"full_per_version"`
	DiffsPerVersion map[string]map[string]string `json:"diffs_per_version"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
