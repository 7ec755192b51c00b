// Command langref serves and exports the language-reference API.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ComputingTeachers/language-reference/internal/api"
	"github.com/ComputingTeachers/language-reference/internal/cache"
	"github.com/ComputingTeachers/language-reference/internal/config"
	"github.com/ComputingTeachers/language-reference/internal/export"
	"github.com/ComputingTeachers/language-reference/internal/filesource"
	"github.com/ComputingTeachers/language-reference/internal/ignore"
	"github.com/ComputingTeachers/language-reference/internal/project"
	"github.com/ComputingTeachers/language-reference/internal/workflows"
)

// Version is the current langref version.
var Version = "0.1.0"

var (
	flagListen       string
	flagProjects     string
	flagLanguages    string
	flagStatic       string
	flagCache        string
	flagStrict       bool
	flagExportOut    string
	flagWorkflowsOut string
	flagCompose      string
)

var rootCmd = &cobra.Command{
	Use:     "langref",
	Short:   "Version-resolved snippet rendering for language references and tutorials",
	Long:    `Langref renders version-annotated code snippets: it parses VER: comment annotations, resolves versions through a parent graph, and serves full texts and unified diffs per version over an HTTP API or as static JSON files.`,
	Version: Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the API over HTTP",
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the API to static JSON files",
	RunE:  runExport,
}

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "Generate per-language GitHub Actions workflows from a compose file",
	RunE:  runWorkflows,
}

func init() {
	for _, cmd := range []*cobra.Command{serveCmd, exportCmd} {
		cmd.Flags().StringVar(&flagProjects, "projects", "", "project snippet tree root (overrides LANGREF_PROJECTS)")
		cmd.Flags().StringVar(&flagLanguages, "languages", "", "language-reference tree root (overrides LANGREF_LANGUAGES)")
		cmd.Flags().StringVar(&flagCache, "cache", "", "render cache directory (overrides LANGREF_CACHE)")
		cmd.Flags().BoolVar(&flagStrict, "strict", false, "validate every project version graph before serving")
	}
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "address to listen on (overrides LANGREF_LISTEN, default :8000)")
	serveCmd.Flags().StringVar(&flagStatic, "static", "", "static files directory served under /static (overrides LANGREF_STATIC)")

	exportCmd.Flags().StringVar(&flagExportOut, "out", "site", "output directory for the exported files")

	workflowsCmd.Flags().StringVar(&flagCompose, "compose", "compose.yaml", "compose file listing one service per language")
	workflowsCmd.Flags().StringVar(&flagWorkflowsOut, "out", ".github/workflows", "output directory for workflow files")

	rootCmd.AddCommand(serveCmd, exportCmd, workflowsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the effective config: flags override environment.
func loadConfig() *config.Config {
	cfg := config.FromEnv()
	cfg.Version = Version
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	if flagProjects != "" {
		cfg.ProjectPath = flagProjects
	}
	if flagLanguages != "" {
		cfg.LanguagePath = flagLanguages
	}
	if flagStatic != "" {
		cfg.StaticPath = flagStatic
	}
	if flagCache != "" {
		cfg.CacheDir = flagCache
	}
	if flagStrict {
		cfg.Strict = true
	}
	return cfg
}

// buildHandler walks the configured trees once and wires the API handler.
func buildHandler(cfg *config.Config) (http.Handler, func(), error) {
	matcher := ignore.Defaults()

	var languages, projects *filesource.Collection
	var err error
	if cfg.LanguagePath != "" {
		languages, err = filesource.Walk(cfg.LanguagePath, matcher)
		if err != nil {
			return nil, nil, fmt.Errorf("discovering languages: %w", err)
		}
		log.Printf("languages: %d files under %s", len(languages.Files), cfg.LanguagePath)
	}
	if cfg.ProjectPath != "" {
		projects, err = filesource.Walk(cfg.ProjectPath, matcher)
		if err != nil {
			return nil, nil, fmt.Errorf("discovering projects: %w", err)
		}
		log.Printf("projects: %d found under %s", len(projects.ProjectNames()), cfg.ProjectPath)
	}
	if languages == nil && projects == nil {
		return nil, nil, fmt.Errorf("nothing to serve: set --projects or --languages")
	}

	if cfg.Strict && projects != nil {
		if err := preflight(projects); err != nil {
			return nil, nil, err
		}
	}

	var renders *cache.RenderCache
	cleanup := func() {}
	if cfg.CacheDir != "" {
		renders, err = cache.Open(cfg.CacheDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening render cache: %w", err)
		}
		cleanup = func() {
			if err := renders.Close(); err != nil {
				log.Printf("closing render cache: %v", err)
			}
		}
	}

	h := api.NewRouter(api.NewHandler(cfg, languages, projects, renders))
	return h, cleanup, nil
}

// preflight constructs every project and validates its version graph,
// failing fast on the first broken one.
func preflight(projects *filesource.Collection) error {
	for _, name := range projects.ProjectNames() {
		p, err := project.New(name, projects.ProjectFiles(name))
		if err != nil {
			return fmt.Errorf("strict preflight: %w", err)
		}
		if err := p.Graph().Validate(); err != nil {
			return fmt.Errorf("strict preflight: project %s: %w", name, err)
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	log.Printf("langref starting...")
	log.Printf("  listen:    %s", cfg.Listen)
	log.Printf("  projects:  %s", cfg.ProjectPath)
	log.Printf("  languages: %s", cfg.LanguagePath)
	log.Printf("  static:    %s", cfg.StaticPath)
	log.Printf("  cache:     %s", cfg.CacheDir)
	log.Printf("  version:   %s", cfg.Version)

	handler, cleanup, err := buildHandler(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      api.WithDefaults(handler, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("shutting down...")

		// Give connections 30s to finish
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		close(done)
	}()

	log.Printf("langref listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	log.Println("langref stopped")
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	handler, cleanup, err := buildHandler(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	written, err := export.Run(handler, flagExportOut)
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}
	for _, rel := range written {
		log.Printf("wrote %s", rel)
	}
	log.Printf("exported %d files to %s", len(written), flagExportOut)
	return nil
}

func runWorkflows(cmd *cobra.Command, args []string) error {
	written, err := workflows.Generate(flagCompose, flagWorkflowsOut)
	if err != nil {
		return err
	}
	for _, name := range written {
		log.Printf("wrote %s", name)
	}
	return nil
}
