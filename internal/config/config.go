// Package config provides configuration for the language-reference server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Listen is the address to listen on (e.g., ":8000").
	Listen string
	// ProjectPath is the root of the project snippet tree; empty disables
	// the project routes.
	ProjectPath string
	// LanguagePath is the root of the language-reference snippet tree;
	// empty disables the reference route.
	LanguagePath string
	// StaticPath is the directory served under /static; empty disables it.
	StaticPath string
	// CacheDir is where the render cache lives; empty disables caching.
	CacheDir string
	// RequestTimeout bounds request handling.
	RequestTimeout time.Duration
	// Strict enables strict version-graph validation at startup.
	Strict bool
	// Version is the server version string.
	Version string
}

// FromEnv creates a Config from environment variables.
func FromEnv() *Config {
	return &Config{
		Listen:         getEnv("LANGREF_LISTEN", ":8000"),
		ProjectPath:    getEnv("LANGREF_PROJECTS", ""),
		LanguagePath:   getEnv("LANGREF_LANGUAGES", ""),
		StaticPath:     getEnv("LANGREF_STATIC", ""),
		CacheDir:       getEnv("LANGREF_CACHE", ""),
		RequestTimeout: getEnvDuration("LANGREF_TIMEOUT", 30*time.Second),
		Strict:         getEnvBool("LANGREF_STRICT", false),
		Version:        getEnv("LANGREF_VERSION", "0.1.0"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
