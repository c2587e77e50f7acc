package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct, loaded from the
// environment at bootstrap.
type Config struct {
	App AppConfig
	AOT AOTConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
}

// AOTConfig configures the ahead-of-time processing pipeline.
type AOTConfig struct {
	// OutputDir is the root directory generated sources, the factories
	// index and the manifest are committed to.
	OutputDir string
	// Package is the generated package name.
	Package string
	// FactoryKey is the logical key the source container is processed
	// under, and the key of its factories-index entry.
	FactoryKey string
	// StrictRegistry makes registries fail on duplicate bean names instead
	// of replacing (last-write-wins).
	StrictRegistry bool
}

// Load reads .env (if present) and populates a Config from environment
// variables. Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GoSpring"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", true),
			Port:  env("APP_PORT", "8000"),
		},
		AOT: AOTConfig{
			OutputDir:      env("AOT_OUTPUT_DIR", "gen"),
			Package:        env("AOT_PACKAGE", "beanreg"),
			FactoryKey:     env("AOT_FACTORY_KEY", "default"),
			StrictRegistry: envBool("AOT_STRICT_REGISTRY", false),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
