package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project-level config file.
const FileName = "taskdelta.toml"

// DirName is the name of the project-level config directory.
const DirName = ".taskdelta"

// Load loads configuration for the current working directory.
func Load() *Config {
	wd, err := os.Getwd()
	if err != nil {
		return New()
	}
	return LoadFrom(wd)
}

// LoadFrom loads configuration starting from a specific directory:
// defaults, then the nearest project config file up the directory tree,
// then TASKDELTA_* environment variables.
func LoadFrom(dir string) *Config {
	cfg := New()

	if projectCfg := loadProjectConfigFrom(dir); projectCfg != nil {
		cfg.Merge(projectCfg)
	}

	applyEnvironment(cfg)
	return cfg
}

// loadProjectConfigFrom looks for a project config file starting from the
// given directory and walking up to the workspace root.
func loadProjectConfigFrom(dir string) *Config {
	current := dir
	for {
		// Check for .taskdelta/config.toml first
		if cfg := loadConfigFile(filepath.Join(current, DirName, "config.toml")); cfg != nil {
			return cfg
		}

		// Check for taskdelta.toml in project root
		if cfg := loadConfigFile(filepath.Join(current, FileName)); cfg != nil {
			return cfg
		}

		if isWorkspaceRoot(current) {
			break
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return nil
}

// isWorkspaceRoot checks if the directory is a workspace root.
func isWorkspaceRoot(dir string) bool {
	for _, marker := range []string{".git", "go.mod", "settings.gradle"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// loadConfigFile loads a configuration from a TOML file.
func loadConfigFile(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil
	}
	return &cfg
}

// applyEnvironment applies TASKDELTA_* environment variables to the config.
func applyEnvironment(cfg *Config) {
	if v := os.Getenv("TASKDELTA_VERBOSITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Verbosity = n
		}
	}
	if v := os.Getenv("TASKDELTA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TASKDELTA_SOURCE_DIR"); v != "" {
		cfg.Source.Dir = v
	}
	if v := os.Getenv("TASKDELTA_SOURCE_EXTENSIONS"); v != "" {
		cfg.Source.Extensions = splitAndTrim(v)
	}
	if v := os.Getenv("TASKDELTA_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("TASKDELTA_ARTIFACT_SUFFIX"); v != "" {
		cfg.Output.ArtifactSuffix = v
	}
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
