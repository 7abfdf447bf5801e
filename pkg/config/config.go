// Package config provides configuration management for taskdelta.
// It supports multi-layer configuration with precedence:
//  1. Built-in defaults (lowest priority)
//  2. Project config (.taskdelta/config.toml or taskdelta.toml)
//  3. Environment variables (TASKDELTA_*)
//  4. CLI flags (highest priority)
package config

// Config is the main configuration struct for taskdelta.
type Config struct {
	// Verbosity is the log verbosity level (0=error .. 4=trace).
	Verbosity int `toml:"verbosity"`

	// LogFormat is the log output format ("text" or "json").
	LogFormat string `toml:"log_format"`

	// Source configures the source tree fed to the recompilation engine.
	Source SourceConfig `toml:"source"`

	// Output configures the compiled-output destination.
	Output OutputConfig `toml:"output"`

	// IgnoreDirs are directory name prefixes skipped while probing and
	// watching.
	IgnoreDirs []string `toml:"ignore_dirs"`
}

// SourceConfig describes the source tree.
type SourceConfig struct {
	// Dir is the source root, relative to the workspace.
	Dir string `toml:"dir"`

	// Extensions are the source file extensions considered for changes.
	Extensions []string `toml:"extensions"`
}

// OutputConfig describes the compiled-output destination.
type OutputConfig struct {
	// Dir is the destination directory, relative to the workspace.
	Dir string `toml:"dir"`

	// ArtifactSuffix is the compiled-artifact suffix used when mapping
	// class names to stale output files.
	ArtifactSuffix string `toml:"artifact_suffix"`
}

// New creates a Config with built-in defaults.
func New() *Config {
	return &Config{
		Verbosity: 1,
		LogFormat: "text",
		Source: SourceConfig{
			Dir:        "src",
			Extensions: []string{".java", ".groovy"},
		},
		Output: OutputConfig{
			Dir:            "build/classes",
			ArtifactSuffix: ".class",
		},
		IgnoreDirs: []string{".", "build", "node_modules"},
	}
}

// Merge merges another config into this one (other takes precedence).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Verbosity != 0 {
		c.Verbosity = other.Verbosity
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.Source.Dir != "" {
		c.Source.Dir = other.Source.Dir
	}
	if len(other.Source.Extensions) > 0 {
		c.Source.Extensions = other.Source.Extensions
	}
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.ArtifactSuffix != "" {
		c.Output.ArtifactSuffix = other.Output.ArtifactSuffix
	}
	if len(other.IgnoreDirs) > 0 {
		c.IgnoreDirs = append(c.IgnoreDirs, other.IgnoreDirs...)
	}
}

// TracksExtension reports whether the given file extension is a tracked
// source extension.
func (c *Config) TracksExtension(ext string) bool {
	for _, e := range c.Source.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
