// Package config provides configuration management for sitepress using Viper
// for flexible loading from files, environment variables, and command-line
// flags. The configuration covers the HTTP server, the build pipeline, and
// development options like live reload and the watch debounce interval.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/conneroisu/sitepress/internal/toolchain"
)

// Config is the full configuration surface.
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Build       BuildConfig       `yaml:"build" mapstructure:"build"`
	Development DevelopmentConfig `yaml:"development" mapstructure:"development"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// BuildConfig configures the generation pipeline.
type BuildConfig struct {
	// Entrypoint is the HTML file the build starts from.
	Entrypoint string `yaml:"entrypoint" mapstructure:"entrypoint"`
	// Output is the directory build artifacts are written to.
	Output string `yaml:"output" mapstructure:"output"`
	// PathPrefix is the public URL prefix written into rewritten
	// references.
	PathPrefix string `yaml:"path_prefix" mapstructure:"path_prefix"`
	// Fallback404 duplicates the page artifact under the 404 name for
	// single-page-app routing.
	Fallback404 bool `yaml:"fallback_404" mapstructure:"fallback_404"`
	// Workers bounds concurrent asset production.
	Workers int `yaml:"workers" mapstructure:"workers"`

	// External tool commands, each a command line split on whitespace.
	BundlerCommand  string `yaml:"bundler_command" mapstructure:"bundler_command"`
	CompilerCommand string `yaml:"compiler_command" mapstructure:"compiler_command"`
	GraphCommand    string `yaml:"graph_command" mapstructure:"graph_command"`
	// StyleExt is the source extension handled by the preprocessor.
	StyleExt string `yaml:"style_ext" mapstructure:"style_ext"`
}

// DevelopmentConfig configures watch/serve development behavior.
type DevelopmentConfig struct {
	LiveReload     bool `yaml:"live_reload" mapstructure:"live_reload"`
	LiveReloadPort int  `yaml:"live_reload_port" mapstructure:"live_reload_port"`
	DebounceMs     int  `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Build: BuildConfig{
			Output:   "dist",
			StyleExt: ".scss",
			Workers:  4,
		},
		Development: DevelopmentConfig{
			LiveReload: true,
			DebounceMs: 100,
		},
	}
}

// Load builds the configuration from viper's merged sources and validates it.
func Load() (*Config, error) {
	config := Default()
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyDefaults(config *Config) {
	defaults := Default()

	if config.Server.Host == "" {
		config.Server.Host = defaults.Server.Host
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Build.Output == "" {
		config.Build.Output = defaults.Build.Output
	}
	if config.Build.StyleExt == "" {
		config.Build.StyleExt = defaults.Build.StyleExt
	}
	if config.Build.Workers <= 0 {
		config.Build.Workers = defaults.Build.Workers
	}
	if config.Development.DebounceMs <= 0 {
		config.Development.DebounceMs = defaults.Development.DebounceMs
	}
	// The injected live-reload script points at the serving port unless a
	// dedicated port is configured.
	if config.Development.LiveReloadPort == 0 {
		config.Development.LiveReloadPort = config.Server.Port
	}
}

// Toolchain builds the external toolchain from the configured commands,
// falling back to the standard tools for anything unset.
func (c *Config) Toolchain() *toolchain.Toolchain {
	tools := toolchain.Default()

	if cmd := strings.Fields(c.Build.BundlerCommand); len(cmd) > 0 {
		tools.Bundler = toolchain.NewExecBundler(cmd[0], cmd[1:]...)
	}
	if cmd := strings.Fields(c.Build.CompilerCommand); len(cmd) > 0 {
		tools.Compiler = toolchain.NewExecStyleCompiler(cmd[0], cmd[1:]...)
	}
	if cmd := strings.Fields(c.Build.GraphCommand); len(cmd) > 0 {
		tools.Graph = toolchain.NewExecGraphQuery(cmd[0], cmd[1:]...)
	}
	if c.Build.StyleExt != "" {
		tools.StyleExt = c.Build.StyleExt
	}
	return tools
}
