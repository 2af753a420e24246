package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if err := validatePort("server.port", c.Server.Port); err != nil {
		return err
	}
	if err := validatePort("development.live_reload_port", c.Development.LiveReloadPort); err != nil {
		return err
	}

	if c.Build.Entrypoint != "" && !strings.HasSuffix(c.Build.Entrypoint, ".html") {
		return fmt.Errorf("build.entrypoint %q must end in .html", c.Build.Entrypoint)
	}
	if strings.ContainsAny(c.Build.PathPrefix, " \t\n") {
		return fmt.Errorf("build.path_prefix %q must not contain whitespace", c.Build.PathPrefix)
	}
	if c.Build.StyleExt != "" && !strings.HasPrefix(c.Build.StyleExt, ".") {
		return fmt.Errorf("build.style_ext %q must start with a dot", c.Build.StyleExt)
	}
	if c.Development.DebounceMs < 0 {
		return fmt.Errorf("development.debounce_ms must not be negative")
	}
	return nil
}

func validatePort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s %d is outside the valid range 1-65535", key, port)
	}
	return nil
}
