package main

import (
	"fmt"
	"strings"

	"clipper/internal/config"
)

// commandContext carries flag values and the lazily loaded configuration
// shared across subcommands.
type commandContext struct {
	configFlag *string
	serverFlag *string

	cfg     *config.Config
	cfgPath string
}

func newCommandContext(configFlag, serverFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, serverFlag: serverFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, resolvedPath, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.cfgPath = resolvedPath
	return cfg, nil
}

// serverURL returns the API base URL for client commands: the --server flag
// when set, otherwise the configured bind address.
func (c *commandContext) serverURL() (string, error) {
	if c.serverFlag != nil {
		if override := strings.TrimSpace(*c.serverFlag); override != "" {
			return normalizeServerURL(override), nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return normalizeServerURL(cfg.Paths.APIBind), nil
}

func normalizeServerURL(value string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "http://" + value
}
