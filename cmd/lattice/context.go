package main

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"lattice/internal/config"
	"lattice/internal/history"
	"lattice/internal/ipc"
	"lattice/internal/proxy"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// proxyOptions maps the loaded config onto proxy settings. The history store
// is attached separately by callers that record calls.
func (c *commandContext) proxyOptions() (proxy.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return proxy.Options{}, err
	}
	return proxy.Options{
		Program:  cfg.Server.Program,
		Module:   cfg.Server.Module,
		Address:  cfg.Server.Address,
		Port:     cfg.Server.Port,
		Attempts: cfg.Server.StartupAttempts,
		Delay:    time.Duration(cfg.Server.StartupDelayMS) * time.Millisecond,
	}, nil
}

// openHistory returns the call-history store, or nil when history is
// disabled. The caller owns the returned store.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled || cfg.History.Path == "" {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

func (c *commandContext) dialService() (*ipc.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ipc.Dial(cfg.ServerEndpoint())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
