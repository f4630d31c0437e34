package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateArtist()
}

func (c *Config) validateServer() error {
	if c.Server.Address == "" {
		return errors.New("server.address must be set")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.StartupAttempts < 1 {
		return errors.New("server.startup_attempts must be at least 1")
	}
	if c.Server.StartupDelayMS < 1 {
		return errors.New("server.startup_delay_ms must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path must be set when history is enabled")
	}
	return nil
}

func (c *Config) validateArtist() error {
	for name, color := range map[string][3]float64{
		"artist.node_color": c.Artist.NodeColor,
		"artist.edge_color": c.Artist.EdgeColor,
	} {
		for _, channel := range color {
			if channel < 0 || channel > 1 {
				return fmt.Errorf("%s channels must be between 0 and 1", name)
			}
		}
	}
	if c.Artist.PointRadius <= 0 {
		return errors.New("artist.point_radius must be positive")
	}
	if c.Artist.LineWidth <= 0 {
		return errors.New("artist.line_width must be positive")
	}
	if c.Artist.LabelHeight <= 0 {
		return errors.New("artist.label_height must be positive")
	}
	return nil
}
