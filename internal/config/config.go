package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains connection and spawn settings for the background service.
type Server struct {
	Address         string `toml:"address"`
	Port            int    `toml:"port"`
	Program         string `toml:"program"`
	Module          string `toml:"module"`
	StartupAttempts int    `toml:"startup_attempts"`
	StartupDelayMS  int    `toml:"startup_delay_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// History contains configuration for the local call-history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Artist contains default appearance settings for drawn networks.
type Artist struct {
	NodeColor   [3]float64 `toml:"node_color"`
	EdgeColor   [3]float64 `toml:"edge_color"`
	PointRadius float64    `toml:"point_radius"`
	LineWidth   float64    `toml:"line_width"`
	LabelHeight float64    `toml:"label_height"`
}

// Config encapsulates all configuration values for lattice.
type Config struct {
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`
	Artist  Artist  `toml:"artist"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/lattice/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. The boolean reports whether a
// file was found; missing files fall back to defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("lattice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	c.Server.Address = strings.TrimSpace(c.Server.Address)
	if c.Server.Address == "" {
		c.Server.Address = defaultServerAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultServerPort
	}
	c.Server.Module = strings.TrimSpace(c.Server.Module)
	if c.Server.Module == "" {
		c.Server.Module = DefaultServiceModule
	}
	if c.Server.StartupAttempts == 0 {
		c.Server.StartupAttempts = defaultStartupAttempts
	}
	if c.Server.StartupDelayMS == 0 {
		c.Server.StartupDelayMS = defaultStartupDelayMS
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	for _, field := range []*string{&c.Server.Program, &c.Logging.Dir, &c.History.Path} {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Artist.PointRadius == 0 {
		c.Artist.PointRadius = defaultPointRadius
	}
	if c.Artist.LineWidth == 0 {
		c.Artist.LineWidth = defaultLineWidth
	}
	if c.Artist.LabelHeight == 0 {
		c.Artist.LabelHeight = defaultLabelHeight
	}
	return nil
}

// ServerEndpoint returns the host:port address of the background service.
func (c *Config) ServerEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// EnsureDirectories creates the directories the daemon and CLI write into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.Dir}
	if c.History.Enabled && c.History.Path != "" {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves ~ shortcuts and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}

// CreateSample writes the embedded sample configuration to target.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}
