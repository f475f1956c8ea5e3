package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/yaml.v3"
)

const FileName = "config.yaml"

var ErrNotFound = errors.New("config file not found")

type Config struct {
	Addr          string   `yaml:"addr"`
	AllowOrigins  []string `yaml:"allow_origins"`
	LogLevel      string   `yaml:"log_level"`
	BodyLimit     int      `yaml:"body_limit"`
	WSReadBuffer  int      `yaml:"ws_read_buffer"`
	WSWriteBuffer int      `yaml:"ws_write_buffer"`
}

func Default() Config {
	return Config{
		Addr:          ":3000",
		AllowOrigins:  []string{"http://localhost:5173"},
		LogLevel:      "info",
		BodyLimit:     8 * 1024 * 1024,
		WSReadBuffer:  1024,
		WSWriteBuffer: 1024,
	}
}

// FindConfigPath walks up from the working directory looking for config.yaml.
func FindConfigPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := cwd
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w from %s", ErrNotFound, cwd)
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	return cfg, nil
}

// Resolve loads path, or the nearest config.yaml when path is empty. With
// no file at all the defaults are returned.
func Resolve(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	found, err := FindConfigPath()
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return Default(), err
	}
	return Load(found)
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("body_limit must be positive, got %d", c.BodyLimit)
	}
	if c.WSReadBuffer <= 0 || c.WSWriteBuffer <= 0 {
		return errors.New("websocket buffers must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps log_level onto the fiber logger levels.
func (c Config) Level() (log.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "", "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("unknown log_level %q", c.LogLevel)
}

// Origins is the comma separated form the cors middleware expects.
func (c Config) Origins() string {
	return strings.Join(c.AllowOrigins, ", ")
}
