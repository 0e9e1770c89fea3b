package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath  string = "config.json"
	DefaultDetectorURL string = "http://127.0.0.1:8000/detect"

	EnvDetectorURL = "DETECTOR_URL"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFile     = "LOG_FILE"
)

type Config struct {
	mu   sync.RWMutex
	path string

	DetectorURL  string `json:"detector_url" yaml:"detector_url" toml:"detector_url"`
	LastDir      string `json:"last_dir" yaml:"last_dir" toml:"last_dir"`
	WindowWidth  int    `json:"window_width" yaml:"window_width" toml:"window_width"`
	WindowHeight int    `json:"window_height" yaml:"window_height" toml:"window_height"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile      string `json:"log_file" yaml:"log_file" toml:"log_file"`
}

func (c *Config) GetDetectorURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DetectorURL
}

func (c *Config) SetDetectorURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DetectorURL = u
}

func (c *Config) GetLastDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastDir
}

func (c *Config) SetLastDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastDir = dir
}

func (c *Config) GetWindowSize() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.WindowWidth, c.WindowHeight
}

func (c *Config) GetLogLevel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LogLevel
}

func (c *Config) GetLogFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LogFile
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// ApplyEnv overrides file values with DETECTOR_URL, LOG_LEVEL and LOG_FILE when set.
func (c *Config) ApplyEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv(EnvDetectorURL); v != "" {
		c.DetectorURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
}

func (c *Config) Save(path string) error {
	c.mu.RLock()
	data, err := encode(path, c)
	c.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) SaveByDefault() error {
	path := c.Path()
	if path == "" {
		path = DefaultConfigPath
	}
	return c.Save(path)
}

// LoadConfigFile reads path into a default config. A missing or broken file
// leaves the defaults in place.
func LoadConfigFile(path string) *Config {
	cfg := NewDefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	loaded := NewDefaultConfig()
	if err := decode(path, data, loaded); err != nil {
		return cfg
	}
	loaded.path = path
	loaded.fillDefaults()

	return loaded
}

// LoadEnv loads .env style files into the process environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}

func NewDefaultConfig() *Config {
	return &Config{
		DetectorURL:  DefaultDetectorURL,
		WindowWidth:  1000,
		WindowHeight: 700,
		LogLevel:     "info",
	}
}

func (c *Config) fillDefaults() {
	def := NewDefaultConfig()
	if c.DetectorURL == "" {
		c.DetectorURL = def.DetectorURL
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = def.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = def.WindowHeight
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

func encode(path string, c *Config) ([]byte, error) {
	switch format(path) {
	case "yaml":
		return yaml.Marshal(c)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return json.MarshalIndent(c, "", "  ")
	}
}

func decode(path string, data []byte, c *Config) error {
	switch format(path) {
	case "yaml":
		return yaml.Unmarshal(data, c)
	case "toml":
		_, err := toml.Decode(string(data), c)
		return err
	default:
		return json.Unmarshal(data, c)
	}
}
