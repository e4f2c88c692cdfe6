package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/routra-dev/routra/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "routra.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultTemplateDir is the default root for per-app template
	// directories.
	DefaultTemplateDir = "app"
)

// Config represents the complete routra.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Debug bypasses the resolver cache so code and template changes
	// are picked up per request.
	Debug bool `json:"debug,omitempty"`

	// TemplateDir is the root directory holding per-app template
	// directories (<templateDir>/<app>/templates).
	TemplateDir string `json:"templateDir,omitempty"`

	// Dispatch contains view-dispatch settings.
	Dispatch DispatchConfig `json:"dispatch,omitempty"`

	// Server contains HTTP server settings.
	Server ServerConfig `json:"server,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DispatchConfig contains view-dispatch settings.
type DispatchConfig struct {
	// DefaultApp fills the app segment when the URL omits it.
	DefaultApp string `json:"defaultApp,omitempty"`

	// DefaultPage fills the page segment when the URL omits it.
	DefaultPage string `json:"defaultPage,omitempty"`

	// DefaultFunction is the function dispatched when the URL names
	// none.
	DefaultFunction string `json:"defaultFunction,omitempty"`

	// HooksEnabled toggles the pre/post dispatch hook chains.
	HooksEnabled *bool `json:"hooksEnabled,omitempty"`

	// MaxRedirects caps internal redirect chains. Zero means
	// unbounded.
	MaxRedirects int `json:"maxRedirects,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// HTTPS enables HTTPS URLs in logs and the reload client.
	HTTPS bool `json:"https,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/static/").
	Prefix string `json:"prefix,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Watch contains paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`

	// HotReload enables browser reload on template changes.
	HotReload bool `json:"hotReload,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	enabled := true
	return &Config{
		Version:     "0.1.0",
		TemplateDir: DefaultTemplateDir,
		Dispatch: DispatchConfig{
			DefaultApp:      "homepage",
			DefaultPage:     "index",
			DefaultFunction: "process",
			HooksEnabled:    &enabled,
		},
		Server: ServerConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
		Static: StaticConfig{
			Dir:    "public",
			Prefix: "/static/",
		},
		Dev: DevConfig{
			Watch:     []string{"app"},
			HotReload: true,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for routra.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E140").
				WithDetail("No routra.json found in " + filepath.Dir(path)).
				WithSuggestion("Create routra.json in the project root")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse routra.json: " + err.Error()).
			WithSuggestion("Check that routra.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.TemplateDir == "" {
		c.TemplateDir = DefaultTemplateDir
	}

	if c.Dispatch.DefaultApp == "" {
		c.Dispatch.DefaultApp = "homepage"
	}
	if c.Dispatch.DefaultPage == "" {
		c.Dispatch.DefaultPage = "index"
	}
	if c.Dispatch.DefaultFunction == "" {
		c.Dispatch.DefaultFunction = "process"
	}
	if c.Dispatch.HooksEnabled == nil {
		enabled := true
		c.Dispatch.HooksEnabled = &enabled
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}

	if c.Static.Dir == "" {
		c.Static.Dir = "public"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/static/"
	}

	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{c.TemplateDir}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.Dispatch.MaxRedirects < 0 {
		return errors.Newf(errors.CategoryConfig, "maxRedirects must not be negative")
	}
	return nil
}

// HooksEnabled reports whether the dispatch hook chains are enabled.
func (c *Config) HooksEnabled() bool {
	return c.Dispatch.HooksEnabled == nil || *c.Dispatch.HooksEnabled
}

// Address returns the listen address string for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the server.
func (c *Config) URL() string {
	scheme := "http"
	if c.Server.HTTPS {
		scheme = "https"
	}
	return scheme + "://" + c.Address()
}

// TemplatePath returns the absolute path to the template root.
func (c *Config) TemplatePath() string {
	if filepath.IsAbs(c.TemplateDir) {
		return c.TemplateDir
	}
	return filepath.Join(c.Dir(), c.TemplateDir)
}

// StaticPath returns the absolute path to the static files directory.
func (c *Config) StaticPath() string {
	if filepath.IsAbs(c.Static.Dir) {
		return c.Static.Dir
	}
	return filepath.Join(c.Dir(), c.Static.Dir)
}

// StaticPrefix returns the URL prefix for static files.
func (c *Config) StaticPrefix() string {
	if c.Static.Prefix == "" {
		return "/static/"
	}
	return c.Static.Prefix
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing routra.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E140").
				WithDetail("No routra.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
