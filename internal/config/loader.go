package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".crawlzip"

// Environment variable names read by ApplyEnv.
const (
	EnvAPIKey            = "FIRECRAWL_API_KEY"
	EnvAPIURL            = "FIRECRAWL_API_URL"
	EnvAdminPassword     = "ADMIN_PASSWORD"
	EnvAdminPasswordHash = "ADMIN_PASSWORD_HASH"
	EnvOutputDir         = "CRAWLZIP_OUTPUT_DIR"
	EnvTempDir           = "CRAWLZIP_TEMP_DIR"
	EnvListenAddress     = "CRAWLZIP_LISTEN"
	EnvProxy             = "CRAWLZIP_PROXY"
	EnvEnvFile           = "ENV_FILE"
)

// File represents the structure of the YAML configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	APIURL        string    `yaml:"apiURL,omitempty"`
	ListenAddress string    `yaml:"listen,omitempty"`
	OutputDir     string    `yaml:"outputDir,omitempty"`
	TempDir       string    `yaml:"tempDir,omitempty"`
	Proxy         string    `yaml:"proxy,omitempty"`
	Crawl         CrawlFile `yaml:"crawl,omitempty"`
}

// CrawlFile holds crawl defaults in the configuration file.
type CrawlFile struct {
	// Depth is the default crawl depth. Zero keeps the built-in default,
	// so a depth of 0 can only be requested per crawl.
	Depth int `yaml:"depth,omitempty"`

	MaxPages     int           `yaml:"maxPages,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`
}

// Apply copies the non-zero values of f into cfg.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.APIURL != "" {
		cfg.APIURL = f.APIURL
	}
	if f.ListenAddress != "" {
		cfg.ListenAddress = f.ListenAddress
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.TempDir != "" {
		cfg.TempDir = f.TempDir
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.Crawl.Depth != 0 {
		cfg.CrawlDepth = f.Crawl.Depth
	}
	if f.Crawl.MaxPages != 0 {
		cfg.MaxPages = f.Crawl.MaxPages
	}
	if f.Crawl.Timeout != 0 {
		cfg.Timeout = f.Crawl.Timeout
	}
	if f.Crawl.PollInterval != 0 {
		cfg.PollInterval = f.Crawl.PollInterval
	}
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .crawlzip in the current directory
// 3. .crawlzip in the user's home directory
// 4. config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// LoadEnvFiles loads .env files into the process environment:
// $ENV_FILE alone when set, otherwise .env.local and then .env.
// Variables already present in the environment are never overwritten.
// Missing files are not an error.
func LoadEnvFiles() error {
	if envFile := os.Getenv(EnvEnvFile); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// ApplyEnv copies non-empty environment variables into cfg.
// getenv is usually os.Getenv; tests pass a map lookup.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.APIKey, EnvAPIKey)
	set(&cfg.APIURL, EnvAPIURL)
	set(&cfg.AdminPassword, EnvAdminPassword)
	set(&cfg.AdminPasswordHash, EnvAdminPasswordHash)
	set(&cfg.OutputDir, EnvOutputDir)
	set(&cfg.TempDir, EnvTempDir)
	set(&cfg.ListenAddress, EnvListenAddress)
	set(&cfg.ProxyAddress, EnvProxy)
}

// Load builds a Config from defaults, the configuration file, .env files
// and the process environment, in that order of increasing priority.
// An explicitly given configPath that does not exist is an error; a missing
// default file is not.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()

	path := FindConfigFile(configPath)
	switch {
	case path != "":
		f, err := LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		f.Apply(cfg)
		cfg.ConfigFilePath = path
	case configPath != "":
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}
	ApplyEnv(cfg, os.Getenv)

	return cfg, nil
}
