package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/crawlzip/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "crawlzip"

	// DefaultAPIURL is the base URL of the hosted crawl service.
	DefaultAPIURL = "https://api.firecrawl.dev"

	// DefaultListenAddress matches the port the web form has always used.
	DefaultListenAddress = "0.0.0.0:8000"

	// DefaultOutputDir is the output root for run directories, relative to
	// the working directory.
	DefaultOutputDir = "firecrawl_output"

	// DefaultCrawlDepth is the crawl depth used when none is given.
	DefaultCrawlDepth = model.DefaultDepth

	// DefaultMaxPages is the page limit used when none is given.
	DefaultMaxPages = model.DefaultMaxPages

	// DefaultTimeout bounds a single HTTP call to the crawl service.
	// It does not bound the crawl as a whole; a crawl runs until the
	// service reports completion.
	DefaultTimeout = 60 * time.Second

	// DefaultPollInterval is the delay between crawl status requests.
	DefaultPollInterval = 2 * time.Second
)

// Config holds all configuration options for crawlzip.
// It is built once at process start and passed by reference to the
// components that need it. Nothing reads configuration from globals.
type Config struct {
	// APIKey is the crawl service credential (FIRECRAWL_API_KEY).
	APIKey string

	// APIURL is the crawl service base URL (FIRECRAWL_API_URL).
	APIURL string

	// AdminPassword is the plain-text secret for the web form (ADMIN_PASSWORD).
	AdminPassword string

	// AdminPasswordHash is a bcrypt hash of the web form secret
	// (ADMIN_PASSWORD_HASH). When set, it takes precedence over AdminPassword.
	AdminPasswordHash string

	// ListenAddress is the host:port the web server binds to.
	ListenAddress string

	// OutputDir is the output root under which run directories are created.
	OutputDir string

	// TempDir is where temporary archives are written before delivery.
	TempDir string

	// CrawlDepth is the default crawl depth.
	CrawlDepth int

	// MaxPages is the default page limit.
	MaxPages int

	// Timeout bounds each HTTP call to the crawl service.
	Timeout time.Duration

	// PollInterval is the delay between crawl status requests.
	PollInterval time.Duration

	// ProxyAddress is an optional SOCKS5 proxy (host:port) for reaching the
	// crawl service. Empty means a direct connection.
	ProxyAddress string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the YAML file the configuration was loaded from.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		APIURL:        DefaultAPIURL,
		ListenAddress: DefaultListenAddress,
		OutputDir:     DefaultOutputDir,
		TempDir:       os.TempDir(),
		CrawlDepth:    DefaultCrawlDepth,
		MaxPages:      DefaultMaxPages,
		Timeout:       DefaultTimeout,
		PollInterval:  DefaultPollInterval,
	}
}

// XDGConfigDir returns the XDG config directory for crawlzip.
// On Linux: ~/.config/crawlzip
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HasAdminSecret reports whether a web form secret is configured.
func (c *Config) HasAdminSecret() bool {
	return c.AdminPassword != "" || c.AdminPasswordHash != ""
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.CrawlDepth < model.MinDepth || c.CrawlDepth > model.MaxDepth {
		return ErrInvalidDepth
	}
	if c.MaxPages < model.MinPages || c.MaxPages > model.MaxPages {
		return ErrInvalidMaxPages
	}
	if c.ProxyAddress != "" && !isValidHostPort(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}
	if c.APIURL == "" {
		return ErrMissingAPIURL
	}
	return nil
}

// isValidHostPort checks for a non-empty host and a port in 1-65535.
func isValidHostPort(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
