package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/visrec-datasets/internal/http"
	"github.com/handiism/visrec-datasets/internal/model"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/dnscache"
	"golang.org/x/time/rate"
)

// Settings holds all configuration options.
type Settings struct {
	// Storage settings
	TempBasePath string `json:"temp_base_path"`
	StagingPath  string `json:"staging_path"`
	PresetFile   string `json:"preset_file"`

	// Download settings
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`
	RequestTimeout         float64 `json:"request_timeout"`
	RequestsPerSecond      float64 `json:"requests_per_second"` // 0 means unlimited
	UserAgent              string  `json:"user_agent"`
	DNSCache               bool    `json:"dns_cache"`

	// Logging settings
	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"` // debug, info, warn, error

	// Proxy settings
	ProxyType    string `json:"proxy_type"` // none, system, manual
	ProxyAddress string `json:"proxy_address"`
	ProxyPort    int    `json:"proxy_port"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		TempBasePath: os.TempDir(),
		StagingPath:  model.DefaultStagingPath,

		MaxConcurrentDownloads: 2,
		DownloadMaxRetries:     3,
		DownloadRetryCooldown:  0.5,
		DownloadRetryExponent:  2.0,
		RequestTimeout:         http.DefaultTimeout.Seconds(),
		RequestsPerSecond:      4,
		UserAgent:              http.DefaultUserAgent,
		DNSCache:               true,

		LogLevel: "info",

		ProxyType: "system",
	}
}

// DefaultPath returns the settings file location under the user config
// directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "visrec-datasets.json"
	}
	return filepath.Join(dir, "visrec-datasets", "settings.json")
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if err := settings.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the downloader cannot work with.
func (s *Settings) Validate() error {
	if s.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads)
	}
	if s.DownloadMaxRetries < 1 {
		return fmt.Errorf("download_max_retries must be at least 1, got %d", s.DownloadMaxRetries)
	}
	if s.DownloadRetryCooldown < 0 || s.DownloadRetryExponent < 1 {
		return fmt.Errorf("invalid retry backoff (cooldown=%g, exponent=%g)", s.DownloadRetryCooldown, s.DownloadRetryExponent)
	}
	if s.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %g", s.RequestTimeout)
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative, got %g", s.RequestsPerSecond)
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	switch s.ProxyType {
	case "", "none", "system":
	case "manual":
		if s.ProxyAddress == "" || s.ProxyPort <= 0 {
			return fmt.Errorf("manual proxy needs proxy_address and proxy_port")
		}
	default:
		return fmt.Errorf("unknown proxy_type %q", s.ProxyType)
	}
	return nil
}

// ExpandPaths replaces a leading ~ in the path settings with the user's
// home directory.
func (s *Settings) ExpandPaths() error {
	for _, p := range []*string{&s.TempBasePath, &s.PresetFile, &s.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// ToPathConfig converts settings to PathConfig. An empty TempBasePath falls
// back to os.TempDir().
func (s *Settings) ToPathConfig() *model.PathConfig {
	base := s.TempBasePath
	if base == "" {
		base = os.TempDir()
	}
	return &model.PathConfig{
		BasePath:    base,
		StagingPath: s.StagingPath,
	}
}

// ClientOptions converts settings to options for http.NewClient.
func (s *Settings) ClientOptions() []http.Option {
	transport := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
	transport.Proxy = s.proxyFunc()

	opts := []http.Option{
		http.WithHTTPClient(&nethttp.Client{Transport: transport}),
		http.WithTimeout(time.Duration(s.RequestTimeout * float64(time.Second))),
		http.WithUserAgent(s.UserAgent),
	}
	if s.DNSCache {
		opts = append(opts, http.WithDNSCache(&dnscache.Resolver{}))
	}
	return opts
}

// RequestLimit returns the request rate for rate.NewLimiter.
func (s *Settings) RequestLimit() rate.Limit {
	if s.RequestsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(s.RequestsPerSecond)
}

func (s *Settings) proxyFunc() func(*nethttp.Request) (*url.URL, error) {
	switch s.ProxyType {
	case "none":
		return nil
	case "manual":
		addr := s.ProxyAddress
		if !strings.Contains(addr, "://") {
			addr = "http://" + addr
		}
		u, err := url.Parse(fmt.Sprintf("%s:%d", addr, s.ProxyPort))
		if err != nil {
			slog.Warn("invalid proxy address, connecting directly", "address", s.ProxyAddress, "error", err)
			return nil
		}
		return nethttp.ProxyURL(u)
	default:
		return nethttp.ProxyFromEnvironment
	}
}

// RetryBackoff returns the wait before retry number tries (zero based):
// DownloadRetryCooldown * DownloadRetryExponent^tries seconds.
func (s *Settings) RetryBackoff(tries int) time.Duration {
	cooldown := s.DownloadRetryCooldown
	for i := 0; i < tries; i++ {
		cooldown *= s.DownloadRetryExponent
	}
	return time.Duration(cooldown * float64(time.Second))
}
