package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source selects how page content is obtained.
type Source string

const (
	SourceFile    Source = "file"
	SourceHTTP    Source = "http"
	SourceBrowser Source = "browser"
)

// FetchErrorPolicy decides what a non-404 fetch error does to the run.
type FetchErrorPolicy string

const (
	// ContinueOnError records the page as failed and keeps walking.
	ContinueOnError FetchErrorPolicy = "continue"
	// AbortOnError stops the run; the process exits with status 2.
	AbortOnError FetchErrorPolicy = "abort"
)

var (
	errDirRequired      = errors.New("config: dir is required")
	errInvalidSource    = errors.New("config: source must be one of file, http, browser")
	errInvalidPolicy    = errors.New("config: on_fetch_error must be continue or abort")
	errInvalidBaseURL   = errors.New("config: base_url must be an absolute http(s) URL")
	errNegativeTimeout  = errors.New("config: fetch_timeout must not be negative")
	errInvalidRewrite   = errors.New("config: rewrite keys and values must not be empty")
	errInvalidLogFormat = errors.New("config: log_format must be json or text")
)

// Config holds all crawler configuration. Values are layered: defaults, then
// the YAML file, then environment variables, then command-line overrides.
type Config struct {
	// Dir is the generated-output directory to walk.
	Dir string `yaml:"dir"`
	// PathPrefix is the URL path the server mounts Dir under.
	PathPrefix string `yaml:"path_prefix"`
	// BaseURL is scheme and host of the server used by the http and browser sources.
	BaseURL string `yaml:"base_url"`
	Source  Source `yaml:"source"`

	// Blacklist holds relative-path prefixes (or doublestar globs) to skip.
	Blacklist []string `yaml:"blacklist"`
	// Rewrites maps a relative file path to the route used for the request.
	Rewrites map[string]string `yaml:"rewrites"`
	// ExtraRoutes have no backing file and are always fetched over the network.
	ExtraRoutes []string `yaml:"extra_routes"`
	// Checks names the checks to run. Empty means all of them.
	Checks []string `yaml:"checks"`

	OnFetchError FetchErrorPolicy `yaml:"on_fetch_error"`
	// FetchTimeout bounds one network fetch. Zero disables the timeout.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// AllowRemote lets the network sources dial non-loopback addresses.
	AllowRemote bool `yaml:"allow_remote"`

	// ServeAddr is the listen address of the preview server.
	ServeAddr string `yaml:"serve_addr"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	NoColor   bool   `yaml:"no_color"`
	JSON      bool   `yaml:"json"`
}

// Default returns the configuration used when nothing else is set. It matches
// a static site built into public/ and served under /blog on port 9000.
func Default() Config {
	return Config{
		Dir:          "public/blog",
		PathPrefix:   "/blog",
		BaseURL:      "http://localhost:9000",
		Source:       SourceFile,
		Rewrites:     map[string]string{},
		OnFetchError: ContinueOnError,
		FetchTimeout: 30 * time.Second,
		ServeAddr:    "localhost:9000",
		LogLevel:     "ERROR",
		LogFormat:    "json",
	}
}

// Load builds a Config from defaults, the optional YAML file at path, .env
// files and environment variables, then applies overrides in order and
// validates the result.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := loadEnvFiles(); err != nil {
		return cfg, err
	}
	cfg.applyEnv()

	for _, apply := range overrides {
		apply(&cfg)
	}

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return errDirRequired
	}

	switch c.Source {
	case SourceFile, SourceHTTP, SourceBrowser:
	default:
		return fmt.Errorf("%w: got %q", errInvalidSource, c.Source)
	}

	switch c.OnFetchError {
	case ContinueOnError, AbortOnError:
	default:
		return fmt.Errorf("%w: got %q", errInvalidPolicy, c.OnFetchError)
	}

	if c.NeedsNetwork() {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", errInvalidBaseURL, c.BaseURL)
		}
	}

	if c.FetchTimeout < 0 {
		return fmt.Errorf("%w: got %s", errNegativeTimeout, c.FetchTimeout)
	}

	for from, to := range c.Rewrites {
		if from == "" || to == "" {
			return fmt.Errorf("%w: %q -> %q", errInvalidRewrite, from, to)
		}
	}

	if c.LogFormat != "" && !strings.EqualFold(c.LogFormat, "json") && !strings.EqualFold(c.LogFormat, "text") {
		return fmt.Errorf("%w: got %q", errInvalidLogFormat, c.LogFormat)
	}

	return nil
}

// NeedsNetwork reports whether any page will be fetched from BaseURL.
func (c Config) NeedsNetwork() bool {
	return c.Source != SourceFile || len(c.ExtraRoutes) > 0
}

func (c *Config) applyEnv() {
	c.Dir = getEnv("SEOVERIFY_DIR", c.Dir)
	c.PathPrefix = getEnv("SEOVERIFY_PATH_PREFIX", c.PathPrefix)
	c.BaseURL = getEnv("SEOVERIFY_BASE_URL", c.BaseURL)
	c.Source = Source(getEnv("SEOVERIFY_SOURCE", string(c.Source)))
	c.Blacklist = getEnvAsList("SEOVERIFY_BLACKLIST", c.Blacklist)
	c.ExtraRoutes = getEnvAsList("SEOVERIFY_EXTRA_ROUTES", c.ExtraRoutes)
	c.Checks = getEnvAsList("SEOVERIFY_CHECKS", c.Checks)
	c.OnFetchError = FetchErrorPolicy(getEnv("SEOVERIFY_ON_FETCH_ERROR", string(c.OnFetchError)))
	c.FetchTimeout = getEnvAsDuration("SEOVERIFY_FETCH_TIMEOUT", c.FetchTimeout)
	c.AllowRemote = getEnvAsBool("SEOVERIFY_ALLOW_REMOTE", c.AllowRemote)
	c.ServeAddr = getEnv("SEOVERIFY_SERVE_ADDR", c.ServeAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// Variables already present in the environment are never overwritten.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("config: load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("config: load %s: %w", name, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return v
}

// getEnvAsList splits a comma-separated variable, dropping empty items.
func getEnvAsList(key string, fallback []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
