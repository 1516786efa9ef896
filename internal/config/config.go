// Package config loads settings from defaults, an optional TOML file, an
// optional .env file and DOMAINFINDER_* environment variables, in that order.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const envPrefix = "DOMAINFINDER_"

// ErrMissingAPIKey is returned when no generator API key can be found
var ErrMissingAPIKey = errors.New("generator API key not found")

// Config holds all runtime settings
type Config struct {
	CacheDir string `toml:"cache_dir" validate:"required"`
	LogDir   string `toml:"log_dir" validate:"required"`
	KeyFile  string `toml:"key_file"`

	APIURL      string        `toml:"api_url" validate:"required,url"`
	Model       string        `toml:"model" validate:"required"`
	HTTPTimeout time.Duration `toml:"http_timeout" validate:"gt=0s"`

	CandidateCount   int    `toml:"candidate_count" validate:"min=1,max=100"`
	TLD              string `toml:"tld" validate:"required,hostname_rfc1123"`
	DefaultMaxLength int    `toml:"default_max_length" validate:"min=4"`
	MaxRounds        int    `toml:"max_rounds" validate:"min=1"`

	BaseDelay    time.Duration `toml:"base_delay" validate:"gte=0s"`
	MaxRetries   int           `toml:"max_retries" validate:"min=1,max=10"`
	WhoisTimeout time.Duration `toml:"whois_timeout" validate:"gt=0s"`
	WhoisProxy   string        `toml:"whois_proxy" validate:"omitempty,url"`

	Debug bool `toml:"debug"`
}

// Default returns the built-in configuration
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".cache", "domainfinder")
	return &Config{
		CacheDir:         filepath.Join(base, "queries"),
		LogDir:           filepath.Join(base, "logs"),
		KeyFile:          filepath.Join(home, ".mingdaoai", "openai.key"),
		APIURL:           "https://api.openai.com/v1/chat/completions",
		Model:            "gpt-3.5-turbo",
		HTTPTimeout:      60 * time.Second,
		CandidateCount:   20,
		TLD:              "com",
		DefaultMaxLength: 30,
		MaxRounds:        10,
		BaseDelay:        time.Second,
		MaxRetries:       3,
		WhoisTimeout:     10 * time.Second,
	}
}

// DefaultPath is where Load looks when no path is given
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "domainfinder", "config.toml")
}

// Load builds the configuration. An explicit path must exist; the default
// path and the .env files are optional.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load config file %s", path)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load env file %s", f)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.CacheDir = expandHome(cfg.CacheDir)
	cfg.LogDir = expandHome(cfg.LogDir)
	cfg.KeyFile = expandHome(cfg.KeyFile)
	cfg.TLD = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cfg.TLD), "."))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"CACHE_DIR":   &cfg.CacheDir,
		"LOG_DIR":     &cfg.LogDir,
		"KEY_FILE":    &cfg.KeyFile,
		"API_URL":     &cfg.APIURL,
		"MODEL":       &cfg.Model,
		"TLD":         &cfg.TLD,
		"WHOIS_PROXY": &cfg.WhoisProxy,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CANDIDATES":         &cfg.CandidateCount,
		"DEFAULT_MAX_LENGTH": &cfg.DefaultMaxLength,
		"MAX_ROUNDS":         &cfg.MaxRounds,
		"MAX_RETRIES":        &cfg.MaxRetries,
	}
	for name, dst := range ints {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "parse %s%s", envPrefix, name)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"BASE_DELAY":    &cfg.BaseDelay,
		"WHOIS_TIMEOUT": &cfg.WhoisTimeout,
		"HTTP_TIMEOUT":  &cfg.HTTPTimeout,
	}
	for name, dst := range durations {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(err, "parse %s%s", envPrefix, name)
			}
			*dst = d
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "parse %sDEBUG", envPrefix)
		}
		cfg.Debug = b
	}
	return nil
}

// LoadAPIKey reads the key file, falling back to OPENAI_API_KEY.
func LoadAPIKey(cfg *Config) (string, error) {
	if cfg.KeyFile != "" {
		data, err := os.ReadFile(cfg.KeyFile)
		if err == nil {
			if key := strings.TrimSpace(string(data)); key != "" {
				return key, nil
			}
		} else if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "read key file %s", cfg.KeyFile)
		}
	}
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return key, nil
	}
	return "", ErrMissingAPIKey
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
