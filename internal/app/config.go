package app

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"spysignal/internal/crypto"
	"spysignal/internal/logging"
)

// Environment overrides, applied after the config file.
const (
	EnvHome       = "SPYSIGNAL_HOME"
	EnvRelayURL   = "SPYSIGNAL_RELAY_URL"
	EnvPassphrase = "SPYSIGNAL_PASSPHRASE"
	EnvLogLevel   = "SPYSIGNAL_LOG_LEVEL"
)

const configFilename = "config.yaml"

// Config holds runtime options for the client and the relay.
type Config struct {
	Home     string       `yaml:"home"`      // state directory, e.g. ~/.spysignal
	RelayURL string       `yaml:"relay_url"` // relay base URL, e.g. http://127.0.0.1:8000
	Crypto   CryptoConfig `yaml:"crypto"`
	Log      LogConfig    `yaml:"log"`
	Server   ServerConfig `yaml:"server"`

	// Passphrase wraps the identity file. It is only read from the
	// environment so it never lands in a config file.
	Passphrase string       `yaml:"-"`
	HTTP       *http.Client `yaml:"-"` // optional; defaults to http.DefaultClient
}

// CryptoConfig selects the X25519 backend and the shared key derivation.
type CryptoConfig struct {
	Provider string `yaml:"provider"`
	KDF      string `yaml:"kdf"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig is read by the relay only.
type ServerConfig struct {
	Listen         string  `yaml:"listen"`
	DBPath         string  `yaml:"db_path"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Home:     "~/.spysignal",
		RelayURL: "http://127.0.0.1:8000",
		Crypto:   CryptoConfig{Provider: crypto.ProviderXCrypto, KDF: string(crypto.KDFRaw)},
		Log:      LogConfig{Level: "info", Format: logging.FormatText},
		Server: ServerConfig{
			Listen:         ":8000",
			DBPath:         "spysignal.db",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment, in that order. With an empty path, config.yaml in the home
// directory is used if it exists.
func Load(path string) (Config, error) {
	return LoadFrom(path, "")
}

// LoadFrom is Load with an explicit home directory, as given by a command
// line flag. A non-empty home takes precedence over SPYSIGNAL_HOME both for
// locating config.yaml and in the returned Config.
func LoadFrom(path, home string) (Config, error) {
	cfg := DefaultConfig()
	if env := os.Getenv(EnvHome); env != "" {
		cfg.Home = env
	}
	if home != "" {
		cfg.Home = home
	}

	explicit := path != ""
	if !explicit {
		home, err := expandHome(cfg.Home)
		if err != nil {
			return Config{}, err
		}
		path = filepath.Join(home, configFilename)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: %w", err)
	}

	ApplyEnvOverrides(&cfg)
	if home != "" {
		cfg.Home = home
	}
	if cfg.Home, err = expandHome(cfg.Home); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnvOverrides copies set SPYSIGNAL_* variables into cfg.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}
	if v := os.Getenv(EnvRelayURL); v != "" {
		cfg.RelayURL = v
	}
	if v, ok := os.LookupEnv(EnvPassphrase); ok {
		cfg.Passphrase = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}

// Validate rejects settings the wiring cannot honour.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Home) == "" {
		return errors.New("config: home is required")
	}
	if _, err := crypto.ProviderByName(c.Crypto.Provider); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := crypto.ParseKDF(c.Crypto.KDF); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	u, err := url.Parse(c.RelayURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: relay_url %q must be an http(s) URL", c.RelayURL)
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return errors.New("config: rate limits must not be negative")
	}
	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve ~: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
