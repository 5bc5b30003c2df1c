// Package config assembles a core.Config from defaults, an optional YAML
// file, .env files, the process environment and command-line overrides, in
// that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"weex/pkg/core"
)

// Environment variable names.
const (
	EnvAPIKey     = "WEEX_API_KEY"
	EnvSecretKey  = "WEEX_SECRET_KEY"
	EnvPassphrase = "WEEX_PASSPHRASE"
	EnvProxy      = "WEEX_PROXY"
	EnvBaseURL    = "WEEX_API_BASE_URL"
	EnvLogLevel   = "WEEX_LOG_LEVEL"
	EnvLocale     = "WEEX_LOCALE"
)

// Overrides carries values given on the command line. Zero values are ignored.
type Overrides struct {
	BaseURL  string
	Proxy    string
	Timeout  time.Duration
	LogLevel string
	Verbose  bool
}

// Options controls Load.
type Options struct {
	// ConfigFile is an optional YAML file. A missing file is an error only
	// when the path was given explicitly.
	ConfigFile string
	// EnvFiles are read best-effort; defaults to ".env".
	EnvFiles []string
	// Getenv reads the process environment; defaults to os.Getenv.
	Getenv    func(string) string
	Overrides Overrides
}

// Load builds and validates the configuration. Credentials are attached only
// when at least one credential variable is set, so unsigned commands run
// without them.
func Load(opts Options) (*core.Config, error) {
	cfg := core.DefaultConfig()

	if opts.ConfigFile != "" {
		if err := loadYAML(opts.ConfigFile, cfg); err != nil {
			return nil, err
		}
	}

	vars, err := newEnv(opts)
	if err != nil {
		return nil, err
	}

	key, secret, pass := vars.get(EnvAPIKey), vars.get(EnvSecretKey), vars.get(EnvPassphrase)
	if key != "" || secret != "" || pass != "" {
		cfg.WithCredentials(&core.Credentials{APIKey: key, SecretKey: secret, Passphrase: pass})
	}
	if v := vars.first(EnvProxy, "HTTPS_PROXY", "HTTP_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := vars.get(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := vars.get(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := vars.get(EnvLocale); v != "" {
		cfg.Locale = v
	}

	applyOverrides(cfg, opts.Overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *core.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &core.ConfigError{Field: "config_file", Reason: err.Error(), Err: err}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &core.ConfigError{Field: "config_file", Reason: fmt.Sprintf("decode yaml %s: %v", path, err), Err: err}
	}
	return nil
}

func applyOverrides(cfg *core.Config, o Overrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.Proxy != "" {
		cfg.Proxy = o.Proxy
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(o.LogLevel)
	}
	if o.Verbose {
		cfg.Verbose = true
	}
}

type env struct {
	getenv func(string) string
	dotenv map[string]string
}

func newEnv(opts Options) (*env, error) {
	e := &env{getenv: opts.Getenv, dotenv: map[string]string{}}
	if e.getenv == nil {
		e.getenv = os.Getenv
	}
	files := opts.EnvFiles
	if files == nil {
		files = []string{".env"}
	}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &core.ConfigError{Field: "env_file", Reason: fmt.Sprintf("read %s: %v", f, err), Err: err}
		}
		for k, v := range vals {
			if _, seen := e.dotenv[k]; !seen {
				e.dotenv[k] = v
			}
		}
	}
	return e, nil
}

// get prefers the process environment over .env values.
func (e *env) get(key string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(e.dotenv[key])
}

func (e *env) first(keys ...string) string {
	for _, k := range keys {
		if v := e.get(k); v != "" {
			return v
		}
	}
	return ""
}
