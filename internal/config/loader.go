package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader loads the global configuration from a config directory and the environment.
type Loader struct {
	// Dir overrides the configuration directory. When empty, IONIC_CONFIG_DIRECTORY
	// or ~/.ionic is used.
	Dir string
}

// NewLoader creates a Loader. dir may be empty.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// ParseEnv loads environment overrides into an Env.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, NewConfigErrorWithCause(ConfigEnvInvalid, "environment", "failed to parse environment", err)
	}
	return e, nil
}

// configDir resolves the configuration directory: the explicit Dir, then
// IONIC_CONFIG_DIRECTORY, then ~/.ionic.
func (l *Loader) configDir(e Env) string {
	if l.Dir != "" {
		return l.Dir
	}
	if e.ConfigDirectory != "" {
		return e.ConfigDirectory
	}
	return DefaultConfigDir()
}

// Load reads config.json (missing file means defaults), then applies
// environment overrides and validates the result.
func (l *Loader) Load() (*Config, error) {
	e, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	dir := l.configDir(e)

	// Values already present in the environment win over the .env file.
	dotenv := filepath.Join(dir, DotenvFileName)
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, NewConfigErrorWithCause(ConfigInvalid, dotenv, "failed to load .env file", err)
		}
		if e, err = ParseEnv(); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(dir, ConfigFileName)
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to read configuration file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "invalid configuration structure", err)
	}
	cfg.File = path

	applyEnv(cfg, e)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("npmClient", d.NpmClient)
	v.SetDefault("urls.api", d.URLs.API)
	v.SetDefault("urls.starters", d.URLs.Starters)
	v.SetDefault("urls.wizard", d.URLs.Wizard)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
}

func applyEnv(cfg *Config, e Env) {
	if e.WizardURLBase != "" {
		cfg.URLs.Wizard = e.WizardURLBase
	}
	if e.StartersURL != "" {
		cfg.URLs.Starters = e.StartersURL
	}
	if e.APIURL != "" {
		cfg.URLs.API = e.APIURL
	}
	if e.Token != "" {
		cfg.Tokens.User = e.Token
	}
	if e.HTTPProxy != "" {
		cfg.HTTP.Proxy = e.HTTPProxy
	}
	if e.NpmClient != "" {
		cfg.NpmClient = e.NpmClient
	}
	cfg.CI = e.CI
}
