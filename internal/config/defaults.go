package config

import (
	"os"
	"path/filepath"
)

// Default values for the global configuration.
const (
	DefaultNpmClient   = "npm"
	DefaultAPIURL      = "https://api.ionicjs.com"
	DefaultStartersURL = "https://d2ql0qc7j8u4b2.cloudfront.net"
	DefaultWizardURL   = "https://ionicframework.com"
	DefaultHTTPTimeout = 30

	// ConfigFileName is the name of the global configuration file.
	ConfigFileName = "config.json"
	// DotenvFileName is loaded from the config directory before environment parsing.
	DotenvFileName = ".env"
)

// SupportedNpmClients lists the package managers the CLI knows how to drive.
var SupportedNpmClients = []string{"npm", "yarn", "pnpm"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		NpmClient: DefaultNpmClient,
		URLs: URLConfig{
			API:      DefaultAPIURL,
			Starters: DefaultStartersURL,
			Wizard:   DefaultWizardURL,
		},
		HTTP: HTTPConfig{
			Timeout: DefaultHTTPTimeout,
		},
	}
}

// DefaultConfigDir returns the default configuration directory (~/.ionic).
func DefaultConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ionic"
	}
	return filepath.Join(homeDir, ".ionic")
}
