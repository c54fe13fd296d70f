package config

// Config represents the global CLI configuration stored in config.json.
type Config struct {
	// NpmClient is the package manager used for dependency installation (npm, yarn, pnpm).
	NpmClient string `mapstructure:"npmClient" json:"npmClient"`
	// URLs holds the remote endpoints used while creating projects.
	URLs URLConfig `mapstructure:"urls" json:"urls"`
	// HTTP holds transport settings.
	HTTP HTTPConfig `mapstructure:"http" json:"http"`
	// Tokens holds credentials for the app service.
	Tokens TokenConfig `mapstructure:"tokens" json:"tokens"`
	// CI is true when running in a continuous integration environment.
	CI bool `mapstructure:"-" json:"-"`
	// File is the path the configuration was read from.
	File string `mapstructure:"-" json:"-"`
}

// URLConfig represents remote endpoints.
type URLConfig struct {
	// API is the base URL of the app service (app lookup and linking).
	API string `mapstructure:"api" json:"api"`
	// Starters is the base URL of starter archives and the registry index.
	Starters string `mapstructure:"starters" json:"starters"`
	// Wizard is the base URL of the app creation wizard.
	Wizard string `mapstructure:"wizard" json:"wizard"`
}

// HTTPConfig represents transport settings.
type HTTPConfig struct {
	// Timeout is the request timeout in seconds for non-streaming requests.
	Timeout int `mapstructure:"timeout" json:"timeout"`
	// Proxy is an optional proxy URL.
	Proxy string `mapstructure:"proxy" json:"proxy,omitempty"`
}

// TokenConfig represents stored credentials.
type TokenConfig struct {
	// User is the bearer token for the app service.
	User string `mapstructure:"user" json:"user,omitempty"`
}

// Env holds environment overrides. It is parsed with caarlos0/env after an
// optional .env file in the config directory has been loaded.
type Env struct {
	ConfigDirectory string `env:"IONIC_CONFIG_DIRECTORY"`
	WizardURLBase   string `env:"START_WIZARD_URL_BASE"`
	StartersURL     string `env:"IONIC_STARTERS_URL"`
	APIURL          string `env:"IONIC_API_URL"`
	Token           string `env:"IONIC_TOKEN"`
	HTTPProxy       string `env:"IONIC_HTTP_PROXY"`
	NpmClient       string `env:"IONIC_NPM_CLIENT"`
	CI              bool   `env:"CI"`
}
