package config

import (
	"fmt"
	"net/url"
	"slices"
)

// Validate validates the global configuration.
func Validate(cfg *Config) error {
	if !slices.Contains(SupportedNpmClients, cfg.NpmClient) {
		return NewConfigErrorWithField(ConfigValidationFailed, cfg.File, "npmClient",
			fmt.Sprintf("unsupported npm client %q (supported: %v)", cfg.NpmClient, SupportedNpmClients))
	}

	if cfg.HTTP.Timeout < 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, cfg.File, "http.timeout", "timeout cannot be negative")
	}

	urls := []struct {
		field string
		value string
	}{
		{"urls.api", cfg.URLs.API},
		{"urls.starters", cfg.URLs.Starters},
		{"urls.wizard", cfg.URLs.Wizard},
		{"http.proxy", cfg.HTTP.Proxy},
	}
	for _, u := range urls {
		if u.value == "" && u.field == "http.proxy" {
			continue
		}
		if err := validateBaseURL(u.value); err != nil {
			return NewConfigErrorWithField(ConfigValidationFailed, cfg.File, u.field, err.Error())
		}
	}

	return nil
}

// validateBaseURL requires an absolute http(s) URL.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host: %q", raw)
	}
	return nil
}
