package config

import "fmt"

// ConfigErrorType classifies configuration failures.
type ConfigErrorType int

const (
	// ConfigInvalid means a config or .env file could not be read or decoded.
	ConfigInvalid ConfigErrorType = iota
	// ConfigValidationFailed means a value was decoded but is not acceptable.
	ConfigValidationFailed
	// ConfigEnvInvalid means an IONIC_* override could not be parsed.
	ConfigEnvInvalid
)

func (t ConfigErrorType) String() string {
	switch t {
	case ConfigInvalid:
		return "invalid"
	case ConfigValidationFailed:
		return "validation"
	case ConfigEnvInvalid:
		return "environment"
	default:
		return "unknown"
	}
}

// ConfigError reports a problem with one of the configuration sources.
// Source is a file path, or "environment" for variable overrides.
type ConfigError struct {
	Type    ConfigErrorType
	Source  string
	Key     string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config %s: %s", e.Source, e.Message)
	if e.Key != "" {
		msg = fmt.Sprintf("config %s: %s: %s", e.Source, e.Key, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// NewConfigErrorWithField reports an unacceptable value for key.
func NewConfigErrorWithField(typ ConfigErrorType, source, key, message string) *ConfigError {
	return &ConfigError{Type: typ, Source: source, Key: key, Message: message}
}

// NewConfigErrorWithCause wraps a failure reading source.
func NewConfigErrorWithCause(typ ConfigErrorType, source, message string, cause error) *ConfigError {
	return &ConfigError{Type: typ, Source: source, Message: message, Cause: cause}
}
