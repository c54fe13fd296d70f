package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Config reads and writes a JSON configuration file by dotted key path.
// Every read and write goes to disk, so several Config values pointing at
// the same file observe each other's changes.
type Config struct {
	path   string
	prefix string
}

// OpenConfig returns a Config for path. Keys are resolved below prefix when
// it is not empty. The file does not need to exist.
func OpenConfig(path, prefix string) *Config {
	return &Config{path: path, prefix: prefix}
}

// Path returns the file backing the configuration.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + "." + key
}

func (c *Config) read() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []byte("{}"), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in %s", c.path)
	}
	return data, nil
}

func (c *Config) write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.path, pretty.Pretty(data), 0644)
}

// Get returns the value at key.
func (c *Config) Get(key string) (gjson.Result, error) {
	data, err := c.read()
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.GetBytes(data, c.key(key)), nil
}

// GetString returns the string at key, or "" when missing or unreadable.
func (c *Config) GetString(key string) string {
	r, err := c.Get(key)
	if err != nil {
		log.Printf("config read failed: %v", err)
		return ""
	}
	return r.String()
}

// Set writes value at key, creating intermediate objects.
func (c *Config) Set(key string, value interface{}) error {
	data, err := c.read()
	if err != nil {
		return err
	}
	data, err = sjson.SetBytes(data, c.key(key), value)
	if err != nil {
		return fmt.Errorf("failed to set %s in %s: %w", key, c.path, err)
	}
	return c.write(data)
}

// SetRaw writes a raw JSON fragment at key.
func (c *Config) SetRaw(key, raw string) error {
	data, err := c.read()
	if err != nil {
		return err
	}
	data, err = sjson.SetRawBytes(data, c.key(key), []byte(raw))
	if err != nil {
		return fmt.Errorf("failed to set %s in %s: %w", key, c.path, err)
	}
	return c.write(data)
}

// Delete removes key.
func (c *Config) Delete(key string) error {
	data, err := c.read()
	if err != nil {
		return err
	}
	data, err = sjson.DeleteBytes(data, c.key(key))
	if err != nil {
		return fmt.Errorf("failed to delete %s in %s: %w", key, c.path, err)
	}
	return c.write(data)
}

// EscapeKey escapes path syntax characters so s is used as one key segment.
func EscapeKey(s string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(s)
}
