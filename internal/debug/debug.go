// Package debug provides namespaced debug logging for the CLI.
//
// Output is disabled unless SetDebug(true) is called (the --debug flag) or the
// DEBUG environment variable matches the logger namespace, e.g. DEBUG=ionstart:*.
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"
)

// Root is the namespace prefix shared by every logger.
const Root = "ionstart"

var (
	mu      sync.RWMutex
	enabled bool
	noColor bool
	out     io.Writer = os.Stderr
	pattern           = os.Getenv("DEBUG")
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
)

// SetDebug enables or disables debug output for every namespace.
func SetDebug(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
}

// IsEnabled reports whether debug output is globally enabled.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetNoColor enables or disables colored output
func SetNoColor(disable bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disable
}

// SetOutput redirects debug output. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Logger writes debug lines tagged with a namespace.
type Logger struct {
	namespace string
}

// New returns a logger for the given namespace below Root.
func New(namespace string) *Logger {
	return &Logger{namespace: Root + ":" + namespace}
}

// Namespace returns the full namespace of the logger.
func (l *Logger) Namespace() string {
	return l.namespace
}

// Enabled reports whether this logger currently emits output.
func (l *Logger) Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	if enabled {
		return true
	}
	return matchNamespace(pattern, l.namespace)
}

// Printf prints a debug message with timestamp
func (l *Logger) Printf(format string, args ...interface{}) {
	if !l.Enabled() {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Section prints a section header for debug output
func (l *Logger) Section(section string) {
	if !l.Enabled() {
		return
	}
	l.write("=== " + section + " ===")
}

// Value prints key=value style debug info
func (l *Logger) Value(key string, value interface{}) {
	if !l.Enabled() {
		return
	}
	l.write(fmt.Sprintf("%s = %v", key, value))
}

// JSON prints structured data as JSON for debugging
func (l *Logger) JSON(key string, v interface{}) {
	if !l.Enabled() {
		return
	}

	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		l.Printf("failed to marshal %s to JSON: %v", key, err)
		return
	}
	l.write(fmt.Sprintf("%s:\n%s", key, string(jsonBytes)))
}

func (l *Logger) write(msg string) {
	mu.RLock()
	useColor := !noColor
	w := out
	mu.RUnlock()

	timestamp := time.Now().Format("15:04:05.000")

	if useColor {
		fmt.Fprintf(w, "%s%s%s %s%s%s %s\n",
			colorCyan, l.namespace, colorReset, colorGray, timestamp, colorReset, msg)
	} else {
		fmt.Fprintf(w, "%s %s %s\n", l.namespace, timestamp, msg)
	}
}

// matchNamespace reports whether ns is selected by a comma separated list of
// glob patterns. A leading '-' excludes a namespace.
func matchNamespace(patterns, ns string) bool {
	if patterns == "" {
		return false
	}

	matched := false
	for _, p := range strings.Split(patterns, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		exclude := strings.HasPrefix(p, "-")
		p = strings.TrimPrefix(p, "-")
		// "ionstart*" should also select "ionstart:start"
		ok, err := path.Match(strings.ReplaceAll(p, ":", "/"), strings.ReplaceAll(ns, ":", "/"))
		if err != nil {
			continue
		}
		if !ok && strings.HasSuffix(p, "*") {
			ok = strings.HasPrefix(ns, strings.TrimSuffix(p, "*"))
		}
		if ok {
			if exclude {
				return false
			}
			matched = true
		}
	}
	return matched
}
