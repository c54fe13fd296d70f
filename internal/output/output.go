// Package output formats user-facing messages for the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

// Logger is the message sink used by the creation pipeline.
type Logger interface {
	// Info prints an informational message.
	Info(msg string)
	// Msg prints a plain message.
	Msg(msg string)
	// Warn prints a warning.
	Warn(msg string)
	// Error prints an error message to the error stream.
	Error(msg string)
	// Success prints a success message.
	Success(msg string)
	// Nl prints an empty line.
	Nl()
}

// Printer writes formatted messages to an output and an error stream.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	quiet   bool
	noColor bool
}

// NewPrinter creates a Printer for the given streams.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// NewStdPrinter creates a Printer on stdout/stderr. Colors are disabled when
// stdout is not a terminal.
func NewStdPrinter() *Printer {
	p := NewPrinter(os.Stdout, os.Stderr)
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		p.noColor = true
	}
	return p
}

// SetQuiet suppresses all non-error output.
func (p *Printer) SetQuiet(quiet bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quiet = quiet
}

// SetNoColor disables ANSI colors.
func (p *Printer) SetNoColor(noColor bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.noColor = noColor
}

// Colors returns the color helpers matching the printer settings.
func (p *Printer) Colors() Colors {
	p.mu.Lock()
	defer p.mu.Unlock()
	return NewColors(!p.noColor)
}

// Writer returns the standard output stream.
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) println(prefix, color, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}
	if prefix == "" {
		fmt.Fprintln(p.out, msg)
		return
	}
	if p.noColor || color == "" {
		fmt.Fprintf(p.out, "%s %s\n", prefix, msg)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", ansi.Color(prefix, color), msg)
}

// Info prints an informational message.
func (p *Printer) Info(msg string) {
	p.println("[INFO]", "cyan+b", msg)
}

// Msg prints a message without prefix.
func (p *Printer) Msg(msg string) {
	p.println("", "", msg)
}

// Success prints a success message.
func (p *Printer) Success(msg string) {
	p.println("✓", "green", msg)
}

// Warn prints a warning message.
func (p *Printer) Warn(msg string) {
	p.println("[WARN]", "yellow+b", msg)
}

// Error prints an error message. It is printed even in quiet mode.
func (p *Printer) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noColor {
		fmt.Fprintf(p.err, "[ERROR] %s\n", msg)
		return
	}
	fmt.Fprintf(p.err, "%s %s\n", ansi.Color("[ERROR]", "red+b"), msg)
}

// Nl prints an empty line.
func (p *Printer) Nl() {
	p.Msg("")
}

// Colors renders emphasis used throughout CLI messages.
type Colors struct {
	input   func(string) string
	strong  func(string) string
	weak    func(string) string
	failure func(string) string
}

func identity(s string) string { return s }

// NewColors returns color helpers; when enabled is false every helper is the identity.
func NewColors(enabled bool) Colors {
	if !enabled {
		return Colors{input: identity, strong: identity, weak: identity, failure: identity}
	}
	return Colors{
		input:   ansi.ColorFunc("green"),
		strong:  ansi.ColorFunc("+b"),
		weak:    ansi.ColorFunc("black+h"),
		failure: ansi.ColorFunc("red"),
	}
}

// Input highlights something the user can type.
func (c Colors) Input(s string) string { return c.input(s) }

// Strong emphasizes s.
func (c Colors) Strong(s string) string { return c.strong(s) }

// Weak de-emphasizes s.
func (c Colors) Weak(s string) string { return c.weak(s) }

// Failure renders s as an error.
func (c Colors) Failure(s string) string { return c.failure(s) }

// PrettyPath shortens an absolute path relative to the working directory or
// the home directory for display.
func PrettyPath(p string) string {
	if wd, err := os.Getwd(); err == nil {
		if p == wd {
			return "."
		}
		if strings.HasPrefix(p, wd+string(os.PathSeparator)) {
			return "." + string(os.PathSeparator) + strings.TrimPrefix(p, wd+string(os.PathSeparator))
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(p, home+string(os.PathSeparator)) {
		return "~" + strings.TrimPrefix(p, home)
	}
	return p
}

// Columnar lays out rows as left-aligned columns separated by two spaces.
func Columnar(rows [][]string) []string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := visibleLen(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-visibleLen(cell)+2))
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

// visibleLen counts runes outside ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}
