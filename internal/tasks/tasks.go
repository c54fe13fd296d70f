// Package tasks renders sequential named steps with optional byte progress.
package tasks

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
	"golang.org/x/text/width"
)

// Sink receives sequential steps. Starting a step ends the previous one.
type Sink interface {
	Next(msg string) *Task
	End()
}

// Chain writes steps to a stream. On a terminal the current line is redrawn
// as progress arrives; otherwise only step start and end lines are written.
type Chain struct {
	mu      sync.Mutex
	w       io.Writer
	tty     bool
	width   int
	current *Task
	now     func() time.Time
}

// NewChain creates a Chain writing to w. tty enables in-place redraws.
func NewChain(w io.Writer, tty bool) *Chain {
	width := 80
	if f, ok := w.(*os.File); ok && tty {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	return &Chain{w: w, tty: tty, width: width, now: time.Now}
}

// NewStdChain creates a Chain on stdout, detecting whether it is a terminal.
func NewStdChain() *Chain {
	return NewChain(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

// Task is one step of a Chain.
type Task struct {
	chain   *Chain
	msg     string
	started time.Time
	loaded  int64
	total   int64
	done    bool
}

// Next ends the current step and starts a new one.
func (c *Chain) Next(msg string) *Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endLocked()
	t := &Task{chain: c, msg: msg, started: c.now(), total: -1}
	c.current = t
	if c.tty {
		c.redrawLocked(t)
	} else {
		fmt.Fprintf(c.w, "> %s\n", msg)
	}
	return t
}

// End finishes the current step, if any.
func (c *Chain) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked()
}

func (c *Chain) endLocked() {
	t := c.current
	if t == nil || t.done {
		return
	}
	t.done = true
	c.current = nil

	elapsed := c.now().Sub(t.started).Round(time.Millisecond)
	line := fmt.Sprintf("%s - done! (%s)", t.msg, elapsed)
	if c.tty {
		fmt.Fprintf(c.w, "\r%s\r✓ %s\n", strings.Repeat(" ", c.width-1), line)
		return
	}
	fmt.Fprintf(c.w, "> %s\n", line)
}

func (c *Chain) redrawLocked(t *Task) {
	line, cols := truncate("- "+t.msg+t.progressSuffix(), c.width-1)
	fmt.Fprintf(c.w, "\r%s%s", line, strings.Repeat(" ", c.width-1-cols))
}

const resetColor = "\033[0m"

// truncate cuts s to at most max terminal columns and returns the result with
// its visible width. ANSI escape sequences take no columns and are never split;
// East Asian wide runes take two. A cut line ends with a color reset.
func truncate(s string, max int) (string, int) {
	var b strings.Builder
	cols := 0
	escaped := false
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape, escaped = true, true
			b.WriteRune(r)
			continue
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			b.WriteRune(r)
			continue
		}

		w := runeWidth(r)
		if cols+w > max {
			if escaped {
				b.WriteString(resetColor)
			}
			return b.String(), cols
		}
		b.WriteRune(r)
		cols += w
	}
	return b.String(), cols
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// Progress reports bytes processed so far. total is -1 when unknown.
func (t *Task) Progress(loaded, total int64) {
	c := t.chain
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.done {
		return
	}
	t.loaded, t.total = loaded, total
	if c.tty {
		c.redrawLocked(t)
	}
}

// Loaded returns the last reported byte count.
func (t *Task) Loaded() int64 {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	return t.loaded
}

func (t *Task) progressSuffix() string {
	if t.loaded <= 0 {
		return ""
	}
	if t.total > 0 {
		pct := float64(t.loaded) / float64(t.total) * 100
		return fmt.Sprintf(" %.0f%% (%s / %s)", pct, humanize.Bytes(uint64(t.loaded)), humanize.Bytes(uint64(t.total)))
	}
	return fmt.Sprintf(" (%s)", humanize.Bytes(uint64(t.loaded)))
}
