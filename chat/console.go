package chat

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"pathkit/command"
	"pathkit/logging"
)

const maxHistory = 50

// Sender hands a command line to the game client.
type Sender interface {
	SendCommand(line string) error
}

// Console is the single-line chat input. It is driven from the UI thread.
type Console struct {
	open    bool
	buf     []rune
	history []string
	// index into history while browsing, len(history) when not browsing
	cursor int
}

// Open shows the console with initial text, e.g. "/" when opened with the
// slash key.
func (c *Console) Open(initial string) {
	c.open = true
	c.buf = []rune(initial)
	c.cursor = len(c.history)
}

// Close hides the console and discards the current line.
func (c *Console) Close() {
	c.open = false
	c.buf = c.buf[:0]
}

// IsOpen reports whether the console is showing.
func (c *Console) IsOpen() bool {
	return c.open
}

// Text returns the current line.
func (c *Console) Text() string {
	return string(c.buf)
}

// Insert appends typed characters, ignoring control characters.
func (c *Console) Insert(rs []rune) {
	for _, r := range rs {
		if r < 0x20 || r == 0x7f || r == utf8.RuneError {
			continue
		}
		c.buf = append(c.buf, r)
	}
}

// Backspace removes the last character.
func (c *Console) Backspace() {
	if len(c.buf) > 0 {
		c.buf = c.buf[:len(c.buf)-1]
	}
}

// Previous replaces the line with the previous history entry.
func (c *Console) Previous() {
	if c.cursor > 0 {
		c.cursor--
		c.buf = []rune(c.history[c.cursor])
	}
}

// Next moves forward through history, ending on an empty line.
func (c *Console) Next() {
	if c.cursor >= len(c.history) {
		return
	}
	c.cursor++
	if c.cursor == len(c.history) {
		c.buf = c.buf[:0]
		return
	}
	c.buf = []rune(c.history[c.cursor])
}

// Complete extends a command name typed at the start of the line. A unique
// match is completed with a trailing space; several matches are extended to
// their common prefix and returned.
func (c *Console) Complete(table *command.Table) []string {
	line := string(c.buf)
	if !strings.HasPrefix(line, "/") || strings.ContainsAny(line, " \t") {
		return nil
	}
	matches := table.Complete(strings.TrimPrefix(line, "/"))
	switch len(matches) {
	case 0:
		return nil
	case 1:
		c.buf = []rune("/" + matches[0] + " ")
		return nil
	}
	c.buf = []rune("/" + commonPrefix(matches))
	return matches
}

func commonPrefix(words []string) string {
	prefix := []rune(words[0])
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, string(prefix)) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return string(prefix)
}

// Submit closes the console and returns the entered line, recording it in
// history when it is not blank.
func (c *Console) Submit() string {
	line := strings.TrimSpace(string(c.buf))
	c.Close()
	if line != "" && (len(c.history) == 0 || c.history[len(c.history)-1] != line) {
		c.history = append(c.history, line)
		if over := len(c.history) - maxHistory; over > 0 {
			c.history = c.history[over:]
		}
	}
	c.cursor = len(c.history)
	return line
}

// Run executes a submitted line. Commands go through table; commands it does
// not know are handed to the game client through fallback when one is given.
// Plain text is echoed locally.
func Run(line string, table *command.Table, fallback Sender, notify Notifier) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !strings.HasPrefix(line, "/") {
		notify.Chat("> " + line)
		return
	}

	err := table.Execute(line)
	if errors.Is(err, command.ErrUnknownCommand) && fallback != nil {
		if ferr := fallback.SendCommand(line); ferr == nil {
			return
		}
	}
	if err != nil {
		logging.Debugf("command %q: %v", line, err)
		if errors.Is(err, command.ErrUnknownCommand) {
			name, _, _ := command.Parse(line)
			notify.Chat(fmt.Sprintf("Unknown command: /%s", name))
			return
		}
		notify.Chat(err.Error())
	}
}
