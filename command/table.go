// Package command is the explicit table of chat commands the host can run.
// Commands are registered and unregistered at runtime by name.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrEmptyName      = errors.New("command name cannot be empty")
	ErrInvalidName    = errors.New("command name cannot contain whitespace")
)

// Handler runs a command with its whitespace-separated arguments.
type Handler func(args []string) error

// Kind distinguishes built-in commands from user-defined ones.
type Kind int

const (
	KindBuiltin Kind = iota
	KindAlias
	KindScript
)

type entry struct {
	name    string
	kind    Kind
	usage   string
	handler Handler
}

// Info describes a registered command for completion and help output.
type Info struct {
	Name  string
	Kind  Kind
	Usage string
}

// Table maps command names to handlers. It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]entry)}
}

// NormalizeName trims whitespace and a leading slash and lowercases the name.
func NormalizeName(name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return strings.ToLower(name), nil
}

// Register adds or replaces the handler for name.
func (t *Table) Register(name string, kind Kind, usage string, h Handler) error {
	key, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("command %s: nil handler", key)
	}
	t.mu.Lock()
	t.entries[key] = entry{name: key, kind: kind, usage: usage, handler: h}
	t.mu.Unlock()
	return nil
}

// Unregister removes name and reports whether it was present.
func (t *Table) Unregister(name string) bool {
	key, err := NormalizeName(name)
	if err != nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[key]; !ok {
		return false
	}
	delete(t.entries, key)
	return true
}

// Lookup returns information about a registered command.
func (t *Table) Lookup(name string) (Info, bool) {
	key, err := NormalizeName(name)
	if err != nil {
		return Info{}, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key]
	if !ok {
		return Info{}, false
	}
	return Info{Name: e.name, Kind: e.kind, Usage: e.usage}, true
}

// Has reports whether name is registered.
func (t *Table) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// List returns all commands sorted by name.
func (t *Table) List() []Info {
	t.mu.RLock()
	out := make([]Info, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, Info{Name: e.name, Kind: e.kind, Usage: e.usage})
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Complete returns the names starting with prefix, sorted.
func (t *Table) Complete(prefix string) []string {
	prefix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(prefix), "/"))
	var out []string
	for _, info := range t.List() {
		if strings.HasPrefix(info.Name, prefix) {
			out = append(out, info.Name)
		}
	}
	return out
}

// Parse splits a chat line into a command name and its arguments. The leading
// slash is optional.
func Parse(line string) (string, []string, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", nil, ErrEmptyName
	}
	name, err := NormalizeName(fields[0])
	if err != nil {
		return "", nil, err
	}
	return name, fields[1:], nil
}

// Execute parses line and runs the matching handler. The handler runs without
// the table lock held, so it may register or unregister commands itself.
func (t *Table) Execute(line string) error {
	name, args, err := Parse(line)
	if err != nil {
		return err
	}
	t.mu.RLock()
	e, ok := t.entries[name]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: /%s", ErrUnknownCommand, name)
	}
	return e.handler(args)
}
