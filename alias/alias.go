// Package alias keeps user-defined command shorthands in a JSON file and
// exposes each one as a command in the host's command table.
package alias

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pathkit/command"
	"pathkit/logging"
	"pathkit/storage"
)

// FileName is the alias file inside the data directory.
const FileName = "aliases.json"

var (
	ErrNotFound = errors.New("alias does not exist")
	ErrShadows  = errors.New("alias would replace a built-in command")
	ErrNoTarget = errors.New("alias command cannot be empty")
	ErrNotSaved = errors.New("alias file not updated")
	ErrLoop     = errors.New("alias runs itself")
)

// Notifier shows a chat message to the user.
type Notifier interface {
	Chat(msg string)
}

// Sender hands an alias's command line to the game client when the host has
// no command by that name.
type Sender interface {
	SendCommand(line string) error
}

// Store is the in-memory alias mapping plus its backing file. Every mutation
// rewrites the whole file.
type Store struct {
	mu      sync.Mutex
	file    string
	aliases map[string]string
	table   *command.Table
	sender  Sender
	notify  Notifier
}

// NewStore creates a store; call Load and InstallCommands before use.
func NewStore(file string, table *command.Table, sender Sender, notify Notifier) *Store {
	return &Store{
		file:    file,
		aliases: make(map[string]string),
		table:   table,
		sender:  sender,
		notify:  notify,
	}
}

// InstallCommands registers /makealias, /deletealias and /listaliases.
func (s *Store) InstallCommands() error {
	builtins := []struct {
		name  string
		usage string
		h     command.Handler
	}{
		{"makealias", "/makealias aliasName command [argument1 argument2 ...]", s.handleMake},
		{"deletealias", "/deletealias aliasName", s.handleDelete},
		{"listaliases", "/listaliases", s.handleList},
	}
	for _, b := range builtins {
		if err := s.table.Register(b.name, command.KindBuiltin, b.usage, b.h); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the alias file and registers every alias it contains. A missing
// file is created as {} and an empty one is rewritten as {}. When the file
// cannot be parsed the error is reported and current registrations are kept.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.file)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(s.file), 0o755); err != nil {
			return s.loadFailed(err)
		}
		if err := storage.WriteFileAtomic(s.file, []byte("{}"), 0o644); err != nil {
			return s.loadFailed(err)
		}
		data = []byte("{}")
	} else if err != nil {
		return s.loadFailed(err)
	}

	if strings.TrimSpace(string(data)) == "" {
		if err := storage.WriteFileAtomic(s.file, []byte("{}"), 0o644); err != nil {
			return s.loadFailed(err)
		}
		data = []byte("{}")
	}

	var parsed map[string]string
	if err := json.Unmarshal(data, &parsed); err != nil {
		return s.loadFailed(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for rawName, cmd := range parsed {
		name, err := command.NormalizeName(rawName)
		if err != nil {
			s.notify.Chat(fmt.Sprintf("Skipping alias %q: %v", rawName, err))
			continue
		}
		if err := s.bindLocked(name, cmd); err != nil {
			s.notify.Chat(fmt.Sprintf("Skipping alias %s: %v", name, err))
			continue
		}
		s.aliases[name] = cmd
	}
	logging.Debugf("loaded %d aliases from %s", len(s.aliases), s.file)
	return nil
}

func (s *Store) loadFailed(err error) error {
	s.notify.Chat(fmt.Sprintf("Failed to load aliases: %v", err))
	return fmt.Errorf("load aliases: %w", err)
}

// Register stores name -> cmd, persists the whole mapping and exposes /name.
// The alias stays registered in memory even when the file write fails; the
// write error is returned.
func (s *Store) Register(name, cmd string) error {
	key, err := command.NormalizeName(name)
	if err != nil {
		return err
	}
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return ErrNoTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.bindLocked(key, cmd); err != nil {
		return err
	}
	s.aliases[key] = cmd
	return s.persistLocked()
}

// Delete removes an alias, persists the mapping and unregisters /name.
func (s *Store) Delete(name string) error {
	key, err := command.NormalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.aliases[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(s.aliases, key)
	if info, ok := s.table.Lookup(key); ok && info.Kind == command.KindAlias {
		s.table.Unregister(key)
	}
	return s.persistLocked()
}

// Lookup returns the command bound to name.
func (s *Store) Lookup(name string) (string, bool) {
	key, err := command.NormalizeName(name)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, ok := s.aliases[key]
	return cmd, ok
}

// List renders the mapping as two-space indented JSON.
func (s *Store) List() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(s.aliases, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// bindLocked registers the command for an alias, refusing to replace anything
// that is not itself an alias.
func (s *Store) bindLocked(name, cmd string) error {
	if info, ok := s.table.Lookup(name); ok && info.Kind != command.KindAlias {
		return fmt.Errorf("%w: /%s", ErrShadows, name)
	}
	return s.table.Register(name, command.KindAlias, "/"+name, func([]string) error {
		if err := s.run(name, cmd); err != nil {
			s.notify.Chat(fmt.Sprintf("Failed to run alias %s: %v", name, err))
		}
		return nil
	})
}

// run executes cmd for the alias name. Commands the host knows run locally;
// anything else goes to the game client.
func (s *Store) run(name, cmd string) error {
	if err := s.checkLoop(name); err != nil {
		return err
	}
	err := s.table.Execute(cmd)
	if !errors.Is(err, command.ErrUnknownCommand) {
		return err
	}
	return s.sender.SendCommand(cmd)
}

// checkLoop follows alias-to-alias links from name and fails when the chain
// comes back to an alias it already visited.
func (s *Store) checkLoop(name string) error {
	seen := make(map[string]bool)
	for {
		if seen[name] {
			return fmt.Errorf("%w: /%s", ErrLoop, name)
		}
		seen[name] = true
		cmd, ok := s.Lookup(name)
		if !ok {
			return nil
		}
		next, _, err := command.Parse(cmd)
		if err != nil {
			return nil
		}
		name = next
	}
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.aliases, "", "  ")
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(s.file, data, 0o644); err != nil {
		logging.Error(err)
		return fmt.Errorf("%w: %v", ErrNotSaved, err)
	}
	return nil
}

func (s *Store) handleMake(args []string) error {
	if len(args) < 2 {
		s.notify.Chat("Usage: /makealias aliasName command [argument1 argument2 ...]")
		return nil
	}
	name := args[0]
	cmd := strings.Join(args[1:], " ")
	err := s.Register(name, cmd)
	switch {
	case errors.Is(err, ErrNotSaved):
		s.notify.Chat(fmt.Sprintf("Alias %s created with command: %s (%v)", name, cmd, err))
		return nil
	case err != nil:
		s.notify.Chat(fmt.Sprintf("Failed to create alias: %v", err))
		return nil
	}
	s.notify.Chat(fmt.Sprintf("Alias %s created with command: %s", name, cmd))
	return nil
}

func (s *Store) handleDelete(args []string) error {
	if len(args) < 1 {
		s.notify.Chat("Usage: /deletealias aliasName")
		return nil
	}
	name := args[0]
	err := s.Delete(name)
	switch {
	case errors.Is(err, ErrNotFound):
		s.notify.Chat(fmt.Sprintf("Alias %s does not exist.", name))
	case errors.Is(err, ErrNotSaved):
		s.notify.Chat(fmt.Sprintf("Alias %s deleted. (%v)", name, err))
	case err != nil:
		s.notify.Chat(fmt.Sprintf("Failed to delete alias: %v", err))
	default:
		s.notify.Chat(fmt.Sprintf("Alias %s deleted.", name))
	}
	return nil
}

func (s *Store) handleList([]string) error {
	out, err := s.List()
	if err != nil {
		s.notify.Chat(fmt.Sprintf("Failed to load aliases: %v", err))
		return nil
	}
	s.notify.Chat("Aliases: " + out)
	return nil
}
