// Package javascript runs user scripts from the scripts directory. Scripts can
// print to chat, run commands, read the player position and register their own
// chat commands.
package javascript

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"pathkit/command"
	"pathkit/logging"
	"pathkit/typedef"
)

// DefaultTimeout bounds every call into a script.
const DefaultTimeout = 60 * time.Second

// ErrBusy is returned when a script tries to start another script, or when a
// second goroutine calls in while one is already running.
var ErrBusy = errors.New("a script is already running")

// Notifier shows a chat line to the user.
type Notifier interface {
	Chat(msg string)
}

// PositionSource reports where the player is standing.
type PositionSource interface {
	Position() typedef.Position
}

// Host owns the script runtimes. Only one script call runs at a time. Chat
// commands never wait for a script: they claim the host and hand the call to
// a worker goroutine, which reports through the Notifier.
type Host struct {
	mu       sync.Mutex
	workers  sync.WaitGroup
	dir      string
	table    *command.Table
	notify   Notifier
	position PositionSource
	timeout  time.Duration

	// commands registered by each script, so a rerun replaces them
	registered map[string][]string
}

// NewHost creates a host that loads scripts from dir.
func NewHost(dir string, table *command.Table, notify Notifier, position PositionSource) *Host {
	return &Host{
		dir:        dir,
		table:      table,
		notify:     notify,
		position:   position,
		timeout:    DefaultTimeout,
		registered: make(map[string][]string),
	}
}

// InstallCommands registers /runscript and /scripts.
func (h *Host) InstallCommands() error {
	if err := h.table.Register("runscript", command.KindBuiltin, "/runscript <name>", h.handleRun); err != nil {
		return err
	}
	return h.table.Register("scripts", command.KindBuiltin, "/scripts", h.handleList)
}

// List returns the names of the scripts in the scripts directory without
// their .js extension. The directory is created when missing.
func (h *Host) List() ([]string, error) {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".js") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Wait blocks until every script started from a chat command has finished.
func (h *Host) Wait() {
	h.workers.Wait()
}

// Run loads and executes the named script.
func (h *Host) Run(name string) (goja.Value, error) {
	if !h.mu.TryLock() {
		return nil, ErrBusy
	}
	defer h.mu.Unlock()
	return h.runLocked(name)
}

func (h *Host) runLocked(name string) (goja.Value, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".js")
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil, fmt.Errorf("invalid script name %q", name)
	}
	src, err := os.ReadFile(filepath.Join(h.dir, name+".js"))
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	return h.executeLocked(string(src), name)
}

// Execute runs src as the script scriptName. Commands the script registered on
// an earlier run are removed first.
func (h *Host) Execute(src, scriptName string) (goja.Value, error) {
	if !h.mu.TryLock() {
		return nil, ErrBusy
	}
	defer h.mu.Unlock()
	return h.executeLocked(src, scriptName)
}

func (h *Host) executeLocked(src, scriptName string) (goja.Value, error) {
	for _, name := range h.registered[scriptName] {
		h.table.Unregister(name)
	}
	delete(h.registered, scriptName)

	vm := goja.New()
	h.bind(vm, scriptName)

	val, err := h.call(vm, scriptName, func() (goja.Value, error) {
		return vm.RunString(src)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run script %s: %w", scriptName, err)
	}
	logging.Trace("script.run", map[string]interface{}{"script": scriptName, "commands": h.registered[scriptName]})
	return val, nil
}

// call runs fn on the script's VM, interrupting it after the host timeout.
func (h *Host) call(vm *goja.Runtime, scriptName string, fn func() (goja.Value, error)) (goja.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	type outcome struct {
		val goja.Value
		err error
	}
	resultCh := make(chan outcome, 1)

	go func() {
		val, err := fn()
		resultCh <- outcome{val, err}
	}()

	select {
	case <-ctx.Done():
		vm.Interrupt("timeout")
		<-resultCh
		vm.ClearInterrupt()
		return nil, fmt.Errorf("script %s timed out: %w", scriptName, ctx.Err())
	case res := <-resultCh:
		return res.val, res.err
	}
}

func (h *Host) bind(vm *goja.Runtime, scriptName string) {
	vm.Set("sprintf", fmt.Sprintf)
	vm.Set("println", func(args ...interface{}) {
		log.Printf("[SCRIPT %s] %s", scriptName, fmt.Sprint(args...))
	})
	vm.Set("chat", func(msg string) {
		h.notify.Chat(msg)
	})
	vm.Set("command", func(line string) error {
		return h.table.Execute(line)
	})
	vm.Set("player", func() map[string]float64 {
		p := h.position.Position()
		return map[string]float64{"x": p.X, "y": p.Y, "z": p.Z}
	})
	vm.Set("register", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			panic(vm.NewTypeError("register(name, fn): fn must be a function"))
		}
		if err := h.registerScriptCommand(vm, scriptName, name, fn); err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	})
}

func (h *Host) registerScriptCommand(vm *goja.Runtime, scriptName, name string, fn goja.Callable) error {
	norm, err := command.NormalizeName(name)
	if err != nil {
		return err
	}
	if info, ok := h.table.Lookup(norm); ok && info.Kind != command.KindScript {
		return fmt.Errorf("/%s is already a %s command", norm, kindName(info.Kind))
	}
	h.table.Unregister(norm)

	handler := func(args []string) error {
		if !h.mu.TryLock() {
			return ErrBusy
		}
		h.background(func() {
			_, err := h.call(vm, scriptName, func() (goja.Value, error) {
				return fn(goja.Undefined(), vm.ToValue(args))
			})
			if err != nil {
				err = fmt.Errorf("/%s (%s): %w", norm, scriptName, err)
				logging.Error(err)
				h.notify.Chat(err.Error())
			}
		})
		return nil
	}
	if err := h.table.Register(norm, command.KindScript, "/"+norm+" (script "+scriptName+")", handler); err != nil {
		return err
	}
	h.registered[scriptName] = append(h.registered[scriptName], norm)
	return nil
}

// background runs fn on a worker goroutine that releases the host lock the
// caller already holds.
func (h *Host) background(fn func()) {
	h.workers.Add(1)
	go func() {
		defer h.workers.Done()
		defer h.mu.Unlock()
		fn()
	}()
}

func kindName(k command.Kind) string {
	switch k {
	case command.KindAlias:
		return "alias"
	case command.KindScript:
		return "script"
	}
	return "built-in"
}

func (h *Host) handleRun(args []string) error {
	if len(args) != 1 {
		h.notify.Chat("Usage: /runscript <name>")
		return nil
	}
	if !h.mu.TryLock() {
		h.notify.Chat(ErrBusy.Error())
		return nil
	}
	name := args[0]
	h.background(func() {
		val, err := h.runLocked(name)
		if err != nil {
			logging.Error(err)
			h.notify.Chat(err.Error())
			return
		}
		if val != nil && !goja.IsUndefined(val) && !goja.IsNull(val) {
			h.notify.Chat(fmt.Sprintf("%s: %s", name, val.String()))
		}
	})
	return nil
}

func (h *Host) handleList([]string) error {
	names, err := h.List()
	if err != nil {
		h.notify.Chat(fmt.Sprintf("Failed to list scripts: %v", err))
		return nil
	}
	if len(names) == 0 {
		h.notify.Chat("No scripts in " + h.dir)
		return nil
	}
	h.notify.Chat("Scripts: " + strings.Join(names, ", "))
	return nil
}
