package alias

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pathkit/command"
)

type chatRecorder struct {
	lines []string
}

func (c *chatRecorder) Chat(msg string) { c.lines = append(c.lines, msg) }

func (c *chatRecorder) last() string {
	if len(c.lines) == 0 {
		return ""
	}
	return c.lines[len(c.lines)-1]
}

type sendRecorder struct {
	sent []string
	err  error
}

func (s *sendRecorder) SendCommand(line string) error {
	s.sent = append(s.sent, line)
	return s.err
}

type fixture struct {
	store  *Store
	table  *command.Table
	chat   *chatRecorder
	sender *sendRecorder
	file   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		table:  command.NewTable(),
		chat:   &chatRecorder{},
		sender: &sendRecorder{},
		file:   filepath.Join(t.TempDir(), "config", FileName),
	}
	f.store = NewStore(f.file, f.table, f.sender, f.chat)
	if err := f.store.InstallCommands(); err != nil {
		t.Fatalf("install: %v", err)
	}
	return f
}

func readAliases(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read alias file: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode alias file: %v\n%s", err, data)
	}
	return out
}

func TestLoadCreatesMissingFile(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	data, err := os.ReadFile(f.file)
	if err != nil || string(data) != "{}" {
		t.Fatalf("expected {} on disk, got %q (%v)", data, err)
	}
}

func TestLoadRewritesEmptyFile(t *testing.T) {
	f := newFixture(t)
	os.MkdirAll(filepath.Dir(f.file), 0o755)
	os.WriteFile(f.file, []byte("  \n"), 0o644)
	if err := f.store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	data, _ := os.ReadFile(f.file)
	if string(data) != "{}" {
		t.Fatalf("expected {} on disk, got %q", data)
	}
}

func TestLoadRegistersStoredAliases(t *testing.T) {
	f := newFixture(t)
	os.MkdirAll(filepath.Dir(f.file), 0o755)
	os.WriteFile(f.file, []byte(`{"home":"/warp home","makealias":"/nope"}`), 0o644)

	if err := f.store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := f.table.Execute("/home"); err != nil {
		t.Fatalf("execute alias: %v", err)
	}
	if len(f.sender.sent) != 1 || f.sender.sent[0] != "/warp home" {
		t.Fatalf("unexpected sent commands %v", f.sender.sent)
	}
	if info, _ := f.table.Lookup("makealias"); info.Kind != command.KindBuiltin {
		t.Fatalf("stored alias must not replace a built-in")
	}
	if !strings.Contains(f.chat.last(), "Skipping alias makealias") {
		t.Fatalf("expected skip notice, got %v", f.chat.lines)
	}
}

func TestLoadMalformedKeepsRegistrations(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Register("hi", "/say hello"); err != nil {
		t.Fatalf("register: %v", err)
	}
	os.WriteFile(f.file, []byte(`{"hi":`), 0o644)

	if err := f.store.Load(); err == nil {
		t.Fatalf("expected load error")
	}
	if !strings.HasPrefix(f.chat.last(), "Failed to load aliases:") {
		t.Fatalf("expected failure notice, got %q", f.chat.last())
	}
	if !f.table.Has("hi") {
		t.Fatalf("existing registration must survive a bad load")
	}
}

func TestMakeAliasScenario(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := f.table.Execute("/makealias hi /say hello"); err != nil {
		t.Fatalf("makealias: %v", err)
	}
	got := readAliases(t, f.file)
	if len(got) != 1 || got["hi"] != "/say hello" {
		t.Fatalf("unexpected file contents %v", got)
	}
	if f.chat.last() != "Alias hi created with command: /say hello" {
		t.Fatalf("unexpected message %q", f.chat.last())
	}

	if err := f.table.Execute("/hi"); err != nil {
		t.Fatalf("run alias: %v", err)
	}
	if len(f.sender.sent) != 1 || f.sender.sent[0] != "/say hello" {
		t.Fatalf("expected /say hello to be sent, got %v", f.sender.sent)
	}
}

func TestMakeAliasOverwrites(t *testing.T) {
	f := newFixture(t)
	f.table.Execute("/makealias hi /say hello")
	f.table.Execute("/makealias hi /say bye")
	if got := readAliases(t, f.file); got["hi"] != "/say bye" {
		t.Fatalf("expected last write to win, got %v", got)
	}
	f.table.Execute("/hi")
	if f.sender.sent[len(f.sender.sent)-1] != "/say bye" {
		t.Fatalf("alias should run the new command, got %v", f.sender.sent)
	}
}

func TestMakeAliasUsage(t *testing.T) {
	f := newFixture(t)
	f.table.Execute("/makealias lonely")
	if !strings.HasPrefix(f.chat.last(), "Usage: /makealias") {
		t.Fatalf("expected usage, got %q", f.chat.last())
	}
	if _, err := os.Stat(f.file); !os.IsNotExist(err) {
		t.Fatalf("usage error must not write the file")
	}
}

func TestMakeAliasRefusesBuiltin(t *testing.T) {
	f := newFixture(t)
	err := f.store.Register("deletealias", "/say gotcha")
	if !errors.Is(err, ErrShadows) {
		t.Fatalf("expected ErrShadows, got %v", err)
	}
}

func TestDeleteAlias(t *testing.T) {
	f := newFixture(t)
	f.table.Execute("/makealias hi /say hello")
	f.table.Execute("/makealias bye /say bye")

	f.table.Execute("/deletealias hi")
	if f.chat.last() != "Alias hi deleted." {
		t.Fatalf("unexpected message %q", f.chat.last())
	}
	got := readAliases(t, f.file)
	if _, ok := got["hi"]; ok || got["bye"] != "/say bye" {
		t.Fatalf("unexpected file contents %v", got)
	}
	if f.table.Has("hi") {
		t.Fatalf("deleted alias must be unregistered")
	}

	f.table.Execute("/deletealias hi")
	if f.chat.last() != "Alias hi does not exist." {
		t.Fatalf("unexpected message %q", f.chat.last())
	}
}

func TestListAliases(t *testing.T) {
	f := newFixture(t)
	f.table.Execute("/makealias hi /say hello")
	f.table.Execute("/listaliases")
	want := "Aliases: {\n  \"hi\": \"/say hello\"\n}"
	if f.chat.last() != want {
		t.Fatalf("unexpected listing %q", f.chat.last())
	}
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	f := newFixture(t)
	// A directory where the file should be makes every write fail.
	if err := os.MkdirAll(f.file, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f.table.Execute("/makealias hi /say hello")
	if !strings.Contains(f.chat.last(), ErrNotSaved.Error()) {
		t.Fatalf("expected not-saved notice, got %q", f.chat.last())
	}
	if cmd, ok := f.store.Lookup("hi"); !ok || cmd != "/say hello" {
		t.Fatalf("alias should remain in memory")
	}
}

func TestAliasSendFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("no client connected")
	f.table.Execute("/makealias hi /say hello")
	f.table.Execute("/hi")
	if f.chat.last() != "Failed to run alias hi: no client connected" {
		t.Fatalf("unexpected message %q", f.chat.last())
	}
}

func TestAliasRunsHostCommandsLocally(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("the game client bridge is disabled")
	f.table.Execute("/makealias la /listaliases")

	if err := f.table.Execute("/la"); err != nil {
		t.Fatalf("run alias: %v", err)
	}
	if len(f.sender.sent) != 0 {
		t.Fatalf("a host command must not reach the game client, sent %v", f.sender.sent)
	}
	if !strings.HasPrefix(f.chat.last(), "Aliases: {") {
		t.Fatalf("expected the alias listing, got %q", f.chat.last())
	}
}

func TestAliasChainsThroughOtherAliases(t *testing.T) {
	f := newFixture(t)
	f.table.Execute("/makealias home /warp home")
	f.table.Execute("/makealias h home")
	f.table.Execute("/h")
	if len(f.sender.sent) != 1 || f.sender.sent[0] != "/warp home" {
		t.Fatalf("expected the chained alias to send /warp home, got %v", f.sender.sent)
	}
}

func TestAliasLoopIsRefused(t *testing.T) {
	f := newFixture(t)
	f.table.Execute("/makealias me /me")
	f.table.Execute("/me")
	if f.chat.last() != "Failed to run alias me: alias runs itself: /me" {
		t.Fatalf("unexpected message %q", f.chat.last())
	}

	f.table.Execute("/makealias a /b")
	f.table.Execute("/makealias b /a")
	f.table.Execute("/a")
	if !strings.HasPrefix(f.chat.last(), "Failed to run alias a: alias runs itself") {
		t.Fatalf("unexpected message %q", f.chat.last())
	}
	if len(f.sender.sent) != 0 {
		t.Fatalf("looping aliases must not send anything, sent %v", f.sender.sent)
	}
}

func TestDeleteLeavesBuiltinWithSameName(t *testing.T) {
	f := newFixture(t)
	os.MkdirAll(filepath.Dir(f.file), 0o755)
	os.WriteFile(f.file, []byte(`{"scripts":"/say hi"}`), 0o644)
	if err := f.store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	builtinRuns := 0
	f.table.Register("scripts", command.KindBuiltin, "/scripts", func([]string) error {
		builtinRuns++
		return nil
	})

	f.table.Execute("/deletealias scripts")
	if f.chat.last() != "Alias scripts deleted." {
		t.Fatalf("unexpected message %q", f.chat.last())
	}
	info, ok := f.table.Lookup("scripts")
	if !ok || info.Kind != command.KindBuiltin {
		t.Fatalf("deleting the alias must keep the built-in, got %+v, %v", info, ok)
	}
	f.table.Execute("/scripts")
	if builtinRuns != 1 {
		t.Fatalf("built-in should still run, ran %d times", builtinRuns)
	}
}

func TestLoadSkipsAliasNamedLikeLaterBuiltin(t *testing.T) {
	f := newFixture(t)
	f.table.Register("paths", command.KindBuiltin, "/paths", func([]string) error { return nil })
	os.MkdirAll(filepath.Dir(f.file), 0o755)
	os.WriteFile(f.file, []byte(`{"paths":"/say hi"}`), 0o644)

	if err := f.store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := f.store.Lookup("paths"); ok {
		t.Fatalf("an alias shadowing a built-in must not be kept")
	}
	f.table.Execute("/listaliases")
	if f.chat.last() != "Aliases: {}" {
		t.Fatalf("unexpected listing %q", f.chat.last())
	}
}
