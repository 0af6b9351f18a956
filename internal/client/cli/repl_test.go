package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	unlocked bool
	calls    []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) isUnlocked() bool { return s.unlocked }
func (s *stubExec) touch()           {}
func (s *stubExec) autoLockIfIdle()  {}

func (s *stubExec) Setup(context.Context) error  { return s.record("setup") }
func (s *stubExec) Unlock(context.Context) error { return s.record("unlock") }
func (s *stubExec) Lock(context.Context) error   { return s.record("lock") }
func (s *stubExec) Reset(context.Context) error  { return s.record("reset") }

func (s *stubExec) Add(context.Context) error                  { return s.record("add") }
func (s *stubExec) Edit(_ context.Context, _ []string) error   { return s.record("edit") }
func (s *stubExec) List(context.Context) error                 { return s.record("list") }
func (s *stubExec) Starred(context.Context) error              { return s.record("starred") }
func (s *stubExec) Search(_ context.Context, _ []string) error { return s.record("search") }
func (s *stubExec) Show(_ context.Context, _ []string) error   { return s.record("show") }
func (s *stubExec) Star(_ context.Context, _ []string) error   { return s.record("star") }
func (s *stubExec) Delete(_ context.Context, _ []string) error { return s.record("delete") }

func (s *stubExec) AddNote(_ context.Context, _ []string) error { return s.record("addnote") }
func (s *stubExec) Notes(_ context.Context, _ []string) error   { return s.record("notes") }

func runWithInput(t *testing.T, stub *stubExec, input string) string {
	t.Helper()
	var out bytes.Buffer
	scanner := bufio.NewScanner(strings.NewReader(input))
	runREPL(context.Background(), stub, func() string { return "test" }, scanner, &out)
	return out.String()
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	stub := &stubExec{unlocked: true}

	runWithInput(t, stub, "add\nlist\nsearch jordan\nstar abc\nnotes abc\nlock\nexit\n")

	assert.Equal(t, []string{"add", "list", "search", "star", "notes", "lock"}, stub.calls)
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	stub := &stubExec{}

	out := runWithInput(t, stub, "frobnicate\nexit\n")

	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Empty(t, stub.calls)
}

func TestRunREPL_HelpDependsOnLockState(t *testing.T) {
	locked := runWithInput(t, &stubExec{unlocked: false}, "help\nexit\n")
	assert.Contains(t, locked, "setup, unlock")
	assert.NotContains(t, locked, "addnote")

	unlocked := runWithInput(t, &stubExec{unlocked: true}, "help\nexit\n")
	assert.Contains(t, unlocked, "addnote")
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	stub := &stubExec{}
	out := runWithInput(t, stub, "list\n") // no exit, scanner hits EOF

	assert.Equal(t, []string{"list"}, stub.calls)
	assert.NotContains(t, out, "Bye!")
}

func TestRunREPL_BlankLinesIgnored(t *testing.T) {
	stub := &stubExec{}
	runWithInput(t, stub, "\n\n   \nexit\n")
	assert.Empty(t, stub.calls)
}
