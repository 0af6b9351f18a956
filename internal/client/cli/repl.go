package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests provide a stub.
type execIface interface {
	isUnlocked() bool
	touch()
	autoLockIfIdle()

	Setup(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	Reset(ctx context.Context) error

	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Starred(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Star(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	AddNote(ctx context.Context, args []string) error
	Notes(ctx context.Context, args []string) error
}

// runREPL reads a line, parses the first token as the command and dispatches
// to methods on 'a'. Unknown commands are reported back to the user. The
// loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and swallowed; the loop
// stays alive across failing commands.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, w io.Writer) {
	for {
		fmt.Fprintf(w, "rm (%s)> ", statusFn())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		a.autoLockIfIdle()

		var err error
		switch cmd {
		case "help":
			if a.isUnlocked() {
				fmt.Fprintln(w, "Available commands: add, edit, (l)ist, starred, search, show, star, addnote, notes, delete, lock, reset, exit")
			} else {
				fmt.Fprintln(w, "Available commands: setup, unlock, reset, exit")
			}

		case "setup":
			err = a.Setup(ctx)

		case "unlock":
			err = a.Unlock(ctx)

		case "lock":
			err = a.Lock(ctx)

		case "reset":
			err = a.Reset(ctx)

		case "add":
			err = a.Add(ctx)

		case "edit":
			err = a.Edit(ctx, args)

		case "l", "list":
			err = a.List(ctx)

		case "starred":
			err = a.Starred(ctx)

		case "search":
			err = a.Search(ctx, args)

		case "show":
			err = a.Show(ctx, args)

		case "star":
			err = a.Star(ctx, args)

		case "addnote":
			err = a.AddNote(ctx, args)

		case "notes":
			err = a.Notes(ctx, args)

		case "delete":
			err = a.Delete(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
		a.touch()
	}
}
