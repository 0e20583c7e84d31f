package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	CancelEdit(ctx context.Context) error
	DeleteUser(ctx context.Context, id string) error
	Go(ctx context.Context, path string) error
}

// runREPL starts a simple read–eval–print loop for the profile CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help              - show available commands
//	  - register          - create an account
//	  - login             - authenticate
//	  - go <path>         - navigate to a route
//	  - exit | quit       - leave the program
//
//	Logged in:
//	  - help              - show available commands
//	  - dashboard | users - list users
//	  - profile           - show the profile
//	  - edit              - edit the profile
//	  - cancel            - discard profile edits
//	  - deluser <id>      - delete a user
//	  - whoami            - show the signed-in user
//	  - go <path>         - navigate to a route
//	  - logout            - log out
//	  - exit | quit       - leave the program
//
// Handlers report their own errors; the loop only stops on exit, EOF or ctx.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("apex %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: dashboard, profile, edit, cancel, deluser <id>, whoami, go <path>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, go <path>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "dashboard", "users":
			_ = a.Dashboard(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "edit":
			_ = a.EditProfile(ctx)

		case "cancel":
			_ = a.CancelEdit(ctx)

		case "deluser":
			if len(args) == 0 {
				printlnFn("Usage: deluser <id>")
				continue
			}
			_ = a.DeleteUser(ctx, args[0])

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <path>")
				continue
			}
			_ = a.Go(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			// last line had no trailing newline
			return
		}
	}
}
