package cli

import (
	"bufio"
	"context"
	"fmt"
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
	AddMood(ctx context.Context) error
	List(ctx context.Context) error
	Filter(ctx context.Context, arg string) error
	Feed(ctx context.Context) error
	DeleteMood(ctx context.Context) error
	EditMood(ctx context.Context) error
	Follow(ctx context.Context) error
	Requests(ctx context.Context) error
	Accept(ctx context.Context) error
	Decline(ctx context.Context) error
	AttachPhoto(ctx context.Context) error
	ShowPhoto(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the moodstream CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mood %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: addmood, (l)ist, filter, feed, edit, delete, follow, requests, accept, decline, photo, showphoto, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "addmood":
			_ = a.AddMood(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "filter":
			_ = a.Filter(ctx, arg)

		case "feed":
			_ = a.Feed(ctx)

		case "edit":
			_ = a.EditMood(ctx)

		case "delete":
			_ = a.DeleteMood(ctx)

		case "follow":
			_ = a.Follow(ctx)

		case "requests":
			_ = a.Requests(ctx)

		case "accept":
			_ = a.Accept(ctx)

		case "decline":
			_ = a.Decline(ctx)

		case "photo":
			_ = a.AttachPhoto(ctx)

		case "showphoto":
			_ = a.ShowPhoto(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
