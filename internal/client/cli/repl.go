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
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	LoginGoogle(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	Ping(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Reload(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	AddEvent(ctx context.Context) error
	AddBlog(ctx context.Context) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Evento CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and dispatches to methods on 'a'; the remaining tokens are passed
// to commands that take arguments. The loop exits on scanner EOF or when
// the user types "exit" or "quit".
//
//	Not logged in:
//	  register, login, google, forgot, ping, help, exit
//
//	Logged in:
//	  (l)ist <collection>, show <collection> <id>, delete <collection> <id>,
//	  addevent, addblog, whoami, reload, ping, logout, logoutall, help, exit
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("evento> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: (l)ist, show, delete, addevent, addblog, whoami, reload, ping, logout, logoutall, exit")
				printlnFn("Collections:", strings.Join(collections, ", "))
			} else {
				printlnFn("Available commands: register, login, google, forgot, ping, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "google":
			_ = a.LoginGoogle(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "ping":
			_ = a.Ping(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "reload":
			_ = a.Reload(ctx)

		case "l", "list":
			_ = a.List(ctx, args)

		case "show":
			_ = a.Show(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "addevent":
			_ = a.AddEvent(ctx)

		case "addblog":
			_ = a.AddBlog(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "logoutall":
			_ = a.LogoutAll(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
