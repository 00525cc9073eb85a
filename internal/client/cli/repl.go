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
	currentRoute() Route
	takeRedirect() (Route, bool)
	followRedirect(ctx context.Context, r Route) error
	Navigate(ctx context.Context, target string) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Receipts(ctx context.Context) error
	Types(ctx context.Context) error
	SelectType(ctx context.Context, name string) error
	Search(ctx context.Context, query string) error
	Page(ctx context.Context, arg string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Vote(ctx context.Context, arg string) error
	Confirm(ctx context.Context) error
	Cancel(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// runREPL starts a read–eval–print loop for the evote CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit". Before every prompt a pending redirect (the session
// expired) is followed.
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts:
//
//	Anywhere:
//	  - help                show available commands
//	  - home | results      open a public page
//	  - election            open the voting page (login required)
//	  - login | register    open the login or registration page
//	  - go <route>          open a page by route, e.g. "go /results"
//	  - whoami | receipts   profile and local vote history
//	  - logout              end the session
//	  - exit | quit         leave the program
//
//	Election and results pages:
//	  - types | type <name> list or switch election types
//	  - refresh             reload the page
//
//	Election page:
//	  - search [text]       filter candidates by name or party
//	  - page <n> | next | prev
//	  - vote <id>           choose a candidate
//	  - confirm | cancel    submit or drop the chosen vote
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if r, ok := a.takeRedirect(); ok {
			_ = a.followRedirect(ctx, r)
			continue
		}
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("evote %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText(a.currentRoute(), a.isLoggedIn()))

		case "home":
			_ = a.Navigate(ctx, string(RouteHome))

		case "results":
			_ = a.Navigate(ctx, string(RouteResults))

		case "election":
			_ = a.Navigate(ctx, string(RouteElection))

		case "login":
			_ = a.Navigate(ctx, string(RouteLogin))

		case "register":
			_ = a.Navigate(ctx, string(RouteRegistration))

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <route>")
				continue
			}
			_ = a.Navigate(ctx, args[0])

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "receipts":
			_ = a.Receipts(ctx)

		case "types":
			_ = a.Types(ctx)

		case "type":
			if len(args) == 0 {
				printlnFn("Usage: type <name>")
				continue
			}
			_ = a.SelectType(ctx, args[0])

		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "page":
			if len(args) == 0 {
				printlnFn("Usage: page <number>")
				continue
			}
			_ = a.Page(ctx, args[0])

		case "n", "next":
			_ = a.Next(ctx)

		case "p", "prev":
			_ = a.Prev(ctx)

		case "vote":
			if len(args) == 0 {
				printlnFn("Usage: vote <candidate id>")
				continue
			}
			_ = a.Vote(ctx, args[0])

		case "confirm":
			_ = a.Confirm(ctx)

		case "cancel":
			_ = a.Cancel(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
