package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App implements it;
// tests use a stub.
type execIface interface {
	Help()
	Open(ctx context.Context, path string) error
	Search(ctx context.Context, q string) error
	Page(ctx context.Context, n string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Like(ctx context.Context, id string) error
	Unlike(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Logout(ctx context.Context) error
}

// pathCommands are shortcuts for open <path>.
var pathCommands = map[string]string{
	"home":     "/",
	"cards":    "/",
	"about":    "/about",
	"login":    "/login",
	"register": "/register",
	"signup":   "/register",
	"fav":      "/fav-cards",
	"mycards":  "/my-cards",
	"newcard":  "/my-cards/new",
	"profile":  "/profile",
}

// runREPL reads commands from reader until EOF, exit or quit, and
// dispatches them to a. Errors from handlers are not fatal: handlers
// report to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("bcards %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if path, ok := pathCommands[cmd]; ok {
			_ = a.Open(ctx, path)
			continue
		}

		switch cmd {
		case "help":
			a.Help()

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			_ = a.Open(ctx, "/card/"+args[0])

		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "page":
			if len(args) != 1 {
				printlnFn("Usage: page <number>")
				continue
			}
			_ = a.Page(ctx, args[0])

		case "next":
			_ = a.Next(ctx)

		case "prev":
			_ = a.Prev(ctx)

		case "like", "unlike", "delete":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "like":
				_ = a.Like(ctx, args[0])
			case "unlike":
				_ = a.Unlike(ctx, args[0])
			case "delete":
				_ = a.Delete(ctx, args[0])
			}

		case "logout", "signout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
