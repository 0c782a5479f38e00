package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a recording stub.
type execIface interface {
	List(ctx context.Context, col string) error
	Post(ctx context.Context, col, text string) error
	SetStatus(ctx context.Context, col, id, status string) error
	Delete(ctx context.Context, col, id string) error
	Retry(ctx context.Context, col, id string) error
	Refresh(ctx context.Context, col string) error
	State(ctx context.Context) error
}

const helpText = `Available commands:
  list <collection>                  show records
  post <collection> <text...>        create a record
  status <collection> <id> <status>  change a record's status
  delete <collection> <id>           remove a record
  retry <collection> <id>            resend a failed create
  refresh [collection]               reconcile with the remote
  state                              show every collection
  exit | quit`

// runREPL reads one command per line and dispatches it to a. Command errors
// are printed and the loop goes on. It returns on EOF, "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("parentlink%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "l", "list":
			if !want(args, 1, "list <collection>") {
				continue
			}
			err = a.List(ctx, args[0])

		case "post":
			if !want(args, 2, "post <collection> <text...>") {
				continue
			}
			err = a.Post(ctx, args[0], strings.Join(args[1:], " "))

		case "status":
			if !want(args, 3, "status <collection> <id> <status>") {
				continue
			}
			err = a.SetStatus(ctx, args[0], args[1], args[2])

		case "delete":
			if !want(args, 2, "delete <collection> <id>") {
				continue
			}
			err = a.Delete(ctx, args[0], args[1])

		case "retry":
			if !want(args, 2, "retry <collection> <id>") {
				continue
			}
			err = a.Retry(ctx, args[0], args[1])

		case "refresh":
			col := ""
			if len(args) > 0 {
				col = args[0]
			}
			err = a.Refresh(ctx, col)

		case "state":
			err = a.State(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

func want(args []string, n int, usage string) bool {
	if len(args) < n {
		printlnFn("Usage:", usage)
		return false
	}
	return true
}
