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
	Projects(ctx context.Context) error
	Apply(ctx context.Context, args []string) error
	Login(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Accept(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
}

const (
	publicHelp   = "Available commands: projects, apply [project-id | link], login, exit"
	operatorHelp = "Available commands: list, add, edit <id>, delete <id>, accept <id>, refresh, whoami, logout, projects, apply, exit"
)

// runREPL reads commands line by line and dispatches them to a.
//
// Operator commands are refused with a hint while nobody is signed in. The
// loop exits on scanner EOF or when the user types "exit" or "quit". Errors
// from handlers are not printed here; handlers report their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("hiredesk (%s)> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(operatorHelp)
			} else {
				printlnFn(publicHelp)
			}

		case "projects":
			_ = a.Projects(ctx)

		case "apply":
			_ = a.Apply(ctx, args)

		case "login":
			_ = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "l", "list", "add", "edit", "delete", "accept", "refresh", "logout", "whoami":
			if !a.isLoggedIn() {
				printlnFn("Please sign in first (login).")
				continue
			}
			runOperatorCommand(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func runOperatorCommand(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "l", "list":
		_ = a.List(ctx)
	case "add":
		_ = a.Add(ctx)
	case "edit":
		_ = a.Edit(ctx, args)
	case "delete":
		_ = a.Delete(ctx, args)
	case "accept":
		_ = a.Accept(ctx, args)
	case "refresh":
		_ = a.Refresh(ctx)
	case "logout":
		_ = a.Logout(ctx)
	case "whoami":
		_ = a.WhoAmI(ctx)
	}
}
