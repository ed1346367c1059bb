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
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error

	Events(ctx context.Context) error
	Buy(ctx context.Context, args []string) error
	MyEvents(ctx context.Context) error
	Form(ctx context.Context, args []string) error
	Matches(ctx context.Context) error
	Reveal(ctx context.Context, args []string) error
	Scan(ctx context.Context, args []string) error

	AdminEvents(ctx context.Context) error
	CreateEvent(ctx context.Context) error
	Watch(ctx context.Context, args []string) error
	StartMatching(ctx context.Context, args []string) error
	SendMatches(ctx context.Context, args []string) error
	FormURL(ctx context.Context, args []string) error
}

type access int

const (
	public access = iota
	member
	admin
)

const (
	helpLoggedOut = "Available commands: register, login, events, scan, exit"
	helpMember    = "Available commands: whoami, profile, events, buy, myevents, form, matches, reveal, scan, logout, exit"
	helpAdmin     = "Admin commands: adminevents, createevent, watch, startmatching, sendmatches, formurl"
)

// runREPL starts a simple read–eval–print loop for the Moonlight Match CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. Commands that need a session, or an admin
// session, are refused before any handler runs. Errors returned by handlers
// are printed and the loop continues. The loop exits on EOF, when ctx ends, or
// when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("mm %s> ", statusFn()))
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		need := public
		var run func() error

		switch cmd {
		case "help":
			printHelp(a)
			continue

		case "register":
			run = func() error { return a.Register(ctx) }
		case "login":
			run = func() error { return a.Login(ctx) }
		case "events":
			run = func() error { return a.Events(ctx) }
		case "scan":
			run = func() error { return a.Scan(ctx, args) }

		case "logout":
			need, run = member, func() error { return a.Logout(ctx) }
		case "whoami":
			need, run = member, func() error { return a.WhoAmI(ctx) }
		case "profile":
			need, run = member, func() error { return a.Profile(ctx) }
		case "buy":
			need, run = member, func() error { return a.Buy(ctx, args) }
		case "myevents":
			need, run = member, func() error { return a.MyEvents(ctx) }
		case "form":
			need, run = member, func() error { return a.Form(ctx, args) }
		case "matches":
			need, run = member, func() error { return a.Matches(ctx) }
		case "reveal":
			need, run = member, func() error { return a.Reveal(ctx, args) }

		case "adminevents":
			need, run = admin, func() error { return a.AdminEvents(ctx) }
		case "createevent":
			need, run = admin, func() error { return a.CreateEvent(ctx) }
		case "watch":
			need, run = admin, func() error { return a.Watch(ctx, args) }
		case "startmatching":
			need, run = admin, func() error { return a.StartMatching(ctx, args) }
		case "sendmatches":
			need, run = admin, func() error { return a.SendMatches(ctx, args) }
		case "formurl":
			need, run = admin, func() error { return a.FormURL(ctx, args) }

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if !permitted(a, need) {
			continue
		}
		if err := run(); err != nil {
			printlnFn("Error:", describe(err))
		}
	}
}

func permitted(a execIface, need access) bool {
	switch {
	case need >= member && !a.isLoggedIn():
		printlnFn("Please log in first.")
		return false
	case need == admin && !a.isAdmin():
		printlnFn("Admin access required.")
		return false
	default:
		return true
	}
}

func printHelp(a execIface) {
	if !a.isLoggedIn() {
		printlnFn(helpLoggedOut)
		return
	}
	printlnFn(helpMember)
	if a.isAdmin() {
		printlnFn(helpAdmin)
	}
}
