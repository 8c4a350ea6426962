package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Login(ctx context.Context) error
	List(ctx context.Context) error
	Create(ctx context.Context) error
	Delete(ctx context.Context) error
	SetStatus(ctx context.Context) error
	Refresh(ctx context.Context) error
	Contracts(ctx context.Context) error
	ImportContracts(ctx context.Context) error
}

// Root starts the interactive loop on stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("recibox (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, func() string { return string(a.Mode) }, scanner)
}

// runREPL reads a line, parses the first token as the command and dispatches
// to methods on 'a'. Unknown commands are reported back to the user. The
// loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers log
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("recibox> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn("Available commands: login, (l)ist, create, delete, status, refresh, contracts, import, exit")

		case "login":
			_ = a.Login(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "create":
			_ = a.Create(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "status":
			_ = a.SetStatus(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "contracts":
			_ = a.Contracts(ctx)

		case "import":
			_ = a.ImportContracts(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
