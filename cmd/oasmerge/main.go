package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasmerge"
	"github.com/erraggy/oasmerge/cmd/oasmerge/commands"
	"github.com/erraggy/oasmerge/internal/mcpserver"
	"github.com/erraggy/oasmerge/oaserrors"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches one command and returns the process exit code.
func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	var err error
	switch command := args[0]; command {
	case "version", "--version":
		commands.Writef(commands.Stdout, "oasmerge v%s\n", oasmerge.Version())
		if len(args) > 1 && args[1] == "--verbose" {
			commands.Writef(commands.Stdout, "%s\n", oasmerge.BuildInfo())
		}
	case "help", "-h", "--help":
		printUsage()
	case "rewrite":
		err = commands.HandleRewrite(args[1:])
	case "inline":
		err = commands.HandleInline(args[1:])
	case "verify":
		err = commands.HandleVerify(args[1:])
	case "mcp":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = mcpserver.Run(ctx)
		stop()
	default:
		commands.Writef(commands.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		return 1
	}

	if err != nil {
		commands.Writef(commands.Stderr, "Error: %s\n", describe(err))
		return 1
	}
	return 0
}

// describe renders err as "<Kind>: <detail>", or the detail alone for
// errors of no particular kind.
func describe(err error) string {
	kind := oaserrors.Kind(err)
	if kind == "Error" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", kind, err)
}

func printUsage() {
	w := commands.Stderr
	commands.Writef(w, "oasmerge - reference-aware merger of OpenAPI fragments\n\n")
	commands.Writef(w, "Usage:\n")
	commands.Writef(w, "  oasmerge <command> [flags]\n\n")
	commands.Writef(w, "Commands:\n")
	commands.Writef(w, "  rewrite    Merge fragments, rewriting every pointer to the canonical root\n")
	commands.Writef(w, "  inline     Merge fragments, replacing every pointer with a copy of its target\n")
	commands.Writef(w, "  verify     Check that every pointer of a merged document resolves\n")
	commands.Writef(w, "  mcp        Serve merge and verify over MCP stdio\n")
	commands.Writef(w, "  version    Show version information\n")
	commands.Writef(w, "  help       Show this help message\n\n")
	commands.Writef(w, "Run 'oasmerge <command> --help' for more information on a command.\n")
}
