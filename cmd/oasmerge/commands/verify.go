package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/oasmerge/tree"
	"github.com/erraggy/oasmerge/verify"
	"github.com/spf13/pflag"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// Stdin is read when the verify command is given StdinFilePath. Tests replace it.
var Stdin io.Reader = os.Stdin

// VerifyFlags contains flags for the verify command.
type VerifyFlags struct {
	PointerKey string
	Quiet      bool
}

// SetupVerifyFlags creates and configures a FlagSet for the verify command.
func SetupVerifyFlags() (*pflag.FlagSet, *VerifyFlags) {
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	flags := &VerifyFlags{}

	fs.StringVar(&flags.PointerKey, "pointer-key", "$ref", "mapping key that marks a pointer")
	fs.BoolVarP(&flags.Quiet, "quiet", "q", false, "quiet mode: only report dangling pointers")

	fs.Usage = func() {
		out := Stderr
		Writef(out, "Usage: oasmerge verify [flags] <file|->\n\n")
		Writef(out, "Check that every internal pointer of a merged document resolves inside it.\n\n")
		Writef(out, "Flags:\n")
		fs.PrintDefaults()
		Writef(out, "\nExamples:\n")
		Writef(out, "  oasmerge verify openapi.yaml\n")
		Writef(out, "  oasmerge rewrite -q | oasmerge verify -\n")
	}
	return fs, flags
}

// HandleVerify executes the verify command.
func HandleVerify(args []string) error {
	fs, flags := SetupVerifyFlags()
	fs.SetOutput(Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("verify command requires exactly one file path")
	}

	path := fs.Arg(0)
	doc, err := readDocument(path)
	if err != nil {
		return err
	}

	report := verify.Document(doc, flags.PointerKey)
	for _, f := range report.Findings {
		Writef(Stdout, "%s\n", f)
	}
	if !flags.Quiet {
		name := path
		if path == StdinFilePath {
			name = "<stdin>"
		}
		Writef(Stderr, "Document: %s\n", name)
		Writef(Stderr, "Pointers: %d\n", report.Pointers)
		Writef(Stderr, "Dangling: %d\n", len(report.Findings))
	}
	return report.Err()
}

func readDocument(path string) (tree.Node, error) {
	var (
		data []byte
		err  error
	)
	if path == StdinFilePath {
		data, err = io.ReadAll(Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("commands: reading document: %w", err)
	}
	return tree.Parse(path, data)
}
