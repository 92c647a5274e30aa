package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/erraggy/oasmerge"
	"github.com/erraggy/oasmerge/assembler"
	"github.com/erraggy/oasmerge/config"
	"github.com/erraggy/oasmerge/document"
	"github.com/erraggy/oasmerge/merger"
	"github.com/spf13/pflag"
)

// MergeFlags contains flags for the rewrite and inline commands.
type MergeFlags struct {
	Config         string
	Dir            string
	Output         string
	Format         string
	SchemaStrategy string
	RouteStrategy  string
	Root           string
	Title          string
	APIVersion     string
	Verify         bool
	OmitNamespace  bool
	MaxDepth       int
	Quiet          bool
	Verbose        bool
}

// SetupMergeFlags creates the FlagSet for the command running mode.
// The inline-only flags are registered for ModeInline alone.
func SetupMergeFlags(mode merger.Mode) (*pflag.FlagSet, *MergeFlags) {
	name := string(mode)
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags := &MergeFlags{}

	fs.StringVarP(&flags.Config, "config", "c", "", "merge configuration file (JSON, JSONC or YAML; default: built-in Vault Hub layout)")
	fs.StringVarP(&flags.Dir, "dir", "d", "", "directory fragment names are relative to (overrides the configuration)")
	fs.StringVarP(&flags.Output, "output", "o", "", "output file path (default: stdout)")
	fs.StringVarP(&flags.Format, "format", "f", "", "output format: yaml or json (default: from configuration)")
	fs.StringVar(&flags.SchemaStrategy, "schema-strategy", "", "collision strategy for definitions (accept-left, accept-right, fail)")
	fs.StringVar(&flags.RouteStrategy, "route-strategy", "", "collision strategy for routes (accept-left, accept-right, fail)")
	fs.StringVar(&flags.Root, "root", "", "canonical namespace root, e.g. #/components/schemas/")
	fs.StringVar(&flags.Title, "title", "", "info.title of the merged document")
	fs.StringVar(&flags.APIVersion, "api-version", "", "info.version of the merged document")
	fs.BoolVar(&flags.Verify, "verify", false, "check that every pointer of the merged document resolves")
	if mode == merger.ModeInline {
		fs.BoolVar(&flags.OmitNamespace, "omit-namespace", false, "leave the expanded definitions out of the document")
		fs.IntVar(&flags.MaxDepth, "max-depth", 0, "maximum nested pointer expansion depth (default: from configuration)")
	}
	fs.BoolVarP(&flags.Quiet, "quiet", "q", false, "quiet mode: suppress diagnostic messages (for pipelining)")
	fs.BoolVarP(&flags.Verbose, "verbose", "v", false, "log every fragment and pointer decision")

	fs.Usage = func() {
		out := Stderr
		if mode == merger.ModeInline {
			Writef(out, "Usage: oasmerge inline [flags]\n\n")
			Writef(out, "Merge fragments and replace every pointer with a copy of its target.\n\n")
		} else {
			Writef(out, "Usage: oasmerge rewrite [flags]\n\n")
			Writef(out, "Merge fragments and rewrite every pointer to the canonical root.\n\n")
		}
		Writef(out, "Flags:\n")
		fs.PrintDefaults()
		Writef(out, "\nCollision Strategies:\n")
		Writef(out, "  accept-left      Keep the first definition or route\n")
		Writef(out, "  accept-right     Keep the last definition or route (overwrite)\n")
		Writef(out, "  fail             Fail with a NameCollision error (default)\n")
		Writef(out, "\nExamples:\n")
		Writef(out, "  oasmerge %s -d api -o openapi.yaml\n", name)
		Writef(out, "  oasmerge %s -c merge.jsonc --format json --verify\n", name)
		if mode == merger.ModeInline {
			Writef(out, "  oasmerge inline --omit-namespace -q | oasmerge verify -\n")
		}
		Writef(out, "\nNotes:\n")
		Writef(out, "  - Absent or empty fragments are skipped\n")
		Writef(out, "  - When -o is specified, the file is written atomically with permissions 0600\n")
	}

	return fs, flags
}

// HandleRewrite executes the rewrite command.
func HandleRewrite(args []string) error {
	return handleMerge(merger.ModeRewrite, args)
}

// HandleInline executes the inline command.
func HandleInline(args []string) error {
	return handleMerge(merger.ModeInline, args)
}

func handleMerge(mode merger.Mode, args []string) error {
	fs, flags := SetupMergeFlags(mode)
	fs.SetOutput(Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("%s command takes no arguments, got %q", mode, fs.Args())
	}

	if err := ValidateCollisionStrategy("schema-strategy", flags.SchemaStrategy); err != nil {
		return err
	}
	if err := ValidateCollisionStrategy("route-strategy", flags.RouteStrategy); err != nil {
		return err
	}

	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	if flags.Output != "" {
		if err := ValidateOutputPath(flags.Output, inputPaths(cfg, flags.Config)); err != nil {
			return err
		}
	}

	opts := []merger.Option{
		merger.WithConfig(cfg),
		merger.WithMode(mode),
		merger.WithVerify(flags.Verify),
		merger.WithOmitNamespace(flags.OmitNamespace),
		merger.WithLogger(NewLogger(flags.Quiet, flags.Verbose)),
	}
	if flags.SchemaStrategy != "" {
		opts = append(opts, merger.WithSchemaStrategy(assembler.CollisionStrategy(flags.SchemaStrategy)))
	}
	if flags.RouteStrategy != "" {
		opts = append(opts, merger.WithRouteStrategy(assembler.CollisionStrategy(flags.RouteStrategy)))
	}
	if flags.Format != "" {
		format, err := document.ParseFormat(flags.Format)
		if err != nil {
			return err
		}
		opts = append(opts, merger.WithFormat(format))
	}
	if fs.Changed("max-depth") {
		opts = append(opts, merger.WithMaxDepth(flags.MaxDepth))
	}

	startTime := time.Now()
	result, err := merger.Merge(opts...)
	mergeTime := time.Since(startTime)
	if err != nil {
		return err
	}

	written, err := WriteOutput(flags.Output, result.Output)
	if err != nil {
		return err
	}
	if !flags.Quiet {
		printMergeSummary(result, written, mergeTime)
	}
	return nil
}

// loadConfig reads the configuration file, or the built-in layout, and applies
// the flag overrides.
func (flags *MergeFlags) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if flags.Config != "" {
		loaded, err := config.Load(flags.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	if flags.Dir != "" {
		cfg.Dir = flags.Dir
	}
	if flags.Root != "" {
		cfg.Root = flags.Root
	}
	if flags.Title != "" {
		cfg.Metadata.Title = flags.Title
	}
	if flags.APIVersion != "" {
		cfg.Metadata.Version = flags.APIVersion
	}
	return cfg, nil
}

// inputPaths lists the files a merge reads: the configuration file and every fragment.
func inputPaths(cfg *config.Config, configFile string) []string {
	paths := make([]string, 0, len(cfg.Schemas)+len(cfg.Routes)+1)
	if configFile != "" {
		paths = append(paths, configFile)
	}
	for _, name := range cfg.Schemas {
		paths = append(paths, filepath.Join(cfg.Dir, name))
	}
	for _, src := range cfg.Routes {
		paths = append(paths, filepath.Join(cfg.Dir, src.Fragment))
	}
	return paths
}

func printMergeSummary(result *merger.Result, written string, elapsed time.Duration) {
	verb := "rewritten"
	pointers := result.Stats.PointersRewritten
	if result.Mode == merger.ModeInline {
		verb = "inlined"
		pointers = result.Stats.PointersInlined
	}

	Writef(Stderr, "oasmerge version: %s\n", oasmerge.Version())
	Writef(Stderr, "Mode: %s\n", result.Mode)
	Writef(Stderr, "Fragments: %d loaded, %d absent\n", result.Stats.FragmentsLoaded, result.Stats.FragmentsMissing)
	Writef(Stderr, "Definitions: %d\n", result.Stats.Definitions)
	Writef(Stderr, "Routes: %d\n", result.Stats.Routes)
	Writef(Stderr, "Pointers %s: %d\n", verb, pointers)
	if result.Verification != nil {
		Writef(Stderr, "Verified: %d pointers resolve\n", result.Verification.Pointers)
	}
	Writef(Stderr, "Digest: blake3:%s\n", result.Digest)
	Writef(Stderr, "Merge Time: %v\n", elapsed)
	if written != "" {
		Writef(Stderr, "Output: %s\n", written)
	}
	if len(result.Warnings) > 0 {
		Writef(Stderr, "Warnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			Writef(Stderr, "  - [%s] %s\n", w.Category, w.Message)
		}
	}
}
