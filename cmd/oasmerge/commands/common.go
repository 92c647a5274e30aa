// Package commands provides CLI command handlers for oasmerge.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/erraggy/oasmerge/assembler"
	"github.com/erraggy/oasmerge/internal/fileutil"
	"github.com/erraggy/oasmerge/oaserrors"
)

// Stdout and Stderr receive command output and diagnostics. Tests replace them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// NewLogger returns the diagnostic logger for a command: a text handler on
// Stderr at Info, Debug when verbose, Error when quiet.
func NewLogger(quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(Stderr, &slog.HandlerOptions{Level: level}))
}

// ValidateCollisionStrategy validates a collision strategy flag value.
// The flagName parameter is used in the error message (e.g., "schema-strategy").
func ValidateCollisionStrategy(flagName, value string) error {
	if value != "" && !assembler.IsValidStrategy(value) {
		return &oaserrors.ConfigError{
			Option:  flagName,
			Value:   value,
			Message: fmt.Sprintf("valid strategies: %v", assembler.ValidStrategies()),
		}
	}
	return nil
}

// WriteOutput writes data atomically to path with owner-only permissions, or
// to Stdout when path is empty. It returns the absolute path written, if any.
func WriteOutput(path string, data []byte) (string, error) {
	if path == "" {
		if _, err := Stdout.Write(data); err != nil {
			return "", fmt.Errorf("commands: writing output: %w", err)
		}
		return "", nil
	}
	clean, err := fileutil.SanitizeOutputPath(path)
	if err != nil {
		return "", fmt.Errorf("commands: invalid output path: %w", err)
	}
	if err := fileutil.WriteFileAtomic(clean, data, fileutil.OwnerReadWrite); err != nil {
		return "", fmt.Errorf("commands: writing output: %w", err)
	}
	return clean, nil
}

// ValidateOutputPath checks that writing outputPath does not overwrite any of inputPaths.
func ValidateOutputPath(outputPath string, inputPaths []string) error {
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	for _, inputPath := range inputPaths {
		absInputPath, err := filepath.Abs(inputPath)
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", inputPath, err)
		}
		if absOutputPath == absInputPath {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, inputPath)
		}
	}

	if _, err := os.Stat(outputPath); err == nil {
		Writef(Stderr, "Warning: output file %s already exists and will be overwritten\n", outputPath)
	}
	return nil
}

// Writef writes formatted output to w. A failed write is reported on the
// process's standard error, since w is usually Stdout or Stderr itself.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}
