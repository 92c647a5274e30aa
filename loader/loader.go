// Package loader turns named fragment sources into trees.
//
// A fragment that does not exist, or that contains an empty document, is
// reported as absent rather than as an error: absence is a valid deployment
// state and the assembler simply skips it.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/tree"
)

// loaderLogger is used when a FileLoader has no Logger of its own.
var loaderLogger = slog.Default

// Loader resolves a fragment name to its tree.
// ok is false when the fragment is absent; err is reserved for fragments that
// exist but cannot be read or parsed.
type Loader interface {
	Load(name string) (n tree.Node, ok bool, err error)
}

// FileLoader loads YAML or JSON fragments from a file system.
type FileLoader struct {
	fsys fs.FS

	// Logger receives INFO records for absent fragments. Nil means slog.Default().
	Logger *slog.Logger
}

// NewFileLoader returns a loader reading fragments relative to dir.
func NewFileLoader(dir string) *FileLoader {
	if dir == "" {
		dir = "."
	}
	return &FileLoader{fsys: os.DirFS(dir)}
}

// NewFSLoader returns a loader reading fragments from fsys.
func NewFSLoader(fsys fs.FS) *FileLoader {
	return &FileLoader{fsys: fsys}
}

// Load reads and parses the fragment at name, a slash-separated path relative
// to the loader's root.
func (l *FileLoader) Load(name string) (tree.Node, bool, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, false, err
	}

	data, err := fs.ReadFile(l.fsys, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger().Info("loader: fragment not found, skipping", "fragment", name)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("loader: reading %s: %w", name, err)
	}

	n, err := tree.Parse(name, data)
	if err != nil {
		return nil, false, err
	}
	if n == nil {
		l.logger().Info("loader: fragment is empty, skipping", "fragment", name)
		return nil, false, nil
	}
	return n, true, nil
}

func (l *FileLoader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return loaderLogger()
}

// cleanName converts a configured fragment name into an fs.FS path.
// Names may not escape the loader's root.
func cleanName(name string) (string, error) {
	slashed := strings.ReplaceAll(name, "\\", "/")
	clean := path.Clean(slashed)
	if !fs.ValidPath(clean) || clean == "." {
		return "", &oaserrors.ConfigError{
			Option:  "fragment",
			Value:   name,
			Message: "fragment names must be relative paths inside the fragment directory",
		}
	}
	return clean, nil
}

// MapLoader serves fragments from memory. Names missing from the map are absent.
type MapLoader map[string]tree.Node

// Load returns the fragment stored under name. Nil entries count as absent.
func (m MapLoader) Load(name string) (tree.Node, bool, error) {
	n, ok := m[name]
	if !ok || n == nil {
		return nil, false, nil
	}
	return n, true, nil
}
