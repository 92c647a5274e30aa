package assembler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/tree"
	"golang.org/x/text/cases"
)

// assemblerLogger is used when Options carries no Logger.
// Tests can replace it to capture or discard warnings.
var assemblerLogger = slog.Default

// Section names used in warnings and collision errors.
const (
	SectionDefinitions = "definitions"
	SectionRoutes      = "routes"
)

// CollisionStrategy defines how to handle a key contributed by two fragments.
type CollisionStrategy string

const (
	// StrategyAcceptLeft keeps the value from the earlier fragment.
	StrategyAcceptLeft CollisionStrategy = "accept-left"
	// StrategyAcceptRight keeps the value from the later fragment (overwrites).
	StrategyAcceptRight CollisionStrategy = "accept-right"
	// StrategyFailOnCollision returns a CollisionError.
	StrategyFailOnCollision CollisionStrategy = "fail"
)

// ValidStrategies returns all valid collision strategy strings.
func ValidStrategies() []string {
	return []string{
		string(StrategyFailOnCollision),
		string(StrategyAcceptLeft),
		string(StrategyAcceptRight),
	}
}

// IsValidStrategy checks if a strategy string is valid.
func IsValidStrategy(strategy string) bool {
	switch CollisionStrategy(strategy) {
	case StrategyAcceptLeft, StrategyAcceptRight, StrategyFailOnCollision:
		return true
	default:
		return false
	}
}

// Fragment is one named source tree.
// A nil Root means the fragment is absent and contributes nothing.
type Fragment struct {
	Name string
	Root tree.Node
}

// RouteMapping assigns a fragment's operation to a route key.
type RouteMapping struct {
	Operation string
	Route     string
}

// RouteFragment is a fragment of operations plus the table naming their routes.
// A nil Routes table means the fragment's top-level keys are route keys already.
type RouteFragment struct {
	Fragment
	Routes []RouteMapping
}

// Options configures an assembly.
type Options struct {
	// Strategy resolves keys contributed by more than one fragment.
	// Empty means StrategyFailOnCollision.
	Strategy CollisionStrategy
	// Logger receives resolved collisions and skipped entries. Nil means slog.Default().
	Logger *slog.Logger
}

// Provenance records which fragment contributed each key of a table.
type Provenance map[string]string

// Result is an assembled table together with its provenance and warnings.
type Result struct {
	// Table holds the merged entries in first-contribution order.
	// Values are shared with the input fragments and must not be modified.
	Table *tree.Mapping
	// Provenance maps every key of Table to the fragment its value came from.
	Provenance Provenance
	// Warnings lists collisions resolved by the strategy and skipped entries.
	Warnings Warnings
	// Fragments counts the fragments that contributed, absent ones excluded.
	Fragments int
}

// AssembleNamespace merges definition fragments, in order, into one namespace.
func AssembleNamespace(frags []Fragment, opts Options) (*Result, error) {
	a, err := newAccumulator(SectionDefinitions, opts)
	if err != nil {
		return nil, err
	}
	for _, f := range frags {
		m, ok, err := fragmentMapping(f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		a.res.Fragments++
		for name, def := range m.All() {
			if err := a.add(name, def, f.Name); err != nil {
				return nil, err
			}
		}
	}
	a.checkCaseCollisions()
	return a.res, nil
}

// AssembleRoutes merges route fragments, in order, into one route table.
func AssembleRoutes(frags []RouteFragment, opts Options) (*Result, error) {
	a, err := newAccumulator(SectionRoutes, opts)
	if err != nil {
		return nil, err
	}
	for _, f := range frags {
		m, ok, err := fragmentMapping(f.Fragment)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		a.res.Fragments++

		if f.Routes == nil {
			for key, op := range m.All() {
				if err := a.add(key, op, f.Name); err != nil {
					return nil, err
				}
			}
			continue
		}

		mapped := make(map[string]bool, len(f.Routes))
		for _, rm := range f.Routes {
			mapped[rm.Operation] = true
			op, ok := m.Get(rm.Operation)
			if !ok {
				a.warn(NewMissingOperationWarning(rm.Operation, rm.Route, f.Name))
				continue
			}
			if err := a.add(rm.Route, op, f.Name); err != nil {
				return nil, err
			}
		}
		for _, name := range m.Keys() {
			if !mapped[name] {
				a.warn(NewUnmappedOperationWarning(name, f.Name))
			}
		}
	}
	return a.res, nil
}

// fragmentMapping returns the fragment's top-level mapping, or ok=false when absent.
func fragmentMapping(f Fragment) (*tree.Mapping, bool, error) {
	if f.Root == nil {
		return nil, false, nil
	}
	m, ok := f.Root.(*tree.Mapping)
	if !ok {
		return nil, false, &oaserrors.ParseError{
			Path:    f.Name,
			Message: fmt.Sprintf("top-level node must be a mapping, got %s", f.Root.Kind()),
		}
	}
	if m == nil {
		return nil, false, nil
	}
	return m, true, nil
}

type accumulator struct {
	section  string
	strategy CollisionStrategy
	logger   *slog.Logger
	res      *Result
}

func newAccumulator(section string, opts Options) (*accumulator, error) {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyFailOnCollision
	}
	if !IsValidStrategy(string(strategy)) {
		return nil, &oaserrors.ConfigError{
			Option:  section + " collision strategy",
			Value:   string(strategy),
			Message: fmt.Sprintf("must be one of %v", ValidStrategies()),
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = assemblerLogger()
	}
	return &accumulator{
		section:  section,
		strategy: strategy,
		logger:   logger,
		res: &Result{
			Table:      tree.NewMapping(),
			Provenance: make(Provenance),
		},
	}, nil
}

func (a *accumulator) add(key string, value tree.Node, fragment string) error {
	first, exists := a.res.Provenance[key]
	if !exists {
		a.res.Table.Set(key, value)
		a.res.Provenance[key] = fragment
		return nil
	}

	switch a.strategy {
	case StrategyAcceptLeft:
		a.warn(NewCollisionWarning(a.section, key, "kept first", first, fragment))
	case StrategyAcceptRight:
		a.res.Table.Set(key, value)
		a.res.Provenance[key] = fragment
		a.warn(NewCollisionWarning(a.section, key, "overwritten", first, fragment))
	default:
		return &oaserrors.CollisionError{
			Section:      a.section,
			Key:          key,
			FirstSource:  first,
			SecondSource: fragment,
		}
	}
	return nil
}

func (a *accumulator) warn(w *Warning) {
	a.res.Warnings = append(a.res.Warnings, w)
	args := []any{"fragment", w.Fragment, "category", string(w.Category)}
	if w.Path != "" {
		args = append(args, "path", w.Path)
	}
	a.logger.Log(context.Background(), w.Severity.Level(), "assembler: "+w.Message, args...)
}

// checkCaseCollisions warns about names that are distinct keys but fold to the
// same identifier, which most code generators cannot tell apart.
func (a *accumulator) checkCaseCollisions() {
	caser := cases.Fold()
	groups := make(map[string][]string)
	var order []string
	for _, name := range a.res.Table.Keys() {
		folded := caser.String(name)
		if _, seen := groups[folded]; !seen {
			order = append(order, folded)
		}
		groups[folded] = append(groups[folded], name)
	}
	for _, folded := range order {
		names := groups[folded]
		if len(names) < 2 {
			continue
		}
		fragments := make([]string, 0, len(names))
		for _, n := range names {
			fragments = append(fragments, a.res.Provenance[n])
		}
		a.warn(NewCaseCollisionWarning(names, fragments))
	}
}
