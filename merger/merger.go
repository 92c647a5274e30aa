// Package merger runs a complete merge: it loads the configured fragments,
// assembles the namespace and the route table, resolves pointers in the
// selected mode, and serializes the resulting document.
//
// Example:
//
//	res, err := merger.Merge(
//		merger.WithConfig(cfg),
//		merger.WithMode(merger.ModeInline),
//	)
//	if err != nil {
//		return err
//	}
//	os.Stdout.Write(res.Output)
//
// A merge either fails or produces a complete document: nothing is written
// by this package.
package merger

import (
	"fmt"
	"log/slog"

	"github.com/erraggy/oasmerge/assembler"
	"github.com/erraggy/oasmerge/config"
	"github.com/erraggy/oasmerge/document"
	"github.com/erraggy/oasmerge/inliner"
	"github.com/erraggy/oasmerge/internal/pathutil"
	"github.com/erraggy/oasmerge/rewriter"
	"github.com/erraggy/oasmerge/tree"
	"github.com/erraggy/oasmerge/verify"
)

// mergerLogger is used when no WithLogger option is given.
var mergerLogger = slog.Default

// Stats counts what a merge read and produced.
type Stats struct {
	// FragmentsLoaded counts fragments that were present and non-empty.
	FragmentsLoaded int
	// FragmentsMissing counts fragments that were absent or empty.
	FragmentsMissing int
	// Definitions is the number of namespace entries.
	Definitions int
	// Routes is the number of route table entries.
	Routes int
	// PointersRewritten counts pointers whose address changed (rewrite mode).
	PointersRewritten int
	// PointersInlined counts pointers replaced by their target (inline mode).
	PointersInlined int
}

// Result is the outcome of a successful merge.
type Result struct {
	// Mode is the mode the merge ran in.
	Mode Mode
	// Document is the merged document tree.
	Document *tree.Mapping
	// Format is the serialization of Output.
	Format document.Format
	// Output is the serialized document.
	Output []byte
	// Digest is the BLAKE3-256 hex digest of Output.
	Digest string
	// Warnings lists resolved collisions and skipped operations.
	Warnings assembler.Warnings
	// DefinitionSources maps each definition to the fragment it came from.
	DefinitionSources assembler.Provenance
	// RouteSources maps each route key to the fragment it came from.
	RouteSources assembler.Provenance
	// Verification is the pointer check report, nil unless WithVerify was set.
	Verification *verify.Report
	// Stats counts inputs and outputs.
	Stats Stats
}

// Merge runs a merge configured by opts.
func Merge(opts ...Option) (*Result, error) {
	mc, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("merger: invalid options: %w", err)
	}
	m := &merge{mc: mc, cfg: mc.cfg, log: mc.logger}
	if m.log == nil {
		m.log = mergerLogger()
	}
	return m.run()
}

type merge struct {
	mc  *mergeConfig
	cfg *config.Config
	log *slog.Logger
	res Result
}

func (m *merge) run() (*Result, error) {
	m.res.Mode = m.mc.mode
	m.res.Format = m.cfg.Format

	ns, routes, err := m.assemble()
	if err != nil {
		return nil, err
	}

	var nsOut, routesOut *tree.Mapping
	switch m.mc.mode {
	case ModeInline:
		nsOut, routesOut, err = m.inline(ns, routes)
	default:
		nsOut, routesOut, err = m.rewrite(ns, routes)
	}
	if err != nil {
		return nil, err
	}

	doc, err := document.Assemble(m.cfg.Metadata.Document(), routesOut, nsOut, m.cfg.Root)
	if err != nil {
		return nil, err
	}
	m.res.Document = doc

	if m.mc.verify {
		report := verify.Document(doc, m.cfg.PointerKey)
		m.res.Verification = report
		if err := report.Err(); err != nil {
			return nil, fmt.Errorf("merger: verification failed: %w", err)
		}
	}

	out, err := document.Marshal(doc, m.cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("merger: serializing document: %w", err)
	}
	m.res.Output = out
	m.res.Digest = document.Digest(out)

	m.log.Info("merger: merge complete",
		"mode", string(m.res.Mode),
		"fragments", m.res.Stats.FragmentsLoaded,
		"missing", m.res.Stats.FragmentsMissing,
		"definitions", m.res.Stats.Definitions,
		"routes", m.res.Stats.Routes,
		"warnings", len(m.res.Warnings),
		"digest", m.res.Digest,
	)
	return &m.res, nil
}

// assemble loads every configured fragment and builds the namespace and the route table.
func (m *merge) assemble() (ns, routes *assembler.Result, err error) {
	schemaFrags := make([]assembler.Fragment, 0, len(m.cfg.Schemas))
	for _, name := range m.cfg.Schemas {
		f, err := m.load(name)
		if err != nil {
			return nil, nil, err
		}
		schemaFrags = append(schemaFrags, f)
	}
	routeFrags := make([]assembler.RouteFragment, 0, len(m.cfg.Routes))
	for _, src := range m.cfg.Routes {
		f, err := m.load(src.Fragment)
		if err != nil {
			return nil, nil, err
		}
		routeFrags = append(routeFrags, assembler.RouteFragment{Fragment: f, Routes: src.RouteTable()})
	}

	ns, err = assembler.AssembleNamespace(schemaFrags, assembler.Options{Strategy: m.cfg.SchemaStrategy, Logger: m.mc.logger})
	if err != nil {
		return nil, nil, err
	}
	routes, err = assembler.AssembleRoutes(routeFrags, assembler.Options{Strategy: m.cfg.RouteStrategy, Logger: m.mc.logger})
	if err != nil {
		return nil, nil, err
	}

	m.res.Warnings = append(m.res.Warnings, ns.Warnings...)
	m.res.Warnings = append(m.res.Warnings, routes.Warnings...)
	m.res.DefinitionSources = ns.Provenance
	m.res.RouteSources = routes.Provenance
	m.res.Stats.Definitions = ns.Table.Len()
	m.res.Stats.Routes = routes.Table.Len()
	return ns, routes, nil
}

func (m *merge) load(name string) (assembler.Fragment, error) {
	n, ok, err := m.mc.loader.Load(name)
	if err != nil {
		return assembler.Fragment{}, err
	}
	if !ok {
		m.res.Stats.FragmentsMissing++
		return assembler.Fragment{Name: name}, nil
	}
	m.res.Stats.FragmentsLoaded++
	return assembler.Fragment{Name: name, Root: n}, nil
}

// rewrite rewrites pointers in both the namespace and the route table.
func (m *merge) rewrite(ns, routes *assembler.Result) (*tree.Mapping, *tree.Mapping, error) {
	rw := rewriter.New(rewriter.CanonicalResolver(m.cfg.Canonicalizer()), m.cfg.PointerKey)

	nsOut, err := rw.RewriteAt(ns.Table, pathutil.RootSegments(m.cfg.Root)...)
	if err != nil {
		return nil, nil, err
	}
	routesOut, err := rw.RewriteAt(routes.Table, m.routesKey())
	if err != nil {
		return nil, nil, err
	}
	m.res.Stats.PointersRewritten = rw.Rewritten
	m.log.Debug("merger: pointers rewritten", "visited", rw.Visited, "rewritten", rw.Rewritten)
	return nsOut.(*tree.Mapping), routesOut.(*tree.Mapping), nil
}

// inline expands the namespace first, then the route table against it.
func (m *merge) inline(ns, routes *assembler.Result) (*tree.Mapping, *tree.Mapping, error) {
	in := inliner.New(ns.Table, m.cfg.Canonicalizer(),
		inliner.WithPointerKey(m.cfg.PointerKey),
		inliner.WithMaxDepth(m.cfg.MaxDepth),
	)

	nsOut, err := in.InlineNamespace()
	if err != nil {
		return nil, nil, err
	}
	routesOut, err := in.InlineAt(routes.Table, m.routesKey())
	if err != nil {
		return nil, nil, err
	}
	m.res.Stats.PointersInlined = in.Inlined
	m.log.Debug("merger: pointers inlined", "inlined", in.Inlined)

	if m.mc.omitNamespace {
		nsOut = nil
	}
	return nsOut, routesOut.(*tree.Mapping), nil
}

func (m *merge) routesKey() string {
	if k := m.cfg.Metadata.RoutesKey; k != "" {
		return k
	}
	return document.DefaultMetadata().RoutesKey
}
