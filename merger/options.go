package merger

import (
	"fmt"
	"log/slog"

	"github.com/erraggy/oasmerge/assembler"
	"github.com/erraggy/oasmerge/config"
	"github.com/erraggy/oasmerge/document"
	"github.com/erraggy/oasmerge/loader"
	"github.com/erraggy/oasmerge/oaserrors"
)

// Option is a function that configures a merge.
type Option func(*mergeConfig) error

// mergeConfig holds the settings of one merge.
// Pointer fields are nil when the option was not given and the Config value applies.
type mergeConfig struct {
	cfg    *config.Config
	loader loader.Loader
	mode   Mode

	schemaStrategy *assembler.CollisionStrategy
	routeStrategy  *assembler.CollisionStrategy
	format         *document.Format
	maxDepth       *int

	verify        bool
	omitNamespace bool
	logger        *slog.Logger
}

func applyOptions(opts ...Option) (*mergeConfig, error) {
	mc := &mergeConfig{mode: ModeRewrite}
	for _, opt := range opts {
		if err := opt(mc); err != nil {
			return nil, err
		}
	}

	// Work on a copy so overrides never leak into the caller's Config.
	var c config.Config
	if mc.cfg != nil {
		c = *mc.cfg
	} else {
		c = *config.DefaultConfig()
	}
	if mc.schemaStrategy != nil {
		c.SchemaStrategy = *mc.schemaStrategy
	}
	if mc.routeStrategy != nil {
		c.RouteStrategy = *mc.routeStrategy
	}
	if mc.format != nil {
		c.Format = *mc.format
	}
	if mc.maxDepth != nil {
		c.MaxDepth = *mc.maxDepth
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mc.cfg = &c

	if mc.omitNamespace && mc.mode == ModeRewrite {
		return nil, &oaserrors.ConfigError{
			Option:  "omit namespace",
			Value:   true,
			Message: "rewritten pointers address the namespace, so it cannot be omitted",
		}
	}
	if mc.loader == nil {
		fl := loader.NewFileLoader(c.Dir)
		fl.Logger = mc.logger
		mc.loader = fl
	}
	return mc, nil
}

// WithConfig sets the merge configuration. Without it DefaultConfig is used.
func WithConfig(cfg *config.Config) Option {
	return func(mc *mergeConfig) error {
		if cfg == nil {
			return &oaserrors.ConfigError{Option: "config", Message: "must not be nil"}
		}
		mc.cfg = cfg
		return nil
	}
}

// WithLoader sets the fragment source. Without it fragments are read from the
// configured directory.
func WithLoader(l loader.Loader) Option {
	return func(mc *mergeConfig) error {
		mc.loader = l
		return nil
	}
}

// WithMode selects rewriting or inlining. The default is ModeRewrite.
func WithMode(mode Mode) Option {
	return func(mc *mergeConfig) error {
		m, err := ParseMode(string(mode))
		if err != nil {
			return err
		}
		mc.mode = m
		return nil
	}
}

// WithSchemaStrategy overrides the definition collision strategy.
func WithSchemaStrategy(strategy assembler.CollisionStrategy) Option {
	return func(mc *mergeConfig) error {
		mc.schemaStrategy = &strategy
		return nil
	}
}

// WithRouteStrategy overrides the route collision strategy.
func WithRouteStrategy(strategy assembler.CollisionStrategy) Option {
	return func(mc *mergeConfig) error {
		mc.routeStrategy = &strategy
		return nil
	}
}

// WithFormat overrides the output format.
func WithFormat(format document.Format) Option {
	return func(mc *mergeConfig) error {
		mc.format = &format
		return nil
	}
}

// WithMaxDepth overrides the inline expansion depth limit.
func WithMaxDepth(depth int) Option {
	return func(mc *mergeConfig) error {
		mc.maxDepth = &depth
		return nil
	}
}

// WithVerify checks that every pointer of the merged document resolves inside it.
func WithVerify(enabled bool) Option {
	return func(mc *mergeConfig) error {
		mc.verify = enabled
		return nil
	}
}

// WithOmitNamespace leaves the inlined namespace out of the document.
// Only valid with ModeInline.
func WithOmitNamespace(enabled bool) Option {
	return func(mc *mergeConfig) error {
		mc.omitNamespace = enabled
		return nil
	}
}

// WithLogger sets the logger for this merge and its file loader.
func WithLogger(logger *slog.Logger) Option {
	return func(mc *mergeConfig) error {
		mc.logger = logger
		return nil
	}
}

// Mode selects how pointers are handled.
type Mode string

const (
	// ModeRewrite keeps pointers and rewrites their addresses to the canonical root.
	ModeRewrite Mode = "rewrite"
	// ModeInline replaces every pointer with a copy of its target.
	ModeInline Mode = "inline"
)

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRewrite, ModeInline:
		return Mode(s), nil
	default:
		return "", &oaserrors.ConfigError{
			Option:  "mode",
			Value:   s,
			Message: fmt.Sprintf("must be %q or %q", ModeRewrite, ModeInline),
		}
	}
}
