package mcpserver

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/erraggy/oasmerge/assembler"
	"github.com/erraggy/oasmerge/document"
	"github.com/erraggy/oasmerge/merger"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// ConfigFile is the merge configuration used when a call names none.
	ConfigFile string
	// Dir overrides the fragment directory of the merge configuration.
	Dir string

	// Merge tool defaults.
	Mode           merger.Mode
	SchemaStrategy assembler.CollisionStrategy
	RouteStrategy  assembler.CollisionStrategy
	Format         document.Format
	Verify         bool
	MaxDepth       int // 0 keeps the configuration's max_depth

	// MaxFragments bounds the inline fragments accepted by one call.
	MaxFragments int
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASMERGE_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		ConfigFile:     os.Getenv("OASMERGE_CONFIG"),
		Dir:            os.Getenv("OASMERGE_DIR"),
		Mode:           envMode("OASMERGE_MODE", merger.ModeRewrite),
		SchemaStrategy: envStrategy("OASMERGE_SCHEMA_STRATEGY"),
		RouteStrategy:  envStrategy("OASMERGE_ROUTE_STRATEGY"),
		Format:         envFormat("OASMERGE_FORMAT"),
		Verify:         envBool("OASMERGE_VERIFY", true),
		MaxDepth:       envInt("OASMERGE_MAX_DEPTH", 0),
		MaxFragments:   envInt("OASMERGE_MAX_FRAGMENTS", 100),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envStrategy(key string) assembler.CollisionStrategy {
	v := os.Getenv(key)
	if v == "" {
		return ""
	}
	if !assembler.IsValidStrategy(v) {
		slog.Warn("invalid strategy env var, ignoring", "key", key, "value", v)
		return ""
	}
	return assembler.CollisionStrategy(v)
}

func envMode(key string, fallback merger.Mode) merger.Mode {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	m, err := merger.ParseMode(v)
	if err != nil {
		slog.Warn("invalid mode env var, using default", "key", key, "value", v, "default", string(fallback))
		return fallback
	}
	return m
}

func envFormat(key string) document.Format {
	v := os.Getenv(key)
	if v == "" {
		return ""
	}
	f, err := document.ParseFormat(v)
	if err != nil {
		slog.Warn("invalid format env var, ignoring", "key", key, "value", v)
		return ""
	}
	return f
}
