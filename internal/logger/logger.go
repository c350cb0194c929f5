package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// ContextKey is the type for context keys used in logging.
type ContextKey string

// LeadIDKey is the context key for lead_id.
const LeadIDKey ContextKey = "lead_id"

// Init builds the process logger from LOG_LEVEL and LOG_FORMAT values and
// installs it as the slog default.
func Init(level, format string) *slog.Logger {
	l := New(os.Stdout, level, format)
	slog.SetDefault(l)
	return l
}

// New builds a logger writing to w. format is "json" or "text"; anything
// else falls back to json.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown values
// mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithLeadID returns a context whose log lines carry lead_id.
func WithLeadID(ctx context.Context, leadID string) context.Context {
	return context.WithValue(ctx, LeadIDKey, leadID)
}

// FromContext returns the default logger enriched with the lead id and the
// acting user carried by ctx.
func FromContext(ctx context.Context) *slog.Logger {
	return Enrich(ctx, slog.Default())
}

// Enrich returns base with the lead id and the acting user carried by ctx.
func Enrich(ctx context.Context, base *slog.Logger) *slog.Logger {
	l := base.With("actor", domain.ActorFrom(ctx))
	if leadID, ok := ctx.Value(LeadIDKey).(string); ok && leadID != "" {
		l = l.With("lead_id", leadID)
	}
	return l
}
