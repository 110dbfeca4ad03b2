package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext returns the logger carried by ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

func withField(ctx context.Context, key, value string) context.Context {
	child := FromContext(ctx).With().Str(key, value).Logger()
	return WithContext(ctx, child)
}

// WithComponent tags every log line written through ctx with a component.
func WithComponent(ctx context.Context, component string) context.Context {
	return withField(ctx, "component", component)
}

// WithWebAppID tags log lines with the webapp they concern.
func WithWebAppID(ctx context.Context, webappID string) context.Context {
	return withField(ctx, "webapp_id", webappID)
}

// WithShortcut tags log lines with a normalized shortcut.
func WithShortcut(ctx context.Context, shortcut string) context.Context {
	return withField(ctx, "shortcut", shortcut)
}
