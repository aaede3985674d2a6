package ctxkeys

import (
	"context"

	"github.com/templui/sneakerbase/internal/config"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	SubjectKey   contextKey = "subject"
	ConfigKey    contextKey = "config"
	RequestIDKey contextKey = "request_id"
)

// Subject is the identity provider subject of the caller, empty when unauthenticated.
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(SubjectKey).(string)
	return subject
}

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectKey, subject)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
