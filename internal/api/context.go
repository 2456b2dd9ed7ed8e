package api

import (
	"context"
	"log/slog"

	"roomstatus/pkg/staffauth"
)

type ctxKey string

const (
	ctxKeyStaff  ctxKey = "staff"
	ctxKeyLogger ctxKey = "logger"
)

func WithStaff(ctx context.Context, s *staffauth.Staff) context.Context {
	return context.WithValue(ctx, ctxKeyStaff, s)
}

func StaffFromContext(ctx context.Context) *staffauth.Staff {
	v := ctx.Value(ctxKeyStaff)
	if v == nil {
		return nil
	}
	s, _ := v.(*staffauth.Staff)
	return s
}

// ActorFromContext is the changedBy value for writes made by this request.
// Empty means the tracking core records the system actor.
func ActorFromContext(ctx context.Context) string {
	if s := StaffFromContext(ctx); s != nil {
		return s.Actor()
	}
	return ""
}

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, l)
}

// Logger returns the request-scoped logger installed by RequestLogger.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
