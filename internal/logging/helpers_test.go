package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type captureHandler struct {
	records *[]slog.Record
}

func (c captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (c captureHandler) Handle(_ context.Context, r slog.Record) error {
	*c.records = append(*c.records, r)
	return nil
}

func (c captureHandler) WithAttrs([]slog.Attr) slog.Handler { return c }

func (c captureHandler) WithGroup(string) slog.Handler { return c }

func newID() uuid.UUID { return uuid.New() }

type failingHandler struct{ err error }

func (f failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (f failingHandler) Handle(context.Context, slog.Record) error { return f.err }

func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler { return f }

func (f failingHandler) WithGroup(string) slog.Handler { return f }
