package ctxlog_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/loxgo/internal/ctxlog"
)

func TestWithLoggerRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	require.Same(t, logger, ctxlog.FromContext(ctx))
}

func TestFromContextPanicsWithoutLogger(t *testing.T) {
	require.Panics(t, func() {
		ctxlog.FromContext(context.Background())
	})
}

func TestWithAttachesAttributes(t *testing.T) {
	var out bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&out, nil)))
	ctx = ctxlog.With(ctx, "script", "main.lox")

	ctxlog.FromContext(ctx).Info("running")
	require.Contains(t, out.String(), "script=main.lox")
}
