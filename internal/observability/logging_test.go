package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogContext(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b-1")
	ctx = WithStage(ctx, "write")
	ctx = WithDocName(ctx, "guide/install")

	lc := GetContext(ctx)
	assert.Equal(t, LogContext{BuildID: "b-1", Stage: "write", DocName: "guide/install"}, lc)
	assert.Len(t, Attrs(ctx), 3)
	assert.Empty(t, Attrs(context.Background()))
}

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil))).With("component", "builder")

	ctx := WithStage(WithBuildID(context.Background(), "b-1"), "read")
	logger.InfoContext(ctx, "Documents read")
	out := buf.String()
	assert.Contains(t, out, "component=builder")
	assert.Contains(t, out, "build_id=b-1")
	assert.Contains(t, out, "stage=read")

	buf.Reset()
	logger.Info("no context")
	assert.NotContains(t, buf.String(), "build_id")
}
