package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/testarc/internal/adapters/telemetry"
	"go.trai.ch/testarc/internal/core/ports"
)

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	gotCtx, span := tracer.Start(ctx, "build", ports.WithAttribute("k", "v"))
	assert.Equal(t, ctx, gotCtx)

	n, err := span.Write([]byte("data"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)

	span.SetAttribute("k", 1)
	span.RecordError(errors.New("boom"))
	span.End()
	tracer.EmitPlan(ctx, []string{"a"}, nil)
}
