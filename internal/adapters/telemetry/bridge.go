package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/testarc/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is an sdktrace.SpanProcessor reporting span lifecycles to a Renderer.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart reports the span with its parent, if any.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	var parentID string
	if p := trace.SpanContextFromContext(parent); p.IsValid() {
		parentID = p.SpanID().String()
	}
	b.renderer.OnTaskStart(sc.SpanID().String(), parentID, s.Name(), s.StartTime())
}

// OnEnd reports the span outcome. An error status becomes the span's error.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	var err error
	if status := s.Status(); status.Code == codes.Error {
		msg := status.Description
		if msg == "" {
			msg = s.Name() + " failed"
		}
		err = errors.New(msg)
	}
	b.renderer.OnTaskComplete(sc.SpanID().String(), s.EndTime(), err)
}

// ForceFlush flushes the renderer.
func (b *Bridge) ForceFlush(_ context.Context) error {
	if b.renderer == nil {
		return nil
	}
	return b.renderer.Flush()
}

// Shutdown flushes the renderer.
func (b *Bridge) Shutdown(ctx context.Context) error {
	return b.ForceFlush(ctx)
}
