package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/testarc/internal/adapters/telemetry"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/testarc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// installProvider routes spans through bridge for the duration of the test.
func installProvider(t *testing.T, bridge *telemetry.Bridge) {
	t.Helper()
	prev := otel.GetTracerProvider()
	shutdown := telemetry.Setup(bridge)
	t.Cleanup(func() {
		_ = shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
}

func TestOTelTracer_Renderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	installProvider(t, telemetry.NewBridge(renderer))

	var spanID string
	gomock.InOrder(
		renderer.EXPECT().OnPlanEmit([]string{"base", "app"}, map[string][]string{"app": {"base"}}),
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "app", gomock.Any()).
			Do(func(id, _, _ string, _ time.Time) { spanID = id }),
		renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("compiling\n")),
		renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("done")),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)
	renderer.EXPECT().Flush().Return(nil).AnyTimes()

	tracer := telemetry.NewOTelTracer("test").WithRenderer(renderer)
	ctx := context.Background()
	tracer.EmitPlan(ctx, []string{"base", "app"}, map[string][]string{"app": {"base"}})

	_, span := tracer.Start(ctx, "app", ports.WithAttribute("testarc.sources", 2))
	_, err := span.Write([]byte("compiling\ndone"))
	require.NoError(t, err)
	span.End()

	assert.NotEmpty(t, spanID)
}

func TestOTelTracer_NestedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	installProvider(t, telemetry.NewBridge(renderer))

	var parentID string
	renderer.EXPECT().OnTaskStart(gomock.Any(), "", "suite", gomock.Any()).
		Do(func(id, _, _ string, _ time.Time) { parentID = id })
	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "build", gomock.Any()).
		Do(func(_, parent, _ string, _ time.Time) { assert.Equal(t, parentID, parent) })
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ time.Time, err error) {
			require.Error(t, err)
			assert.Equal(t, "compiler reported errors", err.Error())
		})
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil)
	renderer.EXPECT().Flush().Return(nil).AnyTimes()

	tracer := telemetry.NewOTelTracer("test")
	ctx, parent := tracer.Start(context.Background(), "suite")
	_, child := tracer.Start(ctx, "build")
	child.SetAttribute("count", int64(3))
	child.SetAttribute("names", []string{"a"})
	child.SetAttribute("ok", true)
	child.SetAttribute("other", 1.5)
	_, _ = child.Write([]byte("event without renderer"))
	child.RecordError(errors.New("compiler reported errors"))
	child.End()
	parent.End()
}

func TestBridge_Flush(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().Flush().Return(errors.New("closed pipe"))

	bridge := telemetry.NewBridge(renderer)
	assert.EqualError(t, bridge.Shutdown(context.Background()), "closed pipe")

	assert.NoError(t, telemetry.NewBridge(nil).ForceFlush(context.Background()))
}

func TestBridge_NoRenderer(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "quiet")
	span.End()
}
