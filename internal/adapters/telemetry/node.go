package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/testarc/internal/adapters/linear"
	"go.trai.ch/testarc/internal/core/ports"
)

// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

// InstrumentationName names the tracer spans are created with.
const InstrumentationName = "testarc"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{linear.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			renderer, err := graft.Dep[ports.Renderer](ctx)
			if err != nil {
				return nil, err
			}
			return NewOTelTracer(InstrumentationName).WithRenderer(renderer), nil
		},
	})
}
