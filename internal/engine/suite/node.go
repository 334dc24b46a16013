package suite

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/testarc/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/testarc/internal/core/ports"
)

// NodeID is the unique identifier for the suite runner Graft node.
const NodeID graft.ID = "engine.suite"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{telemetry.TracerNodeID},
		Run: func(ctx context.Context) (*Runner, error) {
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(tracer), nil
		},
	})
}
