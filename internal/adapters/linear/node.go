package linear

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/testarc/internal/core/ports"
)

// NodeID is the unique identifier for the linear renderer Graft node.
const NodeID graft.ID = "adapter.renderer"

func init() {
	graft.Register(graft.Node[ports.Renderer]{
		ID:        NodeID,
		Cacheable: true,
		// Progress stays off stdout, which carries reports.
		Run: func(_ context.Context) (ports.Renderer, error) {
			return NewRenderer(os.Stderr, os.Stderr), nil
		},
	})
}
