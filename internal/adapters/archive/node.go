package archive

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/testarc/internal/adapters/fs"
	"go.trai.ch/testarc/internal/core/ports"
)

// NodeID is the unique identifier for the packager Graft node.
const NodeID graft.ID = "adapter.packager"

func init() {
	graft.Register(graft.Node[ports.Packager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID, fs.HasherNodeID},
		Run: func(ctx context.Context) (ports.Packager, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewPackager(walker, hasher), nil
		},
	})
}
