package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/testarc/internal/adapters/archive"   //nolint:depguard // Wired in app layer
	"go.trai.ch/testarc/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/testarc/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/testarc/internal/adapters/gotypes"   //nolint:depguard // Wired in app layer
	"go.trai.ch/testarc/internal/adapters/linear"    //nolint:depguard // Wired in app layer
	"go.trai.ch/testarc/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/testarc/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/testarc/internal/engine/suite"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			cas.NodeID,
			gotypes.NodeID,
			archive.NodeID,
			suite.NodeID,
			telemetry.TracerNodeID,
			linear.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.RecordStore](ctx)
	if err != nil {
		return nil, err
	}

	compiler, err := graft.Dep[ports.Compiler](ctx)
	if err != nil {
		return nil, err
	}

	packager, err := graft.Dep[ports.Packager](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[*suite.Runner](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[ports.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, store, compiler, packager, runner, tracer, renderer), nil
}
