// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/testarc/internal/adapters/archive"
	_ "go.trai.ch/testarc/internal/adapters/cas"
	_ "go.trai.ch/testarc/internal/adapters/config"
	_ "go.trai.ch/testarc/internal/adapters/fs"
	_ "go.trai.ch/testarc/internal/adapters/gotypes"
	_ "go.trai.ch/testarc/internal/adapters/linear"
	_ "go.trai.ch/testarc/internal/adapters/logger"
	_ "go.trai.ch/testarc/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/testarc/internal/app"
	_ "go.trai.ch/testarc/internal/engine/suite"
)
