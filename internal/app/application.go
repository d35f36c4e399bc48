// Package app holds the dependencies shared by the HTTP handlers, helpers
// and middleware.
package app

import (
	"log/slog"

	"raillog.org/engine/internal/appconf"
	"raillog.org/engine/internal/engine"
)

// Application is built once in main and handed to every handler.
type Application struct {
	Config       appconf.Config
	EngineConfig appconf.EngineConfig
	Logger       *slog.Logger
	Engine       *engine.Engine
}
