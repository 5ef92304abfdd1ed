package engine

import (
	"github.com/spaghettifunk/dolas/engine/systems"
)

// Game is the application side of the engine. Every hook is optional.
type Game struct {
	// Set by the engine before FnInitialize runs.
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render runs after every view of the frame was rendered and presented.
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
