package testbed

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/dolas/engine"
	"github.com/spaghettifunk/dolas/engine/core"
)

// Degrees per second the showcase scene turns around the up axis.
const spinSpeed float32 = 30.0

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width      uint32
	height     uint32
	frames     uint64
	spinScenes []string
}

/**
 * @brief A small game that spins the given scenes and reports the view
 * statistics now and then.
 */
func NewTestGame(spinScenes ...string) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			State: &gameState{spinScenes: spinScenes},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("testbed: %d cameras, %d scenes, %d entities loaded",
		g.SystemManager.Cameras.Len(), g.SystemManager.Scenes.Len(), g.SystemManager.Entities.Len())
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	angle := spinSpeed * float32(deltaTime)
	for _, name := range g.state().spinScenes {
		scene := g.SystemManager.Scenes.GetByID(core.HashString(name))
		if scene == nil {
			continue
		}
		for _, item := range scene.Items() {
			if item.Transform == nil {
				continue
			}
			item.Transform.Rotate(mgl32.Vec3{0, 0, angle})
		}
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	s := g.state()
	s.frames++
	if s.frames%600 != 0 {
		return nil
	}
	for _, view := range g.SystemManager.Views.Ordered() {
		core.LogDebug("view '%s' frame %d: %d draws, %d skipped", view.Name, view.Stats.Frame, view.Stats.Draws, view.Stats.TotalSkipped())
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	s := g.state()
	s.width, s.height = width, height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("testbed: shutting down after %d frames", g.state().frames)
	return nil
}
