package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer"
	"github.com/spaghettifunk/dolas/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything
	EngineStageShutdown
)

// Window is the platform layer as seen by the loop.
type Window interface {
	// PumpMessages processes pending OS events; false means the window closed.
	PumpMessages() bool
	Shutdown() error
}

type Engine struct {
	config        *EngineConfig
	currentStage  Stage
	gameInstance  *Game
	isRunning     bool
	isSuspended   bool
	window        Window
	bus           *core.EventBus
	input         *core.Input
	registry      *core.HashRegistry
	renderer      *renderer.Renderer
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64
	recoveries    int
}

/**
 * @brief Builds an engine around a device backend. Nothing touches the
 * device until Initialize.
 *
 * @param cfg The engine configuration; nil means DefaultEngineConfig.
 * @param backend The graphics device.
 * @param g The game; may be nil.
 */
func New(cfg *EngineConfig, backend renderer.Backend, g *Game) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g == nil {
		g = &Game{}
	}
	core.SetLogLevel(cfg.Application.Level())

	r, err := renderer.New(backend)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	root, err := filepath.Abs(cfg.AssetDir)
	if err != nil {
		return nil, err
	}
	am, err := assets.NewAssetManager(&assets.AssetManagerConfig{Root: root, Watch: cfg.WatchAssets})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	registry := core.NewHashRegistry()
	sm, err := systems.NewSystemManager(cfg.SystemConfig(), registry, am, backend)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	g.SystemManager = sm

	bus := core.NewEventBus()
	return &Engine{
		config:        cfg,
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		bus:           bus,
		input:         core.NewInput(cfg.InputQueueSize, bus),
		registry:      registry,
		renderer:      r,
		assetManager:  am,
		systemManager: sm,
		width:         cfg.Application.StartWidth,
		height:        cfg.Application.StartHeight,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
	}, nil
}

// AttachWindow hands the loop a platform window. Call before Run.
func (e *Engine) AttachWindow(w Window) {
	e.window = w
}

func (e *Engine) Stage() Stage                    { return e.currentStage }
func (e *Engine) Bus() *core.EventBus             { return e.bus }
func (e *Engine) Input() *core.Input              { return e.input }
func (e *Engine) Registry() *core.HashRegistry    { return e.registry }
func (e *Engine) Systems() *systems.SystemManager { return e.systemManager }
func (e *Engine) Assets() *assets.AssetManager    { return e.assetManager }
func (e *Engine) Metrics() *core.Metrics          { return e.metrics }
func (e *Engine) Config() *EngineConfig           { return e.config }

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

/**
 * @brief Brings up the device, the asset index and every manager, creates
 * the configured views and initializes the game.
 */
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.bus.Register(core.EVENT_CODE_DEVICE_LOST, e, e.onEvent)

	app := e.config.Application
	if err := e.renderer.Initialize(app.Name, app.StartWidth, app.StartHeight); err != nil {
		return err
	}
	if err := e.assetManager.Initialize(); err != nil {
		return err
	}
	if err := e.systemManager.Initialize(e.bus); err != nil {
		return err
	}
	if n := e.createViews(); n == 0 {
		core.LogWarn("no render view could be created; frames will be empty")
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	e.isRunning = true
	core.LogInfo("engine initialized: %d views, %d textures, %d entities",
		e.systemManager.Views.Len(), e.systemManager.Textures.Len(), e.systemManager.Entities.Len())
	return nil
}

func (e *Engine) createViews() int {
	views := e.config.Views
	if len(views) == 0 {
		views = DefaultViews()
	}
	created := 0
	for _, v := range views {
		if _, ok := e.systemManager.Views.CreateFromConfig(v); !ok {
			core.LogError("render view '%s' could not be created", v.Name)
			continue
		}
		created++
	}
	return created
}

/**
 * @brief Advances one frame: camera input, the game update, every view and
 * the game render hook. A lost device triggers Recover.
 *
 * @param delta Seconds since the previous tick.
 */
func (e *Engine) Tick(delta float64) error {
	if e.currentStage != EngineStageInitialized && e.currentStage != EngineStageRunning {
		return fmt.Errorf("engine tick in stage %d", e.currentStage)
	}
	if e.isSuspended {
		return nil
	}
	frameStart := time.Now()

	e.systemManager.Cameras.Update(delta, e.input)

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}

	e.renderer.BeginFrame()
	if _, err := e.systemManager.Views.RenderAll(e.renderer.Backend()); err != nil {
		e.bus.Fire(core.EventContext{Type: core.EVENT_CODE_DEVICE_LOST, Data: err})
		return e.Recover()
	}
	e.recoveries = 0

	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(delta); err != nil {
			return fmt.Errorf("game render: %w", err)
		}
	}

	e.metrics.Update(time.Since(frameStart).Seconds())
	return nil
}

/**
 * @brief Rebuilds every device dependent object after a lost device: all
 * managers are cleared, the registry is reset and the views are created
 * again from configuration.
 *
 * @return An error wrapping core.ErrDeviceLost once MaxRecoveries
 * consecutive attempts were spent.
 */
func (e *Engine) Recover() error {
	e.recoveries++
	if e.recoveries > e.config.MaxRecoveries {
		return fmt.Errorf("%w: giving up after %d recoveries", core.ErrDeviceLost, e.config.MaxRecoveries)
	}
	core.LogWarn("device lost, rebuilding resources (attempt %d/%d)", e.recoveries, e.config.MaxRecoveries)

	if err := e.systemManager.Clear(); err != nil {
		core.LogWarn("releasing resources after device loss: %s", err)
	}
	e.registry.Reset()
	if err := e.systemManager.Initialize(e.bus); err != nil {
		return fmt.Errorf("%w: reinitialize: %w", core.ErrDeviceLost, err)
	}
	e.createViews()
	return nil
}

/**
 * @brief Runs the loop until the window closes, a quit event fires, ctx is
 * done or MaxFrames frames were rendered.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64
	if e.config.TargetFPS > 0 {
		targetFrameSeconds = 1.0 / e.config.TargetFPS
	}

	for e.isRunning {
		select {
		case <-ctx.Done():
			core.LogInfo("context done, leaving the loop")
			return nil
		default:
		}
		if e.window != nil && !e.window.PumpMessages() {
			e.isRunning = false
			break
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := time.Now()

		if err := e.Tick(delta); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			e.isRunning = false
			return err
		}

		// If there is time left, give it back to the OS.
		if remaining := targetFrameSeconds - time.Since(frameStartTime).Seconds(); remaining > 0 && !e.isSuspended {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
		if e.config.MaxFrames > 0 && e.metrics.TotalFrames() >= e.config.MaxFrames {
			core.LogInfo("rendered %d frames, stopping", e.metrics.TotalFrames())
			e.isRunning = false
		}
		e.lastTime = currentTime
	}
	return nil
}

// Shutdown releases everything in reverse order of creation. It can be
// called more than once.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown || e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	errs = append(errs,
		e.systemManager.Shutdown(),
		e.assetManager.Shutdown(),
		e.renderer.Shutdown(),
	)
	if e.window != nil {
		errs = append(errs, e.window.Shutdown())
	}
	e.bus.Shutdown()
	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	case core.EVENT_CODE_DEVICE_LOST:
		core.LogError("device lost: %v", context.Data)
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.Key == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.bus.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	size, ok := context.Data.(core.ResizeEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if size.Width == e.width && size.Height == e.height {
		return false
	}
	e.width, e.height = size.Width, size.Height
	core.LogDebug("Window resize: %d, %d", size.Width, size.Height)

	// Handle minimization
	if size.Width == 0 || size.Height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.renderer.OnResize(size.Width, size.Height); err != nil {
		core.LogError(err.Error())
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(size.Width, size.Height); err != nil {
			core.LogError("game resize: %s", err)
		}
	}
	// the view manager listens too
	return false
}
