package systems

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

/** @brief The configuration for the render view manager. */
type RenderViewManagerConfig struct {
	/** @brief The maximum number of views that can be registered with the system. */
	MaxViewCount uint16
	/** @brief Viewport of new views. */
	Width  uint32
	Height uint32
}

/**
 * @brief Describes a view by names. Every name is hashed into the
 * identifier of the object it binds.
 */
type RenderViewConfig struct {
	Name       string `toml:"name"`
	Camera     string `toml:"camera"`
	CameraFile string `toml:"camera_file"`
	Pipeline   string `toml:"pipeline"`
	Resource   string `toml:"resource"`
	Scene      string `toml:"scene"`
	SceneFile  string `toml:"scene_file"`
	Priority   int    `toml:"priority"`
}

type RenderViewManager struct {
	Config *RenderViewManagerConfig

	registry  *core.HashRegistry
	views     *containers.HandleTable[core.ID, *metadata.RenderView]
	cameras   *RenderCameraManager
	pipelines *RenderPipelineManager
	resources *RenderResourceManager
	scenes    *RenderSceneManager
	bus       *core.EventBus
}

func NewRenderViewManager(config *RenderViewManagerConfig, registry *core.HashRegistry, cameras *RenderCameraManager, pipelines *RenderPipelineManager, resources *RenderResourceManager, scenes *RenderSceneManager) (*RenderViewManager, error) {
	if config.MaxViewCount == 0 {
		err := fmt.Errorf("func NewRenderViewManager - config.MaxViewCount must be > 0")
		return nil, err
	}
	return &RenderViewManager{
		Config:    config,
		registry:  registry,
		views:     containers.NewHandleTable[core.ID, *metadata.RenderView](),
		cameras:   cameras,
		pipelines: pipelines,
		resources: resources,
		scenes:    scenes,
	}, nil
}

// Initialize subscribes to window resizes when a bus is given.
func (vm *RenderViewManager) Initialize(bus *core.EventBus) error {
	if bus == nil || vm.bus != nil {
		return nil
	}
	vm.bus = bus
	bus.Register(core.EVENT_CODE_RESIZED, vm, vm.onResized)
	return nil
}

func (vm *RenderViewManager) Shutdown() error {
	if vm.bus != nil {
		vm.bus.Unregister(core.EVENT_CODE_RESIZED, vm)
		vm.bus = nil
	}
	return vm.Clear()
}

func (vm *RenderViewManager) Clear() error {
	return vm.views.Clear()
}

func (vm *RenderViewManager) onResized(ctx core.EventContext) bool {
	size, ok := ctx.Data.(core.ResizeEvent)
	if !ok || size.Width == 0 || size.Height == 0 {
		return false
	}
	vm.Config.Width, vm.Config.Height = size.Width, size.Height
	viewport := metadata.Viewport{Width: float32(size.Width), Height: float32(size.Height), MaxDepth: 1}
	for _, id := range vm.views.IDs() {
		vm.SetViewport(id, viewport)
	}
	// other listeners want the resize too
	return false
}

/**
 * @brief Creates a view and whatever it binds that does not exist yet: the
 * resource set, the scene, the camera and the pipeline. Existing objects
 * are shared.
 *
 * Bindings created before a later one fails stay in their managers; only
 * Clear destroys them. A retry with the same identifiers reuses them.
 *
 * @return False when the view exists already or a binding cannot be made.
 */
func (vm *RenderViewManager) CreateByID(viewID, cameraID, pipelineID, resourceID, sceneID core.ID) bool {
	if viewID.IsEmpty() || cameraID.IsEmpty() || pipelineID.IsEmpty() || resourceID.IsEmpty() || sceneID.IsEmpty() {
		core.LogError("render view bindings must not be empty")
		return false
	}
	if vm.views.Has(viewID) {
		core.LogWarn("render view '%s' already exists", vm.registry.Resolve(viewID))
		return false
	}
	if vm.views.Len() >= int(vm.Config.MaxViewCount) {
		core.LogError("render view manager is full (%d)", vm.Config.MaxViewCount)
		return false
	}

	if vm.resources.GetByID(resourceID) == nil && !vm.resources.CreateByID(resourceID) {
		return false
	}
	if vm.scenes.GetByID(sceneID) == nil && !vm.scenes.CreateByID(sceneID) {
		return false
	}
	if vm.cameras.GetByID(cameraID) == nil && !vm.cameras.CreateByID(cameraID, "") {
		return false
	}
	if vm.pipelines.GetByID(pipelineID) == nil && !vm.pipelines.CreateByID(pipelineID) {
		return false
	}

	view := &metadata.RenderView{
		ID:         viewID,
		Name:       vm.registry.Resolve(viewID),
		CameraID:   cameraID,
		PipelineID: pipelineID,
		ResourceID: resourceID,
		SceneID:    sceneID,
		Enabled:    true,
		Viewport:   metadata.Viewport{Width: float32(vm.Config.Width), Height: float32(vm.Config.Height), MaxDepth: 1},
		Stats:      metadata.NewFrameStats(0),
	}
	if err := vm.views.Insert(viewID, view); err != nil {
		core.LogError("render view '%s': %s", view.Name, err)
		return false
	}
	if camera := vm.cameras.GetByID(cameraID); camera != nil {
		camera.SetAspect(view.Viewport.AspectRatio())
	}
	core.LogDebug("created render view '%s'", view.Name)
	return true
}

// CreateFromConfig hashes the names of cfg and creates the view. The camera
// is loaded from CameraFile and the scene built from SceneFile when set.
func (vm *RenderViewManager) CreateFromConfig(cfg RenderViewConfig) (core.ID, bool) {
	viewID := vm.registry.Hash(cfg.Name)
	cameraID := vm.registry.Hash(cfg.Camera)
	if cfg.CameraFile != "" && vm.cameras.GetByID(cameraID) == nil {
		if !vm.cameras.CreateByID(cameraID, cfg.CameraFile) {
			return core.EmptyID, false
		}
	}
	sceneID := vm.registry.Hash(cfg.Scene)
	newScene := vm.scenes.GetByID(sceneID) == nil
	if !vm.CreateByID(viewID, cameraID, vm.registry.Hash(cfg.Pipeline), vm.registry.Hash(cfg.Resource), sceneID) {
		return core.EmptyID, false
	}
	vm.SetPriority(viewID, cfg.Priority)
	if cfg.SceneFile != "" && newScene {
		if _, ok := vm.scenes.BuildFromFile(sceneID, cfg.SceneFile); !ok {
			core.LogWarn("render view '%s' starts with an empty scene", cfg.Name)
		}
	}
	return viewID, true
}

func (vm *RenderViewManager) GetByID(id core.ID) *metadata.RenderView {
	view, ok := vm.views.Get(id)
	if !ok {
		return nil
	}
	return view
}

func (vm *RenderViewManager) SetEnabled(id core.ID, enabled bool) bool {
	view := vm.GetByID(id)
	if view == nil {
		return false
	}
	view.Enabled = enabled
	return true
}

func (vm *RenderViewManager) SetPriority(id core.ID, priority int) bool {
	view := vm.GetByID(id)
	if view == nil {
		return false
	}
	view.Priority = priority
	return true
}

// SetViewport resizes a view and keeps its camera aspect in step.
func (vm *RenderViewManager) SetViewport(id core.ID, viewport metadata.Viewport) bool {
	view := vm.GetByID(id)
	if view == nil {
		return false
	}
	view.Viewport = viewport
	if camera := vm.cameras.GetByID(view.CameraID); camera != nil {
		if aspect := viewport.AspectRatio(); aspect > 0 {
			camera.SetAspect(aspect)
		}
	}
	return true
}

// Ordered returns the views by ascending priority, ties by identifier.
func (vm *RenderViewManager) Ordered() []*metadata.RenderView {
	views := make([]*metadata.RenderView, 0, vm.views.Len())
	vm.views.Each(func(_ core.ID, v *metadata.RenderView) {
		views = append(views, v)
	})
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Priority != views[j].Priority {
			return views[i].Priority < views[j].Priority
		}
		return views[i].ID < views[j].ID
	})
	return views
}

// Render renders one view through its pipeline.
func (vm *RenderViewManager) Render(id core.ID, backend renderer.Backend) error {
	view := vm.GetByID(id)
	if view == nil {
		return fmt.Errorf("%w: render view %s", core.ErrNotFound, vm.registry.Resolve(id))
	}
	return vm.render(view, backend)
}

func (vm *RenderViewManager) render(view *metadata.RenderView, backend renderer.Backend) error {
	pipeline := vm.pipelines.GetByID(view.PipelineID)
	if pipeline == nil {
		return fmt.Errorf("%w: pipeline %s of view %s", core.ErrNotFound, vm.registry.Resolve(view.PipelineID), view.Name)
	}
	pipeline.Bind(view)
	stats, err := pipeline.Render(backend)
	view.Stats = stats
	if n := stats.TotalSkipped(); n > 0 {
		core.LogDebug("view '%s' frame %d skipped %d draws or passes", view.Name, stats.Frame, n)
	}
	return err
}

/**
 * @brief Renders every enabled, fully bound view in priority order. A view
 * whose pipeline cannot render is logged and skipped; a lost device stops
 * the frame.
 *
 * @return The number of views rendered and the device-lost error, if any.
 */
func (vm *RenderViewManager) RenderAll(backend renderer.Backend) (int, error) {
	rendered := 0
	for _, view := range vm.Ordered() {
		if !view.IsReadyToRender() {
			continue
		}
		err := vm.render(view, backend)
		if errors.Is(err, core.ErrDeviceLost) {
			return rendered, err
		}
		if err != nil {
			core.LogWarn("view '%s' not rendered: %s", view.Name, err)
			continue
		}
		rendered++
	}
	return rendered, nil
}

func (vm *RenderViewManager) IDs() []core.ID {
	return vm.views.IDs()
}

func (vm *RenderViewManager) Len() int {
	return vm.views.Len()
}
