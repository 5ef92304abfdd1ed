package systems

import (
	"fmt"

	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

type RenderPipelineManagerConfig struct {
	MaxPipelineCount uint32
	/** @brief Viewport new pipelines start with. */
	Width  uint32
	Height uint32
	/** @brief Background colour of every new pipeline. */
	ClearColour metadata.ClearColour
	/** @brief Present sync interval, 0 for no vsync. */
	SyncInterval int
}

/**
 * @brief Owns render pipelines. Unlike the other managers, creating an
 * identifier twice is a caller error.
 */
type RenderPipelineManager struct {
	Config *RenderPipelineManagerConfig

	registry  *core.HashRegistry
	backend   renderer.Backend
	sources   *PipelineSources
	pipelines *containers.HandleTable[core.ID, *RenderPipeline]
}

func NewRenderPipelineManager(config *RenderPipelineManagerConfig, registry *core.HashRegistry, backend renderer.Backend, sources *PipelineSources) (*RenderPipelineManager, error) {
	if config.MaxPipelineCount == 0 {
		err := fmt.Errorf("func NewRenderPipelineManager - config.MaxPipelineCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &RenderPipelineManager{
		Config:    config,
		registry:  registry,
		backend:   backend,
		sources:   sources,
		pipelines: containers.NewHandleTable[core.ID, *RenderPipeline](),
	}, nil
}

func (pm *RenderPipelineManager) Initialize() error {
	return nil
}

func (pm *RenderPipelineManager) Shutdown() error {
	return pm.Clear()
}

// Clear tears down every pipeline.
func (pm *RenderPipelineManager) Clear() error {
	return pm.pipelines.Clear()
}

/**
 * @brief Creates and initializes the pipeline id.
 *
 * @return False when id is empty, already exists, the manager is full or
 * the device refuses the pipeline state.
 */
func (pm *RenderPipelineManager) CreateByID(id core.ID) bool {
	if id.IsEmpty() {
		core.LogError("cannot create a pipeline with the empty identifier")
		return false
	}
	if pm.pipelines.Has(id) {
		core.LogError("render pipeline '%s' already exists", pm.registry.Resolve(id))
		return false
	}
	if uint32(pm.pipelines.Len()) >= pm.Config.MaxPipelineCount {
		core.LogError("render pipeline manager is full (%d)", pm.Config.MaxPipelineCount)
		return false
	}

	viewport := metadata.Viewport{Width: float32(pm.Config.Width), Height: float32(pm.Config.Height), MaxDepth: 1}
	pipeline := NewRenderPipeline(id, pm.sources, viewport)
	if pm.Config.ClearColour != (metadata.ClearColour{}) {
		pipeline.Colour = pm.Config.ClearColour
	}
	if err := pipeline.Initialize(pm.backend); err != nil {
		core.LogError("render pipeline '%s': %s", pm.registry.Resolve(id), err)
		return false
	}
	pipeline.SetSyncInterval(pm.Config.SyncInterval)

	if err := pm.pipelines.Insert(id, pipeline); err != nil {
		core.LogError("render pipeline '%s': %s", pm.registry.Resolve(id), err)
		_ = pipeline.Clear()
		return false
	}
	core.LogDebug("created render pipeline '%s'", pm.registry.Resolve(id))
	return true
}

func (pm *RenderPipelineManager) GetByID(id core.ID) *RenderPipeline {
	pipeline, ok := pm.pipelines.Get(id)
	if !ok {
		return nil
	}
	return pipeline
}

func (pm *RenderPipelineManager) IDs() []core.ID {
	return pm.pipelines.IDs()
}

func (pm *RenderPipelineManager) Len() int {
	return pm.pipelines.Len()
}
