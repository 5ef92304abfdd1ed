package systems

import (
	"errors"

	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

/** @brief Capacities and surface sizes of every manager. */
type SystemManagerConfig struct {
	MaxTextureCount   uint32
	MaxMeshCount      uint32
	MaxMaterialCount  uint32
	MaxEntityCount    uint32
	MaxSceneCount     uint32
	MaxCameraCount    uint16
	MaxResourceCount  uint32
	MaxPipelineCount  uint32
	MaxViewCount      uint16
	PrimitiveSegments uint32
	Width             uint32
	Height            uint32
	ClearColour       metadata.ClearColour
	SyncInterval      int
}

func DefaultSystemManagerConfig() *SystemManagerConfig {
	return &SystemManagerConfig{
		MaxTextureCount:   1024,
		MaxMeshCount:      512,
		MaxMaterialCount:  512,
		MaxEntityCount:    4096,
		MaxSceneCount:     32,
		MaxCameraCount:    32,
		MaxResourceCount:  16,
		MaxPipelineCount:  16,
		MaxViewCount:      16,
		PrimitiveSegments: DEFAULT_PRIMITIVE_SEGMENTS,
		Width:             1920,
		Height:            1080,
		ClearColour:       DefaultClearColour,
		SyncInterval:      1,
	}
}

// SystemManager owns every resource manager and wires them together.
type SystemManager struct {
	Registry *core.HashRegistry

	Textures  *TextureManager
	Meshes    *MeshManager
	Materials *MaterialManager
	Entities  *RenderEntityManager
	Scenes    *RenderSceneManager
	Cameras   *RenderCameraManager
	Resources *RenderResourceManager
	Pipelines *RenderPipelineManager
	Views     *RenderViewManager
}

func NewSystemManager(config *SystemManagerConfig, registry *core.HashRegistry, am *assets.AssetManager, backend renderer.Backend) (*SystemManager, error) {
	if config == nil {
		config = DefaultSystemManagerConfig()
	}
	ts, err := NewTextureManager(&TextureManagerConfig{
		MaxTextureCount: config.MaxTextureCount,
	}, registry, am, backend)
	if err != nil {
		return nil, err
	}
	mls, err := NewMeshManager(&MeshManagerConfig{
		MaxMeshCount:      config.MaxMeshCount,
		PrimitiveSegments: config.PrimitiveSegments,
	}, registry, am)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialManager(&MaterialManagerConfig{
		MaxMaterialCount: config.MaxMaterialCount,
	}, registry, am, ts)
	if err != nil {
		return nil, err
	}
	es, err := NewRenderEntityManager(&RenderEntityManagerConfig{
		MaxEntityCount: config.MaxEntityCount,
	}, registry, am, mls, ms)
	if err != nil {
		return nil, err
	}
	ss, err := NewRenderSceneManager(&RenderSceneManagerConfig{
		MaxSceneCount: config.MaxSceneCount,
	}, registry, am, es)
	if err != nil {
		return nil, err
	}
	cs, err := NewRenderCameraManager(&RenderCameraManagerConfig{
		MaxCameraCount: config.MaxCameraCount,
	}, registry, am)
	if err != nil {
		return nil, err
	}
	rs, err := NewRenderResourceManager(&RenderResourceManagerConfig{
		MaxResourceCount: config.MaxResourceCount,
		Width:            config.Width,
		Height:           config.Height,
	}, registry, ts)
	if err != nil {
		return nil, err
	}
	ps, err := NewRenderPipelineManager(&RenderPipelineManagerConfig{
		MaxPipelineCount: config.MaxPipelineCount,
		Width:            config.Width,
		Height:           config.Height,
		ClearColour:      config.ClearColour,
		SyncInterval:     config.SyncInterval,
	}, registry, backend, &PipelineSources{
		Textures:  ts,
		Meshes:    mls,
		Materials: ms,
		Entities:  es,
		Scenes:    ss,
		Cameras:   cs,
		Resources: rs,
	})
	if err != nil {
		return nil, err
	}
	rvs, err := NewRenderViewManager(&RenderViewManagerConfig{
		MaxViewCount: config.MaxViewCount,
		Width:        config.Width,
		Height:       config.Height,
	}, registry, cs, ps, rs, ss)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		Registry:  registry,
		Textures:  ts,
		Meshes:    mls,
		Materials: ms,
		Entities:  es,
		Scenes:    ss,
		Cameras:   cs,
		Resources: rs,
		Pipelines: ps,
		Views:     rvs,
	}, nil
}

// Initialize brings the managers up leaf first.
func (sm *SystemManager) Initialize(bus *core.EventBus) error {
	if err := sm.Textures.Initialize(); err != nil {
		return err
	}
	if err := sm.Meshes.Initialize(); err != nil {
		return err
	}
	if err := sm.Materials.Initialize(); err != nil {
		return err
	}
	if err := sm.Entities.Initialize(); err != nil {
		return err
	}
	if err := sm.Scenes.Initialize(); err != nil {
		return err
	}
	if err := sm.Cameras.Initialize(); err != nil {
		return err
	}
	if err := sm.Resources.Initialize(); err != nil {
		return err
	}
	if err := sm.Pipelines.Initialize(); err != nil {
		return err
	}
	return sm.Views.Initialize(bus)
}

// Clear empties every manager, consumers first, so the set can be
// initialized again after a device loss.
func (sm *SystemManager) Clear() error {
	return errors.Join(
		sm.Views.Clear(),
		sm.Pipelines.Clear(),
		sm.Resources.Clear(),
		sm.Scenes.Clear(),
		sm.Entities.Clear(),
		sm.Materials.Clear(),
		sm.Meshes.Clear(),
		sm.Textures.Clear(),
		sm.Cameras.Clear(),
	)
}

func (sm *SystemManager) Shutdown() error {
	return errors.Join(
		sm.Views.Shutdown(),
		sm.Pipelines.Shutdown(),
		sm.Resources.Shutdown(),
		sm.Scenes.Shutdown(),
		sm.Entities.Shutdown(),
		sm.Materials.Shutdown(),
		sm.Meshes.Shutdown(),
		sm.Textures.Shutdown(),
		sm.Cameras.Shutdown(),
	)
}
