package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/math"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

type RenderSceneManagerConfig struct {
	MaxSceneCount uint32
}

// RenderSceneManager owns the scenes views draw. Scenes hold entity
// identifiers, never entities.
type RenderSceneManager struct {
	Config *RenderSceneManagerConfig

	registry *core.HashRegistry
	assets   *assets.AssetManager
	entities *RenderEntityManager
	scenes   *containers.HandleTable[core.ID, *metadata.RenderScene]
}

func NewRenderSceneManager(config *RenderSceneManagerConfig, registry *core.HashRegistry, am *assets.AssetManager, entities *RenderEntityManager) (*RenderSceneManager, error) {
	if config.MaxSceneCount == 0 {
		err := fmt.Errorf("func NewRenderSceneManager - config.MaxSceneCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &RenderSceneManager{
		Config:   config,
		registry: registry,
		assets:   am,
		entities: entities,
		scenes:   containers.NewHandleTable[core.ID, *metadata.RenderScene](),
	}, nil
}

func (sm *RenderSceneManager) Initialize() error {
	return nil
}

func (sm *RenderSceneManager) Shutdown() error {
	return sm.Clear()
}

func (sm *RenderSceneManager) Clear() error {
	return sm.scenes.Clear()
}

// CreateByID creates an empty scene. It fails if id is empty or taken.
func (sm *RenderSceneManager) CreateByID(id core.ID) bool {
	if id.IsEmpty() {
		core.LogError("cannot create a scene with the empty identifier")
		return false
	}
	if uint32(sm.scenes.Len()) >= sm.Config.MaxSceneCount {
		core.LogError("scene manager is full (%d)", sm.Config.MaxSceneCount)
		return false
	}
	if err := sm.scenes.Insert(id, metadata.NewRenderScene(id, sm.registry.Resolve(id))); err != nil {
		core.LogWarn("scene '%s' not created: %s", sm.registry.Resolve(id), err)
		return false
	}
	return true
}

/**
 * @brief Fills an existing scene from a scene descriptor. Entities that
 * fail to load are left out; the rest of the scene still builds.
 *
 * @return The number of entities added, and false when the scene does not
 * exist or the descriptor cannot be loaded.
 */
func (sm *RenderSceneManager) BuildFromFile(sceneID core.ID, fileName string) (int, bool) {
	scene := sm.GetByID(sceneID)
	if scene == nil {
		core.LogError("cannot build unknown scene '%s'", sm.registry.Resolve(sceneID))
		return 0, false
	}
	res, err := sm.assets.LoadAsset(fileName, metadata.ResourceTypeScene, nil)
	if err != nil {
		core.LogError("failed to load scene '%s': %s", fileName, err)
		return 0, false
	}
	cfg := res.Data.(*metadata.SceneConfig)
	if cfg.Name != "" {
		scene.Name = cfg.Name
	}

	added := 0
	for _, item := range cfg.Entities {
		entityID := sm.entities.CreateFromFile(item.Entity)
		if entityID.IsEmpty() {
			core.LogWarn("scene '%s': entity '%s' skipped", scene.Name, item.Entity)
			continue
		}
		transform := math.TransformFromPositionRotationScale(
			vec3(item.Position, mgl32.Vec3{}),
			vec3(item.Rotation, mgl32.Vec3{}),
			vec3(item.Scale, mgl32.Vec3{1, 1, 1}),
		)
		scene.Add(metadata.SceneItem{EntityID: entityID, Transform: transform, Layer: item.Layer})
		added++
	}
	core.LogDebug("scene '%s' built with %d of %d entities", scene.Name, added, len(cfg.Entities))
	return added, true
}

func vec3(v []float32, fallback mgl32.Vec3) mgl32.Vec3 {
	if len(v) != 3 {
		return fallback
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// AddEntity places an already created entity in a scene.
func (sm *RenderSceneManager) AddEntity(sceneID, entityID core.ID, transform *math.Transform, layer metadata.SceneLayer) bool {
	scene := sm.GetByID(sceneID)
	if scene == nil || sm.entities.GetRenderEntityByID(entityID) == nil {
		return false
	}
	if transform == nil {
		transform = math.TransformCreate()
	}
	scene.Add(metadata.SceneItem{EntityID: entityID, Transform: transform, Layer: layer})
	return true
}

func (sm *RenderSceneManager) GetByID(id core.ID) *metadata.RenderScene {
	scene, ok := sm.scenes.Get(id)
	if !ok {
		return nil
	}
	return scene
}

func (sm *RenderSceneManager) IDs() []core.ID {
	return sm.scenes.IDs()
}

func (sm *RenderSceneManager) Len() int {
	return sm.scenes.Len()
}
