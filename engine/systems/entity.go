package systems

import (
	"fmt"

	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

type RenderEntityManagerConfig struct {
	MaxEntityCount uint32
}

/**
 * @brief Owns render entities. Entities share their mesh and material with
 * every other entity naming the same files; each entity holds one
 * reference on both.
 */
type RenderEntityManager struct {
	Config *RenderEntityManagerConfig

	registry  *core.HashRegistry
	assets    *assets.AssetManager
	meshes    *MeshManager
	materials *MaterialManager
	entities  *containers.HandleTable[core.ID, *metadata.RenderEntity]
}

func NewRenderEntityManager(config *RenderEntityManagerConfig, registry *core.HashRegistry, am *assets.AssetManager, meshes *MeshManager, materials *MaterialManager) (*RenderEntityManager, error) {
	if config.MaxEntityCount == 0 {
		err := fmt.Errorf("func NewRenderEntityManager - config.MaxEntityCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &RenderEntityManager{
		Config:    config,
		registry:  registry,
		assets:    am,
		meshes:    meshes,
		materials: materials,
		entities:  containers.NewHandleTable[core.ID, *metadata.RenderEntity](),
	}, nil
}

func (em *RenderEntityManager) Initialize() error {
	return nil
}

func (em *RenderEntityManager) Shutdown() error {
	return em.Clear()
}

func (em *RenderEntityManager) Clear() error {
	return em.entities.Clear()
}

/**
 * @brief Creates an entity from its descriptor file. The descriptor must
 * name a mesh and a material and both must load.
 *
 * @return The entity identifier, or core.EmptyID on any load failure.
 */
func (em *RenderEntityManager) CreateFromFile(fileName string) core.ID {
	if fileName == "" {
		return core.EmptyID
	}
	id := em.registry.Hash(fileName)
	entity, ok := em.entities.GetOrCreate(id, func() (*metadata.RenderEntity, error) {
		if uint32(em.entities.Len()) >= em.Config.MaxEntityCount {
			return nil, fmt.Errorf("entity manager is full (%d)", em.Config.MaxEntityCount)
		}
		res, err := em.assets.LoadAsset(fileName, metadata.ResourceTypeEntity, nil)
		if err != nil {
			return nil, err
		}
		cfg := res.Data.(*metadata.EntityConfig)

		meshID := em.meshes.CreateFromFile(cfg.Mesh)
		if meshID.IsEmpty() {
			return nil, fmt.Errorf("%w: entity '%s' mesh '%s'", core.ErrLoadFailed, fileName, cfg.Mesh)
		}
		materialID := em.materials.CreateFromFile(cfg.Material)
		if materialID.IsEmpty() {
			return nil, fmt.Errorf("%w: entity '%s' material '%s'", core.ErrLoadFailed, fileName, cfg.Material)
		}
		em.meshes.Retain(meshID)
		em.materials.Retain(materialID)

		name := cfg.Name
		if name == "" {
			name = fileName
		}
		return &metadata.RenderEntity{
			ID:         id,
			Name:       name,
			FilePath:   res.FullPath,
			MeshID:     meshID,
			MaterialID: materialID,
		}, nil
	})
	if !ok {
		core.LogError("failed to create render entity '%s'", em.registry.Resolve(id))
		return core.EmptyID
	}
	return entity.ID
}

// GetRenderEntityByID returns nil for unknown identifiers, including the
// empty one.
func (em *RenderEntityManager) GetRenderEntityByID(id core.ID) *metadata.RenderEntity {
	entity, ok := em.entities.Get(id)
	if !ok {
		return nil
	}
	return entity
}

func (em *RenderEntityManager) GetRenderEntityByFileName(fileName string) *metadata.RenderEntity {
	if fileName == "" {
		return nil
	}
	return em.GetRenderEntityByID(core.HashString(fileName))
}

func (em *RenderEntityManager) IDs() []core.ID {
	return em.entities.IDs()
}

func (em *RenderEntityManager) Len() int {
	return em.entities.Len()
}
