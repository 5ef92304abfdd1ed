package systems

import (
	"fmt"

	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

type MaterialManagerConfig struct {
	/** @brief The maximum number of loaded materials. */
	MaxMaterialCount uint32
}

/**
 * @brief Owns materials. A material resolves its texture files through the
 * texture manager and holds a reference on each texture it found.
 */
type MaterialManager struct {
	Config *MaterialManagerConfig

	registry  *core.HashRegistry
	assets    *assets.AssetManager
	textures  *TextureManager
	materials *containers.HandleTable[core.ID, *metadata.Material]
}

func NewMaterialManager(config *MaterialManagerConfig, registry *core.HashRegistry, am *assets.AssetManager, ts *TextureManager) (*MaterialManager, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialManager - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &MaterialManager{
		Config:    config,
		registry:  registry,
		assets:    am,
		textures:  ts,
		materials: containers.NewHandleTable[core.ID, *metadata.Material](),
	}, nil
}

// Initialize registers the default material, which draws with the default
// textures of every slot.
func (ms *MaterialManager) Initialize() error {
	id := ms.registry.Hash(metadata.DefaultMaterialName)
	_, ok := ms.materials.GetOrCreate(id, func() (*metadata.Material, error) {
		return &metadata.Material{
			ID:           id,
			FilePath:     metadata.DefaultMaterialName,
			VertexShader: "gbuffer.vs",
			PixelShader:  "gbuffer.ps",
			Parameters:   map[string]float32{},
			Shading:      metadata.ShadingDeferred,
		}, nil
	})
	if !ok {
		return fmt.Errorf("failed to create the default material")
	}
	return nil
}

func (ms *MaterialManager) Shutdown() error {
	return ms.Clear()
}

func (ms *MaterialManager) Clear() error {
	return ms.materials.Clear()
}

/**
 * @brief Loads a material descriptor and the textures it names. A texture
 * that fails to load leaves its slot empty; the material itself still
 * loads.
 *
 * @return The material identifier, or core.EmptyID when the descriptor is
 * missing or malformed.
 */
func (ms *MaterialManager) CreateFromFile(fileName string) core.ID {
	if fileName == "" {
		return core.EmptyID
	}
	id := ms.registry.Hash(fileName)
	material, ok := ms.materials.GetOrCreate(id, func() (*metadata.Material, error) {
		if uint32(ms.materials.Len()) >= ms.Config.MaxMaterialCount {
			return nil, fmt.Errorf("material manager is full (%d)", ms.Config.MaxMaterialCount)
		}
		res, err := ms.assets.LoadAsset(fileName, metadata.ResourceTypeMaterial, nil)
		if err != nil {
			return nil, err
		}
		cfg := res.Data.(*metadata.MaterialConfig)

		material := &metadata.Material{
			ID:           id,
			FilePath:     res.FullPath,
			VertexShader: cfg.VertexShader,
			PixelShader:  cfg.PixelShader,
			Parameters:   make(map[string]float32, len(cfg.Parameter)),
			Shading:      cfg.Shading,
		}
		for k, v := range cfg.Parameter {
			material.Parameters[k] = v
		}
		for key, file := range cfg.Texture {
			slot, known := metadata.MaterialTextureSlots[key]
			if !known {
				core.LogWarn("material '%s': unknown texture key '%s'", fileName, key)
				continue
			}
			var texID core.ID
			if slot == metadata.MaterialSlotAlbedo {
				texID = ms.textures.CreateFromFileSRGB(file)
			} else {
				texID = ms.textures.CreateFromFile(file)
			}
			if texID.IsEmpty() {
				core.LogWarn("material '%s': %s '%s' is missing, slot left empty", fileName, key, file)
				continue
			}
			ms.textures.Retain(texID)
			material.Textures[slot] = texID
		}
		return material, nil
	})
	if !ok {
		core.LogError("failed to load material '%s'", ms.registry.Resolve(id))
		return core.EmptyID
	}
	return material.ID
}

func (ms *MaterialManager) GetByID(id core.ID) *metadata.Material {
	material, ok := ms.materials.Get(id)
	if !ok {
		return nil
	}
	return material
}

func (ms *MaterialManager) GetDefault() *metadata.Material {
	return ms.GetByID(core.HashString(metadata.DefaultMaterialName))
}

/**
 * @brief Resolves the shader resource views of a material, slot by slot.
 * Empty slots and views that cannot be created fall back to the default
 * texture of the slot.
 */
func (ms *MaterialManager) ShaderResourceViews(id core.ID) []metadata.GPUHandle {
	views := make([]metadata.GPUHandle, metadata.MaterialSlotCount)
	material := ms.GetByID(id)
	for slot := metadata.MaterialTextureSlot(0); slot < metadata.MaterialSlotCount; slot++ {
		texID := core.EmptyID
		if material != nil {
			texID = material.Textures[slot]
		}
		if !texID.IsEmpty() {
			if srv, err := ms.textures.ShaderResourceView(texID); err == nil {
				views[slot] = srv
				continue
			}
		}
		if def := ms.textures.GetDefault(slot); def != nil {
			if srv, err := ms.textures.ShaderResourceView(def.ID); err == nil {
				views[slot] = srv
			}
		}
	}
	return views
}

func (ms *MaterialManager) Retain(id core.ID) int  { return ms.materials.Retain(id) }
func (ms *MaterialManager) Release(id core.ID) int { return ms.materials.Release(id) }
func (ms *MaterialManager) Refs(id core.ID) int    { return ms.materials.Refs(id) }
func (ms *MaterialManager) Len() int               { return ms.materials.Len() }
