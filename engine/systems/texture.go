package systems

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

type TextureManagerConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

/**
 * @brief Owns every texture, keyed by the hash of its file or logical name.
 * The manager is the only owner; entities and materials hold identifiers.
 */
type TextureManager struct {
	Config *TextureManagerConfig

	registry *core.HashRegistry
	assets   *assets.AssetManager
	backend  renderer.Backend
	textures *containers.HandleTable[core.ID, *metadata.Texture]
}

func NewTextureManager(config *TextureManagerConfig, registry *core.HashRegistry, am *assets.AssetManager, backend renderer.Backend) (*TextureManager, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureManager - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &TextureManager{
		Config:   config,
		registry: registry,
		assets:   am,
		backend:  backend,
		textures: containers.NewHandleTable[core.ID, *metadata.Texture](),
	}, nil
}

// Initialize creates the fallback textures that need no asset on disk.
func (tm *TextureManager) Initialize() error {
	defaults := []struct {
		name   string
		size   uint32
		pixels []uint8
	}{
		{metadata.DEFAULT_TEXTURE_NAME, 16, metadata.CheckerboardPixels(16)},
		{metadata.DEFAULT_ALBEDO_TEXTURE_NAME, 1, metadata.SolidPixels(1, 1, 255, 255, 255, 255)},
		{metadata.DEFAULT_BLACK_TEXTURE_NAME, 1, metadata.SolidPixels(1, 1, 0, 0, 0, 255)},
		{metadata.DEFAULT_NORMAL_TEXTURE_NAME, 1, metadata.SolidPixels(1, 1, 128, 128, 255, 255)},
	}
	for _, d := range defaults {
		desc := metadata.NewTextureDesc(d.name, d.size, d.size, metadata.TextureFormatR8G8B8A8Unorm, metadata.TextureUsageImmutable)
		if id := tm.createFromPixels(desc, d.pixels); id.IsEmpty() {
			return fmt.Errorf("failed to create default texture %s: %w", d.name, core.ErrDeviceFailure)
		}
	}
	return nil
}

func (tm *TextureManager) Shutdown() error {
	return tm.Clear()
}

// Clear destroys every texture. The manager can be initialized again.
func (tm *TextureManager) Clear() error {
	return tm.textures.Clear()
}

func (tm *TextureManager) full() error {
	if uint32(tm.textures.Len()) >= tm.Config.MaxTextureCount {
		return fmt.Errorf("texture manager is full (%d); adjust MaxTextureCount", tm.Config.MaxTextureCount)
	}
	return nil
}

/**
 * @brief Loads an image from the asset directory and creates an immutable
 * texture for it. Loading the same file twice returns the same texture.
 *
 * @param fileName The file name relative to the textures directory.
 * @return The texture identifier, or core.EmptyID when the file is missing,
 * cannot be decoded or the device refuses the texture.
 */
func (tm *TextureManager) CreateFromFile(fileName string) core.ID {
	return tm.createFromFile(fileName, &metadata.ImageResourceParams{})
}

// CreateFromFileSRGB is CreateFromFile for colour data stored in sRGB.
func (tm *TextureManager) CreateFromFileSRGB(fileName string) core.ID {
	return tm.createFromFile(fileName, &metadata.ImageResourceParams{SRGB: true})
}

func (tm *TextureManager) createFromFile(fileName string, params *metadata.ImageResourceParams) core.ID {
	if fileName == "" {
		return core.EmptyID
	}
	id := tm.registry.Hash(fileName)
	texture, ok := tm.textures.GetOrCreate(id, func() (*metadata.Texture, error) {
		if err := tm.full(); err != nil {
			return nil, err
		}
		res, err := tm.assets.LoadAsset(fileName, metadata.ResourceTypeImage, params)
		if err != nil {
			return nil, err
		}
		img := res.Data.(*metadata.ImageResourceData)

		format := metadata.TextureFormatR8G8B8A8Unorm
		if params.SRGB {
			format = metadata.TextureFormatR8G8B8A8SRGB
		}
		desc := metadata.NewTextureDesc(fileName, img.Width, img.Height, format, metadata.TextureUsageImmutable)
		texture, err := tm.newTexture(id, desc, img.Pixels)
		if err != nil {
			return nil, err
		}
		texture.FromFile = true
		texture.HasTransparency = img.HasTransparency
		return texture, nil
	})
	if !ok {
		core.LogError("failed to create texture '%s' from file", tm.registry.Resolve(id))
		return core.EmptyID
	}
	return texture.ID
}

/**
 * @brief Creates a texture from a descriptor without any file I/O. Calling
 * it again with the same name returns true without creating anything.
 *
 * @return True when a texture exists under desc.Name afterwards.
 */
func (tm *TextureManager) CreateTexture2D(desc metadata.TextureDesc) bool {
	if desc.Name == "" {
		core.LogError("CreateTexture2D requires a logical name")
		return false
	}
	id := tm.registry.Hash(desc.Name)
	if existing, ok := tm.textures.Get(id); ok {
		if existing.Width != desc.Width || existing.Height != desc.Height || existing.Format != desc.Format {
			core.LogDebug("texture '%s' already exists with a different descriptor; keeping the original", desc.Name)
		}
		return true
	}
	_, ok := tm.textures.GetOrCreate(id, func() (*metadata.Texture, error) {
		if err := tm.full(); err != nil {
			return nil, err
		}
		return tm.newTexture(id, desc, nil)
	})
	if !ok {
		core.LogError("failed to create texture '%s'", tm.registry.Resolve(id))
	}
	return ok
}

// CreateTransientTexture2D creates a texture under a generated unique name,
// for surfaces nobody needs to find by name.
func (tm *TextureManager) CreateTransientTexture2D(desc metadata.TextureDesc) core.ID {
	prefix := desc.Name
	if prefix == "" {
		prefix = "transient"
	}
	desc.Name = fmt.Sprintf("%s_%s", prefix, uuid.NewString())
	if !tm.CreateTexture2D(desc) {
		return core.EmptyID
	}
	return tm.registry.Hash(desc.Name)
}

func (tm *TextureManager) createFromPixels(desc metadata.TextureDesc, pixels []uint8) core.ID {
	id := tm.registry.Hash(desc.Name)
	texture, ok := tm.textures.GetOrCreate(id, func() (*metadata.Texture, error) {
		return tm.newTexture(id, desc, pixels)
	})
	if !ok {
		core.LogError("failed to create texture '%s'", tm.registry.Resolve(id))
		return core.EmptyID
	}
	return texture.ID
}

func (tm *TextureManager) newTexture(id core.ID, desc metadata.TextureDesc, pixels []uint8) (*metadata.Texture, error) {
	if err := desc.Validate(); err != nil {
		core.LogError("texture '%s': %s", desc.Name, err)
		return nil, err
	}
	d2 := desc.Resolve()
	d2.InitialData = pixels
	handle, err := tm.backend.CreateTexture2D(d2)
	if err != nil {
		core.LogError("texture '%s': %s", desc.Name, err)
		return nil, err
	}
	core.LogDebug("created %s texture '%s' %dx%d %s", desc.Usage, desc.Name, desc.Width, desc.Height, desc.Format)
	return metadata.NewTexture(id, desc.Name, d2, desc.Usage, handle, tm.backend), nil
}

// GetByID returns the texture or nil.
func (tm *TextureManager) GetByID(id core.ID) *metadata.Texture {
	texture, ok := tm.textures.Get(id)
	if !ok {
		return nil
	}
	return texture
}

// GetByName looks a texture up by the name it was created with.
func (tm *TextureManager) GetByName(name string) *metadata.Texture {
	return tm.GetByID(core.HashString(name))
}

// GetDefault returns the fallback texture for a material slot.
func (tm *TextureManager) GetDefault(slot metadata.MaterialTextureSlot) *metadata.Texture {
	switch slot {
	case metadata.MaterialSlotAlbedo:
		return tm.GetByName(metadata.DEFAULT_ALBEDO_TEXTURE_NAME)
	case metadata.MaterialSlotNormal:
		return tm.GetByName(metadata.DEFAULT_NORMAL_TEXTURE_NAME)
	case metadata.MaterialSlotRoughness, metadata.MaterialSlotMetallic:
		return tm.GetByName(metadata.DEFAULT_BLACK_TEXTURE_NAME)
	}
	return tm.GetByName(metadata.DEFAULT_TEXTURE_NAME)
}

// ShaderResourceView returns the view of a texture, creating it on first use.
func (tm *TextureManager) ShaderResourceView(id core.ID) (metadata.GPUHandle, error) {
	texture := tm.GetByID(id)
	if texture == nil {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: texture %s", core.ErrNotFound, tm.registry.Resolve(id))
	}
	if texture.SRV != metadata.InvalidGPUHandle {
		return texture.SRV, nil
	}
	if !texture.IsShaderVisible() {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: texture %s is not shader visible", core.ErrDeviceFailure, texture.Name)
	}
	srv, err := tm.backend.CreateShaderResourceView(texture.Handle, texture.Format.ShaderResourceFormat())
	if err != nil {
		return metadata.InvalidGPUHandle, err
	}
	texture.SRV = srv
	return srv, nil
}

func (tm *TextureManager) Retain(id core.ID) int {
	return tm.textures.Retain(id)
}

func (tm *TextureManager) Release(id core.ID) int {
	return tm.textures.Release(id)
}

func (tm *TextureManager) Refs(id core.ID) int {
	return tm.textures.Refs(id)
}

func (tm *TextureManager) Len() int {
	return tm.textures.Len()
}

// Each visits textures in identifier order.
func (tm *TextureManager) Each(fn func(texture *metadata.Texture)) {
	tm.textures.Each(func(_ core.ID, t *metadata.Texture) { fn(t) })
}
