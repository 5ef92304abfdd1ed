package systems

import (
	"fmt"

	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

type RenderResourceManagerConfig struct {
	MaxResourceCount uint32
	/** @brief Resolution every surface is created at. */
	Width  uint32
	Height uint32
}

type surfaceSpec struct {
	name   string
	format metadata.TextureFormat
	usage  metadata.TextureUsage
}

// The surfaces of one resource set, in RenderResource field order.
var surfaceSpecs = []surfaceSpec{
	{metadata.GBufferAName, metadata.TextureFormatR8G8B8A8Unorm, metadata.TextureUsageRenderTarget},
	{metadata.GBufferBName, metadata.TextureFormatR16G16B16A16Float, metadata.TextureUsageRenderTarget},
	{metadata.GBufferCName, metadata.TextureFormatR8G8B8A8Unorm, metadata.TextureUsageRenderTarget},
	{metadata.GBufferDName, metadata.TextureFormatR16G16B16A16Float, metadata.TextureUsageRenderTarget},
	{metadata.DepthStencilName, metadata.TextureFormatR24G8Typeless, metadata.TextureUsageDepthStencil},
	{metadata.SceneResultName, metadata.TextureFormatR16G16B16A16Float, metadata.TextureUsageRenderTarget},
}

/**
 * @brief Allocates the surfaces a pipeline renders into. A resource set only
 * records texture identifiers; the textures stay owned by the texture
 * manager.
 */
type RenderResourceManager struct {
	Config *RenderResourceManagerConfig

	registry  *core.HashRegistry
	textures  *TextureManager
	resources *containers.HandleTable[core.ID, *metadata.RenderResource]
}

func NewRenderResourceManager(config *RenderResourceManagerConfig, registry *core.HashRegistry, ts *TextureManager) (*RenderResourceManager, error) {
	if config.MaxResourceCount == 0 || config.Width == 0 || config.Height == 0 {
		err := fmt.Errorf("func NewRenderResourceManager - config.MaxResourceCount, Width and Height must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &RenderResourceManager{
		Config:    config,
		registry:  registry,
		textures:  ts,
		resources: containers.NewHandleTable[core.ID, *metadata.RenderResource](),
	}, nil
}

func (rm *RenderResourceManager) Initialize() error {
	return nil
}

func (rm *RenderResourceManager) Shutdown() error {
	return rm.Clear()
}

// Clear forgets every resource set. The textures they name are left to the
// texture manager.
func (rm *RenderResourceManager) Clear() error {
	return rm.resources.Clear()
}

// SurfaceName is the logical texture name of one surface of a resource set.
func SurfaceName(surface string, id core.ID) string {
	return fmt.Sprintf("%s#%d", surface, uint32(id))
}

/**
 * @brief Creates the resource set id. A surface the device refuses is left
 * empty and the set is still stored.
 *
 * @return False only when id is empty, taken or the manager is full.
 */
func (rm *RenderResourceManager) CreateByID(id core.ID) bool {
	if id.IsEmpty() {
		core.LogError("cannot create a render resource with the empty identifier")
		return false
	}
	if rm.resources.Has(id) {
		core.LogWarn("render resource '%s' already exists", rm.registry.Resolve(id))
		return false
	}
	if uint32(rm.resources.Len()) >= rm.Config.MaxResourceCount {
		core.LogError("render resource manager is full (%d)", rm.Config.MaxResourceCount)
		return false
	}

	resource := &metadata.RenderResource{ID: id, Width: rm.Config.Width, Height: rm.Config.Height}
	ids := make([]core.ID, len(surfaceSpecs))
	for i, spec := range surfaceSpecs {
		name := SurfaceName(spec.name, id)
		desc := metadata.NewTextureDesc(name, rm.Config.Width, rm.Config.Height, spec.format, spec.usage)
		if !rm.textures.CreateTexture2D(desc) {
			core.LogWarn("render resource '%s': surface %s unavailable", rm.registry.Resolve(id), spec.name)
			continue
		}
		ids[i] = rm.registry.Hash(name)
	}
	copy(resource.GBuffer[:], ids[:metadata.GBufferChannelLen])
	resource.DepthStencil = ids[metadata.GBufferChannelLen]
	resource.SceneResult = ids[metadata.GBufferChannelLen+1]

	if err := rm.resources.Insert(id, resource); err != nil {
		core.LogError("failed to store render resource '%s': %s", rm.registry.Resolve(id), err)
		return false
	}
	return true
}

func (rm *RenderResourceManager) GetByID(id core.ID) *metadata.RenderResource {
	resource, ok := rm.resources.Get(id)
	if !ok {
		return nil
	}
	return resource
}

func (rm *RenderResourceManager) IDs() []core.ID {
	return rm.resources.IDs()
}

func (rm *RenderResourceManager) Len() int {
	return rm.resources.Len()
}
