package metadata

import "github.com/spaghettifunk/dolas/engine/core"

type ResourceType int

/** @brief Pre-defined resource types, one per asset directory. */
const (
	/** @brief Text resource type. */
	ResourceTypeText ResourceType = iota
	/** @brief Binary resource type. */
	ResourceTypeBinary
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Material descriptor. */
	ResourceTypeMaterial
	/** @brief Mesh descriptor. */
	ResourceTypeMesh
	/** @brief Render entity descriptor. */
	ResourceTypeEntity
	/** @brief Scene descriptor. */
	ResourceTypeScene
	/** @brief Camera descriptor. */
	ResourceTypeCamera
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeText:
		return "text"
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypeEntity:
		return "entity"
	case ResourceTypeScene:
		return "scene"
	case ResourceTypeCamera:
		return "camera"
	}
	return "unknown"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The type of the loader which handled this resource. */
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the raw resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/** @brief Logical names of the surfaces in a render resource set. */
const (
	GBufferAName      = "gbuffer_a_map"
	GBufferBName      = "gbuffer_b_map"
	GBufferCName      = "gbuffer_c_map"
	GBufferDName      = "gbuffer_d_map"
	DepthStencilName  = "depth_stencil_map"
	SceneResultName   = "scene_result_map"
	GBufferChannelLen = 4
)

/**
 * @brief The surfaces a pipeline renders into for one view. It only stores
 * texture identifiers; an empty field means the surface failed to create.
 */
type RenderResource struct {
	ID           core.ID
	GBuffer      [GBufferChannelLen]core.ID
	DepthStencil core.ID
	SceneResult  core.ID
	Width        uint32
	Height       uint32
}

func (r *RenderResource) HasGBuffer() bool {
	for _, id := range r.GBuffer {
		if id.IsEmpty() {
			return false
		}
	}
	return true
}

// Surfaces lists every texture identifier, empty ones included.
func (r *RenderResource) Surfaces() []core.ID {
	out := make([]core.ID, 0, GBufferChannelLen+2)
	out = append(out, r.GBuffer[:]...)
	return append(out, r.DepthStencil, r.SceneResult)
}

// Clear forgets the identifiers. The textures stay with the texture manager.
func (r *RenderResource) Clear() error {
	r.GBuffer = [GBufferChannelLen]core.ID{}
	r.DepthStencil = core.EmptyID
	r.SceneResult = core.EmptyID
	return nil
}
