package metadata

/** @brief An opaque reference to an object owned by the graphics device. 0 is invalid. */
type GPUHandle uint64

const InvalidGPUHandle GPUHandle = 0

/**
 * @brief Anything that can give device objects back. Resources keep one so
 * their Clear can release what they own without knowing the backend.
 */
type ResourceReleaser interface {
	ReleaseResource(handle GPUHandle) error
}

/** @brief How the device is allowed to access a resource. */
type ResourceUsage int

const (
	/** @brief GPU read and write. */
	ResourceUsageDefault ResourceUsage = iota
	/** @brief GPU read only, initialised at creation. */
	ResourceUsageImmutable
	/** @brief GPU read, CPU write. */
	ResourceUsageDynamic
	/** @brief CPU read and write, used for copies. */
	ResourceUsageStaging
)

func (u ResourceUsage) String() string {
	switch u {
	case ResourceUsageImmutable:
		return "immutable"
	case ResourceUsageDynamic:
		return "dynamic"
	case ResourceUsageStaging:
		return "staging"
	default:
		return "default"
	}
}

/** @brief The pipeline stages a resource may be bound to. */
type BindFlag uint32

const (
	BindShaderResource BindFlag = 1 << iota
	BindRenderTarget
	BindDepthStencil
	BindUnorderedAccess
)

func (b BindFlag) Has(flag BindFlag) bool {
	return b&flag == flag
}

/** @brief CPU access rights on a resource. */
type CPUAccessFlag uint32

const (
	CPUAccessWrite CPUAccessFlag = 1 << iota
	CPUAccessRead
)

/** @brief Miscellaneous resource options. */
type ResourceMiscFlag uint32

const (
	ResourceMiscGenerateMips ResourceMiscFlag = 1 << iota
)

/** @brief A rectangle of the render target that rasterisation maps to. */
type Viewport struct {
	X        float32
	Y        float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

/** @brief Returns width/height, or 0 for an empty viewport. */
func (v Viewport) AspectRatio() float32 {
	if v.Height == 0 {
		return 0
	}
	return v.Width / v.Height
}

/** @brief An RGBA colour used to clear render targets. */
type ClearColour [4]float32

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
)

/** @brief Determines how triangles are filled. */
type FillMode int

const (
	FillModeSolid FillMode = iota
	FillModeWireframe
)

type RasterizerDesc struct {
	CullMode              FaceCullMode
	FillMode              FillMode
	FrontCounterClockwise bool
	DepthClipEnable       bool
}

/** @brief Comparison used by depth testing. */
type ComparisonFunc int

const (
	ComparisonLess ComparisonFunc = iota
	ComparisonLessEqual
	ComparisonAlways
)

type DepthStencilStateDesc struct {
	DepthEnable   bool
	DepthWrite    bool
	DepthFunc     ComparisonFunc
	StencilEnable bool
}

type BlendDesc struct {
	BlendEnable bool
	/** @brief When true, source alpha over destination is used. */
	AlphaBlend bool
}

/**
 * @brief A single draw submitted to the device. Buffers are resolved by the
 * backend from the mesh identifier.
 */
type DrawCall struct {
	EntityID    uint32
	MeshID      uint32
	MaterialID  uint32
	VertexCount uint32
	IndexCount  uint32
	World       [16]float32
}
