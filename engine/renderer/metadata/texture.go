package metadata

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/dolas/engine/core"
)

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default albedo texture name, all white. */
	DEFAULT_ALBEDO_TEXTURE_NAME string = "default_ALBEDO"
	/** @brief The default roughness/metallic texture name, all black. */
	DEFAULT_BLACK_TEXTURE_NAME string = "default_BLACK"
	/** @brief The default normal texture name, pointing along +Z. */
	DEFAULT_NORMAL_TEXTURE_NAME string = "default_NORM"
)

/**
 * @brief Pixel formats a texture can be created with. Typeless variants
 * are used for depth buffers that are also read by shaders.
 */
type TextureFormat int

const (
	TextureFormatUnknown TextureFormat = iota
	TextureFormatR8G8B8A8Unorm
	TextureFormatR8G8B8A8SRGB
	TextureFormatB8G8R8A8Unorm
	TextureFormatR16G16B16A16Float
	TextureFormatR32G32B32A32Float
	TextureFormatBC1Unorm
	TextureFormatBC1SRGB
	TextureFormatBC3Unorm
	TextureFormatBC3SRGB
	TextureFormatBC7Unorm
	TextureFormatBC7SRGB
	TextureFormatD24UnormS8Uint
	TextureFormatD32Float
	TextureFormatR32Typeless
	TextureFormatR24G8Typeless
	TextureFormatR16Typeless
	TextureFormatR32G8X24Typeless

	// View-only formats. Textures are never created with these; they are
	// what a typeless depth surface is read through.
	TextureFormatR32Float
	TextureFormatR24UnormX8Typeless
	TextureFormatR16Unorm
	TextureFormatR32FloatX8X24Typeless
)

var textureFormatNames = map[TextureFormat]string{
	TextureFormatUnknown:           "UNKNOWN",
	TextureFormatR8G8B8A8Unorm:     "R8G8B8A8_UNORM",
	TextureFormatR8G8B8A8SRGB:      "R8G8B8A8_SRGB",
	TextureFormatB8G8R8A8Unorm:     "B8G8R8A8_UNORM",
	TextureFormatR16G16B16A16Float: "R16G16B16A16_FLOAT",
	TextureFormatR32G32B32A32Float: "R32G32B32A32_FLOAT",
	TextureFormatBC1Unorm:          "BC1_UNORM",
	TextureFormatBC1SRGB:           "BC1_SRGB",
	TextureFormatBC3Unorm:          "BC3_UNORM",
	TextureFormatBC3SRGB:           "BC3_SRGB",
	TextureFormatBC7Unorm:          "BC7_UNORM",
	TextureFormatBC7SRGB:           "BC7_SRGB",
	TextureFormatD24UnormS8Uint:    "D24_UNORM_S8_UINT",
	TextureFormatD32Float:          "D32_FLOAT",
	TextureFormatR32Typeless:       "R32_TYPELESS",
	TextureFormatR24G8Typeless:     "R24G8_TYPELESS",
	TextureFormatR16Typeless:       "R16_TYPELESS",
	TextureFormatR32G8X24Typeless:  "R32G8X24_TYPELESS",

	TextureFormatR32Float:              "R32_FLOAT",
	TextureFormatR24UnormX8Typeless:    "R24_UNORM_X8_TYPELESS",
	TextureFormatR16Unorm:              "R16_UNORM",
	TextureFormatR32FloatX8X24Typeless: "R32_FLOAT_X8X24_TYPELESS",
}

func (f TextureFormat) String() string {
	if name, ok := textureFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("TextureFormat(%d)", int(f))
}

// ParseTextureFormat accepts the names printed by String.
func ParseTextureFormat(name string) (TextureFormat, error) {
	for f, n := range textureFormatNames {
		if n == name && f != TextureFormatUnknown {
			return f, nil
		}
	}
	return TextureFormatUnknown, fmt.Errorf("%w: unknown texture format %q", core.ErrInvalidDescriptor, name)
}

func (f TextureFormat) IsValid() bool {
	return f > TextureFormatUnknown && f <= TextureFormatR32G8X24Typeless
}

/** @brief True for formats only usable as a depth/stencil view. */
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatD24UnormS8Uint || f == TextureFormatD32Float
}

func (f TextureFormat) IsTypeless() bool {
	switch f {
	case TextureFormatR32Typeless, TextureFormatR24G8Typeless, TextureFormatR16Typeless, TextureFormatR32G8X24Typeless:
		return true
	}
	return false
}

func (f TextureFormat) IsBlockCompressed() bool {
	return f >= TextureFormatBC1Unorm && f <= TextureFormatBC7SRGB
}

func (f TextureFormat) IsSRGB() bool {
	switch f {
	case TextureFormatR8G8B8A8SRGB, TextureFormatBC1SRGB, TextureFormatBC3SRGB, TextureFormatBC7SRGB:
		return true
	}
	return false
}

/**
 * @brief Reports whether a depth surface of this format can also be read
 * through a shader resource view.
 */
func (f TextureFormat) IsDepthShaderCompatible() bool {
	switch f {
	case TextureFormatR32Typeless, TextureFormatD32Float,
		TextureFormatR24G8Typeless, TextureFormatD24UnormS8Uint,
		TextureFormatR16Typeless,
		TextureFormatR32G8X24Typeless:
		return true
	}
	return false
}

/**
 * @brief The format a shader resource view of this texture uses. Depth and
 * typeless depth surfaces map to their readable depth channel; every other
 * format is viewed as itself.
 */
func (f TextureFormat) ShaderResourceFormat() TextureFormat {
	switch f {
	case TextureFormatR32Typeless, TextureFormatD32Float:
		return TextureFormatR32Float
	case TextureFormatR24G8Typeless, TextureFormatD24UnormS8Uint:
		return TextureFormatR24UnormX8Typeless
	case TextureFormatR16Typeless:
		return TextureFormatR16Unorm
	case TextureFormatR32G8X24Typeless:
		return TextureFormatR32FloatX8X24Typeless
	}
	return f
}

/** @brief Bytes per pixel for uncompressed formats, 0 for block-compressed ones. */
func (f TextureFormat) BytesPerPixel() uint32 {
	switch f {
	case TextureFormatR8G8B8A8Unorm, TextureFormatR8G8B8A8SRGB, TextureFormatB8G8R8A8Unorm,
		TextureFormatD24UnormS8Uint, TextureFormatD32Float,
		TextureFormatR32Typeless, TextureFormatR24G8Typeless:
		return 4
	case TextureFormatR16Typeless:
		return 2
	case TextureFormatR16G16B16A16Float, TextureFormatR32G8X24Typeless:
		return 8
	case TextureFormatR32G32B32A32Float:
		return 16
	}
	return 0
}

/** @brief Bytes per 4x4 block for block-compressed formats, 0 otherwise. */
func (f TextureFormat) BlockSize() uint32 {
	switch f {
	case TextureFormatBC1Unorm, TextureFormatBC1SRGB:
		return 8
	case TextureFormatBC3Unorm, TextureFormatBC3SRGB, TextureFormatBC7Unorm, TextureFormatBC7SRGB:
		return 16
	}
	return 0
}

/** @brief The usage class a texture is created for. */
type TextureUsage int

const (
	TextureUsageImmutable TextureUsage = iota
	TextureUsageDynamic
	TextureUsageRenderTarget
	TextureUsageDepthStencil
	TextureUsageStaging
)

func (u TextureUsage) String() string {
	switch u {
	case TextureUsageImmutable:
		return "Immutable"
	case TextureUsageDynamic:
		return "Dynamic"
	case TextureUsageRenderTarget:
		return "RenderTarget"
	case TextureUsageDepthStencil:
		return "DepthStencil"
	case TextureUsageStaging:
		return "Staging"
	}
	return fmt.Sprintf("TextureUsage(%d)", int(u))
}

/**
 * @brief Describes a 2D texture created without file I/O, for render
 * targets and depth buffers. Name is the logical handle.
 */
type TextureDesc struct {
	Name   string
	Width  uint32
	Height uint32
	Format TextureFormat
	Usage  TextureUsage
	/** @brief Request a full mip chain generated on the device. */
	GenerateMips bool
	/** @brief Also bind the texture for shader reads. */
	ShaderResource bool
	ArraySize      uint32
	SampleCount    uint32
}

// NewTextureDesc returns a descriptor with shader access on and single
// array slice and sample.
func NewTextureDesc(name string, width, height uint32, format TextureFormat, usage TextureUsage) TextureDesc {
	return TextureDesc{
		Name:           name,
		Width:          width,
		Height:         height,
		Format:         format,
		Usage:          usage,
		ShaderResource: true,
		ArraySize:      1,
		SampleCount:    1,
	}
}

var errInvalidTextureDesc = errors.New("invalid texture descriptor")

// Validate checks the descriptor is something a device could create.
func (d TextureDesc) Validate() error {
	switch {
	case d.Width == 0 || d.Height == 0:
		return fmt.Errorf("%w: %w: zero extent %dx%d", core.ErrInvalidDescriptor, errInvalidTextureDesc, d.Width, d.Height)
	case !d.Format.IsValid():
		return fmt.Errorf("%w: %w: format %s", core.ErrInvalidDescriptor, errInvalidTextureDesc, d.Format)
	case d.Usage == TextureUsageDepthStencil && !(d.Format.IsDepth() || d.Format.IsTypeless()):
		return fmt.Errorf("%w: %w: %s cannot back a depth-stencil surface", core.ErrInvalidDescriptor, errInvalidTextureDesc, d.Format)
	case d.Usage == TextureUsageRenderTarget && (d.Format.IsDepth() || d.Format.IsBlockCompressed()):
		return fmt.Errorf("%w: %w: %s cannot back a render target", core.ErrInvalidDescriptor, errInvalidTextureDesc, d.Format)
	}
	return nil
}

/**
 * @brief The device-level description derived from a TextureDesc. This is
 * what the backend receives.
 */
type Texture2DDesc struct {
	Width       uint32
	Height      uint32
	MipLevels   uint32
	ArraySize   uint32
	SampleCount uint32
	Format      TextureFormat
	Usage       ResourceUsage
	BindFlags   BindFlag
	CPUAccess   CPUAccessFlag
	MiscFlags   ResourceMiscFlag
	/** @brief Optional initial pixel data, tightly packed rows. */
	InitialData []uint8
	/** @brief Debug name forwarded to the device. */
	DebugName string
}

// Resolve maps the usage class onto device usage, bind flags and CPU
// access. A generated mip chain is requested with MipLevels 0.
func (d TextureDesc) Resolve() Texture2DDesc {
	out := Texture2DDesc{
		Width:       d.Width,
		Height:      d.Height,
		MipLevels:   1,
		ArraySize:   d.ArraySize,
		SampleCount: d.SampleCount,
		Format:      d.Format,
		Usage:       ResourceUsageDefault,
		DebugName:   d.Name,
	}
	if out.ArraySize == 0 {
		out.ArraySize = 1
	}
	if out.SampleCount == 0 {
		out.SampleCount = 1
	}
	if d.GenerateMips {
		out.MipLevels = 0
	}

	switch d.Usage {
	case TextureUsageImmutable:
		out.Usage = ResourceUsageImmutable
		out.BindFlags = BindShaderResource
	case TextureUsageDynamic:
		out.Usage = ResourceUsageDynamic
		out.BindFlags = BindShaderResource
		out.CPUAccess = CPUAccessWrite
	case TextureUsageRenderTarget:
		out.BindFlags = BindRenderTarget
		if d.ShaderResource || d.GenerateMips {
			out.BindFlags |= BindShaderResource
		}
		if d.GenerateMips {
			out.MiscFlags |= ResourceMiscGenerateMips
		}
	case TextureUsageDepthStencil:
		out.BindFlags = BindDepthStencil
		if d.ShaderResource && d.Format.IsDepthShaderCompatible() {
			out.BindFlags |= BindShaderResource
		}
	case TextureUsageStaging:
		out.Usage = ResourceUsageStaging
		out.CPUAccess = CPUAccessRead | CPUAccessWrite
	}
	return out
}

/**
 * @brief Represents a texture owned by the texture manager.
 */
type Texture struct {
	/** @brief The unique texture identifier, the hash of Name. */
	ID core.ID
	/** @brief The logical name or file path the texture was created from. */
	Name string
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief Number of mip levels, 0 when generated by the device. */
	MipLevels uint32
	Format    TextureFormat
	Usage     TextureUsage
	BindFlags BindFlag
	/** @brief True when loaded from an image file. */
	FromFile bool
	/** @brief True when the image carried alpha below 255. */
	HasTransparency bool
	/** @brief The device object. */
	Handle GPUHandle
	/** @brief Shader resource view, created on first use. */
	SRV GPUHandle

	releaser ResourceReleaser
}

func NewTexture(id core.ID, name string, desc Texture2DDesc, usage TextureUsage, handle GPUHandle, releaser ResourceReleaser) *Texture {
	return &Texture{
		ID:        id,
		Name:      name,
		Width:     desc.Width,
		Height:    desc.Height,
		MipLevels: desc.MipLevels,
		Format:    desc.Format,
		Usage:     usage,
		BindFlags: desc.BindFlags,
		Handle:    handle,
		releaser:  releaser,
	}
}

func (t *Texture) IsShaderVisible() bool {
	return t.BindFlags.Has(BindShaderResource)
}

// Clear releases the view and the texture object.
func (t *Texture) Clear() error {
	var errs []error
	if t.releaser != nil {
		if t.SRV != InvalidGPUHandle {
			if err := t.releaser.ReleaseResource(t.SRV); err != nil {
				errs = append(errs, fmt.Errorf("release view of %s: %w", t.Name, err))
			}
		}
		if t.Handle != InvalidGPUHandle {
			if err := t.releaser.ReleaseResource(t.Handle); err != nil {
				errs = append(errs, fmt.Errorf("release texture %s: %w", t.Name, err))
			}
		}
	}
	t.SRV = InvalidGPUHandle
	t.Handle = InvalidGPUHandle
	return errors.Join(errs...)
}

// SolidPixels fills a width*height RGBA8 buffer with one colour.
func SolidPixels(width, height uint32, r, g, b, a uint8) []uint8 {
	pixels := make([]uint8, width*height*4)
	for i := uint32(0); i < width*height; i++ {
		idx := i * 4
		pixels[idx+0] = r
		pixels[idx+1] = g
		pixels[idx+2] = b
		pixels[idx+3] = a
	}
	return pixels
}

// CheckerboardPixels builds the blue/white checkerboard used for the
// fallback texture so it needs no asset on disk.
func CheckerboardPixels(dimension uint32) []uint8 {
	pixels := SolidPixels(dimension, dimension, 255, 255, 255, 255)
	for row := uint32(0); row < dimension; row++ {
		for col := uint32(0); col < dimension; col++ {
			if (row%2 == 0) == (col%2 == 0) {
				idx := (row*dimension + col) * 4
				pixels[idx+0] = 0
				pixels[idx+1] = 0
			}
		}
	}
	return pixels
}
