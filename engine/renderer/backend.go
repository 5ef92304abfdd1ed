package renderer

import "github.com/spaghettifunk/dolas/engine/renderer/metadata"

/**
 * @brief The graphics device boundary. Every call is synchronous and made
 * from the engine goroutine. Creation calls return metadata.InvalidGPUHandle
 * together with an error wrapping core.ErrDeviceFailure when the device
 * refuses; Present returns an error wrapping core.ErrDeviceLost when the
 * swap chain is gone.
 */
type Backend interface {
	Type() RendererType
	Initialize(appName string, width, height uint32) error
	Shutdown() error
	Resize(width, height uint32) error
	/** @brief The current swap chain image, used as the present source. */
	BackBuffer() metadata.GPUHandle

	CreateTexture2D(desc metadata.Texture2DDesc) (metadata.GPUHandle, error)
	CreateShaderResourceView(texture metadata.GPUHandle, format metadata.TextureFormat) (metadata.GPUHandle, error)
	CreateRasterizerState(desc metadata.RasterizerDesc) (metadata.GPUHandle, error)
	CreateDepthStencilState(desc metadata.DepthStencilStateDesc) (metadata.GPUHandle, error)
	CreateBlendState(desc metadata.BlendDesc) (metadata.GPUHandle, error)
	ReleaseResource(handle metadata.GPUHandle) error

	SetViewport(viewport metadata.Viewport)
	SetPipelineState(rasterizer, depthStencil, blend metadata.GPUHandle)
	SetRenderTargets(targets []metadata.GPUHandle, depthStencil metadata.GPUHandle)
	BindShaderResources(startSlot uint32, views []metadata.GPUHandle)
	ClearRenderTarget(target metadata.GPUHandle, colour metadata.ClearColour)
	ClearDepthStencil(target metadata.GPUHandle, depth float32, stencil uint8)
	Draw(call metadata.DrawCall) error
	/** @brief Copies source to the back buffer and flips the swap chain. */
	Present(source metadata.GPUHandle, syncInterval int) error
}
