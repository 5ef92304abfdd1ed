// Package headless is an in-memory graphics device. It creates no real GPU
// objects; it hands out handles, tracks what is alive and records every
// command so frames can be inspected.
package headless

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

var _ renderer.Backend = (*Backend)(nil)

type ObjectKind string

const (
	ObjectTexture      ObjectKind = "texture"
	ObjectSRV          ObjectKind = "shader_resource_view"
	ObjectRasterizer   ObjectKind = "rasterizer_state"
	ObjectDepthStencil ObjectKind = "depth_stencil_state"
	ObjectBlend        ObjectKind = "blend_state"
	ObjectBackBuffer   ObjectKind = "back_buffer"
)

type Object struct {
	Handle  metadata.GPUHandle
	Kind    ObjectKind
	Texture metadata.Texture2DDesc
	/** @brief For views, the texture the view was created on. */
	Parent metadata.GPUHandle
}

type CommandKind string

const (
	CmdSetViewport        CommandKind = "set_viewport"
	CmdSetPipelineState   CommandKind = "set_pipeline_state"
	CmdSetRenderTargets   CommandKind = "set_render_targets"
	CmdBindShaderResource CommandKind = "bind_shader_resources"
	CmdClearRenderTarget  CommandKind = "clear_render_target"
	CmdClearDepthStencil  CommandKind = "clear_depth_stencil"
	CmdDraw               CommandKind = "draw"
	CmdPresent            CommandKind = "present"
)

// Command is one recorded context call.
type Command struct {
	Kind     CommandKind
	Targets  []metadata.GPUHandle
	Depth    metadata.GPUHandle
	Colour   metadata.ClearColour
	Viewport metadata.Viewport
	Draw     metadata.DrawCall
	Slot     uint32
}

// Op names a device operation that can be made to fail.
type Op string

const (
	OpCreateTexture      Op = "create_texture"
	OpCreateSRV          Op = "create_srv"
	OpCreateRasterizer   Op = "create_rasterizer"
	OpCreateDepthStencil Op = "create_depth_stencil"
	OpCreateBlend        Op = "create_blend"
	OpDraw               Op = "draw"
	OpPresent            Op = "present"
	OpResize             Op = "resize"
)

type Backend struct {
	nextHandle  metadata.GPUHandle
	live        map[metadata.GPUHandle]Object
	commands    []Command
	presents    uint64
	width       uint32
	height      uint32
	initialized bool
	backBuffer  metadata.GPUHandle

	failNext    map[Op]int
	textureFail func(desc metadata.Texture2DDesc) bool
}

func New() *Backend {
	return &Backend{
		live:     make(map[metadata.GPUHandle]Object),
		failNext: make(map[Op]int),
	}
}

// FailNext makes the next n calls of op fail.
func (b *Backend) FailNext(op Op, n int) {
	b.failNext[op] += n
}

// FailTexturesWhen makes every texture creation matching pred fail until
// cleared with nil.
func (b *Backend) FailTexturesWhen(pred func(desc metadata.Texture2DDesc) bool) {
	b.textureFail = pred
}

func (b *Backend) shouldFail(op Op) bool {
	if b.failNext[op] > 0 {
		b.failNext[op]--
		return true
	}
	return false
}

func (b *Backend) allocate(obj Object) metadata.GPUHandle {
	b.nextHandle++
	obj.Handle = b.nextHandle
	b.live[obj.Handle] = obj
	return obj.Handle
}

func (b *Backend) Type() renderer.RendererType {
	return renderer.Headless
}

func (b *Backend) Initialize(appName string, width, height uint32) error {
	if b.initialized {
		return nil
	}
	b.width, b.height = width, height
	b.backBuffer = b.allocate(Object{
		Kind: ObjectBackBuffer,
		Texture: metadata.Texture2DDesc{
			Width:     width,
			Height:    height,
			MipLevels: 1,
			Format:    metadata.TextureFormatR8G8B8A8Unorm,
			BindFlags: metadata.BindRenderTarget,
			DebugName: appName + " back buffer",
		},
	})
	b.initialized = true
	core.LogDebug("headless backend initialized (%dx%d)", width, height)
	return nil
}

func (b *Backend) Shutdown() error {
	if n := len(b.live) - 1; n > 0 {
		core.LogWarn("headless backend shut down with %d live objects", n)
	}
	b.live = make(map[metadata.GPUHandle]Object)
	b.backBuffer = metadata.InvalidGPUHandle
	b.initialized = false
	return nil
}

func (b *Backend) Resize(width, height uint32) error {
	if b.shouldFail(OpResize) {
		return fmt.Errorf("%w: resize to %dx%d", core.ErrDeviceLost, width, height)
	}
	b.width, b.height = width, height
	if obj, ok := b.live[b.backBuffer]; ok {
		obj.Texture.Width, obj.Texture.Height = width, height
		b.live[b.backBuffer] = obj
	}
	return nil
}

func (b *Backend) BackBuffer() metadata.GPUHandle {
	return b.backBuffer
}

func (b *Backend) CreateTexture2D(desc metadata.Texture2DDesc) (metadata.GPUHandle, error) {
	if b.shouldFail(OpCreateTexture) || (b.textureFail != nil && b.textureFail(desc)) {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateTexture2D(%s)", core.ErrDeviceFailure, desc.DebugName)
	}
	if desc.Width == 0 || desc.Height == 0 {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateTexture2D(%s): zero extent", core.ErrDeviceFailure, desc.DebugName)
	}
	if desc.Usage == metadata.ResourceUsageImmutable && desc.InitialData == nil {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateTexture2D(%s): immutable texture without data", core.ErrDeviceFailure, desc.DebugName)
	}
	// The device keeps its own copy.
	desc.InitialData = nil
	return b.allocate(Object{Kind: ObjectTexture, Texture: desc}), nil
}

func (b *Backend) CreateShaderResourceView(texture metadata.GPUHandle, format metadata.TextureFormat) (metadata.GPUHandle, error) {
	if b.shouldFail(OpCreateSRV) {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateShaderResourceView(%d)", core.ErrDeviceFailure, texture)
	}
	obj, ok := b.live[texture]
	if !ok || obj.Kind != ObjectTexture {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateShaderResourceView: %d is not a texture", core.ErrDeviceFailure, texture)
	}
	if !obj.Texture.BindFlags.Has(metadata.BindShaderResource) {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateShaderResourceView: %s is not shader visible", core.ErrDeviceFailure, obj.Texture.DebugName)
	}
	view := Object{Kind: ObjectSRV, Parent: texture, Texture: obj.Texture}
	view.Texture.Format = format
	return b.allocate(view), nil
}

func (b *Backend) CreateRasterizerState(desc metadata.RasterizerDesc) (metadata.GPUHandle, error) {
	if b.shouldFail(OpCreateRasterizer) {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateRasterizerState", core.ErrDeviceFailure)
	}
	return b.allocate(Object{Kind: ObjectRasterizer}), nil
}

func (b *Backend) CreateDepthStencilState(desc metadata.DepthStencilStateDesc) (metadata.GPUHandle, error) {
	if b.shouldFail(OpCreateDepthStencil) {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateDepthStencilState", core.ErrDeviceFailure)
	}
	return b.allocate(Object{Kind: ObjectDepthStencil}), nil
}

func (b *Backend) CreateBlendState(desc metadata.BlendDesc) (metadata.GPUHandle, error) {
	if b.shouldFail(OpCreateBlend) {
		return metadata.InvalidGPUHandle, fmt.Errorf("%w: CreateBlendState", core.ErrDeviceFailure)
	}
	return b.allocate(Object{Kind: ObjectBlend}), nil
}

func (b *Backend) ReleaseResource(handle metadata.GPUHandle) error {
	if handle == metadata.InvalidGPUHandle || handle == b.backBuffer {
		return nil
	}
	if _, ok := b.live[handle]; !ok {
		return fmt.Errorf("%w: release of unknown handle %d", core.ErrNotFound, handle)
	}
	delete(b.live, handle)
	return nil
}

func (b *Backend) record(cmd Command) {
	b.commands = append(b.commands, cmd)
}

func (b *Backend) SetViewport(viewport metadata.Viewport) {
	b.record(Command{Kind: CmdSetViewport, Viewport: viewport})
}

func (b *Backend) SetPipelineState(rasterizer, depthStencil, blend metadata.GPUHandle) {
	b.record(Command{Kind: CmdSetPipelineState, Targets: []metadata.GPUHandle{rasterizer, depthStencil, blend}})
}

func (b *Backend) SetRenderTargets(targets []metadata.GPUHandle, depthStencil metadata.GPUHandle) {
	cp := make([]metadata.GPUHandle, len(targets))
	copy(cp, targets)
	b.record(Command{Kind: CmdSetRenderTargets, Targets: cp, Depth: depthStencil})
}

func (b *Backend) BindShaderResources(startSlot uint32, views []metadata.GPUHandle) {
	cp := make([]metadata.GPUHandle, len(views))
	copy(cp, views)
	b.record(Command{Kind: CmdBindShaderResource, Targets: cp, Slot: startSlot})
}

func (b *Backend) ClearRenderTarget(target metadata.GPUHandle, colour metadata.ClearColour) {
	b.record(Command{Kind: CmdClearRenderTarget, Targets: []metadata.GPUHandle{target}, Colour: colour})
}

func (b *Backend) ClearDepthStencil(target metadata.GPUHandle, depth float32, stencil uint8) {
	b.record(Command{Kind: CmdClearDepthStencil, Depth: target})
}

func (b *Backend) Draw(call metadata.DrawCall) error {
	if b.shouldFail(OpDraw) {
		return fmt.Errorf("%w: Draw(entity %d)", core.ErrDeviceFailure, call.EntityID)
	}
	if call.VertexCount == 0 {
		return fmt.Errorf("%w: Draw(entity %d): no vertices", core.ErrDeviceFailure, call.EntityID)
	}
	b.record(Command{Kind: CmdDraw, Draw: call})
	return nil
}

func (b *Backend) Present(source metadata.GPUHandle, syncInterval int) error {
	b.record(Command{Kind: CmdPresent, Targets: []metadata.GPUHandle{source}})
	if b.shouldFail(OpPresent) {
		return fmt.Errorf("%w: present failed", core.ErrDeviceLost)
	}
	b.presents++
	return nil
}

// Commands returns every command recorded since the last ResetCommands.
func (b *Backend) Commands() []Command {
	out := make([]Command, len(b.commands))
	copy(out, b.commands)
	return out
}

func (b *Backend) Count(kind CommandKind) int {
	n := 0
	for _, c := range b.commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func (b *Backend) ResetCommands() {
	b.commands = b.commands[:0]
}

// Presents counts successful presents over the backend's life.
func (b *Backend) Presents() uint64 {
	return b.presents
}

func (b *Backend) Object(handle metadata.GPUHandle) (Object, bool) {
	obj, ok := b.live[handle]
	return obj, ok
}

// LiveObjects lists live objects of kind, ordered by handle.
func (b *Backend) LiveObjects(kind ObjectKind) []Object {
	var out []Object
	for _, obj := range b.live {
		if obj.Kind == kind {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

func (b *Backend) Size() (uint32, uint32) {
	return b.width, b.height
}
