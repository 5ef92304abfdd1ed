package systems

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer"
	"github.com/spaghettifunk/dolas/engine/renderer/components"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

// DefaultClearColour is the background every frame starts from.
var DefaultClearColour = metadata.ClearColour{0.4, 0.6, 0.8, 1.0}

// PipelineSources are the managers a pipeline reads while it renders.
type PipelineSources struct {
	Textures  *TextureManager
	Meshes    *MeshManager
	Materials *MaterialManager
	Entities  *RenderEntityManager
	Scenes    *RenderSceneManager
	Cameras   *RenderCameraManager
	Resources *RenderResourceManager
}

/**
 * @brief Everything a pass can see during one render. Missing bindings are
 * nil and every pass has to cope with that.
 */
type FrameContext struct {
	Frame    uint64
	Backend  renderer.Backend
	Sources  *PipelineSources
	States   *metadata.PipelineStateObjects
	Resource *metadata.RenderResource
	Scene    *metadata.RenderScene
	Camera   *components.Camera
	Colour   metadata.ClearColour
	Stats    *metadata.FrameStats
}

// Surface returns the device handle of a surface, or InvalidGPUHandle when
// it was never created.
func (fc *FrameContext) Surface(id core.ID) metadata.GPUHandle {
	if id.IsEmpty() || fc.Sources == nil || fc.Sources.Textures == nil {
		return metadata.InvalidGPUHandle
	}
	texture := fc.Sources.Textures.GetByID(id)
	if texture == nil {
		return metadata.InvalidGPUHandle
	}
	return texture.Handle
}

// SurfaceView returns the shader view of a surface, or InvalidGPUHandle.
func (fc *FrameContext) SurfaceView(id core.ID) metadata.GPUHandle {
	if id.IsEmpty() || fc.Sources == nil || fc.Sources.Textures == nil {
		return metadata.InvalidGPUHandle
	}
	srv, err := fc.Sources.Textures.ShaderResourceView(id)
	if err != nil {
		return metadata.InvalidGPUHandle
	}
	return srv
}

func (fc *FrameContext) sceneResult() metadata.GPUHandle {
	if fc.Resource == nil {
		return metadata.InvalidGPUHandle
	}
	return fc.Surface(fc.Resource.SceneResult)
}

func (fc *FrameContext) depth() metadata.GPUHandle {
	if fc.Resource == nil {
		return metadata.InvalidGPUHandle
	}
	return fc.Surface(fc.Resource.DepthStencil)
}

func (fc *FrameContext) gbuffer() ([]metadata.GPUHandle, bool) {
	if fc.Resource == nil {
		return nil, false
	}
	targets := make([]metadata.GPUHandle, 0, metadata.GBufferChannelLen)
	for _, id := range fc.Resource.GBuffer {
		h := fc.Surface(id)
		if h == metadata.InvalidGPUHandle {
			return nil, false
		}
		targets = append(targets, h)
	}
	return targets, true
}

// isForward reports whether an item skips the G-buffer.
func (fc *FrameContext) isForward(item metadata.SceneItem) bool {
	if item.Layer == metadata.SceneLayerTransparent {
		return true
	}
	entity := fc.Sources.Entities.GetRenderEntityByID(item.EntityID)
	if entity == nil {
		return false
	}
	material := fc.Sources.Materials.GetByID(entity.MaterialID)
	return material != nil && material.IsForward()
}

func (fc *FrameContext) items(forward bool) []metadata.SceneItem {
	if fc.Scene == nil {
		return nil
	}
	var out []metadata.SceneItem
	for _, item := range fc.Scene.Items() {
		if fc.isForward(item) == forward {
			out = append(out, item)
		}
	}
	return out
}

// draw issues one entity. It returns false when the entity, its mesh or the
// device refuse.
func (fc *FrameContext) draw(item metadata.SceneItem) bool {
	entity := fc.Sources.Entities.GetRenderEntityByID(item.EntityID)
	if entity == nil {
		return false
	}
	mesh := fc.Sources.Meshes.GetByID(entity.MeshID)
	if mesh == nil || mesh.VertexCount() == 0 {
		return false
	}
	fc.Backend.BindShaderResources(0, fc.Sources.Materials.ShaderResourceViews(entity.MaterialID))

	call := metadata.DrawCall{
		EntityID:    uint32(entity.ID),
		MeshID:      uint32(mesh.ID),
		MaterialID:  uint32(entity.MaterialID),
		VertexCount: mesh.VertexCount(),
		IndexCount:  mesh.IndexCount(),
	}
	if item.Transform != nil {
		call.World = [16]float32(item.Transform.GetWorld())
	}
	if err := fc.Backend.Draw(call); err != nil {
		core.LogWarn("draw of entity '%s' skipped: %s", entity.Name, err)
		return false
	}
	return true
}

// Pass is one stage of a render.
type Pass interface {
	Name() string
	Execute(fc *FrameContext) metadata.PassResult
}

// ClearPass resets the scene colour, the G-buffer and depth.
type ClearPass struct{}

func (p *ClearPass) Name() string { return metadata.PassClear }

func (p *ClearPass) Execute(fc *FrameContext) metadata.PassResult {
	res := metadata.PassResult{}
	if target := fc.sceneResult(); target != metadata.InvalidGPUHandle {
		fc.Backend.ClearRenderTarget(target, fc.Colour)
		fc.Stats.Clears++
	} else {
		res.Skipped++
	}
	if fc.Resource != nil {
		for _, id := range fc.Resource.GBuffer {
			if h := fc.Surface(id); h != metadata.InvalidGPUHandle {
				fc.Backend.ClearRenderTarget(h, metadata.ClearColour{})
				fc.Stats.Clears++
			}
		}
	}
	if ds := fc.depth(); ds != metadata.InvalidGPUHandle {
		fc.Backend.ClearDepthStencil(ds, 1.0, 0)
		fc.Stats.Clears++
	}
	return res
}

// GBufferPass draws deferred entities into the G-buffer.
type GBufferPass struct{}

func (p *GBufferPass) Name() string { return metadata.PassGBuffer }

func (p *GBufferPass) Execute(fc *FrameContext) metadata.PassResult {
	res := metadata.PassResult{}
	items := fc.items(false)
	if len(items) == 0 {
		return res
	}
	targets, ok := fc.gbuffer()
	if !ok {
		res.Skipped = len(items)
		return res
	}
	fc.Backend.SetRenderTargets(targets, fc.depth())
	fc.Backend.SetPipelineState(fc.States.Rasterizer, fc.States.DepthStencil, fc.States.OpaqueBlend)
	for _, item := range items {
		if fc.draw(item) {
			res.Draws++
		} else {
			res.Skipped++
		}
	}
	return res
}

/**
 * @brief Lights the G-buffer into the scene result. The pass binds its
 * inputs and outputs; the lighting itself is delegated to a Shader.
 */
type Shader interface {
	Shade(fc *FrameContext) error
}

type ShaderFunc func(fc *FrameContext) error

func (f ShaderFunc) Shade(fc *FrameContext) error { return f(fc) }

type DeferredShadingPass struct {
	Shader Shader
}

func (p *DeferredShadingPass) Name() string { return metadata.PassDeferredShading }

func (p *DeferredShadingPass) Execute(fc *FrameContext) metadata.PassResult {
	res := metadata.PassResult{}
	target := fc.sceneResult()
	if _, ok := fc.gbuffer(); !ok || target == metadata.InvalidGPUHandle {
		res.Skipped = 1
		return res
	}
	fc.Backend.SetRenderTargets([]metadata.GPUHandle{target}, metadata.InvalidGPUHandle)
	views := make([]metadata.GPUHandle, 0, metadata.GBufferChannelLen+1)
	for _, id := range fc.Resource.GBuffer {
		views = append(views, fc.SurfaceView(id))
	}
	views = append(views, fc.SurfaceView(fc.Resource.DepthStencil))
	fc.Backend.BindShaderResources(0, views)

	if p.Shader != nil {
		if err := p.Shader.Shade(fc); err != nil {
			core.LogWarn("deferred shading skipped: %s", err)
			res.Skipped = 1
		}
	}
	return res
}

// ForwardShadingPass draws transparent and forward-shaded entities straight
// into the scene result with alpha blending.
type ForwardShadingPass struct{}

func (p *ForwardShadingPass) Name() string { return metadata.PassForwardShading }

func (p *ForwardShadingPass) Execute(fc *FrameContext) metadata.PassResult {
	res := metadata.PassResult{}
	items := fc.items(true)
	if len(items) == 0 {
		return res
	}
	target := fc.sceneResult()
	if target == metadata.InvalidGPUHandle {
		res.Skipped = len(items)
		return res
	}
	fc.Backend.SetRenderTargets([]metadata.GPUHandle{target}, fc.depth())
	fc.Backend.SetPipelineState(fc.States.Rasterizer, fc.States.DepthStencil, fc.States.AlphaBlend)
	for _, item := range items {
		if fc.draw(item) {
			res.Draws++
		} else {
			res.Skipped++
		}
	}
	return res
}

// Effect is one full-screen step of the post-process chain.
type Effect interface {
	Name() string
	Apply(fc *FrameContext, target metadata.GPUHandle) error
}

// PostProcessPass runs its effects in order over the scene result. A
// failing effect is skipped and the chain goes on.
type PostProcessPass struct {
	Effects []Effect
}

func (p *PostProcessPass) Name() string { return metadata.PassPostProcess }

func (p *PostProcessPass) Execute(fc *FrameContext) metadata.PassResult {
	res := metadata.PassResult{}
	if len(p.Effects) == 0 {
		return res
	}
	target := fc.sceneResult()
	if target == metadata.InvalidGPUHandle {
		res.Skipped = len(p.Effects)
		return res
	}
	for _, effect := range p.Effects {
		if err := effect.Apply(fc, target); err != nil {
			core.LogWarn("post effect '%s' skipped: %s", effect.Name(), err)
			res.Skipped++
		}
	}
	return res
}

/**
 * @brief Copies the scene result to the swap chain and flips it. Without a
 * scene result the back buffer, holding whatever it held, is presented.
 */
type PresentPass struct {
	SyncInterval int
}

func (p *PresentPass) Name() string { return metadata.PassPresent }

func (p *PresentPass) Execute(fc *FrameContext) metadata.PassResult {
	res := metadata.PassResult{}
	source := fc.sceneResult()
	if source == metadata.InvalidGPUHandle {
		source = fc.Backend.BackBuffer()
		res.Skipped = 1
	}
	if err := fc.Backend.Present(source, p.SyncInterval); err != nil {
		if !errors.Is(err, core.ErrDeviceLost) {
			err = fmt.Errorf("%w: %w", core.ErrDeviceLost, err)
		}
		res.Err = err
	}
	return res
}

/**
 * @brief A fixed sequence of passes plus the fixed-function state they
 * share. Bindings to a resource set, scene and camera come from the view
 * being rendered.
 */
type RenderPipeline struct {
	ID         core.ID
	ResourceID core.ID
	ViewID     core.ID
	SceneID    core.ID
	CameraID   core.ID
	Colour     metadata.ClearColour

	sources  *PipelineSources
	state    metadata.PipelineState
	states   metadata.PipelineStateObjects
	releaser metadata.ResourceReleaser
	frame    uint64

	passes      []Pass
	deferred    *DeferredShadingPass
	postProcess *PostProcessPass
	present     *PresentPass
}

func NewRenderPipeline(id core.ID, sources *PipelineSources, viewport metadata.Viewport) *RenderPipeline {
	return &RenderPipeline{
		ID:      id,
		Colour:  DefaultClearColour,
		sources: sources,
		states:  metadata.PipelineStateObjects{Viewport: viewport},
	}
}

func (rp *RenderPipeline) State() metadata.PipelineState {
	return rp.state
}

func (rp *RenderPipeline) States() metadata.PipelineStateObjects {
	return rp.states
}

/**
 * @brief Creates the fixed-function state on the device and builds the
 * pass sequence. Only valid on a fresh pipeline.
 */
func (rp *RenderPipeline) Initialize(backend renderer.Backend) error {
	if rp.state != metadata.PipelineStateUninitialized {
		return fmt.Errorf("%w: initialize in state %s", core.ErrPipelineState, rp.state)
	}
	rp.releaser = backend

	var err error
	if rp.states.Rasterizer, err = backend.CreateRasterizerState(metadata.RasterizerDesc{
		CullMode:        metadata.FaceCullModeBack,
		FillMode:        metadata.FillModeSolid,
		DepthClipEnable: true,
	}); err != nil {
		return rp.abortInitialize(err)
	}
	if rp.states.DepthStencil, err = backend.CreateDepthStencilState(metadata.DepthStencilStateDesc{
		DepthEnable: true,
		DepthWrite:  true,
		DepthFunc:   metadata.ComparisonLess,
	}); err != nil {
		return rp.abortInitialize(err)
	}
	if rp.states.OpaqueBlend, err = backend.CreateBlendState(metadata.BlendDesc{}); err != nil {
		return rp.abortInitialize(err)
	}
	if rp.states.AlphaBlend, err = backend.CreateBlendState(metadata.BlendDesc{BlendEnable: true, AlphaBlend: true}); err != nil {
		return rp.abortInitialize(err)
	}

	rp.deferred = &DeferredShadingPass{}
	rp.postProcess = &PostProcessPass{}
	rp.present = &PresentPass{SyncInterval: 1}
	rp.passes = []Pass{
		&ClearPass{},
		&GBufferPass{},
		rp.deferred,
		&ForwardShadingPass{},
		rp.postProcess,
		rp.present,
	}
	rp.state = metadata.PipelineStateInitialized
	return nil
}

func (rp *RenderPipeline) abortInitialize(err error) error {
	if relErr := rp.releaseStates(); relErr != nil {
		core.LogWarn("pipeline '%d': %s", rp.ID, relErr)
	}
	return fmt.Errorf("pipeline initialize: %w", err)
}

func (rp *RenderPipeline) releaseStates() error {
	if rp.releaser == nil {
		return nil
	}
	var errs []error
	for _, h := range []*metadata.GPUHandle{&rp.states.Rasterizer, &rp.states.DepthStencil, &rp.states.OpaqueBlend, &rp.states.AlphaBlend} {
		if *h == metadata.InvalidGPUHandle {
			continue
		}
		if err := rp.releaser.ReleaseResource(*h); err != nil {
			errs = append(errs, err)
		}
		*h = metadata.InvalidGPUHandle
	}
	return errors.Join(errs...)
}

// Passes returns the pass sequence, empty before Initialize.
func (rp *RenderPipeline) Passes() []Pass {
	out := make([]Pass, len(rp.passes))
	copy(out, rp.passes)
	return out
}

// SetShader installs the lighting hook of the deferred shading pass.
func (rp *RenderPipeline) SetShader(shader Shader) {
	if rp.deferred != nil {
		rp.deferred.Shader = shader
	}
}

// AddEffect appends an effect to the post-process chain.
func (rp *RenderPipeline) AddEffect(effect Effect) {
	if rp.postProcess != nil && effect != nil {
		rp.postProcess.Effects = append(rp.postProcess.Effects, effect)
	}
}

func (rp *RenderPipeline) SetSyncInterval(interval int) {
	if rp.present != nil {
		rp.present.SyncInterval = interval
	}
}

func (rp *RenderPipeline) SetViewport(viewport metadata.Viewport) {
	rp.states.Viewport = viewport
}

// Bind points the pipeline at the resources of a view.
func (rp *RenderPipeline) Bind(view *metadata.RenderView) {
	rp.ViewID = view.ID
	rp.ResourceID = view.ResourceID
	rp.SceneID = view.SceneID
	rp.CameraID = view.CameraID
	if view.Viewport.Width > 0 && view.Viewport.Height > 0 {
		rp.states.Viewport = view.Viewport
	}
}

func (rp *RenderPipeline) frameContext(backend renderer.Backend, stats *metadata.FrameStats) *FrameContext {
	fc := &FrameContext{
		Frame:   rp.frame,
		Backend: backend,
		Sources: rp.sources,
		States:  &rp.states,
		Colour:  rp.Colour,
		Stats:   stats,
	}
	if rp.sources == nil {
		return fc
	}
	if rp.sources.Resources != nil {
		fc.Resource = rp.sources.Resources.GetByID(rp.ResourceID)
	}
	if rp.sources.Scenes != nil {
		fc.Scene = rp.sources.Scenes.GetByID(rp.SceneID)
	}
	if rp.sources.Cameras != nil {
		fc.Camera = rp.sources.Cameras.GetByID(rp.CameraID)
		if fc.Camera == nil {
			fc.Camera = rp.sources.Cameras.Active()
		}
	}
	return fc
}

/**
 * @brief Runs every pass once, in order. Passes with missing inputs skip
 * their work; present always runs last.
 *
 * @return The frame statistics, and an error wrapping core.ErrDeviceLost
 * when present failed or core.ErrPipelineState when the pipeline is not
 * initialized.
 */
func (rp *RenderPipeline) Render(backend renderer.Backend) (metadata.FrameStats, error) {
	if rp.state != metadata.PipelineStateInitialized {
		return metadata.FrameStats{}, fmt.Errorf("%w: render in state %s", core.ErrPipelineState, rp.state)
	}
	rp.state = metadata.PipelineStateRendering
	defer func() { rp.state = metadata.PipelineStateInitialized }()

	rp.frame++
	stats := metadata.NewFrameStats(rp.frame)
	fc := rp.frameContext(backend, &stats)

	backend.SetViewport(rp.states.Viewport)
	backend.SetPipelineState(rp.states.Rasterizer, rp.states.DepthStencil, rp.states.OpaqueBlend)

	var presentErr error
	for _, pass := range rp.passes {
		res := pass.Execute(fc)
		stats.Draws += res.Draws
		stats.Skip(pass.Name(), res.Skipped)
		if pass == Pass(rp.present) {
			presentErr = res.Err
			stats.Presented = res.Err == nil
		} else if res.Err != nil {
			core.LogWarn("pass '%s' degraded: %s", pass.Name(), res.Err)
		}
	}
	if presentErr != nil {
		return stats, presentErr
	}
	return stats, nil
}

// Clear releases the fixed-function state. The pipeline cannot render
// afterwards.
func (rp *RenderPipeline) Clear() error {
	err := rp.releaseStates()
	rp.passes = nil
	rp.deferred = nil
	rp.postProcess = nil
	rp.present = nil
	rp.state = metadata.PipelineStateCleared
	return err
}
