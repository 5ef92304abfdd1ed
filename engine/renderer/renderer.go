package renderer

import (
	"fmt"

	"github.com/spaghettifunk/dolas/engine/core"
)

type RendererType uint8

const (
	Headless RendererType = iota
	DirectX
	Vulkan
	OpenGL
)

func (t RendererType) String() string {
	switch t {
	case Headless:
		return "headless"
	case DirectX:
		return "directx"
	case Vulkan:
		return "vulkan"
	case OpenGL:
		return "opengl"
	}
	return fmt.Sprintf("RendererType(%d)", uint8(t))
}

// Renderer is the frontend the engine talks to. It owns the backend and
// keeps the frame counter and surface size.
type Renderer struct {
	backend     Backend
	frameNumber uint64
	width       uint32
	height      uint32
	initialized bool
}

func New(backend Backend) (*Renderer, error) {
	if backend == nil {
		return nil, fmt.Errorf("renderer: %w: nil backend", core.ErrDeviceFailure)
	}
	return &Renderer{backend: backend}, nil
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	if err := r.backend.Initialize(appName, width, height); err != nil {
		core.LogError("failed to initialize renderer backend: %s", err)
		return err
	}
	r.width, r.height = width, height
	r.initialized = true
	core.LogInfo("%s renderer initialized (%dx%d)", r.backend.Type(), width, height)
	return nil
}

func (r *Renderer) Shutdown() error {
	if !r.initialized {
		return nil
	}
	r.initialized = false
	return r.backend.Shutdown()
}

func (r *Renderer) Backend() Backend {
	return r.backend
}

// BeginFrame advances the frame counter and returns the new frame number.
func (r *Renderer) BeginFrame() uint64 {
	r.frameNumber++
	return r.frameNumber
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

func (r *Renderer) Size() (uint32, uint32) {
	return r.width, r.height
}

func (r *Renderer) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		// Minimised; keep the old size.
		return nil
	}
	if err := r.backend.Resize(width, height); err != nil {
		core.LogError("renderer resize to %dx%d failed: %s", width, height, err)
		return err
	}
	r.width, r.height = width, height
	return nil
}
