package metadata

import "fmt"

/** @brief Lifecycle of a render pipeline. */
type PipelineState int

const (
	PipelineStateUninitialized PipelineState = iota
	PipelineStateInitialized
	PipelineStateRendering
	PipelineStateCleared
)

func (s PipelineState) String() string {
	switch s {
	case PipelineStateUninitialized:
		return "uninitialized"
	case PipelineStateInitialized:
		return "initialized"
	case PipelineStateRendering:
		return "rendering"
	case PipelineStateCleared:
		return "cleared"
	}
	return fmt.Sprintf("PipelineState(%d)", int(s))
}

/** @brief Pass names, in execution order. */
const (
	PassClear           = "clear"
	PassGBuffer         = "gbuffer"
	PassDeferredShading = "deferred_shading"
	PassForwardShading  = "forward_shading"
	PassPostProcess     = "post_process"
	PassPresent         = "present"
)

// PassOrder is the fixed sequence every render executes.
var PassOrder = []string{
	PassClear,
	PassGBuffer,
	PassDeferredShading,
	PassForwardShading,
	PassPostProcess,
	PassPresent,
}

/** @brief Outcome of one pass. */
type PassResult struct {
	Draws   int
	Skipped int
	/** @brief Set only by present; anything else degrades instead of failing. */
	Err error
}

/** @brief The fixed-function state a pipeline owns. */
type PipelineStateObjects struct {
	Viewport     Viewport
	Rasterizer   GPUHandle
	DepthStencil GPUHandle
	OpaqueBlend  GPUHandle
	AlphaBlend   GPUHandle
}
