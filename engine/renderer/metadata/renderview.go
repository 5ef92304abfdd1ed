package metadata

import "github.com/spaghettifunk/dolas/engine/core"

/** @brief Per-frame counters reported by a pipeline run. */
type FrameStats struct {
	Frame     uint64
	Draws     int
	Clears    int
	Presented bool
	/** @brief Draws or passes skipped because a bound resource was missing, by pass name. */
	Skipped map[string]int
}

func NewFrameStats(frame uint64) FrameStats {
	return FrameStats{Frame: frame, Skipped: make(map[string]int)}
}

func (s *FrameStats) Skip(pass string, n int) {
	if n <= 0 {
		return
	}
	if s.Skipped == nil {
		s.Skipped = make(map[string]int)
	}
	s.Skipped[pass] += n
}

func (s FrameStats) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

/**
 * @brief Binds one camera, one pipeline, one resource set and one scene.
 * Views render by ascending Priority.
 */
type RenderView struct {
	ID         core.ID
	Name       string
	CameraID   core.ID
	PipelineID core.ID
	ResourceID core.ID
	SceneID    core.ID
	Enabled    bool
	Priority   int
	Viewport   Viewport
	/** @brief Stats of the last render. */
	Stats FrameStats
}

// IsReadyToRender reports whether every binding is set and the view is on.
func (v *RenderView) IsReadyToRender() bool {
	return v.Enabled &&
		!v.CameraID.IsEmpty() &&
		!v.PipelineID.IsEmpty() &&
		!v.ResourceID.IsEmpty() &&
		!v.SceneID.IsEmpty()
}

func (v *RenderView) Clear() error {
	v.Enabled = false
	return nil
}
