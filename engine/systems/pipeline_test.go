package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/headless"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

type boundView struct {
	view     *metadata.RenderView
	pipeline *RenderPipeline
}

// newBoundView creates a view named after its bindings and returns the
// pipeline bound to it.
func newBoundView(t *testing.T, s *testSystems, name string) boundView {
	t.Helper()
	viewID := s.Registry.Hash(name)
	ok := s.Views.CreateByID(viewID, s.Registry.Hash(name+"_camera"), s.Registry.Hash(name+"_pipeline"),
		s.Registry.Hash(name+"_resource"), s.Registry.Hash(name+"_scene"))
	if !ok {
		t.Fatalf("view %s not created", name)
	}
	view := s.Views.GetByID(viewID)
	pipeline := s.Pipelines.GetByID(view.PipelineID)
	pipeline.Bind(view)
	return boundView{view: view, pipeline: pipeline}
}

func TestPipelinePassOrder(t *testing.T) {
	s := newTestSystems(t)
	bv := newBoundView(t, s, "main")
	passes := bv.pipeline.Passes()
	if len(passes) != len(metadata.PassOrder) {
		t.Fatalf("%d passes, want %d", len(passes), len(metadata.PassOrder))
	}
	for i, p := range passes {
		if p.Name() != metadata.PassOrder[i] {
			t.Fatalf("pass %d is %s, want %s", i, p.Name(), metadata.PassOrder[i])
		}
	}
}

func TestRenderWithoutEntitiesPresentsOnce(t *testing.T) {
	s := newTestSystems(t)
	bv := newBoundView(t, s, "empty")
	s.backend.ResetCommands()

	stats, err := bv.pipeline.Render(s.backend)
	if err != nil {
		t.Fatalf("Render: %s", err)
	}
	if got := s.backend.Count(headless.CmdPresent); got != 1 {
		t.Fatalf("presents = %d, want 1", got)
	}
	if got := s.backend.Count(headless.CmdDraw); got != 0 {
		t.Fatalf("draws = %d, want 0", got)
	}
	if !stats.Presented || stats.Draws != 0 || stats.TotalSkipped() != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	commands := s.backend.Commands()
	if commands[len(commands)-1].Kind != headless.CmdPresent {
		t.Fatal("present must be the last command")
	}
	if bv.pipeline.State() != metadata.PipelineStateInitialized {
		t.Fatalf("state after render = %s", bv.pipeline.State())
	}
}

func TestRenderDrawsSceneEntities(t *testing.T) {
	s := newTestSystems(t)
	bv := newBoundView(t, s, "yard")
	if _, ok := s.Scenes.BuildFromFile(bv.view.SceneID, "yard.scene"); !ok {
		t.Fatal("scene not built")
	}
	s.backend.ResetCommands()

	stats, err := bv.pipeline.Render(s.backend)
	if err != nil {
		t.Fatalf("Render: %s", err)
	}
	if stats.Draws != 3 || s.backend.Count(headless.CmdDraw) != 3 {
		t.Fatalf("draws = %d / %d, want 3", stats.Draws, s.backend.Count(headless.CmdDraw))
	}

	// the transparent entity is drawn after the opaque ones
	var drawn []uint32
	for _, c := range s.backend.Commands() {
		if c.Kind == headless.CmdDraw {
			drawn = append(drawn, c.Draw.EntityID)
		}
	}
	glass := uint32(s.Registry.Hash("glass.entity"))
	if drawn[len(drawn)-1] != glass {
		t.Fatalf("draw order %v, glass (%d) should be last", drawn, glass)
	}
	if drawn[0] != uint32(s.Registry.Hash("crate.entity")) {
		t.Fatalf("first draw %d should be the crate", drawn[0])
	}
}

func TestRenderDegradesWithoutSurfaces(t *testing.T) {
	s := newTestSystems(t)
	s.backend.FailTexturesWhen(func(desc metadata.Texture2DDesc) bool {
		return desc.Format == metadata.TextureFormatR16G16B16A16Float
	})
	bv := newBoundView(t, s, "broken")
	s.backend.FailTexturesWhen(nil)
	s.Scenes.BuildFromFile(bv.view.SceneID, "yard.scene")
	s.backend.ResetCommands()

	stats, err := bv.pipeline.Render(s.backend)
	if err != nil {
		t.Fatalf("Render: %s", err)
	}
	if s.backend.Count(headless.CmdPresent) != 1 {
		t.Fatal("present must still run exactly once")
	}
	if stats.Draws != 0 {
		t.Fatalf("draws = %d; nothing can be drawn without the G-buffer and scene result", stats.Draws)
	}
	for _, pass := range []string{metadata.PassGBuffer, metadata.PassDeferredShading, metadata.PassForwardShading, metadata.PassPresent} {
		if stats.Skipped[pass] == 0 {
			t.Errorf("pass %s should report skipped work", pass)
		}
	}
	commands := s.backend.Commands()
	if last := commands[len(commands)-1]; last.Targets[0] != s.backend.BackBuffer() {
		t.Fatal("without a scene result the back buffer is presented")
	}
}

func TestRenderRequiresInitialize(t *testing.T) {
	s := newTestSystems(t)
	pipeline := NewRenderPipeline(s.Registry.Hash("loose"), nil, metadata.Viewport{Width: 4, Height: 4})
	s.backend.ResetCommands()
	if _, err := pipeline.Render(s.backend); !errors.Is(err, core.ErrPipelineState) {
		t.Fatalf("expected ErrPipelineState, got %v", err)
	}
	if len(s.backend.Commands()) != 0 {
		t.Fatal("an uninitialized pipeline must not touch the device")
	}

	if err := pipeline.Initialize(s.backend); err != nil {
		t.Fatal(err)
	}
	if err := pipeline.Initialize(s.backend); !errors.Is(err, core.ErrPipelineState) {
		t.Fatalf("second Initialize: %v", err)
	}
	if err := pipeline.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := pipeline.Render(s.backend); !errors.Is(err, core.ErrPipelineState) {
		t.Fatalf("render after Clear: %v", err)
	}
}

func TestRenderReportsDeviceLost(t *testing.T) {
	s := newTestSystems(t)
	bv := newBoundView(t, s, "lost")
	s.backend.FailNext(headless.OpPresent, 1)
	stats, err := bv.pipeline.Render(s.backend)
	if !errors.Is(err, core.ErrDeviceLost) {
		t.Fatalf("expected ErrDeviceLost, got %v", err)
	}
	if stats.Presented {
		t.Fatal("failed present reported as presented")
	}
	if _, err := bv.pipeline.Render(s.backend); err != nil {
		t.Fatalf("next render: %s", err)
	}
}

type recordingEffect struct {
	name    string
	fail    bool
	applied int
}

func (e *recordingEffect) Name() string { return e.name }

func (e *recordingEffect) Apply(fc *FrameContext, target metadata.GPUHandle) error {
	e.applied++
	if e.fail {
		return errors.New("shader missing")
	}
	return nil
}

func TestPipelineHooks(t *testing.T) {
	s := newTestSystems(t)
	bv := newBoundView(t, s, "hooks")

	shaded := 0
	bv.pipeline.SetShader(ShaderFunc(func(fc *FrameContext) error {
		shaded++
		if fc.Resource == nil || fc.Camera == nil {
			t.Error("shader should see the bound resource and camera")
		}
		return nil
	}))
	bloom := &recordingEffect{name: "bloom"}
	broken := &recordingEffect{name: "broken", fail: true}
	tonemap := &recordingEffect{name: "tonemap"}
	bv.pipeline.AddEffect(bloom)
	bv.pipeline.AddEffect(broken)
	bv.pipeline.AddEffect(tonemap)

	stats, err := bv.pipeline.Render(s.backend)
	if err != nil {
		t.Fatal(err)
	}
	if shaded != 1 {
		t.Fatalf("shader ran %d times", shaded)
	}
	if bloom.applied != 1 || broken.applied != 1 || tonemap.applied != 1 {
		t.Fatal("every effect runs once, even after one fails")
	}
	if stats.Skipped[metadata.PassPostProcess] != 1 {
		t.Fatalf("post process skipped = %d, want 1", stats.Skipped[metadata.PassPostProcess])
	}
}

func TestPipelineManagerRejectsDuplicates(t *testing.T) {
	s := newTestSystems(t)
	id := s.Registry.Hash("forward")
	if !s.Pipelines.CreateByID(id) {
		t.Fatal("CreateByID failed")
	}
	first := s.Pipelines.GetByID(id)
	if s.Pipelines.CreateByID(id) {
		t.Fatal("duplicate CreateByID must fail")
	}
	if s.Pipelines.GetByID(id) != first {
		t.Fatal("duplicate create replaced the pipeline")
	}
	if s.Pipelines.CreateByID(core.EmptyID) {
		t.Fatal("empty identifier must be rejected")
	}

	s.backend.FailNext(headless.OpCreateBlend, 1)
	other := s.Registry.Hash("flaky")
	if s.Pipelines.CreateByID(other) {
		t.Fatal("device failure must fail the create")
	}
	if s.Pipelines.GetByID(other) != nil {
		t.Fatal("failed pipeline stored")
	}
	if !s.Pipelines.CreateByID(other) {
		t.Fatal("retry should succeed")
	}

	if err := s.Pipelines.Clear(); err != nil {
		t.Fatal(err)
	}
	if first.State() != metadata.PipelineStateCleared {
		t.Fatalf("state after Clear = %s", first.State())
	}
}
