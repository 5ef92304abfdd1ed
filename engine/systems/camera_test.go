package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/components"
)

func TestCameraCreate(t *testing.T) {
	s := newTestSystems(t)

	tests := []struct {
		name    string
		file    string
		wantFOV float32
		wantPos mgl32.Vec3
	}{
		{"free", "", 45, mgl32.Vec3{0, -5, 0}},
		{"overview", "overview.camera", 60, mgl32.Vec3{0, -10, 2}},
		{"missing", "nowhere.camera", 45, mgl32.Vec3{0, -5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := s.Registry.Hash(tt.name)
			if !s.Cameras.CreateByID(id, tt.file) {
				t.Fatal("CreateByID failed")
			}
			camera := s.Cameras.GetByID(id)
			if camera.FOV != tt.wantFOV {
				t.Errorf("FOV = %v, want %v", camera.FOV, tt.wantFOV)
			}
			if !camera.Position.ApproxEqual(tt.wantPos) {
				t.Errorf("Position = %v, want %v", camera.Position, tt.wantPos)
			}
		})
	}

	if s.Cameras.CreateByID(s.Registry.Hash("free"), "") {
		t.Fatal("duplicate camera accepted")
	}
	if s.Cameras.CreateByID(core.EmptyID, "") {
		t.Fatal("empty identifier accepted")
	}
	if s.Cameras.ActiveID() != s.Registry.Hash("free") {
		t.Fatal("the first camera becomes active")
	}
}

func newDrivenCamera(t *testing.T) (*testSystems, *components.Camera, *core.Input) {
	t.Helper()
	s := newTestSystems(t)
	id := s.Registry.Hash("driven")
	if !s.Cameras.CreateByID(id, "") {
		t.Fatal("CreateByID failed")
	}
	return s, s.Cameras.GetByID(id), core.NewInput(16, nil)
}

func TestCameraUpdateMoves(t *testing.T) {
	s, camera, input := newDrivenCamera(t)
	start := camera.Position
	forward := camera.Forward

	input.PushKey(core.KEY_W, true)
	s.Cameras.Update(0.5, input)

	want := start.Add(forward.Mul(camera.MoveSpeed * 0.5))
	if !vecNear(camera.Position, want, 1e-4) {
		t.Fatalf("Position = %v, want %v", camera.Position, want)
	}

	// the key stays held until released
	s.Cameras.Update(0.5, input)
	want = want.Add(forward.Mul(camera.MoveSpeed * 0.5))
	if !vecNear(camera.Position, want, 1e-4) {
		t.Fatalf("held key: Position = %v, want %v", camera.Position, want)
	}

	input.PushKey(core.KEY_W, false)
	s.Cameras.Update(0.5, input)
	if !vecNear(camera.Position, want, 1e-4) {
		t.Fatal("released key still moves the camera")
	}
}

func TestCameraMouseLookNeedsRightButton(t *testing.T) {
	s, camera, input := newDrivenCamera(t)
	forward := camera.Forward

	input.PushMouseDelta(40, 0)
	s.Cameras.Update(0.016, input)
	if !camera.Forward.ApproxEqual(forward) {
		t.Fatal("mouse moved the camera without the right button")
	}

	input.SetButton(core.BUTTON_RIGHT, true)
	input.PushMouseDelta(40, 0)
	s.Cameras.Update(0.016, input)
	if camera.Forward.ApproxEqual(forward) {
		t.Fatal("mouse look with the right button held did nothing")
	}
	if d := camera.Forward.Len(); d < 0.999 || d > 1.001 {
		t.Fatalf("forward not unit length: %v", d)
	}
}

func TestCameraWheelZoomClamps(t *testing.T) {
	s, camera, input := newDrivenCamera(t)

	input.PushWheel(1)
	s.Cameras.Update(0.016, input)
	if camera.FOV != 45-camera.ZoomSpeed {
		t.Fatalf("FOV = %v, want %v", camera.FOV, 45-camera.ZoomSpeed)
	}

	input.PushWheel(1000)
	s.Cameras.Update(0.016, input)
	if camera.FOV != components.MIN_FOV {
		t.Fatalf("FOV = %v, want clamp at %v", camera.FOV, components.MIN_FOV)
	}

	input.PushWheel(-1000)
	s.Cameras.Update(0.016, input)
	if camera.FOV != components.MAX_FOV {
		t.Fatalf("FOV = %v, want clamp at %v", camera.FOV, components.MAX_FOV)
	}
}

func TestCameraUpdateWithoutActive(t *testing.T) {
	s := newTestSystems(t)
	input := core.NewInput(4, nil)
	input.PushKey(core.KEY_W, true)
	s.Cameras.Update(1, input)
	if input.Pending() != 0 {
		t.Fatal("Update drains input even without a camera")
	}
}
