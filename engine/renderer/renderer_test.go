package renderer_test

import (
	"testing"

	"github.com/spaghettifunk/dolas/engine/renderer"
	"github.com/spaghettifunk/dolas/engine/renderer/headless"
)

func TestRendererLifecycle(t *testing.T) {
	if _, err := renderer.New(nil); err == nil {
		t.Fatal("New(nil) should fail")
	}

	dev := headless.New()
	r, err := renderer.New(dev)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Initialize("test", 320, 200); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if r.BeginFrame() != 1 || r.BeginFrame() != 2 {
		t.Fatal("frame counter should advance by one")
	}

	if err := r.OnResize(0, 0); err != nil {
		t.Fatalf("minimised resize: %v", err)
	}
	if w, h := r.Size(); w != 320 || h != 200 {
		t.Fatalf("size after minimise = %dx%d", w, h)
	}
	if err := r.OnResize(640, 400); err != nil {
		t.Fatalf("OnResize: %v", err)
	}
	if w, h := dev.Size(); w != 640 || h != 400 {
		t.Fatalf("backend size = %dx%d", w, h)
	}
	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestBackendType(t *testing.T) {
	var dev renderer.Backend = headless.New()
	if dev.Type() != renderer.Headless || dev.Type().String() != "headless" {
		t.Fatalf("Type = %v", dev.Type())
	}
	if got := renderer.RendererType(9).String(); got != "RendererType(9)" {
		t.Fatalf("unknown type = %q", got)
	}
}
