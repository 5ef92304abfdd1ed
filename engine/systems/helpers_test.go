package systems

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/headless"
)

// vecNear compares component-wise against an absolute epsilon.
func vecNear(a, b mgl32.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}

const (
	testWidth  = 64
	testHeight = 32
)

var testAssets = map[string]string{
	"meshes/tri.mesh": `{
		"vertex_count": 3,
		"vertex_list": [
			{"position": [0, 0, 0], "uv": [0, 0], "normal": [0, 0, 1]},
			{"position": [1, 0, 0], "uv": [1, 0], "normal": [0, 0, 1]},
			{"position": [0, 1, 0], "uv": [0, 1], "normal": [0, 0, 1]}
		],
		"index_count": 3,
		"index_list": [0, 1, 2]
	}`,
	"materials/brick.material": `{
		"vertex_shader": "gbuffer.vs",
		"pixel_shader": "gbuffer.ps",
		"texture": {"albedo_map": "brick.png", "normal_map": "missing_n.png"},
		"parameter": {"roughness": 0.8}
	}`,
	"materials/glass.material": `{
		"vertex_shader": "forward.vs",
		"pixel_shader": "forward.ps",
		"shading": "forward"
	}`,
	"entities/crate.entity":  `{"name": "crate", "mesh": "tri.mesh", "material": "brick.material"}`,
	"entities/crate2.entity": `{"mesh": "tri.mesh", "material": "brick.material"}`,
	"entities/glass.entity":  `{"mesh": "tri.mesh", "material": "glass.material"}`,
	"entities/broken.entity": `{"mesh": "missing.mesh", "material": "brick.material"}`,
	"entities/nomesh.entity": `{"material": "brick.material"}`,
	"entities/orb.entity":    `{"mesh": "sphere.primitive", "material": "brick.material"}`,
	"scenes/yard.scene": `
name: yard
entities:
  - entity: crate.entity
    position: [0, 2, 0]
  - entity: crate2.entity
  - entity: glass.entity
    layer: transparent
  - entity: broken.entity
`,
	"cameras/overview.camera": `
name = "overview"
position = [0.0, -10.0, 2.0]
fov = 60.0
move_speed = 2.0
`,
}

func writeTestAssets(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range testAssets {
		writeTestFile(t, root, rel, []byte(content))
	}

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, root, "textures/brick.png", buf.Bytes())
	return root
}

func writeTestFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

type testSystems struct {
	*SystemManager
	backend *headless.Backend
	bus     *core.EventBus
}

func newTestSystems(t *testing.T) *testSystems {
	t.Helper()
	am, err := assets.NewAssetManager(&assets.AssetManagerConfig{Root: writeTestAssets(t)})
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = am.Shutdown() })

	backend := headless.New()
	if err := backend.Initialize("test", testWidth, testHeight); err != nil {
		t.Fatal(err)
	}
	config := DefaultSystemManagerConfig()
	config.Width, config.Height = testWidth, testHeight

	sm, err := NewSystemManager(config, core.NewHashRegistry(), am, backend)
	if err != nil {
		t.Fatal(err)
	}
	bus := core.NewEventBus()
	if err := sm.Initialize(bus); err != nil {
		t.Fatal(err)
	}
	return &testSystems{SystemManager: sm, backend: backend, bus: bus}
}
