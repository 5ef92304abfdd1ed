package loaders

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/components"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %s", err)
	}
	return buf.Bytes()
}

func TestEntityLoader(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"complete", `{"name":"crate","mesh":"cube.mesh","material":"wood.material"}`, false},
		{"no name", `{"mesh":"cube.mesh","material":"wood.material"}`, false},
		{"missing mesh", `{"material":"wood.material"}`, true},
		{"missing material", `{"mesh":"cube.mesh"}`, true},
		{"empty mesh", `{"mesh":"","material":"wood.material"}`, true},
		{"wrong type", `{"mesh":3,"material":"wood.material"}`, true},
		{"malformed", `{"mesh":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := (&EntityLoader{}).Load("crate.entity", []byte(tt.data), nil)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidDescriptor) {
					t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			cfg := res.Data.(*metadata.EntityConfig)
			if cfg.Mesh != "cube.mesh" || cfg.Material != "wood.material" {
				t.Fatalf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestMaterialLoader(t *testing.T) {
	data := `{
		"vertex_shader": "gbuffer.vs",
		"pixel_shader": "gbuffer.ps",
		"texture": {"albedo_map": "brick.png", "normal_map": "brick_n.png"},
		"parameter": {"roughness": 0.5}
	}`
	res, err := (&MaterialLoader{}).Load("brick.material", []byte(data), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cfg := res.Data.(*metadata.MaterialConfig)
	if cfg.Shading != metadata.ShadingDeferred {
		t.Fatalf("shading defaults to deferred, got %q", cfg.Shading)
	}
	if cfg.Texture["normal_map"] != "brick_n.png" {
		t.Fatalf("texture map not decoded: %+v", cfg.Texture)
	}
	if cfg.Parameter["roughness"] != 0.5 {
		t.Fatalf("parameter not decoded: %+v", cfg.Parameter)
	}

	bad := []string{
		`{"texture": {"height_map": "h.png"}}`,
		`{"shading": "raytraced"}`,
		`{"parameter": {"roughness": "high"}}`,
	}
	for _, b := range bad {
		if _, err := (&MaterialLoader{}).Load("bad.material", []byte(b), nil); !errors.Is(err, core.ErrInvalidDescriptor) {
			t.Errorf("%s: expected ErrInvalidDescriptor, got %v", b, err)
		}
	}
}

func TestMeshLoaderGeneratesNormals(t *testing.T) {
	data := `{
		"vertex_count": 3,
		"vertex_list": [
			{"position": [0, 0, 0], "uv": [0, 0]},
			{"position": [1, 0, 0], "uv": [1, 0]},
			{"position": [0, 1, 0], "uv": [0, 1]}
		],
		"index_count": 3,
		"index_list": [0, 1, 2]
	}`
	res, err := (&MeshLoader{}).Load("tri.mesh", []byte(data), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	mesh := res.Data.(*MeshData)
	if len(mesh.Vertices) != 3 || len(mesh.Indices) != 3 {
		t.Fatalf("got %d vertices, %d indices", len(mesh.Vertices), len(mesh.Indices))
	}
	for i, v := range mesh.Vertices {
		if v.Normal[2] != 1 {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
	}
	if mesh.Extents.Max[0] != 1 || mesh.Extents.Max[1] != 1 {
		t.Errorf("unexpected extents %+v", mesh.Extents)
	}
}

func TestMeshLoaderRejectsBadCounts(t *testing.T) {
	tests := map[string]string{
		"vertex count": `{"vertex_count": 2, "vertex_list": [{"position": [0,0,0]}]}`,
		"index count":  `{"vertex_count": 1, "vertex_list": [{"position": [0,0,0]}], "index_count": 2, "index_list": [0]}`,
		"index range":  `{"vertex_count": 1, "vertex_list": [{"position": [0,0,0]}], "index_count": 1, "index_list": [4]}`,
		"position":     `{"vertex_count": 1, "vertex_list": [{"position": [0,0]}]}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := (&MeshLoader{}).Load("bad.mesh", []byte(data), nil); !errors.Is(err, core.ErrInvalidDescriptor) {
				t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
			}
		})
	}
}

func TestSceneLoader(t *testing.T) {
	data := `
name: yard
entities:
  - entity: crate.entity
    position: [1, 2, 3]
  - entity: glass.entity
    layer: transparent
`
	res, err := (&SceneLoader{}).Load("yard.scene", []byte(data), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cfg := res.Data.(*metadata.SceneConfig)
	if cfg.Name != "yard" || len(cfg.Entities) != 2 {
		t.Fatalf("unexpected scene %+v", cfg)
	}
	if cfg.Entities[1].Layer != metadata.SceneLayerTransparent {
		t.Fatalf("layer not decoded: %+v", cfg.Entities[1])
	}

	bad := map[string]string{
		"no entity":     "entities:\n  - position: [0, 0, 0]\n",
		"short vector":  "entities:\n  - entity: a.entity\n    scale: [1, 1]\n",
		"unknown layer": "entities:\n  - entity: a.entity\n    layer: overlay\n",
		"unknown field": "entities:\n  - entity: a.entity\n    colour: red\n",
	}
	for name, b := range bad {
		if _, err := (&SceneLoader{}).Load("bad.scene", []byte(b), nil); !errors.Is(err, core.ErrInvalidDescriptor) {
			t.Errorf("%s: expected ErrInvalidDescriptor, got %v", name, err)
		}
	}
}

func TestCameraLoader(t *testing.T) {
	data := `
name = "overview"
position = [0.0, -10.0, 4.0]
fov = 60.0
`
	res, err := (&CameraLoader{}).Load("overview.camera", []byte(data), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cfg := res.Data.(*components.CameraConfig)
	if cfg.Name != "overview" || cfg.FOV != 60 || len(cfg.Position) != 3 {
		t.Fatalf("unexpected camera %+v", cfg)
	}
	if _, err := (&CameraLoader{}).Load("bad.camera", []byte("fov = "), nil); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestTextureLoader(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	data := encodePNG(t, img)

	res, err := (&TextureLoader{}).Load("quad.png", data, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	pix := res.Data.(*metadata.ImageResourceData)
	if pix.Width != 2 || pix.Height != 2 || pix.ChannelCount != 4 {
		t.Fatalf("unexpected image %dx%dx%d", pix.Width, pix.Height, pix.ChannelCount)
	}
	if !pix.HasTransparency {
		t.Fatal("expected transparency")
	}
	// flipped: the first row is the former bottom row, starting with blue
	if pix.Pixels[0] != 0 || pix.Pixels[2] != 255 {
		t.Fatalf("row not flipped: %v", pix.Pixels[:4])
	}

	if _, err := (&TextureLoader{}).Load("junk.png", []byte("not an image"), nil); !errors.Is(err, core.ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
}

func TestBinaryLoaderCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	res, err := (&BinaryLoader{}).Load("blob.bin", src, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	src[0] = 9
	if res.Data.([]byte)[0] != 1 {
		t.Fatal("binary loader must copy its input")
	}
	if err := (&BinaryLoader{}).Unload(res); err != nil || res.Data != nil {
		t.Fatalf("unload failed: %v", err)
	}
}
