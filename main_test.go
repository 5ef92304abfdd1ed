package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/dolas/engine"
)

func TestInspectPrintsTables(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"meshes/tri.mesh": `{"vertex_count": 3, "vertex_list": [
			{"position": [0, 0, 0], "normal": [0, 0, 1]},
			{"position": [1, 0, 0], "normal": [0, 0, 1]},
			{"position": [0, 1, 0], "normal": [0, 0, 1]}]}`,
		"materials/plain.material": `{"vertex_shader": "a.vs", "pixel_shader": "a.ps"}`,
		"entities/tri.entity":      `{"mesh": "tri.mesh", "material": "plain.material"}`,
		"scenes/main.scene":        "entities:\n  - entity: tri.entity\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv(engine.EnvAssetDir, root)

	var out bytes.Buffer
	if err := inspectCommand([]string{"--registry"}, &out); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Managers", "Views", "Textures", "Hash registry", "main_surfaces", "tri.entity"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, out.String())
		}
	}
}

func TestSceneNamesFallBackToDefaultView(t *testing.T) {
	names := sceneNames(engine.DefaultEngineConfig())
	if len(names) != 1 || names[0] != engine.DefaultViews()[0].Scene {
		t.Fatalf("names = %v", names)
	}
}
