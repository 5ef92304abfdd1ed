package assets

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

func writeAsset(t *testing.T, root, rel string, data []byte) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newManager(t *testing.T, root string, watch bool) *AssetManager {
	t.Helper()
	am, err := NewAssetManager(&AssetManagerConfig{Root: root, Watch: watch})
	if err != nil {
		t.Fatalf("NewAssetManager: %s", err)
	}
	if err := am.Initialize(); err != nil {
		t.Fatalf("Initialize: %s", err)
	}
	t.Cleanup(func() { _ = am.Shutdown() })
	return am
}

const crateEntity = `{"mesh":"cube.mesh","material":"wood.material"}`

func TestLoadAsset(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "entities/crate.entity", []byte(crateEntity))
	am := newManager(t, root, false)

	res, err := am.LoadAsset("crate.entity", metadata.ResourceTypeEntity, nil)
	if err != nil {
		t.Fatalf("LoadAsset: %s", err)
	}
	if res.Type != metadata.ResourceTypeEntity {
		t.Fatalf("type = %s", res.Type)
	}
	if res.FullPath != filepath.Join(am.Config.Root, "entities", "crate.entity") {
		t.Fatalf("full path = %s", res.FullPath)
	}
	infos := am.List(metadata.ResourceTypeEntity)
	if len(infos) != 1 || infos[0].LastLoaded.IsZero() {
		t.Fatalf("index not updated: %+v", infos)
	}
}

func TestLoadAssetMissing(t *testing.T) {
	am := newManager(t, t.TempDir(), false)
	_, err := am.LoadAsset("missing.entity", metadata.ResourceTypeEntity, nil)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveRejectsEscapingNames(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "entities/wall.entity", []byte(`{"mesh":"cube.mesh","material":"stone.material"}`))
	writeAsset(t, root, "secret.entity", []byte(`{"mesh":"cube.mesh","material":"stone.material"}`))
	am := newManager(t, root, false)

	tests := []string{
		"../secret.entity",
		"../../etc/passwd",
		"nested/../../secret.entity",
		filepath.Join(root, "secret.entity"),
	}
	for _, name := range tests {
		if _, _, err := am.Resolve(name, metadata.ResourceTypeEntity); !errors.Is(err, core.ErrInvalidDescriptor) {
			t.Errorf("Resolve(%q) = %v, want ErrInvalidDescriptor", name, err)
		}
	}
	if _, _, err := am.Resolve("wall.entity", metadata.ResourceTypeEntity); err != nil {
		t.Fatalf("Resolve(wall.entity): %v", err)
	}
}

func TestLoadAssetInvalid(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "entities/broken.entity", []byte(`{"mesh":"cube.mesh"}`))
	am := newManager(t, root, false)
	_, err := am.LoadAsset("broken.entity", metadata.ResourceTypeEntity, nil)
	if !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestLoadAssetCompressed(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "entities/crate.entity.lz4", compress(t, []byte(crateEntity)))
	am := newManager(t, root, false)

	path, compressed, err := am.Resolve("crate.entity", metadata.ResourceTypeEntity)
	if err != nil || !compressed || filepath.Ext(path) != CompressedExt {
		t.Fatalf("Resolve = %s, %v, %v", path, compressed, err)
	}
	res, err := am.LoadAsset("crate.entity", metadata.ResourceTypeEntity, nil)
	if err != nil {
		t.Fatalf("LoadAsset: %s", err)
	}
	if res.Data.(*metadata.EntityConfig).Material != "wood.material" {
		t.Fatalf("unexpected data %+v", res.Data)
	}

	infos := am.List(metadata.ResourceTypeEntity)
	if len(infos) != 1 || !infos[0].Compressed || infos[0].Name != "crate.entity" {
		t.Fatalf("unexpected index %+v", infos)
	}
}

func TestListSkipsFilesOutsideTypeDirectories(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "README.md", []byte("notes"))
	writeAsset(t, root, "unknown/thing.bin", []byte{1})
	writeAsset(t, root, "scenes/b.scene", []byte("entities: []"))
	writeAsset(t, root, "scenes/a.scene", []byte("entities: []"))
	am := newManager(t, root, false)

	if am.Len() != 2 {
		t.Fatalf("indexed %d files, want 2", am.Len())
	}
	scenes := am.List(metadata.ResourceTypeScene)
	if len(scenes) != 2 || scenes[0].Name != "a.scene" {
		t.Fatalf("unexpected listing %+v", scenes)
	}
}

func TestWatcherReportsNewFiles(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "entities/crate.entity", []byte(crateEntity))
	am := newManager(t, root, true)

	writeAsset(t, root, "entities/barrel.entity", []byte(crateEntity))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case change := <-am.Changes():
			if filepath.Base(change.Path) == "barrel.entity" {
				if change.Type != metadata.ResourceTypeEntity {
					t.Fatalf("change type = %s", change.Type)
				}
				return
			}
		case <-deadline:
			t.Fatal("no change reported for barrel.entity")
		}
	}
}
