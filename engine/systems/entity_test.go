package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/math"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

func TestCreateEntityFromMissingFile(t *testing.T) {
	s := newTestSystems(t)
	id := s.Entities.CreateFromFile("missing.entity")
	if id != core.EmptyID {
		t.Fatalf("missing entity returned %d", id)
	}
	if s.Entities.GetRenderEntityByID(id) != nil {
		t.Fatal("lookup of the empty identifier must return nil")
	}
	if s.Entities.Len() != 0 {
		t.Fatal("nothing should be stored")
	}
}

func TestCreateEntityFromFile(t *testing.T) {
	s := newTestSystems(t)
	id := s.Entities.CreateFromFile("crate.entity")
	if id.IsEmpty() {
		t.Fatal("CreateFromFile failed")
	}
	entity := s.Entities.GetRenderEntityByID(id)
	if entity.Name != "crate" {
		t.Fatalf("name = %s", entity.Name)
	}
	if s.Entities.GetRenderEntityByFileName("crate.entity") != entity {
		t.Fatal("lookup by file name returned a different entity")
	}
	if again := s.Entities.CreateFromFile("crate.entity"); again != id {
		t.Fatal("second create must hit the cache")
	}
	if s.Meshes.GetByID(entity.MeshID) == nil || s.Materials.GetByID(entity.MaterialID) == nil {
		t.Fatal("entity references must resolve")
	}
}

func TestEntitiesShareMeshAndMaterial(t *testing.T) {
	s := newTestSystems(t)
	a := s.Entities.GetRenderEntityByID(s.Entities.CreateFromFile("crate.entity"))
	b := s.Entities.GetRenderEntityByID(s.Entities.CreateFromFile("crate2.entity"))
	if a == nil || b == nil {
		t.Fatal("entities failed to load")
	}
	if a.MeshID != b.MeshID || a.MaterialID != b.MaterialID {
		t.Fatal("entities naming the same files must share them")
	}
	if s.Meshes.Len() != 1 || s.Materials.GetByID(a.MaterialID) == nil {
		t.Fatalf("%d meshes loaded, want 1", s.Meshes.Len())
	}
	if got := s.Meshes.Refs(a.MeshID); got != 2 {
		t.Fatalf("mesh refs = %d, want 2", got)
	}
	if got := s.Materials.Refs(a.MaterialID); got != 2 {
		t.Fatalf("material refs = %d, want 2", got)
	}
}

func TestEntityLoadFailures(t *testing.T) {
	s := newTestSystems(t)
	for _, file := range []string{"broken.entity", "nomesh.entity", ""} {
		if id := s.Entities.CreateFromFile(file); id != core.EmptyID {
			t.Errorf("%q returned %d", file, id)
		}
	}
	if s.Entities.GetRenderEntityByFileName("broken.entity") != nil {
		t.Fatal("failed entity must not be stored")
	}
}

func TestMaterialTextureSlots(t *testing.T) {
	s := newTestSystems(t)
	id := s.Materials.CreateFromFile("brick.material")
	material := s.Materials.GetByID(id)
	if material == nil {
		t.Fatal("material failed to load")
	}
	albedo := material.Textures[metadata.MaterialSlotAlbedo]
	if albedo.IsEmpty() {
		t.Fatal("albedo slot empty")
	}
	if s.Textures.GetByID(albedo).Format != metadata.TextureFormatR8G8B8A8SRGB {
		t.Fatal("albedo should be loaded as sRGB")
	}
	if !material.Textures[metadata.MaterialSlotNormal].IsEmpty() {
		t.Fatal("missing normal map must leave the slot empty")
	}
	if material.Parameters["roughness"] != 0.8 {
		t.Fatalf("parameters = %v", material.Parameters)
	}
	if material.IsForward() {
		t.Fatal("brick is deferred")
	}

	views := s.Materials.ShaderResourceViews(id)
	for slot, v := range views {
		if v == metadata.InvalidGPUHandle {
			t.Fatalf("slot %d has no view; empty slots use the default texture", slot)
		}
	}

	glass := s.Materials.GetByID(s.Materials.CreateFromFile("glass.material"))
	if glass == nil || !glass.IsForward() {
		t.Fatal("glass should be forward shaded")
	}
	if s.Materials.GetDefault() == nil {
		t.Fatal("default material missing")
	}
}

func TestMeshManager(t *testing.T) {
	s := newTestSystems(t)
	id := s.Meshes.CreateFromFile("tri.mesh")
	mesh := s.Meshes.GetByID(id)
	if mesh == nil || mesh.VertexCount() != 3 || mesh.IndexCount() != 3 {
		t.Fatalf("unexpected mesh %+v", mesh)
	}
	if len(mesh.Interleaved) != 3*math.VERTEX3D_STRIDE {
		t.Fatalf("interleaved buffer has %d floats", len(mesh.Interleaved))
	}
	if s.Meshes.CreateFromFile("missing.mesh") != core.EmptyID {
		t.Fatal("missing mesh must return the empty identifier")
	}
}

func TestMeshManagerBaseGeometry(t *testing.T) {
	s := newTestSystems(t)

	for kind := metadata.BaseGeometryTriangle; kind < metadata.BaseGeometryMax; kind++ {
		id := s.Meshes.CreateBaseGeometry(kind)
		if id != s.Registry.Hash(kind.FileName()) {
			t.Fatalf("%s: id %d not keyed by its name", kind, id)
		}
		mesh := s.Meshes.GetByID(id)
		if mesh == nil || mesh.VertexCount() == 0 || mesh.IndexCount()%3 != 0 {
			t.Fatalf("%s: unexpected mesh %+v", kind, mesh)
		}
		if len(mesh.Interleaved) != int(mesh.VertexCount())*math.VERTEX3D_STRIDE {
			t.Fatalf("%s: interleaved buffer has %d floats", kind, len(mesh.Interleaved))
		}
		if mesh.Extents.Max.Z() <= mesh.Extents.Min.Z() && kind > metadata.BaseGeometryQuad {
			t.Fatalf("%s: flat extents %+v", kind, mesh.Extents)
		}
	}
	count := s.Meshes.Len()
	if count != int(metadata.BaseGeometryMax) {
		t.Fatalf("meshes = %d, want %d", count, metadata.BaseGeometryMax)
	}

	if s.Meshes.CreateFromFile("cube.primitive") != s.Meshes.CreateBaseGeometry(metadata.BaseGeometryCube) {
		t.Fatal("file name and type should address the same cube")
	}
	if s.Meshes.Len() != count {
		t.Fatal("repeat creation generated a second mesh")
	}
	if s.Meshes.CreateFromFile("torus.primitive") != core.EmptyID {
		t.Fatal("unknown base geometry must return the empty identifier")
	}
	if s.Meshes.CreateBaseGeometry(metadata.BaseGeometryMax) != core.EmptyID {
		t.Fatal("out of range base geometry must return the empty identifier")
	}

	orb := s.Entities.GetRenderEntityByID(s.Entities.CreateFromFile("orb.entity"))
	if orb == nil || orb.MeshID != s.Registry.Hash("sphere.primitive") {
		t.Fatalf("entity did not resolve its primitive mesh: %+v", orb)
	}
}

func TestSceneManager(t *testing.T) {
	s := newTestSystems(t)
	sceneID := s.Registry.Hash("main")
	if !s.Scenes.CreateByID(sceneID) {
		t.Fatal("CreateByID failed")
	}
	if s.Scenes.CreateByID(sceneID) {
		t.Fatal("duplicate scene must fail")
	}
	added, ok := s.Scenes.BuildFromFile(sceneID, "yard.scene")
	if !ok {
		t.Fatal("BuildFromFile failed")
	}
	if added != 3 {
		t.Fatalf("added %d entities, want 3 (broken one skipped)", added)
	}
	scene := s.Scenes.GetByID(sceneID)
	if scene.Name != "yard" {
		t.Fatalf("scene name = %s", scene.Name)
	}
	if len(scene.Opaque()) != 2 || len(scene.Transparent()) != 1 {
		t.Fatalf("opaque %d, transparent %d", len(scene.Opaque()), len(scene.Transparent()))
	}
	first := scene.Items()[0]
	if first.Transform.Position[1] != 2 {
		t.Fatalf("position not applied: %v", first.Transform.Position)
	}

	if _, ok := s.Scenes.BuildFromFile(s.Registry.Hash("nope"), "yard.scene"); ok {
		t.Fatal("building an unknown scene must fail")
	}
	if _, ok := s.Scenes.BuildFromFile(sceneID, "missing.scene"); ok {
		t.Fatal("missing descriptor must fail")
	}
	if s.Scenes.CreateByID(core.EmptyID) {
		t.Fatal("empty identifier must be rejected")
	}

	extra := s.Registry.Hash("extra")
	s.Scenes.CreateByID(extra)
	if !s.Scenes.AddEntity(extra, s.Entities.CreateFromFile("crate.entity"), nil, metadata.SceneLayerOpaque) {
		t.Fatal("AddEntity failed")
	}
	item := s.Scenes.GetByID(extra).Items()[0]
	if item.Transform == nil || !item.Transform.GetWorld().ApproxEqual(mgl32.Ident4()) {
		t.Fatalf("nil transform should become identity, got %+v", item.Transform)
	}
}
