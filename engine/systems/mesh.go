package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/assets/loaders"
	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/math"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

// DEFAULT_PRIMITIVE_SEGMENTS is used for spheres, cylinders and cones when
// the config leaves PrimitiveSegments at zero.
const DEFAULT_PRIMITIVE_SEGMENTS uint32 = 16

type MeshManagerConfig struct {
	MaxMeshCount uint32
	// PrimitiveSegments controls the tessellation of curved base geometry.
	PrimitiveSegments uint32
}

// MeshManager owns mesh geometry loaded from descriptor files.
type MeshManager struct {
	Config *MeshManagerConfig

	registry *core.HashRegistry
	assets   *assets.AssetManager
	meshes   *containers.HandleTable[core.ID, *metadata.Mesh]
}

func NewMeshManager(config *MeshManagerConfig, registry *core.HashRegistry, am *assets.AssetManager) (*MeshManager, error) {
	if config.MaxMeshCount == 0 {
		err := fmt.Errorf("func NewMeshManager - config.MaxMeshCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &MeshManager{
		Config:   config,
		registry: registry,
		assets:   am,
		meshes:   containers.NewHandleTable[core.ID, *metadata.Mesh](),
	}, nil
}

func (mm *MeshManager) Initialize() error {
	return nil
}

func (mm *MeshManager) Shutdown() error {
	return mm.Clear()
}

func (mm *MeshManager) Clear() error {
	return mm.meshes.Clear()
}

// CreateFromFile loads a mesh once; later calls with the same name return
// the cached mesh. Names ending in ".primitive" are generated instead of
// read. core.EmptyID signals a load failure.
func (mm *MeshManager) CreateFromFile(fileName string) core.ID {
	if fileName == "" {
		return core.EmptyID
	}
	if strings.HasSuffix(fileName, metadata.PRIMITIVE_EXTENSION) {
		kind, ok := metadata.ParseBaseGeometry(fileName)
		if !ok {
			core.LogError("unknown base geometry '%s'", fileName)
			return core.EmptyID
		}
		return mm.CreateBaseGeometry(kind)
	}
	id := mm.registry.Hash(fileName)
	mesh, ok := mm.meshes.GetOrCreate(id, func() (*metadata.Mesh, error) {
		if uint32(mm.meshes.Len()) >= mm.Config.MaxMeshCount {
			return nil, fmt.Errorf("mesh manager is full (%d)", mm.Config.MaxMeshCount)
		}
		res, err := mm.assets.LoadAsset(fileName, metadata.ResourceTypeMesh, nil)
		if err != nil {
			return nil, err
		}
		data := res.Data.(*loaders.MeshData)
		core.LogDebug("loaded mesh '%s' (%d vertices, %d indices)", fileName, len(data.Vertices), len(data.Indices))
		return &metadata.Mesh{
			ID:       id,
			FilePath: res.FullPath,
			Vertices: data.Vertices,
			Indices:  data.Indices,
			Extents:  data.Extents,

			Interleaved: math.GeometryInterleave(data.Vertices),
		}, nil
	})
	if !ok {
		core.LogError("failed to load mesh '%s'", mm.registry.Resolve(id))
		return core.EmptyID
	}
	return mesh.ID
}

/**
 * @brief Generates one of the built-in shapes on first use and caches it
 * under the hash of kind.FileName().
 */
func (mm *MeshManager) CreateBaseGeometry(kind metadata.BaseGeometryType) core.ID {
	if kind >= metadata.BaseGeometryMax {
		return core.EmptyID
	}
	name := kind.FileName()
	id := mm.registry.Hash(name)
	mesh, ok := mm.meshes.GetOrCreate(id, func() (*metadata.Mesh, error) {
		if uint32(mm.meshes.Len()) >= mm.Config.MaxMeshCount {
			return nil, fmt.Errorf("mesh manager is full (%d)", mm.Config.MaxMeshCount)
		}
		segments := mm.Config.PrimitiveSegments
		if segments == 0 {
			segments = DEFAULT_PRIMITIVE_SEGMENTS
		}
		var data *math.GeometryData
		switch kind {
		case metadata.BaseGeometryTriangle:
			data = math.GeometryGenerateTriangle()
		case metadata.BaseGeometryQuad:
			data = math.GeometryGenerateQuad()
		case metadata.BaseGeometryCube:
			data = math.GeometryGenerateCube()
		case metadata.BaseGeometrySphere:
			data = math.GeometryGenerateSphere(segments)
		case metadata.BaseGeometryCylinder:
			data = math.GeometryGenerateCylinder(segments)
		case metadata.BaseGeometryCone:
			data = math.GeometryGenerateCone(segments)
		}
		core.LogDebug("generated %s (%d vertices, %d indices)", name, len(data.Vertices), len(data.Indices))
		return &metadata.Mesh{
			ID:          id,
			FilePath:    name,
			Vertices:    data.Vertices,
			Indices:     data.Indices,
			Extents:     math.GeometryCalculateExtents(data.Vertices),
			Interleaved: math.GeometryInterleave(data.Vertices),
		}, nil
	})
	if !ok {
		core.LogError("failed to create base geometry '%s'", name)
		return core.EmptyID
	}
	return mesh.ID
}

func (mm *MeshManager) GetByID(id core.ID) *metadata.Mesh {
	mesh, ok := mm.meshes.Get(id)
	if !ok {
		return nil
	}
	return mesh
}

func (mm *MeshManager) Retain(id core.ID) int  { return mm.meshes.Retain(id) }
func (mm *MeshManager) Release(id core.ID) int { return mm.meshes.Release(id) }
func (mm *MeshManager) Refs(id core.ID) int    { return mm.meshes.Refs(id) }
func (mm *MeshManager) Len() int               { return mm.meshes.Len() }
