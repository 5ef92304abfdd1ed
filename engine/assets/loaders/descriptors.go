package loaders

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/math"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

// EntityLoader reads entity descriptors. Mesh and material are required.
type EntityLoader struct{}

func (el *EntityLoader) Load(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	if err := entityDescriptorSchema.Validate(name, data); err != nil {
		return nil, err
	}
	cfg := &metadata.EntityConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrInvalidDescriptor, name, err)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeEntity,
		Name:     name,
		DataSize: uint64(len(data)),
		Data:     cfg,
	}, nil
}

func (el *EntityLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}

// MaterialLoader reads material descriptors.
type MaterialLoader struct{}

func (ml *MaterialLoader) Load(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	if err := materialDescriptorSchema.Validate(name, data); err != nil {
		return nil, err
	}
	cfg := &metadata.MaterialConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrInvalidDescriptor, name, err)
	}
	if cfg.Shading == "" {
		cfg.Shading = metadata.ShadingDeferred
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeMaterial,
		Name:     name,
		DataSize: uint64(len(data)),
		Data:     cfg,
	}, nil
}

func (ml *MaterialLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}

// MeshData is what the mesh loader produces.
type MeshData struct {
	Vertices []math.Vertex3D
	Indices  []uint32
	Extents  math.Extents3D
}

// MeshLoader reads mesh descriptors into interleavable vertices. Missing
// normals are generated from the faces.
type MeshLoader struct{}

func (ml *MeshLoader) Load(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	if err := meshDescriptorSchema.Validate(name, data); err != nil {
		return nil, err
	}
	cfg := &metadata.MeshConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrInvalidDescriptor, name, err)
	}
	mesh, err := buildMesh(name, cfg)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeMesh,
		Name:     name,
		DataSize: uint64(len(data)),
		Data:     mesh,
	}, nil
}

func buildMesh(name string, cfg *metadata.MeshConfig) (*MeshData, error) {
	if cfg.VertexCount != len(cfg.VertexList) {
		return nil, fmt.Errorf("%w: %s: vertex_count %d does not match %d vertices", core.ErrInvalidDescriptor, name, cfg.VertexCount, len(cfg.VertexList))
	}
	if cfg.IndexCount != len(cfg.IndexList) {
		return nil, fmt.Errorf("%w: %s: index_count %d does not match %d indices", core.ErrInvalidDescriptor, name, cfg.IndexCount, len(cfg.IndexList))
	}

	out := &MeshData{
		Vertices: make([]math.Vertex3D, 0, len(cfg.VertexList)),
		Indices:  append([]uint32(nil), cfg.IndexList...),
	}
	missingNormals := false
	for i, v := range cfg.VertexList {
		if len(v.Position) < 3 {
			return nil, fmt.Errorf("%w: %s: vertex %d has an invalid position", core.ErrInvalidDescriptor, name, i)
		}
		vert := math.Vertex3D{Position: mgl32.Vec3{v.Position[0], v.Position[1], v.Position[2]}}
		if len(v.UV) >= 2 {
			vert.Texcoord = mgl32.Vec2{v.UV[0], v.UV[1]}
		}
		if len(v.Normal) >= 3 {
			vert.Normal = mgl32.Vec3{v.Normal[0], v.Normal[1], v.Normal[2]}
		} else {
			missingNormals = true
		}
		out.Vertices = append(out.Vertices, vert)
	}
	for _, idx := range out.Indices {
		if int(idx) >= len(out.Vertices) {
			return nil, fmt.Errorf("%w: %s: index %d out of range", core.ErrInvalidDescriptor, name, idx)
		}
	}

	if missingNormals {
		indices := out.Indices
		if len(indices) == 0 {
			indices = make([]uint32, len(out.Vertices))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		math.GeometryGenerateNormals(out.Vertices, indices)
	}
	out.Extents = math.GeometryCalculateExtents(out.Vertices)
	return out, nil
}

func (ml *MeshLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}
