package metadata

import (
	"strings"

	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/math"
)

/** @brief One vertex as written in a mesh descriptor. */
type MeshVertexConfig struct {
	Position []float32 `json:"position"`
	UV       []float32 `json:"uv,omitempty"`
	Normal   []float32 `json:"normal,omitempty"`
}

/**
 * @brief Mesh descriptor as stored on disk. Counts must match the
 * length of their list.
 */
type MeshConfig struct {
	VertexCount int                `json:"vertex_count"`
	VertexList  []MeshVertexConfig `json:"vertex_list"`
	IndexCount  int                `json:"index_count,omitempty"`
	IndexList   []uint32           `json:"index_list,omitempty"`
}

/**
 * @brief Immutable geometry shared by every entity that references it.
 */
type Mesh struct {
	ID       core.ID
	FilePath string
	Vertices []math.Vertex3D
	Indices  []uint32
	Extents  math.Extents3D
	/** @brief Vertices flattened to position(3)+uv(2)+normal(3) for upload. */
	Interleaved []float32
}

func (m *Mesh) VertexCount() uint32 {
	return uint32(len(m.Vertices))
}

func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// Clear drops the CPU-side geometry. Meshes own no device objects.
func (m *Mesh) Clear() error {
	m.Vertices = nil
	m.Indices = nil
	m.Interleaved = nil
	return nil
}

/** @brief Built-in geometry the mesh manager generates instead of loading. */
type BaseGeometryType uint8

const (
	BaseGeometryTriangle BaseGeometryType = iota
	BaseGeometryQuad
	BaseGeometryCube
	BaseGeometrySphere
	BaseGeometryCylinder
	BaseGeometryCone
	BaseGeometryMax
)

// PRIMITIVE_EXTENSION marks a mesh name as base geometry, e.g. "cube.primitive".
const PRIMITIVE_EXTENSION = ".primitive"

var baseGeometryNames = [BaseGeometryMax]string{"triangle", "quad", "cube", "sphere", "cylinder", "cone"}

func (t BaseGeometryType) String() string {
	if t >= BaseGeometryMax {
		return "unknown"
	}
	return baseGeometryNames[t]
}

// FileName is the mesh name entities use to reference t.
func (t BaseGeometryType) FileName() string {
	return t.String() + PRIMITIVE_EXTENSION
}

// ParseBaseGeometry maps a mesh name such as "sphere.primitive" to its type.
func ParseBaseGeometry(name string) (BaseGeometryType, bool) {
	base, ok := strings.CutSuffix(name, PRIMITIVE_EXTENSION)
	if !ok {
		return BaseGeometryMax, false
	}
	for i, n := range baseGeometryNames {
		if n == base {
			return BaseGeometryType(i), true
		}
	}
	return BaseGeometryMax, false
}
