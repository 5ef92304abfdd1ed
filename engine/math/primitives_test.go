package math

import (
	stdmath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGeometryPrimitives(t *testing.T) {
	tests := []struct {
		name      string
		geometry  *GeometryData
		vertices  int
		indices   int
		closed    bool
		flatAlong mgl32.Vec3
	}{
		{"triangle", GeometryGenerateTriangle(), 3, 3, false, mgl32.Vec3{0, 0, 1}},
		{"quad", GeometryGenerateQuad(), 4, 6, false, mgl32.Vec3{0, 0, 1}},
		{"cube", GeometryGenerateCube(), 24, 36, true, mgl32.Vec3{}},
		{"sphere", GeometryGenerateSphere(4), 5 * 9, 48 * 3, true, mgl32.Vec3{}},
		{"sphere clamped", GeometryGenerateSphere(1), 4 * 7, 0, true, mgl32.Vec3{}},
		{"cylinder", GeometryGenerateCylinder(8), 96, 96, true, mgl32.Vec3{}},
		{"cone", GeometryGenerateCone(8), 48, 48, true, mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.geometry
			if len(g.Vertices) != tt.vertices {
				t.Fatalf("vertices = %d, want %d", len(g.Vertices), tt.vertices)
			}
			if tt.indices > 0 && len(g.Indices) != tt.indices {
				t.Fatalf("indices = %d, want %d", len(g.Indices), tt.indices)
			}
			if len(g.Indices)%3 != 0 {
				t.Fatalf("indices = %d, not a triangle list", len(g.Indices))
			}

			for i, v := range g.Vertices {
				if l := v.Normal.Len(); stdmath.Abs(float64(l-1)) > 1e-4 {
					t.Fatalf("vertex %d normal %v is not unit length", i, v.Normal)
				}
				if tt.flatAlong.Len() > 0 && v.Normal.Dot(tt.flatAlong) < 0.9999 {
					t.Fatalf("vertex %d normal = %v, want %v", i, v.Normal, tt.flatAlong)
				}
			}

			ext := GeometryCalculateExtents(g.Vertices)
			for axis := 0; axis < 3; axis++ {
				if ext.Min[axis] < -0.5-1e-5 || ext.Max[axis] > 0.5+1e-5 {
					t.Fatalf("extents %+v leave the unit box", ext)
				}
			}

			if !tt.closed {
				return
			}
			if stdmath.Abs(float64(ext.Max.Z()-0.5)) > 1e-5 || stdmath.Abs(float64(ext.Min.Z()+0.5)) > 1e-5 {
				t.Fatalf("z extents = %v..%v, want -0.5..0.5", ext.Min.Z(), ext.Max.Z())
			}
			for i := 0; i < len(g.Indices); i += 3 {
				a := g.Vertices[g.Indices[i]].Position
				b := g.Vertices[g.Indices[i+1]].Position
				c := g.Vertices[g.Indices[i+2]].Position
				face := b.Sub(a).Cross(c.Sub(a))
				if face.Len() == 0 {
					t.Fatalf("triangle %d is degenerate", i/3)
				}
				centroid := a.Add(b).Add(c).Mul(1.0 / 3)
				if face.Dot(centroid) <= 0 {
					t.Fatalf("triangle %d faces inwards", i/3)
				}
			}
		})
	}
}
