package math

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MIN_PRIMITIVE_SEGMENTS uint32 = 3
	MAX_PRIMITIVE_SEGMENTS uint32 = 128
)

/**
 * @brief Generated base geometry. Every shape fits the unit box centred on
 * the origin, with +Z up and counter-clockwise front faces.
 */
type GeometryData struct {
	Vertices []Vertex3D
	Indices  []uint32
}

func (g *GeometryData) addTriangle(a, b, c Vertex3D) {
	base := uint32(len(g.Vertices))
	g.Vertices = append(g.Vertices, a, b, c)
	g.Indices = append(g.Indices, base, base+1, base+2)
}

// addQuad appends the face spanned by centre +/- u +/- v. Its normal points
// along u x v.
func (g *GeometryData) addQuad(centre, u, v mgl32.Vec3) {
	base := uint32(len(g.Vertices))
	g.Vertices = append(g.Vertices,
		Vertex3D{Position: centre.Sub(u).Sub(v), Texcoord: mgl32.Vec2{0, 1}},
		Vertex3D{Position: centre.Add(u).Sub(v), Texcoord: mgl32.Vec2{1, 1}},
		Vertex3D{Position: centre.Add(u).Add(v), Texcoord: mgl32.Vec2{1, 0}},
		Vertex3D{Position: centre.Sub(u).Add(v), Texcoord: mgl32.Vec2{0, 0}},
	)
	g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
}

func GeometryGenerateTriangle() *GeometryData {
	g := &GeometryData{}
	g.addTriangle(
		Vertex3D{Position: mgl32.Vec3{-0.5, -0.5, 0}, Texcoord: mgl32.Vec2{0, 1}},
		Vertex3D{Position: mgl32.Vec3{0.5, -0.5, 0}, Texcoord: mgl32.Vec2{1, 1}},
		Vertex3D{Position: mgl32.Vec3{0, 0.5, 0}, Texcoord: mgl32.Vec2{0.5, 0}},
	)
	GeometryGenerateNormals(g.Vertices, g.Indices)
	return g
}

// GeometryGenerateQuad returns a unit quad in the XY plane facing +Z.
func GeometryGenerateQuad() *GeometryData {
	g := &GeometryData{}
	g.addQuad(mgl32.Vec3{}, mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{0, 0.5, 0})
	GeometryGenerateNormals(g.Vertices, g.Indices)
	return g
}

// GeometryGenerateCube returns a unit cube with four vertices per face so
// every face keeps its own normal.
func GeometryGenerateCube() *GeometryData {
	g := &GeometryData{}
	x := mgl32.Vec3{0.5, 0, 0}
	y := mgl32.Vec3{0, 0.5, 0}
	z := mgl32.Vec3{0, 0, 0.5}
	g.addQuad(x, y, z)
	g.addQuad(x.Mul(-1), z, y)
	g.addQuad(y, z, x)
	g.addQuad(y.Mul(-1), x, z)
	g.addQuad(z, x, y)
	g.addQuad(z.Mul(-1), y, x)
	GeometryGenerateNormals(g.Vertices, g.Indices)
	return g
}

/**
 * @brief A UV sphere of radius 0.5 with segments rings and twice as many
 * sectors. Normals are the exact surface normals. Pole triangles that would
 * collapse to a line are left out.
 */
func GeometryGenerateSphere(segments uint32) *GeometryData {
	rings := Clamp(segments, MIN_PRIMITIVE_SEGMENTS, MAX_PRIMITIVE_SEGMENTS)
	sectors := rings * 2
	g := &GeometryData{
		Vertices: make([]Vertex3D, 0, (rings+1)*(sectors+1)),
	}
	for i := uint32(0); i <= rings; i++ {
		phi := stdmath.Pi * float64(i) / float64(rings)
		for j := uint32(0); j <= sectors; j++ {
			theta := 2 * stdmath.Pi * float64(j) / float64(sectors)
			n := mgl32.Vec3{
				float32(stdmath.Sin(phi) * stdmath.Cos(theta)),
				float32(stdmath.Sin(phi) * stdmath.Sin(theta)),
				float32(stdmath.Cos(phi)),
			}
			g.Vertices = append(g.Vertices, Vertex3D{
				Position: n.Mul(0.5),
				Texcoord: mgl32.Vec2{float32(j) / float32(sectors), float32(i) / float32(rings)},
				Normal:   n,
			})
		}
	}
	at := func(i, j uint32) uint32 { return i*(sectors+1) + j }
	for i := uint32(0); i < rings; i++ {
		for j := uint32(0); j < sectors; j++ {
			a, b, c, d := at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)
			if i != rings-1 {
				g.Indices = append(g.Indices, a, b, c)
			}
			if i != 0 {
				g.Indices = append(g.Indices, a, c, d)
			}
		}
	}
	return g
}

func ring(segments uint32, j uint32, z float32) mgl32.Vec3 {
	theta := 2 * stdmath.Pi * float64(j%segments) / float64(segments)
	return mgl32.Vec3{float32(0.5 * stdmath.Cos(theta)), float32(0.5 * stdmath.Sin(theta)), z}
}

func capVertex(p mgl32.Vec3) Vertex3D {
	return Vertex3D{Position: p, Texcoord: mgl32.Vec2{p.X() + 0.5, p.Y() + 0.5}}
}

// GeometryGenerateCylinder returns a flat-shaded cylinder of radius 0.5 and
// height 1 along Z.
func GeometryGenerateCylinder(segments uint32) *GeometryData {
	segments = Clamp(segments, MIN_PRIMITIVE_SEGMENTS, MAX_PRIMITIVE_SEGMENTS)
	g := &GeometryData{}
	top := mgl32.Vec3{0, 0, 0.5}
	bottom := mgl32.Vec3{0, 0, -0.5}
	for j := uint32(0); j < segments; j++ {
		b0, b1 := ring(segments, j, -0.5), ring(segments, j+1, -0.5)
		t0, t1 := ring(segments, j, 0.5), ring(segments, j+1, 0.5)
		u0 := float32(j) / float32(segments)
		u1 := float32(j+1) / float32(segments)

		g.addTriangle(
			Vertex3D{Position: b0, Texcoord: mgl32.Vec2{u0, 1}},
			Vertex3D{Position: b1, Texcoord: mgl32.Vec2{u1, 1}},
			Vertex3D{Position: t1, Texcoord: mgl32.Vec2{u1, 0}},
		)
		g.addTriangle(
			Vertex3D{Position: b0, Texcoord: mgl32.Vec2{u0, 1}},
			Vertex3D{Position: t1, Texcoord: mgl32.Vec2{u1, 0}},
			Vertex3D{Position: t0, Texcoord: mgl32.Vec2{u0, 0}},
		)
		g.addTriangle(capVertex(top), capVertex(t0), capVertex(t1))
		g.addTriangle(capVertex(bottom), capVertex(b1), capVertex(b0))
	}
	GeometryGenerateNormals(g.Vertices, g.Indices)
	return g
}

// GeometryGenerateCone returns a flat-shaded cone with its base at z=-0.5
// and apex at z=0.5.
func GeometryGenerateCone(segments uint32) *GeometryData {
	segments = Clamp(segments, MIN_PRIMITIVE_SEGMENTS, MAX_PRIMITIVE_SEGMENTS)
	g := &GeometryData{}
	apex := mgl32.Vec3{0, 0, 0.5}
	bottom := mgl32.Vec3{0, 0, -0.5}
	for j := uint32(0); j < segments; j++ {
		b0, b1 := ring(segments, j, -0.5), ring(segments, j+1, -0.5)
		u0 := float32(j) / float32(segments)
		u1 := float32(j+1) / float32(segments)

		g.addTriangle(
			Vertex3D{Position: b0, Texcoord: mgl32.Vec2{u0, 1}},
			Vertex3D{Position: b1, Texcoord: mgl32.Vec2{u1, 1}},
			Vertex3D{Position: apex, Texcoord: mgl32.Vec2{(u0 + u1) / 2, 0}},
		)
		g.addTriangle(capVertex(bottom), capVertex(b1), capVertex(b0))
	}
	GeometryGenerateNormals(g.Vertices, g.Indices)
	return g
}
