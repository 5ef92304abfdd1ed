package math

// GeometryGenerateNormals writes a face normal into every vertex of every
// triangle. Indices past the vertex list are ignored.
func GeometryGenerateNormals(vertices []Vertex3D, indices []uint32) {
	n := uint32(len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i+0], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		c := edge1.Cross(edge2)
		if c.Len() == 0 {
			continue
		}
		normal := c.Normalize()

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GeometryCalculateExtents returns the axis aligned bounds of vertices.
func GeometryCalculateExtents(vertices []Vertex3D) Extents3D {
	if len(vertices) == 0 {
		return Extents3D{}
	}
	ext := Extents3D{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		for axis := 0; axis < 3; axis++ {
			if v.Position[axis] < ext.Min[axis] {
				ext.Min[axis] = v.Position[axis]
			}
			if v.Position[axis] > ext.Max[axis] {
				ext.Max[axis] = v.Position[axis]
			}
		}
	}
	return ext
}

// GeometryInterleave flattens vertices into the position/texcoord/normal
// layout the device expects.
func GeometryInterleave(vertices []Vertex3D) []float32 {
	out := make([]float32, 0, len(vertices)*VERTEX3D_STRIDE)
	for _, v := range vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Texcoord[0], v.Texcoord[1],
			v.Normal[0], v.Normal[1], v.Normal[2],
		)
	}
	return out
}
