package math

import "github.com/go-gl/mathgl/mgl32"

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min mgl32.Vec3
	/** @brief The maximum extents of the object. */
	Max mgl32.Vec3
}

/**
 * @brief Represents a single vertex in 3D space. The interleaved layout
 * uploaded to the device is position(3) + texcoord(2) + normal(3).
 */
type Vertex3D struct {
	/** @brief The position of the vertex */
	Position mgl32.Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord mgl32.Vec2
	/** @brief The normal of the vertex. */
	Normal mgl32.Vec3
}

// VERTEX3D_STRIDE is the number of floats per interleaved vertex.
const VERTEX3D_STRIDE = 8

/**
 * @brief Represents the transform of an object in the world.
 * Transforms can have a parent whose own transform is then
 * taken into account. Use the setters so the local matrix
 * is regenerated when needed.
 */
type Transform struct {
	/** @brief The position in the world. */
	Position mgl32.Vec3
	/** @brief The rotation in the world, as euler angles in degrees (pitch, yaw, roll). */
	Rotation mgl32.Vec3
	/** @brief The scale in the world. */
	Scale mgl32.Vec3
	/**
	 * @brief Indicates if the position, rotation or scale have changed,
	 * indicating that the local matrix needs to be recalculated.
	 */
	IsDirty bool
	/**
	 * @brief The local transformation matrix, updated whenever
	 * the position, rotation or scale have changed.
	 */
	Local mgl32.Mat4
	/** @brief A pointer to a parent transform if one is assigned. Can also be nil. */
	Parent *Transform
}
