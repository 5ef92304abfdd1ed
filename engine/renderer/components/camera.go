package components

import (
	"fmt"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/dolas/engine/math"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

const (
	MIN_FOV float32 = 10.0
	MAX_FOV float32 = 120.0
	/** @brief Forward never gets closer than this to world up, in degrees. */
	PITCH_LIMIT float32 = 89.0
)

type ProjectionType string

const (
	ProjectionPerspective  ProjectionType = "perspective"
	ProjectionOrthographic ProjectionType = "orthographic"
)

/**
 * @brief Camera descriptor as stored in a .camera TOML file. Missing
 * fields keep the default camera values.
 */
type CameraConfig struct {
	Name            string         `toml:"name"`
	Projection      ProjectionType `toml:"projection"`
	Position        []float32      `toml:"position"`
	Forward         []float32      `toml:"forward"`
	Up              []float32      `toml:"up"`
	Near            float32        `toml:"near"`
	Far             float32        `toml:"far"`
	FOV             float32        `toml:"fov"`
	Aspect          float32        `toml:"aspect"`
	OrthoWidth      float32        `toml:"ortho_width"`
	OrthoHeight     float32        `toml:"ortho_height"`
	MoveSpeed       float32        `toml:"move_speed"`
	LookSensitivity float32        `toml:"look_sensitivity"`
	ZoomSpeed       float32        `toml:"zoom_speed"`
}

/**
 * @brief Represents a camera that can be used for
 * a variety of things, especially rendering. Ideally,
 * these are created and managed by the camera manager.
 * The world is Z-up; the default camera sits at (0,-5,0)
 * looking along +Y.
 */
type Camera struct {
	Name       string
	Projection ProjectionType
	/**
	 * @brief The position of this camera.
	 * NOTE: Use SetPosition so the view matrix is recalculated when needed.
	 */
	Position mgl32.Vec3
	/** @brief Unit vector the camera looks along. */
	Forward mgl32.Vec3
	/** @brief World up used to build the view basis. */
	WorldUp mgl32.Vec3

	/** @brief Vertical field of view in degrees. */
	FOV         float32
	Aspect      float32
	Near        float32
	Far         float32
	OrthoWidth  float32
	OrthoHeight float32

	/** @brief Units per second for keyboard movement. */
	MoveSpeed float32
	/** @brief Degrees per mouse unit. */
	LookSensitivity float32
	/** @brief Degrees of fov per wheel unit. */
	ZoomSpeed float32

	viewDirty       bool
	projectionDirty bool
	viewMatrix      mgl32.Mat4
	projection      mgl32.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

// Reset restores the default camera.
func (c *Camera) Reset() {
	c.Name = DEFAULT_CAMERA_NAME
	c.Projection = ProjectionPerspective
	c.Position = mgl32.Vec3{0, -5, 0}
	c.Forward = mgl32.Vec3{0, 1, 0}
	c.WorldUp = mgl32.Vec3{0, 0, 1}
	c.FOV = 45.0
	c.Aspect = 16.0 / 9.0
	c.Near = 0.1
	c.Far = 1000.0
	c.OrthoWidth = 10.0
	c.OrthoHeight = 10.0
	c.MoveSpeed = 5.0
	c.LookSensitivity = 0.1
	c.ZoomSpeed = 2.0
	c.viewDirty = true
	c.projectionDirty = true
}

// NewCameraFromConfig starts from the default camera and applies every set
// field of cfg.
func NewCameraFromConfig(cfg CameraConfig) (*Camera, error) {
	c := NewCamera()
	if cfg.Name != "" {
		c.Name = cfg.Name
	}
	switch cfg.Projection {
	case "", ProjectionPerspective:
	case ProjectionOrthographic:
		c.Projection = ProjectionOrthographic
	default:
		return nil, fmt.Errorf("unknown projection %q", cfg.Projection)
	}
	var err error
	if c.Position, err = vec3Or(cfg.Position, c.Position, "position"); err != nil {
		return nil, err
	}
	if c.Forward, err = vec3Or(cfg.Forward, c.Forward, "forward"); err != nil {
		return nil, err
	}
	if c.WorldUp, err = vec3Or(cfg.Up, c.WorldUp, "up"); err != nil {
		return nil, err
	}
	if c.Forward.Len() == 0 || c.WorldUp.Len() == 0 {
		return nil, fmt.Errorf("forward and up must be non-zero")
	}
	c.Forward = c.Forward.Normalize()
	c.WorldUp = c.WorldUp.Normalize()

	setIfPositive(&c.Near, cfg.Near)
	setIfPositive(&c.Far, cfg.Far)
	setIfPositive(&c.FOV, cfg.FOV)
	setIfPositive(&c.Aspect, cfg.Aspect)
	setIfPositive(&c.OrthoWidth, cfg.OrthoWidth)
	setIfPositive(&c.OrthoHeight, cfg.OrthoHeight)
	setIfPositive(&c.MoveSpeed, cfg.MoveSpeed)
	setIfPositive(&c.LookSensitivity, cfg.LookSensitivity)
	setIfPositive(&c.ZoomSpeed, cfg.ZoomSpeed)

	if c.Near >= c.Far {
		return nil, fmt.Errorf("near plane %v must be closer than far plane %v", c.Near, c.Far)
	}
	c.FOV = math.Clamp(c.FOV, MIN_FOV, MAX_FOV)
	return c, nil
}

func vec3Or(v []float32, fallback mgl32.Vec3, field string) (mgl32.Vec3, error) {
	switch len(v) {
	case 0:
		return fallback, nil
	case 3:
		return mgl32.Vec3{v[0], v[1], v[2]}, nil
	}
	return fallback, fmt.Errorf("%s needs 3 components, got %d", field, len(v))
}

func setIfPositive(dst *float32, v float32) {
	if v > 0 {
		*dst = v
	}
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.Position = position
	c.viewDirty = true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.Position)
	if dir.Len() == 0 {
		return
	}
	c.Forward = dir.Normalize()
	c.viewDirty = true
}

func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.Aspect = aspect
	c.projectionDirty = true
}

func (c *Camera) SetPerspective(fov, aspect, near, far float32) {
	c.Projection = ProjectionPerspective
	c.FOV = math.Clamp(fov, MIN_FOV, MAX_FOV)
	c.Aspect = aspect
	c.Near = near
	c.Far = far
	c.projectionDirty = true
}

func (c *Camera) SetOrthographic(width, height, near, far float32) {
	c.Projection = ProjectionOrthographic
	c.OrthoWidth = width
	c.OrthoHeight = height
	c.Near = near
	c.Far = far
	c.projectionDirty = true
}

func (c *Camera) Right() mgl32.Vec3 {
	r := c.Forward.Cross(c.WorldUp)
	if r.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return r.Normalize()
}

func (c *Camera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Forward).Normalize()
}

func (c *Camera) MoveForward(amount float32) {
	c.Position = c.Position.Add(c.Forward.Mul(amount))
	c.viewDirty = true
}

func (c *Camera) MoveRight(amount float32) {
	c.Position = c.Position.Add(c.Right().Mul(amount))
	c.viewDirty = true
}

func (c *Camera) MoveUp(amount float32) {
	c.Position = c.Position.Add(c.WorldUp.Mul(amount))
	c.viewDirty = true
}

// Yaw turns around world up by degrees; positive turns left.
func (c *Camera) Yaw(degrees float32) {
	q := mgl32.QuatRotate(mgl32.DegToRad(degrees), c.WorldUp)
	c.Forward = q.Rotate(c.Forward).Normalize()
	c.viewDirty = true
}

// Pitch tilts around the right axis by degrees; positive looks up. Clamped
// to avoid flipping over the pole.
func (c *Camera) Pitch(degrees float32) {
	current := mgl32.RadToDeg(float32(asin(c.Forward.Dot(c.WorldUp))))
	target := math.Clamp(current+degrees, -PITCH_LIMIT, PITCH_LIMIT)
	delta := target - current
	if delta == 0 {
		return
	}
	q := mgl32.QuatRotate(mgl32.DegToRad(delta), c.Right())
	c.Forward = q.Rotate(c.Forward).Normalize()
	c.viewDirty = true
}

// Zoom narrows the field of view by amount degrees, within [MIN_FOV, MAX_FOV].
func (c *Camera) Zoom(amount float32) {
	c.FOV = math.Clamp(c.FOV-amount, MIN_FOV, MAX_FOV)
	c.projectionDirty = true
}

func (c *Camera) GetView() mgl32.Mat4 {
	if c.viewDirty {
		c.viewMatrix = mgl32.LookAtV(c.Position, c.Position.Add(c.Forward), c.WorldUp)
		c.viewDirty = false
	}
	return c.viewMatrix
}

func (c *Camera) GetProjection() mgl32.Mat4 {
	if c.projectionDirty {
		if c.Projection == ProjectionOrthographic {
			hw, hh := c.OrthoWidth/2, c.OrthoHeight/2
			c.projection = mgl32.Ortho(-hw, hw, -hh, hh, c.Near, c.Far)
		} else {
			c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
		}
		c.projectionDirty = false
	}
	return c.projection
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.GetProjection().Mul4(c.GetView())
}

// IsPointInFrustum tests p against the clip volume.
func (c *Camera) IsPointInFrustum(p mgl32.Vec3) bool {
	clip := c.GetViewProjection().Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return false
	}
	return clip.X() >= -w && clip.X() <= w &&
		clip.Y() >= -w && clip.Y() <= w &&
		clip.Z() >= -w && clip.Z() <= w
}

func asin(v float32) float64 {
	return stdmath.Asin(float64(math.Clamp(v, -1, 1)))
}

// Clear is a no-op; cameras own no device objects.
func (c *Camera) Clear() error {
	return nil
}
