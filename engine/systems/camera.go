package systems

import (
	"fmt"

	"github.com/spaghettifunk/dolas/engine/assets"
	"github.com/spaghettifunk/dolas/engine/containers"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/components"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

/** @brief The camera manager configuration. */
type RenderCameraManagerConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system.
	 */
	MaxCameraCount uint16
}

/**
 * @brief Owns cameras keyed by identifier and drives the active one from
 * input every tick.
 */
type RenderCameraManager struct {
	Config *RenderCameraManagerConfig

	registry *core.HashRegistry
	assets   *assets.AssetManager
	cameras  *containers.HandleTable[core.ID, *components.Camera]
	active   core.ID
}

func NewRenderCameraManager(config *RenderCameraManagerConfig, registry *core.HashRegistry, am *assets.AssetManager) (*RenderCameraManager, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewRenderCameraManager - config.MaxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &RenderCameraManager{
		Config:   config,
		registry: registry,
		assets:   am,
		cameras:  containers.NewHandleTable[core.ID, *components.Camera](),
	}, nil
}

func (cs *RenderCameraManager) Initialize() error {
	return nil
}

/**
 * @brief Shuts down the camera manager.
 */
func (cs *RenderCameraManager) Shutdown() error {
	return cs.Clear()
}

func (cs *RenderCameraManager) Clear() error {
	cs.active = core.EmptyID
	return cs.cameras.Clear()
}

/**
 * @brief Creates a camera under id. An empty file name, or a file that
 * cannot be loaded, gives the default camera.
 *
 * @param id The camera identifier; must not exist yet.
 * @param fileName The .camera descriptor relative to the cameras directory.
 * @return False when id is empty, already taken or the manager is full.
 */
func (cs *RenderCameraManager) CreateByID(id core.ID, fileName string) bool {
	if id.IsEmpty() {
		core.LogError("cannot create a camera with the empty identifier")
		return false
	}
	if cs.cameras.Has(id) {
		core.LogWarn("camera '%s' already exists", cs.registry.Resolve(id))
		return false
	}
	if cs.cameras.Len() >= int(cs.Config.MaxCameraCount) {
		core.LogError("camera manager is full (%d); adjust MaxCameraCount", cs.Config.MaxCameraCount)
		return false
	}

	camera := cs.load(fileName)
	if err := cs.cameras.Insert(id, camera); err != nil {
		core.LogError("failed to register camera '%s': %s", cs.registry.Resolve(id), err)
		return false
	}
	if cs.active.IsEmpty() {
		cs.active = id
	}
	core.LogDebug("created camera '%s'", cs.registry.Resolve(id))
	return true
}

func (cs *RenderCameraManager) load(fileName string) *components.Camera {
	if fileName == "" {
		return components.NewCamera()
	}
	res, err := cs.assets.LoadAsset(fileName, metadata.ResourceTypeCamera, nil)
	if err != nil {
		core.LogWarn("camera '%s' could not be loaded, using the default camera: %s", fileName, err)
		return components.NewCamera()
	}
	camera, err := components.NewCameraFromConfig(*res.Data.(*components.CameraConfig))
	if err != nil {
		core.LogWarn("camera '%s' is invalid, using the default camera: %s", fileName, err)
		return components.NewCamera()
	}
	return camera
}

func (cs *RenderCameraManager) GetByID(id core.ID) *components.Camera {
	camera, ok := cs.cameras.Get(id)
	if !ok {
		return nil
	}
	return camera
}

// SetActive selects the camera Update drives.
func (cs *RenderCameraManager) SetActive(id core.ID) bool {
	if !cs.cameras.Has(id) {
		core.LogWarn("cannot activate unknown camera '%s'", cs.registry.Resolve(id))
		return false
	}
	cs.active = id
	return true
}

func (cs *RenderCameraManager) ActiveID() core.ID {
	return cs.active
}

func (cs *RenderCameraManager) Active() *components.Camera {
	return cs.GetByID(cs.active)
}

/**
 * @brief Consumes the input queued since the last tick and applies it to
 * the active camera. W/S move along the view direction, A/D strafe, E/Q
 * rise and sink. Mouse deltas turn the camera while the right button is
 * held and the wheel zooms.
 *
 * @param dt Seconds since the last tick.
 * @param input The input collaborator; nil means no input this tick.
 */
func (cs *RenderCameraManager) Update(dt float64, input *core.Input) {
	if input == nil {
		return
	}
	frame := input.Drain()
	camera := cs.Active()
	if camera == nil {
		return
	}

	step := camera.MoveSpeed * float32(dt)
	if frame.IsKeyDown(core.KEY_W) {
		camera.MoveForward(step)
	}
	if frame.IsKeyDown(core.KEY_S) {
		camera.MoveForward(-step)
	}
	if frame.IsKeyDown(core.KEY_D) {
		camera.MoveRight(step)
	}
	if frame.IsKeyDown(core.KEY_A) {
		camera.MoveRight(-step)
	}
	if frame.IsKeyDown(core.KEY_E) {
		camera.MoveUp(step)
	}
	if frame.IsKeyDown(core.KEY_Q) {
		camera.MoveUp(-step)
	}

	if frame.IsButtonDown(core.BUTTON_RIGHT) {
		if frame.MouseDX != 0 {
			camera.Yaw(-frame.MouseDX * camera.LookSensitivity)
		}
		if frame.MouseDY != 0 {
			camera.Pitch(-frame.MouseDY * camera.LookSensitivity)
		}
	}
	if frame.Wheel != 0 {
		camera.Zoom(frame.Wheel * camera.ZoomSpeed)
	}
}

func (cs *RenderCameraManager) IDs() []core.ID {
	return cs.cameras.IDs()
}

func (cs *RenderCameraManager) Len() int {
	return cs.cameras.Len()
}
