package engine

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
	"github.com/spaghettifunk/dolas/engine/systems"
)

const (
	EnvAssetDir = "DOLAS_ASSET_DIR"
	EnvLogLevel = "DOLAS_LOG_LEVEL"
	EnvHeadless = "DOLAS_HEADLESS"
)

/** @brief Manager capacities. Zero keeps the default. */
type LimitsConfig struct {
	MaxTextureCount  uint32 `toml:"max_textures"`
	MaxMeshCount     uint32 `toml:"max_meshes"`
	MaxMaterialCount uint32 `toml:"max_materials"`
	MaxEntityCount   uint32 `toml:"max_entities"`
	MaxSceneCount    uint32 `toml:"max_scenes"`
	MaxCameraCount   uint16 `toml:"max_cameras"`
	MaxResourceCount uint32 `toml:"max_resources"`
	MaxPipelineCount uint32 `toml:"max_pipelines"`
	MaxViewCount     uint16 `toml:"max_views"`
	// PrimitiveSegments tessellates generated spheres, cylinders and cones.
	PrimitiveSegments uint32 `toml:"primitive_segments"`
}

/**
 * @brief Everything needed to boot the engine, as read from engine.toml.
 */
type EngineConfig struct {
	Application ApplicationConfig `toml:"application"`
	AssetDir    string            `toml:"asset_dir"`
	WatchAssets bool              `toml:"watch_assets"`
	Headless    bool              `toml:"headless"`
	/** @brief Frames per second the loop paces itself to; 0 disables pacing. */
	TargetFPS    float64    `toml:"target_fps"`
	SyncInterval int        `toml:"sync_interval"`
	ClearColour  [4]float32 `toml:"clear_colour"`
	/** @brief Consecutive device-lost recoveries before Run gives up. */
	MaxRecoveries  int `toml:"max_recoveries"`
	InputQueueSize int `toml:"input_queue_size"`
	/** @brief Run stops after this many frames; 0 runs until quit. */
	MaxFrames uint64                     `toml:"max_frames"`
	Limits    LimitsConfig               `toml:"limits"`
	Views     []systems.RenderViewConfig `toml:"views"`
}

func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Application: ApplicationConfig{
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1920,
			StartHeight: 1080,
			Name:        "Dolas",
			LogLevel:    "info",
		},
		AssetDir:       "assets",
		TargetFPS:      60,
		SyncInterval:   1,
		ClearColour:    [4]float32(systems.DefaultClearColour),
		MaxRecoveries:  3,
		InputQueueSize: core.DEFAULT_INPUT_QUEUE_SIZE,
	}
}

// LoadEngineConfig reads a TOML file over the defaults. Unknown keys are an
// error so typos do not pass silently.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("engine config %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("engine config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides the config with the DOLAS_* environment variables.
func (c *EngineConfig) ApplyEnv() error {
	if dir := os.Getenv(EnvAssetDir); dir != "" {
		c.AssetDir = dir
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Application.LogLevel = level
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHeadless, err)
		}
		c.Headless = headless
	}
	return nil
}

func (c *EngineConfig) Validate() error {
	if c.Application.StartWidth == 0 || c.Application.StartHeight == 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Application.StartWidth, c.Application.StartHeight)
	}
	if c.AssetDir == "" {
		return fmt.Errorf("asset_dir must be set")
	}
	if c.TargetFPS < 0 {
		return fmt.Errorf("target_fps must not be negative")
	}
	if c.MaxRecoveries < 0 {
		return fmt.Errorf("max_recoveries must not be negative")
	}
	seen := make(map[string]bool, len(c.Views))
	for i, v := range c.Views {
		if v.Name == "" || v.Camera == "" || v.Pipeline == "" || v.Resource == "" || v.Scene == "" {
			return fmt.Errorf("view %d: name, camera, pipeline, resource and scene are required", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("view %q declared twice", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

// SystemConfig turns the engine config into manager capacities.
func (c *EngineConfig) SystemConfig() *systems.SystemManagerConfig {
	sc := systems.DefaultSystemManagerConfig()
	sc.Width = c.Application.StartWidth
	sc.Height = c.Application.StartHeight
	sc.ClearColour = metadata.ClearColour(c.ClearColour)
	sc.SyncInterval = c.SyncInterval

	l := c.Limits
	setIfSet(&sc.MaxTextureCount, l.MaxTextureCount)
	setIfSet(&sc.MaxMeshCount, l.MaxMeshCount)
	setIfSet(&sc.MaxMaterialCount, l.MaxMaterialCount)
	setIfSet(&sc.MaxEntityCount, l.MaxEntityCount)
	setIfSet(&sc.MaxSceneCount, l.MaxSceneCount)
	setIfSet(&sc.MaxCameraCount, l.MaxCameraCount)
	setIfSet(&sc.MaxResourceCount, l.MaxResourceCount)
	setIfSet(&sc.MaxPipelineCount, l.MaxPipelineCount)
	setIfSet(&sc.MaxViewCount, l.MaxViewCount)
	setIfSet(&sc.PrimitiveSegments, l.PrimitiveSegments)
	return sc
}

func setIfSet[T uint16 | uint32](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// DefaultViews is used when the config declares none: one view drawing the
// default scene file through the deferred pipeline.
func DefaultViews() []systems.RenderViewConfig {
	return []systems.RenderViewConfig{{
		Name:      "main",
		Camera:    "main_camera",
		Pipeline:  "deferred",
		Resource:  "main_surfaces",
		Scene:     "main_scene",
		SceneFile: "main.scene",
	}}
}
