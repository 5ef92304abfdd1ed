package metadata

import (
	"fmt"

	"github.com/spaghettifunk/dolas/engine/core"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief Shader resource slots a material binds its textures to. */
type MaterialTextureSlot int

const (
	MaterialSlotAlbedo MaterialTextureSlot = iota
	MaterialSlotNormal
	MaterialSlotRoughness
	MaterialSlotMetallic
	MaterialSlotCount
)

// MaterialTextureSlots maps descriptor keys onto slots.
var MaterialTextureSlots = map[string]MaterialTextureSlot{
	"albedo_map":    MaterialSlotAlbedo,
	"normal_map":    MaterialSlotNormal,
	"roughness_map": MaterialSlotRoughness,
	"metallic_map":  MaterialSlotMetallic,
}

func (s MaterialTextureSlot) String() string {
	for k, v := range MaterialTextureSlots {
		if v == s {
			return k
		}
	}
	return fmt.Sprintf("slot%d", int(s))
}

/** @brief Selects the pass that draws a material. */
type ShadingMode string

const (
	ShadingDeferred ShadingMode = "deferred"
	ShadingForward  ShadingMode = "forward"
)

/**
 * @brief Material descriptor as stored on disk.
 */
type MaterialConfig struct {
	VertexShader string             `json:"vertex_shader"`
	PixelShader  string             `json:"pixel_shader"`
	Texture      map[string]string  `json:"texture,omitempty"`
	Parameter    map[string]float32 `json:"parameter,omitempty"`
	Shading      ShadingMode        `json:"shading,omitempty"`
}

/**
 * @brief A material, which names the shaders and the textures used to
 * draw a surface. Texture slots hold identifiers owned by the texture
 * manager; an empty slot draws with the default texture.
 */
type Material struct {
	ID           core.ID
	FilePath     string
	VertexShader string
	PixelShader  string
	Textures     [MaterialSlotCount]core.ID
	Parameters   map[string]float32
	Shading      ShadingMode
}

func (m *Material) IsForward() bool {
	return m.Shading == ShadingForward
}

// Clear forgets texture references. Textures are cleared by their owner.
func (m *Material) Clear() error {
	for i := range m.Textures {
		m.Textures[i] = core.EmptyID
	}
	m.Parameters = nil
	return nil
}
