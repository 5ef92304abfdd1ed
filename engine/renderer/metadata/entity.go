package metadata

import "github.com/spaghettifunk/dolas/engine/core"

/**
 * @brief Entity descriptor as stored on disk. Mesh and material are
 * file names resolved by their managers.
 */
type EntityConfig struct {
	Name     string `json:"name,omitempty"`
	Mesh     string `json:"mesh"`
	Material string `json:"material"`
}

/**
 * @brief A drawable pairing of one mesh and one material. Immutable after
 * creation; mesh and material may be shared with other entities.
 */
type RenderEntity struct {
	ID         core.ID
	Name       string
	FilePath   string
	MeshID     core.ID
	MaterialID core.ID
}

func (e *RenderEntity) Clear() error {
	e.MeshID = core.EmptyID
	e.MaterialID = core.EmptyID
	return nil
}
