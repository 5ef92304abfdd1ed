package metadata

import (
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/math"
)

/** @brief The pass family a scene item is drawn in. */
type SceneLayer string

const (
	SceneLayerOpaque      SceneLayer = "opaque"
	SceneLayerTransparent SceneLayer = "transparent"
)

/** @brief One placed entity in a scene file. */
type SceneItemConfig struct {
	Entity   string     `yaml:"entity"`
	Position []float32  `yaml:"position,omitempty"`
	Rotation []float32  `yaml:"rotation,omitempty"`
	Scale    []float32  `yaml:"scale,omitempty"`
	Layer    SceneLayer `yaml:"layer,omitempty"`
}

/** @brief Scene descriptor as stored on disk. */
type SceneConfig struct {
	Name     string            `yaml:"name"`
	Entities []SceneItemConfig `yaml:"entities"`
}

/** @brief A placed instance of a render entity. */
type SceneItem struct {
	EntityID  core.ID
	Transform *math.Transform
	Layer     SceneLayer
}

/**
 * @brief The set of entities a view draws. Items keep insertion order so
 * frames are deterministic.
 */
type RenderScene struct {
	ID    core.ID
	Name  string
	items []SceneItem
}

func NewRenderScene(id core.ID, name string) *RenderScene {
	return &RenderScene{ID: id, Name: name}
}

func (s *RenderScene) Add(item SceneItem) {
	if item.Layer == "" {
		item.Layer = SceneLayerOpaque
	}
	if item.Transform == nil {
		item.Transform = math.TransformCreate()
	}
	s.items = append(s.items, item)
}

func (s *RenderScene) Items() []SceneItem {
	out := make([]SceneItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *RenderScene) Len() int {
	return len(s.items)
}

func (s *RenderScene) layer(l SceneLayer) []SceneItem {
	var out []SceneItem
	for _, it := range s.items {
		if it.Layer == l {
			out = append(out, it)
		}
	}
	return out
}

func (s *RenderScene) Opaque() []SceneItem {
	return s.layer(SceneLayerOpaque)
}

func (s *RenderScene) Transparent() []SceneItem {
	return s.layer(SceneLayerTransparent)
}

func (s *RenderScene) Clear() error {
	s.items = nil
	return nil
}
