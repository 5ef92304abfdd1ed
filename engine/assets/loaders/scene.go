package loaders

import (
	"bytes"
	"fmt"

	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
	"gopkg.in/yaml.v3"
)

// SceneLoader reads YAML scene descriptors.
type SceneLoader struct{}

func (sl *SceneLoader) Load(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	cfg := &metadata.SceneConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrInvalidDescriptor, name, err)
	}
	for i, item := range cfg.Entities {
		if item.Entity == "" {
			return nil, fmt.Errorf("%w: %s: entry %d has no entity", core.ErrInvalidDescriptor, name, i)
		}
		for field, v := range map[string][]float32{"position": item.Position, "rotation": item.Rotation, "scale": item.Scale} {
			if len(v) != 0 && len(v) != 3 {
				return nil, fmt.Errorf("%w: %s: entry %d %s needs 3 components", core.ErrInvalidDescriptor, name, i, field)
			}
		}
		switch item.Layer {
		case "", metadata.SceneLayerOpaque, metadata.SceneLayerTransparent:
		default:
			return nil, fmt.Errorf("%w: %s: entry %d has unknown layer %q", core.ErrInvalidDescriptor, name, i, item.Layer)
		}
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeScene,
		Name:     name,
		DataSize: uint64(len(data)),
		Data:     cfg,
	}, nil
}

func (sl *SceneLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}
