package loaders

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/components"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

// CameraLoader reads TOML camera descriptors.
type CameraLoader struct{}

func (cl *CameraLoader) Load(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	cfg := &components.CameraConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrInvalidDescriptor, name, err)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeCamera,
		Name:     name,
		DataSize: uint64(len(data)),
		Data:     cfg,
	}, nil
}

func (cl *CameraLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}
