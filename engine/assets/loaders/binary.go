package loaders

import (
	"fmt"

	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

// BinaryLoader hands back the raw bytes.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &metadata.Resource{
		Type:     metadata.ResourceTypeBinary,
		Name:     name,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (bl *BinaryLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return fmt.Errorf("binary loader: nil resource")
	}
	res.Data = nil
	return nil
}

// TextLoader hands back the content as a string.
type TextLoader struct{}

func (tl *TextLoader) Load(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	return &metadata.Resource{
		Type:     metadata.ResourceTypeText,
		Name:     name,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (tl *TextLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}
