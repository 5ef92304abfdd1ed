package loaders

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureLoader decodes png, jpeg, gif, bmp, tiff and webp images into
// tightly packed RGBA8 pixels.
type TextureLoader struct{}

func (tl *TextureLoader) Load(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	p := &metadata.ImageResourceParams{}
	if typed, ok := params.(*metadata.ImageResourceParams); ok && typed != nil {
		p = typed
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", core.ErrLoadFailed, name, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s has no pixels", core.ErrLoadFailed, name)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	pixels := rgba.Pix
	if p.FlipY {
		pixels = flipRows(pixels, bounds.Dx()*4, bounds.Dy())
	}

	hasTransparency := false
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] < 255 {
			hasTransparency = true
			break
		}
	}

	core.LogDebug("decoded %s image %s (%dx%d)", format, name, bounds.Dx(), bounds.Dy())
	return &metadata.Resource{
		Type:     metadata.ResourceTypeImage,
		Name:     name,
		DataSize: uint64(len(pixels)),
		Data: &metadata.ImageResourceData{
			ChannelCount:    4,
			Width:           uint32(bounds.Dx()),
			Height:          uint32(bounds.Dy()),
			Pixels:          pixels,
			HasTransparency: hasTransparency,
		},
	}, nil
}

func flipRows(pixels []uint8, stride, rows int) []uint8 {
	out := make([]uint8, len(pixels))
	for y := 0; y < rows; y++ {
		copy(out[y*stride:(y+1)*stride], pixels[(rows-1-y)*stride:(rows-y)*stride])
	}
	return out
}

func (tl *TextureLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}
