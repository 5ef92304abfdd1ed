package assets

import "github.com/spaghettifunk/dolas/engine/renderer/metadata"

// Loader turns the raw bytes of one asset into a Resource. `interface{}`
// params let each loader take its own options.
type Loader interface {
	Load(name string, data []byte, params interface{}) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
