package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pierrec/lz4/v4"
	"github.com/spaghettifunk/dolas/engine/assets/loaders"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

// CompressedExt marks an lz4 frame that is inflated on read.
const CompressedExt = ".lz4"

const changeQueueSize = 64

// Directories under the asset root, one per resource type.
var typeDirectories = map[metadata.ResourceType]string{
	metadata.ResourceTypeText:     "text",
	metadata.ResourceTypeBinary:   "binary",
	metadata.ResourceTypeImage:    "textures",
	metadata.ResourceTypeMaterial: "materials",
	metadata.ResourceTypeMesh:     "meshes",
	metadata.ResourceTypeEntity:   "entities",
	metadata.ResourceTypeScene:    "scenes",
	metadata.ResourceTypeCamera:   "cameras",
}

type AssetInfo struct {
	Path       string
	Name       string
	Type       metadata.ResourceType
	Compressed bool
	Size       int64
	LastLoaded time.Time
}

type ChangeKind int

const (
	AssetCreated ChangeKind = iota
	AssetModified
	AssetRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case AssetCreated:
		return "created"
	case AssetModified:
		return "modified"
	case AssetRemoved:
		return "removed"
	}
	return "unknown"
}

// AssetChange reports a file event under the asset root. Loaded resources
// are never reloaded; the feed is informational.
type AssetChange struct {
	Kind ChangeKind
	Path string
	Type metadata.ResourceType
}

type AssetManagerConfig struct {
	/** @brief The directory holding one sub directory per resource type. */
	Root string
	/** @brief Watch the root for changes with fsnotify. */
	Watch bool
}

type AssetManager struct {
	Config *AssetManagerConfig

	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex
	wg    sync.WaitGroup

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan AssetChange
}

func NewAssetManager(config *AssetManagerConfig) (*AssetManager, error) {
	if config == nil || config.Root == "" {
		err := fmt.Errorf("func NewAssetManager - config.Root must be set")
		core.LogError(err.Error())
		return nil, err
	}
	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		Config:  &AssetManagerConfig{Root: root, Watch: config.Watch},
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		changes: make(chan AssetChange, changeQueueSize),
		done:    make(chan struct{}),
	}
	if config.Watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		am.fsnotify = fsWatch
	}
	return am, nil
}

func (am *AssetManager) Initialize() error {
	am.registerLoader(metadata.ResourceTypeText, &loaders.TextLoader{})
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})
	am.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})
	am.registerLoader(metadata.ResourceTypeMesh, &loaders.MeshLoader{})
	am.registerLoader(metadata.ResourceTypeEntity, &loaders.EntityLoader{})
	am.registerLoader(metadata.ResourceTypeScene, &loaders.SceneLoader{})
	am.registerLoader(metadata.ResourceTypeCamera, &loaders.CameraLoader{})

	if _, err := os.Stat(am.Config.Root); err != nil {
		core.LogWarn("asset root %s is not readable: %s", am.Config.Root, err)
		return nil
	}
	if err := am.watchRecursive(am.Config.Root, false); err != nil {
		return err
	}
	if am.fsnotify != nil {
		am.wg.Add(1)
		go am.start()
	}
	core.LogDebug("asset manager indexed %d files under %s", am.Len(), am.Config.Root)
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	if am.fsnotify != nil {
		return am.fsnotify.Close()
	}
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Resolve maps a name to the file that holds it, falling back to the lz4
// compressed variant. Names must stay inside their type directory.
func (am *AssetManager) Resolve(name string, resourceType metadata.ResourceType) (string, bool, error) {
	dir, ok := typeDirectories[resourceType]
	if !ok {
		return "", false, fmt.Errorf("%w: unknown resource type %d", core.ErrNotFound, resourceType)
	}
	if name == "" {
		return "", false, fmt.Errorf("%w: empty %s name", core.ErrNotFound, resourceType)
	}
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", false, fmt.Errorf("%w: %s name %q leaves the asset tree", core.ErrInvalidDescriptor, resourceType, name)
	}
	path := filepath.Join(am.Config.Root, dir, filepath.FromSlash(name))
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return path, strings.HasSuffix(path, CompressedExt), nil
	}
	if fi, err := os.Stat(path + CompressedExt); err == nil && !fi.IsDir() {
		return path + CompressedExt, true, nil
	}
	return "", false, fmt.Errorf("%w: %s %s", core.ErrNotFound, resourceType, name)
}

// ReadFile returns the content of path, inflating lz4 frames.
func (am *AssetManager) ReadFile(path string, compressed bool) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrLoadFailed, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		r = lz4.NewReader(f)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrLoadFailed, path, err)
	}
	return data, nil
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path, compressed, err := am.Resolve(name, resourceType)
	if err != nil {
		return nil, err
	}

	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("%w: no loader registered for asset type %s", core.ErrLoadFailed, resourceType)
	}

	data, err := am.ReadFile(path, compressed)
	if err != nil {
		return nil, err
	}

	res, err := loader.Load(name, data, params)
	if err != nil {
		if !errors.Is(err, core.ErrLoadFailed) && !errors.Is(err, core.ErrInvalidDescriptor) {
			err = fmt.Errorf("%w: %w", core.ErrLoadFailed, err)
		}
		return nil, err
	}
	res.FullPath = path

	am.mutex.Lock()
	info, ok := am.assets[path]
	if !ok {
		info = am.describe(path, int64(len(data)))
	}
	info.LastLoaded = time.Now()
	am.assets[path] = info
	am.mutex.Unlock()

	return res, nil
}

func (am *AssetManager) UnloadAsset(res *metadata.Resource) error {
	if res == nil {
		return nil
	}
	loader, ok := am.loaders[res.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type %s", res.Type)
	}
	return loader.Unload(res)
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// List returns the indexed files of one type sorted by name.
func (am *AssetManager) List(resourceType metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	out := make([]AssetInfo, 0)
	for _, info := range am.assets {
		if info.Type == resourceType {
			out = append(out, info)
		}
	}
	am.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Changes is the feed of file events seen by the watcher. Events are
// dropped while the feed is full.
func (am *AssetManager) Changes() <-chan AssetChange {
	return am.changes
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, true); err != nil {
						core.LogWarn("failed to watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			switch {
			case e.Op&fsnotify.Create != 0:
				am.handleFileEvent(e.Name, AssetCreated)
			case e.Op&fsnotify.Write != 0:
				am.handleFileEvent(e.Name, AssetModified)
			case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// a deleted path cannot be stat'ed, so it may have been a directory
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

// watchRecursive indexes every file under path and, when watching, adds
// each directory to the watch list. Files found in a directory created
// after startup are announced on the change feed.
func (am *AssetManager) watchRecursive(path string, announce bool) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if am.fsnotify == nil {
				return nil
			}
			return am.fsnotify.Add(walkPath)
		}
		if info, ok := am.indexFile(walkPath); ok && announce {
			am.notify(AssetChange{Kind: AssetCreated, Path: walkPath, Type: info.Type})
		}
		return nil
	})
}

func (am *AssetManager) indexFile(path string) (AssetInfo, bool) {
	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}
	info := am.describe(path, size)
	if info.Name == "" {
		return info, false
	}
	am.mutex.Lock()
	if old, ok := am.assets[path]; ok {
		info.LastLoaded = old.LastLoaded
	}
	am.assets[path] = info
	am.mutex.Unlock()
	return info, true
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string, kind ChangeKind) {
	info, ok := am.indexFile(path)
	if !ok {
		return
	}
	if kind == AssetModified && !info.LastLoaded.IsZero() {
		core.LogInfo("asset %s changed on disk; restart to pick it up", info.Name)
	}
	am.notify(AssetChange{Kind: kind, Path: path, Type: info.Type})
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	info, ok := am.assets[path]
	delete(am.assets, path)
	am.mutex.Unlock()
	if ok {
		am.notify(AssetChange{Kind: AssetRemoved, Path: path, Type: info.Type})
	}
}

func (am *AssetManager) notify(change AssetChange) {
	select {
	case am.changes <- change:
	default:
	}
}

// describe derives the type and logical name of a file from its place
// under the root. Files outside a type directory get an empty name.
func (am *AssetManager) describe(path string, size int64) AssetInfo {
	info := AssetInfo{Path: path, Size: size}
	rel, err := filepath.Rel(am.Config.Root, path)
	if err != nil {
		return info
	}
	parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
	if len(parts) != 2 {
		return info
	}
	t, ok := determineAssetType(parts[0])
	if !ok {
		return info
	}
	info.Type = t
	info.Name = parts[1]
	if strings.HasSuffix(info.Name, CompressedExt) {
		info.Compressed = true
		info.Name = strings.TrimSuffix(info.Name, CompressedExt)
	}
	return info
}

func determineAssetType(dir string) (metadata.ResourceType, bool) {
	for t, d := range typeDirectories {
		if d == dir {
			return t, true
		}
	}
	return 0, false
}
