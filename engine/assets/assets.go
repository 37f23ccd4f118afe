package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/tinyfx/engine/assets/loaders"
	"github.com/spaghettifunk/tinyfx/engine/core"
)

var ErrClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path         string
	Type         ResourceType
	LastModified time.Time
}

/** @brief Configuration for the asset manager. */
type AssetManagerConfig struct {
	/** @brief Directory watched recursively. */
	Root string
	/** @brief Quiet period a file must see before its change is reported. */
	Debounce time.Duration
	/** @brief Workers decoding assets for LoadAsync. */
	Workers int
	/** @brief Capacity of the job queue. */
	QueueSize int
}

/**
 * @brief AssetManager indexes every asset under a root directory and
 * watches it. Changes are collected by the watcher goroutine and handed out
 * by Changed; nothing reaches the render context from that goroutine.
 */
type AssetManager struct {
	config *AssetManagerConfig

	assets  map[string]AssetInfo
	loaders map[ResourceType]Loader
	// path -> time of the last event, pending until quiet for config.Debounce
	changed map[string]time.Time

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool

	jobs *JobSystem
	// replaced in tests
	now func() time.Time
}

func NewAssetManager(config *AssetManagerConfig) (*AssetManager, error) {
	if config.Root == "" {
		err := fmt.Errorf("func NewAssetManager - config.Root is empty: %w", core.ErrConfigInvalid)
		core.LogError(err.Error())
		return nil, err
	}
	if config.Workers == 0 {
		config.Workers = 1
	}
	jobs, err := NewJobSystem(config.Workers, config.QueueSize)
	if err != nil {
		err = fmt.Errorf("func NewAssetManager - %w: %w", core.ErrConfigInvalid, err)
		core.LogError(err.Error())
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		jobs.Shutdown()
		return nil, err
	}

	return &AssetManager{
		config:   config,
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[ResourceType]Loader),
		changed:  make(map[string]time.Time),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		jobs:     jobs,
		now:      time.Now,
	}, nil
}

// Initialize indexes the root, registers the loaders and starts watching.
func (am *AssetManager) Initialize() error {
	if err := am.addRecursive(am.config.Root); err != nil {
		return fmt.Errorf("func Initialize - watching %s: %w", am.config.Root, err)
	}

	am.registerLoader(ResourceTypeShader, &shaderLoader{})
	am.registerLoader(ResourceTypeImage, &imageLoader{})

	am.started = true
	go am.start()
	core.LogInfo("watching %d assets under %s", am.Count(), am.config.Root)
	return nil
}

// addRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return ErrClosed
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Count returns the number of indexed assets.
func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Assets lists the indexed assets of a type, sorted by path.
func (am *AssetManager) Assets(assetType ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []AssetInfo
	for _, a := range am.assets {
		if a.Type == assetType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Load an asset using the appropriate loader
func (am *AssetManager) Load(path string, params interface{}) (*Resource, error) {
	path = filepath.Clean(path)
	assetType := DetermineAssetType(path)
	loader, loaderExists := am.loaders[assetType]
	if !loaderExists {
		return nil, fmt.Errorf("func Load - no loader registered for %s (%s)", path, assetType)
	}
	res, err := loader.Load(path, params)
	if err != nil {
		return nil, err
	}
	res.Type = assetType
	return res, nil
}

/**
 * @brief LoadAsync loads an asset on the job system. The callbacks run from
 * Update.
 */
func (am *AssetManager) LoadAsync(path string, params interface{}, onLoaded func(*Resource), onFailed func(error)) {
	job := Job{
		Run: func() (interface{}, error) {
			return am.Load(path, params)
		},
		OnFailure: onFailed,
	}
	if onLoaded != nil {
		job.OnComplete = func(v interface{}) { onLoaded(v.(*Resource)) }
	}
	am.jobs.Submit(job)
}

// Update runs the callbacks of finished asynchronous loads.
func (am *AssetManager) Update() int {
	return am.jobs.Update()
}

/**
 * @brief Changed returns, sorted, the paths whose last change is at least
 * config.Debounce old, and forgets them. Bursts of writes to one file are
 * reported once.
 */
func (am *AssetManager) Changed() []string {
	now := am.now()
	am.mutex.Lock()
	defer am.mutex.Unlock()

	var out []string
	for path, at := range am.changed {
		if now.Sub(at) < am.config.Debounce {
			continue
		}
		out = append(out, path)
		delete(am.changed, path)
	}
	sort.Strings(out)
	return out
}

// Close stops the watcher and the job system.
func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	if am.started {
		<-am.stopped
	} else {
		am.fsnotify.Close()
	}
	return am.jobs.Shutdown()
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	name := filepath.Clean(e.Name)
	s, err := os.Stat(name)
	if err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.watchRecursive(name); err != nil {
				core.LogWarn("unable to watch %s: %s", name, err)
			}
		}
		return
	}
	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		am.handleFileEvent(name, true)
	}
	// Can't stat a deleted directory, so removing it from the watch list may fail harmlessly.
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		am.removeAsset(name)
		_ = am.fsnotify.Remove(name)
	}
}

// watchRecursive adds all directories under the given one to the watch list.
// Files found on the way are indexed without being reported as changed.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(filepath.Clean(walkPath), false)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string, modified bool) {
	assetType := DetermineAssetType(path)
	if assetType == ResourceTypeNone {
		return
	}
	now := am.now()

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:         path,
		Type:         assetType,
		LastModified: now,
	}
	if modified {
		am.changed[path] = now
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
	delete(am.changed, path)
}

type shaderLoader struct{}

func (sl *shaderLoader) Load(path string, params interface{}) (*Resource, error) {
	src, err := loaders.LoadShaderSource(path)
	if err != nil {
		return nil, err
	}
	return &Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(src)),
		Data:     src,
	}, nil
}

func (sl *shaderLoader) Unload(*Resource) error {
	return nil
}

type imageLoader struct{}

func (il *imageLoader) Load(path string, params interface{}) (*Resource, error) {
	p, _ := params.(*loaders.ImageParams)
	img, err := loaders.LoadImage(path, p)
	if err != nil {
		return nil, err
	}
	return &Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(img.Pixels)),
		Data:     img,
	}, nil
}

func (il *imageLoader) Unload(res *Resource) error {
	res.Data = nil
	return nil
}
