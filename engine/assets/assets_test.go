package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spaghettifunk/tinyfx/engine/assets/loaders"
	"github.com/spaghettifunk/tinyfx/engine/core"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestManager(t *testing.T, root string, debounce time.Duration) *AssetManager {
	t.Helper()
	am, err := NewAssetManager(&AssetManagerConfig{Root: root, Debounce: debounce, Workers: 2, QueueSize: 4})
	if err != nil {
		t.Fatalf("NewAssetManager: %v", err)
	}
	if err := am.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { am.Close() })
	return am
}

func TestNewAssetManagerValidates(t *testing.T) {
	if _, err := NewAssetManager(&AssetManagerConfig{}); !errors.Is(err, core.ErrConfigInvalid) {
		t.Fatalf("have %v, want %v", err, core.ErrConfigInvalid)
	}
	if _, err := NewAssetManager(&AssetManagerConfig{Root: ".", Workers: -1}); !errors.Is(err, ErrNoWorkers) {
		t.Fatalf("have %v, want %v", err, ErrNoWorkers)
	}
}

func TestDetermineAssetType(t *testing.T) {
	tests := map[string]ResourceType{
		"shaders/triangle.vert": ResourceTypeShader,
		"shaders/triangle.frag": ResourceTypeShader,
		"shaders/fill.comp":     ResourceTypeShader,
		"textures/check.png":    ResourceTypeImage,
		"textures/check.tiff":   ResourceTypeImage,
		"README.md":             ResourceTypeNone,
	}
	for path, want := range tests {
		if have := DetermineAssetType(path); have != want {
			t.Fatalf("%s: have %s, want %s", path, have, want)
		}
	}
}

func TestInitializeIndexesTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.vert"), "void main() {}")
	writeFile(t, filepath.Join(root, "nested", "b.frag"), "void main() {}")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")

	am := newTestManager(t, root, 0)
	if am.Count() != 2 {
		t.Fatalf("have %d assets, want 2", am.Count())
	}
	shaders := am.Assets(ResourceTypeShader)
	if len(shaders) != 2 || shaders[0].Path != filepath.Join(root, "a.vert") {
		t.Fatalf("have %v", shaders)
	}
	// the initial scan is not a change
	if changed := am.Changed(); len(changed) != 0 {
		t.Fatalf("have changes %v", changed)
	}
}

func TestChangedIsDebounced(t *testing.T) {
	am := newTestManager(t, t.TempDir(), 100*time.Millisecond)
	now := time.Unix(1000, 0)
	am.mutex.Lock()
	am.now = func() time.Time { return now }
	am.mutex.Unlock()

	am.handleFileEvent("shaders/a.vert", true)
	am.handleFileEvent("shaders/b.frag", true)
	now = now.Add(50 * time.Millisecond)
	am.handleFileEvent("shaders/a.vert", true)

	now = now.Add(60 * time.Millisecond)
	if have := am.Changed(); !reflect.DeepEqual(have, []string{"shaders/b.frag"}) {
		t.Fatalf("have %v", have)
	}
	now = now.Add(50 * time.Millisecond)
	if have := am.Changed(); !reflect.DeepEqual(have, []string{"shaders/a.vert"}) {
		t.Fatalf("have %v", have)
	}
	if have := am.Changed(); len(have) != 0 {
		t.Fatalf("changes reported twice: %v", have)
	}

	am.handleFileEvent("shaders/c.vert", true)
	am.removeAsset("shaders/c.vert")
	now = now.Add(time.Second)
	if have := am.Changed(); len(have) != 0 {
		t.Fatalf("removed asset still reported: %v", have)
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "triangle.frag")
	writeFile(t, path, "void main() {}")
	am := newTestManager(t, root, 0)

	writeFile(t, path, "void main() { discard; }")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if changed := am.Changed(); len(changed) > 0 {
			if changed[0] != path {
				t.Fatalf("have %v, want %s", changed, path)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no change reported for %s", path)
}

func TestLoadShader(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "triangle.vert")
	writeFile(t, path, "\xEF\xBB\xBFvoid main() {}\r\n")
	am := newTestManager(t, root, 0)

	res, err := am.Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Type != ResourceTypeShader || res.Data.(string) != "void main() {}\n" {
		t.Fatalf("have %+v", res)
	}
	if _, err := am.Load(filepath.Join(root, "notes.txt"), nil); err == nil {
		t.Fatalf("loaded a file without a loader")
	}
}

func TestLoadAsyncRunsCallbacksOnUpdate(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "check.png")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 0, 255, 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()
	am := newTestManager(t, root, 0)

	var loaded atomic.Pointer[Resource]
	var failed atomic.Bool
	am.LoadAsync(path, &loaders.ImageParams{}, func(r *Resource) { loaded.Store(r) }, nil)
	am.LoadAsync(filepath.Join(root, "missing.png"), nil, nil, func(error) { failed.Store(true) })

	ran := 0
	deadline := time.Now().Add(5 * time.Second)
	for ran < 2 && time.Now().Before(deadline) {
		ran += am.Update()
		time.Sleep(time.Millisecond)
	}
	if ran != 2 {
		t.Fatalf("have %d callbacks, want 2", ran)
	}
	res := loaded.Load()
	if res == nil || !failed.Load() {
		t.Fatalf("callbacks did not run: %v %v", res, failed.Load())
	}
	data := res.Data.(*loaders.ImageData)
	want := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	if data.Width != 2 || data.Height != 1 || !reflect.DeepEqual(data.Pixels, want) {
		t.Fatalf("have %+v", data)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	am, err := NewAssetManager(&AssetManagerConfig{Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	// never initialized
	if err := am.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := am.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := am.addRecursive("."); !errors.Is(err, ErrClosed) {
		t.Fatalf("have %v, want %v", err, ErrClosed)
	}
}
