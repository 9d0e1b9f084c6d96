package hints

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"rtlpatch/internal/source"
)

// Current schema version - increment when diskPayload format changes
const cacheSchemaVersion uint16 = 1

// DiskCache persists extracted hints keyed by the reference file's content
// hash, so large reference sources are only re-scanned when they change.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type diskPayload struct {
	Schema uint16
	Hints  Hints
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог "hints" для удобства очистки
	return filepath.Join(c.dir, "hints", hexKey+".mp")
}

// Put serializes and writes extracted hints to the disk cache.
func (c *DiskCache) Put(key [32]byte, h *Hints) error {
	if c == nil || h == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&diskPayload{Schema: cacheSchemaVersion, Hints: *h}); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads cached hints for the given content hash. The boolean reports a
// hit; schema mismatches count as misses.
func (c *DiskCache) Get(key [32]byte) (*Hints, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	var payload diskPayload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &payload.Hints, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// LoadCached loads a reference file, consulting the cache by content hash
// before re-extracting. A nil cache degrades to a plain extraction.
func LoadCached(path string, cache *DiskCache) (*Hints, error) {
	f, err := source.Load(path)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if h, ok, err := cache.Get(f.Hash); err == nil && ok {
			return h, nil
		}
	}

	h := Extract(f)
	if cache != nil {
		// кэш вторичен: ошибку записи игнорируем
		_ = cache.Put(f.Hash, h)
	}
	return h, nil
}
