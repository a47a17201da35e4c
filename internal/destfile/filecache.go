// Package destfile implements the file-destination cache described in spec
// section 4.2: an ordered, bounded set of open log-file records with
// per-file level/option overrides and size-triggered rotation.
package destfile

import (
	"fmt"
	"hash/fnv"
	"os"
	"sync"
	"time"

	"github.com/quay/sir/internal/fsutil"
)

const (
	MaxFiles       = 16
	sizeCheckEvery = 10
	rotateAt       = 5 << 20 // 5 MiB
)

// Hooks lets the cache report self-diagnostics and format header lines
// without importing the root package (which imports this one), avoiding an
// import cycle while keeping the one genuine cross-cutting concern
// (diagnostics) wired through.
type Hooks struct {
	Diag         func(op string, id uint32)
	RotateFailed func(path string)
}

// Record is one open log-file entry.
type Record struct {
	Path    string
	Levels  uint32 // LevelMask, stored as the root package's underlying type
	Options uint32 // OptionMask

	id           uint32
	f            *os.File
	writesToDate int
}

// ID returns the record's stable FNV-1a identifier.
func (r *Record) ID() uint32 { return r.id }

// noCopy marks Cache as non-copyable once constructed, the same way the
// root package's mutex-guarded singletons do; go vet's copylocks check
// flags any accidental copy.
type noCopy struct{}

func (noCopy) Lock()   {}
func (noCopy) Unlock() {}

// Cache is the mutex-protected, insertion-ordered file-record set.
type Cache struct {
	noCopy
	mu      sync.Mutex
	records []*Record
	hooks   Hooks
}

// New returns an empty file cache.
func New(h Hooks) *Cache {
	return &Cache{hooks: h}
}

func fnv1a32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// HeaderLine renders the session-begin/rolled-file header text, section 6.3.
func HeaderLine(kind string, archivePath string, t time.Time) string {
	ts := t.Format("15:04:05 Mon 02 Jan 2006 (-0700)")
	if kind == "begin" {
		return fmt.Sprintf("\n----- session begin @ %s -----\n\n", ts)
	}
	return fmt.Sprintf("\n----- archived as %s due to size @ %s -----\n\n", archivePath, ts)
}

// Add opens path in append mode (creating it if absent), writes the
// session-begin header unless noHdr, and inserts a new record. It fails
// with ErrDup when path refers to the same filesystem object as an
// existing entry, and ErrFull at MaxFiles.
func (c *Cache) Add(path string, levels, options uint32, noHdr bool) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.records {
		if fsutil.SameFile(r.Path, path) {
			return 0, ErrDup
		}
	}
	if len(c.records) >= MaxFiles {
		return 0, ErrFull
	}

	f, err := fsutil.OpenAppend(path)
	if err != nil {
		return 0, err
	}
	if !noHdr {
		_, _ = f.WriteString(HeaderLine("begin", "", time.Now()))
	}

	id := fnv1a32(path)
	r := &Record{Path: path, Levels: levels, Options: options, id: id, f: f}
	c.records = append(c.records, r)
	return id, nil
}

// find returns the record with the given id, or nil.
func (c *Cache) find(id uint32) *Record {
	for _, r := range c.records {
		if r.id == id {
			return r
		}
	}
	return nil
}

// SetLevels updates the stored level mask for id.
func (c *Cache) SetLevels(id uint32, levels uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.find(id)
	if r == nil {
		return ErrNoItem
	}
	if r.Levels == levels {
		if c.hooks.Diag != nil {
			c.hooks.Diag("file_levels", id)
		}
		return nil
	}
	r.Levels = levels
	return nil
}

// SetOptions updates the stored option mask for id.
func (c *Cache) SetOptions(id uint32, options uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.find(id)
	if r == nil {
		return ErrNoItem
	}
	if r.Options == options {
		if c.hooks.Diag != nil {
			c.hooks.Diag("file_options", id)
		}
		return nil
	}
	r.Options = options
	return nil
}

// Remove flushes, closes, and removes the record with id, shifting
// remaining entries left to preserve insertion order.
func (c *Cache) Remove(id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.records {
		if r.id == id {
			_ = r.f.Sync()
			_ = r.f.Close()
			c.records = append(c.records[:i], c.records[i+1:]...)
			return nil
		}
	}
	return ErrNoItem
}

// CloseAll flushes and closes every record, leaving the cache empty.
func (c *Cache) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		_ = r.f.Sync()
		_ = r.f.Close()
	}
	c.records = nil
}

// Dispatch writes to every record whose Levels contains level, formatting
// each one with its own stored Options (render is called once per distinct
// options value the caller has already memoized against), skipping
// destinations (never removing records) on write failure, and rotating a
// record whose size check trips, per section 4.2.
func (c *Cache) Dispatch(level uint32, render func(options uint32) []byte, noHdr func(options uint32) bool) (wrote, wanted int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.Levels&level == 0 {
			continue
		}
		wanted++
		if _, err := r.f.Write(render(r.Options)); err != nil {
			continue
		}
		wrote++
		r.writesToDate++
		if r.writesToDate >= sizeCheckEvery {
			r.writesToDate = 0
			c.maybeRotate(r, noHdr(r.Options))
		}
	}
	return wrote, wanted
}

// maybeRotate checks the file's current size and rotates it if writing
// another buffer's worth would reach the threshold.
func (c *Cache) maybeRotate(r *Record, noHdr bool) {
	sz, err := fsutil.Size(r.Path)
	if err != nil {
		return
	}
	const bufsiz = 8192
	if sz+bufsiz < rotateAt {
		return
	}
	c.rotate(r, noHdr)
}

func (c *Cache) rotate(r *Record, noHdr bool) {
	now := time.Now()
	archive, ok := fsutil.FirstFreeArchiveName(r.Path, now)
	if !ok {
		if c.hooks.RotateFailed != nil {
			c.hooks.RotateFailed(r.Path)
		}
		return
	}
	_ = r.f.Close()
	if err := fsutil.Rename(r.Path, archive); err != nil {
		// Reopen the original; rotation failed but the cache entry stays.
		if f, oerr := fsutil.OpenAppend(r.Path); oerr == nil {
			r.f = f
		}
		if c.hooks.RotateFailed != nil {
			c.hooks.RotateFailed(r.Path)
		}
		return
	}
	f, err := fsutil.OpenAppend(r.Path)
	if err != nil {
		if c.hooks.RotateFailed != nil {
			c.hooks.RotateFailed(r.Path)
		}
		return
	}
	r.f = f
	if !noHdr {
		_, _ = f.WriteString(HeaderLine("rolled", archive, now))
	}
}

// Snapshot returns a shallow copy of the current records, for tests that
// want to assert on cache contents without reaching into private state.
func (c *Cache) Snapshot() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = *r
	}
	return out
}
