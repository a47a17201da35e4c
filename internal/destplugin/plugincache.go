// Package destplugin implements the plugin cache of spec section 4.3: a
// versioned, validated load/probe/init/write/unload lifecycle over
// dynamically loaded modules exposing a fixed four-function ABI.
package destplugin

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
)

const (
	MaxPlugins     = 16
	CurrentVersion = 1
)

var (
	ErrDup        = errors.New("destplugin: duplicate plugin")
	ErrFull       = errors.New("destplugin: cache full")
	ErrNoItem     = errors.New("destplugin: no such plugin")
	ErrBad        = errors.New("destplugin: missing or malformed export")
	ErrQuery      = errors.New("destplugin: query() returned false")
	ErrVersion    = errors.New("destplugin: unsupported interface version")
	ErrData       = errors.New("destplugin: invalid info fields")
	ErrInitFailed = errors.New("destplugin: init() returned false")
)

// Info is populated by a plugin's Query method, mirroring the sir_plugin_query
// out-parameter in section 6.2.
type Info struct {
	InterfaceVersion int
	Major, Minor, Build int
	Levels           uint32
	Options          uint32
	Author           string
	Description      string
	Capabilities     uint64
}

// ABI is the four-function plugin interface resolved from a loaded module,
// per section 6.2. Modeling it as an interface (rather than raw function
// pointers) is the Go-idiomatic equivalent the spec's design notes invite
// ("Model the resolved exports as a fixed struct of function pointers");
// here the struct is implicit in the interface's method set.
type ABI interface {
	Query(info *Info) bool
	Init() bool
	Write(level uint32, formatted string) bool
	Cleanup() bool
}

// Loader opens a module at path and resolves it to an ABI implementation.
// It is a seam: tests substitute a fake in-process Loader instead of
// requiring an actual compiled .so, the same way the teacher substitutes an
// in-memory journald emulator for its journal_test.go instead of a live
// systemd-journald socket.
type Loader interface {
	Open(path string) (ABI, func() error, error)
}

// Record is one loaded plugin entry.
type Record struct {
	Path   string
	Info   Info
	id     uint32
	abi    ABI
	unload func() error
}

func (r *Record) ID() uint32 { return r.id }

// Hooks mirrors destfile's Hooks: a seam for diagnostics without an import
// cycle back to the root package.
type Hooks struct {
	CleanupFailed func(path string, id uint32)
}

// noCopy marks Cache as non-copyable once constructed, the same way the
// root package's mutex-guarded singletons do; go vet's copylocks check
// flags any accidental copy.
type noCopy struct{}

func (noCopy) Lock()   {}
func (noCopy) Unlock() {}

// Cache is the mutex-protected, insertion-ordered plugin-record set.
type Cache struct {
	noCopy
	mu      sync.Mutex
	records []*Record
	loader  Loader
	hooks   Hooks
}

// New returns an empty plugin cache backed by loader.
func New(loader Loader, h Hooks) *Cache {
	return &Cache{loader: loader, hooks: h}
}

// Load runs the full protocol of section 4.3: map, resolve, query, validate
// version/fields, init, compute identifier, insert.
func (c *Cache) Load(path string) (uint32, error) {
	abi, unload, err := c.loader.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBad, err)
	}

	var info Info
	if !abi.Query(&info) {
		if unload != nil {
			_ = unload()
		}
		return 0, ErrQuery
	}
	if info.InterfaceVersion < 1 || info.InterfaceVersion > CurrentVersion {
		if unload != nil {
			_ = unload()
		}
		return 0, ErrVersion
	}
	if !validInfo(info) {
		if unload != nil {
			_ = unload()
		}
		return 0, ErrData
	}
	if !abi.Init() {
		if unload != nil {
			_ = unload()
		}
		return 0, ErrInitFailed
	}

	id := fnv1a32(path, info)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.id == id {
			if unload != nil {
				_ = unload()
			}
			return 0, ErrDup
		}
	}
	if len(c.records) >= MaxPlugins {
		if unload != nil {
			_ = unload()
		}
		return 0, ErrFull
	}

	c.records = append(c.records, &Record{Path: path, Info: info, id: id, abi: abi, unload: unload})
	return id, nil
}

func validInfo(info Info) bool {
	if info.Author == "" || info.Description == "" {
		return false
	}
	// Levels may use only the eight level bits and Options only the eight
	// option bits; anything above 0xff in either mask is rejected.
	if info.Levels&^0xff != 0 || info.Options&^0xff != 0 {
		return false
	}
	return true
}

// fnv1a32 hashes the resolved export table's identity: the plugin's path
// plus its declared version triplet, which is stable for the lifetime of a
// given load and distinguishes two different builds of the same path
// (spec: "detecting duplicate loads of the same module").
func fnv1a32(path string, info Info) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%d.%d.%d", path, info.Major, info.Minor, info.Build)
	return h.Sum32()
}

// Unload calls cleanup(), unmaps the module, and frees the record.
func (c *Cache) Unload(id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.records {
		if r.id == id {
			if !r.abi.Cleanup() && c.hooks.CleanupFailed != nil {
				c.hooks.CleanupFailed(r.Path, id)
			}
			if r.unload != nil {
				if err := r.unload(); err != nil {
					c.records = append(c.records[:i], c.records[i+1:]...)
					return fmt.Errorf("destplugin: unmap: %w", err)
				}
			}
			c.records = append(c.records[:i], c.records[i+1:]...)
			return nil
		}
	}
	return ErrNoItem
}

// UnloadAll unloads every plugin, best-effort, used by Cleanup.
func (c *Cache) UnloadAll() {
	c.mu.Lock()
	records := c.records
	c.records = nil
	c.mu.Unlock()
	for _, r := range records {
		if !r.abi.Cleanup() && c.hooks.CleanupFailed != nil {
			c.hooks.CleanupFailed(r.Path, r.id)
		}
		if r.unload != nil {
			_ = r.unload()
		}
	}
}

// Dispatch writes to every plugin whose Info.Levels contains level,
// formatting each one with its own queried Info.Options (render is called
// once per distinct options value the caller has already memoized
// against). A write failure is reported but does not unload the plugin.
func (c *Cache) Dispatch(level uint32, render func(options uint32) string) (wrote, wanted int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.Info.Levels&level == 0 {
			continue
		}
		wanted++
		if r.abi.Write(level, render(r.Info.Options)) {
			wrote++
		}
	}
	return wrote, wanted
}

// Snapshot returns a shallow copy of the current records.
func (c *Cache) Snapshot() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = *r
	}
	return out
}
