package destplugin

import (
	"fmt"
	"plugin"
)

// pluginLoader resolves the four required exports from a Go plugin built
// with -buildmode=plugin, following the exact export names from section
// 6.2. This is the real dynamic-load boundary; stdlib's plugin package only
// supports linux (and a couple of other ELF platforms CGO_ENABLED builds
// of Go don't reliably ship for this module), so it is isolated behind a
// build tag the same way the teacher isolates journald support.
type pluginLoader struct{}

// NewLoader returns the platform's real module loader.
func NewLoader() Loader { return pluginLoader{} }

func (pluginLoader) Open(path string) (ABI, func() error, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, nil, err
	}

	query, err := p.Lookup("SirPluginQuery")
	if err != nil {
		return nil, nil, fmt.Errorf("missing export SirPluginQuery: %w", err)
	}
	initFn, err := p.Lookup("SirPluginInit")
	if err != nil {
		return nil, nil, fmt.Errorf("missing export SirPluginInit: %w", err)
	}
	write, err := p.Lookup("SirPluginWrite")
	if err != nil {
		return nil, nil, fmt.Errorf("missing export SirPluginWrite: %w", err)
	}
	cleanup, err := p.Lookup("SirPluginCleanup")
	if err != nil {
		return nil, nil, fmt.Errorf("missing export SirPluginCleanup: %w", err)
	}

	queryFn, ok := query.(func(*Info) bool)
	if !ok {
		return nil, nil, fmt.Errorf("SirPluginQuery has the wrong signature")
	}
	initFunc, ok := initFn.(func() bool)
	if !ok {
		return nil, nil, fmt.Errorf("SirPluginInit has the wrong signature")
	}
	writeFn, ok := write.(func(uint32, string) bool)
	if !ok {
		return nil, nil, fmt.Errorf("SirPluginWrite has the wrong signature")
	}
	cleanupFn, ok := cleanup.(func() bool)
	if !ok {
		return nil, nil, fmt.Errorf("SirPluginCleanup has the wrong signature")
	}

	abi := &exportsABI{query: queryFn, init: initFunc, write: writeFn, cleanup: cleanupFn}
	// Go's plugin package never unmaps a loaded module; there is no
	// munmap-equivalent exposed. unload is a no-op that exists purely so
	// the Record/Cache lifecycle matches the spec's "unmap the module" step.
	return abi, func() error { return nil }, nil
}

type exportsABI struct {
	query   func(*Info) bool
	init    func() bool
	write   func(uint32, string) bool
	cleanup func() bool
}

func (e *exportsABI) Query(info *Info) bool            { return e.query(info) }
func (e *exportsABI) Init() bool                        { return e.init() }
func (e *exportsABI) Write(level uint32, s string) bool { return e.write(level, s) }
func (e *exportsABI) Cleanup() bool                     { return e.cleanup() }
