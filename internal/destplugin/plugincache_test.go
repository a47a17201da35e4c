package destplugin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeABI and fakeLoader stand in for a compiled .so the same way the
// teacher's journal_test.go emulator stands in for a live journald socket:
// the real dynamic-load boundary (loader_linux.go) is never exercised in
// tests, only this substitutable seam.
type fakeABI struct {
	info       Info
	queryOK    bool
	initOK     bool
	cleanupOK  bool
	writes     []string
	writeOK    bool
}

func (f *fakeABI) Query(info *Info) bool {
	*info = f.info
	return f.queryOK
}
func (f *fakeABI) Init() bool { return f.initOK }
func (f *fakeABI) Write(level uint32, formatted string) bool {
	f.writes = append(f.writes, formatted)
	return f.writeOK
}
func (f *fakeABI) Cleanup() bool { return f.cleanupOK }

type fakeLoader struct {
	abis     map[string]*fakeABI
	unloaded []string
}

func (l *fakeLoader) Open(path string) (ABI, func() error, error) {
	a, ok := l.abis[path]
	if !ok {
		return nil, nil, errNotFound
	}
	return a, func() error {
		l.unloaded = append(l.unloaded, path)
		return nil
	}, nil
}

func validInfoFixture() Info {
	return Info{InterfaceVersion: 1, Major: 1, Author: "a", Description: "d", Levels: 0xff}
}

func TestLoadSucceeds(t *testing.T) {
	loader := &fakeLoader{abis: map[string]*fakeABI{
		"good.so": {info: validInfoFixture(), queryOK: true, initOK: true, cleanupOK: true, writeOK: true},
	}}
	c := New(loader, Hooks{})

	id, err := c.Load("good.so")
	require.NoError(t, err)
	require.NotZero(t, id)
	require.Len(t, c.Snapshot(), 1)
}

func TestLoadRejectsBadVersion(t *testing.T) {
	info := validInfoFixture()
	info.InterfaceVersion = 99
	loader := &fakeLoader{abis: map[string]*fakeABI{
		"bad.so": {info: info, queryOK: true, initOK: true},
	}}
	c := New(loader, Hooks{})

	_, err := c.Load("bad.so")
	require.ErrorIs(t, err, ErrVersion)
}

func TestLoadRejectsMissingMetadata(t *testing.T) {
	info := validInfoFixture()
	info.Author = ""
	loader := &fakeLoader{abis: map[string]*fakeABI{
		"bad.so": {info: info, queryOK: true, initOK: true},
	}}
	c := New(loader, Hooks{})

	_, err := c.Load("bad.so")
	require.ErrorIs(t, err, ErrData)
}

func TestLoadRejectsFailedQueryOrInit(t *testing.T) {
	loader := &fakeLoader{abis: map[string]*fakeABI{
		"query-fails.so": {info: validInfoFixture(), queryOK: false},
		"init-fails.so":  {info: validInfoFixture(), queryOK: true, initOK: false},
	}}
	c := New(loader, Hooks{})

	_, err := c.Load("query-fails.so")
	require.ErrorIs(t, err, ErrQuery)

	_, err = c.Load("init-fails.so")
	require.ErrorIs(t, err, ErrInitFailed)
}

func TestLoadDuplicateRejected(t *testing.T) {
	loader := &fakeLoader{abis: map[string]*fakeABI{
		"good.so": {info: validInfoFixture(), queryOK: true, initOK: true},
	}}
	c := New(loader, Hooks{})

	_, err := c.Load("good.so")
	require.NoError(t, err)
	_, err = c.Load("good.so")
	require.ErrorIs(t, err, ErrDup)
}

func TestUnloadCallsCleanupAndUnmaps(t *testing.T) {
	abi := &fakeABI{info: validInfoFixture(), queryOK: true, initOK: true, cleanupOK: true}
	loader := &fakeLoader{abis: map[string]*fakeABI{"p.so": abi}}
	c := New(loader, Hooks{})

	id, err := c.Load("p.so")
	require.NoError(t, err)
	require.NoError(t, c.Unload(id))
	require.Contains(t, loader.unloaded, "p.so")
	require.Empty(t, c.Snapshot())
}

func TestDispatchRoutesByLevelMask(t *testing.T) {
	errOnly := &fakeABI{info: Info{InterfaceVersion: 1, Author: "a", Description: "d", Levels: 0x08}, queryOK: true, initOK: true, writeOK: true}
	allLevels := &fakeABI{info: Info{InterfaceVersion: 1, Author: "a", Description: "d", Levels: 0xff}, queryOK: true, initOK: true, writeOK: true}
	loader := &fakeLoader{abis: map[string]*fakeABI{"e.so": errOnly, "a.so": allLevels}}
	c := New(loader, Hooks{})
	_, err := c.Load("e.so")
	require.NoError(t, err)
	_, err = c.Load("a.so")
	require.NoError(t, err)

	render := func(uint32) string { return "boom" }
	wrote, wanted := c.Dispatch(0x08, render)
	require.Equal(t, 2, wanted)
	require.Equal(t, 2, wrote)
	require.Equal(t, []string{"boom"}, errOnly.writes)
	require.Equal(t, []string{"boom"}, allLevels.writes)
}

func TestDispatchFormatsEachRecordWithItsOwnOptions(t *testing.T) {
	a := &fakeABI{info: Info{InterfaceVersion: 1, Author: "a", Description: "d", Levels: 0xff, Options: 0x01}, queryOK: true, initOK: true, writeOK: true}
	b := &fakeABI{info: Info{InterfaceVersion: 1, Author: "a", Description: "d", Levels: 0xff, Options: 0x02}, queryOK: true, initOK: true, writeOK: true}
	loader := &fakeLoader{abis: map[string]*fakeABI{"a.so": a, "b.so": b}}
	c := New(loader, Hooks{})
	_, err := c.Load("a.so")
	require.NoError(t, err)
	_, err = c.Load("b.so")
	require.NoError(t, err)

	var seen []uint32
	render := func(options uint32) string {
		seen = append(seen, options)
		return "line"
	}
	wrote, wanted := c.Dispatch(0xff, render)
	require.Equal(t, 2, wanted)
	require.Equal(t, 2, wrote)
	require.ElementsMatch(t, []uint32{0x01, 0x02}, seen)
}

var errNotFound = pluginNotFoundErr{}

type pluginNotFoundErr struct{}

func (pluginNotFoundErr) Error() string { return "destplugin: no fake registered for path" }
