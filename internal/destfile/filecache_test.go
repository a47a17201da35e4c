package destfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddRejectsDuplicatesAndEnforcesCap(t *testing.T) {
	dir := t.TempDir()
	c := New(Hooks{})

	path := filepath.Join(dir, "a.log")
	id, err := c.Add(path, 0xff, 0, false)
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = c.Add(path, 0xff, 0, false)
	require.ErrorIs(t, err, ErrDup)

	for i := 0; i < MaxFiles-1; i++ {
		p := filepath.Join(dir, string(rune('b'+i))+".log")
		_, err := c.Add(p, 0xff, 0, false)
		require.NoError(t, err)
	}
	_, err = c.Add(filepath.Join(dir, "overflow.log"), 0xff, 0, false)
	require.ErrorIs(t, err, ErrFull)
}

func TestSetLevelsAndOptionsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(Hooks{})
	id, err := c.Add(filepath.Join(dir, "a.log"), 0xff, 0, true)
	require.NoError(t, err)

	require.NoError(t, c.SetLevels(id, 0x0f))
	require.NoError(t, c.SetOptions(id, 0x01))

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	require.EqualValues(t, 0x0f, snap[0].Levels)
	require.EqualValues(t, 0x01, snap[0].Options)

	require.ErrorIs(t, c.SetLevels(99999, 0xff), ErrNoItem)
}

func TestRemoveShrinksCache(t *testing.T) {
	dir := t.TempDir()
	c := New(Hooks{})
	id, err := c.Add(filepath.Join(dir, "a.log"), 0xff, 0, true)
	require.NoError(t, err)

	require.NoError(t, c.Remove(id))
	require.Empty(t, c.Snapshot())
	require.ErrorIs(t, c.Remove(id), ErrNoItem)
}

func TestDispatchWritesToMatchingLevelsOnly(t *testing.T) {
	dir := t.TempDir()
	c := New(Hooks{})
	// 0x08 == error level bit in the root package's Level enum.
	_, err := c.Add(filepath.Join(dir, "errors.log"), 0x08, 0, true)
	require.NoError(t, err)
	_, err = c.Add(filepath.Join(dir, "debug.log"), 0x80, 0, true)
	require.NoError(t, err)

	render := func(uint32) []byte { return []byte("boom\n") }
	noHdr := func(uint32) bool { return true }
	wrote, wanted := c.Dispatch(0x08, render, noHdr)
	require.Equal(t, 1, wanted)
	require.Equal(t, 1, wrote)
}

func TestDispatchFormatsEachRecordWithItsOwnOptions(t *testing.T) {
	dir := t.TempDir()
	c := New(Hooks{})
	_, err := c.Add(filepath.Join(dir, "a.log"), 0xff, 0x01, true)
	require.NoError(t, err)
	_, err = c.Add(filepath.Join(dir, "b.log"), 0xff, 0x02, true)
	require.NoError(t, err)

	var seen []uint32
	render := func(options uint32) []byte {
		seen = append(seen, options)
		return []byte("line\n")
	}
	noHdr := func(uint32) bool { return true }
	wrote, wanted := c.Dispatch(0xff, render, noHdr)
	require.Equal(t, 2, wanted)
	require.Equal(t, 2, wrote)
	require.ElementsMatch(t, []uint32{0x01, 0x02}, seen)
}
