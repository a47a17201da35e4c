//go:build !unix

package fsutil

// identityKey has no device/inode fast path outside unix-family GOOS;
// SameFile falls back to canonical-path string comparison there (spec
// section 9's Windows note calls for BY_HANDLE_FILE_INFORMATION comparison,
// which is out of scope here — see SPEC_FULL.md point 4).
func identityKey(path string) ([2]uint64, bool) {
	return [2]uint64{}, false
}
