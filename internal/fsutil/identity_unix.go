//go:build unix

package fsutil

import "golang.org/x/sys/unix"

// identityKey returns the (device, inode) pair identifying the filesystem
// object at path, following the teacher's habit of isolating a syscall
// boundary behind a build-tagged file (tty_linux.go/tty_unix.go).
func identityKey(path string) ([2]uint64, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return [2]uint64{}, false
	}
	return [2]uint64{uint64(st.Dev), uint64(st.Ino)}, true
}
