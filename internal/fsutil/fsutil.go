// Package fsutil is the filesystem boundary described in spec section 1:
// path existence/stat, open-for-append, rename, and the file identity
// comparison section 4.2 depends on. It has no delete operation. Platform primitives
// (stat/rename/readlink/realpath) are treated as external collaborators;
// this package only specifies and implements the thin boundary over them,
// split by build tag the way the teacher splits tty_linux.go/tty_unix.go.
package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// OpenAppend opens path in append mode, creating it if absent.
func OpenAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// Exists reports whether path refers to an existing filesystem entry.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Size returns the current size in bytes of the file at path.
func Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// SameFile reports whether a and b refer to the same filesystem object,
// preferring device+inode comparison (identityKey, platform-specific) and
// falling back to canonical-path string comparison when that's unavailable,
// per spec section 4.2/9 "File identity".
func SameFile(a, b string) bool {
	ka, oka := identityKey(a)
	kb, okb := identityKey(b)
	if oka && okb {
		return ka == kb
	}
	ca, erra := canonical(a)
	cb, errb := canonical(b)
	if erra != nil || errb != nil {
		return false
	}
	return ca == cb
}

// canonical resolves symlinks and returns an absolute, cleaned path.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// The file may not exist yet (about to be created); fall back
			// to the absolute, cleaned path.
			return filepath.Clean(abs), nil
		}
		return "", err
	}
	return resolved, nil
}

// SplitArchiveCandidate builds the rotation archive candidate
// "{base}-{YYYY-MM-DD-HHMMSS}[-{N}]{.ext}" for attempt N (N==0 means no
// suffix), per spec section 6.3.
func SplitArchiveCandidate(path string, ts time.Time, n int) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := ts.Format("2006-01-02-150405")
	name := stem + "-" + stamp
	if n > 0 {
		name += "-" + strconv.Itoa(n)
	}
	return filepath.Join(dir, name+ext)
}

// FirstFreeArchiveName tries SplitArchiveCandidate with increasing suffixes
// until it finds a path that doesn't exist, or returns ok=false after 999
// attempts exhausted (spec section 4.2 "Rotation").
func FirstFreeArchiveName(path string, ts time.Time) (string, bool) {
	cand := SplitArchiveCandidate(path, ts, 0)
	if !Exists(cand) {
		return cand, true
	}
	for n := 1; n <= 999; n++ {
		cand = SplitArchiveCandidate(path, ts, n)
		if !Exists(cand) {
			return cand, true
		}
	}
	return "", false
}

// Rename renames oldpath to newpath.
func Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}
