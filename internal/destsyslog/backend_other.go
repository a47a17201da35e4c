//go:build !unix

package destsyslog

import "errors"

// errUnsupported is returned on platforms with no concrete system-logger
// backend wired into this module (e.g. the Windows Event Log, os_log on
// Darwin — both explicitly out of scope per spec section 1).
var errUnsupported = errors.New("destsyslog: no system-logger backend on this platform")

type stubBackend struct{}

func newBackend() backend { return stubBackend{} }

func (stubBackend) Open(identity, category string) error { return errUnsupported }
func (stubBackend) Write(level uint32, line string) error { return errUnsupported }
func (stubBackend) Close() error                          { return nil }
