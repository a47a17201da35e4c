//go:build !linux

package destplugin

import "errors"

// ErrUnsupported is returned by the stub loader on platforms where Go's
// plugin package cannot load a shared object (spec section 1 treats dynamic
// module loading as a platform boundary; this is that boundary's failure
// mode where the platform simply doesn't have one).
var ErrUnsupported = errors.New("destplugin: dynamic plugin loading is not supported on this platform")

type stubLoader struct{}

// NewLoader returns a loader that always fails with ErrUnsupported.
func NewLoader() Loader { return stubLoader{} }

func (stubLoader) Open(path string) (ABI, func() error, error) {
	return nil, nil, ErrUnsupported
}
