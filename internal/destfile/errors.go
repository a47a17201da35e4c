package destfile

import "errors"

var (
	ErrDup    = errors.New("destfile: duplicate file")
	ErrFull   = errors.New("destfile: cache full")
	ErrNoItem = errors.New("destfile: no such file")
)
