package destsyslog

import "errors"

var errNotOpen = errors.New("destsyslog: destination not open")
