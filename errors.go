package sir

import (
	"fmt"
	"runtime"
	"sync"
)

// Kind is the taxonomy of errors a public operation can leave on the
// calling goroutine's error surface. Exactly one Kind describes a given
// failure.
type Kind int

const (
	NoError Kind = iota
	NotReady
	Already
	DupItem
	NoItem
	NoRoom
	BadOptions
	BadLevels
	BadTextStyle
	BadString
	NullPointer
	Invalid
	NoDestination
	Unavailable
	Internal
	BadColorMode
	BadTextAttr
	BadTextColor
	PluginBad
	PluginData
	PluginVersion
	PluginError
	Platform
	Unknown
)

func (k Kind) String() string {
	switch k {
	case NoError:
		return "NOERROR"
	case NotReady:
		return "NOTREADY"
	case Already:
		return "ALREADY"
	case DupItem:
		return "DUPITEM"
	case NoItem:
		return "NOITEM"
	case NoRoom:
		return "NOROOM"
	case BadOptions:
		return "OPTIONS"
	case BadLevels:
		return "LEVELS"
	case BadTextStyle:
		return "TEXTSTYLE"
	case BadString:
		return "STRING"
	case NullPointer:
		return "NULLPTR"
	case Invalid:
		return "INVALID"
	case NoDestination:
		return "NODEST"
	case Unavailable:
		return "UNAVAIL"
	case Internal:
		return "INTERNAL"
	case BadColorMode:
		return "COLORMODE"
	case BadTextAttr:
		return "TEXTATTR"
	case BadTextColor:
		return "TEXTCOLOR"
	case PluginBad:
		return "PLUGINBAD"
	case PluginData:
		return "PLUGINDAT"
	case PluginVersion:
		return "PLUGINVER"
	case PluginError:
		return "PLUGINERR"
	case Platform:
		return "PLATFORM"
	default:
		return "UNKNOWN"
	}
}

// ErrorInfo is the per-goroutine error snapshot returned by GetErrorInfo.
type ErrorInfo struct {
	Kind       Kind
	OSCode     int
	OSMessage  string
	Func       string
	File       string
	Line       int
}

// Error implements the error interface so an ErrorInfo can be wrapped and
// propagated with fmt.Errorf("%w", ...) internally.
func (e ErrorInfo) Error() string {
	if e.Kind == NoError {
		return "sir: no error"
	}
	if e.OSMessage != "" {
		return fmt.Sprintf("sir: %s: %s (os code %d) at %s (%s:%d)", e.Kind, e.OSMessage, e.OSCode, e.Func, e.File, e.Line)
	}
	return fmt.Sprintf("sir: %s at %s (%s:%d)", e.Kind, e.Func, e.File, e.Line)
}

// errState is the library's substitute for C thread-local storage: Go has
// no goroutine-local storage, so the per-goroutine surface described in
// spec section 7 is modeled as a map keyed by the calling goroutine's id,
// extracted from runtime.Stack the same cheap way a handful of debugging
// packages do it. An entry is removed only when its own goroutine calls
// clearError; an entry left by a goroutine that exits with an error set
// stays in the map. This is a diagnostic surface, not a hot path.
var errState = struct {
	mu sync.Mutex
	m  map[int64]*ErrorInfo
}{m: make(map[int64]*ErrorInfo)}

// goroutineID parses the running goroutine's numeric id out of the header
// line of runtime.Stack's output ("goroutine 123 [running]:"). It is a
// well-known hack; there is no supported API for this in Go.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	// Skip "goroutine "
	const prefix = "goroutine "
	if len(b) < len(prefix) {
		return 0
	}
	b = b[len(prefix):]
	var id int64
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}

// setError records an error on the calling goroutine's surface. loc is the
// function name to attribute the failure to.
func setError(loc string, kind Kind) {
	setErrorOS(loc, kind, 0, "")
}

// setErrorOS is setError plus a captured OS error code/message, used for
// Kind == Platform failures.
func setErrorOS(loc string, kind Kind, osCode int, osMsg string) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file, line = "???", 0
	}
	info := &ErrorInfo{
		Kind:      kind,
		OSCode:    osCode,
		OSMessage: osMsg,
		Func:      loc,
		File:      file,
		Line:      line,
	}
	id := goroutineID()
	errState.mu.Lock()
	errState.m[id] = info
	errState.mu.Unlock()
}

// clearError resets the calling goroutine's error surface to NoError. Called
// at the start of every public entry point that goes on to succeed.
func clearError() {
	id := goroutineID()
	errState.mu.Lock()
	delete(errState.m, id)
	errState.mu.Unlock()
}

// GetError returns the Kind of the last error recorded on the calling
// goroutine, or NoError if none was ever recorded.
func GetError() Kind {
	return GetErrorInfo().Kind
}

// GetErrorInfo returns the full error snapshot for the calling goroutine.
func GetErrorInfo() ErrorInfo {
	id := goroutineID()
	errState.mu.Lock()
	defer errState.mu.Unlock()
	if info, ok := errState.m[id]; ok {
		return *info
	}
	return ErrorInfo{Kind: NoError}
}
