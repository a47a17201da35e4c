package sir

import (
	"fmt"
	"sync"
	"time"
)

// tidCache is the per-goroutine thread-identity cache described in section
// 5 ("Per-thread state (no locking required)"). Go has no goroutine-local
// storage, so — exactly as errState does for the error surface — this is
// modeled as a map keyed by the goroutine id extracted via the
// runtime.Stack trick in errors.go. Unlike a true native thread, a
// goroutine's identity never changes over its lifetime, so the 333ms
// refresh gate mostly amortizes the (cheap) map lookup; it is kept because
// the spec documents it as part of the dispatch algorithm (section 4.1 step
// 4), and a future native-thread-aware build could resolve a real OS thread
// name here instead.
var tidCache = struct {
	mu sync.Mutex
	m  map[int64]*tidEntry
}{m: make(map[int64]*tidEntry)}

type tidEntry struct {
	last time.Time
	str  string
}

func threadIDString(pid int) string {
	gid := goroutineID()
	now := time.Now()

	tidCache.mu.Lock()
	e, ok := tidCache.m[gid]
	if !ok {
		e = &tidEntry{}
		tidCache.m[gid] = e
	}
	if !ok || now.Sub(e.last) >= threadNameRecheck {
		e.last = now
		if int64(gid) == int64(pid) {
			e.str = ""
		} else {
			e.str = itoa(int(gid))
		}
	}
	str := e.str
	tidCache.mu.Unlock()
	return str
}

// log is the single trampoline every level function (Debug, Info, ...)
// forwards to — section 4.1's dispatch engine.
func log(level Level, format string, args ...any) bool {
	clearError()

	if !IsInitialized() {
		setError("log", NotReady)
		return false
	}
	if !level.isSingleBit() {
		setError("log", BadLevels)
		return false
	}
	if format == "" {
		setError("log", BadString)
		return false
	}

	snap := takeSnapshot()
	tid := threadIDString(snap.pid)
	styleSeq := GetTextStyle(level)

	msg := fmt.Sprintf(format, args...)
	if len(msg) > maxMessageBytes {
		msg = msg[:maxMessageBytes]
	}

	cfgSingleton.mu.Lock()
	result := checkSquelchLocked(&cfgSingleton.squelch, level, msg)
	cfgSingleton.mu.Unlock()

	if result.drop {
		return false
	}
	if result.replacement != "" {
		msg = result.replacement
	}

	dispatched, wanted := 0, 0

	// Stdout/stderr each carry their own OptionMask, so each destination's
	// line is rendered at most once and reused if the two masks happen to
	// be identical (section 4.1 step 7: "memoize the formatted string per
	// distinct option set").
	var cache []renderedLine

	render := func(options OptionMask, styled bool) []byte {
		for _, r := range cache {
			if r.options == options && r.styled == styled {
				return r.line
			}
		}
		line := formatLine(snap, level, tid, msg, options, styled, styleSeq)
		cache = append(cache, renderedLine{options: options, styled: styled, line: line})
		return line
	}

	if snap.cfg.Stdout.Levels.Contains(level) {
		wanted++
		if writeConsole(false, render(snap.cfg.Stdout.Options, consoleStdout.IsTTY())) {
			dispatched++
		}
	}
	if snap.cfg.Stderr.Levels.Contains(level) {
		wanted++
		if writeConsole(true, render(snap.cfg.Stderr.Options, consoleStderr.IsTTY())) {
			dispatched++
		}
	}
	if snap.cfg.Syslog.Levels.Contains(level) {
		wanted++
		line := render(snap.cfg.Syslog.Options, false)
		if syslogDestination.Write(uint32(level), string(line)) == nil {
			dispatched++
		}
	}

	// Every file and plugin record carries its own OptionMask (section
	// 4.1 step 10), so each is formatted with its own options and shares
	// the same memoization cache as stdout/stderr/syslog: a record whose
	// options happen to match one already rendered reuses that buffer
	// instead of re-formatting.
	renderFile := func(options uint32) []byte { return render(OptionMask(options), false) }
	noHdr := func(options uint32) bool { return OptionMask(options).has(OptNoHdr) }
	fwrote, fwanted := files.Dispatch(uint32(level), renderFile, noHdr)
	dispatched += fwrote
	wanted += fwanted

	renderPlugin := func(options uint32) string { return string(render(OptionMask(options), false)) }
	pwrote, pwanted := plugins.Dispatch(uint32(level), renderPlugin)
	dispatched += pwrote
	wanted += pwanted

	if wanted == 0 {
		setError("log", NoDestination)
		return false
	}
	if dispatched != wanted {
		setError("log", Internal)
		return false
	}
	return true
}

type renderedLine struct {
	options OptionMask
	styled  bool
	line    []byte
}

// formatLine renders the layout of section 4.1: "[ESC-style] HH:MM:SS[.mmm]
// HOST [level] NAME(pid[.tid]): message[ESC-reset]EOL", gating each
// component on the destination's OptionMask and collapsing stray spacing
// around omitted fields.
func formatLine(snap snapshot, level Level, tid, msg string, options OptionMask, styled bool, styleSeq string) []byte {
	options = options.normalize()
	b := newBuffer()

	wroteAny := false

	if styled && styleSeq != "" {
		b.WriteString(styleSeq)
	}

	if !options.has(OptNoTime) {
		b.WriteString(snap.time)
		if !options.has(OptNoMsec) {
			b.WriteByte('.')
			fmt.Fprintf(b, "%03d", snap.msec)
		}
		wroteAny = true
	}

	if !options.has(OptNoHost) && snap.hostname != "" {
		if wroteAny {
			b.WriteByte(' ')
		}
		b.WriteString(snap.hostname)
		wroteAny = true
	}

	if !options.has(OptNoLevel) {
		if tag := level.tag(); tag != "" {
			if wroteAny {
				b.WriteByte(' ')
			}
			b.WriteString(tag)
			wroteAny = true
		}
	}

	haveName := !options.has(OptNoName) && snap.cfg.ProcessName != ""
	havePID := !options.has(OptNoPID)
	haveTID := !options.has(OptNoTID) && tid != ""

	if haveName || havePID || haveTID {
		if wroteAny {
			b.WriteByte(' ')
		}
		if haveName {
			b.WriteString(snap.cfg.ProcessName)
			if havePID || haveTID {
				b.WriteByte('(')
				writePIDTID(b, snap, tid, havePID, haveTID)
				b.WriteByte(')')
			}
		} else {
			writePIDTID(b, snap, tid, havePID, haveTID)
		}
		wroteAny = true
	}

	if wroteAny {
		b.WriteString(": ")
	}
	b.WriteString(msg)

	if styled && styleSeq != "" {
		b.WriteString(resetEscape)
	}
	b.WriteString(eol)

	out := make([]byte, len(*b))
	copy(out, *b)
	b.Release()
	return out
}

func writePIDTID(b *buffer, snap snapshot, tid string, havePID, haveTID bool) {
	if havePID {
		b.WriteString(snap.pidStr)
	}
	if haveTID {
		if havePID {
			b.WriteByte('.')
		}
		b.WriteString(tid)
	}
}

// eol terminates every rendered line.
const eol = "\n"

func writeConsole(stderr bool, formatted []byte) bool {
	w := consoleStdout
	if stderr {
		w = consoleStderr
	}
	_, err := w.Write(formatted)
	return err == nil
}

// Level trampolines, section 6.1.

func Emerg(format string, args ...any) bool  { return log(LevelEmerg, format, args...) }
func Alert(format string, args ...any) bool  { return log(LevelAlert, format, args...) }
func Crit(format string, args ...any) bool   { return log(LevelCrit, format, args...) }
func Error(format string, args ...any) bool  { return log(LevelError, format, args...) }
func Warn(format string, args ...any) bool   { return log(LevelWarn, format, args...) }
func Notice(format string, args ...any) bool { return log(LevelNotice, format, args...) }
func Info(format string, args ...any) bool   { return log(LevelInfo, format, args...) }
func Debug(format string, args ...any) bool  { return log(LevelDebug, format, args...) }
