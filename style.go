package sir

import (
	"fmt"
	"sync"
)

// ColorMode selects the terminal color depth assumed when rendering
// style-table escape sequences.
type ColorMode int

const (
	Mode16 ColorMode = iota
	Mode256
	ModeRGB
)

func validColorMode(m ColorMode) bool {
	switch m {
	case Mode16, Mode256, ModeRGB:
		return true
	default:
		return false
	}
}

// TextAttr is a single display attribute applied to a level's style.
type TextAttr int

const (
	AttrNormal TextAttr = iota
	AttrBold
	AttrDim
	AttrEmph
	AttrULine
)

func validTextAttr(a TextAttr) bool {
	switch a {
	case AttrNormal, AttrBold, AttrDim, AttrEmph, AttrULine:
		return true
	default:
		return false
	}
}

// ansiAttrCode maps a TextAttr to its SGR parameter.
func ansiAttrCode(a TextAttr) int {
	switch a {
	case AttrBold:
		return 1
	case AttrDim:
		return 2
	case AttrEmph:
		return 3
	case AttrULine:
		return 4
	default:
		return 0
	}
}

// Color16 enumerates the 16 named colors available in Mode16, plus the
// DefaultColor sentinel shared across all three modes.
type Color16 int

const (
	Color16Black Color16 = iota
	Color16Red
	Color16Green
	Color16Yellow
	Color16Blue
	Color16Magenta
	Color16Cyan
	Color16White
	Color16BrightBlack
	Color16BrightRed
	Color16BrightGreen
	Color16BrightYellow
	Color16BrightBlue
	Color16BrightMagenta
	Color16BrightCyan
	Color16BrightWhite
)

// DefaultColor is the shared "use the terminal's default" sentinel, valid
// as a foreground or background in any ColorMode. Its packed representation
// (-1) cannot collide with any valid 16-color, 256-color, or RGB value.
const DefaultColor int32 = -1

// MakeRGB packs r, g, b into the 0x00RRGGBB representation used by ModeRGB.
func MakeRGB(r, g, b uint8) int32 {
	return int32(r)<<16 | int32(g)<<8 | int32(b)
}

func validColor(mode ColorMode, c int32) bool {
	if c == DefaultColor {
		return true
	}
	switch mode {
	case Mode16:
		return c >= int32(Color16Black) && c <= int32(Color16BrightWhite)
	case Mode256:
		return c >= 0 && c <= 255
	case ModeRGB:
		return c >= 0 && c <= 0x00FFFFFF
	default:
		return false
	}
}

// Style is a single level's display style: an attribute plus foreground and
// background colors, interpreted according to the table's current
// ColorMode. Foreground must not equal Background unless one of them is
// DefaultColor.
type Style struct {
	Attr TextAttr
	FG   int32
	BG   int32
}

func validStyle(mode ColorMode, s Style) bool {
	if !validTextAttr(s.Attr) || !validColor(mode, s.FG) || !validColor(mode, s.BG) {
		return false
	}
	if s.FG == s.BG && s.FG != DefaultColor {
		return false
	}
	return true
}

// defaultStyles are the library-defined defaults, e.g. emergency = bold
// plus a red background, matching section 4.4.
func defaultStyles() map[Level]Style {
	return map[Level]Style{
		LevelEmerg:  {Attr: AttrBold, FG: int32(Color16White), BG: int32(Color16Red)},
		LevelAlert:  {Attr: AttrBold, FG: int32(Color16Red), BG: DefaultColor},
		LevelCrit:   {Attr: AttrBold, FG: int32(Color16Magenta), BG: DefaultColor},
		LevelError:  {Attr: AttrNormal, FG: int32(Color16Red), BG: DefaultColor},
		LevelWarn:   {Attr: AttrNormal, FG: int32(Color16Yellow), BG: DefaultColor},
		LevelNotice: {Attr: AttrEmph, FG: int32(Color16Cyan), BG: DefaultColor},
		LevelInfo:   {Attr: AttrNormal, FG: int32(Color16Green), BG: DefaultColor},
		LevelDebug:  {Attr: AttrDim, FG: int32(Color16White), BG: DefaultColor},
	}
}

// styleEntry is one row of the fixed-size, binary-searchable style table.
type styleEntry struct {
	level    Level
	style    Style
	rendered string
}

// styleTable is the process-wide table described in section 4.4, guarded by
// its own mutex (section 5, mutex section 4). It is only ever referenced
// through the *styleTable singleton below, never copied; noCopy makes go
// vet's copylocks check enforce that.
type styleTable struct {
	noCopy
	mu      sync.Mutex
	mode    ColorMode
	entries []styleEntry // sorted by level, like levelTags
}

var styles = newStyleTable()

func newStyleTable() *styleTable {
	t := &styleTable{mode: Mode16}
	t.resetLocked()
	return t
}

func (t *styleTable) resetLocked() {
	defaults := defaultStyles()
	t.entries = make([]styleEntry, len(levelTags))
	for i, lt := range levelTags {
		s := defaults[lt.level]
		t.entries[i] = styleEntry{level: lt.level, style: s, rendered: renderEscape(t.mode, s)}
	}
}

// SetTextStyle validates attr/fg/bg against the table's current color mode,
// stores the style for level, and re-renders its escape sequence.
func SetTextStyle(level Level, attr TextAttr, fg, bg int32) bool {
	clearError()
	if !level.isSingleBit() {
		setError("SetTextStyle", BadLevels)
		return false
	}
	s := Style{Attr: attr, FG: fg, BG: bg}
	styles.mu.Lock()
	defer styles.mu.Unlock()
	if !validStyle(styles.mode, s) {
		setError("SetTextStyle", BadTextStyle)
		return false
	}
	for i := range styles.entries {
		if styles.entries[i].level == level {
			styles.entries[i].style = s
			styles.entries[i].rendered = renderEscape(styles.mode, s)
			return true
		}
	}
	setError("SetTextStyle", Internal)
	return false
}

// ResetTextStyles replaces every entry with its library-defined default.
func ResetTextStyles() bool {
	clearError()
	styles.mu.Lock()
	defer styles.mu.Unlock()
	styles.resetLocked()
	return true
}

// SetColorMode changes the table's color mode and resets every style to its
// default, since a style valid in one mode may not be valid in another.
func SetColorMode(mode ColorMode) bool {
	clearError()
	if !validColorMode(mode) {
		setError("SetColorMode", BadColorMode)
		return false
	}
	styles.mu.Lock()
	defer styles.mu.Unlock()
	styles.mode = mode
	styles.resetLocked()
	return true
}

// GetTextStyle returns the pre-rendered escape sequence for level, found by
// binary search; it never returns an error indicator, only an empty string
// for an invalid level.
func GetTextStyle(level Level) string {
	styles.mu.Lock()
	defer styles.mu.Unlock()
	lo, hi := 0, len(styles.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if styles.entries[mid].level < level {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(styles.entries) && styles.entries[lo].level == level {
		return styles.entries[lo].rendered
	}
	return ""
}

// resetEscape is appended after styled text to restore the terminal's
// default rendition.
const resetEscape = "\x1b[0m"

// renderEscape renders a Style into its mode-specific SGR escape sequence,
// per section 4.4's three rendering forms.
func renderEscape(mode ColorMode, s Style) string {
	attr := ansiAttrCode(s.Attr)
	switch mode {
	case Mode256:
		fg, hasFG := ansi256(s.FG)
		bg, hasBG := ansi256(s.BG)
		out := fmt.Sprintf("\x1b[%d", attr)
		if hasFG {
			out += fmt.Sprintf(";38;5;%d", fg)
		} else {
			out += ";39"
		}
		if hasBG {
			out += fmt.Sprintf(";48;5;%d", bg)
		} else {
			out += ";49"
		}
		return out + "m"
	case ModeRGB:
		out := fmt.Sprintf("\x1b[%d", attr)
		if s.FG != DefaultColor {
			r, g, b := rgbComponents(s.FG)
			out += fmt.Sprintf(";38;2;%d;%d;%d", r, g, b)
		} else {
			out += ";39"
		}
		if s.BG != DefaultColor {
			r, g, b := rgbComponents(s.BG)
			out += fmt.Sprintf(";48;2;%d;%d;%d", r, g, b)
		} else {
			out += ";49"
		}
		return out + "m"
	default: // Mode16
		fg := ansi16(s.FG, false)
		bg := ansi16(s.BG, true)
		return fmt.Sprintf("\x1b[%d;%s;%sm", attr, fg, bg)
	}
}

func ansi256(c int32) (int, bool) {
	if c == DefaultColor {
		return 0, false
	}
	return int(c), true
}

func rgbComponents(c int32) (r, g, b uint8) {
	u := uint32(c)
	return uint8(u >> 16), uint8(u >> 8), uint8(u)
}

// ansi16 translates a Color16 (or DefaultColor) to the ANSI 30..37/39/90..97
// foreground or 40..47/49/100..107 background code ranges.
func ansi16(c int32, background bool) string {
	base := 30
	bright := 90
	def := "39"
	if background {
		base, bright, def = 40, 100, "49"
	}
	if c == DefaultColor {
		return def
	}
	if c >= int32(Color16Black) && c <= int32(Color16White) {
		return fmt.Sprintf("%d", base+int(c))
	}
	return fmt.Sprintf("%d", bright+int(c)-int(Color16BrightBlack))
}
