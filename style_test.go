package sir

import (
	"strings"
	"testing"
)

func TestSetTextStyleRejectsInvalidLevel(t *testing.T) {
	if SetTextStyle(Level(LevelInfo|LevelDebug), AttrNormal, int32(Color16Red), DefaultColor) {
		t.Fatalf("SetTextStyle accepted a combined level mask")
	}
	if got := GetError(); got != BadLevels {
		t.Fatalf("GetError() = %v, want BadLevels", got)
	}
}

func TestSetTextStyleRejectsSameForegroundBackground(t *testing.T) {
	SetColorMode(Mode16) // known starting mode for this test
	if SetTextStyle(LevelInfo, AttrNormal, int32(Color16Red), int32(Color16Red)) {
		t.Fatalf("SetTextStyle accepted FG == BG")
	}
	if got := GetError(); got != BadTextStyle {
		t.Fatalf("GetError() = %v, want BadTextStyle", got)
	}
	ResetTextStyles()
}

func TestSetTextStyleRoundTrips(t *testing.T) {
	t.Cleanup(ResetTextStyles)
	if !SetTextStyle(LevelInfo, AttrBold, int32(Color16Green), DefaultColor) {
		t.Fatalf("SetTextStyle failed: %v", GetError())
	}
	seq := GetTextStyle(LevelInfo)
	if !strings.HasPrefix(seq, "\x1b[1;") {
		t.Fatalf("GetTextStyle() = %q, want bold (SGR 1) prefix", seq)
	}
}

func TestSetColorModeResetsToValidDefaults(t *testing.T) {
	t.Cleanup(func() {
		SetColorMode(Mode16)
	})
	if !SetColorMode(Mode256) {
		t.Fatalf("SetColorMode(Mode256) failed: %v", GetError())
	}
	seq := GetTextStyle(LevelEmerg)
	if !strings.Contains(seq, "38;5;") {
		t.Fatalf("GetTextStyle() after SetColorMode(Mode256) = %q, want 256-color fg form", seq)
	}
}

func TestRenderEscapeRGBMode(t *testing.T) {
	s := Style{Attr: AttrNormal, FG: MakeRGB(10, 20, 30), BG: DefaultColor}
	got := renderEscape(ModeRGB, s)
	want := "\x1b[0;38;2;10;20;30;49m"
	if got != want {
		t.Fatalf("renderEscape() = %q, want %q", got, want)
	}
}

func TestGetTextStyleUnknownLevelIsEmpty(t *testing.T) {
	if got := GetTextStyle(Level(0)); got != "" {
		t.Fatalf("GetTextStyle(0) = %q, want empty", got)
	}
}
