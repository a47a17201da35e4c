package sir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDispatchWritesFormattedLineToFile(t *testing.T) {
	cfg := MakeInitDefaults()
	cfg.ProcessName = "dispatch-test"
	cfg.Stdout.Levels = MaskNone
	cfg.Stderr.Levels = MaskNone
	if !Init(cfg) {
		t.Fatalf("Init failed: %v", GetError())
	}
	t.Cleanup(func() { Cleanup() })

	path := filepath.Join(t.TempDir(), "out.log")
	id, ok := AddFile(path, MaskAll, OptAll)
	if !ok {
		t.Fatalf("AddFile failed: %v", GetError())
	}
	t.Cleanup(func() { RemFile(id) })

	if !Info("hello %s", "world") {
		t.Fatalf("Info() failed: %v", GetError())
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(contents), "hello world") {
		t.Fatalf("log file does not contain the message, got: %q", contents)
	}
	if !strings.Contains(string(contents), "[info]") {
		t.Fatalf("log file does not contain the level tag, got: %q", contents)
	}
}

func TestDispatchReturnsFalseWithNoMatchingDestination(t *testing.T) {
	cfg := MakeInitDefaults()
	cfg.Stdout.Levels = MaskNone
	cfg.Stderr.Levels = MaskNone
	if !Init(cfg) {
		t.Fatalf("Init failed: %v", GetError())
	}
	t.Cleanup(func() { Cleanup() })

	if Info("nobody is listening") {
		t.Fatalf("Info() succeeded with no destination registered")
	}
	if got := GetError(); got != NoDestination {
		t.Fatalf("GetError() = %v, want NoDestination", got)
	}
}

func TestDispatchRejectsCombinedLevel(t *testing.T) {
	cfg := MakeInitDefaults()
	if !Init(cfg) {
		t.Fatalf("Init failed: %v", GetError())
	}
	t.Cleanup(func() { Cleanup() })

	if log(Level(LevelInfo|LevelDebug), "bad") {
		t.Fatalf("log() accepted a combined level mask")
	}
	if got := GetError(); got != BadLevels {
		t.Fatalf("GetError() = %v, want BadLevels", got)
	}
}
