package sir

import "testing"

func TestMakeInitDefaultsIsValid(t *testing.T) {
	c := MakeInitDefaults()
	if !validInitConfig(c) {
		t.Fatalf("MakeInitDefaults() produced an invalid config: %+v", c)
	}
	if c.Syslog.Levels != MaskNone {
		t.Fatalf("default syslog levels should be MaskNone, got %#x", uint32(c.Syslog.Levels))
	}
}

func TestValidInitConfigRejectsOversizedFields(t *testing.T) {
	c := MakeInitDefaults()
	for i := 0; i < 40; i++ {
		c.ProcessName += "x"
	}
	if validInitConfig(c) {
		t.Fatalf("an over-length ProcessName should be rejected")
	}
}

func TestInitCleanupLifecycle(t *testing.T) {
	if IsInitialized() {
		t.Fatalf("library reports initialized before any Init in this test")
	}

	cfg := MakeInitDefaults()
	cfg.ProcessName = "sir-test"
	if !Init(cfg) {
		t.Fatalf("Init failed: %v", GetError())
	}
	t.Cleanup(func() { Cleanup() })

	if !IsInitialized() {
		t.Fatalf("IsInitialized() = false after a successful Init")
	}
	if Init(cfg) {
		t.Fatalf("second Init call should fail with Already")
	}
	if got := GetError(); got != Already {
		t.Fatalf("GetError() = %v, want Already", got)
	}

	if !Cleanup() {
		t.Fatalf("Cleanup failed: %v", GetError())
	}
	if IsInitialized() {
		t.Fatalf("IsInitialized() = true after Cleanup")
	}
}

func TestLogBeforeInitFails(t *testing.T) {
	if IsInitialized() {
		t.Skip("another test left the library initialized")
	}
	if Info("should not dispatch") {
		t.Fatalf("Info() succeeded before Init")
	}
	if got := GetError(); got != NotReady {
		t.Fatalf("GetError() = %v, want NotReady", got)
	}
}
