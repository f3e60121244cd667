package debug

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func capture(t *testing.T, lvl int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(lvl)
	SetOutput(&buf)
	t.Cleanup(func() { Init(LevelOff) })
	return &buf
}

func TestLevelOff_NoOutput(t *testing.T) {
	buf := capture(t, LevelOff)
	Info("session started")
	Error(errors.New("boom"))
	if buf.Len() != 0 {
		t.Errorf("expected no output at level 0, got %q", buf.String())
	}
}

func TestInfoLevel_FiltersLive(t *testing.T) {
	buf := capture(t, LevelInfo)
	Info("gallery has %d photos", 4)
	Live("countdown %d", 3)
	out := buf.String()
	if !strings.Contains(out, "gallery has 4 photos") {
		t.Errorf("info message missing: %q", out)
	}
	if strings.Contains(out, "countdown") {
		t.Errorf("live message should be filtered at level 1: %q", out)
	}
}

func TestTraceLevel_EmitsGPIO(t *testing.T) {
	buf := capture(t, LevelTrace)
	GPIO("WritePin", 27, true)
	Shot(1, 3)
	out := buf.String()
	if !strings.Contains(out, "WritePin pin=27 value=true") {
		t.Errorf("gpio trace missing: %q", out)
	}
	if !strings.Contains(out, "Photo 1/3 captured") {
		t.Errorf("shot message missing: %q", out)
	}
}

func TestIsEnabled(t *testing.T) {
	capture(t, LevelLive)
	if !IsEnabled(LevelInfo) || !IsEnabled(LevelLive) {
		t.Error("levels up to Live should be enabled")
	}
	if IsEnabled(LevelVerbose) {
		t.Error("verbose should be disabled at level 2")
	}
}

func TestFmt(t *testing.T) {
	capture(t, LevelOff)
	if got := Fmt("%d", 1); got != "" {
		t.Errorf("Fmt at level 0 = %q, want empty", got)
	}
	Init(LevelInfo)
	if got := Fmt("%d", 1); got != "1" {
		t.Errorf("Fmt at level 1 = %q, want 1", got)
	}
}
