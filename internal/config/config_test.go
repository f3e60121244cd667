package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------- ValidateConfigPath ----------

func TestValidateConfigPath_Valid(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "configs")
	if err := os.Mkdir(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfgDir, "default.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateConfigPath(path); err != nil {
		t.Errorf("expected valid path, got error: %v", err)
	}
}

func TestValidateConfigPath_Rejected(t *testing.T) {
	cases := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"traversal", "../../etc/passwd"},
		{"traversal_out_of_configs", "configs/../../../etc/shadow"},
		{"json_extension", "configs/default.json"},
		{"yml_extension", "configs/default.yml"},
		{"no_extension", "configs/default"},
		{"other_dir", "other/default.yaml"},
		{"bare_file", "default.yaml"},
		{"tmp_dir", "/tmp/default.yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateConfigPath(tc.path); err == nil {
				t.Errorf("expected error for %q, got nil", tc.path)
			}
		})
	}
}

func TestValidateConfigPath_VeryLongPath(t *testing.T) {
	long := "configs/" + strings.Repeat("a", 1000) + ".yaml"
	// Must not panic.
	_ = ValidateConfigPath(long)
}

// ---------- Load ----------

// writeConfig creates a temporary configs/ dir with the given YAML content and returns the path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "configs")
	if err := os.Mkdir(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfgDir, "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validYAML = `
camera:
  type: "rpicam"
  width_px: 1920
  height_px: 1080
  framerate: 10
gpio:
  mock: true
  button_pin: 17
  flash_pin: 27
session:
  default_photo_count: 4
  max_photo_count: 6
  countdown_seconds: 5
  preview_timeout_s: 45
  filters: [none, sepia]
frames:
  dir: "assets/frames"
  names: [wedding.png, party.png, xmas.png]
gallery:
  db_path: "/var/lib/boothgo/gallery.db"
share:
  caption: "Our wedding booth"
  page_url: "https://booth.example.org"
kiosk:
  operator_key: "x"
  fullscreen: true
defaults:
  debug_level: 2
`

func TestLoad_ValidFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Camera.Type != "rpicam" {
		t.Errorf("camera.type = %q, want rpicam", cfg.Camera.Type)
	}
	if cfg.Camera.WidthPx != 1920 || cfg.Camera.HeightPx != 1080 {
		t.Errorf("camera size = %dx%d, want 1920x1080", cfg.Camera.WidthPx, cfg.Camera.HeightPx)
	}
	if cfg.GPIO.ButtonPin != 17 || cfg.GPIO.FlashPin != 27 {
		t.Errorf("gpio pins = %d/%d, want 17/27", cfg.GPIO.ButtonPin, cfg.GPIO.FlashPin)
	}
	if cfg.Session.DefaultPhotoCount != 4 {
		t.Errorf("default_photo_count = %d, want 4", cfg.Session.DefaultPhotoCount)
	}
	if cfg.Session.CountdownSeconds != 5 {
		t.Errorf("countdown_seconds = %d, want 5", cfg.Session.CountdownSeconds)
	}
	if len(cfg.Session.Filters) != 2 || cfg.Session.Filters[1] != "sepia" {
		t.Errorf("filters = %v, want [none sepia]", cfg.Session.Filters)
	}
	if len(cfg.Frames.Names) != 3 {
		t.Errorf("frames.names = %v, want 3 entries", cfg.Frames.Names)
	}
	if cfg.Kiosk.OperatorKey != "x" {
		t.Errorf("operator_key = %q, want x", cfg.Kiosk.OperatorKey)
	}
	if cfg.Share.PageURL != "https://booth.example.org" {
		t.Errorf("share.page_url = %q", cfg.Share.PageURL)
	}
	if cfg.Defaults.DebugLevel != 2 {
		t.Errorf("debug_level = %d, want 2", cfg.Defaults.DebugLevel)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, "camera:\n  type: mock\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Camera.Command != "rpicam-vid" {
		t.Errorf("camera.command default = %q, want rpicam-vid", cfg.Camera.Command)
	}
	if cfg.Camera.WidthPx != 1280 || cfg.Camera.HeightPx != 720 {
		t.Errorf("camera size default = %dx%d, want 1280x720", cfg.Camera.WidthPx, cfg.Camera.HeightPx)
	}
	if cfg.Session.DefaultPhotoCount != 3 {
		t.Errorf("default_photo_count default = %d, want 3", cfg.Session.DefaultPhotoCount)
	}
	if cfg.Session.CountdownSeconds != 3 {
		t.Errorf("countdown_seconds default = %d, want 3", cfg.Session.CountdownSeconds)
	}
	if cfg.Tick() != time.Second {
		t.Errorf("Tick() default = %v, want 1s", cfg.Tick())
	}
	if cfg.FlashDuration() != 200*time.Millisecond {
		t.Errorf("FlashDuration() default = %v, want 200ms", cfg.FlashDuration())
	}
	if cfg.PreviewTimeout() != 30*time.Second {
		t.Errorf("PreviewTimeout() default = %v, want 30s", cfg.PreviewTimeout())
	}
	want := []string{"none", "grayscale", "sepia", "invert"}
	if strings.Join(cfg.Session.Filters, ",") != strings.Join(want, ",") {
		t.Errorf("filters default = %v, want %v", cfg.Session.Filters, want)
	}
	if strings.Join(cfg.Frames.Names, ",") != "frame1.png,frame2.png" {
		t.Errorf("frames default = %v", cfg.Frames.Names)
	}
	if cfg.Kiosk.OperatorKey != "o" {
		t.Errorf("operator_key default = %q, want o", cfg.Kiosk.OperatorKey)
	}
	if cfg.Share.Caption != "Check out my photos!" {
		t.Errorf("share.caption default = %q", cfg.Share.Caption)
	}
}

func TestLoad_EmptyFrameListKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, "camera:\n  type: mock\nframes:\n  names: []\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Frames.Names) != 0 {
		t.Errorf("explicit empty frame list should be kept, got %v", cfg.Frames.Names)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing_camera_type", "session:\n  default_photo_count: 3\n"},
		{"unsupported_camera", "camera:\n  type: nikon_d90_gpio\n"},
		{"default_over_max", "camera:\n  type: mock\nsession:\n  default_photo_count: 8\n  max_photo_count: 4\n"},
		{"frame_with_path", "camera:\n  type: mock\nframes:\n  names: [\"../secret.png\"]\n"},
		{"debug_level_too_high", "camera:\n  type: mock\ndefaults:\n  debug_level: 9\n"},
		{"invalid_yaml", "{{{{invalid yaml!!!!"},
		{"empty_file", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoad_UnknownFields(t *testing.T) {
	yaml := `
camera:
  type: "mock"
unknown_section:
  foo: bar
`
	if _, err := Load(writeConfig(t, yaml)); err != nil {
		t.Errorf("unknown fields should be ignored, got error: %v", err)
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	data := strings.Repeat("#", MaxConfigFileBytes+1)
	if _, err := Load(writeConfig(t, data)); err == nil {
		t.Error("expected error for oversized config file, got nil")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "nonexistent.yaml")
	if _, err := Load(path); err == nil {
		t.Error("expected error for nonexistent file, got nil")
	}
}

// ---------- Helper methods ----------

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Camera.Type != "mock" || !cfg.GPIO.Mock {
		t.Errorf("Default() should use mock hardware, got camera=%q mock_gpio=%v", cfg.Camera.Type, cfg.GPIO.Mock)
	}
	if cfg.Session.MaxPhotoCount != 10 {
		t.Errorf("max_photo_count default = %d, want 10", cfg.Session.MaxPhotoCount)
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := &Config{
		Session: SessionConfig{TickMs: 250, FlashMs: 50, PreviewTimeoutS: 5},
		GPIO:    GPIOConfig{ButtonPollMs: 10},
	}
	if got := cfg.Tick(); got != 250*time.Millisecond {
		t.Errorf("Tick() = %v", got)
	}
	if got := cfg.FlashDuration(); got != 50*time.Millisecond {
		t.Errorf("FlashDuration() = %v", got)
	}
	if got := cfg.PreviewTimeout(); got != 5*time.Second {
		t.Errorf("PreviewTimeout() = %v", got)
	}
	if got := cfg.ButtonPoll(); got != 10*time.Millisecond {
		t.Errorf("ButtonPoll() = %v", got)
	}
}

func TestConfig_FramePath(t *testing.T) {
	cfg := &Config{Frames: FramesConfig{Dir: "assets/frames"}}
	if got := cfg.FramePath("frame1.png"); got != filepath.Join("assets", "frames", "frame1.png") {
		t.Errorf("FramePath() = %q", got)
	}
}
