package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CameraConfig describes the live camera feed.
// Type selects a concrete implementation ("rpicam" or "mock").
type CameraConfig struct {
	Type      string `yaml:"type"`       // e.g., "rpicam"
	Command   string `yaml:"command"`    // capture binary, default "rpicam-vid"
	WidthPx   int    `yaml:"width_px"`   // native frame width
	HeightPx  int    `yaml:"height_px"`  // native frame height
	Framerate int    `yaml:"framerate"`  // live preview framerate
	MockImage string `yaml:"mock_image"` // optional still used by the mock camera
}

// GPIOConfig holds the optional physical controls.
type GPIOConfig struct {
	Mock         bool `yaml:"mock"`           // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	ButtonPin    int  `yaml:"button_pin"`     // BCM pin of the shutter button. 0 = not used. Active LOW.
	FlashPin     int  `yaml:"flash_pin"`      // BCM pin driving the flash lamp. 0 = not used.
	ButtonPollMs int  `yaml:"button_poll_ms"` // button sampling period (ms)
}

// SessionConfig contains the photo session timings and limits.
type SessionConfig struct {
	DefaultPhotoCount int      `yaml:"default_photo_count"`
	MaxPhotoCount     int      `yaml:"max_photo_count"`
	CountdownSeconds  int      `yaml:"countdown_seconds"`
	TickMs            int      `yaml:"tick_ms"`           // countdown tick period (ms)
	FlashMs           int      `yaml:"flash_ms"`          // flash effect duration (ms)
	PreviewTimeoutS   int      `yaml:"preview_timeout_s"` // auto return to idle from preview
	Filters           []string `yaml:"filters"`
}

// FramesConfig lists the decorative overlays available on the setup screen.
type FramesConfig struct {
	Dir   string   `yaml:"dir"`
	Names []string `yaml:"names"`
}

// GalleryConfig locates the persistent store.
type GalleryConfig struct {
	DBPath string `yaml:"db_path"`
}

// ShareConfig holds the text sent through the share action.
type ShareConfig struct {
	Caption string `yaml:"caption"`
	PageURL string `yaml:"page_url"` // empty = derived from the request host
}

// KioskConfig holds the browser-side kiosk behaviour.
type KioskConfig struct {
	OperatorKey string `yaml:"operator_key"`
	Fullscreen  bool   `yaml:"fullscreen"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
}

// Config aggregates all application configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	Session  SessionConfig  `yaml:"session"`
	Frames   FramesConfig   `yaml:"frames"`
	Gallery  GalleryConfig  `yaml:"gallery"`
	Share    ShareConfig    `yaml:"share"`
	Kiosk    KioskConfig    `yaml:"kiosk"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath rejects paths that are empty, not .yaml, or not located
// directly inside a "configs" directory after cleaning.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	clean := filepath.Clean(path)
	if filepath.Ext(clean) != ".yaml" {
		return fmt.Errorf("config file must have .yaml extension: %s", path)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config file must be inside a configs/ directory: %s", path)
	}
	return nil
}

// MaxConfigFileBytes bounds the size of a config file accepted by Load.
const MaxConfigFileBytes = 1 << 20

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, suitable for
// development on a PC (mock camera, mock GPIO).
func Default() *Config {
	cfg := &Config{
		Camera: CameraConfig{Type: "mock"},
		GPIO:   GPIOConfig{Mock: true},
		Kiosk:  KioskConfig{Fullscreen: true},
	}
	_ = cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() error {
	switch c.Camera.Type {
	case "":
		return fmt.Errorf("camera.type is required")
	case "rpicam", "mock":
	default:
		return fmt.Errorf("unsupported camera type: %s", c.Camera.Type)
	}
	if c.Camera.Command == "" {
		c.Camera.Command = "rpicam-vid"
	}
	if c.Camera.WidthPx <= 0 {
		c.Camera.WidthPx = 1280
	}
	if c.Camera.HeightPx <= 0 {
		c.Camera.HeightPx = 720
	}
	if c.Camera.Framerate <= 0 {
		c.Camera.Framerate = 15
	}

	if c.GPIO.ButtonPollMs <= 0 {
		c.GPIO.ButtonPollMs = 20
	}

	if c.Session.MaxPhotoCount <= 0 {
		c.Session.MaxPhotoCount = 10
	}
	if c.Session.DefaultPhotoCount <= 0 {
		c.Session.DefaultPhotoCount = 3
	}
	if c.Session.DefaultPhotoCount > c.Session.MaxPhotoCount {
		return fmt.Errorf("session.default_photo_count must be <= max_photo_count (%d), got %d",
			c.Session.MaxPhotoCount, c.Session.DefaultPhotoCount)
	}
	if c.Session.CountdownSeconds <= 0 {
		c.Session.CountdownSeconds = 3
	}
	if c.Session.TickMs <= 0 {
		c.Session.TickMs = 1000
	}
	if c.Session.FlashMs <= 0 {
		c.Session.FlashMs = 200
	}
	if c.Session.PreviewTimeoutS <= 0 {
		c.Session.PreviewTimeoutS = 30
	}
	if len(c.Session.Filters) == 0 {
		c.Session.Filters = []string{"none", "grayscale", "sepia", "invert"}
	}

	if c.Frames.Dir == "" {
		c.Frames.Dir = "frames"
	}
	if c.Frames.Names == nil {
		c.Frames.Names = []string{"frame1.png", "frame2.png"}
	}
	for _, name := range c.Frames.Names {
		if name == "" || filepath.Base(name) != name {
			return fmt.Errorf("frames.names entries must be plain file names, got %q", name)
		}
	}

	if c.Gallery.DBPath == "" {
		c.Gallery.DBPath = filepath.Join("data", "boothgo.db")
	}
	if c.Share.Caption == "" {
		c.Share.Caption = "Check out my photos!"
	}
	if c.Kiosk.OperatorKey == "" {
		c.Kiosk.OperatorKey = "o"
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

// Tick returns the countdown tick period.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Session.TickMs) * time.Millisecond
}

// FlashDuration returns how long the flash effect stays on.
func (c *Config) FlashDuration() time.Duration {
	return time.Duration(c.Session.FlashMs) * time.Millisecond
}

// PreviewTimeout returns the delay before the preview screen returns to idle.
func (c *Config) PreviewTimeout() time.Duration {
	return time.Duration(c.Session.PreviewTimeoutS) * time.Second
}

// ButtonPoll returns the button sampling period.
func (c *Config) ButtonPoll() time.Duration {
	return time.Duration(c.GPIO.ButtonPollMs) * time.Millisecond
}

// FramePath returns the asset path of a frame overlay.
func (c *Config) FramePath(name string) string {
	return filepath.Join(c.Frames.Dir, name)
}
