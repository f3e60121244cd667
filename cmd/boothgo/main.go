package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cjeanneret/BoothGo/internal/booth"
	"github.com/cjeanneret/BoothGo/internal/config"
	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/gallery"
	"github.com/cjeanneret/BoothGo/internal/hw/button"
	"github.com/cjeanneret/BoothGo/internal/hw/camera"
	"github.com/cjeanneret/BoothGo/internal/hw/flash"
	"github.com/cjeanneret/BoothGo/internal/hw/gpio"
	"github.com/cjeanneret/BoothGo/internal/imaging"
	"github.com/cjeanneret/BoothGo/internal/sched"
	"github.com/cjeanneret/BoothGo/internal/store"
	"github.com/cjeanneret/BoothGo/internal/web"
)

// CLI flags
var (
	cfgPath    string
	webPort    = &webPortFlag{val: 8080, defaultPort: 8080}
	photoCount int
	debugLevel int
	mockHW     bool
)

var rootCmd = &cobra.Command{
	Use:   "boothgo",
	Short: "Photo booth kiosk",
	Long: `BoothGo drives a photo booth: a live camera preview, a countdown,
frame overlays and filters, a session preview with downloads, and a
persistent gallery. The kiosk page is served over HTTP.

Examples:
  boothgo
  boothgo --web 8980
  boothgo --mock --photo-count 4`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runMain,
}

func init() {
	registerFlags(rootCmd.Flags())
}

func registerFlags(flags *pflag.FlagSet) {
	flags.StringVar(&cfgPath, "config", filepath.Join("configs", "default.yaml"), "path to config file")
	flags.Var(webPort, "web", "web server port")
	flags.IntVar(&photoCount, "photo-count", 0, "override session.default_photo_count")
	flags.IntVar(&debugLevel, "debug", -1, "override defaults.debug_level (0-4)")
	flags.BoolVar(&mockHW, "mock", false, "use the mock camera and mock GPIO")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := config.ValidateConfigPath(cfgPath); err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return fmt.Errorf("invalid CLI override: %w", err)
	}

	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	debug.Step(1, "Initializing GPIO driver")
	debug.Value("Mock GPIO", cfg.GPIO.Mock)
	gpioDriver, err := gpio.NewDriver(cfg.GPIO.Mock)
	if err != nil {
		return fmt.Errorf("init GPIO failed: %w", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	var lamp flash.Lamp = flash.NoLamp{}
	if cfg.GPIO.FlashPin > 0 {
		lamp = flash.NewGPIOLamp(gpioDriver, cfg.GPIO.FlashPin)
		debug.Value("Flash pin", cfg.GPIO.FlashPin)
	}

	debug.Step(2, "Initializing camera")
	cam, err := newCameraFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init camera failed: %w", err)
	}
	debug.PrintStruct("Camera config", cfg.Camera)

	debug.Step(3, "Opening gallery")
	kv, err := store.OpenSQLite(cfg.Gallery.DBPath)
	if err != nil {
		return fmt.Errorf("open gallery store failed: %w", err)
	}
	defer kv.Close()
	g, err := gallery.Open(ctx, kv)
	if err != nil {
		return fmt.Errorf("load gallery failed: %w", err)
	}
	debug.Value("Gallery photos", g.Len())

	frames := imaging.NewFrameSet(cfg.Frames.Dir, cfg.Frames.Names)
	debug.Value("Frames", frames.Names())

	debug.Step(4, "Starting booth")
	broadcaster := web.NewStatusBroadcaster()
	debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

	loop := sched.NewLoop()
	b, err := booth.New(booth.Deps{
		Config:    cfg,
		Scheduler: loop,
		Camera:    cam,
		Frames:    frames,
		Gallery:   g,
		Lamp:      lamp,
		Publisher: broadcaster,
	})
	if err != nil {
		return err
	}
	runner := booth.NewRunner(loop, b)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		runner.Run(ctx)
	}()
	defer func() {
		cancel()
		<-loopDone
	}()

	if cfg.GPIO.ButtonPin > 0 {
		w, err := button.NewWatcher(gpioDriver, cfg.GPIO.ButtonPin, cfg.ButtonPoll())
		if err != nil {
			return fmt.Errorf("init button failed: %w", err)
		}
		go func() {
			err := w.Run(ctx, func() {
				if _, err := runner.Dispatch(ctx, booth.Action{Kind: booth.ActButton}); err != nil && !errors.Is(err, booth.ErrInvalidAction) {
					debug.Error(fmt.Errorf("button: %w", err))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				debug.Error(err)
			}
		}()
	}

	debug.Step(5, "Starting web server")
	handlers := web.NewHandlers(broadcaster, runner, g, frames, cam, web.KioskConfig{
		Frames:            frames.Names(),
		Filters:           cfg.Session.Filters,
		DefaultPhotoCount: cfg.Session.DefaultPhotoCount,
		MaxPhotoCount:     cfg.Session.MaxPhotoCount,
		FlashMs:           cfg.Session.FlashMs,
		OperatorKey:       cfg.Kiosk.OperatorKey,
		Fullscreen:        cfg.Kiosk.Fullscreen,
		Framerate:         cfg.Camera.Framerate,
		ShareCaption:      cfg.Share.Caption,
		SharePageURL:      cfg.Share.PageURL,
	}, nil)
	srv, err := web.NewServer(fmt.Sprintf(":%d", webPort.port()), handlers)
	if err != nil {
		return err
	}
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	debug.Section("Shutdown")
	return nil
}

// applyFlags mutates cfg with the flags the user actually set.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	if flags.Changed("photo-count") {
		n, err := flags.GetInt("photo-count")
		if err != nil {
			return err
		}
		if n < 1 || n > cfg.Session.MaxPhotoCount {
			return fmt.Errorf("photo-count must be between 1 and %d, got %d", cfg.Session.MaxPhotoCount, n)
		}
		cfg.Session.DefaultPhotoCount = n
	}
	if flags.Changed("debug") {
		level, err := flags.GetInt("debug")
		if err != nil {
			return err
		}
		if level < 0 || level > 4 {
			return fmt.Errorf("debug must be between 0 and 4, got %d", level)
		}
		cfg.Defaults.DebugLevel = level
	}
	if mock, _ := flags.GetBool("mock"); mock {
		cfg.Camera.Type = "mock"
		cfg.GPIO.Mock = true
	}
	return nil
}

// webPortFlag implements pflag.Value for --web: --web= → default port, --web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) Type() string { return "port" }

func (w *webPortFlag) port() int { return w.val }

// newCameraFromConfig selects a camera implementation based on configuration.
func newCameraFromConfig(cfg *config.Config) (camera.Camera, error) {
	switch cfg.Camera.Type {
	case "rpicam":
		return camera.NewRPiCam(cfg.Camera.Command, cfg.Camera.WidthPx, cfg.Camera.HeightPx, cfg.Camera.Framerate), nil
	case "mock":
		if cfg.Camera.MockImage != "" {
			return camera.NewMockFromFile(cfg.Camera.MockImage)
		}
		return camera.NewMock(cfg.Camera.WidthPx, cfg.Camera.HeightPx), nil
	default:
		return nil, fmt.Errorf("unsupported camera type: %s", cfg.Camera.Type)
	}
}
