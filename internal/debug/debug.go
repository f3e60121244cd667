package debug

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (session start, gallery commits)
	LevelLive    = 2 // Live info (countdown ticks, photos taken)
	LevelVerbose = 3 // Verbose (screen transitions, surface sizes)
	LevelTrace   = 4 // Trace (GPIO, very low level)
)

var (
	mu     sync.RWMutex
	level  int
	out    io.Writer = os.Stdout
	logger zerolog.Logger
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (session, gallery)
// 2 = live info (countdown, captures)
// 3 = verbose (transitions, image sizes)
// 4 = trace (GPIO, very low level)
func Init(debugLevel int) {
	mu.Lock()
	defer mu.Unlock()
	level = debugLevel
	rebuild()
}

// SetOutput redirects log output (e.g. to an io.MultiWriter that also feeds
// the SSE broadcaster). Must be called after Init.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	rebuild()
}

func rebuild() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: "15:04:05.000"}).
		Level(zerologLevel(level)).
		With().Timestamp().Str("app", "BoothGo").Logger()
}

// zerologLevel maps the 0-4 debug levels onto zerolog levels.
func zerologLevel(l int) zerolog.Level {
	switch {
	case l <= LevelOff:
		return zerolog.Disabled
	case l == LevelInfo:
		return zerolog.InfoLevel
	default:
		// zerolog drops TraceLevel events unless the global level is lowered,
		// so levels 2-4 all log at DebugLevel and are told apart by their tag.
		return zerolog.DebugLevel
	}
}

// Level returns the current debug level.
func Level() int {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return Level() >= minLevel
}

// Logger returns the underlying zerolog logger for structured events.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func emit(minLevel int, ev func(*zerolog.Logger) *zerolog.Event, tag, format string, args ...interface{}) {
	mu.RLock()
	enabled := level >= minLevel
	l := logger
	mu.RUnlock()
	if !enabled {
		return
	}
	e := ev(&l)
	if tag != "" {
		e = e.Str("tag", tag)
	}
	e.Msgf(format, args...)
}

func infoEvent(l *zerolog.Logger) *zerolog.Event  { return l.Info() }
func debugEvent(l *zerolog.Logger) *zerolog.Event { return l.Debug() }
func traceEvent(l *zerolog.Logger) *zerolog.Event { return l.Debug() }
func errorEvent(l *zerolog.Logger) *zerolog.Event { return l.Error() }

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	emit(LevelInfo, infoEvent, "", format, args...)
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	emit(LevelInfo, infoEvent, "summary", "═══ %s ═══", title)
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	emit(LevelLive, debugEvent, "live", format, args...)
}

// Countdown prints a countdown tick (level 2).
func Countdown(remaining int) {
	emit(LevelLive, debugEvent, "live", "Countdown: %d", remaining)
}

// Shot prints a photo capture (level 2).
func Shot(index, total int) {
	emit(LevelLive, debugEvent, "live", "Photo %d/%d captured", index, total)
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	emit(LevelVerbose, debugEvent, "verbose", format, args...)
}

// Printf is an alias for Verbose.
func Printf(format string, args ...interface{}) {
	Verbose(format, args...)
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	emit(LevelVerbose, debugEvent, "verbose", "%s: %+v", name, v)
}

// Section prints a section separator (level 3).
func Section(name string) {
	emit(LevelVerbose, debugEvent, "section", "━━━ %s ━━━", name)
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	emit(LevelVerbose, debugEvent, "verbose", "Step %d: %s", num, description)
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	emit(LevelInfo, infoEvent, "", "  %s = %v", name, value)
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message (trace, GPIO).
func Trace(format string, args ...interface{}) {
	emit(LevelTrace, traceEvent, "trace", format, args...)
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value interface{}) {
	emit(LevelTrace, traceEvent, "gpio", "%s pin=%d value=%v", operation, pin, value)
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if err == nil {
		return
	}
	emit(LevelInfo, errorEvent, "", "%v", err)
}

// Fmt returns a formatted string only if debug is enabled.
func Fmt(format string, args ...interface{}) string {
	if Level() > 0 {
		return fmt.Sprintf(format, args...)
	}
	return ""
}

func init() {
	rebuild()
}
