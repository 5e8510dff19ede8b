package log

import (
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	consoleTimeFormat = "15:04:05"

	// "goroutine 123 [running]:" fits comfortably.
	stackBufSize       = 32
	goroutinePrefixLen = len("goroutine ")
)

var (
	Logger    zerolog.Logger
	level     = zerolog.InfoLevel
	stackBufs = sync.Pool{New: func() interface{} { return make([]byte, stackBufSize) }}
)

// goroutineID parses the current goroutine number from the first stack line.
func goroutineID() string {
	buf, ok := stackBufs.Get().([]byte)
	if !ok {
		return "unknown"
	}
	defer stackBufs.Put(buf) //nolint:staticcheck // buf is a slice, this is the correct usage

	n := runtime.Stack(buf, false)
	end := goroutinePrefixLen
	for end < n && buf[end] >= '0' && buf[end] <= '9' {
		end++
	}

	if end == goroutinePrefixLen {
		return "unknown"
	}
	return string(buf[goroutinePrefixLen:end])
}

var goidHook = zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("goid", goroutineID())
})

func init() {
	// Console output on stderr keeps stdout free for anything piped from the binary.
	SetOutput(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: consoleTimeFormat,
	})
}

// SetOutput rebuilds the logger on top of the given writer, preserving the current level.
// Passing a plain writer (a file, a buffer) yields JSON lines.
func SetOutput(out io.Writer) {
	Logger = zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger().
		Hook(goidHook)

	log.Logger = Logger
}

// SetLevel parses a level name (debug, info, warn, error) and applies it.
// Unknown names fall back to info.
func SetLevel(name string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	level = parsed
	Logger = Logger.Level(level)
	log.Logger = Logger
}

// SetDebugMode switches the logger to debug level.
func SetDebugMode() {
	SetLevel(zerolog.LevelDebugValue)
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Info starts an info level event.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Error starts an error level event.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Warn starts a warning level event.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Debug starts a debug level event.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Fatal starts a fatal event; sending it exits the process.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
