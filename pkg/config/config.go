// Package config builds the sampler configuration from flags and RESSAMPLE_* environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix = "RESSAMPLE_"

	DefaultSleepSeconds = 10.0
	DefaultValkeyStream = "ressample"
	DefaultLogLevel     = "info"
)

// Config is the resolved process configuration.
type Config struct {
	SleepTime      time.Duration
	DiskPaths      []string
	Output         string
	Append         bool
	Samples        uint64
	Addr           string
	PushURL        string
	ValkeyAddr     string
	ValkeyStream   string
	ValkeyPassword string
	LogLevel       string
	Debug          bool
}

// pathList collects repeated -d flags.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

// Load reads an optional .env file and parses os.Args-style arguments (without the program name).
func Load(args []string) (*Config, error) {
	// A missing .env is normal; the environment alone is enough.
	_ = godotenv.Load()
	return Parse(args, os.Getenv, os.Stderr)
}

// Parse builds a Config from args, using getenv for defaults. Usage and parse
// errors are written to out.
func Parse(args []string, getenv func(string) string, out io.Writer) (*Config, error) {
	env := func(name string) string {
		return strings.TrimSpace(getenv(envPrefix + name))
	}

	defaultSleep := DefaultSleepSeconds
	if raw := env("SLEEP_TIME"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %sSLEEP_TIME=%q", ErrInvalidInterval, envPrefix, raw)
		}
		defaultSleep = parsed
	}

	cfg := &Config{}
	var (
		sleepSeconds float64
		diskPaths    pathList
	)

	fs := flag.NewFlagSet("ressample", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ressample [flags] <output_file> [flags]\n\n")
		fs.PrintDefaults()
	}

	fs.Float64Var(&sleepSeconds, "t", defaultSleep, "Seconds between samples (shorthand)")
	fs.Float64Var(&sleepSeconds, "sleep-time", defaultSleep, "Seconds between samples")
	fs.Var(&diskPaths, "d", "Path whose volume is tracked, repeatable (shorthand)")
	fs.Var(&diskPaths, "disk-path", "Path whose volume is tracked, repeatable")
	fs.BoolVar(&cfg.Append, "append", false, "Append to an existing CSV instead of truncating it")
	fs.Uint64Var(&cfg.Samples, "samples", 0, "Stop after this many samples (0 runs until interrupted)")
	fs.StringVar(&cfg.Addr, "addr", env("ADDR"), "Status server listen address (empty disables it)")
	fs.StringVar(&cfg.PushURL, "push-url", env("PUSH_URL"), "Also POST each snapshot as JSON to this URL (synchronous: an unreachable endpoint delays each sample by up to 10s)")
	fs.StringVar(&cfg.ValkeyAddr, "valkey-addr", env("VALKEY_ADDR"), "Also XADD each snapshot to Valkey at this address")
	fs.StringVar(&cfg.ValkeyStream, "valkey-stream", orDefault(env("VALKEY_STREAM"), DefaultValkeyStream), "Valkey stream key")
	fs.StringVar(&cfg.LogLevel, "log-level", orDefault(env("LOG_LEVEL"), DefaultLogLevel), "Log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, err
	}

	cfg.ValkeyPassword = getenv(envPrefix + "VALKEY_PASSWORD")

	interval, err := secondsToDuration(sleepSeconds)
	if err != nil {
		return nil, err
	}
	cfg.SleepTime = interval

	cfg.DiskPaths = diskPaths
	if len(cfg.DiskPaths) == 0 {
		cfg.DiskPaths = splitPaths(env("DISK_PATHS"))
	}

	switch len(positional) {
	case 0:
		return nil, ErrMissingOutput
	case 1:
		cfg.Output = positional[0]
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedArgs, strings.Join(positional[1:], " "))
	}

	return cfg, nil
}

// parseInterspersed lets flags follow positional arguments, which the flag
// package alone stops at. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}

		remaining := fs.Args()
		if len(remaining) == 0 {
			return positional, nil
		}

		if consumed := len(rest) - len(remaining); consumed > 0 && rest[consumed-1] == "--" {
			return append(positional, remaining...), nil
		}

		positional = append(positional, remaining[0])
		rest = remaining[1:]
	}
}

func secondsToDuration(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInterval, seconds)
	}

	d := time.Duration(seconds * float64(time.Second))
	if d <= 0 {
		return 0, fmt.Errorf("%w: %v is below one nanosecond", ErrInvalidInterval, seconds)
	}
	return d, nil
}

// splitPaths accepts both comma and OS list separators.
func splitPaths(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == filepath.ListSeparator
	})

	paths := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			paths = append(paths, f)
		}
	}
	return paths
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
