package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/whisper-darkly/recfetch/fetch"
	_ "github.com/whisper-darkly/recfetch/firmware" // register firmware adapters
	"github.com/whisper-darkly/recfetch/logger"
	"github.com/whisper-darkly/recfetch/units"
)

// Set via ldflags at build time: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Optional .env next to the binary/cwd; flags and real env still win.
	_ = godotenv.Load()

	// Per-host options. The Nth host uses the Nth value of each list; a
	// short list broadcasts its last value to the remaining hosts.
	hosts := flag.StringArrayP("host", "H", nil, "Camera host (repeatable, required)")
	firmwares := flag.StringArrayP("firmware", "F", []string{envOrDefault("RECFETCH_FIRMWARE", "hi3510")}, "Firmware name per host (hi3510, reolink)")
	usernames := flag.StringArrayP("username", "u", splitList(os.Getenv("RECFETCH_USERNAME")), "Username per host")
	passwords := flag.StringArrayP("password", "p", splitList(os.Getenv("RECFETCH_PASSWORD")), "Password per host")
	useSSL := flag.BoolSlice("ssl", nil, "Use HTTPS per host")

	// Fetch options.
	dateStart := flag.StringP("date-start", "d", envOrDefault("RECFETCH_DATE_START", ""), "First date to fetch (YYYYMMDD, default today)")
	dateEnd := flag.StringP("date-end", "D", envOrDefault("RECFETCH_DATE_END", ""), "Last date to fetch (YYYYMMDD, default date-start)")
	timeStart := flag.StringP("time-start", "t", envOrDefault("RECFETCH_TIME_START", ""), "Start time filter (HHMMSS, partial precision ok: 13 = 130000)")
	timeEnd := flag.StringP("time-end", "T", envOrDefault("RECFETCH_TIME_END", ""), "End time filter (HHMMSS, partial precision ok)")
	lastMinutes := flag.IntP("last-minutes", "m", 0, "Fetch the last N minutes instead of a date range")
	startDelay := flag.String("start-delay", "", "Wait before fetching (minutes, hh:mm:ss or Go duration)")
	separate := flag.BoolP("separate-by-date", "s", false, "Produce one output file per date instead of one per host")

	targetDir := flag.StringP("target-dir", "o", envOrDefault("RECFETCH_TARGET_DIR", "."), "Directory for output files")
	fileType := flag.String("file-type", envOrDefault("RECFETCH_FILE_TYPE", "mp4"), "Output container format")
	prefix := flag.String("prefix", envOrDefault("RECFETCH_PREFIX", ""), "Output filename prefix")
	fileNames := flag.StringArrayP("filename", "n", nil, "Explicit output filename per host (disables derivation)")
	filters := flag.StringArrayP("video-filter", "v", nil, "ffmpeg video filter expression (repeatable, forces re-encode)")

	limitRate := flag.String("limit-rate", envOrDefault("RECFETCH_LIMIT_RATE", ""), "Download bandwidth cap (bytes/s, K/M/G suffix ok)")
	logPath := flag.String("log", envOrDefault("RECFETCH_LOG", ""), "Log file path (empty=stdout only)")
	logLevel := flag.String("log-level", envOrDefault("RECFETCH_LOG_LEVEL", "info"), "Log level: debug, info, warn, error, fatal")
	outputFormat := flag.String("output-format", envOrDefault("RECFETCH_OUTPUT_FORMAT", "normal"), "Output format: normal, json")
	showVersion := flag.BoolP("version", "V", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "recfetch %s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: %s [command] [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch recorded video segments off IP cameras and merge them into files.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  fetch   download records in range and assemble output files (default)\n")
		fmt.Fprintf(os.Stderr, "  list    print the recorded dates and record ranges, download nothing\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPer-host flags repeat positionally; the last value broadcasts.\n")
	}

	if len(os.Args) == 1 {
		flag.Usage()
		os.Exit(0)
	}

	flag.Parse()

	if *showVersion {
		fmt.Println("recfetch", version)
		os.Exit(0)
	}

	command := "fetch"
	if flag.NArg() > 0 {
		command = strings.ToLower(flag.Arg(0))
	}

	log := logger.New(logger.ParseLevel(*logLevel))
	log.SetFormat(logger.ParseFormat(*outputFormat))

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatal("open log file: %v", err)
		}
		defer f.Close()
		log.SetFile(f)
	}

	if len(*hosts) == 0 {
		if env := splitList(os.Getenv("RECFETCH_HOST")); len(env) > 0 {
			*hosts = env
		} else {
			log.Fatal("--host is required")
		}
	}

	cfg := fetch.Config{
		Hosts:     *hosts,
		Firmwares: *firmwares,
		Usernames: *usernames,
		Passwords: *passwords,
		UseSSL:    *useSSL,

		DateStart: *dateStart,
		DateEnd:   *dateEnd,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,

		LastMinutes:    *lastMinutes,
		SeparateByDate: *separate,

		TargetDir: *targetDir,
		FileType:  *fileType,
		Prefix:    *prefix,
		FileNames: *fileNames,
		Filters:   *filters,

		Log: log,
	}

	if *startDelay != "" {
		d, err := units.ParseDuration(*startDelay)
		if err != nil {
			log.Fatal("invalid --start-delay: %v", err)
		}
		cfg.StartDelay = d
	}
	if *limitRate != "" {
		r, err := units.ParseRate(*limitRate)
		if err != nil {
			log.Fatal("invalid --limit-rate: %v", err)
		}
		cfg.LimitRate = r
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn("received %v, shutting down...", sig)
		cancel()
	}()

	f := fetch.New(cfg)

	switch command {
	case "fetch":
		os.Exit(f.Run(ctx))
	case "list":
		os.Exit(f.List(ctx))
	default:
		log.Fatal("unknown command %q (expected fetch or list)", command)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList turns a comma-separated env value into a list default for a
// repeatable flag. Empty input yields nil, not [""].
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
