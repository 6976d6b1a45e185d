package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	web2pdf "github.com/mbrunel/go-web2pdf"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Exit codes for the web2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags or arguments
	ExitIO      = 3 // Input/output path problems
	ExitEngine  = 4 // Engine/control-channel errors
)

// cliFlags holds parsed command-line options.
type cliFlags struct {
	chromePath    string
	pageSize      string
	orientation   string
	margin        float64
	background    bool
	windowSize    string
	userAgent     string
	proxy         string
	encoding      string
	waitCondition string
	waitTimeout   time.Duration
	timeout       time.Duration
	verbose       bool
	version       bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("web2pdf", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: web2pdf [flags] <url-or-file> <output.pdf>\n\nFlags:\n%s", fs.FlagUsages())
	}

	var f cliFlags
	fs.StringVar(&f.chromePath, "chrome", "", "path to the chrome/chromium executable")
	fs.StringVar(&f.pageSize, "page-size", web2pdf.PageSizeA4, "page size: a4, letter, legal")
	fs.StringVar(&f.orientation, "orientation", web2pdf.OrientationPortrait, "orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", web2pdf.DefaultMargin, "page margin in inches")
	fs.BoolVar(&f.background, "background", true, "print background colors and images")
	fs.StringVar(&f.windowSize, "window-size", "", "viewport as WIDTHxHEIGHT, e.g. 1920x1080")
	fs.StringVar(&f.userAgent, "user-agent", "", "user agent override")
	fs.StringVar(&f.proxy, "proxy", "", "proxy spec (scheme://host:port) or 'bypass'")
	fs.StringVar(&f.encoding, "encoding", "", "charset of text inputs (IANA name)")
	fs.StringVar(&f.waitCondition, "wait-condition", "", "window.status value to wait for before rendering")
	fs.DurationVar(&f.waitTimeout, "wait-timeout", web2pdf.DefaultWaitTimeout, "wait-for-signal timeout")
	fs.DurationVar(&f.timeout, "timeout", 2*time.Minute, "overall conversion timeout (0 = none)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(os.Stderr, err)
		return ExitUsage
	}

	if f.version {
		fmt.Println("web2pdf", Version)
		return ExitSuccess
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return ExitUsage
	}
	input, output := fs.Arg(0), fs.Arg(1)

	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS env,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	logger := zap.NewNop()
	if f.verbose {
		var err error
		logger, err = zap.NewDevelopmentConfig().Build()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return ExitGeneral
		}
		defer func() { _ = logger.Sync() }()
	}

	if err := convert(input, output, f, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func convert(input, output string, f cliFlags, logger *zap.Logger) error {
	opts := []web2pdf.Option{web2pdf.WithLogger(logger)}
	if f.chromePath != "" {
		opts = append(opts, web2pdf.WithChromePath(f.chromePath))
	}

	conv := web2pdf.NewConverter(opts...)
	defer func() { _ = conv.Close() }()

	if f.userAgent != "" {
		if err := conv.SetUserAgent(f.userAgent); err != nil {
			return err
		}
	}
	if f.proxy != "" {
		if err := conv.SetProxy(f.proxy); err != nil {
			return err
		}
	}
	if f.windowSize != "" {
		width, height, err := parseWindowSize(f.windowSize)
		if err != nil {
			return err
		}
		if err := conv.SetWindowSize(width, height); err != nil {
			return err
		}
	}

	req := web2pdf.Request{
		URL: input,
		Page: &web2pdf.PageSettings{
			Size:            f.pageSize,
			Orientation:     f.orientation,
			Margin:          f.margin,
			PrintBackground: f.background,
		},
		TextEncoding:  f.encoding,
		WaitCondition: f.waitCondition,
		WaitTimeout:   f.waitTimeout,
		Timeout:       f.timeout,
	}

	return conv.ConvertFile(context.Background(), req, output)
}

// parseWindowSize splits a WIDTHxHEIGHT spec.
func parseWindowSize(s string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid window size %q (want WIDTHxHEIGHT)", s)
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid window width %q", parts[0])
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid window height %q", parts[1])
	}
	return width, height, nil
}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Engine errors (exit 4)
	if errors.Is(err, web2pdf.ErrEngineNotFound) ||
		errors.Is(err, web2pdf.ErrEngineStartFailed) ||
		errors.Is(err, web2pdf.ErrEngineCrashed) ||
		errors.Is(err, web2pdf.ErrChannelConnect) ||
		errors.Is(err, web2pdf.ErrPageLoad) ||
		errors.Is(err, web2pdf.ErrPDFGeneration) ||
		errors.Is(err, web2pdf.ErrConversionTimedOut) {
		return ExitEngine
	}

	// I/O errors (exit 3)
	if errors.Is(err, web2pdf.ErrInputNotFound) ||
		errors.Is(err, web2pdf.ErrOutputPathInvalid) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage errors (exit 2)
	if errors.Is(err, web2pdf.ErrInvalidArgument) ||
		errors.Is(err, web2pdf.ErrProxyConfig) ||
		errors.Is(err, web2pdf.ErrSessionStarted) {
		return ExitUsage
	}

	return ExitGeneral
}
