package web2pdf

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.0
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions for the print command.
type PageSettings struct {
	Size            string  // "letter", "a4", "legal"
	Orientation     string  // "portrait", "landscape"
	Margin          float64 // inches, applied to all sides
	PrintBackground bool    // render background colors and images
	Scale           float64 // 0 = engine default (1.0)
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:            PageSizeA4,
		Orientation:     OrientationPortrait,
		Margin:          DefaultMargin,
		PrintBackground: true,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: page size %q", ErrInvalidArgument, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: orientation %q", ErrInvalidArgument, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: margin %.2f (must be between %.2f and %.2f)", ErrInvalidArgument, p.Margin, MinMargin, MaxMargin)
	}

	if p.Scale < 0 || p.Scale > 2 {
		return fmt.Errorf("%w: scale %.2f (must be between 0 and 2)", ErrInvalidArgument, p.Scale)
	}

	return nil
}

// paperDimensions returns paper width and height in inches, swapped for
// landscape orientation.
func (p *PageSettings) paperDimensions() (width, height float64) {
	width, height = 8.5, 11 // letter
	switch strings.ToLower(p.Size) {
	case PageSizeA4:
		width, height = 8.27, 11.69
	case PageSizeLegal:
		width, height = 8.5, 14
	}
	if strings.ToLower(p.Orientation) == OrientationLandscape {
		width, height = height, width
	}
	return width, height
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case "", PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case "", OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// DefaultWaitTimeout bounds the wait-for-signal poll loop when the
// request does not specify one.
const DefaultWaitTimeout = 60 * time.Second

// Request contains the parameters of one conversion. A Request is
// immutable once the conversion begins.
type Request struct {
	// URL is the input locator: an http(s) URL or a local file path.
	URL string

	// Page configures the print command. Nil means defaults.
	Page *PageSettings

	// TextEncoding is the IANA charset name of a local text input that
	// gets wrapped as HTML. Empty means UTF-8.
	TextEncoding string

	// WaitCondition, when non-empty, is the expected value of the
	// page-global window.status. The converter polls for it before
	// rendering; a timeout is non-fatal.
	WaitCondition string

	// WaitTimeout bounds the wait-for-signal poll loop.
	// Zero means DefaultWaitTimeout.
	WaitTimeout time.Duration

	// Timeout is the overall conversion deadline, checked cooperatively
	// between phases. Zero means unbounded. Time spent in the
	// wait-for-signal phase does not count against it.
	Timeout time.Duration
}

// waitTimeout returns the effective wait-for-signal timeout.
func (r *Request) waitTimeout() time.Duration {
	if r.WaitTimeout > 0 {
		return r.WaitTimeout
	}
	return DefaultWaitTimeout
}

// Identity is a credential under which the engine process is launched.
// Domain is meaningful on Windows only; on unix the Username is resolved
// to uid/gid credentials.
type Identity struct {
	Domain   string
	Username string
	Password string
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	chromePath    string
	tempDir       string
	wrapExts      []string
	imageHandling bool
	imageResize   bool
	callTimeout   time.Duration
}

// defaultCallTimeout bounds individual control-channel calls when no
// overall request timeout is configured.
const defaultCallTimeout = 2 * time.Minute

// defaultWrapExts are the local-file extensions wrapped as text before
// conversion.
var defaultWrapExts = []string{".md", ".markdown", ".txt", ".log"}

// WithChromePath sets an explicit path to the engine executable,
// bypassing discovery.
func WithChromePath(path string) Option {
	return func(c *Converter) { c.cfg.chromePath = path }
}

// WithTempDir sets the directory for temporary pre-processing artifacts.
// Defaults to the system temp directory.
func WithTempDir(dir string) Option {
	return func(c *Converter) { c.cfg.tempDir = dir }
}

// WithWrapExtensions replaces the list of file extensions wrapped as
// text (each including the leading dot).
func WithWrapExtensions(exts ...string) Option {
	return func(c *Converter) { c.cfg.wrapExts = exts }
}

// WithImageHandling enables image input validation, with optional
// downscaling to the printable page width.
func WithImageHandling(resize bool) Option {
	return func(c *Converter) {
		c.cfg.imageHandling = true
		c.cfg.imageResize = resize
	}
}

// WithCallTimeout bounds individual control-channel calls made without
// an overall request timeout. Panics if d <= 0 (programmer error,
// similar to time.NewTicker).
func WithCallTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("web2pdf: WithCallTimeout duration must be positive")
	}
	return func(c *Converter) { c.cfg.callTimeout = d }
}

// WithLogger injects a logger. Each converter logs under its own
// instance identifier; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) { c.baseLogger = logger }
}
