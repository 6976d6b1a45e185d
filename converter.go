package web2pdf

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbrunel/go-web2pdf/internal/fileutil"
)

// waitStatusExpr reads the page-global status flag polled by the
// wait-for-signal phase.
const waitStatusExpr = `() => String(window.status)`

// waitPollInterval is the fixed delay between wait-for-signal polls.
const waitPollInterval = 100 * time.Millisecond

// ProxyBypass is the literal proxy spec meaning "no proxy".
const ProxyBypass = "bypass"

// proxyConfig holds the proxy surface set before launch. The spec string
// is validated lazily at first engine start.
type proxyConfig struct {
	spec       string
	bypassList string
	pacURL     string
	domain     string
	user       string
	password   string
}

// auth returns the proxy credentials, if configured. A configured domain
// qualifies the username in DOMAIN\user form for NTLM-style proxies.
func (p *proxyConfig) auth() (user, password string, ok bool) {
	if p.user == "" {
		return "", "", false
	}
	user = p.user
	if p.domain != "" {
		user = p.domain + `\` + p.user
	}
	return user, p.password, true
}

// engineSupervisor is the orchestrator's view of the process
// supervisor: bring up one engine process and obtain a control-channel
// address, or fail deterministically.
type engineSupervisor interface {
	Alive() bool
	Start(binary string, args []string, identity *Identity) (string, error)
	CrashError() error
	Stop()
}

// Compile-time interface check.
var _ engineSupervisor = (*Supervisor)(nil)

// Converter is the conversion session orchestrator. It owns the engine
// process lifecycle, the control-channel handshake, the pre-launch
// configuration surface, and the per-request deadline discipline.
//
// A Converter serves one conversion at a time; callers must serialize
// access. The engine process launched by the first conversion is reused
// by subsequent ones until Close.
type Converter struct {
	cfg        converterConfig
	baseLogger *zap.Logger
	log        *zap.SugaredLogger
	id         string

	args     *ArgSet
	proxy    proxyConfig
	identity *Identity

	supervisor engineSupervisor
	channel    ControlChannel
	timer      *CountdownTimer

	wrapper  TextWrapper
	imagePre ImagePreprocessor

	// test seams
	locate func(string) (string, error)
	dial   func(endpoint string, logger *zap.Logger, authUser, authPassword string) (ControlChannel, error)

	// artifact left behind if a conversion's cleanup was skipped by a
	// crash; removed best-effort on Close.
	artifact string

	closed bool
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithLogger, WithChromePath).
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			wrapExts:    defaultWrapExts,
			callTimeout: defaultCallTimeout,
		},
		id:     newInstanceID(),
		args:   newArgSet(),
		timer:  NewCountdownTimer(),
		locate: resolveEnginePath,
	}

	for _, opt := range opts {
		opt(c)
	}

	logger := instanceLogger(c.baseLogger, c.id)
	c.log = logger.Sugar()
	c.supervisor = NewSupervisor(logger)
	c.args.live = c.supervisor.Alive

	if c.wrapper == nil {
		c.wrapper = newMarkupWrapper(c.cfg.tempDir)
	}
	if c.imagePre == nil {
		c.imagePre = newRasterPreprocessor(c.cfg.tempDir)
	}
	if c.dial == nil {
		c.dial = func(endpoint string, logger *zap.Logger, authUser, authPassword string) (ControlChannel, error) {
			return dialChannel(endpoint, logger, authUser, authPassword)
		}
	}

	return c
}

// InstanceID returns the converter's correlation identifier.
func (c *Converter) InstanceID() string { return c.id }

// EngineAlive reports whether the converter currently holds a live
// engine process.
func (c *Converter) EngineAlive() bool { return c.supervisor.Alive() }

// Args exposes the launch argument set for advanced tuning. Mutations of
// value-bearing switches fail once the engine is live.
func (c *Converter) Args() *ArgSet { return c.args }

// ---------------------------------------------------------------------------
// Pre-launch configuration surface
// ---------------------------------------------------------------------------

// SetProxy sets the proxy specification (scheme://host:port) or the
// ProxyBypass token meaning "no proxy". The spec is validated at first
// engine start, not here.
func (c *Converter) SetProxy(spec string) error {
	if c.supervisor.Alive() {
		return fmt.Errorf("%w: cannot change proxy", ErrSessionStarted)
	}
	c.proxy.spec = spec
	return nil
}

// SetProxyBypassList sets the semicolon-separated host patterns excluded
// from proxying.
func (c *Converter) SetProxyBypassList(list string) error {
	if c.supervisor.Alive() {
		return fmt.Errorf("%w: cannot change proxy bypass list", ErrSessionStarted)
	}
	c.proxy.bypassList = list
	return nil
}

// SetProxyPACURL sets a proxy auto-configuration script URL.
func (c *Converter) SetProxyPACURL(pacURL string) error {
	if c.supervisor.Alive() {
		return fmt.Errorf("%w: cannot change proxy PAC URL", ErrSessionStarted)
	}
	c.proxy.pacURL = pacURL
	return nil
}

// SetProxyCredentials sets proxy credentials. The user part accepts the
// DOMAIN\user form, split into domain and user.
func (c *Converter) SetProxyCredentials(domainUser, password string) error {
	if c.supervisor.Alive() {
		return fmt.Errorf("%w: cannot change proxy credentials", ErrSessionStarted)
	}
	c.proxy.domain, c.proxy.user = splitDomainUser(domainUser)
	c.proxy.password = password
	return nil
}

// SetUserAgent overrides the engine's user agent string.
func (c *Converter) SetUserAgent(ua string) error {
	return c.args.SetValue("user-agent", ua)
}

// SetWindowSize sets the engine viewport to explicit dimensions.
func (c *Converter) SetWindowSize(width, height int) error {
	value, err := windowSizeValue(width, height)
	if err != nil {
		return err
	}
	return c.args.SetValue("window-size", value)
}

// SetWindowPreset sets the engine viewport to a named preset such as
// PresetFullHD.
func (c *Converter) SetWindowPreset(preset string) error {
	value, err := windowPresetValue(preset)
	if err != nil {
		return err
	}
	return c.args.SetValue("window-size", value)
}

// SetRunAs launches the engine under the given identity (unix only).
func (c *Converter) SetRunAs(identity Identity) error {
	if c.supervisor.Alive() {
		return fmt.Errorf("%w: cannot change run-as identity", ErrSessionStarted)
	}
	c.identity = &identity
	return nil
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// Convert renders the request's input to PDF and writes the bytes to w.
// Phases run strictly in order: pre-processing, engine start, navigation,
// optional wait-for-signal, rendering, cleanup. The request's overall
// timeout is checked cooperatively between phases; the wait-for-signal
// phase is exempted from it.
func (c *Converter) Convert(ctx context.Context, req Request, w io.Writer) error {
	pdf, err := c.convert(ctx, req)
	if err != nil {
		return err
	}
	if _, err := w.Write(pdf); err != nil {
		return fmt.Errorf("writing PDF output: %w", err)
	}
	return nil
}

// ConvertFile renders the request's input to PDF at outputPath. The
// destination directory must exist before the conversion starts.
func (c *Converter) ConvertFile(ctx context.Context, req Request, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if !fileutil.DirExists(dir) {
		return fmt.Errorf("%w: %s", ErrOutputPathInvalid, dir)
	}

	pdf, err := c.convert(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, pdf, 0o644); err != nil { // #nosec G306 -- PDF output is not sensitive
		return fmt.Errorf("writing PDF file: %w", err)
	}
	return nil
}

func (c *Converter) convert(ctx context.Context, req Request) ([]byte, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("%w: empty input locator", ErrInvalidArgument)
	}
	if err := req.Page.Validate(); err != nil {
		return nil, err
	}

	c.log.Debugw("conversion starting", "input", req.URL)

	// PreProcessing
	locator, cleanup, err := c.preprocess(req)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		// Cleanup always runs, success or failure.
		defer func() {
			cleanup()
			c.artifact = ""
		}()
	}

	timed := req.Timeout > 0
	if timed {
		c.timer.Start(req.Timeout)
	}

	// EngineStarting
	if err := c.ensureSession(); err != nil {
		return nil, err
	}
	if err := c.checkpoint(ctx, timed); err != nil {
		return nil, err
	}

	// Navigating
	if err := c.channel.Navigate(locator, c.callDeadline(timed)); err != nil {
		return nil, c.orCrash(err)
	}
	if err := c.checkpoint(ctx, timed); err != nil {
		return nil, err
	}

	// WaitingForSignal: exempt from the overall budget, never fatal.
	if req.WaitCondition != "" {
		if timed {
			c.timer.Stop()
		}
		err := c.waitForSignal(ctx, req.WaitCondition, req.waitTimeout())
		if timed {
			c.timer.Resume()
		}
		if err != nil {
			return nil, err
		}
		if err := c.checkpoint(ctx, timed); err != nil {
			return nil, err
		}
	}

	// Rendering
	pdf, err := c.channel.PrintToPDF(req.Page, c.callDeadline(timed))
	if err != nil {
		return nil, c.orCrash(err)
	}
	if err := c.checkpoint(ctx, timed); err != nil {
		return nil, err
	}

	c.log.Infow("conversion done", "input", req.URL, "bytes", len(pdf))
	return pdf, nil
}

// preprocess resolves the effective input locator, substituting a
// temporary artifact for inputs that need wrapping or image handling.
// Wrap-as-text takes precedence; at most one substitution happens.
func (c *Converter) preprocess(req Request) (locator string, cleanup func(), err error) {
	if fileutil.IsURL(req.URL) {
		return req.URL, nil, nil
	}

	path, err := filepath.Abs(req.URL)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrInputNotFound, req.URL)
	}
	if !fileutil.FileExists(path) {
		return "", nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}

	switch {
	case hasExtension(path, c.cfg.wrapExts):
		htmlPath, cl, err := c.wrapper.Wrap(path, req.TextEncoding)
		if err != nil {
			return "", nil, err
		}
		c.artifact = htmlPath
		c.log.Debugw("input wrapped as text", "input", path, "artifact", htmlPath)
		return fileURL(htmlPath), cl, nil

	case c.cfg.imageHandling && isImagePath(path):
		changed, newPath, cl, err := c.imagePre.ValidateAndTransform(path, c.cfg.imageResize, req.Page)
		if err != nil {
			return "", nil, err
		}
		if changed {
			c.artifact = newPath
			c.log.Debugw("image input transformed", "input", path, "artifact", newPath)
			return fileURL(newPath), cl, nil
		}
	}

	return fileURL(path), nil, nil
}

// ensureSession brings up the engine process and control channel, or
// reuses the live pair from a previous conversion.
func (c *Converter) ensureSession() error {
	if c.supervisor.Alive() && c.channel != nil {
		c.log.Debug("reusing live engine session")
		return nil
	}

	binary, err := c.locate(c.cfg.chromePath)
	if err != nil {
		return err
	}

	if err := c.applyProxyFlags(); err != nil {
		return err
	}

	endpoint, err := c.supervisor.Start(binary, c.args.List(), c.identity)
	if err != nil {
		return err
	}

	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}

	user, password, _ := c.proxy.auth()
	channel, err := c.dial(endpoint, instanceLogger(c.baseLogger, c.id), user, password)
	if err != nil {
		return err
	}
	c.channel = channel
	return nil
}

// applyProxyFlags validates the deferred proxy surface and folds it into
// the argument set. Called only while the engine is down.
func (c *Converter) applyProxyFlags() error {
	if c.proxy.spec != "" {
		if strings.EqualFold(c.proxy.spec, ProxyBypass) {
			c.args.Set("no-proxy-server")
		} else {
			u, err := url.Parse(c.proxy.spec)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("%w: %q", ErrProxyConfig, c.proxy.spec)
			}
			if err := c.args.SetValue("proxy-server", c.proxy.spec); err != nil {
				return err
			}
		}
	}

	if c.proxy.bypassList != "" {
		if err := c.args.SetValue("proxy-bypass-list", c.proxy.bypassList); err != nil {
			return err
		}
	}

	if c.proxy.pacURL != "" {
		u, err := url.Parse(c.proxy.pacURL)
		if err != nil || u.Scheme == "" {
			return fmt.Errorf("%w: PAC URL %q", ErrProxyConfig, c.proxy.pacURL)
		}
		if err := c.args.SetValue("proxy-pac-url", c.proxy.pacURL); err != nil {
			return err
		}
	}

	return nil
}

// waitForSignal polls the page-global status flag until it equals the
// wait condition or the wait timeout elapses. Timeout is not an error;
// the outcome is observable through logging only. Engine crash and
// context cancellation abort the wait.
func (c *Converter) waitForSignal(ctx context.Context, condition string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if crash := c.supervisor.CrashError(); crash != nil {
			return crash
		}

		value, err := c.channel.EvaluateScript(waitStatusExpr)
		if err != nil {
			if crash := c.supervisor.CrashError(); crash != nil {
				return crash
			}
			c.log.Debugw("wait-for-signal evaluation failed", "error", err)
		} else if value == condition {
			c.log.Infow("wait condition matched", "condition", condition)
			return nil
		}

		if time.Now().After(deadline) {
			c.log.Infow("wait condition timed out, proceeding", "condition", condition, "timeout", timeout)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitPollInterval):
		}
	}
}

// checkpoint enforces the cooperative deadline between phases.
func (c *Converter) checkpoint(ctx context.Context, timed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if crash := c.supervisor.CrashError(); crash != nil {
		return crash
	}
	if timed && c.timer.Expired() {
		return fmt.Errorf("%w: overall budget exhausted", ErrConversionTimedOut)
	}
	return nil
}

// callDeadline bounds one control-channel call: the remaining overall
// budget when a timeout is configured, the converter's default call
// timeout otherwise.
func (c *Converter) callDeadline(timed bool) time.Duration {
	if timed {
		return c.timer.Remaining()
	}
	return c.cfg.callTimeout
}

// orCrash prefers the crash diagnosis over a channel-level error when
// the engine died underneath an in-flight call.
func (c *Converter) orCrash(err error) error {
	if crash := c.supervisor.CrashError(); crash != nil {
		return crash
	}
	return err
}

// Close releases the control channel and the engine process, and
// best-effort removes any temporary artifact a crashed conversion left
// behind. Idempotent; safe without a prior conversion.
func (c *Converter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var err error
	if c.channel != nil {
		err = c.channel.Close()
		c.channel = nil
	}
	c.supervisor.Stop()

	if c.artifact != "" {
		_ = os.Remove(c.artifact)
		c.artifact = ""
	}

	c.log.Debug("converter closed")
	return err
}

// fileURL converts an absolute path to a file:// locator.
func fileURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}
