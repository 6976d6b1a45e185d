package web2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

// fakeSupervisor stands in for the engine process.
type fakeSupervisor struct {
	mu       sync.Mutex
	alive    bool
	endpoint string
	startErr error
	crashErr error
	starts   int
	args     [][]string
}

func (f *fakeSupervisor) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *fakeSupervisor) Start(binary string, args []string, identity *Identity) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.args = append(f.args, args)
	if f.startErr != nil {
		return "", f.startErr
	}
	f.alive = true
	if f.endpoint == "" {
		f.endpoint = "ws://127.0.0.1:9222/fake"
	}
	return f.endpoint, nil
}

func (f *fakeSupervisor) CrashError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crashErr
}

func (f *fakeSupervisor) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = false
}

func (f *fakeSupervisor) crash(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = false
	f.crashErr = err
}

// fakeChannel records control-channel calls and serves canned answers.
type fakeChannel struct {
	mu          sync.Mutex
	navigated   []string
	evalResults []string // consumed in order; last one repeats
	evalCalls   int
	navigateErr error
	printErr    error
	pdf         []byte
	closed      bool

	onPrint func() // hook to mutate state mid-conversion
}

func (f *fakeChannel) Navigate(locator string, deadline time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, locator)
	return f.navigateErr
}

func (f *fakeChannel) EvaluateScript(expr string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalCalls++
	if len(f.evalResults) == 0 {
		return "", nil
	}
	result := f.evalResults[0]
	if len(f.evalResults) > 1 {
		f.evalResults = f.evalResults[1:]
	}
	return result, nil
}

func (f *fakeChannel) PrintToPDF(settings *PageSettings, deadline time.Duration) ([]byte, error) {
	f.mu.Lock()
	hook := f.onPrint
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.printErr != nil {
		return nil, f.printErr
	}
	if f.pdf == nil {
		return []byte("%PDF-1.4 fake"), nil
	}
	return f.pdf, nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) lastNavigated() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.navigated) == 0 {
		return ""
	}
	return f.navigated[len(f.navigated)-1]
}

// newFakeConverter wires a Converter to in-memory collaborators.
func newFakeConverter(t *testing.T, opts ...Option) (*Converter, *fakeSupervisor, *fakeChannel) {
	t.Helper()

	c := NewConverter(opts...)
	sup := &fakeSupervisor{}
	channel := &fakeChannel{}

	c.supervisor = sup
	c.args.live = sup.Alive
	c.locate = func(string) (string, error) { return "/fake/chrome", nil }
	c.dial = func(string, *zap.Logger, string, string) (ControlChannel, error) {
		return channel, nil
	}

	t.Cleanup(func() { _ = c.Close() })
	return c, sup, channel
}

func urlRequest() Request {
	return Request{URL: "https://example.com"}
}

// ---------------------------------------------------------------------------
// TestConvert - happy path and validation
// ---------------------------------------------------------------------------

func TestConvert_URL(t *testing.T) {
	t.Parallel()

	c, sup, channel := newFakeConverter(t)

	var buf bytes.Buffer
	if err := c.Convert(context.Background(), urlRequest(), &buf); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output = %q, want PDF bytes", buf.String())
	}
	if got := channel.lastNavigated(); got != "https://example.com" {
		t.Errorf("navigated to %q, want the request URL", got)
	}
	if sup.starts != 1 {
		t.Errorf("engine starts = %d, want 1", sup.starts)
	}
}

func TestConvert_EmptyInput(t *testing.T) {
	t.Parallel()

	c, _, _ := newFakeConverter(t)

	err := c.Convert(context.Background(), Request{}, &bytes.Buffer{})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Convert() error = %v, want ErrInvalidArgument", err)
	}
}

func TestConvert_InvalidPageSettings(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	req := urlRequest()
	req.Page = &PageSettings{Size: "tabloid"}

	err := c.Convert(context.Background(), req, &bytes.Buffer{})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Convert() error = %v, want ErrInvalidArgument", err)
	}
	if sup.starts != 0 {
		t.Error("engine started despite invalid page settings")
	}
}

func TestConvert_LocalFileMissing(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	req := Request{URL: filepath.Join(t.TempDir(), "absent.html")}
	err := c.Convert(context.Background(), req, &bytes.Buffer{})
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("Convert() error = %v, want ErrInputNotFound", err)
	}
	if sup.starts != 0 {
		t.Error("engine started despite missing input")
	}
}

func TestConvert_LocalFileNavigatesFileURL(t *testing.T) {
	t.Parallel()

	c, _, channel := newFakeConverter(t)

	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := c.Convert(context.Background(), Request{URL: path}, &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	got := channel.lastNavigated()
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "page.html") {
		t.Errorf("navigated to %q, want a file:// locator for the input", got)
	}
}

func TestConvertFile_OutputDirMissing(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	out := filepath.Join(t.TempDir(), "no-such-dir", "out.pdf")
	err := c.ConvertFile(context.Background(), urlRequest(), out)
	if !errors.Is(err, ErrOutputPathInvalid) {
		t.Errorf("ConvertFile() error = %v, want ErrOutputPathInvalid", err)
	}
	if sup.starts != 0 {
		t.Error("engine started despite invalid output path")
	}
}

func TestConvertFile_WritesPDF(t *testing.T) {
	t.Parallel()

	c, _, _ := newFakeConverter(t)

	out := filepath.Join(t.TempDir(), "out.pdf")
	if err := c.ConvertFile(context.Background(), urlRequest(), out); err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("file content = %q, want PDF bytes", data)
	}
}

// ---------------------------------------------------------------------------
// TestConvert - session lifecycle
// ---------------------------------------------------------------------------

func TestConvert_ReusesSession(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	for i := 0; i < 3; i++ {
		if err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{}); err != nil {
			t.Fatalf("Convert() #%d error = %v", i+1, err)
		}
		if !c.EngineAlive() {
			t.Fatalf("EngineAlive() = false after conversion #%d", i+1)
		}
	}

	if sup.starts != 1 {
		t.Errorf("engine starts = %d across 3 conversions, want 1", sup.starts)
	}
}

func TestConvert_RestartsAfterCrash(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	if err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// Engine dies between conversions. The next conversion relaunches.
	sup.mu.Lock()
	sup.alive = false
	sup.mu.Unlock()

	if err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() after crash error = %v", err)
	}
	if sup.starts != 2 {
		t.Errorf("engine starts = %d, want 2", sup.starts)
	}
}

func TestConvert_EngineNotFound(t *testing.T) {
	t.Parallel()

	c, _, _ := newFakeConverter(t)
	c.locate = func(string) (string, error) {
		return "", fmt.Errorf("%w: no executable", ErrEngineNotFound)
	}

	err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{})
	if !errors.Is(err, ErrEngineNotFound) {
		t.Errorf("Convert() error = %v, want ErrEngineNotFound", err)
	}
}

func TestConvert_StartFailurePropagates(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)
	sup.startErr = &EngineExitError{Code: 127, Output: "crash on startup"}

	err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{})
	if !errors.Is(err, ErrEngineStartFailed) {
		t.Fatalf("Convert() error = %v, want ErrEngineStartFailed", err)
	}

	var exitErr *EngineExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 127 {
		t.Errorf("Convert() error = %v, want EngineExitError with code 127", err)
	}
}

func TestConvert_CrashDuringRender(t *testing.T) {
	t.Parallel()

	c, sup, channel := newFakeConverter(t)

	channel.printErr = errors.New("websocket: close 1006")
	channel.onPrint = func() {
		sup.crash(fmt.Errorf("%w: exit code 11", ErrEngineCrashed))
	}

	// The crash diagnosis wins over the raw channel error.
	err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{})
	if !errors.Is(err, ErrEngineCrashed) {
		t.Errorf("Convert() error = %v, want ErrEngineCrashed", err)
	}
}

func TestConvert_ContextCanceled(t *testing.T) {
	t.Parallel()

	c, _, _ := newFakeConverter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Convert(ctx, urlRequest(), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestConvert - deadline discipline
// ---------------------------------------------------------------------------

func TestConvert_OverallTimeout(t *testing.T) {
	t.Parallel()

	c, _, channel := newFakeConverter(t)

	clock := &fakeClock{t: time.Unix(2000, 0)}
	c.timer.now = clock.now

	// Rendering consumes more than the whole budget; the checkpoint after
	// it must fail the conversion.
	channel.onPrint = func() { clock.advance(time.Minute) }

	req := urlRequest()
	req.Timeout = 10 * time.Second

	err := c.Convert(context.Background(), req, &bytes.Buffer{})
	if !errors.Is(err, ErrConversionTimedOut) {
		t.Errorf("Convert() error = %v, want ErrConversionTimedOut", err)
	}
}

func TestConvert_WaitPhaseExemptFromBudget(t *testing.T) {
	t.Parallel()

	c, _, channel := newFakeConverter(t)

	clock := &fakeClock{t: time.Unix(2000, 0)}
	c.timer.now = clock.now

	// The first status poll burns far more wall time than the overall
	// budget, but the timer is stopped during the wait phase, so the
	// conversion still succeeds.
	channel.evalResults = []string{"", "done"}
	polled := false
	c.dial = func(string, *zap.Logger, string, string) (ControlChannel, error) {
		return &waitingChannel{fakeChannel: channel, clock: clock, burnt: &polled}, nil
	}

	req := urlRequest()
	req.WaitCondition = "done"
	req.WaitTimeout = 5 * time.Minute
	req.Timeout = 10 * time.Second

	if err := c.Convert(context.Background(), req, &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !polled {
		t.Fatal("wait phase never polled the status flag")
	}
}

// waitingChannel wraps fakeChannel, burning fake wall time on the first
// status poll to prove the wait phase is exempt from the overall budget.
type waitingChannel struct {
	*fakeChannel
	clock *fakeClock
	burnt *bool
}

func (w *waitingChannel) EvaluateScript(expr string) (string, error) {
	if !*w.burnt {
		*w.burnt = true
		w.clock.advance(time.Hour)
	}
	return w.fakeChannel.EvaluateScript(expr)
}

func TestConvert_WaitTimeoutIsNotFatal(t *testing.T) {
	t.Parallel()

	c, _, channel := newFakeConverter(t)

	// The status flag never matches; the wait times out and the
	// conversion proceeds to rendering anyway.
	channel.evalResults = []string{"loading"}

	req := urlRequest()
	req.WaitCondition = "done"
	req.WaitTimeout = 150 * time.Millisecond

	var buf bytes.Buffer
	if err := c.Convert(context.Background(), req, &buf); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("no PDF produced after wait timeout")
	}
	if channel.evalCalls == 0 {
		t.Error("status flag never polled")
	}
}

func TestConvert_WaitConditionMatches(t *testing.T) {
	t.Parallel()

	c, _, channel := newFakeConverter(t)

	channel.evalResults = []string{"loading", "loading", "done"}

	req := urlRequest()
	req.WaitCondition = "done"
	req.WaitTimeout = 10 * time.Second

	start := time.Now()
	if err := c.Convert(context.Background(), req, &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("conversion took %v, the matched condition should end the wait early", elapsed)
	}
	if channel.evalCalls < 3 {
		t.Errorf("evalCalls = %d, want at least 3", channel.evalCalls)
	}
}

func TestConvert_UntimedWaitLeavesTimerDisarmed(t *testing.T) {
	t.Parallel()

	c, _, channel := newFakeConverter(t)
	channel.evalResults = []string{"done"}

	// No overall timeout: the wait phase must not touch the timer, so it
	// stays disarmed for later conversions.
	req := urlRequest()
	req.WaitCondition = "done"
	req.WaitTimeout = 10 * time.Second

	if err := c.Convert(context.Background(), req, &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if c.timer.Running() {
		t.Error("timer left running after an untimed conversion")
	}
}

func TestConvert_WaitAbortsOnCrash(t *testing.T) {
	t.Parallel()

	c, sup, channel := newFakeConverter(t)

	channel.evalResults = []string{"loading"}

	done := make(chan error, 1)
	go func() {
		req := urlRequest()
		req.WaitCondition = "done"
		req.WaitTimeout = time.Minute
		done <- c.Convert(context.Background(), req, &bytes.Buffer{})
	}()

	// Let the wait loop spin, then kill the engine underneath it.
	time.Sleep(250 * time.Millisecond)
	sup.crash(fmt.Errorf("%w: exit code 9", ErrEngineCrashed))

	select {
	case err := <-done:
		if !errors.Is(err, ErrEngineCrashed) {
			t.Errorf("Convert() error = %v, want ErrEngineCrashed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("wait loop did not abort on engine crash")
	}
}

// ---------------------------------------------------------------------------
// TestConverter - configuration surface
// ---------------------------------------------------------------------------

func TestConverter_SettersFailWhenLive(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)
	sup.alive = true

	tests := []struct {
		name string
		call func() error
	}{
		{name: "SetProxy", call: func() error { return c.SetProxy("http://proxy:8080") }},
		{name: "SetProxyBypassList", call: func() error { return c.SetProxyBypassList("*.internal") }},
		{name: "SetProxyPACURL", call: func() error { return c.SetProxyPACURL("http://pac") }},
		{name: "SetProxyCredentials", call: func() error { return c.SetProxyCredentials("u", "p") }},
		{name: "SetUserAgent", call: func() error { return c.SetUserAgent("agent") }},
		{name: "SetWindowSize", call: func() error { return c.SetWindowSize(800, 600) }},
		{name: "SetWindowPreset", call: func() error { return c.SetWindowPreset(PresetFullHD) }},
		{name: "SetRunAs", call: func() error { return c.SetRunAs(Identity{Username: "render"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrSessionStarted) {
				t.Errorf("%s error = %v, want ErrSessionStarted", tt.name, err)
			}
		})
	}
}

func TestConvert_ProxyFlags(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	if err := c.SetProxy("http://proxy.internal:3128"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetProxyBypassList("*.corp;localhost"); err != nil {
		t.Fatal(err)
	}

	if err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	launch := strings.Join(sup.args[0], " ")
	if !strings.Contains(launch, "--proxy-server=http://proxy.internal:3128") {
		t.Errorf("launch args %q missing proxy-server flag", launch)
	}
	if !strings.Contains(launch, "--proxy-bypass-list=*.corp;localhost") {
		t.Errorf("launch args %q missing proxy-bypass-list flag", launch)
	}
}

func TestConvert_ProxyBypassToken(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	if err := c.SetProxy(ProxyBypass); err != nil {
		t.Fatal(err)
	}
	if err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	launch := strings.Join(sup.args[0], " ")
	if !strings.Contains(launch, "--no-proxy-server") {
		t.Errorf("launch args %q missing no-proxy-server flag", launch)
	}
	if strings.Contains(launch, "--proxy-server=") {
		t.Errorf("launch args %q carry a proxy-server flag alongside bypass", launch)
	}
}

func TestConvert_InvalidProxySpec(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	// Accepted at set time, rejected at first engine start.
	if err := c.SetProxy("not a proxy"); err != nil {
		t.Fatalf("SetProxy() error = %v", err)
	}

	err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{})
	if !errors.Is(err, ErrProxyConfig) {
		t.Errorf("Convert() error = %v, want ErrProxyConfig", err)
	}
	if sup.starts != 0 {
		t.Error("engine started despite invalid proxy spec")
	}
}

func TestConvert_ProxyCredentialsReachChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		domainUser string
		wantUser   string
	}{
		{name: "domain qualified", domainUser: `CORP\alice`, wantUser: `CORP\alice`},
		{name: "bare user", domainUser: "bob", wantUser: "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, channel := newFakeConverter(t)

			var gotUser, gotPassword string
			c.dial = func(_ string, _ *zap.Logger, authUser, authPassword string) (ControlChannel, error) {
				gotUser, gotPassword = authUser, authPassword
				return channel, nil
			}

			if err := c.SetProxy("http://proxy.internal:3128"); err != nil {
				t.Fatal(err)
			}
			if err := c.SetProxyCredentials(tt.domainUser, "s3cret"); err != nil {
				t.Fatal(err)
			}

			if err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{}); err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			if gotUser != tt.wantUser {
				t.Errorf("channel auth user = %q, want %q", gotUser, tt.wantUser)
			}
			if gotPassword != "s3cret" {
				t.Errorf("channel auth password = %q, want s3cret", gotPassword)
			}
		})
	}
}

func TestConvert_WindowPresetReachesLaunch(t *testing.T) {
	t.Parallel()

	c, sup, _ := newFakeConverter(t)

	if err := c.SetWindowPreset(PresetFullHD); err != nil {
		t.Fatal(err)
	}
	if err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	launch := strings.Join(sup.args[0], " ")
	if !strings.Contains(launch, "--window-size=1920,1080") {
		t.Errorf("launch args %q missing the preset window size", launch)
	}
}

// ---------------------------------------------------------------------------
// TestConverter - cleanup law
// ---------------------------------------------------------------------------

func TestConvert_WrappedInputCleanedUpOnSuccess(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	c, _, _ := newFakeConverter(t, WithTempDir(tempDir))

	input := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(input, []byte("# Hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := c.Convert(context.Background(), Request{URL: input}, &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	assertNoArtifacts(t, tempDir)
}

func TestConvert_WrappedInputCleanedUpOnFailure(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	c, _, channel := newFakeConverter(t, WithTempDir(tempDir))
	channel.navigateErr = fmt.Errorf("%w: net::ERR_FAILED", ErrPageLoad)

	input := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(input, []byte("# Hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := c.Convert(context.Background(), Request{URL: input}, &bytes.Buffer{})
	if !errors.Is(err, ErrPageLoad) {
		t.Fatalf("Convert() error = %v, want ErrPageLoad", err)
	}

	assertNoArtifacts(t, tempDir)
}

func assertNoArtifacts(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		t.Errorf("temporary artifact %q survived the conversion", e.Name())
	}
}

// ---------------------------------------------------------------------------
// TestConverter - Close
// ---------------------------------------------------------------------------

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	c, sup, channel := newFakeConverter(t)

	if err := c.Convert(context.Background(), urlRequest(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if sup.Alive() {
		t.Error("engine still alive after Close")
	}
	if !channel.closed {
		t.Error("control channel not closed")
	}

	// Idempotent.
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestConverter_CloseWithoutConversion(t *testing.T) {
	t.Parallel()

	c, _, _ := newFakeConverter(t)
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestConverter_InstanceIDsDistinct(t *testing.T) {
	t.Parallel()

	a := NewConverter()
	b := NewConverter()
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })

	if a.InstanceID() == "" || a.InstanceID() == b.InstanceID() {
		t.Errorf("instance IDs %q and %q, want distinct non-empty", a.InstanceID(), b.InstanceID())
	}
}
