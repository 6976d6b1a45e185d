package web2pdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mbrunel/go-web2pdf/internal/process"
)

// stderrTailLines bounds the diagnostic text captured for start-failure
// reporting.
const stderrTailLines = 40

// readySignal decides when a diagnostic line announces the control
// channel. The matching rule is isolated here so the handshake can be
// swapped without touching supervision logic.
type readySignal interface {
	// Match returns the control-channel endpoint if the line is the
	// readiness announcement.
	Match(line string) (endpoint string, ok bool)
}

// devtoolsReady matches Chrome's startup announcement on stderr:
//
//	DevTools listening on ws://127.0.0.1:41231/devtools/browser/<id>
type devtoolsReady struct{}

var devtoolsPattern = regexp.MustCompile(`DevTools listening on (ws://\S+)`)

func (devtoolsReady) Match(line string) (string, bool) {
	m := devtoolsPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// startResult resolves the supervisor's blocking start wait: the first
// of {address announced, process exited} wins.
type startResult struct {
	endpoint string
	err      error
}

// Supervisor owns one rendering-engine process: it launches the
// executable with a frozen argument set, waits for the control-channel
// announcement on the diagnostic stream, and tracks process exit.
//
// At most one process per supervisor; Start on a live supervisor is a
// no-op returning the existing endpoint.
type Supervisor struct {
	log   *zap.SugaredLogger
	ready readySignal

	mu       sync.Mutex
	cmd      *exec.Cmd
	endpoint string
	exitCh   chan struct{} // closed when the process exits
	exitCode int
	tail     []string
}

// NewSupervisor creates a supervisor using the Chrome DevTools readiness
// rule. A nil logger is replaced with a no-op logger.
func NewSupervisor(logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{
		log:   logger.Sugar().Named("supervisor"),
		ready: devtoolsReady{},
	}
}

// Alive reports whether a process was started and has not exited. The
// answer is revalidated against the OS process table on every call, not
// trusted from start time.
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveLocked()
}

func (s *Supervisor) aliveLocked() bool {
	if s.cmd == nil || s.cmd.Process == nil {
		return false
	}
	select {
	case <-s.exitCh:
		return false
	default:
	}
	return process.Alive(s.cmd.Process.Pid)
}

// Endpoint returns the control-channel address announced by the live
// process, or empty if none.
func (s *Supervisor) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// Start launches the engine executable and blocks until it announces a
// control-channel address (returned) or exits first (EngineExitError
// carrying the exit code and captured diagnostics). No-op if a process
// is already alive.
//
// There is no internal timeout on the wait; callers bound the phase via
// their own deadline checks. The supplied identity, when non-nil,
// launches the process under that credential.
func (s *Supervisor) Start(binary string, args []string, identity *Identity) (string, error) {
	s.mu.Lock()
	if s.aliveLocked() {
		endpoint := s.endpoint
		s.mu.Unlock()
		return endpoint, nil
	}

	cmd := exec.Command(binary, args...) // #nosec G204 -- binary resolved by the engine locator
	setProcAttr(cmd)
	if identity != nil {
		if err := applyIdentity(cmd, identity); err != nil {
			s.mu.Unlock()
			return "", err
		}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: piping diagnostics: %v", ErrEngineStartFailed, err)
	}

	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %v", ErrEngineStartFailed, err)
	}

	s.cmd = cmd
	s.endpoint = ""
	s.exitCh = make(chan struct{})
	s.exitCode = 0
	s.tail = nil
	exitCh := s.exitCh
	s.mu.Unlock()

	s.log.Debugw("engine launched", "pid", cmd.Process.Pid, "args", len(args))

	resultCh := make(chan startResult, 2)

	go s.scanDiagnostics(stderr, resultCh)

	go func() {
		err := cmd.Wait()
		code := exitCodeOf(cmd, err)

		s.mu.Lock()
		s.exitCode = code
		tail := strings.Join(s.tail, "\n")
		close(exitCh)
		s.mu.Unlock()

		s.log.Debugw("engine exited", "code", code)
		resultCh <- startResult{err: &EngineExitError{Code: code, Output: tail}}
	}()

	res := <-resultCh
	if res.err != nil {
		return "", res.err
	}

	s.mu.Lock()
	s.endpoint = res.endpoint
	s.mu.Unlock()

	s.log.Infow("control channel announced", "endpoint", res.endpoint)
	return res.endpoint, nil
}

// scanDiagnostics reads the process's diagnostic stream line by line,
// keeping a bounded tail for error reporting and resolving the start
// wait on the readiness announcement.
func (s *Supervisor) scanDiagnostics(r io.Reader, resultCh chan<- startResult) {
	announced := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		s.mu.Lock()
		s.tail = append(s.tail, line)
		if len(s.tail) > stderrTailLines {
			s.tail = s.tail[len(s.tail)-stderrTailLines:]
		}
		s.mu.Unlock()

		if announced {
			continue
		}
		if endpoint, ok := s.ready.Match(line); ok {
			announced = true
			resultCh <- startResult{endpoint: endpoint}
		}
	}
}

// CrashError returns the error describing an engine that exited after a
// successful start, or nil if the process is still alive or was never
// started.
func (s *Supervisor) CrashError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.exitCh == nil {
		return nil
	}
	select {
	case <-s.exitCh:
		return fmt.Errorf("%w: exit code %d", ErrEngineCrashed, s.exitCode)
	default:
		return nil
	}
}

// Stop kills the process group and forgets the process. Idempotent;
// safe to call without a prior Start.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	exitCh := s.exitCh
	s.cmd = nil
	s.endpoint = ""
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}

	process.KillProcessGroup(cmd.Process.Pid)
	if exitCh != nil {
		<-exitCh
	}
	s.log.Debug("engine stopped")
}

// exitCodeOf extracts the process exit code from a Wait error.
func exitCodeOf(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
