package web2pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Input/output validation errors.
	ErrInputNotFound     = errors.New("input file not found")
	ErrOutputPathInvalid = errors.New("output directory does not exist")

	// Engine lifecycle errors.
	ErrEngineNotFound    = errors.New("rendering engine executable not found")
	ErrEngineStartFailed = errors.New("rendering engine failed to start")
	ErrEngineCrashed     = errors.New("rendering engine exited mid-conversion")

	// Conversion errors.
	ErrConversionTimedOut = errors.New("conversion deadline elapsed")
	ErrPreProcessing      = errors.New("input pre-processing failed")

	// Configuration errors.
	ErrProxyConfig     = errors.New("invalid proxy configuration")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSessionStarted  = errors.New("engine session already started")

	// Control channel errors.
	ErrChannelConnect = errors.New("failed to connect to control channel")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// EngineExitError reports an engine process that exited before announcing
// its control-channel address. It carries the process exit code and the
// captured tail of its diagnostic output.
//
// Matches ErrEngineStartFailed via errors.Is.
type EngineExitError struct {
	Code   int
	Output string
}

func (e *EngineExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("rendering engine exited with code %d before announcing control channel", e.Code)
	}
	return fmt.Sprintf("rendering engine exited with code %d before announcing control channel: %s", e.Code, e.Output)
}

func (e *EngineExitError) Unwrap() error { return ErrEngineStartFailed }
