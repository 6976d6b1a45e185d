//go:build windows

package web2pdf

import (
	"fmt"
	"os/exec"
	"syscall"
)

// setProcAttr creates the engine in its own process group so Stop can
// kill the whole tree via taskkill.
func setProcAttr(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= syscall.CREATE_NEW_PROCESS_GROUP
}

// applyIdentity is not supported on Windows: launching under alternate
// credentials requires CreateProcessWithLogonW, which os/exec does not
// expose.
func applyIdentity(_ *exec.Cmd, id *Identity) error {
	return fmt.Errorf("%w: run-as identity %q is not supported on windows", ErrEngineStartFailed, id.Username)
}
