//go:build !windows

package web2pdf

import (
	"fmt"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"
)

// setProcAttr puts the engine in its own process group so Stop can kill
// it together with its child renderers.
func setProcAttr(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// applyIdentity launches the engine under the given user's credentials.
// The Domain part of the identity is ignored on unix.
func applyIdentity(cmd *exec.Cmd, id *Identity) error {
	u, err := user.Lookup(id.Username)
	if err != nil {
		return fmt.Errorf("%w: resolving identity %q: %v", ErrEngineStartFailed, id.Username, err)
	}

	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: parsing uid for %q: %v", ErrEngineStartFailed, id.Username, err)
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: parsing gid for %q: %v", ErrEngineStartFailed, id.Username, err)
	}

	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Credential = &syscall.Credential{
		Uid: uint32(uid),
		Gid: uint32(gid),
	}
	return nil
}
