//go:build !windows

// Package process provides low-level helpers for supervising the
// rendering-engine process.
package process

import "syscall"

// KillProcessGroup kills a process and all its children by sending
// SIGKILL to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; the supervisor's exit watcher observes the result.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Alive reports whether a process with the given pid exists, using a
// null signal probe against the OS process table.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	// EPERM means the process exists but belongs to another user.
	return err == nil || err == syscall.EPERM
}
