//go:build unix

package flock

import (
	"errors"
	"os"
	"syscall"
)

// A process owned by another user can not be signalled but does exist.
func processIsRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
