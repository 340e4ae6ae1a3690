//go:build !windows

package viewer

import "syscall"

// getSysProcAttr returns the sys proc attr for the current platform
func getSysProcAttr() *syscall.SysProcAttr {
	// new session so the viewer outlives the spawning process
	return &syscall.SysProcAttr{Setsid: true}
}
