//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package console

import "golang.org/x/sys/unix"

func suspendProcess() error {
	return unix.Kill(unix.Getpid(), unix.SIGSTOP)
}
