//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package keys

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// EraseChar returns the tty's configured erase (VERASE) byte.
func EraseChar(fd int) (byte, bool) {
	if fd < 0 || !term.IsTerminal(fd) {
		return 0, false
	}
	t, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return 0, false
	}
	erase := t.Cc[unix.VERASE]
	if erase == 0 {
		return 0, false
	}
	return erase, true
}
