//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package keys

// EraseChar is unsupported off unix.
func EraseChar(fd int) (byte, bool) {
	return 0, false
}
