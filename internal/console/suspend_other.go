//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package console

import "errors"

func suspendProcess() error {
	return errors.New("suspend is not supported on this platform")
}
