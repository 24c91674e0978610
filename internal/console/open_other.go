//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package console

import (
	"errors"

	"github.com/gdamore/tcell/v2"
)

func OpenTty() (tcell.Tty, error) {
	return nil, errors.New("no controlling terminal support on this platform")
}
