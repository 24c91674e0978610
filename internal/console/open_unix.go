//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package console

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// OpenTty opens the controlling terminal.
func OpenTty() (tcell.Tty, error) {
	tty, err := tcell.NewDevTty()
	if err != nil {
		return nil, fmt.Errorf("open /dev/tty: %w", err)
	}
	return tty, nil
}
