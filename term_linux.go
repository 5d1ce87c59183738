//go:build linux

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

var termRestore *unix.Termios

// enterRawTerm takes stdin out of canonical mode so the ':' opcode sees each
// keystroke as soon as it is typed instead of waiting for a full line.
func enterRawTerm() error {
	termios, err := unix.IoctlGetTermios(int(os.Stdin.Fd()), unix.TCGETS)
	if err != nil {
		return err
	}

	saved := *termios
	termRestore = &saved

	termios.Lflag &^= unix.ECHO | unix.ICANON
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	return unix.IoctlSetTermios(int(os.Stdin.Fd()), unix.TCSETS, termios)
}

func exitRawTerm() {
	if termRestore == nil {
		return
	}
	unix.IoctlSetTermios(int(os.Stdin.Fd()), unix.TCSETS, termRestore)
}
