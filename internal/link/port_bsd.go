//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package link

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const openFlags = unix.O_NOCTTY

var portPatterns = []string{
	"/dev/cu.usbserial*",
	"/dev/cu.usbmodem*",
	"/dev/cu.SLAB*",
	"/dev/cuaU*",
}

// BSD speed fields hold the rate itself; their width differs by OS.
func setSpeed[T ~int32 | ~uint32 | ~uint64](field *T, baud int) {
	*field = T(baud)
}

func configure(fd, baud int) error {
	tio, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return fmt.Errorf("failed to read line settings: %w", err)
	}
	tio.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS
	tio.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD
	setSpeed(&tio.Ispeed, baud)
	setSpeed(&tio.Ospeed, baud)
	tio.Cc[unix.VMIN] = 1
	tio.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TIOCSETA, tio); err != nil {
		return fmt.Errorf("failed to apply line settings: %w", err)
	}
	return nil
}
