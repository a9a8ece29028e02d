//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package link

import (
	"fmt"
	"runtime"
)

const openFlags = 0

var portPatterns []string

func configure(_, _ int) error {
	return fmt.Errorf("setting the line speed is not supported on %s", runtime.GOOS)
}
