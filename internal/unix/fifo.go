//go:build linux || darwin

// Package unix holds the small platform pieces used to talk to supervise
// control FIFOs.
package unix

import (
	"os"
	"syscall"
)

// ONonblock is the non-blocking open flag
const ONonblock = syscall.O_NONBLOCK

// OpenWriteNonblock opens path for writing without waiting for a reader.
// On a FIFO with no reader the open fails with ENXIO instead of blocking,
// which is how a missing supervise process shows up.
func OpenWriteNonblock(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|ONonblock, 0)
}
