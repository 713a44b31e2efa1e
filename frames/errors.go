package frames

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrStale is returned by Swapchain.Acquire and Swapchain.Present when the
	// swapchain no longer matches its surface. It is recoverable: the loop
	// rebuilds and carries on, it never returns ErrStale to its callers.
	ErrStale = errors.New("swapchain is out of date")

	// ErrTimeout is returned when a fence or an image acquisition did not
	// complete in the allowed time. The device is considered hung.
	ErrTimeout = errors.New("timed out waiting for the device")

	// ErrDeviceLost marks errors caused by a lost logical device.
	ErrDeviceLost = errors.New("device lost")

	// ErrResourceExhausted marks failed allocations of host or device objects.
	ErrResourceExhausted = errors.New("graphics resource exhausted")

	// ErrClosed is returned when drawing with a loop which has been closed.
	ErrClosed = errors.New("frame loop is closed")
)

// IsFatal returns true for every non-nil error which is not ErrStale.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrStale)
}
