package frames

import (
	"sync/atomic"
)

// ResizeFlag is set by the windowing layer when the framebuffer changes size
// and drained by the frame loop once per iteration.
type ResizeFlag struct {
	v atomic.Bool
}

// Set raises the flag. Safe to call from any goroutine.
func (r *ResizeFlag) Set() {
	r.v.Store(true)
}

// Drain returns whether the flag was raised and lowers it.
func (r *ResizeFlag) Drain() bool {
	return r.v.Swap(false)
}

// Pending returns whether the flag is raised without lowering it.
func (r *ResizeFlag) Pending() bool {
	return r.v.Load()
}
