package frames

import (
	"github.com/cockroachdb/errors"
)

// Slot is the set of synchronization primitives used by one frame in flight.
type Slot struct {
	// ImageAvailable is signaled when the acquired image may be rendered into.
	ImageAvailable Semaphore

	// RenderFinished is signaled when rendering completed and the image may be
	// presented.
	RenderFinished Semaphore

	// InFlight is signaled when the device finished the frame's submission.
	InFlight Fence
}

// SyncSet owns the slots of all frames which may be in flight at once.
type SyncSet struct {
	slots []Slot
	arena Arena
}

// NewSyncSet creates n slots. Their fences start signaled so the first wait
// on each of them returns immediately. On failure everything created so far
// is destroyed.
func NewSyncSet(dev Device, n int) (*SyncSet, error) {
	if n < 1 {
		return nil, errors.Newf("frame slot count must be positive, got %d", n)
	}

	s := &SyncSet{slots: make([]Slot, 0, n)}

	for i := 0; i < n; i++ {
		slot, err := s.newSlot(dev)
		if err != nil {
			s.Destroy()
			return nil, errors.Wrapf(
				errors.Mark(err, ErrResourceExhausted),
				"creating frame slot %d", i,
			)
		}
		s.slots = append(s.slots, slot)
	}

	return s, nil
}

func (s *SyncSet) newSlot(dev Device) (Slot, error) {
	imageAvailable, err := dev.NewSemaphore()
	if err != nil {
		return Slot{}, errors.Wrap(err, "image available semaphore")
	}
	s.arena.Add(imageAvailable.Destroy)

	renderFinished, err := dev.NewSemaphore()
	if err != nil {
		return Slot{}, errors.Wrap(err, "render finished semaphore")
	}
	s.arena.Add(renderFinished.Destroy)

	inFlight, err := dev.NewFence(true)
	if err != nil {
		return Slot{}, errors.Wrap(err, "in flight fence")
	}
	s.arena.Add(inFlight.Destroy)

	return Slot{
		ImageAvailable: imageAvailable,
		RenderFinished: renderFinished,
		InFlight:       inFlight,
	}, nil
}

// Len returns the number of slots.
func (s *SyncSet) Len() int {
	return len(s.slots)
}

// Slot returns the slot used by frame number n.
func (s *SyncSet) Slot(n int) Slot {
	return s.slots[n%len(s.slots)]
}

// Destroy releases all primitives in reverse creation order. The set must not
// be used afterwards.
func (s *SyncSet) Destroy() {
	s.arena.Release()
	s.slots = nil
}
