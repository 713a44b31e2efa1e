package frames

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/onsi/gomega"
)

func TestSyncSetFencesStartSignaled(t *testing.T) {
	for _, n := range []int{1, 2, 3, 8} {
		g := gomega.NewWithT(t)
		dev := newFakeDevice()

		s, err := NewSyncSet(dev, n)
		g.Expect(err).NotTo(gomega.HaveOccurred())
		g.Expect(s.Len()).To(gomega.Equal(n))
		g.Expect(dev.semaphores).To(gomega.HaveLen(2 * n))
		g.Expect(dev.fences).To(gomega.HaveLen(n))

		for i := 0; i < n; i++ {
			// A zero timeout only succeeds on an already signaled fence.
			g.Expect(s.Slot(i).InFlight.Wait(0)).To(gomega.Succeed())
		}
	}
}

func TestSyncSetSlotWrapsAround(t *testing.T) {
	g := gomega.NewWithT(t)

	s, err := NewSyncSet(newFakeDevice(), 3)
	g.Expect(err).NotTo(gomega.HaveOccurred())

	g.Expect(s.Slot(4)).To(gomega.Equal(s.Slot(1)))
	g.Expect(s.Slot(3).InFlight).To(gomega.BeIdenticalTo(s.Slot(0).InFlight))
	g.Expect(s.Slot(0).ImageAvailable).NotTo(gomega.BeIdenticalTo(s.Slot(0).RenderFinished))
}

func TestSyncSetRejectsEmpty(t *testing.T) {
	g := gomega.NewWithT(t)

	_, err := NewSyncSet(newFakeDevice(), 0)
	g.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("must be positive")))
}

func TestSyncSetAllocationFailure(t *testing.T) {
	tests := []struct {
		name          string
		failSemaphore int
		failFence     int
	}{
		{name: "first semaphore", failSemaphore: 0, failFence: -1},
		{name: "second slot semaphore", failSemaphore: 3, failFence: -1},
		{name: "third fence", failSemaphore: -1, failFence: 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := gomega.NewWithT(t)

			dev := newFakeDevice()
			dev.failSemaphoreAt = test.failSemaphore
			dev.failFenceAt = test.failFence

			s, err := NewSyncSet(dev, 4)
			g.Expect(s).To(gomega.BeNil())
			g.Expect(errors.Is(err, ErrResourceExhausted)).To(gomega.BeTrue())
			g.Expect(IsFatal(err)).To(gomega.BeTrue())

			semaphores, fences := dev.live()
			g.Expect(semaphores).To(gomega.BeZero())
			g.Expect(fences).To(gomega.BeZero())
		})
	}
}

func TestSyncSetDestroyOnce(t *testing.T) {
	g := gomega.NewWithT(t)

	dev := newFakeDevice()
	s, err := NewSyncSet(dev, 2)
	g.Expect(err).NotTo(gomega.HaveOccurred())

	s.Destroy()
	s.Destroy()

	for _, sem := range dev.semaphores {
		g.Expect(sem.destroys).To(gomega.Equal(1))
	}
	for _, f := range dev.fences {
		g.Expect(f.destroys).To(gomega.Equal(1))
	}
}
