package frames

import (
	"testing"

	"github.com/onsi/gomega"
)

func TestArenaReleasesInReverseOrder(t *testing.T) {
	g := gomega.NewWithT(t)

	var (
		a     Arena
		order []string
	)
	a.Add(func() { order = append(order, "swapchain") })
	a.Add(func() { order = append(order, "views") })
	a.Add(nil)
	a.Add(func() { order = append(order, "framebuffers") })
	g.Expect(a.Len()).To(gomega.Equal(3))

	a.Release()
	g.Expect(order).To(gomega.Equal([]string{"framebuffers", "views", "swapchain"}))
	g.Expect(a.Len()).To(gomega.BeZero())

	a.Release()
	g.Expect(order).To(gomega.HaveLen(3))
}

func TestArenaReleaseDuringRelease(t *testing.T) {
	g := gomega.NewWithT(t)

	var (
		a     Arena
		calls int
	)
	a.Add(func() { calls++ })
	a.Add(func() {
		calls++
		a.Release()
	})

	a.Release()
	g.Expect(calls).To(gomega.Equal(2))
}
