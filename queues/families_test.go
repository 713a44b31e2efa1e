package queues

import (
	"testing"

	"github.com/onsi/gomega"
)

func TestFamilyIndicesIncomplete(t *testing.T) {
	g := gomega.NewWithT(t)

	var f FamilyIndices
	g.Expect(f.IsComplete()).To(gomega.BeFalse())
	g.Expect(f.Unique()).To(gomega.BeEmpty())

	f.Graphics.Set(2)
	g.Expect(f.IsComplete()).To(gomega.BeFalse())
	g.Expect(f.Shared()).To(gomega.BeFalse())
	g.Expect(f.Unique()).To(gomega.Equal([]uint32{2}))
}

func TestFamilyIndicesUnique(t *testing.T) {
	g := gomega.NewWithT(t)

	var same FamilyIndices
	same.Graphics.Set(0)
	same.Present.Set(0)
	g.Expect(same.Shared()).To(gomega.BeTrue())
	g.Expect(same.Unique()).To(gomega.Equal([]uint32{0}))

	var split FamilyIndices
	split.Graphics.Set(0)
	split.Present.Set(3)
	g.Expect(split.Shared()).To(gomega.BeFalse())
	g.Expect(split.Unique()).To(gomega.Equal([]uint32{0, 3}))
}
