package optional

import (
	"testing"

	"github.com/onsi/gomega"
)

func TestOptionalEmpty(t *testing.T) {
	g := gomega.NewWithT(t)

	var o Optional[uint32]
	g.Expect(o.HasValue()).To(gomega.BeFalse())
	g.Expect(o.GetOr(7)).To(gomega.Equal(uint32(7)))
	g.Expect(func() { o.Get() }).To(gomega.Panic())
}

func TestOptionalSet(t *testing.T) {
	g := gomega.NewWithT(t)

	var o Optional[uint32]
	o.Set(0)
	g.Expect(o.HasValue()).To(gomega.BeTrue())
	g.Expect(o.Get()).To(gomega.Equal(uint32(0)))

	g.Expect(Of("x").Get()).To(gomega.Equal("x"))
}
