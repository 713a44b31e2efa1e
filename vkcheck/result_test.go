package vkcheck

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/frames"
)

func TestResultClassification(t *testing.T) {
	tests := []struct {
		name  string
		res   vk.Result
		class error
	}{
		{"out of date", vk.ErrorOutOfDate, frames.ErrStale},
		{"suboptimal", vk.Suboptimal, frames.ErrStale},
		{"device lost", vk.ErrorDeviceLost, frames.ErrDeviceLost},
		{"surface lost", vk.ErrorSurfaceLost, frames.ErrDeviceLost},
		{"host memory", vk.ErrorOutOfHostMemory, frames.ErrResourceExhausted},
		{"device memory", vk.ErrorOutOfDeviceMemory, frames.ErrResourceExhausted},
		{"timeout", vk.Timeout, frames.ErrTimeout},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := gomega.NewWithT(t)

			err := Result(test.res)
			g.Expect(err).To(gomega.HaveOccurred())
			g.Expect(errors.Is(err, test.class)).To(gomega.BeTrue())
		})
	}
}

func TestResultSuccess(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(Result(vk.Success)).To(gomega.Succeed())
}

func TestResultUnclassified(t *testing.T) {
	g := gomega.NewWithT(t)

	err := Result(vk.ErrorInitializationFailed)
	g.Expect(err).To(gomega.HaveOccurred())
	g.Expect(frames.IsFatal(err)).To(gomega.BeTrue())
	g.Expect(errors.Is(err, frames.ErrStale)).To(gomega.BeFalse())
	g.Expect(errors.Is(err, frames.ErrDeviceLost)).To(gomega.BeFalse())
}
