package swapchain

import (
	"math"
	"testing"

	"github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	g := gomega.NewWithT(t)

	unorm := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	g.Expect(ChooseSurfaceFormat([]vk.SurfaceFormat{unorm, srgb}).Format).
		To(gomega.Equal(vk.FormatB8g8r8a8Srgb))
	g.Expect(ChooseSurfaceFormat([]vk.SurfaceFormat{unorm}).Format).
		To(gomega.Equal(vk.FormatR8g8b8a8Unorm))
}

func TestChoosePresentMode(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(ChoosePresentMode([]vk.PresentMode{
		vk.PresentModeFifo,
		vk.PresentModeMailbox,
	})).To(gomega.Equal(vk.PresentModeMailbox))

	g.Expect(ChoosePresentMode([]vk.PresentMode{
		vk.PresentModeImmediate,
	})).To(gomega.Equal(vk.PresentModeFifo))
}

func TestChooseExtent(t *testing.T) {
	tests := []struct {
		name          string
		capabilities  vk.SurfaceCapabilities
		width, height int
		expected      vk.Extent2D
	}{
		{
			name: "surface dictates the extent",
			capabilities: vk.SurfaceCapabilities{
				CurrentExtent: vk.Extent2D{Width: 640, Height: 480},
			},
			width:    1920,
			height:   1080,
			expected: vk.Extent2D{Width: 640, Height: 480},
		},
		{
			name: "framebuffer size within range",
			capabilities: vk.SurfaceCapabilities{
				CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
				MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
			},
			width:    800,
			height:   600,
			expected: vk.Extent2D{Width: 800, Height: 600},
		},
		{
			name: "framebuffer larger than the maximum",
			capabilities: vk.SurfaceCapabilities{
				CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
				MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
			},
			width:    10000,
			height:   10000,
			expected: vk.Extent2D{Width: 4096, Height: 4096},
		},
		{
			name: "framebuffer smaller than the minimum",
			capabilities: vk.SurfaceCapabilities{
				CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
				MinImageExtent: vk.Extent2D{Width: 16, Height: 16},
				MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
			},
			width:    0,
			height:   -3,
			expected: vk.Extent2D{Width: 16, Height: 16},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := gomega.NewWithT(t)
			actual := ChooseExtent(test.capabilities, test.width, test.height)
			g.Expect(actual).To(gomega.Equal(test.expected))
		})
	}
}

func TestImageCount(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(ImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8})).
		To(gomega.BeEquivalentTo(3))
	g.Expect(ImageCount(vk.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 3})).
		To(gomega.BeEquivalentTo(3))
	g.Expect(ImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0})).
		To(gomega.BeEquivalentTo(3))
}

func TestSupportAdequate(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(Support{}.Adequate()).To(gomega.BeFalse())
	g.Expect(Support{
		Formats:      []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Srgb}},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo},
	}.Adequate()).To(gomega.BeTrue())
}

func TestSemaphoreRejectsForeignTypes(t *testing.T) {
	g := gomega.NewWithT(t)

	_, err := semaphore(struct{ destroyable }{})
	g.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("unsupported semaphore")))
}

type destroyable struct{}

func (destroyable) Destroy() {}
