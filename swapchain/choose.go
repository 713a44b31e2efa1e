package swapchain

import (
	"cmp"
	"math"

	vk "github.com/vulkan-go/vulkan"
)

// Support describes what a surface supports on a physical device.
type Support struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate reports whether a swapchain can be created at all.
func (s Support) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// ChooseSurfaceFormat prefers 8 bit BGRA sRGB and falls back to the first
// format the surface reports.
func ChooseSurfaceFormat(availableFormats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == vk.FormatB8g8r8a8Srgb &&
			format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

// ChoosePresentMode prefers mailbox. FIFO is always available.
func ChoosePresentMode(available []vk.PresentMode) vk.PresentMode {
	for _, mode := range available {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}

	return vk.PresentModeFifo
}

// ChooseExtent returns the surface's current extent when the surface dictates
// one. Otherwise it is the framebuffer size clamped to the supported range.
func ChooseExtent(
	capabilities vk.SurfaceCapabilities,
	fbWidth, fbHeight int,
) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}

	return vk.Extent2D{
		Width: clamp(
			uint32(max(fbWidth, 0)),
			capabilities.MinImageExtent.Width,
			capabilities.MaxImageExtent.Width,
		),
		Height: clamp(
			uint32(max(fbHeight, 0)),
			capabilities.MinImageExtent.Height,
			capabilities.MaxImageExtent.Height,
		),
	}
}

// ImageCount asks for one image more than the minimum so that the driver is
// never waited on. A MaxImageCount of zero means there is no maximum.
func ImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 &&
		imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func clamp[T cmp.Ordered](val, min, max T) T {
	if val < min {
		val = min
	}
	if val > max {
		val = max
	}
	return val
}
