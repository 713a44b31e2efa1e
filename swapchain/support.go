package swapchain

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/vkcheck"
)

// QuerySupport reads the surface capabilities, formats and present modes of
// device for surface.
func QuerySupport(device vk.PhysicalDevice, surface vk.Surface) (Support, error) {
	details := Support{}

	var capabilities vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &capabilities)
	if err := vkcheck.Result(res); err != nil {
		return details, errors.Wrap(err, "failed to query device surface capabilities")
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()

	details.Capabilities = capabilities

	var formatCount uint32
	res = vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil)
	if err := vkcheck.Result(res); err != nil {
		return details, errors.Wrap(err, "failed to query device surface formats")
	}

	if formatCount != 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, formats)
		for _, format := range formats {
			format.Deref()
			details.Formats = append(details.Formats, format)
		}
	}

	var presentModeCount uint32
	res = vk.GetPhysicalDeviceSurfacePresentModes(
		device, surface, &presentModeCount, nil,
	)
	if err := vkcheck.Result(res); err != nil {
		return details, errors.Wrap(err, "failed to query device surface present modes")
	}

	if presentModeCount != 0 {
		presentModes := make([]vk.PresentMode, presentModeCount)
		vk.GetPhysicalDeviceSurfacePresentModes(
			device, surface, &presentModeCount, presentModes,
		)
		details.PresentModes = presentModes
	}

	return details, nil
}

// FindDepthFormat returns the first depth format usable as an optimally
// tiled depth attachment.
func FindDepthFormat(physicalDevice vk.PhysicalDevice) (vk.Format, error) {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	features := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)

	for _, format := range candidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(physicalDevice, format, &props)
		props.Deref()

		if props.OptimalTilingFeatures&features == features {
			return format, nil
		}
	}

	return vk.FormatUndefined, errors.New("could not find suitable depth format")
}
