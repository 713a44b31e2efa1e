// Package memory picks Vulkan memory types and allocates memory for buffers
// and images.
package memory

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/frames"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

// SelectType returns the first memory type allowed by typeFilter which has all
// of the requested properties.
func SelectType(
	memProperties vk.PhysicalDeviceMemoryProperties,
	typeFilter uint32,
	properties vk.MemoryPropertyFlags,
) (uint32, error) {
	for i := uint32(0); i < memProperties.MemoryTypeCount; i++ {
		memType := memProperties.MemoryTypes[i]
		memType.Deref()

		if typeFilter&(1<<i) == 0 {
			continue
		}

		if memType.PropertyFlags&properties != properties {
			continue
		}

		return i, nil
	}

	return 0, errors.Newf("failed to find suitable memory type (filter %b, properties %b)",
		typeFilter, properties)
}

// FindType queries the memory properties of physicalDevice and calls
// SelectType with them.
func FindType(
	physicalDevice vk.PhysicalDevice,
	typeFilter uint32,
	properties vk.MemoryPropertyFlags,
) (uint32, error) {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physicalDevice, &memProperties)
	memProperties.Deref()

	return SelectType(memProperties, typeFilter, properties)
}

// Allocate allocates memory satisfying requirements with the given
// properties.
func Allocate(
	device vk.Device,
	physicalDevice vk.PhysicalDevice,
	requirements vk.MemoryRequirements,
	properties vk.MemoryPropertyFlags,
) (vk.DeviceMemory, error) {
	requirements.Deref()

	memTypeIndex, err := FindType(physicalDevice, requirements.MemoryTypeBits, properties)
	if err != nil {
		return vk.NullDeviceMemory, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	var mem vk.DeviceMemory
	if err := vkcheck.Result(vk.AllocateMemory(device, &allocInfo, nil, &mem)); err != nil {
		return vk.NullDeviceMemory, errors.Wrap(err, "failed to allocate memory")
	}

	return mem, nil
}

// Track registers a resource and the memory bound to it with arena so that
// the resource is destroyed before its memory is freed.
func Track(arena *frames.Arena, destroy, free func()) {
	arena.Add(free)
	arena.Add(destroy)
}
