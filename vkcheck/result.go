// Package vkcheck turns Vulkan result codes into errors which the frames
// package knows how to classify.
package vkcheck

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/frames"
)

// Result returns nil for vk.Success and an error for everything else.
// Out of date and suboptimal swapchains match frames.ErrStale, lost devices
// and surfaces match frames.ErrDeviceLost, failed allocations match
// frames.ErrResourceExhausted and timeouts match frames.ErrTimeout.
func Result(res vk.Result) error {
	switch res {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return errors.Mark(resultError(res), frames.ErrStale)
	case vk.ErrorDeviceLost, vk.ErrorSurfaceLost:
		return errors.Mark(resultError(res), frames.ErrDeviceLost)
	case vk.ErrorOutOfHostMemory, vk.ErrorOutOfDeviceMemory,
		vk.ErrorFragmentedPool, vk.ErrorOutOfPoolMemory:
		return errors.Mark(resultError(res), frames.ErrResourceExhausted)
	case vk.Timeout, vk.NotReady:
		return errors.Mark(resultError(res), frames.ErrTimeout)
	default:
		return resultError(res)
	}
}

func resultError(res vk.Result) error {
	if err := vk.Error(res); err != nil {
		return err
	}
	return errors.Newf("vulkan result %d", int32(res))
}
