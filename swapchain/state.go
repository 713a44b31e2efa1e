package swapchain

import (
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/frames"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

// SemaphoreHandle is implemented by semaphores which wrap a vk.Semaphore.
type SemaphoreHandle interface {
	VkSemaphore() vk.Semaphore
}

// State is a built swapchain together with everything which depends on its
// format or extent: image views, the depth attachment, the render pass, the
// graphics pipeline and one framebuffer per image.
type State struct {
	device       vk.Device
	presentQueue vk.Queue

	handle      vk.Swapchain
	format      vk.Format
	extent      vk.Extent2D
	presentMode vk.PresentMode

	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer

	depthFormat vk.Format
	depthImage  vk.Image
	depthMemory vk.DeviceMemory
	depthView   vk.ImageView

	renderPass     vk.RenderPass
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline

	resources frames.Arena
}

var _ frames.Swapchain = (*State)(nil)

// ImageCount returns the number of images the presentation engine created.
func (s *State) ImageCount() int {
	return len(s.images)
}

// Extent returns the size of the swapchain images.
func (s *State) Extent() vk.Extent2D {
	return s.extent
}

// Format returns the pixel format of the swapchain images.
func (s *State) Format() vk.Format {
	return s.format
}

// PresentMode returns the mode images are presented with.
func (s *State) PresentMode() vk.PresentMode {
	return s.presentMode
}

// RenderPass returns the render pass compatible with the framebuffers.
func (s *State) RenderPass() vk.RenderPass {
	return s.renderPass
}

// Pipeline returns the graphics pipeline.
func (s *State) Pipeline() vk.Pipeline {
	return s.pipeline
}

// PipelineLayout returns the layout of the graphics pipeline.
func (s *State) PipelineLayout() vk.PipelineLayout {
	return s.pipelineLayout
}

// Framebuffer returns the framebuffer which renders into image index.
func (s *State) Framebuffer(index uint32) vk.Framebuffer {
	return s.framebuffers[index]
}

// Acquire returns the index of the next presentable image. The image is ready
// to be rendered into once signal is signaled. A suboptimal swapchain still
// hands out an image, so it is only reported as stale on present.
func (s *State) Acquire(timeout time.Duration, signal frames.Semaphore) (uint32, error) {
	sem, err := semaphore(signal)
	if err != nil {
		return 0, err
	}

	var imageIndex uint32
	res := vk.AcquireNextImage(
		s.device,
		s.handle,
		uint64(timeout.Nanoseconds()),
		sem,
		vk.NullFence,
		&imageIndex,
	)
	if res == vk.Suboptimal {
		return imageIndex, nil
	}
	if err := vkcheck.Result(res); err != nil {
		return 0, err
	}

	return imageIndex, nil
}

// Present queues image index for presentation once wait is signaled.
func (s *State) Present(index uint32, wait frames.Semaphore) error {
	sem, err := semaphore(wait)
	if err != nil {
		return err
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sem},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.handle},
		PImageIndices:      []uint32{index},
	}

	return vkcheck.Result(vk.QueuePresent(s.presentQueue, &presentInfo))
}

// Destroy releases the swapchain and everything built with it. The device must
// not be using any of them.
func (s *State) Destroy() {
	s.resources.Release()
}

func semaphore(s frames.Semaphore) (vk.Semaphore, error) {
	h, ok := s.(SemaphoreHandle)
	if !ok {
		return vk.NullSemaphore, errors.Newf("swapchain: unsupported semaphore %T", s)
	}
	return h.VkSemaphore(), nil
}
