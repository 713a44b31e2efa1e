// Package renderer implements the frame loop's device, command recorder and
// scene on top of Vulkan.
package renderer

import (
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/frames"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

// Device submits work to the graphics queue of a logical device and creates
// its synchronization primitives.
type Device struct {
	device        vk.Device
	graphicsQueue vk.Queue
}

var _ frames.Device = (*Device)(nil)

// NewDevice wraps a logical device and its graphics queue.
func NewDevice(device vk.Device, graphicsQueue vk.Queue) *Device {
	return &Device{
		device:        device,
		graphicsQueue: graphicsQueue,
	}
}

// NewSemaphore creates a binary semaphore.
func (d *Device) NewSemaphore() (frames.Semaphore, error) {
	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var sem vk.Semaphore
	res := vk.CreateSemaphore(d.device, &semaphoreInfo, nil, &sem)
	if err := vkcheck.Result(res); err != nil {
		return nil, errors.Wrap(err, "failed to create semaphore")
	}

	return &Semaphore{device: d.device, handle: sem}, nil
}

// NewFence creates a fence, already signaled when signaled is true.
func (d *Device) NewFence(signaled bool) (frames.Fence, error) {
	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	res := vk.CreateFence(d.device, &fenceInfo, nil, &fence)
	if err := vkcheck.Result(res); err != nil {
		return nil, errors.Wrap(err, "failed to create fence")
	}

	return &Fence{device: d.device, handle: fence}, nil
}

// Submit queues the command buffer on the graphics queue. Color output waits
// for s.Wait, and s.Signal and s.Fence are signaled when the work completes.
func (d *Device) Submit(s frames.Submission) error {
	commandBuffer, ok := s.Commands.(vk.CommandBuffer)
	if !ok {
		return errors.Newf("renderer: unsupported command buffer %T", s.Commands)
	}
	wait, ok := s.Wait.(*Semaphore)
	if !ok {
		return errors.Newf("renderer: unsupported wait semaphore %T", s.Wait)
	}
	signal, ok := s.Signal.(*Semaphore)
	if !ok {
		return errors.Newf("renderer: unsupported signal semaphore %T", s.Signal)
	}
	fence, ok := s.Fence.(*Fence)
	if !ok {
		return errors.Newf("renderer: unsupported fence %T", s.Fence)
	}

	signalSemaphores := []vk.Semaphore{signal.handle}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.handle},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer},
		PSignalSemaphores:    signalSemaphores,
		SignalSemaphoreCount: uint32(len(signalSemaphores)),
	}

	res := vk.QueueSubmit(
		d.graphicsQueue,
		1,
		[]vk.SubmitInfo{submitInfo},
		fence.handle,
	)
	return vkcheck.Result(res)
}

// WaitIdle blocks until the device has finished all submitted work.
func (d *Device) WaitIdle() error {
	return vkcheck.Result(vk.DeviceWaitIdle(d.device))
}

// Semaphore wraps a vk.Semaphore.
type Semaphore struct {
	device vk.Device
	handle vk.Semaphore
}

// VkSemaphore returns the wrapped handle.
func (s *Semaphore) VkSemaphore() vk.Semaphore {
	return s.handle
}

// Destroy destroys the semaphore. Calling it again does nothing.
func (s *Semaphore) Destroy() {
	if s.handle == vk.NullSemaphore {
		return
	}
	vk.DestroySemaphore(s.device, s.handle, nil)
	s.handle = vk.NullSemaphore
}

// Fence wraps a vk.Fence.
type Fence struct {
	device vk.Device
	handle vk.Fence
}

// VkFence returns the wrapped handle.
func (f *Fence) VkFence() vk.Fence {
	return f.handle
}

// Wait blocks until the fence is signaled. It returns an error matching
// frames.ErrTimeout when timeout passes first.
func (f *Fence) Wait(timeout time.Duration) error {
	res := vk.WaitForFences(
		f.device,
		1,
		[]vk.Fence{f.handle},
		vk.True,
		uint64(timeout.Nanoseconds()),
	)
	return vkcheck.Result(res)
}

// Reset puts the fence back into the unsignaled state.
func (f *Fence) Reset() error {
	return vkcheck.Result(vk.ResetFences(f.device, 1, []vk.Fence{f.handle}))
}

// Destroy destroys the fence. Calling it again does nothing.
func (f *Fence) Destroy() {
	if f.handle == vk.NullFence {
		return
	}
	vk.DestroyFence(f.device, f.handle, nil)
	f.handle = vk.NullFence
}
