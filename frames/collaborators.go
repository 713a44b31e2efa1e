package frames

import (
	"time"
)

// Window is the part of the windowing system the loop needs.
type Window interface {
	// ShouldClose reports whether the user asked for the window to close.
	ShouldClose() bool

	// PollEvents processes pending events without blocking.
	PollEvents()

	// WaitEvents blocks until at least one event arrives.
	WaitEvents()

	// FramebufferSize returns the current framebuffer size in pixels.
	FramebufferSize() (width, height int)
}

// Semaphore orders work on the device timeline.
type Semaphore interface {
	Destroy()
}

// Fence is signaled by the device when submitted work completes and can be
// waited on by the host.
type Fence interface {
	// Wait blocks until the fence is signaled. It returns an error matching
	// ErrTimeout when timeout passes first.
	Wait(timeout time.Duration) error

	// Reset returns the fence to the unsignaled state.
	Reset() error

	Destroy()
}

// CommandBuffer is an opaque recorded command buffer. Only the Device which
// belongs to the Recorder that produced it knows what is inside.
type CommandBuffer any

// Submission is one batch of work for the graphics queue. The device waits on
// Wait at the color attachment output stage, then signals Signal and Fence
// once Commands finished executing.
type Submission struct {
	Commands CommandBuffer
	Wait     Semaphore
	Signal   Semaphore
	Fence    Fence
}

// Device creates synchronization primitives and executes submissions.
type Device interface {
	NewSemaphore() (Semaphore, error)

	// NewFence creates a fence, already signaled when signaled is true.
	NewFence(signaled bool) (Fence, error)

	Submit(Submission) error

	// WaitIdle blocks until all work submitted to the device has finished.
	WaitIdle() error
}

// Swapchain is the chain of presentable images together with everything which
// depends on its format or extent.
type Swapchain interface {
	ImageCount() int

	// Acquire returns the index of the next image. signal is signaled once the
	// image is ready to be rendered into. An error matching ErrStale means the
	// swapchain has to be rebuilt.
	Acquire(timeout time.Duration, signal Semaphore) (uint32, error)

	// Present queues the image for presentation after wait is signaled. An
	// error matching ErrStale means the swapchain has to be rebuilt.
	Present(index uint32, wait Semaphore) error

	// Destroy releases the swapchain and every resource built for it.
	Destroy()
}

// Presenter builds swapchains for the window surface.
type Presenter interface {
	// Build creates a new swapchain for a framebuffer of the given size.
	Build(width, height int) (Swapchain, error)
}

// Recorder records one command buffer per swapchain image.
type Recorder interface {
	// Prepare readies the recorder for the images of sc.
	Prepare(sc Swapchain) error

	// Record fully records the command buffer for image index.
	Record(index uint32) (CommandBuffer, error)

	// Release drops everything created by Prepare and Record.
	Release()
}

// Scene updates the dynamic state read by the command buffer of an image,
// such as per image uniform buffers.
type Scene interface {
	Update(index uint32) error
}
