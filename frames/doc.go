// Package frames drives the per-frame rendering lifecycle: acquiring a
// swapchain image, submitting the command buffer recorded for it with the
// right semaphore and fence dependencies, presenting it and rebuilding every
// swapchain dependent resource when the surface changes.
//
// The package talks to the GPU only through the small interfaces in
// collaborators.go. The renderer and swapchain packages implement them on
// top of Vulkan.
package frames
