package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/ironsmile/vulkan-frames/frames"
)

// glfwWindow adapts a GLFW window to frames.Window.
type glfwWindow struct {
	*glfw.Window
}

var _ frames.Window = (*glfwWindow)(nil)

func (w *glfwWindow) PollEvents() {
	glfw.PollEvents()
}

func (w *glfwWindow) WaitEvents() {
	glfw.WaitEvents()
}

func (w *glfwWindow) FramebufferSize() (int, int) {
	return w.GetFramebufferSize()
}
