package queues

import (
	"github.com/ironsmile/vulkan-frames/optional"
)

// FamilyIndices holds the indexes of the Vulkan queue families the renderer
// submits to.
type FamilyIndices struct {

	// Graphics is the index of the family which executes the recorded frames.
	Graphics optional.Optional[uint32]

	// Present is the index of the queue family used for presenting swapchain
	// images to the drawing surface.
	Present optional.Optional[uint32]
}

// IsComplete returns true if all families have been set.
func (f *FamilyIndices) IsComplete() bool {
	return f.Graphics.HasValue() && f.Present.HasValue()
}

// Shared reports whether graphics and presentation happen on the same family.
// Swapchain images can then be owned exclusively by it.
func (f *FamilyIndices) Shared() bool {
	return f.IsComplete() && f.Graphics.Get() == f.Present.Get()
}

// Unique returns the distinct family indexes in graphics, present order. Only
// the families which have been set are returned.
func (f *FamilyIndices) Unique() []uint32 {
	var out []uint32
	if f.Graphics.HasValue() {
		out = append(out, f.Graphics.Get())
	}
	if f.Present.HasValue() && !f.Shared() {
		out = append(out, f.Present.Get())
	}
	return out
}
