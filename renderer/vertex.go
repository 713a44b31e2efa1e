package renderer

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/models"
)

// VertexSize is the stride between vertices in the vertex buffer.
func VertexSize() uint32 {
	return uint32(unsafe.Sizeof(models.Vertex{}))
}

// VertexBindingDescription describes the single vertex buffer binding.
func VertexBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    VertexSize(),
		InputRate: vk.VertexInputRateVertex,
	}
}

// VertexAttributeDescriptions maps models.Vertex fields to shader locations.
func VertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(models.Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(models.Vertex{}.Color)),
		},
		{
			Binding:  0,
			Location: 2,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(models.Vertex{}.TexCoord)),
		},
	}
}
