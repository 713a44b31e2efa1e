package renderer

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/frames"
	"github.com/ironsmile/vulkan-frames/memory"
	"github.com/ironsmile/vulkan-frames/models"
	"github.com/ironsmile/vulkan-frames/unsafer"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

// buffer is a vk.Buffer bound to its own allocation.
type buffer struct {
	handle vk.Buffer
	memory vk.DeviceMemory
	size   vk.DeviceSize
}

// geometry is models.Geometry uploaded into device local memory.
type geometry struct {
	vertices   buffer
	indices    buffer
	indexCount uint32
}

func (r *Recorder) createBuffer(
	size vk.DeviceSize,
	usage vk.BufferUsageFlags,
	properties vk.MemoryPropertyFlags,
	arena *frames.Arena,
) (buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	res := vk.CreateBuffer(r.device, &bufferInfo, nil, &handle)
	if err := vkcheck.Result(res); err != nil {
		return buffer{}, errors.Wrap(err, "failed to create buffer")
	}
	destroyBuffer := func() {
		vk.DestroyBuffer(r.device, handle, nil)
	}

	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(r.device, handle, &memRequirements)

	bufferMemory, err := memory.Allocate(r.device, r.physicalDevice, memRequirements, properties)
	if err != nil {
		destroyBuffer()
		return buffer{}, errors.Wrap(err, "buffer memory")
	}
	memory.Track(arena, destroyBuffer, func() {
		vk.FreeMemory(r.device, bufferMemory, nil)
	})

	res = vk.BindBufferMemory(r.device, handle, bufferMemory, 0)
	if err := vkcheck.Result(res); err != nil {
		return buffer{}, errors.Wrap(err, "failed to bind buffer memory")
	}

	return buffer{handle: handle, memory: bufferMemory, size: size}, nil
}

// upload copies data into a new device local buffer through a host visible
// staging buffer.
func (r *Recorder) upload(
	data []byte,
	usage vk.BufferUsageFlags,
	arena *frames.Arena,
) (buffer, error) {
	bufferSize := vk.DeviceSize(len(data))

	var staging frames.Arena
	defer staging.Release()

	stagingBuffer, err := r.createBuffer(
		bufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
		&staging,
	)
	if err != nil {
		return buffer{}, errors.Wrap(err, "creating the staging buffer")
	}

	var pData unsafe.Pointer
	res := vk.MapMemory(r.device, stagingBuffer.memory, 0, bufferSize, 0, &pData)
	if err := vkcheck.Result(res); err != nil {
		return buffer{}, errors.Wrap(err, "mapping the staging buffer")
	}
	vk.Memcopy(pData, data)
	vk.UnmapMemory(r.device, stagingBuffer.memory)

	deviceBuffer, err := r.createBuffer(
		bufferSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		arena,
	)
	if err != nil {
		return buffer{}, err
	}

	if err := r.copyBuffer(stagingBuffer.handle, deviceBuffer.handle, bufferSize); err != nil {
		return buffer{}, errors.Wrap(err, "failed to copy the staging buffer")
	}

	return deviceBuffer, nil
}

func (r *Recorder) uploadGeometry(g models.Geometry, arena *frames.Arena) (geometry, error) {
	if err := g.Validate(); err != nil {
		return geometry{}, err
	}

	vertices, err := r.upload(
		unsafer.SliceToBytes(g.Vertices),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		arena,
	)
	if err != nil {
		return geometry{}, errors.Wrap(err, "creating the vertex buffer")
	}

	indices, err := r.upload(
		unsafer.SliceToBytes(g.Indices),
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit),
		arena,
	)
	if err != nil {
		return geometry{}, errors.Wrap(err, "creating the index buffer")
	}

	return geometry{
		vertices:   vertices,
		indices:    indices,
		indexCount: uint32(len(g.Indices)),
	}, nil
}

func (r *Recorder) copyBuffer(src, dst vk.Buffer, size vk.DeviceSize) error {
	commandBuffer, err := r.beginSingleTimeCommands()
	if err != nil {
		return errors.Wrap(err, "failed to begin single time commands")
	}

	copyRegion := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      size,
	}

	vk.CmdCopyBuffer(commandBuffer, src, dst, 1, []vk.BufferCopy{copyRegion})

	return r.endSingleTimeCommands(commandBuffer)
}

func (r *Recorder) beginSingleTimeCommands() (vk.CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        r.commandPool,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	res := vk.AllocateCommandBuffers(r.device, &allocInfo, commandBuffers)
	if err := vkcheck.Result(res); err != nil {
		return nil, errors.Wrap(err, "failed to allocate command buffer")
	}
	commandBuffer := commandBuffers[0]

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}

	res = vk.BeginCommandBuffer(commandBuffer, &beginInfo)
	if err := vkcheck.Result(res); err != nil {
		vk.FreeCommandBuffers(r.device, r.commandPool, 1, commandBuffers)
		return nil, errors.Wrap(err, "failed to begin command buffer")
	}

	return commandBuffer, nil
}

func (r *Recorder) endSingleTimeCommands(commandBuffer vk.CommandBuffer) error {
	commandBuffers := []vk.CommandBuffer{commandBuffer}

	defer func() {
		vk.FreeCommandBuffers(r.device, r.commandPool, 1, commandBuffers)
	}()

	res := vk.EndCommandBuffer(commandBuffer)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed end command buffer")
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    commandBuffers,
	}

	res = vk.QueueSubmit(r.graphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed to submit to graphics queue")
	}

	res = vk.QueueWaitIdle(r.graphicsQueue)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed to wait on graphics queue idle")
	}

	return nil
}
