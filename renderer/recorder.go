package renderer

import (
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/frames"
	"github.com/ironsmile/vulkan-frames/logger"
	"github.com/ironsmile/vulkan-frames/models"
	"github.com/ironsmile/vulkan-frames/swapchain"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

// RecorderConfig lists what a Recorder needs from the device.
type RecorderConfig struct {
	Device         vk.Device
	PhysicalDevice vk.PhysicalDevice
	GraphicsQueue  vk.Queue
	GraphicsFamily uint32
	Geometry       models.Geometry
	ClearColor     [4]float32
}

// Recorder records one command buffer per swapchain image which draws the
// geometry, and keeps the per image uniform buffers up to date. It implements
// frames.Recorder and frames.Scene.
type Recorder struct {
	device         vk.Device
	physicalDevice vk.PhysicalDevice
	graphicsQueue  vk.Queue
	clearColor     [4]float32
	start          time.Time

	commandPool vk.CommandPool
	setLayout   vk.DescriptorSetLayout
	geometry    geometry

	// resources live until Close.
	resources frames.Arena

	// Everything below is rebuilt with the swapchain.
	swapchain      *swapchain.State
	commandBuffers []vk.CommandBuffer
	uniforms       *uniformSet
	prepared       frames.Arena
}

var (
	_ frames.Recorder = (*Recorder)(nil)
	_ frames.Scene    = (*Recorder)(nil)
)

// NewRecorder creates the command pool and the descriptor set layout, and
// uploads the geometry to the device.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	r := &Recorder{
		device:         cfg.Device,
		physicalDevice: cfg.PhysicalDevice,
		graphicsQueue:  cfg.GraphicsQueue,
		clearColor:     cfg.ClearColor,
		start:          time.Now(),
	}

	if err := r.createCommandPool(cfg.GraphicsFamily); err != nil {
		r.Close()
		return nil, errors.Wrap(err, "createCommandPool")
	}

	if err := r.createDescriptorSetLayout(); err != nil {
		r.Close()
		return nil, errors.Wrap(err, "createDescriptorSetLayout")
	}

	g, err := r.uploadGeometry(cfg.Geometry, &r.resources)
	if err != nil {
		r.Close()
		return nil, errors.Wrap(err, "uploading geometry")
	}
	r.geometry = g

	logger.Logger().Debug("geometry uploaded",
		"vertices", len(cfg.Geometry.Vertices),
		"indices", len(cfg.Geometry.Indices),
	)

	return r, nil
}

// SetLayout returns the layout of the descriptor sets bound when drawing. The
// graphics pipeline must be created with it.
func (r *Recorder) SetLayout() vk.DescriptorSetLayout {
	return r.setLayout
}

func (r *Recorder) createCommandPool(graphicsFamily uint32) error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: graphicsFamily,
	}

	var commandPool vk.CommandPool
	res := vk.CreateCommandPool(r.device, &poolInfo, nil, &commandPool)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed to create command pool")
	}
	r.resources.Add(func() {
		vk.DestroyCommandPool(r.device, commandPool, nil)
	})
	r.commandPool = commandPool

	return nil
}

// Prepare allocates one command buffer, uniform buffer and descriptor set for
// every image of sc.
func (r *Recorder) Prepare(sc frames.Swapchain) error {
	state, ok := sc.(*swapchain.State)
	if !ok {
		return errors.Newf("renderer: unsupported swapchain %T", sc)
	}

	r.Release()
	count := state.ImageCount()

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        r.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}

	commandBuffers := make([]vk.CommandBuffer, count)
	res := vk.AllocateCommandBuffers(r.device, &allocInfo, commandBuffers)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed to allocate command buffers")
	}
	r.prepared.Add(func() {
		vk.FreeCommandBuffers(r.device, r.commandPool, uint32(len(commandBuffers)), commandBuffers)
	})

	uniforms, err := r.createUniforms(count, &r.prepared)
	if err != nil {
		r.Release()
		return err
	}

	r.swapchain = state
	r.commandBuffers = commandBuffers
	r.uniforms = uniforms
	return nil
}

// Record fills the command buffer of image index and returns it. The buffer is
// recorded once and submitted every time the image is drawn.
func (r *Recorder) Record(index uint32) (frames.CommandBuffer, error) {
	if r.swapchain == nil {
		return nil, errors.New("renderer: Record called before Prepare")
	}
	if int(index) >= len(r.commandBuffers) {
		return nil, errors.Newf("no command buffer for image %d of %d",
			index, len(r.commandBuffers))
	}

	commandBuffer := r.commandBuffers[index]
	if err := r.recordCommandBuffer(commandBuffer, index); err != nil {
		return nil, err
	}
	return commandBuffer, nil
}

func (r *Recorder) recordCommandBuffer(
	commandBuffer vk.CommandBuffer,
	imageIndex uint32,
) error {
	sc := r.swapchain
	extent := sc.Extent()

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: 0,
	}

	res := vk.BeginCommandBuffer(commandBuffer, &beginInfo)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "cannot add begin command to the buffer")
	}

	var clearValues [2]vk.ClearValue

	clearValues[0].SetColor(r.clearColor[:])
	clearValues[1].SetDepthStencil(1, 0)

	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  sc.RenderPass(),
		Framebuffer: sc.Framebuffer(imageIndex),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues[:],
	}

	vk.CmdBeginRenderPass(commandBuffer, &renderPassInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, sc.Pipeline())

	vertexBuffers := []vk.Buffer{r.geometry.vertices.handle}
	offsets := []vk.DeviceSize{0}
	vk.CmdBindVertexBuffers(commandBuffer, 0, 1, vertexBuffers, offsets)

	vk.CmdBindIndexBuffer(commandBuffer, r.geometry.indices.handle, 0, vk.IndexTypeUint32)

	viewport := vk.Viewport{
		X: 0, Y: 0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	vk.CmdSetViewport(commandBuffer, 0, 1, []vk.Viewport{viewport})

	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	vk.CmdSetScissor(commandBuffer, 0, 1, []vk.Rect2D{scissor})

	vk.CmdBindDescriptorSets(
		commandBuffer,
		vk.PipelineBindPointGraphics,
		sc.PipelineLayout(),
		0,
		1,
		[]vk.DescriptorSet{r.uniforms.sets[imageIndex]},
		0,
		nil,
	)

	vk.CmdDrawIndexed(commandBuffer, r.geometry.indexCount, 1, 0, 0, 0)
	vk.CmdEndRenderPass(commandBuffer)

	if err := vkcheck.Result(vk.EndCommandBuffer(commandBuffer)); err != nil {
		return errors.Wrap(err, "recording commands to buffer failed")
	}
	return nil
}

// Update writes the uniforms for the current time into the buffer of image
// index. The image's previous frame must have finished.
func (r *Recorder) Update(index uint32) error {
	if r.uniforms == nil {
		return errors.New("renderer: Update called before Prepare")
	}

	ubo := ComputeUniforms(r.swapchain.Extent(), time.Since(r.start))
	return r.uniforms.write(index, &ubo)
}

// Release frees the command buffers, uniform buffers and descriptor sets made
// by Prepare.
func (r *Recorder) Release() {
	r.prepared.Release()
	r.swapchain = nil
	r.commandBuffers = nil
	r.uniforms = nil
}

// Close releases everything the recorder created. The device must be idle.
func (r *Recorder) Close() {
	r.Release()
	r.resources.Release()
}
