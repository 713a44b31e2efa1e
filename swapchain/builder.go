// Package swapchain builds Vulkan swapchains and every object which depends on
// the swapchain's format or extent.
package swapchain

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/frames"
	"github.com/ironsmile/vulkan-frames/logger"
	"github.com/ironsmile/vulkan-frames/memory"
	"github.com/ironsmile/vulkan-frames/queues"
	"github.com/ironsmile/vulkan-frames/shaders"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

// Builder creates swapchains for one surface. It implements frames.Presenter.
type Builder struct {
	Device         vk.Device
	PhysicalDevice vk.PhysicalDevice
	Surface        vk.Surface
	Families       queues.FamilyIndices
	PresentQueue   vk.Queue

	Shaders          shaders.Code
	SetLayout        vk.DescriptorSetLayout
	VertexBinding    vk.VertexInputBindingDescription
	VertexAttributes []vk.VertexInputAttributeDescription
}

var _ frames.Presenter = (*Builder)(nil)

// Build creates a swapchain sized for a width x height framebuffer together
// with its image views, depth attachment, render pass, pipeline and
// framebuffers. Nothing is left behind when it fails.
func (b *Builder) Build(width, height int) (frames.Swapchain, error) {
	s := &State{
		device:       b.Device,
		presentQueue: b.PresentQueue,
	}

	steps := []struct {
		name string
		run  func(*State) error
	}{
		{"createSwapChain", func(s *State) error { return b.createSwapChain(s, width, height) }},
		{"createImageViews", b.createImageViews},
		{"createDepthResources", b.createDepthResources},
		{"createRenderPass", b.createRenderPass},
		{"createGraphicsPipeline", b.createGraphicsPipeline},
		{"createFramebuffers", b.createFramebuffers},
	}

	for _, step := range steps {
		if err := step.run(s); err != nil {
			s.Destroy()
			return nil, errors.Wrap(err, step.name)
		}
	}

	logger.Logger().Debug("swapchain created",
		"width", s.extent.Width,
		"height", s.extent.Height,
		"images", len(s.images),
		"format", s.format,
		"present_mode", s.presentMode,
	)

	return s, nil
}

func (b *Builder) createSwapChain(s *State, width, height int) error {
	swapChainSupport, err := QuerySupport(b.PhysicalDevice, b.Surface)
	if err != nil {
		return err
	}
	if !swapChainSupport.Adequate() {
		return errors.New("surface has no formats or present modes")
	}

	surfaceFormat := ChooseSurfaceFormat(swapChainSupport.Formats)
	presentMode := ChoosePresentMode(swapChainSupport.PresentModes)
	extent := ChooseExtent(swapChainSupport.Capabilities, width, height)
	imageCount := ImageCount(swapChainSupport.Capabilities)

	if extent.Width == 0 || extent.Height == 0 {
		return errors.Newf("cannot create a %dx%d swap chain", extent.Width, extent.Height)
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          b.Surface,
		MinImageCount:    imageCount,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageFormat:      surfaceFormat.Format,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     swapChainSupport.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}

	if b.Families.Shared() {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	} else {
		indices := b.Families.Unique()
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = uint32(len(indices))
		createInfo.PQueueFamilyIndices = indices
	}

	var swapChain vk.Swapchain
	res := vk.CreateSwapchain(b.Device, &createInfo, nil, &swapChain)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed to create swap chain")
	}
	s.resources.Add(func() {
		vk.DestroySwapchain(b.Device, swapChain, nil)
	})
	s.handle = swapChain

	var imagesCount uint32
	res = vk.GetSwapchainImages(b.Device, swapChain, &imagesCount, nil)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed to get swap chain images count")
	}

	images := make([]vk.Image, imagesCount)
	res = vk.GetSwapchainImages(b.Device, swapChain, &imagesCount, images)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed to get swap chain images")
	}

	s.images = images[:imagesCount]
	s.format = surfaceFormat.Format
	s.extent = extent
	s.presentMode = presentMode

	return nil
}

func (b *Builder) createImageViews(s *State) error {
	s.views = make([]vk.ImageView, 0, len(s.images))

	for i, swapChainImage := range s.images {
		imageView, err := b.createImageView(
			s,
			swapChainImage,
			s.format,
			vk.ImageAspectFlags(vk.ImageAspectColorBit),
		)
		if err != nil {
			return errors.Wrapf(err, "failed to create image view %d", i)
		}

		s.views = append(s.views, imageView)
	}

	return nil
}

func (b *Builder) createDepthResources(s *State) error {
	depthFormat, err := FindDepthFormat(b.PhysicalDevice)
	if err != nil {
		return err
	}
	s.depthFormat = depthFormat

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  s.extent.Width,
			Height: s.extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        depthFormat,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		SharingMode:   vk.SharingModeExclusive,
		Samples:       vk.SampleCount1Bit,
	}

	var depthImage vk.Image
	res := vk.CreateImage(b.Device, &imageInfo, nil, &depthImage)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "could not create depth image")
	}
	destroyImage := func() {
		vk.DestroyImage(b.Device, depthImage, nil)
	}
	s.depthImage = depthImage

	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(b.Device, depthImage, &memRequirements)

	depthMemory, err := memory.Allocate(
		b.Device,
		b.PhysicalDevice,
		memRequirements,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		destroyImage()
		return errors.Wrap(err, "depth image memory")
	}
	memory.Track(&s.resources, destroyImage, func() {
		vk.FreeMemory(b.Device, depthMemory, nil)
	})
	s.depthMemory = depthMemory

	res = vk.BindImageMemory(b.Device, depthImage, depthMemory, 0)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "failed to bind depth image memory")
	}

	depthView, err := b.createImageView(
		s,
		depthImage,
		depthFormat,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create depth image view")
	}
	s.depthView = depthView

	return nil
}

func (b *Builder) createImageView(
	s *State,
	image vk.Image,
	format vk.Format,
	aspectFlags vk.ImageAspectFlags,
) (vk.ImageView, error) {
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var imageView vk.ImageView
	res := vk.CreateImageView(b.Device, &createInfo, nil, &imageView)
	if err := vkcheck.Result(res); err != nil {
		return vk.NullImageView, err
	}
	s.resources.Add(func() {
		vk.DestroyImageView(b.Device, imageView, nil)
	})

	return imageView, nil
}

func (b *Builder) createFramebuffers(s *State) error {
	s.framebuffers = make([]vk.Framebuffer, 0, len(s.views))

	for i, swapChainView := range s.views {
		attachments := []vk.ImageView{
			swapChainView,
			s.depthView,
		}

		frameBufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      s.renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           s.extent.Width,
			Height:          s.extent.Height,
			Layers:          1,
		}

		var frameBuffer vk.Framebuffer
		res := vk.CreateFramebuffer(b.Device, &frameBufferInfo, nil, &frameBuffer)
		if err := vkcheck.Result(res); err != nil {
			return errors.Wrapf(err, "failed to create frame buffer %d", i)
		}
		s.resources.Add(func() {
			vk.DestroyFramebuffer(b.Device, frameBuffer, nil)
		})

		s.framebuffers = append(s.framebuffers, frameBuffer)
	}

	return nil
}
