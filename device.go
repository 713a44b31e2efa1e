package main

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/logger"
	"github.com/ironsmile/vulkan-frames/queues"
	"github.com/ironsmile/vulkan-frames/swapchain"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

func (a *App) pickPhysicalDevice() error {
	var deviceCount uint32
	err := vkcheck.Result(vk.EnumeratePhysicalDevices(a.instance, &deviceCount, nil))
	if err != nil {
		return errors.Wrap(err, "failed to get the number of physical devices")
	}
	if deviceCount == 0 {
		return errors.New("failed to find GPUs with Vulkan support")
	}

	pDevices := make([]vk.PhysicalDevice, deviceCount)
	err = vkcheck.Result(vk.EnumeratePhysicalDevices(a.instance, &deviceCount, pDevices))
	if err != nil {
		return errors.Wrap(err, "failed to enumerate the physical devices")
	}

	var (
		selectedDevice vk.PhysicalDevice
		score          uint32
	)

	for _, device := range pDevices {
		deviceScore := a.getDeviceScore(device)

		if deviceScore > score {
			selectedDevice = device
			score = deviceScore
		}
	}

	if selectedDevice == vk.PhysicalDevice(vk.NullHandle) {
		return errors.New("failed to find suitable physical devices")
	}

	a.physicalDevice = selectedDevice
	a.families = a.findQueueFamilies(selectedDevice)
	return nil
}

// getDeviceScore returns how suitable is this device for the current program.
// Bigger score means better. Zero means the device cannot be used.
func (a *App) getDeviceScore(device vk.PhysicalDevice) uint32 {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()

	score := scoreDevice(properties.DeviceType, a.isDeviceSuitable(device))

	logger.Logger().Debug("available device",
		"name", vk.ToString(properties.DeviceName[:]),
		"score", score,
	)

	return score
}

func scoreDevice(deviceType vk.PhysicalDeviceType, suitable bool) uint32 {
	if !suitable {
		return 0
	}

	switch deviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 1000
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 100
	default:
		return 1
	}
}

func (a *App) isDeviceSuitable(device vk.PhysicalDevice) bool {
	indices := a.findQueueFamilies(device)
	if !indices.IsComplete() || !a.checkDeviceExtensionSupport(device) {
		return false
	}

	support, err := swapchain.QuerySupport(device, a.surface)
	if err != nil {
		logger.Logger().Warn("querying swap chain support", "err", err)
		return false
	}

	return support.Adequate()
}

// findQueueFamilies returns a FamilyIndices populated with Vulkan queue
// families needed by the program.
func (a *App) findQueueFamilies(device vk.PhysicalDevice) queues.FamilyIndices {
	indices := queues.FamilyIndices{}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)

	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i, family := range queueFamilies {
		family.Deref()

		if family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			indices.Graphics.Set(uint32(i))
		}

		var hasPresent vk.Bool32
		err := vkcheck.Result(
			vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), a.surface, &hasPresent),
		)
		if err != nil {
			logger.Logger().Warn("querying surface support",
				"family", i,
				"err", err,
			)
		} else if hasPresent.B() {
			indices.Present.Set(uint32(i))
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices
}

func (a *App) checkDeviceExtensionSupport(device vk.PhysicalDevice) bool {
	var extensionsCount uint32
	res := vk.EnumerateDeviceExtensionProperties(device, "", &extensionsCount, nil)
	if err := vkcheck.Result(res); err != nil {
		logger.Logger().Warn("enumerating device extension properties count", "err", err)
		return false
	}

	availableExtensions := make([]vk.ExtensionProperties, extensionsCount)
	res = vk.EnumerateDeviceExtensionProperties(device, "", &extensionsCount,
		availableExtensions)
	if err := vkcheck.Result(res); err != nil {
		logger.Logger().Warn("getting device extension properties", "err", err)
		return false
	}

	available := make([]string, 0, len(availableExtensions))
	for _, extension := range availableExtensions {
		extension.Deref()
		available = append(available, vk.ToString(extension.ExtensionName[:])+"\x00")
	}

	return containsAll(available, a.deviceExtensions)
}

func (a *App) createLogicalDevice() error {
	indices := a.families
	if !indices.IsComplete() {
		return errors.New("createLogicalDevice called for physical device which does " +
			"not have all the queues required by the program")
	}

	queueCreateInfos := []vk.DeviceQueueCreateInfo{}

	for _, familyIndex := range indices.Unique() {
		queueCreateInfos = append(
			queueCreateInfos,
			vk.DeviceQueueCreateInfo{
				SType:            vk.StructureTypeDeviceQueueCreateInfo,
				QueueFamilyIndex: familyIndex,
				QueueCount:       1,
				PQueuePriorities: []float32{1.0},
			},
		)
	}

	deviceFeatures := []vk.PhysicalDeviceFeatures{{}}

	createInfo := vk.DeviceCreateInfo{
		SType:            vk.StructureTypeDeviceCreateInfo,
		PEnabledFeatures: deviceFeatures,

		PQueueCreateInfos:    queueCreateInfos,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),

		EnabledExtensionCount:   uint32(len(a.deviceExtensions)),
		PpEnabledExtensionNames: a.deviceExtensions,
	}

	if a.cfg.Debug {
		createInfo.PpEnabledLayerNames = a.validationLayers
		createInfo.EnabledLayerCount = uint32(len(a.validationLayers))
	}

	var device vk.Device
	err := vkcheck.Result(vk.CreateDevice(a.physicalDevice, &createInfo, nil, &device))
	if err != nil {
		return errors.Wrap(err, "failed to create logical device")
	}
	a.cleanup.Add(func() {
		vk.DestroyDevice(device, nil)
	})
	a.device = device

	var graphicsQueue vk.Queue
	vk.GetDeviceQueue(a.device, indices.Graphics.Get(), 0, &graphicsQueue)
	a.graphicsQueue = graphicsQueue

	var presentQueue vk.Queue
	vk.GetDeviceQueue(a.device, indices.Present.Get(), 0, &presentQueue)
	a.presentQueue = presentQueue

	return nil
}
