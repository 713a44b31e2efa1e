package main

import (
	"context"
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/logger"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

func (a *App) createInstance() error {
	if a.cfg.Debug && !a.checkValidationSupport() {
		return errors.New("validation layers requested but not available")
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   a.cfg.Title + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "No Engine\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}

	extensions := a.window.GetRequiredInstanceExtensions()
	if a.cfg.Debug {
		extensions = append(extensions, vk.ExtDebugReportExtensionName+"\x00")
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	if a.cfg.Debug {
		createInfo.EnabledLayerCount = uint32(len(a.validationLayers))
		createInfo.PpEnabledLayerNames = a.validationLayers
	}

	var instance vk.Instance
	if err := vkcheck.Result(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return errors.Wrap(err, "failed to create Vulkan instance")
	}
	a.cleanup.Add(func() {
		vk.DestroyInstance(instance, nil)
	})

	if err := vk.InitInstance(instance); err != nil {
		return errors.Wrap(err, "failed to init instance functions")
	}

	a.instance = instance
	return nil
}

func (a *App) setupDebugCallback() error {
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit |
			vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit),
		PfnCallback: debugReport,
	}

	var callback vk.DebugReportCallback
	res := vk.CreateDebugReportCallback(a.instance, &debugCreateInfo, nil, &callback)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "vk.CreateDebugReportCallback failed")
	}
	a.cleanup.Add(func() {
		vk.DestroyDebugReportCallback(a.instance, callback, nil)
	})
	a.debugCallback = callback

	return nil
}

// debugReport forwards validation layer messages to the logger.
func debugReport(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	pLayerPrefix string,
	pMessage string,
	pUserData unsafe.Pointer,
) vk.Bool32 {
	logger.Logger().Log(context.Background(), debugLevel(flags), pMessage,
		"layer", pLayerPrefix,
		"code", messageCode,
		"object_type", objectType,
	)
	return vk.Bool32(vk.False)
}

func debugLevel(flags vk.DebugReportFlags) slog.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return slog.LevelError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0,
		flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return slog.LevelWarn
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func (a *App) checkValidationSupport() bool {
	var count uint32
	if vk.EnumerateInstanceLayerProperties(&count, nil) != vk.Success {
		return false
	}
	availableLayers := make([]vk.LayerProperties, count)

	if vk.EnumerateInstanceLayerProperties(&count, availableLayers) != vk.Success {
		return false
	}

	available := make([]string, 0, count)
	for _, layer := range availableLayers {
		layer.Deref()
		available = append(available, vk.ToString(layer.LayerName[:])+"\x00")
	}

	return containsAll(available, a.validationLayers)
}

// containsAll reports whether every required name is in available.
func containsAll(available, required []string) bool {
	missing := make(map[string]struct{}, len(required))
	for _, name := range required {
		missing[name] = struct{}{}
	}
	for _, name := range available {
		delete(missing, name)
	}
	return len(missing) == 0
}
