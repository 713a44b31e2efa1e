package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-frames/logger"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

func TestScoreDevice(t *testing.T) {
	g := gomega.NewWithT(t)

	discrete := scoreDevice(vk.PhysicalDeviceTypeDiscreteGpu, true)
	integrated := scoreDevice(vk.PhysicalDeviceTypeIntegratedGpu, true)
	cpu := scoreDevice(vk.PhysicalDeviceTypeCpu, true)

	g.Expect(discrete).To(gomega.BeNumerically(">", integrated))
	g.Expect(integrated).To(gomega.BeNumerically(">", cpu))
	g.Expect(cpu).To(gomega.BeNumerically(">", 0))

	g.Expect(scoreDevice(vk.PhysicalDeviceTypeDiscreteGpu, false)).To(gomega.BeZero())
}

func TestDebugLevel(t *testing.T) {
	tests := []struct {
		flags    vk.DebugReportFlagBits
		expected slog.Level
	}{
		{vk.DebugReportErrorBit, slog.LevelError},
		{vk.DebugReportWarningBit, slog.LevelWarn},
		{vk.DebugReportPerformanceWarningBit, slog.LevelWarn},
		{vk.DebugReportInformationBit, slog.LevelInfo},
		{vk.DebugReportDebugBit, slog.LevelDebug},
	}

	for _, test := range tests {
		g := gomega.NewWithT(t)
		g.Expect(debugLevel(vk.DebugReportFlags(test.flags))).To(gomega.Equal(test.expected))
	}

	g := gomega.NewWithT(t)
	both := vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit)
	g.Expect(debugLevel(both)).To(gomega.Equal(slog.LevelError))
}

func TestDebugReportCallback(t *testing.T) {
	g := gomega.NewWithT(t)

	var callback vk.DebugReportCallbackFunc = debugReport

	info := vk.DebugReportCallbackCreateInfo{PfnCallback: callback}
	g.Expect(info.PfnCallback).NotTo(gomega.BeNil())

	res := callback(
		vk.DebugReportFlags(vk.DebugReportWarningBit),
		vk.DebugReportObjectType(0),
		0, 0, 7,
		"validation", "message",
		nil,
	)
	g.Expect(res).To(gomega.Equal(vk.Bool32(vk.False)))
}

func TestContainsAll(t *testing.T) {
	g := gomega.NewWithT(t)

	available := []string{"VK_KHR_swapchain\x00", "VK_KHR_maintenance1\x00"}

	g.Expect(containsAll(available, []string{"VK_KHR_swapchain\x00"})).To(gomega.BeTrue())
	g.Expect(containsAll(available, nil)).To(gomega.BeTrue())
	g.Expect(containsAll(available, []string{
		"VK_KHR_swapchain\x00",
		"VK_LAYER_KHRONOS_validation\x00",
	})).To(gomega.BeFalse())
}

func TestLogFailure(t *testing.T) {
	g := gomega.NewWithT(t)

	var buf bytes.Buffer
	logger.SetLogger(logger.NewText(&buf, false))
	defer logger.SetLogger(nil)

	logFailure("waiting for device idle", vkcheck.Result(vk.Success))
	g.Expect(buf.String()).To(gomega.BeEmpty())

	logFailure("waiting for device idle", vkcheck.Result(vk.ErrorDeviceLost))
	g.Expect(buf.String()).To(gomega.ContainSubstring("waiting for device idle"))
	g.Expect(buf.String()).To(gomega.ContainSubstring("level=ERROR"))
}
