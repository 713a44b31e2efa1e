package main

import (
	"context"
	"flag"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/closer"

	"github.com/ironsmile/vulkan-frames/config"
	"github.com/ironsmile/vulkan-frames/frames"
	"github.com/ironsmile/vulkan-frames/logger"
	"github.com/ironsmile/vulkan-frames/models"
	"github.com/ironsmile/vulkan-frames/queues"
	"github.com/ironsmile/vulkan-frames/renderer"
	"github.com/ironsmile/vulkan-frames/shaders"
	"github.com/ironsmile/vulkan-frames/swapchain"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()
}

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		closer.Fatalln("ERROR:", err)
	}

	logger.SetLogger(logger.NewText(os.Stderr, cfg.Debug))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// On a signal the main loop is asked to stop and the process only exits
	// once the device is idle and everything has been destroyed.
	closer.Bind(func() {
		cancel()
		<-done
	})

	app := NewApp(cfg)
	err = app.Run(ctx)
	close(done)

	if err != nil {
		closer.Fatalln("ERROR:", err)
	}
	closer.Close()
}

// App draws geometry into a window using a frames.Loop.
type App struct {
	cfg config.Config

	// validationLayers is the list of layers enabled when cfg.Debug is set.
	validationLayers []string

	// deviceExtensions is the list of required device extensions needed by this
	// program.
	deviceExtensions []string

	window        *glfw.Window
	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface

	// physicalDevice is the physical device selected for this program.
	physicalDevice vk.PhysicalDevice

	// device is the logical device created for interfacing with the physical device.
	device   vk.Device
	families queues.FamilyIndices

	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	recorder *renderer.Recorder
	loop     *frames.Loop

	// cleanup destroys everything above in reverse order of creation.
	cleanup frames.Arena
}

// NewApp returns an App which is not yet initialized.
func NewApp(cfg config.Config) *App {
	return &App{
		cfg: cfg,
		validationLayers: []string{
			"VK_LAYER_KHRONOS_validation\x00",
		},
		deviceExtensions: []string{
			vk.KhrSwapchainExtensionName + "\x00",
		},
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
		device:         vk.Device(vk.NullHandle),
		surface:        vk.NullSurface,
	}
}

// Run opens the window, sets up Vulkan and draws frames until the window is
// closed or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup.Release()

	if err := a.initWindow(); err != nil {
		return errors.Wrap(err, "initWindow")
	}

	if err := a.initVulkan(); err != nil {
		return errors.Wrap(err, "initVulkan")
	}

	if err := a.loop.Run(ctx); err != nil {
		return errors.Wrap(err, "mainLoop")
	}

	return nil
}

func (a *App) initWindow() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "glfw.Init")
	}
	a.cleanup.Add(glfw.Terminate)

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if a.cfg.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	window, err := glfw.CreateWindow(a.cfg.Width, a.cfg.Height, a.cfg.Title, nil, nil)
	if err != nil {
		return errors.Wrap(err, "creating window")
	}
	a.cleanup.Add(window.Destroy)

	a.window = window
	return nil
}

func (a *App) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "failed to init Vulkan Go")
	}

	if err := a.createInstance(); err != nil {
		return errors.Wrap(err, "createInstance")
	}

	if a.cfg.Debug {
		if err := a.setupDebugCallback(); err != nil {
			return errors.Wrap(err, "setupDebugCallback")
		}
	}

	if err := a.createSurface(); err != nil {
		return errors.Wrap(err, "createSurface")
	}

	if err := a.pickPhysicalDevice(); err != nil {
		return errors.Wrap(err, "pickPhysicalDevice")
	}

	if err := a.createLogicalDevice(); err != nil {
		return errors.Wrap(err, "createLogicalDevice")
	}

	if err := a.createFrameLoop(); err != nil {
		return errors.Wrap(err, "createFrameLoop")
	}

	return nil
}

func (a *App) createSurface() error {
	surfacePtr, err := a.window.CreateWindowSurface(a.instance, nil)
	if err != nil {
		return errors.Wrap(err, "cannot create surface within GLFW window")
	}

	surface := vk.SurfaceFromPointer(surfacePtr)
	a.cleanup.Add(func() {
		vk.DestroySurface(a.instance, surface, nil)
	})
	a.surface = surface
	return nil
}

func (a *App) createFrameLoop() error {
	code, err := shaders.Load(os.DirFS(a.cfg.ShaderDir))
	if err != nil {
		return errors.Wrapf(err, "loading shaders from %s", a.cfg.ShaderDir)
	}

	geometry := models.Quads()
	if a.cfg.ModelPath != "" {
		geometry, err = models.LoadFile(a.cfg.ModelPath)
		if err != nil {
			return err
		}
	}

	recorder, err := renderer.NewRecorder(renderer.RecorderConfig{
		Device:         a.device,
		PhysicalDevice: a.physicalDevice,
		GraphicsQueue:  a.graphicsQueue,
		GraphicsFamily: a.families.Graphics.Get(),
		Geometry:       geometry,
		ClearColor:     [4]float32{0, 0, 0, 1},
	})
	if err != nil {
		return errors.Wrap(err, "creating command recorder")
	}
	a.cleanup.Add(recorder.Close)
	a.cleanup.Add(func() {
		logFailure("waiting for device idle", vkcheck.Result(vk.DeviceWaitIdle(a.device)))
	})
	a.recorder = recorder

	builder := &swapchain.Builder{
		Device:           a.device,
		PhysicalDevice:   a.physicalDevice,
		Surface:          a.surface,
		Families:         a.families,
		PresentQueue:     a.presentQueue,
		Shaders:          code,
		SetLayout:        recorder.SetLayout(),
		VertexBinding:    renderer.VertexBindingDescription(),
		VertexAttributes: renderer.VertexAttributeDescriptions(),
	}

	loop, err := frames.New(frames.Config{
		Window:    &glfwWindow{Window: a.window},
		Device:    renderer.NewDevice(a.device, a.graphicsQueue),
		Presenter: builder,
		Recorder:  recorder,
		Scene:     recorder,
		MaxWait:   a.cfg.FenceTimeout,
	})
	if err != nil {
		return err
	}
	a.cleanup.Add(func() {
		logFailure("closing frame loop", loop.Close())
	})
	a.loop = loop

	a.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		loop.NotifyResize()
	})

	logger.Logger().Info("frame loop ready",
		"images", loop.ImageCount(),
		"slots", loop.SlotCount(),
		"vertices", len(geometry.Vertices),
	)
	return nil
}

// logFailure logs err when a cleanup step which cannot return it fails.
func logFailure(msg string, err error) {
	if err != nil {
		logger.Logger().Error(msg, "err", err)
	}
}
