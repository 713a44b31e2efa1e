package frames

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ironsmile/vulkan-frames/logger"
)

// Config lists the collaborators of a Loop.
type Config struct {
	Window    Window
	Device    Device
	Presenter Presenter
	Recorder  Recorder

	// Scene is optional. When set it is updated for every image right before
	// the image's command buffer is submitted.
	Scene Scene

	// MaxWait bounds every fence wait and image acquisition.
	MaxWait time.Duration
}

// Stats counts what happened during the life of a loop.
type Stats struct {
	// Frames is the number of images presented successfully.
	Frames uint64

	// Rebuilds is the number of times the swapchain was rebuilt after the
	// initial build.
	Rebuilds uint64

	// Stale is the number of acquire or present calls which reported an out
	// of date swapchain.
	Stale uint64
}

// Loop runs the acquire, submit and present cycle. It is not safe for
// concurrent use: every method except NotifyResize must be called from the
// thread which owns the device.
type Loop struct {
	window    Window
	device    Device
	presenter Presenter
	recorder  Recorder
	scene     Scene
	maxWait   time.Duration

	resized ResizeFlag

	// built holds everything which is rebuilt with the swapchain.
	built     Arena
	swapchain Swapchain
	sync      *SyncSet
	commands  []CommandBuffer

	// imagesInFlight holds for every swapchain image the fence of the slot
	// which last submitted work rendering into it.
	imagesInFlight []Fence

	currentFrame   int
	rebuildPending bool

	state  State
	stats  Stats
	closed bool
}

// New builds the initial swapchain, records its command buffers and creates
// one frame slot per swapchain image.
func New(cfg Config) (*Loop, error) {
	switch {
	case cfg.Window == nil:
		return nil, errors.New("frames: nil Window")
	case cfg.Device == nil:
		return nil, errors.New("frames: nil Device")
	case cfg.Presenter == nil:
		return nil, errors.New("frames: nil Presenter")
	case cfg.Recorder == nil:
		return nil, errors.New("frames: nil Recorder")
	case cfg.MaxWait <= 0:
		return nil, errors.Newf("frames: MaxWait must be positive, got %s", cfg.MaxWait)
	}

	l := &Loop{
		window:    cfg.Window,
		device:    cfg.Device,
		presenter: cfg.Presenter,
		recorder:  cfg.Recorder,
		scene:     cfg.Scene,
		maxWait:   cfg.MaxWait,
	}

	width, height := l.window.FramebufferSize()
	if err := l.build(width, height); err != nil {
		l.built.Release()
		return nil, err
	}

	return l, nil
}

// NotifyResize tells the loop that the framebuffer changed size. It may be
// called from any goroutine; the swapchain is rebuilt at the start of the next
// frame.
func (l *Loop) NotifyResize() {
	l.resized.Set()
}

// State returns the step the loop is in. After DrawFrame fails it names the
// step which failed.
func (l *Loop) State() State {
	return l.state
}

// Stats returns the counters of the loop.
func (l *Loop) Stats() Stats {
	return l.stats
}

// SlotCount returns the number of frame slots, always equal to the number of
// swapchain images.
func (l *Loop) SlotCount() int {
	if l.sync == nil {
		return 0
	}
	return l.sync.Len()
}

// ImageCount returns the number of images in the current swapchain.
func (l *Loop) ImageCount() int {
	if l.swapchain == nil {
		return 0
	}
	return l.swapchain.ImageCount()
}

// Run draws frames until the window is closed or ctx is done. Before returning
// it waits for the device to finish all submitted work.
func (l *Loop) Run(ctx context.Context) error {
	log := logger.Logger()
	log.Debug("main loop started", "images", l.ImageCount())

	for !l.window.ShouldClose() && ctx.Err() == nil {
		l.window.PollEvents()

		if err := l.DrawFrame(); err != nil {
			return errors.Wrapf(err, "drawing frame in state %s", l.state)
		}
	}

	if err := l.device.WaitIdle(); err != nil {
		return errors.Wrap(err, "waiting for device idle")
	}

	log.Info("main loop finished",
		"frames", l.stats.Frames,
		"rebuilds", l.stats.Rebuilds,
		"stale", l.stats.Stale,
	)
	return nil
}

// DrawFrame runs one iteration of the frame lifecycle. When the swapchain
// turns out to be stale, or a resize was reported, it rebuilds instead of
// drawing and returns nil.
func (l *Loop) DrawFrame() error {
	if l.closed {
		return ErrClosed
	}
	if l.sync == nil {
		return errors.New("frames: drawing without a swapchain, last rebuild failed")
	}

	slot := l.sync.Slot(l.currentFrame)

	l.state = StateAcquiring
	if err := l.waitFence(slot.InFlight, "frame slot"); err != nil {
		return err
	}

	if l.resized.Drain() {
		return l.rebuild("window resized")
	}
	if l.rebuildPending {
		return l.rebuild("stale on present")
	}

	imageIndex, err := l.swapchain.Acquire(l.maxWait, slot.ImageAvailable)
	if errors.Is(err, ErrStale) {
		l.stats.Stale++
		return l.rebuild("stale on acquire")
	} else if err != nil {
		return errors.Wrap(err, "failed to acquire swap chain image")
	}
	if int(imageIndex) >= len(l.commands) {
		return errors.Newf("acquired image %d but the swapchain has %d images",
			imageIndex, len(l.commands))
	}

	l.state = StateWaiting
	if fence := l.imagesInFlight[imageIndex]; fence != nil {
		if err := l.waitFence(fence, "image in use"); err != nil {
			return err
		}
	}
	l.imagesInFlight[imageIndex] = slot.InFlight

	l.state = StateSubmitting
	if l.scene != nil {
		if err := l.scene.Update(imageIndex); err != nil {
			return errors.Wrapf(err, "updating scene for image %d", imageIndex)
		}
	}

	// Only reset the fence if we are submitting work.
	if err := slot.InFlight.Reset(); err != nil {
		return errors.Wrap(err, "resetting in flight fence")
	}

	err = l.device.Submit(Submission{
		Commands: l.commands[imageIndex],
		Wait:     slot.ImageAvailable,
		Signal:   slot.RenderFinished,
		Fence:    slot.InFlight,
	})
	if err != nil {
		return errors.Wrap(err, "queue submit error")
	}

	l.state = StatePresenting
	err = l.swapchain.Present(imageIndex, slot.RenderFinished)
	if errors.Is(err, ErrStale) {
		// The submitted work still references the current swapchain, so the
		// rebuild waits for the next frame.
		l.stats.Stale++
		l.rebuildPending = true
	} else if err != nil {
		return errors.Wrap(err, "failed to present swap chain image")
	} else {
		l.stats.Frames++
	}

	l.currentFrame = (l.currentFrame + 1) % l.sync.Len()
	l.state = StateIdle
	return nil
}

// Rebuild tears down and recreates the swapchain, the command buffers and the
// frame slots.
func (l *Loop) Rebuild() error {
	if l.closed {
		return ErrClosed
	}
	return l.rebuild("requested")
}

func (l *Loop) rebuild(reason string) error {
	l.state = StateRebuilding

	width, height := l.window.FramebufferSize()
	for width <= 0 || height <= 0 {
		// Minimized. Nothing can be presented until the window is visible.
		if l.window.ShouldClose() {
			l.rebuildPending = true
			l.state = StateIdle
			return nil
		}
		l.window.WaitEvents()
		width, height = l.window.FramebufferSize()
	}

	if err := l.device.WaitIdle(); err != nil {
		return errors.Wrap(err, "waiting for device idle before rebuild")
	}

	l.teardown()

	if err := l.build(width, height); err != nil {
		return errors.Wrap(err, "rebuilding swapchain")
	}

	l.rebuildPending = false
	l.stats.Rebuilds++
	l.state = StateIdle

	logger.Logger().Debug("swapchain rebuilt",
		"reason", reason,
		"width", width,
		"height", height,
		"images", l.swapchain.ImageCount(),
	)
	return nil
}

// build creates the swapchain, records one command buffer per image and
// creates one frame slot per image, in that order.
func (l *Loop) build(width, height int) error {
	sc, err := l.presenter.Build(width, height)
	if err != nil {
		return errors.Wrap(err, "createSwapChain")
	}
	l.built.Add(sc.Destroy)
	l.swapchain = sc

	imageCount := sc.ImageCount()
	if imageCount < 1 {
		return errors.Newf("swapchain has no images")
	}

	if err := l.recorder.Prepare(sc); err != nil {
		return errors.Wrap(err, "preparing command buffers")
	}
	l.built.Add(l.recorder.Release)

	commands := make([]CommandBuffer, imageCount)
	for i := range commands {
		cmd, err := l.recorder.Record(uint32(i))
		if err != nil {
			return errors.Wrapf(err, "recording command buffer %d", i)
		}
		commands[i] = cmd
	}
	l.commands = commands

	syncSet, err := NewSyncSet(l.device, imageCount)
	if err != nil {
		return errors.Wrap(err, "createSyncObjects")
	}
	l.built.Add(syncSet.Destroy)
	l.sync = syncSet

	l.imagesInFlight = make([]Fence, imageCount)
	l.currentFrame = 0
	return nil
}

func (l *Loop) teardown() {
	l.built.Release()
	l.swapchain = nil
	l.sync = nil
	l.commands = nil
	l.imagesInFlight = nil
}

func (l *Loop) waitFence(fence Fence, what string) error {
	err := fence.Wait(l.maxWait)
	if errors.Is(err, ErrTimeout) {
		return errors.Wrapf(err, "%s fence not signaled after %s", what, l.maxWait)
	} else if err != nil {
		return errors.Wrapf(err, "waiting for %s fence", what)
	}
	return nil
}

// Close waits for the device to become idle and releases everything the loop
// created. It is safe to call more than once.
func (l *Loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	err := l.device.WaitIdle()
	l.teardown()
	l.state = StateIdle

	if err != nil {
		return errors.Wrap(err, "waiting for device idle on close")
	}
	return nil
}
