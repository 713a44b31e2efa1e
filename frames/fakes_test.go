package frames

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// fakeDevice simulates a device timeline. Submitted work only completes when
// somebody waits for its fence or for the whole device, so a missing wait in
// the loop shows up as a reused, still pending command buffer.
type fakeDevice struct {
	semaphores []*fakeSemaphore
	fences     []*fakeFence

	submissions []Submission
	pending     []*fakeFence

	// lastSubmit maps a command buffer to its latest submission.
	lastSubmit map[CommandBuffer]*fakeSubmit

	// violations lists submissions of command buffers still in use.
	violations []string

	failSemaphoreAt int
	failFenceAt     int
	waitIdleCalls   int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		lastSubmit:      make(map[CommandBuffer]*fakeSubmit),
		failSemaphoreAt: -1,
		failFenceAt:     -1,
	}
}

func (d *fakeDevice) NewSemaphore() (Semaphore, error) {
	if d.failSemaphoreAt == len(d.semaphores) {
		return nil, errors.New("out of host memory")
	}
	s := &fakeSemaphore{id: len(d.semaphores)}
	d.semaphores = append(d.semaphores, s)
	return s, nil
}

func (d *fakeDevice) NewFence(signaled bool) (Fence, error) {
	if d.failFenceAt == len(d.fences) {
		return nil, errors.New("out of device memory")
	}
	f := &fakeFence{dev: d, id: len(d.fences), signaled: signaled}
	d.fences = append(d.fences, f)
	return f, nil
}

func (d *fakeDevice) Submit(s Submission) error {
	fence := s.Fence.(*fakeFence)
	if fence.signaled {
		return errors.New("submitting with a signaled fence")
	}
	if fence.destroyed {
		return errors.New("submitting with a destroyed fence")
	}
	if prev, ok := d.lastSubmit[s.Commands]; ok && !prev.done {
		d.violations = append(d.violations,
			fmt.Sprintf("%v submitted while fence %d pending", s.Commands, prev.fence.id))
	}
	sub := &fakeSubmit{fence: fence}
	d.lastSubmit[s.Commands] = sub
	d.submissions = append(d.submissions, s)
	d.pending = append(d.pending, fence)
	fence.current = sub
	fence.inFlight = true
	return nil
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdleCalls++
	for _, f := range d.pending {
		if f.inFlight {
			f.complete()
		}
	}
	d.pending = nil
	return nil
}

func (d *fakeDevice) live() (semaphores, fences int) {
	for _, s := range d.semaphores {
		if !s.destroyed {
			semaphores++
		}
	}
	for _, f := range d.fences {
		if !f.destroyed {
			fences++
		}
	}
	return semaphores, fences
}

type fakeSubmit struct {
	fence *fakeFence
	done  bool
}

type fakeSemaphore struct {
	id        int
	destroyed bool
	destroys  int
}

func (s *fakeSemaphore) Destroy() {
	s.destroys++
	s.destroyed = true
}

type fakeFence struct {
	dev       *fakeDevice
	id        int
	signaled  bool
	inFlight  bool
	current   *fakeSubmit
	hang      bool
	destroyed bool
	destroys  int
	waits     int
}

func (f *fakeFence) complete() {
	if f.current != nil {
		f.current.done = true
		f.current = nil
	}
	f.inFlight = false
	f.signaled = true
}

func (f *fakeFence) Wait(timeout time.Duration) error {
	f.waits++
	if f.destroyed {
		return errors.New("waiting on a destroyed fence")
	}
	if f.signaled {
		return nil
	}
	if f.inFlight && !f.hang {
		f.complete()
		return nil
	}
	return errors.Wrapf(ErrTimeout, "fence %d after %s", f.id, timeout)
}

func (f *fakeFence) Reset() error {
	if f.inFlight {
		return errors.New("resetting a fence which is in flight")
	}
	f.signaled = false
	return nil
}

func (f *fakeFence) Destroy() {
	f.destroys++
	f.destroyed = true
}

type fakeSwapchain struct {
	gen    int
	images int

	// acquire and present are consumed one per call. Missing entries mean
	// success; acquire then hands out images round robin.
	acquire []acquireResult
	present []error

	next      uint32
	destroys  int
	acquired  []uint32
	presented []uint32
}

type acquireResult struct {
	index uint32
	err   error
}

func (s *fakeSwapchain) ImageCount() int {
	return s.images
}

func (s *fakeSwapchain) Acquire(timeout time.Duration, signal Semaphore) (uint32, error) {
	if s.destroys > 0 {
		return 0, errors.New("acquire on a destroyed swapchain")
	}
	if len(s.acquire) > 0 {
		r := s.acquire[0]
		s.acquire = s.acquire[1:]
		if r.err == nil {
			s.acquired = append(s.acquired, r.index)
		}
		return r.index, r.err
	}
	index := s.next
	s.next = (s.next + 1) % uint32(s.images)
	s.acquired = append(s.acquired, index)
	return index, nil
}

func (s *fakeSwapchain) Present(index uint32, wait Semaphore) error {
	if len(s.present) > 0 {
		err := s.present[0]
		s.present = s.present[1:]
		if err != nil {
			return err
		}
	}
	s.presented = append(s.presented, index)
	return nil
}

func (s *fakeSwapchain) Destroy() {
	s.destroys++
}

// fakePresenter builds swapchains with image counts taken from counts. The
// last count is reused once the list runs out.
type fakePresenter struct {
	counts []int
	setup  func(*fakeSwapchain)
	built  []*fakeSwapchain
	sizes  [][2]int
	err    error
}

func (p *fakePresenter) Build(width, height int) (Swapchain, error) {
	if p.err != nil {
		return nil, p.err
	}
	count := p.counts[len(p.counts)-1]
	if len(p.built) < len(p.counts) {
		count = p.counts[len(p.built)]
	}
	sc := &fakeSwapchain{gen: len(p.built), images: count}
	if p.setup != nil {
		p.setup(sc)
	}
	p.built = append(p.built, sc)
	p.sizes = append(p.sizes, [2]int{width, height})
	return sc, nil
}

func (p *fakePresenter) current() *fakeSwapchain {
	return p.built[len(p.built)-1]
}

type fakeCommand struct {
	gen   int
	index uint32
}

func (c fakeCommand) String() string {
	return fmt.Sprintf("cmd(gen=%d,image=%d)", c.gen, c.index)
}

type fakeRecorder struct {
	gen      int
	images   int
	prepared int
	releases int
	recorded []fakeCommand
	failAt   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{gen: -1, failAt: -1}
}

func (r *fakeRecorder) Prepare(sc Swapchain) error {
	r.gen++
	r.prepared++
	r.images = sc.ImageCount()
	return nil
}

func (r *fakeRecorder) Record(index uint32) (CommandBuffer, error) {
	if int(index) == r.failAt {
		return nil, errors.New("begin command buffer: device lost")
	}
	if int(index) >= r.images {
		return nil, errors.Newf("recording image %d of %d", index, r.images)
	}
	cmd := fakeCommand{gen: r.gen, index: index}
	r.recorded = append(r.recorded, cmd)
	return cmd, nil
}

func (r *fakeRecorder) Release() {
	r.releases++
}

type fakeScene struct {
	updates []uint32
}

func (s *fakeScene) Update(index uint32) error {
	s.updates = append(s.updates, index)
	return nil
}

// fakeWindow closes after closeAfter polls. sizes is consumed by
// FramebufferSize; the last entry is repeated.
type fakeWindow struct {
	closeAfter int
	polls      int
	waits      int
	sizes      [][2]int
	onPoll     func(poll int)
}

func (w *fakeWindow) ShouldClose() bool {
	return w.closeAfter >= 0 && w.polls >= w.closeAfter
}

func (w *fakeWindow) PollEvents() {
	w.polls++
	if w.onPoll != nil {
		w.onPoll(w.polls)
	}
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	if len(w.sizes) == 0 {
		return 800, 600
	}
	size := w.sizes[0]
	if len(w.sizes) > 1 {
		w.sizes = w.sizes[1:]
	}
	return size[0], size[1]
}
