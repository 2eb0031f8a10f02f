// Package preview drives the browser-side preview and the simulated
// deepfake check.
//
// The Controller owns a single selection and a single result. A file is
// picked or dropped, previewed locally, and on demand "analysed" by
// drawing a score from a pseudo-random source after a fixed delay. There
// is no detection model behind it.
//
// Rendering goes through the View and URLAllocator capabilities, timing
// through a Scheduler and randomness through a Source, so the state
// machine runs the same under test as in the browser.
package preview

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// DefaultDelay is how long a simulated detection takes.
const DefaultDelay = 900 * time.Millisecond

// View is the rendering surface.
type View interface {
	// Alert notifies the user, e.g. with a blocking dialog.
	Alert(msg string)
	// ShowPreview displays the selected file.
	ShowPreview(p Preview)
	// RenderResult shows r; an idle result clears the result area.
	RenderResult(r Result)
	// SetBusy toggles the busy indicator.
	SetBusy(busy bool)
	// SetDropHighlight toggles the drop zone hover style.
	SetDropHighlight(on bool)
}

// URLAllocator hands out object URLs for video previews.
type URLAllocator interface {
	Create(f File) (string, error)
	Revoke(url string)
}

// Source yields pseudo-random numbers in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Scheduler runs f after d without blocking the caller. The returned
// func cancels f if it has not run yet.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func())
}

// Event is a DOM event whose default handling can be suppressed.
type Event interface {
	PreventDefault()
}

// DropEvent is a drop carrying files.
type DropEvent interface {
	Event
	Files() []File
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Option configures a Controller.
type Option func(*Controller)

// WithSource sets the random source; use rand.New(rand.NewSource(seed))
// for reproducible scores.
func WithSource(src Source) Option {
	return func(c *Controller) { c.src = src }
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithDelay sets the simulated detection time.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// Controller is the preview and simulation state machine.
type Controller struct {
	view  View
	urls  URLAllocator
	src   Source
	sched Scheduler
	delay time.Duration

	mu     sync.Mutex
	sel    Selection
	result Result
	// gen invalidates pending simulations when the selection changes or
	// a newer simulation starts.
	gen    uint64
	cancel func()

	// load numbers asynchronous file reads; only the newest may select.
	load    uint64
	loading bool
}

// New creates a Controller bound to view and urls. Both are required.
func New(view View, urls URLAllocator, opts ...Option) (*Controller, error) {
	if view == nil || urls == nil {
		return nil, ErrMissingElements
	}
	c := &Controller{
		view:  view,
		urls:  urls,
		sched: timeScheduler{},
		delay: DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.src == nil {
		c.src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c, nil
}

// Selection returns the current selection.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Result returns the current result.
func (c *Controller) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// SelectFile makes f the current file. Files that are neither images nor
// videos are rejected with a *ValidationError and leave state untouched.
func (c *Controller) SelectFile(f File) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var p Preview
	var objectURL string
	switch kindOf(f.Type) {
	case KindImage:
		p = imagePreview(f)
	case KindVideo:
		url, err := c.urls.Create(f)
		if err != nil {
			return fmt.Errorf("create object url for %s: %w", f.Name, err)
		}
		objectURL = url
		p = Preview{Kind: KindVideo, Name: f.Name, Source: url}
	default:
		c.view.Alert(errUnsupported.Message)
		return errUnsupported
	}

	if c.sel.objectURL != "" {
		c.urls.Revoke(c.sel.objectURL)
	}
	c.sel = Selection{File: &f, Preview: p, objectURL: objectURL}

	c.stopPending()
	c.result = Result{}

	c.view.SetBusy(false)
	c.view.ShowPreview(p)
	c.view.RenderResult(c.result)
	return nil
}

// Pick handles the file input; only the first file counts.
func (c *Controller) Pick(files []File) error {
	if len(files) == 0 {
		return nil
	}
	return c.SelectFile(files[0])
}

// DragOver keeps the browser from opening the file and highlights the
// drop zone.
func (c *Controller) DragOver(ev Event) {
	ev.PreventDefault()
	c.view.SetDropHighlight(true)
}

// DragLeave removes the drop zone highlight.
func (c *Controller) DragLeave() {
	c.view.SetDropHighlight(false)
}

// Drop handles a drop on the drop zone; only the first file counts.
func (c *Controller) Drop(ev DropEvent) error {
	ev.PreventDefault()
	c.view.SetDropHighlight(false)
	return c.Pick(ev.Files())
}

// Load is an asynchronous file read started by BeginLoad. Reads finish
// in any order; a Load only takes effect while it is the newest one.
type Load struct {
	c  *Controller
	id uint64
}

// BeginLoad marks a file read as in flight. Until it completes, Simulate
// is refused, and any older Load still running is discarded.
func (c *Controller) BeginLoad() *Load {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load++
	c.loading = true
	return &Load{c: c, id: c.load}
}

// settle ends l and reports whether it is still the newest read.
func (l *Load) settle() bool {
	c := l.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if l.id != c.load {
		return false
	}
	c.loading = false
	return true
}

// Pick completes l with the files read from the picker.
func (l *Load) Pick(files []File) error {
	if !l.settle() {
		return nil
	}
	return l.c.Pick(files)
}

// Drop completes l with a drop whose files have been read.
func (l *Load) Drop(ev DropEvent) error {
	if !l.settle() {
		ev.PreventDefault()
		return nil
	}
	return l.c.Drop(ev)
}

// Fail completes l without a file; the current selection stays.
func (l *Load) Fail() {
	l.settle()
}

// Simulate starts a simulated detection for the current file. It
// returns immediately; the result is rendered after the delay unless
// the selection changes first.
func (c *Controller) Simulate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		c.view.Alert(errLoading.Message)
		return errLoading
	}
	if c.sel.File == nil {
		c.view.Alert(errNoFile.Message)
		return errNoFile
	}

	c.stopPending()
	gen := c.gen
	c.result = Result{Phase: PhaseRunning}
	c.view.SetBusy(true)
	c.view.RenderResult(c.result)

	c.cancel = c.sched.AfterFunc(c.delay, func() { c.finish(gen) })
	return nil
}

func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	c.cancel = nil

	score := c.src.Float64()
	c.result = Result{Phase: PhaseDone, Label: Classify(score), Score: score}
	c.view.SetBusy(false)
	c.view.RenderResult(c.result)
}

// stopPending cancels any scheduled finish and makes it stale in case it
// is already running. Callers hold c.mu.
func (c *Controller) stopPending() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
