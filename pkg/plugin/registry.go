package plugin

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/justyntemme/vroutput/pkg/framework/debug"
	"github.com/justyntemme/vroutput/pkg/framework/plugin"
	"github.com/justyntemme/vroutput/pkg/framework/process"
	"github.com/justyntemme/vroutput/pkg/gpu"
	"github.com/justyntemme/vroutput/pkg/vr"
)

type entry struct {
	inst Instance
	// ready is false while Init runs; Output and Finalize ignore the entry
	// until then.
	ready bool
}

// Registry maps each window to exactly one live plugin instance and
// sequences that instance's Init, Output and Exit calls.
//
// The mutex only guards the map. Instance calls run outside it, on the
// caller's thread, so windows on different context threads never wait on
// each other's GPU work.
type Registry struct {
	plugin   Plugin
	dev      gpu.Device
	log      *debug.Logger
	profiler *debug.FrameProfiler
	defaults plugin.Options

	mu        sync.Mutex
	instances map[vr.WindowID]*entry
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle and per-frame diagnostics
func WithLogger(l *debug.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithProfiler records Output timings per window
func WithProfiler(p *debug.FrameProfiler) Option {
	return func(r *Registry) { r.profiler = p }
}

// WithDefaultArgs adds options every window gets in addition to the
// tokens passed to Initialize. Unrecognized tokens are reported once, by
// NewRegistry, and not passed on to instances.
func WithDefaultArgs(args []string) Option {
	return func(r *Registry) { r.defaults = plugin.ParseOptions(args) }
}

// NewRegistry creates an empty registry for p, issuing GPU calls through dev
func NewRegistry(p Plugin, dev gpu.Device, opts ...Option) *Registry {
	r := &Registry{
		plugin:    p,
		dev:       dev,
		log:       debug.Default(),
		instances: make(map[vr.WindowID]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(zap.String("plugin", p.Info().ID))
	for _, tok := range r.defaults.Unknown {
		r.log.Warn("ignoring unrecognized default argument %q", tok)
	}
	r.defaults.Unknown = nil
	return r
}

// Initialize creates and initializes the instance for window. On failure
// the window has no entry and the instance holds no resources.
func (r *Registry) Initialize(window vr.WindowID, args []string) (err error) {
	e := &entry{inst: r.plugin.CreateInstance()}
	if e.inst == nil {
		return fmt.Errorf("%w: window %s: plugin created no instance", ErrInitialization, window)
	}

	r.mu.Lock()
	if _, exists := r.instances[window]; exists {
		r.mu.Unlock()
		r.log.Error("initialize called twice for window %s", window)
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, window)
	}
	r.instances[window] = e
	r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: window %s: panic: %v", ErrInitialization, window, p)
		}
		if err != nil {
			r.remove(window)
			r.log.Error("%v", err)
			return
		}
		r.mu.Lock()
		e.ready = true
		r.mu.Unlock()
		r.log.Info("initialized window %s", window)
	}()

	if err := gpu.Prepare(r.dev); err != nil {
		return fmt.Errorf("%w: window %s: %w", ErrInitialization, window, err)
	}

	opts := plugin.ParseOptions(args).Merge(r.defaults)
	if err := e.inst.Init(r.dev, opts); err != nil {
		return fmt.Errorf("%w: window %s: %w", ErrInitialization, window, err)
	}
	return nil
}

// Output draws one frame for window. It never fails: contract violations,
// panics and GPU errors are logged and the frame is dropped or left partial.
func (r *Registry) Output(window vr.WindowID, ctx *process.Context, textures []vr.Texture) {
	inst := r.lookup(window)
	if inst == nil {
		r.log.Error("output called for uninitialized window %s", window)
		return
	}
	if ctx == nil {
		r.log.Warn("window %s: output without render context", window)
		return
	}
	if err := ctx.Validate(textures); err != nil {
		r.log.Warn("window %s: skipping frame: %v", window, err)
		return
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("window %s: output panic: %v", window, p)
		}
		r.drainErrors(window, "output")
	}()

	if r.profiler != nil {
		defer r.profiler.Frame(sectionName(window))()
	}
	inst.Output(r.dev, ctx, textures)
}

// Finalize removes window's entry and releases its instance.
func (r *Registry) Finalize(window vr.WindowID) error {
	r.mu.Lock()
	e, ok := r.instances[window]
	if !ok || !e.ready {
		r.mu.Unlock()
		r.log.Error("finalize called for uninitialized window %s", window)
		return fmt.Errorf("%w: %s", ErrNotInitialized, window)
	}
	delete(r.instances, window)
	r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("window %s: exit panic: %v", window, p)
		}
		r.drainErrors(window, "exit")
		r.report(window)
		r.log.Info("finalized window %s", window)
	}()

	e.inst.Exit(r.dev)
	return nil
}

// FinalizeAll finalizes every initialized window. It is meant for a host
// tearing down without per-window exits and must run on a thread where
// every window's context can be used.
func (r *Registry) FinalizeAll() {
	for _, w := range r.Windows() {
		_ = r.Finalize(w)
	}
}

// Has reports whether window has an initialized instance
func (r *Registry) Has(window vr.WindowID) bool {
	return r.lookup(window) != nil
}

// Len returns the number of initialized windows
func (r *Registry) Len() int {
	return len(r.Windows())
}

// Windows returns the initialized windows in ascending order
func (r *Registry) Windows() []vr.WindowID {
	r.mu.Lock()
	defer r.mu.Unlock()

	windows := make([]vr.WindowID, 0, len(r.instances))
	for w, e := range r.instances {
		if e.ready {
			windows = append(windows, w)
		}
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })
	return windows
}

// Instance returns the instance bound to window, or nil
func (r *Registry) Instance(window vr.WindowID) Instance {
	return r.lookup(window)
}

func (r *Registry) lookup(window vr.WindowID) Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.instances[window]
	if !ok || !e.ready {
		return nil
	}
	return e.inst
}

func (r *Registry) remove(window vr.WindowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, window)
}

func (r *Registry) drainErrors(window vr.WindowID, phase string) {
	for _, err := range gpu.DrainErrors(r.dev) {
		r.log.Warn("window %s: %s: %v", window, phase, err)
	}
}

func (r *Registry) report(window vr.WindowID) {
	if r.profiler == nil {
		return
	}
	name := sectionName(window)
	if m, ok := r.profiler.GetMeasurement(name); ok {
		r.log.Debug("%s", m)
	}
	r.profiler.Forget(name)
}

func sectionName(window vr.WindowID) string {
	return "output:" + window.String()
}
