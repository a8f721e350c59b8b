package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler records timing statistics for named sections such as per-window
// frame output.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	maxSamples   int
	now          func() time.Time
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	name        string
	count       uint64
	totalTime   time.Duration
	minTime     time.Duration
	maxTime     time.Duration
	lastTime    time.Duration
	samples     []time.Duration
	sampleIndex int
}

// NewProfiler creates a new profiler with the specified sample buffer size.
func NewProfiler(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = 1
	}
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   maxSamples,
		now:          time.Now,
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a named section. Call the returned func to stop.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}

	start := p.now()

	return func() {
		p.Record(name, p.now().Sub(start))
	}
}

// Time measures the execution time of a function.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record stores a timing measurement.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			name:    name,
			minTime: elapsed,
			maxTime: elapsed,
			samples: make([]time.Duration, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed

	if elapsed < m.minTime {
		m.minTime = elapsed
	}
	if elapsed > m.maxTime {
		m.maxTime = elapsed
	}

	m.samples[m.sampleIndex] = elapsed
	m.sampleIndex = (m.sampleIndex + 1) % p.maxSamples
}

// GetMeasurement returns a copy of the measurement for a named section.
func (p *Profiler) GetMeasurement(name string) (*Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return nil, false
	}

	c := *m
	c.samples = append([]time.Duration(nil), m.samples...)
	return &c, true
}

// Forget drops the measurement for a named section.
func (p *Profiler) Forget(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.measurements, name)
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.measurements = make(map[string]*Measurement)
}

// Names returns the recorded section names in sorted order.
func (p *Profiler) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report generates a performance report.
func (p *Profiler) Report() string {
	names := p.Names()
	if len(names) == 0 {
		return "No measurements recorded"
	}

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	sb.WriteString("==================\n\n")

	for _, name := range names {
		m, ok := p.GetMeasurement(name)
		if !ok {
			continue
		}
		sb.WriteString(m.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// Name returns the section name.
func (m *Measurement) Name() string { return m.name }

// Count returns the number of recorded samples.
func (m *Measurement) Count() uint64 { return m.count }

// Min returns the shortest recorded time.
func (m *Measurement) Min() time.Duration { return m.minTime }

// Max returns the longest recorded time.
func (m *Measurement) Max() time.Duration { return m.maxTime }

// Last returns the most recent recorded time.
func (m *Measurement) Last() time.Duration { return m.lastTime }

// Average returns the average time for this measurement.
func (m *Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// Percentile returns the p-th percentile of the retained samples.
func (m *Measurement) Percentile(p float64) time.Duration {
	if m.count == 0 {
		return 0
	}

	n := len(m.samples)
	if m.count < uint64(n) {
		n = int(m.count)
	}
	sorted := append([]time.Duration(nil), m.samples[:n]...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := int(float64(len(sorted)-1) * p / 100.0)
	return sorted[index]
}

func (m *Measurement) String() string {
	return fmt.Sprintf("%s:\n  Count:   %d\n  Average: %v\n  Min:     %v\n  Max:     %v\n  P95:     %v\n  Last:    %v\n",
		m.name, m.count, m.Average(), m.minTime, m.maxTime, m.Percentile(95), m.lastTime)
}

// FrameProfiler tracks output frame times against a refresh-rate budget.
type FrameProfiler struct {
	*Profiler
	budget  time.Duration
	overrun atomic.Uint64
}

// NewFrameProfiler creates a profiler for a display refreshing at hz.
func NewFrameProfiler(hz float64) *FrameProfiler {
	if hz <= 0 {
		hz = 90
	}
	return &FrameProfiler{
		Profiler: NewProfiler(1000),
		budget:   time.Duration(float64(time.Second) / hz),
	}
}

// Budget returns the per-frame time budget.
func (f *FrameProfiler) Budget() time.Duration {
	return f.budget
}

// Frame begins timing one frame of section name.
func (f *FrameProfiler) Frame(name string) func() {
	if !f.IsEnabled() {
		return func() {}
	}
	start := f.now()
	return func() {
		elapsed := f.now().Sub(start)
		f.Record(name, elapsed)
		if elapsed > f.budget {
			f.overrun.Add(1)
		}
	}
}

// Overruns returns the number of frames that exceeded the budget.
func (f *FrameProfiler) Overruns() uint64 {
	return f.overrun.Load()
}

// FrameReport appends budget statistics to the report.
func (f *FrameProfiler) FrameReport() string {
	return fmt.Sprintf("%s\nFrame Budget:\n  Budget:   %v\n  Overruns: %d\n", f.Report(), f.budget, f.Overruns())
}
