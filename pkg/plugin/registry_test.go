package plugin

import (
	"bytes"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/vroutput/pkg/framework/debug"
	"github.com/justyntemme/vroutput/pkg/framework/plugin"
	"github.com/justyntemme/vroutput/pkg/framework/process"
	"github.com/justyntemme/vroutput/pkg/gpu"
	"github.com/justyntemme/vroutput/pkg/gpu/gputest"
	"github.com/justyntemme/vroutput/pkg/vr"
)

// countingPlugin creates instances that allocate one texture each and
// record their lifecycle calls.
type countingPlugin struct {
	mu        sync.Mutex
	created   []*countingInstance
	failInit  error
	panicInit bool
}

func (p *countingPlugin) Info() plugin.Info {
	return plugin.Info{ID: "com.vroutput.test.counting", Name: "Counting"}
}

func (p *countingPlugin) CreateInstance() Instance {
	inst := &countingInstance{plugin: p}
	p.mu.Lock()
	p.created = append(p.created, inst)
	p.mu.Unlock()
	return inst
}

type countingInstance struct {
	plugin  *countingPlugin
	tex     *gpu.Texture
	opts    plugin.Options
	outputs int
	exits   int
	panicOn bool
}

func (c *countingInstance) Init(dev gpu.Device, opts plugin.Options) error {
	tex, err := gpu.NewTexture(dev)
	if err != nil {
		return err
	}
	if c.plugin.panicInit {
		tex.Delete()
		panic("init exploded")
	}
	if c.plugin.failInit != nil {
		tex.Delete()
		return c.plugin.failInit
	}
	c.tex = tex
	c.opts = opts
	return nil
}

func (c *countingInstance) Output(dev gpu.Device, ctx *process.Context, textures []vr.Texture) {
	c.outputs++
	if c.panicOn {
		panic("frame exploded")
	}
}

func (c *countingInstance) Exit(dev gpu.Device) {
	c.exits++
	c.tex.Delete()
}

func newTestRegistry(p Plugin, opts ...Option) (*Registry, *gputest.Device, *bytes.Buffer) {
	dev := gputest.New()
	var buf bytes.Buffer
	opts = append([]Option{WithLogger(debug.New(&buf, "test", debug.FlagLevel))}, opts...)
	return NewRegistry(p, dev, opts...), dev, &buf
}

func monoContext(window vr.WindowID) *process.Context {
	return process.NewContext(1, vr.Window{ID: window, Width: 640, Height: 480}, 1)
}

func TestRegistryLifecycle(t *testing.T) {
	p := &countingPlugin{}
	r, dev, _ := newTestRegistry(p)

	require.NoError(t, r.Initialize(1, []string{"ripple"}))
	assert.True(t, r.Has(1))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, dev.Live(gputest.KindTexture))

	inst := p.created[0]
	assert.True(t, inst.opts.Ripple)

	r.Output(1, monoContext(1), []vr.Texture{5})
	r.Output(1, monoContext(1), []vr.Texture{5})
	assert.Equal(t, 2, inst.outputs)

	require.NoError(t, r.Finalize(1))
	assert.False(t, r.Has(1))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, inst.exits)
	assert.Equal(t, 0, dev.LiveTotal())
}

func TestRegistryDoubleInitialize(t *testing.T) {
	p := &countingPlugin{}
	r, dev, _ := newTestRegistry(p)

	require.NoError(t, r.Initialize(1, nil))
	err := r.Initialize(1, nil)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	// the original instance is untouched
	assert.Equal(t, 1, r.Len())
	assert.Same(t, p.created[0], r.Instance(1))
	assert.Equal(t, 1, dev.Live(gputest.KindTexture))
}

func TestRegistryInitializeFailure(t *testing.T) {
	p := &countingPlugin{failInit: gpu.ErrMissingCapability}
	r, dev, logs := newTestRegistry(p)

	for i := 0; i < 5; i++ {
		err := r.Initialize(2, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInitialization)
		assert.ErrorIs(t, err, gpu.ErrMissingCapability)
		assert.False(t, r.Has(2))
	}

	assert.Equal(t, 5, dev.Created(gputest.KindTexture))
	assert.Equal(t, 0, dev.LiveTotal())
	assert.Contains(t, logs.String(), "initialization failed")

	// the window can be initialized once the failure is gone
	p.failInit = nil
	require.NoError(t, r.Initialize(2, nil))
	assert.True(t, r.Has(2))
}

func TestRegistryInitializePanic(t *testing.T) {
	p := &countingPlugin{panicInit: true}
	r, dev, _ := newTestRegistry(p)

	err := r.Initialize(3, nil)
	assert.ErrorIs(t, err, ErrInitialization)
	assert.Contains(t, err.Error(), "init exploded")
	assert.False(t, r.Has(3))
	assert.Equal(t, 0, dev.LiveTotal())
}

func TestRegistryFinalizeUninitialized(t *testing.T) {
	r, _, _ := newTestRegistry(&countingPlugin{})

	assert.ErrorIs(t, r.Finalize(9), ErrNotInitialized)

	require.NoError(t, r.Initialize(9, nil))
	require.NoError(t, r.Finalize(9))
	assert.ErrorIs(t, r.Finalize(9), ErrNotInitialized)
}

func TestRegistryOutput(t *testing.T) {
	t.Run("UninitializedWindowIsIgnored", func(t *testing.T) {
		r, _, logs := newTestRegistry(&countingPlugin{})
		r.Output(4, monoContext(4), []vr.Texture{1})
		assert.Contains(t, logs.String(), "uninitialized window")
	})

	t.Run("InvalidContextSkipsFrame", func(t *testing.T) {
		p := &countingPlugin{}
		r, _, logs := newTestRegistry(p)
		require.NoError(t, r.Initialize(4, nil))

		r.Output(4, monoContext(4), nil)
		r.Output(4, nil, []vr.Texture{1})
		assert.Equal(t, 0, p.created[0].outputs)
		assert.Contains(t, logs.String(), "skipping frame")
	})

	t.Run("PanicIsContained", func(t *testing.T) {
		p := &countingPlugin{}
		r, _, logs := newTestRegistry(p)
		require.NoError(t, r.Initialize(4, nil))
		p.created[0].panicOn = true

		assert.NotPanics(t, func() { r.Output(4, monoContext(4), []vr.Texture{1}) })
		assert.Contains(t, logs.String(), "frame exploded")
		assert.True(t, r.Has(4))
	})

	t.Run("GPUErrorsAreLogged", func(t *testing.T) {
		r, dev, logs := newTestRegistry(&countingPlugin{})
		require.NoError(t, r.Initialize(4, nil))

		dev.PushError(gpu.ErrCodeInvalidOperation)
		r.Output(4, monoContext(4), []vr.Texture{1})
		assert.Contains(t, logs.String(), "GL_INVALID_OPERATION")
		assert.Empty(t, gpu.DrainErrors(dev))
	})
}

func TestRegistryDefaultArgs(t *testing.T) {
	p := &countingPlugin{}
	r, _, _ := newTestRegistry(p, WithDefaultArgs([]string{"edge"}))

	require.NoError(t, r.Initialize(1, []string{"ripple"}))
	assert.True(t, p.created[0].opts.Ripple)
	assert.True(t, p.created[0].opts.Edge)
}

func TestRegistryDefaultUnknownWarnedOnce(t *testing.T) {
	p := &countingPlugin{}
	r, _, logs := newTestRegistry(p, WithDefaultArgs([]string{"edge", "sparkle"}))

	require.NoError(t, r.Initialize(1, nil))
	require.NoError(t, r.Initialize(2, []string{"glow"}))

	assert.Equal(t, 1, strings.Count(logs.String(), "sparkle"))
	require.Len(t, p.created, 2)
	assert.True(t, p.created[0].opts.Edge)
	assert.Empty(t, p.created[0].opts.Unknown)
	assert.Equal(t, []string{"glow"}, p.created[1].opts.Unknown)
}

func TestRegistryConcurrentWindows(t *testing.T) {
	p := &countingPlugin{}
	prof := debug.NewFrameProfiler(90)
	r, dev, logs := newTestRegistry(p, WithProfiler(prof))

	const windows, frames = 8, 25
	var wg sync.WaitGroup
	for w := 1; w <= windows; w++ {
		window := vr.WindowID(w)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Initialize(window, []string{"ripple"}); err != nil {
				t.Error(err)
				return
			}
			ctx := monoContext(window)
			for i := 0; i < frames; i++ {
				r.Output(window, ctx, []vr.Texture{1})
			}
			if err := r.Finalize(window); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, r.Len())
	assert.Equal(t, 0, dev.LiveTotal())
	require.Len(t, p.created, windows)
	for _, inst := range p.created {
		assert.Equal(t, frames, inst.outputs)
		assert.Equal(t, 1, inst.exits)
	}

	out := logs.String()
	assert.Equal(t, windows, strings.Count(out, "initialized window"))
	assert.Equal(t, windows, strings.Count(out, "finalized window"))
}

func TestRegistryProfiler(t *testing.T) {
	prof := debug.NewFrameProfiler(90)
	r, _, _ := newTestRegistry(&countingPlugin{}, WithProfiler(prof))

	require.NoError(t, r.Initialize(1, nil))
	r.Output(1, monoContext(1), []vr.Texture{1})

	m, ok := prof.GetMeasurement("output:0x1")
	require.True(t, ok)
	assert.Equal(t, uint64(1), m.Count())

	require.NoError(t, r.Finalize(1))
	_, ok = prof.GetMeasurement("output:0x1")
	assert.False(t, ok)
}

func TestRegistryFinalizeAll(t *testing.T) {
	p := &countingPlugin{}
	r, dev, _ := newTestRegistry(p)

	for w := vr.WindowID(1); w <= 3; w++ {
		require.NoError(t, r.Initialize(w, nil))
	}
	r.FinalizeAll()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, dev.LiveTotal())
	for _, inst := range p.created {
		assert.Equal(t, 1, inst.exits)
	}
}

func TestRegistryIndependentInstances(t *testing.T) {
	p := &countingPlugin{}
	a, _, _ := newTestRegistry(p)
	b, _, _ := newTestRegistry(p)

	require.NoError(t, a.Initialize(1, nil))
	require.NoError(t, b.Initialize(1, nil))
	require.NoError(t, a.Finalize(1))

	assert.False(t, a.Has(1))
	assert.True(t, b.Has(1))
}

// Random conformant call sequences: after every step the registry holds
// exactly the windows with a successful Initialize not yet followed by
// Finalize.
func TestRegistryContentsMatchLiveWindows(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := &countingPlugin{}
	r, dev, _ := newTestRegistry(p)
	live := map[vr.WindowID]bool{}

	for step := 0; step < 500; step++ {
		w := vr.WindowID(rng.Intn(8) + 1)
		switch {
		case !live[w]:
			fail := rng.Intn(4) == 0
			if fail {
				p.failInit = errors.New("simulated")
			}
			err := r.Initialize(w, nil)
			p.failInit = nil
			if fail {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				live[w] = true
			}
		case rng.Intn(3) == 0:
			require.NoError(t, r.Finalize(w))
			delete(live, w)
		default:
			r.Output(w, monoContext(w), []vr.Texture{1})
		}

		var want []vr.WindowID
		for lw := range live {
			want = append(want, lw)
		}
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		if len(want) == 0 {
			want = []vr.WindowID{}
		}
		require.Equal(t, want, r.Windows(), "step %d", step)
		require.Equal(t, len(live), dev.Live(gputest.KindTexture), "step %d", step)
	}
}
