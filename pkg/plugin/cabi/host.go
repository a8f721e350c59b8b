// Package cabi exposes a plugin.Registry through the C entry points declared
// in include/vroutput.h. A shared library registers exactly one plugin from
// an init function and the host drives it per window.
package cabi

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/vroutput/pkg/framework/config"
	"github.com/justyntemme/vroutput/pkg/framework/debug"
	"github.com/justyntemme/vroutput/pkg/framework/process"
	"github.com/justyntemme/vroutput/pkg/gpu"
	"github.com/justyntemme/vroutput/pkg/plugin"
	"github.com/justyntemme/vroutput/pkg/vr"
)

// EnvFile is the dotenv file read when the library is first used.
var EnvFile = ".env"

// Factory builds the plugin once the environment is known.
type Factory func(env *plugin.Environment) plugin.Plugin

var errNotRegistered = errors.New("no plugin registered")

type binding struct {
	factory Factory
	dev     gpu.Device

	once     sync.Once
	env      *plugin.Environment
	registry *plugin.Registry
	err      error
	log      atomic.Pointer[debug.Logger]
}

var (
	bound   *binding
	boundMu sync.RWMutex
)

// Register binds the plugin built by factory to the exported entry points.
// The factory runs lazily, on the first GoInit.
func Register(factory Factory, dev gpu.Device) {
	boundMu.Lock()
	defer boundMu.Unlock()
	bound = &binding{factory: factory, dev: dev}
}

// Unregister finalizes every window and releases the environment.
func Unregister() error {
	boundMu.Lock()
	b := bound
	bound = nil
	boundMu.Unlock()

	if b == nil || b.log.Load() == nil {
		return nil
	}
	b.registry.FinalizeAll()
	return b.env.Close()
}

func (b *binding) setup() (*plugin.Registry, error) {
	b.once.Do(func() {
		settings, err := config.Load(EnvFile)
		if err != nil {
			b.err = fmt.Errorf("load settings: %w", err)
			return
		}
		env, err := plugin.NewEnvironment(settings)
		if err != nil {
			b.err = fmt.Errorf("build environment: %w", err)
			return
		}
		p := b.factory(env)
		if err := p.Info().Validate(); err != nil {
			_ = env.Close()
			b.err = fmt.Errorf("invalid plugin info: %w", err)
			return
		}
		b.env = env
		b.registry = plugin.NewRegistry(p, b.dev, env.Options()...)
		b.log.Store(env.Logger)
	})
	return b.registry, b.err
}

func current() (*plugin.Registry, error) {
	boundMu.RLock()
	b := bound
	boundMu.RUnlock()
	if b == nil {
		return nil, errNotRegistered
	}
	return b.setup()
}

// logger returns the bound environment's logger, or the default logger
// before setup has succeeded.
func logger() *debug.Logger {
	boundMu.RLock()
	b := bound
	boundMu.RUnlock()
	if b != nil {
		if l := b.log.Load(); l != nil {
			return l
		}
	}
	return debug.Default()
}

// recoverPanic keeps Go panics from unwinding into the host.
func recoverPanic(operation string) {
	if r := recover(); r != nil {
		logger().Error("%s: recovered panic: %v", operation, r)
	}
}

func initialize(window vr.WindowID, args []string) bool {
	r, err := current()
	if err != nil {
		logger().Error("init window %s: %v", window, err)
		return false
	}
	return r.Initialize(window, args) == nil
}

func output(window vr.WindowID, ctx *process.Context, textures []vr.Texture) {
	r, err := current()
	if err != nil {
		logger().Error("output window %s: %v", window, err)
		return
	}
	r.Output(window, ctx, textures)
}

func exit(window vr.WindowID) {
	r, err := current()
	if err != nil {
		logger().Error("exit window %s: %v", window, err)
		return
	}
	_ = r.Finalize(window)
}
