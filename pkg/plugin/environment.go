package plugin

import (
	"fmt"

	"github.com/justyntemme/vroutput/pkg/framework/config"
	"github.com/justyntemme/vroutput/pkg/framework/debug"
	"github.com/justyntemme/vroutput/pkg/shaders"
)

// Environment is the shared infrastructure built from Settings for one
// plugin library: logger, profiler, shader loader and optional watcher.
type Environment struct {
	Settings config.Settings
	Logger   *debug.Logger
	Profiler *debug.FrameProfiler
	Shaders  shaders.Loader
	Watcher  *shaders.Watcher
}

// NewEnvironment builds the environment described by s.
func NewEnvironment(s config.Settings) (*Environment, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	log, err := s.Logger()
	if err != nil {
		return nil, err
	}

	env := &Environment{
		Settings: s,
		Logger:   log,
		Shaders:  shaders.Loader{Dir: s.ShaderDir},
	}

	if s.Profiling {
		env.Profiler = debug.NewFrameProfiler(s.RefreshRate)
	}

	if s.HotReload {
		w, err := shaders.NewWatcher(s.ShaderDir, log)
		if err != nil {
			_ = log.Close()
			return nil, fmt.Errorf("shader hot reload: %w", err)
		}
		env.Watcher = w
	}

	return env, nil
}

// Options returns the registry options implied by the environment.
func (e *Environment) Options() []Option {
	opts := []Option{
		WithLogger(e.Logger),
		WithDefaultArgs(e.Settings.DefaultArgs),
	}
	if e.Profiler != nil {
		opts = append(opts, WithProfiler(e.Profiler))
	}
	return opts
}

// Close stops the shader watcher and closes the logger.
func (e *Environment) Close() error {
	if e.Profiler != nil {
		e.Logger.Info("%s", e.Profiler.FrameReport())
	}
	var err error
	if e.Watcher != nil {
		err = e.Watcher.Close()
	}
	if cerr := e.Logger.Close(); err == nil {
		err = cerr
	}
	return err
}
