// Package config loads output plugin settings from an optional .env file,
// an optional YAML file and VROUT_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/vroutput/pkg/framework/debug"
)

// Environment variables read by Load.
const (
	EnvConfigFile  = "VROUT_CONFIG"
	EnvLogLevel    = "VROUT_LOG_LEVEL"
	EnvLogFile     = "VROUT_LOG_FILE"
	EnvProfile     = "VROUT_PROFILE"
	EnvRefreshRate = "VROUT_REFRESH_HZ"
	EnvShaderDir   = "VROUT_SHADER_DIR"
	EnvHotReload   = "VROUT_SHADER_RELOAD"
	EnvArgs        = "VROUT_ARGS"
)

// Settings configures logging, profiling and shader loading for every
// window served by a plugin library.
type Settings struct {
	LogLevel    string   `yaml:"log_level"`
	LogFile     string   `yaml:"log_file"`
	Profiling   bool     `yaml:"profiling"`
	RefreshRate float64  `yaml:"refresh_rate"`
	ShaderDir   string   `yaml:"shader_dir"`
	HotReload   bool     `yaml:"hot_reload"`
	DefaultArgs []string `yaml:"default_args"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		LogLevel:    "info",
		RefreshRate: 90,
	}
}

// Load reads envFile (if it exists), then the YAML file named by
// VROUT_CONFIG, then the environment.
func Load(envFile string) (Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	s := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		var err error
		if s, err = LoadFile(path); err != nil {
			return Settings{}, err
		}
	}

	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}
	return s, s.Validate()
}

// LoadFile reads settings from a YAML file on top of the defaults.
func LoadFile(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		s.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		s.LogFile = v
	}
	if v, ok := os.LookupEnv(EnvShaderDir); ok {
		s.ShaderDir = v
	}
	if v, ok := os.LookupEnv(EnvArgs); ok {
		s.DefaultArgs = splitArgs(v)
	}
	if v, ok := os.LookupEnv(EnvProfile); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvProfile, err)
		}
		s.Profiling = b
	}
	if v, ok := os.LookupEnv(EnvHotReload); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHotReload, err)
		}
		s.HotReload = b
	}
	if v, ok := os.LookupEnv(EnvRefreshRate); ok {
		hz, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRefreshRate, err)
		}
		s.RefreshRate = hz
	}
	return nil
}

func splitArgs(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
}

// Validate checks field ranges.
func (s Settings) Validate() error {
	if _, err := debug.ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	if s.RefreshRate <= 0 {
		return fmt.Errorf("refresh rate must be positive, got %v", s.RefreshRate)
	}
	if s.HotReload && s.ShaderDir == "" {
		return errors.New("shader hot reload requires a shader directory")
	}
	return nil
}

// Logger builds the logger described by the settings.
func (s Settings) Logger() (*debug.Logger, error) {
	level, err := debug.ParseLogLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}

	var l *debug.Logger
	if s.LogFile != "" {
		if l, err = debug.NewFileLogger(s.LogFile, "vroutput", debug.DefaultFlags); err != nil {
			return nil, err
		}
	} else {
		l = debug.New(os.Stderr, "vroutput", debug.DefaultFlags)
	}
	l.SetLevel(level)
	return l, nil
}
