package plugin

import (
	"time"

	"go.uber.org/zap"

	"github.com/justyntemme/vroutput/pkg/framework/clock"
	"github.com/justyntemme/vroutput/pkg/framework/debug"
)

// Base provides the state every output instance carries: its metadata,
// the options it was initialized with and the time it started.
type Base struct {
	Info    Info
	options Options
	clock   clock.Clock
	started time.Time
	log     *debug.Logger
}

// NewBase creates a new plugin base using the real clock
func NewBase(info Info) *Base {
	return &Base{
		Info:  info,
		clock: clock.Real{},
		log:   debug.Default().With(zap.String("plugin", info.ID)),
	}
}

// SetClock replaces the clock used for elapsed-time effects
func (b *Base) SetClock(c clock.Clock) {
	b.clock = c
}

// SetLogger replaces the instance logger
func (b *Base) SetLogger(l *debug.Logger) {
	b.log = l.With(zap.String("plugin", b.Info.ID))
}

// Begin records the options and the start time. Instances call it from Init.
func (b *Base) Begin(opts Options) {
	b.options = opts
	b.started = b.clock.Now()
	for _, tok := range opts.Unknown {
		b.log.Warn("ignoring unrecognized argument %q", tok)
	}
	b.log.Debug("started with options %v", opts.Tokens())
}

// Options returns the options the instance was initialized with
func (b *Base) Options() Options {
	return b.options
}

// Elapsed returns the time since Begin
func (b *Base) Elapsed() time.Duration {
	return b.clock.Since(b.started)
}

// Centiseconds returns the time since Begin in hundredths of a second
func (b *Base) Centiseconds() float32 {
	return float32(b.Elapsed().Milliseconds()) / 10
}

// Logger returns the instance logger
func (b *Base) Logger() *debug.Logger {
	return b.log
}
