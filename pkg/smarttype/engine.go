package smarttype

import (
	"codeberg.org/smarttype/smarttype/pkg/wordbuffer"
	"context"
	"fmt"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"sync"
	"time"
)

type Options struct {
	IdleTimeout    time.Duration
	KeystrokeDelay time.Duration
	// Recorder is told about every applied correction. Optional.
	Recorder Recorder
}

// Engine owns the shared buffer and injector and runs one listener per
// input device.
type Engine struct {
	sources    []EventSource
	buffer     *wordbuffer.Buffer
	injector   *Injector
	dispatcher *Dispatcher

	log *zap.SugaredLogger
}

type Stats struct {
	Devices        int
	BufferedChars  int
	SinceKeystroke time.Duration
	// Corrections typed during this run.
	Corrections int64
}

func NewEngine(
	sources []EventSource,
	oracle Oracle,
	outputFactory OutputDeviceFactory,
	enabled EnabledFlag,
	opts Options,
	log *zap.SugaredLogger,
) *Engine {
	idleTimeout := opts.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = wordbuffer.DefaultIdleTimeout
	}

	buffer := wordbuffer.New(wordbuffer.WithIdleTimeout(idleTimeout))
	injector := NewInjector(outputFactory, opts.KeystrokeDelay, log.Named("injector"))
	dispatcher := NewDispatcher(oracle, injector, enabled, opts.Recorder, log.Named("dispatcher"))

	return &Engine{
		sources:    sources,
		buffer:     buffer,
		injector:   injector,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Run blocks until every listener has stopped. Cancelling ctx closes all
// sources, which unblocks their reads.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, source := range e.sources {
		listener := NewListener(source, e.buffer, e.dispatcher, e.log.Named("listener"))

		wg.Add(1)
		go func(source EventSource) {
			defer wg.Done()
			_ = listener.Run(ctx)
			if err := source.Close(); err != nil {
				e.log.Debugw("close input device", "device", source.Name(), "error", err)
			}
		}(source)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	if err := e.closeSources(); err != nil {
		e.log.Debugw("close input devices", "error", err)
	}
	<-done

	return ctx.Err()
}

func (e *Engine) closeSources() error {
	var result *multierror.Error
	for _, source := range e.sources {
		if err := source.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close %s: %w", source.Name(), err))
		}
	}
	return result.ErrorOrNil()
}

func (e *Engine) SetIdleTimeout(d time.Duration) {
	e.buffer.SetIdleTimeout(d)
}

func (e *Engine) Stats() Stats {
	return Stats{
		Devices:        len(e.sources),
		BufferedChars:  e.buffer.Len(),
		SinceKeystroke: time.Since(e.buffer.LastActivity()),
		Corrections:    e.dispatcher.Applied(),
	}
}

// ResetBuffer drops the partially typed word.
func (e *Engine) ResetBuffer() {
	e.buffer.Reset()
}

// Close releases the virtual keyboard, if one was created.
func (e *Engine) Close() error {
	return e.injector.Close()
}
