package smarttype

import (
	"codeberg.org/smarttype/smarttype/pkg/wordbuffer"
	"context"
	"errors"
	"go.uber.org/zap"
	"time"
)

const DefaultRetryDelay = 100 * time.Millisecond

// Listener feeds one device's key presses into the shared buffer.
type Listener struct {
	source     EventSource
	buffer     *wordbuffer.Buffer
	dispatcher WordDispatcher
	retryDelay time.Duration

	log *zap.SugaredLogger
}

func NewListener(source EventSource, buffer *wordbuffer.Buffer, dispatcher WordDispatcher, log *zap.SugaredLogger) *Listener {
	return &Listener{
		source:     source,
		buffer:     buffer,
		dispatcher: dispatcher,
		retryDelay: DefaultRetryDelay,
		log:        log.With("device", source.Name()),
	}
}

// Run reads until the device goes away or ctx is done. Read errors are
// retried forever. A boundary word is dispatched before the next event is
// looked at.
func (l *Listener) Run(ctx context.Context) error {
	for {
		events, err := l.source.ReadEvents()
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrDeviceGone):
			l.log.Infow("input device gone, stopping listener", "error", err)
			return nil
		case err != nil:
			l.log.Warnw("read input events", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.retryDelay):
			}
			continue
		}

		l.processEvents(events)
	}
}

func (l *Listener) processEvents(events []InputEvent) {
	for _, ev := range events {
		if ev.Transition != Press {
			continue
		}

		word, boundary := l.buffer.Press(ev.Key)
		if !boundary || word == "" {
			continue
		}

		l.log.Debugw("word finished", "word", word)
		l.dispatcher.Dispatch(word)
	}
}
