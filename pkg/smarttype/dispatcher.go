package smarttype

import (
	"errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Dispatcher asks the oracle about each finished word and hands corrections
// to the replacer.
type Dispatcher struct {
	oracle   Oracle
	replacer Replacer
	enabled  EnabledFlag
	recorder Recorder
	applied  atomic.Int64

	log *zap.SugaredLogger
}

// NewDispatcher builds a Dispatcher. recorder may be nil.
func NewDispatcher(oracle Oracle, replacer Replacer, enabled EnabledFlag, recorder Recorder, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		oracle:   oracle,
		replacer: replacer,
		enabled:  enabled,
		recorder: recorder,
		log:      log,
	}
}

func (d *Dispatcher) Dispatch(word string) {
	if !d.enabled.Load() {
		return
	}

	corrected, ok := d.oracle.Correct(word)
	if !ok {
		return
	}

	pair := CorrectionPair{Old: word, New: corrected}
	err := d.replacer.Replace(pair)
	switch {
	case errors.Is(err, ErrInjectionDisabled):
		d.log.Debugw("correction not applied", "correction", pair.String(), "error", err)
		return
	case err != nil:
		d.log.Warnw("correction partially applied", "correction", pair.String(), "error", err)
		return
	}

	d.applied.Inc()
	d.log.Infow("corrected word", "from", pair.Old, "to", pair.New)
	if d.recorder != nil {
		d.recorder.Record(pair)
	}
}

// Applied is the number of corrections typed since the Dispatcher was built.
func (d *Dispatcher) Applied() int64 {
	return d.applied.Load()
}
