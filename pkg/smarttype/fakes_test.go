package smarttype

import (
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"sync"
)

type keyAction struct {
	Key     evdev.EvCode
	Pressed bool
}

func (a keyAction) String() string {
	if a.Pressed {
		return fmt.Sprintf("+%d", a.Key)
	}
	return fmt.Sprintf("-%d", a.Key)
}

type recordingDevice struct {
	lock    sync.Mutex
	actions []keyAction
	closed  bool
	failAt  int
}

func (d *recordingDevice) Press(key evdev.EvCode) error {
	return d.record(keyAction{Key: key, Pressed: true})
}

func (d *recordingDevice) Release(key evdev.EvCode) error {
	return d.record(keyAction{Key: key, Pressed: false})
}

func (d *recordingDevice) record(a keyAction) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.failAt > 0 && len(d.actions)+1 == d.failAt {
		return errors.New("write failed")
	}
	d.actions = append(d.actions, a)
	return nil
}

func (d *recordingDevice) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.closed = true
	return nil
}

func (d *recordingDevice) Actions() []keyAction {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]keyAction(nil), d.actions...)
}

func (d *recordingDevice) Presses() []evdev.EvCode {
	var keys []evdev.EvCode
	for _, a := range d.Actions() {
		if a.Pressed {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

type countingFactory struct {
	lock   sync.Mutex
	calls  int
	device *recordingDevice
	err    error
}

func (f *countingFactory) CreateOutputDevice() (OutputDevice, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.device, nil
}

func (f *countingFactory) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}

type staticFlag bool

func (f staticFlag) Load() bool {
	return bool(f)
}

func tableOracle(table map[string]string) OracleFunc {
	return func(word string) (string, bool) {
		corrected, ok := table[word]
		return corrected, ok
	}
}

type fakeReplacer struct {
	lock  sync.Mutex
	pairs []CorrectionPair
	err   error
}

func (r *fakeReplacer) Replace(pair CorrectionPair) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.pairs = append(r.pairs, pair)
	return r.err
}

func (r *fakeReplacer) Pairs() []CorrectionPair {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]CorrectionPair(nil), r.pairs...)
}

type fakeRecorder struct {
	lock  sync.Mutex
	pairs []CorrectionPair
}

func (r *fakeRecorder) Record(pair CorrectionPair) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.pairs = append(r.pairs, pair)
}

func (r *fakeRecorder) Pairs() []CorrectionPair {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]CorrectionPair(nil), r.pairs...)
}

type readResult struct {
	events []InputEvent
	err    error
}

// scriptedSource replays reads, then blocks until closed.
type scriptedSource struct {
	name    string
	reads   chan readResult
	closed  chan struct{}
	once    sync.Once
	readsMu sync.Mutex
	count   int
}

func newScriptedSource(name string, reads ...readResult) *scriptedSource {
	s := &scriptedSource{
		name:   name,
		reads:  make(chan readResult, len(reads)),
		closed: make(chan struct{}),
	}
	for _, r := range reads {
		s.reads <- r
	}
	return s
}

func (s *scriptedSource) Name() string {
	return s.name
}

func (s *scriptedSource) ReadEvents() ([]InputEvent, error) {
	s.readsMu.Lock()
	s.count++
	s.readsMu.Unlock()

	select {
	case r := <-s.reads:
		return r.events, r.err
	default:
	}

	select {
	case r := <-s.reads:
		return r.events, r.err
	case <-s.closed:
		return nil, fmt.Errorf("read %s: %w", s.name, ErrDeviceGone)
	}
}

func (s *scriptedSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *scriptedSource) Reads() int {
	s.readsMu.Lock()
	defer s.readsMu.Unlock()
	return s.count
}

var letterKeys = map[rune]evdev.EvCode{
	'a': evdev.KEY_A, 'b': evdev.KEY_B, 'c': evdev.KEY_C, 'd': evdev.KEY_D,
	'e': evdev.KEY_E, 'f': evdev.KEY_F, 'g': evdev.KEY_G, 'h': evdev.KEY_H,
	'i': evdev.KEY_I, 'j': evdev.KEY_J, 'k': evdev.KEY_K, 'l': evdev.KEY_L,
	'm': evdev.KEY_M, 'n': evdev.KEY_N, 'o': evdev.KEY_O, 'p': evdev.KEY_P,
	'q': evdev.KEY_Q, 'r': evdev.KEY_R, 's': evdev.KEY_S, 't': evdev.KEY_T,
	'u': evdev.KEY_U, 'v': evdev.KEY_V, 'w': evdev.KEY_W, 'x': evdev.KEY_X,
	'y': evdev.KEY_Y, 'z': evdev.KEY_Z, ' ': evdev.KEY_SPACE, '\n': evdev.KEY_ENTER,
	'\'': evdev.KEY_APOSTROPHE,
}

// typed returns press and release events for text, as a keyboard produces them.
func typed(text string) []InputEvent {
	var events []InputEvent
	for _, ch := range text {
		key := letterKeys[ch]
		events = append(events,
			InputEvent{Key: key, Transition: Press},
			InputEvent{Key: key, Transition: Release},
		)
	}
	return events
}
