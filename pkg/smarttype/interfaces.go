package smarttype

import (
	"github.com/holoplot/go-evdev"
	"time"
)

// EventSource is one opened input device.
type EventSource interface {
	Name() string
	// ReadEvents blocks for the next batch of key events. It returns an error
	// wrapping ErrDeviceGone once the device has disappeared.
	ReadEvents() ([]InputEvent, error)
	Close() error
}

// Oracle decides whether a typed word is a typo and what it should have been.
type Oracle interface {
	Correct(word string) (string, bool)
}

type OracleFunc func(word string) (string, bool)

func (f OracleFunc) Correct(word string) (string, bool) {
	return f(word)
}

// OutputDevice emits synthetic key transitions. Every call is flushed before
// it returns so the receiver observes the transitions in order.
type OutputDevice interface {
	Press(key evdev.EvCode) error
	Release(key evdev.EvCode) error
	Close() error
}

type OutputDeviceFactory interface {
	CreateOutputDevice() (OutputDevice, error)
}

type OutputDeviceFactoryFunc func() (OutputDevice, error)

func (f OutputDeviceFactoryFunc) CreateOutputDevice() (OutputDevice, error) {
	return f()
}

type Replacer interface {
	Replace(pair CorrectionPair) error
}

type WordDispatcher interface {
	Dispatch(word string)
}

// EnabledFlag is read before every dispatch.
type EnabledFlag interface {
	Load() bool
}

// Recorder takes note of applied corrections. Record must not block.
type Recorder interface {
	Record(pair CorrectionPair)
}

type CorrectionStore interface {
	AddCorrection(record CorrectionRecord) error
	TotalCorrections() (int64, error)
	CorrectionsSince(since time.Time) (int64, error)
	// TopTypos returns the most frequent corrections. limit <= 0 returns all.
	TopTypos(limit int) ([]TypoCount, error)
}

type CorrectionRecord struct {
	Pair CorrectionPair
	At   time.Time
}

type TypoCount struct {
	Typo       string
	Correction string
	Count      int64
}
