package smarttype

import (
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
)

var (
	ErrDeviceGone        = errors.New("input device gone")
	ErrInjectionDisabled = errors.New("text injection disabled")
)

// Transition mirrors the value field of a kernel key event.
type Transition int32

const (
	Release Transition = 0
	Press   Transition = 1
	Repeat  Transition = 2
)

func (t Transition) String() string {
	switch t {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}

	return fmt.Sprintf("transition(%d)", int32(t))
}

type InputEvent struct {
	Key        evdev.EvCode
	Transition Transition
}

type CorrectionPair struct {
	Old string
	New string
}

func (p CorrectionPair) String() string {
	return fmt.Sprintf("%q -> %q", p.Old, p.New)
}
