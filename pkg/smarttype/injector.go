package smarttype

import (
	"codeberg.org/smarttype/smarttype/pkg/keymap"
	"fmt"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
	"sync"
	"time"
	"unicode/utf8"
)

const DefaultKeystrokeDelay = 10 * time.Millisecond

type outputState int

const (
	outputUninitialized outputState = iota
	outputReady
	outputDisabled
)

// Injector rewrites already delivered words by erasing them with backspace and
// typing the replacement on a lazily created output device. All replacements
// are serialized.
type Injector struct {
	lock    sync.Mutex
	factory OutputDeviceFactory
	state   outputState
	device  OutputDevice
	delay   time.Duration
	sleep   func(time.Duration)

	log *zap.SugaredLogger
}

func NewInjector(factory OutputDeviceFactory, delay time.Duration, log *zap.SugaredLogger) *Injector {
	return &Injector{
		factory: factory,
		delay:   delay,
		sleep:   time.Sleep,
		log:     log,
	}
}

func (i *Injector) Replace(pair CorrectionPair) error {
	i.lock.Lock()
	defer i.lock.Unlock()

	device, err := i.outputDevice()
	if err != nil {
		return err
	}

	for n := utf8.RuneCountInString(pair.Old); n > 0; n-- {
		if err := i.tap(device, keymap.Backspace); err != nil {
			return fmt.Errorf("erase %q: %w", pair.Old, err)
		}
	}

	for _, ch := range pair.New {
		out, ok := keymap.CharToOutput(ch)
		if !ok {
			i.log.Warnw("skipping character with no key mapping", "char", string(ch), "word", pair.New)
			continue
		}

		if err := i.typeChar(device, out); err != nil {
			return fmt.Errorf("type %q: %w", pair.New, err)
		}
	}

	return nil
}

// outputDevice must be called with the lock held.
func (i *Injector) outputDevice() (OutputDevice, error) {
	switch i.state {
	case outputReady:
		return i.device, nil
	case outputDisabled:
		return nil, ErrInjectionDisabled
	}

	device, err := i.factory.CreateOutputDevice()
	if err != nil {
		i.state = outputDisabled
		i.log.Errorw("cannot create virtual keyboard, corrections are disabled until restart", "error", err)
		return nil, fmt.Errorf("create output device: %w: %w", ErrInjectionDisabled, err)
	}

	i.state = outputReady
	i.device = device
	return device, nil
}

func (i *Injector) typeChar(device OutputDevice, out keymap.Output) error {
	if !out.Shift {
		return i.tap(device, out.Key)
	}

	if err := i.press(device, keymap.Shift); err != nil {
		return err
	}
	tapErr := i.tap(device, out.Key)
	if err := i.release(device, keymap.Shift); err != nil && tapErr == nil {
		return err
	}
	return tapErr
}

func (i *Injector) tap(device OutputDevice, key evdev.EvCode) error {
	if err := i.press(device, key); err != nil {
		return err
	}
	return i.release(device, key)
}

func (i *Injector) press(device OutputDevice, key evdev.EvCode) error {
	if err := device.Press(key); err != nil {
		return fmt.Errorf("press key %d: %w", key, err)
	}
	i.pause()
	return nil
}

func (i *Injector) release(device OutputDevice, key evdev.EvCode) error {
	if err := device.Release(key); err != nil {
		return fmt.Errorf("release key %d: %w", key, err)
	}
	i.pause()
	return nil
}

func (i *Injector) pause() {
	if i.delay > 0 {
		i.sleep(i.delay)
	}
}

func (i *Injector) Close() error {
	i.lock.Lock()
	defer i.lock.Unlock()

	if i.state != outputReady {
		return nil
	}

	i.state = outputDisabled
	if err := i.device.Close(); err != nil {
		return fmt.Errorf("close output device: %w", err)
	}
	return nil
}
