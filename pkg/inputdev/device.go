package inputdev

import (
	"codeberg.org/smarttype/smarttype/pkg/smarttype"
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
	"io"
	"os"
	"sync"
)

type eventReader interface {
	ReadOne() (*evdev.InputEvent, error)
}

// Device is an opened /dev/input/event* node. It only observes events; the
// device is never grabbed, so keys still reach the focused application.
type Device struct {
	dev  *evdev.InputDevice
	path string
	name string

	closeOnce sync.Once
	closeErr  error
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Path() string {
	return d.path
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%s)", d.path, d.name)
}

// ReadEvents returns the key events of the next input frame, i.e. everything
// up to the next SYN_REPORT.
func (d *Device) ReadEvents() ([]smarttype.InputEvent, error) {
	events, err := readBatch(d.dev)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}
	return events, nil
}

func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.dev.Close()
	})
	return d.closeErr
}

func readBatch(r eventReader) ([]smarttype.InputEvent, error) {
	var batch []smarttype.InputEvent
	// after SYN_DROPPED everything up to and including the next SYN_REPORT
	// belongs to an incomplete frame
	dropped := false
	for {
		ev, err := r.ReadOne()
		if err != nil {
			return nil, classifyReadError(err)
		}

		switch ev.Type {
		case evdev.EV_KEY:
			if dropped {
				continue
			}
			batch = append(batch, smarttype.InputEvent{
				Key:        ev.Code,
				Transition: smarttype.Transition(ev.Value),
			})
		case evdev.EV_SYN:
			switch ev.Code {
			case evdev.SYN_DROPPED:
				batch = batch[:0]
				dropped = true
			case evdev.SYN_REPORT:
				if dropped {
					dropped = false
					continue
				}
				if len(batch) > 0 {
					return batch, nil
				}
			}
		}
	}
}

func classifyReadError(err error) error {
	switch {
	case errors.Is(err, unix.ENODEV),
		errors.Is(err, os.ErrClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", smarttype.ErrDeviceGone, err)
	}
	return err
}
