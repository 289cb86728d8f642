package inputdev

import (
	"codeberg.org/smarttype/smarttype/pkg/keymap"
	"codeberg.org/smarttype/smarttype/pkg/smarttype"
	"fmt"
	"github.com/holoplot/go-evdev"
)

const VirtualKeyboardName = "smarttype virtual keyboard"

const (
	busVirtual    = 0x06
	vendorID      = 0x5354
	productID     = 0x0001
	versionNumber = 1
)

type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
}

// VirtualKeyboard is a uinput device that types corrections.
type VirtualKeyboard struct {
	dev    *evdev.InputDevice
	writer eventWriter
}

// CreateVirtualKeyboard registers a uinput keyboard able to press every key
// in the key map. Needs write access to /dev/uinput.
func CreateVirtualKeyboard() (*VirtualKeyboard, error) {
	id := evdev.InputID{
		BusType: busVirtual,
		Vendor:  vendorID,
		Product: productID,
		Version: versionNumber,
	}
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keymap.OutputKeys(),
	}

	dev, err := evdev.CreateDevice(VirtualKeyboardName, id, capabilities)
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}

	return &VirtualKeyboard{dev: dev, writer: dev}, nil
}

// VirtualKeyboardFactory creates the injector's output device on demand.
var VirtualKeyboardFactory = smarttype.OutputDeviceFactoryFunc(func() (smarttype.OutputDevice, error) {
	kbd, err := CreateVirtualKeyboard()
	if err != nil {
		return nil, err
	}
	return kbd, nil
})

func (k *VirtualKeyboard) Press(key evdev.EvCode) error {
	return k.emit(key, int32(smarttype.Press))
}

func (k *VirtualKeyboard) Release(key evdev.EvCode) error {
	return k.emit(key, int32(smarttype.Release))
}

func (k *VirtualKeyboard) emit(key evdev.EvCode, value int32) error {
	err := k.writer.WriteOne(&evdev.InputEvent{
		Type:  evdev.EV_KEY,
		Code:  key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write key event: %w", err)
	}

	err = k.writer.WriteOne(&evdev.InputEvent{
		Type: evdev.EV_SYN,
		Code: evdev.SYN_REPORT,
	})
	if err != nil {
		return fmt.Errorf("write sync event: %w", err)
	}

	return nil
}

func (k *VirtualKeyboard) Close() error {
	if k.dev == nil {
		return nil
	}
	return k.dev.Close()
}
