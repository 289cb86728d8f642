package inputdev

import (
	"codeberg.org/smarttype/smarttype/pkg/smarttype"
	"errors"
	"fmt"
	"github.com/hashicorp/go-multierror"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
	"sort"
)

var ErrNoDevices = errors.New("no key-capable input devices found (is the user in the 'input' group?)")

// Registry finds the devices to listen to. It scans once; devices plugged in
// later are not picked up.
type Registry struct {
	ignore map[string]struct{}

	listPaths func() ([]evdev.InputPath, error)
	open      func(path string) (*evdev.InputDevice, error)

	log *zap.SugaredLogger
}

func NewRegistry(ignoreNames []string, log *zap.SugaredLogger) *Registry {
	ignore := map[string]struct{}{VirtualKeyboardName: {}}
	for _, name := range ignoreNames {
		ignore[name] = struct{}{}
	}

	return &Registry{
		ignore:    ignore,
		listPaths: evdev.ListDevicePaths,
		open:      evdev.Open,
		log:       log,
	}
}

// Discover opens every input node that reports key events. Nodes that fail to
// open are skipped.
func (r *Registry) Discover() ([]*Device, error) {
	paths, err := r.listPaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Path < paths[j].Path })

	var devices []*Device
	for _, p := range paths {
		if _, skip := r.ignore[p.Name]; skip {
			r.log.Debugw("ignoring input device", "path", p.Path, "name", p.Name)
			continue
		}

		dev, err := r.open(p.Path)
		if err != nil {
			r.log.Warnw("cannot open input device, skipping", "path", p.Path, "error", err)
			continue
		}

		if !hasKeyEvents(dev.CapableTypes()) {
			_ = dev.Close()
			continue
		}

		r.log.Infow("listening to input device", "path", p.Path, "name", p.Name)
		devices = append(devices, &Device{dev: dev, path: p.Path, name: p.Name})
	}

	return devices, nil
}

func hasKeyEvents(types []evdev.EvType) bool {
	for _, t := range types {
		if t == evdev.EV_KEY {
			return true
		}
	}
	return false
}

func Sources(devices []*Device) []smarttype.EventSource {
	sources := make([]smarttype.EventSource, 0, len(devices))
	for _, d := range devices {
		sources = append(sources, d)
	}
	return sources
}

func CloseAll(devices []*Device) error {
	var result *multierror.Error
	for _, d := range devices {
		if err := d.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close %s: %w", d.path, err))
		}
	}
	return result.ErrorOrNil()
}
