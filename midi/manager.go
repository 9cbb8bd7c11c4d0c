package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-groovebox/debug"
)

// DeviceManager watches for a keyboard input port and connects to it
// whenever it appears, so keyboards can be plugged in at any time.
type DeviceManager struct {
	match func(name string) bool
	list  func() ([]string, error)
	open  func(name string) (Controller, error)

	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager watches input ports whose name contains portName,
// case-insensitively. An empty portName matches nothing.
func NewDeviceManager(portName string) *DeviceManager {
	want := strings.ToLower(portName)
	return &DeviceManager{
		match: func(name string) bool {
			return want != "" && strings.Contains(strings.ToLower(name), want)
		},
		list: func() ([]string, error) {
			ports, err := Ports(PortTimeout)
			return ports.InNames(), err
		},
		open:        openKeyboard,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
	}
}

func openKeyboard(name string) (Controller, error) {
	in, err := FindIn(name)
	if err != nil {
		return nil, err
	}
	return NewKeyboardController(name, in)
}

// Events returns a channel of connect and disconnect events. It is closed
// when Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected keyboards.
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run polls until ctx ends (blocking - run in goroutine).
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	names, err := dm.list()
	if err != nil {
		// A hung driver skips this scan; the next one may succeed.
		debug.Log("midi", "scan: %v", err)
		return
	}

	seen := make(map[string]bool)
	for _, name := range names {
		if !dm.match(name) {
			continue
		}
		seen[name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := dm.open(name)
		if err != nil {
			debug.Log("midi", "open %s: %v", name, err)
			continue
		}
		dm.mu.Lock()
		dm.controllers[name] = c
		dm.mu.Unlock()
		debug.Log("midi", "keyboard connected: %s", name)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: name})
	}

	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if !seen[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range gone {
		debug.Log("midi", "keyboard disconnected: %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}
