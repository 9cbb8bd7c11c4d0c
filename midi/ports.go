package midi

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

var (
	// ErrPortNotFound is returned when no port has the requested name.
	ErrPortNotFound = errors.New("midi port not found")
	// ErrPortsTimeout is returned when the driver does not answer in time.
	ErrPortsTimeout = errors.New("timed out listing midi ports")
)

// PortTimeout bounds every port listing. CoreMIDI can hang.
const PortTimeout = 3 * time.Second

// PortList holds the input and output ports seen in one scan.
type PortList struct {
	In  []drivers.In
	Out []drivers.Out
}

// InNames returns the input port names.
func (p PortList) InNames() []string {
	names := make([]string, len(p.In))
	for i, port := range p.In {
		names[i] = port.String()
	}
	return names
}

// OutNames returns the output port names.
func (p PortList) OutNames() []string {
	names := make([]string, len(p.Out))
	for i, port := range p.Out {
		names[i] = port.String()
	}
	return names
}

// Ports lists all MIDI ports, giving up after timeout.
func Ports(timeout time.Duration) (PortList, error) {
	ch := make(chan PortList, 1)
	go func() {
		ch <- PortList{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()

	select {
	case ports := <-ch:
		return ports, nil
	case <-time.After(timeout):
		return PortList{}, ErrPortsTimeout
	}
}

// FindOut finds an output port by exact name.
func FindOut(name string) (drivers.Out, error) {
	ports, err := Ports(PortTimeout)
	if err != nil {
		return nil, err
	}
	for _, p := range ports.Out {
		if p.String() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
}

// FindIn finds an input port by exact name.
func FindIn(name string) (drivers.In, error) {
	ports, err := Ports(PortTimeout)
	if err != nil {
		return nil, err
	}
	for _, p := range ports.In {
		if p.String() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
}

// CloseDriver releases the MIDI driver. Call once at exit.
func CloseDriver() {
	gomidi.CloseDriver()
}
