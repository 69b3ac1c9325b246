package terminal

import (
	"fmt"
	"io"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port is the duplex byte channel the engine drives. The engine only needs
// ordered, non-duplicating byte delivery; whether the other side is a
// physical serial port, a virtual COM port, or a test double is irrelevant.
type Port interface {
	io.ReadWriteCloser

	// Drain blocks until all written bytes have left the output buffer.
	Drain() error
}

// openSerialPort opens the configured serial device with the fixed TL3600
// line parameters: 8 data bits, 1 stop bit, no parity. Only the baud rate
// is configurable.
func openSerialPort(cfg *Config) (Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.portName, mode)
	if err != nil {
		return nil, fmt.Errorf("terminal: open %s: %w", cfg.portName, err)
	}

	return port, nil
}

// PortInfo describes one discoverable serial device address.
type PortInfo struct {
	// Name is the device address, e.g. "/dev/ttyUSB0" or "COM3".
	Name string

	// Product is the USB product description, when available.
	Product string

	// SerialNumber is the USB serial number, when available.
	SerialNumber string

	// VID and PID are the USB vendor/product IDs, when available.
	VID string
	PID string
}

// ListPorts enumerates available serial ports with descriptive metadata
// where the platform provides it, falling back to a bare name listing when
// detailed enumeration is unavailable.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		infos := make([]PortInfo, 0, len(details))
		for _, d := range details {
			info := PortInfo{Name: d.Name}
			if d.IsUSB {
				info.Product = d.Product
				info.SerialNumber = d.SerialNumber
				info.VID = d.VID
				info.PID = d.PID
			}
			infos = append(infos, info)
		}

		return infos, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("terminal: list ports: %w", err)
	}

	infos := make([]PortInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, PortInfo{Name: name})
	}

	return infos, nil
}
