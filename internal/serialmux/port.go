package serialmux

import "go.bug.st/serial"

// OpenPort opens a real serial port with the 8N1 framing the plotter
// firmware expects. It satisfies Opener.
func OpenPort(path string, baud int) (Porter, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(path, mode)
}

// ListPorts enumerates serial port device paths on this host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
