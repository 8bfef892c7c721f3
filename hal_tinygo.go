//go:build tinygo

package drv8305

import (
	"encoding/binary"
	"machine"

	"tinygo.org/x/drivers"
)

// SPIHardware implements [Hardware] over any SPI bus from the TinyGo driver
// ecosystem plus the chip's three control pins. The bus must be configured
// for SPI mode 1 at 10MHz or less.
type SPIHardware struct {
	bus      drivers.SPI
	cs       machine.Pin
	en       machine.Pin
	wake     machine.Pin
	fault    machine.Pin
	hasFault bool
}

// NewSPIHardware returns hardware driving the chip through bus. cs, enGate
// and wake must already be configured as outputs.
func NewSPIHardware(bus drivers.SPI, cs, enGate, wake machine.Pin) *SPIHardware {
	cs.High()
	return &SPIHardware{bus: bus, cs: cs, en: enGate, wake: wake}
}

// SetFaultPin wires the chip's nFAULT output, active low. The pin must be
// configured as an input, typically with a pullup.
func (h *SPIHardware) SetFaultPin(p machine.Pin) {
	h.fault = p
	h.hasFault = true
}

func (h *SPIHardware) EnableGate()  { h.en.High() }
func (h *SPIHardware) DisableGate() { h.en.Low() }
func (h *SPIHardware) Wake()        { h.wake.High() }
func (h *SPIHardware) Sleep()       { h.wake.Low() }

// FaultPin reports whether nFAULT is asserted. Always false when no fault
// pin was wired.
func (h *SPIHardware) FaultPin() bool {
	return h.hasFault && !h.fault.Get()
}

func (h *SPIHardware) Transact(w uint16) uint16 {
	var tx, rx [2]byte
	binary.BigEndian.PutUint16(tx[:], w)
	h.cs.Low()
	h.bus.Tx(tx[:], rx[:])
	h.cs.High()
	return binary.BigEndian.Uint16(rx[:])
}
