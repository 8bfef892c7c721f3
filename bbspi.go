//go:build tinygo

package drv8305

import (
	"device"
	"machine"
)

// SPIbb is a dumb bit-bang implementation of SPI protocol that is hardcoded
// to mode 1, which the DRV8305 requires: data is launched on the rising
// clock edge and sampled on the falling edge.
type SPIbb struct {
	SCK   machine.Pin
	SDI   machine.Pin
	SDO   machine.Pin
	Delay uint32
}

// Configure sets up the SCK and SDO pins as outputs and sets them low.
func (s *SPIbb) Configure() {
	s.SCK.Configure(machine.PinConfig{Mode: machine.PinOutput})
	s.SDO.Configure(machine.PinConfig{Mode: machine.PinOutput})
	if s.SDI != s.SDO {
		// Shared pin configurations.
		s.SDI.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
		s.SDI.Low()
	}
	s.SCK.Low()
	s.SDO.Low()
	if s.Delay == 0 {
		s.Delay = 1
	}
}

// Transfer16 shifts one 16-bit word out MSB first while simultaneously
// shifting the chip's response in. Never fails.
func (s *SPIbb) Transfer16(w uint16) (out uint16) {
	for i := 15; i >= 0; i-- {
		if s.bitTransfer(w&(1<<i) != 0) {
			out |= 1 << i
		}
	}
	return out
}

//go:inline
func (s *SPIbb) bitTransfer(b bool) bool {
	s.SCK.High()
	s.SDO.Set(b)
	s.delay()
	inputBit := s.SDI.Get()
	s.SCK.Low()
	s.delay()
	return inputBit
}

// delay represents half of the clock cycle.
//
//go:inline
func (s *SPIbb) delay() {
	for i := uint32(0); i < s.Delay; i++ {
		device.Asm("nop")
	}
}

// BitBangHardware implements [Hardware] over a bit-banged SPI bus and the
// chip's three control pins. Useful when no hardware SPI peripheral or PIO
// block is available.
type BitBangHardware struct {
	spi  SPIbb
	cs   machine.Pin
	en   machine.Pin
	wake machine.Pin
}

// NewBitBangHardware configures spi and returns hardware driving the chip
// through it. cs, enGate and wake must already be configured as outputs.
func NewBitBangHardware(spi SPIbb, cs, enGate, wake machine.Pin) *BitBangHardware {
	spi.Configure()
	cs.High()
	return &BitBangHardware{spi: spi, cs: cs, en: enGate, wake: wake}
}

func (h *BitBangHardware) EnableGate()  { h.en.High() }
func (h *BitBangHardware) DisableGate() { h.en.Low() }
func (h *BitBangHardware) Wake()        { h.wake.High() }
func (h *BitBangHardware) Sleep()       { h.wake.Low() }

func (h *BitBangHardware) Transact(w uint16) uint16 {
	h.cs.Low()
	out := h.spi.Transfer16(w)
	h.cs.High()
	return out
}
