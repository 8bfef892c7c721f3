//go:build pico

package drv8305

import (
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
)

// NewPicoDevice wires a Device to a DRV8305 on the Raspberry Pi Pico using
// a PIO state machine as the mode-1 SPI bus. Pin mapping follows the SPI0
// header pins with the control signals on free GPIOs:
//
//	GPIO16  SDI (chip SDO)
//	GPIO17  CS
//	GPIO18  SCK
//	GPIO19  SDO (chip SDI)
//	GPIO20  EN_GATE
//	GPIO21  WAKE
//	GPIO22  nFAULT
func NewPicoDevice() *Device {
	const (
		SDI     = machine.GPIO16
		CS      = machine.GPIO17
		SCK     = machine.GPIO18
		SDO     = machine.GPIO19
		EN_GATE = machine.GPIO20
		WAKE    = machine.GPIO21
		NFAULT  = machine.GPIO22
	)
	EN_GATE.Configure(machine.PinConfig{Mode: machine.PinOutput})
	WAKE.Configure(machine.PinConfig{Mode: machine.PinOutput})
	CS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	CS.High()
	NFAULT.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		panic(err.Error())
	}
	spi, err := piolib.NewSPI(sm, machine.SPIConfig{
		// Datasheet maximum SCLK is 10MHz.
		Frequency: 5_000_000,
		Mode:      1,
		SCK:       SCK,
		SDO:       SDO,
		SDI:       SDI,
	})
	if err != nil {
		panic(err.Error())
	}
	hw := NewSPIHardware(spi, CS, EN_GATE, WAKE)
	hw.SetFaultPin(NFAULT)
	return New(hw)
}
