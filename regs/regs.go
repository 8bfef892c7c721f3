// Package regs describes the register map and 16-bit SPI wire format of the
// Texas Instruments DRV8305-Q1 three-phase MOSFET gate driver.
//
// The chip exposes 11 registers over SPI: 4 read-only status registers at
// addresses 0x1..0x4 and 7 read/write control registers at 0x5, 0x6, 0x7,
// 0x9, 0xA, 0xB, 0xC. Address 0x8 is not assigned.
package regs

// Addr is the 4-bit protocol address of a DRV8305 register.
type Addr uint8

const (
	// Status registers (read-only). Reading AddrWarning also resets the
	// chip's watchdog timer.
	AddrWarning   Addr = 0x1 // Warnings and watchdog reset.
	AddrOVVDS     Addr = 0x2 // Overcurrent (VDS) faults.
	AddrICFaults  Addr = 0x3 // IC faults.
	AddrVGSFaults Addr = 0x4 // Gate drive (VGS) faults.

	// Control registers (read/write).
	AddrHSGate      Addr = 0x5 // High-side gate drive control.
	AddrLSGate      Addr = 0x6 // Low-side gate drive control.
	AddrDrive       Addr = 0x7 // Gate drive control (charge pump, PWM, dead time).
	AddrICOperation Addr = 0x9 // IC operation (watchdog, sleep, fault masks).
	AddrShuntAmp    Addr = 0xA // Shunt amplifier control.
	AddrVReg        Addr = 0xB // Voltage regulator control.
	AddrVDSSense    Addr = 0xC // VDS sense control.
)

// Register table sizes and fixed slot positions. Status registers occupy
// slots 0..3 in address order, control registers slots 4..10 in address order.
const (
	NumStatus    = 4
	NumControl   = 7
	NumRegisters = NumStatus + NumControl

	SlotWarning   = 0
	SlotOVVDS     = 1
	SlotICFaults  = 2
	SlotVGSFaults = 3

	SlotHSGate      = 4
	SlotLSGate      = 5
	SlotDrive       = 6
	SlotICOperation = 7
	SlotShuntAmp    = 8
	SlotVReg        = 9
	SlotVDSSense    = 10
)

// Addrs lists every register in table order, status first then control.
var Addrs = [NumRegisters]Addr{
	AddrWarning, AddrOVVDS, AddrICFaults, AddrVGSFaults,
	AddrHSGate, AddrLSGate, AddrDrive, AddrICOperation,
	AddrShuntAmp, AddrVReg, AddrVDSSense,
}

// IsValid reports whether a names an existing DRV8305 register.
func (a Addr) IsValid() bool {
	return a >= AddrWarning && a <= AddrVDSSense && a != 0x8
}

// IsControl reports whether a is a read/write control register.
func (a Addr) IsControl() bool {
	return a >= AddrHSGate && a.IsValid()
}

// Slot returns the fixed register table index of a, or -1 if a is not a
// valid register address.
func (a Addr) Slot() int {
	switch {
	case !a.IsValid():
		return -1
	case a < 0x8:
		return int(a) - 1
	default:
		return int(a) - 2
	}
}

func (a Addr) String() (s string) {
	switch a {
	case AddrWarning:
		s = "warning"
	case AddrOVVDS:
		s = "ov/vds-faults"
	case AddrICFaults:
		s = "ic-faults"
	case AddrVGSFaults:
		s = "vgs-faults"
	case AddrHSGate:
		s = "hs-gate"
	case AddrLSGate:
		s = "ls-gate"
	case AddrDrive:
		s = "gate-drive"
	case AddrICOperation:
		s = "ic-operation"
	case AddrShuntAmp:
		s = "shunt-amp"
	case AddrVReg:
		s = "vreg"
	case AddrVDSSense:
		s = "vds-sense"
	default:
		s = "unknown"
	}
	return s
}
