// Package drv8305 implements a polling driver for the Texas Instruments
// DRV8305-Q1 three-phase MOSFET gate driver controlled over a 16-bit SPI
// register interface.
//
// The driver is non-blocking: an external timer calls [Device.Tick] at a
// fixed period and the application main loop calls [Device.Poll]. Each Poll
// call performs at most one unit of work (one SPI transaction or one pin
// toggle) or a single timer comparison, then returns. Register programming
// and status polling are sequenced by three hierarchical state machines,
// see poll.go.
package drv8305

import (
	"errors"
	"log/slog"

	"github.com/soypat/drv8305/regs"
)

// Default tick counts for the scheduling delays, chosen for a 1ms tick.
const (
	defaultRegisterSwitchDelay = 50
	defaultStatusReadDelay     = 500
	defaultStatusPollInterval  = 250
)

var (
	errMissingHardware = errors.New("drv8305: nil hardware")
	errNotInitialized  = errors.New("drv8305: device not initialized")
)

// Hardware is the capability contract the driver needs from the target
// platform. All methods are expected to be idempotent and non-blocking
// aside from the SPI exchange itself.
type Hardware interface {
	// EnableGate drives EN_GATE high, enabling the gate driver power path.
	EnableGate()
	// DisableGate drives EN_GATE low.
	DisableGate()
	// Wake drives the WAKE pin high, bringing the chip out of low-power mode.
	Wake()
	// Sleep drives the WAKE pin low.
	Sleep()
	// Transact performs exactly one full-duplex 16-bit SPI exchange and
	// returns the word the chip shifted out during that same exchange.
	Transact(w uint16) uint16
}

// FaultPinner is optionally implemented by [Hardware] when the nFAULT pin
// of the chip is wired to a readable input.
type FaultPinner interface {
	// FaultPin reports whether the fault indicator is active.
	FaultPin() bool
}

// StatusCallback receives the decoded 11-bit payload of one status register
// read. Invoked synchronously from [Device.Poll], never from the timer path.
type StatusCallback func(d *Device, data uint16)

// ControlCallback receives the decoded 11-bit payload the chip echoed in
// response to one control register write. Note this is the chip's answer,
// not the intended value.
type ControlCallback func(d *Device, data uint16)

// StatusCallbacks bundles one optional callback per status register.
type StatusCallbacks struct {
	Warning   StatusCallback // Register 0x1.
	OVVDS     StatusCallback // Register 0x2.
	ICFaults  StatusCallback // Register 0x3.
	VGSFaults StatusCallback // Register 0x4.
}

// ControlCallbacks bundles one optional callback per control register.
type ControlCallbacks struct {
	HSGate           ControlCallback // Register 0x5.
	LSGate           ControlCallback // Register 0x6.
	Drive            ControlCallback // Register 0x7.
	ICOperation      ControlCallback // Register 0x9.
	ShuntAmplifier   ControlCallback // Register 0xA.
	VoltageRegulator ControlCallback // Register 0xB.
	VDSSense         ControlCallback // Register 0xC.
}

// Register pairs a register address with the last payload observed on the
// wire for it: the decoded read response for status registers, the decoded
// write echo for control registers.
type Register struct {
	Addr regs.Addr
	Data uint16
}

// Config parametrizes a [Device]. The zero value selects the defaults
// noted on each field.
type Config struct {
	Logger *slog.Logger
	// Configuration the first control programming pass writes to the chip.
	// Nil selects [regs.DefaultConfiguration].
	Configuration *regs.Configuration
	// RegisterSwitchDelay is the tick count between consecutive control
	// register writes. Default 50.
	RegisterSwitchDelay uint32
	// StatusReadDelay is the tick count between consecutive status register
	// reads. Default 500.
	StatusReadDelay uint32
	// StatusPollInterval is the tick count of idle time after which a new
	// status read cycle begins. Default 250.
	StatusPollInterval uint32
	StatusCallbacks    StatusCallbacks
	ControlCallbacks   ControlCallbacks
}

// Device is a single DRV8305 chip instance. Not safe for concurrent use:
// Tick and Poll may run on different execution contexts (timer interrupt
// and main loop) but all other methods must run on the Poll context.
type Device struct {
	hw       Hardware
	faultPin FaultPinner // Non-nil when hw implements it.
	logger   *slog.Logger

	timing   timing
	mstate   machineState
	config   regs.Configuration // Working snapshot, refreshed on confirmation.
	shared   regs.Configuration // Externally visible instance, see Configuration().
	table    [regs.NumRegisters]Register
	verified [regs.NumControl]bool
	// confirmPending arms a fresh full control pass for when the one in
	// flight completes.
	confirmPending bool

	statusCBs  StatusCallbacks
	controlCBs ControlCallbacks

	registerSwitchDelay uint32
	statusReadDelay     uint32
	statusPollInterval  uint32

	initialized bool
}

// New returns an inert Device driving the given hardware. Call
// [Device.Init] before polling.
func New(hw Hardware) *Device {
	d := &Device{hw: hw}
	if fp, ok := hw.(FaultPinner); ok {
		d.faultPin = fp
	}
	return d
}

// Init validates the hardware capability, wakes the chip with the power
// path disabled, snapshots the configuration and parks all three state
// machines so the next [Device.Poll] begins the initialization sequence.
// May be called again to reprogram the chip from scratch.
func (d *Device) Init(cfg Config) error {
	if d.hw == nil {
		return errMissingHardware
	}
	d.logger = cfg.Logger
	d.registerSwitchDelay = cfg.RegisterSwitchDelay
	d.statusReadDelay = cfg.StatusReadDelay
	d.statusPollInterval = cfg.StatusPollInterval
	if d.registerSwitchDelay == 0 {
		d.registerSwitchDelay = defaultRegisterSwitchDelay
	}
	if d.statusReadDelay == 0 {
		d.statusReadDelay = defaultStatusReadDelay
	}
	if d.statusPollInterval == 0 {
		d.statusPollInterval = defaultStatusPollInterval
	}
	d.statusCBs = cfg.StatusCallbacks
	d.controlCBs = cfg.ControlCallbacks

	if cfg.Configuration != nil {
		d.shared = *cfg.Configuration
	} else {
		d.shared = regs.DefaultConfiguration()
	}
	d.config = d.shared

	for i, addr := range regs.Addrs {
		d.table[i] = Register{Addr: addr}
	}
	d.verified = [regs.NumControl]bool{}
	d.confirmPending = false

	d.mstate = machineState{
		main:    stateInit,
		status:  statusWarning,
		control: controlHSGate,
	}
	d.timing = timing{}

	// Chip awake but power path off until the first programming pass.
	d.hw.Wake()
	d.hw.DisableGate()
	d.initialized = true
	d.info("init", slog.Uint64("statusPollInterval", uint64(d.statusPollInterval)))
	return nil
}

// EnableGate enables the gate driver power path, starting the power stage.
func (d *Device) EnableGate() error {
	if !d.initialized {
		return errNotInitialized
	}
	d.debug("gate:enable")
	d.hw.EnableGate()
	return nil
}

// DisableGate disables the gate driver power path, stopping the power stage.
func (d *Device) DisableGate() error {
	if !d.initialized {
		return errNotInitialized
	}
	d.debug("gate:disable")
	d.hw.DisableGate()
	return nil
}

// SleepMode schedules the main state machine to put the chip into
// low-power mode. The transition happens on a later Poll call.
func (d *Device) SleepMode() error {
	if !d.initialized {
		return errNotInitialized
	}
	d.debug("sleep:schedule")
	d.scheduleMain(stateSleep, d.registerSwitchDelay)
	return nil
}

// WakeUp schedules the main state machine to bring the chip out of
// low-power mode.
func (d *Device) WakeUp() error {
	if !d.initialized {
		return errNotInitialized
	}
	d.debug("wake:schedule")
	d.scheduleMain(stateWake, d.registerSwitchDelay)
	return nil
}

// Configuration returns a copy of the externally visible configuration.
// Mutate it and pass it to [Device.SetConfiguration] followed by
// [Device.ConfirmConfiguration] to reprogram the chip.
func (d *Device) Configuration() regs.Configuration {
	return d.shared
}

// SetConfiguration replaces the externally visible configuration. It takes
// effect on the chip only after [Device.ConfirmConfiguration].
func (d *Device) SetConfiguration(cfg regs.Configuration) {
	d.shared = cfg
}

// ConfirmConfiguration snapshots the current configuration into the working
// copy and schedules a full control register programming pass. This is the
// only caller-triggered state transition. If a programming pass is already
// in flight it is not restarted: remaining registers of the current pass
// pick up the new snapshot as they are reached and a fresh full pass runs
// once the current one completes.
func (d *Device) ConfirmConfiguration() error {
	if !d.initialized {
		return errNotInitialized
	}
	d.config = d.shared
	if d.mstate.control != controlHSGate {
		// Mid-pass. The control machine is parked at controlHSGate only
		// between passes.
		d.debug("confirm:pending")
		d.confirmPending = true
		return nil
	}
	d.debug("confirm:schedule")
	d.scheduleMain(stateControl, d.registerSwitchDelay)
	return nil
}

// ConfigurationConfirmed reports whether the echo of every control register
// matched the intended configuration during the last programming pass.
func (d *Device) ConfigurationConfirmed() bool {
	for _, ok := range d.verified {
		if !ok {
			return false
		}
	}
	return true
}

// RegisterConfirmed reports whether the echo of the control register at
// addr matched the intended configuration when it was last written.
func (d *Device) RegisterConfirmed(addr regs.Addr) bool {
	if !addr.IsControl() {
		return false
	}
	return d.verified[addr.Slot()-regs.NumStatus]
}

// RegisterSnapshot returns the register table: address plus last payload
// seen on the wire for each of the 11 registers.
func (d *Device) RegisterSnapshot() [regs.NumRegisters]Register {
	return d.table
}

// FaultPinActive samples the out-of-band fault indicator. Returns false
// when the hardware does not expose one.
func (d *Device) FaultPinActive() bool {
	return d.faultPin != nil && d.faultPin.FaultPin()
}
