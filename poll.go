package drv8305

import (
	"log/slog"
	"sync/atomic"

	"github.com/soypat/drv8305/regs"
)

// Three hierarchical state machines share one software timer. The main
// machine owns the lifecycle; the status and control machines sequence the
// register reads and writes and hand control back to the main machine when
// their pass completes. Exactly one machine is active at a time, the other
// two stay parked in their last state.
//
// A scheduled transition resets the cycle counter to zero, records the
// target state in the machine's own typed next field and parks the machine
// in its delay state. The delay state releases into the target once the
// counter reaches the threshold. Each machine has its own state and next
// field so a transition armed on one machine can never release into
// another machine's state space.

type mainState uint8

const (
	stateInit mainState = iota
	stateIdle
	stateWake
	stateSleep
	stateStatus
	stateControl
	stateDelay
)

type statusState uint8

const (
	statusWarning statusState = iota
	statusOVVDS
	statusICFaults
	statusVGSFaults
	statusDelay
)

type controlState uint8

const (
	controlHSGate controlState = iota
	controlLSGate
	controlDrive
	controlICOperation
	controlShuntAmp
	controlVReg
	controlVDSSense
	controlDelay
)

type machineState struct {
	main        mainState
	nextMain    mainState
	status      statusState
	nextStatus  statusState
	control     controlState
	nextControl controlState
}

// timing implements the shared non-blocking delay. cycle is incremented by
// Tick, possibly from a timer interrupt or a separate goroutine, and is the
// only field shared across execution contexts.
type timing struct {
	cycle atomic.Uint32
	delay uint32
}

// Tick advances the driver's software timer by one period. Call at a fixed
// rate, 1ms with the default delay constants. Safe to call from a timer
// interrupt or goroutine concurrent with [Device.Poll].
func (d *Device) Tick() {
	d.timing.cycle.Add(1)
}

func (d *Device) ticks() uint32 {
	return d.timing.cycle.Load()
}

// Poll runs one iteration of the main state machine: at most one SPI
// transaction or pin toggle, or a single timer comparison. Never blocks.
func (d *Device) Poll() {
	if !d.initialized {
		return
	}
	switch d.mstate.main {
	case stateInit:
		d.hw.EnableGate()
		d.hw.Wake()
		d.debug("main:init")
		// A full control program always follows (re-)initialization before
		// any status read is attempted.
		d.scheduleMain(stateControl, d.registerSwitchDelay)

	case stateIdle:
		if d.ticks() >= d.statusPollInterval {
			d.scheduleMain(stateStatus, d.registerSwitchDelay)
		}

	case stateWake:
		d.hw.Wake()
		d.debug("main:wake")
		d.scheduleMain(stateIdle, d.registerSwitchDelay)

	case stateSleep:
		d.hw.Sleep()
		d.debug("main:sleep")
		d.scheduleMain(stateIdle, d.registerSwitchDelay)

	case stateStatus:
		d.pollStatus()

	case stateControl:
		d.pollControl()

	case stateDelay:
		if d.ticks() >= d.timing.delay {
			d.mstate.main = d.mstate.nextMain
		}
	}
}

// pollStatus reads the 4 status registers in address order, one per pass,
// with the status read delay between consecutive reads. The last read
// re-parks the machine at the first register and returns the main machine
// to idle.
func (d *Device) pollStatus() {
	switch d.mstate.status {
	case statusWarning:
		d.readStatus(regs.SlotWarning, d.statusCBs.Warning)
		d.scheduleStatus(statusOVVDS, d.statusReadDelay)

	case statusOVVDS:
		d.readStatus(regs.SlotOVVDS, d.statusCBs.OVVDS)
		d.scheduleStatus(statusICFaults, d.statusReadDelay)

	case statusICFaults:
		d.readStatus(regs.SlotICFaults, d.statusCBs.ICFaults)
		d.scheduleStatus(statusVGSFaults, d.statusReadDelay)

	case statusVGSFaults:
		d.readStatus(regs.SlotVGSFaults, d.statusCBs.VGSFaults)
		d.mstate.status = statusWarning
		d.scheduleMain(stateIdle, d.statusReadDelay)

	case statusDelay:
		if d.ticks() >= d.timing.delay {
			d.mstate.status = d.mstate.nextStatus
		}
	}
}

// pollControl writes the 7 control registers in address order, one per
// pass, with the register switch delay between consecutive writes. The
// sequence is strictly ordered and never restarted mid-flight; the last
// write re-parks the machine and either returns the main machine to idle
// or, when a confirmation arrived mid-pass, arms a fresh full pass.
func (d *Device) pollControl() {
	switch d.mstate.control {
	case controlHSGate:
		echo := d.writeControl(regs.SlotHSGate, d.config.HSGate.Pack(), d.controlCBs.HSGate)
		d.noteVerified(0, d.config.HSGate.MatchesEcho(echo))
		d.scheduleControl(controlLSGate, d.registerSwitchDelay)

	case controlLSGate:
		echo := d.writeControl(regs.SlotLSGate, d.config.LSGate.Pack(), d.controlCBs.LSGate)
		d.noteVerified(1, d.config.LSGate.MatchesEcho(echo))
		d.scheduleControl(controlDrive, d.registerSwitchDelay)

	case controlDrive:
		echo := d.writeControl(regs.SlotDrive, d.config.Drive.Pack(), d.controlCBs.Drive)
		d.noteVerified(2, d.config.Drive.MatchesEcho(echo))
		d.scheduleControl(controlICOperation, d.registerSwitchDelay)

	case controlICOperation:
		echo := d.writeControl(regs.SlotICOperation, d.config.ICOperation.Pack(), d.controlCBs.ICOperation)
		d.noteVerified(3, d.config.ICOperation.MatchesEcho(echo))
		d.scheduleControl(controlShuntAmp, d.registerSwitchDelay)

	case controlShuntAmp:
		echo := d.writeControl(regs.SlotShuntAmp, d.config.ShuntAmplifier.Pack(), d.controlCBs.ShuntAmplifier)
		d.noteVerified(4, d.config.ShuntAmplifier.MatchesEcho(echo))
		d.scheduleControl(controlVReg, d.registerSwitchDelay)

	case controlVReg:
		echo := d.writeControl(regs.SlotVReg, d.config.VoltageRegulator.Pack(), d.controlCBs.VoltageRegulator)
		d.noteVerified(5, d.config.VoltageRegulator.MatchesEcho(echo))
		d.scheduleControl(controlVDSSense, d.registerSwitchDelay)

	case controlVDSSense:
		echo := d.writeControl(regs.SlotVDSSense, d.config.VDSSense.Pack(), d.controlCBs.VDSSense)
		d.noteVerified(6, d.config.VDSSense.MatchesEcho(echo))
		d.mstate.control = controlHSGate
		if d.confirmPending {
			d.confirmPending = false
			d.debug("control:repass")
			d.scheduleMain(stateControl, d.registerSwitchDelay)
		} else {
			d.scheduleMain(stateIdle, d.registerSwitchDelay)
		}

	case controlDelay:
		if d.ticks() >= d.timing.delay {
			d.mstate.control = d.mstate.nextControl
		}
	}
}

// readStatus issues one read transaction for the register in slot, stores
// the decoded payload in the register table and dispatches the callback.
func (d *Device) readStatus(slot int, cb StatusCallback) {
	r := &d.table[slot]
	resp := d.hw.Transact(regs.EncodeRead(r.Addr))
	r.Data = regs.DecodeResponse(resp)
	d.trace("status:read",
		slog.String("reg", r.Addr.String()),
		slog.Uint64("data", uint64(r.Data)),
		slog.Bool("fault", regs.ResponseFault(resp)),
	)
	if cb != nil {
		cb(d, r.Data)
	}
}

// writeControl issues one write transaction carrying payload for the
// register in slot. The chip's echoed payload overwrites the table entry:
// what the chip reports is the source of truth for confirmation checking.
func (d *Device) writeControl(slot int, payload uint16, cb ControlCallback) uint16 {
	r := &d.table[slot]
	resp := d.hw.Transact(regs.EncodeWrite(r.Addr, payload))
	r.Data = regs.DecodeResponse(resp)
	d.trace("control:write",
		slog.String("reg", r.Addr.String()),
		slog.Uint64("sent", uint64(payload)),
		slog.Uint64("echo", uint64(r.Data)),
	)
	if cb != nil {
		cb(d, r.Data)
	}
	return r.Data
}

// noteVerified records the confirmation result of the control register in
// table slot regs.NumStatus+idx.
func (d *Device) noteVerified(idx int, ok bool) {
	d.verified[idx] = ok
	if !ok {
		d.warn("control:unconfirmed",
			slog.String("reg", d.table[regs.NumStatus+idx].Addr.String()),
			slog.Uint64("echo", uint64(d.table[regs.NumStatus+idx].Data)),
		)
	}
}

// scheduleMain parks the main machine in its delay state; it releases into
// next once delayTicks ticks have elapsed from now.
func (d *Device) scheduleMain(next mainState, delayTicks uint32) {
	d.timing.cycle.Store(0)
	d.timing.delay = delayTicks
	d.mstate.main = stateDelay
	d.mstate.nextMain = next
}

func (d *Device) scheduleStatus(next statusState, delayTicks uint32) {
	d.timing.cycle.Store(0)
	d.timing.delay = delayTicks
	d.mstate.status = statusDelay
	d.mstate.nextStatus = next
}

func (d *Device) scheduleControl(next controlState, delayTicks uint32) {
	d.timing.cycle.Store(0)
	d.timing.delay = delayTicks
	d.mstate.control = controlDelay
	d.mstate.nextControl = next
}
