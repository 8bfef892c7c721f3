package drv8305

import (
	"testing"

	"github.com/soypat/drv8305/regs"
)

// testHW records pin operations and SPI words and answers transactions like
// a well behaved chip: control writes echo the written payload (with the
// self-clearing fault-clear bit executed), status reads answer zero.
type testHW struct {
	pins    []string
	words   []uint16
	respond func(w uint16) uint16
}

func (h *testHW) EnableGate()  { h.pins = append(h.pins, "enable") }
func (h *testHW) DisableGate() { h.pins = append(h.pins, "disable") }
func (h *testHW) Wake()        { h.pins = append(h.pins, "wake") }
func (h *testHW) Sleep()       { h.pins = append(h.pins, "sleep") }

func (h *testHW) Transact(w uint16) uint16 {
	h.words = append(h.words, w)
	if h.respond != nil {
		return h.respond(w)
	}
	return echoRespond(w)
}

func echoRespond(w uint16) uint16 {
	addr := regs.ResponseAddr(w)
	if w&(1<<15) != 0 {
		return uint16(addr) << 11
	}
	data := regs.DecodeResponse(w) &^ regs.SelfClearingMask(addr)
	return uint16(addr)<<11 | data
}

// faultHW additionally exposes the nFAULT pin.
type faultHW struct {
	testHW
	fault bool
}

func (h *faultHW) FaultPin() bool { return h.fault }

// newTestDevice returns an initialized device over hw with delays of a
// single tick and a 4 tick poll interval so tests can step the machines
// with few iterations.
func newTestDevice(t *testing.T, hw Hardware, cfg Config) *Device {
	t.Helper()
	cfg.RegisterSwitchDelay = 1
	cfg.StatusReadDelay = 1
	cfg.StatusPollInterval = 4
	d := New(hw)
	if err := d.Init(cfg); err != nil {
		t.Fatal("init:", err)
	}
	return d
}

// run advances the timer and the machines in lockstep for n iterations.
func run(d *Device, n int) {
	for i := 0; i < n; i++ {
		d.Tick()
		d.Poll()
	}
}

// splitWords separates the transacted words into write and read address
// sequences, preserving order within each.
func splitWords(words []uint16) (writes, reads []regs.Addr) {
	for _, w := range words {
		if w&(1<<15) == 0 {
			writes = append(writes, regs.ResponseAddr(w))
		} else {
			reads = append(reads, regs.ResponseAddr(w))
		}
	}
	return writes, reads
}

var controlOrder = []regs.Addr{
	regs.AddrHSGate, regs.AddrLSGate, regs.AddrDrive, regs.AddrICOperation,
	regs.AddrShuntAmp, regs.AddrVReg, regs.AddrVDSSense,
}

var statusOrder = []regs.Addr{
	regs.AddrWarning, regs.AddrOVVDS, regs.AddrICFaults, regs.AddrVGSFaults,
}

func TestInitProgramsThenPolls(t *testing.T) {
	hw := &testHW{}
	d := newTestDevice(t, hw, Config{})

	// Init wakes the chip with the power path off; the first Poll pass then
	// enables the gate before programming.
	wantPins := []string{"wake", "disable", "enable", "wake"}
	run(d, 40)
	if len(hw.pins) < len(wantPins) {
		t.Fatalf("pin log too short: %v", hw.pins)
	}
	for i, p := range wantPins {
		if hw.pins[i] != p {
			t.Errorf("pin op %d = %q, want %q", i, hw.pins[i], p)
		}
	}

	writes, reads := splitWords(hw.words)
	if len(writes) != len(controlOrder) {
		t.Fatalf("got %d control writes, want %d: %v", len(writes), len(controlOrder), writes)
	}
	for i, addr := range controlOrder {
		if writes[i] != addr {
			t.Errorf("write %d went to %s, want %s", i, writes[i].String(), addr.String())
		}
	}
	// Two full status cycles fit in 40 iterations, each visiting every
	// status register once in address order.
	if len(reads) != 2*len(statusOrder) {
		t.Fatalf("got %d status reads, want %d: %v", len(reads), 2*len(statusOrder), reads)
	}
	for i, addr := range reads {
		if want := statusOrder[i%len(statusOrder)]; addr != want {
			t.Errorf("read %d went to %s, want %s", i, addr.String(), want.String())
		}
	}

	// Every echo matched, including the fault-clear register whose CLR_FLTS
	// bit the chip executes and echoes back as zero.
	if !d.ConfigurationConfirmed() {
		t.Error("configuration not confirmed after programming pass")
	}
	if !d.RegisterConfirmed(regs.AddrICOperation) {
		t.Error("self-cleared CLR_FLTS echo counted as a mismatch")
	}
}

func TestStatusCallbackOrderAndPayload(t *testing.T) {
	payloads := map[regs.Addr]uint16{
		regs.AddrWarning:   uint16(regs.WarnOTW | regs.WarnFault),
		regs.AddrOVVDS:     uint16(regs.VDSHA),
		regs.AddrICFaults:  uint16(regs.ICPVDDUVLO2),
		regs.AddrVGSFaults: uint16(regs.VGSLC),
	}
	hw := &testHW{respond: func(w uint16) uint16 {
		if w&(1<<15) == 0 {
			return echoRespond(w)
		}
		addr := regs.ResponseAddr(w)
		return uint16(addr)<<11 | payloads[addr]
	}}
	var got []Register
	record := func(addr regs.Addr) StatusCallback {
		return func(d *Device, data uint16) {
			got = append(got, Register{Addr: addr, Data: data})
		}
	}
	d := newTestDevice(t, hw, Config{StatusCallbacks: StatusCallbacks{
		Warning:   record(regs.AddrWarning),
		OVVDS:     record(regs.AddrOVVDS),
		ICFaults:  record(regs.AddrICFaults),
		VGSFaults: record(regs.AddrVGSFaults),
	}})
	run(d, 28) // One programming pass plus one full status cycle.
	if len(got) != len(statusOrder) {
		t.Fatalf("got %d callbacks, want %d", len(got), len(statusOrder))
	}
	for i, addr := range statusOrder {
		if got[i].Addr != addr {
			t.Errorf("callback %d for %s, want %s", i, got[i].Addr.String(), addr.String())
		}
		if got[i].Data != payloads[addr] {
			t.Errorf("callback %d payload %#03x, want %#03x", i, got[i].Data, payloads[addr])
		}
	}

	table := d.RegisterSnapshot()
	for addr, want := range payloads {
		if got := table[addr.Slot()].Data; got != want {
			t.Errorf("snapshot of %s is %#03x, want %#03x", addr.String(), got, want)
		}
	}
}

func TestConfirmMidPassFinishesThenRepeats(t *testing.T) {
	hw := &testHW{}
	d := newTestDevice(t, hw, Config{})

	run(d, 7) // Init plus the first 3 control writes.
	if writes, _ := splitWords(hw.words); len(writes) != 3 {
		t.Fatalf("setup: got %d writes, want 3", len(writes))
	}

	cfg := d.Configuration()
	cfg.HSGate = regs.GateDrive{TDrive: regs.TDrive440ns, Sink: regs.Sink500mA, Source: regs.Source250mA}
	d.SetConfiguration(cfg)
	if err := d.ConfirmConfiguration(); err != nil {
		t.Fatal("confirm:", err)
	}

	// The in-flight pass finishes its remaining 4 registers in order, then
	// a fresh full pass reprograms all 7 with the new snapshot.
	run(d, 30)
	writes, _ := splitWords(hw.words)
	if len(writes) != 2*len(controlOrder) {
		t.Fatalf("got %d writes, want %d: %v", len(writes), 2*len(controlOrder), writes)
	}
	for i, addr := range writes {
		if want := controlOrder[i%len(controlOrder)]; addr != want {
			t.Errorf("write %d went to %s, want %s", i, addr.String(), want.String())
		}
	}
	// The second pass's HS gate write carries the new payload.
	hsWrite := hw.words[len(controlOrder)]
	if got := regs.DecodeResponse(hsWrite); got != cfg.HSGate.Pack() {
		t.Errorf("repass HS gate payload %#03x, want %#03x", got, cfg.HSGate.Pack())
	}
	if !d.ConfigurationConfirmed() {
		t.Error("configuration not confirmed after repass")
	}
}

func TestConfirmFromIdle(t *testing.T) {
	hw := &testHW{}
	d := newTestDevice(t, hw, Config{})
	run(d, 16) // Through the initial programming pass, into idle.

	cfg := d.Configuration()
	cfg.VDSSense.Level = regs.VDS403mV
	d.SetConfiguration(cfg)
	if err := d.ConfirmConfiguration(); err != nil {
		t.Fatal("confirm:", err)
	}
	run(d, 20)
	writes, _ := splitWords(hw.words)
	if len(writes) != 2*len(controlOrder) {
		t.Fatalf("got %d writes, want %d: %v", len(writes), 2*len(controlOrder), writes)
	}
	var last uint16
	for _, w := range hw.words {
		if w&(1<<15) == 0 {
			last = w
		}
	}
	if regs.ResponseAddr(last) != regs.AddrVDSSense || regs.DecodeResponse(last) != cfg.VDSSense.Pack() {
		t.Errorf("final write %#04x does not carry the new VDS sense payload %#03x", last, cfg.VDSSense.Pack())
	}
	if d.Configuration().VDSSense.Level != regs.VDS403mV {
		t.Error("configuration accessor lost the update")
	}
}

func TestCorruptedEchoLeavesRegisterUnconfirmed(t *testing.T) {
	hw := &testHW{respond: func(w uint16) uint16 {
		if w&(1<<15) == 0 && regs.ResponseAddr(w) == regs.AddrVReg {
			return echoRespond(w) ^ 1 // Flip a payload bit in the echo.
		}
		return echoRespond(w)
	}}
	d := newTestDevice(t, hw, Config{})
	run(d, 16)
	if d.ConfigurationConfirmed() {
		t.Error("configuration confirmed despite corrupted echo")
	}
	if d.RegisterConfirmed(regs.AddrVReg) {
		t.Error("corrupted register reported confirmed")
	}
	if !d.RegisterConfirmed(regs.AddrHSGate) {
		t.Error("healthy register not confirmed")
	}
	if d.RegisterConfirmed(regs.AddrWarning) {
		t.Error("status register reported as confirmed control register")
	}
}

func TestSleepAndWakeSchedule(t *testing.T) {
	hw := &testHW{}
	d := newTestDevice(t, hw, Config{})
	run(d, 16)

	if err := d.SleepMode(); err != nil {
		t.Fatal("sleep:", err)
	}
	run(d, 3)
	if hw.pins[len(hw.pins)-1] != "sleep" {
		t.Fatalf("pin log after SleepMode: %v", hw.pins)
	}
	if err := d.WakeUp(); err != nil {
		t.Fatal("wake:", err)
	}
	run(d, 3)
	if hw.pins[len(hw.pins)-1] != "wake" {
		t.Fatalf("pin log after WakeUp: %v", hw.pins)
	}
}

func TestUninitialized(t *testing.T) {
	d := New(&testHW{})
	if err := d.EnableGate(); err == nil {
		t.Error("EnableGate on uninitialized device did not error")
	}
	if err := d.ConfirmConfiguration(); err == nil {
		t.Error("ConfirmConfiguration on uninitialized device did not error")
	}
	d.Tick()
	d.Poll() // Must be a no-op, not a crash.

	d = New(nil)
	if err := d.Init(Config{}); err == nil {
		t.Error("Init with nil hardware did not error")
	}
}

func TestFaultPin(t *testing.T) {
	hw := &faultHW{}
	d := newTestDevice(t, hw, Config{})
	if d.FaultPinActive() {
		t.Error("fault reported while pin inactive")
	}
	hw.fault = true
	if !d.FaultPinActive() {
		t.Error("fault not reported while pin active")
	}
	d = newTestDevice(t, &testHW{}, Config{})
	if d.FaultPinActive() {
		t.Error("fault reported without a fault pin")
	}
}
