package regs

import "testing"

func TestDefaultConfigurationPack(t *testing.T) {
	cfg := DefaultConfiguration()
	tests := []struct {
		addr Addr
		got  uint16
		want uint16
	}{
		{AddrHSGate, cfg.HSGate.Pack(), 0x344},
		{AddrLSGate, cfg.LSGate.Pack(), 0x344},
		{AddrDrive, cfg.Drive.Pack(), 0x216},
		{AddrICOperation, cfg.ICOperation.Pack(), 0x022}, // Watchdog 20ms + CLR_FLTS.
		{AddrShuntAmp, cfg.ShuntAmplifier.Pack(), 0x000},
		{AddrVReg, cfg.VoltageRegulator.Pack(), 0x10A},
		{AddrVDSSense, cfg.VDSSense.Pack(), 0x0C8},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("default %s packs to %#03x, want %#03x", test.addr.String(), test.got, test.want)
		}
	}
}

// Unpacking any 11-bit payload and packing it back must reproduce the bits
// the register defines and only those.
func TestPackUnpackRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mask uint16 // Bits the register defines.
		trip func(w uint16) uint16
	}{
		{"gate-drive", 0x3FF, func(w uint16) uint16 { return UnpackGateDrive(w).Pack() }},
		{"drive-control", 0x7FF, func(w uint16) uint16 { return UnpackDriveControl(w).Pack() }},
		{"ic-operation", 0x7FF, func(w uint16) uint16 { return UnpackICOperation(w).Pack() }},
		{"shunt-amp", 0x7FF, func(w uint16) uint16 { return UnpackShuntAmplifier(w).Pack() }},
		{"vreg", 0x31F, func(w uint16) uint16 { return UnpackVoltageRegulator(w).Pack() }},
		{"vds-sense", 0x0FF, func(w uint16) uint16 { return UnpackVDSSense(w).Pack() }},
	}
	for _, test := range tests {
		for w := uint16(0); w <= DataMask; w++ {
			if got := test.trip(w); got != w&test.mask {
				t.Fatalf("%s: unpack+pack of %#03x = %#03x, want %#03x", test.name, w, got, w&test.mask)
			}
		}
	}
}

func TestGateDriveMatchesEcho(t *testing.T) {
	g := GateDrive{TDrive: TDrive880ns, Sink: Sink250mA, Source: Source125mA}
	if !g.MatchesEcho(g.Pack()) {
		t.Error("echo of own packing does not match")
	}
	if g.MatchesEcho(g.Pack() ^ 1<<4) {
		t.Error("corrupted sink field matched")
	}
}

func TestICOperationMatchesEchoSkipsClearFaults(t *testing.T) {
	c := ICOperation{WatchdogDelay: Watchdog50ms, WatchdogEnable: true, ClearFaults: true}
	// The chip executes the fault clear and echoes the bit as zero.
	echo := c.Pack() &^ SelfClearingMask(AddrICOperation)
	if !c.MatchesEcho(echo) {
		t.Error("echo with self-cleared CLR_FLTS did not match")
	}
	if !c.MatchesEcho(c.Pack()) {
		t.Error("echo with CLR_FLTS still set did not match")
	}
	if c.MatchesEcho(echo ^ 1<<5) {
		t.Error("corrupted watchdog delay matched")
	}
	if c.MatchesEcho(echo ^ 1<<3) {
		t.Error("corrupted watchdog enable matched")
	}
}

func TestSelfClearingMask(t *testing.T) {
	for _, addr := range Addrs {
		want := uint16(0)
		if addr == AddrICOperation {
			want = 1 << 1
		}
		if got := SelfClearingMask(addr); got != want {
			t.Errorf("SelfClearingMask(%s) = %#x, want %#x", addr.String(), got, want)
		}
	}
}
