package regs

// Control register field values follow the DRV8305-Q1 datasheet tables 14
// through 20. Enum constants carry the documented code points only; mapping
// physical quantities to codes is the caller's business.

// TDrive is the peak gate current drive time (registers 0x5/0x6, bits 9:8).
type TDrive uint8

const (
	TDrive220ns  TDrive = 0x0
	TDrive440ns  TDrive = 0x1
	TDrive880ns  TDrive = 0x2
	TDrive1780ns TDrive = 0x3 // Reset value.
)

// IDriveSink is the peak gate sink current (registers 0x5/0x6, bits 7:4).
// Codes 0xC..0xF behave as Sink60mA.
type IDriveSink uint8

const (
	Sink20mA   IDriveSink = 0x0
	Sink30mA   IDriveSink = 0x1
	Sink40mA   IDriveSink = 0x2
	Sink50mA   IDriveSink = 0x3
	Sink60mA   IDriveSink = 0x4 // Reset value.
	Sink70mA   IDriveSink = 0x5
	Sink80mA   IDriveSink = 0x6
	Sink250mA  IDriveSink = 0x7
	Sink500mA  IDriveSink = 0x8
	Sink750mA  IDriveSink = 0x9
	Sink1000mA IDriveSink = 0xA
	Sink1250mA IDriveSink = 0xB
)

// IDriveSource is the peak gate source current (registers 0x5/0x6, bits 3:0).
// Codes 0xC..0xF behave as Source50mA.
type IDriveSource uint8

const (
	Source10mA   IDriveSource = 0x0
	Source20mA   IDriveSource = 0x1
	Source30mA   IDriveSource = 0x2
	Source40mA   IDriveSource = 0x3
	Source50mA   IDriveSource = 0x4 // Reset value.
	Source60mA   IDriveSource = 0x5
	Source70mA   IDriveSource = 0x6
	Source125mA  IDriveSource = 0x7
	Source250mA  IDriveSource = 0x8
	Source500mA  IDriveSource = 0x9
	Source750mA  IDriveSource = 0xA
	Source1000mA IDriveSource = 0xB
)

// VCPHFreq selects the charge pump switching frequency (register 0x7, bit 10).
type VCPHFreq uint8

const (
	VCPH518kHz VCPHFreq = 0x0 // Center 518 kHz, spread 438-633 kHz. Reset value.
	VCPH452kHz VCPHFreq = 0x1 // Center 452 kHz, spread 419-491 kHz.
)

// Freewheeling selects the rectification mode in 1-PWM mode (register 0x7, bit 9).
type Freewheeling uint8

const (
	FreewheelDiode  Freewheeling = 0x0
	FreewheelActive Freewheeling = 0x1 // Reset value.
)

// PWMMode selects the PWM input pin mode (register 0x7, bits 8:7).
// Code 0x3 is reserved and behaves as 6-input mode.
type PWMMode uint8

const (
	PWM6Inputs PWMMode = 0x0 // Reset value.
	PWM3Inputs PWMMode = 0x1
	PWM1Input  PWMMode = 0x2
)

func (m PWMMode) String() (s string) {
	switch m {
	case PWM6Inputs:
		s = "6-pwm"
	case PWM3Inputs:
		s = "3-pwm"
	case PWM1Input:
		s = "1-pwm"
	default:
		s = "reserved"
	}
	return s
}

// DeadTime is added to the minimum 280ns handshake time (register 0x7, bits 6:4).
type DeadTime uint8

const (
	DeadTime35ns   DeadTime = 0x0
	DeadTime52ns   DeadTime = 0x1 // Reset value.
	DeadTime88ns   DeadTime = 0x2
	DeadTime440ns  DeadTime = 0x3
	DeadTime880ns  DeadTime = 0x4
	DeadTime1760ns DeadTime = 0x5
	DeadTime3520ns DeadTime = 0x6
	DeadTime5280ns DeadTime = 0x7
)

// TBlank is the VDS sense blanking time after gate turn-on (register 0x7, bits 3:2).
type TBlank uint8

const (
	TBlank0us    TBlank = 0x0
	TBlank1750ns TBlank = 0x1 // Reset value.
	TBlank3500ns TBlank = 0x2
	TBlank7us    TBlank = 0x3
)

// TVDS is the VDS sense deglitch time (register 0x7, bits 1:0).
type TVDS uint8

const (
	TVDS0us    TVDS = 0x0
	TVDS1750ns TVDS = 0x1
	TVDS3500ns TVDS = 0x2 // Reset value.
	TVDS7us    TVDS = 0x3
)

// WatchdogDelay is the SPI watchdog interval (register 0x9, bits 6:5).
type WatchdogDelay uint8

const (
	Watchdog10ms  WatchdogDelay = 0x0
	Watchdog20ms  WatchdogDelay = 0x1 // Reset value.
	Watchdog50ms  WatchdogDelay = 0x2
	Watchdog100ms WatchdogDelay = 0x3
)

// CSBlank is the current sense blanking time (register 0xA, bits 7:6).
type CSBlank uint8

const (
	CSBlank0ns    CSBlank = 0x0 // Reset value.
	CSBlank500ns  CSBlank = 0x1
	CSBlank2500ns CSBlank = 0x2
	CSBlank10us   CSBlank = 0x3
)

// Gain is the shunt amplifier gain of one channel (register 0xA).
type Gain uint8

const (
	Gain10 Gain = 0x0 // 10 V/V. Reset value.
	Gain20 Gain = 0x1 // 20 V/V.
	Gain40 Gain = 0x2 // 40 V/V.
	Gain80 Gain = 0x3 // 80 V/V.
)

// VRefScale is the VREF scaling divisor k (register 0xB, bits 9:8).
// VREF output equals the internal reference divided by k.
type VRefScale uint8

const (
	VRefScaleReserved VRefScale = 0x0
	VRefScaleDiv2     VRefScale = 0x1 // Reset value.
	VRefScaleDiv4     VRefScale = 0x2
	VRefScaleDiv8     VRefScale = 0x3
)

// SleepDelay is the VREG power-down delay after a sleep command
// (register 0xB, bits 4:3).
type SleepDelay uint8

const (
	SleepDelay0us  SleepDelay = 0x0
	SleepDelay10us SleepDelay = 0x1 // Reset value.
	SleepDelay50us SleepDelay = 0x2
	SleepDelay1ms  SleepDelay = 0x3
)

// VRegUVLevel is the VREG undervoltage threshold as a fraction of VREG
// (register 0xB, bits 1:0). Code 0x3 behaves as UV70pct.
type VRegUVLevel uint8

const (
	UV90pct VRegUVLevel = 0x0
	UV80pct VRegUVLevel = 0x1
	UV70pct VRegUVLevel = 0x2 // Reset value.
)

// VDSLevel is the VDS overcurrent comparator threshold (register 0xC, bits 7:3).
// Code 0x1F behaves as VDS2131mV.
type VDSLevel uint8

const (
	VDS60mV   VDSLevel = 0x00
	VDS68mV   VDSLevel = 0x01
	VDS76mV   VDSLevel = 0x02
	VDS86mV   VDSLevel = 0x03
	VDS97mV   VDSLevel = 0x04
	VDS109mV  VDSLevel = 0x05
	VDS123mV  VDSLevel = 0x06
	VDS138mV  VDSLevel = 0x07
	VDS155mV  VDSLevel = 0x08
	VDS175mV  VDSLevel = 0x09
	VDS197mV  VDSLevel = 0x0A
	VDS222mV  VDSLevel = 0x0B
	VDS250mV  VDSLevel = 0x0C
	VDS282mV  VDSLevel = 0x0D
	VDS317mV  VDSLevel = 0x0E
	VDS358mV  VDSLevel = 0x0F
	VDS403mV  VDSLevel = 0x10
	VDS454mV  VDSLevel = 0x11
	VDS511mV  VDSLevel = 0x12
	VDS576mV  VDSLevel = 0x13
	VDS648mV  VDSLevel = 0x14
	VDS730mV  VDSLevel = 0x15
	VDS822mV  VDSLevel = 0x16
	VDS926mV  VDSLevel = 0x17
	VDS1043mV VDSLevel = 0x18
	VDS1175mV VDSLevel = 0x19 // Reset value.
	VDS1324mV VDSLevel = 0x1A
	VDS1491mV VDSLevel = 0x1B
	VDS1679mV VDSLevel = 0x1C
	VDS1892mV VDSLevel = 0x1D
	VDS2131mV VDSLevel = 0x1E
)

// VDSMode selects the response to a VDS overcurrent event (register 0xC, bits 2:0).
// Codes 0x3..0x7 are reserved.
type VDSMode uint8

const (
	VDSLatchShutdown VDSMode = 0x0 // Reset value.
	VDSReportOnly    VDSMode = 0x1
	VDSDisabled      VDSMode = 0x2
)

func (m VDSMode) String() (s string) {
	switch m {
	case VDSLatchShutdown:
		s = "latch-shutdown"
	case VDSReportOnly:
		s = "report-only"
	case VDSDisabled:
		s = "disabled"
	default:
		s = "reserved"
	}
	return s
}

// GateDrive configures one gate drive stage, high side (register 0x5) or
// low side (register 0x6). Both registers share the same layout.
type GateDrive struct {
	TDrive TDrive       // Bits 9:8.
	Sink   IDriveSink   // Bits 7:4.
	Source IDriveSource // Bits 3:0.
}

func (g GateDrive) Pack() uint16 {
	return uint16(g.TDrive&0x3)<<8 |
		uint16(g.Sink&0xF)<<4 |
		uint16(g.Source&0xF)
}

func UnpackGateDrive(w uint16) GateDrive {
	return GateDrive{
		TDrive: TDrive(w >> 8 & 0x3),
		Sink:   IDriveSink(w >> 4 & 0xF),
		Source: IDriveSource(w & 0xF),
	}
}

// MatchesEcho reports whether the payload a write of g was answered with
// agrees with g on every field.
func (g GateDrive) MatchesEcho(echo uint16) bool {
	return UnpackGateDrive(echo) == UnpackGateDrive(g.Pack())
}

// DriveControl configures register 0x7: charge pump, rectification,
// PWM input mode, dead time and VDS sense timing.
type DriveControl struct {
	ChargePumpFreq VCPHFreq     // Bit 10.
	Freewheel      Freewheeling // Bit 9.
	PWMMode        PWMMode      // Bits 8:7.
	DeadTime       DeadTime     // Bits 6:4.
	TBlank         TBlank       // Bits 3:2.
	TVDS           TVDS         // Bits 1:0.
}

func (c DriveControl) Pack() uint16 {
	return uint16(c.ChargePumpFreq&0x1)<<10 |
		uint16(c.Freewheel&0x1)<<9 |
		uint16(c.PWMMode&0x3)<<7 |
		uint16(c.DeadTime&0x7)<<4 |
		uint16(c.TBlank&0x3)<<2 |
		uint16(c.TVDS&0x3)
}

func UnpackDriveControl(w uint16) DriveControl {
	return DriveControl{
		ChargePumpFreq: VCPHFreq(w >> 10 & 0x1),
		Freewheel:      Freewheeling(w >> 9 & 0x1),
		PWMMode:        PWMMode(w >> 7 & 0x3),
		DeadTime:       DeadTime(w >> 4 & 0x7),
		TBlank:         TBlank(w >> 2 & 0x3),
		TVDS:           TVDS(w & 0x3),
	}
}

func (c DriveControl) MatchesEcho(echo uint16) bool {
	return UnpackDriveControl(echo) == UnpackDriveControl(c.Pack())
}

// ICOperation configures register 0x9: watchdog, undervoltage lockouts,
// fault masking, sleep and fault clearing.
type ICOperation struct {
	FlipOTSD         bool          // Bit 10. Disables OTSD on xE variants.
	DisablePVDDUVLO2 bool          // Bit 9.
	DisableGateFault bool          // Bit 8.
	EnableSenseClamp bool          // Bit 7.
	WatchdogDelay    WatchdogDelay // Bits 6:5.
	DisableSenseOCP  bool          // Bit 4.
	WatchdogEnable   bool          // Bit 3.
	Sleep            bool          // Bit 2.
	ClearFaults      bool          // Bit 1. Self-clearing, see [SelfClearingMask].
	VCPHUVThreshold  bool          // Bit 0. 0:4.9V, 1:4.6V.
}

func (c ICOperation) Pack() uint16 {
	return b2u16(c.FlipOTSD)<<10 |
		b2u16(c.DisablePVDDUVLO2)<<9 |
		b2u16(c.DisableGateFault)<<8 |
		b2u16(c.EnableSenseClamp)<<7 |
		uint16(c.WatchdogDelay&0x3)<<5 |
		b2u16(c.DisableSenseOCP)<<4 |
		b2u16(c.WatchdogEnable)<<3 |
		b2u16(c.Sleep)<<2 |
		b2u16(c.ClearFaults)<<1 |
		b2u16(c.VCPHUVThreshold)
}

func UnpackICOperation(w uint16) ICOperation {
	return ICOperation{
		FlipOTSD:         w&(1<<10) != 0,
		DisablePVDDUVLO2: w&(1<<9) != 0,
		DisableGateFault: w&(1<<8) != 0,
		EnableSenseClamp: w&(1<<7) != 0,
		WatchdogDelay:    WatchdogDelay(w >> 5 & 0x3),
		DisableSenseOCP:  w&(1<<4) != 0,
		WatchdogEnable:   w&(1<<3) != 0,
		Sleep:            w&(1<<2) != 0,
		ClearFaults:      w&(1<<1) != 0,
		VCPHUVThreshold:  w&1 != 0,
	}
}

// MatchesEcho compares the echoed payload of a write of c field by field,
// skipping the self-clearing ClearFaults bit: the chip executes the fault
// clear and reads the bit back as zero, so including it would fail the
// comparison on every cycle where a clear was requested.
func (c ICOperation) MatchesEcho(echo uint16) bool {
	want := UnpackICOperation(c.Pack())
	got := UnpackICOperation(echo)
	want.ClearFaults = false
	got.ClearFaults = false
	return want == got
}

// ShuntAmplifier configures register 0xA: per-channel DC offset calibration
// and amplifier gain plus the shared blanking time.
type ShuntAmplifier struct {
	DCCalCh3 bool    // Bit 10. Shorts amplifier 3 inputs for calibration.
	DCCalCh2 bool    // Bit 9.
	DCCalCh1 bool    // Bit 8.
	CSBlank  CSBlank // Bits 7:6.
	GainCh3  Gain    // Bits 5:4.
	GainCh2  Gain    // Bits 3:2.
	GainCh1  Gain    // Bits 1:0.
}

func (c ShuntAmplifier) Pack() uint16 {
	return b2u16(c.DCCalCh3)<<10 |
		b2u16(c.DCCalCh2)<<9 |
		b2u16(c.DCCalCh1)<<8 |
		uint16(c.CSBlank&0x3)<<6 |
		uint16(c.GainCh3&0x3)<<4 |
		uint16(c.GainCh2&0x3)<<2 |
		uint16(c.GainCh1&0x3)
}

func UnpackShuntAmplifier(w uint16) ShuntAmplifier {
	return ShuntAmplifier{
		DCCalCh3: w&(1<<10) != 0,
		DCCalCh2: w&(1<<9) != 0,
		DCCalCh1: w&(1<<8) != 0,
		CSBlank:  CSBlank(w >> 6 & 0x3),
		GainCh3:  Gain(w >> 4 & 0x3),
		GainCh2:  Gain(w >> 2 & 0x3),
		GainCh1:  Gain(w & 0x3),
	}
}

func (c ShuntAmplifier) MatchesEcho(echo uint16) bool {
	return UnpackShuntAmplifier(echo) == UnpackShuntAmplifier(c.Pack())
}

// VoltageRegulator configures register 0xB: VREF scaling, sleep delay and
// undervoltage monitoring of the internal regulator.
type VoltageRegulator struct {
	VRefScale        VRefScale   // Bits 9:8.
	SleepDelay       SleepDelay  // Bits 4:3.
	DisablePowerGood bool        // Bit 2.
	UVLevel          VRegUVLevel // Bits 1:0.
}

func (c VoltageRegulator) Pack() uint16 {
	return uint16(c.VRefScale&0x3)<<8 |
		uint16(c.SleepDelay&0x3)<<3 |
		b2u16(c.DisablePowerGood)<<2 |
		uint16(c.UVLevel&0x3)
}

func UnpackVoltageRegulator(w uint16) VoltageRegulator {
	return VoltageRegulator{
		VRefScale:        VRefScale(w >> 8 & 0x3),
		SleepDelay:       SleepDelay(w >> 3 & 0x3),
		DisablePowerGood: w&(1<<2) != 0,
		UVLevel:          VRegUVLevel(w & 0x3),
	}
}

func (c VoltageRegulator) MatchesEcho(echo uint16) bool {
	return UnpackVoltageRegulator(echo) == UnpackVoltageRegulator(c.Pack())
}

// VDSSense configures register 0xC: the VDS overcurrent threshold and the
// response mode.
type VDSSense struct {
	Level VDSLevel // Bits 7:3.
	Mode  VDSMode  // Bits 2:0.
}

func (c VDSSense) Pack() uint16 {
	return uint16(c.Level&0x1F)<<3 | uint16(c.Mode&0x7)
}

func UnpackVDSSense(w uint16) VDSSense {
	return VDSSense{
		Level: VDSLevel(w >> 3 & 0x1F),
		Mode:  VDSMode(w & 0x7),
	}
}

func (c VDSSense) MatchesEcho(echo uint16) bool {
	return UnpackVDSSense(echo) == UnpackVDSSense(c.Pack())
}

// SelfClearingMask returns the payload bits of control register a that the
// chip clears on its own after executing the written action. Echo
// verification ignores these bits. Per the datasheet only the IC operation
// register has one such field (CLR_FLTS); the DC calibration and sleep bits
// of 0xA and 0x9 read back as written.
func SelfClearingMask(a Addr) uint16 {
	if a == AddrICOperation {
		return 1 << 1 // CLR_FLTS.
	}
	return 0
}

// Configuration aggregates the settings of all 7 control registers in
// register address order.
type Configuration struct {
	HSGate           GateDrive        // 0x5
	LSGate           GateDrive        // 0x6
	Drive            DriveControl     // 0x7
	ICOperation      ICOperation      // 0x9
	ShuntAmplifier   ShuntAmplifier   // 0xA
	VoltageRegulator VoltageRegulator // 0xB
	VDSSense         VDSSense         // 0xC
}

// DefaultConfiguration returns the datasheet reset values for every control
// register with one deviation: ClearFaults is set so the first programming
// pass after power-up clears any latched power-on faults.
func DefaultConfiguration() Configuration {
	gate := GateDrive{
		TDrive: TDrive1780ns,
		Sink:   Sink60mA,
		Source: Source50mA,
	}
	return Configuration{
		HSGate: gate,
		LSGate: gate,
		Drive: DriveControl{
			ChargePumpFreq: VCPH518kHz,
			Freewheel:      FreewheelActive,
			PWMMode:        PWM6Inputs,
			DeadTime:       DeadTime52ns,
			TBlank:         TBlank1750ns,
			TVDS:           TVDS3500ns,
		},
		ICOperation: ICOperation{
			WatchdogDelay: Watchdog20ms,
			ClearFaults:   true,
		},
		ShuntAmplifier: ShuntAmplifier{
			CSBlank: CSBlank0ns,
			GainCh3: Gain10,
			GainCh2: Gain10,
			GainCh1: Gain10,
		},
		VoltageRegulator: VoltageRegulator{
			VRefScale:  VRefScaleDiv2,
			SleepDelay: SleepDelay10us,
			UVLevel:    UV70pct,
		},
		VDSSense: VDSSense{
			Level: VDS1175mV,
			Mode:  VDSLatchShutdown,
		},
	}
}

//go:inline
func b2u16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
