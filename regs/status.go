package regs

import "strings"

// Status register payloads as typed bitfields. Each type covers the 11 data
// bits of one read-only register. Reserved bits read as zero.

// Warning is the payload of register 0x1. Reading the register also resets
// the chip's watchdog timer.
type Warning uint16

const (
	WarnOTW       Warning = 1 << 0  // Overtemperature warning.
	WarnTemp135C  Warning = 1 << 1  // Junction above ~135C.
	WarnTemp125C  Warning = 1 << 2  // Junction above ~125C.
	WarnTemp105C  Warning = 1 << 3  // Junction above ~105C.
	WarnVCPHUV    Warning = 1 << 4  // Charge pump undervoltage.
	WarnVDS       Warning = 1 << 5  // OR of all VDS overcurrent monitors.
	WarnPVDDOV    Warning = 1 << 6  // PVDD overvoltage.
	WarnPVDDUV    Warning = 1 << 7  // PVDD undervoltage.
	WarnTemp175C  Warning = 1 << 8  // Junction above ~175C.
	WarnFault     Warning = 1 << 10 // Global fault indication.
	warnMaskKnown         = WarnOTW | WarnTemp135C | WarnTemp125C | WarnTemp105C | WarnVCPHUV | WarnVDS | WarnPVDDOV | WarnPVDDUV | WarnTemp175C | WarnFault
)

func (w Warning) String() string {
	return flagString(uint16(w), uint16(warnMaskKnown), [11]string{
		"otw", "temp>135C", "temp>125C", "temp>105C", "vcph-uv", "vds",
		"pvdd-ov", "pvdd-uv", "temp>175C", "", "fault",
	})
}

// OVVDSFault is the payload of register 0x2: shunt overcurrent protection
// and per-MOSFET VDS overcurrent faults.
type OVVDSFault uint16

const (
	VDSSnsAOCP OVVDSFault = 1 << 0 // Sense amplifier A overcurrent.
	VDSSnsBOCP OVVDSFault = 1 << 1
	VDSSnsCOCP OVVDSFault = 1 << 2
	VDSLC      OVVDSFault = 1 << 5 // Low-side MOSFET C.
	VDSHC      OVVDSFault = 1 << 6
	VDSLB      OVVDSFault = 1 << 7
	VDSHB      OVVDSFault = 1 << 8
	VDSLA      OVVDSFault = 1 << 9
	VDSHA      OVVDSFault = 1 << 10 // High-side MOSFET A.

	ovvdsMaskKnown = VDSSnsAOCP | VDSSnsBOCP | VDSSnsCOCP | VDSLC | VDSHC | VDSLB | VDSHB | VDSLA | VDSHA
)

func (f OVVDSFault) String() string {
	return flagString(uint16(f), uint16(ovvdsMaskKnown), [11]string{
		"sns-a-ocp", "sns-b-ocp", "sns-c-ocp", "", "",
		"vds-lc", "vds-hc", "vds-lb", "vds-hb", "vds-la", "vds-ha",
	})
}

// ICFault is the payload of register 0x3: supply, thermal and watchdog
// faults internal to the chip.
type ICFault uint16

const (
	ICVCPHOVAbs  ICFault = 1 << 0 // Charge pump absolute overvoltage.
	ICVCPHOV     ICFault = 1 << 1 // Charge pump overvoltage relative to PVDD.
	ICVCPHUV2    ICFault = 1 << 2 // Charge pump undervoltage 2.
	ICVCPLSDUV2  ICFault = 1 << 4 // Low-side gate supply undervoltage.
	ICAVDDUV     ICFault = 1 << 5
	ICVREGUV     ICFault = 1 << 6
	ICOTSD       ICFault = 1 << 8 // Overtemperature shutdown.
	ICWatchdog   ICFault = 1 << 9
	ICPVDDUVLO2  ICFault = 1 << 10
	icMaskKnown          = ICVCPHOVAbs | ICVCPHOV | ICVCPHUV2 | ICVCPLSDUV2 | ICAVDDUV | ICVREGUV | ICOTSD | ICWatchdog | ICPVDDUVLO2
)

func (f ICFault) String() string {
	return flagString(uint16(f), uint16(icMaskKnown), [11]string{
		"vcph-ov-abs", "vcph-ov", "vcph-uv2", "", "vcp-lsd-uv2",
		"avdd-uv", "vreg-uv", "", "otsd", "watchdog", "pvdd-uvlo2",
	})
}

// VGSFault is the payload of register 0x4: per-MOSFET gate drive faults.
type VGSFault uint16

const (
	VGSLC VGSFault = 1 << 5 // Low-side MOSFET C.
	VGSHC VGSFault = 1 << 6
	VGSLB VGSFault = 1 << 7
	VGSHB VGSFault = 1 << 8
	VGSLA VGSFault = 1 << 9
	VGSHA VGSFault = 1 << 10 // High-side MOSFET A.

	vgsMaskKnown = VGSLC | VGSHC | VGSLB | VGSHB | VGSLA | VGSHA
)

func (f VGSFault) String() string {
	return flagString(uint16(f), uint16(vgsMaskKnown), [11]string{
		"", "", "", "", "",
		"vgs-lc", "vgs-hc", "vgs-lb", "vgs-hb", "vgs-la", "vgs-ha",
	})
}

func flagString(v, known uint16, names [11]string) string {
	if v&known == 0 {
		return "none"
	}
	var b strings.Builder
	for i := 0; i < len(names); i++ {
		if v&known&(1<<i) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(names[i])
	}
	return b.String()
}
