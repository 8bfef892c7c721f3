package regs

// SPI word layout, MSB first:
//
//	Write command:  bit15=0, bits14:11=address, bits10:0=data.
//	Read command:   bit15=1, bits14:11=address, bits10:0=reserved (0).
//	Response:       bit15=fault flag, bits14:11=address echo, bits10:0=data.
const (
	// DataMask selects the 11-bit data payload of any SPI word.
	DataMask  uint16 = 0x7FF
	addrMask  uint16 = 0xF
	addrShift        = 11
	readBit   uint16 = 1 << 15
)

// EncodeWrite packs a write command word for register a carrying data.
// Bit 15 is left clear which signals a write to the chip.
func EncodeWrite(a Addr, data uint16) uint16 {
	return (uint16(a)&addrMask)<<addrShift | data&DataMask
}

// EncodeRead packs a read command word for register a.
func EncodeRead(a Addr) uint16 {
	return readBit | (uint16(a)&addrMask)<<addrShift
}

// DecodeResponse extracts the 11-bit data payload from a response word.
// The fault flag and address echo are left to the caller, see
// [ResponseFault] and [ResponseAddr].
func DecodeResponse(w uint16) uint16 {
	return w & DataMask
}

// ResponseFault reports whether the fault flag (bit 15) is set in a
// response word. The chip sets it whenever any fault is active.
func ResponseFault(w uint16) bool {
	return w&readBit != 0
}

// ResponseAddr extracts the address echo (bits 14:11) of a response word.
func ResponseAddr(w uint16) Addr {
	return Addr(w >> addrShift & addrMask)
}
