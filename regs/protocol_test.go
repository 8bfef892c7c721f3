package regs

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, addr := range Addrs {
		for data := uint16(0); data <= DataMask; data++ {
			w := EncodeWrite(addr, data)
			if w&(1<<15) != 0 {
				t.Fatalf("EncodeWrite(%#x, %#x) has bit 15 set", addr, data)
			}
			if got := DecodeResponse(w); got != data {
				t.Fatalf("DecodeResponse(EncodeWrite(%#x, %#x)) = %#x", addr, data, got)
			}
			if got := ResponseAddr(w); got != addr {
				t.Fatalf("address field of EncodeWrite(%#x, %#x) = %#x", addr, data, got)
			}
		}
		r := EncodeRead(addr)
		if r&(1<<15) == 0 {
			t.Errorf("EncodeRead(%#x) has bit 15 clear", addr)
		}
		if got := DecodeResponse(r); got != 0 {
			t.Errorf("EncodeRead(%#x) has nonzero reserved bits: %#x", addr, got)
		}
		if got := ResponseAddr(r); got != addr {
			t.Errorf("address field of EncodeRead(%#x) = %#x", addr, got)
		}
	}
}

func TestEncodeDatasheetExample(t *testing.T) {
	// Writing 0x344 to the HS gate drive register.
	if got := EncodeWrite(AddrHSGate, 0x344); got != 0x2B44 {
		t.Errorf("EncodeWrite(0x5, 0x344) = %#x, want 0x2b44", got)
	}
	if got := DecodeResponse(0x2B44); got != 0x344 {
		t.Errorf("DecodeResponse(0x2b44) = %#x, want 0x344", got)
	}
}

func TestResponseFault(t *testing.T) {
	if ResponseFault(0x2B44) {
		t.Error("fault flag reported on clear bit 15")
	}
	if !ResponseFault(0x8000 | 0x2B44) {
		t.Error("fault flag not reported on set bit 15")
	}
}

func TestAddrTable(t *testing.T) {
	for i, addr := range Addrs {
		if !addr.IsValid() {
			t.Errorf("Addrs[%d]=%#x not valid", i, addr)
		}
		if got := addr.Slot(); got != i {
			t.Errorf("Addr(%#x).Slot() = %d, want %d", addr, got, i)
		}
		if got := addr.IsControl(); got != (i >= NumStatus) {
			t.Errorf("Addr(%#x).IsControl() = %v", addr, got)
		}
		if addr.String() == "unknown" {
			t.Errorf("Addr(%#x) has no name", addr)
		}
	}
	for _, bad := range []Addr{0x0, 0x8, 0xD, 0xF} {
		if bad.IsValid() {
			t.Errorf("Addr(%#x) reported valid", bad)
		}
		if got := bad.Slot(); got != -1 {
			t.Errorf("Addr(%#x).Slot() = %d, want -1", bad, got)
		}
	}
}
