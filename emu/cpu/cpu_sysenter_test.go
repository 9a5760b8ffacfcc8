package cpu

import "testing"

// TestSysenterSysexitRoundTrip exercises invariant 8: SYSENTER loads
// CS/EIP/ESP from the SYSENTER MSRs and forces ring 0, SYSEXIT returns to
// ring 3 by applying the documented selector offsets to SYSENTER_CS.
func TestSysenterSysexitRoundTrip(t *testing.T) {
	mem := newFlatMem(0x10000)
	c := NewCPU(mem, newTestBus())
	c.gdtr = dtr{base: 0x1000, limit: 0xFFFF}

	// Selector 0x08: flat ring-0 code. Selector 0x10: flat ring-0 data.
	// Selector 0x18|3: flat ring-3 code. Selector 0x20|3: flat ring-3 data.
	entries := [][8]byte{
		{}, // null
		{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x9A, 0xCF, 0x00}, // 0x08 ring0 code
		{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x92, 0xCF, 0x00}, // 0x10 ring0 data
		{0xFF, 0xFF, 0x00, 0x00, 0x00, 0xFA, 0xCF, 0x00}, // 0x18 ring3 code
		{0xFF, 0xFF, 0x00, 0x00, 0x00, 0xF2, 0xCF, 0x00}, // 0x20 ring3 data
	}
	for i, e := range entries {
		if err := mem.LoadAt(0x1000+uint32(i*8), e[:]); err != nil {
			t.Fatalf("LoadAt gdt entry %d: %v", i, err)
		}
	}

	c.cr0 |= CR0PE
	c.syncMode()

	c.sysenterCS = 0x08
	c.sysenterEIP = 0x00401000
	c.sysenterESP = 0x00090000

	if err := c.execSYSENTER(); err != nil {
		t.Fatalf("execSYSENTER: %v", err)
	}
	if c.segSelector(SegCS) != 0x08 {
		t.Errorf("CS = %#x, want 0x08", c.segSelector(SegCS))
	}
	if c.segSelector(SegSS) != 0x10 {
		t.Errorf("SS = %#x, want 0x10", c.segSelector(SegSS))
	}
	if c.EIP() != 0x00401000 {
		t.Errorf("EIP = %#x, want 0x00401000", c.EIP())
	}
	if c.ESP() != 0x00090000 {
		t.Errorf("ESP = %#x, want 0x00090000", c.ESP())
	}
	if c.IF() {
		t.Error("SYSENTER must clear IF")
	}

	c.SetECX(0x00091000)
	c.setReg32(regEDX, 0x00402000)
	if err := c.execSYSEXIT(); err != nil {
		t.Fatalf("execSYSEXIT: %v", err)
	}
	if c.segSelector(SegCS) != 0x18|3 {
		t.Errorf("CS = %#x, want %#x", c.segSelector(SegCS), 0x18|3)
	}
	if c.segSelector(SegSS) != 0x20|3 {
		t.Errorf("SS = %#x, want %#x", c.segSelector(SegSS), 0x20|3)
	}
	if c.ESP() != 0x00091000 {
		t.Errorf("ESP = %#x, want 0x00091000", c.ESP())
	}
	if c.EIP() != 0x00402000 {
		t.Errorf("EIP = %#x, want 0x00402000", c.EIP())
	}
}
