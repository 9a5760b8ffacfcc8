package cpu

import "testing"

// TestProtectedExceptionFrameIsDwordSized exercises invariant 9: the pushed
// exception frame is always {EIP,CS,EFLAGS[,ErrorCode]} at 4 bytes per
// field, with CS normalized to a dword regardless of the gate's declared
// operand size.
func TestProtectedExceptionFrameIsDwordSized(t *testing.T) {
	mem := newFlatMem(0x10000)
	c := NewCPU(mem, newTestBus())
	c.gdtr = dtr{base: 0x1000, limit: 0x0F}
	code := []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x9A, 0xCF, 0x00}
	if err := mem.LoadAt(0x1008, code); err != nil {
		t.Fatalf("LoadAt gdt: %v", err)
	}
	c.cr0 |= CR0PE
	c.syncMode()
	c.SetESP(0x2000)

	// Interrupt gate for vector 0x0D (#GP): selector=0x08, offset=0x3000.
	c.idtr = dtr{base: 0x4000, limit: 0xFF}
	gate := []byte{0x00, 0x30, 0x08, 0x00, 0x00, 0x8E, 0x00, 0x00}
	if err := mem.LoadAt(0x4000+0x0D*8, gate); err != nil {
		t.Fatalf("LoadAt idt gate: %v", err)
	}

	preESP := c.ESP()
	preEIP := c.eip
	preCS := uint32(c.segSelector(SegCS))
	preEFLAGS := c.EFLAGS()

	if err := c.dispatchInterrupt(0x0D, true, 0x1234); err != nil {
		t.Fatalf("dispatchInterrupt: %v", err)
	}

	// Four dwords pushed: ErrorCode, EIP, CS, EFLAGS.
	if got, want := preESP-c.ESP(), uint32(16); got != want {
		t.Errorf("ESP delta = %d, want %d (four dwords)", got, want)
	}

	errorCode, err := c.readDwordSeg(SegSS, c.ESP())
	if err != nil {
		t.Fatalf("read error code: %v", err)
	}
	eip, err := c.readDwordSeg(SegSS, c.ESP()+4)
	if err != nil {
		t.Fatalf("read eip: %v", err)
	}
	cs, err := c.readDwordSeg(SegSS, c.ESP()+8)
	if err != nil {
		t.Fatalf("read cs: %v", err)
	}
	flags, err := c.readDwordSeg(SegSS, c.ESP()+12)
	if err != nil {
		t.Fatalf("read eflags: %v", err)
	}

	if errorCode != 0x1234 {
		t.Errorf("error code = %#x, want 0x1234", errorCode)
	}
	if eip != preEIP {
		t.Errorf("pushed EIP = %#x, want %#x", eip, preEIP)
	}
	if cs != preCS {
		t.Errorf("pushed CS = %#x, want %#x (dword, zero-extended)", cs, preCS)
	}
	if cs > 0xFFFF {
		t.Errorf("pushed CS = %#x has garbage in the upper word", cs)
	}
	if flags != preEFLAGS {
		t.Errorf("pushed EFLAGS = %#x, want %#x", flags, preEFLAGS)
	}

	if c.EIP() != 0x3000 {
		t.Errorf("EIP = %#x, want 0x3000 (gate offset)", c.EIP())
	}
	if c.segSelector(SegCS) != 0x08 {
		t.Errorf("CS = %#x, want 0x08 (gate selector)", c.segSelector(SegCS))
	}
}
