package cpu

import "testing"

func newTestCPU() *CPU {
	return NewCPU(newFlatMem(64 * 1024), newTestBus())
}

func TestAddFlagsCarryAndOverflow(t *testing.T) {
	c := newTestCPU()
	result := c.addFlags(8, 0xFF, 0x01, false)
	if result != 0 {
		t.Fatalf("result = %#x, want 0", result)
	}
	if !c.CF() {
		t.Error("expected CF set on 8-bit overflow")
	}
	if !c.ZF() {
		t.Error("expected ZF set")
	}

	c2 := newTestCPU()
	result2 := c2.addFlags(8, 0x7F, 0x01, false)
	if result2 != 0x80 {
		t.Fatalf("result = %#x, want 0x80", result2)
	}
	if !c2.OF() {
		t.Error("expected OF set on signed overflow (0x7F+1)")
	}
	if !c2.SF() {
		t.Error("expected SF set")
	}
}

func TestSubFlagsBorrow(t *testing.T) {
	c := newTestCPU()
	result := c.subFlags(8, 0x00, 0x01, false)
	if result != 0xFF {
		t.Fatalf("result = %#x, want 0xFF", result)
	}
	if !c.CF() {
		t.Error("expected CF (borrow) set")
	}
}

func TestIncDecPreservesCF(t *testing.T) {
	c := newTestCPU()
	c.SetCF(true)
	c.incFlags(32, 0xFFFFFFFF)
	if !c.CF() {
		t.Error("INC must not modify CF")
	}
	c.SetCF(false)
	c.decFlags(32, 0)
	if c.CF() {
		t.Error("DEC must not modify CF")
	}
}

func TestLogicFlagsClearCFOF(t *testing.T) {
	c := newTestCPU()
	c.SetCF(true)
	c.SetOF(true)
	c.logicFlags(8, 0x0F)
	if c.CF() || c.OF() {
		t.Error("logical ops must clear CF and OF")
	}
	if !c.PF() {
		t.Error("0x0F has even parity, expected PF set")
	}
}

func TestNegFlagsZeroOperand(t *testing.T) {
	c := newTestCPU()
	c.negFlags(8, 0)
	if c.CF() {
		t.Error("NEG 0 must leave CF clear")
	}
}

func TestNegFlagsMinSigned(t *testing.T) {
	c := newTestCPU()
	c.negFlags(8, 0x80)
	if !c.OF() {
		t.Error("NEG of minimum signed value must set OF")
	}
}

func TestParity(t *testing.T) {
	if !parity(0x00) {
		t.Error("0x00 has even (zero) parity bits, expected true")
	}
	if parity(0x01) {
		t.Error("0x01 has odd parity, expected false")
	}
	if !parity(0x03) {
		t.Error("0x03 has even parity, expected true")
	}
}
