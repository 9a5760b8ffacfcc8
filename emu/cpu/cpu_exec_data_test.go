/*
 * Far-pointer load tests (LES/LDS/LSS/LFS/LGS), C8.
 */
package cpu

import (
	"testing"

	"github.com/openi686/i686emu/emu/memory"
)

// Scenario -- LDS loads the 32-bit offset into EAX and the selector into
// DS, reloading its cache (real mode: base = selector<<4).
func TestScenarioLDS_LoadsOffsetAndSegment(t *testing.T) {
	program := []byte{
		0xBB, 0x00, 0x60, 0x00, 0x00, // mov ebx, 0x6000
		0xC5, 0x03, // lds eax, [ebx]
		0xF4, // hlt
	}
	c, _ := newScenarioCPU(t, program)
	mem := c.mem.(*memory.Flat)
	if err := mem.WriteDword(0x6000, 0x12345678); err != nil {
		t.Fatalf("WriteDword offset: %v", err)
	}
	if err := mem.WriteWord(0x6004, 0x0030); err != nil {
		t.Fatalf("WriteWord selector: %v", err)
	}

	runUntilHalt(t, c, 10)

	if c.EAX() != 0x12345678 {
		t.Errorf("EAX = %#x, want 0x12345678", c.EAX())
	}
	if c.segSelector(SegDS) != 0x0030 {
		t.Errorf("DS selector = %#x, want 0x0030", c.segSelector(SegDS))
	}
	if c.segCache[SegDS].base != 0x0030<<4 {
		t.Errorf("DS base = %#x, want %#x", c.segCache[SegDS].base, uint32(0x0030<<4))
	}
}

// Scenario -- LES with a 16-bit operand size (0x66 prefix) only loads the
// low 16 bits of the offset, per the m16:16 far-pointer form.
func TestScenarioLES_16BitOperand(t *testing.T) {
	program := []byte{
		0xBB, 0x00, 0x60, 0x00, 0x00, // mov ebx, 0x6000
		0x66, 0xC4, 0x03, // les ax, [ebx]
		0xF4, // hlt
	}
	c, _ := newScenarioCPU(t, program)
	mem := c.mem.(*memory.Flat)
	if err := mem.WriteWord(0x6000, 0xBEEF); err != nil {
		t.Fatalf("WriteWord offset: %v", err)
	}
	if err := mem.WriteWord(0x6002, 0x0040); err != nil {
		t.Fatalf("WriteWord selector: %v", err)
	}

	runUntilHalt(t, c, 10)

	if c.EAX()&0xFFFF != 0xBEEF {
		t.Errorf("AX = %#x, want 0xBEEF", c.EAX()&0xFFFF)
	}
	if c.segSelector(SegES) != 0x0040 {
		t.Errorf("ES selector = %#x, want 0x0040", c.segSelector(SegES))
	}
}

// Scenario -- LSS reloads SS, the form used to restore a stack pointer
// from a saved far pointer.
func TestScenarioLSS_LoadsStackSegment(t *testing.T) {
	program := []byte{
		0xBB, 0x00, 0x60, 0x00, 0x00, // mov ebx, 0x6000
		0x0F, 0xB2, 0x03, // lss eax, [ebx]
		0xF4, // hlt
	}
	c, _ := newScenarioCPU(t, program)
	mem := c.mem.(*memory.Flat)
	if err := mem.WriteDword(0x6000, 0x9000); err != nil {
		t.Fatalf("WriteDword offset: %v", err)
	}
	if err := mem.WriteWord(0x6004, 0x0050); err != nil {
		t.Fatalf("WriteWord selector: %v", err)
	}

	runUntilHalt(t, c, 10)

	if c.EAX() != 0x9000 {
		t.Errorf("EAX = %#x, want 0x9000", c.EAX())
	}
	if c.segSelector(SegSS) != 0x0050 {
		t.Errorf("SS selector = %#x, want 0x0050", c.segSelector(SegSS))
	}
}

// A register r/m has no address to source a selector from, so LES/LDS
// fault #UD instead of reading garbage.
func TestLxS_RegisterOperandFaultsUD(t *testing.T) {
	c, _ := newScenarioCPU(t, []byte{0xC4, 0xC0}) // les eax, eax (invalid r/m)
	c.eip = 1                                     // past the opcode byte, at the ModRM byte
	err := c.execLxS(32, SegES)
	if err == nil {
		t.Fatal("expected #UD for register r/m operand, got nil")
	}
}
