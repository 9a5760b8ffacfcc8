/*
 * End-to-end scenario tests, one per literal walkthrough.
 *
 * These exercise the full Step() loop against hand-assembled byte streams
 * the way a real harness would load a tiny boot image, rather than
 * calling executor methods directly.
 */
package cpu

import (
	"testing"

	"github.com/openi686/i686emu/emu/ioport"
	"github.com/openi686/i686emu/emu/memory"
)

func runUntilHalt(t *testing.T, c *CPU, maxSteps int) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if c.Halted() {
			return
		}
		if err := c.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !c.Halted() {
		t.Fatalf("program did not halt within %d steps", maxSteps)
	}
}

func newScenarioCPU(t *testing.T, program []byte) (*CPU, *ioport.RecorderHandler) {
	t.Helper()
	mem := memory.NewFlat(0x20000)
	if err := mem.LoadAt(0, program); err != nil {
		t.Fatalf("LoadAt: %v", err)
	}
	bus := ioport.NewSimpleBus()
	rec := &ioport.RecorderHandler{}
	bus.Register(0x3F8, rec)
	c := NewCPU(mem, bus)
	return c, rec
}

// Scenario A -- UART "OK".
func TestScenarioA_UART_OK(t *testing.T) {
	program := []byte{
		0xBA, 0xF8, 0x03, 0x00, 0x00, // mov edx, 0x3F8
		0xB0, 0x4F, // mov al, 'O'
		0xEE,       // out dx, al
		0xB0, 0x4B, // mov al, 'K'
		0xEE, // out dx, al
		0xF4, // hlt
	}
	c, rec := newScenarioCPU(t, program)
	runUntilHalt(t, c, 100)

	if string(rec.Written) != "OK" {
		t.Errorf("UART output = %q, want %q", rec.Written, "OK")
	}
	if c.EIP() != 12 {
		t.Errorf("EIP = %d, want 12", c.EIP())
	}
}

// Scenario B -- arithmetic.
func TestScenarioB_Arithmetic(t *testing.T) {
	program := []byte{
		0xB0, 0x05, // mov al, 5
		0x04, 0x03, // add al, 3
		0x04, 0x30, // add al, '0'
		0xBA, 0xF8, 0x03, 0x00, 0x00, // mov edx, 0x3F8
		0xEE, // out dx, al
		0xF4, // hlt
	}
	c, rec := newScenarioCPU(t, program)
	runUntilHalt(t, c, 100)

	if string(rec.Written) != "8" {
		t.Errorf("UART output = %q, want %q", rec.Written, "8")
	}
	if c.ZF() || c.CF() || c.OF() {
		t.Error("expected ZF=CF=OF=0 at HLT")
	}
}

// Scenario C -- LOOP via DEC/JNZ.
func TestScenarioC_Loop(t *testing.T) {
	program := []byte{
		0xB9, 0x03, 0x00, 0x00, 0x00, // mov ecx, 3
		0xBA, 0xF8, 0x03, 0x00, 0x00, // mov edx, 0x3F8
		0xB0, 0x41, // mov al, 'A'
		0xEE,       // out dx, al
		0x49,       // dec ecx
		0x75, 0xFA, // jnz back (-6)
		0xF4, // hlt
	}
	c, rec := newScenarioCPU(t, program)
	runUntilHalt(t, c, 100)

	if string(rec.Written) != "AAA" {
		t.Errorf("UART output = %q, want %q", rec.Written, "AAA")
	}
	if c.ECX() != 0 {
		t.Errorf("ECX = %d, want 0", c.ECX())
	}
}

// Scenario D -- real to protected transition via LGDT + MOV CR0.
func TestScenarioD_RealToProtected(t *testing.T) {
	program := []byte{
		0x0F, 0x01, 0x15, 0xF6, 0x0F, 0x00, 0x00, // lgdt [0x0FF6]
		0x0F, 0x20, 0xC0, // mov eax, cr0
		0x0C, 0x01, // or al, 1
		0x0F, 0x22, 0xC0, // mov cr0, eax
		0xBA, 0xF8, 0x03, 0x00, 0x00, // mov edx, 0x3F8
		0xB0, 0x50, // mov al, 'P'
		0xEE, // out dx, al
		0xF4, // hlt
	}
	c, rec := newScenarioCPU(t, program)
	mem := c.mem.(*memory.Flat)

	// Null descriptor, flat code at selector 0x08, flat data at 0x10.
	gdt := make([]byte, 24)
	copy(gdt[8:16], []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x9A, 0xCF, 0x00})
	copy(gdt[16:24], []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x92, 0xCF, 0x00})
	if err := mem.LoadAt(0x1000, gdt); err != nil {
		t.Fatalf("LoadAt gdt: %v", err)
	}
	// GDTR pseudo-descriptor: limit=0x17, base=0x1000.
	if err := mem.LoadAt(0x0FF6, []byte{0x17, 0x00, 0x00, 0x10, 0x00, 0x00}); err != nil {
		t.Fatalf("LoadAt gdtr: %v", err)
	}

	runUntilHalt(t, c, 100)

	if c.Mode() != ModeProtected {
		t.Errorf("mode = %v, want ModeProtected", c.Mode())
	}
	if c.cr0&CR0PE == 0 {
		t.Error("expected CR0.PE = 1")
	}
	if string(rec.Written) != "P" {
		t.Errorf("UART output = %q, want %q", rec.Written, "P")
	}
}

// Scenario E -- paging identity map.
func TestScenarioE_PagingIdentityMap(t *testing.T) {
	program := []byte{
		0x0F, 0x01, 0x15, 0xF6, 0x0F, 0x00, 0x00, // lgdt [0x0FF6]
		0x0F, 0x20, 0xC0, // mov eax, cr0
		0x0C, 0x01, // or al, 1
		0x0F, 0x22, 0xC0, // mov cr0, eax        (PE=1)
		0xB8, 0x00, 0x20, 0x00, 0x00, // mov eax, 0x2000
		0x0F, 0x22, 0xD8, // mov cr3, eax
		0x0F, 0x20, 0xC0, // mov eax, cr0
		0x0D, 0x00, 0x00, 0x00, 0x80, // or eax, 0x80000000
		0x0F, 0x22, 0xC0, // mov cr0, eax        (PG=1)
		0xC7, 0x05, 0x00, 0x50, 0x00, 0x00, 0x42, 0x42, 0x42, 0x42, // mov dword [0x5000], 0x42424242
		0x8B, 0x05, 0x00, 0x50, 0x00, 0x00, // mov eax, [0x5000]
		0xF4, // hlt
	}
	c, _ := newScenarioCPU(t, program)
	mem := c.mem.(*memory.Flat)

	gdt := make([]byte, 24)
	copy(gdt[8:16], []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x9A, 0xCF, 0x00})
	copy(gdt[16:24], []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x92, 0xCF, 0x00})
	if err := mem.LoadAt(0x1000, gdt); err != nil {
		t.Fatalf("LoadAt gdt: %v", err)
	}
	if err := mem.LoadAt(0x0FF6, []byte{0x17, 0x00, 0x00, 0x10, 0x00, 0x00}); err != nil {
		t.Fatalf("LoadAt gdtr: %v", err)
	}

	// Page directory at 0x2000: entry 0 -> page table at 0x3000.
	if err := mem.WriteDword(0x2000, 0x3000|pteP|pteRW|pteUS); err != nil {
		t.Fatalf("write pde: %v", err)
	}
	// Identity-map the first 1024 frames.
	for i := uint32(0); i < 1024; i++ {
		if err := mem.WriteDword(0x3000+i*4, (i<<12)|pteP|pteRW|pteUS); err != nil {
			t.Fatalf("write pte %d: %v", i, err)
		}
	}

	runUntilHalt(t, c, 200)

	if c.cr0&CR0PG == 0 {
		t.Error("expected CR0.PG = 1")
	}
	if c.EAX() != 0x42424242 {
		t.Errorf("EAX = %#x, want 0x42424242", c.EAX())
	}
}

// Scenario F -- INT/IRET round trip.
func TestScenarioF_InterruptRoundTrip(t *testing.T) {
	// Main program at 0: set up the UART port, call INT 0x80, emit 'R', halt.
	program := []byte{
		0xBA, 0xF8, 0x03, 0x00, 0x00, // mov edx, 0x3F8
		0xCD, 0x80, // int 0x80
		0xB0, 0x52, // mov al, 'R'
		0xEE, // out dx, al
		0xF4, // hlt
	}
	// Handler at 0x2000: emit 'I', iret.
	handler := []byte{
		0xB0, 0x49, // mov al, 'I'
		0xEE, // out dx, al
		0xCF, // iret
	}

	c, rec := newScenarioCPU(t, program)
	mem := c.mem.(*memory.Flat)
	if err := mem.LoadAt(0x2000, handler); err != nil {
		t.Fatalf("LoadAt handler: %v", err)
	}

	// Flat code descriptor at selector 0x08, needed because the interrupt
	// gate reloads CS from the GDT on dispatch.
	gdt := make([]byte, 16)
	copy(gdt[8:16], []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x9A, 0xCF, 0x00})
	if err := mem.LoadAt(0x1000, gdt); err != nil {
		t.Fatalf("LoadAt gdt: %v", err)
	}
	c.gdtr = dtr{base: 0x1000, limit: 0x0F}

	c.cr0 |= CR0PE
	c.syncMode()
	c.SetESP(0x9000)

	// Interrupt gate for vector 0x80: selector=0x08, offset=0x2000,
	// type=0xE (32-bit interrupt gate), present, DPL=0.
	c.idtr = dtr{base: 0x4000, limit: 0xFFF}
	gate := []byte{0x00, 0x20, 0x08, 0x00, 0x00, 0x8E, 0x00, 0x00}
	if err := mem.LoadAt(0x4000+0x80*8, gate); err != nil {
		t.Fatalf("LoadAt idt gate: %v", err)
	}

	preEFLAGS := c.EFLAGS()
	runUntilHalt(t, c, 200)

	if string(rec.Written) != "IR" {
		t.Errorf("UART output = %q, want %q", rec.Written, "IR")
	}
	if c.EFLAGS() != preEFLAGS {
		t.Errorf("EFLAGS = %#x, want restored %#x", c.EFLAGS(), preEFLAGS)
	}
}
