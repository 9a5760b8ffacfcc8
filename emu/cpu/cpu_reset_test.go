package cpu

import "testing"

func TestResetClearsArchitecturalState(t *testing.T) {
	c := newTestCPU()
	c.SetEAX(0xDEADBEEF)
	c.SetESP(0x1234)
	c.SetEFLAGS(FlagCF | FlagZF)
	c.cr0 = CR0PE | CR0PG
	c.cr3 = 0x2000
	c.mode = ModeProtected
	c.halted = true
	c.historyIdx = 5
	c.cycles = 99

	c.Reset(0xF000, 0xFFF0)

	if c.EAX() != 0 {
		t.Errorf("EAX = %#x, want 0 after reset", c.EAX())
	}
	if c.ESP() != 0 {
		t.Errorf("ESP = %#x, want 0 after reset", c.ESP())
	}
	if c.EIP() != 0xFFF0 {
		t.Errorf("EIP = %#x, want 0xFFF0", c.EIP())
	}
	if c.segSelector(SegCS) != 0xF000 {
		t.Errorf("CS = %#x, want 0xF000", c.segSelector(SegCS))
	}
	if c.cr0 != CR0ET {
		t.Errorf("CR0 = %#x, want CR0ET only", c.cr0)
	}
	if c.cr3 != 0 {
		t.Errorf("CR3 = %#x, want 0", c.cr3)
	}
	if c.Mode() != ModeReal {
		t.Errorf("mode = %v, want ModeReal", c.Mode())
	}
	if c.Halted() {
		t.Error("expected not halted after reset")
	}
	if c.Cycles() != 0 {
		t.Errorf("cycles = %d, want 0", c.Cycles())
	}
	if c.historyIdx != 0 {
		t.Errorf("historyIdx = %d, want 0", c.historyIdx)
	}
}
