package cpu

import (
	"testing"

	"github.com/openi686/i686emu/emu/memory"
)

func setupIdentityMap(t *testing.T, mem *memory.Flat) {
	t.Helper()
	if err := mem.WriteDword(0x2000, 0x3000|pteP|pteRW|pteUS); err != nil {
		t.Fatalf("write pde: %v", err)
	}
	if err := mem.WriteDword(0x3000, 0x0000|pteP|pteRW|pteUS); err != nil {
		t.Fatalf("write pte: %v", err)
	}
}

func TestTranslatePagingDisabledIsIdentity(t *testing.T) {
	c := newTestCPU()
	phys, err := c.translate(0x1234, accessKind{})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if phys != 0x1234 {
		t.Errorf("phys = %#x, want 0x1234 (paging disabled)", phys)
	}
}

func TestTranslateIdentityMap(t *testing.T) {
	mem := newFlatMem(0x10000)
	setupIdentityMap(t, mem)
	c := NewCPU(mem, newTestBus())
	c.cr3 = 0x2000
	c.cr0 |= CR0PG | CR0PE
	c.syncMode()

	phys, err := c.translate(0x0500, accessKind{write: true})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if phys != 0x0500 {
		t.Errorf("phys = %#x, want 0x0500", phys)
	}
}

func TestTranslateNotPresentFaultsAndLatchesCR2(t *testing.T) {
	mem := newFlatMem(0x10000)
	c := NewCPU(mem, newTestBus())
	c.cr3 = 0x2000
	c.cr0 |= CR0PG

	_, err := c.translate(0x00ABC000, accessKind{})
	if err == nil {
		t.Fatal("expected #PF for a not-present PDE")
	}
	if c.cr2 != 0x00ABC000 {
		t.Errorf("CR2 = %#x, want 0x00ABC000", c.cr2)
	}
}

func TestTranslateSupervisorPageRejectsUser(t *testing.T) {
	mem := newFlatMem(0x10000)
	if err := mem.WriteDword(0x2000, 0x3000|pteP|pteRW); err != nil { // no US bit
		t.Fatal(err)
	}
	if err := mem.WriteDword(0x3000, pteP|pteRW); err != nil {
		t.Fatal(err)
	}
	c := NewCPU(mem, newTestBus())
	c.cr3 = 0x2000
	c.cr0 |= CR0PG

	_, err := c.translate(0, accessKind{user: true})
	if err == nil {
		t.Fatal("expected #PF when a user access targets a supervisor-only page")
	}
}
