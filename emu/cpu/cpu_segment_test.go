package cpu

import "testing"

func TestLinearRealMode(t *testing.T) {
	c := newTestCPU()
	c.Reset(0x1000, 0)
	got := c.linear(SegCS, 0x20)
	want := uint32(0x1000<<4) + 0x20
	if got != want {
		t.Errorf("linear = %#x, want %#x", got, want)
	}
}

func TestLoadSegmentProtectedReloadsCache(t *testing.T) {
	mem := newFlatMem(0x10000)
	c := NewCPU(mem, newTestBus())
	c.gdtr = dtr{base: 0x1000, limit: 0xFFFF}
	// selector 0x10 -> GDT index 2 -> offset 0x10 into the table.
	// base=0x2000, limit=0xFFFF, G=0, present, data, writable, DPL=0.
	raw := []byte{0xFF, 0xFF, 0x00, 0x20, 0x00, 0x92, 0x00, 0x00}
	if err := mem.LoadAt(0x1000+0x10, raw); err != nil {
		t.Fatalf("LoadAt: %v", err)
	}
	c.cr0 |= CR0PE
	c.syncMode()

	if err := c.loadSegment(SegDS, 0x10); err != nil {
		t.Fatalf("loadSegment: %v", err)
	}
	if c.segCache[SegDS].base != 0x2000 {
		t.Errorf("base = %#x, want 0x2000", c.segCache[SegDS].base)
	}
	if !c.segCache[SegDS].valid {
		t.Error("expected valid cache entry")
	}

	got := c.linear(SegDS, 0x34)
	if got != 0x2034 {
		t.Errorf("linear = %#x, want 0x2034", got)
	}
}

func TestLoadSegmentNullSelector(t *testing.T) {
	c := newTestCPU()
	c.cr0 |= CR0PE
	c.syncMode()
	if err := c.loadSegment(SegDS, 0); err != nil {
		t.Fatalf("loadSegment(0): %v", err)
	}
	if c.segCache[SegDS].valid {
		t.Error("null selector must leave an invalid cache entry")
	}
}

func TestLoadSegmentBeyondGDTLimitFaults(t *testing.T) {
	c := newTestCPU()
	c.gdtr = dtr{base: 0x1000, limit: 0x0F}
	c.cr0 |= CR0PE
	c.syncMode()
	err := c.loadSegment(SegDS, 0x18)
	if err == nil {
		t.Fatal("expected #GP for a selector beyond GDTR.limit")
	}
}
