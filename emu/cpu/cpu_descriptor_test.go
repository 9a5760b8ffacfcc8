package cpu

import "testing"

func TestParseDescriptorFlatCodeSegment(t *testing.T) {
	// base=0, limit=0xFFFFF, G=1, present, DPL=0, code, readable.
	raw := [8]byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x9A, 0xCF, 0x00}
	d := parseDescriptor(raw)

	if !d.isPresent() {
		t.Error("expected present")
	}
	if !d.isCode() {
		t.Error("expected code segment")
	}
	if !d.isReadable() {
		t.Error("expected readable code segment")
	}
	if d.dpl() != 0 {
		t.Errorf("dpl = %d, want 0", d.dpl())
	}
	if d.limit != 0xFFFFFFFF {
		t.Errorf("limit = %#x, want 0xFFFFFFFF (granularity applied)", d.limit)
	}
}

func TestParseDescriptorFlatDataSegment(t *testing.T) {
	raw := [8]byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x92, 0xCF, 0x00}
	d := parseDescriptor(raw)
	if !d.isData() {
		t.Error("expected data segment")
	}
	if !d.isWritable() {
		t.Error("expected writable data segment")
	}
}

func TestParseDescriptorNoGranularity(t *testing.T) {
	// limit=0x00FFF, G=0: effective limit stays 0xFFF.
	raw := [8]byte{0xFF, 0x0F, 0x00, 0x00, 0x00, 0x92, 0x00, 0x00}
	d := parseDescriptor(raw)
	if d.limit != 0xFFF {
		t.Errorf("limit = %#x, want 0xFFF", d.limit)
	}
}

func TestParseGateInterrupt(t *testing.T) {
	// offset=0x00401000, selector=0x0008, type=0xE (32-bit interrupt gate), P=1, DPL=0.
	raw := [8]byte{0x00, 0x10, 0x08, 0x00, 0x00, 0x8E, 0x40, 0x00}
	g := parseGate(raw)
	if g.offset != 0x00401000 {
		t.Errorf("offset = %#x, want 0x00401000", g.offset)
	}
	if g.selector != 0x0008 {
		t.Errorf("selector = %#x, want 0x0008", g.selector)
	}
	if !g.isInterruptGate() {
		t.Error("expected interrupt gate")
	}
	if !g.present {
		t.Error("expected present")
	}
}
