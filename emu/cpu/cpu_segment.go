/*
 * i686emu - Segmentation unit (C4)
 *
 * linear() and loadSegment() implement spec §4.3. Per the recorded open
 * question decision (DESIGN.md), LDT selectors (TI=1) are resolved against
 * the GDT like GDT selectors rather than walking a separate LDT -- a
 * documented gap, not a silent correctness fix.
 */
package cpu

import "github.com/openi686/i686emu/emu/faults"

// linear computes the linear address for an offset within segment idx,
// per spec §4.3: real/vm86 mode uses (selector<<4)+offset, protected mode
// uses the cached descriptor base plus offset.
func (c *CPU) linear(idx int, offset uint32) uint32 {
	if c.mode == ModeProtected {
		return c.segCache[idx].base + offset
	}
	return (uint32(c.segSel[idx]) << 4) + (offset & 0xFFFF)
}

// loadSegment updates segment register idx to selector, reloading its
// descriptor cache from the GDT in protected mode. A null selector (0-3)
// loads an invalid cache entry; this is accepted for every segment
// register, CS and SS included.
func (c *CPU) loadSegment(idx int, selector uint16) error {
	c.segSel[idx] = selector

	if c.mode != ModeProtected {
		c.segCache[idx] = descriptor{base: uint32(selector) << 4, limit: 0xFFFF, valid: true}
		return nil
	}

	if selector&0xFFFC == 0 {
		c.segCache[idx] = descriptor{valid: false}
		return nil
	}

	raw, err := c.readDescriptorRaw(selector)
	if err != nil {
		return err
	}

	d := parseDescriptor(raw)
	if !d.isPresent() {
		return faults.SegmentNotPresent(uint32(selector) & 0xFFF8)
	}
	c.segCache[idx] = d
	return nil
}

// readDescriptorRaw fetches the 8-byte descriptor for selector out of the
// GDT (LDT selectors alias to the GDT per the recorded open-question
// decision), faulting #GP if the selector lies outside GDTR.limit.
func (c *CPU) readDescriptorRaw(selector uint16) ([8]byte, error) {
	var raw [8]byte
	index := uint32(selector &^ 0x7)
	if uint32(index)+7 > uint32(c.gdtr.limit) {
		return raw, faults.GeneralProtection(uint32(selector) & 0xFFF8)
	}

	addr := c.gdtr.base + index
	for i := 0; i < 8; i++ {
		b, err := c.mem.ReadByte(addr + uint32(i))
		if err != nil {
			return raw, faults.ErrMemory
		}
		raw[i] = b
	}
	return raw, nil
}
