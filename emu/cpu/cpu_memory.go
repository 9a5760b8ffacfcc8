/*
 * i686emu - Segmented/paged memory access helpers (C6)
 *
 * Every data and instruction access funnels through here so that
 * segmentation (C4) and paging (C5) compose transparently, the way the
 * teacher's cpu.go routes all storage references through a single
 * fetch/store pair rather than letting opcode bodies touch memory
 * directly.
 */
package cpu

// dataAccess builds the accessKind used by the paging unit. An access is a
// user access when the CPL is 3; the CPL is taken from the DPL of the cached
// CS descriptor in protected mode and is 0 otherwise (spec §9).
func (c *CPU) dataAccess(write bool) accessKind {
	return accessKind{write: write, user: c.currentCPL() == 3}
}

func (c *CPU) currentCPL() uint8 {
	if c.mode != ModeProtected {
		return 0
	}
	return c.segCache[SegCS].dpl()
}

func (c *CPU) readByteSeg(seg int, offset uint32) (uint8, error) {
	lin := c.linear(seg, offset)
	phys, err := c.translate(lin, c.dataAccess(false))
	if err != nil {
		return 0, err
	}
	return c.mem.ReadByte(phys)
}

func (c *CPU) readWordSeg(seg int, offset uint32) (uint16, error) {
	lin := c.linear(seg, offset)
	phys, err := c.translate(lin, c.dataAccess(false))
	if err != nil {
		return 0, err
	}
	return c.mem.ReadWord(phys)
}

func (c *CPU) readDwordSeg(seg int, offset uint32) (uint32, error) {
	lin := c.linear(seg, offset)
	phys, err := c.translate(lin, c.dataAccess(false))
	if err != nil {
		return 0, err
	}
	return c.mem.ReadDword(phys)
}

func (c *CPU) writeByteSeg(seg int, offset uint32, v uint8) error {
	lin := c.linear(seg, offset)
	phys, err := c.translate(lin, c.dataAccess(true))
	if err != nil {
		return err
	}
	return c.mem.WriteByte(phys, v)
}

func (c *CPU) writeWordSeg(seg int, offset uint32, v uint16) error {
	lin := c.linear(seg, offset)
	phys, err := c.translate(lin, c.dataAccess(true))
	if err != nil {
		return err
	}
	return c.mem.WriteWord(phys, v)
}

func (c *CPU) writeDwordSeg(seg int, offset uint32, v uint32) error {
	lin := c.linear(seg, offset)
	phys, err := c.translate(lin, c.dataAccess(true))
	if err != nil {
		return err
	}
	return c.mem.WriteDword(phys, v)
}

// readByWidth/writeByWidth dispatch on an operand width for the executor
// families that are width-generic (ALU group, MOV family).
func (c *CPU) readByWidth(seg int, offset uint32, width int) (uint32, error) {
	switch width {
	case 8:
		v, err := c.readByteSeg(seg, offset)
		return uint32(v), err
	case 16:
		v, err := c.readWordSeg(seg, offset)
		return uint32(v), err
	default:
		return c.readDwordSeg(seg, offset)
	}
}

func (c *CPU) writeByWidth(seg int, offset uint32, width int, v uint32) error {
	switch width {
	case 8:
		return c.writeByteSeg(seg, offset, uint8(v))
	case 16:
		return c.writeWordSeg(seg, offset, uint16(v))
	default:
		return c.writeDwordSeg(seg, offset, v)
	}
}

// fetchByte/Word/Dword read from CS:EIP and advance EIP, used by the
// decoder (C7) for opcode and immediate bytes.
func (c *CPU) fetchByte() (uint8, error) {
	v, err := c.readByteSeg(SegCS, c.eip)
	if err != nil {
		return 0, err
	}
	c.eip++
	return v, nil
}

func (c *CPU) fetchWord() (uint16, error) {
	v, err := c.readWordSeg(SegCS, c.eip)
	if err != nil {
		return 0, err
	}
	c.eip += 2
	return v, nil
}

func (c *CPU) fetchDword() (uint32, error) {
	v, err := c.readDwordSeg(SegCS, c.eip)
	if err != nil {
		return 0, err
	}
	c.eip += 4
	return v, nil
}

// push16/32 and pop16/32 go through SS and always adjust the full 32-bit ESP.
func (c *CPU) push32(v uint32) error {
	sp := c.ESP() - 4
	if err := c.writeDwordSeg(SegSS, sp, v); err != nil {
		return err
	}
	c.SetESP(sp)
	return nil
}

func (c *CPU) push16(v uint16) error {
	sp := c.ESP() - 2
	if err := c.writeWordSeg(SegSS, sp, v); err != nil {
		return err
	}
	c.SetESP(sp)
	return nil
}

func (c *CPU) pop32() (uint32, error) {
	sp := c.ESP()
	v, err := c.readDwordSeg(SegSS, sp)
	if err != nil {
		return 0, err
	}
	c.SetESP(sp + 4)
	return v, nil
}

func (c *CPU) pop16() (uint16, error) {
	sp := c.ESP()
	v, err := c.readWordSeg(SegSS, sp)
	if err != nil {
		return 0, err
	}
	c.SetESP(sp + 2)
	return v, nil
}
