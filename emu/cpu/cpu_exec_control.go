/*
 * i686emu - Control transfer instruction family (C8)
 *
 * Jcc/JMP/CALL/RET/LOOP family/CMOVcc/SETcc, near-only (far jumps and
 * gates are out of scope per spec §2 Non-goals). Grounded on
 * IntuitionAmiga-IntuitionEngine's cpu_x86.go jump-displacement handling.
 */
package cpu

// execJccShort implements the 0x70-0x7F short (rel8) conditional jumps.
func (c *CPU) execJccShort(cc int) error {
	disp, err := c.fetchByte()
	if err != nil {
		return err
	}
	if c.condition(cc) {
		c.eip = uint32(int32(c.eip) + int32(int8(disp)))
	}
	return nil
}

// execJccNear implements the 0x0F 0x80-0x8F near (rel16/32) conditional
// jumps.
func (c *CPU) execJccNear(cc int, width int) error {
	var disp int32
	if width == 16 {
		v, err := c.fetchWord()
		if err != nil {
			return err
		}
		disp = int32(int16(v))
	} else {
		v, err := c.fetchDword()
		if err != nil {
			return err
		}
		disp = int32(v)
	}
	if c.condition(cc) {
		c.eip = uint32(int32(c.eip) + disp)
	}
	return nil
}

func (c *CPU) execJmpShort() error {
	disp, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.eip = uint32(int32(c.eip) + int32(int8(disp)))
	return nil
}

func (c *CPU) execJmpNear(width int) error {
	var disp int32
	if width == 16 {
		v, err := c.fetchWord()
		if err != nil {
			return err
		}
		disp = int32(int16(v))
	} else {
		v, err := c.fetchDword()
		if err != nil {
			return err
		}
		disp = int32(v)
	}
	c.eip = uint32(int32(c.eip) + disp)
	return nil
}

func (c *CPU) execJmpRM(width int) error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	target, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	c.eip = target
	return nil
}

func (c *CPU) execCallNear(width int) error {
	var disp int32
	if width == 16 {
		v, err := c.fetchWord()
		if err != nil {
			return err
		}
		disp = int32(int16(v))
	} else {
		v, err := c.fetchDword()
		if err != nil {
			return err
		}
		disp = int32(v)
	}
	ret := c.eip
	if width == 16 {
		if err := c.push16(uint16(ret)); err != nil {
			return err
		}
	} else if err := c.push32(ret); err != nil {
		return err
	}
	c.eip = uint32(int32(c.eip) + disp)
	return nil
}

func (c *CPU) execCallRM(width int) error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	target, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	ret := c.eip
	if width == 16 {
		if err := c.push16(uint16(ret)); err != nil {
			return err
		}
	} else if err := c.push32(ret); err != nil {
		return err
	}
	c.eip = target
	return nil
}

func (c *CPU) execRetNear(width int, popBytes uint16) error {
	var target uint32
	var err error
	if width == 16 {
		v, e := c.pop16()
		target, err = uint32(v), e
	} else {
		target, err = c.pop32()
	}
	if err != nil {
		return err
	}
	if popBytes != 0 {
		c.SetESP(c.ESP() + uint32(popBytes))
	}
	c.eip = target
	return nil
}

// execLoop implements LOOP/LOOPE/LOOPNE (0xE0-0xE2): decrement
// (E)CX honoring the address-size attribute, branch per kind and ZF.
func (c *CPU) execLoop(kind int) error {
	disp, err := c.fetchByte()
	if err != nil {
		return err
	}
	var count uint32
	if c.addressWidth() == 16 {
		count = uint32(uint16(c.ECX()) - 1)
		c.setReg16(regECX, uint16(count))
	} else {
		count = c.ECX() - 1
		c.SetECX(count)
	}

	take := count != 0
	switch kind {
	case 1: // LOOPE/LOOPZ
		take = take && c.ZF()
	case 2: // LOOPNE/LOOPNZ
		take = take && !c.ZF()
	}
	if take {
		c.eip = uint32(int32(c.eip) + int32(int8(disp)))
	}
	return nil
}

func (c *CPU) execJCXZ() error {
	disp, err := c.fetchByte()
	if err != nil {
		return err
	}
	var zero bool
	if c.addressWidth() == 16 {
		zero = uint16(c.ECX()) == 0
	} else {
		zero = c.ECX() == 0
	}
	if zero {
		c.eip = uint32(int32(c.eip) + int32(int8(disp)))
	}
	return nil
}

func (c *CPU) execCMOVcc(cc int, width int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	if c.condition(cc) {
		c.setRegByWidth(reg, width, v)
	}
	return nil
}

func (c *CPU) execSETcc(cc int) error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	var v uint32
	if c.condition(cc) {
		v = 1
	}
	return c.writeRM(rm, 8, v)
}

// execEnter/execLeave implement stack-frame setup/teardown (C8). For a
// nonzero nesting level, ENTER copies level-1 enclosing frame pointers from
// [EBP-4*i] and then pushes the new frame pointer. Both use 32-bit slots
// and EBP/ESP regardless of the operand-size prefix.
func (c *CPU) execEnter() error {
	size, err := c.fetchWord()
	if err != nil {
		return err
	}
	level, err := c.fetchByte()
	if err != nil {
		return err
	}
	if err := c.push32(c.EBP()); err != nil {
		return err
	}
	frame := c.ESP()
	if level != 0 {
		for i := uint8(1); i < level; i++ {
			bp := c.EBP() - 4*uint32(i)
			v, err := c.readDwordSeg(SegSS, bp)
			if err != nil {
				return err
			}
			if err := c.push32(v); err != nil {
				return err
			}
		}
		if err := c.push32(frame); err != nil {
			return err
		}
	}
	c.SetEBP(frame)
	c.SetESP(frame - uint32(size))
	return nil
}

func (c *CPU) execLeave() error {
	c.SetESP(c.EBP())
	bp, err := c.pop32()
	if err != nil {
		return err
	}
	c.SetEBP(bp)
	return nil
}
