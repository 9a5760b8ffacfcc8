/*
 * i686emu - Stack instruction family (C8)
 *
 * PUSH/POP r32 short forms, PUSH/POP r/m, PUSH imm, PUSHFD/POPFD, grounded
 * on IntuitionAmiga-IntuitionEngine's cpu_x86.go push32/pop32 helpers.
 */
package cpu

func (c *CPU) execPushReg(idx int, width int) error {
	if width == 16 {
		return c.push16(uint16(c.regByWidth(idx, 16)))
	}
	return c.push32(c.regByWidth(idx, 32))
}

func (c *CPU) execPopReg(idx int, width int) error {
	if width == 16 {
		v, err := c.pop16()
		if err != nil {
			return err
		}
		c.setRegByWidth(idx, 16, uint32(v))
		return nil
	}
	v, err := c.pop32()
	if err != nil {
		return err
	}
	c.setRegByWidth(idx, 32, v)
	return nil
}

func (c *CPU) execPushRM(width int) error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	if width == 16 {
		return c.push16(uint16(v))
	}
	return c.push32(v)
}

func (c *CPU) execPopRM(width int) error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	if width == 16 {
		v, err := c.pop16()
		if err != nil {
			return err
		}
		return c.writeRM(rm, 16, uint32(v))
	}
	v, err := c.pop32()
	if err != nil {
		return err
	}
	return c.writeRM(rm, 32, v)
}

func (c *CPU) execPushImm(width int, immWidth int, signExtend bool) error {
	var imm uint32
	var err error
	if signExtend {
		imm, err = c.fetchImm8Sext(width)
	} else {
		imm, err = c.fetchImm(immWidth)
	}
	if err != nil {
		return err
	}
	if width == 16 {
		return c.push16(uint16(imm))
	}
	return c.push32(imm)
}

func (c *CPU) execPushfd() error { return c.push32(c.EFLAGS()) }

func (c *CPU) execPopfd() error {
	v, err := c.pop32()
	if err != nil {
		return err
	}
	c.SetEFLAGS(v)
	return nil
}

func (c *CPU) execPushf16() error { return c.push16(uint16(c.EFLAGS())) }

func (c *CPU) execPopf16() error {
	v, err := c.pop16()
	if err != nil {
		return err
	}
	c.SetEFLAGS((c.EFLAGS() &^ 0xFFFF) | uint32(v))
	return nil
}
