/*
 * i686emu - String instruction family (C8)
 *
 * MOVS/CMPS/STOS/LODS/SCAS with REP/REPE/REPNE, the counter honoring the
 * 0x67 address-size prefix per the recorded open-question decision (spec
 * §9: "REP string ops honor the address-size prefix").
 */
package cpu

// stringStep advances SI/DI by ±width/8 depending on DF, at the current
// address-size attribute.
func (c *CPU) stringStep(width int) uint32 {
	step := uint32(width / 8)
	if c.DF() {
		return ^step + 1
	}
	return step
}

func (c *CPU) addrReg(idx int) uint32 {
	if c.addressWidth() == 16 {
		return uint32(uint16(c.reg32(idx)))
	}
	return c.reg32(idx)
}

func (c *CPU) setAddrReg(idx int, v uint32) {
	if c.addressWidth() == 16 {
		c.setReg16(idx, uint16(v))
		return
	}
	c.setReg32(idx, v)
}

func (c *CPU) countZero() bool {
	if c.addressWidth() == 16 {
		return uint16(c.ECX()) == 0
	}
	return c.ECX() == 0
}

// srcSeg returns the segment used for the SI-addressed operand, honoring
// a segment-override prefix (DI-addressed operands always use ES).
func (c *CPU) srcSeg() int {
	if c.prefix.segOver >= 0 {
		return c.prefix.segOver
	}
	return SegDS
}

func (c *CPU) decrementCount() {
	if c.addressWidth() == 16 {
		c.setReg16(regECX, uint16(c.ECX())-1)
		return
	}
	c.SetECX(c.ECX() - 1)
}

// execStringOp runs body once, or in a REP-prefixed loop bounded by ECX
// and (for CMPS/SCAS) by ZF, per spec §4.1.
func (c *CPU) execStringOp(body func() error, isRepeScas bool) error {
	if c.prefix.repKind == repNone {
		return body()
	}
	for !c.countZero() {
		c.decrementCount()
		if err := body(); err != nil {
			return err
		}
		if isRepeScas {
			if c.prefix.repKind == repRep && !c.ZF() {
				break
			}
			if c.prefix.repKind == repNE && c.ZF() {
				break
			}
		}
	}
	return nil
}

func (c *CPU) execMOVS(width int) error {
	return c.execStringOp(func() error {
		v, err := c.readByWidth(c.srcSeg(), c.addrReg(regESI), width)
		if err != nil {
			return err
		}
		seg := SegES
		if err := c.writeByWidth(seg, c.addrReg(regEDI), width, v); err != nil {
			return err
		}
		step := c.stringStep(width)
		c.setAddrReg(regESI, c.addrReg(regESI)+step)
		c.setAddrReg(regEDI, c.addrReg(regEDI)+step)
		return nil
	}, false)
}

func (c *CPU) execCMPS(width int) error {
	return c.execStringOp(func() error {
		a, err := c.readByWidth(c.srcSeg(), c.addrReg(regESI), width)
		if err != nil {
			return err
		}
		b, err := c.readByWidth(SegES, c.addrReg(regEDI), width)
		if err != nil {
			return err
		}
		c.aluOp(aluCmp, a, b, width)
		step := c.stringStep(width)
		c.setAddrReg(regESI, c.addrReg(regESI)+step)
		c.setAddrReg(regEDI, c.addrReg(regEDI)+step)
		return nil
	}, true)
}

func (c *CPU) execSTOS(width int) error {
	return c.execStringOp(func() error {
		v := c.regByWidth(regEAX, width)
		if err := c.writeByWidth(SegES, c.addrReg(regEDI), width, v); err != nil {
			return err
		}
		c.setAddrReg(regEDI, c.addrReg(regEDI)+c.stringStep(width))
		return nil
	}, false)
}

func (c *CPU) execLODS(width int) error {
	return c.execStringOp(func() error {
		v, err := c.readByWidth(c.srcSeg(), c.addrReg(regESI), width)
		if err != nil {
			return err
		}
		c.setRegByWidth(regEAX, width, v)
		c.setAddrReg(regESI, c.addrReg(regESI)+c.stringStep(width))
		return nil
	}, false)
}

func (c *CPU) execSCAS(width int) error {
	return c.execStringOp(func() error {
		v, err := c.readByWidth(SegES, c.addrReg(regEDI), width)
		if err != nil {
			return err
		}
		c.aluOp(aluCmp, c.regByWidth(regEAX, width), v, width)
		c.setAddrReg(regEDI, c.addrReg(regEDI)+c.stringStep(width))
		return nil
	}, true)
}
