/*
 * i686emu - Data movement instruction family (C8)
 *
 * MOV/LEA/XCHG/MOVZX/MOVSX forms, grounded on
 * IntuitionAmiga-IntuitionEngine's cpu_x86.go opcode handlers for 0x88-0x8B,
 * 0xB0-0xBF, 0xC6/0xC7, and the 0x0F B6/B7/BE/BF two-byte extensions.
 */
package cpu

import "github.com/openi686/i686emu/emu/faults"

// execMovRM implements "mov r/m, r" (0x88/0x89) when toReg is false, and
// "mov r, r/m" (0x8A/0x8B) when toReg is true.
func (c *CPU) execMovRM(width int, toReg bool) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	if toReg {
		v, err := c.readRM(rm, width)
		if err != nil {
			return err
		}
		c.setRegByWidth(reg, width, v)
		return nil
	}
	v := c.regByWidth(reg, width)
	return c.writeRM(rm, width, v)
}

// execMovImmReg implements the 0xB0-0xBF short forms: mov r8/r32, imm.
func (c *CPU) execMovImmReg(idx int, width int) error {
	imm, err := c.fetchImm(width)
	if err != nil {
		return err
	}
	c.setRegByWidth(idx, width, imm)
	return nil
}

// execMovImmRM implements 0xC6/0xC7: mov r/m, imm.
func (c *CPU) execMovImmRM(width int) error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	imm, err := c.fetchImm(width)
	if err != nil {
		return err
	}
	return c.writeRM(rm, width, imm)
}

// execLEA implements 0x8D: load effective address (no memory access, the
// decoded offset itself is the result).
func (c *CPU) execLEA(width int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	if rm.isReg {
		return faults.InvalidOpcode()
	}
	c.setRegByWidth(reg, width, rm.offset)
	return nil
}

// execMovToSreg/execMovFromSreg implement 0x8E (mov Sreg,r/m16) and
// 0x8C (mov r/m16,Sreg); the /reg field selects one of the six segment
// registers (spec §4.3 "every segment write reloads the cache").
func (c *CPU) execMovToSreg() error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, 16)
	if err != nil {
		return err
	}
	return c.loadSegment(reg%6, uint16(v))
}

func (c *CPU) execMovFromSreg() error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	return c.writeRM(rm, 16, uint32(c.segSelector(reg%6)))
}

// execLxS implements LES/LDS/LSS/LFS/LGS (0xC4, 0xC5, 0x0F B2/B4/B5): load
// a far pointer {offset, selector} from memory, writing offset to the /reg
// general register and selector to segIdx, reloading its descriptor cache
// in protected mode (spec §4.6). The source must be a memory operand: a
// register r/m has no address to hold a selector, so it faults #UD like
// real hardware.
func (c *CPU) execLxS(width int, segIdx int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	if rm.isReg {
		return faults.InvalidOpcode()
	}
	off, err := c.readByWidth(rm.seg, rm.offset, width)
	if err != nil {
		return err
	}
	sel, err := c.readByWidth(rm.seg, rm.offset+uint32(width/8), 16)
	if err != nil {
		return err
	}
	if err := c.loadSegment(segIdx, uint16(sel)); err != nil {
		return err
	}
	c.setRegByWidth(reg, width, off)
	return nil
}

// execXCHG implements 0x86/0x87 and the 0x91-0x97 accumulator short forms.
func (c *CPU) execXCHG(width int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	rmVal, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	regVal := c.regByWidth(reg, width)
	if err := c.writeRM(rm, width, regVal); err != nil {
		return err
	}
	c.setRegByWidth(reg, width, rmVal)
	return nil
}

func (c *CPU) execXCHGAcc(idx int, width int) {
	acc := c.regByWidth(regEAX, width)
	other := c.regByWidth(idx, width)
	c.setRegByWidth(regEAX, width, other)
	c.setRegByWidth(idx, width, acc)
}

// execMOVZX/execMOVSX implement the 0x0F B6/B7/BE/BF two-byte opcodes:
// move a narrower r/m into a wider register, zero- or sign-extended.
func (c *CPU) execMOVZX(srcWidth, dstWidth int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, srcWidth)
	if err != nil {
		return err
	}
	c.setRegByWidth(reg, dstWidth, v&mask(srcWidth))
	return nil
}

func (c *CPU) execMOVSX(srcWidth, dstWidth int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, srcWidth)
	if err != nil {
		return err
	}
	var sext int32
	if srcWidth == 8 {
		sext = int32(int8(v))
	} else {
		sext = int32(int16(v))
	}
	c.setRegByWidth(reg, dstWidth, uint32(sext)&mask(dstWidth))
	return nil
}
