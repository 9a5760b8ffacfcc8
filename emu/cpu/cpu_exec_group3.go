/*
 * i686emu - Group-3 unary ALU family and IMUL variants (C8)
 *
 * TEST/NOT/NEG/MUL/IMUL/DIV/IDIV over opcodes 0xF6/0xF7, plus the
 * 3-operand IMUL forms 0x69/0x6B added per the recorded open-question
 * decision (spec §9). Division-by-zero and overflow both raise #DE per
 * spec §4.1.
 */
package cpu

import "github.com/openi686/i686emu/emu/faults"

const (
	g3Test = 0
	g3Not  = 2
	g3Neg  = 3
	g3Mul  = 4
	g3Imul = 5
	g3Div  = 6
	g3Idiv = 7
)

func (c *CPU) execGroup3(width int) error {
	op, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, width)
	if err != nil {
		return err
	}

	switch op {
	case g3Test, 1: // /1 is an alias for TEST
		imm, err := c.fetchImm(width)
		if err != nil {
			return err
		}
		c.logicFlags(width, v&imm)
		return nil
	case g3Not:
		return c.writeRM(rm, width, ^v&mask(width))
	case g3Neg:
		result := c.negFlags(width, v)
		return c.writeRM(rm, width, result)
	case g3Mul:
		return c.execMulUnsigned(width, v)
	case g3Imul:
		return c.execMulSigned(width, v)
	case g3Div:
		return c.execDivUnsigned(width, v)
	default: // g3Idiv
		return c.execDivSigned(width, v)
	}
}

func (c *CPU) execMulUnsigned(width int, src uint32) error {
	switch width {
	case 8:
		result := uint32(uint8(c.EAX())) * uint32(uint8(src))
		c.setReg16(0, uint16(result))
		overflow := result > 0xFF
		c.SetCF(overflow)
		c.SetOF(overflow)
	case 16:
		result := uint32(uint16(c.EAX())) * uint32(uint16(src))
		c.setReg16(regEAX, uint16(result))
		c.setReg16(regEDX, uint16(result>>16))
		overflow := result > 0xFFFF
		c.SetCF(overflow)
		c.SetOF(overflow)
	default:
		wide := uint64(c.EAX()) * uint64(src)
		c.SetEAX(uint32(wide))
		c.setReg32(regEDX, uint32(wide>>32))
		overflow := wide > 0xFFFFFFFF
		c.SetCF(overflow)
		c.SetOF(overflow)
	}
	return nil
}

func (c *CPU) execMulSigned(width int, src uint32) error {
	switch width {
	case 8:
		result := int32(int8(c.EAX())) * int32(int8(src))
		c.setReg16(0, uint16(uint32(result)))
		overflow := result < -128 || result > 127
		c.SetCF(overflow)
		c.SetOF(overflow)
	case 16:
		result := int32(int16(c.EAX())) * int32(int16(src))
		c.setReg16(regEAX, uint16(result))
		c.setReg16(regEDX, uint16(result>>16))
		overflow := result < -32768 || result > 32767
		c.SetCF(overflow)
		c.SetOF(overflow)
	default:
		wide := int64(int32(c.EAX())) * int64(int32(src))
		c.SetEAX(uint32(wide))
		c.setReg32(regEDX, uint32(wide>>32))
		overflow := wide < -0x80000000 || wide > 0x7FFFFFFF
		c.SetCF(overflow)
		c.SetOF(overflow)
	}
	return nil
}

func (c *CPU) execDivUnsigned(width int, src uint32) error {
	switch width {
	case 8:
		divisor := uint16(uint8(src))
		if divisor == 0 {
			return faults.DivideError()
		}
		dividend := uint16(c.EAX())
		q, r := dividend/divisor, dividend%divisor
		if q > 0xFF {
			return faults.DivideError()
		}
		c.setReg8(0, uint8(q))
		c.setReg8(4, uint8(r))
	case 16:
		divisor := uint32(uint16(src))
		if divisor == 0 {
			return faults.DivideError()
		}
		dividend := uint32(uint16(c.EAX())) | uint32(uint16(c.EDX()))<<16
		q, r := dividend/divisor, dividend%divisor
		if q > 0xFFFF {
			return faults.DivideError()
		}
		c.setReg16(regEAX, uint16(q))
		c.setReg16(regEDX, uint16(r))
	default:
		divisor := uint64(src)
		if divisor == 0 {
			return faults.DivideError()
		}
		dividend := uint64(c.EAX()) | uint64(c.reg32(regEDX))<<32
		q, r := dividend/divisor, dividend%divisor
		if q > 0xFFFFFFFF {
			return faults.DivideError()
		}
		c.SetEAX(uint32(q))
		c.setReg32(regEDX, uint32(r))
	}
	return nil
}

func (c *CPU) execDivSigned(width int, src uint32) error {
	switch width {
	case 8:
		divisor := int16(int8(src))
		if divisor == 0 {
			return faults.DivideError()
		}
		dividend := int16(uint16(c.EAX()))
		q, r := dividend/divisor, dividend%divisor
		if q > 127 || q < -128 {
			return faults.DivideError()
		}
		c.setReg8(0, uint8(int8(q)))
		c.setReg8(4, uint8(int8(r)))
	case 16:
		divisor := int32(int16(src))
		if divisor == 0 {
			return faults.DivideError()
		}
		dividend := int32(uint32(uint16(c.EAX())) | uint32(uint16(c.EDX()))<<16)
		q, r := dividend/divisor, dividend%divisor
		if q > 32767 || q < -32768 {
			return faults.DivideError()
		}
		c.setReg16(regEAX, uint16(int16(q)))
		c.setReg16(regEDX, uint16(int16(r)))
	default:
		divisor := int64(int32(src))
		if divisor == 0 {
			return faults.DivideError()
		}
		dividend := int64(uint64(c.EAX()) | uint64(c.reg32(regEDX))<<32)
		q, r := dividend/divisor, dividend%divisor
		if q > 0x7FFFFFFF || q < -0x80000000 {
			return faults.DivideError()
		}
		c.SetEAX(uint32(int32(q)))
		c.setReg32(regEDX, uint32(int32(r)))
	}
	return nil
}

// execIMUL3 implements the 3-operand IMUL forms 0x69 (imm32/16) and 0x6B
// (imm8 sign-extended), added per the recorded open-question decision.
func (c *CPU) execIMUL3(width int, immWidth int, signExtendImm bool) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	rmVal, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	var imm uint32
	if signExtendImm {
		imm, err = c.fetchImm8Sext(width)
	} else {
		imm, err = c.fetchImm(immWidth)
	}
	if err != nil {
		return err
	}

	var wide int64
	switch width {
	case 16:
		wide = int64(int16(rmVal)) * int64(int16(imm))
	default:
		wide = int64(int32(rmVal)) * int64(int32(imm))
	}
	result := uint32(wide) & mask(width)
	c.setRegByWidth(reg, width, result)

	var overflow bool
	if width == 16 {
		overflow = wide < -32768 || wide > 32767
	} else {
		overflow = wide < -0x80000000 || wide > 0x7FFFFFFF
	}
	c.SetCF(overflow)
	c.SetOF(overflow)
	return nil
}
