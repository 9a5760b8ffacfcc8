/*
 * i686emu - Shift/rotate instruction family, Group 2 (C8)
 *
 * ROL/ROR/RCL/RCR/SHL/SHR/SAR over opcodes 0xC0/0xC1 (imm8 count),
 * 0xD0/0xD1 (count=1), 0xD2/0xD3 (count=CL), grounded on
 * IntuitionAmiga-IntuitionEngine's cpu_x86.go Group-2 switch.
 */
package cpu

const (
	shROL = 0
	shROR = 1
	shRCL = 2
	shRCR = 3
	shSHL = 4
	shSHR = 5
	shSAL = 6 // alias for SHL
	shSAR = 7
)

// shiftOp performs Group-2 shift/rotate op on value v (width bits) by
// count positions, updating flags per spec §4.1/§9 (OF only meaningful for
// count==1; CF/OF undefined conventions for count==0 are left as no-op,
// matching real hardware leaving flags unaffected).
func (c *CPU) shiftOp(op int, v uint32, count uint8, width int) uint32 {
	count &= 0x1F // real hardware masks the count to 5 bits before anything else
	if count == 0 {
		return v
	}
	m := mask(width)
	v &= m
	bits := uint8(width)

	switch op {
	case shROL:
		count %= bits
		for i := uint8(0); i < count; i++ {
			msb := (v >> (bits - 1)) & 1
			v = ((v << 1) | msb) & m
		}
		c.SetCF(v&1 != 0)
		if count == 1 {
			c.SetOF((v>>(bits-1))&1 != (v & 1))
		}
	case shROR:
		count %= bits
		for i := uint8(0); i < count; i++ {
			lsb := v & 1
			v = (v >> 1) | (lsb << (bits - 1))
			v &= m
		}
		c.SetCF((v>>(bits-1))&1 != 0)
		if count == 1 {
			c.SetOF(((v>>(bits-1))&1) != ((v>>(bits-2))&1))
		}
	case shRCL:
		count %= bits + 1
		cf := c.CF()
		for i := uint8(0); i < count; i++ {
			newCF := (v >> (bits - 1)) & 1
			v = ((v << 1) | b2u(cf)) & m
			cf = newCF != 0
		}
		c.SetCF(cf)
	case shRCR:
		count %= bits + 1
		cf := c.CF()
		for i := uint8(0); i < count; i++ {
			newCF := v & 1
			v = (v >> 1) | (b2u(cf) << (bits - 1))
			v &= m
			cf = newCF != 0
		}
		c.SetCF(cf)
	case shSHL, shSAL:
		var lastOut uint32
		for i := uint8(0); i < count; i++ {
			lastOut = (v >> (bits - 1)) & 1
			v = (v << 1) & m
		}
		c.SetCF(lastOut != 0)
		c.SetZF(v == 0)
		c.SetSF(v&signBit(width) != 0)
		c.SetPF(parity(uint8(v)))
		if count == 1 {
			c.SetOF((v>>(bits-1))&1 != lastOut)
		}
	case shSHR:
		srcMSB := (v >> (bits - 1)) & 1
		var lastOut uint32
		for i := uint8(0); i < count; i++ {
			lastOut = v & 1
			v >>= 1
		}
		c.SetCF(lastOut != 0)
		c.SetZF(v == 0)
		c.SetSF(false)
		c.SetPF(parity(uint8(v)))
		if count == 1 {
			c.SetOF(srcMSB != 0)
		}
	case shSAR:
		signed := signExtendTo32(v, width)
		var lastOut uint32
		for i := uint8(0); i < count; i++ {
			lastOut = uint32(signed) & 1
			signed >>= 1
		}
		v = uint32(signed) & m
		c.SetCF(lastOut != 0)
		c.SetZF(v == 0)
		c.SetSF(v&signBit(width) != 0)
		c.SetPF(parity(uint8(v)))
		if count == 1 {
			c.SetOF(false)
		}
	}
	return v
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func signExtendTo32(v uint32, width int) int32 {
	switch width {
	case 8:
		return int32(int8(v))
	case 16:
		return int32(int16(v))
	default:
		return int32(v)
	}
}

func (c *CPU) execGroup2(width int, countKind int) error {
	op, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	var count uint8
	switch countKind {
	case 0: // imm8
		b, err := c.fetchByte()
		if err != nil {
			return err
		}
		count = b
	case 1: // literal 1
		count = 1
	default: // CL
		count = uint8(c.ECX())
	}

	v, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	result := c.shiftOp(op, v, count, width)
	return c.writeRM(rm, width, result)
}
