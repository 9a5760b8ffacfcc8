/*
 * i686emu - Instruction prefix and ModR/M/SIB decoding (C7)
 *
 * The prefix loop and effective-address tables are grounded on
 * IntuitionAmiga-IntuitionEngine's cpu_x86.go decodeModRM32/decodeModRM16
 * (the rm==4 SIB special case and the rm==5,mod==0 disp32 special case are
 * carried over verbatim as bit patterns), rehomed onto this CPU's
 * segmented/paged memory accessors instead of a flat byte slice.
 */
package cpu

import "github.com/openi686/i686emu/emu/faults"

// Prefix byte values recognized by consumePrefixes.
const (
	prefixOpSize    = 0x66
	prefixAddrSize  = 0x67
	prefixLock      = 0xF0
	prefixRepne     = 0xF2
	prefixRep       = 0xF3
	prefixSegES     = 0x26
	prefixSegCS     = 0x2E
	prefixSegSS     = 0x36
	prefixSegDS     = 0x3E
	prefixSegFS     = 0x64
	prefixSegGS     = 0x65
)

// consumePrefixes resets per-instruction prefix state and consumes legacy
// prefix bytes, stopping at the first byte that is not a recognized
// prefix (the opcode byte). Bounded at 15 bytes like a real decoder to
// avoid looping forever on a pathological prefix run.
func (c *CPU) consumePrefixes() (uint8, error) {
	c.prefix = prefixState{segOver: -1}
	c.modrmLoaded = false
	c.sibLoaded = false

	for i := 0; i < 15; i++ {
		b, err := c.fetchByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case prefixOpSize:
			c.prefix.opSize = true
		case prefixAddrSize:
			c.prefix.addrSize = true
		case prefixLock:
			c.prefix.lock = true
		case prefixRep:
			c.prefix.repKind = repRep
		case prefixRepne:
			c.prefix.repKind = repNE
		case prefixSegES:
			c.prefix.segOver = SegES
		case prefixSegCS:
			c.prefix.segOver = SegCS
		case prefixSegSS:
			c.prefix.segOver = SegSS
		case prefixSegDS:
			c.prefix.segOver = SegDS
		case prefixSegFS:
			c.prefix.segOver = SegFS
		case prefixSegGS:
			c.prefix.segOver = SegGS
		default:
			return b, nil
		}
	}
	return 0, faults.InvalidOpcode()
}

// operandWidth returns 16 or 32 depending on the default segment attribute
// (assumed 32-bit, i.e. a D/B flat-model segment) XORed with the 0x66
// prefix, per spec §4.5.
func (c *CPU) operandWidth() int {
	if c.prefix.opSize {
		return 16
	}
	return 32
}

// addressWidth mirrors operandWidth for the 0x67 prefix.
func (c *CPU) addressWidth() int {
	if c.prefix.addrSize {
		return 16
	}
	return 32
}

// modrmFields is the decoded mod/reg/rm triple of a ModR/M byte.
type modrmFields struct {
	mod uint8
	reg uint8
	rm  uint8
}

func splitModRM(b uint8) modrmFields {
	return modrmFields{mod: b >> 6, reg: (b >> 3) & 0x7, rm: b & 0x7}
}

// fetchModRM fetches and caches the ModR/M byte for this instruction.
func (c *CPU) fetchModRM() (modrmFields, error) {
	if !c.modrmLoaded {
		b, err := c.fetchByte()
		if err != nil {
			return modrmFields{}, err
		}
		c.modrmByte = b
		c.modrmLoaded = true
	}
	return splitModRM(c.modrmByte), nil
}

// rmOperand names a decoded ModR/M operand: either a register (isReg) or
// a segment:offset memory location.
type rmOperand struct {
	isReg  bool
	reg    int
	seg    int
	offset uint32
}

// decodeModRM fetches the ModR/M byte (and SIB/displacement if present)
// and returns the /reg field plus the decoded r/m operand, honoring the
// current address-size attribute.
func (c *CPU) decodeModRM() (reg int, rm rmOperand, err error) {
	f, err := c.fetchModRM()
	if err != nil {
		return 0, rmOperand{}, err
	}
	reg = int(f.reg)

	if f.mod == 3 {
		return reg, rmOperand{isReg: true, reg: int(f.rm)}, nil
	}

	seg := SegDS
	if c.prefix.segOver >= 0 {
		seg = c.prefix.segOver
	}

	var offset uint32
	if c.addressWidth() == 32 {
		offset, seg, err = c.effectiveAddress32(f, seg)
	} else {
		offset, seg, err = c.effectiveAddress16(f, seg)
	}
	if err != nil {
		return 0, rmOperand{}, err
	}
	return reg, rmOperand{isReg: false, seg: seg, offset: offset}, nil
}

// effectiveAddress32 implements the 32-bit ModR/M/SIB table (spec §4.5),
// including the rm==4 SIB-follows and rm==5,mod==0 disp32-only special
// cases.
func (c *CPU) effectiveAddress32(f modrmFields, seg int) (uint32, int, error) {
	var base uint32
	usedEBPorESP := false

	if f.rm == 4 {
		sb, err := c.fetchByte()
		if err != nil {
			return 0, seg, err
		}
		c.sibByte = sb
		c.sibLoaded = true
		scale := 1 << (sb >> 6)
		index := (sb >> 3) & 0x7
		baseReg := sb & 0x7

		var indexVal uint32
		if index != 4 { // ESP as index means "none"
			indexVal = c.reg32(int(index)) * uint32(scale)
		}

		if baseReg == 5 && f.mod == 0 {
			disp, err := c.fetchDword()
			if err != nil {
				return 0, seg, err
			}
			base = disp + indexVal
		} else {
			if baseReg == regESP || baseReg == regEBP {
				usedEBPorESP = true
			}
			base = c.reg32(int(baseReg)) + indexVal
		}
	} else if f.rm == 5 && f.mod == 0 {
		disp, err := c.fetchDword()
		if err != nil {
			return 0, seg, err
		}
		base = disp
	} else {
		if f.rm == regESP || f.rm == regEBP {
			usedEBPorESP = true
		}
		base = c.reg32(int(f.rm))
	}

	if usedEBPorESP && seg == SegDS && c.prefix.segOver < 0 {
		seg = SegSS
	}

	switch f.mod {
	case 1:
		disp, err := c.fetchByte()
		if err != nil {
			return 0, seg, err
		}
		base += uint32(int32(int8(disp)))
	case 2:
		disp, err := c.fetchDword()
		if err != nil {
			return 0, seg, err
		}
		base += disp
	}
	return base, seg, nil
}

// effectiveAddress16 implements the legacy 16-bit ModR/M table (spec
// §4.5): BX+SI, BX+DI, BP+SI, BP+DI, SI, DI, disp16 (mod==0,rm==6), BX.
func (c *CPU) effectiveAddress16(f modrmFields, seg int) (uint32, int, error) {
	var base uint16
	usesBP := false

	if f.mod == 0 && f.rm == 6 {
		disp, err := c.fetchWord()
		if err != nil {
			return 0, seg, err
		}
		base = disp
	} else {
		switch f.rm {
		case 0:
			base = uint16(c.reg32(regEBX)) + uint16(c.reg32(regESI))
		case 1:
			base = uint16(c.reg32(regEBX)) + uint16(c.reg32(regEDI))
		case 2:
			base = uint16(c.reg32(regEBP)) + uint16(c.reg32(regESI))
			usesBP = true
		case 3:
			base = uint16(c.reg32(regEBP)) + uint16(c.reg32(regEDI))
			usesBP = true
		case 4:
			base = uint16(c.reg32(regESI))
		case 5:
			base = uint16(c.reg32(regEDI))
		case 6:
			base = uint16(c.reg32(regEBP))
			usesBP = true
		case 7:
			base = uint16(c.reg32(regEBX))
		}
	}

	if usesBP && seg == SegDS && c.prefix.segOver < 0 {
		seg = SegSS
	}

	switch f.mod {
	case 1:
		disp, err := c.fetchByte()
		if err != nil {
			return 0, seg, err
		}
		base += uint16(int16(int8(disp)))
	case 2:
		disp, err := c.fetchWord()
		if err != nil {
			return 0, seg, err
		}
		base += disp
	}
	return uint32(base), seg, nil
}

// readRM/writeRM read or write a decoded operand at the given width,
// dispatching on whether it resolved to a register or a memory location.
func (c *CPU) readRM(rm rmOperand, width int) (uint32, error) {
	if rm.isReg {
		return c.regByWidth(rm.reg, width), nil
	}
	return c.readByWidth(rm.seg, rm.offset, width)
}

func (c *CPU) writeRM(rm rmOperand, width int, v uint32) error {
	if rm.isReg {
		c.setRegByWidth(rm.reg, width, v)
		return nil
	}
	return c.writeByWidth(rm.seg, rm.offset, width, v)
}
