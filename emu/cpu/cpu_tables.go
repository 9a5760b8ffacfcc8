/*
 * i686emu - Opcode dispatch tables (C8 wiring)
 *
 * initBaseOps/initExtendedOps populate [256]func(*CPU) error tables from
 * method values and small closures, the way
 * IntuitionAmiga-IntuitionEngine's cpu_x86.go initBaseOps/initExtendedOps
 * build their own dispatch arrays -- register-indexed opcode runs
 * (0x40-0x4F, 0x50-0x5F, 0xB0-0xBF, ...) are filled with a loop rather
 * than sixteen near-identical literal entries.
 */
package cpu

import "github.com/openi686/i686emu/emu/faults"

func unimplemented(c *CPU) error { return faults.InvalidOpcode() }

func (c *CPU) initBaseOps() {
	for i := range c.baseOps {
		c.baseOps[i] = unimplemented
	}

	// Group-1 ALU families: 00-3D, direction bit and width bit per Intel
	// encoding (op = (opcode>>3)&7).
	aluBase := []uint8{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38}
	for i, base := range aluBase {
		op := i
		c.baseOps[base+0] = func(c *CPU) error { return c.execALURM(op, 8, false) }
		c.baseOps[base+1] = func(c *CPU) error { return c.execALURM(op, c.operandWidth(), false) }
		c.baseOps[base+2] = func(c *CPU) error { return c.execALURM(op, 8, true) }
		c.baseOps[base+3] = func(c *CPU) error { return c.execALURM(op, c.operandWidth(), true) }
		c.baseOps[base+4] = func(c *CPU) error { return c.execALUAcc(op, 8) }
		c.baseOps[base+5] = func(c *CPU) error { return c.execALUAcc(op, c.operandWidth()) }
	}
	c.baseOps[0x27] = (*CPU).execDAA
	c.baseOps[0x2F] = (*CPU).execDAS

	// INC/DEC short forms 0x40-0x4F.
	for i := 0; i < 8; i++ {
		idx := i
		c.baseOps[0x40+idx] = func(c *CPU) error { c.incDecReg(idx, c.operandWidth(), false); return nil }
		c.baseOps[0x48+idx] = func(c *CPU) error { c.incDecReg(idx, c.operandWidth(), true); return nil }
		c.baseOps[0x50+idx] = func(c *CPU) error { return c.execPushReg(idx, c.operandWidth()) }
		c.baseOps[0x58+idx] = func(c *CPU) error { return c.execPopReg(idx, c.operandWidth()) }
		c.baseOps[0x90+idx] = func(c *CPU) error { c.execXCHGAcc(idx, c.operandWidth()); return nil }
		c.baseOps[0xB0+idx] = func(c *CPU) error { return c.execMovImmReg(idx, 8) }
		c.baseOps[0xB8+idx] = func(c *CPU) error { return c.execMovImmReg(idx, c.operandWidth()) }
	}

	c.baseOps[0x68] = func(c *CPU) error { return c.execPushImm(c.operandWidth(), c.operandWidth(), false) }
	c.baseOps[0x69] = func(c *CPU) error { return c.execIMUL3(c.operandWidth(), c.operandWidth(), false) }
	c.baseOps[0x6A] = func(c *CPU) error { return c.execPushImm(c.operandWidth(), 8, true) }
	c.baseOps[0x6B] = func(c *CPU) error { return c.execIMUL3(c.operandWidth(), 8, true) }

	for cc := 0; cc < 16; cc++ {
		ccv := cc
		c.baseOps[0x70+ccv] = func(c *CPU) error { return c.execJccShort(ccv) }
	}

	c.baseOps[0x80] = func(c *CPU) error { return c.execGroup1(8, 8, false) }
	c.baseOps[0x81] = func(c *CPU) error { w := c.operandWidth(); return c.execGroup1(w, w, false) }
	c.baseOps[0x82] = func(c *CPU) error { return c.execGroup1(8, 8, false) } // alias of 0x80
	c.baseOps[0x83] = func(c *CPU) error { return c.execGroup1(c.operandWidth(), 8, true) }
	c.baseOps[0x84] = func(c *CPU) error { return c.execTestRM(8) }
	c.baseOps[0x85] = func(c *CPU) error { return c.execTestRM(c.operandWidth()) }
	c.baseOps[0x86] = func(c *CPU) error { return c.execXCHG(8) }
	c.baseOps[0x87] = func(c *CPU) error { return c.execXCHG(c.operandWidth()) }
	c.baseOps[0x88] = func(c *CPU) error { return c.execMovRM(8, false) }
	c.baseOps[0x89] = func(c *CPU) error { return c.execMovRM(c.operandWidth(), false) }
	c.baseOps[0x8A] = func(c *CPU) error { return c.execMovRM(8, true) }
	c.baseOps[0x8B] = func(c *CPU) error { return c.execMovRM(c.operandWidth(), true) }
	c.baseOps[0x8C] = (*CPU).execMovFromSreg
	c.baseOps[0x8D] = func(c *CPU) error { return c.execLEA(c.operandWidth()) }
	c.baseOps[0x8E] = (*CPU).execMovToSreg
	c.baseOps[0x8F] = func(c *CPU) error { return c.execPopRM(c.operandWidth()) }

	c.baseOps[0x90] = func(c *CPU) error { return nil } // NOP
	c.baseOps[0x98] = (*CPU).execCBWCWDE
	c.baseOps[0x99] = (*CPU).execCWDCDQ
	c.baseOps[0x9C] = func(c *CPU) error {
		if c.operandWidth() == 16 {
			return c.execPushf16()
		}
		return c.execPushfd()
	}
	c.baseOps[0x9D] = func(c *CPU) error {
		if c.operandWidth() == 16 {
			return c.execPopf16()
		}
		return c.execPopfd()
	}

	c.baseOps[0xA4] = func(c *CPU) error { return c.execMOVS(8) }
	c.baseOps[0xA5] = func(c *CPU) error { return c.execMOVS(c.operandWidth()) }
	c.baseOps[0xA6] = func(c *CPU) error { return c.execCMPS(8) }
	c.baseOps[0xA7] = func(c *CPU) error { return c.execCMPS(c.operandWidth()) }
	c.baseOps[0xA8] = func(c *CPU) error { return c.execALUAcc(aluCmp, 8) }
	c.baseOps[0xA9] = func(c *CPU) error { return c.execALUAcc(aluCmp, c.operandWidth()) }
	c.baseOps[0xAA] = func(c *CPU) error { return c.execSTOS(8) }
	c.baseOps[0xAB] = func(c *CPU) error { return c.execSTOS(c.operandWidth()) }
	c.baseOps[0xAC] = func(c *CPU) error { return c.execLODS(8) }
	c.baseOps[0xAD] = func(c *CPU) error { return c.execLODS(c.operandWidth()) }
	c.baseOps[0xAE] = func(c *CPU) error { return c.execSCAS(8) }
	c.baseOps[0xAF] = func(c *CPU) error { return c.execSCAS(c.operandWidth()) }

	c.baseOps[0xC0] = func(c *CPU) error { return c.execGroup2(8, 0) }
	c.baseOps[0xC1] = func(c *CPU) error { return c.execGroup2(c.operandWidth(), 0) }
	c.baseOps[0xC2] = func(c *CPU) error {
		n, err := c.fetchWord()
		if err != nil {
			return err
		}
		return c.execRetNear(c.operandWidth(), n)
	}
	c.baseOps[0xC3] = func(c *CPU) error { return c.execRetNear(c.operandWidth(), 0) }
	c.baseOps[0xC4] = func(c *CPU) error { return c.execLxS(c.operandWidth(), SegES) }
	c.baseOps[0xC5] = func(c *CPU) error { return c.execLxS(c.operandWidth(), SegDS) }
	c.baseOps[0xC6] = func(c *CPU) error { return c.execMovImmRM(8) }
	c.baseOps[0xC7] = func(c *CPU) error { return c.execMovImmRM(c.operandWidth()) }
	c.baseOps[0xC9] = (*CPU).execLeave
	c.baseOps[0xC8] = (*CPU).execEnter
	c.baseOps[0xCD] = (*CPU).execINT
	c.baseOps[0xCF] = (*CPU).execIRET

	c.baseOps[0xD0] = func(c *CPU) error { return c.execGroup2(8, 1) }
	c.baseOps[0xD1] = func(c *CPU) error { return c.execGroup2(c.operandWidth(), 1) }
	c.baseOps[0xD2] = func(c *CPU) error { return c.execGroup2(8, 2) }
	c.baseOps[0xD3] = func(c *CPU) error { return c.execGroup2(c.operandWidth(), 2) }

	c.baseOps[0xE0] = func(c *CPU) error { return c.execLoop(2) }
	c.baseOps[0xE1] = func(c *CPU) error { return c.execLoop(1) }
	c.baseOps[0xE2] = func(c *CPU) error { return c.execLoop(0) }
	c.baseOps[0xE3] = (*CPU).execJCXZ

	c.baseOps[0xE4] = func(c *CPU) error { return c.execInImm(8) }
	c.baseOps[0xE5] = func(c *CPU) error { return c.execInImm(c.operandWidth()) }
	c.baseOps[0xE6] = func(c *CPU) error { return c.execOutImm(8) }
	c.baseOps[0xE7] = func(c *CPU) error { return c.execOutImm(c.operandWidth()) }
	c.baseOps[0xE9] = func(c *CPU) error { return c.execJmpNear(c.operandWidth()) }
	c.baseOps[0xEB] = (*CPU).execJmpShort
	c.baseOps[0xEC] = func(c *CPU) error { return c.execInDX(8) }
	c.baseOps[0xED] = func(c *CPU) error { return c.execInDX(c.operandWidth()) }
	c.baseOps[0xEE] = func(c *CPU) error { return c.execOutDX(8) }
	c.baseOps[0xEF] = func(c *CPU) error { return c.execOutDX(c.operandWidth()) }

	c.baseOps[0xE8] = func(c *CPU) error { return c.execCallNear(c.operandWidth()) }

	c.baseOps[0xF4] = (*CPU).execHLT
	c.baseOps[0xF5] = func(c *CPU) error { c.SetCF(!c.CF()); return nil }
	c.baseOps[0xF6] = func(c *CPU) error { return c.execGroup3(8) }
	c.baseOps[0xF7] = func(c *CPU) error { return c.execGroup3(c.operandWidth()) }
	c.baseOps[0xF8] = func(c *CPU) error { c.SetCF(false); return nil }
	c.baseOps[0xF9] = func(c *CPU) error { c.SetCF(true); return nil }
	c.baseOps[0xFA] = func(c *CPU) error { c.SetIF(false); return nil }
	c.baseOps[0xFB] = func(c *CPU) error { c.SetIF(true); return nil }
	c.baseOps[0xFC] = func(c *CPU) error { c.SetDF(false); return nil }
	c.baseOps[0xFD] = func(c *CPU) error { c.SetDF(true); return nil }
	c.baseOps[0xFE] = func(c *CPU) error { return c.execGroupFE() }
	c.baseOps[0xFF] = func(c *CPU) error { return c.execGroupFF() }

	c.baseOps[0x0F] = func(c *CPU) error {
		op2, err := c.fetchByte()
		if err != nil {
			return err
		}
		return c.extendedOps[op2](c)
	}
}

func (c *CPU) initExtendedOps() {
	for i := range c.extendedOps {
		c.extendedOps[i] = unimplemented
	}

	c.extendedOps[0x00] = (*CPU).execGroup6
	c.extendedOps[0x01] = (*CPU).execGroup7
	c.extendedOps[0x06] = (*CPU).execCLTS
	c.extendedOps[0x08] = (*CPU).execWBINVD // INVD: the same no-op
	c.extendedOps[0x09] = (*CPU).execWBINVD
	c.extendedOps[0x20] = (*CPU).execMovFromCR
	c.extendedOps[0x22] = (*CPU).execMovToCR

	for cc := 0; cc < 16; cc++ {
		ccv := cc
		c.extendedOps[0x40+ccv] = func(c *CPU) error { return c.execCMOVcc(ccv, c.operandWidth()) }
		c.extendedOps[0x80+ccv] = func(c *CPU) error { return c.execJccNear(ccv, c.operandWidth()) }
		c.extendedOps[0x90+ccv] = func(c *CPU) error { return c.execSETcc(ccv) }
	}

	c.extendedOps[0x30] = (*CPU).execWRMSR
	c.extendedOps[0x31] = (*CPU).execRDTSC
	c.extendedOps[0x32] = (*CPU).execRDMSR
	c.extendedOps[0x34] = (*CPU).execSYSENTER
	c.extendedOps[0x35] = (*CPU).execSYSEXIT

	c.extendedOps[0xA2] = (*CPU).execCPUID
	c.extendedOps[0xA3] = func(c *CPU) error { return c.execBitRM(bitBT, c.operandWidth()) }
	c.extendedOps[0xAB] = func(c *CPU) error { return c.execBitRM(bitBTS, c.operandWidth()) }
	c.extendedOps[0xB3] = func(c *CPU) error { return c.execBitRM(bitBTR, c.operandWidth()) }
	c.extendedOps[0xBB] = func(c *CPU) error { return c.execBitRM(bitBTC, c.operandWidth()) }
	c.extendedOps[0xBA] = func(c *CPU) error { return c.execBitGroup(c.operandWidth()) }
	c.extendedOps[0xBC] = func(c *CPU) error { return c.execBSF(c.operandWidth()) }
	c.extendedOps[0xBD] = func(c *CPU) error { return c.execBSR(c.operandWidth()) }

	c.extendedOps[0xB2] = func(c *CPU) error { return c.execLxS(c.operandWidth(), SegSS) }
	c.extendedOps[0xB4] = func(c *CPU) error { return c.execLxS(c.operandWidth(), SegFS) }
	c.extendedOps[0xB5] = func(c *CPU) error { return c.execLxS(c.operandWidth(), SegGS) }

	c.extendedOps[0xB6] = func(c *CPU) error { return c.execMOVZX(8, c.operandWidth()) }
	c.extendedOps[0xB7] = func(c *CPU) error { return c.execMOVZX(16, 32) }
	c.extendedOps[0xBE] = func(c *CPU) error { return c.execMOVSX(8, c.operandWidth()) }
	c.extendedOps[0xBF] = func(c *CPU) error { return c.execMOVSX(16, 32) }
}

// execTestRM implements 0x84/0x85 (TEST r/m, r): ANDs r/m with r, setting
// logic flags, discarding the result.
func (c *CPU) execTestRM(width int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	rmVal, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	c.logicFlags(width, rmVal&c.regByWidth(reg, width))
	return nil
}

// execCBWCWDE implements 0x98: CBW (AX=sign-extend AL) under a 0x66
// prefix, CWDE (EAX=sign-extend AX) otherwise.
func (c *CPU) execCBWCWDE() error {
	if c.operandWidth() == 16 {
		c.setReg16(regEAX, uint16(int16(int8(c.reg8(0)))))
	} else {
		c.SetEAX(uint32(int32(int16(c.reg16(regEAX)))))
	}
	return nil
}

// execCWDCDQ implements 0x99: CWD (DX:AX) under 0x66, CDQ (EDX:EAX)
// otherwise.
func (c *CPU) execCWDCDQ() error {
	if c.operandWidth() == 16 {
		ax := int16(c.reg16(regEAX))
		if ax < 0 {
			c.setReg16(regEDX, 0xFFFF)
		} else {
			c.setReg16(regEDX, 0)
		}
	} else {
		eax := int32(c.EAX())
		if eax < 0 {
			c.setReg32(regEDX, 0xFFFFFFFF)
		} else {
			c.setReg32(regEDX, 0)
		}
	}
	return nil
}

// execGroupFE implements opcode 0xFE: /0 INC r/m8, /1 DEC r/m8.
func (c *CPU) execGroupFE() error {
	f, err := c.fetchModRM()
	if err != nil {
		return err
	}
	if f.reg == 1 {
		return c.execIncDecRM(8, true)
	}
	return c.execIncDecRM(8, false)
}

// execGroupFF implements opcode 0xFF: /0 INC, /1 DEC, /2 CALL r/m (near
// indirect), /4 JMP r/m (near indirect), /6 PUSH r/m.
func (c *CPU) execGroupFF() error {
	f, err := c.fetchModRM()
	if err != nil {
		return err
	}
	switch f.reg {
	case 0:
		return c.execIncDecRM(c.operandWidth(), false)
	case 1:
		return c.execIncDecRM(c.operandWidth(), true)
	case 2:
		return c.execCallRM(c.operandWidth())
	case 4:
		return c.execJmpRM(c.operandWidth())
	case 6:
		return c.execPushRM(c.operandWidth())
	default:
		return faults.InvalidOpcode()
	}
}

// execGroup6 implements 0x0F 0x00: /0 SLDT, /1 STR, /2 LLDT, /3 LTR.
// VERR/VERW (/4,/5) are not modeled -- this target never runs software
// that probes segment accessibility ahead of use.
func (c *CPU) execGroup6() error {
	f, err := c.fetchModRM()
	if err != nil {
		return err
	}
	switch f.reg {
	case 0:
		return c.execSLDT()
	case 1:
		return c.execSTR()
	case 2:
		return c.execLLDT()
	case 3:
		return c.execLTR()
	default:
		return faults.InvalidOpcode()
	}
}

// execGroup7 implements 0x0F 0x01: /0 SGDT, /1 SIDT, /2 LGDT, /3 LIDT,
// /4 SMSW, /6 LMSW, /7 INVLPG.
func (c *CPU) execGroup7() error {
	f, err := c.fetchModRM()
	if err != nil {
		return err
	}
	switch f.reg {
	case 0:
		return c.execSGDT()
	case 1:
		return c.execSIDT()
	case 2:
		return c.execLGDT()
	case 3:
		return c.execLIDT()
	case 4:
		return c.execSMSW()
	case 6:
		return c.execLMSW()
	case 7:
		return c.execINVLPG()
	default:
		return faults.InvalidOpcode()
	}
}
