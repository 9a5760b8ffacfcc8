/*
 * i686emu - Privileged/system instruction family (C8)
 *
 * LGDT/LIDT/SGDT/SIDT, LLDT/SLDT/LTR/STR, SMSW/LMSW, MOV CR, CPUID, RDTSC,
 * RDMSR/WRMSR, SYSENTER/SYSEXIT, INT/IRET, HLT, INVLPG/WBINVD/INVD.
 * Grounded on rcornwell/S370's cpu_system.go privileged-instruction split
 * (a dedicated file for the supervisor-only opcode family, separate from
 * the general ALU/data executors).
 */
package cpu

import "github.com/openi686/i686emu/emu/faults"

// execLGDT/execLIDT load a 6-byte pseudo-descriptor (limit:16, base:32)
// from the decoded r/m memory operand into GDTR/IDTR.
func (c *CPU) execLGDT() error { return c.loadDTR(&c.gdtr) }
func (c *CPU) execLIDT() error { return c.loadDTR(&c.idtr) }

func (c *CPU) loadDTR(d *dtr) error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	if rm.isReg {
		return faults.InvalidOpcode()
	}
	limit, err := c.readWordSeg(rm.seg, rm.offset)
	if err != nil {
		return err
	}
	base, err := c.readDwordSeg(rm.seg, rm.offset+2)
	if err != nil {
		return err
	}
	d.limit = limit
	d.base = base
	return nil
}

func (c *CPU) execSGDT() error { return c.storeDTR(c.gdtr) }
func (c *CPU) execSIDT() error { return c.storeDTR(c.idtr) }

func (c *CPU) storeDTR(d dtr) error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	if rm.isReg {
		return faults.InvalidOpcode()
	}
	if err := c.writeWordSeg(rm.seg, rm.offset, d.limit); err != nil {
		return err
	}
	return c.writeDwordSeg(rm.seg, rm.offset+2, d.base)
}

func (c *CPU) execLLDT() error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, 16)
	if err != nil {
		return err
	}
	c.ldtr = uint16(v)
	return nil
}

func (c *CPU) execSLDT() error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	return c.writeRM(rm, 16, uint32(c.ldtr))
}

func (c *CPU) execLTR() error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, 16)
	if err != nil {
		return err
	}
	c.tr = uint16(v)
	return nil
}

func (c *CPU) execSTR() error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	return c.writeRM(rm, 16, uint32(c.tr))
}

// execSMSW/execLMSW read/write the low 16 bits of CR0 (legacy 80286-era
// status word operations). LMSW can set PE but never clears it.
func (c *CPU) execSMSW() error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	return c.writeRM(rm, 16, c.cr0&0xFFFF)
}

func (c *CPU) execLMSW() error {
	_, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, 16)
	if err != nil {
		return err
	}
	c.cr0 = (c.cr0 &^ 0xFFFF) | (v & 0xFFFF) | (c.cr0 & CR0PE)
	c.syncMode()
	return nil
}

// execMovToCR/execMovFromCR implement 0x0F 0x22/0x20: the /reg field picks
// CR0/CR2/CR3/CR4, the r/m field (always a register in this encoding) the
// GPR.
func (c *CPU) execMovFromCR() error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	if !rm.isReg {
		return faults.InvalidOpcode()
	}
	c.setReg32(rm.reg, c.readCR(reg))
	return nil
}

func (c *CPU) execMovToCR() error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	if !rm.isReg {
		return faults.InvalidOpcode()
	}
	c.writeCR(reg, c.reg32(rm.reg))
	return nil
}

func (c *CPU) readCR(idx int) uint32 {
	switch idx {
	case 0:
		return c.cr0
	case 2:
		return c.cr2
	case 3:
		return c.cr3
	default:
		return c.cr4
	}
}

func (c *CPU) writeCR(idx int, v uint32) {
	switch idx {
	case 0:
		c.cr0 = v
		c.syncMode()
	case 2:
		c.cr2 = v
	case 3:
		c.cr3 = v
	default:
		c.cr4 = v
	}
}

// execCPUID implements a minimal CPUID: leaf 0 returns a vendor string and
// max leaf, leaf 1 returns a feature bitmask advertising FPU/PSE/TSC/MSR,
// and every other leaf returns zeros, matching spec §4.7's "report the
// feature bits this core actually implements" guidance.
func (c *CPU) execCPUID() error {
	switch c.EAX() {
	case 0:
		c.SetEAX(1)
		c.setReg32(regEBX, 0x756e6547) // "Genu"
		c.setReg32(regEDX, 0x49656e69) // "ineI"
		c.setReg32(regECX, 0x6c65746e) // "ntel"
	case 1:
		c.SetEAX(0x000006A0)
		c.setReg32(regEBX, 0)
		c.setReg32(regECX, 0)
		c.setReg32(regEDX, 0x00000001|1<<3|1<<4|1<<5) // FPU|PSE|TSC|MSR family bits
	default:
		c.SetEAX(0)
		c.setReg32(regEBX, 0)
		c.setReg32(regECX, 0)
		c.setReg32(regEDX, 0)
	}
	return nil
}

func (c *CPU) execRDTSC() error {
	c.SetEAX(uint32(c.cycles))
	c.setReg32(regEDX, uint32(c.cycles>>32))
	return nil
}

func (c *CPU) execRDMSR() error {
	switch c.ECX() {
	case MSRSysenterCS:
		c.SetEAX(c.sysenterCS)
		c.setReg32(regEDX, 0)
	case MSRSysenterESP:
		c.SetEAX(c.sysenterESP)
		c.setReg32(regEDX, 0)
	case MSRSysenterEIP:
		c.SetEAX(c.sysenterEIP)
		c.setReg32(regEDX, 0)
	default:
		c.SetEAX(0)
		c.setReg32(regEDX, 0)
	}
	return nil
}

func (c *CPU) execWRMSR() error {
	switch c.ECX() {
	case MSRSysenterCS:
		c.sysenterCS = c.EAX()
	case MSRSysenterESP:
		c.sysenterESP = c.EAX()
	case MSRSysenterEIP:
		c.sysenterEIP = c.EAX()
	}
	return nil
}

// execSYSENTER/execSYSEXIT implement the fast system-call pair (spec §4.7,
// §8 invariant 8): SYSENTER loads CS and SS (RPL 0) from SYSENTER_CS and
// SYSENTER_CS+8, reading both descriptors from the GDT, takes EIP/ESP from
// the MSRs and clears VM and IF; SYSEXIT reloads CS/SS by adding the documented RPL
// offsets to SYSENTER_CS, a literal transcription of the recorded
// open-question decision rather than a generic "set RPL=3" shortcut.
func (c *CPU) execSYSENTER() error {
	c.mode = ModeProtected
	c.eflags &^= FlagVM
	if err := c.loadSegment(SegCS, uint16(c.sysenterCS&0xFFFC)); err != nil {
		return err
	}
	if err := c.loadSegment(SegSS, uint16((c.sysenterCS+8)&0xFFFC)); err != nil {
		return err
	}
	c.SetESP(c.sysenterESP)
	c.eip = c.sysenterEIP
	c.SetIF(false)
	return nil
}

func (c *CPU) execSYSEXIT() error {
	if err := c.loadSegment(SegCS, uint16((c.sysenterCS+16)|3)); err != nil {
		return err
	}
	if err := c.loadSegment(SegSS, uint16((c.sysenterCS+24)|3)); err != nil {
		return err
	}
	c.SetESP(c.ECX())
	c.eip = c.EDX()
	return nil
}

// execINT implements the software-interrupt opcode (0xCD ib), dispatching
// through the shared interrupt/exception path (C9).
func (c *CPU) execINT() error {
	vec, err := c.fetchByte()
	if err != nil {
		return err
	}
	return c.dispatchInterrupt(int(vec), false, 0)
}

// execIRET pops the saved frame and restores CS:EIP/EFLAGS (spec §4.8).
func (c *CPU) execIRET() error {
	return c.iret()
}

func (c *CPU) execHLT() error {
	c.halted = true
	return nil
}

func (c *CPU) execINVLPG() error {
	_, _, err := c.decodeModRM()
	return err
}

func (c *CPU) execWBINVD() error { return nil }
func (c *CPU) execCLTS() error   { c.cr0 &^= CR0TS; return nil }
