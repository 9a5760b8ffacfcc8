/*
 * i686emu - Interrupt and exception dispatch (C9)
 *
 * Real-mode IVT dispatch and protected-mode IDT gate dispatch, grounded on
 * rcornwell/S370's PSW-swap interrupt path (push status, load new status,
 * from a fixed-size low-memory table) reworked onto i686 IDT gates. Per
 * the recorded open-question decision, the pushed CS is always normalized
 * to a 32-bit dword regardless of the gate's operand size, so the pushed
 * frame is always {EIP,CS,EFLAGS[,ErrorCode]} at 4 bytes each.
 */
package cpu

import "github.com/openi686/i686emu/emu/faults"

// dispatchInterrupt vectors to handler for vec, pushing a fault frame.
// hasError/errorCode supply the error code for exceptions defined to push
// one (spec §4.8); software INT (0xCD) and hardware IRQs never push one.
func (c *CPU) dispatchInterrupt(vec int, hasError bool, errorCode uint32) error {
	if c.mode != ModeProtected {
		return c.dispatchReal(vec)
	}
	return c.dispatchProtected(vec, hasError, errorCode)
}

// dispatchReal implements the real-mode IVT: a 4-byte {offset:16,
// segment:16} entry per vector at physical address vec*4.
func (c *CPU) dispatchReal(vec int) error {
	entryAddr := uint32(vec) * 4
	offset, err := c.mem.ReadWord(entryAddr)
	if err != nil {
		return faults.ErrMemory
	}
	segment, err := c.mem.ReadWord(entryAddr + 2)
	if err != nil {
		return faults.ErrMemory
	}

	if err := c.push16(uint16(c.EFLAGS())); err != nil {
		return err
	}
	if err := c.push16(c.segSelector(SegCS)); err != nil {
		return err
	}
	if err := c.push16(uint16(c.eip)); err != nil {
		return err
	}

	c.SetIF(false)
	c.SetTF(false)
	c.segSel[SegCS] = segment
	c.segCache[SegCS] = descriptor{base: uint32(segment) << 4, limit: 0xFFFF, valid: true}
	c.eip = uint32(offset)
	return nil
}

// dispatchProtected implements protected-mode IDT dispatch: fetch an
// 8-byte gate at IDTR.base+vec*8, check its present bit (the gate type is
// not checked), push the exception frame with CS normalized to a dword (recorded
// open-question decision), clear IF for an interrupt gate, and transfer
// control. A gate that is absent or whose vector exceeds IDTR.limit
// escalates to double fault; a double fault raised while dispatching
// another double fault escalates to triple fault (spec §4.8).
func (c *CPU) dispatchProtected(vec int, hasError bool, errorCode uint32) error {
	idx := uint32(vec) * 8
	if idx+7 > uint32(c.idtr.limit) {
		return c.escalate(vec)
	}

	var raw [8]byte
	for i := 0; i < 8; i++ {
		b, err := c.mem.ReadByte(c.idtr.base + idx + uint32(i))
		if err != nil {
			return faults.ErrMemory
		}
		raw[i] = b
	}
	gate := parseGate(raw)
	if !gate.present {
		return c.escalate(vec)
	}

	savedEFLAGS := c.EFLAGS()
	savedCS := uint32(c.segSelector(SegCS))
	savedEIP := c.eip

	if err := c.push32(savedEFLAGS); err != nil {
		return err
	}
	if err := c.push32(savedCS); err != nil {
		return err
	}
	if err := c.push32(savedEIP); err != nil {
		return err
	}
	if hasError {
		if err := c.push32(errorCode); err != nil {
			return err
		}
	}

	if gate.isInterruptGate() {
		c.SetIF(false)
	}
	c.SetTF(false)

	if err := c.loadSegment(SegCS, gate.selector); err != nil {
		return err
	}
	c.eip = gate.offset
	return nil
}

// escalate handles a fault-while-dispatching-a-fault: the first escalation
// becomes a double fault (vector 8); a double fault that itself cannot be
// dispatched becomes an unrecoverable triple fault (spec §4.8).
func (c *CPU) escalate(failedVec int) error {
	if failedVec == faults.VecDoubleFault {
		c.halted = true
		return faults.ErrTripleFault
	}
	return c.dispatchProtected(faults.VecDoubleFault, true, 0)
}

// iret pops the exception frame and restores CS:EIP:EFLAGS (spec §4.8). In
// real mode, or under an operand-size prefix, it pops the 16-bit
// IP/CS/FLAGS frame; otherwise it pops the 32-bit-normalized frame this
// core pushes in protected mode.
func (c *CPU) iret() error {
	if c.mode != ModeProtected || c.prefix.opSize {
		eip, err := c.pop16()
		if err != nil {
			return err
		}
		cs, err := c.pop16()
		if err != nil {
			return err
		}
		flags, err := c.pop16()
		if err != nil {
			return err
		}
		c.eip = uint32(eip)
		if err := c.loadSegment(SegCS, cs); err != nil {
			return err
		}
		c.SetEFLAGS((c.EFLAGS() &^ 0xFFFF) | uint32(flags))
		return nil
	}

	eip, err := c.pop32()
	if err != nil {
		return err
	}
	cs, err := c.pop32()
	if err != nil {
		return err
	}
	flags, err := c.pop32()
	if err != nil {
		return err
	}
	c.eip = eip
	if err := c.loadSegment(SegCS, uint16(cs)); err != nil {
		return err
	}
	c.SetEFLAGS(flags)
	return nil
}

// RaiseException dispatches a CPU-detected fault/trap (as opposed to a
// software INT), part of the spec §6 control surface.
func (c *CPU) RaiseException(e *faults.Exception) error {
	return c.dispatchInterrupt(e.Vector, e.HasCode, e.ErrorCode)
}

// DispatchInterrupt is the external hardware-IRQ entry point named in spec
// §6; hardware interrupts never carry an error code.
func (c *CPU) DispatchInterrupt(vec int) error {
	return c.dispatchInterrupt(vec, false, 0)
}
