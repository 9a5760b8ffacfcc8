/*
 * i686emu - Step driver and control surface (C11)
 *
 * Step() is the single-instruction main loop: consume prefixes, dispatch
 * the opcode, record diagnostics, advance the cycle counter. Grounded on
 * rcornwell/S370's cpu.go Cycle() shape (decode, execute, account, with
 * errors propagated rather than panicking).
 */
package cpu

import (
	"log/slog"

	"github.com/openi686/i686emu/emu/faults"
)

// Step executes exactly one instruction. A halted CPU returns
// faults.ErrHalted immediately rather than silently no-oping, so a driver
// loop notices termination instead of spinning.
func (c *CPU) Step() error {
	if c.halted {
		return faults.ErrHalted
	}

	c.curCS = c.segSelector(SegCS)
	c.curEIP = c.eip

	opcode, err := c.consumePrefixes()
	if err != nil {
		return c.handleFault(err)
	}

	err = c.baseOps[opcode](c)
	if err != nil {
		return c.handleFault(err)
	}

	c.recordHistory(opcode)
	c.traceStep(opcode)
	c.cycles++

	if c.pendingIRQ && c.IF() {
		c.pendingIRQ = false
		if err := c.DispatchInterrupt(c.pendingVector); err != nil {
			return c.handleFault(err)
		}
	}
	return nil
}

// handleFault routes a CPU-detected exception through the interrupt
// dispatcher; any other error (memory/IO/halted) is returned to the
// caller unchanged, per spec §7.
func (c *CPU) handleFault(err error) error {
	if exc, ok := err.(*faults.Exception); ok {
		if debugMsk&debugFault != 0 {
			slog.Warn("exception", "vector", exc.Vector, "cs", c.curCS, "eip", c.curEIP)
		}
		return c.RaiseException(exc)
	}
	return err
}

// recordHistory appends the just-retired instruction to the fixed-capacity
// diagnostic ring (spec §9), overwriting the oldest entry once full.
func (c *CPU) recordHistory(opcode uint8) {
	e := histEntry{cs: c.curCS, eip: c.curEIP, opcode: opcode}
	if opcode == 0x0F {
		e.twoByte = true
	}
	c.history[c.historyIdx] = e
	c.historyIdx = (c.historyIdx + 1) % historyDepth
}

// History returns a copy of the retired-instruction ring, oldest first.
func (c *CPU) History() []histEntry {
	out := make([]histEntry, 0, historyDepth)
	for i := 0; i < historyDepth; i++ {
		idx := (c.historyIdx + i) % historyDepth
		out = append(out, c.history[idx])
	}
	return out
}

// RequestInterrupt queues a hardware interrupt, honored at the next
// instruction boundary once IF is set (spec §6).
func (c *CPU) RequestInterrupt(vec int) {
	c.pendingIRQ = true
	c.pendingVector = vec
}

// GetEffectiveAddress decodes (without executing) a ModR/M operand starting
// at the current CS:EIP, named in spec §6's control surface for
// diagnostics/disassembly use. The decode advances EIP past the bytes it
// consumes, so callers needing EIP unchanged should snapshot/restore it
// themselves.
func (c *CPU) GetEffectiveAddress() (seg int, offset uint32, err error) {
	c.modrmLoaded = false
	c.sibLoaded = false
	_, rm, err := c.decodeModRM()
	if err != nil {
		return 0, 0, err
	}
	return rm.seg, rm.offset, nil
}

// State is the get_state() snapshot named in spec §6: every architectural
// register plus the fields a debugger needs but that aren't plain
// registers (mode, halted, cycle count).
type State struct {
	Registers map[string]uint32
	Mode      Mode
	Halted    bool
	Cycles    uint64
}

// GetState returns a snapshot of the CPU's architectural state.
func (c *CPU) GetState() State {
	return State{
		Registers: c.GetRegisters(),
		Mode:      c.mode,
		Halted:    c.halted,
		Cycles:    c.cycles,
	}
}

// LoadSegmentDescriptor is the spec §6 control-surface entry point onto
// loadSegment, for harnesses that want to preload a segment without
// executing a MOV-to-Sreg instruction.
func (c *CPU) LoadSegmentDescriptor(idx int, selector uint16) error {
	return c.loadSegment(idx, selector)
}
