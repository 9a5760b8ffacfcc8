/*
 * i686emu - Mode controller (C10)
 *
 * Tracks real/protected/vm86 mode, driven purely by CR0.PE edges and
 * EFLAGS.VM, per spec §4.9. Grounded on rcornwell/S370's cpu.go mode-latch
 * pattern (a single field updated at well-defined points rather than
 * recomputed ad hoc at every instruction).
 */
package cpu

// syncMode re-derives c.mode from CR0.PE and EFLAGS.VM after either is
// written. Called at every CR0 write and at EFLAGS restore points
// (POPF/IRET) so mode is always consistent with the two bits that define
// it (spec §9 "mode is a pure function of CR0.PE and EFLAGS.VM").
func (c *CPU) syncMode() {
	switch {
	case c.cr0&CR0PE == 0:
		c.mode = ModeReal
	case c.eflags&FlagVM != 0:
		c.mode = ModeVM86
	default:
		c.mode = ModeProtected
	}
}

// EnterProtectedMode sets CR0.PE and resyncs mode (spec §6 control
// surface). Existing segment caches are left as-is; software is expected
// to reload segments explicitly after the transition, matching real
// hardware.
func (c *CPU) EnterProtectedMode() {
	c.cr0 |= CR0PE
	c.syncMode()
}

// EnterRealMode clears CR0.PE and resyncs mode.
func (c *CPU) EnterRealMode() {
	c.cr0 &^= CR0PE
	c.syncMode()
}
