/*
 * i686emu - Register introspection for diagnostics (C11)
 *
 * GetRegisters/GetRegister/SetRegister give a harness string-keyed access
 * without reaching into CPU internals, grounded on
 * IntuitionAmiga-IntuitionEngine's debug_cpu_x86.go GetRegisters/
 * GetRegister/SetRegister trio, rehomed onto this CPU's register set.
 */
package cpu

import "fmt"

// GetRegisters returns a snapshot of every architectural register keyed by
// name, for the get_state() control-surface operation (spec §6).
func (c *CPU) GetRegisters() map[string]uint32 {
	return map[string]uint32{
		"EAX": c.EAX(), "ECX": c.ECX(), "EDX": c.EDX(), "EBX": c.EBX(),
		"ESP": c.ESP(), "EBP": c.EBP(), "ESI": c.ESI(), "EDI": c.EDI(),
		"EIP": c.EIP(), "EFLAGS": c.EFLAGS(),
		"CS": uint32(c.segSelector(SegCS)), "SS": uint32(c.segSelector(SegSS)),
		"DS": uint32(c.segSelector(SegDS)), "ES": uint32(c.segSelector(SegES)),
		"FS": uint32(c.segSelector(SegFS)), "GS": uint32(c.segSelector(SegGS)),
		"CR0": c.cr0, "CR2": c.cr2, "CR3": c.cr3, "CR4": c.cr4,
	}
}

// GetRegister looks up a single register by name.
func (c *CPU) GetRegister(name string) (uint32, error) {
	regs := c.GetRegisters()
	v, ok := regs[name]
	if !ok {
		return 0, fmt.Errorf("cpu: unknown register %q", name)
	}
	return v, nil
}

// SetRegister writes a single register by name, for harness-driven state
// injection (spec §6).
func (c *CPU) SetRegister(name string, value uint32) error {
	switch name {
	case "EAX":
		c.SetEAX(value)
	case "ECX":
		c.SetECX(value)
	case "EDX":
		c.SetEDX(value)
	case "EBX":
		c.setReg32(regEBX, value)
	case "ESP":
		c.SetESP(value)
	case "EBP":
		c.SetEBP(value)
	case "ESI":
		c.SetESI(value)
	case "EDI":
		c.SetEDI(value)
	case "EIP":
		c.eip = value
	case "EFLAGS":
		c.SetEFLAGS(value)
	case "CR0":
		c.writeCR(0, value)
	case "CR2":
		c.cr2 = value
	case "CR3":
		c.cr3 = value
	case "CR4":
		c.cr4 = value
	default:
		return fmt.Errorf("cpu: unknown register %q", name)
	}
	return nil
}
