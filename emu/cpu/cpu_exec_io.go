/*
 * i686emu - I/O port instruction family (C8)
 *
 * IN/OUT to/from an immediate or DX-indexed port, routed through the I/O
 * port bus (C6 counterpart for port space) per spec §4.7/§6.
 */
package cpu

func (c *CPU) execInImm(width int) error {
	port, err := c.fetchByte()
	if err != nil {
		return err
	}
	return c.doIn(uint16(port), width)
}

func (c *CPU) execInDX(width int) error {
	return c.doIn(uint16(c.EDX()), width)
}

func (c *CPU) execOutImm(width int) error {
	port, err := c.fetchByte()
	if err != nil {
		return err
	}
	return c.doOut(uint16(port), width)
}

func (c *CPU) execOutDX(width int) error {
	return c.doOut(uint16(c.EDX()), width)
}

func (c *CPU) doIn(port uint16, width int) error {
	switch width {
	case 8:
		c.setReg8(0, c.io.InByte(port))
	case 16:
		c.setReg16(regEAX, c.io.InWord(port))
	default:
		c.SetEAX(c.io.InDword(port))
	}
	return nil
}

func (c *CPU) doOut(port uint16, width int) error {
	switch width {
	case 8:
		c.io.OutByte(port, uint8(c.EAX()))
	case 16:
		c.io.OutWord(port, uint16(c.EAX()))
	default:
		c.io.OutDword(port, c.EAX())
	}
	return nil
}
