/*
 * i686emu - Bit instruction family (C8)
 *
 * BT/BTS/BTR/BTC and BSF/BSR, grounded on spec §4.1's CF/ZF semantics for
 * these opcodes.
 */
package cpu

const (
	bitBT  = 4
	bitBTS = 5
	bitBTR = 6
	bitBTC = 7
)

// execBitGroup implements the 0x0F 0xBA /4-/7 immediate-bit-index forms.
func (c *CPU) execBitGroup(width int) error {
	op, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	imm, err := c.fetchByte()
	if err != nil {
		return err
	}
	bit := uint32(imm) % uint32(width)
	v, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	c.SetCF(v&(1<<bit) != 0)

	switch op {
	case bitBTS:
		return c.writeRM(rm, width, v|(1<<bit))
	case bitBTR:
		return c.writeRM(rm, width, v&^(1<<bit))
	case bitBTC:
		return c.writeRM(rm, width, v^(1<<bit))
	default: // bitBT
		return nil
	}
}

// execBitRM implements the register-indexed 0x0F 0xA3/0xAB/0xB3/0xBB forms
// (BT/BTS/BTR/BTC reg,r/m).
func (c *CPU) execBitRM(op int, width int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	bit := c.regByWidth(reg, width) % uint32(width)
	v, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	c.SetCF(v&(1<<bit) != 0)

	switch op {
	case bitBTS:
		return c.writeRM(rm, width, v|(1<<bit))
	case bitBTR:
		return c.writeRM(rm, width, v&^(1<<bit))
	case bitBTC:
		return c.writeRM(rm, width, v^(1<<bit))
	default:
		return nil
	}
}

// execBSF/execBSR implement bit-scan forward/reverse: ZF=1 and dest
// unmodified when the source is zero.
func (c *CPU) execBSF(width int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	if v == 0 {
		c.SetZF(true)
		return nil
	}
	c.SetZF(false)
	idx := 0
	for (v>>uint(idx))&1 == 0 {
		idx++
	}
	c.setRegByWidth(reg, width, uint32(idx))
	return nil
}

func (c *CPU) execBSR(width int) error {
	reg, rm, err := c.decodeModRM()
	if err != nil {
		return err
	}
	v, err := c.readRM(rm, width)
	if err != nil {
		return err
	}
	if v == 0 {
		c.SetZF(true)
		return nil
	}
	c.SetZF(false)
	idx := width - 1
	for (v>>uint(idx))&1 == 0 {
		idx--
	}
	c.setRegByWidth(reg, width, uint32(idx))
	return nil
}
