/*
 * i686emu - Segment and gate descriptor parsing (C3)
 *
 * Bit-exact parser over raw 8-byte arrays per spec §4.2; modeled as a
 * tagged record with an explicit parser rather than relying on host
 * bit-field layouts (spec §9 "Descriptor and gate records").
 */
package cpu

// Access byte bits (byte 5 of a segment descriptor).
const (
	accPresent   = 1 << 7
	accDPLShift  = 5
	accDPLMask   = 3 << accDPLShift
	accS         = 1 << 4 // 1 = code/data, 0 = system (gate)
	accExecutable = 1 << 3
	accDC        = 1 << 2 // direction/conforming
	accRW        = 1 << 1 // readable (code) / writable (data)
	accAccessed  = 1 << 0
)

// Flags nibble bits (high nibble of byte 6).
const (
	flagG  = 1 << 3
	flagDB = 1 << 2
	flagL  = 1 << 1
)

// parseDescriptor parses an 8-byte raw segment descriptor per spec §4.2.
func parseDescriptor(raw [8]byte) descriptor {
	limitLow := uint32(raw[0]) | uint32(raw[1])<<8
	baseLow := uint32(raw[2]) | uint32(raw[3])<<8 | uint32(raw[4])<<16
	access := raw[5]
	flagsNibble := raw[6] >> 4
	limitHigh := uint32(raw[6] & 0x0F)
	baseHigh := uint32(raw[7])

	limit := limitLow | limitHigh<<16
	base := baseLow | baseHigh<<24

	d := descriptor{base: base, access: access, flags: flagsNibble, valid: true}
	if flagsNibble&flagG != 0 {
		d.limit = (limit << 12) | 0xFFF
	} else {
		d.limit = limit
	}
	return d
}

func (d descriptor) isPresent() bool     { return d.access&accPresent != 0 }
func (d descriptor) isSystem() bool      { return d.access&accS == 0 }
func (d descriptor) isCode() bool        { return d.access&accS != 0 && d.access&accExecutable != 0 }
func (d descriptor) isData() bool        { return d.access&accS != 0 && d.access&accExecutable == 0 }
func (d descriptor) isReadable() bool    { return d.isCode() && d.access&accRW != 0 }
func (d descriptor) isWritable() bool    { return d.isData() && d.access&accRW != 0 }
func (d descriptor) dpl() uint8          { return (d.access & accDPLMask) >> accDPLShift }

// Gate descriptor types, encoded in the low 4 bits of the access byte for
// a system descriptor (type field of the descriptor).
const (
	gateTypeTask      = 0x5
	gateTypeInterrupt = 0xE // 32-bit interrupt gate
	gateTypeTrap      = 0xF // 32-bit trap gate
	gateTypeCall      = 0xC
)

type gateDescriptor struct {
	offset   uint32
	selector uint16
	gtype    int
	dpl      uint8
	present  bool
}

// parseGate parses an 8-byte gate descriptor (IDT entry): offset bits
//0-15 in bytes 0-1, selector in bytes 2-3, type/DPL/present in byte 5,
// offset bits 16-31 in bytes 6-7.
func parseGate(raw [8]byte) gateDescriptor {
	offsetLow := uint32(raw[0]) | uint32(raw[1])<<8
	selector := uint16(raw[2]) | uint16(raw[3])<<8
	access := raw[5]
	offsetHigh := uint32(raw[6]) | uint32(raw[7])<<8

	return gateDescriptor{
		offset:   offsetLow | offsetHigh<<16,
		selector: selector,
		gtype:    int(access & 0x0F),
		dpl:      (access & accDPLMask) >> accDPLShift,
		present:  access&accPresent != 0,
	}
}

func (g gateDescriptor) isInterruptGate() bool { return g.gtype == gateTypeInterrupt }
func (g gateDescriptor) isTrapGate() bool      { return g.gtype == gateTypeTrap }
