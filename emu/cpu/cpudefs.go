/*
 * i686emu - CPU register file and core type definitions
 *
 * Adapted from rcornwell/S370's emu/cpu/cpudefs.go: a single struct owns
 * all architectural state, plus a [256]func(*CPU) opcode dispatch table
 * built from method values, the way the teacher builds
 * table [256]func(*stepInfo) uint16. The register layout and flag-bit
 * naming additionally draw on IntuitionAmiga-IntuitionEngine's cpu_x86.go.
 */
package cpu

import (
	"github.com/openi686/i686emu/emu/event"
	"github.com/openi686/i686emu/emu/ioport"
	"github.com/openi686/i686emu/emu/memory"
)

// Mode is the CPU's current operating mode (C10).
type Mode int

const (
	ModeReal Mode = iota
	ModeProtected
	ModeVM86
)

// Segment register indices, stable across the life of the CPU (spec §9).
const (
	SegES = 0
	SegCS = 1
	SegSS = 2
	SegDS = 3
	SegFS = 4
	SegGS = 5
)

// EFLAGS bit positions.
const (
	FlagCF   = 1 << 0
	flagRes1 = 1 << 1 // always set on serialization
	FlagPF   = 1 << 2
	FlagAF   = 1 << 4
	FlagZF   = 1 << 6
	FlagSF   = 1 << 7
	FlagTF   = 1 << 8
	FlagIF   = 1 << 9
	FlagDF   = 1 << 10
	FlagOF   = 1 << 11
	FlagIOPL = 3 << 12
	FlagNT   = 1 << 14
	FlagRF   = 1 << 16
	FlagVM   = 1 << 17
	FlagAC   = 1 << 18
	FlagVIF  = 1 << 19
	FlagVIP  = 1 << 20
	FlagID   = 1 << 21
)

// CR0 bits.
const (
	CR0PE = 1 << 0
	CR0MP = 1 << 1
	CR0EM = 1 << 2
	CR0TS = 1 << 3
	CR0ET = 1 << 4
	CR0NE = 1 << 5
	CR0WP = 1 << 16
	CR0AM = 1 << 18
	CR0NW = 1 << 29
	CR0CD = 1 << 30
	CR0PG = 1 << 31
)

// CR4 bits.
const (
	CR4VME = 1 << 0
	CR4PVI = 1 << 1
	CR4TSD = 1 << 2
	CR4DE  = 1 << 3
	CR4PSE = 1 << 4
	CR4PAE = 1 << 5
)

// SYSENTER MSR indices.
const (
	MSRSysenterCS  = 0x174
	MSRSysenterESP = 0x175
	MSRSysenterEIP = 0x176
)

// descriptor is a parsed segment descriptor, cached per segment register.
type descriptor struct {
	base   uint32
	limit  uint32 // effective limit, granularity already applied
	access uint8
	flags  uint8
	valid  bool // false for a null selector
}

// dtr holds a descriptor-table register (GDTR/IDTR): base + limit.
type dtr struct {
	base  uint32
	limit uint16
}

// histEntry is one retired-instruction record in the diagnostic ring (C11).
type histEntry struct {
	cs      uint16
	eip     uint32
	opcode  uint8
	opcode2 uint8
	twoByte bool
}

const historyDepth = 32

// prefixState is the per-instruction scratch record (C7).
type prefixState struct {
	opSize   bool // 0x66
	addrSize bool // 0x67
	segOver  int  // -1 = none, else SegES..SegGS
	repKind  int  // 0 none, 1 REP/REPE, 2 REPNE
	lock     bool
}

const (
	repNone = 0
	repRep  = 1
	repNE   = 2
)

// CPU is the i686 architectural state machine (C1-C11 combined into one
// struct, the way the teacher's cpuState owns PC/regs/cregs/flags/PSW
// bits in a single place).
type CPU struct {
	regs [8]uint32 // EAX,ECX,EDX,EBX,ESP,EBP,ESI,EDI order (Intel reg encoding)
	eip  uint32

	segSel [6]uint16     // raw selectors, indexed by SegXX
	segCache [6]descriptor

	eflags uint32

	cr0, cr2, cr3, cr4 uint32
	gdtr, idtr         dtr
	ldtr, tr           uint16

	sysenterCS, sysenterESP, sysenterEIP uint32

	mode   Mode
	halted bool

	prefix prefixState

	history    [historyDepth]histEntry
	historyIdx int

	cycles uint64

	mem  memory.Port
	io   ioport.Bus
	irqs *event.Queue

	pendingIRQ     bool
	pendingVector  int

	baseOps     [256]func(*CPU) error
	extendedOps [256]func(*CPU) error

	// scratch decoded per-instruction, valid only during dispatch of the
	// opcode that set them
	modrmByte   uint8
	modrmLoaded bool
	sibByte     uint8
	sibLoaded   bool
	curCS       uint16
	curEIP      uint32
}

// regIndex maps the Intel register encoding (0-7) to GPR storage.
const (
	regEAX = 0
	regECX = 1
	regEDX = 2
	regEBX = 3
	regESP = 4
	regEBP = 5
	regESI = 6
	regEDI = 7
)

// NewCPU constructs a CPU wired to the given memory port and I/O bus. Per
// spec §9 ("no process-wide singleton") all state lives in the returned
// value; callers own its lifetime.
func NewCPU(mem memory.Port, io ioport.Bus) *CPU {
	c := &CPU{mem: mem, io: io, irqs: event.NewQueue()}
	c.initBaseOps()
	c.initExtendedOps()
	c.Reset(0, 0)
	return c
}

// Reset reinitializes registers, flags, system registers, prefix state,
// segment cache, and the instruction history ring in a single call (spec
// §5, §8 invariant 10).
func (c *CPU) Reset(cs uint16, ip uint32) {
	c.regs = [8]uint32{}
	c.eip = ip
	c.segSel = [6]uint16{}
	c.segCache = [6]descriptor{}
	c.segSel[SegCS] = cs
	c.segCache[SegCS] = descriptor{base: uint32(cs) << 4, limit: 0xFFFF, valid: true}
	c.eflags = flagRes1
	c.cr0 = CR0ET
	c.cr2, c.cr3, c.cr4 = 0, 0, 0
	c.gdtr, c.idtr = dtr{}, dtr{}
	c.ldtr, c.tr = 0, 0
	c.sysenterCS, c.sysenterESP, c.sysenterEIP = 0, 0, 0
	c.mode = ModeReal
	c.halted = false
	c.prefix = prefixState{segOver: -1}
	c.history = [historyDepth]histEntry{}
	c.historyIdx = 0
	c.cycles = 0
	c.pendingIRQ = false
}

// Halted reports whether HLT or a triple fault has terminated execution.
func (c *CPU) Halted() bool { return c.halted }

// Cycles returns the monotonically increasing retired-instruction counter,
// used as the source for RDTSC.
func (c *CPU) Cycles() uint64 { return c.cycles }
