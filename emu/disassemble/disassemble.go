/*
 * i686emu - Instruction disassembly for diagnostics
 *
 * Wraps golang.org/x/arch/x86/x86asm the way bobuhiro11-gokvm's
 * machine/debug_amd64.go does for its own debug path: read a handful of
 * raw bytes at the instruction pointer, hand them to x86asm.Decode, and
 * render with x86asm.GNUSyntax. Used by the unhandled-opcode diagnostic
 * dump and by the CLI's -disasm flag (spec §10/§11).
 */
package disassemble

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/openi686/i686emu/emu/memory"
)

// maxInstLen is the longest possible x86 instruction encoding (with
// redundant prefixes); reading this many bytes is always enough for
// x86asm.Decode to either succeed or report a definitive error.
const maxInstLen = 15

// readAt pulls up to maxInstLen bytes starting at addr, stopping early at
// the end of memory rather than faulting -- a short read is fine, since
// x86asm.Decode only needs as many bytes as the instruction actually uses.
func readAt(mem memory.Port, addr uint32) []byte {
	buf := make([]byte, 0, maxInstLen)
	for i := uint32(0); i < maxInstLen; i++ {
		b, err := mem.ReadByte(addr + i)
		if err != nil {
			break
		}
		buf = append(buf, b)
	}
	return buf
}

// DecodeAt decodes the single instruction at addr in the given addressing
// mode (16 or 32, per the decoder's current operand/address-size prefix
// state) and returns its GNU-syntax rendering alongside its length in
// bytes.
func DecodeAt(mem memory.Port, addr uint32, mode int) (x86asm.Inst, string, error) {
	raw := readAt(mem, addr)
	if len(raw) == 0 {
		return x86asm.Inst{}, "", fmt.Errorf("disassemble: no bytes available at %#x", addr)
	}
	inst, err := x86asm.Decode(raw, mode)
	if err != nil {
		return x86asm.Inst{}, "", fmt.Errorf("disassemble: decode at %#x: %w", addr, err)
	}
	return inst, x86asm.GNUSyntax(inst, uint64(addr), nil), nil
}

// Dump renders count consecutive instructions starting at addr, the same
// shape as the -disasm CLI flag and the unhandled-opcode history dump: one
// line per instruction, addr-prefixed, stopping early on the first decode
// failure rather than returning a partial/garbage line.
func Dump(mem memory.Port, addr uint32, count int, mode int) []string {
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		inst, text, err := DecodeAt(mem, addr, mode)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%08x: <decode error: %v>", addr, err))
			break
		}
		lines = append(lines, fmt.Sprintf("%08x: %s", addr, text))
		addr += uint32(inst.Len)
	}
	return lines
}
