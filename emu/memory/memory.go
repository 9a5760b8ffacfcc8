/*
 * i686emu - Flat physical memory port
 *
 * Adapted from rcornwell/S370's emu/memory package: a flat bounds-checked
 * byte array with an access/dirty "key" per region, exposed through a
 * narrow interface so the CPU core never depends on the concrete backing
 * store.
 */
package memory

import "github.com/openi686/i686emu/emu/faults"

// Port is the narrow byte/word/dword read-write contract the CPU core
// consumes. Word and dword accesses are little-endian and are not required
// to be atomic across misaligned addresses.
type Port interface {
	ReadByte(addr uint32) (uint8, error)
	ReadWord(addr uint32) (uint16, error)
	ReadDword(addr uint32) (uint32, error)
	WriteByte(addr uint32, v uint8) error
	WriteWord(addr uint32, v uint16) error
	WriteDword(addr uint32, v uint32) error
}

const (
	keyAccess = 0x4
	keyDirty  = 0x2
)

// Flat is a simple flat RAM implementation of Port, sized at construction.
// It tracks an access/dirty key per 2KiB region purely for diagnostics,
// mirroring the teacher's storage-key bookkeeping.
type Flat struct {
	buf  []byte
	key  []uint8
	size uint32
}

// NewFlat allocates size bytes of zeroed memory.
func NewFlat(size uint32) *Flat {
	return &Flat{
		buf:  make([]byte, size),
		key:  make([]uint8, (size/2048)+1),
		size: size,
	}
}

// Size returns the configured memory size in bytes.
func (f *Flat) Size() uint32 { return f.size }

// LoadAt copies data into memory starting at addr, without range checks
// beyond a basic bounds test; used by the CLI harness to place an image.
func (f *Flat) LoadAt(addr uint32, data []byte) error {
	if uint64(addr)+uint64(len(data)) > uint64(f.size) {
		return faults.ErrMemory
	}
	copy(f.buf[addr:], data)
	return nil
}

func (f *Flat) markAccess(addr uint32, dirty bool) {
	idx := addr / 2048
	if int(idx) >= len(f.key) {
		return
	}
	f.key[idx] |= keyAccess
	if dirty {
		f.key[idx] |= keyDirty
	}
}

func (f *Flat) check(addr uint32, width uint32) error {
	if uint64(addr)+uint64(width) > uint64(f.size) {
		return faults.ErrMemory
	}
	return nil
}

func (f *Flat) ReadByte(addr uint32) (uint8, error) {
	if err := f.check(addr, 1); err != nil {
		return 0, err
	}
	f.markAccess(addr, false)
	return f.buf[addr], nil
}

func (f *Flat) ReadWord(addr uint32) (uint16, error) {
	if err := f.check(addr, 2); err != nil {
		return 0, err
	}
	f.markAccess(addr, false)
	return uint16(f.buf[addr]) | uint16(f.buf[addr+1])<<8, nil
}

func (f *Flat) ReadDword(addr uint32) (uint32, error) {
	if err := f.check(addr, 4); err != nil {
		return 0, err
	}
	f.markAccess(addr, false)
	return uint32(f.buf[addr]) | uint32(f.buf[addr+1])<<8 |
		uint32(f.buf[addr+2])<<16 | uint32(f.buf[addr+3])<<24, nil
}

func (f *Flat) WriteByte(addr uint32, v uint8) error {
	if err := f.check(addr, 1); err != nil {
		return err
	}
	f.markAccess(addr, true)
	f.buf[addr] = v
	return nil
}

func (f *Flat) WriteWord(addr uint32, v uint16) error {
	if err := f.check(addr, 2); err != nil {
		return err
	}
	f.markAccess(addr, true)
	f.buf[addr] = byte(v)
	f.buf[addr+1] = byte(v >> 8)
	return nil
}

func (f *Flat) WriteDword(addr uint32, v uint32) error {
	if err := f.check(addr, 4); err != nil {
		return err
	}
	f.markAccess(addr, true)
	f.buf[addr] = byte(v)
	f.buf[addr+1] = byte(v >> 8)
	f.buf[addr+2] = byte(v >> 16)
	f.buf[addr+3] = byte(v >> 24)
	return nil
}

// Key returns the access/dirty key byte for the region containing addr.
func (f *Flat) Key(addr uint32) uint8 {
	idx := addr / 2048
	if int(idx) >= len(f.key) {
		return 0
	}
	return f.key[idx]
}
