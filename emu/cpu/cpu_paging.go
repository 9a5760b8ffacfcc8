/*
 * i686emu - Paging unit (C5)
 *
 * Two-level page-table walk adapted from rcornwell/S370's transAddr()
 * shape (table walk returning a fault code rather than panicking) applied
 * to i686 PDE/PTE semantics per spec §4.4.
 */
package cpu

import "github.com/openi686/i686emu/emu/faults"

// PTE/PDE bit layout.
const (
	pteP   = 1 << 0
	pteRW  = 1 << 1
	pteUS  = 1 << 2
	ptePWT = 1 << 3
	ptePCD = 1 << 4
	pteA   = 1 << 5
	pteD   = 1 << 6
	ptePS  = 1 << 7 // PDE only
	pteG   = 1 << 8
)

// accessKind distinguishes read/write/user-supervisor for permission
// checks.
type accessKind struct {
	write bool
	user  bool
}

// translate maps a linear address to a physical address, walking the
// two-level page table when CR0.PG=1 (spec §4.4). It is a no-op when
// paging is disabled.
func (c *CPU) translate(linear uint32, acc accessKind) (uint32, error) {
	if c.cr0&CR0PG == 0 {
		return linear, nil
	}

	pdeAddr := (c.cr3 &^ 0xFFF) + (linear>>22)*4
	pdeRaw, err := c.mem.ReadDword(pdeAddr)
	if err != nil {
		return 0, faults.ErrMemory
	}
	if pdeRaw&pteP == 0 {
		c.cr2 = linear
		return 0, faults.PageFault(pfErrorCode(acc, false))
	}

	wp := c.cr0&CR0WP != 0

	if pdeRaw&ptePS != 0 && c.cr4&CR4PSE != 0 {
		if !checkPerm(pdeRaw, pdeRaw, acc, wp) {
			c.cr2 = linear
			return 0, faults.PageFault(pfErrorCode(acc, true))
		}
		frameBase := pdeRaw & 0xFFC00000
		return frameBase | (linear & 0x3FFFFF), nil
	}

	pteAddr := (pdeRaw&0xFFFFF000)>>12<<12 + ((linear>>12)&0x3FF)*4
	pteRaw, err := c.mem.ReadDword(pteAddr)
	if err != nil {
		return 0, faults.ErrMemory
	}
	if pteRaw&pteP == 0 {
		c.cr2 = linear
		return 0, faults.PageFault(pfErrorCode(acc, false))
	}

	if !checkPerm(pdeRaw, pteRaw, acc, wp) {
		c.cr2 = linear
		return 0, faults.PageFault(pfErrorCode(acc, true))
	}

	frame := pteRaw & 0xFFFFF000
	return frame | (linear & 0xFFF), nil
}

// checkPerm combines PDE and PTE permission bits per spec §4.4:
// rw = pde.rw ∧ pte.rw; us = pde.us ∧ pte.us. A user access to a
// supervisor-only page always faults. A write to a non-writable page
// faults if the access is from user mode, or from supervisor mode with
// CR0.WP set; a supervisor write to a read-only page is permitted when
// WP=0.
func checkPerm(pde, pte uint32, acc accessKind, wp bool) bool {
	rw := pde&pteRW != 0 && pte&pteRW != 0
	us := pde&pteUS != 0 && pte&pteUS != 0

	if acc.user && !us {
		return false
	}
	if acc.write && !rw && (acc.user || wp) {
		return false
	}
	return true
}

// pfErrorCode builds the #PF error code: bit0 present, bit1 write, bit2
// user.
func pfErrorCode(acc accessKind, present bool) uint32 {
	var code uint32
	if present {
		code |= 1
	}
	if acc.write {
		code |= 2
	}
	if acc.user {
		code |= 4
	}
	return code
}
