package cpu

import (
	"github.com/openi686/i686emu/emu/ioport"
	"github.com/openi686/i686emu/emu/memory"
)

func newFlatMem(size uint32) *memory.Flat { return memory.NewFlat(size) }

func newTestBus() *ioport.SimpleBus { return ioport.NewSimpleBus() }
