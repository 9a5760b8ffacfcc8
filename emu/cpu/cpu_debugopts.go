/*
 * i686emu - Debug option flags
 *
 * Grounded on rcornwell/S370's cpudefs.go debugOption map + package-level
 * debugMsk bitmask: a config-file "DEBUG CPU <name>..." directive flips
 * bits here, and Step() consults them to decide whether to emit a
 * per-instruction trace line (spec's Logging section: "Debug for
 * per-instruction trace when enabled").
 */
package cpu

import (
	"errors"
	"log/slog"
)

const (
	debugTrace = 1 << iota // Log every retired instruction.
	debugFault             // Log every dispatched exception.
)

var debugOption = map[string]int{
	"TRACE": debugTrace,
	"FAULT": debugFault,
}

var debugMsk int

// Debug enables a named debug option for the lifetime of the process,
// called from the config directive handler in config/debugconfig.
func Debug(opt string) error {
	bit, ok := debugOption[opt]
	if !ok {
		return errors.New("unknown CPU debug option: " + opt)
	}
	debugMsk |= bit
	return nil
}

// traceStep logs the instruction about to retire when TRACE is enabled.
func (c *CPU) traceStep(opcode uint8) {
	if debugMsk&debugTrace == 0 {
		return
	}
	slog.Debug("step", "cs", c.curCS, "eip", c.curEIP, "opcode", opcode)
}
