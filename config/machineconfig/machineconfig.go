/*
 * i686emu - Machine configuration directives.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package machineconfig registers the MEMORY/LOAD/ENTRY/BREAK/LOGLEVEL
// directives a config file carries, the same way config/debugconfig owns
// DEBUG: each directive's create callback stashes its argument in a
// package-level var that main reads once config.LoadConfigFile returns.
package machineconfig

import (
	"errors"
	"strings"

	config "github.com/openi686/i686emu/config/configparser"
)

// Image is one LOAD directive: a file to read into physical memory at Addr.
type Image struct {
	Addr uint32
	Path string
}

// defaultMemory is used when no MEMORY directive appears in the config
// file: enough room for a small real-mode test image without requiring
// every config file to spell out a size.
const defaultMemory = 1 << 20

var (
	MemorySize uint32 = defaultMemory
	Loads      []Image
	EntryPoint uint32
	HasEntry   bool
	BreakAddr  uint32
	HasBreak   bool
	LogLevel   string = "info"
)

func init() {
	config.RegisterModel("MEMORY", config.TypeModel, setMemory)
	config.RegisterModel("LOAD", config.TypeOptions, setLoad)
	config.RegisterOption("ENTRY", setEntry)
	config.RegisterOption("BREAK", setBreak)
	config.RegisterOption("LOGLEVEL", setLogLevel)
}

// setMemory implements "MEMORY <size>": size is a hex byte count.
func setMemory(addr uint32, _ string, _ []config.Option) error {
	if addr == config.NoAddr || addr == 0 {
		return errors.New("MEMORY directive requires a nonzero hex size")
	}
	MemorySize = addr
	return nil
}

// setLoad implements "LOAD <addr> <file>": file is loaded at physical addr.
func setLoad(addr uint32, _ string, options []config.Option) error {
	if addr == config.NoAddr {
		return errors.New("LOAD directive requires a hex load address")
	}
	if len(options) == 0 {
		return errors.New("LOAD directive requires a file name")
	}
	Loads = append(Loads, Image{Addr: addr, Path: options[0].Name})
	return nil
}

// setEntry implements "ENTRY <addr>": the CPU's initial EIP.
func setEntry(addr uint32, _ string, _ []config.Option) error {
	if addr == config.NoAddr {
		return errors.New("ENTRY directive requires a hex address")
	}
	EntryPoint = addr
	HasEntry = true
	return nil
}

// setBreak implements "BREAK <addr>": Step() driver stops once EIP reaches
// this address, for the single-step/breakpoint control surface (spec §6).
func setBreak(addr uint32, _ string, _ []config.Option) error {
	if addr == config.NoAddr {
		return errors.New("BREAK directive requires a hex address")
	}
	BreakAddr = addr
	HasBreak = true
	return nil
}

// setLogLevel implements "LOGLEVEL <level>", one of debug/info/warn/error.
func setLogLevel(_ uint32, value string, _ []config.Option) error {
	switch strings.ToLower(value) {
	case "debug", "info", "warn", "error":
		LogLevel = strings.ToLower(value)
		return nil
	default:
		return errors.New("unknown log level: " + value)
	}
}

// Reset restores every directive's state to its default, for harnesses
// that load more than one config file in a single process (tests).
func Reset() {
	MemorySize = defaultMemory
	Loads = nil
	EntryPoint = 0
	HasEntry = false
	BreakAddr = 0
	HasBreak = false
	LogLevel = "info"
}
