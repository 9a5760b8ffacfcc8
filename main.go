/*
 * i686emu - Main process.
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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	config "github.com/openi686/i686emu/config/configparser"
	machine "github.com/openi686/i686emu/config/machineconfig"
	"github.com/openi686/i686emu/emu/cpu"
	"github.com/openi686/i686emu/emu/disassemble"
	"github.com/openi686/i686emu/emu/ioport"
	"github.com/openi686/i686emu/emu/memory"
	logger "github.com/openi686/i686emu/util/logger"

	_ "github.com/openi686/i686emu/config/debugconfig"
)

var Logger *slog.Logger

func levelFromName(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "i686emu.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optLoad := getopt.StringLong("load", 'i', "", "Image to load at physical address 0, in addition to any config LOAD directives")
	optEntry := getopt.StringLong("entry", 'e', "", "Hex entry address, overriding any config ENTRY directive")
	optDisasm := getopt.Uint64Long("disasm", 'd', 0, "Disassemble this many instructions at CS:EIP before running")
	optMax := getopt.Uint64Long("max", 'm', 0, "Maximum instructions to execute (0 = unlimited)")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if optLogFile != nil && *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debug := false
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debug))
	slog.SetDefault(Logger)

	Logger.Info("i686emu started")
	if optConfig == nil || *optConfig == "" {
		Logger.Error("Please specify a configuration file")
		os.Exit(0)
	}

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		Logger.Error("Configuration file can't be found", "file", *optConfig)
		os.Exit(0)
	}

	if err := config.LoadConfigFile(*optConfig); err != nil {
		Logger.Error(err.Error())
		os.Exit(0)
	}

	programLevel.Set(levelFromName(machine.LogLevel))

	mem := memory.NewFlat(machine.MemorySize)
	for _, img := range machine.Loads {
		data, err := os.ReadFile(img.Path)
		if err != nil {
			Logger.Error("Unable to read load image", "file", img.Path, "error", err.Error())
			os.Exit(1)
		}
		if err := mem.LoadAt(img.Addr, data); err != nil {
			Logger.Error("Unable to place load image", "file", img.Path, "addr", img.Addr, "error", err.Error())
			os.Exit(1)
		}
		Logger.Info("Loaded image", "file", img.Path, "addr", img.Addr, "bytes", len(data))
	}
	if optLoad != nil && *optLoad != "" {
		data, err := os.ReadFile(*optLoad)
		if err != nil {
			Logger.Error("Unable to read -load image", "file", *optLoad, "error", err.Error())
			os.Exit(1)
		}
		if err := mem.LoadAt(0, data); err != nil {
			Logger.Error("Unable to place -load image", "file", *optLoad, "error", err.Error())
			os.Exit(1)
		}
		Logger.Info("Loaded -load image at 0x0", "file", *optLoad, "bytes", len(data))
	}

	io := ioport.NewSimpleBus()
	c := cpu.NewCPU(mem, io)
	if machine.HasEntry {
		if err := c.SetRegister("EIP", machine.EntryPoint); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}
	if optEntry != nil && *optEntry != "" {
		entry, err := strconv.ParseUint(*optEntry, 16, 32)
		if err != nil {
			Logger.Error("Invalid -entry address", "value", *optEntry, "error", err.Error())
			os.Exit(1)
		}
		if err := c.SetRegister("EIP", uint32(entry)); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}
	if optDisasm != nil && *optDisasm > 0 {
		for _, line := range disassemble.Dump(mem, c.EIP(), int(*optDisasm), 32) {
			Logger.Info("disasm", "insn", line)
		}
	}

	// Wait for a SIGINT or SIGTERM signal to gracefully shut down.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go runMachine(c, mem, *optMax, done)

	select {
	case <-sigChan:
		fmt.Println("Got quit signal")
	case <-done:
	}

	state := c.GetState()
	Logger.Info("Final state", "eip", state.Registers["EIP"], "halted", state.Halted, "cycles", state.Cycles)
}

// runMachine drives the CPU's single-step loop until it halts, hits the
// configured BREAK address, a fault escapes Step(), or max instructions
// have retired (0 meaning unlimited). When Step() returns an error (a halt
// or an escaped fault) it disassembles the instruction at the stopping EIP
// to the log for diagnostics, the same role the teacher's IPL-device dump served for a
// stalled channel program.
func runMachine(c *cpu.CPU, mem *memory.Flat, maxInsns uint64, done chan<- struct{}) {
	defer close(done)

	var count uint64
	for {
		if maxInsns != 0 && count >= maxInsns {
			Logger.Info("Instruction limit reached", "count", count)
			return
		}
		if machine.HasBreak && c.EIP() == machine.BreakAddr {
			Logger.Info("Breakpoint reached", "eip", c.EIP())
			return
		}

		if err := c.Step(); err != nil {
			Logger.Warn("Execution stopped", "error", err.Error(), "eip", c.EIP())
			dumpHistory(c, mem)
			return
		}
		count++
	}
}

// dumpHistory renders the instruction at the stopping EIP with the
// disassembler, for the operator to inspect after an unexpected halt.
func dumpHistory(c *cpu.CPU, mem *memory.Flat) {
	for _, line := range disassemble.Dump(mem, c.EIP(), 1, 32) {
		Logger.Warn("disasm", "insn", line)
	}
}
