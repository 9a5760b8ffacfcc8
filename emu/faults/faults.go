// Package faults defines the typed error taxonomy surfaced by the CPU
// core and its external interfaces.
//
// Copyright 2026, i686emu contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
package faults

import (
	"errors"
	"fmt"
)

// Sentinel faults that are not architectural exceptions.
var (
	ErrHalted = errors.New("cpu halted")
	ErrMemory = errors.New("memory error")
	ErrIO     = errors.New("io error")
)

// Vector numbers for the architectural exceptions the core can raise.
const (
	VecDivideError        = 0x00 // #DE
	VecInvalidOpcode       = 0x06 // #UD
	VecDoubleFault         = 0x08 // #DF
	VecInvalidTSS          = 0x0A // #TS
	VecSegmentNotPresent   = 0x0B // #NP
	VecStackFault          = 0x0C // #SS
	VecGeneralProtection   = 0x0D // #GP
	VecPageFault           = 0x0E // #PF
)

// hasErrorCode reports whether an exception vector pushes an error code.
func hasErrorCode(vec int) bool {
	switch vec {
	case VecDoubleFault, VecInvalidTSS, VecSegmentNotPresent, VecStackFault,
		VecGeneralProtection, VecPageFault, 0x11, 0x15: // 0x11 #AC, 0x15 #CP
		return true
	default:
		return false
	}
}

// Exception is an architectural exception raised by the core. It implements
// error so callers may propagate it with normal Go error handling, but the
// dispatcher's usual path is to catch it and push it through the IDT/IVT
// rather than let it escape to the embedder.
type Exception struct {
	Vector    int
	Mnemonic  string
	ErrorCode uint32
	HasCode   bool
}

func (e *Exception) Error() string {
	if e.HasCode {
		return fmt.Sprintf("%s (vector 0x%02x, error code 0x%x)", e.Mnemonic, e.Vector, e.ErrorCode)
	}
	return fmt.Sprintf("%s (vector 0x%02x)", e.Mnemonic, e.Vector)
}

// NewException builds an Exception, setting HasCode from the vector's
// architectural error-code predicate.
func NewException(vec int, mnemonic string, errorCode uint32) *Exception {
	return &Exception{Vector: vec, Mnemonic: mnemonic, ErrorCode: errorCode, HasCode: hasErrorCode(vec)}
}

func DivideError() *Exception      { return NewException(VecDivideError, "divide-error", 0) }
func InvalidOpcode() *Exception    { return NewException(VecInvalidOpcode, "invalid-opcode", 0) }
func DoubleFault() *Exception      { return NewException(VecDoubleFault, "double-fault", 0) }
func GeneralProtection(code uint32) *Exception {
	return NewException(VecGeneralProtection, "general-protection-fault", code)
}
func SegmentNotPresent(code uint32) *Exception {
	return NewException(VecSegmentNotPresent, "segment-not-present", code)
}
func StackFault(code uint32) *Exception {
	return NewException(VecStackFault, "stack-fault", code)
}
func PageFault(code uint32) *Exception {
	return NewException(VecPageFault, "page-fault", code)
}

// ErrTripleFault is returned by the step driver when a double fault cannot
// itself be delivered; the CPU halts.
var ErrTripleFault = errors.New("double-fault")
