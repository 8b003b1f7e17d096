// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"sync/atomic"
	"time"

	"github.com/lassandro/goconsolite/pkg/encoding"
)

type Format uint8

type Operation struct {
	Mnemonic string
	Format   Format
}

// Display receives pixel writes. Implementations must tolerate calls from
// the processor goroutine while their owner reads the framebuffer.
type Display interface {
	SetPixel(x, y, color uint8)
}

// Input reports the state of an abstract button: 1 pressed, 0 otherwise.
type Input interface {
	GetInput(id uint16) uint16
}

type DeviceHandler struct {
	Display Display
	Input   Input
}

type Flags struct {
	Overflow bool
	Carry    bool
	Zero     bool
	Sign     bool
}

type Instruction struct {
	Opcode uint8
	Arg1   uint8
	Arg2   uint8
	Arg3   uint8
}

func (inst Instruction) Reg1() uint8 {
	return inst.Arg1 & 0xF
}

func (inst Instruction) Reg2() uint8 {
	return inst.Arg2 & 0xF
}

// ArgA is the big-endian word held in bytes 1-2.
func (inst Instruction) ArgA() uint16 {
	return encoding.Word(inst.Arg1, inst.Arg2)
}

// ArgB is the big-endian word held in bytes 2-3.
func (inst Instruction) ArgB() uint16 {
	return encoding.Word(inst.Arg2, inst.Arg3)
}

func (inst Instruction) Bytes() [INST_SIZE]byte {
	return [INST_SIZE]byte{inst.Opcode, inst.Arg1, inst.Arg2, inst.Arg3}
}

type MachineState struct {
	Registers [NUM_REGISTERS]uint16
	Program   uint16
	Color     uint8
	Flags     Flags
	Memory    [MEMORY_SIZE]byte
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	Devices  *DeviceHandler
	State    MachineState
	Debugger MachineDebugger

	// Strict turns unknown opcodes into an IllegalOpcodeError instead of
	// executing them as NOP.
	Strict bool

	// Clock and Random back TIME/TIMERST and RND. Nil selects the host
	// clock and generator.
	Clock  func() time.Time
	Random func() uint16

	running    atomic.Bool
	steps      atomic.Uint64
	timerStart time.Time
}
