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
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/lassandro/goconsolite/pkg/encoding"
)

func New(image io.Reader, devices *DeviceHandler) (*Machine, error) {
	mc := &Machine{Devices: devices}

	if err := mc.LoadBin(image); err != nil {
		return nil, err
	}

	return mc, nil
}

func NewFromFile(path string, devices *DeviceHandler) (*Machine, error) {
	mc := &Machine{Devices: devices}

	if err := mc.LoadFile(path); err != nil {
		return nil, err
	}

	return mc, nil
}

func (mc *MachineState) Reset() {
	clear(mc.Registers[:])
	clear(mc.Memory[:])

	mc.Program = 0x0000
	mc.Color = 0x00
	mc.Flags = Flags{}
}

// Fetch decodes the instruction word at addr. It does not notify the
// debugger.
func (mc *MachineState) Fetch(addr uint16) Instruction {
	return Instruction{
		Opcode: mc.Memory[addr],
		Arg1:   mc.Memory[addr+1],
		Arg2:   mc.Memory[addr+2],
		Arg3:   mc.Memory[addr+3],
	}
}

// LoadBin resets the machine and copies the image to address 0. On error
// the state is left zeroed and the machine is not runnable.
func (mc *Machine) LoadBin(reader io.Reader) error {
	mc.running.Store(false)
	mc.State.Reset()

	n, err := io.ReadFull(reader, mc.State.Memory[:])

	switch {
	case err == io.EOF:
		return ErrEmptyImage
	case err == io.ErrUnexpectedEOF:
	case err != nil:
		mc.State.Reset()
		return errors.Wrapf(ErrImageUnreadable, "%v", err)
	default:
		var extra [1]byte

		if _, err := io.ReadFull(reader, extra[:]); err == nil {
			mc.State.Reset()
			return ErrImageTooLarge
		} else if err != io.EOF {
			mc.State.Reset()
			return errors.Wrapf(ErrImageUnreadable, "%v", err)
		}
	}

	if n == 0 {
		return ErrEmptyImage
	}

	mc.timerStart = mc.now()
	mc.running.Store(true)

	return nil
}

func (mc *Machine) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		mc.running.Store(false)
		mc.State.Reset()
		return errors.Wrapf(ErrImageUnreadable, "%v", err)
	}
	defer file.Close()

	return mc.LoadBin(file)
}

// Run executes instructions until Stop is called or a step fails.
func (mc *Machine) Run() error {
	for mc.running.Load() {
		if err := mc.Step(); err != nil {
			mc.running.Store(false)
			return err
		}
	}

	return nil
}

func (mc *Machine) Stop() {
	mc.running.Store(false)
}

// Resume marks a loaded machine as runnable again after Stop.
func (mc *Machine) Resume() {
	mc.running.Store(true)
}

func (mc *Machine) Running() bool {
	return mc.running.Load()
}

// Steps counts executed instructions. It is safe to call while Run is active.
func (mc *Machine) Steps() uint64 {
	return mc.steps.Load()
}

func (mc *Machine) Condition(opcode uint8) bool {
	return mc.State.Flags.Condition(opcode)
}

// Condition reports whether the conditional jump opcode would be taken.
// Opcodes that are not conditional jumps report false.
func (flags Flags) Condition(opcode uint8) bool {
	switch opcode {
	case OP_JEQ:
		return flags.Zero
	case OP_JNE:
		return !flags.Zero
	case OP_JG:
		return !flags.Zero && flags.Sign == flags.Overflow
	case OP_JGE:
		return flags.Sign == flags.Overflow
	case OP_JA:
		return !flags.Carry && !flags.Zero
	case OP_JAE:
		return !flags.Carry
	case OP_JL:
		return flags.Sign != flags.Overflow
	case OP_JLE:
		return flags.Sign != flags.Overflow || flags.Zero
	case OP_JB:
		return flags.Carry
	case OP_JBE:
		return flags.Carry || flags.Zero
	case OP_JO:
		return flags.Overflow
	case OP_JNO:
		return !flags.Overflow
	case OP_JS:
		return flags.Sign
	case OP_JNS:
		return !flags.Sign
	}

	return false
}

func (mc *Machine) now() time.Time {
	if mc.Clock != nil {
		return mc.Clock()
	}

	return time.Now()
}

func (mc *Machine) random() uint16 {
	if mc.Random != nil {
		return mc.Random()
	}

	return uint16(rand.Uint32())
}

func (mc *Machine) push(value uint16) {
	mc.State.Registers[REG_SP] += 2
	mc.writeWord(mc.State.Registers[REG_SP], value)
}

func (mc *Machine) pop() uint16 {
	result := mc.readWord(mc.State.Registers[REG_SP])
	mc.State.Registers[REG_SP] -= 2
	return result
}

func (mc *Machine) read(addr uint16) byte {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value byte) {
	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) readWord(addr uint16) uint16 {
	hi := mc.read(addr)
	lo := mc.read(addr + 1)
	return encoding.Word(hi, lo)
}

func (mc *Machine) writeWord(addr uint16, value uint16) {
	hi, lo := encoding.SplitWord(value)
	mc.write(addr, hi)
	mc.write(addr+1, lo)
}

func (mc *Machine) setProgram(value uint16) {
	mc.State.Program = value & 0xFFFC
}

func (mc *Machine) setFlags(dest, src, result uint32, opcode uint8) {
	flags := &mc.State.Flags

	destSign := dest&0x8000 != 0
	srcSign := src&0x8000 != 0
	resultSign := result&0x8000 != 0

	switch opcode {
	case OP_ADD:
		flags.Overflow = destSign == srcSign && resultSign != destSign
	case OP_SUB, OP_CMP:
		flags.Overflow = destSign != srcSign && resultSign == srcSign
	default:
		flags.Overflow = false
	}

	flags.Carry = result > 0xFFFF
	flags.Zero = result&0xFFFF == 0
	flags.Sign = resultSign
}

func (mc *Machine) input(id uint16) uint16 {
	if mc.Devices == nil || mc.Devices.Input == nil {
		return 0
	}

	return mc.Devices.Input.GetInput(id)
}

func (mc *Machine) pixel(x, y, color uint8) {
	if mc.Devices == nil || mc.Devices.Display == nil {
		return
	}

	mc.Devices.Display.SetPixel(x, y, color)
}

func (mc *Machine) Step() error {
	state := &mc.State
	inst := state.Fetch(state.Program)

	reg1 := inst.Reg1()
	reg2 := inst.Reg2()

	dest := uint32(state.Registers[reg1])
	src := uint32(state.Registers[reg2])

	var result uint32
	computed := false
	next := state.Program + INST_SIZE

	switch inst.Opcode {
	// NOP  |0x00    |--------|--------|--------| No operation
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_NOP:

	// INPUT|0x01    |----reg1|----reg2|--------| reg1 <- input(reg2)
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_INPUT:
		state.Registers[reg1] = mc.input(uint16(src))

	// CALL |0x02    |argA             |--------| push IP; IP <- argA
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_CALL:
		mc.push(state.Program)
		next = inst.ArgA()

	// RET  |0x03    |arg1    |--------|--------| IP <- pop() + arg1 + 4
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_RET:
		next = mc.pop() + uint16(inst.Arg1) + INST_SIZE

	// LOAD |0x04    |----reg1|----reg2|--------| reg1 <- mem[reg2]
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_LOAD:
		state.Registers[reg1] = uint16(mc.read(uint16(src)))

	// LOADI|0x05    |----reg1|argB             | reg1 <- mem[argB]
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_LOADI:
		state.Registers[reg1] = uint16(mc.read(inst.ArgB()))

	// MOV  |0x06    |----reg1|----reg2|--------| reg1 <- reg2
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_MOV:
		state.Registers[reg1] = uint16(src)

	// MOVI |0x07    |----reg1|argB             | reg1 <- argB
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_MOVI:
		state.Registers[reg1] = inst.ArgB()

	// PUSH |0x08    |----reg1|--------|--------| SP += 2; mem[SP] <- reg1
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_PUSH:
		mc.push(uint16(dest))

	// POP  |0x09    |----reg1|--------|--------| reg1 <- mem[SP]; SP -= 2
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_POP:
		state.Registers[reg1] = mc.pop()

	// ADD  |0x0A    |----reg1|----reg2|--------| reg1 <- reg1 + reg2
	// SUB  |0x0B    |----reg1|----reg2|--------| reg1 <- reg1 - reg2
	// MUL  |0x0C    |----reg1|----reg2|--------| reg1 <- reg1 * reg2
	// AND  |0x0E    |----reg1|----reg2|--------| reg1 <- reg1 & reg2
	// OR   |0x0F    |----reg1|----reg2|--------| reg1 <- reg1 | reg2
	// XOR  |0x10    |----reg1|----reg2|--------| reg1 <- reg1 ^ reg2
	// SHL  |0x11    |----reg1|----reg2|--------| reg1 <- reg1 << reg2
	// SHRL |0x13    |----reg1|----reg2|--------| reg1 <- reg1 >> reg2
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_ADD, OP_SUB, OP_MUL, OP_AND, OP_OR, OP_XOR, OP_SHL, OP_SHRL:
		switch inst.Opcode {
		case OP_ADD:
			result = dest + src
		case OP_SUB:
			result = dest - src
		case OP_MUL:
			result = dest * src
		case OP_AND:
			result = dest & src
		case OP_OR:
			result = dest | src
		case OP_XOR:
			result = dest ^ src
		case OP_SHL:
			result = dest << src
		case OP_SHRL:
			result = dest >> src
		}

		state.Registers[reg1] = uint16(result)
		computed = true

	// DIV  |0x0D    |----reg1|----reg2|--------| reg1 <- reg1 / reg2
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_DIV:
		if src == 0 {
			state.Registers[reg1] = 0
			state.Flags = Flags{Overflow: true, Zero: true}
			break
		}

		result = dest / src
		state.Registers[reg1] = uint16(result)
		computed = true

	// SHRA |0x12    |----reg1|----reg2|--------| reg1 <- reg1 >> reg2 (signed)
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_SHRA:
		state.Registers[reg1] = uint16(int16(dest) >> src)
		result = dest >> src
		computed = true

	// CMP  |0x14    |----reg1|----reg2|--------| flags <- reg1 - reg2
	// TST  |0x15    |----reg1|----reg2|--------| flags <- reg1 & reg2
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_CMP:
		result = dest - src
		computed = true

	case OP_TST:
		result = dest & src
		computed = true

	// COLOR|0x16    |----reg1|--------|--------| color <- low byte of reg1
	// PIXEL|0x17    |----reg1|----reg2|--------| pixel(reg1, reg2, color)
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_COLOR:
		state.Color = uint8(dest)

	case OP_PIXEL:
		mc.pixel(uint8(dest), uint8(src), state.Color)

	// STOR |0x18    |----reg1|----reg2|--------| mem[reg2] <- reg1
	// STORI|0x19    |----reg1|argB             | mem[argB] <- reg1
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_STOR:
		mc.write(uint16(src), uint8(dest))

	case OP_STORI:
		mc.write(inst.ArgB(), uint8(dest))

	// TIME |0x1A    |----reg1|--------|--------| reg1 <- ms since TIMERST
	// TMRST|0x1B    |--------|--------|--------| restart timer
	// RND  |0x1C    |----reg1|--------|--------| reg1 <- random
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_TIME:
		state.Registers[reg1] = uint16(mc.now().Sub(mc.timerStart).Milliseconds())

	case OP_TIMERST:
		mc.timerStart = mc.now()

	case OP_RND:
		state.Registers[reg1] = mc.random()

	// JMP  |0x30    |----reg1|--------|--------| IP <- reg1
	// JMPI |0x31    |argA             |--------| IP <- argA
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_JMP:
		next = uint16(dest)

	case OP_JMPI:
		next = inst.ArgA()

	// Jcc  |0x32-3F |argA             |--------| IP <- argA if condition
	// ---- [ opcode | arg1   | arg2   | arg3   ]
	case OP_JEQ, OP_JNE, OP_JG, OP_JGE, OP_JA, OP_JAE, OP_JL, OP_JLE,
		OP_JB, OP_JBE, OP_JO, OP_JNO, OP_JS, OP_JNS:
		if state.Flags.Condition(inst.Opcode) {
			next = inst.ArgA()
		}

	default:
		if mc.Strict {
			return &IllegalOpcodeError{Addr: state.Program, Opcode: inst.Opcode}
		}
	}

	mc.setProgram(next)

	if computed {
		mc.setFlags(dest, src, result, inst.Opcode)
	} else if inst.Opcode != OP_DIV {
		state.Flags = Flags{}
	}

	mc.steps.Add(1)

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return nil
}
