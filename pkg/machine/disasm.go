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
	"fmt"
	"strings"
)

func (inst Instruction) String() string {
	op, ok := Operations[inst.Opcode]
	if !ok {
		return fmt.Sprintf(".DATA 0x%02X%02X%02X%02X",
			inst.Opcode, inst.Arg1, inst.Arg2, inst.Arg3)
	}

	switch op.Format {
	case FORMAT_REG:
		return fmt.Sprintf("%s %s", op.Mnemonic, RegisterNames[inst.Reg1()])
	case FORMAT_REG_REG:
		return fmt.Sprintf("%s %s, %s", op.Mnemonic,
			RegisterNames[inst.Reg1()], RegisterNames[inst.Reg2()])
	case FORMAT_REG_IMM:
		return fmt.Sprintf("%s %s, 0x%04X", op.Mnemonic,
			RegisterNames[inst.Reg1()], inst.ArgB())
	case FORMAT_ADDR:
		return fmt.Sprintf("%s 0x%04X", op.Mnemonic, inst.ArgA())
	case FORMAT_BYTE:
		if inst.Arg1 == 0 {
			return op.Mnemonic
		}
		return fmt.Sprintf("%s %d", op.Mnemonic, inst.Arg1)
	}

	return op.Mnemonic
}

// Disassemble renders the instruction at addr, aligned down to a word.
func (mc *Machine) Disassemble(addr uint16) string {
	return mc.State.Fetch(addr & 0xFFFC).String()
}

// LookupMnemonic resolves an assembler mnemonic, case-insensitively.
func LookupMnemonic(name string) (uint8, Operation, bool) {
	for opcode, op := range Operations {
		if strings.EqualFold(name, op.Mnemonic) {
			return opcode, op, true
		}
	}

	return 0, Operation{}, false
}
