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

const (
	MEMORY_SIZE   = 1 << 16
	NUM_REGISTERS = 16
	INST_SIZE     = 4
)

const (
	REG_SP uint8 = 0x0
	REG_FP uint8 = 0x1
	REG_A  uint8 = 0x2
	REG_B  uint8 = 0x3
	REG_C  uint8 = 0x4
	REG_D  uint8 = 0x5
	REG_E  uint8 = 0x6
	REG_F  uint8 = 0x7
	REG_G  uint8 = 0x8
	REG_H  uint8 = 0x9
	REG_I  uint8 = 0xA
	REG_J  uint8 = 0xB
	REG_K  uint8 = 0xC
	REG_L  uint8 = 0xD
	REG_M  uint8 = 0xE
	REG_N  uint8 = 0xF
)

const (
	OP_NOP     uint8 = 0x00
	OP_INPUT   uint8 = 0x01
	OP_CALL    uint8 = 0x02
	OP_RET     uint8 = 0x03
	OP_LOAD    uint8 = 0x04
	OP_LOADI   uint8 = 0x05
	OP_MOV     uint8 = 0x06
	OP_MOVI    uint8 = 0x07
	OP_PUSH    uint8 = 0x08
	OP_POP     uint8 = 0x09
	OP_ADD     uint8 = 0x0A
	OP_SUB     uint8 = 0x0B
	OP_MUL     uint8 = 0x0C
	OP_DIV     uint8 = 0x0D
	OP_AND     uint8 = 0x0E
	OP_OR      uint8 = 0x0F
	OP_XOR     uint8 = 0x10
	OP_SHL     uint8 = 0x11
	OP_SHRA    uint8 = 0x12
	OP_SHRL    uint8 = 0x13
	OP_CMP     uint8 = 0x14
	OP_TST     uint8 = 0x15
	OP_COLOR   uint8 = 0x16
	OP_PIXEL   uint8 = 0x17
	// Encodings for STOR through RND are assumed; the ISA tables do not
	// assign them.
	OP_STOR    uint8 = 0x18
	OP_STORI   uint8 = 0x19
	OP_TIME    uint8 = 0x1A
	OP_TIMERST uint8 = 0x1B
	OP_RND     uint8 = 0x1C
	OP_JMP     uint8 = 0x30
	OP_JMPI    uint8 = 0x31
	OP_JEQ     uint8 = 0x32
	OP_JNE     uint8 = 0x33
	OP_JG      uint8 = 0x34
	OP_JGE     uint8 = 0x35
	OP_JA      uint8 = 0x36
	OP_JAE     uint8 = 0x37
	OP_JL      uint8 = 0x38
	OP_JLE     uint8 = 0x39
	OP_JB      uint8 = 0x3A
	OP_JBE     uint8 = 0x3B
	OP_JO      uint8 = 0x3C
	OP_JNO     uint8 = 0x3D
	OP_JS      uint8 = 0x3E
	OP_JNS     uint8 = 0x3F
)

// Operand layouts. Which bytes of an instruction word an opcode reads is
// fixed per opcode.
const (
	FORMAT_NONE    Format = iota // --
	FORMAT_REG                   // reg1
	FORMAT_REG_REG               // reg1, reg2
	FORMAT_REG_IMM               // reg1, argB
	FORMAT_ADDR                  // argA
	FORMAT_BYTE                  // arg1
)

var RegisterNames = [NUM_REGISTERS]string{
	"SP", "FP", "A", "B", "C", "D", "E", "F",
	"G", "H", "I", "J", "K", "L", "M", "N",
}

var Operations = map[uint8]Operation{
	OP_NOP:     {"NOP", FORMAT_NONE},
	OP_INPUT:   {"INPUT", FORMAT_REG_REG},
	OP_CALL:    {"CALL", FORMAT_ADDR},
	OP_RET:     {"RET", FORMAT_BYTE},
	OP_LOAD:    {"LOAD", FORMAT_REG_REG},
	OP_LOADI:   {"LOADI", FORMAT_REG_IMM},
	OP_MOV:     {"MOV", FORMAT_REG_REG},
	OP_MOVI:    {"MOVI", FORMAT_REG_IMM},
	OP_PUSH:    {"PUSH", FORMAT_REG},
	OP_POP:     {"POP", FORMAT_REG},
	OP_ADD:     {"ADD", FORMAT_REG_REG},
	OP_SUB:     {"SUB", FORMAT_REG_REG},
	OP_MUL:     {"MUL", FORMAT_REG_REG},
	OP_DIV:     {"DIV", FORMAT_REG_REG},
	OP_AND:     {"AND", FORMAT_REG_REG},
	OP_OR:      {"OR", FORMAT_REG_REG},
	OP_XOR:     {"XOR", FORMAT_REG_REG},
	OP_SHL:     {"SHL", FORMAT_REG_REG},
	OP_SHRA:    {"SHRA", FORMAT_REG_REG},
	OP_SHRL:    {"SHRL", FORMAT_REG_REG},
	OP_CMP:     {"CMP", FORMAT_REG_REG},
	OP_TST:     {"TST", FORMAT_REG_REG},
	OP_COLOR:   {"COLOR", FORMAT_REG},
	OP_PIXEL:   {"PIXEL", FORMAT_REG_REG},
	OP_STOR:    {"STOR", FORMAT_REG_REG},
	OP_STORI:   {"STORI", FORMAT_REG_IMM},
	OP_TIME:    {"TIME", FORMAT_REG},
	OP_TIMERST: {"TIMERST", FORMAT_NONE},
	OP_RND:     {"RND", FORMAT_REG},
	OP_JMP:     {"JMP", FORMAT_REG},
	OP_JMPI:    {"JMPI", FORMAT_ADDR},
	OP_JEQ:     {"JEQ", FORMAT_ADDR},
	OP_JNE:     {"JNE", FORMAT_ADDR},
	OP_JG:      {"JG", FORMAT_ADDR},
	OP_JGE:     {"JGE", FORMAT_ADDR},
	OP_JA:      {"JA", FORMAT_ADDR},
	OP_JAE:     {"JAE", FORMAT_ADDR},
	OP_JL:      {"JL", FORMAT_ADDR},
	OP_JLE:     {"JLE", FORMAT_ADDR},
	OP_JB:      {"JB", FORMAT_ADDR},
	OP_JBE:     {"JBE", FORMAT_ADDR},
	OP_JO:      {"JO", FORMAT_ADDR},
	OP_JNO:     {"JNO", FORMAT_ADDR},
	OP_JS:      {"JS", FORMAT_ADDR},
	OP_JNS:     {"JNS", FORMAT_ADDR},
}
