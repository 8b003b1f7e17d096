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

package assembler

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/lassandro/goconsolite/pkg/encoding"
	"github.com/lassandro/goconsolite/pkg/machine"
)

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, ".ORIG") {
		return DIRECTIVE_ORIG
	} else if strings.EqualFold(ident, ".FILL") {
		return DIRECTIVE_FILL
	} else if strings.EqualFold(ident, ".BYTE") {
		return DIRECTIVE_BYTE
	} else if strings.EqualFold(ident, ".BLKB") {
		return DIRECTIVE_BLKB
	} else if strings.EqualFold(ident, ".STRINGZ") {
		return DIRECTIVE_STRINGZ
	} else if strings.EqualFold(ident, ".END") {
		return DIRECTIVE_END
	}

	return DIRECTIVE_INVALID
}

// parseLiteral accepts unsigned values up to the literal width and signed
// values down to its negative limit, returning the two's complement bits.
func parseLiteral(token *Token, bits LiteralType) (uint16, error) {
	var value int64

	if token.Value[0] == '#' || token.Value[0] == '-' || !strings.ContainsAny(token.Value, "xX") {
		result, err := encoding.DecodeInt(token.Value)
		if err != nil {
			return 0, &InvalidLiteralError{token.Position}
		}

		value = int64(result)
	} else {
		result, err := encoding.DecodeHex(token.Value)
		if err != nil {
			return 0, &InvalidLiteralError{token.Position}
		}

		value = int64(result)
	}

	limit := int64(1) << bits
	if value >= limit || value < -(limit>>1) {
		return 0, &OversizedLiteralError{token.Position, limit - 1, value}
	}

	return uint16(value) & uint16(limit-1), nil
}

func parseRegister(token *Token) (uint8, bool) {
	ident := token.Value

	if len(ident) > 1 && (ident[0] == 'R' || ident[0] == 'r') {
		if index, err := strconv.ParseUint(ident[1:], 10, 8); err == nil && index < machine.NUM_REGISTERS {
			return uint8(index), true
		}
	}

	for index, name := range machine.RegisterNames {
		if strings.EqualFold(ident, name) {
			return uint8(index), true
		}
	}

	return 0, false
}

type labelRef struct {
	Label    string
	Addr     uint16
	Position Cursor
}

type assembler struct {
	result   []byte
	program  uint32
	size     uint32
	labels   map[string]uint16
	refs     []labelRef
	errs     []error
	symtable *SymTable
}

func (asm *assembler) fail(err error) {
	asm.errs = append(asm.errs, err)
}

func (asm *assembler) emit(values ...byte) {
	for _, value := range values {
		if asm.program >= machine.MEMORY_SIZE {
			asm.program++
			continue
		}

		asm.result[asm.program] = value
		asm.program++
	}

	if asm.program > asm.size {
		asm.size = asm.program
	}
}

func (asm *assembler) expectCount(keyword *Token, operands []Token, counts ...int) bool {
	for _, count := range counts {
		if len(operands) == count {
			return true
		}
	}

	asm.fail(&InvalidNumArgumentsError{keyword.Position, counts[0], len(operands)})
	return false
}

func (asm *assembler) expectType(operand *Token, types ...TokenType) bool {
	for _, tokenType := range types {
		if operand.Type == tokenType {
			return true
		}
	}

	asm.fail(&InvalidOperandError{operand.Position, types, operand.Type})
	return false
}

func (asm *assembler) register(operand *Token) uint8 {
	if !asm.expectType(operand, TOKEN_IDENT) {
		return 0
	}

	reg, ok := parseRegister(operand)
	if !ok {
		asm.fail(&InvalidRegisterError{operand.Position})
	}

	return reg
}

// word resolves a literal or label operand that will be stored at addr.
// Unknown labels are patched once the whole source has been read.
func (asm *assembler) word(operand *Token, addr uint32) uint16 {
	if !asm.expectType(operand, TOKEN_LITERAL, TOKEN_IDENT) {
		return 0
	}

	if operand.Type == TOKEN_LITERAL {
		literal, err := parseLiteral(operand, LITERAL_WORD)
		if err != nil {
			asm.fail(err)
		}

		return literal
	}

	if _, isRegister := parseRegister(operand); isRegister {
		asm.fail(&InvalidOperandError{
			operand.Position, []TokenType{TOKEN_LITERAL, TOKEN_IDENT}, operand.Type,
		})
		return 0
	}

	if addr, exists := asm.labels[operand.Value]; exists {
		return addr
	}

	asm.refs = append(asm.refs, labelRef{operand.Value, uint16(addr), operand.Position})
	return 0
}

func (asm *assembler) directive(directive DirectiveType, keyword *Token, operands []Token) {
	switch directive {
	// .ORIG #
	case DIRECTIVE_ORIG:
		if !asm.expectCount(keyword, operands, 1) || !asm.expectType(&operands[0], TOKEN_LITERAL) {
			return
		}

		literal, err := parseLiteral(&operands[0], LITERAL_WORD)
		if err != nil {
			asm.fail(err)
		}

		asm.program = uint32(literal)

	// .FILL # or label, one big-endian word
	case DIRECTIVE_FILL:
		if !asm.expectCount(keyword, operands, 1) {
			return
		}

		hi, lo := encoding.SplitWord(asm.word(&operands[0], asm.program))
		asm.emit(hi, lo)

	// .BYTE #
	case DIRECTIVE_BYTE:
		if !asm.expectCount(keyword, operands, 1) || !asm.expectType(&operands[0], TOKEN_LITERAL) {
			return
		}

		literal, err := parseLiteral(&operands[0], LITERAL_BYTE)
		if err != nil {
			asm.fail(err)
		}

		asm.emit(byte(literal))

	// .BLKB #
	case DIRECTIVE_BLKB:
		if !asm.expectCount(keyword, operands, 1) || !asm.expectType(&operands[0], TOKEN_LITERAL) {
			return
		}

		literal, err := parseLiteral(&operands[0], LITERAL_WORD)
		if err != nil {
			asm.fail(err)
		}

		asm.emit(make([]byte, literal)...)

	// .STRINGZ "..."
	case DIRECTIVE_STRINGZ:
		if !asm.expectCount(keyword, operands, 1) || !asm.expectType(&operands[0], TOKEN_STRING) {
			return
		}

		s, err := strconv.Unquote(operands[0].Value)
		if err != nil {
			asm.fail(&InvalidStringError{operands[0].Position})
		}

		asm.emit([]byte(s)...)
		asm.emit(0)
	}
}

func (asm *assembler) instruction(opcode uint8, operation machine.Operation, keyword *Token, operands []Token) {
	if asm.program%machine.INST_SIZE != 0 {
		asm.fail(&MisalignedInstructionError{keyword.Position, uint16(asm.program)})
	}

	var inst machine.Instruction
	inst.Opcode = opcode

	switch operation.Format {
	// OP   |opcode  |--------|--------|--------|
	case machine.FORMAT_NONE:
		asm.expectCount(keyword, operands, 0)

	// OP   |opcode  |----reg1|--------|--------|
	case machine.FORMAT_REG:
		if asm.expectCount(keyword, operands, 1) {
			inst.Arg1 = asm.register(&operands[0])
		}

	// OP   |opcode  |----reg1|----reg2|--------|
	case machine.FORMAT_REG_REG:
		if asm.expectCount(keyword, operands, 2) {
			inst.Arg1 = asm.register(&operands[0])
			inst.Arg2 = asm.register(&operands[1])
		}

	// OP   |opcode  |----reg1|argB             |
	case machine.FORMAT_REG_IMM:
		if asm.expectCount(keyword, operands, 2) {
			inst.Arg1 = asm.register(&operands[0])
			inst.Arg2, inst.Arg3 = encoding.SplitWord(asm.word(&operands[1], asm.program+2))
		}

	// OP   |opcode  |argA             |--------|
	case machine.FORMAT_ADDR:
		if asm.expectCount(keyword, operands, 1) {
			inst.Arg1, inst.Arg2 = encoding.SplitWord(asm.word(&operands[0], asm.program+1))
		}

	// OP   |opcode  |arg1    |--------|--------|
	case machine.FORMAT_BYTE:
		if asm.expectCount(keyword, operands, 0, 1) && len(operands) == 1 {
			if asm.expectType(&operands[0], TOKEN_LITERAL) {
				literal, err := parseLiteral(&operands[0], LITERAL_BYTE)
				if err != nil {
					asm.fail(err)
				}

				inst.Arg1 = byte(literal)
			}
		}
	}

	encoded := inst.Bytes()
	asm.emit(encoded[:]...)
}

// Assemble translates Consolite assembly into a memory image starting at
// address 0, trimmed to the highest byte written. When symtable is not nil
// it receives line offsets and label addresses.
func Assemble(input io.Reader, symtable *SymTable) (result []byte, errs []error) {
	asm := &assembler{
		result:   make([]byte, machine.MEMORY_SIZE),
		labels:   make(map[string]uint16),
		symtable: symtable,
		errs:     make([]error, 0),
	}

	if symtable != nil {
		if symtable.Symbols == nil {
			symtable.Symbols = make(map[uint16]int64)
		}
		if symtable.Labels == nil {
			symtable.Labels = make(map[uint16]string)
		}
	}

	var scanner = bufio.NewScanner(input)
	var cursor = Cursor{Line: 1}

	// Process:
	// - Tokenize line
	// - Assemble line
	for ; scanner.Scan(); cursor.Line++ {
		line := scanner.Text()
		cursor.Size = int64(len(line))

		tokens, lineErrs := tokenizeLine(line, cursor)
		cursor.Byte += int64(len(line) + 1)
		lineStart := cursor.LineByte
		cursor.LineByte += int64(len(line) + 1)

		// Skip assembly of lines that failed to tokenize
		if len(lineErrs) > 0 {
			asm.errs = append(asm.errs, lineErrs...)
			continue
		}

		if len(tokens) == 0 {
			continue
		}

		var keyword *Token
		var operands []Token

		// Leading identifier that is neither a mnemonic nor a directive is a
		// label for the current address
		if _, _, ok := machine.LookupMnemonic(tokens[0].Value); !ok && tokens[0].Type == TOKEN_IDENT {
			label := &tokens[0]

			if _, exists := asm.labels[label.Value]; exists {
				asm.fail(&RedeclaredLabelError{label.Position, label.Value})
			} else {
				asm.labels[label.Value] = uint16(asm.program)
			}

			tokens = tokens[1:]
		}

		if len(tokens) == 0 {
			continue
		}

		keyword = &tokens[0]
		operands = tokens[1:]

		if keyword.Type == TOKEN_DIRECTIVE {
			directive := parseDirective(keyword.Value)

			if directive == DIRECTIVE_INVALID {
				asm.fail(&UnknownIdentifierError{keyword.Position, keyword.Value})
				continue
			}

			if directive == DIRECTIVE_END {
				asm.expectCount(keyword, operands, 0)
				break
			}

			if symtable != nil && directive != DIRECTIVE_ORIG {
				symtable.Symbols[uint16(asm.program)] = lineStart
			}

			asm.directive(directive, keyword, operands)
		} else if opcode, operation, ok := machine.LookupMnemonic(keyword.Value); ok && keyword.Type == TOKEN_IDENT {
			if symtable != nil {
				symtable.Symbols[uint16(asm.program)] = lineStart
			}

			asm.instruction(opcode, operation, keyword, operands)
		} else {
			asm.fail(&UnknownIdentifierError{keyword.Position, keyword.Value})
			continue
		}

		if asm.program > machine.MEMORY_SIZE {
			asm.fail(&OversizedBinaryError{})
			return nil, asm.errs
		}
	}

	if err := scanner.Err(); err != nil {
		asm.fail(err)
	}

	// Labels
	// - Resolve forward references
	// - Add labels to symbol table
	for _, ref := range asm.refs {
		addr, exists := asm.labels[ref.Label]

		if !exists {
			asm.fail(&UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		hi, lo := encoding.SplitWord(addr)
		asm.result[ref.Addr] = hi
		asm.result[ref.Addr+1] = lo
	}

	if symtable != nil {
		for label, addr := range asm.labels {
			symtable.Labels[addr] = label
		}
	}

	return asm.result[:asm.size], asm.errs
}
