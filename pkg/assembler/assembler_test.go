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

package assembler_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/goconsolite/pkg/assembler"
)

type testCase struct {
	Name     string
	Input    string
	Size     int
	Output   map[uint16]byte
	SymTable *assembler.SymTable
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	var symtarget *assembler.SymTable

	if test.SymTable != nil {
		symtarget = assembler.NewSymTable("")
	}

	result, errs := assembler.Assemble(strings.NewReader(test.Input), symtarget)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	if test.Size != 0 && len(result) != test.Size {
		t.Fatalf(
			"Invalid image length\n"+
				"want:%d (test.Size)\n"+
				"have:%d",
			test.Size,
			len(result),
		)
	}

	for addr := range test.Output {
		if int(addr) >= len(result) {
			t.Fatalf(
				"Image too short\n"+
					"want:> %#04x (test.Output)\n"+
					"have:%#04x",
				addr,
				len(result),
			)
		}
	}

	for addr := 0; addr < len(result); addr++ {
		have := result[addr]
		want, exists := test.Output[uint16(addr)]
		if exists && have != want {
			t.Fatalf(
				"Encoding mismatch\n"+
					"want:%#02x (test.Output[%#04x])\n"+
					"have:%#02x",
				want,
				addr,
				have,
			)
		} else if !exists && have != 0 {
			t.Fatalf(
				"Unexpected byte\n"+
					"want:0x00\n"+
					"have:%#02x (result[%#04x])",
				have,
				addr,
			)
		}
	}

	if test.SymTable != nil {
		if !reflect.DeepEqual(test.SymTable.Symbols, symtarget.Symbols) {
			t.Fatalf(
				"Symtable mismatch\n"+
					"want:%v (test.SymTable.Symbols)\n"+
					"have:%v",
				test.SymTable.Symbols,
				symtarget.Symbols,
			)
		}

		if !reflect.DeepEqual(test.SymTable.Labels, symtarget.Labels) {
			t.Fatalf(
				"Symtable mismatch\n"+
					"want:%v (test.SymTable.Labels)\n"+
					"have:%v",
				test.SymTable.Labels,
				symtarget.Labels,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	_, errs := assembler.Assemble(strings.NewReader(test.Input), nil)

	if test.Error == nil {
		panic("Fail case missing error value")
	}

	if len(errs) == 0 {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if len(errs) > 1 {
		errTypes := make([]reflect.Type, 0, len(errs))
		for _, err := range errs {
			errTypes = append(errTypes, reflect.TypeOf(err))
		}

		t.Fatalf(
			"%s produced multiple errors:\n\twant:%T (test.Error)\n\thave:%v",
			t.Name(),
			test.Error,
			errTypes,
		)
	}

	if reflect.TypeOf(errs[0]) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T",
			t.Name(),
			test.Error,
			errs[0],
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

// OP   |opcode  |----reg1|----reg2|--------|
// ---- [ opcode | arg1   | arg2   | arg3   ]
func TestRegisterFormat(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "ADD",
			Input:  `ADD A, B`,
			Size:   4,
			Output: map[uint16]byte{0x0000: 0x0A, 0x0001: 0x02, 0x0002: 0x03},
		},
		{
			Name:   "ADD Lowercase Numbered",
			Input:  `add r2, r3`,
			Size:   4,
			Output: map[uint16]byte{0x0000: 0x0A, 0x0001: 0x02, 0x0002: 0x03},
		},
		{
			Name:   "SHRA High Registers",
			Input:  `SHRA N, R14`,
			Output: map[uint16]byte{0x0000: 0x12, 0x0001: 0x0F, 0x0002: 0x0E},
		},
		{
			Name:   "PUSH FP",
			Input:  `PUSH FP`,
			Output: map[uint16]byte{0x0000: 0x08, 0x0001: 0x01},
		},
		{
			Name:   "JMP",
			Input:  `JMP R15`,
			Output: map[uint16]byte{0x0000: 0x30, 0x0001: 0x0F},
		},
		{
			Name:   "NOP",
			Input:  `NOP`,
			Size:   4,
			Output: map[uint16]byte{},
		},
		{
			Name:   "TIMERST",
			Input:  `TIMERST`,
			Output: map[uint16]byte{0x0000: 0x1B},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Missing Operand",
			Input: `ADD A`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "Literal Operand",
			Input: `ADD A, 5`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Unknown Register",
			Input: `ADD A, Q`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "Register Out Of Range",
			Input: `PUSH R16`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "Extra Operand",
			Input: `NOP A`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

// OP   |opcode  |----reg1|argB             |
// ---- [ opcode | arg1   | arg2   | arg3   ]
func TestImmediateFormat(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "MOVI Hex",
			Input:  `MOVI SP, 0x1234`,
			Output: map[uint16]byte{0x0000: 0x07, 0x0002: 0x12, 0x0003: 0x34},
		},
		{
			Name:   "MOVI Short Hex",
			Input:  `MOVI A, xBEEF`,
			Output: map[uint16]byte{0x0000: 0x07, 0x0001: 0x02, 0x0002: 0xBE, 0x0003: 0xEF},
		},
		{
			Name:   "MOVI Negative",
			Input:  `MOVI A, #-1`,
			Output: map[uint16]byte{0x0000: 0x07, 0x0001: 0x02, 0x0002: 0xFF, 0x0003: 0xFF},
		},
		{
			Name:   "LOADI Decimal",
			Input:  `LOADI C, 300`,
			Output: map[uint16]byte{0x0000: 0x05, 0x0001: 0x04, 0x0002: 0x01, 0x0003: 0x2C},
		},
		{
			Name:   "STORI",
			Input:  `STORI A, 0x8000`,
			Output: map[uint16]byte{0x0000: 0x19, 0x0001: 0x02, 0x0002: 0x80},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Oversized",
			Input: `MOVI A, #70000`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "Undersized",
			Input: `MOVI A, #-40000`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "Invalid",
			Input: `MOVI A, #abc`,
			Error: &assembler.InvalidLiteralError{},
		},
		{
			Name:  "Register",
			Input: `MOVI A, B`,
			Error: &assembler.InvalidOperandError{},
		},
	})
}

// OP   |opcode  |argA             |--------|
// OP   |opcode  |arg1    |--------|--------|
// ---- [ opcode | arg1   | arg2   | arg3   ]
func TestAddressFormat(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "JMPI",
			Input:  `JMPI 0x0100`,
			Output: map[uint16]byte{0x0000: 0x31, 0x0001: 0x01},
		},
		{
			Name:   "CALL",
			Input:  `CALL 0xABCD`,
			Output: map[uint16]byte{0x0000: 0x02, 0x0001: 0xAB, 0x0002: 0xCD},
		},
		{
			Name:   "RET",
			Input:  `RET`,
			Output: map[uint16]byte{0x0000: 0x03},
		},
		{
			Name:   "RET Skip",
			Input:  `RET 4`,
			Output: map[uint16]byte{0x0000: 0x03, 0x0001: 0x04},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "RET Oversized",
			Input: `RET 256`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "RET Register",
			Input: `RET A`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Unknown Label",
			Input: `JMPI nowhere`,
			Error: &assembler.UnknownLabelError{},
		},
	})
}

func TestLabel(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Backward Reference",
			Input: strings.Join([]string{
				"start:  MOVI A, data",
				"        JMPI start",
				"data    .FILL 0xCAFE",
			}, "\n"),
			Size: 10,
			Output: map[uint16]byte{
				0x0000: 0x07, 0x0001: 0x02, 0x0003: 0x08,
				0x0004: 0x31,
				0x0008: 0xCA, 0x0009: 0xFE,
			},
		},
		{
			Name: "Forward Reference",
			Input: strings.Join([]string{
				"JEQ end",
				"NOP",
				"end",
				"NOP",
			}, "\n"),
			Size:   12,
			Output: map[uint16]byte{0x0000: 0x32, 0x0002: 0x08},
		},
		{
			Name: "Fill Label",
			Input: strings.Join([]string{
				".FILL table",
				".BLKB 2",
				"table .BYTE 1",
			}, "\n"),
			Output: map[uint16]byte{0x0001: 0x04, 0x0004: 0x01},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Redeclared",
			Input: "a NOP\na NOP",
			Error: &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "Unknown Identifier",
			Input: "FOO A, B",
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "Bad Terminator",
			Input: "#5: NOP",
			Error: &assembler.UnexpectedCharacterError{},
		},
	})
}

func TestOrig(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "ORIG",
			Input:  ".ORIG 0x0010\nADD A, B",
			Size:   0x14,
			Output: map[uint16]byte{0x0010: 0x0A, 0x0011: 0x02, 0x0012: 0x03},
		},
		{
			Name:   "ORIG Backwards",
			Input:  ".ORIG 0x0010\nNOP\n.ORIG 0\nRET",
			Size:   0x14,
			Output: map[uint16]byte{0x0000: 0x03},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Misaligned",
			Input: ".ORIG 2\nNOP",
			Error: &assembler.MisalignedInstructionError{},
		},
		{
			Name:  "Misaligned After Byte",
			Input: ".BYTE 1\nNOP",
			Error: &assembler.MisalignedInstructionError{},
		},
		{
			Name:  "Label Operand",
			Input: ".ORIG start",
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Oversized Binary",
			Input: ".ORIG 0xFFFC\nNOP\nNOP",
			Error: &assembler.OversizedBinaryError{},
		},
	})
}

func TestData(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "FILL",
			Input:  ".FILL 0x1234\n.FILL #-2",
			Size:   4,
			Output: map[uint16]byte{0x0000: 0x12, 0x0001: 0x34, 0x0002: 0xFF, 0x0003: 0xFE},
		},
		{
			Name:   "BYTE",
			Input:  ".BYTE 0xFF\n.BYTE #-1\n.BYTE 7",
			Size:   3,
			Output: map[uint16]byte{0x0000: 0xFF, 0x0001: 0xFF, 0x0002: 0x07},
		},
		{
			Name:   "BLKB",
			Input:  ".BLKB 3\n.BYTE 1",
			Size:   4,
			Output: map[uint16]byte{0x0003: 0x01},
		},
		{
			Name:   "STRINGZ",
			Input:  `.STRINGZ "Hi"`,
			Size:   3,
			Output: map[uint16]byte{0x0000: 'H', 0x0001: 'i'},
		},
		{
			Name:   "STRINGZ Escapes",
			Input:  `.STRINGZ "a\"; b"`,
			Size:   6,
			Output: map[uint16]byte{0x0000: 'a', 0x0001: '"', 0x0002: ';', 0x0003: ' ', 0x0004: 'b'},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "BYTE Oversized",
			Input: ".BYTE 256",
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "STRINGZ Unterminated",
			Input: `.STRINGZ "abc`,
			Error: &assembler.InvalidStringError{},
		},
		{
			Name:  "STRINGZ Literal",
			Input: `.STRINGZ 5`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Unknown Directive",
			Input: `.WORD 1`,
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestEnd(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "END",
			Input:  "ADD A, B\n.END\nADD A, B",
			Size:   4,
			Output: map[uint16]byte{0x0000: 0x0A, 0x0001: 0x02, 0x0002: 0x03},
		},
		{
			Name:   "END Skips Garbage",
			Input:  ".END\n$$$",
			Size:   0,
			Output: map[uint16]byte{},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "END Operand",
			Input: ".END 1",
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

func TestComment(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Comments",
			Input:  "; header\n  ADD A, B ; trailing\n;",
			Size:   4,
			Output: map[uint16]byte{0x0000: 0x0A, 0x0001: 0x02, 0x0002: 0x03},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Unexpected Character",
			Input: "ADD A, B $",
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Empty Operand",
			Input: "ADD A,, B",
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Non ASCII",
			Input: "ADD A, ß",
			Error: &assembler.OversizedCharacterError{},
		},
	})
}

func TestSymtable(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Symbols",
			Input: strings.Join([]string{
				"start NOP",
				"",
				"  ADD A, B ; x",
				`.STRINGZ "a"`,
			}, "\n"),
			Output: map[uint16]byte{0x0004: 0x0A, 0x0005: 0x02, 0x0006: 0x03, 0x0008: 'a'},
			SymTable: &assembler.SymTable{
				Symbols: map[uint16]int64{0x0000: 0, 0x0004: 11, 0x0008: 26},
				Labels:  map[uint16]string{0x0000: "start"},
			},
		},
	})
}

func TestSymtableEncoding(t *testing.T) {
	symtable := assembler.NewSymTable("/tmp/prog.asm")

	_, errs := assembler.Assemble(strings.NewReader("loop NOP\nJMPI loop\n"), symtable)
	require.Empty(t, errs)

	var buf bytes.Buffer
	require.NoError(t, symtable.Encode(&buf))

	decoded, err := assembler.DecodeSymTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, symtable, decoded)

	addr, ok := decoded.Address("loop")
	assert.True(t, ok)
	assert.Zero(t, addr)

	addr, ok = decoded.Lookup(9)
	assert.True(t, ok)
	assert.Equal(t, uint16(4), addr)

	label, ok := decoded.Label(0)
	assert.True(t, ok)
	assert.Equal(t, "loop", label)
}

func TestErrorPosition(t *testing.T) {
	_, errs := assembler.Assemble(strings.NewReader("NOP\nADD A, Q"), nil)
	require.Len(t, errs, 1)

	tokenErr, ok := errs[0].(assembler.TokenError)
	require.True(t, ok)

	position := tokenErr.GetPosition()
	assert.Equal(t, 2, position.Line)
	assert.Equal(t, 8, position.Column)
	assert.Equal(t, int64(4), position.LineByte)
	assert.Equal(t, int64(11), position.Byte)
	assert.Equal(t, int64(1), position.Size)
	assert.Contains(t, errs[0].Error(), "02:08")
}
