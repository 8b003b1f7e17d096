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
	"strings"
	"unicode"
)

// isHexIdent reports whether an identifier is really an x-prefixed hex
// literal such as xBEEF.
func isHexIdent(value string) bool {
	if len(value) < 2 || (value[0] != 'x' && value[0] != 'X') {
		return false
	}

	for _, char := range value[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", char) {
			return false
		}
	}

	return true
}

// tokenizeLine splits one source line into tokens. cursor carries the line
// number and the byte offset of the start of the line.
func tokenizeLine(line string, cursor Cursor) (tokens []Token, errs []error) {
	var builder strings.Builder
	var tokenType TokenType = TOKEN_NONE
	var tokenStart int
	var escaped bool

	begin := func(newType TokenType, column int) {
		tokenType = newType
		tokenStart = column
	}

	flush := func() {
		if builder.Len() > 0 {
			value := builder.String()

			if tokenType == TOKEN_IDENT && isHexIdent(value) {
				tokenType = TOKEN_LITERAL
			}

			tokens = append(tokens, Token{
				Type:  tokenType,
				Value: value,
				Position: Cursor{
					Line:     cursor.Line,
					Column:   tokenStart,
					Byte:     cursor.LineByte + int64(tokenStart-1),
					Size:     int64(len(value)),
					LineByte: cursor.LineByte,
				},
			})

			builder.Reset()
		}

		tokenType = TOKEN_NONE
	}

scan:
	for index, char := range line {
		position := cursor
		position.Column = index + 1
		position.Byte = cursor.LineByte + int64(index)
		position.Size = 1

		if tokenType == TOKEN_STRING {
			builder.WriteRune(char)

			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{position})
			}

			if char == '"' && !escaped {
				flush()
			}

			escaped = char == '\\' && !escaped
			continue
		}

		switch {
		// Whitespace
		case unicode.IsSpace(char):
			flush()

		// Comments
		case char == ';':
			flush()
			break scan

		// Operand separator
		case char == ',':
			if tokenType == TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{position, char})
			}
			flush()

		// Label terminator (i.e. loop:)
		case char == ':':
			if tokenType != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{position, char})
			}
			flush()

		// String literal
		case char == '"':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{position, char})
				continue
			}

			begin(TOKEN_STRING, position.Column)
			builder.WriteRune(char)
			escaped = false

		// Assembler directives
		case char == '.':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{position, char})
				continue
			}

			begin(TOKEN_DIRECTIVE, position.Column)
			builder.WriteRune(char)

		// Base 10 literal (i.e. #42, #-5, -5) and hex literal (i.e. 0x2A)
		case char == '#' || char == '-' || unicode.IsDigit(char):
			if tokenType == TOKEN_NONE {
				begin(TOKEN_LITERAL, position.Column)
			} else if !unicode.IsDigit(char) {
				errs = append(errs, &UnexpectedCharacterError{position, char})
				continue
			}

			builder.WriteRune(char)

		// Identifiers, hex digits and x-prefixed hex literals (i.e. x2A)
		case char == '_' || unicode.IsLetter(char):
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{position})
				continue
			}

			if tokenType == TOKEN_NONE {
				begin(TOKEN_IDENT, position.Column)
			}

			builder.WriteRune(char)

		default:
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{position})
			} else {
				errs = append(errs, &UnexpectedCharacterError{position, char})
			}
		}
	}

	if tokenType == TOKEN_STRING {
		position := cursor
		position.Column = tokenStart
		position.Byte = cursor.LineByte + int64(tokenStart-1)
		position.Size = int64(builder.Len())
		errs = append(errs, &InvalidStringError{position})
		builder.Reset()
	}

	flush()

	return tokens, errs
}
