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
	"github.com/pkg/errors"

	"github.com/lassandro/goconsolite/pkg/translate"
)

var f = translate.From

var (
	ErrEmptyImage      = errors.New(f("program image is empty"))
	ErrImageTooLarge   = errors.New(f("program image is larger than memory"))
	ErrImageUnreadable = errors.New(f("program image could not be read"))
	ErrIllegalOpcode   = errors.New(f("illegal opcode"))
)

type IllegalOpcodeError struct {
	Addr   uint16
	Opcode uint8
}

func (err *IllegalOpcodeError) Error() string {
	return f("illegal opcode 0x%02X at 0x%04X", err.Opcode, err.Addr)
}

func (err *IllegalOpcodeError) Is(target error) bool {
	return target == ErrIllegalOpcode
}
