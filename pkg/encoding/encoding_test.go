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

package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/goconsolite/pkg/encoding"
)

func TestWord(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(0x1234), encoding.Word(0x12, 0x34))
	assert.Equal(uint16(0xFF00), encoding.Word(0xFF, 0x00))

	hi, lo := encoding.SplitWord(0xBEEF)
	assert.Equal(byte(0xBE), hi)
	assert.Equal(byte(0xEF), lo)
}

func TestDecodeHex(t *testing.T) {
	assert := assert.New(t)

	for input, want := range map[string]uint16{
		"0xFFFF": 0xFFFF,
		"xFFFF":  0xFFFF,
		"0x2a":   0x2A,
		"X10":    0x10,
	} {
		have, err := encoding.DecodeHex(input)
		assert.NoError(err, input)
		assert.Equal(want, have, input)
	}

	for _, input := range []string{"FFFF", "1x12", "0x10000", "0xZZ", ""} {
		_, err := encoding.DecodeHex(input)
		assert.Error(err, input)
	}
}

func TestDecodeInt(t *testing.T) {
	assert := assert.New(t)

	for input, want := range map[string]int32{
		"#123":  123,
		"123":   123,
		"#-12":  -12,
		"65535": 65535,
	} {
		have, err := encoding.DecodeInt(input)
		assert.NoError(err, input)
		assert.Equal(want, have, input)
	}

	_, err := encoding.DecodeInt("#abc")
	assert.Error(err)
}
