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

package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("ArrowLeft", Canonical("Left"))
	assert.Equal("Enter", Canonical("Return"))
	assert.Equal("Space", Canonical("space"))
	assert.Equal("ShiftLeft", Canonical("Shift_L"))
	assert.Equal("Z", Canonical("z"))
	assert.Equal("Z", Canonical("Z"))
	assert.Equal("Digit7", Canonical("7"))
	assert.Equal("F5", Canonical("F5"))
	assert.Equal("Bogus", Canonical("Bogus"))
}

func TestKnownKey(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{"Left", "Right", "Up", "Down", "Return",
		"space", "Escape", "a", "Q", "0", "9", "ArrowLeft"} {
		assert.True(KnownKey(name), name)
	}

	assert.False(KnownKey("Bogus"))
	assert.False(KnownKey(""))
}

func TestDecodeTerminal(t *testing.T) {
	assert := assert.New(t)

	keys, quit := decodeTerminal([]byte("aZ5 \r"))
	assert.Equal([]string{"A", "Z", "Digit5", "Space", "Enter"}, keys)
	assert.False(quit)

	keys, quit = decodeTerminal([]byte("\x1b[A\x1b[D\x1b"))
	assert.Equal([]string{"ArrowUp", "ArrowLeft", "Escape"}, keys)
	assert.False(quit)

	keys, quit = decodeTerminal([]byte("\x1b[Z,"))
	assert.Equal([]string{"Escape", "Z", "Comma"}, keys)
	assert.False(quit)

	keys, quit = decodeTerminal([]byte("wq s"))
	assert.Equal([]string{"W"}, keys)
	assert.True(quit)

	keys, quit = decodeTerminal([]byte{0x03})
	assert.Empty(keys)
	assert.True(quit)

	keys, quit = decodeTerminal(nil)
	assert.Empty(keys)
	assert.False(quit)
}
