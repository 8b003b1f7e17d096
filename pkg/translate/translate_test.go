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

package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/goconsolite/pkg/translate"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("image is empty", translate.From("image is empty"))
	assert.Equal("line 4: bad", translate.From("line %d: %s", 4, "bad"))
}
