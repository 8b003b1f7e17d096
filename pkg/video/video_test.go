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

package video_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/goconsolite/pkg/video"
)

func TestRGBA(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		Color   uint8
		R, G, B uint8
	}{
		{0x00, 0x00, 0x00, 0x00},
		{0xE0, 0xE0, 0x00, 0x00},
		{0x1C, 0x00, 0xE0, 0x00},
		{0x03, 0x00, 0x00, 0xC0},
		{0xFF, 0xE0, 0xE0, 0xC0},
		{0x69, 0x60, 0x40, 0x40},
	} {
		r, g, b := video.RGBA(test.Color)
		assert.Equal(test.R, r, "red %#02x", test.Color)
		assert.Equal(test.G, g, "green %#02x", test.Color)
		assert.Equal(test.B, b, "blue %#02x", test.Color)
	}
}

func TestSetPixel(t *testing.T) {
	assert := assert.New(t)

	var vm video.VideoMemory
	vm.SetPixel(255, 191, 0xAB)
	vm.SetPixel(0, 0, 0x12)
	vm.SetPixel(10, 192, 0xFF)
	vm.SetPixel(10, 255, 0xFF)

	assert.Equal(uint8(0xAB), vm.Get(255, 191))
	assert.Equal(uint8(0x12), vm.Get(0, 0))
	assert.Zero(vm.Get(10, 192))
	assert.Zero(vm.Get(10, 0))

	vm.Clear()
	assert.Zero(vm.Get(255, 191))
}

func TestFrame(t *testing.T) {
	assert := assert.New(t)

	var vm video.VideoMemory
	frame := make([]byte, video.WIDTH*video.HEIGHT*4)

	assert.False(vm.Frame(frame))
	assert.Equal(byte(0xFF), frame[3])

	vm.SetPixel(1, 2, 0xE3)
	assert.True(vm.Frame(frame))
	assert.False(vm.Frame(frame))

	offset := (2*video.WIDTH + 1) * 4
	assert.Equal([]byte{0xE0, 0x00, 0xC0, 0xFF}, frame[offset:offset+4])

	assert.Panics(func() { vm.Frame(make([]byte, 16)) })
}

func TestConcurrentAccess(t *testing.T) {
	var vm video.VideoMemory
	var wg sync.WaitGroup

	frame := make([]byte, video.WIDTH*video.HEIGHT*4)

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			vm.SetPixel(uint8(i), uint8(i%video.HEIGHT), uint8(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			vm.Frame(frame)
		}
	}()
	wg.Wait()

	assert.Equal(t, uint8(999%256), vm.Get(231, 39))
}
