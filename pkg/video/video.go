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

package video

import (
	"sync"
)

const (
	WIDTH  = 256
	HEIGHT = 192
)

// VideoMemory is the console framebuffer: one 3-3-2 color byte per pixel.
// The processor writes it and the renderer reads it from another goroutine.
type VideoMemory struct {
	mutex  sync.RWMutex
	pixels [WIDTH * HEIGHT]byte
	dirty  bool
}

// SetPixel ignores rows past the bottom of the screen.
func (vm *VideoMemory) SetPixel(x, y, color uint8) {
	if int(y) >= HEIGHT {
		return
	}

	vm.mutex.Lock()
	vm.pixels[int(y)*WIDTH+int(x)] = color
	vm.dirty = true
	vm.mutex.Unlock()
}

func (vm *VideoMemory) Get(x, y uint8) uint8 {
	if int(y) >= HEIGHT {
		return 0
	}

	vm.mutex.RLock()
	defer vm.mutex.RUnlock()

	return vm.pixels[int(y)*WIDTH+int(x)]
}

func (vm *VideoMemory) Clear() {
	vm.mutex.Lock()
	clear(vm.pixels[:])
	vm.dirty = true
	vm.mutex.Unlock()
}

// Frame expands the framebuffer into dst as RGBA, 4 bytes per pixel. It
// reports whether anything was written since the previous call.
func (vm *VideoMemory) Frame(dst []byte) bool {
	if len(dst) < WIDTH*HEIGHT*4 {
		panic("video: frame buffer too small")
	}

	vm.mutex.Lock()
	defer vm.mutex.Unlock()

	changed := vm.dirty
	vm.dirty = false

	for i, color := range vm.pixels {
		r, g, b := RGBA(color)
		dst[i*4+0] = r
		dst[i*4+1] = g
		dst[i*4+2] = b
		dst[i*4+3] = 0xFF
	}

	return changed
}

// RGBA expands a 3-3-2 color byte to 8 bits per channel.
func RGBA(color uint8) (r, g, b uint8) {
	r = color & 0xE0
	g = (color & 0x1C) << 3
	b = (color & 0x03) << 6
	return
}
