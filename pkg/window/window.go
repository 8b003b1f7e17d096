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

//go:build !headless

package window

import (
	"image/color"
	"strings"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/lassandro/goconsolite/pkg/input"
	"github.com/lassandro/goconsolite/pkg/video"
)

// Window presents the framebuffer and feeds keyboard state to the input
// controller. Run must be called from the main goroutine.
type Window struct {
	Video  *video.VideoMemory
	Input  *input.Controller
	Scale  int
	Title  string
	Status func() string

	closed  atomic.Bool
	overlay bool
	screen  *ebiten.Image
	frame   []byte
	keys    map[string]ebiten.Key
}

func New(vm *video.VideoMemory, controller *input.Controller) *Window {
	return &Window{
		Video: vm,
		Input: controller,
		Scale: 3,
		Title: "goconsolite",
	}
}

func known(name string) bool {
	_, ok := lookupKey(name)
	return ok
}

func lookupKey(name string) (ebiten.Key, bool) {
	for key := ebiten.Key(0); key <= ebiten.KeyMax; key++ {
		if strings.EqualFold(key.String(), name) {
			return key, true
		}
	}

	return 0, false
}

// Run blocks until the window is closed or Close is called.
func (w *Window) Run() error {
	scale := max(w.Scale, 1)

	ebiten.SetWindowSize(video.WIDTH*scale, video.HEIGHT*scale)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)

	return ebiten.RunGame(w)
}

func (w *Window) Close() {
	w.closed.Store(true)
}

func (w *Window) Update() error {
	if ebiten.IsWindowBeingClosed() || w.closed.Load() {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		w.overlay = !w.overlay
	}

	if w.Input == nil {
		return nil
	}

	if w.keys == nil {
		w.keys = make(map[string]ebiten.Key)
	}

	for _, name := range w.Input.Keys() {
		key, ok := w.keys[name]
		if !ok {
			if key, ok = lookupKey(Canonical(name)); !ok {
				continue
			}
			w.keys[name] = key
		}

		w.Input.Set(name, ebiten.IsKeyPressed(key))
	}

	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.screen == nil {
		w.screen = ebiten.NewImage(video.WIDTH, video.HEIGHT)
		w.frame = make([]byte, video.WIDTH*video.HEIGHT*4)
		w.Video.Frame(w.frame)
		w.screen.WritePixels(w.frame)
	} else if w.Video.Frame(w.frame) {
		w.screen.WritePixels(w.frame)
	}

	screen.DrawImage(w.screen, nil)

	if w.overlay && w.Status != nil {
		text.Draw(
			screen, w.Status(), basicfont.Face7x13, 4, 14,
			color.RGBA{0, 220, 90, 255},
		)
	}
}

func (w *Window) Layout(_, _ int) (int, int) {
	return video.WIDTH, video.HEIGHT
}
