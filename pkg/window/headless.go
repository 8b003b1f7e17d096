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

//go:build headless

package window

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/lassandro/goconsolite/pkg/input"
	"github.com/lassandro/goconsolite/pkg/video"
)

const (
	HOLD_TIME = 150 * time.Millisecond
	POLL_TIME = 10 * time.Millisecond
)

// Window drives the input controller from a raw terminal. Nothing is drawn;
// Status, if set, is printed to stderr on exit.
type Window struct {
	Video  *video.VideoMemory
	Input  *input.Controller
	Scale  int
	Title  string
	Status func() string

	closed atomic.Bool
}

func New(vm *video.VideoMemory, controller *input.Controller) *Window {
	return &Window{
		Video: vm,
		Input: controller,
		Scale: 1,
		Title: "goconsolite",
	}
}

func known(name string) bool {
	return terminalKeys[name]
}

// Run blocks until Ctrl-C or 'q' is read or Close is called.
func (w *Window) Run() error {
	fd := int(os.Stdin.Fd())

	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return errors.Wrap(err, "raw terminal")
		}
		defer term.Restore(fd, state)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		return errors.Wrap(err, "non-blocking stdin")
	}
	defer unix.SetNonblock(fd, false)

	if w.Status != nil {
		defer func() {
			fmt.Fprintf(os.Stderr, "%s\r\n", w.Status())
		}()
	}

	held := make(map[string]time.Time)
	buffer := make([]byte, 64)

	for !w.closed.Load() {
		now := time.Now()

		n, err := unix.Read(fd, buffer)
		if err != nil && err != unix.EAGAIN && err != unix.EINTR {
			return errors.Wrap(err, "read stdin")
		}

		if n > 0 {
			keys, quit := decodeTerminal(buffer[:n])

			for _, key := range keys {
				for _, name := range w.bound(key) {
					w.Input.Press(name)
					held[name] = now.Add(HOLD_TIME)
				}
			}

			if quit {
				return nil
			}
		}

		for name, until := range held {
			if now.After(until) {
				w.Input.Release(name)
				delete(held, name)
			}
		}

		time.Sleep(POLL_TIME)
	}

	return nil
}

func (w *Window) Close() {
	w.closed.Store(true)
}

// bound lists the keymap names that resolve to the terminal key.
func (w *Window) bound(key string) []string {
	if w.Input == nil {
		return nil
	}

	var names []string
	for _, name := range w.Input.Keys() {
		if strings.EqualFold(Canonical(name), key) {
			names = append(names, name)
		}
	}

	return names
}
