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

package input

import (
	"log"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Controller tracks key state and answers the processor's INPUT queries.
// Key events arrive from the window goroutine.
type Controller struct {
	Logger *log.Logger

	mutex    sync.RWMutex
	bindings Keymap
	state    map[string]uint16
}

func NewController(keymap Keymap) *Controller {
	controller := &Controller{}
	controller.Bind(keymap)
	return controller
}

// Bind replaces the bindings. Key state is kept.
func (c *Controller) Bind(keymap Keymap) {
	bindings := make(Keymap, len(keymap))
	for id, key := range keymap {
		bindings[id] = key
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.bindings = bindings
	if c.state == nil {
		c.state = make(map[string]uint16)
	}
}

// Load binds the keymap file at path. Skipped lines are reported to Logger;
// only an unreadable file is returned as an error, leaving no bindings.
func (c *Controller) Load(path string, known func(string) bool) error {
	keymap, errs := LoadKeymapFile(path, known)

	var result error
	for _, err := range errs {
		if errors.Is(err, ErrKeymapUnreadable) {
			result = err
		} else if c.Logger != nil {
			c.Logger.Printf("warning: %s: %v", path, err)
		}
	}

	c.Bind(keymap)
	return result
}

// Keys lists the distinct bound key names in sorted order.
func (c *Controller) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	seen := make(map[string]bool)
	keys := make([]string, 0, len(c.bindings))

	for _, key := range c.bindings {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)
	return keys
}

func (c *Controller) Set(key string, pressed bool) {
	var status uint16
	if pressed {
		status = 1
	}

	c.mutex.Lock()
	if c.state == nil {
		c.state = make(map[string]uint16)
	}
	c.state[key] = status
	c.mutex.Unlock()
}

func (c *Controller) Press(key string) {
	c.Set(key, true)
}

func (c *Controller) Release(key string) {
	c.Set(key, false)
}

// GetInput returns 0 for unbound ids and for keys never pressed or
// released, otherwise the last reported state.
func (c *Controller) GetInput(id uint16) uint16 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	key, ok := c.bindings[id]
	if !ok {
		return 0
	}

	return c.state[key]
}
