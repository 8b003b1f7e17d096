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
	"strings"
)

// keysyms maps the X11 keysym names found in keymap files onto the key names
// the window backends report.
var keysyms = map[string]string{
	"Left":      "ArrowLeft",
	"Right":     "ArrowRight",
	"Up":        "ArrowUp",
	"Down":      "ArrowDown",
	"Return":    "Enter",
	"KP_Enter":  "NumpadEnter",
	"space":     "Space",
	"Escape":    "Escape",
	"Tab":       "Tab",
	"BackSpace": "Backspace",
	"Delete":    "Delete",
	"Shift_L":   "ShiftLeft",
	"Shift_R":   "ShiftRight",
	"Control_L": "ControlLeft",
	"Control_R": "ControlRight",
	"Alt_L":     "AltLeft",
	"Alt_R":     "AltRight",
	"comma":     "Comma",
	"period":    "Period",
	"slash":     "Slash",
	"semicolon": "Semicolon",
	"minus":     "Minus",
	"equal":     "Equal",
}

// terminalKeys are the names a raw terminal can produce.
var terminalKeys = map[string]bool{
	"ArrowLeft":  true,
	"ArrowRight": true,
	"ArrowUp":    true,
	"ArrowDown":  true,
	"Enter":      true,
	"Space":      true,
	"Escape":     true,
	"Tab":        true,
	"Backspace":  true,
	"Comma":      true,
	"Period":     true,
	"Slash":      true,
	"Semicolon":  true,
	"Minus":      true,
	"Equal":      true,
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		terminalKeys[string(c)] = true
	}

	for c := '0'; c <= '9'; c++ {
		terminalKeys["Digit"+string(c)] = true
	}
}

// Canonical returns the backend name for a keymap key name. Single letters
// and digits are accepted in either case; anything else passes through.
func Canonical(name string) string {
	if alias, ok := keysyms[name]; ok {
		return alias
	}

	if len(name) == 1 {
		switch c := name[0]; {
		case c >= 'a' && c <= 'z':
			return strings.ToUpper(name)
		case c >= '0' && c <= '9':
			return "Digit" + name
		}
	}

	return name
}

// KnownKey reports whether the key name can be observed by this build's
// window backend.
func KnownKey(name string) bool {
	return known(Canonical(name))
}

// decodeTerminal splits raw terminal input into key names. Ctrl-C and 'q'
// request exit and stop decoding.
func decodeTerminal(input []byte) (keys []string, quit bool) {
	for i := 0; i < len(input); i++ {
		c := input[i]

		switch {
		case c == 0x03 || c == 'q':
			return keys, true
		case c == 0x1B:
			if i+2 < len(input) && input[i+1] == '[' {
				if arrow, ok := arrows[input[i+2]]; ok {
					keys = append(keys, arrow)
					i += 2
					continue
				}
			}
			keys = append(keys, "Escape")
		case c == '\r' || c == '\n':
			keys = append(keys, "Enter")
		case c == '\t':
			keys = append(keys, "Tab")
		case c == 0x7F || c == 0x08:
			keys = append(keys, "Backspace")
		case c == ' ':
			keys = append(keys, "Space")
		case c >= 'a' && c <= 'z':
			keys = append(keys, string(c-'a'+'A'))
		case c >= 'A' && c <= 'Z':
			keys = append(keys, string(c))
		case c >= '0' && c <= '9':
			keys = append(keys, "Digit"+string(c))
		default:
			if name, ok := punctuation[c]; ok {
				keys = append(keys, name)
			}
		}
	}

	return keys, false
}

var arrows = map[byte]string{
	'A': "ArrowUp",
	'B': "ArrowDown",
	'C': "ArrowRight",
	'D': "ArrowLeft",
}

var punctuation = map[byte]string{
	',': "Comma",
	'.': "Period",
	'/': "Slash",
	';': "Semicolon",
	'-': "Minus",
	'=': "Equal",
}
