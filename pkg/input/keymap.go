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
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/lassandro/goconsolite/pkg/translate"
)

const DEFAULT_KEYMAP = "keys.txt"

var f = translate.From

var (
	ErrKeymapUnreadable = errors.New(f("keymap could not be read"))
	ErrNoKeymap         = errors.New(f("no keymap found"))
)

// Keymap binds input ids to key names. An id has at most one key.
type Keymap map[uint16]string

type UnknownKeyError struct {
	Line int
	Key  string
}

func (err *UnknownKeyError) Error() string {
	return f("key '%s' not recognized on line %d", err.Key, err.Line)
}

// ParseKeymap reads lines of the form "KEY INPUT_ID". Lines that do not
// parse are skipped silently; keys rejected by known are skipped with an
// UnknownKeyError. A nil known accepts every key.
func ParseKeymap(reader io.Reader, known func(string) bool) (Keymap, []error) {
	keymap := make(Keymap)
	errs := make([]error, 0)

	scanner := bufio.NewScanner(reader)
	line := 0

	for scanner.Scan() {
		line++

		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		id, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			continue
		}

		if known != nil && !known(fields[0]) {
			errs = append(errs, &UnknownKeyError{Line: line, Key: fields[0]})
			continue
		}

		keymap[uint16(id)] = fields[0]
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, errors.Wrapf(ErrKeymapUnreadable, "%v", err))
	}

	return keymap, errs
}

func LoadKeymapFile(path string, known func(string) bool) (Keymap, []error) {
	file, err := os.Open(path)
	if err != nil {
		return Keymap{}, []error{errors.Wrapf(ErrKeymapUnreadable, "%v", err)}
	}
	defer file.Close()

	return ParseKeymap(file, known)
}

// FindKeymap resolves the keymap path: the explicit argument when given,
// then keys.txt in the working directory, then keys.txt in the user's
// configuration folders.
func FindKeymap(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if _, err := os.Stat(DEFAULT_KEYMAP); err == nil {
		return DEFAULT_KEYMAP, nil
	}

	configDirs := configdir.New("goconsolite", "")
	for _, config := range configDirs.QueryFolders(configdir.All) {
		if config.Exists(DEFAULT_KEYMAP) {
			return filepath.Join(config.Path, DEFAULT_KEYMAP), nil
		}
	}

	return "", ErrNoKeymap
}
