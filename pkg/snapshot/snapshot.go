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

package snapshot

import (
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/lassandro/goconsolite/pkg/machine"
	"github.com/lassandro/goconsolite/pkg/translate"
)

const (
	MAGIC   = "CSNP"
	VERSION = 1
)

const (
	FLAG_OVERFLOW uint8 = 1 << 3
	FLAG_CARRY    uint8 = 1 << 2
	FLAG_ZERO     uint8 = 1 << 1
	FLAG_SIGN     uint8 = 1 << 0
)

var f = translate.From

var (
	ErrBadMagic = errors.New(f("not a snapshot file"))
	ErrVersion  = errors.New(f("unsupported snapshot version"))
)

// Header precedes the snappy-compressed memory image. Multi-byte fields
// are big-endian.
type Header struct {
	Magic     string   `struc:"[4]byte"`
	Version   uint32
	Registers []uint16 `struc:"[16]uint16"`
	Program   uint16
	Color     uint8
	Flags     uint8
}

func packFlags(flags machine.Flags) uint8 {
	var value uint8

	if flags.Overflow {
		value |= FLAG_OVERFLOW
	}
	if flags.Carry {
		value |= FLAG_CARRY
	}
	if flags.Zero {
		value |= FLAG_ZERO
	}
	if flags.Sign {
		value |= FLAG_SIGN
	}

	return value
}

func unpackFlags(value uint8) machine.Flags {
	return machine.Flags{
		Overflow: value&FLAG_OVERFLOW != 0,
		Carry:    value&FLAG_CARRY != 0,
		Zero:     value&FLAG_ZERO != 0,
		Sign:     value&FLAG_SIGN != 0,
	}
}

func Save(writer io.Writer, state *machine.MachineState) error {
	header := &Header{
		Magic:     MAGIC,
		Version:   VERSION,
		Registers: append([]uint16(nil), state.Registers[:]...),
		Program:   state.Program,
		Color:     state.Color,
		Flags:     packFlags(state.Flags),
	}

	if err := struc.Pack(writer, header); err != nil {
		return errors.Wrap(err, "failed to pack snapshot header")
	}

	zw := snappy.NewBufferedWriter(writer)
	if _, err := zw.Write(state.Memory[:]); err != nil {
		return errors.Wrap(err, "failed to write snapshot memory")
	}

	return zw.Close()
}

// Load replaces state with the snapshot. state is untouched on error.
func Load(reader io.Reader, state *machine.MachineState) error {
	var header Header

	if err := struc.Unpack(reader, &header); err != nil {
		return errors.Wrap(err, "failed to unpack snapshot header")
	}

	if header.Magic != MAGIC {
		return ErrBadMagic
	}

	if header.Version != VERSION {
		return errors.Wrapf(ErrVersion, "version %d", header.Version)
	}

	var loaded machine.MachineState

	copy(loaded.Registers[:], header.Registers)
	loaded.Program = header.Program & 0xFFFC
	loaded.Color = header.Color
	loaded.Flags = unpackFlags(header.Flags)

	zr := snappy.NewReader(reader)
	if _, err := io.ReadFull(zr, loaded.Memory[:]); err != nil {
		return errors.Wrap(err, "failed to read snapshot memory")
	}

	*state = loaded
	return nil
}

func SaveFile(path string, state *machine.MachineState) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Save(file, state); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

func LoadFile(path string, state *machine.MachineState) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Load(file, state)
}
