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

package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"

	"github.com/lassandro/goconsolite/pkg/machine"
)

var (
	colorAddr    = ansi.ColorCode("default+b")
	colorDim     = ansi.ColorCode("black+h")
	colorChanged = ansi.ColorCode("default+bu")
	colorCurrent = ansi.ColorCode("green+b")
)

// New returns a debugger writing to output, colored when output is a
// terminal.
func New(output io.Writer) *Debugger {
	dbg := &Debugger{Output: output}

	if file, ok := output.(*os.File); ok {
		fd := file.Fd()
		dbg.Color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	return dbg
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Break.Swap(false) {
		dbg.breakAt(mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.breakAt(mc)
			break
		}
	}
}

func (dbg *Debugger) breakAt(mc *machine.Machine) {
	if dbg.HandleBreak != nil {
		dbg.HandleBreak(dbg, mc)
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			if dbg.HandleRead != nil {
				dbg.HandleRead(addr, dbg, mc)
			}
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			if dbg.HandleWrite != nil {
				dbg.HandleWrite(addr, dbg, mc)
			}
			break
		}
	}
}

func (dbg *Debugger) AddBreakpoint(addr uint16) {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
}

// AddWatchpoint replaces any existing watchpoint at addr.
func (dbg *Debugger) AddWatchpoint(addr uint16, watchType WatchpointType) {
	for i, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr {
			dbg.Watchpoints[i].Type = watchType
			return
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, watchType})
}

func (dbg *Debugger) Clear() {
	dbg.Breakpoints = nil
	dbg.Watchpoints = nil
}

func (dbg *Debugger) output() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

func (dbg *Debugger) paint(color, text string) string {
	if !dbg.Color {
		return text
	}

	return color + text + ansi.Reset
}

func (dbg *Debugger) addr(addr uint16) string {
	return dbg.paint(colorAddr, fmt.Sprintf("[0x%04x]", addr))
}

// PrintRegs dumps the register file. Registers that changed since the
// previous dump are highlighted, or marked with '+' without color.
func (dbg *Debugger) PrintRegs(mc *machine.MachineState) {
	out := dbg.output()

	for i, value := range mc.Registers {
		name := fmt.Sprintf("%2s", machine.RegisterNames[i])
		text := fmt.Sprintf("0x%04x", value)

		changed := dbg.lastValid && dbg.lastRegs[i] != value
		if changed {
			if dbg.Color {
				name = dbg.paint(colorChanged, name)
				text = dbg.paint(colorChanged, text)
			} else {
				name = "+" + strings.TrimLeft(name, " ")
			}
		}

		fmt.Fprintf(out, "%s %s", name, text)

		if i%4 == 3 {
			fmt.Fprintln(out)
		} else {
			fmt.Fprint(out, "  ")
		}
	}

	flagNames := []struct {
		Name string
		Set  bool
	}{
		{"O", mc.Flags.Overflow},
		{"C", mc.Flags.Carry},
		{"Z", mc.Flags.Zero},
		{"S", mc.Flags.Sign},
	}

	flags := make([]string, 0, len(flagNames))
	for _, flag := range flagNames {
		if flag.Set {
			flags = append(flags, dbg.paint(colorCurrent, flag.Name))
		} else if dbg.Color {
			flags = append(flags, dbg.paint(colorDim, flag.Name))
		} else {
			flags = append(flags, "-")
		}
	}

	fmt.Fprintf(
		out, "IP 0x%04x  COLOR 0x%02x  FLAGS %s\n",
		mc.Program, mc.Color, strings.Join(flags, " "),
	)

	dbg.lastRegs = mc.Registers
	dbg.lastValid = true
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	out := dbg.output()

	for i := uint16(0); i < count; i++ {
		at := addr + i

		if i == 0 {
			fmt.Fprintf(out, "%s ", dbg.addr(at))
		} else if i%8 == 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s ", dbg.addr(at))
		}

		value := mc.Memory[at]
		text := fmt.Sprintf("%02x", value)

		if value == 0 {
			fmt.Fprintf(out, "%s ", dbg.paint(colorDim, text))
		} else {
			fmt.Fprintf(out, "%s ", text)
		}
	}

	fmt.Fprintln(out)
}

// PrintDisasm decodes count instructions from addr, marking the one at the
// program counter and any labels.
func (dbg *Debugger) PrintDisasm(mc *machine.Machine, addr, count uint16) {
	out := dbg.output()
	addr &= 0xFFFC

	for i := uint16(0); i < count; i++ {
		at := addr + i*machine.INST_SIZE

		if dbg.SymTable != nil {
			if label, ok := dbg.SymTable.Label(at); ok {
				fmt.Fprintf(out, "%s:\n", label)
			}
		}

		marker := "  "
		text := mc.Disassemble(at)
		if at == mc.State.Program {
			marker = dbg.paint(colorCurrent, "=>")
			text = dbg.paint(colorCurrent, text)
		}

		fmt.Fprintf(out, "%s %s %s\n", marker, dbg.addr(at), text)
	}
}

func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	out := dbg.output()

	if dbg.Source == nil {
		fmt.Fprintln(out, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]
	if !exists {
		fmt.Fprintf(out, "No instruction found at 0x%04x\n", addr)
		return
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(out, err)
		return
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, found := dbg.SymTable.Lookup(offset); found {
			fmt.Fprintf(out, "%s ", dbg.addr(lineaddr))
		} else {
			fmt.Fprintf(out, "%s ", dbg.paint(colorDim, "~~~~~~~~"))
		}

		fmt.Fprintln(out, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(out, err)
	}
}
