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

package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/mgutz/ansi"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/lassandro/goconsolite/pkg/debugger"
	"github.com/lassandro/goconsolite/pkg/encoding"
	"github.com/lassandro/goconsolite/pkg/machine"
	"github.com/lassandro/goconsolite/pkg/snapshot"
	"github.com/lassandro/goconsolite/pkg/window"
)

// session is the interactive debugger. It runs on the processor goroutine
// from inside the debugger hooks.
type session struct {
	dbg   *debugger.Debugger
	mc    *machine.Machine
	win   *window.Window
	image string

	rl      *readline.Instance
	lastcmd []string

	closeOnce sync.Once
}

func newSession(dbg *debugger.Debugger, mc *machine.Machine, win *window.Window, image string) (*session, error) {
	configDirs := configdir.New("goconsolite", "debug")
	cacheDir := configDirs.QueryCacheFolder()
	historyPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		historyPath = filepath.Join(cacheDir.Path, "history")
	}

	prompt := "(dbg) "
	if dbg.Color {
		prompt = ansi.Color(prompt, "black+h")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		HistoryFile:     historyPath,
	})

	if err != nil {
		return nil, errors.Wrap(err, "debugger prompt")
	}

	return &session{dbg: dbg, mc: mc, win: win, image: image, rl: rl}, nil
}

func (s *session) Close() {
	s.closeOnce.Do(func() {
		s.rl.Close()

		if closer, ok := s.dbg.Source.(io.Closer); ok {
			closer.Close()
		}
	})
}

// address resolves a label or a hex literal.
func (s *session) address(arg string) (uint16, error) {
	if s.dbg.SymTable != nil {
		if addr, ok := s.dbg.SymTable.Address(arg); ok {
			return addr, nil
		}
	}

	return encoding.DecodeHex(arg)
}

func count(arg string) (uint16, error) {
	value, err := strconv.ParseUint(arg, 10, 16)
	return uint16(value), err
}

// span parses the shared "[addr|label|#] [#]" argument form.
func (s *session) span(args []string, size uint16) (uint16, uint16, bool) {
	addr := s.mc.State.Program

	if len(args) > 0 {
		var err error

		if addr, err = s.address(args[0]); err != nil {
			if size, err = count(args[0]); err != nil {
				log.Println(err)
				return 0, 0, false
			}

			addr = s.mc.State.Program
		}
	}

	if len(args) > 1 {
		var err error

		if size, err = count(args[1]); err != nil {
			log.Println(err)
			return 0, 0, false
		}
	}

	return addr, size, true
}

func indexFormat(n int, suffix string) string {
	digits := math.Floor(math.Log10(float64(n + 1)))
	return fmt.Sprintf("#%%0%dd: %0x%04x%s\n", int64(digits)+1, suffix)
}

func (s *session) debugBreak(args []string) {
	dbg := s.dbg

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x####|label]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := s.address(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		dbg.AddBreakpoint(addr & 0xFFFC)
		fmt.Printf("Breakpoint added [0x%04x]\n", addr&0xFFFC)

	case "l", "ls", "list":
		format := indexFormat(len(dbg.Breakpoints), "")

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(format, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Breakpoints)) {
			log.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints = append(dbg.Breakpoints[:i], dbg.Breakpoints[i+1:]...)
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
	}
}

var watchNames = map[debugger.WatchpointType]string{
	debugger.ReadWatch:      "read",
	debugger.WriteWatch:     "write",
	debugger.ReadWriteWatch: "readwrite",
}

func (s *session) debugWatch(args []string) {
	dbg := s.dbg

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x####|label] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := s.address(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		dbg.AddWatchpoint(addr, wtype)
		fmt.Printf("Watchpoint added [0x%04x] (%s)\n", addr, watchNames[wtype])

	case "l", "ls", "list":
		format := indexFormat(len(dbg.Watchpoints), " %s")

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(format, i, watchpoint.Addr, watchNames[watchpoint.Type])
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Watchpoints)) {
			log.Println("Invalid watchpoint number")
			return
		}

		dbg.Watchpoints = append(dbg.Watchpoints[:i], dbg.Watchpoints[i+1:]...)
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

// registerIndex accepts R0-R15 and the register aliases.
func registerIndex(name string) (int, bool) {
	for i, alias := range machine.RegisterNames {
		if strings.EqualFold(name, alias) ||
			strings.EqualFold(name, fmt.Sprintf("R%d", i)) {
			return i, true
		}
	}

	return 0, false
}

func (s *session) debugReg(args []string) {
	const usage = "register [R#|SP|FP|A-N|IP|COLOR] [0x####]"

	state := &s.mc.State

	if len(args) == 0 {
		s.dbg.PrintRegs(state)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	name := strings.ToUpper(args[0])

	switch name {
	case "IP", "PC":
		state.Program = value & 0xFFFC
	case "COLOR":
		state.Color = uint8(value)
	default:
		i, ok := registerIndex(name)
		if !ok {
			log.Println("Invalid register")
			return
		}
		state.Registers[i] = value
	}

	s.dbg.PrintRegs(state)
}

func (s *session) debugSource(args []string) {
	const usage = "source [0x####|label|#] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	if addr, size, ok := s.span(args, 3); ok {
		s.dbg.PrintSource(addr, size)
	}
}

func (s *session) debugDisasm(args []string) {
	const usage = "disasm [0x####|label|#] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	if addr, size, ok := s.span(args, 8); ok {
		s.dbg.PrintDisasm(s.mc, addr, size)
	}
}

func (s *session) debugMemory(args []string) {
	const usage = "memory [0x####|label|#] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	if addr, size, ok := s.span(args, 16); ok {
		s.dbg.PrintMem(&s.mc.State, addr, size)
	}
}

func (s *session) debugLabels(args []string) {
	const usage = "labels"

	if len(args) > 0 {
		log.Println(usage)
		return
	}

	if s.dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(s.dbg.SymTable.Labels))
	for addr := range s.dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Printf("[0x%04x] %s\n", addr, s.dbg.SymTable.Labels[addr])
	}
}

func (s *session) debugJump(args []string) {
	const usage = "jump [0x####|label]"

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	addr, err := s.address(args[0])

	if err != nil {
		log.Printf("Unable to find '%s'\n", args[0])
		return
	}

	s.mc.State.Program = addr & 0xFFFC
	s.dbg.PrintDisasm(s.mc, s.mc.State.Program, 1)
}

func (s *session) debugSet(args []string) {
	const usage = "set [0x####|label] [0x##]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := s.address(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	if value > 0xFF {
		log.Println("Value does not fit in a byte")
		return
	}

	s.mc.State.Memory[addr] = byte(value)
	s.dbg.PrintMem(&s.mc.State, addr, 1)
}

func (s *session) debugSnapshot(cmd string, args []string) {
	if len(args) != 1 {
		log.Printf("%s [file]\n", cmd)
		return
	}

	var err error
	verb := "saved"

	if cmd == "save" {
		err = snapshot.SaveFile(args[0], &s.mc.State)
	} else {
		err = snapshot.LoadFile(args[0], &s.mc.State)
		verb = "loaded"
	}

	if err != nil {
		log.Println(err)
		return
	}

	fmt.Printf("Snapshot %s: %s\n", verb, args[0])
}

func (s *session) quit() {
	s.mc.Stop()
	s.win.Close()
}

func (s *session) repl() {
	for {
		line, err := s.rl.Readline()

		if err == readline.ErrInterrupt {
			continue
		} else if err != nil {
			s.quit()
			return
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(s.lastcmd) == 0 {
				continue
			}
			args = s.lastcmd
		} else {
			s.lastcmd = args
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			s.debugBreak(args)

		case "w", "wp", "watch", "watchpoint":
			s.debugWatch(args)

		case "r", "reg", "register", "registers":
			s.debugReg(args)

		case "s", "src", "source":
			s.debugSource(args)

		case "d", "dis", "disasm":
			s.debugDisasm(args)

		case "l", "label", "labels":
			s.debugLabels(args)

		case "j", "jmp", "jump":
			s.debugJump(args)

		case "m", "mem", "memory":
			s.debugMemory(args)

		case "set":
			s.debugSet(args)

		case "save", "load":
			s.debugSnapshot(cmd, args)

		case "c", "continue":
			s.dbg.Break.Store(false)
			return

		case "n", "next":
			s.dbg.Break.Store(true)
			return

		case "q", "quit", "exit":
			s.quit()
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			if err := s.mc.LoadFile(s.image); err != nil {
				log.Println(err)
				continue
			}

			if s.win.Video != nil {
				s.win.Video.Clear()
			}

			s.dbg.PrintDisasm(s.mc, s.mc.State.Program, 1)

		default:
			log.Printf("'%s' is not a valid command\n", cmd)
		}
	}
}

func (s *session) stopped(mc *machine.Machine) {
	fmt.Println("Program stopped")

	if s.dbg.Source != nil {
		s.dbg.PrintSource(mc.State.Program, 1)
	} else {
		s.dbg.PrintDisasm(mc, mc.State.Program, 1)
	}
}

func (s *session) handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	s.stopped(mc)
	s.repl()
}

func (s *session) handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Printf("Read [0x%04x]\n", addr)
	s.dbg.PrintMem(&mc.State, addr, 1)
	s.handleBreak(dbg, mc)
}

func (s *session) handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Printf("Write [0x%04x]\n", addr)
	s.dbg.PrintMem(&mc.State, addr, 1)
	s.handleBreak(dbg, mc)
}
