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
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lassandro/goconsolite/pkg/assembler"
	"github.com/lassandro/goconsolite/pkg/debugger"
	"github.com/lassandro/goconsolite/pkg/input"
	"github.com/lassandro/goconsolite/pkg/machine"
	"github.com/lassandro/goconsolite/pkg/video"
	"github.com/lassandro/goconsolite/pkg/window"
)

var helpvar bool
var debugvar bool
var strictvar bool
var scalevar int

const usage = "goconsolite [-debug] [-strict] [-scale n] INFILE [KEYMAP]"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&strictvar, "strict", false, "Stops on unknown opcodes")
	flag.IntVar(&scalevar, "scale", 3, "Window scale factor")
	flag.Parse()
}

// symbolPath locates the assembler symbol table next to the image.
func symbolPath(image string) string {
	return strings.TrimSuffix(image, filepath.Ext(image)) + ".cdb"
}

func loadKeymap(controller *input.Controller, explicit string) {
	path, err := input.FindKeymap(explicit)

	if err != nil {
		log.Printf("warning: %v", err)
		return
	}

	if err := controller.Load(path, window.KnownKey); err != nil {
		log.Printf("warning: %v", err)
	}
}

func attachDebugger(mc *machine.Machine, win *window.Window, image string) (*session, error) {
	dbg := debugger.New(os.Stdout)

	if symtable, err := assembler.LoadSymTable(symbolPath(image)); err == nil {
		dbg.SymTable = symtable
	} else {
		log.Println("Error loading symbol file")
		log.Println(err)
	}

	if dbg.SymTable != nil && dbg.SymTable.Source != "" {
		if file, err := os.Open(dbg.SymTable.Source); err == nil {
			dbg.Source = file
		} else {
			log.Println("Error loading source file")
			log.Println(err)
		}
	}

	s, err := newSession(dbg, mc, win, image)
	if err != nil {
		return nil, err
	}

	dbg.HandleBreak = s.handleBreak
	dbg.HandleRead = s.handleRead
	dbg.HandleWrite = s.handleWrite
	mc.Debugger = dbg

	return s, nil
}

func goconsolite() int {
	if helpvar {
		fmt.Println(usage)
		return 0
	}

	args := flag.Args()

	if len(args) < 1 || len(args) > 2 {
		log.Println(usage)
		return 1
	}

	var vm video.VideoMemory
	controller := input.NewController(nil)
	controller.Logger = log.Default()

	mc, err := machine.NewFromFile(args[0], &machine.DeviceHandler{
		Display: &vm,
		Input:   controller,
	})

	if err != nil {
		log.Println(err)
		return 1
	}

	mc.Strict = strictvar

	var explicit string
	if len(args) == 2 {
		explicit = args[1]
	}

	loadKeymap(controller, explicit)

	win := window.New(&vm, controller)
	win.Scale = scalevar
	win.Title = filepath.Base(args[0])
	win.Status = status(mc)

	var repl *session
	if debugvar {
		if repl, err = attachDebugger(mc, win, args[0]); err != nil {
			log.Println(err)
			return 1
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	go func() {
		for range c {
			if repl != nil {
				fmt.Println()
				repl.dbg.Break.Store(true)
			} else {
				win.Close()
			}
		}
	}()

	var wg sync.WaitGroup
	var result error

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer win.Close()

		if repl != nil {
			repl.handleBreak(repl.dbg, mc)
		}

		result = mc.Run()
	}()

	if err := win.Run(); err != nil {
		log.Println(err)
	}

	mc.Stop()

	if repl != nil {
		repl.Close()
	}

	wg.Wait()

	if result != nil {
		log.Println(result)
		return 1
	}

	return 0
}

// status reports the instruction rate for the window overlay.
func status(mc *machine.Machine) func() string {
	var mutex sync.Mutex
	last := time.Now()
	lastSteps := mc.Steps()
	var rate float64

	return func() string {
		mutex.Lock()
		defer mutex.Unlock()

		now := time.Now()
		if elapsed := now.Sub(last); elapsed >= time.Second {
			steps := mc.Steps()
			rate = float64(steps-lastSteps) / elapsed.Seconds()
			last, lastSteps = now, steps
		}

		state := "running"
		if !mc.Running() {
			state = "stopped"
		}

		return fmt.Sprintf("%s  %.2f MIPS  %d steps", state, rate/1e6, lastSteps)
	}
}

func main() {
	os.Exit(goconsolite())
}
