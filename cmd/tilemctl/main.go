// Command tilemctl is a headless driver for the calc package: it loads
// a ROM image, runs the core for a requested number of cycles or until
// it stops on its own, and optionally writes out a save state. There is
// no GUI; tilemctl exists for scripting and for exercising the core the
// way the standalone command exercises the teacher's emulator core.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gotilem/tilem/calc"
	"github.com/gotilem/tilem/romio"
)

func main() {
	romPath := flag.String("rom", "", "path to a ROM or archive containing one (required)")
	model := flag.String("model", "", "model id byte as a single character, e.g. p for TI-83 Plus (required)")
	cycles := flag.Uint64("cycles", 10_000_000, "number of T-states to run")
	savePath := flag.String("save", "", "write a save state to this path after running")
	loadPath := flag.String("load", "", "load a save state from this path instead of resetting")
	flag.Parse()

	if *romPath == "" || *model == "" {
		flag.Usage()
		os.Exit(2)
	}
	if len(*model) != 1 {
		log.Fatalf("-model must be a single character, got %q", *model)
	}

	data, name, err := romio.LoadROM(*romPath)
	if err != nil {
		log.Fatalf("load rom: %v", err)
	}

	c, err := calc.NewCalc((*model)[0], func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	})
	if err != nil {
		log.Fatalf("new calc: %v", err)
	}

	if err := c.LoadROM(data); err != nil {
		log.Fatalf("load rom into %s: %v", c.Model.Name, err)
	}
	fmt.Printf("loaded %s into %s\n", name, c.Model.Name)

	if *loadPath != "" {
		state, err := os.ReadFile(*loadPath)
		if err != nil {
			log.Fatalf("read save state: %v", err)
		}
		if err := c.Deserialize(state); err != nil {
			log.Fatalf("load save state: %v", err)
		}
	}

	ran, reason := c.RunCycles(*cycles)
	fmt.Printf("ran %d cycles, stopped: %s\n", ran, reason)

	if *savePath != "" {
		state, err := c.Serialize()
		if err != nil {
			log.Fatalf("serialize state: %v", err)
		}
		if err := os.WriteFile(*savePath, state, 0644); err != nil {
			log.Fatalf("write save state: %v", err)
		}
		fmt.Printf("wrote save state to %s\n", *savePath)
	}
}
