// Command gbprofile runs a ROM headlessly for a fixed number of frames,
// records how many cycles the PPU spends in each LCD mode per frame with
// pkg/trace, and renders the result as a PNG timing chart.
package main

import (
	"flag"
	"fmt"
	"os"

	"gomeboy/internal/gameboy"
	"gomeboy/pkg/trace"
	"gomeboy/pkg/utils"
)

func main() {
	romFile := flag.String("rom", "", "the ROM file to profile")
	frames := flag.Int("frames", 300, "number of frames to record")
	out := flag.String("out", "gbprofile.png", "output PNG path")
	flag.Parse()

	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "gbprofile: -rom is required")
		os.Exit(1)
	}

	rom, err := utils.LoadFile(*romFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gbprofile: %v\n", err)
		os.Exit(1)
	}

	gb := gameboy.New(rom)
	rec := trace.NewRecorder()

	for f := 0; f < *frames; f++ {
		recordFrame(gb, rec)
		if gb.CPU.Err != nil {
			break
		}
	}

	if err := trace.Render(rec.Frames(), *out); err != nil {
		fmt.Fprintf(os.Stderr, "gbprofile: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d frames)\n", *out, len(rec.Frames()))
}

// recordFrame runs gameboy.Update's own cycle budget by hand so each
// instruction's cycle count can be attributed to the PPU mode active
// during it, which gameboy.Update itself has no reason to expose.
func recordFrame(gb *gameboy.GameBoy, rec *trace.Recorder) {
	cycles := 0
	for cycles < gameboy.CyclesPerFrame {
		c := gb.CPU.Step()
		cycles += c
		if gb.CPU.Err != nil {
			break
		}
		rec.Observe(gb.PPU.Mode(), c)
		gb.Timer.Tick(c)
		gb.PPU.Tick(c)
		if vector, ok := gb.Interrupts.Dispatch(); ok {
			ic := gb.CPU.ServiceInterrupt(vector)
			cycles += ic
			rec.Observe(gb.PPU.Mode(), ic)
			gb.Timer.Tick(ic)
			gb.PPU.Tick(ic)
		}
	}
	rec.EndFrame()
}
