// Command goboy is the SDL2 front end: it owns the host window, the
// per-frame texture blit, and the keyboard event pump, and wires the
// optional trace/hash/remote diagnostics behind flags.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"gomeboy/internal/gameboy"
	"gomeboy/internal/joypad"
	"gomeboy/internal/ppu"
	"gomeboy/pkg/framehash"
	"gomeboy/pkg/log"
	"gomeboy/pkg/remote"
	"gomeboy/pkg/trace"
	"gomeboy/pkg/utils"
)

// frameInterval targets the real hardware's ~59.7 Hz refresh rate.
const frameInterval = time.Second / 597 * 10

func main() {
	romFile := flag.String("rom", "", "the ROM file to load (native file picker if omitted)")
	scale := flag.Int("scale", 4, "integer window scale factor")
	tracePath := flag.String("trace", "", "record per-frame PPU-mode timing and write a PNG chart here on exit")
	hash := flag.Bool("hash", false, "print each frame's hash to stdout (for scripted regression checks)")
	remoteAddr := flag.String("remote", "", "address to serve a websocket debug feed on, e.g. :6061")
	flag.Parse()

	romPath := *romFile
	if romPath == "" {
		picked, err := utils.AskForFile("Open ROM", ".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "goboy: no ROM given and no file picked: %v\n", err)
			os.Exit(1)
		}
		romPath = picked
	}

	rom, err := utils.LoadFile(romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goboy: %v\n", err)
		os.Exit(1)
	}

	logger := log.New()
	gb := gameboy.New(rom, gameboy.WithLogger(logger))
	logger.Infof("loaded %s", gb.Cart.Title())

	var rec *trace.Recorder
	if *tracePath != "" {
		rec = trace.NewRecorder()
	}

	var remoteServer *remote.Server
	if *remoteAddr != "" {
		remoteServer = remote.NewServer(logger)
		go func() {
			if err := remoteServer.ListenAndServe(*remoteAddr); err != nil {
				logger.Errorf("remote server: %v", err)
			}
		}()
	}

	if err := run(gb, *scale, rec, remoteServer, *hash, logger); err != nil {
		fmt.Fprintf(os.Stderr, "goboy: %v\n", err)
		os.Exit(1)
	}

	if rec != nil {
		if err := writeTraceChart(rec, *tracePath); err != nil {
			logger.Errorf("writing trace chart: %v", err)
		}
	}
}

func run(gb *gameboy.GameBoy, scale int, rec *trace.Recorder, remoteServer *remote.Server, printHash bool, logger log.Logger) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return err
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("goboy", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(ppu.ScreenWidth*scale), int32(ppu.ScreenHeight*scale), sdl.WINDOW_SHOWN)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING, ppu.ScreenWidth, ppu.ScreenHeight)
	if err != nil {
		return err
	}
	defer texture.Destroy()

	pixels := make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*3)

	running := true
	for running {
		frameStart := time.Now()

		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Repeat != 0 {
					continue
				}
				if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
					running = false
					continue
				}
				if e.Keysym.Sym == sdl.K_F2 && e.Type == sdl.KEYDOWN {
					if err := utils.CopyImage(frameToImage(gb.PPU.Framebuffer)); err != nil {
						logger.Errorf("screenshot: %v", err)
					}
					continue
				}
				handleKey(gb, e)
			}
		}

		if rec != nil {
			recordFrame(gb, rec)
		} else {
			gb.Update()
		}

		if printHash {
			fmt.Printf("%x\n", framehash.Sum(gb.PPU.Framebuffer))
		}
		if remoteServer != nil {
			remoteServer.Broadcast(snapshot(gb))
		}

		copyFramebuffer(pixels, gb.PPU.Framebuffer)
		if err := texture.Update(nil, pixels, ppu.ScreenWidth*3); err != nil {
			return err
		}
		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		if elapsed := time.Since(frameStart); elapsed < frameInterval {
			time.Sleep(frameInterval - elapsed)
		}
	}
	return nil
}

var keyMap = map[sdl.Keycode]joypad.Key{
	sdl.K_RIGHT:     joypad.Right,
	sdl.K_LEFT:      joypad.Left,
	sdl.K_UP:        joypad.Up,
	sdl.K_DOWN:      joypad.Down,
	sdl.K_x:         joypad.A,
	sdl.K_z:         joypad.B,
	sdl.K_RETURN:    joypad.Start,
	sdl.K_BACKSPACE: joypad.Select,
}

func handleKey(gb *gameboy.GameBoy, e *sdl.KeyboardEvent) {
	key, ok := keyMap[e.Keysym.Sym]
	if !ok {
		return
	}
	if e.Type == sdl.KEYDOWN {
		gb.PressKey(key)
	} else {
		gb.ReleaseKey(key)
	}
}

// recordFrame mirrors gameboy.Update's own loop so each instruction's cycle
// count can be attributed to the PPU mode active during it.
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

func writeTraceChart(rec *trace.Recorder, path string) error {
	return trace.Render(rec.Frames(), path)
}

func snapshot(gb *gameboy.GameBoy) remote.Snapshot {
	return remote.Snapshot{
		PC:      gb.CPU.PC,
		SP:      gb.CPU.SP,
		AF:      gb.CPU.AF.Uint16(),
		BC:      gb.CPU.BC.Uint16(),
		DE:      gb.CPU.DE.Uint16(),
		HL:      gb.CPU.HL.Uint16(),
		PPUMode: gb.PPU.Mode(),
		LY:      gb.Bus.Read(0xFF44),
	}
}

func copyFramebuffer(dst []byte, frame [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8) {
	i := 0
	for _, row := range frame {
		for _, px := range row {
			dst[i], dst[i+1], dst[i+2] = px[0], px[1], px[2]
			i += 3
		}
	}
}

func frameToImage(frame [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y, row := range frame {
		for x, px := range row {
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = px[0], px[1], px[2], 0xFF
		}
	}
	return img
}
