// Package gameboy wires the CPU, bus, cartridge, timer, interrupt
// controller, PPU, and joypad into a single runnable unit and drives the
// per-frame scheduler loop.
package gameboy

import (
	"gomeboy/internal/cartridge"
	"gomeboy/internal/cpu"
	"gomeboy/internal/interrupts"
	"gomeboy/internal/joypad"
	"gomeboy/internal/mmu"
	"gomeboy/internal/ppu"
	"gomeboy/internal/timer"
	"gomeboy/pkg/log"
)

// CyclesPerFrame is the CPU cycle budget of one frame: 4.194304 MHz / 60 Hz,
// rounded down.
const CyclesPerFrame = 69905

// GameBoy owns every subsystem for the lifetime of an emulation session.
type GameBoy struct {
	CPU        *cpu.CPU
	Bus        *mmu.Bus
	PPU        *ppu.PPU
	Timer      *timer.Controller
	Interrupts *interrupts.Controller
	Joypad     *joypad.State
	Cart       *cartridge.Cartridge

	log log.Logger
}

// New constructs a GameBoy from a ROM image, wires every subsystem to the
// bus, applies opts, and installs the documented reset-vector state.
func New(rom []byte, opts ...Opt) *GameBoy {
	cart := cartridge.New(rom)
	irq := interrupts.New()
	pad := joypad.New()
	tmr := timer.New(irq)
	video := ppu.New(irq, nil)
	bus := mmu.New(cart, nil)

	bus.Video = video
	bus.Timer = tmr
	bus.Interrupts = irq
	bus.Joypad = pad
	bus.AttachOAM(video)

	gb := &GameBoy{
		CPU:        cpu.New(bus, irq),
		Bus:        bus,
		PPU:        video,
		Timer:      tmr,
		Interrupts: irq,
		Joypad:     pad,
		Cart:       cart,
		log:        log.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(gb)
	}

	gb.reset()
	return gb
}

// reset installs the documented post-boot-ROM state: register file, stack
// pointer, program counter, and the fixed initial values of the sound,
// LCD, and palette registers. Sound registers have no functional owner —
// the APU is an explicit external collaborator — but a real cartridge
// still finds them at these values, so they are written through to the
// bus's catch-all I/O storage.
func (gb *GameBoy) reset() {
	gb.CPU.PC = 0x0100
	gb.CPU.SP = 0xFFFE
	gb.CPU.AF.SetUint16(0x01B0)
	gb.CPU.BC.SetUint16(0x0013)
	gb.CPU.DE.SetUint16(0x00D8)
	gb.CPU.HL.SetUint16(0x014D)

	initial := map[uint16]uint8{
		0xFF10: 0x80, 0xFF11: 0xBF, 0xFF12: 0xF3, 0xFF14: 0xBF,
		0xFF16: 0x3F, 0xFF17: 0x00, 0xFF19: 0xBF,
		0xFF1A: 0x7F, 0xFF1B: 0xFF, 0xFF1C: 0x9F, 0xFF1E: 0xBF,
		0xFF20: 0xFF, 0xFF21: 0x00, 0xFF22: 0x00, 0xFF23: 0xBF,
		0xFF24: 0x77, 0xFF25: 0xF3, 0xFF26: 0xF1,
		0xFF40: 0x91, 0xFF47: 0xFC, 0xFF48: 0xFF, 0xFF49: 0xFF,
		0xFFFF: 0x00,
	}
	for addr, val := range initial {
		gb.Bus.Write(addr, val)
	}
}

// Update runs one frame's worth of CPU cycles (CyclesPerFrame), ticking
// the timer and PPU by every instruction's cycle count and dispatching
// interrupts in between, then returns the rasterized frame. It stops
// early if the CPU hits an unreachable opcode.
func (gb *GameBoy) Update() [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8 {
	cycles := 0
	for cycles < CyclesPerFrame {
		c := gb.CPU.Step()
		cycles += c

		if gb.CPU.Err != nil {
			gb.log.Errorf("aborting frame: %v", gb.CPU.Err)
			break
		}

		gb.Timer.Tick(c)
		gb.PPU.Tick(c)

		if vector, ok := gb.Interrupts.Dispatch(); ok {
			ic := gb.CPU.ServiceInterrupt(vector)
			cycles += ic
			gb.Timer.Tick(ic)
			gb.PPU.Tick(ic)
		}
	}
	return gb.PPU.Framebuffer
}

// PressKey marks a key as held, requesting a Joypad interrupt if the
// game's currently selected button group observes the 0->1 transition.
func (gb *GameBoy) PressKey(key joypad.Key) {
	if gb.Joypad.Press(key) {
		gb.Interrupts.Request(interrupts.Joypad)
	}
}

// ReleaseKey marks a key as no longer held.
func (gb *GameBoy) ReleaseKey(key joypad.Key) {
	gb.Joypad.Release(key)
}
