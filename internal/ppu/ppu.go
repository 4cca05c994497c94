// Package ppu implements the Game Boy's LCD controller: the scanline-driven
// mode state machine, the tile/window/sprite rasterizer, and the VRAM/OAM
// backing storage it shares with the bus over FF40-FF4B.
package ppu

import (
	"gomeboy/internal/interrupts"
	"gomeboy/pkg/log"
)

// ScreenWidth and ScreenHeight are the dimensions of the framebuffer, in
// pixels. The real LCD is 160x144; an off-by-four bug in some ports of the
// original source shrinks the height to 140, which this implementation does
// not repeat.
const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

const (
	statCoincidence = 1 << 2
	statHBlankInt   = 1 << 3
	statOAMInt      = 1 << 5
	statVBlankInt   = 1 << 4
	statLYCInt      = 1 << 6
	lcdcEnable      = 1 << 7
	lcdcWindowMap   = 1 << 6
	lcdcWindowOn    = 1 << 5
	lcdcTileData    = 1 << 4
	lcdcBGMap       = 1 << 3
	lcdcObjSize     = 1 << 2
	lcdcObjOn       = 1 << 1
	lcdcBGOn        = 1 << 0
)

// Register addresses within FF40-FF4B.
const (
	regLCDC uint16 = 0xFF40
	regSTAT uint16 = 0xFF41
	regSCY  uint16 = 0xFF42
	regSCX  uint16 = 0xFF43
	regLY   uint16 = 0xFF44
	regLYC  uint16 = 0xFF45
	regBGP  uint16 = 0xFF47
	regOBP0 uint16 = 0xFF48
	regOBP1 uint16 = 0xFF49
	regWY   uint16 = 0xFF4A
	regWX   uint16 = 0xFF4B
)

// PPU owns VRAM, OAM, and the LCD registers, and rasterizes into Framebuffer
// one scanline at a time as Tick is driven by the CPU's cycle count.
type PPU struct {
	vram [0x2000]uint8 // 8000-9FFF
	oam  [0xA0]uint8   // FE00-FE9F

	lcdc, stat       uint8
	scy, scx         uint8
	ly, lyc          uint8
	bgp, obp0, obp1  uint8
	wy, wx           uint8
	scanlineCounter  int

	bgColorID [ScreenWidth]uint8 // scratch: this scanline's background color ids, for sprite priority

	Framebuffer [ScreenHeight][ScreenWidth][3]uint8

	irq *interrupts.Controller
	log log.Logger
}

// New returns a PPU wired to irq, with the scanline counter at its reset
// value. Register values are left zeroed; the top-level reset sequence
// installs LCDC=0x91, BGP=0xFC, OBP0=OBP1=0xFF.
func New(irq *interrupts.Controller, logger log.Logger) *PPU {
	if logger == nil {
		logger = log.NewNullLogger()
	}
	return &PPU{irq: irq, log: logger, scanlineCounter: 456}
}

func (p *PPU) enabled() bool { return p.lcdc&lcdcEnable != 0 }

// Tick advances the scanline machine by cycles CPU cycles, updating STAT's
// mode bits, rolling LY over at the end of each scanline, requesting
// V-Blank and LCD-STAT interrupts on the documented transitions, and
// rasterizing each visible scanline exactly once.
func (p *PPU) Tick(cycles int) {
	p.updateMode()

	if !p.enabled() {
		return
	}

	p.scanlineCounter -= cycles
	if p.scanlineCounter <= 0 {
		p.scanlineCounter = 456
		p.ly++

		if p.ly == ScreenHeight {
			p.irq.Request(interrupts.VBlank)
		}
		if p.ly > 153 {
			p.ly = 0
		}
		if p.ly < ScreenHeight {
			p.renderScanline()
		}
	}
}

func (p *PPU) currentMode() uint8 { return p.stat & 0x3 }

// Mode returns the LCD controller's current mode (0=H-Blank, 1=V-Blank,
// 2=OAM-scan, 3=Drawing), for external observers such as the trace
// recorder and the remote debug server.
func (p *PPU) Mode() uint8 { return p.currentMode() }

func (p *PPU) setMode(mode uint8) { p.stat = p.stat&^0x3 | mode&0x3 }

// updateMode applies the mode-selection rules: V-Blank once LY reaches the
// screen height, OAM-scan/drawing/H-Blank otherwise by scanlineCounter
// threshold, requesting LCD-STAT on the transitions whose source is
// enabled in STAT. A disabled LCD forces LY=0, a full scanline of counter,
// and mode 1, with no rendering.
func (p *PPU) updateMode() {
	if !p.enabled() {
		p.ly = 0
		p.scanlineCounter = 456
		p.setMode(1)
		return
	}

	prev := p.currentMode()
	var mode uint8
	switch {
	case p.ly >= ScreenHeight:
		mode = 1
	case p.scanlineCounter >= 376:
		mode = 2
	case p.scanlineCounter >= 204:
		mode = 3
	default:
		mode = 0
	}

	if mode != prev {
		switch mode {
		case 1:
			if p.stat&statVBlankInt != 0 {
				p.irq.Request(interrupts.LCDStat)
			}
		case 2:
			if p.stat&statOAMInt != 0 {
				p.irq.Request(interrupts.LCDStat)
			}
		case 0:
			if p.stat&statHBlankInt != 0 {
				p.irq.Request(interrupts.LCDStat)
			}
		}
	}
	p.setMode(mode)
	p.checkCoincidence()
}

func (p *PPU) checkCoincidence() {
	if p.ly == p.lyc {
		p.stat |= statCoincidence
		if p.stat&statLYCInt != 0 {
			p.irq.Request(interrupts.LCDStat)
		}
	} else {
		p.stat &^= statCoincidence
	}
}

// Read implements mmu.IOBus for VRAM, OAM, and FF40-FF4B. FF44 and FF46 are
// both intercepted by the bus before reaching here (FF44 is forced to 0 on
// write; FF46 triggers DMA), but reads of either still land on this path.
func (p *PPU) Read(address uint16) uint8 {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		return p.vram[address-0x8000]
	case address >= 0xFE00 && address <= 0xFE9F:
		return p.oam[address-0xFE00]
	case address == regLCDC:
		return p.lcdc
	case address == regSTAT:
		return p.stat | 0x80
	case address == regSCY:
		return p.scy
	case address == regSCX:
		return p.scx
	case address == regLY:
		return p.ly
	case address == regLYC:
		return p.lyc
	case address == regBGP:
		return p.bgp
	case address == regOBP0:
		return p.obp0
	case address == regOBP1:
		return p.obp1
	case address == regWY:
		return p.wy
	case address == regWX:
		return p.wx
	}
	return 0xFF
}

// Write implements mmu.IOBus. Writing LCDC with the enable bit cleared
// snaps the scanline machine to its disabled state immediately, rather
// than waiting for the next Tick.
func (p *PPU) Write(address uint16, value uint8) {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		p.vram[address-0x8000] = value
	case address >= 0xFE00 && address <= 0xFE9F:
		p.oam[address-0xFE00] = value
	case address == regLCDC:
		wasEnabled := p.enabled()
		p.lcdc = value
		if wasEnabled && !p.enabled() {
			p.ly = 0
			p.scanlineCounter = 456
			p.setMode(1)
		}
	case address == regSTAT:
		// Mode (bits 0-1) and coincidence (bit 2) are read-only from the
		// bus's perspective; only the interrupt-source enable bits can be
		// written.
		p.stat = p.stat&0x07 | value&0xF8
	case address == regSCY:
		p.scy = value
	case address == regSCX:
		p.scx = value
	case address == regLY:
		p.ly = 0
	case address == regLYC:
		p.lyc = value
		p.checkCoincidence()
	case address == regBGP:
		p.bgp = value
	case address == regOBP0:
		p.obp0 = value
	case address == regOBP1:
		p.obp1 = value
	case address == regWY:
		p.wy = value
	case address == regWX:
		p.wx = value
	}
}

// WriteOAMByte implements mmu.OAMWriter, the narrow path DMA uses to copy
// into OAM directly, bypassing the register dispatch in Write.
func (p *PPU) WriteOAMByte(offset uint8, value uint8) {
	p.oam[offset] = value
}
