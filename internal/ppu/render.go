package ppu

// renderScanline rasterizes the current LY into Framebuffer: background and
// window tiles first (so sprite priority has something to test against),
// then sprites.
func (p *PPU) renderScanline() {
	if p.lcdc&lcdcBGOn != 0 {
		p.renderTiles()
	} else {
		for px := 0; px < ScreenWidth; px++ {
			p.bgColorID[px] = 0
			p.Framebuffer[p.ly][px] = shades[0]
		}
	}
	if p.lcdc&lcdcObjOn != 0 {
		p.renderSprites()
	}
}

func (p *PPU) readVRAMAbs(addr uint16) uint8 {
	return p.vram[addr-0x8000]
}

// renderTiles draws one scanline of background and window pixels. Window
// and background can share a scanline: pixels left of WX still come from
// the background map even when the window is active this line.
func (p *PPU) renderTiles() {
	ly := p.ly
	windowActive := p.lcdc&lcdcWindowOn != 0 && p.wy <= ly
	unsignedTiles := p.lcdc&lcdcTileData != 0

	var tileDataBase uint16
	if unsignedTiles {
		tileDataBase = 0x8000
	} else {
		tileDataBase = 0x8800
	}

	for pixel := 0; pixel < ScreenWidth; pixel++ {
		usingWindow := windowActive && uint8(pixel) >= p.wx

		var mapBase uint16
		switch {
		case usingWindow && p.lcdc&lcdcWindowMap != 0:
			mapBase = 0x9C00
		case usingWindow:
			mapBase = 0x9800
		case p.lcdc&lcdcBGMap != 0:
			mapBase = 0x9C00
		default:
			mapBase = 0x9800
		}

		var yPos, xPos uint8
		if usingWindow {
			yPos = ly - p.wy
			xPos = uint8(pixel) - p.wx
		} else {
			yPos = p.scy + ly
			xPos = uint8(pixel) + p.scx
		}

		tileRow := uint16(yPos/8) * 32
		tileCol := uint16(xPos / 8)
		tileID := p.readVRAMAbs(mapBase + tileRow + tileCol)

		var tileLocation uint16
		if unsignedTiles {
			tileLocation = tileDataBase + uint16(tileID)*16
		} else {
			tileLocation = uint16(int32(tileDataBase) + (int32(int8(tileID))+128)*16)
		}

		lineOffset := uint16(yPos%8) * 2
		lo := p.readVRAMAbs(tileLocation + lineOffset)
		hi := p.readVRAMAbs(tileLocation + lineOffset + 1)
		bit := uint(7 - xPos%8)
		colorID := (lo>>bit)&1 | ((hi>>bit)&1)<<1

		p.bgColorID[pixel] = colorID
		p.Framebuffer[ly][pixel] = decodePalette(p.bgp, colorID)
	}
}

// renderSprites draws one scanline's worth of visible OAM entries. A sprite
// flagged OBJ-behind-BG is hidden wherever the background pixel underneath
// it is non-zero, matching real hardware's priority rule.
func (p *PPU) renderSprites() {
	height := 8
	if p.lcdc&lcdcObjSize != 0 {
		height = 16
	}
	ly := int(p.ly)

	for i := 0; i < 40; i++ {
		base := i * 4
		yPos := int(p.oam[base]) - 16
		xPos := int(p.oam[base+1]) - 8
		tileID := p.oam[base+2]
		attrs := p.oam[base+3]

		if ly < yPos || ly >= yPos+height {
			continue
		}

		yFlip := attrs&(1<<6) != 0
		xFlip := attrs&(1<<5) != 0
		behindBG := attrs&(1<<7) != 0
		useOBP1 := attrs&(1<<4) != 0

		line := ly - yPos
		if yFlip {
			line = height - 1 - line
		}

		tileLocation := 0x8000 + uint16(tileID)*16 + uint16(line)*2
		lo := p.readVRAMAbs(tileLocation)
		hi := p.readVRAMAbs(tileLocation + 1)

		for px := 0; px < 8; px++ {
			bit := uint(7 - px)
			if xFlip {
				bit = uint(px)
			}
			colorID := (lo>>bit)&1 | ((hi>>bit)&1)<<1
			if colorID == 0 {
				continue
			}

			screenX := xPos + px
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			if behindBG && p.bgColorID[screenX] != 0 {
				continue
			}

			palette := p.obp0
			if useOBP1 {
				palette = p.obp1
			}
			p.Framebuffer[ly][screenX] = decodePalette(palette, colorID)
		}
	}
}
