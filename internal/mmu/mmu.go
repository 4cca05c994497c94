// Package mmu implements the Game Boy's 64 KiB memory-mapped bus: it owns
// work RAM and high RAM directly, and dispatches everything else (cartridge
// ROM/RAM, VRAM/OAM, and the I/O registers) to the component that handles
// that region.
package mmu

import (
	"gomeboy/internal/cartridge"
	"gomeboy/pkg/log"
)

// IOBus is implemented by any component that owns a region of the address
// space the bus delegates to.
type IOBus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// OAMWriter is implemented by the PPU so DMA can copy directly into OAM
// without going through the CPU-write mode restrictions that Write enforces.
type OAMWriter interface {
	WriteOAMByte(offset uint8, value uint8)
}

// Bus is the MMU. It is the single owner of the flat 64 KiB address space;
// every other component that mutates memory does so through a Read/Write
// call on the Bus, never by holding its own pointer into it.
type Bus struct {
	Cart *cartridge.Cartridge

	Video      IOBus // VRAM, OAM, FF40-FF45, FF47-FF4B
	Timer      IOBus // FF04-FF07
	Interrupts IOBus // FF0F, FFFF
	Joypad     IOBus // FF00

	oamWriter OAMWriter

	wram [0x2000]uint8 // C000-DFFF
	hram [0x7F]uint8   // FF80-FFFE
	io   [0x80]uint8   // FF00-FF7F catch-all for registers with no owner (sound, unused)
	rest [0x60]uint8   // FEA0-FEFF (restricted) backing store; never written

	log log.Logger
}

// New returns a Bus wired to the given cartridge. The Video, Timer,
// Interrupts and Joypad fields must be set before the bus is used; AttachOAM
// must be called once Video also implements OAMWriter.
func New(cart *cartridge.Cartridge, logger log.Logger) *Bus {
	if logger == nil {
		logger = log.NewNullLogger()
	}
	return &Bus{Cart: cart, log: logger}
}

// AttachOAM wires the component DMA copies into.
func (b *Bus) AttachOAM(w OAMWriter) {
	b.oamWriter = w
}

// Read returns the byte at address, dispatching to whichever component owns
// that region of the address space.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF:
		return b.Cart.Read(address)
	case address <= 0x9FFF:
		return b.Video.Read(address)
	case address <= 0xBFFF:
		return b.Cart.Read(address)
	case address <= 0xDFFF:
		return b.wram[address-0xC000]
	case address <= 0xFDFF:
		return b.wram[address-0xE000]
	case address <= 0xFE9F:
		return b.Video.Read(address)
	case address <= 0xFEFF:
		return b.rest[address-0xFEA0]
	case address == 0xFF00:
		return b.Joypad.Read(address)
	case address >= 0xFF04 && address <= 0xFF07:
		return b.Timer.Read(address)
	case address == 0xFF0F:
		return b.Interrupts.Read(address)
	case address >= 0xFF40 && address <= 0xFF4B:
		return b.Video.Read(address)
	case address <= 0xFF7F:
		return b.io[address-0xFF00]
	case address <= 0xFFFE:
		return b.hram[address-0xFF80]
	case address == 0xFFFF:
		return b.Interrupts.Read(address)
	}
	return 0xFF
}

// Write stores value at address, applying the bus's special-case rules
// (ECHO mirroring, the restricted region, DIV/TAC/LY resets, the DMA
// trigger) before falling back to plain storage.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		b.Cart.Write(address, value)
	case address <= 0x9FFF:
		b.Video.Write(address, value)
	case address <= 0xBFFF:
		b.Cart.Write(address, value)
	case address <= 0xDFFF:
		b.wram[address-0xC000] = value
	case address <= 0xFDFF:
		offset := (address - 0xE000) & 0x1FFF
		b.wram[offset] = value
	case address <= 0xFE9F:
		b.Video.Write(address, value)
	case address <= 0xFEFF:
		// restricted: ignored
	case address == 0xFF00:
		b.Joypad.Write(address, value)
	case address >= 0xFF04 && address <= 0xFF07:
		b.Timer.Write(address, value)
	case address == 0xFF0F:
		b.Interrupts.Write(address, value)
	case address == 0xFF44:
		b.Video.Write(address, 0)
	case address == 0xFF46:
		b.io[address-0xFF00] = value
		b.runDMA(value)
	case address >= 0xFF40 && address <= 0xFF4B:
		b.Video.Write(address, value)
	case address <= 0xFF7F:
		b.io[address-0xFF00] = value
	case address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	case address == 0xFFFF:
		b.Interrupts.Write(address, value)
	}
}

// runDMA performs the OAM DMA transfer triggered by a write to FF46: 160
// bytes starting at data*0x100 are copied into OAM FE00-FE9F. The real
// hardware stalls CPU access to everything but HRAM for 160 cycles; this
// emulator models only the data movement.
func (b *Bus) runDMA(data uint8) {
	if b.oamWriter == nil {
		return
	}
	src := uint16(data) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.oamWriter.WriteOAMByte(uint8(i), b.Read(src+i))
	}
}
