// Package cartridge models a Game Boy cartridge: its ROM, any external RAM,
// and the bank-switching state machine (MBC1/MBC2) that governs which bank
// the bus sees at 0x4000-0x7FFF and 0xA000-0xBFFF.
package cartridge

import (
	"crypto/md5"
	"encoding/hex"
)

// Cartridge owns the cartridge ROM/RAM buffers and the MBC bank-switch
// state. Its Read/Write methods are called directly by the bus for the
// address ranges the cartridge owns.
type Cartridge struct {
	header Header
	kind   Kind
	md5    string

	rom []byte
	ram []byte

	romBank    uint8
	ramBank    uint8
	ramEnabled bool
	mode       Mode
}

// New parses rom's header and returns a Cartridge ready to be read from and
// written to. A ROM shorter than a full header is treated as blank.
func New(rom []byte) *Cartridge {
	if len(rom) < 0x150 {
		rom = make([]byte, 0x8000)
		for i := range rom {
			rom[i] = 0xFF
		}
	}

	header := parseHeader(rom)
	kind := kindFromHeaderByte(header.CartridgeType)

	ramSize := header.RAMSize
	if kind == KindMBC2 {
		ramSize = 512 // MBC2's built-in 512x4-bit RAM, nibble-addressed
	}

	sum := md5.Sum(rom)
	return &Cartridge{
		header:  header,
		kind:    kind,
		md5:     hex.EncodeToString(sum[:]),
		rom:     rom,
		ram:     make([]byte, ramSize),
		romBank: 1,
	}
}

func (c *Cartridge) Header() *Header { return &c.header }

func (c *Cartridge) Title() string { return c.header.Title }

// MD5 is the hash of the loaded ROM image, used to key save files and
// golden-frame fixtures independent of the ROM's filename.
func (c *Cartridge) MD5() string { return c.md5 }

// Read returns the byte at address, which must be in 0x0000-0x7FFF or
// 0xA000-0xBFFF; the bus is responsible for routing only those ranges here.
func (c *Cartridge) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return c.rom[address]
	case address < 0x8000:
		offset := (int(address)-0x4000)&0x3FFF + int(c.romBank)*0x4000
		if offset >= len(c.rom) {
			return 0xFF
		}
		return c.rom[offset]
	default:
		if c.kind == KindMBC2 {
			return c.readMBC2RAM(address)
		}
		if !c.ramEnabled || len(c.ram) == 0 {
			return 0xFF
		}
		offset := (int(address)-0xA000)&0x1FFF + int(c.ramBank)*0x2000
		if offset >= len(c.ram) {
			return 0xFF
		}
		return c.ram[offset]
	}
}

// Write applies a bank-switch command (address < 0x8000) or an external RAM
// write (0xA000-0xBFFF), per the cartridge's MBC kind.
func (c *Cartridge) Write(address uint16, value uint8) {
	if address < 0x8000 {
		switch c.kind {
		case KindMBC1:
			c.writeMBC1(address, value)
		case KindMBC2:
			c.writeMBC2(address, value)
		}
		return
	}

	if c.kind == KindMBC2 {
		c.writeMBC2RAM(address, value)
		return
	}
	if !c.ramEnabled || len(c.ram) == 0 {
		return
	}
	offset := (int(address)-0xA000)&0x1FFF + int(c.ramBank)*0x2000
	if offset < len(c.ram) {
		c.ram[offset] = value
	}
}

// readMBC2RAM and writeMBC2RAM implement MBC2's built-in 512x4-bit RAM: only
// the low nibble of each byte is meaningful, and the region wraps every
// 0x200 bytes across the full 0xA000-0xBFFF window.
func (c *Cartridge) readMBC2RAM(address uint16) uint8 {
	if !c.ramEnabled {
		return 0xFF
	}
	return c.ram[address&0x1FF] | 0xF0
}

func (c *Cartridge) writeMBC2RAM(address uint16, value uint8) {
	if !c.ramEnabled {
		return
	}
	c.ram[address&0x1FF] = value & 0x0F
}

// SaveRAM returns a copy of the cartridge's external RAM, suitable for
// persisting battery-backed saves to disk.
func (c *Cartridge) SaveRAM() []byte {
	out := make([]byte, len(c.ram))
	copy(out, c.ram)
	return out
}

// LoadRAM restores external RAM previously returned by SaveRAM.
func (c *Cartridge) LoadRAM(data []byte) {
	copy(c.ram, data)
}
