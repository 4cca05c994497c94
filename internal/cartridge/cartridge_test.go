package cartridge

import "testing"

func blankROM(banks int, cartType uint8, ramSizeByte uint8) []byte {
	rom := make([]byte, banks*0x4000)
	rom[0x147] = cartType
	rom[0x148] = 0x00
	rom[0x149] = ramSizeByte
	for b := 0; b < banks; b++ {
		rom[b*0x4000] = uint8(b)
	}
	return rom
}

func newMBC1(banks int) *Cartridge {
	return New(blankROM(banks, 0x01, 0x03))
}

func TestBank0AlwaysFixed(t *testing.T) {
	c := newMBC1(8)
	c.Write(0x2000, 0x05) // select bank 5
	if got := c.Read(0x0000); got != 0 {
		t.Errorf("bank-0 window read = %#02x, want 0 (unaffected by bank select)", got)
	}
}

func TestMBC1ROMBankSelect(t *testing.T) {
	c := newMBC1(8)
	c.Write(0x2000, 0x05)
	if got := c.Read(0x4000); got != 5 {
		t.Errorf("bank-switched read = %#02x, want 5", got)
	}
}

// TestMBC1BankZeroRemap covers the well-known quirk: selecting bank 0 (or
// any multiple of 0x20) through the 2000-3FFF register actually selects the
// next bank up, since bank 0 is already permanently mapped at 0000-3FFF.
func TestMBC1BankZeroRemap(t *testing.T) {
	c := newMBC1(8)
	c.Write(0x2000, 0x00)
	if got := c.Read(0x4000); got != 1 {
		t.Errorf("bank 0 select remapped read = %#02x, want 1", got)
	}
}

func TestMBC1RAMGate(t *testing.T) {
	c := newMBC1(8)
	c.Write(0xA000, 0x42) // RAM disabled by default
	if got := c.Read(0xA000); got == 0x42 {
		t.Fatalf("write landed while RAM disabled")
	}

	c.Write(0x0000, 0x0A) // enable
	c.Write(0xA000, 0x42)
	if got := c.Read(0xA000); got != 0x42 {
		t.Errorf("RAM = %#02x after enable, want 0x42", got)
	}
}

func TestMBC1RAMBankSwitch(t *testing.T) {
	c := newMBC1(8)
	c.Write(0x0000, 0x0A)  // enable RAM
	c.Write(0x6000, 0x01)  // RAM banking mode
	c.Write(0x4000, 0x01)  // select RAM bank 1
	c.Write(0xA000, 0x11)
	c.Write(0x4000, 0x00) // back to RAM bank 0
	c.Write(0xA000, 0x22)
	if got := c.Read(0xA000); got != 0x22 {
		t.Errorf("RAM bank 0 = %#02x, want 0x22", got)
	}
	c.Write(0x4000, 0x01)
	if got := c.Read(0xA000); got != 0x11 {
		t.Errorf("RAM bank 1 = %#02x, want 0x11", got)
	}
}

func TestMBC2RAMIsNibbleWide(t *testing.T) {
	c := New(blankROM(2, 0x05, 0x00)) // MBC2
	c.Write(0x0000, 0x0A)             // enable
	c.Write(0xA000, 0xFF)
	if got := c.Read(0xA000); got != 0xFF {
		t.Errorf("MBC2 RAM read = %#02x, want 0xFF (low nibble set, high forced)", got)
	}
	// Only the low nibble is stored: writing 0x3 replaces the 0xF left by
	// the previous write, and the high nibble still reads back as 1s.
	c.Write(0xA000, 0x03)
	if got := c.Read(0xA000); got != 0xF3 {
		t.Errorf("MBC2 RAM read = %#02x, want 0xF3", got)
	}
}

func TestHeaderParsing(t *testing.T) {
	rom := blankROM(8, 0x01, 0x03)
	copy(rom[0x134:], []byte("TESTGAME"))
	c := New(rom)
	if c.Title() != "TESTGAME" {
		t.Errorf("Title() = %q, want TESTGAME", c.Title())
	}
	if c.Header().RAMSize != 32*1024 {
		t.Errorf("RAMSize = %d, want 32KiB", c.Header().RAMSize)
	}
}

func TestSaveRAMRoundTrip(t *testing.T) {
	c := newMBC1(8)
	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x77)
	saved := c.SaveRAM()

	other := newMBC1(8)
	other.LoadRAM(saved)
	other.Write(0x0000, 0x0A)
	if got := other.Read(0xA000); got != 0x77 {
		t.Errorf("restored RAM = %#02x, want 0x77", got)
	}
}
