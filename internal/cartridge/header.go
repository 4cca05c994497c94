package cartridge

import "fmt"

// ColorFlag reports what a cartridge declares about Color Game Boy support
// at header byte 0x143.
type ColorFlag uint8

const (
	FlagOnlyDMG ColorFlag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

var ramSizes = map[uint8]int{
	0x00: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header holds the fields of a ROM's header, at 0x0100-0x014F.
type Header struct {
	Title            string
	ManufacturerCode string
	ColorFlag        ColorFlag
	NewLicenseeCode  string
	SGBFlag          bool
	CartridgeType    uint8
	ROMSize          int
	RAMSize          int
	HeaderChecksum   uint8
	GlobalChecksum   uint16
}

// parseHeader reads the header fields out of a full ROM image. rom must be
// at least 0x150 bytes; callers are expected to have already rejected
// anything shorter.
func parseHeader(rom []byte) Header {
	h := Header{}

	switch rom[0x143] {
	case 0x80:
		h.ColorFlag = FlagSupportsCGB
	case 0xC0:
		h.ColorFlag = FlagOnlyCGB
	default:
		h.ColorFlag = FlagOnlyDMG
	}

	if h.ColorFlag == FlagOnlyDMG {
		h.Title = trimTitle(rom[0x134:0x144])
	} else {
		h.Title = trimTitle(rom[0x134:0x143])
	}

	h.ManufacturerCode = string(rom[0x13F:0x143])
	h.NewLicenseeCode = string(rom[0x144:0x146])
	h.SGBFlag = rom[0x146] == 0x03
	h.CartridgeType = rom[0x147]
	h.ROMSize = (32 * 1024) << rom[0x148]
	h.RAMSize = ramSizes[rom[0x149]]
	h.HeaderChecksum = rom[0x14D]
	h.GlobalChecksum = uint16(rom[0x14E])<<8 | uint16(rom[0x14F])

	return h
}

func trimTitle(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return string(b[:end])
}

func (h *Header) GameboyColor() bool {
	return h.ColorFlag == FlagOnlyCGB || h.ColorFlag == FlagSupportsCGB
}

func (h *Header) String() string {
	return fmt.Sprintf("%s (type %02X) ROM %dKiB RAM %dKiB", h.Title, h.CartridgeType, h.ROMSize/1024, h.RAMSize/1024)
}
