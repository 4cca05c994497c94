package ppu

// shades are the four fixed RGB triples a 2-bit color id decodes to, in
// ascending color-id order: white, light gray, dark gray, black.
var shades = [4][3]uint8{
	{0xFF, 0xFF, 0xFF},
	{0xCC, 0xCC, 0xCC},
	{0x77, 0x77, 0x77},
	{0x00, 0x00, 0x00},
}

// decodePalette maps a 2-bit color id through a BGP/OBP0/OBP1-style palette
// byte to its RGB shade. Bits 2i and 2i+1 of the palette byte select which
// of the four shades color id i renders as.
func decodePalette(palette uint8, colorID uint8) [3]uint8 {
	shade := (palette >> (colorID * 2)) & 0x3
	return shades[shade]
}
