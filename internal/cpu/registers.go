package cpu

// Register is a single 8-bit CPU register.
type Register = uint8

// RegisterPair is a pointer pair into two 8-bit registers, addressable
// together as a 16-bit value (high byte first: B:C, D:E, H:L, A:F).
type RegisterPair [2]*Register

// Uint16 reads the pair as a big-endian 16-bit value.
func (p RegisterPair) Uint16() uint16 {
	if p[0] == nil || p[1] == nil {
		return 0
	}
	return uint16(*p[0])<<8 | uint16(*p[1])
}

// SetUint16 writes v into the pair, high byte first.
func (p RegisterPair) SetUint16(v uint16) {
	if p[0] == nil || p[1] == nil {
		return
	}
	*p[0] = uint8(v >> 8)
	*p[1] = uint8(v)
}

// Registers holds the eight 8-bit registers and the four pairs built on top
// of them. A and F form AF, and so on; writing through a pair mutates the
// underlying 8-bit registers.
type Registers struct {
	A, F Register
	B, C Register
	D, E Register
	H, L Register

	BC RegisterPair
	DE RegisterPair
	HL RegisterPair
	AF RegisterPair
}

func (r *Registers) linkPairs() {
	r.BC = RegisterPair{&r.B, &r.C}
	r.DE = RegisterPair{&r.D, &r.E}
	r.HL = RegisterPair{&r.H, &r.L}
	r.AF = RegisterPair{&r.A, &r.F}
}

// registerPointers indexes the eight 3-bit register codes used throughout
// the opcode map: 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A. Index 6 has no direct
// register and is handled specially by callers.
func (c *CPU) registerPointers() [8]*Register {
	return [8]*Register{&c.B, &c.C, &c.D, &c.E, &c.H, &c.L, nil, &c.A}
}

// source returns a pointer to the 3-bit-coded register and whether it is
// the memory pseudo-register (HL). When isMem is true, the pointed-to
// scratch value has already been loaded from bus[HL] and must be written
// back through writeSource, not assigned directly.
func (c *CPU) source(code uint8) (reg *Register, isMem bool) {
	code &= 0x7
	if code == 6 {
		c.scratch = c.readByte(c.HL.Uint16())
		return &c.scratch, true
	}
	return c.registerPointers()[code], false
}

// isMemCode reports whether a 3-bit register code denotes (HL) rather than
// a plain register, without performing the bus read source does.
func isMemCode(code uint8) bool { return code&0x7 == 6 }

// writeSource stores val back to wherever source last read from.
func (c *CPU) writeSource(code uint8, isMem bool, val uint8) {
	if isMem {
		c.writeByte(c.HL.Uint16(), val)
		return
	}
	*c.registerPointers()[code&0x7] = val
}

// registerPairStack returns the 16-bit register pair selected by bits 5-4 of a
// 0xC0-0xFF range opcode (BC, DE, HL, AF).
func (c *CPU) registerPairStack(instr byte) RegisterPair {
	switch instr >> 4 & 0x3 {
	case 0:
		return c.BC
	case 1:
		return c.DE
	case 2:
		return c.HL
	default:
		return c.AF
	}
}

// pairValue16 returns the 16-bit value of BC/DE/HL/SP selected by bits 5-4
// of a 0x00-0x3F range opcode.
func (c *CPU) pairValue16(instr byte) uint16 {
	switch instr >> 4 & 0x3 {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	default:
		return c.SP
	}
}

// setPair16 stores v into BC/DE/HL/SP selected by bits 5-4 of a 0x00-0x3F
// range opcode.
func (c *CPU) setPair16(instr byte, v uint16) {
	switch instr >> 4 & 0x3 {
	case 0:
		c.BC.SetUint16(v)
	case 1:
		c.DE.SetUint16(v)
	case 2:
		c.HL.SetUint16(v)
	default:
		c.SP = v
	}
}
