// Package cpu implements the fetch-decode-execute loop of the Game Boy's
// Z80-family CPU: the 8/16-bit register file, flag handling, and the full
// opcode map (including the CB-prefixed extension page).
package cpu

import (
	"fmt"

	"gomeboy/internal/interrupts"
)

// Bus is the subset of the memory-mapped address space the CPU needs.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// UnknownOpcodeError is stored in CPU.Err by Step when it fetches one of the eleven
// byte values that have no defined meaning on this CPU. Real hardware locks
// up when it encounters one; a well-formed ROM never emits one.
type UnknownOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02X at PC 0x%04X", e.Opcode, e.PC)
}

var illegalOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

// CPU executes instructions against a Bus, driving the interrupt
// controller's EI/DI delay and HALT wake-up along the way. It does not tick
// the Timer or PPU itself: the top-level frame loop does that with the
// cycle count Step returns.
type CPU struct {
	Registers
	PC uint16
	SP uint16

	bus Bus
	irq *interrupts.Controller

	halted  bool
	haltBug bool

	scratch uint8
	cycles  int

	// Err is set by Step when it fetches an illegal opcode; the caller
	// decides whether to abort the frame.
	Err error
}

// New returns a CPU wired to bus and irq. Registers are left zeroed; the
// caller is expected to install the documented reset-vector values.
func New(bus Bus, irq *interrupts.Controller) *CPU {
	c := &CPU{bus: bus, irq: irq}
	c.linkPairs()
	return c
}

// Halted reports whether the CPU is in the HALT low-power state.
func (c *CPU) Halted() bool { return c.halted }

func (c *CPU) tick(n int) { c.cycles += n }

func (c *CPU) readOperand() uint8 {
	v := c.bus.Read(c.PC)
	c.PC++
	c.tick(4)
	return v
}

func (c *CPU) readOperand16() uint16 {
	lo := c.readOperand()
	hi := c.readOperand()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) readByte(addr uint16) uint8 {
	c.tick(4)
	return c.bus.Read(addr)
}

func (c *CPU) writeByte(addr uint16, val uint8) {
	c.tick(4)
	c.bus.Write(addr, val)
}

// Step executes exactly one instruction (or, while halted, one 4-cycle
// no-op tick) and returns the number of cycles it consumed. The caller is
// responsible for ticking Timer/PPU with that count and for calling
// ServiceInterrupt afterward if one is pending.
func (c *CPU) Step() int {
	c.cycles = 0

	// A pending EI/DI latch counts down and applies here, before the next
	// instruction executes.
	c.irq.Settle()

	if c.halted {
		c.tick(4)
		if c.irq.Pending() {
			c.halted = false
		}
		return c.cycles
	}

	opcode := c.fetch()
	if illegalOpcodes[opcode] {
		c.Err = &UnknownOpcodeError{Opcode: opcode, PC: c.PC - 1}
		return c.cycles
	}

	if opcode == 0xCB {
		c.decodeCB(c.readOperand())
	} else {
		c.decode(opcode)
	}

	return c.cycles
}

func (c *CPU) fetch() uint8 {
	v := c.bus.Read(c.PC)
	c.tick(4)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.PC++
	}
	return v
}

// ServiceInterrupt pushes the current PC and jumps to vector, as directed
// by the top-level loop once interrupts.Dispatch reports a pending,
// enabled, IME-armed interrupt. Returns the cycle cost of dispatch.
func (c *CPU) ServiceInterrupt(vector uint16) int {
	c.halted = false
	c.cycles = 0
	c.tick(8) // two internal delay cycles before the PC push starts
	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC&0xFF))
	c.PC = vector
	c.tick(4)
	return c.cycles
}
