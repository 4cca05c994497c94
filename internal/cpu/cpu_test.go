package cpu

import (
	"testing"

	"gomeboy/internal/interrupts"
)

// fakeBus is a flat 64 KiB array, enough to drive the CPU in isolation.
type fakeBus struct {
	mem [0x10000]uint8
}

func (b *fakeBus) Read(addr uint16) uint8        { return b.mem[addr] }
func (b *fakeBus) Write(addr uint16, v uint8)    { b.mem[addr] = v }
func (b *fakeBus) load(addr uint16, code ...uint8) {
	copy(b.mem[addr:], code)
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	irq := interrupts.New()
	c := New(bus, irq)
	return c, bus
}

func TestNOP(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x00)
	cycles := c.Step()
	if cycles != 4 {
		t.Errorf("NOP: got %d cycles, want 4", cycles)
	}
	if c.PC != 1 {
		t.Errorf("NOP: PC = %d, want 1", c.PC)
	}
}

func TestLoadImmediate(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x3E, 0x42) // LD A, 0x42
	c.Step()
	if c.A != 0x42 {
		t.Errorf("A = %#02x, want 0x42", c.A)
	}
}

func TestLoadRegisterToMemoryRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	c.HL.SetUint16(0xC000)
	bus.load(0,
		0x3E, 0x99, // LD A, 0x99
		0x77,       // LD (HL), A
		0x3E, 0x00, // LD A, 0
		0x7E, // LD A, (HL)
	)
	c.Step()
	c.Step()
	c.Step()
	c.Step()
	if c.A != 0x99 {
		t.Errorf("round trip through (HL): A = %#02x, want 0x99", c.A)
	}
	if bus.mem[0xC000] != 0x99 {
		t.Errorf("(HL) = %#02x, want 0x99", bus.mem[0xC000])
	}
}

func TestAddSetsFlags(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0xFF
	bus.load(0, 0xC6, 0x01) // ADD A, 1
	c.Step()
	if c.A != 0 {
		t.Errorf("A = %#02x, want 0", c.A)
	}
	if !c.isFlagSet(flagZero) || !c.isFlagSet(flagHalfCarry) || !c.isFlagSet(flagCarry) {
		t.Errorf("F = %#02x, want Z+H+C set", c.F)
	}
	if c.isFlagSet(flagSubtract) {
		t.Errorf("N should be clear after ADD")
	}
	if c.F&0x0F != 0 {
		t.Errorf("low nibble of F must stay zero, got %#02x", c.F)
	}
}

func TestIncDecDoesNotTouchCarry(t *testing.T) {
	c, _ := newTestCPU()
	c.setFlag(flagCarry)
	c.B = 0xFF
	incOpcode := byte(0x04) // INC B
	c.decode(incOpcode)
	if !c.isFlagSet(flagCarry) {
		t.Errorf("INC must leave C untouched")
	}
	if c.B != 0 {
		t.Errorf("B = %#02x, want 0", c.B)
	}
	if !c.isFlagSet(flagZero) || !c.isFlagSet(flagHalfCarry) {
		t.Errorf("expected Z and H set after 0xFF -> 0x00, got F=%#02x", c.F)
	}
}

func TestJRTaken(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x18, 0xFE) // JR -2 (infinite loop back to self)
	c.Step()
	if c.PC != 0 {
		t.Errorf("PC = %#04x, want 0x0000", c.PC)
	}
}

func TestCallAndRet(t *testing.T) {
	c, bus := newTestCPU()
	c.SP = 0xFFFE
	bus.load(0, 0xCD, 0x10, 0x00) // CALL 0x0010
	bus.load(0x10, 0xC9)          // RET
	c.Step()
	if c.PC != 0x10 {
		t.Errorf("PC after CALL = %#04x, want 0x0010", c.PC)
	}
	c.Step()
	if c.PC != 0x03 {
		t.Errorf("PC after RET = %#04x, want 0x0003", c.PC)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.SP = 0xFFFE
	c.B, c.C = 0xAB, 0xCD
	c.push(c.BC.Uint16())
	c.D, c.E = 0, 0
	v := c.pop()
	if v != 0xABCD {
		t.Errorf("push/pop round trip = %#04x, want 0xABCD", v)
	}
}

func TestServiceInterruptCosts20Cycles(t *testing.T) {
	c, _ := newTestCPU()
	c.SP = 0xFFFE
	c.PC = 0x1234

	got := c.ServiceInterrupt(0x0040)
	if got != 20 {
		t.Errorf("ServiceInterrupt returned %d cycles, want 20", got)
	}
	if c.PC != 0x0040 {
		t.Errorf("PC = %#04x after dispatch, want 0x0040", c.PC)
	}
	if c.SP != 0xFFFC {
		t.Errorf("SP = %#04x after dispatch, want 0xFFFC", c.SP)
	}
}

func TestHaltWakesOnPendingInterrupt(t *testing.T) {
	c, bus := newTestCPU()
	irq := interrupts.New()
	c = New(bus, irq)
	bus.load(0, 0x76) // HALT
	c.Step()
	if !c.Halted() {
		t.Fatalf("expected CPU to be halted")
	}
	irq.Enable = 0x01
	irq.Request(interrupts.VBlank)
	c.Step()
	if c.Halted() {
		t.Errorf("expected CPU to wake once an enabled interrupt is pending")
	}
}

func TestEIDelay(t *testing.T) {
	c, bus := newTestCPU()
	irq := interrupts.New()
	c = New(bus, irq)
	bus.load(0, 0xF3, 0xFB, 0x00, 0x00) // DI; EI; NOP; NOP
	c.Step()                            // DI
	if irq.IME {
		t.Fatalf("IME should be false after DI")
	}
	c.Step() // EI
	if irq.IME {
		t.Errorf("IME should still be false immediately after EI")
	}
	c.Step() // first NOP: EI's effect settles after this instruction
	if irq.IME {
		t.Errorf("IME should still be false after the first NOP following EI")
	}
	c.Step() // second NOP
	if !irq.IME {
		t.Errorf("IME should be true two instructions after EI")
	}
}

func TestUnknownOpcode(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xD3) // illegal on this CPU
	c.Step()
	if c.Err == nil {
		t.Fatalf("expected UnknownOpcodeError")
	}
	if _, ok := c.Err.(*UnknownOpcodeError); !ok {
		t.Errorf("got error of type %T, want *UnknownOpcodeError", c.Err)
	}
}
