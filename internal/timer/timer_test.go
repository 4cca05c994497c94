package timer

import (
	"gomeboy/internal/interrupts"
	"testing"
)

func TestDIVIncrementsEvery256Cycles(t *testing.T) {
	irq := interrupts.New()
	c := New(irq)
	c.Tick(256)
	if got := c.Read(0xFF04); got != 1 {
		t.Errorf("DIV = %d, want 1", got)
	}
}

func TestDIVWriteResetsToZero(t *testing.T) {
	irq := interrupts.New()
	c := New(irq)
	c.Tick(256 * 10)
	c.Write(0xFF04, 0x99) // any written value resets DIV to 0
	if got := c.Read(0xFF04); got != 0 {
		t.Errorf("DIV after write = %d, want 0", got)
	}
}

func TestTIMADisabledByDefault(t *testing.T) {
	irq := interrupts.New()
	c := New(irq)
	c.Tick(1024 * 4)
	if got := c.Read(0xFF05); got != 0 {
		t.Errorf("TIMA = %d, want 0 while TAC enable bit is clear", got)
	}
}

func TestTIMAIncrementsAtSelectedPeriod(t *testing.T) {
	irq := interrupts.New()
	c := New(irq)
	c.Write(0xFF07, 0x05) // enable, period select 01 -> every 16 cycles
	c.Tick(16)
	if got := c.Read(0xFF05); got != 1 {
		t.Errorf("TIMA = %d, want 1", got)
	}
	c.Tick(16 * 3)
	if got := c.Read(0xFF05); got != 4 {
		t.Errorf("TIMA = %d, want 4", got)
	}
}

func TestTIMAOverflowReloadsTMAAndRequestsInterrupt(t *testing.T) {
	irq := interrupts.New()
	c := New(irq)
	c.Write(0xFF06, 0x50) // TMA
	c.Write(0xFF07, 0x05) // enable, period 16
	c.Write(0xFF05, 0xFF) // one tick from overflow
	c.Tick(16)
	if got := c.Read(0xFF05); got != 0x50 {
		t.Errorf("TIMA after overflow = %#02x, want TMA (0x50)", got)
	}
	if irq.Flag&(1<<interrupts.Timer) == 0 {
		t.Errorf("expected Timer interrupt requested on overflow")
	}
}

func TestTACUnusedBitsReadAsSet(t *testing.T) {
	irq := interrupts.New()
	c := New(irq)
	c.Write(0xFF07, 0x05)
	if got := c.Read(0xFF07); got != 0xFD {
		t.Errorf("TAC readback = %#02x, want 0xFD (bits 3-7 forced high)", got)
	}
}
