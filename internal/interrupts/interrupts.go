// Package interrupts provides the Game Boy interrupt controller: the
// IF/IE register pair, the five interrupt sources, and the two-instruction
// delay that EI and DI both impose on the master enable flag.
package interrupts

// Source identifies one of the five interrupt lines, and doubles as the
// bit index used in both IF and IE.
type Source = uint8

const (
	VBlank Source = iota
	LCDStat
	Timer
	Serial
	Joypad
)

// Vector is the fixed dispatch address for a Source, in priority order
// (VBlank highest, Joypad lowest).
var Vector = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

const (
	FlagRegister   uint16 = 0xFF0F
	EnableRegister uint16 = 0xFFFF
)

// Controller owns IF, IE, and IME, including the delayed application of
// EI/DI that models the real hardware's instruction latency.
type Controller struct {
	Flag   uint8
	Enable uint8
	IME    bool

	pendingIME bool
	delay      int
}

func New() *Controller {
	return &Controller{}
}

// Request sets the IF bit for the given source. Called by any unit that
// observes a condition that should raise an interrupt; dispatch happens
// later, once per instruction, in Dispatch.
func (c *Controller) Request(source Source) {
	c.Flag |= 1 << source
}

// Pending reports whether any requested interrupt is also enabled,
// regardless of IME — used by HALT to decide when to wake up.
func (c *Controller) Pending() bool {
	return c.Flag&c.Enable&0x1F != 0
}

// ScheduleEnable arms IME to become true once the instruction following
// the one after this one has completed (EI's delayed effect). If EI and
// DI land back to back, the most recent one wins and restarts the count —
// only one pending latch exists.
func (c *Controller) ScheduleEnable() {
	c.pendingIME = true
	c.delay = 2
}

// ScheduleDisable arms IME to become false on the same delayed schedule
// as ScheduleEnable (DI's delayed effect).
func (c *Controller) ScheduleDisable() {
	c.pendingIME = false
	c.delay = 2
}

// EnableImmediate sets IME true with no delay and cancels any pending
// EI/DI latch. Used by RETI, which re-enables interrupts as soon as it
// returns rather than waiting out the usual delay.
func (c *Controller) EnableImmediate() {
	c.IME = true
	c.delay = 0
}

// Settle counts down a pending EI/DI latch and applies it once it
// expires. Called once at the start of every instruction, before it
// executes.
func (c *Controller) Settle() {
	if c.delay == 0 {
		return
	}
	c.delay--
	if c.delay == 0 {
		c.IME = c.pendingIME
	}
}

// Dispatch services the highest-priority pending, enabled interrupt if
// IME is set. It returns the vector to jump to and true, or (0, false) if
// no interrupt was dispatched. The caller is responsible for pushing PC
// onto the stack and for accounting the 20-cycle service cost.
func (c *Controller) Dispatch() (uint16, bool) {
	if !c.IME {
		return 0, false
	}
	pending := c.Flag & c.Enable & 0x1F
	if pending == 0 {
		return 0, false
	}
	for bit := Source(0); bit < 5; bit++ {
		if pending&(1<<bit) != 0 {
			c.Flag &^= 1 << bit
			c.IME = false
			return Vector[bit], true
		}
	}
	return 0, false
}

// Read returns the value of IF or IE as observed over the bus. The three
// unused high bits of IF always read back as 1.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case FlagRegister:
		return c.Flag&0x1F | 0xE0
	case EnableRegister:
		return c.Enable
	}
	return 0xFF
}

// Write stores a value written to IF or IE over the bus.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case FlagRegister:
		c.Flag = value
	case EnableRegister:
		c.Enable = value
	}
}
