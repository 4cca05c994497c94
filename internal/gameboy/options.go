package gameboy

import "gomeboy/pkg/log"

// Opt configures a GameBoy at construction time.
type Opt func(gb *GameBoy)

// WithLogger replaces the null logger used for diagnostic-only output. The
// GameBoy logs only frames aborted on an unknown opcode; the logger is not
// passed on to the cartridge, bus or PPU.
func WithLogger(logger log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.log = logger
	}
}
