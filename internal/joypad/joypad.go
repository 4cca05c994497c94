// Package joypad emulates the Game Boy's 8-bit button matrix and its
// FF00 selection register. Button state is asynchronous with respect to
// the CPU: the host delivers key events between frames (or between
// instructions, behind whatever mutual exclusion the host provides).
package joypad

import "gomeboy/pkg/bits"

// Key is the external key id: 0=Right, 1=Left, 2=Up, 3=Down, 4=A, 5=B,
// 6=Select, 7=Start.
type Key = uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// keyBit maps an external Key to its bit position within the internal
// state byte: direction keys occupy the upper nibble, action keys the
// lower nibble, matching how FF00 exposes them as two selectable groups.
var keyBit = [8]uint8{4, 5, 6, 7, 0, 1, 2, 3}

// State holds the joypad's internal button state and the FF00 selection
// bits written by the game.
type State struct {
	// state has one bit per button, set (1) while the button is held.
	// This is the inverse polarity of the FF00 register, which is
	// active-low.
	state uint8

	// selector holds the two selection bits (4: directions, 5: actions)
	// as last written to FF00; the two always-1 bits above them are added
	// by Read.
	selector uint8
}

func New() *State {
	return &State{selector: 0x30}
}

// directionSelected reports whether the game has selected the direction
// pad group (FF00 bit 4 low).
func (s *State) directionSelected() bool { return !bits.Test(s.selector, 4) }

// actionSelected reports whether the game has selected the action-button
// group (FF00 bit 5 low).
func (s *State) actionSelected() bool { return !bits.Test(s.selector, 5) }

// Read implements mmu.IOBus. FF00 is its only address; the byte returned
// is synthesized on the fly: the upper nibble is the selection bits (plus
// the two unused bits, always 1), the lower nibble reflects whichever
// button group is currently selected, active-low. If neither group is
// selected the lower nibble reads all 1s.
func (s *State) Read(address uint16) uint8 {
	nibble := uint8(0x0F)
	if s.directionSelected() {
		nibble &= ^(s.state >> 4) & 0x0F
	}
	if s.actionSelected() {
		nibble &= ^s.state & 0x0F
	}
	return s.selector | nibble | 0xC0
}

// Write implements mmu.IOBus, storing the selection bits written to FF00.
// Only bits 4-5 are writable; the rest of the register is derived at read
// time.
func (s *State) Write(address uint16, value uint8) {
	s.selector = (s.selector & 0xCF) | (value & 0x30)
}

// Pressed reports whether a key is currently held.
func (s *State) Pressed(key Key) bool {
	return bits.Test(s.state, keyBit[key])
}

// Press marks key as held and reports whether a Joypad interrupt should
// be requested: that only happens on the 0->1 transition of a bit in the
// group the game currently has selected.
func (s *State) Press(key Key) bool {
	bit := keyBit[key]
	wasReleased := !bits.Test(s.state, bit)
	s.state = bits.Set(s.state, bit)

	groupSelected := s.directionSelected()
	if key >= A {
		groupSelected = s.actionSelected()
	}
	return wasReleased && groupSelected
}

// Release marks key as no longer held.
func (s *State) Release(key Key) {
	s.state = bits.Reset(s.state, keyBit[key])
}
