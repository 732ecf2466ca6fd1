// This file is part of GopherST.
//
// GopherST is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherST is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherST.  If not, see <https://www.gnu.org/licenses/>.

// Package lmc1992 implements the volume and tone control chip on the far end
// of the serial mixer link. The chip listens on the link for eleven bit
// commands: a two bit device address, a three bit function select and six
// bits of data. Commands addressed to other devices on the link are ignored.
//
// The chip is a register sink. Audio itself is produced by the sound DMA
// channel; the settings collected here are for inspection by the frontend.
package lmc1992

import (
	"fmt"

	"gopherst/logger"
)

// the device address the chip answers to
const deviceAddress = 0x2

// function select values
const (
	funcInput = iota
	funcBass
	funcTreble
	funcVolume
	funcFadeRight
	funcFadeLeft
)

// LMC1992 implements the mixer settings sink. It satisfies the Mixer
// interface of the microwire package.
type LMC1992 struct {
	// serial link state
	enable bool
	clock  bool
	data   bool

	// bits collected while enable is asserted
	shift uint16
	bits  int

	input     uint8
	bass      uint8
	treble    uint8
	volume    uint8
	fadeLeft  uint8
	fadeRight uint8
}

// NewLMC1992 is the preferred method of initialisation for the LMC1992 type.
func NewLMC1992() *LMC1992 {
	return &LMC1992{}
}

func (mx *LMC1992) String() string {
	return fmt.Sprintf("input=%d bass=%d treble=%d volume=%d fade=%d/%d",
		mx.input, mx.bass, mx.treble, mx.volume, mx.fadeLeft, mx.fadeRight,
	)
}

// Snapshot creates a copy of the mixer in its current state.
func (mx *LMC1992) Snapshot() *LMC1992 {
	n := *mx
	return &n
}

// SetEnable drives the chip select line. Bits accumulate while the line is
// asserted; deassertion decodes whatever arrived.
func (mx *LMC1992) SetEnable(level bool) {
	if mx.enable && !level {
		mx.decode()
	}
	if level {
		mx.shift = 0
		mx.bits = 0
	}
	mx.enable = level
}

// SetData drives the serial data line.
func (mx *LMC1992) SetData(level bool) {
	mx.data = level
}

// Clock drives the serial clock line. The data line is sampled on the rising
// edge.
func (mx *LMC1992) Clock(level bool) {
	if level && !mx.clock && mx.enable {
		mx.shift = mx.shift<<1 | b2u(mx.data)
		mx.bits++
	}
	mx.clock = level
}

func b2u(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func (mx *LMC1992) decode() {
	if mx.bits < 11 {
		logger.Logf("lmc1992", "short command (%d bits)", mx.bits)
		return
	}

	// the last eleven bits clocked in form the command
	address := mx.shift >> 9 & 0x3
	function := mx.shift >> 6 & 0x7
	data := uint8(mx.shift & 0x3f)

	if address != deviceAddress {
		return
	}

	switch function {
	case funcInput:
		mx.input = data & 0x7
	case funcBass:
		mx.bass = data & 0xf
	case funcTreble:
		mx.treble = data & 0xf
	case funcVolume:
		mx.volume = data
	case funcFadeRight:
		mx.fadeRight = data
	case funcFadeLeft:
		mx.fadeLeft = data
	default:
		logger.Logf("lmc1992", "unknown function %d", function)
	}
}

// Input returns the input select setting.
func (mx *LMC1992) Input() uint8 {
	return mx.input
}

// Bass returns the bass setting. The chip's useful range is 2 to 12, from
// -12dB to +12dB in 2dB steps.
func (mx *LMC1992) Bass() uint8 {
	return mx.bass
}

// Treble returns the treble setting. Same range as Bass().
func (mx *LMC1992) Treble() uint8 {
	return mx.treble
}

// Volume returns the master volume setting: 0dB at 40 down to -80dB at zero
// in 2dB steps.
func (mx *LMC1992) Volume() uint8 {
	return mx.volume
}

// FadeLeft returns the left fader setting: 0dB at 20 down to -40dB at zero.
func (mx *LMC1992) FadeLeft() uint8 {
	return mx.fadeLeft
}

// FadeRight returns the right fader setting. Same range as FadeLeft().
func (mx *LMC1992) FadeRight() uint8 {
	return mx.fadeRight
}
