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

// Package clocks defines the constant clock values of the machine. One
// scheduler tick equals one cycle of the master crystal.
//
// The ST family derives everything from a single crystal. The sound DMA
// sample rates are the master clock divided by 640 and then by a further
// power of two; the microwire shifter ticks every 2 microseconds; the mouse
// encoder is sampled at 500Hz by the keyboard controller firmware.
package clocks

const (
	// the PAL master crystal (Y2). 32028400 also exists
	Master = 32084988

	// one scheduler tick is one master clock cycle
	TicksPerSecond = Master
)

// DMASoundPeriod is the periodic timer interval, in master clock cycles, for
// each of the four sound DMA sample rates (mode register bits 0-1). The
// rates work out at 6258Hz, 12517Hz, 25033Hz and 50066Hz.
var DMASoundPeriod = [4]uint64{640 * 8, 640 * 4, 640 * 2, 640}

// DMASoundRate is the sample rate in Hz for each of the four sound DMA rate
// selections. Useful when configuring an audio sink.
var DMASoundRate = [4]int{
	Master / (640 * 8),
	Master / (640 * 4),
	Master / (640 * 2),
	Master / 640,
}

const (
	// the microwire shifter moves one bit every 2 microseconds
	MicrowirePeriod = Master / 500000

	// the keyboard controller samples the mouse at 500Hz
	MousePeriod = Master / 500
)
