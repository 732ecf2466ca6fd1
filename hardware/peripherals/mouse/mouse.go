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

// Package mouse implements the quadrature encoder of the two-button mouse.
// The host feeds the encoder absolute axis positions as eight bit counters;
// the encoder compares each new position against the last one it saw and
// emits the corresponding quadrature phase patterns on a four bit nibble,
// two bits per axis, the way the opto-mechanical wheels would.
//
// The encoder runs on a fixed scan timer. Each scan advances the phase
// counter; the direction of each axis is re-classified every fourth scan,
// when the phase counter wraps.
package mouse

import (
	"fmt"

	"gopherst/hardware/clocks"
	"gopherst/hardware/scheduler"
)

// direction phase of one axis
type phase int

const (
	phaseStatic phase = iota
	phasePositive
	phaseNegative
)

// the quadrature patterns indexed by phase and scan counter. one table per
// output line of the axis
var quadratureA = [3][4]uint8{
	{0, 0, 0, 0},
	{1, 1, 0, 0},
	{0, 1, 1, 0},
}

var quadratureB = [3][4]uint8{
	{0, 0, 0, 0},
	{0, 1, 1, 0},
	{1, 1, 0, 0},
}

// Mouse implements the quadrature encoder.
type Mouse struct {
	// positions as last supplied by the host
	x uint8
	y uint8

	// positions at the last classification
	lastX uint8
	lastY uint8

	phaseX phase
	phaseY phase

	// scan counter, wraps modulo 4
	scan int

	nibble uint8

	timer      *scheduler.Timer
	timerState timerState
}

type timerState struct {
	remaining uint64
}

// NewMouse is the preferred method of initialisation for the Mouse type. The
// scan timer starts immediately and runs for the life of the machine.
func NewMouse(sch *scheduler.Scheduler) *Mouse {
	m := &Mouse{}
	m.timer = sch.NewTimer("mouse", m.tick)
	m.timer.AdjustPeriodic(clocks.MousePeriod, clocks.MousePeriod)
	return m
}

func (m *Mouse) String() string {
	return fmt.Sprintf("x=%d y=%d nibble=%#02x", m.x, m.y, m.nibble)
}

// Snapshot creates a copy of the encoder in its current state.
func (m *Mouse) Snapshot() *Mouse {
	n := *m
	n.timer = nil
	n.timerState = timerState{
		remaining: m.timer.Remaining(),
	}
	return &n
}

// Plumb a snapshotted encoder back into the machine.
func (m *Mouse) Plumb(sch *scheduler.Scheduler) {
	m.timer = sch.NewTimer("mouse", m.tick)
	m.timer.AdjustPeriodic(m.timerState.remaining, clocks.MousePeriod)
}

// SetAxes supplies new absolute positions for both axes. The positions are
// eight bit counters: they wrap, and the encoder treats a wrap from 0xff to
// 0x00 as continued positive movement (and the reverse as negative).
func (m *Mouse) SetAxes(x uint8, y uint8) {
	m.x = x
	m.y = y
}

// Nibble returns the current levels of the four quadrature lines: axis X on
// bits 0 (B) and 1 (A), axis Y on bits 2 (B) and 3 (A).
func (m *Mouse) Nibble() uint8 {
	return m.nibble
}

// classify the direction of movement between two counter readings
func classify(position uint8, last uint8) phase {
	switch {
	case position == last:
		return phaseStatic
	case position == 0x00 && last == 0xff:
		return phasePositive
	case position == 0xff && last == 0x00:
		return phaseNegative
	case position > last:
		return phasePositive
	default:
		return phaseNegative
	}
}

func (m *Mouse) tick() {
	if m.scan == 0 {
		m.phaseX = classify(m.x, m.lastX)
		m.phaseY = classify(m.y, m.lastY)
		m.lastX = m.x
		m.lastY = m.y
	}

	m.nibble = quadratureB[m.phaseX][m.scan] |
		quadratureA[m.phaseX][m.scan]<<1 |
		quadratureB[m.phaseY][m.scan]<<2 |
		quadratureA[m.phaseY][m.scan]<<3

	m.scan = (m.scan + 1) & 3
}
