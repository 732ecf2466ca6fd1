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

// Package microwire implements the serial shifter that connects the bus to
// the volume/tone mixer chip. A write to the data register starts a sixteen
// step shift sequence: on each step the top bit of the mask register decides
// whether the top bit of the data register is presented to the mixer with a
// clock pulse, and both registers rotate left by one. After sixteen steps
// both registers have rotated back to their written values.
package microwire

import (
	"fmt"

	"gopherst/hardware/clocks"
	"gopherst/hardware/scheduler"
	"gopherst/logger"
)

// Mixer is the device on the far end of the serial link. A nil Mixer is
// allowed. Clock is pulsed high then low for every masked-in data bit while
// the chip select is asserted.
type Mixer interface {
	SetEnable(level bool)
	SetData(level bool)
	Clock(level bool)
}

// number of shift steps in a transmission
const shiftSteps = 16

// Microwire implements the serial shifter.
type Microwire struct {
	mixer Mixer

	data uint16
	mask uint16

	// step number of the next shift. zero when idle
	shift int

	timer      *scheduler.Timer
	timerState timerState
}

type timerState struct {
	running   bool
	remaining uint64
	period    uint64
}

// NewMicrowire is the preferred method of initialisation for the Microwire
// type.
func NewMicrowire(sch *scheduler.Scheduler, mixer Mixer) *Microwire {
	mw := &Microwire{
		mixer: mixer,
	}
	mw.timer = sch.NewTimer("microwire", mw.tick)
	return mw
}

func (mw *Microwire) String() string {
	return fmt.Sprintf("data=%#04x mask=%#04x shift=%d", mw.data, mw.mask, mw.shift)
}

// Snapshot creates a copy of the shifter in its current state.
func (mw *Microwire) Snapshot() *Microwire {
	n := *mw
	n.timer = nil
	n.timerState = timerState{
		running:   mw.timer.Running(),
		remaining: mw.timer.Remaining(),
		period:    mw.timer.Period(),
	}
	return &n
}

// Plumb a snapshotted shifter back into the machine.
func (mw *Microwire) Plumb(sch *scheduler.Scheduler, mixer Mixer) {
	mw.mixer = mixer
	mw.timer = sch.NewTimer("microwire", mw.tick)
	if mw.timerState.running {
		mw.timer.AdjustPeriodic(mw.timerState.remaining, mw.timerState.period)
	}
}

// Reset the shifter to its power-on state.
func (mw *Microwire) Reset() {
	mw.timer.Cancel()
	mw.data = 0
	mw.mask = 0
	mw.shift = 0
	mw.setEnable(false)
}

// Busy returns true while a transmission is in progress.
func (mw *Microwire) Busy() bool {
	return mw.timer.Running()
}

// DataRead reads the data register. The register rotates during a
// transmission so mid-shift reads see the rotated value; software polls it
// for the written value to reappear as an end-of-transmission check.
func (mw *Microwire) DataRead() uint16 {
	return mw.data
}

// DataWrite writes the data register and starts a transmission. Writes
// during a transmission are ignored.
func (mw *Microwire) DataWrite(data uint16) {
	if mw.timer.Running() {
		logger.Log("microwire", "data write ignored mid-shift")
		return
	}
	mw.data = data
	mw.timer.AdjustPeriodic(0, clocks.MicrowirePeriod)
}

// MaskRead reads the mask register. Like the data register it rotates during
// a transmission.
func (mw *Microwire) MaskRead() uint16 {
	return mw.mask
}

// MaskWrite writes the mask register. Writes during a transmission are
// ignored.
func (mw *Microwire) MaskWrite(data uint16) {
	if mw.timer.Running() {
		logger.Log("microwire", "mask write ignored mid-shift")
		return
	}
	mw.mask = data
}

func (mw *Microwire) setEnable(level bool) {
	if mw.mixer != nil {
		mw.mixer.SetEnable(level)
	}
}

// present one bit to the mixer if the mask allows it and rotate both
// registers left
func (mw *Microwire) shiftOut() {
	if mw.mask&0x8000 != 0 {
		if mw.mixer != nil {
			mw.mixer.SetData(mw.data&0x8000 != 0)
			mw.mixer.Clock(true)
			mw.mixer.Clock(false)
		}
	}
	mw.data = mw.data<<1 | mw.data>>15
	mw.mask = mw.mask<<1 | mw.mask>>15
}

func (mw *Microwire) tick() {
	switch mw.shift {
	case 0:
		// chip select is asserted for the whole transmission
		mw.setEnable(true)
		mw.shiftOut()
		mw.shift++
	case shiftSteps - 1:
		mw.shiftOut()
		mw.setEnable(false)
		mw.shift = 0
		mw.timer.Cancel()
	default:
		mw.shiftOut()
		mw.shift++
	}
}
