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

// Package dmasound implements the PCM sound DMA channel. The channel streams
// signed 8-bit samples from a word-aligned region of RAM to an audio sink at
// one of four programmable rates, through an 8-byte FIFO.
//
// The streamed region is bounded by the base and end registers as they were
// at the moment the channel last went active. Writes to base and end while
// the channel is streaming update the raw registers only; the latched copies
// are picked up at the next inactive-to-active transition, so a range can
// never change under a running transfer.
package dmasound

import (
	"fmt"

	"gopherst/hardware/clocks"
	"gopherst/hardware/memory/bus"
	"gopherst/hardware/scheduler"
)

// MFP is the pair of external signal lines driven by the channel-active
// flag: the timer-A event input and general-purpose line 7 (the latter XORed
// with the monochrome detect line). A nil MFP is allowed.
type MFP interface {
	TimerAInput(level bool)
	GPIP7(level bool)
}

// AudioMixer is the destination of produced samples. A nil AudioMixer is
// allowed; samples are then discarded.
type AudioMixer interface {
	SetAudio(samples []int8) error
}

// control register fields
const (
	ControlEnable = 0x01
	ControlRepeat = 0x02
)

// mode register fields
const (
	ModeMono     = 0x80
	ModeRateMask = 0x03
)

const fifoSize = 8

// Channel implements the sound DMA channel.
type Channel struct {
	mem   bus.Memory
	mfp   MFP
	mixer AudioMixer

	// raw address registers and the copies latched at activation time
	base      uint32
	end       uint32
	counter   uint32
	baseLatch uint32
	endLatch  uint32

	control uint8
	mode    uint8

	fifo    [fifoSize]uint8
	samples int

	active     bool
	monochrome bool

	timer      *scheduler.Timer
	timerState timerState
}

type timerState struct {
	running   bool
	remaining uint64
	period    uint64
}

// NewChannel is the preferred method of initialisation for the Channel type.
func NewChannel(sch *scheduler.Scheduler, mem bus.Memory, mfp MFP, mixer AudioMixer) *Channel {
	ch := &Channel{
		mem:        mem,
		mfp:        mfp,
		mixer:      mixer,
		monochrome: true,
	}
	ch.timer = sch.NewTimer("DMA sound", ch.tick)
	return ch
}

func (ch *Channel) String() string {
	return fmt.Sprintf("base=%#06x end=%#06x counter=%#06x ctrl=%#02x mode=%#02x active=%v",
		ch.base, ch.end, ch.counter, ch.control, ch.mode, ch.active,
	)
}

// Snapshot creates a copy of the channel in its current state.
func (ch *Channel) Snapshot() *Channel {
	n := *ch
	n.timer = nil
	n.timerState = timerState{
		running:   ch.timer.Running(),
		remaining: ch.timer.Remaining(),
		period:    ch.timer.Period(),
	}
	return &n
}

// Plumb a snapshotted channel back into the machine.
func (ch *Channel) Plumb(sch *scheduler.Scheduler, mem bus.Memory, mfp MFP, mixer AudioMixer) {
	ch.mem = mem
	ch.mfp = mfp
	ch.mixer = mixer
	ch.timer = sch.NewTimer("DMA sound", ch.tick)
	if ch.timerState.running {
		ch.timer.AdjustPeriodic(ch.timerState.remaining, ch.timerState.period)
	}
}

// Reset the channel to its power-on state. The signal lines are driven to
// their inactive levels.
func (ch *Channel) Reset() {
	ch.timer.Cancel()
	ch.control = 0
	ch.mode = 0
	ch.base = 0
	ch.end = 0
	ch.counter = 0
	ch.samples = 0
	ch.setActive(false)
}

// Active returns the state of the channel-active flag.
func (ch *Channel) Active() bool {
	return ch.active
}

// SetMonochrome sets the monochrome detect level that is XORed into the
// general-purpose line.
func (ch *Channel) SetMonochrome(level bool) {
	ch.monochrome = level
	if ch.mfp != nil {
		ch.mfp.GPIP7(ch.monochrome != ch.active)
	}
}

// setActive drives the channel-active flag and the derived signal lines. the
// address latches are refreshed on deactivation; the counter is reloaded
// from the base latch on activation
func (ch *Channel) setActive(level bool) {
	ch.active = level
	if ch.mfp != nil {
		ch.mfp.TimerAInput(level)
		ch.mfp.GPIP7(ch.monochrome != level)
	}

	if !level {
		ch.baseLatch = ch.base
		ch.endLatch = ch.end
	} else {
		ch.counter = ch.baseLatch
	}
}

// tick is the periodic scheduler callback: refill the FIFO when drained and
// surface one (mono) or two (stereo) samples
func (ch *Channel) tick() {
	if ch.samples == 0 {
		for i := range ch.fifo {
			ch.fifo[i] = ch.mem.ReadByte(ch.counter)
			ch.counter++
			ch.samples++

			if ch.counter == ch.endLatch {
				// the active phase is over. slots beyond this point keep
				// whatever they held before; the hardware does not clear
				// them
				ch.setActive(false)
				break
			}
		}
	}

	if ch.mode&ModeMono == 0 {
		// stereo: left then right. a switch from mono mid-FIFO can leave
		// an odd count; the last byte then plays on both sides
		ch.samples--
		l := int8(ch.fifo[fifoSize-1-ch.samples])
		r := l
		if ch.samples > 0 {
			ch.samples--
			r = int8(ch.fifo[fifoSize-1-ch.samples])
		}
		ch.emit(l, r)
	} else {
		ch.samples--
		ch.emit(int8(ch.fifo[fifoSize-1-ch.samples]))
	}

	if ch.samples == 0 && !ch.active {
		if ch.control == ControlEnable|ControlRepeat {
			// continuous mode: straight back to the top of the range
			ch.setActive(true)
		} else {
			ch.timer.Cancel()
		}
	}
}

func (ch *Channel) emit(samples ...int8) {
	if ch.mixer != nil {
		ch.mixer.SetAudio(samples)
	}
}

// ControlRead reads the control register.
func (ch *Channel) ControlRead() uint8 {
	return ch.control
}

// ControlWrite writes the control register. Only the enable and repeat bits
// are kept. Setting enable on an idle channel starts streaming at the rate
// currently selected by the mode register; clearing enable stops it and
// disarms the timer.
func (ch *Channel) ControlWrite(data uint8) {
	ch.control = data & (ControlEnable | ControlRepeat)

	if ch.control&ControlEnable != 0 {
		if !ch.active {
			ch.setActive(true)
			ch.timer.AdjustPeriodic(0, clocks.DMASoundPeriod[ch.mode&ModeRateMask])
		}
	} else {
		ch.setActive(false)
		ch.timer.Cancel()
	}
}

// BaseRead reads one lane of the base address register. Lane 0 is the high
// byte.
func (ch *Channel) BaseRead(lane int) uint8 {
	return readLane(ch.base, lane)
}

// BaseWrite writes one lane of the base address register. The latch is only
// refreshed if the channel is inactive: an in-flight write never corrupts
// the currently streaming range.
func (ch *Channel) BaseWrite(lane int, data uint8) {
	ch.base = writeLane(ch.base, lane, data)
	if !ch.active {
		ch.baseLatch = ch.base
	}
}

// CounterRead reads one lane of the streaming counter. The counter register
// is read-only.
func (ch *Channel) CounterRead(lane int) uint8 {
	return readLane(ch.counter, lane)
}

// EndRead reads one lane of the end address register.
func (ch *Channel) EndRead(lane int) uint8 {
	return readLane(ch.end, lane)
}

// EndWrite writes one lane of the end address register. Latching rules are
// the same as for BaseWrite.
func (ch *Channel) EndWrite(lane int, data uint8) {
	ch.end = writeLane(ch.end, lane, data)
	if !ch.active {
		ch.endLatch = ch.end
	}
}

// ModeRead reads the mode register.
func (ch *Channel) ModeRead() uint8 {
	return ch.mode
}

// ModeWrite writes the mode register: the mono/stereo select and the sample
// rate. A rate change takes effect the next time the channel is enabled.
func (ch *Channel) ModeWrite(data uint8) {
	ch.mode = data & (ModeMono | ModeRateMask)
}

// the address registers sit in a 22-bit space and are word aligned: the top
// lane is six bits and the bottom bit of the low lane never sets
func readLane(address uint32, lane int) uint8 {
	switch lane {
	case 0:
		return uint8(address>>16) & 0x3f
	case 1:
		return uint8(address >> 8)
	case 2:
		return uint8(address)
	}
	return 0
}

func writeLane(address uint32, lane int, data uint8) uint32 {
	switch lane {
	case 0:
		// writing the high lane clears the rest of the register
		return uint32(data) << 16 & 0x3f0000
	case 1:
		return (address & 0x3f00fe) | uint32(data)<<8
	case 2:
		return (address & 0x3fff00) | uint32(data&0xfe)
	}
	return address
}
