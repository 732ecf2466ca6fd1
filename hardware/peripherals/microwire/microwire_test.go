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

package microwire_test

import (
	"testing"

	"gopherst/hardware/clocks"
	"gopherst/hardware/peripherals/microwire"
	"gopherst/hardware/scheduler"
	"gopherst/test"
)

type mockMixer struct {
	enable  []bool
	bits    []bool
	data    bool
	clocks  int
	enabled bool
}

func (m *mockMixer) SetEnable(level bool) {
	m.enable = append(m.enable, level)
	m.enabled = level
}

func (m *mockMixer) SetData(level bool) {
	m.data = level
}

func (m *mockMixer) Clock(level bool) {
	if level {
		m.clocks++
		m.bits = append(m.bits, m.data)
		if !m.enabled {
			panic("clocked without chip select")
		}
	}
}

func newTestMicrowire() (*microwire.Microwire, *scheduler.Scheduler, *mockMixer) {
	sch := scheduler.NewScheduler()
	mixer := &mockMixer{}
	return microwire.NewMicrowire(sch, mixer), sch, mixer
}

func runTransmission(sch *scheduler.Scheduler) {
	// sixteen steps at the shift period. the first step fires immediately
	sch.Run(clocks.MicrowirePeriod * 16)
}

func TestFullMask(t *testing.T) {
	mw, sch, mixer := newTestMicrowire()

	mw.MaskWrite(0xffff)
	mw.DataWrite(0xa5a5)
	test.ExpectSuccess(t, mw.Busy())

	runTransmission(sch)
	test.ExpectSuccess(t, !mw.Busy())

	// all sixteen bits transmitted MSB first with one clock pulse each
	test.ExpectEquality(t, mixer.clocks, 16)
	for i, bit := range mixer.bits {
		test.ExpectEquality(t, bit, 0xa5a5&(0x8000>>i) != 0)
	}

	// chip select held for the whole transmission
	test.ExpectEquality(t, len(mixer.enable), 2)
	test.ExpectEquality(t, mixer.enable[0], true)
	test.ExpectEquality(t, mixer.enable[1], false)

	// both registers have rotated back to their written values
	test.ExpectEquality(t, mw.DataRead(), uint16(0xa5a5))
	test.ExpectEquality(t, mw.MaskRead(), uint16(0xffff))
}

func TestPartialMask(t *testing.T) {
	mw, sch, mixer := newTestMicrowire()

	// the customary mask: an eleven bit command left-aligned after five
	// unused steps
	mw.MaskWrite(0x07ff)
	mw.DataWrite(0x04c5)

	runTransmission(sch)

	// only the masked-in steps clock the mixer
	test.ExpectEquality(t, mixer.clocks, 11)
	for i, bit := range mixer.bits {
		test.ExpectEquality(t, bit, 0x04c5&(0x0400>>i) != 0)
	}
}

func TestMidShiftWritesIgnored(t *testing.T) {
	mw, sch, mixer := newTestMicrowire()

	mw.MaskWrite(0xffff)
	mw.DataWrite(0xffff)

	sch.Run(clocks.MicrowirePeriod * 4)
	test.ExpectSuccess(t, mw.Busy())

	// neither register accepts writes while shifting
	mw.DataWrite(0x0000)
	mw.MaskWrite(0x0000)

	runTransmission(sch)
	test.ExpectEquality(t, mixer.clocks, 16)
	for _, bit := range mixer.bits {
		test.ExpectSuccess(t, bit)
	}
	test.ExpectEquality(t, mw.DataRead(), uint16(0xffff))
}

func TestMidShiftReadRotates(t *testing.T) {
	mw, sch, _ := newTestMicrowire()

	mw.MaskWrite(0xffff)
	mw.DataWrite(0x8000)

	// after five steps the single set bit has rotated five places. the
	// first step fires as soon as the clock moves
	sch.Run(clocks.MicrowirePeriod * 4)
	test.ExpectEquality(t, mw.DataRead(), uint16(0x0010))
}

func TestSnapshotPlumb(t *testing.T) {
	mw, sch, _ := newTestMicrowire()

	mw.MaskWrite(0xffff)
	mw.DataWrite(0xa5a5)
	sch.Run(clocks.MicrowirePeriod * 4)

	snap := mw.Snapshot()
	mixer := &mockMixer{enabled: true}
	snap.Plumb(sch, mixer)

	// the remaining steps complete against the new mixer
	sch.Run(clocks.MicrowirePeriod * 12)
	test.ExpectSuccess(t, !snap.Busy())
	test.ExpectEquality(t, mixer.clocks, 11)
	test.ExpectEquality(t, snap.DataRead(), uint16(0xa5a5))
}
