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

package dmasound_test

import (
	"testing"

	"gopherst/hardware/clocks"
	"gopherst/hardware/memory"
	"gopherst/hardware/peripherals/dmasound"
	"gopherst/hardware/scheduler"
	"gopherst/test"
)

type mockMFP struct {
	timerA []bool
	gpip7  []bool
}

func (m *mockMFP) TimerAInput(level bool) {
	m.timerA = append(m.timerA, level)
}

func (m *mockMFP) GPIP7(level bool) {
	m.gpip7 = append(m.gpip7, level)
}

type mockMixer struct {
	samples []int8
	batches []int
}

func (m *mockMixer) SetAudio(samples []int8) error {
	m.samples = append(m.samples, samples...)
	m.batches = append(m.batches, len(samples))
	return nil
}

func newTestChannel() (*dmasound.Channel, *scheduler.Scheduler, *memory.RAM, *mockMFP, *mockMixer) {
	sch := scheduler.NewScheduler()
	ram := memory.NewRAM(0x10000)
	mfp := &mockMFP{}
	mixer := &mockMixer{}
	return dmasound.NewChannel(sch, ram, mfp, mixer), sch, ram, mfp, mixer
}

func setRange(ch *dmasound.Channel, base uint32, end uint32) {
	// lane 0 first: writing the high lane clears the other two
	ch.BaseWrite(0, uint8(base>>16))
	ch.BaseWrite(1, uint8(base>>8))
	ch.BaseWrite(2, uint8(base))
	ch.EndWrite(0, uint8(end>>16))
	ch.EndWrite(1, uint8(end>>8))
	ch.EndWrite(2, uint8(end))
}

func TestMonoPlayback(t *testing.T) {
	ch, sch, ram, mfp, mixer := newTestChannel()

	for i := uint32(0); i < 16; i++ {
		ram.WriteByte(0x1000+i, uint8(i+1))
	}

	setRange(ch, 0x1000, 0x1010)
	ch.ModeWrite(dmasound.ModeMono | 0x03)
	ch.ControlWrite(dmasound.ControlEnable)
	test.ExpectSuccess(t, ch.Active())

	period := clocks.DMASoundPeriod[3]

	// the first sample plays immediately. eight samples drain the FIFO
	// before the counter moves again
	sch.Run(period*7 + 1)
	test.ExpectEquality(t, len(mixer.samples), 8)
	test.ExpectEquality(t, int(ch.CounterRead(2)), 0x08)

	// the second refill reaches the end address and the channel goes
	// inactive, but the FIFO still drains to the last byte
	sch.Run(period * 8)
	test.ExpectEquality(t, len(mixer.samples), 16)
	test.ExpectSuccess(t, !ch.Active())
	test.ExpectEquality(t, int(ch.CounterRead(1)), 0x10)
	test.ExpectEquality(t, int(ch.CounterRead(2)), 0x10)

	for i := 0; i < 16; i++ {
		test.ExpectEquality(t, mixer.samples[i], int8(i+1))
	}

	// repeat is unset: the channel stays stopped
	sch.Run(period * 8)
	test.ExpectEquality(t, len(mixer.samples), 16)

	// the signal lines followed the active flag. the general purpose line
	// is the XOR with the monochrome detect (high at power on)
	test.ExpectEquality(t, mfp.timerA[0], true)
	test.ExpectEquality(t, mfp.timerA[len(mfp.timerA)-1], false)
	test.ExpectEquality(t, mfp.gpip7[0], false)
	test.ExpectEquality(t, mfp.gpip7[len(mfp.gpip7)-1], true)
}

func TestStereoPlayback(t *testing.T) {
	ch, sch, ram, _, mixer := newTestChannel()

	for i := uint32(0); i < 16; i++ {
		ram.WriteByte(0x3000+i, uint8(0x10+i))
	}

	setRange(ch, 0x3000, 0x3010)

	// stereo at rate 2: two bytes per tick, left channel first
	ch.ModeWrite(0x02)
	ch.ControlWrite(dmasound.ControlEnable)

	period := clocks.DMASoundPeriod[2]
	sch.Run(period*7 + 1)

	test.ExpectEquality(t, len(mixer.samples), 16)
	test.ExpectSuccess(t, !ch.Active())
	for i := 0; i < 16; i++ {
		test.ExpectEquality(t, mixer.samples[i], int8(0x10+i))
	}
	for _, n := range mixer.batches {
		test.ExpectEquality(t, n, 2)
	}
}

func TestRepeat(t *testing.T) {
	ch, sch, ram, _, mixer := newTestChannel()

	for i := uint32(0); i < 16; i++ {
		ram.WriteByte(0x1000+i, uint8(i+1))
	}

	setRange(ch, 0x1000, 0x1010)
	ch.ModeWrite(dmasound.ModeMono | 0x03)
	ch.ControlWrite(dmasound.ControlEnable | dmasound.ControlRepeat)

	period := clocks.DMASoundPeriod[3]

	// the last sample of the pass reactivates the channel and the counter
	// returns to the base address
	sch.Run(period*7 + 1)
	sch.Run(period * 8)
	test.ExpectEquality(t, len(mixer.samples), 16)
	test.ExpectSuccess(t, ch.Active())
	test.ExpectEquality(t, int(ch.CounterRead(1)), 0x10)
	test.ExpectEquality(t, int(ch.CounterRead(2)), 0x00)

	// the second pass replays the same range
	sch.Run(period * 8)
	test.ExpectEquality(t, len(mixer.samples), 24)
	for i := 0; i < 8; i++ {
		test.ExpectEquality(t, mixer.samples[16+i], int8(i+1))
	}

	// clearing enable stops the loop
	ch.ControlWrite(0)
	test.ExpectSuccess(t, !ch.Active())
	n := len(mixer.samples)
	sch.Run(period * 16)
	test.ExpectEquality(t, len(mixer.samples), n)
}

func TestMonoToStereoSwitch(t *testing.T) {
	ch, sch, ram, _, mixer := newTestChannel()

	for i := uint32(0); i < 16; i++ {
		ram.WriteByte(0x1000+i, uint8(i+1))
	}

	setRange(ch, 0x1000, 0x1010)
	ch.ModeWrite(dmasound.ModeMono | 0x03)
	ch.ControlWrite(dmasound.ControlEnable)

	period := clocks.DMASoundPeriod[3]

	// three mono samples leave an odd count in the FIFO
	sch.Run(period*2 + 1)
	test.ExpectEquality(t, len(mixer.samples), 3)

	// switching to stereo mid-FIFO drains the remainder in pairs until a
	// single byte is left, which plays on both sides
	ch.ModeWrite(0x03)
	sch.Run(period * 3)
	test.ExpectEquality(t, len(mixer.samples), 9)
	test.ExpectEquality(t, mixer.samples[3], int8(4))
	test.ExpectEquality(t, mixer.samples[7], int8(8))
	test.ExpectEquality(t, mixer.samples[8], int8(8))
	test.ExpectEquality(t, int(ch.CounterRead(2)), 0x08)

	// the second refill streams out as normal stereo pairs
	sch.Run(period * 4)
	test.ExpectEquality(t, len(mixer.samples), 17)
	test.ExpectEquality(t, mixer.samples[15], int8(15))
	test.ExpectEquality(t, mixer.samples[16], int8(16))
	test.ExpectSuccess(t, !ch.Active())
}

func TestRangeLatchedWhileActive(t *testing.T) {
	ch, sch, ram, _, mixer := newTestChannel()

	for i := uint32(0); i < 16; i++ {
		ram.WriteByte(0x1000+i, uint8(i+1))
	}
	for i := uint32(0); i < 16; i++ {
		ram.WriteByte(0x2000+i, uint8(0x40+i))
	}

	setRange(ch, 0x1000, 0x1010)
	ch.ModeWrite(dmasound.ModeMono | 0x03)
	ch.ControlWrite(dmasound.ControlEnable)

	period := clocks.DMASoundPeriod[3]
	sch.Run(period*7 + 1)

	// redirecting the base mid-stream must not disturb the running
	// transfer
	ch.BaseWrite(0, 0x00)
	ch.BaseWrite(1, 0x20)
	ch.BaseWrite(2, 0x00)
	test.ExpectEquality(t, int(ch.CounterRead(1)), 0x10)

	sch.Run(period * 8)
	test.ExpectEquality(t, len(mixer.samples), 16)
	test.ExpectEquality(t, mixer.samples[15], int8(16))
	test.ExpectSuccess(t, !ch.Active())

	// the new base is picked up on the next activation
	ch.EndWrite(0, 0x00)
	ch.EndWrite(1, 0x20)
	ch.EndWrite(2, 0x10)
	ch.ControlWrite(dmasound.ControlEnable)
	sch.Run(period*15 + 1)
	test.ExpectEquality(t, len(mixer.samples), 32)
	test.ExpectEquality(t, mixer.samples[16], int8(0x40))
}

func TestAddressLanes(t *testing.T) {
	ch, _, _, _, _ := newTestChannel()

	// the low bit never sets and the high lane is six bits wide
	ch.BaseWrite(2, 0xff)
	test.ExpectEquality(t, int(ch.BaseRead(2)), 0xfe)
	ch.BaseWrite(1, 0xff)
	test.ExpectEquality(t, int(ch.BaseRead(1)), 0xff)

	// writing the high lane clears the other two
	ch.BaseWrite(0, 0xff)
	test.ExpectEquality(t, int(ch.BaseRead(0)), 0x3f)
	test.ExpectEquality(t, int(ch.BaseRead(1)), 0x00)
	test.ExpectEquality(t, int(ch.BaseRead(2)), 0x00)

	// mode keeps only the mono select and the rate
	ch.ModeWrite(0xff)
	test.ExpectEquality(t, int(ch.ModeRead()), 0x83)
}

func TestSnapshotPlumb(t *testing.T) {
	ch, sch, ram, _, mixer := newTestChannel()

	for i := uint32(0); i < 16; i++ {
		ram.WriteByte(0x1000+i, uint8(i+1))
	}

	setRange(ch, 0x1000, 0x1010)
	ch.ModeWrite(dmasound.ModeMono | 0x03)
	ch.ControlWrite(dmasound.ControlEnable)

	period := clocks.DMASoundPeriod[3]
	sch.Run(period*3 + 1)
	test.ExpectEquality(t, len(mixer.samples), 4)

	snap := ch.Snapshot()
	mixer2 := &mockMixer{}
	snap.Plumb(sch, ram, nil, mixer2)

	// the restored channel finishes the transfer from where it left off
	sch.Run(period * 12)
	test.ExpectEquality(t, len(mixer2.samples), 12)
	for i := 0; i < 12; i++ {
		test.ExpectEquality(t, mixer2.samples[i], int8(i+5))
	}
	test.ExpectSuccess(t, !snap.Active())
}
