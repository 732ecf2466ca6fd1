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

package hardware

import (
	"gopherst/hardware/memory"
	"gopherst/hardware/peripherals/dmasound"
	"gopherst/hardware/peripherals/fdcdma"
	"gopherst/hardware/peripherals/lmc1992"
	"gopherst/hardware/peripherals/microwire"
	"gopherst/hardware/peripherals/mouse"
	"gopherst/hardware/peripherals/pit"
)

// State is a snapshot of the entire machine. A State can be plumbed back
// into the machine any number of times; the machine never aliases the
// snapshotted components.
//
// Timers are not stored directly. Each component records how far its timer
// was from firing and re-arms it on restore, so a restored machine continues
// with the same relative timing whatever the clock reads.
type State struct {
	Mem       *memory.RAM
	PIT       *pit.PIT
	DMA       *fdcdma.DMA
	Sound     *dmasound.Channel
	Microwire *microwire.Microwire
	Mixer     *lmc1992.LMC1992
	Mouse     *mouse.Mouse
	MFP       MFP
}

// Snapshot creates a copy of the machine in its current state.
func (m *Machine) Snapshot() *State {
	return &State{
		Mem:       m.Mem.Snapshot(),
		PIT:       m.PIT.Snapshot(),
		DMA:       m.DMA.Snapshot(),
		Sound:     m.Sound.Snapshot(),
		Microwire: m.Microwire.Snapshot(),
		Mixer:     m.Mixer.Snapshot(),
		Mouse:     m.Mouse.Snapshot(),
		MFP:       *m.MFP,
	}
}

// Plumb a previously snapshotted state back into the machine. The state
// itself is left untouched and can be plumbed again.
func (m *Machine) Plumb(state *State) {
	m.Mem = state.Mem.Snapshot()
	*m.MFP = state.MFP
	m.Mixer = state.Mixer.Snapshot()

	p := *state.PIT
	m.PIT = &p
	m.PIT.Plumb(m.Scheduler, m.pins)

	d := *state.DMA
	m.DMA = &d
	m.DMA.Plumb(m.Mem, m.fdc, m.Random)

	s := *state.Sound
	m.Sound = &s
	m.Sound.Plumb(m.Scheduler, m.Mem, m.MFP, m.audio)

	w := *state.Microwire
	m.Microwire = &w
	m.Microwire.Plumb(m.Scheduler, m.Mixer)

	ms := *state.Mouse
	m.Mouse = &ms
	m.Mouse.Plumb(m.Scheduler)
}
