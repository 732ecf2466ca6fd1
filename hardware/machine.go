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
	"gopherst/hardware/scheduler"
	"gopherst/random"
)

// size of the RAM area. the largest fitting configuration
const RAMSize = 0x400000

// MFP records the levels of the two interrupt controller inputs driven by
// the sound channel. The controller itself is outside the scope of the
// machine; the recorded levels are for the frontend to poll.
type MFP struct {
	TimerA bool
	Port7  bool
}

// TimerAInput implements the dmasound.MFP interface.
func (m *MFP) TimerAInput(level bool) {
	m.TimerA = level
}

// GPIP7 implements the dmasound.MFP interface.
func (m *MFP) GPIP7(level bool) {
	m.Port7 = level
}

// Machine is the main container for the emulated peripherals.
type Machine struct {
	Scheduler *scheduler.Scheduler
	Mem       *memory.RAM
	Random    *random.Random

	PIT       *pit.PIT
	DMA       *fdcdma.DMA
	Sound     *dmasound.Channel
	Microwire *microwire.Microwire
	Mixer     *lmc1992.LMC1992
	Mouse     *mouse.Mouse

	MFP *MFP

	// the devices on the far side of the peripherals, attached at creation
	// and kept for re-plumbing
	fdc   fdcdma.Controller
	audio dmasound.AudioMixer
	pins  pit.Pins
}

// NewMachine creates the machine and everything in it. The floppy
// controller, the audio destination and the parallel port pins may each be
// nil.
func NewMachine(fdc fdcdma.Controller, audio dmasound.AudioMixer, pins pit.Pins) *Machine {
	m := &Machine{
		Scheduler: scheduler.NewScheduler(),
		MFP:       &MFP{},
		Mixer:     lmc1992.NewLMC1992(),
		fdc:       fdc,
		audio:     audio,
		pins:      pins,
	}

	m.Mem = memory.NewRAM(RAMSize)
	m.Random = random.NewRandom(m.Scheduler)

	m.PIT = pit.NewPIT(m.Scheduler, pins)
	m.DMA = fdcdma.NewDMA(m.Mem, fdc, m.Random)
	m.Sound = dmasound.NewChannel(m.Scheduler, m.Mem, m.MFP, audio)
	m.Microwire = microwire.NewMicrowire(m.Scheduler, m.Mixer)
	m.Mouse = mouse.NewMouse(m.Scheduler)

	return m
}

// Run the machine for the specified number of master-clock cycles.
func (m *Machine) Run(cycles uint64) {
	m.Scheduler.Run(cycles)
}

// Reset the machine. RAM is not cleared; real hardware doesn't either.
func (m *Machine) Reset() {
	m.PIT.Reset()
	m.DMA.Reset()
	m.Sound.Reset()
	m.Microwire.Reset()
}
