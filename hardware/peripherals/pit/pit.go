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

// Package pit implements the programmable interval timer / I-O chip: three
// 8-bit ports and a 14-bit down counter, of which the top two bits of the
// programmed length select the counting mode.
//
// The timer primarily functions as a square-wave generator. A full period of
// length L is counted as two scheduler timer firings: the first half after
// ceil(L/2) ticks with the output held high, the second half of floor(L/2)
// ticks with the output low - except in the single-pulse modes, where the
// output stays high and a secondary timer pulses it low as terminal count is
// reached.
//
// The live count is not maintained tick by tick. It is reconstructed from
// the scheduler timer's remaining tick count when the count registers are
// read, which keeps the chip free of per-tick work.
//
// The strobed port C modes (ALT 3 and ALT 4) are not supported. Selecting
// them is logged and reads from port C return zero.
package pit

import (
	"fmt"

	"gopherst/hardware/scheduler"
	"gopherst/logger"
)

// Port identifies one of the three I/O ports.
type Port int

// The three I/O ports.
const (
	PortA Port = iota
	PortB
	PortC
	portCount
)

// Pins is the connection between the chip and the outside world: port levels
// in both directions and the timer output pin. A nil Pins is allowed; input
// ports then read zero and output levels are discarded.
type Pins interface {
	PortIn(port Port) uint8
	PortOut(port Port, data uint8)
	TimerOut(high bool)
}

// Register offsets, relative to the chip's base address.
const (
	RegCommand   = 0x00 // write
	RegStatus    = 0x00 // read
	RegPortA     = 0x01
	RegPortB     = 0x02
	RegPortC     = 0x03
	RegTimerLow  = 0x04
	RegTimerHigh = 0x05
)

// command register fields
const (
	commandPortA        = 0x01
	commandPortB        = 0x02
	commandPortCMask    = 0x0c
	commandPortCInput   = 0x00 // ALT 1
	commandPortCOutput  = 0x0c // ALT 2
	commandPortCStrobeA = 0x04 // ALT 3. not supported
	commandPortCStrobe  = 0x08 // ALT 4. not supported
	commandIntrA        = 0x10 // not supported
	commandIntrB        = 0x20 // not supported
	commandTimerMask    = 0xc0
	commandTimerNOP     = 0x00
	commandTimerStop    = 0x40
	commandTimerStopTC  = 0x80
	commandTimerStart   = 0xc0
)

// status register fields. the interrupt/buffer-full bits of the real chip
// belong to the unsupported strobed modes and always read zero
const (
	statusTC = 0x40
)

// timer mode bits, found in bits 14-15 of the programmed count length
const (
	timerModeAutoReload = 0x40
	timerModeTCPulse    = 0x80
)

// port directions decoded from the command register
const (
	portModeInput = iota
	portModeOutput
	portModeStrobed
)

// countPhase records which half of the period the chip is counting. An
// explicit state value rather than nested timer callbacks so that the state
// machine can be inspected and snapshotted.
type countPhase int

const (
	waitingFirstHalf countPhase = iota
	waitingSecondHalf
)

// PIT implements the programmable interval timer / I-O chip.
type PIT struct {
	sch  *scheduler.Scheduler
	pins Pins

	command uint8
	status  uint8

	// shadow values for the three ports. re-emitted on a switch to output
	// mode and on any write while in output mode
	output [portCount]uint8

	// countLength is the raw value of the two count registers. countLoaded
	// is the value (and mode) captured when counting last started
	countLength uint16
	countLoaded uint16

	phase countPhase

	// current level of the timer output pin
	timerOutput bool

	// halfTimer counts each half period. tcTimer generates the low pulse in
	// the single-pulse modes
	halfTimer *scheduler.Timer
	tcTimer   *scheduler.Timer

	// timer state captured by Snapshot() for re-arming in Plumb()
	halfTimerState timerState
	tcTimerState   timerState
}

type timerState struct {
	running   bool
	remaining uint64
}

// NewPIT is the preferred method of initialisation for the PIT type.
func NewPIT(sch *scheduler.Scheduler, pins Pins) *PIT {
	pit := &PIT{
		sch:         sch,
		pins:        pins,
		timerOutput: true,
	}
	pit.halfTimer = sch.NewTimer("PIT half count", pit.halfCounted)
	pit.tcTimer = sch.NewTimer("PIT terminal count", pit.terminalCount)
	return pit
}

func (pit *PIT) String() string {
	return fmt.Sprintf("count=%#04x loaded=%#04x out=%v running=%v",
		pit.countLength&0x3fff,
		pit.countLoaded&0x3fff,
		pit.timerOutput,
		pit.halfTimer.Running(),
	)
}

// Snapshot creates a copy of the PIT in its current state.
func (pit *PIT) Snapshot() *PIT {
	n := *pit
	n.halfTimer = nil
	n.tcTimer = nil
	n.halfTimerState = timerState{running: pit.halfTimer.Running(), remaining: pit.halfTimer.Remaining()}
	n.tcTimerState = timerState{running: pit.tcTimer.Running(), remaining: pit.tcTimer.Remaining()}
	return &n
}

// Plumb a snapshotted PIT back into the machine. Timers are re-armed from
// the remaining tick counts captured by Snapshot(), which is how the live
// count is rebuilt without ever being stored as a counter.
func (pit *PIT) Plumb(sch *scheduler.Scheduler, pins Pins) {
	pit.sch = sch
	pit.pins = pins
	pit.halfTimer = sch.NewTimer("PIT half count", pit.halfCounted)
	pit.tcTimer = sch.NewTimer("PIT terminal count", pit.terminalCount)
	if pit.halfTimerState.running {
		pit.halfTimer.Adjust(pit.halfTimerState.remaining)
	}
	if pit.tcTimerState.running {
		pit.tcTimer.Adjust(pit.tcTimerState.remaining)
	}
}

// Reset the chip: ports to input mode with cleared shadow values, terminal
// count flag cleared, timer stopped with the output pin high.
func (pit *PIT) Reset() {
	pit.output = [portCount]uint8{}
	pit.Write(RegCommand, pit.command&^uint8(commandPortA|commandPortB|commandPortCMask))
	pit.status &= ^uint8(statusTC)
	pit.stopCount()
}

// Output returns the current level of the timer output pin.
func (pit *PIT) Output() bool {
	return pit.timerOutput
}

// Running returns true if the counter is running.
func (pit *PIT) Running() bool {
	return pit.halfTimer.Running()
}

// timer mode bits of the count captured at load time
func (pit *PIT) timerMode() uint8 {
	return uint8(pit.countLoaded>>8) & (timerModeAutoReload | timerModeTCPulse)
}

// reconstruct the live count from the scheduler timer. the counter counts
// down by twos, with the bottom bit indicating the half being counted
func (pit *PIT) timerCount() uint16 {
	if !pit.halfTimer.Running() {
		return pit.countLength
	}

	count := (uint16(pit.halfTimer.Remaining()) + 1) << 1
	if max := pit.countLoaded & 0x3ffe; count > max {
		count = max
	}
	if pit.phase == waitingFirstHalf {
		count |= 1
	}
	return count
}

func (pit *PIT) driveTimerOutput(high bool) {
	if high == pit.timerOutput {
		return
	}
	pit.timerOutput = high
	if pit.pins != nil {
		pit.pins.TimerOut(high)
	}
}

// stop counting. the current live count is frozen back into the loaded
// value and the output pin forced high
func (pit *PIT) stopCount() {
	if pit.halfTimer.Running() {
		pit.countLoaded = (pit.countLoaded & 0xc000) | pit.timerCount()
		pit.halfTimer.Cancel()
	}
	pit.tcTimer.Cancel()
	pit.driveTimerOutput(true)
}

// load the count registers and begin the first half of the period. counts
// below two cannot be counted and stop the timer immediately
func (pit *PIT) reloadCount() {
	pit.countLoaded = pit.countLength

	if pit.countLength&0x3fff < 2 {
		pit.stopCount()
		return
	}

	// the first half is the odd half: one extra tick if the count is odd
	pit.phase = waitingFirstHalf
	pit.halfTimer.Adjust(uint64((pit.countLength&0x3ffe)>>1) + uint64(pit.countLength&1))
	pit.driveTimerOutput(true)

	switch pit.timerMode() {
	case 0:
		logger.Logf("pit", "timer loaded with %d (mode: low on second half)", pit.countLoaded&0x3fff)
	case timerModeAutoReload:
		logger.Logf("pit", "timer loaded with %d (mode: square wave)", pit.countLoaded&0x3fff)
	case timerModeTCPulse:
		logger.Logf("pit", "timer loaded with %d (mode: single pulse)", pit.countLoaded&0x3fff)
	case timerModeTCPulse | timerModeAutoReload:
		logger.Logf("pit", "timer loaded with %d (mode: repeated pulse)", pit.countLoaded&0x3fff)
	}
}

// halfCounted is the scheduler callback for the end of each half period
func (pit *PIT) halfCounted() {
	switch pit.phase {
	case waitingFirstHalf:
		// begin the even half of the count
		pit.phase = waitingSecondHalf
		pit.halfTimer.Adjust(uint64((pit.countLoaded & 0x3ffe) >> 1))

		if pit.timerMode()&timerModeTCPulse == 0 {
			// square wave modes put out low during the second half
			pit.driveTimerOutput(false)
		} else {
			// pulse modes hold the output high until terminal count
			c := pit.countLoaded & 0x3ffe
			if c < 2 {
				c = 2
			}
			pit.tcTimer.Adjust(uint64((c - 2) >> 1))
		}

	case waitingSecondHalf:
		pit.driveTimerOutput(true)

		if pit.timerMode()&timerModeAutoReload == 0 || pit.command&commandTimerMask == commandTimerStopTC {
			pit.status |= statusTC
			pit.stopCount()
			logger.Log("pit", "timer stopped at terminal count")
		} else {
			// automatic reload. the reload reads the count registers again
			// so a length written while running takes effect here
			pit.reloadCount()
		}
	}
}

// terminalCount is the scheduler callback for the low pulse in the
// single-pulse modes
func (pit *PIT) terminalCount() {
	if pit.timerMode()&timerModeTCPulse != 0 {
		pit.driveTimerOutput(false)
	}
	pit.status |= statusTC
}

// decode the direction of a port from the command register
func (pit *PIT) portMode(port Port) int {
	switch port {
	case PortA:
		if pit.command&commandPortA != 0 {
			return portModeOutput
		}
		return portModeInput
	case PortB:
		if pit.command&commandPortB != 0 {
			return portModeOutput
		}
		return portModeInput
	}

	switch pit.command & commandPortCMask {
	case commandPortCInput:
		return portModeInput
	case commandPortCOutput:
		return portModeOutput
	}
	return portModeStrobed
}

func (pit *PIT) readPort(port Port) uint8 {
	switch pit.portMode(port) {
	case portModeInput:
		if pit.pins == nil {
			return 0
		}
		return pit.pins.PortIn(port)
	case portModeOutput:
		return pit.output[port]
	}

	// strobed modes are not implemented
	logger.Log("pit", "unsupported strobed port C mode")
	return 0
}

func (pit *PIT) writePort(port Port, data uint8) {
	pit.output[port] = data
	if pit.portMode(port) == portModeOutput && pit.pins != nil {
		pit.pins.PortOut(port, pit.output[port])
	}
}

// writeCommand sets port modes and operates the timer command sub-field
func (pit *PIT) writeCommand(data uint8) {
	old := pit.command
	pit.command = data

	// switching a port to output re-emits the shadow value
	if data&commandPortA != 0 && old&commandPortA == 0 && pit.pins != nil {
		pit.pins.PortOut(PortA, pit.output[PortA])
	}
	if data&commandPortB != 0 && old&commandPortB == 0 && pit.pins != nil {
		pit.pins.PortOut(PortB, pit.output[PortB])
	}

	switch data & commandPortCMask {
	case commandPortCOutput:
		if old&commandPortCMask != commandPortCOutput && pit.pins != nil {
			pit.pins.PortOut(PortC, pit.output[PortC])
		}
	case commandPortCStrobeA, commandPortCStrobe:
		logger.Log("pit", "unsupported strobed port C mode selected")
	}

	switch data & commandTimerMask {
	case commandTimerNOP:
		// does not affect counter operation

	case commandTimerStop:
		// NOP if the timer has not started
		pit.stopCount()

	case commandTimerStopTC:
		// noted here, acted on at terminal count time in halfCounted()

	case commandTimerStart:
		if pit.halfTimer.Running() {
			// a running timer adopts the new mode and length at the next
			// terminal count, not now. nothing to do: the auto-reload path
			// reads the count registers afresh
		} else {
			pit.reloadCount()
		}
	}
}

// Write a chip register.
func (pit *PIT) Write(offset uint16, data uint8) {
	switch offset & 0x07 {
	case RegCommand:
		pit.writeCommand(data)
	case RegPortA:
		pit.writePort(PortA, data)
	case RegPortB:
		pit.writePort(PortB, data)
	case RegPortC:
		pit.writePort(PortC, data&0x3f)
	case RegTimerLow:
		pit.countLength = (pit.countLength & 0xff00) | uint16(data)
	case RegTimerHigh:
		pit.countLength = uint16(data)<<8 | (pit.countLength & 0x00ff)
	}
}

// Read a chip register. Reading the status register clears the terminal
// count flag; use Peek() for side-effect-free inspection.
func (pit *PIT) Read(offset uint16) uint8 {
	data := pit.Peek(offset)
	if offset&0x07 == RegStatus {
		pit.status &= ^uint8(statusTC)
	}
	return data
}

// Peek reads a chip register without side effects.
func (pit *PIT) Peek(offset uint16) uint8 {
	switch offset & 0x07 {
	case RegStatus:
		return pit.status
	case RegPortA:
		return pit.readPort(PortA)
	case RegPortB:
		return pit.readPort(PortB)
	case RegPortC:
		// the missing upper two bits of port C read high
		return pit.readPort(PortC) | 0xc0
	case RegTimerLow:
		return uint8(pit.timerCount())
	case RegTimerHigh:
		return uint8(pit.timerCount()>>8)&0x3f | pit.timerMode()
	}
	return 0
}
