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

// Package fdcdma implements the DMA engine that couples the floppy
// controller to the bus. The engine owns two 8-word FIFO buffers used
// ping-pong fashion: the bus side fills or flushes one buffer in a burst
// while the controller side drains or fills the other one byte at a time,
// giving double-buffered overlap.
//
// The engine is not timer driven. It reacts to register accesses from the
// CPU side and to the data-request line from the controller side.
//
// Two hardware quirks are modelled faithfully. Flushed words destined for
// addresses below 8 are discarded (the bus address still advances); the
// vector table at the bottom of memory is protected from runaway transfers.
// And reading the data register while the sector count register is selected
// returns an indeterminate value: the real register is write-only and the
// chip drives the bus with whatever happens to be on its internal latches.
package fdcdma

import (
	"fmt"

	"gopherst/hardware/memory/bus"
	"gopherst/logger"
	"gopherst/random"
)

// Controller is the floppy (or hard disk) controller chip on the device side
// of the engine. A nil Controller is allowed: data reads return zero and the
// data-request line reads false.
type Controller interface {
	// single byte transfers used by the DMA engine
	DataRead() uint8
	DataWrite(data uint8)

	// level of the data request line
	DataRequest() bool

	// register access, dispatched through the DMA chip's mode register
	Read(register uint16) uint8
	Write(register uint16, data uint8)
}

// mode register fields
const (
	ModeReadWrite   = 0x100 // set = write to disk
	ModeAck         = 0x080
	ModeDisable     = 0x040 // the enable line is active low
	ModeSectorCount = 0x010
	ModeHDC         = 0x008 // set = hard disk controller selected
	ModeAddressMask = 0x006
)

// status register fields
const (
	StatusError       = 0x01 // reads 1 for "no error"
	StatusSectorCount = 0x02
	StatusDRQ         = 0x04
)

// bytes per sector
const sectorSize = 512

// words per FIFO buffer
const fifoSize = 8

// DMA implements the floppy DMA engine.
type DMA struct {
	mem bus.Memory
	fdc Controller
	rnd *random.Random

	// bus address of the next word transfer. mutable as three 8-bit lanes
	base uint32

	mode uint16

	// the ST status convention: bit zero of the status register reads 1
	// when the last transfer terminated cleanly. set on DMA reset, cleared
	// when a fill or flush is attempted with no bytes remaining
	errorStatus uint16

	sectors     uint8
	sectorBytes int

	// the two FIFO buffers. fifoSel indexes the buffer the bus side
	// fills/flushes; the controller side works the same buffer until its
	// index wraps and the buffers toggle
	fifo      [2][fifoSize]uint16
	fifoSel   int
	fifoIndex int
	fifoEmpty [2]bool

	// which half of the current word the next controller byte belongs to.
	// false is the high byte
	lowBytePhase bool
}

// NewDMA is the preferred method of initialisation for the DMA type.
func NewDMA(mem bus.Memory, fdc Controller, rnd *random.Random) *DMA {
	return &DMA{
		mem:         mem,
		fdc:         fdc,
		rnd:         rnd,
		errorStatus: 1,
		fifoEmpty:   [2]bool{true, true},
	}
}

func (dma *DMA) String() string {
	return fmt.Sprintf("base=%#06x mode=%#04x sectors=%d bytes=%d fifo=%d/%d",
		dma.base, dma.mode, dma.sectors, dma.sectorBytes, dma.fifoSel, dma.fifoIndex,
	)
}

// Snapshot creates a copy of the DMA engine in its current state.
func (dma *DMA) Snapshot() *DMA {
	n := *dma
	return &n
}

// Plumb a snapshotted DMA engine back into the machine.
func (dma *DMA) Plumb(mem bus.Memory, fdc Controller, rnd *random.Random) {
	dma.mem = mem
	dma.fdc = fdc
	dma.rnd = rnd
}

// Reset the engine. Matches the effect of a direction toggle.
func (dma *DMA) Reset() {
	dma.reset()
	dma.mode = 0
	dma.base = 0
	dma.fifoEmpty = [2]bool{true, true}
}

// the DMA reset triggered by a direction toggle
func (dma *DMA) reset() {
	dma.errorStatus = 1
	dma.sectors = 0
	dma.fifoSel = 0
	dma.fifoIndex = 0
	dma.lowBytePhase = false
}

// writeToDisk returns true if the transfer direction is bus to controller.
func (dma *DMA) writeToDisk() bool {
	return dma.mode&ModeReadWrite != 0
}

// swap the active buffer and rewind the word index
func (dma *DMA) toggleFIFO() {
	dma.fifoSel ^= 1
	dma.fifoIndex = 0
}

// fill the active buffer with eight words from the bus. an exhausted
// transfer (no bytes remaining) clears the error status instead, signalling
// the end of the run.
func (dma *DMA) fillFIFO() {
	if dma.sectorBytes == 0 {
		dma.errorStatus = 0
		dma.fifoEmpty[dma.fifoSel] = true
		return
	}

	for i := 0; i < fifoSize; i++ {
		dma.fifo[dma.fifoSel][i] = dma.mem.ReadWord(dma.base)
		dma.base += 2
	}
	dma.accountTransfer()
	dma.fifoEmpty[dma.fifoSel] = false
}

// flush the active buffer to the bus. writes below address 8 are discarded
// but the address advances regardless.
func (dma *DMA) flushFIFO() {
	if dma.fifoEmpty[dma.fifoSel] {
		return
	}

	if dma.sectorBytes == 0 {
		dma.errorStatus = 0
		dma.fifoEmpty[dma.fifoSel] = true
		return
	}

	for i := 0; i < fifoSize; i++ {
		if dma.base >= 8 {
			dma.mem.WriteWord(dma.base, dma.fifo[dma.fifoSel][i])
		}
		dma.base += 2
	}
	dma.accountTransfer()
	dma.fifoEmpty[dma.fifoSel] = true
}

// deduct one buffer's worth of bytes from the sector bookkeeping
func (dma *DMA) accountTransfer() {
	dma.sectorBytes -= fifoSize * 2
	if dma.sectorBytes == 0 {
		dma.sectors--
		if dma.sectors != 0 {
			dma.sectorBytes = sectorSize
		}
	}
}

// DataRequest services an edge on the controller's data request line. Only a
// rising edge with DMA enabled and the controller acknowledge bit set moves
// a byte.
func (dma *DMA) DataRequest(level bool) {
	if !level {
		return
	}
	if dma.mode&ModeDisable != 0 || dma.mode&ModeAck == 0 {
		return
	}
	dma.transfer()
}

// move one byte between the FIFO and the controller
func (dma *DMA) transfer() {
	if dma.writeToDisk() {
		data := dma.fifo[dma.fifoSel][dma.fifoIndex]

		if dma.lowBytePhase {
			dma.controllerWrite(uint8(data))
			dma.fifoIndex++
		} else {
			dma.controllerWrite(uint8(data >> 8))
		}
		dma.lowBytePhase = !dma.lowBytePhase

		if dma.fifoIndex == fifoSize {
			dma.fifoEmpty[dma.fifoSel] = true
			dma.toggleFIFO()

			// keep ahead of the controller: refill the buffer we just
			// stepped onto if it has already been consumed
			if dma.fifoEmpty[dma.fifoSel] {
				dma.fillFIFO()
			}
		}
		return
	}

	// read from controller to FIFO
	data := dma.controllerRead()
	dma.fifoEmpty[dma.fifoSel] = false

	if dma.lowBytePhase {
		dma.fifo[dma.fifoSel][dma.fifoIndex] |= uint16(data)
		dma.fifoIndex++
	} else {
		dma.fifo[dma.fifoSel][dma.fifoIndex] = uint16(data) << 8
	}
	dma.lowBytePhase = !dma.lowBytePhase

	if dma.fifoIndex == fifoSize {
		dma.flushFIFO()
		dma.toggleFIFO()
	}
}

func (dma *DMA) controllerRead() uint8 {
	if dma.fdc == nil {
		return 0
	}
	return dma.fdc.DataRead()
}

func (dma *DMA) controllerWrite(data uint8) {
	if dma.fdc != nil {
		dma.fdc.DataWrite(data)
	}
}

// Status is a pure combinational read of the status register: the error
// status, whether any sectors remain, and the live level of the controller
// data request line.
func (dma *DMA) Status() uint16 {
	data := dma.errorStatus

	if dma.sectors != 0 {
		data |= StatusSectorCount
	}

	if dma.fdc != nil && dma.fdc.DataRequest() {
		data |= StatusDRQ
	}

	return data
}

// SetMode writes the mode register. Toggling the transfer direction bit is a
// DMA reset, whatever else the write changes.
func (dma *DMA) SetMode(data uint16) {
	if (data^dma.mode)&ModeReadWrite != 0 {
		logger.Log("dma", "direction toggled: DMA reset")
		dma.reset()
	}
	dma.mode = data
}

// Mode returns the value of the mode register. The register is write-only
// on the real chip (reads return the status register); this accessor exists
// for inspection.
func (dma *DMA) Mode() uint16 {
	return dma.mode
}

// DataRead reads the data register. What is read depends on the mode
// register: the sector count register is write-only and returns an
// indeterminate value; otherwise the access is dispatched to the selected
// controller register.
//
// With peek set the read is side-effect free: the controller is not
// touched and the indeterminate case reads zero.
func (dma *DMA) DataRead(peek bool) uint16 {
	if dma.mode&ModeSectorCount != 0 {
		if peek {
			return 0
		}
		// the hardware value is undefined. any value is conformant
		logger.Log("dma", "indeterminate sector count read")
		return uint16(dma.rnd.Intn(256))
	}

	if dma.mode&ModeHDC == 0 && dma.fdc != nil && !peek {
		return uint16(dma.fdc.Read(dma.mode & ModeAddressMask >> 1))
	}

	return 0
}

// DataWrite writes the data register. In sector count mode the write loads
// the sector counter and, for a write-to-disk run, pre-fills both FIFO
// buffers so the controller has data the instant it raises its first data
// request. Otherwise the write is dispatched to the selected controller
// register.
func (dma *DMA) DataWrite(data uint16) {
	if dma.mode&ModeSectorCount != 0 {
		dma.sectors = uint8(data)

		if dma.sectors != 0 {
			dma.sectorBytes = sectorSize
		}

		if dma.writeToDisk() {
			dma.fillFIFO()
			dma.toggleFIFO()
			dma.fillFIFO()
			dma.toggleFIFO()
		}
		return
	}

	if dma.mode&ModeHDC == 0 && dma.fdc != nil {
		dma.fdc.Write(dma.mode&ModeAddressMask>>1, uint8(data))
	}
}

// CounterRead reads one lane of the 24-bit bus address. Lane 0 is the high
// byte, lane 2 the low byte.
func (dma *DMA) CounterRead(lane int) uint8 {
	switch lane {
	case 0:
		return uint8(dma.base >> 16)
	case 1:
		return uint8(dma.base >> 8)
	case 2:
		return uint8(dma.base)
	}
	return 0
}

// BaseWrite writes one lane of the 24-bit bus address.
func (dma *DMA) BaseWrite(lane int, data uint8) {
	switch lane {
	case 0:
		dma.base = (dma.base & 0x00ffff) | uint32(data)<<16
	case 1:
		dma.base = (dma.base & 0xff00ff) | uint32(data)<<8
	case 2:
		dma.base = (dma.base & 0xffff00) | uint32(data)
	}
}

// Sectors returns the value of the sector counter.
func (dma *DMA) Sectors() uint8 {
	return dma.sectors
}
