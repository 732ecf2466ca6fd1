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

// Package memory provides the RAM area the DMA peripherals transfer to and
// from. It is the only concrete implementation of the bus interfaces in this
// repository; a full machine would wrap it in proper bus dispatch.
package memory

import (
	"fmt"
	"strings"
)

// RAM is a flat area of memory addressable as bytes or big-endian words.
type RAM struct {
	memory []uint8
}

// NewRAM is the preferred method of initialisation for the RAM type. Size is
// in bytes and is rounded up to an even number of bytes.
func NewRAM(size uint32) *RAM {
	size += size & 1
	return &RAM{
		memory: make([]uint8, size),
	}
}

func (ram *RAM) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%dk RAM", len(ram.memory)/1024))
	return s.String()
}

// Size of the memory area in bytes.
func (ram *RAM) Size() uint32 {
	return uint32(len(ram.memory))
}

// ReadByte implements the bus.Memory interface. Out of range addresses read
// zero; a real machine would raise a bus error, which is not a peripheral
// concern.
func (ram *RAM) ReadByte(address uint32) uint8 {
	if address >= uint32(len(ram.memory)) {
		return 0
	}
	return ram.memory[address]
}

// WriteByte implements the bus.Memory interface.
func (ram *RAM) WriteByte(address uint32, data uint8) {
	if address >= uint32(len(ram.memory)) {
		return
	}
	ram.memory[address] = data
}

// ReadWord implements the bus.Memory interface. Words are big-endian.
func (ram *RAM) ReadWord(address uint32) uint16 {
	return uint16(ram.ReadByte(address))<<8 | uint16(ram.ReadByte(address+1))
}

// WriteWord implements the bus.Memory interface. Words are big-endian.
func (ram *RAM) WriteWord(address uint32, data uint16) {
	ram.WriteByte(address, uint8(data>>8))
	ram.WriteByte(address+1, uint8(data))
}

// Peek implements the bus.DebugBus interface.
func (ram *RAM) Peek(address uint32) uint8 {
	return ram.ReadByte(address)
}

// Snapshot creates a copy of the RAM area.
func (ram *RAM) Snapshot() *RAM {
	n := &RAM{
		memory: make([]uint8, len(ram.memory)),
	}
	copy(n.memory, ram.memory)
	return n
}
