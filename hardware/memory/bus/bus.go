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

// Package bus defines the memory bus interfaces consumed by the DMA
// peripherals. Register decoding and full bus dispatch belong to the host
// machine and are deliberately absent: a peripheral sees addresses and
// words, nothing else.
package bus

// Memory is the bus interface used by the DMA engines. Addresses are 24-bit;
// words are big-endian, as seen by the 68000.
type Memory interface {
	ReadWord(address uint32) uint16
	WriteWord(address uint32, data uint16)
	ReadByte(address uint32) uint8
	WriteByte(address uint32, data uint8)
}

// DebugBus is implemented by memory areas that can be inspected without side
// effects.
type DebugBus interface {
	Peek(address uint32) uint8
}
