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

package memory_test

import (
	"testing"

	"gopherst/hardware/memory"
	"gopherst/test"
)

func TestWordEndianness(t *testing.T) {
	ram := memory.NewRAM(1024)

	ram.WriteWord(0x100, 0xbeef)
	test.ExpectEquality(t, int(ram.ReadByte(0x100)), 0xbe)
	test.ExpectEquality(t, int(ram.ReadByte(0x101)), 0xef)
	test.ExpectEquality(t, int(ram.ReadWord(0x100)), 0xbeef)
}

func TestOutOfRange(t *testing.T) {
	ram := memory.NewRAM(16)

	// out of range accesses must not panic and must read zero
	ram.WriteByte(0x100, 0xff)
	test.ExpectEquality(t, int(ram.ReadByte(0x100)), 0)
}

func TestSnapshot(t *testing.T) {
	ram := memory.NewRAM(16)
	ram.WriteByte(0, 0x12)

	snap := ram.Snapshot()
	ram.WriteByte(0, 0x34)

	test.ExpectEquality(t, int(snap.ReadByte(0)), 0x12)
	test.ExpectEquality(t, int(ram.ReadByte(0)), 0x34)
}
