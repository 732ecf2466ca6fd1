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

// Package hardware is the base package for the peripheral emulation. The
// Machine type is the root of the emulation: it owns the scheduler, the RAM
// area and one instance of every emulated peripheral. From here the
// emulation is driven with Run(), measured in master-clock cycles, and
// copied or restored with Snapshot() and Plumb().
//
// The chips at the centre of the machine, the CPU above all, are outside
// the scope of this repository. The register surfaces of the peripherals
// are exported directly rather than through a bus decoder.
package hardware
