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

// Package random should be used in preference to the math/rand package
// whenever a random number is required inside the emulation. Hardware that
// returns an indeterminate value (for example, reading the DMA data register
// while the sector count register is selected) draws from here.
//
// Numbers are a function of emulation time rather than a free-running
// stream. Two emulations at the same tick with the same base seed produce
// the same "random" value, which is what makes snapshot/restore and test
// reproducibility work.
package random

import (
	"math/rand"
	"time"
)

// TimeSource provides the emulation time that random numbers are derived
// from. *scheduler.Scheduler satisfies this interface.
type TimeSource interface {
	Now() uint64
}

// the base seed for all random numbers
var baseSeed int64

func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Random is a random number generator that is sensitive to time within the
// emulation.
type Random struct {
	clock TimeSource

	// use a zero base seed rather than the random one. random numbers are
	// then predictable, which is only really useful for testing.
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(clock TimeSource) *Random {
	return &Random{
		clock: clock,
	}
}

func (rnd *Random) rand() *rand.Rand {
	if rnd.ZeroSeed {
		return rand.New(rand.NewSource(int64(rnd.clock.Now())))
	}
	return rand.New(rand.NewSource(baseSeed + int64(rnd.clock.Now())))
}

// Intn returns a random integer in the range 0 to n.
func (rnd *Random) Intn(n int) int {
	return rnd.rand().Intn(n)
}
