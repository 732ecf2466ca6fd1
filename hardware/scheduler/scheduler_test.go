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

package scheduler_test

import (
	"testing"

	"gopherst/hardware/scheduler"
	"gopherst/test"
)

func TestScheduleOnce(t *testing.T) {
	sch := scheduler.NewScheduler()

	fired := 0
	tmr := sch.ScheduleOnce("test", 10, func() {
		fired++
	})

	sch.Run(9)
	test.ExpectEquality(t, fired, 0)
	test.ExpectEquality(t, int(tmr.Remaining()), 1)

	sch.Run(1)
	test.ExpectEquality(t, fired, 1)
	test.ExpectSuccess(t, !tmr.Running())

	// one-shot timers do not fire again
	sch.Run(100)
	test.ExpectEquality(t, fired, 1)
}

func TestSchedulePeriodic(t *testing.T) {
	sch := scheduler.NewScheduler()

	fired := 0
	sch.SchedulePeriodic("test", 5, func() {
		fired++
	})

	sch.Run(25)
	test.ExpectEquality(t, fired, 5)
	test.ExpectEquality(t, int(sch.Now()), 25)
}

func TestCancel(t *testing.T) {
	sch := scheduler.NewScheduler()

	fired := 0
	tmr := sch.SchedulePeriodic("test", 5, func() {
		fired++
	})

	sch.Run(12)
	test.ExpectEquality(t, fired, 2)

	tmr.Cancel()
	sch.Run(100)
	test.ExpectEquality(t, fired, 2)

	// a cancelled timer can be re-armed
	tmr.Adjust(3)
	sch.Run(3)
	test.ExpectEquality(t, fired, 3)
}

func TestFiringOrder(t *testing.T) {
	sch := scheduler.NewScheduler()

	order := []string{}
	sch.ScheduleOnce("b", 10, func() {
		order = append(order, "b")
	})
	sch.ScheduleOnce("a", 5, func() {
		order = append(order, "a")
	})

	sch.Run(20)
	test.ExpectEquality(t, len(order), 2)
	test.ExpectEquality(t, order[0], "a")
	test.ExpectEquality(t, order[1], "b")
}

func TestRearmFromCallback(t *testing.T) {
	sch := scheduler.NewScheduler()

	// the two-half-period technique used by the interval timer: the callback
	// of the first half arms the second half
	phases := []uint64{}
	var tmr *scheduler.Timer
	half := 0
	tmr = sch.NewTimer("test", func() {
		phases = append(phases, sch.Now())
		if half == 0 {
			half = 1
			tmr.Adjust(3)
		}
	})
	tmr.Adjust(7)

	sch.Run(20)
	test.ExpectEquality(t, len(phases), 2)
	test.ExpectEquality(t, int(phases[0]), 7)
	test.ExpectEquality(t, int(phases[1]), 10)
}
