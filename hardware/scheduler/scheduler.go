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

// Package scheduler provides the timer facility that drives every peripheral
// in the machine. Time is measured in abstract ticks; the machine decides
// what a tick means (one master-clock cycle in the case of GopherST, see the
// clocks package).
//
// The scheduler is strictly single-threaded. Callbacks fire synchronously
// from within Run() or Tick(), in timestamp order, with ties broken by timer
// creation order. A peripheral never observes another mid-transition.
package scheduler

// Callback is the function fired when a timer reaches its target time.
type Callback func()

// Scheduler owns the monotonic tick clock and all timers created against it.
type Scheduler struct {
	now    uint64
	timers []*Timer
}

// Timer fires a callback once or periodically. Timers are created once with
// NewTimer() and re-armed as often as needed with Adjust() and
// AdjustPeriodic(), mirroring how real hardware models reuse their timers.
type Timer struct {
	sch     *Scheduler
	label   string
	cb      Callback
	target  uint64
	period  uint64
	running bool
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make([]*Timer, 0, 8),
	}
}

// Now returns the current tick count.
func (sch *Scheduler) Now() uint64 {
	return sch.now
}

// NewTimer creates an unarmed timer. The label appears in String() output
// and nowhere else.
func (sch *Scheduler) NewTimer(label string, cb Callback) *Timer {
	t := &Timer{
		sch:   sch,
		label: label,
		cb:    cb,
	}
	sch.timers = append(sch.timers, t)
	return t
}

// ScheduleOnce creates and arms a one-shot timer in a single call.
func (sch *Scheduler) ScheduleOnce(label string, ticks uint64, cb Callback) *Timer {
	t := sch.NewTimer(label, cb)
	t.Adjust(ticks)
	return t
}

// SchedulePeriodic creates and arms a periodic timer in a single call. The
// first firing happens after ticks have elapsed and then every ticks
// thereafter.
func (sch *Scheduler) SchedulePeriodic(label string, ticks uint64, cb Callback) *Timer {
	t := sch.NewTimer(label, cb)
	t.AdjustPeriodic(ticks, ticks)
	return t
}

// Tick advances the clock by one tick, firing any timers that are due.
func (sch *Scheduler) Tick() {
	sch.Run(1)
}

// Run advances the clock by the specified number of ticks. Timers fire in
// timestamp order. A timer due at tick N fires before the clock advances to
// N+1, so state observed after Run() is always consistent with the new time.
func (sch *Scheduler) Run(ticks uint64) {
	end := sch.now + ticks

	for {
		sch.fireDue()

		if sch.now >= end {
			return
		}

		// advance to the earliest target or to the end of the run,
		// whichever comes first
		next := end
		for _, t := range sch.timers {
			if t.running && t.target < next {
				next = t.target
			}
		}
		sch.now = next
	}
}

// fire every timer with target <= now. firing a periodic timer re-arms it;
// the callback may itself adjust or cancel timers.
func (sch *Scheduler) fireDue() {
	for fired := true; fired; {
		fired = false
		for _, t := range sch.timers {
			if t.running && t.target <= sch.now {
				if t.period > 0 {
					t.target = sch.now + t.period
				} else {
					t.running = false
				}
				t.cb()
				fired = true
			}
		}
	}
}

// Adjust arms the timer to fire once after the specified number of ticks.
// Any previous arming is discarded.
func (t *Timer) Adjust(ticks uint64) {
	t.target = t.sch.now + ticks
	t.period = 0
	t.running = true
}

// AdjustPeriodic arms the timer to fire after delay ticks and then every
// period ticks. A zero delay fires on the next Tick()/Run() call, not
// synchronously.
func (t *Timer) AdjustPeriodic(delay uint64, period uint64) {
	t.target = t.sch.now + delay
	t.period = period
	t.running = true
}

// Cancel disarms the timer. The timer can be re-armed with Adjust().
func (t *Timer) Cancel() {
	t.running = false
	t.period = 0
}

// Running returns true if the timer is armed.
func (t *Timer) Running() bool {
	return t.running
}

// Remaining returns the number of ticks until the timer next fires. Zero if
// the timer is not armed.
func (t *Timer) Remaining() uint64 {
	if !t.running {
		return 0
	}
	if t.target <= t.sch.now {
		return 0
	}
	return t.target - t.sch.now
}

// Period returns the period of a periodic timer. Zero for one-shot timers.
func (t *Timer) Period() uint64 {
	return t.period
}
