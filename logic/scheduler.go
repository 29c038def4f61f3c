package logic

import "time"

// Scheduler is a table of pending timed actions driven by the game
// loop. Every entry is tagged with the generation current at schedule
// time; CancelAll bumps the generation and clears the table, so ending
// or restarting a round neutralizes every pending spawn stagger and
// expiry timer in one operation. A stale callback from a previous
// round can therefore never mutate the state of a new one.
type Scheduler struct {
	gen     uint64
	seq     uint64
	pending []*timedAction
}

type timedAction struct {
	due time.Time
	gen uint64
	seq uint64
	run func(now time.Time)
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// After enqueues run to fire once d has elapsed past now.
func (s *Scheduler) After(now time.Time, d time.Duration, run func(now time.Time)) {
	s.seq++
	s.pending = append(s.pending, &timedAction{
		due: now.Add(d),
		gen: s.gen,
		seq: s.seq,
		run: run,
	})
}

// Advance runs every due action in due-order. Actions may enqueue
// further actions (recurring ticks re-arm themselves) or CancelAll;
// actions scheduled before a CancelAll are dropped unrun. Each action
// receives its own due time as now, so re-armed timers do not drift.
func (s *Scheduler) Advance(now time.Time) {
	for {
		idx := -1
		for i, a := range s.pending {
			if a.gen != s.gen || a.due.After(now) {
				continue
			}
			if idx == -1 || a.due.Before(s.pending[idx].due) ||
				(a.due.Equal(s.pending[idx].due) && a.seq < s.pending[idx].seq) {
				idx = i
			}
		}
		if idx == -1 {
			return
		}
		a := s.pending[idx]
		s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
		a.run(a.due)
	}
}

// CancelAll drops every pending action and invalidates any that are
// mid-flight in Advance.
func (s *Scheduler) CancelAll() {
	s.gen++
	s.pending = s.pending[:0]
}

// PendingCount reports the number of queued actions.
func (s *Scheduler) PendingCount() int {
	return len(s.pending)
}
