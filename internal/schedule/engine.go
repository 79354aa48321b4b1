package schedule

import (
	"github.com/ukydev/carlog/internal/dates"
)

// LastDates maps a check to the canonical date it was last performed.
// A missing key means the check was never performed.
type LastDates map[CheckID]string

// CheckStatus is the derived state of one check. It is recomputed on every
// read and never stored.
type CheckStatus struct {
	CheckID        CheckID        `json:"check_id"`
	Label          string         `json:"label"`
	IntervalLabel  string         `json:"interval_label"`
	IntervalMonths int            `json:"interval_months"`
	LastPerformed  dates.Optional `json:"last_performed"`
	NextDue        dates.Date     `json:"next_due"`
	MarkedDone     bool           `json:"marked_done"`
	DaysUntilDue   int            `json:"days_until_due"`
}

// Overdue reports whether the next due date has passed.
func (s CheckStatus) Overdue() bool {
	return s.DaysUntilDue < 0
}

// ComputeStatuses returns one status per catalog entry, in catalog order.
// A last date that does not parse counts as never performed, and such checks
// fall due interval months after today.
func ComputeStatuses(last LastDates, today dates.Date) []CheckStatus {
	statuses := make([]CheckStatus, 0, len(catalog))
	for _, def := range catalog {
		performed := dates.Parse(last[def.ID])

		anchor := today
		if performed.Valid {
			anchor = performed.Date
		}
		next := anchor.AddMonths(def.IntervalMonths)

		statuses = append(statuses, CheckStatus{
			CheckID:        def.ID,
			Label:          def.Label,
			IntervalLabel:  def.IntervalLabel,
			IntervalMonths: def.IntervalMonths,
			LastPerformed:  performed,
			NextDue:        next,
			MarkedDone:     performed.Valid,
			DaysUntilDue:   today.DaysUntil(next),
		})
	}
	return statuses
}

// Toggle returns a copy of last with check id marked done today, or cleared
// when done is false. Unknown ids leave the copy unchanged.
func Toggle(last LastDates, id CheckID, done bool, today dates.Date) LastDates {
	out := make(LastDates, len(last)+1)
	for k, v := range last {
		out[k] = v
	}
	if !IsValidCheckID(id) {
		return out
	}
	if done {
		out[id] = today.Canonical()
	} else {
		delete(out, id)
	}
	return out
}

// Completed counts the checks marked done.
func Completed(statuses []CheckStatus) int {
	n := 0
	for _, s := range statuses {
		if s.MarkedDone {
			n++
		}
	}
	return n
}

// DueWithin returns the statuses due in at most days days, overdue included.
func DueWithin(statuses []CheckStatus, days int) []CheckStatus {
	var due []CheckStatus
	for _, s := range statuses {
		if s.DaysUntilDue <= days {
			due = append(due, s)
		}
	}
	return due
}

// Engine binds the schedule computation to a clock.
type Engine struct {
	Clock dates.Clock
}

// NewEngine creates an Engine reading today from clock.
func NewEngine(clock dates.Clock) *Engine {
	return &Engine{Clock: clock}
}

// Statuses computes the check statuses as of today.
func (e *Engine) Statuses(last LastDates) []CheckStatus {
	return ComputeStatuses(last, e.Clock.Today())
}

// Toggle marks or clears a check as of today.
func (e *Engine) Toggle(last LastDates, id CheckID, done bool) LastDates {
	return Toggle(last, id, done, e.Clock.Today())
}
