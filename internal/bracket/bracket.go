// Package bracket aligns a sparse, irregularly-timed message stream onto
// a dense, regularly-sampled timestamp column. Each sample is bracketed
// by its nearest surrounding messages: the latest one at or before the
// sample and the earliest one strictly after it.
package bracket

import "github.com/oculab/gazeport/internal/table"

// Event is one timestamped message from the sparse stream.
type Event struct {
	Time int64
	Text string
}

// Default output column names for the four derived columns.
const (
	ColPriorMsg  = "msg_prior"
	ColPriorTime = "msg_prior_time"
	ColPostMsg   = "msg_post"
	ColPostTime  = "msg_post_time"
)

// Brackets holds the four parallel output columns, one entry per sample.
type Brackets struct {
	PriorMsg  table.Column
	PriorTime table.Column
	PostMsg   table.Column
	PostTime  table.Column
}

// Join computes the bracket columns for every sample timestamp.
//
// Both inputs must be ascending-sorted and event timestamps unique; this
// is a caller-guaranteed precondition, not re-checked here. The bracket
// rule is half-open and left-inclusive: a sample exactly at an event's
// timestamp takes that event as its prior. Runs in O(n+m) with a single
// forward cursor over events.
//
// With no events at all, every sample gets empty messages and missing
// times on both sides.
func Join(events []Event, sampleTimes []int64) Brackets {
	n := len(sampleTimes)
	b := Brackets{
		PriorMsg:  make(table.Column, n),
		PriorTime: make(table.Column, n),
		PostMsg:   make(table.Column, n),
		PostTime:  make(table.Column, n),
	}

	if len(events) == 0 {
		for i := 0; i < n; i++ {
			b.PriorMsg[i] = table.Str("")
			b.PriorTime[i] = table.Missing()
			b.PostMsg[i] = table.Str("")
			b.PostTime[i] = table.Missing()
		}
		return b
	}

	c := -1 // cursor into events; -1 until the first event is reached
	for i, ts := range sampleTimes {
		if c < 0 {
			if ts < events[0].Time {
				b.PriorMsg[i] = table.Str("")
				b.PriorTime[i] = table.Missing()
				b.PostMsg[i] = table.Str(events[0].Text)
				b.PostTime[i] = table.Num(float64(events[0].Time))
				continue
			}
			c = 0
		}

		// Samples arrive in non-decreasing time order, so the cursor only
		// ever moves forward.
		for c+1 < len(events) && events[c+1].Time <= ts {
			c++
		}

		b.PriorMsg[i] = table.Str(events[c].Text)
		b.PriorTime[i] = table.Num(float64(events[c].Time))
		if c == len(events)-1 {
			b.PostMsg[i] = table.Str("")
			b.PostTime[i] = table.Missing()
		} else {
			b.PostMsg[i] = table.Str(events[c+1].Text)
			b.PostTime[i] = table.Num(float64(events[c+1].Time))
		}
	}
	return b
}

// AppendTo stores the four bracket columns in the named table with
// exactly four appends. resolve maps each default column name to its
// output name; a nil resolve keeps the defaults.
func (b Brackets) AppendTo(acc *table.Accumulator, tableID string, resolve func(defaultName string) string) error {
	if resolve == nil {
		resolve = func(name string) string { return name }
	}
	cols := []struct {
		name string
		col  table.Column
	}{
		{ColPriorMsg, b.PriorMsg},
		{ColPriorTime, b.PriorTime},
		{ColPostMsg, b.PostMsg},
		{ColPostTime, b.PostTime},
	}
	for _, c := range cols {
		if err := acc.Append(tableID, resolve(c.name), c.col); err != nil {
			return err
		}
	}
	return nil
}
