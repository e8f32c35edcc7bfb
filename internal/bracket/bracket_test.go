package bracket

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/oculab/gazeport/internal/table"
)

func checkText(t *testing.T, col table.Column, want []string) {
	t.Helper()
	if len(col) != len(want) {
		t.Fatalf("length: got %d, want %d", len(col), len(want))
	}
	for i, w := range want {
		if col[i].Kind != table.CellText || col[i].Text != w {
			t.Errorf("[%d]: got %+v, want text %q", i, col[i], w)
		}
	}
}

// checkTimes verifies a time column where a negative want marks a missing
// cell.
func checkTimes(t *testing.T, col table.Column, want []float64) {
	t.Helper()
	if len(col) != len(want) {
		t.Fatalf("length: got %d, want %d", len(col), len(want))
	}
	for i, w := range want {
		if w < 0 {
			if !col[i].IsMissing() {
				t.Errorf("[%d]: got %+v, want missing", i, col[i])
			}
			continue
		}
		if col[i].Kind != table.CellNumber || col[i].Num != w {
			t.Errorf("[%d]: got %+v, want %v", i, col[i], w)
		}
	}
}

func TestJoin_BracketsSamples(t *testing.T) {
	events := []Event{{10, "A"}, {20, "B"}, {30, "C"}}
	samples := []int64{5, 15, 25, 35}

	b := Join(events, samples)

	checkText(t, b.PriorMsg, []string{"", "A", "B", "C"})
	checkText(t, b.PostMsg, []string{"A", "B", "C", ""})
	checkTimes(t, b.PriorTime, []float64{-1, 10, 20, 30})
	checkTimes(t, b.PostTime, []float64{10, 20, 30, -1})
}

func TestJoin_SampleAtEventTimestampTakesItAsPrior(t *testing.T) {
	b := Join([]Event{{10, "A"}}, []int64{10})

	checkText(t, b.PriorMsg, []string{"A"})
	checkTimes(t, b.PriorTime, []float64{10})
	checkText(t, b.PostMsg, []string{""})
	checkTimes(t, b.PostTime, []float64{-1})
}

func TestJoin_NoEvents(t *testing.T) {
	b := Join(nil, []int64{1, 2, 3})

	checkText(t, b.PriorMsg, []string{"", "", ""})
	checkText(t, b.PostMsg, []string{"", "", ""})
	checkTimes(t, b.PriorTime, []float64{-1, -1, -1})
	checkTimes(t, b.PostTime, []float64{-1, -1, -1})
}

func TestJoin_NoSamples(t *testing.T) {
	b := Join([]Event{{10, "A"}}, nil)
	if len(b.PriorMsg) != 0 || len(b.PostTime) != 0 {
		t.Fatalf("expected empty columns, got %d/%d", len(b.PriorMsg), len(b.PostTime))
	}
}

func TestJoin_AllSamplesBeforeFirstEvent(t *testing.T) {
	b := Join([]Event{{100, "late"}}, []int64{1, 2, 3})

	checkText(t, b.PriorMsg, []string{"", "", ""})
	checkTimes(t, b.PriorTime, []float64{-1, -1, -1})
	checkText(t, b.PostMsg, []string{"late", "late", "late"})
	checkTimes(t, b.PostTime, []float64{100, 100, 100})
}

func TestJoin_AllSamplesAfterLastEvent(t *testing.T) {
	b := Join([]Event{{1, "early"}}, []int64{10, 20})

	checkText(t, b.PriorMsg, []string{"early", "early"})
	checkText(t, b.PostMsg, []string{"", ""})
	checkTimes(t, b.PostTime, []float64{-1, -1})
}

func TestJoin_DenseSamplesSparseEvents(t *testing.T) {
	events := []Event{{100, "start"}, {500, "stimulus"}, {900, "end"}}
	samples := make([]int64, 0, 100)
	for ts := int64(0); ts < 1000; ts += 10 {
		samples = append(samples, ts)
	}

	b := Join(events, samples)

	// Bracket invariant: priorTime <= sample < postTime and no event lies
	// strictly between them.
	for i, ts := range samples {
		prior, post := b.PriorTime[i], b.PostTime[i]
		if !prior.IsMissing() && int64(prior.Num) > ts {
			t.Errorf("sample %d: prior %v > %d", i, prior.Num, ts)
		}
		if !post.IsMissing() && int64(post.Num) <= ts {
			t.Errorf("sample %d: post %v <= %d", i, post.Num, ts)
		}
		for _, ev := range events {
			if !prior.IsMissing() && !post.IsMissing() &&
				ev.Time > int64(prior.Num) && ev.Time < int64(post.Num) {
				t.Errorf("sample %d: event at %d inside bracket (%v, %v)", i, ev.Time, prior.Num, post.Num)
			}
		}
	}
}

func TestAppendTo_StoresFourColumns(t *testing.T) {
	acc := table.NewAccumulator(zerolog.Nop())
	if err := acc.Append("gaze", "system_time_stamp", []int64{5, 15}); err != nil {
		t.Fatalf("append timestamps: %v", err)
	}

	b := Join([]Event{{10, "A"}}, []int64{5, 15})
	err := b.AppendTo(acc, "gaze", nil)
	if err != nil {
		t.Fatalf("AppendTo: %v", err)
	}

	tab, _ := acc.Table("gaze")
	want := []string{"system_time_stamp", ColPriorMsg, ColPriorTime, ColPostMsg, ColPostTime}
	names := tab.Names()
	if len(names) != len(want) {
		t.Fatalf("names: got %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d]: got %q, want %q", i, names[i], n)
		}
	}
	if tab.Rows() != 2 {
		t.Errorf("row count: got %d, want 2", tab.Rows())
	}
}

func TestAppendTo_ResolverRenamesColumns(t *testing.T) {
	acc := table.NewAccumulator(zerolog.Nop())
	b := Join([]Event{{10, "A"}}, []int64{5})

	err := b.AppendTo(acc, "gaze", func(def string) string { return "custom_" + def })
	if err != nil {
		t.Fatalf("AppendTo: %v", err)
	}

	tab, _ := acc.Table("gaze")
	if _, ok := tab.Column("custom_" + ColPriorMsg); !ok {
		t.Errorf("renamed column missing; have %v", tab.Names())
	}
}
