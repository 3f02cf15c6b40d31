package blockeddays

import (
	"testing"
	"time"
)

func date(loc *time.Location, y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func TestEngine_EffectiveBlocks_Literal(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	engine := NewEngine(loc)

	t.Run("multi-day range yields one block per day", func(t *testing.T) {
		t.Parallel()

		rules := []Rule{{ID: "r1", StartDate: "2024-06-10", EndDate: "2024-06-12"}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))

		if len(blocks) != 3 {
			t.Fatalf("got %d blocks, want 3", len(blocks))
		}
		for i, day := range []int{10, 11, 12} {
			wantStart := date(loc, 2024, time.June, day)
			wantEnd := time.Date(2024, time.June, day, 23, 59, 0, 0, loc)
			if !blocks[i].Start.Equal(wantStart) || !blocks[i].End.Equal(wantEnd) {
				t.Errorf("block %d = [%v, %v], want [%v, %v]", i, blocks[i].Start, blocks[i].End, wantStart, wantEnd)
			}
		}
	})

	t.Run("single day defaults to the start date", func(t *testing.T) {
		t.Parallel()

		rules := []Rule{{ID: "r1", StartDate: "2024-06-10"}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))

		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
	})

	t.Run("time sub-window narrows each day", func(t *testing.T) {
		t.Parallel()

		rules := []Rule{{ID: "r1", StartDate: "2024-06-10", StartTime: "13:00", EndTime: "15:00"}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))

		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		wantStart := time.Date(2024, time.June, 10, 13, 0, 0, 0, loc)
		wantEnd := time.Date(2024, time.June, 10, 15, 0, 0, 0, loc)
		if !blocks[0].Start.Equal(wantStart) || !blocks[0].End.Equal(wantEnd) {
			t.Errorf("block = [%v, %v], want [%v, %v]", blocks[0].Start, blocks[0].End, wantStart, wantEnd)
		}
	})

	t.Run("days outside the query range are clipped", func(t *testing.T) {
		t.Parallel()

		rules := []Rule{{ID: "r1", StartDate: "2024-06-28", EndDate: "2024-07-03"}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))

		if len(blocks) != 3 {
			t.Fatalf("got %d blocks, want 3 (28th through 30th)", len(blocks))
		}
	})

	t.Run("unparseable dates expand to nothing", func(t *testing.T) {
		t.Parallel()

		rules := []Rule{{ID: "r1", StartDate: "not-a-date"}}
		if blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30)); len(blocks) != 0 {
			t.Fatalf("got %d blocks, want 0", len(blocks))
		}
	})
}

func TestEngine_EffectiveBlocks_Recurring(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	engine := NewEngine(loc)

	t.Run("first Monday of each month over three months", func(t *testing.T) {
		t.Parallel()

		rules := []Rule{{ID: "r1", Recurrence: &Recurrence{Nth: 1, Weekday: time.Monday}}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.August, 31))

		if len(blocks) != 3 {
			t.Fatalf("got %d blocks, want 3", len(blocks))
		}
		want := []time.Time{
			date(loc, 2024, time.June, 3),
			date(loc, 2024, time.July, 1),
			date(loc, 2024, time.August, 5),
		}
		for i, block := range blocks {
			if block.Start.Weekday() != time.Monday {
				t.Errorf("block %d falls on %v, want Monday", i, block.Start.Weekday())
			}
			if !block.Start.Equal(want[i]) {
				t.Errorf("block %d starts %v, want %v", i, block.Start, want[i])
			}
		}
	})

	t.Run("excluded months produce no occurrence", func(t *testing.T) {
		t.Parallel()

		rules := []Rule{{ID: "r1", Recurrence: &Recurrence{
			Nth:           1,
			Weekday:       time.Monday,
			ExcludeMonths: []time.Month{time.July},
		}}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.August, 31))

		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2", len(blocks))
		}
		for _, block := range blocks {
			if block.Start.Month() == time.July {
				t.Errorf("unexpected block in excluded month: %v", block.Start)
			}
		}
	})

	t.Run("fifth occurrence is strictly same-month", func(t *testing.T) {
		t.Parallel()

		// June 2024 has only four Mondays; the fifth must not wrap into July.
		rules := []Rule{{ID: "r1", Recurrence: &Recurrence{Nth: 5, Weekday: time.Monday}}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))

		if len(blocks) != 0 {
			t.Fatalf("got %d blocks, want 0", len(blocks))
		}
	})

	t.Run("occurrence before the range start is clipped", func(t *testing.T) {
		t.Parallel()

		// First Monday of June 2024 is the 3rd; querying from the 10th skips it.
		rules := []Rule{{ID: "r1", Recurrence: &Recurrence{Nth: 1, Weekday: time.Monday}}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 10), date(loc, 2024, time.June, 30))

		if len(blocks) != 0 {
			t.Fatalf("got %d blocks, want 0", len(blocks))
		}
	})

	t.Run("recurring rule honors the time sub-window", func(t *testing.T) {
		t.Parallel()

		rules := []Rule{{
			ID:         "r1",
			StartTime:  "10:00",
			EndTime:    "12:00",
			Recurrence: &Recurrence{Nth: 2, Weekday: time.Saturday},
		}}
		blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))

		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		wantStart := time.Date(2024, time.June, 8, 10, 0, 0, 0, loc)
		if !blocks[0].Start.Equal(wantStart) {
			t.Errorf("block starts %v, want %v", blocks[0].Start, wantStart)
		}
	})
}

func TestEngine_EffectiveBlocks_Union(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	engine := NewEngine(loc)

	rules := []Rule{
		{ID: "r1", StartDate: "2024-06-20"},
		{ID: "r2", Recurrence: &Recurrence{Nth: 1, Weekday: time.Monday}},
	}
	blocks := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if !blocks[0].Start.Before(blocks[1].Start) {
		t.Errorf("blocks not ordered by start: %v then %v", blocks[0].Start, blocks[1].Start)
	}
}

func TestEngine_EffectiveBlocks_Idempotent(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	engine := NewEngine(loc)
	rules := []Rule{{ID: "r1", StartDate: "2024-06-10", EndDate: "2024-06-12"}}

	first := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))
	second := engine.EffectiveBlocks(rules, date(loc, 2024, time.June, 1), date(loc, 2024, time.June, 30))

	if len(first) != len(second) {
		t.Fatalf("expansion not stable: %d then %d blocks", len(first), len(second))
	}
	if rules[0].StartDate != "2024-06-10" || rules[0].Recurrence != nil {
		t.Error("rule mutated by expansion")
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	blocks := []EffectiveBlock{{
		Start: time.Date(2024, time.June, 10, 13, 0, 0, 0, loc),
		End:   time.Date(2024, time.June, 10, 15, 0, 0, 0, loc),
	}}

	overlapping := IsBlocked(
		time.Date(2024, time.June, 10, 14, 0, 0, 0, loc),
		time.Date(2024, time.June, 10, 16, 0, 0, 0, loc),
		blocks,
	)
	if !overlapping {
		t.Error("expected the overlapping window to be blocked")
	}

	adjacent := IsBlocked(
		time.Date(2024, time.June, 10, 15, 0, 0, 0, loc),
		time.Date(2024, time.June, 10, 16, 0, 0, 0, loc),
		blocks,
	)
	if adjacent {
		t.Error("expected the back-to-back window to be allowed")
	}

	if IsBlocked(time.Date(2024, time.June, 11, 13, 0, 0, 0, loc), time.Date(2024, time.June, 11, 14, 0, 0, 0, loc), blocks) {
		t.Error("expected a different day to be unblocked")
	}
}
