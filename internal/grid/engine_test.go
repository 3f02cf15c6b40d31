package grid

import (
	"testing"
	"time"

	"github.com/example/center-roster/internal/scheduler"
)

var testSeats = scheduler.SeatConfig{
	scheduler.TypeTabletopTraining: 10,
	scheduler.TypeAccelerateRx:     3,
}

func fixedNow(value string) func() time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func testSession(id string, seat int, start, end string) scheduler.Session {
	return scheduler.Session{
		ID:        id,
		Type:      scheduler.TypeTabletopTraining,
		Date:      "2024-06-12",
		StartTime: start,
		EndTime:   end,
		Seat:      seat,
		StudentID: "student-1",
		TrainerID: "trainer-1",
		Status:    scheduler.StatusScheduled,
	}
}

func newTestEngine(callbacks Callbacks) *Engine {
	// The clock sits two days before the grid day so nothing is "past".
	return NewEngine(DefaultGeometry(), testSeats, fixedNow("2024-06-10 09:00"), callbacks)
}

func TestEngine_Layout(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(Callbacks{})
	engine.SetDay("2024-06-12", nil)

	t.Run("positions a session by seat lane and time offset", func(t *testing.T) {
		t.Parallel()

		block := engine.Layout(testSession("a", 3, "11:00", "12:30"))
		if block.Lane != 2 {
			t.Errorf("lane = %d, want 2", block.Lane)
		}
		if block.Left != 240 {
			t.Errorf("left = %d, want 240", block.Left)
		}
		// 11:00 is four 15-minute rows past the 10:00 opening.
		if block.Top != 80 {
			t.Errorf("top = %d, want 80", block.Top)
		}
		if block.Height != 120 {
			t.Errorf("height = %d, want 120", block.Height)
		}
		if block.ReadOnly {
			t.Error("future session should not be read-only")
		}
	})

	t.Run("clamps stale out-of-range seats into the last lane", func(t *testing.T) {
		t.Parallel()

		block := engine.Layout(testSession("a", 99, "10:00", "11:00"))
		if block.Lane != 9 {
			t.Errorf("lane = %d, want 9", block.Lane)
		}
	})

	t.Run("enforces a minimum visible height", func(t *testing.T) {
		t.Parallel()

		block := engine.Layout(testSession("a", 1, "10:00", "10:00"))
		if block.Height != 20 {
			t.Errorf("height = %d, want the row-height floor of 20", block.Height)
		}
	})
}

func TestEngine_Blocks_ExcludesCancelled(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(Callbacks{})
	cancelled := testSession("b", 2, "10:00", "11:00")
	cancelled.Status = scheduler.StatusCancelled
	engine.SetDay("2024-06-12", []scheduler.Session{
		testSession("a", 1, "10:00", "11:00"),
		cancelled,
	})

	blocks := engine.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].SessionID != "a" {
		t.Errorf("block session = %q, want %q", blocks[0].SessionID, "a")
	}
}

func TestEngine_DragRescheduleConflict(t *testing.T) {
	t.Parallel()

	var moved []string
	engine := newTestEngine(Callbacks{
		OnMove: func(session scheduler.Session, seat int, start, end string) {
			moved = append(moved, session.ID)
			if seat != 3 || start != "13:00" || end != "14:00" {
				t.Errorf("OnMove(%s, %d, %s, %s), want (y, 3, 13:00, 14:00)", session.ID, seat, start, end)
			}
		},
	})
	engine.SetDay("2024-06-12", []scheduler.Session{
		testSession("x", 2, "13:00", "14:00"),
		testSession("y", 5, "10:00", "11:00"),
	})

	// Seat 2 overlapping 13:00-14:00: conflict, drop silently rejected.
	if !engine.BeginDrag("y") {
		t.Fatal("expected drag to start")
	}
	preview, ok := engine.DragOver(scheduler.TypeTabletopTraining, 130, 250)
	if !ok {
		t.Fatal("expected a hover preview")
	}
	if preview.Seat != 2 || preview.StartTime != "13:00" {
		t.Fatalf("preview = %+v, want seat 2 at 13:00", preview)
	}
	if !preview.Conflict {
		t.Error("expected a conflict against the seat-2 session")
	}
	if engine.Drop() {
		t.Error("conflicting drop must be rejected")
	}
	if len(moved) != 0 {
		t.Fatal("move callback invoked on a conflicting drop")
	}

	// Seat 3 at the same time: no conflict, move commits.
	if !engine.BeginDrag("y") {
		t.Fatal("expected a second drag to start")
	}
	preview, ok = engine.DragOver(scheduler.TypeTabletopTraining, 250, 250)
	if !ok {
		t.Fatal("expected a hover preview")
	}
	if preview.Conflict {
		t.Errorf("unexpected conflict for %+v", preview)
	}
	if !engine.Drop() {
		t.Error("conflict-free drop must commit")
	}
	if len(moved) != 1 || moved[0] != "y" {
		t.Fatalf("moved = %v, want [y]", moved)
	}
	if engine.LastMoved() != "y" {
		t.Errorf("LastMoved = %q, want %q", engine.LastMoved(), "y")
	}
}

func TestEngine_DragStateMachine(t *testing.T) {
	t.Parallel()

	t.Run("only one drag at a time", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(Callbacks{})
		engine.SetDay("2024-06-12", []scheduler.Session{
			testSession("a", 1, "10:00", "11:00"),
			testSession("b", 2, "10:00", "11:00"),
		})

		if !engine.BeginDrag("a") {
			t.Fatal("expected first drag to start")
		}
		if engine.BeginDrag("b") {
			t.Error("second drag must be refused while one is active")
		}
		engine.CancelDrag()
		if engine.Dragging() {
			t.Error("cancel must return the engine to idle")
		}
	})

	t.Run("drag-over a mismatching column clears the preview", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(Callbacks{})
		engine.SetDay("2024-06-12", []scheduler.Session{testSession("a", 1, "10:00", "11:00")})

		engine.BeginDrag("a")
		if _, ok := engine.DragOver(scheduler.TypeAccelerateRx, 0, 0); ok {
			t.Error("preview must not be produced over a different type column")
		}
		if engine.Drop() {
			t.Error("drop without a preview must be rejected")
		}
	})

	t.Run("drag-leave cancels without committing", func(t *testing.T) {
		t.Parallel()

		called := false
		engine := newTestEngine(Callbacks{
			OnMove: func(scheduler.Session, int, string, string) { called = true },
		})
		engine.SetDay("2024-06-12", []scheduler.Session{testSession("a", 1, "10:00", "11:00")})

		engine.BeginDrag("a")
		engine.DragOver(scheduler.TypeTabletopTraining, 0, 0)
		engine.DragLeave()
		if engine.Dragging() {
			t.Error("drag-leave must return the engine to idle")
		}
		if engine.Drop() || called {
			t.Error("nothing may commit after drag-leave")
		}
	})

	t.Run("drop clamps the window inside business hours", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(Callbacks{})
		engine.SetDay("2024-06-12", []scheduler.Session{testSession("a", 1, "10:00", "12:00")})

		engine.BeginDrag("a")
		// Hover far past the bottom of the grid; the two-hour session must be
		// pulled back so it still ends by 19:00.
		preview, ok := engine.DragOver(scheduler.TypeTabletopTraining, 0, 10000)
		if !ok {
			t.Fatal("expected a preview")
		}
		if preview.StartTime != "17:00" || preview.EndTime != "19:00" {
			t.Errorf("preview window = %s-%s, want 17:00-19:00", preview.StartTime, preview.EndTime)
		}
	})
}

func TestEngine_TodayFloorsDropTime(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultGeometry(), testSeats, fixedNow("2024-06-12 13:40"), Callbacks{})
	engine.SetDay("2024-06-12", []scheduler.Session{testSession("a", 1, "15:00", "16:00")})

	engine.BeginDrag("a")
	// Aim at the 10:00 slot; today's floor is 13:40 rounded down to 13:30.
	preview, ok := engine.DragOver(scheduler.TypeTabletopTraining, 0, 0)
	if !ok {
		t.Fatal("expected a preview")
	}
	if preview.StartTime != "13:30" {
		t.Errorf("preview start = %s, want 13:30", preview.StartTime)
	}
	if preview.EndTime != "14:30" {
		t.Errorf("preview end = %s, want 14:30", preview.EndTime)
	}
}

func TestEngine_ReadOnlySessions(t *testing.T) {
	t.Parallel()

	t.Run("past-ended session is not draggable", func(t *testing.T) {
		t.Parallel()

		engine := NewEngine(DefaultGeometry(), testSeats, fixedNow("2024-06-12 15:00"), Callbacks{})
		past := testSession("a", 1, "10:00", "11:00")
		engine.SetDay("2024-06-12", []scheduler.Session{past})

		if engine.BeginDrag("a") {
			t.Error("session that already ended must not start a drag")
		}
		if block := engine.Layout(past); !block.ReadOnly {
			t.Error("session that already ended must render read-only")
		}
	})

	t.Run("cancelled session is not draggable", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(Callbacks{})
		cancelled := testSession("a", 1, "10:00", "11:00")
		cancelled.Status = scheduler.StatusCancelled
		engine.SetDay("2024-06-12", []scheduler.Session{cancelled})

		if engine.BeginDrag("a") {
			t.Error("cancelled session must not start a drag")
		}
	})

	t.Run("select ignores read-only sessions", func(t *testing.T) {
		t.Parallel()

		selected := ""
		engine := NewEngine(DefaultGeometry(), testSeats, fixedNow("2024-06-12 15:00"), Callbacks{
			OnSelect: func(session scheduler.Session) { selected = session.ID },
		})
		engine.SetDay("2024-06-12", []scheduler.Session{
			testSession("past", 1, "10:00", "11:00"),
			testSession("future", 2, "16:00", "17:00"),
		})

		engine.Select("past")
		if selected != "" {
			t.Error("read-only session must not be selectable")
		}
		engine.Select("future")
		if selected != "future" {
			t.Errorf("selected = %q, want %q", selected, "future")
		}
	})
}

func TestEngine_ChangeSeat(t *testing.T) {
	t.Parallel()

	t.Run("moves sideways to a free seat", func(t *testing.T) {
		t.Parallel()

		var gotID string
		var gotSeat int
		engine := newTestEngine(Callbacks{
			OnSeatChange: func(session scheduler.Session, newSeat int) {
				gotID, gotSeat = session.ID, newSeat
			},
		})
		engine.SetDay("2024-06-12", []scheduler.Session{
			testSession("a", 2, "13:00", "14:00"),
		})

		if !engine.ChangeSeat("a", 5) {
			t.Fatal("expected seat change to a free seat to succeed")
		}
		if gotID != "a" || gotSeat != 5 {
			t.Errorf("callback got (%q, %d), want (%q, 5)", gotID, gotSeat, "a")
		}
		if engine.LastMoved() != "a" {
			t.Errorf("lastMoved = %q, want %q", engine.LastMoved(), "a")
		}
	})

	t.Run("rejects an occupied seat", func(t *testing.T) {
		t.Parallel()

		called := false
		engine := newTestEngine(Callbacks{
			OnSeatChange: func(scheduler.Session, int) { called = true },
		})
		engine.SetDay("2024-06-12", []scheduler.Session{
			testSession("a", 2, "13:00", "14:00"),
			testSession("b", 3, "13:30", "14:30"),
		})

		if engine.ChangeSeat("a", 3) {
			t.Error("expected overlap with seat 3 to be rejected")
		}
		if called {
			t.Error("callback must not fire on a rejected change")
		}
	})

	t.Run("rejects out-of-range seats", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(Callbacks{})
		engine.SetDay("2024-06-12", []scheduler.Session{
			testSession("a", 2, "13:00", "14:00"),
		})

		if engine.ChangeSeat("a", 0) {
			t.Error("seat 0 must be rejected")
		}
		if engine.ChangeSeat("a", 11) {
			t.Error("seat beyond capacity must be rejected")
		}
	})
}
