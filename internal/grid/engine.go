// Package grid implements the daily schedule grid: deterministic block
// positioning for sessions within a (type, seat-lane, time) layout and the
// drag-to-reschedule interaction state machine. The engine holds no storage;
// callers load the day's sessions and receive committed moves through
// callbacks.
package grid

import (
	"time"

	"github.com/example/center-roster/internal/scheduler"
	"github.com/example/center-roster/internal/timeutil"
)

// Geometry fixes the pixel dimensions and time discretization of the grid.
type Geometry struct {
	RowHeight     int
	LaneWidth     int
	BusinessStart string
	BusinessEnd   string
	Increment     int
}

// DefaultGeometry returns the standard grid dimensions over 10:00-19:00
// business hours at 15-minute rows.
func DefaultGeometry() Geometry {
	return Geometry{
		RowHeight:     20,
		LaneWidth:     120,
		BusinessStart: "10:00",
		BusinessEnd:   "19:00",
		Increment:     15,
	}
}

// Block is the computed placement of one session inside its type column.
// ReadOnly blocks render without drag or edit affordances.
type Block struct {
	SessionID string
	Lane      int
	Top       int
	Left      int
	Height    int
	Width     int
	ReadOnly  bool
}

// Preview describes the candidate placement under the cursor during a drag,
// including whether committing it would double-book the seat.
type Preview struct {
	Seat      int
	StartTime string
	EndTime   string
	Conflict  bool
}

// Callbacks are the session mutation hooks implemented by the page-level
// component that owns persistence. OnMove receives the relocated session with
// its new seat and time window; it is only invoked for conflict-free drops.
type Callbacks struct {
	OnMove       func(session scheduler.Session, newSeat int, newStart, newEnd string)
	OnSeatChange func(session scheduler.Session, newSeat int)
	OnSelect     func(session scheduler.Session)
}

type dragState struct {
	sessionID   string
	sessionType scheduler.SessionType
	preview     *Preview
}

// Engine drives one grid instance for one calendar day. At most one session
// is mid-drag at a time; the pointer model makes concurrent drags impossible
// and the engine enforces the same.
type Engine struct {
	geometry  Geometry
	seats     scheduler.SeatConfig
	now       func() time.Time
	callbacks Callbacks

	date      string
	sessions  []scheduler.Session
	drag      *dragState
	lastMoved string
}

// NewEngine constructs a grid engine. now is injected so tests can fix
// "today"; when nil, the system clock is used.
func NewEngine(geometry Geometry, seats scheduler.SeatConfig, now func() time.Time, callbacks Callbacks) *Engine {
	if geometry.RowHeight <= 0 || geometry.LaneWidth <= 0 || geometry.Increment <= 0 {
		geometry = DefaultGeometry()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		geometry:  geometry,
		seats:     seats,
		now:       now,
		callbacks: callbacks,
	}
}

// SetDay loads the sessions to render for the given calendar day. Any drag in
// progress and any pending success flash are discarded.
func (e *Engine) SetDay(date string, sessions []scheduler.Session) {
	e.date = date
	e.sessions = make([]scheduler.Session, len(sessions))
	copy(e.sessions, sessions)
	e.drag = nil
	e.lastMoved = ""
}

// Layout computes the placement of a single session within its type column.
// Stale seat values outside the configured lane range are clamped into view
// rather than dropped.
func (e *Engine) Layout(session scheduler.Session) Block {
	businessStart := timeutil.ToMinutes(e.geometry.BusinessStart)
	start := timeutil.ToMinutes(session.StartTime)
	duration := timeutil.Duration(session.StartTime, session.EndTime)

	top := (start - businessStart) / e.geometry.Increment * e.geometry.RowHeight
	height := duration / e.geometry.Increment * e.geometry.RowHeight
	if height < e.geometry.RowHeight {
		height = e.geometry.RowHeight
	}

	lane := session.Seat - 1
	if lane < 0 {
		lane = 0
	}
	if max := e.seats[session.Type] - 1; max >= 0 && lane > max {
		lane = max
	}

	return Block{
		SessionID: session.ID,
		Lane:      lane,
		Top:       top,
		Left:      lane * e.geometry.LaneWidth,
		Height:    height,
		Width:     e.geometry.LaneWidth,
		ReadOnly:  e.readOnly(session),
	}
}

// Blocks lays out every loaded non-cancelled session for the day.
func (e *Engine) Blocks() []Block {
	blocks := make([]Block, 0, len(e.sessions))
	for _, session := range e.sessions {
		if session.Status == scheduler.StatusCancelled {
			continue
		}
		blocks = append(blocks, e.Layout(session))
	}
	return blocks
}

// BeginDrag starts a drag for the identified session. It reports false when
// the session is unknown or read-only, or when another drag is already in
// progress.
func (e *Engine) BeginDrag(sessionID string) bool {
	if e.drag != nil {
		return false
	}
	session, ok := e.find(sessionID)
	if !ok || e.readOnly(session) {
		return false
	}
	e.drag = &dragState{sessionID: session.ID, sessionType: session.Type}
	return true
}

// DragOver updates the hover preview for cursor position (x, y) within the
// column of the given session type. It reports false, leaving any previous
// preview cleared, when no drag is active or the column type does not match
// the dragged session.
func (e *Engine) DragOver(sessionType scheduler.SessionType, x, y int) (Preview, bool) {
	if e.drag == nil || e.drag.sessionType != sessionType {
		if e.drag != nil {
			e.drag.preview = nil
		}
		return Preview{}, false
	}

	session, ok := e.find(e.drag.sessionID)
	if !ok {
		return Preview{}, false
	}

	lane := x / e.geometry.LaneWidth
	if lane < 0 {
		lane = 0
	}
	if max := e.seats[sessionType] - 1; max >= 0 && lane > max {
		lane = max
	}

	duration := timeutil.Duration(session.StartTime, session.EndTime)
	businessStart := timeutil.ToMinutes(e.geometry.BusinessStart)
	businessEnd := timeutil.ToMinutes(e.geometry.BusinessEnd)

	slot := y / e.geometry.RowHeight
	if slot < 0 {
		slot = 0
	}
	start := businessStart + slot*e.geometry.Increment

	// Clamp so the full duration stays inside business hours.
	if start+duration > businessEnd {
		start = businessEnd - duration
	}
	if start < businessStart {
		start = businessStart
	}

	fits := true
	if floor, ok := e.minDroppableMinute(); ok && start < floor {
		start = floor
		if start+duration > businessEnd {
			// Too late in the day for the session to fit before close.
			fits = false
		}
	}

	preview := Preview{
		Seat:      lane + 1,
		StartTime: timeutil.ToHHMM(start),
		EndTime:   timeutil.ToHHMM(start + duration),
	}
	preview.Conflict = !fits || scheduler.SeatTaken(
		sessionType, e.date, preview.StartTime, preview.EndTime,
		preview.Seat, e.sessions, session.ID,
	)

	e.drag.preview = &preview
	return preview, true
}

// DragLeave cancels the drag when the cursor leaves the grid, clearing the
// preview without committing anything.
func (e *Engine) DragLeave() {
	e.drag = nil
}

// CancelDrag abandons an in-progress drag (drag-end without a drop).
func (e *Engine) CancelDrag() {
	e.drag = nil
}

// Drop commits the current preview. A conflict-free drop invokes the move
// callback with the new seat and time window, records a success flash for the
// moved block, and reports true. A conflicting or previewless drop is
// silently rejected: no callback, no persisted change. Either way the engine
// returns to idle.
func (e *Engine) Drop() bool {
	drag := e.drag
	e.drag = nil
	if drag == nil || drag.preview == nil || drag.preview.Conflict {
		return false
	}

	session, ok := e.find(drag.sessionID)
	if !ok {
		return false
	}

	preview := *drag.preview
	if e.callbacks.OnMove != nil {
		e.callbacks.OnMove(session, preview.Seat, preview.StartTime, preview.EndTime)
	}
	e.lastMoved = session.ID
	return true
}

// ChangeSeat moves a session sideways to another seat at its current time
// window. The target seat must be free for that window; a conflicting or
// out-of-range target is rejected without invoking the callback.
func (e *Engine) ChangeSeat(sessionID string, newSeat int) bool {
	session, ok := e.find(sessionID)
	if !ok || e.readOnly(session) {
		return false
	}
	if newSeat < 1 || newSeat > e.seats[session.Type] {
		return false
	}
	if newSeat != session.Seat && scheduler.SeatTaken(
		session.Type, e.date, session.StartTime, session.EndTime,
		newSeat, e.sessions, session.ID,
	) {
		return false
	}

	if e.callbacks.OnSeatChange != nil {
		e.callbacks.OnSeatChange(session, newSeat)
	}
	e.lastMoved = session.ID
	return true
}

// Select forwards a click on a non-read-only block to the page callback.
func (e *Engine) Select(sessionID string) {
	session, ok := e.find(sessionID)
	if !ok || e.readOnly(session) {
		return
	}
	if e.callbacks.OnSelect != nil {
		e.callbacks.OnSelect(session)
	}
}

// Dragging reports whether a drag is currently in progress.
func (e *Engine) Dragging() bool {
	return e.drag != nil
}

// LastMoved returns the ID of the most recently dropped session, used by the
// renderer for the transient success flash. SetDay clears it.
func (e *Engine) LastMoved() string {
	return e.lastMoved
}

// minDroppableMinute returns the earliest permitted start minute when the
// grid day is today: the current wall-clock rounded down to the increment.
func (e *Engine) minDroppableMinute() (int, bool) {
	now := e.now()
	if e.date != now.Format("2006-01-02") {
		return 0, false
	}
	minute := now.Hour()*60 + now.Minute()
	return minute / e.geometry.Increment * e.geometry.Increment, true
}

// readOnly reports whether the session renders without interaction: it was
// cancelled, its day is already over, or its end time has passed on today's
// grid.
func (e *Engine) readOnly(session scheduler.Session) bool {
	if session.Status == scheduler.StatusCancelled {
		return true
	}
	now := e.now()
	today := now.Format("2006-01-02")
	if session.Date < today {
		return true
	}
	if session.Date == today {
		return timeutil.ToMinutes(session.EndTime) <= now.Hour()*60+now.Minute()
	}
	return false
}

func (e *Engine) find(sessionID string) (scheduler.Session, bool) {
	for _, session := range e.sessions {
		if session.ID == sessionID {
			return session, true
		}
	}
	return scheduler.Session{}, false
}
