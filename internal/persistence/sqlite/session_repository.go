package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/center-roster/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const sessionColumns = `id, session_type, session_date, start_time, end_time, seat,
	student_id, client_name, trainer_id, status, created_at, updated_at`

// CreateSession inserts a new session record.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		session.ID,
		session.Type,
		session.Date,
		session.StartTime,
		session.EndTime,
		session.Seat,
		nullString(session.StudentID),
		nullString(session.ClientName),
		session.TrainerID,
		session.Status,
		session.CreatedAt.Format(time.RFC3339),
		session.UpdatedAt.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// UpdateSession rewrites an existing session record.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE sessions
		SET session_type = ?, session_date = ?, start_time = ?, end_time = ?, seat = ?,
			student_id = ?, client_name = ?, trainer_id = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		session.Type,
		session.Date,
		session.StartTime,
		session.EndTime,
		session.Seat,
		nullString(session.StudentID),
		nullString(session.ClientName),
		session.TrainerID,
		session.Status,
		session.UpdatedAt.Format(time.RFC3339),
		session.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return r.mapper.MapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	return session, nil
}

// ListSessions returns sessions matching the filter, ordered by date, start
// time, then ID for a stable grid rendering order.
func (r *SessionRepository) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	args := make([]any, 0, 6)

	if filter.Date != "" {
		query += " AND session_date = ?"
		args = append(args, filter.Date)
	}
	if filter.DateFrom != "" {
		query += " AND session_date >= ?"
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		query += " AND session_date <= ?"
		args = append(args, filter.DateTo)
	}
	if filter.Type != "" {
		query += " AND session_type = ?"
		args = append(args, filter.Type)
	}
	if filter.TrainerID != "" {
		query += " AND trainer_id = ?"
		args = append(args, filter.TrainerID)
	}
	if filter.StudentID != "" {
		query += " AND student_id = ?"
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY session_date, start_time, id"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	sessions := make([]persistence.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var (
		session              persistence.Session
		studentID            sql.NullString
		clientName           sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(
		&session.ID,
		&session.Type,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.Seat,
		&studentID,
		&clientName,
		&session.TrainerID,
		&session.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Session{}, err
	}

	session.StudentID = stringPtr(studentID)
	session.ClientName = stringPtr(clientName)
	session.CreatedAt = parseTimestamp(createdAt)
	session.UpdatedAt = parseTimestamp(updatedAt)
	return session, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
