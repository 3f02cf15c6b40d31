package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/center-roster/internal/persistence"
)

// StudentRepository implements persistence.StudentRepository using SQLite.
type StudentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStudentRepository creates a new SQLite student repository.
func NewStudentRepository(pool *ConnectionPool) *StudentRepository {
	return &StudentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateStudent inserts a new student record.
func (r *StudentRepository) CreateStudent(ctx context.Context, student persistence.Student) error {
	if student.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO students (id, name, email, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		student.ID,
		student.Name,
		student.Email,
		nullString(student.Notes),
		student.CreatedAt.Format(time.RFC3339),
		student.UpdatedAt.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// UpdateStudent rewrites an existing student record.
func (r *StudentRepository) UpdateStudent(ctx context.Context, student persistence.Student) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE students
		SET name = ?, email = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`,
		student.Name,
		student.Email,
		nullString(student.Notes),
		student.UpdatedAt.Format(time.RFC3339),
		student.ID,
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

// GetStudent retrieves a student by ID.
func (r *StudentRepository) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, name, email, notes, created_at, updated_at
		FROM students WHERE id = ?
	`, id)

	student, err := scanStudent(row)
	if err != nil {
		return persistence.Student{}, r.mapper.MapError(err)
	}
	return student, nil
}

// ListStudents returns all students ordered by name.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, email, notes, created_at, updated_at
		FROM students ORDER BY name, id
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	students := make([]persistence.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return students, nil
}

// DeleteStudent removes a student by ID. Historical sessions keep the
// student's name as an ad-hoc client so the schedule stays readable after
// the roster entry is gone.
func (r *StudentRepository) DeleteStudent(ctx context.Context, id string) error {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var name string
		row := r.helper.QueryRowTx(tx, `SELECT name FROM students WHERE id = ?`, id)
		if err := row.Scan(&name); err != nil {
			return err
		}

		// The sessions table requires exactly one of student_id and
		// client_name, so detaching moves the name across.
		_, err := r.helper.ExecTx(tx, `
			UPDATE sessions
			SET student_id = NULL, client_name = ?
			WHERE student_id = ?
		`, name, id)
		if err != nil {
			return err
		}

		_, err = r.helper.ExecTx(tx, `DELETE FROM students WHERE id = ?`, id)
		return err
	})
	return r.mapper.MapError(err)
}

func scanStudent(row rowScanner) (persistence.Student, error) {
	var (
		student              persistence.Student
		notes                sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(&student.ID, &student.Name, &student.Email, &notes, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Student{}, err
	}

	student.Notes = stringPtr(notes)
	student.CreatedAt = parseTimestamp(createdAt)
	student.UpdatedAt = parseTimestamp(updatedAt)
	return student, nil
}
