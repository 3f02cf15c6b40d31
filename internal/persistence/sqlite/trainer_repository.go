package sqlite

import (
	"context"
	"time"

	"github.com/example/center-roster/internal/persistence"
)

// TrainerRepository implements persistence.TrainerRepository using SQLite.
type TrainerRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTrainerRepository creates a new SQLite trainer repository.
func NewTrainerRepository(pool *ConnectionPool) *TrainerRepository {
	return &TrainerRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateTrainer inserts a new trainer record.
func (r *TrainerRepository) CreateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	if trainer.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO trainers (id, name, email, can_do_gt_assessments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		trainer.ID,
		trainer.Name,
		trainer.Email,
		boolToInt(trainer.CanDoGTAssessments),
		trainer.CreatedAt.Format(time.RFC3339),
		trainer.UpdatedAt.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// UpdateTrainer rewrites an existing trainer record.
func (r *TrainerRepository) UpdateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE trainers
		SET name = ?, email = ?, can_do_gt_assessments = ?, updated_at = ?
		WHERE id = ?
	`,
		trainer.Name,
		trainer.Email,
		boolToInt(trainer.CanDoGTAssessments),
		trainer.UpdatedAt.Format(time.RFC3339),
		trainer.ID,
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

// GetTrainer retrieves a trainer by ID.
func (r *TrainerRepository) GetTrainer(ctx context.Context, id string) (persistence.Trainer, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, name, email, can_do_gt_assessments, created_at, updated_at
		FROM trainers WHERE id = ?
	`, id)

	trainer, err := scanTrainer(row)
	if err != nil {
		return persistence.Trainer{}, r.mapper.MapError(err)
	}
	return trainer, nil
}

// ListTrainers returns all trainers ordered by name.
func (r *TrainerRepository) ListTrainers(ctx context.Context) ([]persistence.Trainer, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, email, can_do_gt_assessments, created_at, updated_at
		FROM trainers ORDER BY name, id
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	trainers := make([]persistence.Trainer, 0)
	for rows.Next() {
		trainer, err := scanTrainer(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		trainers = append(trainers, trainer)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return trainers, nil
}

// DeleteTrainer removes a trainer by ID.
func (r *TrainerRepository) DeleteTrainer(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM trainers WHERE id = ?`, id)
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

func scanTrainer(row rowScanner) (persistence.Trainer, error) {
	var (
		trainer              persistence.Trainer
		canDoGT              int
		createdAt, updatedAt string
	)

	err := row.Scan(&trainer.ID, &trainer.Name, &trainer.Email, &canDoGT, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Trainer{}, err
	}

	trainer.CanDoGTAssessments = canDoGT != 0
	trainer.CreatedAt = parseTimestamp(createdAt)
	trainer.UpdatedAt = parseTimestamp(updatedAt)
	return trainer, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
