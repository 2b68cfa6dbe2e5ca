package slot

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const columns = `id, lab, day_index, start_time, end_time, reason, locked_by, created_at`

func (r *Repository) List(ctx context.Context) ([]Slot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM locked_slots ORDER BY lab ASC, day_index ASC, start_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Slot{}
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.Lab, &s.DayIndex, &s.StartTime, &s.EndTime, &s.Reason, &s.LockedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, s Slot) (*Slot, error) {
	const q = `
INSERT INTO locked_slots (lab, day_index, start_time, end_time, reason, locked_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + columns
	var out Slot
	if err := r.db.QueryRow(ctx, q, s.Lab, s.DayIndex, s.StartTime, s.EndTime, s.Reason, s.LockedBy).Scan(
		&out.ID, &out.Lab, &out.DayIndex, &out.StartTime, &out.EndTime, &out.Reason, &out.LockedBy, &out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM locked_slots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
