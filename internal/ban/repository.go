package ban

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"outingpass/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const banColumns = `id, student_email, from_date::text, till_date::text, reason, banned_by, created_at`

func (r *Repository) LatestFor(ctx context.Context, email string) (*Ban, error) {
	q := `
SELECT ` + banColumns + `
FROM bans
WHERE student_email = $1
ORDER BY created_at DESC
LIMIT 1
`
	var b Ban
	if err := r.db.QueryRow(ctx, q, strings.ToLower(email)).Scan(
		&b.ID, &b.StudentEmail, &b.FromDate, &b.TillDate, &b.Reason, &b.BannedBy, &b.CreatedAt,
	); err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repository) List(ctx context.Context) ([]Ban, error) {
	q := `
SELECT ` + banColumns + `
FROM bans
ORDER BY created_at DESC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Ban{}
	for rows.Next() {
		var b Ban
		if err := rows.Scan(&b.ID, &b.StudentEmail, &b.FromDate, &b.TillDate, &b.Reason, &b.BannedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, b Ban) (*Ban, error) {
	q := `
INSERT INTO bans (student_email, from_date, till_date, reason, banned_by)
VALUES ($1, $2::date, $3::date, $4, $5)
RETURNING ` + banColumns
	var out Ban
	if err := r.db.QueryRow(ctx, q, strings.ToLower(b.StudentEmail), b.FromDate, b.TillDate, b.Reason, b.BannedBy).Scan(
		&out.ID, &out.StudentEmail, &out.FromDate, &out.TillDate, &out.Reason, &out.BannedBy, &out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM bans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes bans whose till date is before today.
func (r *Repository) DeleteExpired(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bans WHERE till_date < $1::date`, today.Format(DateLayout))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
