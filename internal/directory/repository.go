package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"outingpass/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetStudent(ctx context.Context, email string) (*Student, error) {
	const q = `
SELECT email, name, hostel_name, room_number, parent_email, parent_phone
FROM students
WHERE email = $1
`
	var s Student
	if err := r.db.QueryRow(ctx, q, strings.ToLower(email)).Scan(
		&s.Email, &s.Name, &s.HostelName, &s.RoomNumber, &s.ParentEmail, &s.ParentPhone,
	); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) UpsertStudent(ctx context.Context, s Student) error {
	const q = `
INSERT INTO students (email, name, hostel_name, room_number, parent_email, parent_phone)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (email) DO UPDATE SET
  name = EXCLUDED.name,
  hostel_name = EXCLUDED.hostel_name,
  room_number = EXCLUDED.room_number,
  parent_email = EXCLUDED.parent_email,
  parent_phone = EXCLUDED.parent_phone,
  updated_at = NOW()
`
	_, err := r.db.Exec(ctx, q, strings.ToLower(s.Email), s.Name, s.HostelName, s.RoomNumber, s.ParentEmail, s.ParentPhone)
	return err
}

func (r *Repository) GetStaffByUsername(ctx context.Context, username string) (*Staff, error) {
	const q = `
SELECT id, username, email, password_hash, role, hostels
FROM staff
WHERE username = $1
`
	var s Staff
	if err := r.db.QueryRow(ctx, q, username).Scan(
		&s.ID, &s.Username, &s.Email, &s.PasswordHash, &s.Role, &s.Hostels,
	); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateStaff(ctx context.Context, s Staff) (*Staff, error) {
	if s.Hostels == nil {
		s.Hostels = []string{}
	}
	const q = `
INSERT INTO staff (username, email, password_hash, role, hostels)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	if err := r.db.QueryRow(ctx, q, s.Username, s.Email, s.PasswordHash, string(s.Role), s.Hostels).Scan(&s.ID); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, s.Username)
		}
		return nil, err
	}
	return &s, nil
}

// Authenticate verifies a staff login against the stored bcrypt hash.
func (r *Repository) Authenticate(ctx context.Context, username, password string) (*Staff, error) {
	s, err := r.GetStaffByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if err == ErrNotFound {
			// Burn comparable time so unknown usernames are not distinguishable.
			_ = CheckPassword(dummyHash(), password)
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := CheckPassword(s.PasswordHash, password); err != nil {
		return nil, err
	}
	return s, nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = HashPassword("not-a-real-password")
	})
	return dummy
}
