package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// LecturerRepository handles lecturer data access.
type LecturerRepository struct {
	pool *pgxpool.Pool
}

// NewLecturerRepository creates a new LecturerRepository.
func NewLecturerRepository(pool *pgxpool.Pool) *LecturerRepository {
	return &LecturerRepository{pool: pool}
}

const lecturerColumns = `id, nidn, name, password_hash, created_at, updated_at`

func scanLecturer(row interface{ Scan(...any) error }) (*model.Lecturer, error) {
	l := &model.Lecturer{}
	err := row.Scan(&l.ID, &l.NIDN, &l.Name, &l.PasswordHash, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetByNIDN retrieves a lecturer by their lecturer registration number.
func (r *LecturerRepository) GetByNIDN(ctx context.Context, nidn string) (*model.Lecturer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+lecturerColumns+` FROM lecturers WHERE nidn = $1`, nidn)
	return scanLecturer(row)
}

// GetByID retrieves a lecturer by internal ID.
func (r *LecturerRepository) GetByID(ctx context.Context, id int) (*model.Lecturer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+lecturerColumns+` FROM lecturers WHERE id = $1`, id)
	return scanLecturer(row)
}

// Create inserts a new lecturer account.
func (r *LecturerRepository) Create(ctx context.Context, l *model.Lecturer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO lecturers (nidn, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		l.NIDN, l.Name, l.PasswordHash,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}
