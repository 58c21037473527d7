package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

const skripsiColumns = `id, student_id, title, abstract, document_path, supervisor_id, status, review_notes, submitted_at, created_at, updated_at`

// SkripsiRepository handles thesis data access. Each student owns at most one
// skripsi row, enforced by a unique index on student_id.
type SkripsiRepository struct {
	pool *pgxpool.Pool
}

// NewSkripsiRepository creates a new SkripsiRepository.
func NewSkripsiRepository(pool *pgxpool.Pool) *SkripsiRepository {
	return &SkripsiRepository{pool: pool}
}

func scanSkripsi(row interface{ Scan(...any) error }) (*model.Skripsi, error) {
	s := &model.Skripsi{}
	err := row.Scan(&s.ID, &s.StudentID, &s.Title, &s.Abstract, &s.DocumentPath,
		&s.SupervisorID, &s.Status, &s.ReviewNotes, &s.SubmittedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new DRAFT skripsi for a student.
func (r *SkripsiRepository) Create(ctx context.Context, studentID int, req *model.CreateSkripsiRequest) (*model.Skripsi, error) {
	return scanSkripsi(r.pool.QueryRow(ctx,
		`INSERT INTO skripsi (student_id, title, abstract, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+skripsiColumns,
		studentID, req.Title, req.Abstract, model.SkripsiStatusDraft))
}

// GetByStudent retrieves a student's skripsi.
func (r *SkripsiRepository) GetByStudent(ctx context.Context, studentID int) (*model.Skripsi, error) {
	return scanSkripsi(r.pool.QueryRow(ctx,
		`SELECT `+skripsiColumns+` FROM skripsi WHERE student_id = $1`, studentID))
}

// GetByID retrieves a skripsi by id.
func (r *SkripsiRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Skripsi, error) {
	return scanSkripsi(r.pool.QueryRow(ctx,
		`SELECT `+skripsiColumns+` FROM skripsi WHERE id = $1`, id))
}

// UpdateContent edits title and abstract of a draft or revision.
func (r *SkripsiRepository) UpdateContent(ctx context.Context, id uuid.UUID, title, abstract string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE skripsi SET title = $1, abstract = $2, updated_at = NOW() WHERE id = $3`,
		title, abstract, id)
	return err
}

// SetDocumentPath attaches an uploaded document to the skripsi.
func (r *SkripsiRepository) SetDocumentPath(ctx context.Context, id uuid.UUID, path string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE skripsi SET document_path = $1, updated_at = NOW() WHERE id = $2`, path, id)
	return err
}

// UpdateStatus moves the skripsi to a new status. SUBMITTED also stamps
// submitted_at; review decisions record the lecturer's notes and identity.
func (r *SkripsiRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SkripsiStatus, notes string, supervisorID *int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE skripsi
		 SET status = $1,
		     review_notes = CASE WHEN $2 <> '' THEN $2 ELSE review_notes END,
		     supervisor_id = COALESCE($3, supervisor_id),
		     submitted_at = CASE WHEN $1 = 'SUBMITTED' THEN NOW() ELSE submitted_at END,
		     updated_at = NOW()
		 WHERE id = $4`,
		status, notes, supervisorID, id)
	return err
}

// ListForReview retrieves paginated skripsi awaiting lecturer action
// (SUBMITTED and UNDER_REVIEW), oldest submission first.
func (r *SkripsiRepository) ListForReview(ctx context.Context, page, limit int) ([]model.Skripsi, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM skripsi WHERE status IN ($1, $2)`,
		model.SkripsiStatusSubmitted, model.SkripsiStatusUnderReview).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+skripsiColumns+` FROM skripsi
		 WHERE status IN ($1, $2)
		 ORDER BY submitted_at ASC NULLS LAST
		 LIMIT $3 OFFSET $4`,
		model.SkripsiStatusSubmitted, model.SkripsiStatusUnderReview, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []model.Skripsi
	for rows.Next() {
		s, err := scanSkripsi(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *s)
	}
	return list, total, rows.Err()
}
