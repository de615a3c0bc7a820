package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	dom "github.com/EmptyEmeraldTablet/blankpage/internal/domain"
)

// MemoRepo provides memo persistence.
type MemoRepo interface {
	Create(ctx context.Context, content string) (dom.Memo, error)
	GetByID(ctx context.Context, id int64) (dom.Memo, error)
	List(ctx context.Context) ([]dom.Memo, error)
	Update(ctx context.Context, id int64, content string) (dom.Memo, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// PGMemoRepo implements MemoRepo with Postgres.
type PGMemoRepo struct {
	db *pgxpool.Pool
}

// NewPGMemoRepo returns a new PGMemoRepo.
func NewPGMemoRepo(db *pgxpool.Pool) *PGMemoRepo {
	return &PGMemoRepo{db: db}
}

// Create inserts a memo. created_at and updated_at both default to now()
// in the same statement, so they come back equal.
func (r *PGMemoRepo) Create(ctx context.Context, content string) (dom.Memo, error) {
	query := `
		INSERT INTO memos (content)
		VALUES ($1)
		RETURNING id, content, created_at, updated_at`
	var m dom.Memo
	err := r.db.QueryRow(ctx, query, content).Scan(
		&m.ID, &m.Content, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func (r *PGMemoRepo) GetByID(ctx context.Context, id int64) (dom.Memo, error) {
	query := `
		SELECT id, content, created_at, updated_at
		FROM memos WHERE id = $1`
	var m dom.Memo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Content, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// List returns all memos, most recently updated first.
func (r *PGMemoRepo) List(ctx context.Context) ([]dom.Memo, error) {
	query := `
		SELECT id, content, created_at, updated_at
		FROM memos ORDER BY updated_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Memo
	for rows.Next() {
		var m dom.Memo
		if err := rows.Scan(&m.ID, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update replaces content and advances updated_at, leaving created_at
// untouched. Returns pgx.ErrNoRows if the memo does not exist.
func (r *PGMemoRepo) Update(ctx context.Context, id int64, content string) (dom.Memo, error) {
	query := `
		UPDATE memos SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, content, created_at, updated_at`
	var m dom.Memo
	err := r.db.QueryRow(ctx, query, id, content).Scan(
		&m.ID, &m.Content, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// Delete removes the row. Returns false if the memo did not exist.
func (r *PGMemoRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM memos WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
