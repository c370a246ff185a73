package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akave-ai/hltmenu/internal/model"
)

const uniqueViolation = "23505"

// ModuleRepository persists and reads module records.
type ModuleRepository struct {
	pool *pgxpool.Pool
}

var _ ModuleStore = (*ModuleRepository)(nil)

// NewModuleRepository returns a ModuleRepository using the given pool.
func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{pool: pool}
}

// Create inserts a new record and sets its ID and CreatedAt.
func (r *ModuleRepository) Create(ctx context.Context, rec *model.ModuleRecord) error {
	query := `
		INSERT INTO modules (id, menu, label, type, kind, pset_id, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.Menu,
		rec.Label,
		rec.Type,
		rec.Kind,
		rec.PSetID,
		rec.Body,
	).Scan(&rec.ID, &rec.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateLabel, rec.Menu, rec.Label)
	}
	return err
}

// List returns the records of a menu in insertion order.
func (r *ModuleRepository) List(ctx context.Context, menu string) ([]model.ModuleRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, menu, label, type, kind, pset_id, body, created_at
		FROM modules
		WHERE menu = $1
		ORDER BY created_at, label`, menu)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.ModuleRecord
	for rows.Next() {
		var rec model.ModuleRecord
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// GetByLabel returns one record, or nil if not found.
func (r *ModuleRepository) GetByLabel(ctx context.Context, menu, label string) (*model.ModuleRecord, error) {
	var rec model.ModuleRecord
	err := scanRecord(r.pool.QueryRow(ctx, `
		SELECT id, menu, label, type, kind, pset_id, body, created_at
		FROM modules WHERE menu = $1 AND label = $2`, menu, label), &rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteByLabel removes one record and reports whether it existed.
func (r *ModuleRepository) DeleteByLabel(ctx context.Context, menu, label string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM modules WHERE menu = $1 AND label = $2`, menu, label)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanRecord(row pgx.Row, rec *model.ModuleRecord) error {
	return row.Scan(
		&rec.ID,
		&rec.Menu,
		&rec.Label,
		&rec.Type,
		&rec.Kind,
		&rec.PSetID,
		&rec.Body,
		&rec.CreatedAt,
	)
}
