package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const policyColumns = `
	id, article_id, inventory_model, optimal_lot_size, reorder_point,
	safety_stock, max_inventory_level, created_at, superseded_at`

// uniqueViolation is the SQLSTATE raised by idx_inventory_policies_one_active
const uniqueViolation = "23505"

func (r *inventoryStore) ListActivePolicies(ctx context.Context, articleID int64) ([]domain.InventoryPolicyRecord, error) {
	query := `SELECT ` + policyColumns + `
		FROM inventory_policies
		WHERE article_id = $1 AND superseded_at IS NULL
		ORDER BY id`

	var records []domain.InventoryPolicyRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to list active policies: %w", err)
	}
	return records, nil
}

func (r *inventoryStore) ActivePolicies(ctx context.Context) (map[int64]*domain.InventoryPolicyRecord, error) {
	query := `SELECT ` + policyColumns + `
		FROM inventory_policies
		WHERE superseded_at IS NULL`

	var records []*domain.InventoryPolicyRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query); err != nil {
		return nil, fmt.Errorf("failed to load active policies: %w", err)
	}

	byArticle := make(map[int64]*domain.InventoryPolicyRecord, len(records))
	for _, rec := range records {
		byArticle[rec.ArticleID] = rec
	}
	return byArticle, nil
}

func (r *inventoryStore) PolicyHistory(ctx context.Context, articleID int64) ([]domain.InventoryPolicyRecord, error) {
	query := `SELECT ` + policyColumns + `
		FROM inventory_policies
		WHERE article_id = $1
		ORDER BY created_at DESC, id DESC`

	var records []domain.InventoryPolicyRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query, articleID); err != nil {
		return nil, fmt.Errorf("failed to load policy history: %w", err)
	}
	return records, nil
}

// ApplyPolicyChange locks the article row, closes exactly the records named by the
// change and inserts the new active record. A stale plan rolls back with
// repository.ErrConcurrentModification.
func (r *inventoryStore) ApplyPolicyChange(ctx context.Context, change *domain.PolicyChange) (*domain.InventoryPolicyRecord, error) {
	inserted := change.Insert

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var locked int64
		if err := tx.GetContext(ctx, &locked,
			`SELECT id FROM articles WHERE id = $1 FOR UPDATE`, change.ArticleID); err != nil {
			return fmt.Errorf("failed to lock article %d: %w", change.ArticleID, err)
		}

		for _, s := range change.Supersede {
			res, err := tx.ExecContext(ctx, `
				UPDATE inventory_policies
				SET superseded_at = $3
				WHERE id = $1 AND article_id = $2 AND superseded_at IS NULL
			`, s.RecordID, change.ArticleID, s.At)
			if err != nil {
				return fmt.Errorf("failed to supersede policy %d: %w", s.RecordID, err)
			}
			if n, err := res.RowsAffected(); err != nil || n != 1 {
				return repository.ErrConcurrentModification
			}
		}

		query := `
			INSERT INTO inventory_policies (
				article_id, inventory_model, optimal_lot_size, reorder_point,
				safety_stock, max_inventory_level, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		err := tx.QueryRowxContext(ctx, query,
			change.ArticleID,
			inserted.Model,
			inserted.OptimalLotSize,
			inserted.ReorderPoint,
			inserted.SafetyStock,
			inserted.MaxInventoryLevel,
			inserted.CreatedAt,
		).Scan(&inserted.ID)

		if isUniqueViolation(err) {
			return repository.ErrConcurrentModification
		}
		if err != nil {
			return fmt.Errorf("failed to insert policy: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int64("article_id", change.ArticleID).
		Int64("policy_id", inserted.ID).
		Int("superseded", len(change.Supersede)).
		Msg("policy change applied")

	return &inserted, nil
}

// isUniqueViolation recognizes the error from both lib/pq and pgx
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
