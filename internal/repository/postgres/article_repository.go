package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/repository"
	"github.com/jmoiron/sqlx"
)

const articleColumns = `
	id, name, stock_on_hand, annual_demand, holding_cost, inventory_model,
	review_period_days, default_supplier_id, discontinued_at, created_at`

type inventoryStore struct {
	db *DB
}

// NewStore returns the Postgres-backed repository.Store
func NewStore(db *DB) repository.Store {
	return &inventoryStore{db: db}
}

func (r *inventoryStore) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	var article domain.Article
	err := sqlx.GetContext(ctx, r.db, &article, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(domain.CodeArticleNotFound, id, "article not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %d: %w", id, err)
	}

	return &article, nil
}

func (r *inventoryStore) ListArticles(ctx context.Context) ([]*domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY id ASC`

	var articles []*domain.Article
	if err := sqlx.SelectContext(ctx, r.db, &articles, query); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return articles, nil
}

func (r *inventoryStore) SetDefaultSupplier(ctx context.Context, articleID, supplierID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE articles SET default_supplier_id = $2 WHERE id = $1`, articleID, supplierID)
	if err != nil {
		return fmt.Errorf("failed to set default supplier: %w", err)
	}
	return requireRow(res, articleID)
}

func (r *inventoryStore) DecreaseStock(ctx context.Context, articleID int64, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE articles
		SET stock_on_hand = stock_on_hand - $2
		WHERE id = $1 AND stock_on_hand >= $2
	`, articleID, qty)
	if err != nil {
		return fmt.Errorf("failed to decrease stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to decrease stock: %w", err)
	}
	if n == 0 {
		if _, err := r.GetArticle(ctx, articleID); err != nil {
			return err
		}
		return domain.Precondition(domain.CodeInsufficientStock, articleID, "stock_on_hand",
			fmt.Sprintf("stock on hand is lower than %d", qty))
	}
	return nil
}

func (r *inventoryStore) Discontinue(ctx context.Context, articleID int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE articles SET discontinued_at = $2 WHERE id = $1 AND discontinued_at IS NULL`, articleID, at)
	if err != nil {
		return fmt.Errorf("failed to discontinue article: %w", err)
	}
	return requireRow(res, articleID)
}

func (r *inventoryStore) GetTerms(ctx context.Context, articleID, supplierID int64) (*domain.SupplierTerms, error) {
	query := `
		SELECT article_id, supplier_id, purchase_cost, order_cost, lead_time_days, discontinued_at
		FROM supplier_terms
		WHERE article_id = $1 AND supplier_id = $2
	`

	var terms domain.SupplierTerms
	err := sqlx.GetContext(ctx, r.db, &terms, query, articleID, supplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(domain.CodeSupplierTermsNotFound, articleID,
			fmt.Sprintf("no terms for supplier %d", supplierID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier terms: %w", err)
	}

	return &terms, nil
}

func requireRow(res sql.Result, articleID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NotFound(domain.CodeArticleNotFound, articleID, "article not found")
	}
	return nil
}
