package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func (r *inventoryStore) DailyDemand(ctx context.Context, articleID int64, since time.Time) ([]domain.DailyDemandPoint, error) {
	query := `
		SELECT DATE(s.sold_at) AS day, SUM(l.quantity) AS quantity
		FROM sales s
		JOIN sale_lines l ON l.sale_id = s.id
		WHERE l.article_id = $1
		  AND s.sold_at >= $2
		GROUP BY DATE(s.sold_at)
		ORDER BY DATE(s.sold_at)
	`

	var points []domain.DailyDemandPoint
	if err := sqlx.SelectContext(ctx, r.db, &points, query, articleID, since); err != nil {
		return nil, fmt.Errorf("failed to load daily demand: %w", err)
	}
	return points, nil
}

func (r *inventoryStore) SalesFingerprint(ctx context.Context, articleID int64, since time.Time) (domain.SalesFingerprint, error) {
	query := `
		SELECT COUNT(l.id) AS lines,
		       COALESCE(SUM(l.quantity), 0) AS quantity,
		       MAX(s.sold_at) AS last_sold_at
		FROM sales s
		JOIN sale_lines l ON l.sale_id = s.id
		WHERE l.article_id = $1
		  AND s.sold_at >= $2
	`

	var fp domain.SalesFingerprint
	if err := sqlx.GetContext(ctx, r.db, &fp, query, articleID, since); err != nil {
		return domain.SalesFingerprint{}, fmt.Errorf("failed to load sales fingerprint: %w", err)
	}
	return fp, nil
}

func openStatuses() []int64 {
	codes := make([]int64, len(domain.OpenPOStatuses))
	for i, s := range domain.OpenPOStatuses {
		codes[i] = int64(s)
	}
	return codes
}

func (r *inventoryStore) OpenOrderArticles(ctx context.Context) (map[int64]bool, error) {
	query := `
		SELECT DISTINCT l.article_id
		FROM purchase_order_lines l
		JOIN purchase_orders o ON o.id = l.purchase_order_id
		WHERE o.status = ANY($1)
	`

	var ids []int64
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, pq.Array(openStatuses())); err != nil {
		return nil, fmt.Errorf("failed to load open order articles: %w", err)
	}

	open := make(map[int64]bool, len(ids))
	for _, id := range ids {
		open[id] = true
	}
	return open, nil
}

func (r *inventoryStore) HasOpenOrder(ctx context.Context, articleID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM purchase_order_lines l
			JOIN purchase_orders o ON o.id = l.purchase_order_id
			WHERE l.article_id = $1 AND o.status = ANY($2)
		)
	`

	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, query, articleID, pq.Array(openStatuses())); err != nil {
		return false, fmt.Errorf("failed to check open orders: %w", err)
	}
	return exists, nil
}
