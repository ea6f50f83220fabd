// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
)

// ErrConcurrentModification is returned when a policy change was planned against an
// active record set that no longer matches storage. The caller may reload and retry.
var ErrConcurrentModification = errors.New("concurrent modification detected")

type ArticleRepository interface {
	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
	// ListArticles returns every article in insertion order
	ListArticles(ctx context.Context) ([]*domain.Article, error)
	SetDefaultSupplier(ctx context.Context, articleID, supplierID int64) error
	// DecreaseStock subtracts qty from stock on hand; it never lets stock go negative
	DecreaseStock(ctx context.Context, articleID int64, qty int) error
	Discontinue(ctx context.Context, articleID int64, at time.Time) error
}

type SupplierTermsRepository interface {
	GetTerms(ctx context.Context, articleID, supplierID int64) (*domain.SupplierTerms, error)
}

type PolicyRepository interface {
	// ListActivePolicies returns the records of the article with no superseded_at
	ListActivePolicies(ctx context.Context, articleID int64) ([]domain.InventoryPolicyRecord, error)
	// ActivePolicies returns the active record of every article that has one
	ActivePolicies(ctx context.Context) (map[int64]*domain.InventoryPolicyRecord, error)
	PolicyHistory(ctx context.Context, articleID int64) ([]domain.InventoryPolicyRecord, error)
	// ApplyPolicyChange supersedes and inserts in one transaction and returns the stored record
	ApplyPolicyChange(ctx context.Context, change *domain.PolicyChange) (*domain.InventoryPolicyRecord, error)
}

type SalesRepository interface {
	// DailyDemand returns one row per calendar day with sales since the given instant, ascending
	DailyDemand(ctx context.Context, articleID int64, since time.Time) ([]domain.DailyDemandPoint, error)
	// SalesFingerprint counts and sums the article's sale lines since the given instant
	SalesFingerprint(ctx context.Context, articleID int64, since time.Time) (domain.SalesFingerprint, error)
}

type PurchaseOrderRepository interface {
	// OpenOrderArticles returns the articles referenced by a Pending or Sent order
	OpenOrderArticles(ctx context.Context) (map[int64]bool, error)
	HasOpenOrder(ctx context.Context, articleID int64) (bool, error)
}

// Store groups every repository the inventory service reads from and writes to
type Store interface {
	ArticleRepository
	SupplierTermsRepository
	PolicyRepository
	SalesRepository
	PurchaseOrderRepository
}
