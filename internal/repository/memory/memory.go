// Package memory provides an in-memory repository.Store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/repository"
)

type termsKey struct {
	ArticleID  int64
	SupplierID int64
}

type saleLine struct {
	ArticleID int64
	SoldAt    time.Time
	Quantity  int
}

type orderLine struct {
	ArticleID int64
	Status    domain.PurchaseOrderStatus
}

type Store struct {
	mu         sync.RWMutex
	articles   map[int64]*domain.Article
	order      []int64
	terms      map[termsKey]*domain.SupplierTerms
	policies   []domain.InventoryPolicyRecord
	nextPolicy int64
	sales      []saleLine
	orders     []orderLine
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		articles: make(map[int64]*domain.Article),
		terms:    make(map[termsKey]*domain.SupplierTerms),
	}
}

// =============================================================================
// SEEDING
// =============================================================================

// PutArticle inserts or replaces an article; new ids keep insertion order
func (s *Store) PutArticle(a domain.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.articles[a.ID] = &a
}

func (s *Store) PutTerms(t domain.SupplierTerms) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms[termsKey{t.ArticleID, t.SupplierID}] = &t
}

func (s *Store) RecordSale(articleID int64, soldAt time.Time, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, saleLine{ArticleID: articleID, SoldAt: soldAt, Quantity: qty})
}

func (s *Store) AddPurchaseOrder(articleID int64, status domain.PurchaseOrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, orderLine{ArticleID: articleID, Status: status})
}

// =============================================================================
// ARTICLES & TERMS
// =============================================================================

func (s *Store) GetArticle(_ context.Context, id int64) (*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return nil, domain.NotFound(domain.CodeArticleNotFound, id, "article not found")
	}
	c := *a
	return &c, nil
}

func (s *Store) ListArticles(_ context.Context) ([]*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Article, 0, len(s.order))
	for _, id := range s.order {
		c := *s.articles[id]
		result = append(result, &c)
	}
	return result, nil
}

func (s *Store) SetDefaultSupplier(_ context.Context, articleID, supplierID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[articleID]
	if !ok {
		return domain.NotFound(domain.CodeArticleNotFound, articleID, "article not found")
	}
	a.DefaultSupplierID = &supplierID
	return nil
}

func (s *Store) DecreaseStock(_ context.Context, articleID int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[articleID]
	if !ok {
		return domain.NotFound(domain.CodeArticleNotFound, articleID, "article not found")
	}
	if a.StockOnHand < qty {
		return domain.Precondition(domain.CodeInsufficientStock, articleID, "stock_on_hand",
			fmt.Sprintf("stock on hand is lower than %d", qty))
	}
	a.StockOnHand -= qty
	return nil
}

func (s *Store) Discontinue(_ context.Context, articleID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[articleID]
	if !ok {
		return domain.NotFound(domain.CodeArticleNotFound, articleID, "article not found")
	}
	if a.DiscontinuedAt == nil {
		a.DiscontinuedAt = &at
	}
	return nil
}

func (s *Store) GetTerms(_ context.Context, articleID, supplierID int64) (*domain.SupplierTerms, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.terms[termsKey{articleID, supplierID}]
	if !ok {
		return nil, domain.NotFound(domain.CodeSupplierTermsNotFound, articleID,
			fmt.Sprintf("no terms for supplier %d", supplierID))
	}
	c := *t
	return &c, nil
}

// =============================================================================
// POLICIES
// =============================================================================

func (s *Store) ListActivePolicies(_ context.Context, articleID int64) ([]domain.InventoryPolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.InventoryPolicyRecord
	for _, p := range s.policies {
		if p.ArticleID == articleID && p.Active() {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) ActivePolicies(_ context.Context) (map[int64]*domain.InventoryPolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]*domain.InventoryPolicyRecord)
	for i := range s.policies {
		if s.policies[i].Active() {
			c := s.policies[i]
			result[c.ArticleID] = &c
		}
	}
	return result, nil
}

func (s *Store) PolicyHistory(_ context.Context, articleID int64) ([]domain.InventoryPolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.InventoryPolicyRecord
	for _, p := range s.policies {
		if p.ArticleID == articleID {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// ApplyPolicyChange checks every supersession before writing anything, so a stale
// change leaves the store untouched.
func (s *Store) ApplyPolicyChange(_ context.Context, change *domain.PolicyChange) (*domain.InventoryPolicyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[change.ArticleID]; !ok {
		return nil, domain.NotFound(domain.CodeArticleNotFound, change.ArticleID, "article not found")
	}

	targets := make(map[int64]time.Time, len(change.Supersede))
	for _, sup := range change.Supersede {
		targets[sup.RecordID] = sup.At
	}

	matched := 0
	for _, p := range s.policies {
		if p.ArticleID != change.ArticleID || !p.Active() {
			continue
		}
		if _, ok := targets[p.ID]; !ok {
			// an active record the change does not know about
			return nil, repository.ErrConcurrentModification
		}
		matched++
	}
	if matched != len(targets) {
		return nil, repository.ErrConcurrentModification
	}

	for i := range s.policies {
		if at, ok := targets[s.policies[i].ID]; ok {
			at := at
			s.policies[i].SupersededAt = &at
		}
	}

	s.nextPolicy++
	rec := change.Insert
	rec.ID = s.nextPolicy
	rec.ArticleID = change.ArticleID
	rec.SupersededAt = nil
	s.policies = append(s.policies, rec)

	return &rec, nil
}

// =============================================================================
// SALES & ORDERS
// =============================================================================

func (s *Store) DailyDemand(_ context.Context, articleID int64, since time.Time) ([]domain.DailyDemandPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := make(map[time.Time]int)
	for _, l := range s.sales {
		if l.ArticleID != articleID || l.SoldAt.Before(since) {
			continue
		}
		y, m, d := l.SoldAt.Date()
		byDay[time.Date(y, m, d, 0, 0, 0, 0, l.SoldAt.Location())] += l.Quantity
	}

	points := make([]domain.DailyDemandPoint, 0, len(byDay))
	for day, qty := range byDay {
		points = append(points, domain.DailyDemandPoint{Date: day, Quantity: qty})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (s *Store) SalesFingerprint(_ context.Context, articleID int64, since time.Time) (domain.SalesFingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fp domain.SalesFingerprint
	for _, l := range s.sales {
		if l.ArticleID != articleID || l.SoldAt.Before(since) {
			continue
		}
		fp.Lines++
		fp.Quantity += l.Quantity
		if fp.LastSoldAt == nil || l.SoldAt.After(*fp.LastSoldAt) {
			soldAt := l.SoldAt
			fp.LastSoldAt = &soldAt
		}
	}
	return fp, nil
}

func (s *Store) OpenOrderArticles(_ context.Context) (map[int64]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	open := make(map[int64]bool)
	for _, o := range s.orders {
		if o.Status.Open() {
			open[o.ArticleID] = true
		}
	}
	return open, nil
}

func (s *Store) HasOpenOrder(ctx context.Context, articleID int64) (bool, error) {
	open, err := s.OpenOrderArticles(ctx)
	if err != nil {
		return false, err
	}
	return open[articleID], nil
}
