package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/stockline/internal/cache"
	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/inventory"
	"github.com/andresuchdata/stockline/internal/report"
	"github.com/andresuchdata/stockline/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const maxApplyAttempts = 3

type InventoryService struct {
	store     repository.Store
	policies  *inventory.PolicyCalculator
	costs     *inventory.CostEvaluator
	demand    *inventory.DemandStatistics
	forecasts cache.ForecastCache
	now       func() time.Time
}

func NewInventoryService(store repository.Store, params inventory.Parameters, forecasts cache.ForecastCache) *InventoryService {
	if forecasts == nil {
		forecasts = cache.NewNoopForecastCache()
	}
	return &InventoryService{
		store:     store,
		policies:  inventory.NewPolicyCalculator(params),
		costs:     inventory.NewCostEvaluator(),
		demand:    inventory.NewDemandStatistics(params),
		forecasts: forecasts,
		now:       time.Now,
	}
}

// WithClock returns a copy of the service using now for timestamps and demand windows
func (s *InventoryService) WithClock(now func() time.Time) *InventoryService {
	c := *s
	c.now = now
	c.policies = s.policies.WithClock(now)
	return &c
}

// =============================================================================
// POLICIES
// =============================================================================

// RecomputePolicy derives a fresh policy for the article and makes it the only active one.
// A plan that lost a race with another writer is recomputed from a fresh read.
func (s *InventoryService) RecomputePolicy(ctx context.Context, articleID int64) (*domain.InventoryPolicyRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		record, err := s.recomputeOnce(ctx, articleID)
		if err == nil {
			s.invalidate(ctx, articleID)
			log.Info().
				Int64("article_id", articleID).
				Int64("policy_id", record.ID).
				Str("model", string(record.Model)).
				Msg("inventory policy recomputed")
			return record, nil
		}
		if !errors.Is(err, repository.ErrConcurrentModification) {
			return nil, err
		}
		lastErr = err
		log.Warn().Int64("article_id", articleID).Int("attempt", attempt).Msg("policy change raced, retrying")
	}
	return nil, lastErr
}

func (s *InventoryService) recomputeOnce(ctx context.Context, articleID int64) (*domain.InventoryPolicyRecord, error) {
	article, terms, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	active, err := s.store.ListActivePolicies(ctx, articleID)
	if err != nil {
		return nil, err
	}

	change, err := s.policies.Compute(article, terms, active)
	if err != nil {
		return nil, err
	}

	return s.store.ApplyPolicyChange(ctx, change)
}

// ActivePolicy returns the article's active record or a no_active_policy precondition error
func (s *InventoryService) ActivePolicy(ctx context.Context, articleID int64) (*domain.InventoryPolicyRecord, error) {
	if _, err := s.store.GetArticle(ctx, articleID); err != nil {
		return nil, err
	}
	policy, err := s.activePolicy(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, domain.Precondition(domain.CodeNoActivePolicy, articleID, "inventory_policy",
			"article has no active inventory policy")
	}
	return policy, nil
}

func (s *InventoryService) PolicyHistory(ctx context.Context, articleID int64) ([]domain.InventoryPolicyRecord, error) {
	if _, err := s.store.GetArticle(ctx, articleID); err != nil {
		return nil, err
	}
	return s.store.PolicyHistory(ctx, articleID)
}

// RecomputeResult summarises a bulk recompute; Failed maps article id to its error
type RecomputeResult struct {
	Updated []int64
	Failed  map[int64]error
}

// RecomputeAll recomputes every non-discontinued article with at most workers in flight.
// Business-rule failures are collected per article; infrastructure errors abort the run.
func (s *InventoryService) RecomputeAll(ctx context.Context, workers int) (*RecomputeResult, error) {
	articles, err := s.store.ListArticles(ctx)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		result = &RecomputeResult{Updated: make([]int64, 0), Failed: make(map[int64]error)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, a := range articles {
		if a.Discontinued() {
			continue
		}
		id := a.ID
		g.Go(func() error {
			_, err := s.RecomputePolicy(gctx, id)
			if err != nil {
				if _, ok := domain.AsError(err); !ok {
					return fmt.Errorf("recompute article %d: %w", id, err)
				}
				mu.Lock()
				result.Failed[id] = err
				mu.Unlock()
				return nil
			}
			mu.Lock()
			result.Updated = append(result.Updated, id)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().
		Int("updated", len(result.Updated)).
		Int("failed", len(result.Failed)).
		Msg("bulk policy recompute finished")
	return result, nil
}

// =============================================================================
// COST & DEMAND
// =============================================================================

func (s *InventoryService) ComputeCGI(ctx context.Context, articleID int64) (*domain.CostBreakdown, error) {
	article, terms, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	policy, err := s.activePolicy(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return s.costs.Compute(article, terms, policy)
}

// DemandStatistics summarises the article's daily sales over the configured window.
// Cached forecasts are keyed by stock on hand and a fingerprint of the window's sale
// lines, so any change to either is recomputed.
func (s *InventoryService) DemandStatistics(ctx context.Context, articleID int64) (*domain.DemandForecast, error) {
	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	windowStart := s.demand.WindowStart(s.now())
	fingerprint, err := s.store.SalesFingerprint(ctx, articleID, windowStart)
	if err != nil {
		return nil, err
	}
	key := cache.ForecastKey{
		ArticleID:   articleID,
		WindowStart: windowStart,
		StockOnHand: article.StockOnHand,
		Sales:       fingerprint,
	}

	if cached, ok, err := s.forecasts.Get(ctx, key); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Int64("article_id", articleID).Msg("inventory: cache get forecast failed")
	}

	points, err := s.store.DailyDemand(ctx, articleID, windowStart)
	if err != nil {
		return nil, err
	}

	forecast := s.demand.Compute(articleID, windowStart, points, article.StockOnHand)
	if err := s.forecasts.Set(ctx, key, &forecast); err != nil {
		log.Warn().Err(err).Int64("article_id", articleID).Msg("inventory: cache set forecast failed")
	}
	return &forecast, nil
}

// =============================================================================
// REPLENISHMENT
// =============================================================================

// NeedsReorder scans every article afresh; purchase orders and stock change outside
// this service, so the result is never cached.
func (s *InventoryService) NeedsReorder(ctx context.Context) ([]*domain.Article, error) {
	return s.selectArticles(ctx, inventory.NeedsReorder)
}

func (s *InventoryService) BelowSafetyStock(ctx context.Context) ([]*domain.Article, error) {
	return s.selectArticles(ctx, inventory.BelowSafetyStock)
}

func (s *InventoryService) selectArticles(ctx context.Context, selector func([]inventory.Candidate) []int64) ([]*domain.Article, error) {
	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Article, len(candidates))
	for _, c := range candidates {
		byID[c.Article.ID] = c.Article
	}

	ids := selector(candidates)
	result := make([]*domain.Article, 0, len(ids))
	for _, id := range ids {
		result = append(result, byID[id])
	}
	return result, nil
}

// candidates pairs each article, in insertion order, with its active policy and open-order flag
func (s *InventoryService) candidates(ctx context.Context) ([]inventory.Candidate, error) {
	articles, err := s.store.ListArticles(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.store.ActivePolicies(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.store.OpenOrderArticles(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]inventory.Candidate, 0, len(articles))
	for _, a := range articles {
		candidates = append(candidates, inventory.Candidate{
			Article:      a,
			ActivePolicy: active[a.ID],
			HasOpenOrder: open[a.ID],
		})
	}
	return candidates, nil
}

// ReportRows builds one report line per article with its policy, CGI and scan flags
func (s *InventoryService) ReportRows(ctx context.Context) ([]report.Row, error) {
	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}

	reorder := toSet(inventory.NeedsReorder(candidates))
	belowSS := toSet(inventory.BelowSafetyStock(candidates))

	rows := make([]report.Row, 0, len(candidates))
	for _, c := range candidates {
		row := report.Row{
			Article:          c.Article,
			Policy:           c.ActivePolicy,
			NeedsReorder:     reorder[c.Article.ID],
			BelowSafetyStock: belowSS[c.Article.ID],
		}
		if c.ActivePolicy != nil {
			terms, err := s.defaultTerms(ctx, c.Article)
			if err != nil {
				return nil, err
			}
			if breakdown, err := s.costs.Compute(c.Article, terms, c.ActivePolicy); err == nil {
				total := breakdown.Total
				row.CostTotal = &total
			} else {
				log.Debug().Err(err).Int64("article_id", c.Article.ID).Msg("report: cgi unavailable")
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// =============================================================================
// ARTICLE MAINTENANCE
// =============================================================================

// AssignDefaultSupplier links the article to a supplier with active terms and recomputes its policy
func (s *InventoryService) AssignDefaultSupplier(ctx context.Context, articleID, supplierID int64) (*domain.InventoryPolicyRecord, error) {
	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article.Discontinued() {
		return nil, domain.Precondition(domain.CodeAlreadyDiscontinued, articleID, "discontinued_at",
			"article is discontinued")
	}

	terms, err := s.store.GetTerms(ctx, articleID, supplierID)
	if err != nil {
		return nil, err
	}
	if !terms.Active() {
		return nil, domain.Precondition(domain.CodeSupplierDiscontinued, articleID, "supplier_terms",
			fmt.Sprintf("terms with supplier %d are discontinued", supplierID))
	}

	if err := s.store.SetDefaultSupplier(ctx, articleID, supplierID); err != nil {
		return nil, err
	}
	log.Info().Int64("article_id", articleID).Int64("supplier_id", supplierID).Msg("default supplier assigned")

	return s.RecomputePolicy(ctx, articleID)
}

// AdjustStock removes qty units from stock on hand
func (s *InventoryService) AdjustStock(ctx context.Context, articleID int64, qty int) (*domain.Article, error) {
	if qty <= 0 {
		return nil, domain.Precondition(domain.CodeInvalidAdjustment, articleID, "quantity",
			"adjustment quantity must be greater than zero")
	}

	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if qty > article.StockOnHand {
		return nil, domain.Precondition(domain.CodeInsufficientStock, articleID, "quantity",
			fmt.Sprintf("cannot remove %d units, only %d on hand", qty, article.StockOnHand))
	}

	if err := s.store.DecreaseStock(ctx, articleID, qty); err != nil {
		return nil, err
	}
	s.invalidate(ctx, articleID)

	return s.store.GetArticle(ctx, articleID)
}

// DiscontinueArticle retires an article that has no stock and no open purchase order
func (s *InventoryService) DiscontinueArticle(ctx context.Context, articleID int64) (*domain.Article, error) {
	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article.Discontinued() {
		return nil, domain.Precondition(domain.CodeAlreadyDiscontinued, articleID, "discontinued_at",
			"article is already discontinued")
	}
	if article.StockOnHand > 0 {
		return nil, domain.Precondition(domain.CodeStockRemaining, articleID, "stock_on_hand",
			fmt.Sprintf("%d units still on hand", article.StockOnHand))
	}

	open, err := s.store.HasOpenOrder(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, domain.Precondition(domain.CodeOpenPurchaseOrders, articleID, "purchase_orders",
			"article is referenced by a pending or sent purchase order")
	}

	if err := s.store.Discontinue(ctx, articleID, s.now()); err != nil {
		return nil, err
	}
	s.invalidate(ctx, articleID)
	log.Info().Int64("article_id", articleID).Msg("article discontinued")

	return s.store.GetArticle(ctx, articleID)
}

// =============================================================================
// HELPERS
// =============================================================================

// loadArticle returns the article and its default-supplier terms; terms is nil when no link exists
func (s *InventoryService) loadArticle(ctx context.Context, articleID int64) (*domain.Article, *domain.SupplierTerms, error) {
	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, nil, err
	}
	terms, err := s.defaultTerms(ctx, article)
	if err != nil {
		return nil, nil, err
	}
	return article, terms, nil
}

func (s *InventoryService) defaultTerms(ctx context.Context, article *domain.Article) (*domain.SupplierTerms, error) {
	if article.DefaultSupplierID == nil {
		return nil, nil
	}
	terms, err := s.store.GetTerms(ctx, article.ID, *article.DefaultSupplierID)
	if domain.IsNotFound(err) {
		return nil, nil
	}
	return terms, err
}

func (s *InventoryService) activePolicy(ctx context.Context, articleID int64) (*domain.InventoryPolicyRecord, error) {
	active, err := s.store.ListActivePolicies(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}
	return &active[0], nil
}

func (s *InventoryService) invalidate(ctx context.Context, articleID int64) {
	if err := s.forecasts.Invalidate(ctx, articleID); err != nil {
		log.Warn().Err(err).Int64("article_id", articleID).Msg("inventory: cache invalidate forecast failed")
	}
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
