package inventory_test

import (
	"testing"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cgi(d, c, co, h float64, q int) float64 {
	return d*c + co*d/float64(q) + h*float64(q)/2
}

func activeFixedLot(lot int) *domain.InventoryPolicyRecord {
	return &domain.InventoryPolicyRecord{
		ID:             21,
		ArticleID:      1,
		Model:          domain.ModelFixedLot,
		OptimalLotSize: ptr(lot),
		ReorderPoint:   ptr(2),
		SafetyStock:    ptr(1),
		CreatedAt:      fixedNow,
	}
}

func TestCostEvaluator_FixedLot(t *testing.T) {
	got, err := inventory.NewCostEvaluator().Compute(fixedLotArticle(), referenceTerms(), activeFixedLot(54))
	require.NoError(t, err)

	assert.Equal(t, 54, got.LotSize)
	assert.InDelta(t, 1080.0, got.Purchase, 1e-9)
	assert.InDelta(t, 800.0*90/54, got.Ordering, 1e-9)
	assert.InDelta(t, 1350.0, got.Holding, 1e-9)
	assert.InDelta(t, cgi(90, 12, 800, 50, 54), got.Total, 1e-9)
	assert.GreaterOrEqual(t, got.Total, 0.0)
}

func TestCostEvaluator_EOQIsLocalMinimum(t *testing.T) {
	article := fixedLotArticle()
	terms := referenceTerms()

	change, err := newCalculator().Compute(article, terms, nil)
	require.NoError(t, err)
	eoq := *change.Insert.OptimalLotSize

	ce := inventory.NewCostEvaluator()
	at := func(q int) float64 {
		got, err := ce.Compute(article, terms, activeFixedLot(q))
		require.NoError(t, err)
		return got.Total
	}

	assert.LessOrEqual(t, at(eoq), at(eoq-1))
	assert.LessOrEqual(t, at(eoq), at(eoq+1))
}

func TestCostEvaluator_FixedIntervalUsesLiveStock(t *testing.T) {
	article := fixedIntervalArticle()
	article.StockOnHand = 40
	policy := &domain.InventoryPolicyRecord{
		ID:                22,
		ArticleID:         1,
		Model:             domain.ModelFixedInterval,
		MaxInventoryLevel: ptr(100),
		SafetyStock:       ptr(3),
	}

	got, err := inventory.NewCostEvaluator().Compute(article, referenceTerms(), policy)
	require.NoError(t, err)
	assert.Equal(t, 60, got.LotSize)
	assert.InDelta(t, cgi(90, 12, 800, 50, 60), got.Total, 1e-9)
}

func TestCostEvaluator_FixedIntervalNonPositiveQuantity(t *testing.T) {
	article := fixedIntervalArticle()
	article.StockOnHand = 150
	policy := &domain.InventoryPolicyRecord{
		ArticleID:         1,
		Model:             domain.ModelFixedInterval,
		MaxInventoryLevel: ptr(100),
	}

	_, err := inventory.NewCostEvaluator().Compute(article, referenceTerms(), policy)
	require.Error(t, err)
	assert.True(t, domain.IsComputation(err))
	assert.Equal(t, domain.CodeInvalidLotSize, domain.CodeOf(err))
}

func TestCostEvaluator_FixedIntervalMissingMaxLevel(t *testing.T) {
	policy := &domain.InventoryPolicyRecord{ArticleID: 1, Model: domain.ModelFixedInterval}

	_, err := inventory.NewCostEvaluator().Compute(fixedIntervalArticle(), referenceTerms(), policy)
	assert.Equal(t, domain.CodeIncompleteInventoryData, domain.CodeOf(err))
}

func TestCostEvaluator_NoActivePolicy(t *testing.T) {
	superseded := activeFixedLot(54)
	superseded.SupersededAt = ptr(fixedNow)

	for _, policy := range []*domain.InventoryPolicyRecord{nil, superseded} {
		_, err := inventory.NewCostEvaluator().Compute(fixedLotArticle(), referenceTerms(), policy)
		require.Error(t, err)
		assert.True(t, domain.IsPrecondition(err))
		assert.Equal(t, domain.CodeNoActivePolicy, domain.CodeOf(err))
	}
}

func TestCostEvaluator_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *domain.Article, tr *domain.SupplierTerms) *domain.SupplierTerms
		code   domain.ErrorCode
	}{
		{"no default supplier", func(a *domain.Article, tr *domain.SupplierTerms) *domain.SupplierTerms {
			a.DefaultSupplierID = nil
			return tr
		}, domain.CodeNoDefaultSupplier},
		{"invalid demand", func(a *domain.Article, tr *domain.SupplierTerms) *domain.SupplierTerms {
			a.AnnualDemand = ptr(-3.0)
			return tr
		}, domain.CodeInvalidDemand},
		{"invalid holding cost", func(a *domain.Article, tr *domain.SupplierTerms) *domain.SupplierTerms {
			a.HoldingCost = nil
			return tr
		}, domain.CodeInvalidHoldingCost},
		{"missing terms", func(a *domain.Article, tr *domain.SupplierTerms) *domain.SupplierTerms {
			return nil
		}, domain.CodeMissingSupplierTerms},
		{"zero purchase cost", func(a *domain.Article, tr *domain.SupplierTerms) *domain.SupplierTerms {
			tr.PurchaseCost = 0
			return tr
		}, domain.CodeInvalidCostParameters},
		{"zero order cost", func(a *domain.Article, tr *domain.SupplierTerms) *domain.SupplierTerms {
			tr.OrderCost = 0
			return tr
		}, domain.CodeInvalidCostParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article := fixedLotArticle()
			terms := tt.mutate(article, referenceTerms())

			_, err := inventory.NewCostEvaluator().Compute(article, terms, activeFixedLot(54))
			require.Error(t, err)
			assert.True(t, domain.IsPrecondition(err))
			assert.Equal(t, tt.code, domain.CodeOf(err))
		})
	}
}

func TestCostEvaluator_FixedLotWithoutLotSize(t *testing.T) {
	policy := activeFixedLot(0)
	policy.OptimalLotSize = nil

	_, err := inventory.NewCostEvaluator().Compute(fixedLotArticle(), referenceTerms(), policy)
	assert.Equal(t, domain.CodeInvalidLotSize, domain.CodeOf(err))
}
