package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/repository"
	"github.com/andresuchdata/stockline/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func newStore() *memory.Store {
	s := memory.New()
	s.PutArticle(domain.Article{ID: 2, Name: "B", StockOnHand: 5})
	s.PutArticle(domain.Article{ID: 1, Name: "A", StockOnHand: 3})
	return s
}

func insertChange(articleID int64, at time.Time, supersede ...int64) *domain.PolicyChange {
	lot := 10
	change := &domain.PolicyChange{
		ArticleID: articleID,
		Insert: domain.InventoryPolicyRecord{
			ArticleID:      articleID,
			Model:          domain.ModelFixedLot,
			OptimalLotSize: &lot,
			CreatedAt:      at,
		},
	}
	for _, id := range supersede {
		change.Supersede = append(change.Supersede, domain.Supersession{RecordID: id, At: at})
	}
	return change
}

func TestStore_ListArticlesKeepsInsertionOrder(t *testing.T) {
	s := newStore()
	s.PutArticle(domain.Article{ID: 2, Name: "B2"})

	articles, err := s.ListArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, int64(2), articles[0].ID)
	assert.Equal(t, "B2", articles[0].Name)
	assert.Equal(t, int64(1), articles[1].ID)
}

func TestStore_ApplyPolicyChange_SupersedeThenInsert(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	first, err := s.ApplyPolicyChange(ctx, insertChange(1, t0))
	require.NoError(t, err)

	later := t0.Add(time.Hour)
	second, err := s.ApplyPolicyChange(ctx, insertChange(1, later, first.ID))
	require.NoError(t, err)

	active, err := s.ListActivePolicies(ctx, 1)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	history, err := s.PolicyHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[1].ID)
	require.NotNil(t, history[1].SupersededAt)
	assert.Equal(t, later, *history[1].SupersededAt)
}

func TestStore_ApplyPolicyChange_StalePlanRejected(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	_, err := s.ApplyPolicyChange(ctx, insertChange(1, t0))
	require.NoError(t, err)

	// plan computed before the first record existed
	_, err = s.ApplyPolicyChange(ctx, insertChange(1, t0.Add(time.Minute)))
	assert.ErrorIs(t, err, repository.ErrConcurrentModification)

	// plan naming a record that is not active
	_, err = s.ApplyPolicyChange(ctx, insertChange(1, t0.Add(time.Minute), 1, 99))
	assert.ErrorIs(t, err, repository.ErrConcurrentModification)

	active, err := s.ListActivePolicies(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, active, 1, "rejected changes must not write")
}

func TestStore_ApplyPolicyChange_UnknownArticle(t *testing.T) {
	_, err := newStore().ApplyPolicyChange(context.Background(), insertChange(42, t0))
	assert.True(t, domain.IsNotFound(err))
}

func TestStore_DailyDemandGroupsByDay(t *testing.T) {
	s := newStore()
	s.RecordSale(1, t0.Add(-48*time.Hour), 100)
	s.RecordSale(1, t0, 2)
	s.RecordSale(1, t0.Add(3*time.Hour), 3)
	s.RecordSale(1, t0.Add(24*time.Hour), 4)
	s.RecordSale(2, t0, 50)

	points, err := s.DailyDemand(context.Background(), 1, t0.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 5, points[0].Quantity)
	assert.Equal(t, 4, points[1].Quantity)
	assert.True(t, points[0].Date.Before(points[1].Date))
}

func TestStore_SalesFingerprint(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.RecordSale(1, t0.Add(-48*time.Hour), 100)
	s.RecordSale(1, t0, 2)

	before, err := s.SalesFingerprint(ctx, 1, t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, before.Lines)
	assert.Equal(t, 2, before.Quantity)
	require.NotNil(t, before.LastSoldAt)
	assert.Equal(t, t0, *before.LastSoldAt)

	s.RecordSale(1, t0.Add(time.Hour), 3)
	after, err := s.SalesFingerprint(ctx, 1, t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
	assert.Equal(t, 5, after.Quantity)

	empty, err := s.SalesFingerprint(ctx, 2, t0)
	require.NoError(t, err)
	assert.Equal(t, domain.SalesFingerprint{}, empty)
}

func TestStore_OpenOrders(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.AddPurchaseOrder(1, domain.POReceived)
	s.AddPurchaseOrder(2, domain.POSent)

	open, err := s.OpenOrderArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{2: true}, open)

	has, err := s.HasOpenOrder(ctx, 1)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStore_DecreaseStock(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	require.NoError(t, s.DecreaseStock(ctx, 1, 2))
	err := s.DecreaseStock(ctx, 1, 2)
	assert.Equal(t, domain.CodeInsufficientStock, domain.CodeOf(err))

	a, err := s.GetArticle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, a.StockOnHand)
}
