package inventory

import "github.com/andresuchdata/stockline/internal/domain"

// Candidate is one article as seen by the replenishment scans
type Candidate struct {
	Article      *domain.Article
	ActivePolicy *domain.InventoryPolicyRecord
	HasOpenOrder bool // at least one Pending or Sent purchase order references the article
}

// NeedsReorder returns the fixed-lot articles without an open order whose stock is at or
// below the reorder point of their active policy. Input order is preserved.
func NeedsReorder(candidates []Candidate) []int64 {
	return selectArticles(candidates, func(c Candidate) bool {
		if c.HasOpenOrder || c.Article.Model != domain.ModelFixedLot {
			return false
		}
		rp := c.ActivePolicy.ReorderPoint
		return rp != nil && c.Article.StockOnHand <= *rp
	})
}

// BelowSafetyStock returns the articles whose stock is at or below the safety stock of
// their active policy, regardless of model. Input order is preserved.
func BelowSafetyStock(candidates []Candidate) []int64 {
	return selectArticles(candidates, func(c Candidate) bool {
		ss := c.ActivePolicy.SafetyStock
		return ss != nil && c.Article.StockOnHand <= *ss
	})
}

func selectArticles(candidates []Candidate, match func(Candidate) bool) []int64 {
	ids := make([]int64, 0)
	seen := make(map[int64]struct{}, len(candidates))

	for _, c := range candidates {
		if c.Article == nil || c.Article.Discontinued() || !c.ActivePolicy.Active() {
			continue
		}
		if c.ActivePolicy.ArticleID != c.Article.ID {
			continue
		}
		if _, dup := seen[c.Article.ID]; dup {
			continue
		}
		if match(c) {
			seen[c.Article.ID] = struct{}{}
			ids = append(ids, c.Article.ID)
		}
	}

	return ids
}
