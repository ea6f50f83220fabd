package inventory_test

import (
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// fixedLotArticle is the reference article: D=90, H=50, default supplier 7
func fixedLotArticle() *domain.Article {
	return &domain.Article{
		ID:                1,
		Name:              "Widget",
		StockOnHand:       10,
		AnnualDemand:      ptr(90.0),
		HoldingCost:       ptr(50.0),
		Model:             domain.ModelFixedLot,
		DefaultSupplierID: ptr(int64(7)),
	}
}

func fixedIntervalArticle() *domain.Article {
	a := fixedLotArticle()
	a.Model = domain.ModelFixedInterval
	a.ReviewPeriodDays = ptr(10)
	return a
}

// referenceTerms: Co=800, C=12, lead time 5 days
func referenceTerms() *domain.SupplierTerms {
	return &domain.SupplierTerms{
		ArticleID:    1,
		SupplierID:   7,
		PurchaseCost: 12,
		OrderCost:    800,
		LeadTimeDays: ptr(5),
	}
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}
