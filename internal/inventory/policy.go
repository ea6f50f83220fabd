package inventory

import (
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
)

// PolicyCalculator derives fixed-lot and fixed-interval replenishment policies
type PolicyCalculator struct {
	params Parameters
	now    func() time.Time
}

// NewPolicyCalculator creates a new policy calculator
func NewPolicyCalculator(params Parameters) *PolicyCalculator {
	return &PolicyCalculator{
		params: params.withDefaults(),
		now:    time.Now,
	}
}

// WithClock returns a copy of the calculator that stamps records with now()
func (pc *PolicyCalculator) WithClock(now func() time.Time) *PolicyCalculator {
	c := *pc
	c.now = now
	return &c
}

// Compute validates the article and its default supplier terms, derives the policy for
// the article's model and returns the new record together with the supersession of every
// record in active that is still open. terms may be nil when no link exists.
func (pc *PolicyCalculator) Compute(article *domain.Article, terms *domain.SupplierTerms, active []domain.InventoryPolicyRecord) (*domain.PolicyChange, error) {
	if err := pc.validate(article, terms); err != nil {
		return nil, err
	}

	var (
		record *domain.InventoryPolicyRecord
		err    error
	)
	switch article.Model {
	case domain.ModelFixedLot:
		record, err = pc.fixedLot(article, terms)
	case domain.ModelFixedInterval:
		record, err = pc.fixedInterval(article, terms)
	}
	if err != nil {
		return nil, err
	}

	now := pc.now()
	record.ArticleID = article.ID
	record.Model = article.Model
	record.CreatedAt = now

	change := &domain.PolicyChange{
		ArticleID: article.ID,
		Insert:    *record,
	}
	for _, r := range active {
		if r.ArticleID == article.ID && r.Active() {
			change.Supersede = append(change.Supersede, domain.Supersession{RecordID: r.ID, At: now})
		}
	}

	return change, nil
}

// validate checks the preconditions in their reporting order
func (pc *PolicyCalculator) validate(article *domain.Article, terms *domain.SupplierTerms) error {
	id := article.ID

	if article.DefaultSupplierID == nil {
		return domain.Precondition(domain.CodeNoDefaultSupplier, id, "default_supplier_id",
			"article has no default supplier")
	}
	if article.AnnualDemand == nil || *article.AnnualDemand <= 0 {
		return domain.Precondition(domain.CodeInvalidDemand, id, "annual_demand",
			"annual demand must be greater than zero")
	}
	if article.HoldingCost == nil || *article.HoldingCost <= 0 {
		return domain.Precondition(domain.CodeInvalidHoldingCost, id, "holding_cost",
			"holding cost must be greater than zero")
	}
	if !linked(article, terms) {
		return domain.Precondition(domain.CodeMissingSupplierTerms, id, "supplier_terms",
			fmt.Sprintf("no active terms for default supplier %d", *article.DefaultSupplierID))
	}

	switch article.Model {
	case domain.ModelFixedInterval:
		if article.ReviewPeriodDays == nil || *article.ReviewPeriodDays <= 0 {
			return domain.Precondition(domain.CodeInvalidReviewPeriod, id, "review_period_days",
				"review period must be greater than zero")
		}
	case domain.ModelFixedLot:
		if terms.OrderCost <= 0 {
			return domain.Precondition(domain.CodeInvalidOrderCost, id, "order_cost",
				"cost per order must be greater than zero")
		}
	default:
		return domain.Precondition(domain.CodeUnsupportedModel, id, "inventory_model",
			fmt.Sprintf("unsupported inventory model %q", article.Model))
	}

	return nil
}

// linked reports whether terms is the active link between the article and its default supplier
func linked(article *domain.Article, terms *domain.SupplierTerms) bool {
	return terms.Active() &&
		terms.ArticleID == article.ID &&
		terms.SupplierID == *article.DefaultSupplierID
}

func (pc *PolicyCalculator) dailyDemand(article *domain.Article) (mean, sigma float64) {
	mean = *article.AnnualDemand / pc.params.DaysPerYear
	return mean, mean * pc.params.DemandVariability
}

// safetyStock = ceil(Z × σ_daily × √days)
func (pc *PolicyCalculator) safetyStock(sigma float64, days int) int {
	return int(math.Ceil(pc.params.ServiceLevelZ * sigma * math.Sqrt(float64(days))))
}

func (pc *PolicyCalculator) fixedLot(article *domain.Article, terms *domain.SupplierTerms) (*domain.InventoryPolicyRecord, error) {
	demand := *article.AnnualDemand
	daily, sigma := pc.dailyDemand(article)
	leadTime := terms.LeadTime()

	// EOQ = √(2·D·Co / H)
	lot := int(math.Round(math.Sqrt(2 * demand * terms.OrderCost / *article.HoldingCost)))
	if lot <= 0 {
		return nil, domain.Computation(domain.CodeInvalidLotSize, article.ID, "optimal_lot_size",
			fmt.Sprintf("optimal lot size %d is not positive", lot))
	}

	safety := pc.safetyStock(sigma, leadTime)
	reorderPoint := int(math.Round(daily*float64(leadTime))) + safety

	return &domain.InventoryPolicyRecord{
		OptimalLotSize: &lot,
		ReorderPoint:   &reorderPoint,
		SafetyStock:    &safety,
	}, nil
}

func (pc *PolicyCalculator) fixedInterval(article *domain.Article, terms *domain.SupplierTerms) (*domain.InventoryPolicyRecord, error) {
	daily, sigma := pc.dailyDemand(article)

	riskPeriod := terms.LeadTime() + *article.ReviewPeriodDays
	if riskPeriod <= 0 {
		return nil, domain.Computation(domain.CodeInvalidRiskPeriod, article.ID, "risk_period",
			fmt.Sprintf("risk period %d is not positive", riskPeriod))
	}

	safety := pc.safetyStock(sigma, riskPeriod)
	maxLevel := int(math.Round(daily*float64(riskPeriod))) + safety

	return &domain.InventoryPolicyRecord{
		MaxInventoryLevel: &maxLevel,
		SafetyStock:       &safety,
	}, nil
}
