package inventory

import (
	"fmt"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// CostEvaluator computes the total annual inventory cost (CGI) of the active policy
type CostEvaluator struct{}

// NewCostEvaluator creates a new cost evaluator
func NewCostEvaluator() *CostEvaluator {
	return &CostEvaluator{}
}

// Compute returns CGI = D×C + Co×D/Q + H×Q/2 for the article's active policy.
//
// Q is the stored optimal lot size for fixed-lot articles. For fixed-interval articles it is
// the replenishment implied right now, max inventory level minus current stock.
func (ce *CostEvaluator) Compute(article *domain.Article, terms *domain.SupplierTerms, policy *domain.InventoryPolicyRecord) (*domain.CostBreakdown, error) {
	id := article.ID

	if article.DefaultSupplierID == nil {
		return nil, domain.Precondition(domain.CodeNoDefaultSupplier, id, "default_supplier_id",
			"article has no default supplier")
	}
	if article.AnnualDemand == nil || *article.AnnualDemand <= 0 {
		return nil, domain.Precondition(domain.CodeInvalidDemand, id, "annual_demand",
			"annual demand must be greater than zero")
	}
	if article.HoldingCost == nil || *article.HoldingCost <= 0 {
		return nil, domain.Precondition(domain.CodeInvalidHoldingCost, id, "holding_cost",
			"holding cost must be greater than zero")
	}
	if !linked(article, terms) {
		return nil, domain.Precondition(domain.CodeMissingSupplierTerms, id, "supplier_terms",
			fmt.Sprintf("no active terms for default supplier %d", *article.DefaultSupplierID))
	}
	if !policy.Active() || policy.ArticleID != id {
		return nil, domain.Precondition(domain.CodeNoActivePolicy, id, "inventory_policy",
			"no active inventory model data")
	}
	if terms.PurchaseCost <= 0 || terms.OrderCost <= 0 {
		return nil, domain.Precondition(domain.CodeInvalidCostParameters, id, "purchase_cost,order_cost",
			"purchase cost and cost per order must be greater than zero")
	}

	q, err := lotSize(article, policy)
	if err != nil {
		return nil, err
	}

	d := decimal.NewFromFloat(*article.AnnualDemand)
	h := decimal.NewFromFloat(*article.HoldingCost)
	c := decimal.NewFromFloat(terms.PurchaseCost)
	co := decimal.NewFromFloat(terms.OrderCost)
	qd := decimal.NewFromInt(int64(q))

	purchase := d.Mul(c)
	ordering := co.Mul(d).Div(qd)
	holding := h.Mul(qd).Div(two)
	total := purchase.Add(ordering).Add(holding)

	return &domain.CostBreakdown{
		ArticleID: id,
		Model:     article.Model,
		LotSize:   q,
		Purchase:  purchase.InexactFloat64(),
		Ordering:  ordering.InexactFloat64(),
		Holding:   holding.InexactFloat64(),
		Total:     total.InexactFloat64(),
	}, nil
}

// lotSize resolves the decision quantity Q for the article's model
func lotSize(article *domain.Article, policy *domain.InventoryPolicyRecord) (int, error) {
	var q int

	switch article.Model {
	case domain.ModelFixedLot:
		if policy.OptimalLotSize != nil {
			q = *policy.OptimalLotSize
		}
	case domain.ModelFixedInterval:
		if policy.MaxInventoryLevel == nil {
			return 0, domain.Precondition(domain.CodeIncompleteInventoryData, article.ID, "max_inventory_level",
				"fixed-interval policy has no max inventory level")
		}
		q = *policy.MaxInventoryLevel - article.StockOnHand
	default:
		return 0, domain.Precondition(domain.CodeUnsupportedModel, article.ID, "inventory_model",
			fmt.Sprintf("unsupported inventory model %q", article.Model))
	}

	if q <= 0 {
		return 0, domain.Computation(domain.CodeInvalidLotSize, article.ID, "lot_size",
			fmt.Sprintf("lot size %d is not positive", q))
	}
	return q, nil
}
