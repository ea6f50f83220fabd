// internal/domain/models.go
package domain

import "time"

// InventoryModel selects the replenishment policy used for an article
type InventoryModel string

const (
	ModelFixedLot      InventoryModel = "FixedLot"
	ModelFixedInterval InventoryModel = "FixedInterval"
)

// Valid reports whether m is a known inventory model
func (m InventoryModel) Valid() bool {
	return m == ModelFixedLot || m == ModelFixedInterval
}

// Article is the read-only catalog snapshot the engine works from
type Article struct {
	ID                int64          `json:"id" db:"id"`
	Name              string         `json:"name" db:"name"`
	StockOnHand       int            `json:"stock_on_hand" db:"stock_on_hand"`
	AnnualDemand      *float64       `json:"annual_demand" db:"annual_demand"`
	HoldingCost       *float64       `json:"holding_cost" db:"holding_cost"`
	Model             InventoryModel `json:"inventory_model" db:"inventory_model"`
	ReviewPeriodDays  *int           `json:"review_period_days" db:"review_period_days"`
	DefaultSupplierID *int64         `json:"default_supplier_id" db:"default_supplier_id"`
	DiscontinuedAt    *time.Time     `json:"discontinued_at" db:"discontinued_at"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

// Discontinued reports whether the article has been retired from the catalog
func (a *Article) Discontinued() bool {
	return a.DiscontinuedAt != nil
}

// SupplierTerms holds the procurement terms for one (article, supplier) pair
type SupplierTerms struct {
	ArticleID      int64      `json:"article_id" db:"article_id"`
	SupplierID     int64      `json:"supplier_id" db:"supplier_id"`
	PurchaseCost   float64    `json:"purchase_cost" db:"purchase_cost"`
	OrderCost      float64    `json:"order_cost" db:"order_cost"`
	LeadTimeDays   *int       `json:"lead_time_days" db:"lead_time_days"`
	DiscontinuedAt *time.Time `json:"discontinued_at" db:"discontinued_at"`
}

// Active reports whether the supplier link is still in force
func (t *SupplierTerms) Active() bool {
	return t != nil && t.DiscontinuedAt == nil
}

// LeadTime returns the lead time in days, clamped to zero when absent or negative
func (t *SupplierTerms) LeadTime() int {
	if t == nil || t.LeadTimeDays == nil || *t.LeadTimeDays < 0 {
		return 0
	}
	return *t.LeadTimeDays
}

// InventoryPolicyRecord is one computed replenishment policy for an article.
// Only one record per article has a nil SupersededAt at any time.
type InventoryPolicyRecord struct {
	ID                int64          `json:"id" db:"id"`
	ArticleID         int64          `json:"article_id" db:"article_id"`
	Model             InventoryModel `json:"inventory_model" db:"inventory_model"`
	OptimalLotSize    *int           `json:"optimal_lot_size,omitempty" db:"optimal_lot_size"`
	ReorderPoint      *int           `json:"reorder_point,omitempty" db:"reorder_point"`
	SafetyStock       *int           `json:"safety_stock,omitempty" db:"safety_stock"`
	MaxInventoryLevel *int           `json:"max_inventory_level,omitempty" db:"max_inventory_level"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	SupersededAt      *time.Time     `json:"superseded_at" db:"superseded_at"`
}

// Active reports whether the record is the article's current policy
func (r *InventoryPolicyRecord) Active() bool {
	return r != nil && r.SupersededAt == nil
}

// Supersession retires a previously active policy record
type Supersession struct {
	RecordID int64     `json:"record_id"`
	At       time.Time `json:"at"`
}

// PolicyChange is the write batch produced by a policy calculation.
// Supersede must be applied before Insert, in the same transaction.
type PolicyChange struct {
	ArticleID int64                 `json:"article_id"`
	Supersede []Supersession        `json:"supersede"`
	Insert    InventoryPolicyRecord `json:"insert"`
}

// SalesFingerprint summarises the sale lines of an article since an instant. Any new,
// removed or edited line changes at least one field.
type SalesFingerprint struct {
	Lines      int        `json:"lines" db:"lines"`
	Quantity   int        `json:"quantity" db:"quantity"`
	LastSoldAt *time.Time `json:"last_sold_at" db:"last_sold_at"`
}

// DailyDemandPoint is the quantity sold for an article on one calendar day
type DailyDemandPoint struct {
	Date     time.Time `json:"date" db:"day"`
	Quantity int       `json:"quantity" db:"quantity"`
}

// DemandForecast summarizes a trailing demand window. It is never persisted.
type DemandForecast struct {
	ArticleID     int64        `json:"article_id"`
	WindowStart   time.Time    `json:"window_start"`
	DailyMean     float64      `json:"daily_mean"`
	StdDev        float64      `json:"standard_deviation"`
	SampleDays    int          `json:"sample_day_count"`
	CoverageDays  CoverageDays `json:"coverage_days"`
	SmoothedDaily float64      `json:"smoothed_daily_forecast"`
	HorizonDays   int          `json:"horizon_days"`
	Forecast      float64      `json:"forecast"`
}

// CostBreakdown is the annual inventory cost (CGI) split by component
type CostBreakdown struct {
	ArticleID int64          `json:"article_id"`
	Model     InventoryModel `json:"inventory_model"`
	LotSize   int            `json:"lot_size"`
	Purchase  float64        `json:"purchase_cost"`
	Ordering  float64        `json:"ordering_cost"`
	Holding   float64        `json:"holding_cost"`
	Total     float64        `json:"total"`
}
