// Package report renders the per-article policy overview as CSV or XLSX.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/stockline/internal/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

// ContentType is the MIME type used when uploading the rendered report
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Row is one article line of the policy report. Policy and CostTotal are nil when the
// article has no active policy or its CGI could not be evaluated.
type Row struct {
	Article          *domain.Article
	Policy           *domain.InventoryPolicyRecord
	CostTotal        *float64
	NeedsReorder     bool
	BelowSafetyStock bool
}

var header = []string{
	"article_id", "name", "model", "stock_on_hand",
	"optimal_lot_size", "reorder_point", "safety_stock", "max_inventory_level",
	"cgi_total", "needs_reorder", "below_safety_stock",
}

func (r Row) cells() []string {
	out := []string{
		strconv.FormatInt(r.Article.ID, 10),
		r.Article.Name,
		string(r.Article.Model),
		strconv.Itoa(r.Article.StockOnHand),
	}

	if r.Policy != nil {
		out = append(out,
			optionalInt(r.Policy.OptimalLotSize),
			optionalInt(r.Policy.ReorderPoint),
			optionalInt(r.Policy.SafetyStock),
			optionalInt(r.Policy.MaxInventoryLevel),
		)
	} else {
		out = append(out, "", "", "", "")
	}

	cost := ""
	if r.CostTotal != nil {
		cost = strconv.FormatFloat(*r.CostTotal, 'f', 2, 64)
	}

	return append(out, cost, strconv.FormatBool(r.NeedsReorder), strconv.FormatBool(r.BelowSafetyStock))
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// Write renders rows in the given format
func Write(w io.Writer, format Format, rows []Row) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	}
	return fmt.Errorf("unsupported report format %q", format)
}
