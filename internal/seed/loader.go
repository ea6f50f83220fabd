// Package seed loads master data, sales history and purchase orders from CSV or XLSX files.
package seed

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// insertFunc writes one row. ref identifies the row across runs; it reports false
// when the row was already loaded by an earlier run.
type insertFunc func(ctx context.Context, tx *sqlx.Tx, ref string, args []interface{}) (bool, error)

type tableSpec struct {
	file    string
	columns []string
	insert  insertFunc
}

// Result counts the rows written per file. Sales and purchase orders loaded by an
// earlier run are skipped and not counted.
type Result map[string]int

func specs() []tableSpec {
	return []tableSpec{
		{
			file:    "suppliers",
			columns: []string{"id", "name"},
			insert: execInsert(`INSERT INTO suppliers (id, name) VALUES ($1, $2)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`),
		},
		{
			file: "articles",
			columns: []string{"id", "name", "stock_on_hand", "annual_demand", "holding_cost",
				"inventory_model", "review_period_days", "default_supplier_id"},
			insert: execInsert(`INSERT INTO articles (id, name, stock_on_hand, annual_demand, holding_cost,
					inventory_model, review_period_days, default_supplier_id)
				VALUES ($1, $2, $3, $4, $5, COALESCE($6, 'FixedLot'), $7, $8)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, stock_on_hand = EXCLUDED.stock_on_hand,
					annual_demand = EXCLUDED.annual_demand, holding_cost = EXCLUDED.holding_cost,
					inventory_model = EXCLUDED.inventory_model, review_period_days = EXCLUDED.review_period_days,
					default_supplier_id = EXCLUDED.default_supplier_id`),
		},
		{
			file:    "supplier_terms",
			columns: []string{"article_id", "supplier_id", "purchase_cost", "order_cost", "lead_time_days"},
			insert: execInsert(`INSERT INTO supplier_terms (article_id, supplier_id, purchase_cost, order_cost, lead_time_days)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (article_id, supplier_id) DO UPDATE SET purchase_cost = EXCLUDED.purchase_cost,
					order_cost = EXCLUDED.order_cost, lead_time_days = EXCLUDED.lead_time_days`),
		},
		{
			file:    "sales",
			columns: []string{"sold_at", "article_id", "quantity"},
			insert:  insertSale,
		},
		{
			file:    "purchase_orders",
			columns: []string{"supplier_id", "status", "article_id", "quantity"},
			insert:  insertPurchaseOrder,
		},
	}
}

// Load reads every known file present in dir and writes it in one transaction.
// Missing files are skipped.
func Load(ctx context.Context, db *postgres.DB, dir string) (Result, error) {
	result := make(Result)

	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, spec := range specs() {
			path, ok := findTable(dir, spec.file)
			if !ok {
				log.Debug().Str("file", spec.file).Str("dir", dir).Msg("seed file not found, skipping")
				continue
			}

			table, err := ReadTable(path)
			if err != nil {
				return err
			}

			n, err := loadTable(ctx, tx, spec, table)
			if err != nil {
				return fmt.Errorf("failed to seed %s: %w", spec.file, err)
			}
			result[spec.file] = n
			log.Info().Str("file", path).Int("rows", n).Msg("seeded")
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadTable(ctx context.Context, tx *sqlx.Tx, spec tableSpec, table *Table) (int, error) {
	indexes, err := columnIndexes(table, spec.columns)
	if err != nil {
		return 0, err
	}

	loaded := 0
	seen := make(map[string]int)
	for i, record := range table.Rows {
		if blank(record) {
			continue
		}
		args := rowArgs(record, indexes)
		content := rowContent(spec.file, args)
		seen[content]++

		inserted, err := spec.insert(ctx, tx, rowRef(content, seen[content]), args)
		if err != nil {
			return loaded, fmt.Errorf("row %d: %w", i+2, err)
		}
		if inserted {
			loaded++
		}
	}
	return loaded, nil
}

// rowContent is the file name followed by the row's values
func rowContent(file string, args []interface{}) string {
	var b strings.Builder
	b.WriteString(file)
	for _, arg := range args {
		b.WriteByte(0x1f)
		if arg != nil {
			fmt.Fprint(&b, arg)
		}
	}
	return b.String()
}

// rowRef derives a stable key from a row's content and how many identical rows precede
// it, so a file can be loaded again without duplicating history while repeated
// identical rows in one file stay distinct.
func rowRef(content string, occurrence int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x1e%d", content, occurrence)))
	return hex.EncodeToString(sum[:16])
}

func columnIndexes(table *Table, columns []string) ([]int, error) {
	indexes := make([]int, len(columns))
	for i, col := range columns {
		idx := table.Column(col)
		if idx < 0 {
			return nil, fmt.Errorf("column %q missing from header", col)
		}
		indexes[i] = idx
	}
	return indexes, nil
}

// rowArgs picks the columns in order; empty cells become NULL
func rowArgs(record []string, indexes []int) []interface{} {
	args := make([]interface{}, len(indexes))
	for i, idx := range indexes {
		if idx >= len(record) {
			args[i] = nil
			continue
		}
		args[i] = nullIfEmpty(record[idx])
	}
	return args
}

func nullIfEmpty(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// execInsert runs an upsert keyed by the row's own ids
func execInsert(query string) insertFunc {
	return func(ctx context.Context, tx *sqlx.Tx, _ string, args []interface{}) (bool, error) {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, err
		}
		return true, nil
	}
}

// insertHeader inserts a header row guarded by source_ref and returns its id.
// ok is false when the ref was already present.
func insertHeader(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (id int64, ok bool, err error) {
	err = tx.QueryRowxContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// insertSale records one sale with a single line
func insertSale(ctx context.Context, tx *sqlx.Tx, ref string, args []interface{}) (bool, error) {
	soldAt, err := parseTimestamp(args[0])
	if err != nil {
		return false, err
	}

	saleID, ok, err := insertHeader(ctx, tx,
		`INSERT INTO sales (sold_at, source_ref) VALUES ($1, $2)
			ON CONFLICT (source_ref) DO NOTHING RETURNING id`, soldAt, ref)
	if err != nil || !ok {
		return false, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sale_lines (sale_id, article_id, quantity) VALUES ($1, $2, $3)`,
		saleID, args[1], args[2])
	return err == nil, err
}

// insertPurchaseOrder records one order with a single line; status is a label such as "Sent"
func insertPurchaseOrder(ctx context.Context, tx *sqlx.Tx, ref string, args []interface{}) (bool, error) {
	label, _ := args[1].(string)
	status, ok := domain.ParsePOStatus(label)
	if !ok {
		return false, fmt.Errorf("unknown purchase order status %q", label)
	}

	orderID, ok, err := insertHeader(ctx, tx,
		`INSERT INTO purchase_orders (supplier_id, status, source_ref) VALUES ($1, $2, $3)
			ON CONFLICT (source_ref) DO NOTHING RETURNING id`, args[0], int(status), ref)
	if err != nil || !ok {
		return false, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO purchase_order_lines (purchase_order_id, article_id, quantity) VALUES ($1, $2, $3)`,
		orderID, args[2], args[3])
	return err == nil, err
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseTimestamp(v interface{}) (time.Time, error) {
	s, _ := v.(string)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		// spreadsheet serial date
		return time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC).Add(time.Duration(serial * 24 * float64(time.Hour))), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// resetSequences moves the id sequences past explicitly inserted ids
func resetSequences(ctx context.Context, tx *sqlx.Tx) error {
	for _, table := range []string{"suppliers", "articles"} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
			table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}
