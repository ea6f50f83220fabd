package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTableCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "articles.csv")
	content := "id,name,stock_on_hand\n1,Bolt,10\n2, Nut ,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "stock_on_hand"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Column(" NAME "))
	assert.Equal(t, -1, table.Column("holding_cost"))
}

func TestReadTableXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"sold_at", "article_id", "quantity"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2025-03-01", 1, 4}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	found, ok := findTable(dir, "sales")
	require.True(t, ok)
	assert.Equal(t, path, found)

	table, err := ReadTable(found)
	require.NoError(t, err)
	assert.Equal(t, []string{"sold_at", "article_id", "quantity"}, table.Header)
	assert.Equal(t, [][]string{{"2025-03-01", "1", "4"}}, table.Rows)
}

func TestFindTableMissing(t *testing.T) {
	_, ok := findTable(t.TempDir(), "suppliers")
	assert.False(t, ok)
}

func TestRowArgs(t *testing.T) {
	table := &Table{Header: []string{"name", "id", "review_period_days"}}
	indexes, err := columnIndexes(table, []string{"id", "name", "review_period_days"})
	require.NoError(t, err)

	args := rowArgs([]string{"Bolt", "3", " "}, indexes)
	assert.Equal(t, []interface{}{"3", "Bolt", nil}, args)

	args = rowArgs([]string{"Nut", "4"}, indexes)
	assert.Nil(t, args[2])

	_, err = columnIndexes(table, []string{"holding_cost"})
	assert.ErrorContains(t, err, "holding_cost")
}

func TestRowRef(t *testing.T) {
	sale := rowContent("sales", []interface{}{"2025-03-01", "1", "4"})

	assert.Equal(t, rowRef(sale, 1), rowRef(rowContent("sales", []interface{}{"2025-03-01", "1", "4"}), 1))
	assert.Len(t, rowRef(sale, 1), 32)

	// a second identical row in the same file is a separate sale
	assert.NotEqual(t, rowRef(sale, 1), rowRef(sale, 2))

	assert.NotEqual(t, rowRef(sale, 1), rowRef(rowContent("sales", []interface{}{"2025-03-01", "1", "5"}), 1))
	assert.NotEqual(t, rowRef(sale, 1), rowRef(rowContent("purchase_orders", []interface{}{"2025-03-01", "1", "4"}), 1))
	assert.NotEqual(t,
		rowRef(rowContent("sales", []interface{}{"1", nil, "2"}), 1),
		rowRef(rowContent("sales", []interface{}{"1", "2", nil}), 1))
}

func TestParseTimestamp(t *testing.T) {
	got, err := parseTimestamp("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseTimestamp("2025-03-01T10:15:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	// 45717 is 2025-03-01 in spreadsheet serial days
	got, err = parseTimestamp("45717")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseTimestamp(nil)
	assert.Error(t, err)
}

func TestBlank(t *testing.T) {
	assert.True(t, blank([]string{"", "  "}))
	assert.False(t, blank([]string{"", "x"}))
}
