package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.cells()); err != nil {
			return fmt.Errorf("write csv row for article %d: %w", row.Article.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
