package sales

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// WriteCSV renders sales as a CSV document for the export endpoint.
func WriteCSV(items []Sale) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"invoice_number", "customer_id", "branch_id", "user_id", "total", "created_at"}); err != nil {
		return nil, err
	}
	for _, s := range items {
		record := []string{
			s.InvoiceNumber,
			strconv.FormatInt(s.CustomerID, 10),
			strconv.FormatInt(s.BranchID, 10),
			strconv.FormatInt(s.UserID, 10),
			strconv.FormatFloat(s.Total, 'f', 2, 64),
			s.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
