package purchases

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// WriteCSV renders purchases as a CSV document for the export endpoint.
func WriteCSV(items []Purchase) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "provider_id", "branch_id", "user_id", "total", "created_at"}); err != nil {
		return nil, err
	}
	for _, p := range items {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			strconv.FormatInt(p.ProviderID, 10),
			strconv.FormatInt(p.BranchID, 10),
			strconv.FormatInt(p.UserID, 10),
			strconv.FormatFloat(p.Total, 'f', 2, 64),
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
