package products

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// WriteCSV renders products as a CSV document for the export endpoint.
func WriteCSV(items []Product) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"code", "name", "price", "stock", "min_stock"}); err != nil {
		return nil, err
	}
	for _, p := range items {
		record := []string{
			p.Code,
			p.Name,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.MinStock),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
