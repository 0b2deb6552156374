package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultOutput is the report file written when no path is configured.
const DefaultOutput = "output/customer_revenue_output.csv"

// Header is the CSV header of the report.
var Header = []string{"customer_id", "full_name", "total_orders", "total_quantity", "total_revenue"}

// WriteCSV writes the rows as CSV with revenue in two decimals.
func WriteCSV(w io.Writer, rows []CustomerRevenueRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		err := cw.Write([]string{
			r.CustomerID,
			r.FullName,
			strconv.FormatInt(r.TotalOrders, 10),
			strconv.FormatInt(r.TotalQuantity, 10),
			r.TotalRevenue.StringFixed(2),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFile writes the report to path, creating its directory. The file is
// replaced atomically so readers never see a partial report.
func ExportFile(path string, rows []CustomerRevenueRow) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
