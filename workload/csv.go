package workload

import (
	"encoding/csv"
	"os"
)

// WriteCSV writes rows to path in the §6 trace format (no header).
func WriteCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, r := range rows {
		if err := w.Write(r.CSVRecord()); err != nil {
			return err
		}
	}
	return nil
}
