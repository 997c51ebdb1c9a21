package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Result is the positive-class probability predicted for one test row.
type Result struct {
	ID       int
	Positive float64
}

// ResultHeader is the first row of every results file.
var ResultHeader = []string{"ID", "Pred"}

// WriteResults writes an "ID,Pred" CSV in the given order.
func WriteResults(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, 2)
	for _, r := range results {
		row[0] = strconv.Itoa(r.ID)
		row[1] = strconv.FormatFloat(r.Positive, 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write result %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultsFile creates path (and its directory) and writes results to it.
func WriteResultsFile(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create result directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file %s: %w", path, err)
	}
	if err := WriteResults(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
