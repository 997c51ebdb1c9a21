package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"
)

// LabeledReader streams "id,text,label" rows as dataset records. Rows with a
// field count other than three, or rows the CSV parser rejects, are reported
// as dataset.ErrMalformedRecord so the store skips them. A leading header row
// whose label column reads "label" or "sentiment" is skipped silently.
type LabeledReader struct {
	r      *csv.Reader
	closer io.Closer
	row    int
}

// NewLabeledReader wraps r.
func NewLabeledReader(r io.Reader) *LabeledReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return &LabeledReader{r: cr}
}

// OpenLabeled opens a labeled CSV file. Close it when done.
func OpenLabeled(path string) (*LabeledReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labeled records %s: %w", path, err)
	}
	lr := NewLabeledReader(f)
	lr.closer = f
	return lr, nil
}

// Next implements dataset.RecordStream.
func (l *LabeledReader) Next() (dataset.Record, error) {
	for {
		fields, err := l.r.Read()
		l.row++
		if errors.Is(err, io.EOF) {
			return dataset.Record{}, io.EOF
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return dataset.Record{}, fmt.Errorf("%w: %v", dataset.ErrMalformedRecord, perr)
		}
		if err != nil {
			return dataset.Record{}, err
		}
		if len(fields) != 3 {
			return dataset.Record{}, fmt.Errorf("%w: record %d has %d fields, want 3", dataset.ErrMalformedRecord, l.row, len(fields))
		}
		if l.row == 1 && isHeaderLabel(fields[2]) {
			continue
		}
		return dataset.Record{ID: fields[0], Text: fields[1], Label: fields[2]}, nil
	}
}

// Close releases the underlying file when the reader was opened from a path.
func (l *LabeledReader) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func isHeaderLabel(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, "label") || strings.EqualFold(s, "sentiment")
}

// LoadStore opens path and builds an example store from it.
func LoadStore(path string, opts ...dataset.StoreOption) (*dataset.Store, error) {
	lr, err := OpenLabeled(path)
	if err != nil {
		return nil, &dataset.ConstructionError{Source: path, Err: err}
	}
	defer lr.Close()
	return dataset.NewStore(lr, append([]dataset.StoreOption{dataset.WithSource(path)}, opts...)...)
}
