package records

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Unlabeled is one row of a test file to score.
type Unlabeled struct {
	ID   int
	Text string
}

// ReadUnlabeled parses "id,text" lines. The id is everything before the first
// comma and must be all digits; the text is the rest of the line, commas
// included. Lines that do not fit are logged and skipped.
func ReadUnlabeled(r io.Reader, logger zerolog.Logger) ([]Unlabeled, error) {
	var out []Unlabeled
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		i := strings.IndexByte(line, ',')
		if i <= 0 || i >= len(line)-1 {
			logger.Warn().Int("line", lineNum).Msg("skipping test row without id and text")
			continue
		}
		idStr := line[:i]
		if !isDigits(idStr) {
			logger.Warn().Int("line", lineNum).Str("id", idStr).Msg("skipping test row with non-numeric id")
			continue
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			logger.Warn().Int("line", lineNum).Err(err).Msg("skipping test row with out of range id")
			continue
		}
		out = append(out, Unlabeled{ID: id, Text: line[i+1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read test rows: %w", err)
	}
	return out, nil
}

// ReadUnlabeledFile opens path and parses it with ReadUnlabeled.
func ReadUnlabeledFile(path string, logger zerolog.Logger) ([]Unlabeled, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open test rows %s: %w", path, err)
	}
	defer f.Close()
	return ReadUnlabeled(f, logger)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
