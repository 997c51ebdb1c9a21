package embedding

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/armon/go-radix"
)

// ErrBadVectorFile reports a word vector file that does not follow the
// word2vec text or binary layout.
var ErrBadVectorFile = errors.New("bad word vector file")

// WordVectors is a static, read-only word2vec model. Vectors live in one flat
// slice; the vocabulary is a radix tree from word to row so prefix listings
// come for free.
type WordVectors struct {
	dims  int
	data  []float64
	vocab *radix.Tree
}

func newWordVectors(dims int) *WordVectors {
	return &WordVectors{dims: dims, vocab: radix.New()}
}

// add appends a row unless the word is already present. First occurrence wins.
func (w *WordVectors) add(word string, vec []float64) {
	if word == "" {
		return
	}
	if _, ok := w.vocab.Get(word); ok {
		return
	}
	row := len(w.data) / w.dims
	// longer vectors are truncated, shorter ones zero padded
	w.data = append(w.data, make([]float64, w.dims)...)
	copy(w.data[row*w.dims:], vec)
	w.vocab.Insert(word, row)
}

func (w *WordVectors) Dimensions() int { return w.dims }

// Len is the vocabulary size.
func (w *WordVectors) Len() int { return w.vocab.Len() }

func (w *WordVectors) HasVector(word string) bool {
	_, ok := w.vocab.Get(word)
	return ok
}

// Vector returns a view of the word's row; callers must not modify it.
func (w *WordVectors) Vector(word string) []float64 {
	v, ok := w.vocab.Get(word)
	if !ok {
		return nil
	}
	row := v.(int)
	return w.data[row*w.dims : (row+1)*w.dims : (row+1)*w.dims]
}

// WordsWithPrefix lists up to limit vocabulary words starting with prefix in
// lexical order. limit <= 0 means no limit.
func (w *WordVectors) WordsWithPrefix(prefix string, limit int) []string {
	var out []string
	w.vocab.WalkPrefix(prefix, func(s string, _ interface{}) bool {
		out = append(out, s)
		return limit > 0 && len(out) >= limit
	})
	sort.Strings(out)
	return out
}

// LoadWordVectorsFile reads a word2vec model from disk. Files ending in .bin
// (optionally .bin.gz) use the binary layout, anything else the text layout.
// A positive dims truncates or pads every vector to that size.
func LoadWordVectorsFile(path string, dims int) (*WordVectors, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("word vector path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	if filepath.Ext(name) == ".bin" {
		return ReadBinaryWordVectors(r, dims)
	}
	return ReadTextWordVectors(r, dims)
}

// ReadTextWordVectors parses "word v1 v2 ... vD" lines. An optional
// "<count> <dims>" header line is accepted.
func ReadTextWordVectors(r io.Reader, dims int) (*WordVectors, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var wv *WordVectors
	fileDims := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				if d, err := strconv.Atoi(fields[1]); err == nil {
					fileDims = d
					continue
				}
			}
		}
		if fileDims == 0 {
			fileDims = len(fields) - 1
		}
		if len(fields)-1 != fileDims || fileDims < 1 {
			return nil, fmt.Errorf("%w: line %d has %d values, want %d", ErrBadVectorFile, lineNo, len(fields)-1, fileDims)
		}
		if wv == nil {
			wv = newWordVectors(targetDims(dims, fileDims))
		}
		vec := make([]float64, fileDims)
		for i, s := range fields[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadVectorFile, lineNo, err)
			}
			vec[i] = v
		}
		wv.add(fields[0], vec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if wv == nil || wv.Len() == 0 {
		return nil, fmt.Errorf("%w: no vectors", ErrBadVectorFile)
	}
	return wv, nil
}

// ReadBinaryWordVectors parses the word2vec C tool binary layout: a
// "<count> <dims>\n" header followed by count records of
// "<word> <dims little-endian float32>" with an optional trailing newline.
func ReadBinaryWordVectors(r io.Reader, dims int) (*WordVectors, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadVectorFile, err)
	}
	var count, fileDims int
	if _, err := fmt.Sscanf(strings.TrimSpace(header), "%d %d", &count, &fileDims); err != nil || count < 1 || fileDims < 1 {
		return nil, fmt.Errorf("%w: header %q", ErrBadVectorFile, strings.TrimSpace(header))
	}

	wv := newWordVectors(targetDims(dims, fileDims))
	raw := make([]byte, 4*fileDims)
	vec := make([]float64, fileDims)
	for i := 0; i < count; i++ {
		word, err := br.ReadString(' ')
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrBadVectorFile, i, err)
		}
		word = strings.TrimSpace(word)
		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, fmt.Errorf("%w: record %d vector: %v", ErrBadVectorFile, i, err)
		}
		for d := 0; d < fileDims; d++ {
			vec[d] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[d*4:])))
		}
		wv.add(word, vec)
	}
	return wv, nil
}

func targetDims(requested, fileDims int) int {
	if requested > 0 {
		return requested
	}
	return fileDims
}
