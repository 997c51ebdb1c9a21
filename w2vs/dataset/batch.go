package dataset

import (
	"gonum.org/v1/gonum/mat"
)

// Batch is one padded, masked minibatch over (example, feature-or-class, time).
//
//	Features[i]     dims x T   embedding coordinates, zero past Lengths[i]
//	Labels[i]       2 x T      one-hot class at the last real step only
//	FeatureMask     N x T      1 where t < Lengths[i]
//	LabelMask       N x T      1 only at the last real step (0 when Lengths[i] == 0)
//
// A Batch returned by Builder.Next shares memory with the builder's arena and
// is only valid until the next call to Next on that builder. Use Clone to keep it.
type Batch struct {
	Features    []*mat.Dense
	Labels      []*mat.Dense
	FeatureMask *mat.Dense
	LabelMask   *mat.Dense

	Classes   []Class
	Positions []int
	Lengths   []int
	MaxLength int
}

// Size is the number of examples in the batch.
func (b *Batch) Size() int { return len(b.Classes) }

// LastIndex is the time step carrying example i's label.
func (b *Batch) LastIndex(i int) int {
	if b.Lengths[i] == 0 {
		return 0
	}
	return b.Lengths[i] - 1
}

// Clone deep-copies the batch out of the arena.
func (b *Batch) Clone() *Batch {
	c := &Batch{
		Features:    make([]*mat.Dense, len(b.Features)),
		Labels:      make([]*mat.Dense, len(b.Labels)),
		FeatureMask: mat.DenseCopyOf(b.FeatureMask),
		LabelMask:   mat.DenseCopyOf(b.LabelMask),
		Classes:     append([]Class(nil), b.Classes...),
		Positions:   append([]int(nil), b.Positions...),
		Lengths:     append([]int(nil), b.Lengths...),
		MaxLength:   b.MaxLength,
	}
	for i := range b.Features {
		c.Features[i] = mat.DenseCopyOf(b.Features[i])
		c.Labels[i] = mat.DenseCopyOf(b.Labels[i])
	}
	return c
}

// arena holds the flat backing storage of a builder's batches. It is sized
// for batchSize x dims x truncate up front and only grows when a caller asks
// for a larger batch than configured.
type arena struct {
	features    []float64
	labels      []float64
	featureMask []float64
	labelMask   []float64
}

func newArena(batchSize, dims, truncate int) arena {
	return arena{
		features:    make([]float64, 0, batchSize*dims*truncate),
		labels:      make([]float64, 0, batchSize*NumClasses*truncate),
		featureMask: make([]float64, 0, batchSize*truncate),
		labelMask:   make([]float64, 0, batchSize*truncate),
	}
}

func reuse(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

// batch lays out zeroed views for n examples padded to t steps.
func (a *arena) batch(n, dims, t int) *Batch {
	a.features = reuse(a.features, n*dims*t)
	a.labels = reuse(a.labels, n*NumClasses*t)
	a.featureMask = reuse(a.featureMask, n*t)
	a.labelMask = reuse(a.labelMask, n*t)

	b := &Batch{
		Features:    make([]*mat.Dense, n),
		Labels:      make([]*mat.Dense, n),
		FeatureMask: mat.NewDense(n, t, a.featureMask),
		LabelMask:   mat.NewDense(n, t, a.labelMask),
		Classes:     make([]Class, n),
		Positions:   make([]int, n),
		Lengths:     make([]int, n),
		MaxLength:   t,
	}
	fs, ls := dims*t, NumClasses*t
	for i := 0; i < n; i++ {
		b.Features[i] = mat.NewDense(dims, t, a.features[i*fs:(i+1)*fs])
		b.Labels[i] = mat.NewDense(NumClasses, t, a.labels[i*ls:(i+1)*ls])
	}
	return b
}
