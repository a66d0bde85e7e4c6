// Package mining holds the pattern-mining estimators: each folds the
// opponent's moves into its own table and predicts the next move from it.
package mining

import "handcricket/internal/domain"

const (
	DefaultNGramOrders    = 3
	DefaultNGramSmoothing = 0.1
)

// NGram counts which move followed each context of the last n-1 moves for
// every order n up to orders, and predicts from the most specific context
// that has evidence.
type NGram struct {
	orders    int
	smoothing float64
	// tables[n-1] maps an encoded context of n-1 moves to next-move counts.
	tables []map[string]*[domain.K]float64
}

// NewNGram creates an n-gram model. Non-positive arguments take the defaults.
func NewNGram(orders int, smoothing float64) *NGram {
	if orders < 1 {
		orders = DefaultNGramOrders
	}
	if smoothing <= 0 {
		smoothing = DefaultNGramSmoothing
	}
	tables := make([]map[string]*[domain.K]float64, orders)
	for i := range tables {
		tables[i] = make(map[string]*[domain.K]float64)
	}
	return &NGram{orders: orders, smoothing: smoothing, tables: tables}
}

func (g *NGram) Name() string { return "ngram" }

// Observe records fb.Actual as the continuation of every context that fits
// in fb.Prior.
func (g *NGram) Observe(fb domain.Feedback) {
	prior := fb.Prior.Tail(g.orders - 1)
	for n := 1; n <= g.orders; n++ {
		ctxLen := n - 1
		if len(prior) < ctxLen {
			break
		}
		key := domain.EncodeMoves(prior[len(prior)-ctxLen:])
		counts, ok := g.tables[n-1][key]
		if !ok {
			counts = new([domain.K]float64)
			g.tables[n-1][key] = counts
		}
		counts[fb.Actual.Index()]++
	}
}

// Predict backs off from the highest order to the lowest and answers with the
// first context seen at least once. Unseen contexts everywhere yield uniform.
func (g *NGram) Predict(h domain.History) domain.Distribution {
	counts, _, ok := g.lookup(h)
	if !ok {
		return domain.Uniform()
	}
	return domain.FromCounts(counts, g.smoothing)
}

// BackoffOrder reports which order would answer Predict(h), or 0 when the
// prediction would be the uniform fallback.
func (g *NGram) BackoffOrder(h domain.History) int {
	_, order, _ := g.lookup(h)
	return order
}

// Counts returns the raw continuation counts recorded after context.
func (g *NGram) Counts(context []domain.Move) ([domain.K]float64, bool) {
	if len(context) >= g.orders {
		return [domain.K]float64{}, false
	}
	counts, ok := g.tables[len(context)][domain.EncodeMoves(context)]
	if !ok {
		return [domain.K]float64{}, false
	}
	return *counts, true
}

func (g *NGram) lookup(h domain.History) ([domain.K]float64, int, bool) {
	if h.Len() == 0 {
		return [domain.K]float64{}, 0, false
	}
	recent := h.Tail(g.orders - 1)
	for n := g.orders; n >= 1; n-- {
		ctxLen := n - 1
		if len(recent) < ctxLen {
			continue
		}
		counts, ok := g.tables[n-1][domain.EncodeMoves(recent[len(recent)-ctxLen:])]
		if !ok || total(counts) == 0 {
			continue
		}
		return *counts, n, true
	}
	return [domain.K]float64{}, 0, false
}

func total(counts *[domain.K]float64) float64 {
	sum := 0.0
	for _, c := range counts {
		sum += c
	}
	return sum
}
