package mining

import (
	"sort"

	"handcricket/internal/domain"
)

const (
	DefaultWindowSize      = 20
	DefaultWindowSmoothing = 0.01
)

// Window is a bounded FIFO of the opponent's most recent moves.
type Window struct {
	size      int
	smoothing float64
	moves     []domain.Move
	index     int
	count     int
}

// NewWindow creates a window holding at most size moves.
func NewWindow(size int, smoothing float64) *Window {
	if size < 1 {
		size = DefaultWindowSize
	}
	if smoothing <= 0 {
		smoothing = DefaultWindowSmoothing
	}
	return &Window{
		size:      size,
		smoothing: smoothing,
		moves:     make([]domain.Move, size),
	}
}

func (w *Window) Name() string { return "window" }

// Observe pushes the actual move, evicting the oldest one on overflow.
func (w *Window) Observe(fb domain.Feedback) {
	w.Push(fb.Actual)
}

// Push appends m to the window.
func (w *Window) Push(m domain.Move) {
	w.moves[w.index] = m
	w.index = (w.index + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// Predict returns the smoothed relative frequency of each move in the window.
func (w *Window) Predict(domain.History) domain.Distribution {
	if w.count == 0 {
		return domain.Uniform()
	}
	var counts [domain.K]float64
	for _, m := range w.Contents() {
		counts[m.Index()]++
	}
	return domain.FromCounts(counts, w.smoothing)
}

// Len returns how many moves the window currently holds.
func (w *Window) Len() int {
	return w.count
}

// Contents returns the held moves, oldest first.
func (w *Window) Contents() []domain.Move {
	out := make([]domain.Move, w.count)
	start := (w.index - w.count + w.size) % w.size
	for i := 0; i < w.count; i++ {
		out[i] = w.moves[(start+i)%w.size]
	}
	return out
}

// Frequencies returns the unsmoothed relative frequency of each move.
func (w *Window) Frequencies() [domain.K]float64 {
	return domain.Frequencies(w.Contents())
}

// DetectCycle finds the shortest block of length 2..size/2 whose repetitions
// make up the whole window. The block is returned as it first appears.
func (w *Window) DetectCycle() ([]domain.Move, bool) {
	contents := w.Contents()
	n := len(contents)
	for length := 2; length <= w.size/2 && 2*length <= n; length++ {
		periodic := true
		for i := length; i < n; i++ {
			if contents[i] != contents[i-length] {
				periodic = false
				break
			}
		}
		if periodic {
			return append([]domain.Move(nil), contents[:length]...), true
		}
	}
	return nil, false
}

// CycleNext returns the move a detected cycle says comes next.
func (w *Window) CycleNext() (domain.Move, bool) {
	block, ok := w.DetectCycle()
	if !ok {
		return domain.NoMove, false
	}
	return block[w.count%len(block)], true
}

// Block is a contiguous run of moves and how often it occurs.
type Block struct {
	Moves []domain.Move
	Count int
}

// RepeatedBlocks lists blocks of length 2..4 seen at least minCount times in
// the window, most frequent first.
func (w *Window) RepeatedBlocks(minCount int) []Block {
	contents := w.Contents()
	if len(contents) < 4 {
		return nil
	}
	var out []Block
	for length := 2; length <= 4 && length <= len(contents)/2; length++ {
		counts := make(map[string]int)
		var order []string
		for i := 0; i+length <= len(contents); i++ {
			key := domain.EncodeMoves(contents[i : i+length])
			if counts[key] == 0 {
				order = append(order, key)
			}
			counts[key]++
		}
		for _, key := range order {
			if counts[key] >= minCount {
				out = append(out, Block{Moves: domain.DecodeMoves(key), Count: counts[key]})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
