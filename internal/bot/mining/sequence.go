package mining

import (
	"sort"

	"handcricket/internal/domain"
)

const (
	DefaultMinSupport    = 2
	DefaultMaxPatternLen = 4
	DefaultSeqSmoothing  = 0.1
	minPatternLen        = 2
)

// Pattern is a contiguous subsequence and its occurrence count.
type Pattern struct {
	Moves []domain.Move
	Count int
}

// Sequences counts every contiguous subsequence of length 2..maxLength and
// predicts from patterns whose prefix matches the tail of the history.
// Candidates below minSupport are kept so they can reach support later,
// but never take part in a prediction.
type Sequences struct {
	minSupport int
	maxLength  int
	smoothing  float64
	counts     map[string]int
	// next maps an encoded prefix to the counts of the element following it.
	next map[string]*[domain.K]int
}

// NewSequences creates a detector. Non-positive arguments take the defaults.
func NewSequences(minSupport, maxLength int, smoothing float64) *Sequences {
	if minSupport < 1 {
		minSupport = DefaultMinSupport
	}
	if maxLength < minPatternLen {
		maxLength = DefaultMaxPatternLen
	}
	if smoothing <= 0 {
		smoothing = DefaultSeqSmoothing
	}
	return &Sequences{
		minSupport: minSupport,
		maxLength:  maxLength,
		smoothing:  smoothing,
		counts:     make(map[string]int),
		next:       make(map[string]*[domain.K]int),
	}
}

func (s *Sequences) Name() string { return "sequences" }

// Observe extends every candidate subsequence that ends at the new move.
func (s *Sequences) Observe(fb domain.Feedback) {
	prior := fb.Prior.Tail(s.maxLength - 1)
	for length := minPatternLen; length <= s.maxLength; length++ {
		prefixLen := length - 1
		if len(prior) < prefixLen {
			break
		}
		prefix := domain.EncodeMoves(prior[len(prior)-prefixLen:])
		s.counts[prefix+domain.EncodeMoves([]domain.Move{fb.Actual})]++

		nc, ok := s.next[prefix]
		if !ok {
			nc = new([domain.K]int)
			s.next[prefix] = nc
		}
		nc[fb.Actual.Index()]++
	}
}

// Predict finds the longest history suffix that prefixes a frequent pattern
// and weights each continuation by its count.
func (s *Sequences) Predict(h domain.History) domain.Distribution {
	recent := h.Tail(s.maxLength - 1)
	for suffixLen := len(recent); suffixLen >= 1; suffixLen-- {
		nc, ok := s.next[domain.EncodeMoves(recent[len(recent)-suffixLen:])]
		if !ok {
			continue
		}
		var counts [domain.K]float64
		found := false
		for i, c := range nc {
			if c >= s.minSupport {
				counts[i] = float64(c)
				found = true
			}
		}
		if found {
			return domain.FromCounts(counts, s.smoothing)
		}
	}
	return domain.Uniform()
}

// Support returns how many times the given subsequence occurred.
func (s *Sequences) Support(moves []domain.Move) int {
	return s.counts[domain.EncodeMoves(moves)]
}

// Frequent returns up to limit patterns meeting the minimum support, most
// frequent first. A non-positive limit returns all of them.
func (s *Sequences) Frequent(limit int) []Pattern {
	var out []Pattern
	for key, count := range s.counts {
		if count >= s.minSupport {
			out = append(out, Pattern{Moves: domain.DecodeMoves(key), Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if len(out[i].Moves) != len(out[j].Moves) {
			return len(out[i].Moves) < len(out[j].Moves)
		}
		return domain.EncodeMoves(out[i].Moves) < domain.EncodeMoves(out[j].Moves)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
