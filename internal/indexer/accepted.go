package indexer

import (
	"cmp"
	"slices"
	"sync"

	"filemerge/internal/model"
)

type claim struct {
	record model.FileRecord
	seq    int
}

// acceptedSet keeps one record per content hash. An earlier source always
// wins; inside one source the lowest walk position wins, whatever order the
// workers arrive in.
type acceptedSet struct {
	mu     sync.Mutex
	byHash map[string]claim
}

func newAcceptedSet() *acceptedSet {
	return &acceptedSet{byHash: make(map[string]claim)}
}

// offer atomically checks and inserts c. It returns the claim that lost,
// which is c itself when the hash was already taken.
func (s *acceptedSet) offer(c claim) *claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := c.record.ContentHash
	existing, ok := s.byHash[hash]
	if !ok {
		s.byHash[hash] = c
		return nil
	}

	if existing.record.SourcePriority == c.record.SourcePriority && c.seq < existing.seq {
		s.byHash[hash] = c
		return &existing
	}

	return &c
}

// records returns the accepted records ordered by priority then walk position.
func (s *acceptedSet) records() []model.FileRecord {
	s.mu.Lock()
	claims := make([]claim, 0, len(s.byHash))
	for _, c := range s.byHash {
		claims = append(claims, c)
	}
	s.mu.Unlock()

	slices.SortFunc(claims, func(a, b claim) int {
		if c := cmp.Compare(a.record.SourcePriority, b.record.SourcePriority); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]model.FileRecord, len(claims))
	for i, c := range claims {
		out[i] = c.record
	}
	return out
}

func (s *acceptedSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byHash)
}
