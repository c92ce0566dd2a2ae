package indexer

import (
	"sync"
	"testing"

	"filemerge/internal/model"

	"github.com/stretchr/testify/assert"
)

func rec(priority int, hash, rel string) model.FileRecord {
	return model.FileRecord{SourcePriority: priority, ContentHash: hash, RelativePath: rel}
}

func TestAcceptedSet_Offer(t *testing.T) {
	s := newAcceptedSet()

	assert.Nil(t, s.offer(claim{record: rec(0, "h1", "b.txt"), seq: 1}))

	// same source, earlier walk position displaces the holder
	loser := s.offer(claim{record: rec(0, "h1", "a.txt"), seq: 0})
	if assert.NotNil(t, loser) {
		assert.Equal(t, "b.txt", loser.record.RelativePath)
	}

	// later source never displaces an earlier one
	loser = s.offer(claim{record: rec(1, "h1", "0.txt"), seq: 0})
	if assert.NotNil(t, loser) {
		assert.Equal(t, "0.txt", loser.record.RelativePath)
	}

	assert.Equal(t, []model.FileRecord{rec(0, "h1", "a.txt")}, s.records())
}

func TestAcceptedSet_RaceAcceptsOne(t *testing.T) {
	s := newAcceptedSet()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		losers int
	)
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if s.offer(claim{record: rec(0, "same", "f"), seq: i}) != nil {
				mu.Lock()
				losers++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.len())
	assert.Equal(t, 99, losers)
}
