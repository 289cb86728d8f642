package memory

import (
	"codeberg.org/smarttype/smarttype/pkg/smarttype"
	"sort"
	"sync"
	"time"
)

type CorrectionStore struct {
	lock    sync.Mutex
	records []smarttype.CorrectionRecord
}

func NewCorrectionStore() *CorrectionStore {
	return &CorrectionStore{}
}

func (s *CorrectionStore) AddCorrection(record smarttype.CorrectionRecord) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *CorrectionStore) TotalCorrections() (int64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return int64(len(s.records)), nil
}

func (s *CorrectionStore) CorrectionsSince(since time.Time) (int64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var count int64
	for _, r := range s.records {
		if !r.At.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *CorrectionStore) TopTypos(limit int) ([]smarttype.TypoCount, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	counts := make(map[smarttype.CorrectionPair]int64)
	for _, r := range s.records {
		counts[r.Pair]++
	}

	out := make([]smarttype.TypoCount, 0, len(counts))
	for pair, count := range counts {
		out = append(out, smarttype.TypoCount{Typo: pair.Old, Correction: pair.New, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Typo < out[j].Typo
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *CorrectionStore) Close() error {
	return nil
}
