package sqlite

import (
	"codeberg.org/smarttype/smarttype/pkg/correctionstore/sqlite/migrations"
	"codeberg.org/smarttype/smarttype/pkg/smarttype"
	"context"
	"database/sql"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"time"
)

type CorrectionStore struct {
	db      *sql.DB
	querier *Queries
}

func NewCorrectionStore(filename string, log *zap.SugaredLogger) (*CorrectionStore, error) {
	db, err := sql.Open("sqlite3", filename+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := migrations.Migrate(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &CorrectionStore{
		db:      db,
		querier: New(db),
	}, nil
}

func (s *CorrectionStore) Close() error {
	return s.db.Close()
}

func (s *CorrectionStore) AddCorrection(record smarttype.CorrectionRecord) error {
	if err := s.querier.InsertCorrection(context.Background(), InsertCorrectionParams{
		Typo:        record.Pair.Old,
		Correction:  record.Pair.New,
		CorrectedAt: record.At,
	}); err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}

	return nil
}

func (s *CorrectionStore) TotalCorrections() (int64, error) {
	count, err := s.querier.CountCorrections(context.Background())
	if err != nil {
		return 0, fmt.Errorf("sqlite select: %w", err)
	}
	return count, nil
}

func (s *CorrectionStore) CorrectionsSince(since time.Time) (int64, error) {
	count, err := s.querier.CountCorrectionsSince(context.Background(), since)
	if err != nil {
		return 0, fmt.Errorf("sqlite select: %w", err)
	}
	return count, nil
}

func (s *CorrectionStore) TopTypos(limit int) ([]smarttype.TypoCount, error) {
	// a negative LIMIT means no limit in sqlite
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.querier.TopTypos(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	ret := make([]smarttype.TypoCount, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, smarttype.TypoCount{
			Typo:       row.Typo,
			Correction: row.Correction,
			Count:      row.Uses,
		})
	}

	return ret, nil
}
