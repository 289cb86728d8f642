package correctionstore

import (
	"codeberg.org/smarttype/smarttype/pkg/correctionstore/memory"
	"codeberg.org/smarttype/smarttype/pkg/smarttype"
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"testing"
	"time"
)

func TestAsyncRecorderSavesRecords(t *testing.T) {
	store := memory.NewCorrectionStore()
	r := NewAsyncRecorder(store, 8, zaptest.NewLogger(t).Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.SaveLooper(ctx)
	}()

	r.Record(smarttype.CorrectionPair{Old: "teh", New: "the"})
	r.Record(smarttype.CorrectionPair{Old: "teh", New: "the"})

	assert.Eventually(t, func() bool {
		total, _ := store.TotalCorrections()
		return total == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestAsyncRecorderDrainsOnShutdown(t *testing.T) {
	store := memory.NewCorrectionStore()
	r := NewAsyncRecorder(store, 8, zaptest.NewLogger(t).Sugar())

	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	r.Record(smarttype.CorrectionPair{Old: "adn", New: "and"})
	r.Record(smarttype.CorrectionPair{Old: "waht", New: "what"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, r.SaveLooper(ctx), context.Canceled)

	total, err := store.TotalCorrections()
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestAsyncRecorderDropsWhenFull(t *testing.T) {
	store := memory.NewCorrectionStore()
	r := NewAsyncRecorder(store, 1, zaptest.NewLogger(t).Sugar())

	r.Record(smarttype.CorrectionPair{Old: "adn", New: "and"})
	r.Record(smarttype.CorrectionPair{Old: "waht", New: "what"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = r.SaveLooper(ctx)

	top, err := store.TopTypos(0)
	require.NoError(t, err)
	assert.Equal(t, []smarttype.TypoCount{{Typo: "adn", Correction: "and", Count: 1}}, top)
}

type failingStore struct {
	memory.CorrectionStore
}

func (s *failingStore) AddCorrection(smarttype.CorrectionRecord) error {
	return errors.New("disk full")
}

func TestAsyncRecorderSurvivesStoreErrors(t *testing.T) {
	r := NewAsyncRecorder(&failingStore{}, 4, zaptest.NewLogger(t).Sugar())
	r.Record(smarttype.CorrectionPair{Old: "adn", New: "and"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.SaveLooper(ctx), context.Canceled)
}
