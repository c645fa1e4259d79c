package usecase

import (
	"context"
	"testing"
	"time"

	"FinStudies/internal/domain/models"
	"FinStudies/internal/service/cache"
	applogger "FinStudies/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsinUseCaseCachesResponses(t *testing.T) {
	m := newFakeMetrics()
	ref := &fakeRefData{records: []models.IsinRecord{{"symbol": "AAPL", "region": "US"}}}
	uc := NewIsinUseCase(ref, cache.NewTTLCache(), time.Hour, m, applogger.Nop())

	first, err := uc.Lookup(context.Background(), "US0378331005", "")
	require.NoError(t, err)
	second, err := uc.Lookup(context.Background(), "us0378331005", "")
	require.NoError(t, err)

	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, "AAPL", first[0].Symbol())
	assert.Equal(t, "AAPL", second[0].Symbol())
	assert.Equal(t, 1, m.isin["miss"])
	assert.Equal(t, 1, m.isin["hit"])
}

func TestIsinUseCaseFilterIsPartOfKey(t *testing.T) {
	ref := &fakeRefData{records: []models.IsinRecord{{"symbol": "AAPL"}}}
	uc := NewIsinUseCase(ref, cache.NewTTLCache(), time.Hour, newFakeMetrics(), applogger.Nop())

	_, _ = uc.Lookup(context.Background(), "US0378331005", "")
	_, _ = uc.Lookup(context.Background(), "US0378331005", "symbol")
	assert.Equal(t, 2, ref.calls)
}

func TestIsinUseCaseWithoutCache(t *testing.T) {
	ref := &fakeRefData{records: []models.IsinRecord{{"symbol": "AAPL"}}}
	uc := NewIsinUseCase(ref, nil, 0, newFakeMetrics(), applogger.Nop())

	_, _ = uc.Lookup(context.Background(), "US0378331005", "")
	_, _ = uc.Lookup(context.Background(), "US0378331005", "")
	assert.Equal(t, 2, ref.calls)
}

func TestIsinUseCaseUpstreamError(t *testing.T) {
	m := newFakeMetrics()
	ref := &fakeRefData{err: errUpstream}
	uc := NewIsinUseCase(ref, cache.NewTTLCache(), time.Hour, m, applogger.Nop())

	_, err := uc.Lookup(context.Background(), "US0378331005", "")
	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, 1, m.isin["error"])
}
