package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
	"FinStudies/internal/service/cache"
	applogger "FinStudies/pkg/logger"
)

// IsinUseCase maps ISINs to symbols, optionally through a byte cache.
type IsinUseCase struct {
	provider domrepo.RefDataProvider
	cache    cache.BytesCache
	ttl      time.Duration
	metrics  domrepo.Metrics
	log      *applogger.Logger
}

// NewIsinUseCase builds the use case; c may be nil to disable caching.
func NewIsinUseCase(provider domrepo.RefDataProvider, c cache.BytesCache, ttl time.Duration, metrics domrepo.Metrics, log *applogger.Logger) *IsinUseCase {
	return &IsinUseCase{provider: provider, cache: c, ttl: ttl, metrics: metrics, log: log}
}

func isinKey(isin, filter string) string {
	return "isin:" + strings.ToUpper(isin) + "|" + filter
}

// Lookup returns the provider records for isin. Cache failures are logged
// and bypassed.
func (uc *IsinUseCase) Lookup(ctx context.Context, isin, filter string) ([]models.IsinRecord, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("isin_lookup", time.Since(start).Seconds()) }()

	key := isinKey(isin, filter)
	if uc.cache != nil {
		if b, ok, err := uc.cache.GetBytes(ctx, key); err != nil {
			uc.log.Warn("isin cache get", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			var records []models.IsinRecord
			if err := json.Unmarshal(b, &records); err == nil {
				uc.metrics.RecordIsinLookup("hit")
				return records, nil
			}
		}
	}

	records, err := uc.provider.IsinLookup(ctx, isin, filter)
	if err != nil {
		uc.metrics.RecordIsinLookup("error")
		uc.metrics.RecordError("isin_lookup")
		uc.log.Error("isin lookup failed", applogger.String("isin", isin), applogger.Error(err))
		return nil, fmt.Errorf("isin lookup: %w", err)
	}
	uc.metrics.RecordIsinLookup("miss")

	if uc.cache != nil {
		if b, err := json.Marshal(records); err == nil {
			if err := uc.cache.SetBytes(ctx, key, b, uc.ttl); err != nil {
				uc.log.Warn("isin cache set", applogger.String("key", key), applogger.Error(err))
			}
		}
	}
	return records, nil
}
