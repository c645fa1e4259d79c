package usecase

import (
	"context"
	"time"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
	"FinStudies/internal/studies"
	applogger "FinStudies/pkg/logger"
)

// StudiesUseCase runs registered studies against the configured series source.
type StudiesUseCase struct {
	src        domrepo.SeriesSource
	sourceName string
	metrics    domrepo.Metrics
	log        *applogger.Logger
}

func NewStudiesUseCase(src domrepo.SeriesSource, sourceName string, metrics domrepo.Metrics, log *applogger.Logger) *StudiesUseCase {
	return &StudiesUseCase{src: src, sourceName: sourceName, metrics: metrics, log: log}
}

// Catalog lists the registered studies.
func (uc *StudiesUseCase) Catalog() []models.StudyInfo {
	return studies.Catalog()
}

// Lookup returns the definition registered under name.
func (uc *StudiesUseCase) Lookup(name string) (*studies.Definition, error) {
	return studies.Lookup(name)
}

// Run computes study name for req. Errors are returned unchanged so callers
// can classify them with studies.Kind.
func (uc *StudiesUseCase) Run(ctx context.Context, name string, req studies.Request) (*models.Table, error) {
	start := time.Now()

	def, err := studies.Lookup(name)
	if err != nil {
		uc.fail(name, req, err)
		return nil, err
	}

	table, err := studies.Run(ctx, uc.countingSource(), def, req)
	uc.metrics.RecordLatency("study", time.Since(start).Seconds())
	if err != nil {
		uc.fail(name, req, err)
		return nil, err
	}

	uc.metrics.RecordStudy(name, "ok")
	uc.log.Debug("study computed",
		applogger.String("study", name),
		applogger.String("symbol", req.Symbol),
		applogger.Int("rows", table.Len()),
		applogger.Strings("columns", table.Columns()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return table, nil
}

func (uc *StudiesUseCase) fail(name string, req studies.Request, err error) {
	kind := studies.Kind(err)
	uc.metrics.RecordStudy(name, kind)
	uc.metrics.RecordError(kind)

	fields := []applogger.Field{
		applogger.String("study", name),
		applogger.String("symbol", req.Symbol),
		applogger.String("kind", kind),
		applogger.Error(err),
	}
	if kind == "internal" || kind == "primitive_failure" {
		uc.log.Error("study failed", fields...)
		return
	}
	uc.log.Warn("study rejected", fields...)
}

// countingSource records the row count of every fetched series.
func (uc *StudiesUseCase) countingSource() domrepo.SeriesSource {
	return domrepo.SeriesSourceFunc(func(ctx context.Context, symbol, rng string) (*models.Series, error) {
		s, err := uc.src.Fetch(ctx, symbol, rng)
		if err == nil {
			uc.metrics.RecordSeriesRows(uc.sourceName, s.Len())
		}
		return s, err
	})
}
