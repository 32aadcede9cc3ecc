/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTopProducts    = 5
	defaultReportCacheTTL = 30 * time.Second
)

type reportService struct {
	base
	ttl time.Duration
}

var _ ports.ReportService = (*reportService)(nil)

func NewReportService(deps Dependencies) ports.ReportService {
	ttl := deps.ReportCacheTTL
	if ttl <= 0 {
		ttl = defaultReportCacheTTL
	}
	return &reportService{base: newBase(deps, "reports"), ttl: ttl}
}

type cachedSummary struct {
	Version string              `json:"version"`
	Summary domain.StockSummary `json:"summary"`
}

// StockSummary is served from the cache when the cached copy was read under
// the current stock version. The version is read before the ledgers, so a fill
// racing a commit is tagged with the old version and ignored afterwards.
func (s *reportService) StockSummary(ctx context.Context) (*domain.StockSummary, error) {
	var version string
	if s.cache != nil {
		version, _ = s.cache.Get(ctx, StockVersionCacheKey)
		if raw, err := s.cache.Get(ctx, StockSummaryCacheKey); err == nil {
			var cached cachedSummary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil && cached.Version == version {
				return &cached.Summary, nil
			}
		}
	}

	summary, err := s.store.Reports().StockSummary(ctx)
	if err != nil {
		return nil, s.fail("stock summary", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(cachedSummary{Version: version, Summary: *summary}); err == nil {
			if err := s.cache.Set(ctx, StockSummaryCacheKey, string(raw), s.ttl); err != nil {
				s.log.Warn("failed to cache stock summary", zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *reportService) MonthlySales(ctx context.Context) ([]domain.MonthlySales, error) {
	months, err := s.store.Reports().MonthlySales(ctx)
	if err != nil {
		return nil, s.fail("monthly sales", err)
	}
	return months, nil
}

// TopProducts returns the limit best selling batch codes; limit <= 0 means 5.
func (s *reportService) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	if limit <= 0 {
		limit = defaultTopProducts
	}
	top, err := s.store.Reports().TopProducts(ctx, limit)
	if err != nil {
		return nil, s.fail("top products", err)
	}
	return top, nil
}

func (s *reportService) MassBalance(ctx context.Context) (*domain.MassBalance, error) {
	balance, err := s.store.Reports().MassBalance(ctx)
	if err != nil {
		return nil, s.fail("mass balance", err)
	}
	if !balance.Balanced {
		s.log.Warn("mass balance discrepancy", zap.Stringer("discrepancy_kg", balance.Discrepancy))
	}
	return balance, nil
}

// Dashboard runs the three dashboard reports concurrently.
func (s *reportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	dash := &domain.Dashboard{GeneratedAt: s.now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.StockSummary(gctx)
		dash.Stock = summary
		return err
	})
	g.Go(func() error {
		months, err := s.MonthlySales(gctx)
		dash.MonthlySales = months
		return err
	})
	g.Go(func() error {
		top, err := s.TopProducts(gctx, defaultTopProducts)
		dash.TopProducts = top
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}
