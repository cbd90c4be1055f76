package cron

import (
	"context"
	"time"

	"github.com/manhour-hq/manhour-backend-go/internal/domain/dashboard"
)

// AggregateJobs owns the scheduled refresh of the materialized rollup
// views. The service swallows refresh failures, so a failed tick surfaces
// only in the logs and the next tick retries.
type AggregateJobs struct {
	dashboardService dashboard.DashboardService
	interval         time.Duration
}

func NewAggregateJobs(dashboardService dashboard.DashboardService, interval time.Duration) *AggregateJobs {
	return &AggregateJobs{
		dashboardService: dashboardService,
		interval:         interval,
	}
}

func (j *AggregateJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("refresh_aggregate_views", j.interval, j.RefreshAggregateViews)
}

func (j *AggregateJobs) RefreshAggregateViews(ctx context.Context) error {
	return j.dashboardService.RefreshAggregates(ctx)
}
