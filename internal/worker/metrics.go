package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_ingest_jobs_total",
		Help: "Pipeline jobs by terminal outcome",
	}, []string{"outcome"})
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "video_ingest_stage_duration_seconds",
		Help:    "Time spent in each pipeline stage",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 16),
	}, []string{"stage"})
	activeJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "video_ingest_active_jobs",
		Help: "Jobs currently between staging and release",
	})
	compensatingDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_ingest_compensating_deletes_total",
		Help: "Storage deletes issued to undo partial jobs",
	}, []string{"result"})
	sweptWorkspaces = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_ingest_swept_workspaces_total",
		Help: "Orphaned workspaces removed by the sweeper",
	})
)
