// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package invalidate

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for invalidation walks.
var meter = otel.Meter("deptrace.invalidate")

// Metrics for invalidation walks.
var (
	walkLatency   metric.Float64Histogram
	walkTotal     metric.Int64Counter
	affectedCount metric.Int64Histogram
	walkDepth     metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		walkLatency, err = meter.Float64Histogram(
			"invalidate_walk_duration_seconds",
			metric.WithDescription("Duration of invalidation walks"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		walkTotal, err = meter.Int64Counter(
			"invalidate_walk_total",
			metric.WithDescription("Total number of invalidation walks"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		affectedCount, err = meter.Int64Histogram(
			"invalidate_affected_sources",
			metric.WithDescription("Number of sources affected per walk"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		walkDepth, err = meter.Int64Histogram(
			"invalidate_walk_depth",
			metric.WithDescription("Number of expansion levels per walk"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordWalk records metrics for one invalidation walk.
func recordWalk(ctx context.Context, duration time.Duration, res Result) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("truncated", res.Truncated))

	walkLatency.Record(ctx, duration.Seconds(), attrs)
	walkTotal.Add(ctx, 1, attrs)
	affectedCount.Record(ctx, int64(res.Affected.Len()))
	walkDepth.Record(ctx, int64(res.Depth))
}
