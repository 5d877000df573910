package controller

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Scheduler decides when ticks run. Run blocks until ctx is done.
type Scheduler interface {
	Run(ctx context.Context, tick func(context.Context))
}

// IntervalScheduler ticks immediately, then waits Interval after each tick
// finishes. A slow tick delays the next one rather than overlapping it.
type IntervalScheduler struct {
	Interval time.Duration
}

func (s IntervalScheduler) Run(ctx context.Context, tick func(context.Context)) {
	wait.UntilWithContext(ctx, tick, s.Interval)
}
