// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package backoff provides exponentially growing delays between failing
// attempts against a remote API.
package backoff

import (
	"context"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
)

var mon = monkit.Package()

// ExponentialBackoff provides delays between failing attempts.
type ExponentialBackoff struct {
	Delay time.Duration `json:"-"`
	Max   time.Duration
	Min   time.Duration
}

func (e *ExponentialBackoff) init() {
	if e.Max == 0 {
		e.Max = 5 * time.Second
	}
	if e.Min == 0 {
		e.Min = 100 * time.Millisecond
	}
}

// Wait should be called when there is a failure. Each time it is called
// it sleeps an exponentially longer time, up to a max.
func (e *ExponentialBackoff) Wait(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	e.init()
	if e.Delay == 0 {
		e.Delay = e.Min
	} else {
		e.Delay *= 2
	}
	if e.Delay > e.Max {
		e.Delay = e.Max
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	t := time.NewTimer(e.Delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Maxed returns true if the wait time has maxed out.
func (e *ExponentialBackoff) Maxed() bool {
	e.init()
	return e.Delay == e.Max
}
