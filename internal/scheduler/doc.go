// Package scheduler sequences connectivity probes until one passes the
// configured thresholds.
//
// A Scheduler is an active object: Run owns every piece of mutable state
// (the phase, the countdown and its ticker) and is the only goroutine that
// changes it. Start and Subscribe merely talk to that loop, so at most one
// probe is ever in flight and at most one retry countdown is ever pending.
//
// After a probe error the error retry policy applies, after a below-threshold
// result the failure retry policy applies. Each policy is a whole number of
// seconds (0 retries immediately) or Never, which leaves the scheduler halted
// until Start is called again. Non-zero delays are counted down once per
// second and published as EventRetryingAfter.
package scheduler
