package scheduler

import (
	"strconv"
	"time"

	"github.com/warpdl/iback/pkg/speedtest"
)

// Phase is the scheduler's run state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTesting
	PhaseAwaitingRetry
	// PhaseHalted is entered when the retry policy of the last outcome is Never.
	PhaseHalted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTesting:
		return "testing"
	case PhaseAwaitingRetry:
		return "awaiting-retry"
	case PhaseHalted:
		return "halted"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// EventType names a lifecycle event.
type EventType string

const (
	// EventTesting is emitted when a probe starts.
	EventTesting EventType = "testing"
	// EventResult carries the raw result of a successful probe, before classification.
	EventResult EventType = "result"
	// EventBack is emitted when a result passes every threshold.
	EventBack EventType = "iback"
	// EventFailure is emitted when a result misses at least one threshold.
	EventFailure EventType = "failure"
	// EventError carries the error of a failed probe.
	EventError EventType = "error"
	// EventRetrying is emitted right before an automatic retry starts a probe.
	EventRetrying EventType = "retrying"
	// EventRetryingAfter is emitted once per second of a retry countdown.
	EventRetryingAfter EventType = "retryingafter"
)

// Event is an immutable record of something the scheduler did.
type Event struct {
	Type EventType
	At   time.Time
	// Result is set for EventResult, EventBack and EventFailure.
	Result *speedtest.Result
	// Err is set for EventError. It is the prober's error, unmodified.
	Err error
	// SecondsRemaining is set for EventRetryingAfter.
	SecondsRemaining int
}

// Listener receives events on the scheduler goroutine, one at a time, in
// emission order. It must not block for long.
type Listener func(Event)

// RetryDelay is the retry policy of one outcome class.
type RetryDelay struct {
	Seconds  int
	Disabled bool
}

// After returns a policy retrying after the given number of seconds.
// Negative values are treated as 0.
func After(seconds int) RetryDelay {
	return RetryDelay{Seconds: seconds}
}

// Never returns a policy that disables automatic retries.
func Never() RetryDelay {
	return RetryDelay{Disabled: true}
}

func (d RetryDelay) String() string {
	if d.Disabled {
		return "never"
	}
	return strconv.Itoa(d.Seconds) + "s"
}

// Config holds the thresholds and retry policies. Start from DefaultConfig.
type Config struct {
	// ProbeTimeout bounds one probe attempt.
	ProbeTimeout time.Duration
	// MinDownloadMbps and MinUploadMbps are inclusive lower bounds.
	MinDownloadMbps float64
	MinUploadMbps   float64
	// MaxPingMs is an inclusive upper bound.
	MaxPingMs float64
	// ErrorRetry applies after a probe error.
	ErrorRetry RetryDelay
	// FailureRetry applies after a below-threshold result.
	FailureRetry RetryDelay
}
