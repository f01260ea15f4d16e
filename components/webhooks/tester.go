package webhooks

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// Tester defaults.
const (
	DefaultMinLatency  = 200 * time.Millisecond
	DefaultMaxLatency  = 1200 * time.Millisecond
	DefaultFailureRate = 0.1
	DefaultTestEvent   = "webhook.test"
)

var ErrTesterClosed = errors.New("webhooks: tester closed")

// Clock supplies time and delays to the tester.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock uses the time package.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Random drives the simulated outcome. *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
	Float64() float64
}

// TesterOptions configures a Tester. A negative FailureRate never fails; zero
// uses DefaultFailureRate.
type TesterOptions struct {
	Clock       Clock
	Random      Random
	MinLatency  time.Duration
	MaxLatency  time.Duration
	FailureRate float64
}

// TestResult is the outcome of a simulated delivery.
type TestResult struct {
	WebhookID  string         `json:"webhook_id"`
	Event      string         `json:"event"`
	Success    bool           `json:"success"`
	StatusCode int            `json:"status_code"`
	Latency    time.Duration  `json:"latency"`
	Body       string         `json:"body"`
	Payload    map[string]any `json:"payload"`
	At         time.Time      `json:"at"`
}

// Tester simulates delivering a sample payload. Nothing leaves the process.
type Tester struct {
	clock       Clock
	min, max    time.Duration
	failureRate float64

	mu     sync.Mutex
	random Random
	done   chan struct{}
	once   sync.Once
}

var failureCodes = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusInternalServerError,
	http.StatusServiceUnavailable,
}

// NewTester applies defaults.
func NewTester(opts TesterOptions) *Tester {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Random == nil {
		opts.Random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.MinLatency <= 0 {
		opts.MinLatency = DefaultMinLatency
	}
	if opts.MaxLatency <= 0 {
		opts.MaxLatency = DefaultMaxLatency
	}
	if opts.MaxLatency < opts.MinLatency {
		opts.MaxLatency = opts.MinLatency
	}
	if opts.FailureRate == 0 {
		opts.FailureRate = DefaultFailureRate
	}
	return &Tester{
		clock:       opts.Clock,
		random:      opts.Random,
		min:         opts.MinLatency,
		max:         opts.MaxLatency,
		failureRate: opts.FailureRate,
		done:        make(chan struct{}),
	}
}

// Test sends a sample payload for hook's schema after a simulated network
// delay. Cancelling ctx or closing the tester abandons the delivery.
func (t *Tester) Test(ctx context.Context, hook Webhook) (TestResult, error) {
	fields, err := ParseSchemaFields(hook.Schema)
	if err != nil {
		return TestResult{}, fmt.Errorf("webhooks: test %s: %w", hook.ID, err)
	}
	event := DefaultTestEvent
	if len(hook.Events) > 0 {
		event = hook.Events[0]
	}
	started := t.clock.Now()
	payload := SamplePayload(fields, hook.HookName, event, started)
	if err := ValidatePayload(hook.Schema, payload); err != nil {
		return TestResult{}, err
	}

	latency, fail, code := t.roll()
	select {
	case <-ctx.Done():
		return TestResult{}, ctx.Err()
	case <-t.done:
		return TestResult{}, ErrTesterClosed
	case <-t.clock.After(latency):
	}
	if err := ctx.Err(); err != nil {
		return TestResult{}, err
	}

	result := TestResult{
		WebhookID: hook.ID,
		Event:     event,
		Success:   !fail,
		Latency:   latency,
		Payload:   payload,
		At:        started,
	}
	if fail {
		result.StatusCode = code
		result.Body = fmt.Sprintf(`{"error":%q}`, http.StatusText(code))
	} else {
		result.StatusCode = http.StatusOK
		result.Body = `{"received":true}`
	}
	return result, nil
}

// Close abandons pending tests. Safe to call more than once.
func (t *Tester) Close() {
	t.once.Do(func() { close(t.done) })
}

func (t *Tester) roll() (time.Duration, bool, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	latency := t.min
	if span := int((t.max - t.min) / time.Millisecond); span > 0 {
		latency += time.Duration(t.random.Intn(span+1)) * time.Millisecond
	}
	fail := t.failureRate > 0 && t.random.Float64() < t.failureRate
	code := 0
	if fail {
		code = failureCodes[t.random.Intn(len(failureCodes))]
	}
	return latency, fail, code
}
