// Package height observes chain progress by polling the node's height endpoint.
package height

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/b-harvest/node-harness/internal/client"
	"github.com/b-harvest/node-harness/internal/output"
)

// Path is the public API endpoint reporting the current block height.
const Path = "/api/blocks/getHeight"

// DefaultPollInterval is the delay after each poll response.
const DefaultPollInterval = 1000 * time.Millisecond

// Requester performs GET requests against the node. *client.Adapter
// satisfies it.
type Requester interface {
	Get(ctx context.Context, path string, params any) (*client.Response, error)
}

// heightResponse is the body of a successful height query.
type heightResponse struct {
	Success bool  `json:"success"`
	Height  int64 `json:"height"`
}

// PollState tracks one WaitForNewBlock call.
type PollState struct {
	StartHeight    int64
	ObservedHeight int64
	Polls          int
}

// Done reports whether a new block has been observed.
func (s *PollState) Done() bool {
	return s.ObservedHeight != s.StartHeight
}

// Config configures a Watcher.
type Config struct {
	// PollInterval is waited after every poll response, including the last.
	PollInterval time.Duration

	// Acceptance decides which polled heights count as the next block.
	Acceptance AcceptanceRule

	// Clock drives the poll delay. Defaults to the wall clock.
	Clock clock.Clock

	// Logger receives the per-poll progress line.
	Logger output.LoggerInterface
}

// DefaultConfig returns the one-second, exact-increment configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		Acceptance:   AcceptExactIncrement,
	}
}

// Watcher polls the height endpoint.
type Watcher struct {
	requester Requester
	interval  time.Duration
	rule      AcceptanceRule
	clock     clock.Clock
	logger    output.LoggerInterface
}

// NewWatcher creates a watcher querying through r.
func NewWatcher(r Requester, cfg Config) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = output.DefaultLogger
	}
	return &Watcher{
		requester: r,
		interval:  cfg.PollInterval,
		rule:      cfg.Acceptance,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
}

// PollInterval returns the delay applied after each poll.
func (w *Watcher) PollInterval() time.Duration {
	return w.interval
}

// GetHeight returns the node's current block height.
func (w *Watcher) GetHeight(ctx context.Context) (int64, error) {
	resp, err := w.requester.Get(ctx, Path, nil)
	if err == nil && resp != nil && resp.Err != nil {
		err = resp.Err
	}
	if err != nil {
		return 0, err
	}

	var body heightResponse
	if err := resp.JSON(&body); err != nil {
		return 0, err
	}
	return body.Height, nil
}

// WaitForNewBlock polls until a height accepted by the acceptance rule is
// observed, and returns it. Under the default rule only start+1 is accepted,
// so a node that skips a height past start+1 keeps the loop running until ctx
// is done. Request failures abort the wait.
func (w *Watcher) WaitForNewBlock(ctx context.Context, start int64) (int64, error) {
	state := &PollState{StartHeight: start, ObservedHeight: start}

	for !state.Done() {
		polled, err := w.GetHeight(ctx)
		if err != nil {
			return 0, fmt.Errorf("waiting for block after height %d: %w", start, err)
		}
		state.Polls++

		if w.rule.accepts(state.ObservedHeight, polled) {
			state.ObservedHeight = polled
		}

		w.logger.Debug("\tWaiting for block: Height: %d Second: %d", polled, state.Polls)

		if err := w.sleep(ctx); err != nil {
			return 0, err
		}
	}

	return state.ObservedHeight, nil
}

// OnNewBlock reads the current height and waits for the next block.
func (w *Watcher) OnNewBlock(ctx context.Context) (int64, error) {
	h, err := w.GetHeight(ctx)
	if err != nil {
		return 0, err
	}
	return w.WaitForNewBlock(ctx, h)
}

func (w *Watcher) sleep(ctx context.Context) error {
	timer := w.clock.Timer(w.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
