// Package harness is the entry point of an integration test suite. It wires
// configuration, fixtures, the node lifecycle, block polling, peer injection
// and HTTP access into one value a suite keeps for its whole run.
package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/b-harvest/node-harness/internal/client"
	"github.com/b-harvest/node-harness/internal/config"
	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/height"
	"github.com/b-harvest/node-harness/internal/keys"
	"github.com/b-harvest/node-harness/internal/lifecycle"
	"github.com/b-harvest/node-harness/internal/output"
	"github.com/b-harvest/node-harness/internal/peers"
	"github.com/b-harvest/node-harness/internal/random"
	"github.com/b-harvest/node-harness/internal/simnode"
)

// Chain timing of the test networks.
const (
	BlockTime     = 10 * time.Second
	BlockTimePlus = BlockTime + 2*time.Second
)

// NodeVersion is the version a harness-driven node reports.
const NodeVersion = "0.0.0"

// Options configures New.
type Options struct {
	// Config is the harness configuration. Nil means config.DefaultConfig.
	Config *config.Config

	// Fixtures replaces the fixture set named by Config.
	Fixtures *fixtures.Set

	// Collaborators drive the node lifecycle. Nil means a simulated node.
	Collaborators *lifecycle.Collaborators

	// Simulation configures the simulated node when Collaborators is nil.
	Simulation simnode.Options

	// Logger is the console logger. Nil means output.DefaultLogger.
	Logger output.LoggerInterface

	// NodeLogger is the node process logger. Nil means one writing to stderr.
	NodeLogger *output.NodeLogger

	// Random seeds generated values. Nil means the package generator.
	Random *random.Generator
}

// Harness holds everything a test suite needs to drive a node.
type Harness struct {
	Config   *config.Config
	Fixtures *fixtures.Set

	Network       string
	BaseURL       string
	BlockTime     time.Duration
	BlockTimePlus time.Duration
	Normalizer    int64
	Version       string
	Fees          Fees

	// EAccount is the first fixture delegate, GAccount the genesis account.
	EAccount *FixtureAccount
	GAccount *FixtureAccount

	Orchestrator *lifecycle.Orchestrator
	Adapter      *client.Adapter
	Watcher      *height.Watcher
	Injector     *peers.Injector
	Random       *random.Generator
	Deriver      keys.Deriver

	logger output.LoggerInterface
	node   *simnode.Node
}

// New builds a harness from opts.
func New(opts Options) (*Harness, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = output.DefaultLogger
	}
	rnd := opts.Random
	if rnd == nil {
		rnd = random.Default()
	}

	set := opts.Fixtures
	if set == nil {
		var err error
		if set, err = fixtures.Resolve(cfg.Harness.FixturesDir, cfg.Harness.Network); err != nil {
			return nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
	}

	rule, err := height.ParseAcceptanceRule(cfg.Polling.Acceptance)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		Config:        cfg,
		Fixtures:      set,
		Network:       set.Network.Name,
		BlockTime:     BlockTime,
		BlockTimePlus: BlockTimePlus,
		Normalizer:    random.Normalizer,
		Version:       NodeVersion,
		Fees:          DefaultFees(),
		Random:        rnd,
		Deriver:       keys.NewDeriver(set.Network.PubKeyHash),
		logger:        logger,
	}

	if len(set.Delegates) > 0 {
		if h.EAccount, err = accountFromPassphrase(&set.Delegates[0], h.Deriver); err != nil {
			return nil, fmt.Errorf("failed to derive delegate account: %w", err)
		}
	}
	if set.GenesisPassphrase != nil && set.GenesisPassphrase.Passphrase != "" {
		if h.GAccount, err = accountFromPassphrase(set.GenesisPassphrase, h.Deriver); err != nil {
			return nil, fmt.Errorf("failed to derive genesis account: %w", err)
		}
	}

	adapterOpts := []client.Option{
		client.WithLogger(logger),
		client.WithTimeout(cfg.Timeouts.Request),
	}
	if cfg.Harness.SoftFail {
		adapterOpts = append(adapterOpts, client.WithSoftFail())
	}
	h.Adapter = client.NewAdapter(cfg.Harness.BaseURL, set.Server, set.Network, adapterOpts...)
	h.BaseURL = h.Adapter.BaseURL()

	h.Watcher = height.NewWatcher(h.Adapter, height.Config{
		PollInterval: cfg.Polling.Interval,
		Acceptance:   rule,
		Logger:       logger,
	})

	h.Injector = peers.NewInjector(peers.Config{
		OperatingSystems: cfg.Peers.OperatingSystems,
		Ports:            cfg.Peers.Ports,
		Host:             cfg.Peers.Host,
		Adapter:          h.Adapter,
		Random:           rnd,
		Logger:           logger,
	})

	collab := opts.Collaborators
	if collab == nil {
		nodeLogger := opts.NodeLogger
		if nodeLogger == nil {
			nodeLogger = output.NewNodeLogger(os.Stderr)
		}
		sim := opts.Simulation
		if sim.Logger == nil {
			sim.Logger = logger
		}
		h.node = simnode.New(nodeLogger, sim)
		c := h.node.Collaborators()
		collab = &c
	}

	h.Orchestrator, err = lifecycle.New(*collab, set,
		lifecycle.WithLogger(logger),
		lifecycle.WithSeedPeer(cfg.Forger.SeedPeer),
		lifecycle.WithLogLevel(cfg.Harness.LogLevel))
	if err != nil {
		return nil, err
	}

	return h, nil
}

// Node returns the simulated node, nil when external collaborators are used.
func (h *Harness) Node() *simnode.Node {
	return h.node
}

// Logger returns the console logger.
func (h *Harness) Logger() output.LoggerInterface {
	return h.logger
}

// Setup resumes the relay, starting it when it is not up yet. A relay that
// failed to start is reported as an error so the suite does not run against
// a dead node.
func (h *Harness) Setup(ctx context.Context) error {
	s, err := h.Orchestrator.ResumeRelay(ctx, nil)
	if err != nil {
		return err
	}
	if s.State() == lifecycle.StateFailed {
		return s.Err()
	}
	return nil
}

// Teardown stops the simulated forging loops, then the relay. The
// simulated node cannot forge again afterwards.
func (h *Harness) Teardown(ctx context.Context) error {
	if h.Config.Timeouts.Shutdown > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Config.Timeouts.Shutdown)
		defer cancel()
	}

	var errs []error
	if h.node != nil {
		errs = append(errs, h.node.Close())
	}
	if err := h.Orchestrator.StopRelay(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Runner is the part of *testing.M RunSuite needs.
type Runner interface {
	Run() int
}

// RunSuite runs a test binary between Setup and Teardown and returns its
// exit code. Use it from TestMain: os.Exit(harness.RunSuite(m, h)).
func RunSuite(m Runner, h *Harness) int {
	ctx := context.Background()
	if err := h.Setup(ctx); err != nil {
		h.logger.Error("suite setup failed: %v", err)
		return 1
	}

	code := m.Run()

	if err := h.Teardown(ctx); err != nil {
		h.logger.Error("suite teardown failed: %v", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

// StartForger starts a forger from the fixture set.
func (h *Harness) StartForger(ctx context.Context) (*lifecycle.Session, error) {
	return h.Orchestrator.StartForger(ctx, nil)
}

// Get sends a GET request to the node.
func (h *Harness) Get(ctx context.Context, path string, params any) (*client.Response, error) {
	return h.Adapter.Get(ctx, path, params)
}

// Post sends a POST request to the node.
func (h *Harness) Post(ctx context.Context, path string, params any) (*client.Response, error) {
	return h.Adapter.Post(ctx, path, params)
}

// Put sends a PUT request to the node.
func (h *Harness) Put(ctx context.Context, path string, params any) (*client.Response, error) {
	return h.Adapter.Put(ctx, path, params)
}

// GetHeight returns the node's current height.
func (h *Harness) GetHeight(ctx context.Context) (int64, error) {
	return h.Watcher.GetHeight(ctx)
}

// WaitForNewBlock waits for the block after height.
func (h *Harness) WaitForNewBlock(ctx context.Context, height int64) (int64, error) {
	return h.Watcher.WaitForNewBlock(ctx, height)
}

// OnNewBlock waits for the next block.
func (h *Harness) OnNewBlock(ctx context.Context) (int64, error) {
	return h.Watcher.OnNewBlock(ctx)
}

// AddPeers announces n synthetic peers to the node.
func (h *Harness) AddPeers(ctx context.Context, n int) (peers.PeerDescriptor, error) {
	return h.Injector.AddPeers(ctx, n)
}

// RandomAccount returns a random unfunded account of the harness network.
func (h *Harness) RandomAccount() (*random.Account, error) {
	return h.Random.Account(h.Deriver)
}

// RandomTxAccount returns a random account with transaction bookkeeping.
func (h *Harness) RandomTxAccount() (*random.TxAccount, error) {
	return h.Random.TxAccount(h.Deriver)
}

// ExpectedFee returns the fee charged for sending amount.
func (h *Harness) ExpectedFee(amount sdkmath.Int) sdkmath.Int {
	return h.Fees.ExpectedFee(amount)
}
