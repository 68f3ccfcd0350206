// Package lifecycle starts and stops the node processes a test run talks to.
//
// A relay is started in seven stages: process config, node logger, storage,
// sync engine init, network warmup, network sync and public API. A forger is
// started in four: process config, node logger, delegate loading and forging.
// Stages run strictly in order. A failing stage stops the start, is logged as
// a fatal error and leaves whatever earlier stages created in place.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/output"
)

// DefaultSeedPeer is the peer a forger reports its blocks to.
const DefaultSeedPeer = "http://127.0.0.1:4000"

// quietLevel is the relay logger level once it is initialized.
const quietLevel = "error"

// Orchestrator owns the relay and forger sessions of a test run.
type Orchestrator struct {
	mu       sync.Mutex
	collab   Collaborators
	fixtures *fixtures.Set
	logger   output.LoggerInterface
	strict   bool
	seedPeer string
	logLevel string
	relay    *Session
	forger   *Session
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStrictStart makes StartRelay, ResumeRelay and StartForger return the
// *LifecycleError of a failed stage instead of only logging it.
func WithStrictStart() Option {
	return func(o *Orchestrator) {
		o.strict = true
	}
}

// WithLogger sets the console logger fatal errors are printed to.
func WithLogger(l output.LoggerInterface) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithSeedPeer sets the peer URL passed to the forging engine.
func WithSeedPeer(url string) Option {
	return func(o *Orchestrator) {
		if url != "" {
			o.seedPeer = url
		}
	}
}

// WithLogLevel overrides the server fileLogLevel the node logger is
// initialized with.
func WithLogLevel(level string) Option {
	return func(o *Orchestrator) {
		o.logLevel = level
	}
}

// New creates an orchestrator. set supplies the default start options and
// may be nil when every start passes explicit options.
func New(collab Collaborators, set *fixtures.Set, opts ...Option) (*Orchestrator, error) {
	if err := collab.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collaborators: %w", err)
	}
	o := &Orchestrator{
		collab:   collab,
		fixtures: set,
		logger:   output.DefaultLogger,
		seedPeer: DefaultSeedPeer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Relay returns the current relay session, nil when none was started.
func (o *Orchestrator) Relay() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.relay
}

// Forger returns the current forger session, nil when none was started.
func (o *Orchestrator) Forger() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.forger
}

// stage is one step of a process start.
type stage struct {
	name string
	run  func(ctx context.Context) error
}

// StartRelay starts a relay from opts, or from the fixture set when opts is
// nil. A failed stage is reported through the logs and Session.Err; the
// returned error is only set for precondition failures, or for stage
// failures when WithStrictStart is used.
func (o *Orchestrator) StartRelay(ctx context.Context, opts *fixtures.NodeOptions) (*Session, error) {
	s, err := o.beginStart(ctx, ProcessRelay, &o.relay)
	if err != nil {
		return nil, err
	}

	var (
		cfg     *ProcessConfig
		db      Storage
		engine  SyncEngine
		network NetworkInterface
	)
	logger := o.collab.Logger

	stages := []stage{
		{StageConfig, func(ctx context.Context) error {
			var err error
			cfg, err = o.initConfig(opts, o.relayDefaults)
			if err != nil {
				return err
			}
			s.set(func(s *Session) { s.config = cfg })
			return nil
		}},
		{StageLogger, func(ctx context.Context) error {
			if err := o.initLogger(s, cfg, ProcessRelay); err != nil {
				return err
			}
			return logger.SetLevel(quietLevel)
		}},
		{StageStorage, func(ctx context.Context) error {
			var err error
			db, err = o.collab.Storage.Create(ctx, cfg.Server.DB)
			if err != nil {
				return err
			}
			s.set(func(s *Session) { s.storage = db })
			logger.Info("\t> Database started")
			return nil
		}},
		{StageSyncInit, func(ctx context.Context) error {
			engine = o.collab.NewSyncEngine(cfg)
			network = o.collab.NewNetworkInterface(cfg)
			s.set(func(s *Session) {
				s.sync = engine
				s.network = network
			})

			engine.AttachStorage(db)
			engine.AttachNetworkInterface(network)
			last, err := engine.Init(ctx)
			if err != nil {
				return err
			}
			s.set(func(s *Session) { s.lastBlock = last })

			var height int64
			if last != nil {
				height = last.Height
			}
			logger.Info("\t> Blockchain initialized, local lastBlock", "height", height)
			return nil
		}},
		{StageNetworkWarmup, func(ctx context.Context) error {
			if err := network.Warmup(ctx); err != nil {
				return err
			}
			logger.Info("\t> Network interface started")
			return nil
		}},
		{StageSync, func(ctx context.Context) error {
			if err := engine.SyncWithNetwork(ctx); err != nil {
				return err
			}
			logger.Info("\t> Blockchain synced")
			return nil
		}},
		{StagePublicAPI, func(ctx context.Context) error {
			api := o.collab.NewPublicAPI(cfg)
			if err := api.Start(ctx); err != nil {
				return err
			}
			s.set(func(s *Session) { s.api = api })
			logger.Info("\t> Public API ready")
			return nil
		}},
	}

	return s, o.run(ctx, s, stages)
}

// StopRelay closes the public API listener, then the network listener, then
// the storage of the running relay. Without a started relay it returns a
// *PreconditionError.
func (o *Orchestrator) StopRelay(ctx context.Context) error {
	o.mu.Lock()
	s := o.relay
	o.mu.Unlock()

	if s == nil || !s.HasPublicAPI() {
		return &PreconditionError{Operation: "stop relay", Missing: "public API"}
	}
	if !s.HasNetwork() {
		return &PreconditionError{Operation: "stop relay", Missing: "network interface"}
	}
	if err := s.transition(ctx, eventStop); err != nil {
		return fmt.Errorf("failed to stop relay: %w", err)
	}

	var api PublicAPI
	var network NetworkInterface
	var db Storage
	s.set(func(s *Session) {
		api, network, db = s.api, s.network, s.storage
	})

	var errs []error
	if err := api.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close public API: %w", err))
	}
	if err := network.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close network interface: %w", err))
	}
	if db != nil {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
	}

	s.set(func(s *Session) {
		s.api, s.network, s.storage, s.sync = nil, nil, nil, nil
	})
	_ = s.transition(ctx, eventStopped)

	o.mu.Lock()
	if o.relay == s {
		o.relay = nil
	}
	o.mu.Unlock()

	o.logger.Debug("relay %s stopped", s.ID())
	return errors.Join(errs...)
}

// ResumeRelay returns the current relay session when its network interface
// exists, and starts a new relay otherwise.
func (o *Orchestrator) ResumeRelay(ctx context.Context, opts *fixtures.NodeOptions) (*Session, error) {
	o.mu.Lock()
	s := o.relay
	o.mu.Unlock()

	if s != nil && s.HasNetwork() {
		return s, nil
	}
	return o.StartRelay(ctx, opts)
}

// StartForger starts a forger from opts, or from the fixture set when opts
// is nil, and points it at the seed peer. Failures are handled like
// StartRelay. There is no matching stop.
func (o *Orchestrator) StartForger(ctx context.Context, opts *fixtures.NodeOptions) (*Session, error) {
	s, err := o.beginStart(ctx, ProcessForger, &o.forger)
	if err != nil {
		return nil, err
	}

	var (
		cfg    *ProcessConfig
		engine ForgingEngine
	)
	logger := o.collab.Logger

	stages := []stage{
		{StageConfig, func(ctx context.Context) error {
			var err error
			cfg, err = o.initConfig(opts, o.forgerDefaults)
			if err != nil {
				return err
			}
			s.set(func(s *Session) { s.config = cfg })
			return nil
		}},
		{StageLogger, func(ctx context.Context) error {
			return o.initLogger(s, cfg, ProcessForger)
		}},
		{StageDelegates, func(ctx context.Context) error {
			engine = o.collab.NewForgingEngine(cfg)
			s.set(func(s *Session) { s.forger = engine })

			n, err := engine.LoadDelegates(ctx)
			if err != nil {
				return err
			}
			s.set(func(s *Session) { s.forgers = n })
			logger.Info("ForgerManager started", "forgers", n)
			return nil
		}},
		{StageForging, func(ctx context.Context) error {
			return engine.StartForging(ctx, o.seedPeer)
		}},
	}

	return s, o.run(ctx, s, stages)
}

// beginStart creates a session in StateStarting and stores it in slot.
func (o *Orchestrator) beginStart(ctx context.Context, process string, slot **Session) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if cur := *slot; cur != nil {
		switch cur.State() {
		case StateStarting:
			return nil, ErrStartInProgress
		case StateRunning:
			return nil, fmt.Errorf("%s %s: %w", process, cur.ID(), ErrAlreadyRunning)
		}
	}

	s := newSession(process)
	if err := s.transition(ctx, eventStart); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", process, err)
	}
	*slot = s
	return s, nil
}

// run executes stages in order. The first failure ends the start.
func (o *Orchestrator) run(ctx context.Context, s *Session, stages []stage) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return o.abort(ctx, s, st.name, err)
		}
		if err := st.run(ctx); err != nil {
			return o.abort(ctx, s, st.name, err)
		}
	}
	if err := s.transition(ctx, eventStarted); err != nil {
		return fmt.Errorf("failed to mark %s running: %w", s.Process(), err)
	}
	o.logger.Debug("%s %s running", s.Process(), s.ID())
	return nil
}

// abort reports a failed stage and moves the session to StateFailed.
func (o *Orchestrator) abort(ctx context.Context, s *Session, stageName string, err error) error {
	lerr := &LifecycleError{Process: s.Process(), Stage: stageName, Err: err}
	s.fail(ctx, lerr)

	o.collab.Logger.Error("FATAL ERROR", "process", s.Process(), "stage", stageName, "err", err)
	o.logger.PrintFatal(fmt.Sprintf("%s %s", s.Process(), stageName), err)

	if o.strict {
		return lerr
	}
	return nil
}

func (o *Orchestrator) relayDefaults() (fixtures.NodeOptions, error) {
	if o.fixtures == nil {
		return fixtures.NodeOptions{}, errors.New("no start options and no fixture set")
	}
	return o.fixtures.RelayOptions(), nil
}

func (o *Orchestrator) forgerDefaults() (fixtures.NodeOptions, error) {
	if o.fixtures == nil {
		return fixtures.NodeOptions{}, errors.New("no start options and no fixture set")
	}
	return o.fixtures.ForgerOptions(), nil
}

func (o *Orchestrator) initConfig(opts *fixtures.NodeOptions, defaults func() (fixtures.NodeOptions, error)) (*ProcessConfig, error) {
	var resolved fixtures.NodeOptions
	if opts != nil {
		resolved = *opts
	} else {
		var err error
		if resolved, err = defaults(); err != nil {
			return nil, err
		}
	}

	cfg, err := o.collab.Config.Init(resolved)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.Server == nil || cfg.Network == nil {
		return nil, errors.New("process config is missing server or network")
	}
	return cfg, nil
}

func (o *Orchestrator) initLogger(s *Session, cfg *ProcessConfig, process string) error {
	level := cfg.Server.FileLogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	label := fmt.Sprintf("TEST-%s-%s", cfg.Network.Name, process)
	if err := o.collab.Logger.Init(level, label); err != nil {
		return err
	}
	s.set(func(s *Session) { s.label = label })
	return nil
}
