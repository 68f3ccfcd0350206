package lifecycle

import (
	"context"
	"errors"

	"github.com/b-harvest/node-harness/internal/fixtures"
)

// ProcessConfig is the configuration a node process runs with, produced by a
// ConfigInitializer from the start options.
type ProcessConfig struct {
	Server       *fixtures.Server
	GenesisBlock *fixtures.GenesisBlock
	Network      *fixtures.Network
	Delegates    *fixtures.ForgerDelegates
}

// Block identifies a block known to the node.
type Block struct {
	ID     string `json:"id"`
	Height int64  `json:"height"`
}

// ConfigInitializer turns start options into the process configuration.
type ConfigInitializer interface {
	Init(opts fixtures.NodeOptions) (*ProcessConfig, error)
}

// NodeLogger is the logger of a node process.
type NodeLogger interface {
	Init(level, label string) error
	SetLevel(tag string) error
	Info(msg string, keyVals ...any)
	Error(msg string, keyVals ...any)
}

// Storage is an open chain database.
type Storage interface {
	Close() error
}

// StorageFactory opens chain databases.
type StorageFactory interface {
	Create(ctx context.Context, opts fixtures.StorageOptions) (Storage, error)
}

// NetworkInterface is the peer-to-peer side of a relay.
type NetworkInterface interface {
	Warmup(ctx context.Context) error
	Close(ctx context.Context) error
}

// SyncEngine keeps the local chain in step with the network.
type SyncEngine interface {
	AttachStorage(db Storage)
	AttachNetworkInterface(n NetworkInterface)

	// Init loads the local chain and returns its last block, nil when the
	// chain is empty.
	Init(ctx context.Context) (*Block, error)
	SyncWithNetwork(ctx context.Context) error
}

// PublicAPI is the HTTP query API of a relay.
type PublicAPI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// ForgingEngine produces blocks for the loaded delegates.
type ForgingEngine interface {
	// LoadDelegates loads the forging delegates and returns how many there are.
	LoadDelegates(ctx context.Context) (int, error)
	StartForging(ctx context.Context, seedPeer string) error
}

// Collaborators bundles the node components the orchestrator drives.
// Constructor funcs are called once per start with the process configuration.
type Collaborators struct {
	Config  ConfigInitializer
	Logger  NodeLogger
	Storage StorageFactory

	NewSyncEngine       func(cfg *ProcessConfig) SyncEngine
	NewNetworkInterface func(cfg *ProcessConfig) NetworkInterface
	NewPublicAPI        func(cfg *ProcessConfig) PublicAPI
	NewForgingEngine    func(cfg *ProcessConfig) ForgingEngine
}

// Validate checks that every collaborator is set.
func (c Collaborators) Validate() error {
	var errs []error
	if c.Config == nil {
		errs = append(errs, errors.New("config initializer is required"))
	}
	if c.Logger == nil {
		errs = append(errs, errors.New("node logger is required"))
	}
	if c.Storage == nil {
		errs = append(errs, errors.New("storage factory is required"))
	}
	if c.NewSyncEngine == nil {
		errs = append(errs, errors.New("sync engine constructor is required"))
	}
	if c.NewNetworkInterface == nil {
		errs = append(errs, errors.New("network interface constructor is required"))
	}
	if c.NewPublicAPI == nil {
		errs = append(errs, errors.New("public API constructor is required"))
	}
	if c.NewForgingEngine == nil {
		errs = append(errs, errors.New("forging engine constructor is required"))
	}
	return errors.Join(errs...)
}
