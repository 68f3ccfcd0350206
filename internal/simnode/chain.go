package simnode

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/b-harvest/node-harness/internal/lifecycle"
)

// Block is a block as stored and exchanged by the simulated node.
type Block struct {
	ID                   string `json:"id"`
	Height               int64  `json:"height"`
	PreviousBlock        string `json:"previousBlock,omitempty"`
	Timestamp            int64  `json:"timestamp"`
	NumberOfTransactions int    `json:"numberOfTransactions"`
	GeneratorPublicKey   string `json:"generatorPublicKey,omitempty"`
	BlockSignature       string `json:"blockSignature,omitempty"`
}

// ErrNotAttached is returned when the chain is used before storage is attached.
var ErrNotAttached = errors.New("chain has no storage attached")

// StorageTypeError is returned when the chain was given a storage it cannot
// read blocks from.
type StorageTypeError struct {
	Type string
}

func (e *StorageTypeError) Error() string {
	return fmt.Sprintf("chain storage must be *simnode.Storage, got %s", e.Type)
}

// HeightError is returned when a received block does not extend the chain.
type HeightError struct {
	Expected int64
	Received int64
}

func (e *HeightError) Error() string {
	return fmt.Sprintf("block height %d does not extend chain, expected %d", e.Received, e.Expected)
}

// Chain is the sync engine of a simulated relay.
type Chain struct {
	cfg    *lifecycle.ProcessConfig
	logger lifecycle.NodeLogger

	mu        sync.RWMutex
	storage   *Storage
	attachErr error
	network lifecycle.NetworkInterface
	last    *Block
	synced  bool
}

var _ lifecycle.SyncEngine = (*Chain)(nil)

// NewChain creates a chain for cfg.
func NewChain(cfg *lifecycle.ProcessConfig, logger lifecycle.NodeLogger) *Chain {
	return &Chain{cfg: cfg, logger: logger}
}

// AttachStorage sets the chain database. Only *Storage is supported; any
// other type is reported by Init.
func (c *Chain) AttachStorage(db lifecycle.Storage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := db.(*Storage)
	if !ok && db != nil {
		c.storage, c.attachErr = nil, &StorageTypeError{Type: fmt.Sprintf("%T", db)}
		return
	}
	c.storage, c.attachErr = s, nil
}

// storageErr returns why the chain has no usable storage. c.mu must be held.
func (c *Chain) storageErr() error {
	if c.attachErr != nil {
		return c.attachErr
	}
	return ErrNotAttached
}

// AttachNetworkInterface sets the network the chain syncs with.
func (c *Chain) AttachNetworkInterface(n lifecycle.NetworkInterface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.network = n
}

// Init loads the last stored block. An empty chain is seeded with the
// genesis block first.
func (c *Chain) Init(ctx context.Context) (*lifecycle.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage == nil {
		return nil, c.storageErr()
	}

	last, err := c.storage.LastBlock()
	if err != nil {
		return nil, fmt.Errorf("failed to load last block: %w", err)
	}
	if last == nil && c.cfg.GenesisBlock != nil {
		g := c.cfg.GenesisBlock
		last = &Block{
			ID:                   g.ID,
			Height:               g.Height,
			Timestamp:            g.Timestamp,
			NumberOfTransactions: g.NumberOfTransactions,
			GeneratorPublicKey:   g.GeneratorPublicKey,
			BlockSignature:       g.BlockSignature,
		}
		if last.Height == 0 {
			last.Height = 1
		}
		if err := c.storage.SaveBlock(last); err != nil {
			return nil, fmt.Errorf("failed to store genesis block: %w", err)
		}
	}
	c.last = last

	if last == nil {
		return nil, nil
	}
	return &lifecycle.Block{ID: last.ID, Height: last.Height}, nil
}

// SyncWithNetwork marks the chain synced. The simulated network has no
// remote peers to download from.
func (c *Chain) SyncWithNetwork(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.network == nil {
		return errors.New("chain has no network interface attached")
	}
	c.synced = true
	return nil
}

// Synced reports whether SyncWithNetwork completed.
func (c *Chain) Synced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// LastBlock returns the chain tip, nil before Init.
func (c *Chain) LastBlock() *Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Height returns the chain tip height, 0 before Init.
func (c *Chain) Height() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return 0
	}
	return c.last.Height
}

// Accept appends b when it extends the tip by exactly one height.
func (c *Chain) Accept(b *Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage == nil {
		return c.storageErr()
	}
	var expected int64 = 1
	if c.last != nil {
		expected = c.last.Height + 1
	}
	if b.Height != expected {
		return &HeightError{Expected: expected, Received: b.Height}
	}
	if err := c.storage.SaveBlock(b); err != nil {
		return err
	}
	c.last = b

	if c.logger != nil {
		c.logger.Info("block accepted", "height", b.Height, "id", b.ID)
	}
	return nil
}
