// Package simnode is an in-process stand-in for a relay and forger node.
//
// It provides every collaborator the lifecycle orchestrator drives: chain
// storage on cosmos-db, a sync engine, a peer listener, a public query API
// and a forging engine that produces a block per block time and submits it
// to its seed peer. It performs no consensus and no block validation beyond
// height continuity.
package simnode

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/b-harvest/node-harness/internal/lifecycle"
	"github.com/b-harvest/node-harness/internal/output"
)

// DefaultPeerPort is the port the peer listener binds to.
const DefaultPeerPort = 4003

// DefaultBlockTime is the interval between forged blocks.
const DefaultBlockTime = 10 * time.Second

// Options configures a Node.
type Options struct {
	// PeerPort is the peer listener port. Zero means DefaultPeerPort.
	PeerPort int

	// BlockTime is the forging interval. Zero means DefaultBlockTime.
	BlockTime time.Duration

	// DataDir holds persistent databases when the server db has no dir.
	DataDir string

	// Clock drives forging. Defaults to the wall clock.
	Clock clock.Clock

	// Logger receives request diagnostics of the forger's HTTP client.
	// Defaults to a logger that discards everything.
	Logger output.LoggerInterface
}

// Peer is a peer that announced itself through the peer height endpoint.
type Peer struct {
	ID       string    `json:"id"`
	IP       string    `json:"ip"`
	Port     string    `json:"port"`
	OS       string    `json:"os"`
	Version  string    `json:"version"`
	LastSeen time.Time `json:"lastSeen"`
}

// Node holds the state shared by the collaborators of one simulated node.
type Node struct {
	opts   Options
	logger lifecycle.NodeLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	chain *Chain
	peers map[string]*Peer
}

// New creates a node logging through logger.
func New(logger lifecycle.NodeLogger, opts Options) *Node {
	if opts.PeerPort == 0 {
		opts.PeerPort = DefaultPeerPort
	}
	if opts.BlockTime <= 0 {
		opts.BlockTime = DefaultBlockTime
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = output.NewLoggerWithWriters(io.Discard, io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Node{
		opts:   opts,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		peers:  make(map[string]*Peer),
	}
}

// Collaborators returns the lifecycle collaborators backed by this node.
func (n *Node) Collaborators() lifecycle.Collaborators {
	return lifecycle.Collaborators{
		Config:  ConfigInitializer{},
		Logger:  n.logger,
		Storage: &StorageFactory{Dir: n.opts.DataDir},
		NewSyncEngine: func(cfg *lifecycle.ProcessConfig) lifecycle.SyncEngine {
			c := NewChain(cfg, n.logger)
			n.mu.Lock()
			n.chain = c
			n.mu.Unlock()
			return c
		},
		NewNetworkInterface: func(cfg *lifecycle.ProcessConfig) lifecycle.NetworkInterface {
			return newNetwork(n, cfg)
		},
		NewPublicAPI: func(cfg *lifecycle.ProcessConfig) lifecycle.PublicAPI {
			return newAPI(n, cfg)
		},
		NewForgingEngine: func(cfg *lifecycle.ProcessConfig) lifecycle.ForgingEngine {
			return newForger(n, cfg)
		},
	}
}

// Chain returns the chain of the relay, nil before a relay was started.
func (n *Node) Chain() *Chain {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.chain
}

// Height returns the relay chain height, 0 without a chain.
func (n *Node) Height() int64 {
	if c := n.Chain(); c != nil {
		return c.Height()
	}
	return 0
}

// Peers returns the announced peers ordered by address.
func (n *Node) Peers() []Peer {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Peer, 0, len(n.peers))
	for _, p := range n.peers {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IP != out[j].IP {
			return out[i].IP < out[j].IP
		}
		return out[i].Port < out[j].Port
	})
	return out
}

// announce records or refreshes a peer keyed by ip and port.
func (n *Node) announce(ip, port, os, version string) *Peer {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := ip + ":" + port
	p, ok := n.peers[key]
	if !ok {
		p = &Peer{ID: uuid.NewString(), IP: ip, Port: port}
		n.peers[key] = p
	}
	p.OS = os
	p.Version = version
	p.LastSeen = n.opts.Clock.Now()
	return p
}

// Close stops every forging loop and waits for them to return.
func (n *Node) Close() error {
	n.cancel()
	n.wg.Wait()
	return nil
}
