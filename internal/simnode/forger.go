package simnode

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/b-harvest/node-harness/internal/client"
	"github.com/b-harvest/node-harness/internal/keys"
	"github.com/b-harvest/node-harness/internal/lifecycle"
)

// heightReply is the seed peer's answer to a height query.
type heightReply struct {
	Success bool   `json:"success"`
	Height  int64  `json:"height"`
	ID      string `json:"id"`
}

// Forger produces blocks in round-robin over its delegates.
type Forger struct {
	node *Node
	cfg  *lifecycle.ProcessConfig

	mu        sync.Mutex
	delegates []*keys.KeyPair
	round     int
	forged    int
}

var _ lifecycle.ForgingEngine = (*Forger)(nil)

func newForger(n *Node, cfg *lifecycle.ProcessConfig) *Forger {
	return &Forger{node: n, cfg: cfg}
}

// LoadDelegates derives the key pair of every configured secret.
func (f *Forger) LoadDelegates(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var secrets []string
	if f.cfg.Delegates != nil {
		secrets = f.cfg.Delegates.Secrets
	}

	delegates := make([]*keys.KeyPair, 0, len(secrets))
	for i, secret := range secrets {
		kp, err := keys.DeriveKeys(secret)
		if err != nil {
			return 0, fmt.Errorf("delegate %d: %w", i, err)
		}
		delegates = append(delegates, kp)
	}

	f.mu.Lock()
	f.delegates = delegates
	f.mu.Unlock()
	return len(delegates), nil
}

// StartForging forges one block per block time in the background and
// submits it to seedPeer. The loop runs until the node is closed.
func (f *Forger) StartForging(ctx context.Context, seedPeer string) error {
	f.mu.Lock()
	n := len(f.delegates)
	f.mu.Unlock()
	if n == 0 {
		return errors.New("no delegates to forge with")
	}

	adapter := client.NewAdapter(seedPeer, f.cfg.Server, f.cfg.Network,
		client.WithLogger(f.node.opts.Logger))
	ticker := f.node.opts.Clock.Ticker(f.node.opts.BlockTime)

	f.node.wg.Add(1)
	go func() {
		defer f.node.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-f.node.ctx.Done():
				return
			case <-ticker.C:
				if err := f.forge(f.node.ctx, adapter); err != nil {
					f.node.logger.Error("forging failed", "err", err)
				}
			}
		}
	}()
	return nil
}

// Forged returns the number of blocks the seed peer accepted.
func (f *Forger) Forged() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forged
}

// forge builds the block after the seed peer's tip and submits it.
func (f *Forger) forge(ctx context.Context, adapter *client.Adapter) error {
	resp, err := adapter.Get(ctx, peerHeightEndpoint, nil)
	if err != nil {
		return err
	}
	var tip heightReply
	if err := resp.JSON(&tip); err != nil {
		return err
	}

	f.mu.Lock()
	delegate := f.delegates[f.round%len(f.delegates)]
	f.round++
	f.mu.Unlock()

	block, err := f.sign(&Block{
		Height:             tip.Height + 1,
		PreviousBlock:      tip.ID,
		Timestamp:          f.node.opts.Clock.Now().Unix(),
		GeneratorPublicKey: delegate.PublicKeyHex(),
	}, delegate)
	if err != nil {
		return err
	}

	if _, err := adapter.Post(ctx, peerBlocksEndpoint, blockRequest{Block: block}); err != nil {
		return err
	}

	f.mu.Lock()
	f.forged++
	f.mu.Unlock()
	f.node.logger.Info("block forged", "height", block.Height, "generator", block.GeneratorPublicKey)
	return nil
}

// sign sets the block id to the Keccak-256 of its unsigned encoding and signs
// that hash with the delegate key.
func (f *Forger) sign(b *Block, kp *keys.KeyPair) (*Block, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode block: %w", err)
	}
	hash := crypto.Keccak256(data)

	priv, err := crypto.ToECDSA(kp.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid delegate key: %w", err)
	}
	sig, err := crypto.Sign(hash, priv)
	if err != nil {
		return nil, fmt.Errorf("failed to sign block: %w", err)
	}

	b.ID = hex.EncodeToString(hash)
	b.BlockSignature = hex.EncodeToString(sig)
	return b, nil
}
