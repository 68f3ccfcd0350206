package harness

import (
	"context"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-harvest/node-harness/internal/config"
	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/lifecycle"
	"github.com/b-harvest/node-harness/internal/output"
	"github.com/b-harvest/node-harness/internal/random"
	"github.com/b-harvest/node-harness/internal/simnode"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

// newTestHarness builds a harness over a simulated node on free ports.
func newTestHarness(t *testing.T, mutate func(*config.Config)) *Harness {
	t.Helper()

	set, err := fixtures.LoadEmbedded(fixtures.DefaultNetwork)
	require.NoError(t, err)
	server := *set.Server
	server.Address = "127.0.0.1"
	server.Port = freePort(t)
	set.Server = &server

	peerPort := freePort(t)
	cfg := config.DefaultConfig()
	cfg.Harness.BaseURL = fmt.Sprintf("http://127.0.0.1:%d", server.Port)
	cfg.Polling.Interval = 20 * time.Millisecond
	cfg.Peers.Ports = []int{peerPort}
	cfg.Peers.Host = "127.0.0.1"
	cfg.Forger.SeedPeer = cfg.Harness.BaseURL
	if mutate != nil {
		mutate(cfg)
	}

	h, err := New(Options{
		Config:     cfg,
		Fixtures:   set,
		Simulation: simnode.Options{PeerPort: peerPort, BlockTime: 50 * time.Millisecond},
		Logger:     output.NewLoggerWithWriters(io.Discard, io.Discard),
		NodeLogger: output.NewNodeLogger(io.Discard),
		Random:     random.NewGenerator(7),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Node().Close() })
	return h
}

func TestNew_Defaults(t *testing.T) {
	h, err := New(Options{
		Logger:     output.NewLoggerWithWriters(io.Discard, io.Discard),
		NodeLogger: output.NewNodeLogger(io.Discard),
	})
	require.NoError(t, err)
	defer h.Node().Close()

	assert.Equal(t, "testnet", h.Network)
	assert.Equal(t, h.Fixtures.Server.BaseURL(), h.BaseURL)
	assert.Equal(t, 10*time.Second, h.BlockTime)
	assert.Equal(t, 12*time.Second, h.BlockTimePlus)
	assert.Equal(t, int64(100_000_000), h.Normalizer)
	assert.Equal(t, "0.0.0", h.Version)
	assert.Equal(t, time.Second, h.Watcher.PollInterval())

	require.NotNil(t, h.EAccount)
	assert.Equal(t, h.Fixtures.Delegates[0].Passphrase, h.EAccount.Password)
	assert.NotEmpty(t, h.EAccount.Address)

	require.NotNil(t, h.GAccount)
	assert.Equal(t, h.Fixtures.GenesisPassphrase.Passphrase, h.GAccount.Password)
	assert.NotEmpty(t, h.GAccount.PublicKey)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Polling.Acceptance = "sometimes"
	_, err := New(Options{Config: cfg})
	require.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Harness.Network = "nosuchnet"
	_, err = New(Options{Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load fixtures")
}

func TestFees(t *testing.T) {
	fees := DefaultFees()
	assert.Equal(t, sdkmath.NewInt(10_000_000), fees.TransactionFee)
	assert.Equal(t, sdkmath.NewInt(2_500_000_000), fees.DelegateRegistrationFee)

	h := &Harness{Fees: fees}
	assert.Equal(t, fees.TransactionFee, h.ExpectedFee(sdkmath.NewInt(1)))
	assert.Equal(t, fees.TransactionFee, h.ExpectedFee(sdkmath.NewInt(999_000_000_000)))
}

func TestHarness_EndToEnd(t *testing.T) {
	h := newTestHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.Setup(ctx))
	// a second setup resumes the running relay
	require.NoError(t, h.Setup(ctx))
	relay := h.Orchestrator.Relay()
	assert.Equal(t, lifecycle.StateRunning, relay.State())

	height, err := h.GetHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), height)

	peer, err := h.AddPeers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, h.Fixtures.Network.Nethash, peer.NetworkHash)
	assert.Len(t, h.Node().Peers(), 1)

	resp, err := h.Get(ctx, "/api/blocks/getNethash", nil)
	require.NoError(t, err)
	var body struct {
		Nethash string `json:"nethash"`
	}
	require.NoError(t, resp.JSON(&body))
	assert.Equal(t, h.Fixtures.Network.Nethash, body.Nethash)

	acc, err := h.RandomAccount()
	require.NoError(t, err)
	assert.NotEmpty(t, acc.Address)

	require.NoError(t, h.Teardown(ctx))
	_, err = h.GetHeight(ctx)
	require.Error(t, err)
}

func TestHarness_OnNewBlock(t *testing.T) {
	h := newTestHarness(t, func(cfg *config.Config) {
		cfg.Polling.Acceptance = config.AcceptAtLeast
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, h.Setup(ctx))
	defer h.Teardown(context.Background())

	forger, err := h.StartForger(ctx)
	require.NoError(t, err)
	require.Equal(t, lifecycle.StateRunning, forger.State())

	next, err := h.OnNewBlock(ctx)
	require.NoError(t, err)
	assert.Greater(t, next, int64(1))
}

type fakeRunner struct {
	code int
	ran  bool
}

func (r *fakeRunner) Run() int {
	r.ran = true
	return r.code
}

func TestRunSuite(t *testing.T) {
	h := newTestHarness(t, nil)
	r := &fakeRunner{code: 3}
	assert.Equal(t, 3, RunSuite(r, h))
	assert.True(t, r.ran)
	assert.Nil(t, h.Orchestrator.Relay())
}

func TestRunSuite_SetupFailure(t *testing.T) {
	h := newTestHarness(t, nil)

	// occupy the API port so the relay cannot listen
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", fmt.Sprint(h.Fixtures.Server.Port)))
	require.NoError(t, err)
	defer l.Close()

	r := &fakeRunner{}
	assert.Equal(t, 1, RunSuite(r, h))
	assert.False(t, r.ran)
	assert.Equal(t, lifecycle.StateFailed, h.Orchestrator.Relay().State())
	assert.True(t, lifecycle.IsLifecycleError(h.Orchestrator.Relay().Err()))
}
