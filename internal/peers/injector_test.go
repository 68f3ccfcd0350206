package peers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-harvest/node-harness/internal/client"
	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/output"
	"github.com/b-harvest/node-harness/internal/random"
)

const peerURL = "http://localhost:4003/peer/height"

func newTestAdapter(logger output.LoggerInterface, opts ...client.Option) *client.Adapter {
	opts = append([]client.Option{client.WithLogger(logger)}, opts...)
	return client.NewAdapter("",
		&fixtures.Server{Port: 4000, Version: "1.0.0"},
		&fixtures.Network{Name: "testnet", Nethash: "abc123"},
		opts...)
}

func newTestInjector(mt *httpmock.MockTransport) *Injector {
	var buf bytes.Buffer
	logger := output.NewLoggerWithWriters(&buf, &buf)
	return NewInjector(Config{
		Adapter: newTestAdapter(logger, client.WithHTTPClient(&http.Client{Transport: mt})),
		Random:  random.NewGenerator(1),
		Logger:  logger,
	})
}

func TestAddPeers_SendsNHandshakes(t *testing.T) {
	mt := httpmock.NewMockTransport()
	var seen []http.Header
	mt.RegisterResponder(http.MethodGet, peerURL, func(req *http.Request) (*http.Response, error) {
		seen = append(seen, req.Header.Clone())
		return httpmock.NewStringResponse(http.StatusOK, `{"success":true,"height":1}`), nil
	})

	peer, err := newTestInjector(mt).AddPeers(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, mt.GetTotalCallCount())
	require.Len(t, seen, 5)
	for _, h := range seen {
		assert.Contains(t, DefaultOperatingSystems, h.Get(client.HeaderOS))
		assert.Equal(t, "1.0.0", h.Get(client.HeaderVersion))
		assert.Equal(t, "4003", h.Get(client.HeaderPort))
		assert.Equal(t, "abc123", h.Get(client.HeaderNethash))
	}

	assert.Contains(t, DefaultOperatingSystems, peer.OperatingSystem)
	assert.Equal(t, 4003, peer.Port)
	assert.Equal(t, "1.0.0", peer.ClientVersion)
	assert.Equal(t, "abc123", peer.NetworkHash)
}

func TestAddPeers_Zero(t *testing.T) {
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, peerURL, httpmock.NewStringResponder(http.StatusOK, ""))

	peer, err := newTestInjector(mt).AddPeers(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, PeerDescriptor{}, peer)
	assert.Zero(t, mt.GetTotalCallCount())
}

func TestAddPeers_AbortsOnBadStatus(t *testing.T) {
	const failAt = 3

	mt := httpmock.NewMockTransport()
	var calls int32
	mt.RegisterResponder(http.MethodGet, peerURL, func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == failAt {
			return httpmock.NewStringResponse(http.StatusForbidden, `{"success":false}`), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
	})

	_, err := newTestInjector(mt).AddPeers(context.Background(), 10)
	require.Error(t, err)

	var ie *InjectionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, failAt-1, ie.Completed)

	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Status)
	assert.Equal(t, peerURL, se.URL)

	assert.Equal(t, failAt, mt.GetTotalCallCount())
}

func TestAddPeers_AbortsOnTransportError(t *testing.T) {
	mt := httpmock.NewMockTransport()
	boom := errors.New("boom")
	mt.RegisterResponder(http.MethodGet, peerURL, httpmock.NewErrorResponder(boom))

	_, err := newTestInjector(mt).AddPeers(context.Background(), 4)
	require.Error(t, err)
	assert.True(t, IsInjectionError(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestAddPeers_ContextCancelled(t *testing.T) {
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, peerURL, httpmock.NewStringResponder(http.StatusOK, ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestInjector(mt).AddPeers(ctx, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, mt.GetTotalCallCount())
}

func TestInjector_URL(t *testing.T) {
	inj := NewInjector(Config{Host: "127.0.0.1"})
	assert.Equal(t, "http://127.0.0.1:4005/peer/height", inj.URL(4005))
}

func TestAddPeers_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	var buf bytes.Buffer
	logger := output.NewLoggerWithWriters(&buf, &buf)
	inj := NewInjector(Config{
		Ports:   []int{port},
		Host:    "127.0.0.1",
		Adapter: newTestAdapter(logger),
		Logger:  logger,
	})

	_, err = inj.AddPeers(context.Background(), 2)
	require.Error(t, err)

	var ie *InjectionError
	require.ErrorAs(t, err, &ie)
	assert.Zero(t, ie.Completed)
	assert.True(t, client.IsConnectionRefused(err))
	assert.Contains(t, buf.String(), "> nethash: abc123")
}

func TestAddPeers_SoftFailAdapterStillAborts(t *testing.T) {
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, peerURL, httpmock.NewStringResponder(http.StatusForbidden, `{}`))

	logger := output.NewLoggerWithWriters(io.Discard, io.Discard)
	inj := NewInjector(Config{
		Adapter: newTestAdapter(logger, client.WithHTTPClient(&http.Client{Transport: mt}), client.WithSoftFail()),
		Logger:  logger,
	})

	_, err := inj.AddPeers(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, client.IsStatusError(err))
	assert.Equal(t, 1, mt.GetTotalCallCount())
}
