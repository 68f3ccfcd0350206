package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/output"
)

func testFixtures() (*fixtures.Server, *fixtures.Network) {
	return &fixtures.Server{Port: 4000, Version: "1.0.0"},
		&fixtures.Network{Name: "testnet", Nethash: "abc123"}
}

func newTestAdapter(t *testing.T, url string, opts ...Option) (*Adapter, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := output.NewLoggerWithWriters(&buf, &buf)
	server, network := testFixtures()
	opts = append([]Option{WithLogger(logger)}, opts...)
	return NewAdapter(url, server, network, opts...), &buf
}

func TestAdapter_SendsIdentificationHeaders(t *testing.T) {
	var got http.Header
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	a, _ := newTestAdapter(t, srv.URL)
	resp, err := a.Get(context.Background(), "/api/blocks/getHeight", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "1.0.0", got.Get(HeaderVersion))
	assert.Equal(t, "4000", got.Get(HeaderPort))
	assert.Equal(t, "abc123", got.Get(HeaderNethash))
	assert.Empty(t, got.Get("Content-Type"))
	assert.Empty(t, body)
}

func TestAdapter_TypedNilParamsSendNoBody(t *testing.T) {
	var body []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a, _ := newTestAdapter(t, srv.URL)
	for _, params := range []any{map[string]any(nil), (*struct{ A int })(nil), []int(nil)} {
		_, err := a.Get(context.Background(), "/p", params)
		require.NoError(t, err)
		assert.Empty(t, body, "%T", params)
		assert.Empty(t, contentType, "%T", params)
	}
}

func TestAdapter_PostSendsJSONBody(t *testing.T) {
	var got map[string]any
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"id":"42"}`))
	}))
	defer srv.Close()

	a, _ := newTestAdapter(t, srv.URL)
	resp, err := a.Post(context.Background(), "/api/transactions", map[string]any{"amount": 10})
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.EqualValues(t, 10, got["amount"])

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "42", out.ID)
}

func TestAdapter_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	a, buf := newTestAdapter(t, srv.URL)
	resp, err := a.Put(context.Background(), "/api/x", nil)
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, srv.URL+"/api/x", se.URL)
	assert.True(t, IsTransportFailure(err))
	assert.Equal(t, http.StatusInternalServerError, resp.Status)

	assert.Contains(t, buf.String(), "> ERROR: PUT "+srv.URL+"/api/x")
	assert.Contains(t, buf.String(), "> status: 500")
}

func TestAdapter_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	a, _ := newTestAdapter(t, srv.URL)
	_, err := a.Get(context.Background(), "/", nil)

	var ce *ContentTypeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "text/plain", ce.ContentType)
	assert.False(t, IsTransportFailure(err))
}

func closedURL(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return "http://" + addr
}

func TestAdapter_ConnectionRefused(t *testing.T) {
	a, buf := newTestAdapter(t, closedURL(t))

	_, err := a.Get(context.Background(), "/api/blocks/getHeight", nil)
	require.Error(t, err)
	assert.True(t, IsConnectionRefused(err))
	assert.True(t, IsTransportFailure(err))

	assert.Contains(t, buf.String(), "> ERROR:")
	assert.Contains(t, buf.String(), "> nethash: abc123")
}

func TestAdapter_SoftFail(t *testing.T) {
	a, buf := newTestAdapter(t, closedURL(t), WithSoftFail())

	resp, err := a.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, IsConnectionRefused(resp.Err))
	assert.Contains(t, buf.String(), "> ERROR:")
}

func TestAdapter_ForBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a, _ := newTestAdapter(t, closedURL(t))
	b := a.ForBaseURL(srv.URL + "/")

	_, err := b.Get(context.Background(), "/ok", nil)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, b.BaseURL())
	assert.NotEqual(t, a.BaseURL(), b.BaseURL())
}

func TestNewAdapter_DefaultBaseURL(t *testing.T) {
	server, network := testFixtures()
	a := NewAdapter("", server, network)
	assert.Equal(t, "http://localhost:4000", a.BaseURL())
	assert.Equal(t, "abc123", a.Nethash())
	assert.Equal(t, "1.0.0", a.Version())
	assert.Equal(t, 4000, a.Port())
}

func TestAdapter_AnyContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	a, _ := newTestAdapter(t, srv.URL)
	resp, err := a.Do(context.Background(), RequestSpec{
		Path:           "/peer/height",
		Header:         http.Header{HeaderPort: []string{"4003"}},
		AnyContentType: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
}
