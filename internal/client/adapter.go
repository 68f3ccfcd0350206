// Package client sends HTTP requests to the node under test with the network
// identification headers every node endpoint expects.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/output"
)

// Header names sent with every request.
const (
	HeaderVersion = "version"
	HeaderPort    = "port"
	HeaderNethash = "nethash"
	HeaderOS      = "os"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// RequestSpec describes one request. Params, when it does not encode to
// JSON null, is sent as the JSON body. Header entries replace the
// identification headers of the same name.
type RequestSpec struct {
	Verb   string
	Path   string
	Params any
	Header http.Header

	// AnyContentType accepts a 200 response whatever its content type.
	AnyContentType bool
}

// Response is a completed exchange with the node.
// Err is only set when the adapter runs in soft-fail mode.
type Response struct {
	Status int
	URL    string
	Header http.Header
	Body   []byte
	Err    error
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", r.URL, err)
	}
	return nil
}

// Adapter performs requests against one node base URL.
type Adapter struct {
	baseURL  string
	version  string
	port     int
	nethash  string
	client   *http.Client
	logger   output.LoggerInterface
	softFail bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		a.client = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.client = &http.Client{Timeout: d, Transport: a.client.Transport}
		}
	}
}

// WithLogger sets the logger receiving request diagnostics.
func WithLogger(l output.LoggerInterface) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

// WithSoftFail makes failed requests return a Response carrying the error
// instead of returning the error itself. Failures are still logged.
func WithSoftFail() Option {
	return func(a *Adapter) {
		a.softFail = true
	}
}

// NewAdapter creates an adapter for baseURL identifying itself with the
// server version and port and the network hash. An empty baseURL means
// http://localhost:<server.port>.
func NewAdapter(baseURL string, server *fixtures.Server, network *fixtures.Network, opts ...Option) *Adapter {
	if baseURL == "" {
		baseURL = server.BaseURL()
	}
	a := &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: server.Version,
		port:    server.Port,
		nethash: network.Nethash,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  output.DefaultLogger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ForBaseURL returns a copy of the adapter targeting another base URL.
func (a *Adapter) ForBaseURL(baseURL string) *Adapter {
	cp := *a
	cp.baseURL = strings.TrimRight(baseURL, "/")
	return &cp
}

// BaseURL returns the URL requests are sent to.
func (a *Adapter) BaseURL() string { return a.baseURL }

// Version returns the version header value.
func (a *Adapter) Version() string { return a.version }

// Port returns the port header value.
func (a *Adapter) Port() int { return a.port }

// Nethash returns the nethash header value.
func (a *Adapter) Nethash() string { return a.nethash }

// Logger returns the diagnostics logger.
func (a *Adapter) Logger() output.LoggerInterface { return a.logger }

// Get sends a GET request. params may be nil.
func (a *Adapter) Get(ctx context.Context, path string, params any) (*Response, error) {
	return a.Do(ctx, RequestSpec{Verb: http.MethodGet, Path: path, Params: params})
}

// Post sends a POST request with params as the JSON body.
func (a *Adapter) Post(ctx context.Context, path string, params any) (*Response, error) {
	return a.Do(ctx, RequestSpec{Verb: http.MethodPost, Path: path, Params: params})
}

// Put sends a PUT request with params as the JSON body.
func (a *Adapter) Put(ctx context.Context, path string, params any) (*Response, error) {
	return a.Do(ctx, RequestSpec{Verb: http.MethodPut, Path: path, Params: params})
}

// Do sends spec and checks the response is JSON with status 200.
func (a *Adapter) Do(ctx context.Context, spec RequestSpec) (*Response, error) {
	verb := strings.ToUpper(spec.Verb)
	if verb == "" {
		verb = http.MethodGet
	}
	target := a.baseURL + spec.Path

	a.logger.Debug("> Path: %s %s", verb, spec.Path)

	resp, err := a.do(ctx, verb, target, spec)
	if err != nil {
		info := &output.RequestErrorInfo{
			Verb:              verb,
			URL:               target,
			Nethash:           a.nethash,
			ConnectionRefused: IsConnectionRefused(err),
			Error:             err,
		}
		if resp != nil {
			info.Status = resp.Status
		}
		a.logger.PrintRequestError(info)

		if a.softFail {
			if resp == nil {
				resp = &Response{URL: target}
			}
			resp.Err = err
			return resp, nil
		}
		return resp, err
	}
	return resp, nil
}

func (a *Adapter) do(ctx context.Context, verb, target string, spec RequestSpec) (*Response, error) {
	payload, err := encodeParams(spec.Params)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, verb, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	a.setHeaders(req, payload != nil)
	for k, vs := range spec.Header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	httpResp, err := a.client.Do(req)
	if err != nil {
		return nil, classify(target, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", target, err)
	}

	resp := &Response{
		Status: httpResp.StatusCode,
		URL:    target,
		Header: httpResp.Header,
		Body:   data,
	}

	if httpResp.StatusCode != http.StatusOK {
		return resp, &StatusError{Status: httpResp.StatusCode, URL: target}
	}
	if ct := httpResp.Header.Get("Content-Type"); !spec.AnyContentType && !strings.Contains(ct, "json") {
		return resp, &ContentTypeError{ContentType: ct, URL: target}
	}
	return resp, nil
}

// encodeParams returns the JSON body for params, nil when there is none.
// A typed nil such as map[string]any(nil) encodes to null and sends no body.
func encodeParams(params any) ([]byte, error) {
	if params == nil {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request params: %w", err)
	}
	if bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	return data, nil
}

// setHeaders sets the identification headers.
func (a *Adapter) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderVersion, a.version)
	req.Header.Set(HeaderPort, strconv.Itoa(a.port))
	req.Header.Set(HeaderNethash, a.nethash)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}
