// Package peers simulates peers announcing themselves to the node under test.
package peers

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/b-harvest/node-harness/internal/client"
	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/output"
	"github.com/b-harvest/node-harness/internal/random"
)

// Path is the peer endpoint a handshake is sent to.
const Path = "/peer/height"

// DefaultOperatingSystems are the OS names synthetic peers report.
var DefaultOperatingSystems = []string{"win32", "win64", "ubuntu", "debian", "centos"}

// DefaultPorts are the ports synthetic peers are sent to.
var DefaultPorts = []int{4003}

// PeerDescriptor is the identity presented by one handshake.
type PeerDescriptor struct {
	OperatingSystem string `json:"os"`
	ClientVersion   string `json:"version"`
	Port            int    `json:"port"`
	NetworkHash     string `json:"nethash"`
}

// Config configures an Injector.
type Config struct {
	OperatingSystems []string
	Ports            []int
	Host             string

	// Adapter sends the handshakes. Its version and nethash identify the
	// synthetic peers. Nil means an adapter with empty identification.
	Adapter *client.Adapter

	Random *random.Generator
	Logger output.LoggerInterface
}

// Injector performs peer handshakes.
type Injector struct {
	systems []string
	ports   []int
	host    string
	adapter *client.Adapter
	rnd     *random.Generator
	logger  output.LoggerInterface
}

// NewInjector creates an injector. Empty fields fall back to the defaults.
func NewInjector(cfg Config) *Injector {
	if len(cfg.OperatingSystems) == 0 {
		cfg.OperatingSystems = DefaultOperatingSystems
	}
	if len(cfg.Ports) == 0 {
		cfg.Ports = DefaultPorts
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Random == nil {
		cfg.Random = random.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = output.DefaultLogger
	}
	if cfg.Adapter == nil {
		cfg.Adapter = client.NewAdapter("", &fixtures.Server{}, &fixtures.Network{}, client.WithLogger(cfg.Logger))
	}
	return &Injector{
		systems: cfg.OperatingSystems,
		ports:   cfg.Ports,
		host:    cfg.Host,
		adapter: cfg.Adapter,
		rnd:     cfg.Random,
		logger:  cfg.Logger,
	}
}

// AddPeers performs n handshakes one after another and returns the
// descriptor of the last one. The first failure stops the loop; the returned
// *InjectionError reports how many handshakes completed before it.
func (i *Injector) AddPeers(ctx context.Context, n int) (PeerDescriptor, error) {
	var last PeerDescriptor

	for completed := 0; completed < n; completed++ {
		if err := ctx.Err(); err != nil {
			return last, &InjectionError{Completed: completed, Err: err}
		}

		peer := PeerDescriptor{
			OperatingSystem: random.Pick(i.rnd, i.systems),
			ClientVersion:   i.adapter.Version(),
			Port:            random.Pick(i.rnd, i.ports),
			NetworkHash:     i.adapter.Nethash(),
		}
		last = peer

		if err := i.handshake(ctx, peer); err != nil {
			return last, &InjectionError{Completed: completed, Err: err}
		}
	}

	return last, nil
}

// URL returns the handshake URL for a port.
func (i *Injector) URL(port int) string {
	return i.baseURL(port) + Path
}

func (i *Injector) baseURL(port int) string {
	return "http://" + net.JoinHostPort(i.host, strconv.Itoa(port))
}

// handshake announces peer. The port header carries the peer's own port
// instead of the adapter's server port.
func (i *Injector) handshake(ctx context.Context, peer PeerDescriptor) error {
	resp, err := i.adapter.ForBaseURL(i.baseURL(peer.Port)).Do(ctx, client.RequestSpec{
		Verb: http.MethodGet,
		Path: Path,
		Header: http.Header{
			client.HeaderPort: []string{strconv.Itoa(peer.Port)},
			client.HeaderOS:   []string{peer.OperatingSystem},
		},
		AnyContentType: true,
	})
	if err == nil && resp != nil {
		// soft-fail adapters report the failure on the response
		err = resp.Err
	}
	if err != nil {
		return err
	}

	i.logger.Debug("peer %s/%s -> %s: %d", peer.OperatingSystem, peer.ClientVersion, resp.URL, resp.Status)
	return nil
}
