package simnode

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/b-harvest/node-harness/internal/client"
	"github.com/b-harvest/node-harness/internal/lifecycle"
)

const (
	heightEndpoint     = "/api/blocks/getHeight"
	nethashEndpoint    = "/api/blocks/getNethash"
	apiPeersEndpoint   = "/api/peers"
	peerHeightEndpoint = "/peer/height"
	peerBlocksEndpoint = "/peer/blocks"
	peerListEndpoint   = "/peer/list"
)

// blockRequest is the body of a block submission.
type blockRequest struct {
	Block *Block `json:"block"`
}

// handler serves the routes of one node process.
type handler struct {
	node *Node
	cfg  *lifecycle.ProcessConfig
}

// registerPeerRoutes mounts the peer endpoints behind the nethash check.
func (h *handler) registerPeerRoutes(r *mux.Router) {
	peer := r.PathPrefix("/peer").Subrouter()
	peer.Use(h.checkNethash)
	peer.HandleFunc("/height", h.handlePeerHeight).Methods(http.MethodGet)
	peer.HandleFunc("/blocks", h.handlePostBlock).Methods(http.MethodPost)
	peer.HandleFunc("/list", h.handlePeerList).Methods(http.MethodGet)
}

// registerAPIRoutes mounts the public query endpoints.
func (h *handler) registerAPIRoutes(r *mux.Router) {
	r.HandleFunc(heightEndpoint, h.handleHeight).Methods(http.MethodGet)
	r.HandleFunc(nethashEndpoint, h.handleNethash).Methods(http.MethodGet)
	r.HandleFunc(apiPeersEndpoint, h.handlePeerList).Methods(http.MethodGet)
}

func (h *handler) checkNethash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(client.HeaderNethash)
		if got != h.cfg.Network.Nethash {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"success":  false,
				"message":  "Request is made on the wrong network",
				"expected": h.cfg.Network.Nethash,
				"received": got,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) chain(w http.ResponseWriter) *Chain {
	c := h.node.Chain()
	if c == nil {
		writeError(w, http.StatusServiceUnavailable, "blockchain not initialized")
	}
	return c
}

func (h *handler) handleHeight(w http.ResponseWriter, r *http.Request) {
	c := h.chain(w)
	if c == nil {
		return
	}
	body := map[string]any{"success": true, "height": c.Height()}
	if last := c.LastBlock(); last != nil {
		body["id"] = last.ID
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handler) handleNethash(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "nethash": h.cfg.Network.Nethash})
}

func (h *handler) handlePeerHeight(w http.ResponseWriter, r *http.Request) {
	c := h.chain(w)
	if c == nil {
		return
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if port := r.Header.Get(client.HeaderPort); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			writeError(w, http.StatusBadRequest, "invalid port header")
			return
		}
		h.node.announce(ip, port, r.Header.Get(client.HeaderOS), r.Header.Get(client.HeaderVersion))
	}

	body := map[string]any{"success": true, "height": c.Height()}
	if last := c.LastBlock(); last != nil {
		body["id"] = last.ID
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handler) handlePostBlock(w http.ResponseWriter, r *http.Request) {
	c := h.chain(w)
	if c == nil {
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Block == nil {
		writeError(w, http.StatusBadRequest, "invalid block payload")
		return
	}

	if err := c.Accept(req.Block); err != nil {
		var he *HeightError
		if errors.As(err, &he) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "blockId": req.Block.ID})
}

func (h *handler) handlePeerList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "peers": h.node.Peers()})
}

func listenAddr(cfg *lifecycle.ProcessConfig, port int) string {
	host := cfg.Server.Address
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Network is the peer listener of a relay.
type Network struct {
	srv *server
}

var _ lifecycle.NetworkInterface = (*Network)(nil)

func newNetwork(n *Node, cfg *lifecycle.ProcessConfig) *Network {
	srv := newServer(listenAddr(cfg, n.opts.PeerPort))
	h := &handler{node: n, cfg: cfg}
	h.registerPeerRoutes(srv.router)
	return &Network{srv: srv}
}

// Warmup starts listening for peers.
func (nw *Network) Warmup(ctx context.Context) error {
	return nw.srv.Start(ctx)
}

// Close stops the peer listener.
func (nw *Network) Close(ctx context.Context) error {
	return nw.srv.Stop(ctx)
}

// ListenAddr returns the bound peer address.
func (nw *Network) ListenAddr() string {
	return nw.srv.ListenAddr()
}

// API is the public query API of a relay. It also serves the peer routes so
// a forger can use it as its seed peer.
type API struct {
	srv *server
}

var _ lifecycle.PublicAPI = (*API)(nil)

func newAPI(n *Node, cfg *lifecycle.ProcessConfig) *API {
	srv := newServer(listenAddr(cfg, cfg.Server.Port))
	h := &handler{node: n, cfg: cfg}
	h.registerAPIRoutes(srv.router)
	h.registerPeerRoutes(srv.router)
	return &API{srv: srv}
}

// Start starts listening on the server port.
func (a *API) Start(ctx context.Context) error {
	return a.srv.Start(ctx)
}

// Close stops the API listener.
func (a *API) Close(ctx context.Context) error {
	return a.srv.Stop(ctx)
}

// ListenAddr returns the bound API address.
func (a *API) ListenAddr() string {
	return a.srv.ListenAddr()
}

// Handler returns the HTTP handler of the API.
func (a *API) Handler() http.Handler {
	return a.srv
}
