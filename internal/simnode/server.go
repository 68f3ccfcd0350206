package simnode

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
)

// server is an HTTP listener with a mux router.
type server struct {
	srv      *http.Server
	router   *mux.Router
	listener net.Listener

	started atomic.Bool
}

func newServer(addr string) *server {
	router := mux.NewRouter()
	router.Use(setContentType)

	s := &server{router: router}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 2 * time.Second,
	}
	return s
}

// Start listens on the server address and serves in the background.
func (s *server) Start(context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		s.started.Store(false)
		return err
	}
	s.listener = listener
	//nolint:errcheck
	go s.srv.Serve(listener)
	return nil
}

// Stop shuts the server down.
func (s *server) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	s.listener = nil
	return nil
}

// ServeHTTP serves inbound requests on the router.
func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAddr returns the bound address, empty when not listening.
func (s *server) ListenAddr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func setContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
