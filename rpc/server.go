package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"
	"golang.org/x/net/netutil"

	"github.com/rollkit/sequencer-relayer/config"
	"github.com/rollkit/sequencer-relayer/rpc/json"
)

// Server handles HTTP and JSON-RPC requests, exposing the relayer inspection API.
type Server struct {
	*service.BaseService

	config  config.RPCConfig
	handler http.Handler
	metrics prometheus.Gatherer

	mtx      sync.Mutex
	listener net.Listener
	server   *http.Server
}

// Option configures Server.
type Option func(*Server)

// WithMetrics serves metrics gathered from g under /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = g
	}
}

// NewServer creates new instance of Server with given configuration.
func NewServer(r json.Relayer, dac json.DAClient, subs json.Submissions, conf config.RPCConfig, logger log.Logger, options ...Option) (*Server, error) {
	handler, err := json.GetHTTPHandler(r, dac, subs, logger.With("module", "json-rpc"))
	if err != nil {
		return nil, err
	}
	srv := &Server{
		config:  conf,
		handler: handler,
	}
	for _, option := range options {
		option(srv)
	}
	srv.BaseService = service.NewBaseService(logger, "RPC", srv)
	return srv, nil
}

// Addr returns the address the Server listens on, or nil when it is not listening.
func (s *Server) Addr() net.Addr {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// OnStart is called when Server is started (see service.BaseService for details).
func (s *Server) OnStart() error {
	return s.startRPC()
}

// OnStop is called when Server is stopped (see service.BaseService for details).
func (s *Server) OnStop() {
	s.mtx.Lock()
	server := s.server
	s.mtx.Unlock()
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		s.Logger.Error("error while shuting down RPC server", "error", err)
	}
}

func (s *Server) startRPC() error {
	if s.config.ListenAddress == "" {
		s.Logger.Info("Listen address not specified - RPC will not be exposed")
		return nil
	}
	proto, addr := "tcp", s.config.ListenAddress
	if parts := strings.SplitN(addr, "://", 2); len(parts) == 2 {
		proto, addr = parts[0], parts[1]
	}

	listener, err := net.Listen(proto, addr)
	if err != nil {
		return err
	}

	if s.config.MaxOpenConnections != 0 {
		s.Logger.Debug("limiting number of connections", "limit", s.config.MaxOpenConnections)
		listener = netutil.LimitListener(listener, s.config.MaxOpenConnections)
	}

	handler := s.handler
	if s.metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
		mux.Handle("/", handler)
		handler = mux
	}

	if s.config.IsCorsEnabled() {
		s.Logger.Debug("CORS enabled",
			"origins", s.config.CORSAllowedOrigins,
			"methods", s.config.CORSAllowedMethods,
			"headers", s.config.CORSAllowedHeaders,
		)
		c := cors.New(cors.Options{
			AllowedOrigins: s.config.CORSAllowedOrigins,
			AllowedMethods: s.config.CORSAllowedMethods,
			AllowedHeaders: s.config.CORSAllowedHeaders,
		})
		handler = c.Handler(handler)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: time.Second * 2,
	}
	s.mtx.Lock()
	s.listener = listener
	s.server = server
	s.mtx.Unlock()

	go func() {
		s.Logger.Info("serving HTTP", "listen address", listener.Addr())
		err := server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("error while serving HTTP", "error", err)
		}
	}()

	return nil
}
