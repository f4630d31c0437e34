package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"lattice/internal/logging"
	"lattice/internal/service"
)

// Server exposes a service registry over JSON-RPC on a loopback TCP listener.
type Server struct {
	listener  net.Listener
	rpcServer *rpc.Server
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer configures the RPC server on the given host:port address.
// onShutdown is invoked after a remote shutdown request has been acknowledged.
func NewServer(ctx context.Context, address string, registry *service.Registry, onShutdown func(), logger *slog.Logger) (*Server, error) {
	if registry == nil {
		return nil, errors.New("ipc server requires a service registry")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	srv := &handler{registry: registry, onShutdown: onShutdown, logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName("Lattice", srv); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		listener:  listener,
		rpcServer: rpcServer,
		logger:    logger,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the address the server is listening on. Useful when the
// configured port was 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("RPC server listening", logging.String("address", s.Addr()))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.track(conn)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.untrack(c)
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the listener, disconnects open clients, and waits for the
// connection goroutines to drain.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

type handler struct {
	registry   *service.Registry
	onShutdown func()
	logger     *slog.Logger
	ctx        context.Context
}

func (h *handler) log() *slog.Logger {
	return logging.NewComponentLogger(h.logger, "ipc")
}

func (h *handler) Ping(_ PingRequest, resp *PingResponse) error {
	resp.Pong = true
	return nil
}

func (h *handler) Invoke(req InvokeRequest, resp *InvokeResponse) error {
	if req.Method == "" {
		return errors.New("invoke requires a method name")
	}
	h.log().Debug("invoke",
		logging.String("call_id", req.ID),
		logging.String("method", req.Method))
	resp.Payload = h.registry.Dispatch(h.ctx, req.Method, req.Payload)
	return nil
}

func (h *handler) Shutdown(_ ShutdownRequest, resp *ShutdownResponse) error {
	h.log().Info("remote shutdown requested")
	resp.Stopping = true
	if h.onShutdown != nil {
		// Run after the reply is flushed so the client sees the ack.
		go h.onShutdown()
	}
	return nil
}
