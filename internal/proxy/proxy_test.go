package proxy

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"lattice/internal/history"
	"lattice/internal/ipc"
	"lattice/internal/logging"
	"lattice/internal/service"
	"lattice/internal/testsupport"
)

func demoRegistry(t *testing.T) *service.Registry {
	t.Helper()
	reg := service.NewRegistry(logging.NewNop())
	_ = reg.Register("demo.add", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return args[0].(float64) + args[1].(float64), nil
	})
	_ = reg.Register("demo.fail", func(context.Context, []any, map[string]any) (any, error) {
		return nil, errors.New("matrix is singular")
	})
	return reg
}

func startService(t *testing.T, reg *service.Registry) *ipc.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	srv, err := ipc.NewServer(ctx, "127.0.0.1:0", reg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	return srv
}

func portOf(t *testing.T, addr string) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %s: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port %s: %v", portStr, err)
	}
	return port
}

func noLaunch(t *testing.T) func(string, []string) (*os.Process, error) {
	return func(string, []string) (*os.Process, error) {
		t.Fatal("launch should not be called when a service is reachable")
		return nil, nil
	}
}

func TestTryReconnectNoListener(t *testing.T) {
	p := &Proxy{
		address: "127.0.0.1:" + strconv.Itoa(testsupport.FreePort(t)),
		logger:  logging.NewNop(),
	}
	if _, ok := p.tryReconnect(); ok {
		t.Fatal("expected no connection against a closed port")
	}
}

func TestNewReusesExistingService(t *testing.T) {
	srv := startService(t, demoRegistry(t))

	p, err := New(Options{
		Package: "demo",
		Port:    portOf(t, srv.Addr()),
		launch:  noLaunch(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Shutdown)

	if p.process != nil {
		t.Fatal("reused connection must not own a process")
	}

	data, err := p.Invoke("add", []any{float64(2), float64(3)}, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if data != float64(5) {
		t.Fatalf("expected 5, got %#v", data)
	}
	if p.Profile() == "" {
		t.Fatal("expected a profile annotation after a successful call")
	}
}

func TestInvokeRemoteError(t *testing.T) {
	srv := startService(t, demoRegistry(t))

	p, err := New(Options{Package: "demo", Port: portOf(t, srv.Addr()), launch: noLaunch(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Shutdown)

	_, err = p.Invoke("fail", nil, nil)
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.Method != "demo.fail" {
		t.Fatalf("unexpected method: %s", remoteErr.Method)
	}
	if want := "matrix is singular"; !strings.Contains(remoteErr.Message, want) {
		t.Fatalf("expected message to carry %q, got %q", want, remoteErr.Message)
	}

	_, err = p.Invoke("nope", nil, nil)
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError for unknown function, got %v", err)
	}
	if !strings.Contains(remoteErr.Message, "unknown function") {
		t.Fatalf("unexpected message: %q", remoteErr.Message)
	}
}

func TestNewSpawnsAndPollsUntilReady(t *testing.T) {
	port := testsupport.FreePort(t)
	reg := demoRegistry(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	launched := false
	launch := func(program string, args []string) (*os.Process, error) {
		launched = true
		if len(args) != 3 || args[0] != "-m" || args[1] != service.GeometryModule || args[2] != strconv.Itoa(port) {
			t.Errorf("unexpected spawn args: %v", args)
		}
		go func() {
			time.Sleep(50 * time.Millisecond)
			srv, err := ipc.NewServer(ctx, "127.0.0.1:"+strconv.Itoa(port), reg, nil, logging.NewNop())
			if err != nil {
				t.Errorf("late server start: %v", err)
				return
			}
			srv.Serve()
			go func() {
				<-ctx.Done()
				srv.Close()
			}()
		}()
		return nil, nil
	}

	p, err := New(Options{
		Package:  "demo",
		Port:     port,
		Attempts: 50,
		Delay:    10 * time.Millisecond,
		launch:   launch,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Shutdown)

	if !launched {
		t.Fatal("expected the launcher to run")
	}
	data, err := p.Invoke("add", []any{float64(40), float64(2)}, nil)
	if err != nil {
		t.Fatalf("Invoke after spawn: %v", err)
	}
	if data != float64(42) {
		t.Fatalf("expected 42, got %#v", data)
	}
}

func TestStartupBudgetExhausted(t *testing.T) {
	_, err := New(Options{
		Port:     testsupport.FreePort(t),
		Attempts: 3,
		Delay:    time.Millisecond,
		launch:   func(string, []string) (*os.Process, error) { return nil, nil },
	})
	if !errors.Is(err, ErrServerUnavailable) {
		t.Fatalf("expected ErrServerUnavailable, got %v", err)
	}
	if !IsUnavailable(err) {
		t.Fatal("IsUnavailable should report true")
	}
}

func TestTransportFailureTearsDownAndSurfaces(t *testing.T) {
	srv := startService(t, demoRegistry(t))

	p, err := New(Options{Package: "demo", Port: portOf(t, srv.Addr()), launch: noLaunch(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	srv.Close()

	if _, err := p.Invoke("add", []any{float64(1), float64(2)}, nil); err == nil {
		t.Fatal("expected transport error after server close")
	}
	if p.client != nil {
		t.Fatal("transport failure must dispose the connection")
	}

	_, err = p.Invoke("add", []any{float64(1), float64(2)}, nil)
	if !errors.Is(err, ErrServerUnavailable) {
		t.Fatalf("expected ErrServerUnavailable after teardown, got %v", err)
	}
}

func TestInvokeEmptyResponse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("Lattice", emptyService{}); err != nil {
		t.Fatalf("register stub: %v", err)
	}
	go func() {
		for {
			conn, acceptErr := listener.Accept()
			if acceptErr != nil {
				return
			}
			go rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
		}
	}()

	p, err := New(Options{Port: portOf(t, listener.Addr().String()), launch: noLaunch(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Shutdown)

	_, err = p.Invoke("anything", nil, nil)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

type emptyService struct{}

func (emptyService) Ping(_ ipc.PingRequest, resp *ipc.PingResponse) error {
	resp.Pong = true
	return nil
}

func (emptyService) Invoke(_ ipc.InvokeRequest, resp *ipc.InvokeResponse) error {
	resp.Payload = ""
	return nil
}

func (emptyService) Shutdown(_ ipc.ShutdownRequest, resp *ipc.ShutdownResponse) error {
	resp.Stopping = true
	return nil
}

func TestShutdownIdempotent(t *testing.T) {
	srv := startService(t, demoRegistry(t))

	p, err := New(Options{Port: portOf(t, srv.Addr()), launch: noLaunch(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p.Shutdown()
	p.Shutdown()

	// A proxy that never spawned or connected must also dispose cleanly.
	bare := &Proxy{logger: logging.NewNop()}
	bare.Shutdown()
	bare.Shutdown()
}

func TestWithGuaranteesShutdownOnPanic(t *testing.T) {
	srv := startService(t, demoRegistry(t))
	opts := Options{Port: portOf(t, srv.Addr()), launch: func(string, []string) (*os.Process, error) { return nil, nil }}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = With(opts, func(*Proxy) error {
			panic("caller bug")
		})
	}()
}

func TestInvokeRecordsHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := startService(t, demoRegistry(t))
	p, err := New(Options{
		Package: "demo",
		Port:    portOf(t, srv.Addr()),
		History: store,
		launch:  noLaunch(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Shutdown)

	if _, err := p.Invoke("add", []any{float64(2), float64(3)}, nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if _, err := p.Invoke("fail", nil, nil); err == nil {
		t.Fatal("expected remote error")
	}

	calls, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(calls))
	}
	var okCount int
	for _, call := range calls {
		if call.OK {
			okCount++
			if call.Profile == "" {
				t.Error("successful call should record its profile")
			}
		} else if call.Error == "" {
			t.Error("failed call should record the remote message")
		}
	}
	if okCount != 1 {
		t.Fatalf("expected exactly one successful call, got %d", okCount)
	}
}
