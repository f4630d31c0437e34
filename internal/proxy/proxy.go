package proxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"lattice/internal/envelope"
	"lattice/internal/history"
	"lattice/internal/ipc"
	"lattice/internal/logging"
	"lattice/internal/service"
)

// Options configures a Proxy.
type Options struct {
	// Package is prepended to invoked function names when set.
	Package string

	// Program is the executable spawned when no service is reachable. Empty
	// means the latticed binary next to the current executable, falling back
	// to PATH lookup.
	Program string

	// Module is the service-module identifier passed to the spawned process.
	Module string

	// Address and Port identify the background service on the loopback.
	Address string
	Port    int

	// Attempts and Delay bound the startup liveness polling loop.
	Attempts int
	Delay    time.Duration

	Logger  *slog.Logger
	History *history.Store

	// launch overrides process spawning in tests.
	launch func(program string, args []string) (*os.Process, error)
}

func (o *Options) withDefaults() {
	if o.Module == "" {
		o.Module = service.GeometryModule
	}
	if o.Address == "" {
		o.Address = "127.0.0.1"
	}
	if o.Port == 0 {
		o.Port = 1753
	}
	if o.Attempts == 0 {
		o.Attempts = 100
	}
	if o.Delay == 0 {
		o.Delay = 100 * time.Millisecond
	}
	if o.launch == nil {
		o.launch = spawn
	}
}

// Proxy is the client-side intermediary between caller code and the remote
// service. A single caller goroutine is assumed; instances are not safe for
// concurrent use.
type Proxy struct {
	opts    Options
	address string
	client  *ipc.Client
	process *os.Process
	profile string
	logger  *slog.Logger
	hist    *history.Store

	termOnce sync.Once
}

// New connects to an existing service at the configured address, or spawns a
// new background process and waits for it to respond. Reusing an existing
// service leaves process ownership with whoever started it.
func New(opts Options) (*Proxy, error) {
	opts.withDefaults()
	p := &Proxy{
		opts:    opts,
		address: fmt.Sprintf("%s:%d", opts.Address, opts.Port),
		logger:  logging.NewComponentLogger(opts.Logger, "proxy"),
		hist:    opts.History,
	}

	if client, ok := p.tryReconnect(); ok {
		p.logger.Debug("reusing existing service", logging.String("address", p.address))
		p.client = client
		return p, nil
	}

	client, err := p.startServer()
	if err != nil {
		return nil, err
	}
	p.client = client
	return p, nil
}

// With runs fn against a fresh proxy and guarantees shutdown on every exit
// path, including panics.
func With(opts Options, fn func(*Proxy) error) error {
	p, err := New(opts)
	if err != nil {
		return err
	}
	defer p.Shutdown()
	return fn(p)
}

// Address returns the host:port the proxy talks to.
func (p *Proxy) Address() string {
	return p.address
}

// Profile returns the timing annotation of the last successful call.
func (p *Proxy) Profile() string {
	return p.profile
}

// tryReconnect probes the configured address for an existing service. Failure
// here is expected and never surfaces as an error; every probe failure is
// deliberately swallowed.
func (p *Proxy) tryReconnect() (*ipc.Client, bool) {
	client, err := ipc.Dial(p.address)
	if err != nil {
		return nil, false
	}
	if _, err := client.Ping(); err != nil {
		_ = client.Close()
		return nil, false
	}
	return client, true
}

// startServer spawns the background process and polls until it responds or
// the retry budget is exhausted.
func (p *Proxy) startServer() (*ipc.Client, error) {
	program := p.opts.Program
	if program == "" {
		program = resolveProgram()
	}
	args := []string{"-m", p.opts.Module, strconv.Itoa(p.opts.Port)}

	p.logger.Debug("spawning service process",
		logging.String("program", program),
		logging.String("module", p.opts.Module),
		logging.Int("port", p.opts.Port))

	process, err := p.opts.launch(program, args)
	if err != nil {
		return nil, fmt.Errorf("launch service process: %w", err)
	}
	p.process = process

	for attempt := 0; attempt < p.opts.Attempts; attempt++ {
		if client, ok := p.tryReconnect(); ok {
			p.logger.Debug("service responded",
				logging.String("address", p.address),
				logging.Int("attempt", attempt+1))
			return client, nil
		}
		time.Sleep(p.opts.Delay)
	}

	// The spawned process never became responsive; dispose of it so startup
	// failure does not leak an orphan.
	p.terminateProcess()
	return nil, fmt.Errorf("%w: no response from %s after %d attempts", ErrServerUnavailable, p.address, p.opts.Attempts)
}

// Invoke forwards a named call with positional and named arguments and
// returns the remote result. Arguments and results must be
// JSON-representable.
func (p *Proxy) Invoke(name string, args []any, kwargs map[string]any) (any, error) {
	method := name
	if p.opts.Package != "" {
		method = p.opts.Package + "." + name
	}
	if p.client == nil {
		return nil, fmt.Errorf("invoke %s: %w", method, ErrServerUnavailable)
	}

	payload, err := envelope.EncodeCall(args, kwargs)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", method, err)
	}

	started := time.Now()
	resp, err := p.client.Invoke(ipc.InvokeRequest{
		ID:      uuid.NewString(),
		Method:  method,
		Payload: payload,
	})
	elapsed := time.Since(started)
	if err != nil {
		// Transport failure: tear the owned process down before surfacing so
		// error paths never leave orphans behind.
		p.Shutdown()
		return nil, fmt.Errorf("invoke %s: %w", method, err)
	}
	if resp == nil || resp.Payload == "" {
		return nil, fmt.Errorf("invoke %s: %w", method, ErrEmptyResponse)
	}

	result, err := envelope.DecodeResponse(resp.Payload)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", method, err)
	}

	if result.Error != "" {
		p.recordCall(method, false, result.Error, result.Profile, elapsed)
		return nil, &RemoteError{Method: method, Message: result.Error}
	}

	p.profile = result.Profile
	p.recordCall(method, true, "", result.Profile, elapsed)
	return result.Data, nil
}

// Close drops the connection without stopping the service. A spawned process
// keeps running so a later proxy can reconnect to it.
func (p *Proxy) Close() {
	if p.client != nil {
		_ = p.client.Close()
		p.client = nil
	}
	if p.process != nil {
		_ = p.process.Release()
		p.process = nil
	}
}

// Shutdown requests a remote stop and terminates any owned process. Both
// steps are best-effort so disposal never fails; calling Shutdown multiple
// times, or without ever having spawned a process, is safe.
func (p *Proxy) Shutdown() {
	if p.client != nil {
		_, _ = p.client.Shutdown()
		_ = p.client.Close()
		p.client = nil
	}
	p.terminateProcess()
}

// terminateProcess kills the owned process exactly once. Reused connections
// have no process handle and this is a no-op.
func (p *Proxy) terminateProcess() {
	p.termOnce.Do(func() {
		if p.process == nil {
			return
		}
		_ = p.process.Signal(unix.SIGTERM)
		_ = p.process.Kill()
		_ = p.process.Release()
		p.logger.Debug("service process terminated", logging.Int("pid", p.process.Pid))
	})
}

func (p *Proxy) recordCall(method string, ok bool, errMsg, profile string, elapsed time.Duration) {
	if err := p.hist.Record(context.Background(), history.Call{
		Method:   method,
		OK:       ok,
		Error:    errMsg,
		Profile:  profile,
		Duration: elapsed,
	}); err != nil {
		p.logger.Warn("record call history", logging.Error(err))
	}
}

func spawn(program string, args []string) (*os.Process, error) {
	cmd := exec.Command(program, args...)
	// Combined output is discarded; the daemon logs to its own files.
	cmd.Stdout = io.Discard
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd.Process, nil
}

func resolveProgram() string {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "latticed")
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate
		}
	}
	return "latticed"
}
