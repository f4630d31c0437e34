package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"lattice/internal/envelope"
	"lattice/internal/logging"
)

// Func is a remotely callable function. Arguments and results must be
// JSON-representable values.
type Func func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// Registry maps fully qualified function names to implementations and
// dispatches call envelopes against them.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		funcs:  make(map[string]Func),
		logger: logging.NewComponentLogger(logger, "service"),
	}
}

// Register installs fn under the given fully qualified name. Re-registering a
// name replaces the previous implementation.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("register: function name is empty")
	}
	if fn == nil {
		return fmt.Errorf("register %s: function is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	return nil
}

// RegisterModule installs every function in fns under "<module>.<name>".
func (r *Registry) RegisterModule(module string, fns map[string]Func) error {
	for name, fn := range fns {
		if err := r.Register(module+"."+name, fn); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Dispatch decodes a call envelope, executes the named function, and returns
// the response envelope. Remote-function failures are carried inside the
// envelope error field, never as a Go error; the returned payload is always a
// valid response envelope.
func (r *Registry) Dispatch(ctx context.Context, name, payload string) string {
	call, err := envelope.DecodeCall(payload)
	if err != nil {
		return errorEnvelope(fmt.Sprintf("%s: %v", name, err), "")
	}

	fn, ok := r.lookup(name)
	if !ok {
		r.logger.Debug("unknown function requested", logging.String("function", name))
		return errorEnvelope(fmt.Sprintf("unknown function %q", name), "")
	}

	started := time.Now()
	data, err := runFunc(ctx, fn, call)
	elapsed := time.Since(started)
	profile := fmt.Sprintf("%s completed in %s", name, elapsed.Round(time.Microsecond))

	if err != nil {
		r.logger.Debug("function failed",
			logging.String("function", name),
			logging.Error(err),
			logging.Duration("elapsed", elapsed))
		return errorEnvelope(fmt.Sprintf("%s: %v", name, err), profile)
	}

	out, encErr := envelope.EncodeResult(data, profile)
	if encErr != nil {
		return errorEnvelope(fmt.Sprintf("%s: result is not serializable: %v", name, encErr), profile)
	}
	r.logger.Debug("function executed",
		logging.String("function", name),
		logging.Duration("elapsed", elapsed))
	return out
}

// runFunc shields the dispatcher from panicking service functions.
func runFunc(ctx context.Context, fn Func, call *envelope.Call) (data any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx, call.Args, call.Kwargs)
}

func errorEnvelope(message, profile string) string {
	payload, err := envelope.EncodeError(message, profile)
	if err != nil {
		// Plain strings always marshal; this is unreachable in practice.
		return `{"data":null,"error":"internal encoding failure","profile":""}`
	}
	return payload
}
