// Package proxy is the client-side intermediary between caller code and the
// background service process.
//
// A Proxy first tries to reuse a service already listening on the configured
// loopback address; otherwise it spawns one and polls until the liveness
// probe succeeds. Calls are forwarded by explicit name through Invoke, with
// arguments serialized into JSON call envelopes. Shutdown is best-effort and
// idempotent so disposal never fails, and transport failures during a call
// tear down the owned process before the error is surfaced.
package proxy
