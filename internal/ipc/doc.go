// Package ipc exposes the service registry over JSON-RPC on loopback TCP and
// ships the matching client used by the proxy and CLI.
//
// The protocol is intentionally small: a liveness probe, one opaque
// call-forwarding method carrying JSON envelopes, and a shutdown request.
// Reuse these types when adding new RPC endpoints to keep the protocol stable
// and compatible with existing clients.
package ipc
