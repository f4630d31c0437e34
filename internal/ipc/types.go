package ipc

// PingRequest is the liveness probe. It carries no arguments.
type PingRequest struct{}

// PingResponse acknowledges a liveness probe.
type PingResponse struct {
	Pong bool `json:"pong"`
}

// InvokeRequest forwards one opaque call envelope to the service. ID is a
// client-generated UUID used for log correlation only.
type InvokeRequest struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Payload string `json:"payload"`
}

// InvokeResponse returns the response envelope produced by the service.
type InvokeResponse struct {
	Payload string `json:"payload"`
}

// ShutdownRequest asks the service process to exit.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}
