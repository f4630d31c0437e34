// Package envelope encodes the JSON structures exchanged with the background
// service: the {args, kwargs} call envelope and the {data, error, profile}
// response envelope. Values must be JSON-representable; opaque in-process
// objects cannot cross the transport.
package envelope

import (
	"encoding/json"
	"fmt"
)

// Call carries the positional and named arguments of a remote invocation.
type Call struct {
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// Response carries the outcome of a remote invocation. Data and Error are
// mutually exclusive; Profile annotates timing regardless of outcome.
type Response struct {
	Data    any    `json:"data"`
	Error   string `json:"error"`
	Profile string `json:"profile"`
}

// EncodeCall serializes the call envelope. Nil argument containers are
// normalized so the wire form always carries a list and a mapping.
func EncodeCall(args []any, kwargs map[string]any) (string, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return marshal(Call{Args: args, Kwargs: kwargs})
}

// DecodeCall parses a call envelope.
func DecodeCall(payload string) (*Call, error) {
	var call Call
	if err := unmarshal(payload, &call); err != nil {
		return nil, fmt.Errorf("decode call envelope: %w", err)
	}
	if call.Args == nil {
		call.Args = []any{}
	}
	if call.Kwargs == nil {
		call.Kwargs = map[string]any{}
	}
	return &call, nil
}

// EncodeResult serializes a success response.
func EncodeResult(data any, profile string) (string, error) {
	return marshal(Response{Data: data, Profile: profile})
}

// EncodeError serializes a failure response.
func EncodeError(message, profile string) (string, error) {
	return marshal(Response{Error: message, Profile: profile})
}

// DecodeResponse parses a response envelope. A populated error field takes
// precedence: data present alongside an error is discarded so callers never
// observe both.
func DecodeResponse(payload string) (*Response, error) {
	var resp Response
	if err := unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if resp.Error != "" {
		resp.Data = nil
	}
	return &resp, nil
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	return string(data), nil
}

func unmarshal(payload string, v any) error {
	return json.Unmarshal([]byte(payload), v)
}
