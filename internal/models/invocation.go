package models

import (
	"encoding/json"
	"time"
)

// Transport names where an invocation arrived from.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "ws"
	TransportCLI       = "cli"
)

// InvokeRequest is one call crossing the UI boundary. Args is the JSON object
// of named arguments for Cmd.
type InvokeRequest struct {
	ID   string          `json:"id"`
	Cmd  string          `json:"cmd"`
	Args json.RawMessage `json:"args,omitempty"`
}

// InvokeResponse is the outcome of one call. Error is human-readable text;
// Kind is a stable tag the UI may branch on.
type InvokeResponse struct {
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// AuditEntry is a persisted record of one invocation. Arguments are never
// stored because they may carry file content.
type AuditEntry struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Call       string    `json:"call"`
	Transport  string    `json:"transport"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
}
