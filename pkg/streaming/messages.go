package streaming

import (
	"encoding/json"

	"github.com/elmatools/acrossrec/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeScanStart = "scan_start"
	TypeRecording = "recording"
	TypeFailure   = "failure"
	TypeScanEnd   = "scan_end"
	TypeAck       = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// ScanEndPayload closes a run.
type ScanEndPayload struct {
	RunID  string           `json:"runId"`
	Totals *core.ScanTotals `json:"totals"`
}
