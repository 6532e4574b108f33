package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/elmatools/acrossrec/pkg/core"
	"github.com/elmatools/acrossrec/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	APIKey string
}

// Backend streams scan results over WebSocket to a collector service.
// It implements storage.Backend but not storage.Reporter.
type Backend struct {
	stream *stream
	cfg    Config

	mu    sync.Mutex
	runID string
}

// New creates a new WebSocket storage backend. A nil logger uses slog.Default.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		stream: newStream(cfg.URL, cfg.APIKey, logger.With("component", "websocket")),
		cfg:    cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.stream.open()
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.stream.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.stream.send(data)
	return nil
}

// StartScan announces the run and waits for the server ack.
func (b *Backend) StartScan(run *core.ScanRun) error {
	data, err := marshalEnvelope(streaming.TypeScanStart, run)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.runID = run.ID
	b.mu.Unlock()

	b.stream.setReplay(data)

	return b.stream.sendAndWait(data, streaming.TypeScanStart, ackTimeout)
}

// EndScan sends the totals and waits for the server ack.
func (b *Backend) EndScan(totals *core.ScanTotals) error {
	b.mu.Lock()
	runID := b.runID
	b.runID = ""
	b.mu.Unlock()

	data, err := marshalEnvelope(streaming.TypeScanEnd, streaming.ScanEndPayload{RunID: runID, Totals: totals})
	if err != nil {
		return err
	}
	err = b.stream.sendAndWait(data, streaming.TypeScanEnd, ackTimeout)

	// the run is over even if the ack never came
	b.stream.setReplay(nil)

	return err
}

func (b *Backend) RecordReplay(r *core.Recording) error {
	return b.sendEnvelope(streaming.TypeRecording, r)
}

func (b *Backend) RecordFailure(f *core.Failure) error {
	return b.sendEnvelope(streaming.TypeFailure, f)
}
