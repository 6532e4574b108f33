package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elmatools/acrossrec/internal/summary"
	"github.com/elmatools/acrossrec/pkg/core"
	"github.com/elmatools/acrossrec/pkg/streaming"
	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages, and acks scan_start/scan_end.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.setKey(r.Header.Get("X-Api-Key"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if env.Type == streaming.TypeScanStart || env.Type == streaming.TypeScanEnd {
				data, _ := json.Marshal(streaming.AckMessage{Type: streaming.TypeAck, For: env.Type})
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	apiKey   string
	messages []streaming.Envelope
}

func (m *messageLog) setKey(k string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKey = k
}

func (m *messageLog) key() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apiKey
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestScanLifecycle(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), APIKey: "k3y"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	run := &core.ScanRun{ID: "run1", Root: "/replays", Workers: 2, StartedAt: time.Now()}
	require.NoError(t, b.StartScan(run))

	require.NoError(t, b.RecordReplay(&core.Recording{
		RunID:   "run1",
		File:    core.File{Path: "/replays/a.rec", Size: 120},
		Summary: summary.Summary{Version: 120, Apples: 2},
	}))
	require.NoError(t, b.RecordFailure(&core.Failure{
		RunID: "run1",
		File:  core.File{Path: "/replays/b.rec", Size: 3},
		Stage: "frame count",
		Error: "frame count: truncated input",
	}))

	require.NoError(t, b.EndScan(&core.ScanTotals{Files: 2, OK: 1, Failed: 1}))

	msgs := ml.all()
	require.Len(t, msgs, 4)
	assert.Equal(t, streaming.TypeScanStart, msgs[0].Type)
	assert.Equal(t, streaming.TypeRecording, msgs[1].Type)
	assert.Equal(t, streaming.TypeFailure, msgs[2].Type)
	assert.Equal(t, streaming.TypeScanEnd, msgs[3].Type)
	assert.Equal(t, "k3y", ml.key())

	var rec core.Recording
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &rec))
	assert.Equal(t, "/replays/a.rec", rec.File.Path)
	assert.Equal(t, 2, rec.Summary.Apples)

	var end streaming.ScanEndPayload
	require.NoError(t, json.Unmarshal(msgs[3].Payload, &end))
	assert.Equal(t, "run1", end.RunID)
	assert.Equal(t, 1, end.Totals.Failed)

	assert.Nil(t, b.stream.replayMessage(), "scan_start is forgotten once the run ends")
}

func TestInit_DialFailure(t *testing.T) {
	b := New(Config{URL: "ws://127.0.0.1:1/none"}, nil)
	assert.ErrorContains(t, b.Init(), "websocket dial failed")
}

func TestCloseIsIdempotent(t *testing.T) {
	srv, _ := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}

func TestCloseBeforeInit(t *testing.T) {
	b := New(Config{URL: "ws://127.0.0.1:1/none"}, nil)
	assert.NoError(t, b.Close())
}

func TestStartScan_ReplayedAfterReconnect(t *testing.T) {
	var (
		mu      sync.Mutex
		conns   int
		starts  int
		upgrade = ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrade.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		mu.Lock()
		conns++
		first := conns == 1
		mu.Unlock()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var env streaming.Envelope
			if json.Unmarshal(msg, &env) != nil || env.Type != streaming.TypeScanStart {
				continue
			}
			mu.Lock()
			starts++
			mu.Unlock()
			data, _ := json.Marshal(streaming.AckMessage{Type: streaming.TypeAck, For: env.Type})
			_ = c.WriteMessage(ws.TextMessage, data)
			if first {
				// drop the first connection right after acking
				return
			}
		}
	}))
	defer srv.Close()

	b := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartScan(&core.ScanRun{ID: "run1"}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return conns == 2 && starts == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestMarshalEnvelope(t *testing.T) {
	data, err := marshalEnvelope(streaming.TypeFailure, core.Failure{Stage: "events", Offset: 64})
	require.NoError(t, err)

	var env streaming.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, streaming.TypeFailure, env.Type)
	assert.JSONEq(t, `{"runId":"","file":{"path":"","size":0,"modTime":"0001-01-01T00:00:00Z","checksum":""},"stage":"events","offset":64,"error":""}`, string(env.Payload))
}
