package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/elmatools/acrossrec/pkg/streaming"
	ws "github.com/gorilla/websocket"
)

const (
	outboxSize   = 4096
	ackBuffer    = 16
	maxRedials   = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
)

var errClosed = errors.New("websocket stream closed")

// stream owns one collector connection. A single supervisor goroutine does
// all writes and redials; a reader goroutine per connection feeds acks.
type stream struct {
	url    string
	apiKey string
	logger *slog.Logger

	outbox chan []byte
	acks   chan streaming.AckMessage
	done   chan struct{}
	exited chan struct{}

	closeOnce sync.Once
	closeErr  error

	mu      sync.Mutex
	started bool
	// replay is the scan_start of the open run, sent first on every redial
	// so the collector can attach the following records to it.
	replay []byte
}

func newStream(url, apiKey string, logger *slog.Logger) *stream {
	return &stream{
		url:    url,
		apiKey: apiKey,
		logger: logger,
		outbox: make(chan []byte, outboxSize),
		acks:   make(chan streaming.AckMessage, ackBuffer),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// open dials once and starts the supervisor. A failed first dial is
// returned; later failures are retried in the background.
func (s *stream) open() error {
	conn, err := s.dial()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go s.supervise(conn)
	return nil
}

func (s *stream) dial() (*ws.Conn, error) {
	header := http.Header{}
	if s.apiKey != "" {
		header.Set("X-Api-Key", s.apiKey)
	}
	conn, _, err := ws.DefaultDialer.Dial(s.url, header)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	return conn, nil
}

func (s *stream) supervise(conn *ws.Conn) {
	defer close(s.exited)
	for conn != nil {
		err := s.serve(conn)
		if errors.Is(err, errClosed) {
			return
		}
		s.logger.Warn("WebSocket connection lost", "error", err)
		conn = s.redial()
	}
	s.logger.Error("WebSocket gave up reconnecting", "attempts", maxRedials)
}

// serve pumps the outbox into conn until a read or write fails or the
// stream is closed.
func (s *stream) serve(conn *ws.Conn) error {
	readErr := make(chan error, 1)
	go func() { readErr <- s.readAcks(conn) }()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	write := func(kind int, data []byte) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteMessage(kind, data)
	}

	for {
		select {
		case <-s.done:
			_ = write(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
			s.closeErr = conn.Close()
			<-readErr
			return errClosed
		case err := <-readErr:
			_ = conn.Close()
			return fmt.Errorf("read: %w", err)
		case <-ping.C:
			if err := write(ws.PingMessage, nil); err != nil {
				_ = conn.Close()
				<-readErr
				return fmt.Errorf("ping: %w", err)
			}
		case data := <-s.outbox:
			if err := write(ws.TextMessage, data); err != nil {
				_ = conn.Close()
				<-readErr
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}

func (s *stream) readAcks(conn *ws.Conn) error {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			s.logger.Debug("Ignoring collector message", "raw", string(message))
			continue
		}
		select {
		case s.acks <- ack:
		default:
			s.logger.Debug("Ack buffer full, dropping", "for", ack.For)
		}
	}
}

// redial retries with exponential backoff and replays the open run's
// scan_start. It returns nil when the stream is closed or attempts run out.
func (s *stream) redial() *ws.Conn {
	backoff := time.Second
	for attempt := 1; attempt <= maxRedials; attempt++ {
		select {
		case <-s.done:
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)

		conn, err := s.dial()
		if err != nil {
			s.logger.Warn("Redial failed", "attempt", attempt, "error", err)
			continue
		}
		if start := s.replayMessage(); start != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(ws.TextMessage, start); err != nil {
				s.logger.Warn("Failed to replay scan_start", "attempt", attempt, "error", err)
				_ = conn.Close()
				continue
			}
		}
		s.logger.Info("WebSocket reconnected", "attempt", attempt)
		return conn
	}
	return nil
}

func (s *stream) setReplay(data []byte) {
	s.mu.Lock()
	s.replay = data
	s.mu.Unlock()
}

func (s *stream) replayMessage() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replay
}

// send queues data without blocking. Records are dropped when the outbox is
// full or the stream is closed.
func (s *stream) send(data []byte) {
	select {
	case <-s.done:
		s.logger.Warn("WebSocket closed, dropping message")
	case s.outbox <- data:
	default:
		s.logger.Warn("WebSocket outbox full, dropping message")
	}
}

// sendAndWait queues data and blocks until the collector acks ackFor.
func (s *stream) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	s.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ack := <-s.acks:
			if ack.For == ackFor {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-s.done:
			return fmt.Errorf("%w while waiting for ack of %q", errClosed, ackFor)
		}
	}
}

// close sends a close frame and waits for the supervisor to exit. It is
// safe to call more than once and before open.
func (s *stream) close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}
	select {
	case <-s.exited:
	case <-time.After(writeWait):
		return errors.New("timeout waiting for websocket shutdown")
	}
	return s.closeErr
}
