// Package live carries one analysis conversation over a WebSocket. A
// session runs at most one analysis at a time; progress streams out as JSON
// frames and the aiThinkingComplete ack paces the verdict.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/islatechai-lang/cryptoomind/internal/metrics"
	"github.com/islatechai-lang/cryptoomind/internal/pipeline"
	"github.com/islatechai-lang/cryptoomind/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 1024
	sendBuffer = 64
)

// State guards one run per session.
type State int

const (
	Idle State = iota
	Running
)

// AnalysisRunner starts one analysis run; satisfied by *pipeline.Runner.
type AnalysisRunner interface {
	Run(ctx context.Context, req pipeline.Request, sub pipeline.Subscriber) (*models.PredictionResult, error)
}

// Session owns one WebSocket connection and its run state.
type Session struct {
	userID  string
	conn    *websocket.Conn
	runner  AnalysisRunner
	metrics *metrics.Metrics
	logger  zerolog.Logger

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	state State
	ack   *pipeline.Ack
}

func NewSession(userID string, conn *websocket.Conn, runner AnalysisRunner, m *metrics.Metrics) *Session {
	return &Session{
		userID:  userID,
		conn:    conn,
		runner:  runner,
		metrics: m,
		logger:  log.With().Str("component", "live_session").Str("user", userID).Logger(),
		send:    make(chan []byte, sendBuffer),
		closed:  make(chan struct{}),
	}
}

// Serve pumps the connection until it closes. Blocks. An in-flight
// reasoning call keeps running after close; only event delivery stops.
func (s *Session) Serve(ctx context.Context) {
	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.writePump()
	s.readPump(runCtx)
}

func (s *Session) readPump(ctx context.Context) {
	defer s.shutdown()

	s.conn.SetReadLimit(readLimit)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn().Err(err).Msg("Connection dropped")
			}
			return
		}
		s.handleFrame(ctx, msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closed:
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (s *Session) handleFrame(ctx context.Context, msg []byte) {
	var frame clientFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		s.notice("malformed frame")
		return
	}

	switch frame.Type {
	case frameAnalyze:
		s.startRun(ctx, frame.Pair, frame.Timeframe)
	case frameAck:
		if frame.Event == eventThinkingComplete {
			s.resolveAck()
		}
	default:
		s.notice(fmt.Sprintf("unknown frame type %q", frame.Type))
	}
}

// startRun launches one analysis. A session runs one at a time; extra
// requests are dropped with a notice, never queued.
func (s *Session) startRun(ctx context.Context, pair, timeframe string) {
	if pair == "" || !models.ValidTimeframe(timeframe) {
		s.notice(fmt.Sprintf("cannot analyze pair %q on timeframe %q", pair, timeframe))
		return
	}

	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		s.logger.Warn().Str("pair", pair).Msg("Analyze request dropped, run already active")
		s.notice("analysis already running")
		return
	}
	s.state = Running
	ack := pipeline.NewAck()
	s.ack = ack
	s.mu.Unlock()

	req := pipeline.Request{UserID: s.userID, Pair: pair, Timeframe: timeframe, Ack: ack}
	go func() {
		defer func() {
			s.mu.Lock()
			s.state = Idle
			s.ack = nil
			s.mu.Unlock()
		}()

		result, err := s.runner.Run(ctx, req, s)
		if err != nil {
			if errors.Is(err, pipeline.ErrNoAllowance) {
				s.notice("no analysis credits remaining")
				return
			}
			s.logger.Error().Err(err).Str("pair", pair).Msg("Run refused")
			s.notice("analysis could not start")
			return
		}
		s.sendFrame(verdictFrame{Type: frameVerdict, Result: result})
	}()
}

func (s *Session) resolveAck() {
	s.mu.Lock()
	ack := s.ack
	s.mu.Unlock()
	if ack == nil {
		return
	}
	if !ack.Resolve() {
		s.logger.Debug().Msg("Duplicate aiThinkingComplete ignored")
	}
}

// StageUpdate and Thought make the session the run's pipeline.Subscriber.

func (s *Session) StageUpdate(stage models.AnalysisStage) {
	s.sendFrame(stageFrame{Type: frameStage, Stage: stage})
}

func (s *Session) Thought(text string) {
	s.sendFrame(thoughtFrame{Type: frameThought, Text: text})
}

func (s *Session) notice(message string) {
	s.sendFrame(noticeFrame{Type: frameNotice, Message: message})
}

// sendFrame queues one frame for the write pump. Frames after close, or
// past a saturated buffer, are dropped.
func (s *Session) sendFrame(frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error().Err(err).Msg("Frame marshal failed")
		return
	}
	select {
	case <-s.closed:
		return
	default:
	}
	select {
	case s.send <- payload:
	case <-s.closed:
	default:
		s.logger.Warn().Msg("Send buffer full, dropping frame")
	}
}

func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()
	})
}
