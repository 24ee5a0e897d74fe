package assistant

import (
	"log/slog"
)

// Service is the assistant instance shared by the HTTP, websocket, and MCP
// front ends. It is constructed once at startup and passed to each.
type Service struct {
	dispatcher *Dispatcher
	log        *Log
}

// NewService pairs a dispatcher with a conversation log.
func NewService(d *Dispatcher, log *Log) *Service {
	return &Service{dispatcher: d, log: log}
}

// Process answers msg for userID and records the exchange.
func (s *Service) Process(userID, msg string, c Context) Reply {
	r := s.dispatcher.Dispatch(msg, c)
	s.log.Append(Turn{
		UserID:    userID,
		Message:   r.Message,
		Response:  r.Response,
		Intent:    r.Intent,
		Timestamp: r.Timestamp,
	})
	slog.Debug("assistant reply", "user_id", userID, "intent", r.Intent, "skills", len(c.Categories))
	return r
}

// History returns the logged turns for userID, or all turns when empty.
func (s *Service) History(userID string) []Turn { return s.log.History(userID) }

// Clear removes logged turns for userID, or all turns when empty.
func (s *Service) Clear(userID string) int { return s.log.Clear(userID) }

// Dispatcher exposes the underlying dispatcher for stateless callers.
func (s *Service) Dispatcher() *Dispatcher { return s.dispatcher }

// HistoryLimit is the configured log capacity.
func (s *Service) HistoryLimit() int { return s.log.Limit() }
