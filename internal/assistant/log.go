package assistant

import (
	"sync"
	"time"
)

// DefaultHistoryLimit bounds the conversation log when no limit is configured.
const DefaultHistoryLimit = 50

// Turn is one exchange kept in the conversation log.
type Turn struct {
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Intent    Intent    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
}

// Log keeps the most recent turns across all users, oldest evicted first.
// It is safe for concurrent use.
type Log struct {
	mu    sync.Mutex
	limit int
	turns []Turn
}

// NewLog returns a log holding at most limit turns. A non-positive limit
// uses DefaultHistoryLimit.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Log{limit: limit, turns: make([]Turn, 0, limit)}
}

// Append records t, evicting the oldest turn when full.
func (l *Log) Append(t Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.turns) == l.limit {
		copy(l.turns, l.turns[1:])
		l.turns = l.turns[:len(l.turns)-1]
	}
	l.turns = append(l.turns, t)
}

// History returns a copy of the turns for userID in insertion order. An
// empty userID returns every turn.
func (l *Log) History(userID string) []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Turn, 0, len(l.turns))
	for _, t := range l.turns {
		if userID == "" || t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// Clear drops the turns of userID, or every turn when userID is empty.
// It returns how many turns were removed.
func (l *Log) Clear(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if userID == "" {
		n := len(l.turns)
		l.turns = l.turns[:0]
		return n
	}
	kept := l.turns[:0]
	for _, t := range l.turns {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	n := len(l.turns) - len(kept)
	clear(l.turns[len(kept):])
	l.turns = kept
	return n
}

// Len is the number of turns held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

// Limit is the maximum number of turns held.
func (l *Log) Limit() int { return l.limit }
