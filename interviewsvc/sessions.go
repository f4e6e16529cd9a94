package interviewsvc

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// IdleLimit is how long a session survives without requests.
	IdleLimit       = time.Hour
	cleanupInterval = 10 * time.Minute
)

// Session is one practice interview held in memory.
type Session struct {
	ID           int
	Type         string
	Questions    []string
	Answers      []string
	Feedback     []*answerFeedback
	Video        []map[string]float64
	Audio        []map[string]float64
	StartTime    time.Time
	LastActivity time.Time
	EndTime      time.Time
}

// SessionStore tracks active sessions and expires idle ones. It also owns
// the random source, since every draw happens under its lock.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int]*Session
	rng      *rand.Rand
	now      func() time.Time
}

func NewSessionStore(rng *rand.Rand) *SessionStore {
	return &SessionStore{
		sessions: make(map[int]*Session),
		rng:      rng,
		now:      time.Now,
	}
}

// Register creates a session with a fresh id in [1000, 9999].
func (s *SessionStore) Register(kind string, pick func(*rand.Rand) []string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := 1000 + s.rng.IntN(9000)
	for s.sessions[id] != nil {
		id = 1000 + s.rng.IntN(9000)
	}

	questions := pick(s.rng)
	now := s.now()
	session := &Session{
		ID:           id,
		Type:         kind,
		Questions:    questions,
		Answers:      make([]string, len(questions)),
		Feedback:     make([]*answerFeedback, len(questions)),
		Video:        make([]map[string]float64, len(questions)),
		Audio:        make([]map[string]float64, len(questions)),
		StartTime:    now,
		LastActivity: now,
	}
	s.sessions[id] = session

	slog.Info("Interview session registered", "session_id", id, "type", kind, "questions", len(questions))
	return session
}

// Update runs fn on the session under the store lock and records the
// activity. It reports false when the session does not exist.
func (s *SessionStore) Update(id int, fn func(*Session, *rand.Rand)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return false
	}
	session.LastActivity = s.now()
	fn(session, s.rng)
	return true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunTimeoutChecker removes idle sessions until ctx is done.
func (s *SessionStore) RunTimeoutChecker(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkTimeouts()
		}
	}
}

func (s *SessionStore) checkTimeouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if now.Sub(session.LastActivity) > IdleLimit {
			delete(s.sessions, id)
			removed++
			slog.Info("Removed inactive interview session", "session_id", id, "inactive_duration", now.Sub(session.LastActivity))
		}
	}
	return removed
}
