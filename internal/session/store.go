package session

import (
	"context"
	"sync"
	"time"

	"medassist-ai/internal/assist"
	"medassist-ai/internal/geo"
)

type Session struct {
	ID           string
	History      []assist.Turn
	Location     *geo.Location
	Mode         assist.Mode
	LastActivity time.Time

	// turn serializes history read-modify-write cycles.
	turn sync.Mutex
}

type Options struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

// Store keeps per-session state for the lifetime of a session. A session
// ends when it has been idle for longer than the TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	interval := opts.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		interval: interval,
		now:      now,
	}
}

// History returns a copy of the session's conversation.
func (s *Store) History(id string) []assist.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	history := make([]assist.Turn, len(sess.History))
	copy(history, sess.History)
	return history
}

func (s *Store) SetHistory(id string, history []assist.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	sess.History = append([]assist.Turn(nil), history...)
}

// UpdateHistory runs fn on a copy of the session's conversation and stores
// what it returns. Calls for the same session run one at a time, so each
// sees the turns the previous one appended. Nothing is stored when fn fails.
func (s *Store) UpdateHistory(id string, fn func([]assist.Turn) ([]assist.Turn, error)) error {
	s.mu.Lock()
	sess := s.getOrCreateLocked(id)
	s.mu.Unlock()

	sess.turn.Lock()
	defer sess.turn.Unlock()

	s.mu.Lock()
	history := append([]assist.Turn(nil), sess.History...)
	s.mu.Unlock()

	next, err := fn(history)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(id).History = append([]assist.Turn(nil), next...)
	return nil
}

func (s *Store) Location(id string) *geo.Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	if sess.Location == nil {
		return nil
	}
	loc := *sess.Location
	return &loc
}

func (s *Store) SetLocation(id string, loc *geo.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	if loc == nil {
		sess.Location = nil
		return
	}
	l := *loc
	sess.Location = &l
}

func (s *Store) Mode(id string) assist.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(id).Mode
}

// SetMode switches the displayed mode. History is kept.
func (s *Store) SetMode(id string, mode assist.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getOrCreateLocked(id).Mode = mode
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL at now and reports
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) getOrCreateLocked(id string) *Session {
	now := s.now()
	if sess, ok := s.sessions[id]; ok {
		if now.Sub(sess.LastActivity) <= s.ttl {
			sess.LastActivity = now
			return sess
		}
		delete(s.sessions, id)
	}

	sess := &Session{
		ID:           id,
		Mode:         assist.ModeImageAnalysis,
		LastActivity: now,
	}
	s.sessions[id] = sess
	return sess
}

func (s *Store) Name() string {
	return "session-sweeper"
}

// Run sweeps expired sessions periodically until ctx is done.
func (s *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}
