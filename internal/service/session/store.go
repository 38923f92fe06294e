package session

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/sandevgo/profiletwin/pkg/srv"
)

type session struct {
	// serialises whole requests for one session id
	reqMu sync.Mutex

	// guarded by Store.mu
	refs     int
	turns    []core.Turn
	language string
	lastSeen time.Time
}

// Store keeps bounded conversation history in memory, keyed by session id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session

	idleTimeout time.Duration
	maxTurns    int
	now         func() time.Time
}

var _ core.SessionStore = (*Store)(nil)

func NewStore(idleTimeout time.Duration, maxTurns int) *Store {
	return &Store{
		sessions:    make(map[string]*session),
		idleTimeout: idleTimeout,
		maxTurns:    maxTurns,
		now:         time.Now,
	}
}

// Lock takes the per-session lock, creating the session on first use.
func (s *Store) Lock(sessionID string) func() {
	s.mu.Lock()
	sess := s.getOrCreate(sessionID)
	sess.refs++
	s.mu.Unlock()

	sess.reqMu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sess.reqMu.Unlock()

			s.mu.Lock()
			sess.refs--
			sess.lastSeen = s.now()
			s.mu.Unlock()
		})
	}
}

// History returns a copy of the turns, the last detected language and whether the session exists.
func (s *Store) History(sessionID string) ([]core.Turn, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, "", false
	}
	return append([]core.Turn(nil), sess.turns...), sess.language, true
}

func (s *Store) Append(sessionID, language string, turns ...core.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(sessionID)
	sess.turns = append(sess.turns, turns...)
	if s.maxTurns > 0 && len(sess.turns) > s.maxTurns {
		sess.turns = append([]core.Turn(nil), sess.turns[len(sess.turns)-s.maxTurns:]...)
	}
	if language != "" {
		sess.language = language
	}
	sess.lastSeen = s.now()
}

// Seed fills a session that has no turns yet. Existing history always wins.
func (s *Store) Seed(sessionID string, turns []core.Turn) {
	if len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(sessionID)
	if len(sess.turns) > 0 {
		return
	}
	if s.maxTurns > 0 && len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	sess.turns = append([]core.Turn(nil), turns...)
}

func (s *Store) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if sess.refs > 0 {
		sess.turns = nil
		sess.language = ""
		return
	}
	delete(s.sessions, sessionID)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle drops sessions unused for longer than the idle timeout and returns how many went.
func (s *Store) EvictIdle() int {
	if s.idleTimeout <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTimeout)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.refs == 0 && sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// NewJanitor returns a service that evicts idle sessions every interval.
func (s *Store) NewJanitor(interval time.Duration) srv.Service {
	return srv.NewTicker("session-janitor", interval, func(ctx context.Context) error {
		if n := s.EvictIdle(); n > 0 {
			log.FromCtx(ctx).Debug().Int("evicted", n).Int("active", s.Count()).Msg("idle sessions evicted")
		}
		return nil
	})
}

func (s *Store) getOrCreate(sessionID string) *session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{lastSeen: s.now()}
		s.sessions[sessionID] = sess
	}
	return sess
}
