package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PageFactory builds the page for a new session.
type PageFactory func() *Page

// SessionStore keeps one Page per browser session and drops sessions idle for
// longer than ttl.
type SessionStore struct {
	newPage PageFactory
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	pages map[string]*Page

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSessionStore creates a store and starts its sweeper. Close stops it.
func NewSessionStore(newPage PageFactory, ttl, sweepInterval time.Duration, logger *zap.Logger) *SessionStore {
	s := &SessionStore{
		newPage: newPage,
		ttl:     ttl,
		logger:  logger.Named("SessionStore"),
		now:     time.Now,
		pages:   make(map[string]*Page),
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop(sweepInterval)
	}
	return s
}

// Get returns the page for id, creating a session when id is unknown or
// expired. The returned id is the one to store in the cookie.
func (s *SessionStore) Get(id string) (string, *Page) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pages[id]; ok && id != "" {
		if p.idleSince(now) <= s.ttl {
			p.touch(now)
			return id, p
		}
		delete(s.pages, id)
	}

	id = uuid.NewString()
	p := s.newPage()
	p.touch(now)
	s.pages[id] = p
	s.logger.Debug("Session created", zap.String("session", id))
	return id, p
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, p := range s.pages {
		if p.idleSince(now) > s.ttl {
			delete(s.pages, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("Expired sessions removed", zap.Int("removed", removed), zap.Int("remaining", len(s.pages)))
	}
	return removed
}

func (s *SessionStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close stops the sweeper and waits for it to exit.
func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}
