package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

// DefaultSession is the hub used by requests that carry no session id.
const DefaultSession = "default"

// rebuildWorkers bounds the hubs rebuilt at once after a reload.
const rebuildWorkers = 4

type session struct {
	hub      *Hub
	lastUsed time.Time
}

// SessionStore hands out one Hub per client so that concurrent clients do not
// share a selection.
type SessionStore struct {
	mu       sync.Mutex
	logger   *utils.Logger
	ttl      time.Duration
	width    float64
	height   float64
	dataset  *services.Dataset
	sessions map[string]*session
	now      func() time.Time
}

// NewSessionStore creates a store with the default session already open.
// Sessions idle for longer than ttl are dropped by Evict; ttl <= 0 keeps them
// forever.
func NewSessionStore(ds *services.Dataset, width, height float64, ttl time.Duration, logger *utils.Logger) *SessionStore {
	s := &SessionStore{
		logger:   logger,
		ttl:      ttl,
		width:    width,
		height:   height,
		dataset:  ds,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
	s.sessions[DefaultSession] = &session{hub: s.newHub(ds), lastUsed: s.now()}
	return s
}

func (s *SessionStore) newHub(ds *services.Dataset) *Hub {
	return NewHub(ds, s.width, s.height, s.logger)
}

// Create opens a new session and returns its id.
func (s *SessionStore) Create() (string, *Hub) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	h := s.newHub(s.dataset)
	s.sessions[id] = &session{hub: h, lastUsed: s.now()}
	s.logger.Debug("[sessions] opened %s (%d open)", id, len(s.sessions))
	return id, h
}

// Get returns the hub for id, marking it used. An empty id is the default
// session.
func (s *SessionStore) Get(id string) (*Hub, bool) {
	if id == "" {
		id = DefaultSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastUsed = s.now()
	return sess.hub, true
}

// Len reports the number of open sessions, the default one included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Dataset returns the dataset new sessions are built from.
func (s *SessionStore) Dataset() *services.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

// Evict drops every session other than the default one that has been idle
// longer than the ttl, and returns how many were dropped.
func (s *SessionStore) Evict() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, sess := range s.sessions {
		if id == DefaultSession || sess.lastUsed.After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}
	if evicted > 0 {
		s.logger.Info("[sessions] evicted %d idle sessions (%d open)", evicted, len(s.sessions))
	}
	return evicted
}

// SwapDataset installs ds for new sessions and rebuilds every open hub on it.
// Selections are kept.
func (s *SessionStore) SwapDataset(ds *services.Dataset) {
	s.mu.Lock()
	s.dataset = ds
	hubs := make([]*Hub, 0, len(s.sessions))
	for _, sess := range s.sessions {
		hubs = append(hubs, sess.hub)
	}
	s.mu.Unlock()

	pool := utils.NewWorkerPool(rebuildWorkers)
	for _, h := range hubs {
		pool.Submit(func() error {
			h.SwapDataset(ds)
			return nil
		})
	}
	_ = pool.Wait()
}
