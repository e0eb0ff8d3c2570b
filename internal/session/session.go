// Package session keeps one map state per browser.
package session

import (
	"sync"

	"github.com/woozymasta/edumap/internal/atlas"
	"github.com/woozymasta/edumap/internal/metrics"
	"github.com/woozymasta/edumap/internal/ui"
	"github.com/woozymasta/edumap/internal/view"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// State is what the page needs to draw a session.
type State struct {
	ui.Snapshot
	ID     string    `json:"id"`
	View   view.Name `json:"view"`
	Filter string    `json:"filter"`
}

// Session serialises the events of one browser against its own scene.
type Session struct {
	scene *ui.Scene
	ctrl  *view.Controller
	id    string
	mu    sync.Mutex
}

// New returns a session showing the national view.
func New(id string, a *atlas.Atlas) *Session {
	scene := ui.NewScene()
	return &Session{id: id, scene: scene, ctrl: a.NewController(scene)}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current scene.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// SelectView switches between the national and regional views.
func (s *Session) SelectView(v view.Name) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.Select(v); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

// Filter applies a type filter value.
func (s *Session) Filter(value string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.Filter(value); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

func (s *Session) state() State {
	st := State{
		Snapshot: s.scene.Snapshot(),
		ID:       s.id,
		View:     s.ctrl.Active(),
		Filter:   ui.All,
	}
	if f := s.ctrl.Controls().Filter(); f != nil {
		st.Filter = f.Selected
	}
	return st
}

// Store is a bounded set of sessions; the least recently used is dropped first.
type Store struct {
	atlas *atlas.Atlas
	cache *lru.Cache[string, *Session]
}

// NewStore returns a store holding at most size sessions.
func NewStore(a *atlas.Atlas, size int) (*Store, error) {
	cache, err := lru.NewWithEvict[string, *Session](size, func(string, *Session) {
		metrics.Sessions.Dec()
	})
	if err != nil {
		return nil, err
	}

	return &Store{atlas: a, cache: cache}, nil
}

// Get returns the session with id, if it is still held.
func (st *Store) Get(id string) (*Session, bool) {
	return st.cache.Get(id)
}

// Create starts a new session under a random ID.
func (st *Store) Create() *Session {
	s := New(uuid.NewString(), st.atlas)
	st.cache.Add(s.id, s)
	metrics.Sessions.Inc()
	return s
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := st.cache.Get(id); ok {
			return s, false
		}
	}
	return st.Create(), true
}

// Len reports the number of held sessions.
func (st *Store) Len() int {
	return st.cache.Len()
}
