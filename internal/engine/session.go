package engine

import (
	"sync"

	"github.com/dylanjrt/garmin-workouts/internal/model"
)

// Snapshot is the read-only view a session exposes: the current tree, the
// selected item id (empty when nothing is selected), and whether unsaved
// edits exist.
type Snapshot struct {
	Workout  model.Workout
	Selected string
	Dirty    bool
}

// Session is the state container for one open workout. The engine stays
// pure; the session applies its outcomes, tracks selection and the dirty
// flag, and republishes snapshots to subscribers.
type Session struct {
	mu       sync.Mutex
	workout  model.Workout
	selected string
	dirty    bool
	nextSub  int
	subs     map[int]func(Snapshot)
}

// NewSession opens a session on the given workout.
func NewSession(w model.Workout) *Session {
	return &Session{workout: w, subs: make(map[int]func(Snapshot))}
}

// Snapshot returns the current state. The workout is cloned so callers can
// hold it across later edits.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{Workout: s.workout.Clone(), Selected: s.selected, Dirty: s.dirty}
}

// Apply installs an engine outcome. No-op outcomes leave the session — and
// its dirty flag — untouched and notify nobody.
func (s *Session) Apply(o Outcome) {
	s.mu.Lock()
	if !o.Changed {
		s.mu.Unlock()
		return
	}
	s.workout = o.Workout
	s.dirty = true
	if o.SetSelection {
		s.selected = o.Select
	} else if o.Deselect != "" && s.selected == o.Deselect {
		s.selected = ""
	}
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Select moves the selection without touching the tree or the dirty flag.
func (s *Session) Select(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
}

// Replace swaps in a different workout (load), clearing selection and dirty
// state.
func (s *Session) Replace(w model.Workout) {
	s.mu.Lock()
	s.workout = w
	s.selected = ""
	s.dirty = false
	s.mu.Unlock()
}

// MarkSaved clears the dirty flag after a save has been acknowledged.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// Subscribe registers fn to run after every applied mutation. The returned
// function cancels the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
