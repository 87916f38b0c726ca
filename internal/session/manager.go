package session

import (
	"context"
	"sync"
	"time"

	"github.com/ldtran/examdesk/internal/model"
	"github.com/rs/zerolog/log"
)

// Manager tracks at most one live session per student. Starting a new session
// for a student cancels any previous timer first, so a single countdown runs
// per logged-in student.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	tick     time.Duration
}

// NewManager builds a manager whose sessions tick at the given interval.
// A non-positive interval disables the background ticker entirely; callers
// (tests) then drive Tick themselves.
func NewManager(tick time.Duration) *Manager {
	return &Manager{sessions: make(map[string]*Session), tick: tick}
}

// Start opens a session for the student over the test's frozen snapshot and
// begins the countdown at duration × 60 seconds.
func (m *Manager) Start(test model.Test, studentID string, onExpire ExpireFunc) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[studentID]; ok {
		// Close, not just cancel: an in-flight expiry on the old session must
		// lose the TryFinish race and submit nothing.
		old.TryFinish()
		log.Info().Str("student_id", studentID).Str("test_id", old.testID).
			Msg("superseding previous test session")
	}
	frozen := test.Clone()
	s := &Session{
		testID:    frozen.ID,
		studentID: studentID,
		questions: frozen.Questions,
		captured:  make(map[int]string),
		remaining: frozen.Duration * 60,
		state:     StateInProgress,
		onExpire:  onExpire,
		startedAt: time.Now(),
	}
	m.sessions[studentID] = s
	if m.tick > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		go s.run(ctx, m.tick)
	}
	return s
}

// Get returns the student's live session, if any.
func (m *Manager) Get(studentID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[studentID]
	return s, ok
}

// Drop closes whatever session the student currently has and forgets it.
// Used on logout and abandon; nothing is persisted here.
func (m *Manager) Drop(studentID string) {
	m.mu.Lock()
	s, ok := m.sessions[studentID]
	if ok {
		delete(m.sessions, studentID)
	}
	m.mu.Unlock()
	if ok {
		s.TryFinish()
	}
}

// DropSession forgets one specific session, leaving the map alone when the
// student has since started a different one. Submit paths use this so a late
// expiry on a superseded session cannot evict the student's live session.
func (m *Manager) DropSession(s *Session) {
	m.mu.Lock()
	if cur, ok := m.sessions[s.studentID]; ok && cur == s {
		delete(m.sessions, s.studentID)
	}
	m.mu.Unlock()
	s.TryFinish()
}
