// Package session implements the in-progress test attempt: countdown timer,
// answer capture and the expiry-triggered auto submit.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ldtran/examdesk/internal/model"
)

// State of a test session. Submitted is terminal; Expired is the short-lived
// branch between the countdown hitting zero and the auto submit landing.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateExpired    State = "expired"
	StateSubmitted  State = "submitted"
)

// ExpireFunc runs exactly once when the countdown reaches zero, after inputs
// are frozen. It is expected to perform the auto submit.
type ExpireFunc func(*Session)

// Session is a single student's live attempt at one test. It owns a frozen
// reference to the test's question snapshot and the raw captured inputs.
type Session struct {
	mu        sync.Mutex
	testID    string
	studentID string
	questions []model.Question
	captured  map[int]string
	remaining int
	state     State
	onExpire  ExpireFunc
	cancel    context.CancelFunc
	startedAt time.Time
}

func (s *Session) TestID() string    { return s.testID }
func (s *Session) StudentID() string { return s.studentID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining is the countdown value in seconds.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Session) StartedAt() time.Time { return s.startedAt }

// Questions returns the frozen snapshot the session was started with.
func (s *Session) Questions() []model.Question {
	out := make([]model.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// Captured returns a copy of the raw inputs keyed by question index.
func (s *Session) Captured() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]string, len(s.captured))
	for k, v := range s.captured {
		out[k] = v
	}
	return out
}

// SetAnswer records the input for one question. Only allowed while the
// session is in progress; expiry freezes all inputs.
func (s *Session) SetAnswer(questionIndex int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return fmt.Errorf("session for test %q: %w", s.testID, model.ErrSessionClosed)
	}
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return fmt.Errorf("question index %d: %w", questionIndex, model.ErrNotFound)
	}
	q := s.questions[questionIndex]
	if q.Type == model.QuestionMultipleChoice {
		value = strings.ToUpper(strings.TrimSpace(value))
		if value != "" && (len(value) != 1 || !strings.Contains(model.OptionLetters, value)) {
			return fmt.Errorf("selected option %q: %w", value, model.ErrValidation)
		}
	}
	s.captured[questionIndex] = value
	return nil
}

// Tick decrements the countdown by one second. When it reaches zero the
// session transitions to Expired, inputs freeze, and the expire callback
// fires (outside the lock). Returns true exactly once, on the expiring tick.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}
	s.remaining = 0
	s.state = StateExpired
	fn := s.onExpire
	s.mu.Unlock()
	if fn != nil {
		fn(s)
	}
	return true
}

// Submittable reports whether Submit is allowed from the current state.
func (s *Session) Submittable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateInProgress || s.state == StateExpired
}

// TryFinish atomically closes the session: InProgress or Expired moves to the
// terminal Submitted state and the timer stops. Reports whether this call made
// the transition, so of a racing manual submit, expiry auto submit and
// superseding start, exactly one wins.
func (s *Session) TryFinish() bool {
	s.mu.Lock()
	if s.state != StateInProgress && s.state != StateExpired {
		s.mu.Unlock()
		return false
	}
	s.state = StateSubmitted
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return true
}

func (s *Session) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Tick() {
				return
			}
			if s.State() != StateInProgress {
				return
			}
		}
	}
}
