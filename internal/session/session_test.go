package session_test

import (
	"errors"
	"testing"

	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/session"
)

func sampleTest() model.Test {
	return model.Test{
		ID:       "t1",
		Name:     "Sample",
		Duration: 1, // 60 seconds
		Questions: []model.Question{
			{
				ID: "q1", Type: model.QuestionMultipleChoice, Text: "pick one",
				Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "A",
			},
			{ID: "q2", Type: model.QuestionLongAnswer, Text: "explain"},
		},
	}
}

// newManager returns a manager with the background ticker disabled so tests
// drive Tick deterministically.
func newManager() *session.Manager {
	return session.NewManager(0)
}

func TestStart(t *testing.T) {
	mgr := newManager()
	s := mgr.Start(sampleTest(), "s1", nil)

	if s.State() != session.StateInProgress {
		t.Errorf("state = %s, want in_progress", s.State())
	}
	if s.Remaining() != 60 {
		t.Errorf("remaining = %d, want 60", s.Remaining())
	}
	if got, ok := mgr.Get("s1"); !ok || got != s {
		t.Error("manager should return the started session")
	}
}

func TestSetAnswer(t *testing.T) {
	mgr := newManager()
	s := mgr.Start(sampleTest(), "s1", nil)

	t.Run("ValidLetter", func(t *testing.T) {
		if err := s.SetAnswer(0, "b"); err != nil {
			t.Fatalf("SetAnswer: %v", err)
		}
		if s.Captured()[0] != "B" {
			t.Errorf("captured = %q, want normalized B", s.Captured()[0])
		}
	})

	t.Run("BadLetter", func(t *testing.T) {
		err := s.SetAnswer(0, "E")
		if !errors.Is(err, model.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("BadIndex", func(t *testing.T) {
		err := s.SetAnswer(5, "A")
		if !errors.Is(err, model.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("LongAnswerFreeText", func(t *testing.T) {
		if err := s.SetAnswer(1, "because of normalization"); err != nil {
			t.Fatalf("SetAnswer: %v", err)
		}
	})
}

func TestExpiry(t *testing.T) {
	mgr := newManager()
	fired := 0
	s := mgr.Start(sampleTest(), "s1", func(*session.Session) { fired++ })

	for i := 0; i < 59; i++ {
		if s.Tick() {
			t.Fatalf("expired early at tick %d", i+1)
		}
	}
	if s.Remaining() != 1 {
		t.Fatalf("remaining = %d after 59 ticks, want 1", s.Remaining())
	}
	if !s.Tick() {
		t.Fatal("tick 60 should expire the session")
	}
	if s.State() != session.StateExpired {
		t.Errorf("state = %s, want expired", s.State())
	}
	if fired != 1 {
		t.Errorf("expire callback fired %d times, want 1", fired)
	}

	// Further ticks are no-ops and must not refire the callback.
	if s.Tick() {
		t.Error("tick after expiry should return false")
	}
	if fired != 1 {
		t.Errorf("expire callback refired, total %d", fired)
	}

	// Inputs are frozen after expiry.
	if err := s.SetAnswer(0, "A"); !errors.Is(err, model.ErrSessionClosed) {
		t.Errorf("SetAnswer after expiry = %v, want ErrSessionClosed", err)
	}

	if !s.Submittable() {
		t.Error("expired session must still be submittable (auto submit path)")
	}
}

func TestTryFinish(t *testing.T) {
	mgr := newManager()
	s := mgr.Start(sampleTest(), "s1", nil)

	if !s.TryFinish() {
		t.Fatal("first TryFinish should win")
	}
	if s.State() != session.StateSubmitted {
		t.Errorf("state = %s, want submitted", s.State())
	}
	if s.Submittable() {
		t.Error("submitted session is terminal")
	}
	if s.Tick() {
		t.Error("submitted session must not tick")
	}
	// Only one caller ever wins the transition.
	if s.TryFinish() {
		t.Error("second TryFinish should lose")
	}
}

func TestStartSupersedes(t *testing.T) {
	fired := 0
	mgr := newManager()
	first := mgr.Start(sampleTest(), "s1", func(*session.Session) { fired++ })
	second := mgr.Start(sampleTest(), "s1", nil)

	if got, _ := mgr.Get("s1"); got != second {
		t.Error("manager should track the newest session")
	}
	if first == second {
		t.Error("expected a fresh session object")
	}

	// The superseded session is closed, so it can never expire or submit.
	if first.State() != session.StateSubmitted {
		t.Errorf("superseded state = %s, want submitted", first.State())
	}
	for i := 0; i < 120; i++ {
		first.Tick()
	}
	if fired != 0 {
		t.Error("superseded session must not fire its expiry callback")
	}
}

func TestDrop(t *testing.T) {
	mgr := newManager()
	mgr.Start(sampleTest(), "s1", nil)
	mgr.Drop("s1")
	if _, ok := mgr.Get("s1"); ok {
		t.Error("dropped session should be forgotten")
	}
	// Dropping again is harmless.
	mgr.Drop("s1")
}

func TestDropSessionKeepsNewerSession(t *testing.T) {
	mgr := newManager()
	first := mgr.Start(sampleTest(), "s1", nil)
	second := mgr.Start(sampleTest(), "s1", nil)

	// Dropping the superseded session must not evict the live one.
	mgr.DropSession(first)
	if got, ok := mgr.Get("s1"); !ok || got != second {
		t.Error("live session evicted by a stale drop")
	}

	mgr.DropSession(second)
	if _, ok := mgr.Get("s1"); ok {
		t.Error("live session should be forgotten after its own drop")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	test := sampleTest()
	mgr := newManager()
	s := mgr.Start(test, "s1", nil)

	// Mutating the caller's test must not reach the session's snapshot.
	test.Questions[0].Text = "changed"
	if s.Questions()[0].Text == "changed" {
		t.Error("session must hold a frozen copy of the questions")
	}
}
