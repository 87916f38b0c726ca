package grading_test

import (
	"testing"

	"github.com/ldtran/examdesk/internal/grading"
	"github.com/ldtran/examdesk/internal/model"
)

func mcQuestion(id, correct string) model.Question {
	return model.Question{
		ID:            id,
		Type:          model.QuestionMultipleChoice,
		Text:          "mc " + id,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: correct,
	}
}

func longQuestion(id string) model.Question {
	return model.Question{ID: id, Type: model.QuestionLongAnswer, Text: "long " + id}
}

func TestBuildAnswers(t *testing.T) {
	questions := []model.Question{
		mcQuestion("1", "A"),
		mcQuestion("2", "B"),
		longQuestion("3"),
	}
	captured := map[int]string{0: "A", 1: "C", 2: "my essay"}

	answers := grading.BuildAnswers(questions, captured)
	if len(answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(answers))
	}
	if !answers[0].Correct {
		t.Error("answer 0 matches the key and should be correct")
	}
	if answers[1].Correct {
		t.Error("answer 1 does not match the key and should be incorrect")
	}
	if answers[2].Reviewed {
		t.Error("long answers must start unreviewed")
	}
	if answers[2].Answer == nil || *answers[2].Answer != "my essay" {
		t.Error("long answer text was not carried over")
	}

	t.Run("UnansweredMultipleChoice", func(t *testing.T) {
		answers := grading.BuildAnswers(questions, map[int]string{})
		if answers[0].Answer != nil {
			t.Error("unanswered multiple-choice should have a nil answer")
		}
		if answers[0].Correct {
			t.Error("unanswered multiple-choice should be incorrect")
		}
		if answers[2].Answer == nil || *answers[2].Answer != "" {
			t.Error("unanswered long answer should be an empty string, not nil")
		}
	})
}

func TestScore(t *testing.T) {
	ptr := func(s string) *string { return &s }

	t.Run("MixedSections", func(t *testing.T) {
		// 2/3 multiple choice, 1/2 long reviewed correct.
		sub := model.Submission{Answers: []model.Answer{
			{Type: model.QuestionMultipleChoice, Answer: ptr("A"), Correct: true},
			{Type: model.QuestionMultipleChoice, Answer: ptr("B"), Correct: true},
			{Type: model.QuestionMultipleChoice, Answer: ptr("C"), Correct: false},
			{Type: model.QuestionLongAnswer, Answer: ptr("x"), Reviewed: true, Correct: true},
			{Type: model.QuestionLongAnswer, Answer: ptr("y"), Reviewed: false},
		}}
		s := grading.Score(sub)
		if s.MC != 67 {
			t.Errorf("mc score = %d, want 67", s.MC)
		}
		if s.Long != 50 {
			t.Errorf("long score = %d, want 50", s.Long)
		}
		if s.Total != 59 {
			t.Errorf("total = %d, want 59 (equal-weight average of 67 and 50, rounded)", s.Total)
		}
		if !s.HasLong {
			t.Error("HasLong should be true")
		}
	})

	t.Run("MultipleChoiceOnly", func(t *testing.T) {
		sub := model.Submission{Answers: []model.Answer{
			{Type: model.QuestionMultipleChoice, Correct: true},
			{Type: model.QuestionMultipleChoice, Correct: true},
			{Type: model.QuestionMultipleChoice, Correct: true},
			{Type: model.QuestionMultipleChoice, Correct: true},
			{Type: model.QuestionMultipleChoice, Correct: false},
		}}
		s := grading.Score(sub)
		if s.MC != 80 || s.Total != 80 {
			t.Errorf("mc/total = %d/%d, want 80/80", s.MC, s.Total)
		}
		if s.HasLong {
			t.Error("HasLong should be false")
		}
	})

	t.Run("UnreviewedCountsAsIncorrect", func(t *testing.T) {
		sub := model.Submission{Answers: []model.Answer{
			{Type: model.QuestionLongAnswer, Reviewed: false, Correct: true},
		}}
		if s := grading.Score(sub); s.Long != 0 {
			t.Errorf("unreviewed long answer scored %d, want 0", s.Long)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		s := grading.Score(model.Submission{})
		if s.MC != 0 || s.Long != 0 || s.Total != 0 || s.HasLong {
			t.Errorf("empty submission scored %+v", s)
		}
	})
}

func TestPercentRounding(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{3, 3, 100},
	}
	for _, c := range cases {
		if got := grading.Percent(c.correct, c.total); got != c.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", c.correct, c.total, got, c.want)
		}
	}
}

func TestResults(t *testing.T) {
	test := model.Test{
		ID: "t1",
		Questions: []model.Question{
			mcQuestion("1", "A"), mcQuestion("2", "B"), longQuestion("3"),
		},
		AssignedStudents: []string{"s1", "s2"},
	}
	students := []model.Student{
		{ID: "s1", Name: "Ann"},
		{ID: "s2", Name: "Ben"},
	}
	answered := "A"
	submissions := []model.Submission{
		{
			ID: "sub1", TestID: "t1", StudentID: "s1",
			Answers: []model.Answer{
				{QuestionIndex: 0, Type: model.QuestionMultipleChoice, Answer: &answered, Correct: true},
				{QuestionIndex: 1, Type: model.QuestionMultipleChoice},
				{QuestionIndex: 2, Type: model.QuestionLongAnswer, Reviewed: false},
			},
		},
		// Belongs to another test; must be ignored.
		{ID: "sub2", TestID: "other", StudentID: "s2"},
	}

	rows := grading.Results(test, students, submissions)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if rows[0].Status != grading.StatusCompleted {
		t.Errorf("s1 status = %s, want Completed", rows[0].Status)
	}
	if rows[0].MCCorrect != 1 || rows[0].MCTotal != 2 {
		t.Errorf("s1 mc = %d/%d, want 1/2", rows[0].MCCorrect, rows[0].MCTotal)
	}
	if rows[0].LongPending != 1 {
		t.Errorf("s1 pending = %d, want 1", rows[0].LongPending)
	}

	if rows[1].Status != grading.StatusNotStarted {
		t.Errorf("s2 status = %s, want Not Started", rows[1].Status)
	}
	if rows[1].MCTotal != 2 || rows[1].LongTotal != 1 {
		t.Errorf("not-started row should show the test's totals, got mc=%d long=%d",
			rows[1].MCTotal, rows[1].LongTotal)
	}
	if rows[1].StudentName != "Ben" {
		t.Errorf("s2 name = %q", rows[1].StudentName)
	}
}
