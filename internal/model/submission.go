package model

import "time"

// Answer is one entry of Submission.Answers, aligned 1:1 with the owning
// test's question order. For multiple choice, Answer is the selected letter
// (nil when unanswered) and Correct is fixed at submit time. For long answers,
// Reviewed/Correct/Comment are written by the grading workflow.
type Answer struct {
	QuestionIndex int          `json:"questionIndex"`
	Question      string       `json:"question"`
	Type          QuestionType `json:"type"`
	Answer        *string      `json:"answer"`
	Correct       bool         `json:"correct"`
	Reviewed      bool         `json:"reviewed,omitempty"`
	Comment       string       `json:"comment,omitempty"`
}

// Submission is a student's completed attempt at a test. At most one
// submission exists per (TestID, StudentID); a newer one supersedes the old.
// Answers themselves are immutable after submit; only the review fields of
// long-answer entries may change.
type Submission struct {
	ID            string    `json:"id"`
	TestID        string    `json:"testId"`
	StudentID     string    `json:"studentId"`
	Answers       []Answer  `json:"answers"`
	SubmittedAt   time.Time `json:"submittedAt"`
	AutoSubmitted bool      `json:"autoSubmitted,omitempty"`
}

// Clone returns a deep copy of the submission.
func (s Submission) Clone() Submission {
	c := s
	c.Answers = make([]Answer, len(s.Answers))
	copy(c.Answers, s.Answers)
	for i := range c.Answers {
		if s.Answers[i].Answer != nil {
			v := *s.Answers[i].Answer
			c.Answers[i].Answer = &v
		}
	}
	return c
}

// AnswerAt finds the answer with the given question index.
func (s *Submission) AnswerAt(questionIndex int) *Answer {
	for i := range s.Answers {
		if s.Answers[i].QuestionIndex == questionIndex {
			return &s.Answers[i]
		}
	}
	return nil
}

// HasPendingReview reports whether any long answer is still unreviewed.
func (s Submission) HasPendingReview() bool {
	for _, a := range s.Answers {
		if a.Type == QuestionLongAnswer && !a.Reviewed {
			return true
		}
	}
	return false
}
