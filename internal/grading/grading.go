// Package grading builds submission answers from captured input and computes
// the score rollups shown on dashboards and review screens.
package grading

import (
	"math"

	"github.com/ldtran/examdesk/internal/model"
)

// BuildAnswers produces one Answer per question of the frozen test snapshot,
// in test order, from the raw captured inputs (question index -> selected
// letter or free text). Multiple-choice correctness is decided here, once;
// it is never recomputed later. Long answers start unreviewed.
func BuildAnswers(questions []model.Question, captured map[int]string) []model.Answer {
	answers := make([]model.Answer, len(questions))
	for i, q := range questions {
		a := model.Answer{
			QuestionIndex: i,
			Question:      q.Text,
			Type:          q.Type,
		}
		raw, ok := captured[i]
		switch q.Type {
		case model.QuestionMultipleChoice:
			if ok && raw != "" {
				v := raw
				a.Answer = &v
				a.Correct = raw == q.CorrectAnswer
			}
			// Unanswered: Answer stays nil, scored as incorrect.
		case model.QuestionLongAnswer:
			v := ""
			if ok {
				v = raw
			}
			a.Answer = &v
			a.Reviewed = false
		}
		answers[i] = a
	}
	return answers
}

// Percent is round(100*correct/total), 0 when total is 0.
func Percent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Scores are the per-submission percentages.
type Scores struct {
	MC      int  `json:"mcScore"`
	Long    int  `json:"longScore"`
	Total   int  `json:"totalScore"`
	HasLong bool `json:"hasLong"`
}

// Score computes the submission's section and total percentages. The total is
// the equal-weight average of the two section percentages whenever long
// answers exist, regardless of question counts; unreviewed long answers count
// as not-correct. This mirrors the product's scoring exactly.
func Score(sub model.Submission) Scores {
	var mcCorrect, mcTotal, longCorrect, longTotal int
	for _, a := range sub.Answers {
		switch a.Type {
		case model.QuestionMultipleChoice:
			mcTotal++
			if a.Correct {
				mcCorrect++
			}
		case model.QuestionLongAnswer:
			longTotal++
			if a.Reviewed && a.Correct {
				longCorrect++
			}
		}
	}
	s := Scores{
		MC:      Percent(mcCorrect, mcTotal),
		Long:    Percent(longCorrect, longTotal),
		HasLong: longTotal > 0,
	}
	if s.HasLong {
		s.Total = int(math.Round(float64(s.MC+s.Long) / 2))
	} else {
		s.Total = s.MC
	}
	return s
}

// PendingAnswers counts the unreviewed long answers of one submission.
func PendingAnswers(sub model.Submission) int {
	n := 0
	for _, a := range sub.Answers {
		if a.Type == model.QuestionLongAnswer && !a.Reviewed {
			n++
		}
	}
	return n
}

// ResultStatus classifies an assigned student in a per-test results view.
type ResultStatus string

const (
	StatusNotStarted ResultStatus = "Not Started"
	StatusCompleted  ResultStatus = "Completed"
)

// ResultRow is one assigned student's line in a test's results table.
type ResultRow struct {
	StudentID   string       `json:"studentId"`
	StudentName string       `json:"studentName"`
	Status      ResultStatus `json:"status"`
	MCCorrect   int          `json:"mcCorrect"`
	MCTotal     int          `json:"mcTotal"`
	LongCorrect int          `json:"longCorrect"`
	LongTotal   int          `json:"longTotal"`
	LongPending int          `json:"longPending"`
}

// Results builds one row per assigned student. Students without a submission
// are reported as Not Started with zero correct out of the test's totals.
func Results(test model.Test, students []model.Student, submissions []model.Submission) []ResultRow {
	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.ID] = s.Name
	}
	byStudent := make(map[string]model.Submission, len(submissions))
	for _, s := range submissions {
		if s.TestID == test.ID {
			byStudent[s.StudentID] = s
		}
	}
	rows := make([]ResultRow, 0, len(test.AssignedStudents))
	for _, sid := range test.AssignedStudents {
		row := ResultRow{StudentID: sid, StudentName: names[sid]}
		sub, ok := byStudent[sid]
		if !ok {
			row.Status = StatusNotStarted
			row.MCTotal = test.CountByType(model.QuestionMultipleChoice)
			row.LongTotal = test.CountByType(model.QuestionLongAnswer)
			rows = append(rows, row)
			continue
		}
		row.Status = StatusCompleted
		for _, a := range sub.Answers {
			switch a.Type {
			case model.QuestionMultipleChoice:
				row.MCTotal++
				if a.Correct {
					row.MCCorrect++
				}
			case model.QuestionLongAnswer:
				row.LongTotal++
				if a.Reviewed && a.Correct {
					row.LongCorrect++
				} else if !a.Reviewed {
					row.LongPending++
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}
