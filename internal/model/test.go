package model

import "time"

// Test is an assembled, timed test. Questions are frozen deep copies taken at
// creation time; only AssignedStudents may change afterwards.
type Test struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Duration         int        `json:"duration"` // minutes, > 0
	Questions        []Question `json:"questions"`
	AssignedStudents []string   `json:"assignedStudents"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Clone returns a deep copy of the test, including its question snapshots.
func (t Test) Clone() Test {
	c := t
	c.Questions = make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		c.Questions[i] = q.Clone()
	}
	c.AssignedStudents = append([]string(nil), t.AssignedStudents...)
	return c
}

// IsAssigned reports whether studentID is in the test's assignment set.
func (t Test) IsAssigned(studentID string) bool {
	for _, id := range t.AssignedStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

// CountByType tallies the test's questions of the given type.
func (t Test) CountByType(qt QuestionType) int {
	n := 0
	for _, q := range t.Questions {
		if q.Type == qt {
			n++
		}
	}
	return n
}
