package dto

import "time"

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
}

type QuestionResponse struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Categories    []string `json:"categories"`
	Difficulty    string   `json:"difficulty"`
	Reference     string   `json:"reference,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Code          string   `json:"code,omitempty"`
}

// StudentQuestionResponse is the exam-taking view: no correct answer.
type StudentQuestionResponse struct {
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	Options  []string `json:"options,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Code     string   `json:"code,omitempty"`
}

type StudentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TestResponse struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Duration         int                `json:"duration"`
	QuestionCount    int                `json:"questionCount"`
	MCCount          int                `json:"mcCount"`
	LongCount        int                `json:"longCount"`
	AssignedStudents []string           `json:"assignedStudents"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// AssignedTestResponse is a student's view of one assigned test.
type AssignedTestResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Duration      int    `json:"duration"`
	QuestionCount int    `json:"questionCount"`
	Completed     bool   `json:"completed"`
}

type SessionResponse struct {
	TestID        string                    `json:"testId"`
	State         string                    `json:"state"`
	Remaining     int                       `json:"remaining"`
	Questions     []StudentQuestionResponse `json:"questions"`
	Answers       map[int]string            `json:"answers"`
	QuestionCount int                       `json:"questionCount"`
}

type AnswerResponse struct {
	QuestionIndex int     `json:"questionIndex"`
	Question      string  `json:"question"`
	Type          string  `json:"type"`
	Answer        *string `json:"answer"`
	Correct       bool    `json:"correct"`
	Reviewed      bool    `json:"reviewed"`
	Comment       string  `json:"comment,omitempty"`
}

type SubmissionResponse struct {
	ID            string           `json:"id"`
	TestID        string           `json:"testId"`
	StudentID     string           `json:"studentId"`
	Answers       []AnswerResponse `json:"answers"`
	SubmittedAt   time.Time        `json:"submittedAt"`
	AutoSubmitted bool             `json:"autoSubmitted"`
	Synced        bool             `json:"synced"`
}

type ScoreResponse struct {
	MC      int  `json:"mc"`
	Long    int  `json:"long"`
	Total   int  `json:"total"`
	HasLong bool `json:"hasLong"`
	Pending int  `json:"pending"`
}

type ResultRowResponse struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"name"`
	Status      string `json:"status"`
	MCCorrect   int    `json:"mcCorrect"`
	MCTotal     int    `json:"mcTotal"`
	LongCorrect int    `json:"longCorrect"`
	LongTotal   int    `json:"longTotal"`
	LongPending int    `json:"longPending"`
}

// OverviewRowResponse is one completed test in a student's score history.
type OverviewRowResponse struct {
	TestID        string    `json:"testId"`
	TestName      string    `json:"testName"`
	MC            int       `json:"mc"`
	Long          int       `json:"long"`
	Total         int       `json:"total"`
	HasLong       bool      `json:"hasLong"`
	Pending       int       `json:"pending"`
	AutoSubmitted bool      `json:"autoSubmitted"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// OverviewResponse is a student's full score history plus running averages.
// AverageLong only averages over tests that have long answers.
type OverviewResponse struct {
	History      []OverviewRowResponse `json:"history"`
	AverageMC    int                   `json:"averageMc"`
	AverageLong  int                   `json:"averageLong"`
	AverageTotal int                   `json:"averageTotal"`
}

type ImportReportResponse struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// SyncStatusResponse reports connectivity between local state and the
// persistence backend.
type SyncStatusResponse struct {
	Backend  string `json:"backend"`
	Unsynced int    `json:"unsynced"`
}

type CountsResponse struct {
	Questions   int `json:"questions"`
	Tests       int `json:"tests"`
	Students    int `json:"students"`
	Submissions int `json:"submissions"`
	Categories  int `json:"categories"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// SavedResponse acknowledges a mutation. Synced=false means the change is
// local only and will be reconciled on the next full sync.
type SavedResponse struct {
	Synced bool `json:"synced"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
