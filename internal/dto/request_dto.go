package dto

// LoginRequest covers both admin and student logins. Admin sends
// username="admin"; students send their student id as username.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type QuestionRequest struct {
	ID            string   `json:"id"` // Optional: blank means a new question
	Type          string   `json:"type" binding:"required,oneof=multiple-choice long-answer"`
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Categories    []string `json:"categories"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=easy medium difficult"`
	Reference     string   `json:"reference"`
	ImageURL      string   `json:"imageUrl"`
	Code          string   `json:"code"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type StudentRequest struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password"`
}

// RenameStudentRequest changes a student's id and display name. The id
// change cascades through assignments and submissions.
type RenameStudentRequest struct {
	NewID   string `json:"newId" binding:"required"`
	NewName string `json:"newName" binding:"required"`
}

// CreateTestRequest assembles a test from selected catalog questions. The
// test freezes a copy of each question, so later catalog edits do not
// change tests already handed out.
type CreateTestRequest struct {
	Name        string   `json:"name" binding:"required"`
	Duration    int      `json:"duration" binding:"required,min=1"`
	QuestionIDs []string `json:"questionIds" binding:"required,min=1"`
}

type AssignRequest struct {
	StudentIDs []string `json:"studentIds" binding:"required"`
}

type AnswerRequest struct {
	QuestionIndex int    `json:"questionIndex" binding:"min=0"`
	Answer        string `json:"answer"`
}

// SubmitRequest finishes the active session. Every manual submit must set
// Confirmed; an unconfirmed request is refused and the session keeps running.
type SubmitRequest struct {
	Confirmed bool `json:"confirmed"`
}

type GradeRequest struct {
	QuestionIndex int    `json:"questionIndex" binding:"min=0"`
	IsCorrect     bool   `json:"isCorrect"`
	Comment       string `json:"comment"`
}
