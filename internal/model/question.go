package model

// QuestionType discriminates the two kinds of questions the catalog holds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionLongAnswer     QuestionType = "long-answer"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	return t == QuestionMultipleChoice || t == QuestionLongAnswer
}

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// OptionLetters are the labels for the four multiple-choice options, in order.
const OptionLetters = "ABCD"

// Question is an authored catalog question. Once a question is embedded in a
// Test it is deep-copied there; later edits to the catalog entry never reach
// existing tests.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Categories    []string     `json:"categories"`
	Difficulty    Difficulty   `json:"difficulty"`
	Reference     string       `json:"reference"`
	ImageURL      string       `json:"imageUrl"`
	Code          string       `json:"code"`
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = append([]string(nil), q.Options...)
	}
	if q.Categories != nil {
		c.Categories = append([]string(nil), q.Categories...)
	}
	return c
}
