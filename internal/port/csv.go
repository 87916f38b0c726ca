package port

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ldtran/examdesk/internal/grading"
	"github.com/ldtran/examdesk/internal/model"
)

var questionsHeader = []string{
	"id", "type", "text", "options_json", "correctAnswer",
	"difficulty", "reference", "categories", "imageUrl", "code",
}

// ExportQuestionsCSV writes the documented question column set; categories
// pipe-delimited, options as a JSON array.
func ExportQuestionsCSV(questions []model.Question) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(questionsHeader); err != nil {
		return nil, err
	}
	for _, q := range questions {
		optionsJSON := ""
		if q.Options != nil {
			raw, err := json.Marshal(q.Options)
			if err != nil {
				return nil, err
			}
			optionsJSON = string(raw)
		}
		rec := []string{
			q.ID, string(q.Type), q.Text, optionsJSON, q.CorrectAnswer,
			string(q.Difficulty), q.Reference, strings.Join(q.Categories, "|"),
			q.ImageURL, q.Code,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// QuestionImport is the outcome of a questions CSV import: the merged
// catalog, any newly seen categories, and the per-row tallies.
type QuestionImport struct {
	Questions     []model.Question
	NewCategories []string
	Added         int
	Updated       int
	Skipped       int
}

// ImportQuestions upserts catalog questions from CSV by id. Malformed rows
// (missing type/text, or multiple-choice rows lacking four options or a
// correct answer) are skipped and counted; the rest of the file still
// imports.
func ImportQuestions(data []byte, existing []model.Question) (QuestionImport, error) {
	rows, header, err := readCSV(data)
	if err != nil {
		return QuestionImport{}, err
	}
	res := QuestionImport{Questions: make([]model.Question, len(existing))}
	copy(res.Questions, existing)
	known := make(map[string]bool)
	for _, q := range existing {
		for _, c := range q.Categories {
			known[c] = true
		}
	}
	for _, row := range rows {
		get := func(keys ...string) string {
			for _, k := range keys {
				if i, ok := header[k]; ok && i < len(row) {
					return strings.TrimSpace(row[i])
				}
			}
			return ""
		}
		typ := strings.ToLower(get("type"))
		text := get("text")
		if typ == "" || text == "" {
			res.Skipped++
			continue
		}
		difficulty := get("difficulty")
		if difficulty == "" {
			difficulty = string(model.DifficultyMedium)
		}
		var categories []string
		if raw := get("categories"); raw != "" {
			for _, c := range strings.Split(raw, "|") {
				if c = strings.TrimSpace(c); c != "" {
					categories = append(categories, c)
				}
			}
		}
		var options []string
		if raw := get("options_json"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &options); err != nil {
				options = nil
			}
		}
		correct := get("correctanswer", "correct_answer")
		q := model.Question{
			ID:         get("id"),
			Type:       model.QuestionType(typ),
			Text:       text,
			Categories: categories,
			Difficulty: model.Difficulty(difficulty),
			Reference:  get("reference"),
			ImageURL:   get("imageurl", "image_url"),
			Code:       get("code"),
		}
		idx := -1
		if q.ID != "" {
			for i := range res.Questions {
				if res.Questions[i].ID == q.ID {
					idx = i
					break
				}
			}
		}
		if q.Type == model.QuestionMultipleChoice {
			if len(options) < 4 {
				// Fall back to the per-letter columns.
				a, b, c, d := get("a", "optiona"), get("b", "optionb"), get("c", "optionc"), get("d", "optiond")
				if a != "" && b != "" && c != "" && d != "" {
					options = []string{a, b, c, d}
				}
			}
			if idx < 0 {
				if len(options) < 4 || correct == "" {
					res.Skipped++
					continue
				}
				q.Options = options
				q.CorrectAnswer = correct
			} else {
				// Update keeps the old options/answer when the row omits them.
				q.Options = res.Questions[idx].Options
				q.CorrectAnswer = res.Questions[idx].CorrectAnswer
				if len(options) >= 4 {
					q.Options = options
				}
				if correct != "" {
					q.CorrectAnswer = correct
				}
			}
		}
		if idx >= 0 {
			res.Questions[idx] = q
			res.Updated++
		} else {
			if q.ID == "" {
				q.ID = uuid.NewString()
			}
			res.Questions = append(res.Questions, q)
			res.Added++
		}
		for _, c := range categories {
			if !known[c] {
				known[c] = true
				res.NewCategories = append(res.NewCategories, c)
			}
		}
	}
	return res, nil
}

var studentsHeader = []string{"id", "name", "password"}

// DefaultStudentPassword is applied when an imported row has no password.
const DefaultStudentPassword = "pass123"

func ExportStudentsCSV(students []model.Student) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(studentsHeader); err != nil {
		return nil, err
	}
	for _, s := range students {
		if err := w.Write([]string{s.ID, s.Name, s.Password}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// StudentImport is the outcome of a students CSV import.
type StudentImport struct {
	Students []model.Student
	Added    int
	Updated  int
	Skipped  int
}

// ImportStudents upserts students by id. The header must carry id and name
// columns; rows missing either value are skipped and counted.
func ImportStudents(data []byte, existing []model.Student) (StudentImport, error) {
	rows, header, err := readCSV(data)
	if err != nil {
		return StudentImport{}, err
	}
	if _, ok := header["id"]; !ok {
		return StudentImport{}, fmt.Errorf("%w: missing id column", model.ErrMalformedImport)
	}
	if _, ok := header["name"]; !ok {
		return StudentImport{}, fmt.Errorf("%w: missing name column", model.ErrMalformedImport)
	}
	res := StudentImport{Students: make([]model.Student, len(existing))}
	copy(res.Students, existing)
	for _, row := range rows {
		cell := func(key string) string {
			if i, ok := header[key]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		id, name, password := cell("id"), cell("name"), cell("password")
		if id == "" || name == "" {
			res.Skipped++
			continue
		}
		if password == "" {
			password = DefaultStudentPassword
		}
		updated := false
		for i := range res.Students {
			if res.Students[i].ID == id {
				res.Students[i].Name = name
				res.Students[i].Password = password
				res.Updated++
				updated = true
				break
			}
		}
		if !updated {
			res.Students = append(res.Students, model.Student{ID: id, Name: name, Password: password})
			res.Added++
		}
	}
	return res, nil
}

// ExportResultsCSV writes one line per assigned student of a test.
func ExportResultsCSV(rows []grading.ResultRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"studentId", "name", "status", "mcCorrect", "mcTotal", "longCorrect", "longTotal", "longPending"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			r.StudentID, r.StudentName, string(r.Status),
			strconv.Itoa(r.MCCorrect), strconv.Itoa(r.MCTotal),
			strconv.Itoa(r.LongCorrect), strconv.Itoa(r.LongTotal),
			strconv.Itoa(r.LongPending),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// readCSV parses the payload and returns the data rows plus a lowercased
// header index. Ragged rows are tolerated.
func readCSV(data []byte) ([][]string, map[string]int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", model.ErrMalformedImport, err)
	}
	if len(all) < 1 {
		return nil, nil, fmt.Errorf("%w: empty csv", model.ErrMalformedImport)
	}
	header := make(map[string]int, len(all[0]))
	for i, h := range all[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return all[1:], header, nil
}
