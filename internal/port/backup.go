// Package port handles the interchange formats: the JSON backup file and the
// CSV imports/exports for questions, students and per-test results.
package port

import (
	"encoding/json"
	"fmt"

	"github.com/ldtran/examdesk/internal/model"
)

// ExportBackup serializes the full snapshot, pretty-printed, timestamps as
// ISO-8601.
func ExportBackup(b model.Backup) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// ParseBackup validates that the payload is a JSON object and decodes the
// five collections. A field that is missing or not an array defaults to an
// empty collection; anything short of a top-level object aborts the whole
// import.
func ParseBackup(raw []byte) (model.Backup, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return model.Backup{}, fmt.Errorf("%w: backup is not a JSON object", model.ErrMalformedImport)
	}
	b := model.Backup{
		Tests:       []model.Test{},
		Students:    []model.Student{},
		Questions:   []model.Question{},
		Submissions: []model.Submission{},
		Categories:  []string{},
	}
	decode := func(key string, dst interface{}) {
		raw, ok := top[key]
		if !ok {
			return
		}
		// Best effort: a malformed or non-array field stays empty.
		_ = json.Unmarshal(raw, dst)
	}
	decode("tests", &b.Tests)
	decode("students", &b.Students)
	decode("questions", &b.Questions)
	decode("submissions", &b.Submissions)
	decode("categories", &b.Categories)
	if b.Tests == nil {
		b.Tests = []model.Test{}
	}
	if b.Students == nil {
		b.Students = []model.Student{}
	}
	if b.Questions == nil {
		b.Questions = []model.Question{}
	}
	if b.Submissions == nil {
		b.Submissions = []model.Submission{}
	}
	if b.Categories == nil {
		b.Categories = []string{}
	}
	return b, nil
}
