package model

// Backup is the wholesale snapshot of all collections. It is both the backup
// file format and the local cache file format; timestamps serialize as
// ISO-8601 via encoding/json.
type Backup struct {
	Tests       []Test       `json:"tests"`
	Students    []Student    `json:"students"`
	Questions   []Question   `json:"questions"`
	Submissions []Submission `json:"submissions"`
	Categories  []string     `json:"categories"`
}
