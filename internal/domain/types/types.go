// Package types contains the externally visible shapes of a scoring run.
package types

// SubmissionRecord is the per-scenario entry of the submission payload.
type SubmissionRecord struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Success int    `json:"success"`
	Fail    int    `json:"fail"`
	Timeout int    `json:"timeout"`
}

// Submission is the payload written to the results directory.
// Commit is omitted when unknown.
type Submission struct {
	Commit       string             `json:"commit,omitempty"`
	Pass         bool               `json:"pass"`
	Score        int                `json:"score"`
	Success      int                `json:"success"`
	Fail         int                `json:"fail"`
	ResultPerAPI []SubmissionRecord `json:"resultPerApi"`
}
