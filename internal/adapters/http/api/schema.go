package api

import (
	"net/http"

	"github.com/okian/benchscore/internal/adapters/report"
)

// HandleSchema handles GET /schema/submission.json and serves the JSON
// Schema every stored submission is validated against.
func HandleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(report.SubmissionSchema)
}
