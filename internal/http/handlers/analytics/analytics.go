// Package analytics contains the HTTP handlers for the reporting
// endpoints. Both are read-only: they load the full record set once and
// hand it to the internal/analytics package, holding no state of their
// own between requests.
package analytics

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-dbms/internal/analytics"
	"github.com/aanand-mishra/student-dbms/internal/storage"
	"github.com/aanand-mishra/student-dbms/internal/utils/response"
)

// exportFilename is the attachment name offered for CSV downloads.
const exportFilename = "students_report.csv"

// Summary handles GET /api/analytics/summary.
//
// Success response (200 OK):
//
//	{
//	  "total": 2,
//	  "mean_gpa": 2.95,
//	  "top_major": "Art",
//	  "count_by_major": { "CS": 1, "Art": 1 },
//	  "gpa_histogram": [ { "low": 0, "high": 0.4, "count": 0 }, ... ]
//	}
//
// An empty table yields total 0 with empty aggregates — never an error.
func Summary(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("computing analytics summary")

		students, err := store.GetStudents()
		if err != nil {
			slog.Error("error loading students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, analytics.Summarize(students))
	}
}

// ExportCSV handles GET /api/analytics/export.
//
// Streams all records as a CSV attachment with the fixed header row
// id,name,age,major,gpa,email. An empty table downloads as the header
// row alone.
func ExportCSV(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("exporting students as csv")

		students, err := store.GetStudents()
		if err != nil {
			slog.Error("error loading students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		data, err := analytics.ExportCSV(students)
		if err != nil {
			slog.Error("error building csv", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
