// Package insights contains the HTTP handler for the performance
// prediction endpoint.
package insights

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-dbms/internal/ml"
	"github.com/aanand-mishra/student-dbms/internal/storage"
	"github.com/aanand-mishra/student-dbms/internal/utils/response"
)

// Performance handles GET /api/insights/performance.
//
// Fits a fresh decision tree on the current records and returns every
// student's predicted label plus model diagnostics:
//
//	{
//	  "predictions": { "1": "High Performer", "2": "Needs Improvement" },
//	  "feature_importances": { "age": 0.0, "gpa": 1.0 },
//	  "accuracy": 1.0,
//	  "sample_size": 2
//	}
//
// Error responses:
//
//	422 Unprocessable Entity — too few records, or every record falls on
//	    one side of the GPA threshold so only one class exists
//	500 Internal             — database error
func Performance(store storage.Storage, predictor *ml.Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("predicting student performance")

		students, err := store.GetStudents()
		if err != nil {
			slog.Error("error loading students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		report, err := predictor.Evaluate(students)
		if errors.Is(err, ml.ErrInsufficientData) {
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("error fitting model", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("model fitted",
			slog.Int("samples", report.SampleSize),
			slog.Float64("accuracy", report.Accuracy))
		response.WriteJSON(w, http.StatusOK, report)
	}
}
