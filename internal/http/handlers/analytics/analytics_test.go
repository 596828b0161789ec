package analytics_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-dbms/internal/analytics"
	handler "github.com/aanand-mishra/student-dbms/internal/http/handlers/analytics"
	"github.com/aanand-mishra/student-dbms/internal/storage/sqlite"
)

func newTestDB(t *testing.T) *sqlite.SQLite {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Db.Close() })
	return db
}

func TestSummaryHandler(t *testing.T) {
	db := newTestDB(t)
	_, err := db.CreateStudent("Ann", 20, "CS", 3.8, "a@x.com")
	require.NoError(t, err)
	_, err = db.CreateStudent("Bo", 22, "Art", 2.1, "b@x.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.Summary(db)(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.InDelta(t, 2.95, summary.MeanGPA, 1e-9)
	assert.Equal(t, map[string]int{"CS": 1, "Art": 1}, summary.CountByMajor)
}

func TestSummaryHandlerEmptyTable(t *testing.T) {
	db := newTestDB(t)

	rec := httptest.NewRecorder()
	handler.Summary(db)(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil))

	// An empty table is a valid report, not an error.
	require.Equal(t, http.StatusOK, rec.Code)

	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.MeanGPA)
}

func TestExportCSVHandler(t *testing.T) {
	db := newTestDB(t)
	_, err := db.CreateStudent("Ann", 20, "CS", 3.8, "a@x.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ExportCSV(db)(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "students_report.csv")
	assert.Equal(t,
		"id,name,age,major,gpa,email\n1,Ann,20,CS,3.8,a@x.com\n",
		rec.Body.String())
}
