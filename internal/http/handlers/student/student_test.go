package student_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-dbms/internal/http/handlers/student"
	"github.com/aanand-mishra/student-dbms/internal/storage/sqlite"
	"github.com/aanand-mishra/student-dbms/internal/types"
	"github.com/aanand-mishra/student-dbms/internal/utils/response"
)

// newTestRouter wires the student routes against an in-memory database,
// the same way main registers them.
func newTestRouter(t *testing.T) (*http.ServeMux, *sqlite.SQLite) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Db.Close() })

	router := http.NewServeMux()
	router.HandleFunc("POST /api/students", student.New(db))
	router.HandleFunc("GET /api/students", student.GetList(db))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(db))
	router.HandleFunc("PUT /api/students/{id}", student.Update(db))
	router.HandleFunc("DELETE /api/students/{id}", student.Delete(db))

	return router, db
}

func doJSON(t *testing.T, router *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateStudent(t *testing.T) {
	router, db := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/students",
		`{"name":"Ann","age":20,"major":"CS","gpa":3.8,"email":"a@x.com"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created["id"])

	students, err := db.GetStudents()
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ann", students[0].Name)
	assert.Equal(t, 3.8, students[0].GPA)
}

func TestCreateStudentValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name      string
		body      string
		wantInErr string
	}{
		{
			"empty body",
			"",
			"request body is empty",
		},
		{
			"missing name",
			`{"age":20,"gpa":3.0,"email":"a@x.com"}`,
			"field Name is required",
		},
		{
			"single-character name",
			`{"name":"A","age":20,"gpa":3.0,"email":"a@x.com"}`,
			"field Name must be at least 2 characters",
		},
		{
			"age below range",
			`{"name":"Ann","age":12,"gpa":3.0,"email":"a@x.com"}`,
			"field Age must be at least 18",
		},
		{
			"age above range",
			`{"name":"Ann","age":120,"gpa":3.0,"email":"a@x.com"}`,
			"field Age must be at most 100",
		},
		{
			"gpa above range",
			`{"name":"Ann","age":20,"gpa":4.5,"email":"a@x.com"}`,
			"field GPA must be at most 4",
		},
		{
			"bad email",
			`{"name":"Ann","age":20,"gpa":3.0,"email":"not-an-email"}`,
			"field Email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/students", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, response.StatusError, resp.Status)
			assert.Contains(t, resp.Error, tt.wantInErr)
		})
	}
}

func TestGetStudentByID(t *testing.T) {
	router, db := newTestRouter(t)
	id, err := db.CreateStudent("Ann", 20, "CS", 3.8, "a@x.com")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/students/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Ann", got.Name)

	rec = doJSON(t, router, http.MethodGet, "/api/students/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/students/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndSearchStudents(t *testing.T) {
	router, db := newTestRouter(t)
	_, err := db.CreateStudent("Ann", 20, "Computer Science", 3.8, "a@x.com")
	require.NoError(t, err)
	_, err = db.CreateStudent("Bo", 22, "Engineering", 2.1, "b@x.com")
	require.NoError(t, err)

	listNames := func(target string) []string {
		rec := doJSON(t, router, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var students []types.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
		names := make([]string, 0, len(students))
		for _, s := range students {
			names = append(names, s.Name)
		}
		return names
	}

	assert.Equal(t, []string{"Ann", "Bo"}, listNames("/api/students"))
	assert.Equal(t, []string{"Ann", "Bo"}, listNames("/api/students?q="))
	assert.Equal(t, []string{"Bo"}, listNames("/api/students?q=eng&field=major"))
	assert.Equal(t, []string{"Ann"}, listNames("/api/students?q=ann&field=name"))
	assert.Equal(t, []string{}, listNames("/api/students?q=eng&field=name"))

	rec := doJSON(t, router, http.MethodGet, "/api/students?q=x&field=email", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStudent(t *testing.T) {
	router, db := newTestRouter(t)
	_, err := db.CreateStudent("Ann", 20, "CS", 3.8, "a@x.com")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPut, "/api/students/1",
		`{"name":"Ann Lee","age":21,"major":"Math","gpa":3.9,"email":"ann@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Ann Lee", updated.Name)
	assert.Equal(t, "Math", updated.Major)

	// Updates re-validate exactly like creation.
	rec = doJSON(t, router, http.MethodPut, "/api/students/1",
		`{"name":"Ann Lee","age":21,"major":"Math","gpa":9.9,"email":"ann@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/students/99",
		`{"name":"Ghost","age":30,"major":"None","gpa":1.0,"email":"g@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStudent(t *testing.T) {
	router, db := newTestRouter(t)
	_, err := db.CreateStudent("Ann", 20, "CS", 3.8, "a@x.com")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodDelete, "/api/students/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Second delete of the same id is a clean 404.
	rec = doJSON(t, router, http.MethodDelete, "/api/students/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
