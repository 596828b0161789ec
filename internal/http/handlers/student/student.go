// Package student contains all HTTP handlers for the Student resource.
//
// Handlers use the closure / factory pattern: each exported function
// accepts the dependencies it needs (the storage.Storage interface) and
// returns an http.HandlerFunc that closes over them. The factory runs
// once at route-registration time; the returned handler runs per request.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-dbms/internal/storage"
	"github.com/aanand-mishra/student-dbms/internal/types"
	"github.com/aanand-mishra/student-dbms/internal/utils/response"
)

// New handles POST /api/students.
//
// Request body (JSON):
//
//	{ "name": "Ann", "age": 20, "major": "CS", "gpa": 3.8, "email": "a@x.com" }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// Error responses:
//
//	400 Bad Request — empty body, malformed JSON, or failed validation
//	500 Internal    — database error
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		student, ok := decodeAndValidate(w, r)
		if !ok {
			return
		}

		lastID, err := storage.CreateStudent(
			student.Name, student.Age, student.Major, student.GPA, student.Email)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// GetByID handles GET /api/students/{id}.
//
// Error responses:
//
//	400 Bad Request — id is not a valid integer
//	404 Not Found   — no student with that id
//	500 Internal    — database error
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intID, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", intID))

		student, err := storage.GetStudentByID(intID)
		if err != nil {
			writeStorageError(w, intID, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/students.
//
// Without query parameters it returns every student, id ascending. With
// ?q=<query> it returns only students whose chosen field contains the
// query as a case-insensitive substring; ?field= selects the column
// (name, major, or any — the default, matching either).
//
// Returns an empty array [] (not null) when nothing matches.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		field, err := storage.ParseSearchField(r.URL.Query().Get("field"))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("listing students",
			slog.String("q", query), slog.String("field", string(field)))

		students, err := store.SearchStudents(query, field)
		if err != nil {
			slog.Error("error listing students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /api/students/{id}.
//
// Replaces ALL fields of an existing student; the body is validated with
// exactly the same rules as creation. Responds with the updated record.
//
// Error responses:
//
//	400 Bad Request — invalid id, empty body, or validation failure
//	404 Not Found   — no student with that id (table left unchanged)
//	500 Internal    — database error
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intID, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", intID))

		student, ok := decodeAndValidate(w, r)
		if !ok {
			return
		}

		updated, err := storage.UpdateStudentByID(intID, student)
		if err != nil {
			writeStorageError(w, intID, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", intID))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id}.
//
// Deletion is permanent. A second delete of the same id gets 404, never a
// crash.
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intID, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", intID))

		if err := storage.DeleteStudentByID(intID); err != nil {
			writeStorageError(w, intID, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", intID))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// pathID extracts and parses the {id} path segment. On failure it writes
// the 400 response itself and reports ok=false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	intID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return intID, true
}

// decodeAndValidate reads the request body into a Student and runs the
// validate:"..." rules. On failure it writes the 400 response itself and
// reports ok=false. Create and Update share this so the two paths can
// never drift apart in what they accept.
func decodeAndValidate(w http.ResponseWriter, r *http.Request) (types.Student, bool) {
	var student types.Student

	err := json.NewDecoder(r.Body).Decode(&student)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return types.Student{}, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return types.Student{}, false
	}

	if err := validator.New().Struct(student); err != nil {
		validateErrs := err.(validator.ValidationErrors)
		response.WriteJSON(w, http.StatusBadRequest,
			response.ValidationError(validateErrs))
		return types.Student{}, false
	}

	return student, true
}

// writeStorageError maps a storage failure to a response: the not-found
// sentinel becomes 404, anything else is a 500.
func writeStorageError(w http.ResponseWriter, id int64, err error) {
	if errors.Is(err, storage.ErrStudentNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	slog.Error("storage error",
		slog.Int64("id", id), slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
