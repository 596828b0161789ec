// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers and the analytics/ml layers depend only on this interface,
// never on the concrete SQLite type. Swapping the database or passing a
// fake in tests touches no caller.
package storage

import (
	"errors"

	"github.com/aanand-mishra/student-dbms/internal/types"
)

// ErrStudentNotFound is the sentinel returned by any operation addressed
// at an id that is not in the table. Handlers translate it to 404.
var ErrStudentNotFound = errors.New("student not found")

// SearchField selects which column a search query matches against.
type SearchField string

const (
	// SearchName matches the name column only.
	SearchName SearchField = "name"
	// SearchMajor matches the major column only.
	SearchMajor SearchField = "major"
	// SearchAny matches name or major, whichever contains the query.
	SearchAny SearchField = "any"
)

// ParseSearchField maps the raw query-string value to a SearchField.
// An empty value defaults to SearchAny; anything else is rejected.
func ParseSearchField(s string) (SearchField, error) {
	switch s {
	case "":
		return SearchAny, nil
	case string(SearchName):
		return SearchName, nil
	case string(SearchMajor):
		return SearchMajor, nil
	default:
		return "", errors.New("field must be one of: name, major, any")
	}
}

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student record and returns the auto-
	// generated primary-key ID.
	CreateStudent(name string, age int, major string, gpa float64, email string) (int64, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrStudentNotFound if the id does not exist.
	GetStudentByID(id int64) (types.Student, error)

	// GetStudents returns every student, ordered by id ascending.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() ([]types.Student, error)

	// SearchStudents returns every student whose chosen field contains
	// query as a case-insensitive substring. An empty query matches all
	// records. Result order is id ascending.
	SearchStudents(query string, field SearchField) ([]types.Student, error)

	// UpdateStudentByID replaces all fields (except id) of an existing
	// student and returns the updated record. Returns ErrStudentNotFound
	// if the id does not exist; the table is left unchanged in that case.
	UpdateStudentByID(id int64, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	// Returns ErrStudentNotFound if the id does not exist, so a repeated
	// delete of the same id fails cleanly instead of silently succeeding.
	DeleteStudentByID(id int64) error
}
