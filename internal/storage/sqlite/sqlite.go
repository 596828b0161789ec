// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process, nothing to install beyond the driver.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this when the package loads — we never
// call anything from it directly.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-dbms/internal/config"
	"github.com/aanand-mishra/student-dbms/internal/storage"
	"github.com/aanand-mishra/student-dbms/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB, which is a connection pool managed by database/sql
// and safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	return Open(cfg.StoragePath)
}

// Open is like New but takes the path directly. Tests use it with
// ":memory:" to get a throwaway database per test.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every startup.
	//
	// Schema:
	//   id    — integer primary key, auto-incremented by SQLite
	//   name  — student's full name
	//   age   — age in years
	//   major — declared major, free-form (may be empty)
	//   gpa   — grade point average on a 0.0–4.0 scale
	//   email — contact email address
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT    NOT NULL,
			age   INTEGER NOT NULL,
			major TEXT    NOT NULL DEFAULT '',
			gpa   REAL    NOT NULL,
			email TEXT    NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateStudent inserts a new row and returns its generated id.
//
// Prepared statements with ? placeholders keep user input out of the SQL
// text, so a name like "'; DROP TABLE students; --" is stored as data.
func (s *SQLite) CreateStudent(name string, age int, major string, gpa float64, email string) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO students (name, age, major, gpa, email) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(name, age, major, gpa, email)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return lastID, nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLite) GetStudentByID(id int64) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, age, major, gpa, email FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	var student types.Student
	err = stmt.QueryRow(id).Scan(
		&student.ID,
		&student.Name,
		&student.Age,
		&student.Major,
		&student.GPA,
		&student.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all student rows, id ascending (insertion order).
func (s *SQLite) GetStudents() ([]types.Student, error) {
	return s.queryStudents(
		"SELECT id, name, age, major, gpa, email FROM students ORDER BY id",
	)
}

// SearchStudents returns rows whose chosen field contains query as a
// case-insensitive substring. SQLite's LIKE is case-insensitive for ASCII
// by default, matching the behaviour of the original LIKE '%q%' queries.
// An empty query degrades to listing everything.
func (s *SQLite) SearchStudents(query string, field storage.SearchField) ([]types.Student, error) {
	if query == "" {
		return s.GetStudents()
	}

	pattern := "%" + query + "%"
	const cols = "SELECT id, name, age, major, gpa, email FROM students"

	switch field {
	case storage.SearchName:
		return s.queryStudents(cols+" WHERE name LIKE ? ORDER BY id", pattern)
	case storage.SearchMajor:
		return s.queryStudents(cols+" WHERE major LIKE ? ORDER BY id", pattern)
	case storage.SearchAny:
		return s.queryStudents(cols+" WHERE name LIKE ? OR major LIKE ? ORDER BY id", pattern, pattern)
	default:
		return nil, fmt.Errorf("SearchStudents: unknown field %q", field)
	}
}

// queryStudents runs a multi-row SELECT and scans the cursor into a slice.
// The slice starts non-nil so an empty table encodes to [] rather than
// null in JSON.
func (s *SQLite) queryStudents(query string, args ...any) ([]types.Student, error) {
	stmt, err := s.Db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("queryStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, fmt.Errorf("queryStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Age,
			&student.Major,
			&student.GPA,
			&student.Email,
		); err != nil {
			return nil, fmt.Errorf("queryStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queryStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces a student's data with the provided values and
// returns the stored record. RowsAffected distinguishes "no such id" from
// a successful overwrite — an UPDATE that matches nothing is not an error
// at the SQL level.
func (s *SQLite) UpdateStudentByID(id int64, student types.Student) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"UPDATE students SET name = ?, age = ?, major = ?, gpa = ?, email = ? WHERE id = ?",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(student.Name, student.Age, student.Major, student.GPA, student.Email, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Student{}, storage.ErrStudentNotFound
	}

	// Re-fetch so the caller echoes back exactly what is stored.
	return s.GetStudentByID(id)
}

// DeleteStudentByID removes a student row by primary key. Deleting an id
// that is already gone returns ErrStudentNotFound, which makes a repeated
// delete safe to surface to the client as a 404.
func (s *SQLite) DeleteStudentByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrStudentNotFound
	}

	return nil
}
