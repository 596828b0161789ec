// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, analytics, and ml can all import types without
// depending on each other.
package types

// Student represents one student record.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON
//     (lowercase names match REST API conventions).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package before any write reaches storage:
//     name  — required, at least 2 characters
//     age   — required, between 18 and 100
//     gpa   — between 0.0 and 4.0
//     email — required, valid email shape
//
// Major carries no rule: the schema leaves it free-form and it may be
// empty.
type Student struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"  validate:"required,min=2"`
	Age   int     `json:"age"   validate:"required,gte=18,lte=100"`
	Major string  `json:"major"`
	GPA   float64 `json:"gpa"   validate:"gte=0,lte=4"`
	Email string  `json:"email" validate:"required,email"`
}
