// Package validation checks a candidate application before it is sent to the
// API. Every rule is evaluated so that all invalid fields are reported at once.
package validation

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrijs2005/hiredesk/internal/client/models"
)

// Field names match the JSON keys of models.Application.
const (
	FieldFirstName          = "firstName"
	FieldLastName           = "lastName"
	FieldAge                = "age"
	FieldDegree             = "degree"
	FieldRelevantExperience = "relevantExperience"
	FieldEmail              = "email"
	FieldProjectAppliedFor  = "projectAppliedFor"
)

// MinAge is the youngest age accepted.
const MinAge = 18

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldErrors maps a field name to its message. An empty map means valid.
type FieldErrors map[string]string

// Error renders the errors in field order so the text is stable.
func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the invalid field names, sorted.
func (e FieldErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Validate returns the field errors for a.
func Validate(a models.Application) FieldErrors {
	errs := FieldErrors{}

	required := []struct {
		field, value, msg string
	}{
		{FieldFirstName, a.FirstName, "First Name is required"},
		{FieldLastName, a.LastName, "Last Name is required"},
		{FieldDegree, a.Degree, "Degree is required"},
		{FieldRelevantExperience, a.RelevantExperience, "Relevant Experience is required"},
		{FieldProjectAppliedFor, a.ProjectAppliedFor, "Project Applied For is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.msg
		}
	}

	if a.Age < MinAge {
		errs[FieldAge] = "Age must be 18 or older"
	}

	email := strings.TrimSpace(a.Email)
	if email == "" || !emailPattern.MatchString(email) {
		errs[FieldEmail] = "Valid Email is required"
	}

	return errs
}
