// Package models defines the job application record and the signed-in
// operator profile exchanged with the recruitment API.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Status is the review state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// Normalize maps an empty status to pending.
func (s Status) Normalize() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// CanTransitionTo reports whether next is reachable from s.
// Only pending -> accepted is exposed.
func (s Status) CanTransitionTo(next Status) bool {
	return s.Normalize() == StatusPending && next == StatusAccepted
}

// Application is a candidate's submission plus its server-assigned identity.
type Application struct {
	ID                 string     `json:"id,omitempty"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	Age                int        `json:"age"`
	Degree             string     `json:"degree"`
	RelevantExperience string     `json:"relevantExperience"`
	Email              string     `json:"email"`
	ProjectAppliedFor  string     `json:"projectAppliedFor"`
	Status             Status     `json:"status,omitempty"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts "_id" when "id" is absent and tolerates age sent as
// a numeric string. An unparsable createdAt is dropped rather than failing
// the whole record.
func (a *Application) UnmarshalJSON(data []byte) error {
	type plain Application
	var aux struct {
		plain
		MongoID   string          `json:"_id"`
		Age       json.RawMessage `json:"age"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Application(aux.plain)
	if a.ID == "" {
		a.ID = aux.MongoID
	}
	a.CreatedAt = parseTime(aux.CreatedAt)
	age, err := parseAge(aux.Age)
	if err != nil {
		return err
	}
	a.Age = age
	return nil
}

// maxAge bounds a decoded age so it fits an int on every platform.
const maxAge = math.MaxInt32

func parseAge(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n json.Number
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		if strings.TrimSpace(s) == "" {
			return 0, nil
		}
		n = json.Number(strings.TrimSpace(s))
	} else {
		n = json.Number(raw)
	}
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || math.IsNaN(f) || f < -maxAge || f > maxAge {
			return 0, fmt.Errorf("invalid age %s", raw)
		}
		v = int64(f)
	}
	if v < -maxAge || v > maxAge {
		return 0, fmt.Errorf("invalid age %s", raw)
	}
	return int(v), nil
}

func parseTime(raw json.RawMessage) *time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

// FullName joins first and last name for display.
func (a Application) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// IsAccepted reports whether the application reached its final state.
func (a Application) IsAccepted() bool {
	return a.Status == StatusAccepted
}

func (a Application) String() string {
	return fmt.Sprintf("%s | %s | %s | %s | %s", a.ID, a.FullName(), a.Email, a.ProjectAppliedFor, a.Status.Normalize())
}
