package models

import "encoding/json"

// User is the identity payload returned by the login endpoint.
//
// The API does not fix its shape, so the raw document is kept verbatim and
// only the fields the client displays are decoded.
type User struct {
	Email string
	Name  string
	Raw   json.RawMessage
}

// UserFromJSON decodes the display fields and keeps the raw payload.
// A payload that is not a JSON object is kept as raw only.
func UserFromJSON(raw json.RawMessage) User {
	u := User{Raw: append(json.RawMessage(nil), raw...)}
	var fields struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &fields); err == nil {
		u.Email = fields.Email
		u.Name = fields.Name
		if u.Name == "" {
			u.Name = fields.Username
		}
	}
	return u
}

// DisplayName prefers the name, then the e-mail.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
