package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	require.True(t, StatusPending.CanTransitionTo(StatusAccepted))
	require.True(t, Status("").CanTransitionTo(StatusAccepted))
	require.False(t, StatusAccepted.CanTransitionTo(StatusPending))
	require.False(t, StatusAccepted.CanTransitionTo(StatusAccepted))
	require.False(t, StatusPending.CanTransitionTo(StatusPending))
}

func TestApplication_UnmarshalMongoIDAndStringAge(t *testing.T) {
	raw := `{"_id":"abc","firstName":"Ada","lastName":"Lovelace","age":"36","email":"ada@example.com","status":"accepted","createdAt":"2025-01-02T03:04:05Z"}`

	var a Application
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	require.Equal(t, "abc", a.ID)
	require.Equal(t, 36, a.Age)
	require.True(t, a.IsAccepted())
	require.NotNil(t, a.CreatedAt)
	require.True(t, a.CreatedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
	require.Equal(t, "Ada Lovelace", a.FullName())
}

func TestApplication_UnmarshalPrefersID(t *testing.T) {
	var a Application
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","_id":"2","age":19}`), &a))
	require.Equal(t, "1", a.ID)
	require.Equal(t, 19, a.Age)
}

func TestApplication_UnmarshalEmptyAge(t *testing.T) {
	var a Application
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","age":""}`), &a))
	require.Equal(t, 0, a.Age)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","age":null}`), &a))
	require.Equal(t, 0, a.Age)
}

func TestApplication_UnmarshalBadAge(t *testing.T) {
	var a Application
	require.Error(t, json.Unmarshal([]byte(`{"age":"old"}`), &a))
}

func TestApplication_UnmarshalAgeOutOfRange(t *testing.T) {
	for _, raw := range []string{`{"age":1e20}`, `{"age":"99999999999999999999"}`, `{"age":-1e12}`} {
		var a Application
		require.Error(t, json.Unmarshal([]byte(raw), &a), raw)
	}

	var a Application
	require.NoError(t, json.Unmarshal([]byte(`{"age":"42.0"}`), &a))
	require.Equal(t, 42, a.Age)
}

func TestApplication_MarshalOmitsEmptyID(t *testing.T) {
	b, err := json.Marshal(Application{FirstName: "A"})
	require.NoError(t, err)
	require.NotContains(t, string(b), `"id"`)
	require.NotContains(t, string(b), `"createdAt"`)
	require.Contains(t, string(b), `"firstName":"A"`)
}

func TestUserFromJSON(t *testing.T) {
	u := UserFromJSON(json.RawMessage(`{"email":"ops@example.com","username":"ops","role":"admin"}`))
	require.Equal(t, "ops@example.com", u.Email)
	require.Equal(t, "ops", u.DisplayName())
	require.JSONEq(t, `{"email":"ops@example.com","username":"ops","role":"admin"}`, string(u.Raw))

	u = UserFromJSON(json.RawMessage(`"just-a-string"`))
	require.Empty(t, u.Email)
	require.Equal(t, `"just-a-string"`, string(u.Raw))
}

func TestApplication_UnmarshalBadCreatedAtIsDropped(t *testing.T) {
	var a Application
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","createdAt":"yesterday"}`), &a))
	require.Nil(t, a.CreatedAt)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","createdAt":"2025-03-04T05:06:07.123Z"}`), &a))
	require.NotNil(t, a.CreatedAt)
	require.Equal(t, 2025, a.CreatedAt.Year())
}
