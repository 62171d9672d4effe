package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hiredesk/internal/client/client/clienttest"
	"github.com/dmitrijs2005/hiredesk/internal/client/models"
	"github.com/dmitrijs2005/hiredesk/internal/client/session"
	"github.com/dmitrijs2005/hiredesk/internal/logging"
	"github.com/dmitrijs2005/hiredesk/internal/metrics"
)

func newTestClient(t *testing.T, signedIn bool) (*HTTPClient, *clienttest.API, *session.MemoryStore) {
	t.Helper()
	api := clienttest.NewAPI()
	t.Cleanup(api.Close)

	store := session.NewMemoryStore()
	if signedIn {
		require.NoError(t, store.SetSession(context.Background(), clienttest.Token, models.User{Email: clienttest.Email}))
	}
	c := NewHTTPClient(api.URL+"/", store, api.Client(), logging.Discard(), metrics.NewCollector(), 5*time.Second)
	return c, api, store
}

func candidate(email string) models.Application {
	return models.Application{
		FirstName:          "Ada",
		LastName:           "Lovelace",
		Age:                36,
		Degree:             "Mathematics",
		RelevantExperience: "Analytical engine",
		Email:              email,
		ProjectAppliedFor:  "Genealogy",
	}
}

func TestList_BareArraySortedNewestFirst(t *testing.T) {
	c, api, _ := newTestClient(t, true)
	api.SetListBody(`[
		{"id":"old","createdAt":"2025-01-01T00:00:00Z"},
		{"id":"none-1"},
		{"id":"new","createdAt":"2025-06-01T00:00:00Z"},
		{"id":"none-2"},
		{"id":"mid","createdAt":"2025-03-01T00:00:00Z"}
	]`)

	apps, err := c.List(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old", "none-1", "none-2"}, ids)
}

func TestList_WrappedShapes(t *testing.T) {
	for _, key := range []string{"applications", "data", "items", "results"} {
		t.Run(key, func(t *testing.T) {
			c, api, _ := newTestClient(t, true)
			api.SetListBody(`{"count":1,"` + key + `":[{"_id":"m1","firstName":"Ada","age":"21"}]}`)

			apps, err := c.List(context.Background())
			require.NoError(t, err)
			require.Len(t, apps, 1)
			assert.Equal(t, "m1", apps[0].ID)
			assert.Equal(t, 21, apps[0].Age)
		})
	}
}

func TestList_MalformedShapes(t *testing.T) {
	bodies := map[string]string{
		"html":            `<html>oops</html>`,
		"object w/o list": `{"total":3}`,
		"wrapped object":  `{"data":{"id":"1"}}`,
		"string":          `"hello"`,
		"number":          `42`,
		"array of ints":   `[1,2,3]`,
		"empty":           ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, api, _ := newTestClient(t, true)
			api.SetListBody(body)

			apps, err := c.List(context.Background())
			require.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, apps)
		})
	}
}

func TestList_SkipsNullElements(t *testing.T) {
	c, api, _ := newTestClient(t, true)
	api.SetListBody(`[null,{"id":"x"},null]`)

	apps, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "x", apps[0].ID)
}

func TestList_AgeOutOfRangeIsMalformed(t *testing.T) {
	for _, age := range []string{`1e20`, `"99999999999999999999"`} {
		t.Run(age, func(t *testing.T) {
			c, api, _ := newTestClient(t, true)
			api.SetListBody(`[{"id":"x","age":` + age + `}]`)

			apps, err := c.List(context.Background())
			require.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, apps)
		})
	}
}

func TestList_NoTokenSendsNothing(t *testing.T) {
	c, api, _ := newTestClient(t, false)

	_, err := c.List(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, api.Calls())
}

func TestList_ForbiddenClearsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			c, api, store := newTestClient(t, true)
			api.FailNext("list", clienttest.Failure{Status: status, Body: `{"message":"forbidden"}`})

			_, err := c.List(context.Background())
			require.ErrorIs(t, err, ErrUnauthorized)

			_, ok := store.GetToken(context.Background())
			assert.False(t, ok)
			_, ok = store.User(context.Background())
			assert.False(t, ok)
		})
	}
}

func TestSubmit_PublicForcesPendingWithoutAuth(t *testing.T) {
	c, api, _ := newTestClient(t, true)

	app := candidate("ada@example.com")
	app.Status = models.StatusAccepted
	app.ID = "client-made"

	got, err := c.Submit(context.Background(), app)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.NotEqual(t, "client-made", got.ID)
	assert.Equal(t, models.StatusPending, got.Status)

	calls := api.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Authorization)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	assert.Equal(t, "pending", sent["status"])
	assert.NotContains(t, sent, "id")
}

func TestSubmit_DuplicateEmail(t *testing.T) {
	c, api, _ := newTestClient(t, false)
	api.Seed(candidate("ada@example.com"))

	_, err := c.Submit(context.Background(), candidate("ADA@example.com"))
	require.ErrorIs(t, err, ErrServerRejected)
	assert.True(t, IsDuplicateEmail(err))

	var rejected *ServerRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusBadRequest, rejected.Status)
}

func TestCreate_AdminSendsBearerAndStatus(t *testing.T) {
	c, api, _ := newTestClient(t, true)

	app := candidate("grace@example.com")
	app.Status = models.StatusAccepted
	got, err := c.Create(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)

	app.Status = ""
	app.Email = "linus@example.com"
	got, err = c.Create(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	for _, call := range api.Calls() {
		assert.Equal(t, "Bearer "+clienttest.Token, call.Authorization)
	}
}

func TestUpdateThenList_RoundTrip(t *testing.T) {
	c, api, _ := newTestClient(t, true)
	seeded := api.Seed(candidate("ada@example.com"))

	edited := seeded
	edited.Degree = "PhD"
	edited.Age = 40
	edited.ProjectAppliedFor = "Computer Vision"
	_, err := c.Update(context.Background(), seeded.ID, edited)
	require.NoError(t, err)

	apps, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	if diff := cmp.Diff(edited, apps[0], cmpopts.IgnoreFields(models.Application{}, "CreatedAt", "Status")); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete_Nonexistent(t *testing.T) {
	c, _, _ := newTestClient(t, true)

	err := c.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, ErrServerRejected)
	assert.Equal(t, "Application not found", Message(err))
}

func TestMissingID(t *testing.T) {
	c, api, _ := newTestClient(t, true)
	ctx := context.Background()

	require.ErrorIs(t, c.Delete(ctx, ""), ErrMissingID)
	require.ErrorIs(t, c.Accept(ctx, "", AcceptRequest{}), ErrMissingID)
	_, err := c.Update(ctx, "", candidate("a@b.co"))
	require.ErrorIs(t, err, ErrMissingID)
	assert.Empty(t, api.Calls())
}

func TestAccept_SendsNotificationFields(t *testing.T) {
	c, api, _ := newTestClient(t, true)
	seeded := api.Seed(candidate("ada@example.com"))

	err := c.Accept(context.Background(), seeded.ID, AcceptRequest{
		ApplicantName: "Ada Lovelace",
		ProjectName:   "Genealogy",
		Email:         "ada@example.com",
	})
	require.NoError(t, err)

	got, _ := api.Get(seeded.ID)
	assert.Equal(t, models.StatusAccepted, got.Status)

	calls := api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/applications/"+seeded.ID+"/accept", calls[0].Path)
	assert.JSONEq(t, `{"applicantName":"Ada Lovelace","projectName":"Genealogy","email":"ada@example.com"}`, string(calls[0].Body))
}

func TestRejectionMessages(t *testing.T) {
	tests := []struct {
		name    string
		failure clienttest.Failure
		want    string
	}{
		{"json message", clienttest.Failure{Status: 500, Body: `{"message":"Mailer is down"}`}, "Mailer is down"},
		{"json error", clienttest.Failure{Status: 502, Body: `{"error":"bad gateway"}`}, "bad gateway"},
		{"plain text", clienttest.Failure{Status: 500, ContentType: "text/plain", Body: "  SMTP timeout \n"}, "SMTP timeout"},
		{"empty body", clienttest.Failure{Status: 503}, "server error (503)"},
		{"json without message", clienttest.Failure{Status: 500, Body: `{"ok":false}`}, "server error (500)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, api, _ := newTestClient(t, true)
			seeded := api.Seed(candidate("ada@example.com"))
			api.FailNext("accept", tt.failure)

			err := c.Accept(context.Background(), seeded.ID, AcceptRequest{})
			require.ErrorIs(t, err, ErrServerRejected)
			assert.Equal(t, tt.want, err.Error())

			got, _ := api.Get(seeded.ID)
			assert.Equal(t, models.StatusPending, got.Status)
		})
	}
}

func TestLogin(t *testing.T) {
	c, api, store := newTestClient(t, false)

	res, err := c.Login(context.Background(), " "+clienttest.Email+" ", clienttest.Password)
	require.NoError(t, err)
	assert.Equal(t, clienttest.Token, res.Token)
	assert.Equal(t, clienttest.Email, res.User.Email)
	assert.Equal(t, "Operations", res.User.DisplayName())

	// the client does not persist sessions itself
	_, ok := store.GetToken(context.Background())
	assert.False(t, ok)

	_, err = c.Login(context.Background(), clienttest.Email, "wrong")
	require.ErrorIs(t, err, ErrServerRejected)
	assert.Equal(t, "Invalid email or password", err.Error())

	api.FailNext("login", clienttest.Failure{Status: 200, Body: `{"user":{}}`})
	_, err = c.Login(context.Background(), clienttest.Email, clienttest.Password)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetSession(context.Background(), "tok", models.User{}))
	m := metrics.NewCollector()
	c := NewHTTPClient(url, store, nil, nil, m, time.Second)

	_, err := c.List(context.Background())
	require.ErrorIs(t, err, ErrNetworkFailure)

	_, ok := store.GetToken(context.Background())
	assert.True(t, ok, "network errors must not clear the session")
	n, err := testutil.GatherAndCount(m.Registry(), "hiredesk_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTimeout(t *testing.T) {
	c, api, _ := newTestClient(t, true)
	c.timeout = 50 * time.Millisecond
	release := api.Hold("list")
	defer release()

	_, err := c.List(context.Background())
	require.ErrorIs(t, err, ErrNetworkFailure)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestIDAndMetrics(t *testing.T) {
	c, api, _ := newTestClient(t, true)

	_, err := c.List(context.Background())
	require.NoError(t, err)
	_, err = c.List(context.Background())
	require.NoError(t, err)

	calls := api.Calls()
	require.Len(t, calls, 2)
	for _, call := range calls {
		_, perr := uuid.Parse(call.RequestID)
		require.NoError(t, perr)
	}
	assert.NotEqual(t, calls[0].RequestID, calls[1].RequestID)

	n, err := testutil.GatherAndCount(c.metrics.Registry(), "hiredesk_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIsDuplicateEmail(t *testing.T) {
	assert.True(t, IsDuplicateEmail(&ServerRejectedError{Status: 400, Message: "Email already exists"}))
	assert.True(t, IsDuplicateEmail(fmtWrap(&ServerRejectedError{Status: 409, Message: "An application with this EMAIL ALREADY EXISTS."})))
	assert.False(t, IsDuplicateEmail(&ServerRejectedError{Status: 400, Message: "Invalid email"}))
	assert.False(t, IsDuplicateEmail(errors.New("email already exists")))
	assert.False(t, IsDuplicateEmail(nil))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "nope", Message(&ServerRejectedError{Status: 400, Message: "nope"}))
	assert.Contains(t, Message(ErrUnauthorized), "sign in")
	assert.Contains(t, Message(fmtWrap(ErrNetworkFailure)), "reach the server")
	assert.Contains(t, Message(ErrMalformedResponse), "unexpected response")
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("context"), err)
}
