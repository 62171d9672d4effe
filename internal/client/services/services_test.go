package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hiredesk/internal/client/client"
	"github.com/dmitrijs2005/hiredesk/internal/client/client/clienttest"
	"github.com/dmitrijs2005/hiredesk/internal/client/models"
	"github.com/dmitrijs2005/hiredesk/internal/client/session"
	"github.com/dmitrijs2005/hiredesk/internal/logging"
)

// ---- helpers ----

type navSpy struct {
	mu sync.Mutex
	n  int
}

func (n *navSpy) ToSignIn() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.n++
}

func (n *navSpy) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.n
}

type env struct {
	api    *clienttest.API
	store  *session.MemoryStore
	client *client.HTTPClient
	nav    *navSpy
}

func newEnv(t *testing.T, signedIn bool) *env {
	t.Helper()
	api := clienttest.NewAPI()
	t.Cleanup(api.Close)

	store := session.NewMemoryStore()
	if signedIn {
		require.NoError(t, store.SetSession(context.Background(), clienttest.Token, models.User{Email: clienttest.Email}))
	}
	return &env{
		api:    api,
		store:  store,
		client: client.NewHTTPClient(api.URL, store, api.Client(), logging.Discard(), nil, 5*time.Second),
		nav:    &navSpy{},
	}
}

func (e *env) dashboard() *Dashboard {
	return NewDashboard(e.client, e.store, e.nav, logging.Discard())
}

func (e *env) waitForCalls(t *testing.T, method, path string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.api.CallsTo(method, path) >= n
	}, 2*time.Second, 5*time.Millisecond)
}

func applicant(email string) models.Application {
	return models.Application{
		FirstName:          "Grace",
		LastName:           "Hopper",
		Age:                30,
		Degree:             "PhD",
		RelevantExperience: "Compilers",
		Email:              email,
		ProjectAppliedFor:  "Computer Vision",
	}
}
