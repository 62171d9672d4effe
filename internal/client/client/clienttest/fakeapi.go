// Package clienttest provides an in-process fake of the recruitment API for
// tests of the client and the controllers built on it.
package clienttest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/hiredesk/internal/client/models"
)

const (
	Token    = "test-token"
	Email    = "ops@example.com"
	Password = "s3cret"
)

// Call is one request seen by the fake.
type Call struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// Failure is a canned response served instead of the normal handler.
type Failure struct {
	Status      int
	ContentType string
	Body        string
}

// API keeps applications in memory and serves the same routes as the real
// service. Operations are named list, create, update, delete, accept, login.
type API struct {
	*httptest.Server

	mu       sync.Mutex
	apps     map[string]models.Application
	order    []string
	seq      int
	epoch    time.Time
	calls    []Call
	failures map[string][]Failure
	listBody []byte
	gates    map[string]chan struct{}
}

func NewAPI() *API {
	a := &API{
		apps:     map[string]models.Application{},
		epoch:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		failures: map[string][]Failure{},
		gates:    map[string]chan struct{}{},
	}
	a.Server = httptest.NewServer(a.Router())
	return a
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(a.record)

	r.Post("/api/auth/login", a.handleLogin)
	r.Route("/api/applications", func(r chi.Router) {
		r.With(a.requireAuth).Get("/", a.handleList)
		r.Post("/", a.handleCreate)
		r.With(a.requireAuth).Put("/{id}", a.handleUpdate)
		r.With(a.requireAuth).Delete("/{id}", a.handleDelete)
		r.With(a.requireAuth).Post("/{id}/accept", a.handleAccept)
	})
	return r
}

// Seed stores app as if it had been created and returns it with its id.
func (a *API) Seed(app models.Application) models.Application {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.insertLocked(app)
}

func (a *API) Get(id string) (models.Application, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	app, ok := a.apps[id]
	return app, ok
}

// FailNext makes the next call of op answer with f.
func (a *API) FailNext(op string, f Failure) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[op] = append(a.failures[op], f)
}

// SetListBody replaces the list payload with body verbatim.
func (a *API) SetListBody(body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listBody = []byte(body)
}

// Hold blocks calls of op until the returned release func is called.
func (a *API) Hold(op string) (release func()) {
	ch := make(chan struct{})
	a.mu.Lock()
	a.gates[op] = ch
	a.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.gates, op)
			a.mu.Unlock()
			close(ch)
		})
	}
}

func (a *API) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// CallsTo counts recorded requests with the given method and path prefix.
func (a *API) CallsTo(method, pathPrefix string) int {
	n := 0
	for _, c := range a.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func (a *API) insertLocked(app models.Application) models.Application {
	a.seq++
	app.ID = strconv.Itoa(a.seq)
	app.Status = app.Status.Normalize()
	created := a.epoch.Add(time.Duration(a.seq) * time.Minute)
	app.CreatedAt = &created
	a.apps[app.ID] = app
	a.order = append(a.order, app.ID)
	return app
}

func (a *API) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		a.mu.Lock()
		a.calls = append(a.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// intercept serves a queued failure for op, waiting on any hold first.
func (a *API) intercept(w http.ResponseWriter, r *http.Request, op string) bool {
	a.mu.Lock()
	gate := a.gates[op]
	a.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return true
		}
	}

	a.mu.Lock()
	queue := a.failures[op]
	if len(queue) == 0 {
		a.mu.Unlock()
		return false
	}
	f := queue[0]
	a.failures[op] = queue[1:]
	a.mu.Unlock()

	if f.ContentType != "" {
		w.Header().Set("Content-Type", f.ContentType)
	}
	w.WriteHeader(f.Status)
	_, _ = io.WriteString(w, f.Body)
	return true
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if a.intercept(w, r, "login") {
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	if req.Email != Email || req.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": Token,
		"user":  map[string]string{"email": Email, "name": "Operations"},
	})
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	if a.intercept(w, r, "list") {
		return
	}
	a.mu.Lock()
	if a.listBody != nil {
		body := a.listBody
		a.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
		return
	}
	out := make([]models.Application, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.apps[id])
	}
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	if a.intercept(w, r, "create") {
		return
	}
	if h := r.Header.Get("Authorization"); h != "" && h != "Bearer "+Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
		return
	}
	var app models.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.apps {
		if strings.EqualFold(existing.Email, app.Email) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "An application with this email already exists"})
			return
		}
	}
	writeJSON(w, http.StatusCreated, a.insertLocked(app))
}

func (a *API) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if a.intercept(w, r, "update") {
		return
	}
	id := chi.URLParam(r, "id")
	var app models.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	existing, ok := a.apps[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Application not found"})
		return
	}
	app.ID = id
	app.CreatedAt = existing.CreatedAt
	app.Status = app.Status.Normalize()
	a.apps[id] = app
	writeJSON(w, http.StatusOK, app)
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	if a.intercept(w, r, "delete") {
		return
	}
	id := chi.URLParam(r, "id")

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.apps[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Application not found"})
		return
	}
	delete(a.apps, id)
	for i, v := range a.order {
		if v == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Application deleted"})
}

func (a *API) handleAccept(w http.ResponseWriter, r *http.Request) {
	if a.intercept(w, r, "accept") {
		return
	}
	id := chi.URLParam(r, "id")

	a.mu.Lock()
	defer a.mu.Unlock()
	app, ok := a.apps[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Application not found"})
		return
	}
	app.Status = models.StatusAccepted
	a.apps[id] = app
	writeJSON(w, http.StatusOK, map[string]string{"message": "Application accepted and email sent"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
