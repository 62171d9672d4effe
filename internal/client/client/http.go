package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/hiredesk/internal/client/models"
	"github.com/dmitrijs2005/hiredesk/internal/client/session"
	"github.com/dmitrijs2005/hiredesk/internal/logging"
	"github.com/dmitrijs2005/hiredesk/internal/metrics"
)

const (
	applicationsPath = "/api/applications"
	loginPath        = "/api/auth/login"

	RequestIDHeader = "X-Request-ID"
)

// listKeys are the object keys a wrapped list response may use.
var listKeys = []string{"applications", "data", "items", "results"}

type HTTPClient struct {
	baseURL    string
	session    session.Store
	httpClient *http.Client
	logger     logging.Logger
	metrics    *metrics.Collector
	timeout    time.Duration
}

// NewHTTPClient returns a client for baseURL. A nil httpClient means
// http.DefaultClient, a nil collector disables metrics and a zero timeout
// leaves deadlines to ctx.
func NewHTTPClient(baseURL string, store session.Store, httpClient *http.Client, logger logging.Logger, m *metrics.Collector, timeout time.Duration) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		session:    store,
		httpClient: httpClient,
		logger:     logger,
		metrics:    m,
		timeout:    timeout,
	}
}

type call struct {
	op     string
	method string
	path   string
	body   any
	auth   bool
}

func (c *HTTPClient) List(ctx context.Context) ([]models.Application, error) {
	body, err := c.do(ctx, call{op: "list", method: http.MethodGet, path: applicationsPath, auth: true})
	if err != nil {
		return nil, err
	}
	apps, err := decodeList(body)
	if err != nil {
		c.logger.Warn(ctx, "unexpected list response", "error", err, "body", truncate(body))
		return nil, err
	}
	return apps, nil
}

func (c *HTTPClient) Submit(ctx context.Context, app models.Application) (models.Application, error) {
	app.ID = ""
	app.Status = models.StatusPending
	body, err := c.do(ctx, call{op: "submit", method: http.MethodPost, path: applicationsPath, body: app})
	if err != nil {
		return models.Application{}, err
	}
	return decodeOne(body, app), nil
}

func (c *HTTPClient) Create(ctx context.Context, app models.Application) (models.Application, error) {
	app.ID = ""
	app.Status = app.Status.Normalize()
	body, err := c.do(ctx, call{op: "create", method: http.MethodPost, path: applicationsPath, body: app, auth: true})
	if err != nil {
		return models.Application{}, err
	}
	return decodeOne(body, app), nil
}

func (c *HTTPClient) Update(ctx context.Context, id string, app models.Application) (models.Application, error) {
	if id == "" {
		return models.Application{}, ErrMissingID
	}
	app.ID = id
	app.Status = app.Status.Normalize()
	body, err := c.do(ctx, call{op: "update", method: http.MethodPut, path: applicationPath(id), body: app, auth: true})
	if err != nil {
		return models.Application{}, err
	}
	return decodeOne(body, app), nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := c.do(ctx, call{op: "delete", method: http.MethodDelete, path: applicationPath(id), auth: true})
	return err
}

func (c *HTTPClient) Accept(ctx context.Context, id string, req AcceptRequest) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := c.do(ctx, call{op: "accept", method: http.MethodPost, path: applicationPath(id) + "/accept", body: req, auth: true})
	return err
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{strings.TrimSpace(email), password}

	body, err := c.do(ctx, call{op: "login", method: http.MethodPost, path: loginPath, body: payload})
	if err != nil {
		return LoginResult{}, err
	}
	if !gjson.ValidBytes(body) {
		return LoginResult{}, fmt.Errorf("%w: login response is not JSON", ErrMalformedResponse)
	}
	res := gjson.ParseBytes(body)
	token := res.Get("token")
	if token.Type != gjson.String || token.Str == "" {
		return LoginResult{}, fmt.Errorf("%w: login response has no token", ErrMalformedResponse)
	}
	var user models.User
	if u := res.Get("user"); u.Exists() {
		user = models.UserFromJSON(json.RawMessage(u.Raw))
	}
	return LoginResult{Token: token.Str, User: user}, nil
}

func applicationPath(id string) string {
	return applicationsPath + "/" + url.PathEscape(id)
}

// do sends one request and returns the body of a 2xx answer. Authenticated
// calls without a token fail before anything is sent.
func (c *HTTPClient) do(ctx context.Context, cl call) (body []byte, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := c.logger.With("operation", cl.op, "request_id", requestID)

	defer func() {
		c.metrics.ObserveRequest(cl.op, outcomeOf(err), time.Since(start))
		if err != nil {
			log.Warn(ctx, "api call failed", "error", err, "elapsed", time.Since(start))
		}
	}()

	var token string
	if cl.auth {
		var ok bool
		if token, ok = c.session.GetToken(ctx); !ok {
			return nil, ErrUnauthorized
		}
	}

	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", cl.op, err)
		}
		reader = bytes.NewReader(payload)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug(ctx, "api call", "method", cl.method, "path", cl.path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", ErrNetworkFailure, cl.op, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case cl.auth && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		if cerr := c.session.ClearSession(ctx); cerr != nil {
			log.Error(ctx, "failed to clear session", "error", cerr)
		}
		return nil, ErrUnauthorized
	default:
		return nil, newServerRejected(resp.StatusCode, body)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, ErrServerRejected):
		return metrics.OutcomeRejected
	case errors.Is(err, ErrNetworkFailure):
		return metrics.OutcomeNetwork
	default:
		return metrics.OutcomeMalformed
	}
}

// decodeList normalizes the accepted list shapes into one slice, newest
// first. Rows without createdAt sort last; ties keep server order.
func decodeList(body []byte) ([]models.Application, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: list response is not JSON", ErrMalformedResponse)
	}
	res := gjson.ParseBytes(body)

	var arr gjson.Result
	switch {
	case res.IsArray():
		arr = res
	case res.IsObject():
		for _, key := range listKeys {
			if v := res.Get(key); v.IsArray() {
				arr = v
				break
			}
		}
		if !arr.IsArray() {
			return nil, fmt.Errorf("%w: no application list in object", ErrMalformedResponse)
		}
	default:
		return nil, fmt.Errorf("%w: list response is %s", ErrMalformedResponse, res.Type)
	}

	elems := arr.Array()
	apps := make([]models.Application, 0, len(elems))
	for _, el := range elems {
		if el.Type == gjson.Null {
			continue
		}
		var app models.Application
		if err := json.Unmarshal([]byte(el.Raw), &app); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		apps = append(apps, app)
	}

	slices.SortStableFunc(apps, func(a, b models.Application) int {
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return 0
		case a.CreatedAt == nil:
			return 1
		case b.CreatedAt == nil:
			return -1
		}
		return b.CreatedAt.Compare(*a.CreatedAt)
	})
	return apps, nil
}

// decodeOne reads the record echoed by a create or update. The API may send
// it bare or under "application"/"data"; anything else falls back to sent.
func decodeOne(body []byte, sent models.Application) models.Application {
	if !gjson.ValidBytes(body) {
		return sent
	}
	res := gjson.ParseBytes(body)
	for _, candidate := range []gjson.Result{res.Get("application"), res.Get("data"), res} {
		if !candidate.IsObject() {
			continue
		}
		if !candidate.Get("id").Exists() && !candidate.Get("_id").Exists() {
			continue
		}
		var app models.Application
		if err := json.Unmarshal([]byte(candidate.Raw), &app); err == nil {
			return app
		}
	}
	return sent
}

func truncate(b []byte) string {
	if len(b) > maxMessageLen {
		return string(b[:maxMessageLen]) + "..."
	}
	return string(b)
}
