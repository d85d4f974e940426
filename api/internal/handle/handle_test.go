package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuron-be/api/internal/auth"
	"neuron-be/api/internal/llm"
	"neuron-be/api/internal/solve"
	"neuron-be/api/internal/store"
)

// --- fakes -----------------------------------------------------------------

type memUsers struct {
	byEmail map[string]*store.User
	lastIn  map[string]bool
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*store.User{}, lastIn: map[string]bool{}}
}

func (m *memUsers) Create(ctx context.Context, username, email string, passwordHash []byte) (string, error) {
	if _, ok := m.byEmail[email]; ok {
		return "", store.ErrDuplicate
	}
	m.byEmail[email] = &store.User{ID: "u-" + username, Username: username, Email: email, PasswordHash: passwordHash}
	return "u-" + username, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*store.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) UpdateLastLogin(ctx context.Context, username string) error {
	m.lastIn[username] = true
	return nil
}

type memHistory struct {
	records []store.HistoryRecord
	err     error
}

func (m *memHistory) ListByUser(ctx context.Context, username string, limit int) ([]store.HistoryRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []store.HistoryRecord
	for _, rec := range m.records {
		if rec.Username == username {
			out = append(out, rec)
		}
	}
	return out, nil
}

type scriptedModel struct {
	response string
	err      error
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Invoke(ctx context.Context, prompt string) (string, error) {
	return m.response, m.err
}

func newTestHandle(model llm.Model) (*Handle, *memUsers) {
	users := newMemUsers()
	h := New(
		&solve.Solver{Model: model, Vision: llm.Unavailable{}},
		users,
		&memHistory{},
		auth.NewTokens("test-secret", time.Hour),
	)
	return h, users
}

func newServer(h *Handle) *httptest.Server {
	mux := http.NewServeMux()
	h.Routes(mux)
	return httptest.NewServer(Recover(mux))
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// --- auth endpoints --------------------------------------------------------

func TestRegisterAndLogin(t *testing.T) {
	h, users := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "s3cret!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "u-alice", body["user_id"])

	resp = postJSON(t, srv.URL+"/login", "", map[string]string{
		"email": "alice@example.com", "password": "s3cret!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "alice", body["username"])
	assert.NotEmpty(t, body["access_token"])
	assert.True(t, users.lastIn["alice"])

	// the issued token resolves back to the username
	username, err := h.Tokens.Parse(body["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/register", "", map[string]string{
		"username": "bob", "email": "bob@example.com", "password": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterDuplicate(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	first := postJSON(t, srv.URL+"/register", "", map[string]string{
		"username": "carol", "email": "carol@example.com", "password": "s3cret!",
	})
	require.Equal(t, http.StatusCreated, first.StatusCode)
	first.Body.Close()

	second := postJSON(t, srv.URL+"/register", "", map[string]string{
		"username": "carol2", "email": "carol@example.com", "password": "s3cret!",
	})
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	second.Body.Close()
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/register", "", map[string]string{
		"username": "dave", "email": "dave@example.com", "password": "s3cret!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/login", "", map[string]string{
		"email": "dave@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid email or password", body["error"])
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/login", "", map[string]string{
		"email": "nobody@example.com", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid email or password", body["error"])
}

// --- protected endpoints ---------------------------------------------------

func bearer(t *testing.T, h *Handle, username string) string {
	t.Helper()
	token, err := h.Tokens.Issue(username)
	require.NoError(t, err)
	return token
}

func TestCalculateRequiresBearer(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/calculate", "", map[string]string{"text": "2+2"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCalculateRejectsForgedToken(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	other := auth.NewTokens("some-other-secret", time.Hour)
	forged, err := other.Issue("mallory")
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/calculate", forged, map[string]string{"text": "2+2"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCalculateText(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{
		response: `[{"expr": "2 + 2", "result": "4", "assign": false}]`,
	})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/calculate", bearer(t, h, "alice"), map[string]any{
		"text": "2+2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	first := data[0].(map[string]any)
	assert.Equal(t, "2 + 2", first["expr"])
	assert.Equal(t, "4", first["result"])
	assert.Equal(t, false, first["assign"])
}

func TestCalculateNoInput(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/calculate", bearer(t, h, "alice"), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCalculateBadImage(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/calculate", bearer(t, h, "alice"), map[string]any{
		"image": "!!definitely not base64!!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCalculateAudioDisabled(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/calculate", bearer(t, h, "alice"), map[string]any{
		"audio": "UklGRg==",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "disabled")
}

func TestCalculateModelFailureStillOK(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{err: errors.New("upstream down")})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/calculate", bearer(t, h, "alice"), map[string]any{
		"text": "2+2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Contains(t, data[0].(map[string]any)["result"], "model invocation failed")
}

func TestRAGQueryWithoutRetrieverIs500(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/rag_query", bearer(t, h, "alice"), map[string]string{
		"query": "what is in the handbook",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()
}

func TestRAGQueryMissingQuery(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/rag_query", bearer(t, h, "alice"), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHistoryScopedToCaller(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	h.History = &memHistory{records: []store.HistoryRecord{
		{Username: "alice", Type: "text", Input: "2+2", Result: "4"},
		{Username: "bob", Type: "text", Input: "3+3", Result: "6"},
	}}
	srv := newServer(h)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/history", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bearer(t, h, "alice"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	records := body["history"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, "2+2", records[0].(map[string]any)["input"])
}

// --- plumbing --------------------------------------------------------------

func TestRootLiveness(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Neuron API", body["message"])
	assert.Equal(t, "running", body["status"])
}

func TestRootUnknownPath(t *testing.T) {
	h, _ := newTestHandle(&scriptedModel{})
	srv := newServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("wired wrong")
	})
	srv := httptest.NewServer(Recover(mux))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/boom")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "internal server error")
}
