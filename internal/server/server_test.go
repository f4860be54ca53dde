package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tracker/internal/auth"
	"github.com/mmynk/tracker/internal/storage/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t       *testing.T
	handler http.Handler
	store   *sqlite.SQLiteStore
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", 5*time.Minute, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := New(store, authenticator, jwtManager, logger, Options{CORSOrigins: []string{"*"}})
	return &testEnv{t: t, handler: srv.Handler(), store: store}
}

// do sends body as JSON. A string body is sent verbatim.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// login registers username and returns its token pair.
func (e *testEnv) login(username string) auth.TokenPair {
	e.t.Helper()

	w := e.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
		"username": username,
		"password": "correct-horse",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"username": username,
		"password": "correct-horse",
	})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var pair auth.TokenPair
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &pair))
	return pair
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	require.NotNil(t, out, "list must encode as [], not null")
	return out
}

func (e *testEnv) create(path, token string, body any) map[string]any {
	e.t.Helper()
	w := e.do(http.MethodPost, path, token, body)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeObject(e.t, w)
}

func eventBody(title string) map[string]any {
	return map[string]any{
		"title":    title,
		"set_date": "2024-03-01T09:00:00Z",
		"notes":    "bring documents",
	}
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(http.MethodGet, "/health/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.NoError(t, env.store.Close())
	w = env.do(http.MethodGet, "/health/", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)

	env.do(http.MethodGet, "/health/", "", nil)
	w := env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/health/",status="200"} 1`)
}

func TestAuthFlow(t *testing.T) {
	env := setupTestServer(t)

	t.Run("register", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "correct-horse",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decodeObject(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "alice@example.com", body["email"])
		assert.NotEmpty(t, body["id"])
		assert.NotEmpty(t, body["created_at"])
		assert.NotContains(t, body, "password")
	})

	t.Run("duplicate username", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
			"username": "alice",
			"password": "another-password",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "username")
	})

	t.Run("short password", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
			"username": "bob",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "password")
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
			"username": "carol",
			"password": strings.Repeat("p", 73),
		})
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Contains(t, decodeObject(t, w), "password")
	})

	t.Run("invalid username", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
			"username": "bad name!",
			"password": "correct-horse",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "username")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/login/", "", map[string]string{
			"username": "alice",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, decodeObject(t, w), "detail")
	})

	var pair auth.TokenPair
	t.Run("login", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/login/", "", map[string]string{
			"username": "alice",
			"password": "correct-horse",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
	})

	t.Run("me", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/auth/me/", pair.Access, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "alice", decodeObject(t, w)["username"])
	})

	t.Run("refresh", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": pair.Refresh})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		access, _ := decodeObject(t, w)["access"].(string)
		require.NotEmpty(t, access)

		w = env.do(http.MethodGet, "/api/events/", access, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": pair.Access})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token cannot authenticate", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/events/", pair.Refresh, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUnauthenticatedRequests(t *testing.T) {
	env := setupTestServer(t)

	paths := []string{
		"/api/events/",
		"/api/medical-events/",
		"/api/work-events/",
		"/api/financial-events/",
		"/api/transactions/",
		"/api/event-series/",
		"/api/transactions/summary/",
		"/api/auth/me/",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := env.do(http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, `Bearer realm="api"`, w.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, w.Body.String())
		})
	}

	w := env.do(http.MethodPost, "/api/events/", "", eventBody("dentist"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventLifecycle(t *testing.T) {
	env := setupTestServer(t)
	token := env.login("alice").Access

	w := env.do(http.MethodGet, "/api/events/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))

	created := env.create("/api/events/", token, eventBody("dentist"))
	id := created["id"].(string)
	assert.Equal(t, "event", created["kind"])
	assert.Equal(t, "dentist", created["title"])
	assert.Nil(t, created["series"])

	w = env.do(http.MethodGet, "/api/events/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	t.Run("patch changes only supplied fields", func(t *testing.T) {
		w := env.do(http.MethodPatch, "/api/events/"+id+"/", token, map[string]any{"notes": "moved to 10am"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decodeObject(t, w)
		assert.Equal(t, "moved to 10am", got["notes"])
		assert.Equal(t, "dentist", got["title"])
		assert.Equal(t, created["set_date"], got["set_date"])
		assert.Equal(t, created["created_at"], got["created_at"])
	})

	t.Run("put requires every required field", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/events/"+id+"/", token, map[string]any{"title": "doctor"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"set_date":["This field is required."]}`, w.Body.String())
	})

	t.Run("put replaces", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/events/"+id+"/", token, map[string]any{
			"title":    "doctor",
			"set_date": "2024-03-02T09:00:00Z",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decodeObject(t, w)
		assert.Equal(t, "doctor", got["title"])
		assert.Equal(t, "2024-03-02T09:00:00Z", got["set_date"])
	})

	t.Run("null is rejected for non-nullable fields", func(t *testing.T) {
		w := env.do(http.MethodPatch, "/api/events/"+id+"/", token, `{"title":null}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"title":["This field may not be null."]}`, w.Body.String())

		w = env.do(http.MethodGet, "/api/events/"+id+"/", token, nil)
		assert.Equal(t, "doctor", decodeObject(t, w)["title"])
	})

	t.Run("null clears series", func(t *testing.T) {
		w := env.do(http.MethodPatch, "/api/events/"+id+"/", token, `{"series":null}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Nil(t, decodeObject(t, w)["series"])
	})

	t.Run("blank title", func(t *testing.T) {
		w := env.do(http.MethodPatch, "/api/events/"+id+"/", token, map[string]any{"title": ""})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "title")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/events/", token, `{"title":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "detail")
	})

	t.Run("delete", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/api/events/"+id+"/", token, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(http.MethodGet, "/api/events/"+id+"/", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"Not found."}`, w.Body.String())

		w = env.do(http.MethodGet, "/api/events/", token, nil)
		assert.Empty(t, decodeList(t, w))
	})
}

func TestTimestampsMatchStoredPrecision(t *testing.T) {
	env := setupTestServer(t)
	token := env.login("alice").Access

	created := env.create("/api/events/", token, map[string]any{
		"title":    "dentist",
		"set_date": "2024-03-01T09:00:00.123456789Z",
	})
	assert.Equal(t, "2024-03-01T09:00:00.123456Z", created["set_date"])

	w := env.do(http.MethodGet, "/api/events/"+created["id"].(string)+"/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created["set_date"], decodeObject(t, w)["set_date"])

	w = env.do(http.MethodPatch, "/api/events/"+created["id"].(string)+"/", token, map[string]any{
		"set_date": "2024-03-02T09:00:00.987654321+01:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2024-03-02T08:00:00.987654Z", decodeObject(t, w)["set_date"])
}

func TestOwnerCannotBeSupplied(t *testing.T) {
	env := setupTestServer(t)
	token := env.login("alice").Access

	for _, key := range []string{"user", "owner"} {
		t.Run(key, func(t *testing.T) {
			body := eventBody("dentist")
			body[key] = "00000000-0000-0000-0000-000000000000"
			w := env.do(http.MethodPost, "/api/events/", token, body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeObject(t, w), key)
		})
	}

	w := env.do(http.MethodGet, "/api/events/", token, nil)
	assert.Empty(t, decodeList(t, w))
}

func TestOwnerIsolation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.login("alice").Access
	bob := env.login("bob").Access

	resources := []struct {
		path string
		body map[string]any
	}{
		{"/api/events/", eventBody("dentist")},
		{"/api/medical-events/", eventBody("checkup")},
		{"/api/work-events/", eventBody("standup")},
		{"/api/financial-events/", map[string]any{
			"title":           "rent",
			"set_date":        "2024-03-01T00:00:00Z",
			"expected_amount": "950.00",
		}},
		{"/api/transactions/", map[string]any{
			"title":            "salary",
			"amount":           "1000.00",
			"type":             "income",
			"transaction_date": "2024-03-01T00:00:00Z",
		}},
		{"/api/event-series/", map[string]any{
			"title":      "gym",
			"frequency":  "weekly",
			"start_date": "2024-03-01T00:00:00Z",
		}},
	}

	for _, res := range resources {
		t.Run(res.path, func(t *testing.T) {
			created := env.create(res.path, alice, res.body)
			item := res.path + created["id"].(string) + "/"

			w := env.do(http.MethodGet, res.path, bob, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, decodeList(t, w))

			w = env.do(http.MethodGet, item, bob, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = env.do(http.MethodPatch, item, bob, map[string]any{"title": "hijacked"})
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = env.do(http.MethodPut, item, bob, res.body)
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = env.do(http.MethodDelete, item, bob, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = env.do(http.MethodGet, item, alice, nil)
			require.Equal(t, http.StatusOK, w.Code)
			got := decodeObject(t, w)
			assert.Equal(t, created["title"], got["title"])
			assert.Equal(t, created["user"], got["user"])
		})
	}
}

func TestSpecializedEvents(t *testing.T) {
	env := setupTestServer(t)
	token := env.login("alice").Access

	body := eventBody("checkup")
	body["reason"] = "annual"
	body["provider"] = "Dr. Lee"
	medical := env.create("/api/medical-events/", token, body)
	id := medical["id"].(string)
	assert.Equal(t, "medical", medical["kind"])
	assert.Equal(t, "Dr. Lee", medical["provider"])

	work := env.create("/api/work-events/", token, eventBody("standup"))
	assert.Equal(t, "once", work["occurrence"])

	t.Run("base list includes every kind", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/events/", token, nil)
		assert.Len(t, decodeList(t, w), 2)
	})

	t.Run("subtype list sees only its kind", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/medical-events/", token, nil)
		list := decodeList(t, w)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0]["id"])

		w = env.do(http.MethodGet, "/api/work-events/"+id+"/", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid occurrence", func(t *testing.T) {
		body := eventBody("standup")
		body["occurrence"] = "hourly"
		w := env.do(http.MethodPost, "/api/work-events/", token, body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "occurrence")
	})

	t.Run("put replaces medical fields", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/medical-events/"+id+"/", token, map[string]any{
			"title":      "follow-up",
			"set_date":   "2024-04-01T09:00:00Z",
			"reason":     "results",
			"medication": "none",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decodeObject(t, w)
		assert.Equal(t, "follow-up", got["title"])
		assert.Equal(t, "results", got["reason"])
		assert.Equal(t, "none", got["medication"])
		assert.Equal(t, "Dr. Lee", got["provider"])
		assert.Equal(t, "medical", got["kind"])

		w = env.do(http.MethodGet, "/api/medical-events/"+id+"/", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		reread := decodeObject(t, w)
		assert.Equal(t, "results", reread["reason"])
		assert.Equal(t, "2024-04-01T09:00:00Z", reread["set_date"])
	})

	t.Run("put on the base endpoint keeps medical fields", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/events/"+id+"/", token, map[string]any{
			"title":    "follow-up 2",
			"set_date": "2024-04-02T09:00:00Z",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(http.MethodGet, "/api/medical-events/"+id+"/", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decodeObject(t, w)
		assert.Equal(t, "follow-up 2", got["title"])
		assert.Equal(t, "results", got["reason"])
	})

	t.Run("base delete cascades", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/api/events/"+id+"/", token, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(http.MethodGet, "/api/medical-events/"+id+"/", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(http.MethodGet, "/api/medical-events/", token, nil)
		assert.Empty(t, decodeList(t, w))
	})
}

func TestFinancialEventAmounts(t *testing.T) {
	env := setupTestServer(t)
	token := env.login("alice").Access

	tests := []struct {
		name   string
		amount any
		status int
	}{
		{"string", "950.5", http.StatusCreated},
		{"number", 12, http.StatusCreated},
		{"negative", "-5.00", http.StatusBadRequest},
		{"zero", "0", http.StatusBadRequest},
		{"three decimals", "1.005", http.StatusBadRequest},
		{"too many digits", "12345678901.00", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := eventBody("rent")
			body["expected_amount"] = tt.amount
			w := env.do(http.MethodPost, "/api/financial-events/", token, body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusCreated {
				assert.Contains(t, decodeObject(t, w), "expected_amount")
			}
		})
	}

	t.Run("missing amount", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/financial-events/", token, eventBody("rent"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"expected_amount":["This field is required."]}`, w.Body.String())
	})

	t.Run("patch changes only is_recurring", func(t *testing.T) {
		body := eventBody("rent")
		body["expected_amount"] = "950.00"
		body["occurrence"] = "monthly"
		created := env.create("/api/financial-events/", token, body)
		item := "/api/financial-events/" + created["id"].(string) + "/"

		w := env.do(http.MethodPatch, item, token, map[string]any{"is_recurring": true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decodeObject(t, w)
		assert.Equal(t, true, got["is_recurring"])
		assert.Equal(t, "950.00", got["expected_amount"])
		assert.Equal(t, "monthly", got["occurrence"])
		assert.Equal(t, "rent", got["title"])

		w = env.do(http.MethodGet, item, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		reread := decodeObject(t, w)
		assert.Equal(t, true, reread["is_recurring"])
		assert.Equal(t, "950.00", reread["expected_amount"])
	})

	t.Run("amount is serialized with two decimals", func(t *testing.T) {
		body := eventBody("rent")
		body["expected_amount"] = "950.5"
		created := env.create("/api/financial-events/", token, body)
		assert.Equal(t, "950.50", created["expected_amount"])
		assert.Equal(t, false, created["is_recurring"])
	})
}

func TestTransactions(t *testing.T) {
	env := setupTestServer(t)
	token := env.login("alice").Access

	txn := func(title, amount, typ, date string) map[string]any {
		return map[string]any{
			"title":            title,
			"amount":           amount,
			"type":             typ,
			"transaction_date": date,
		}
	}

	t.Run("rejects three decimals", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/transactions/", token, txn("coffee", "3.505", "expense", "2024-03-01T08:00:00Z"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "amount")
	})

	t.Run("rejects extreme exponents quickly", func(t *testing.T) {
		for _, amount := range []string{"1e-20000000", "1e20000000"} {
			start := time.Now()
			w := env.do(http.MethodPost, "/api/transactions/", token, txn("coffee", amount, "expense", "2024-03-01T08:00:00Z"))
			assert.Equal(t, http.StatusBadRequest, w.Code, amount)
			assert.Contains(t, decodeObject(t, w), "amount")
			assert.Less(t, time.Since(start), time.Second, amount)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/transactions/", token, txn("coffee", "3.50", "transfer", "2024-03-01T08:00:00Z"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "type")
	})

	env.create("/api/transactions/", token, txn("salary", "100", "income", "2024-03-01T08:00:00Z"))
	env.create("/api/transactions/", token, txn("groceries", "-40.25", "expense", "2024-03-05T18:00:00Z"))
	env.create("/api/transactions/", token, txn("rent", "500.00", "expense", "2024-04-01T08:00:00Z"))

	t.Run("newest first", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/transactions/", token, nil)
		list := decodeList(t, w)
		require.Len(t, list, 3)
		assert.Equal(t, "rent", list[0]["title"])
		assert.Equal(t, "salary", list[2]["title"])
		assert.Equal(t, "100.00", list[2]["amount"])
	})

	t.Run("date filter", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/transactions/?from=2024-03-01&to=2024-03-31", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeList(t, w), 2)
	})

	t.Run("invalid date filter", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/transactions/?from=yesterday", token, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "from")
	})

	t.Run("summary", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/transactions/summary/?to=2024-03-31", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"income":"100.00","expense":"40.25","net":"59.75","count":2}`, w.Body.String())
	})
}

func TestEventSeries(t *testing.T) {
	env := setupTestServer(t)
	alice := env.login("alice").Access
	bob := env.login("bob").Access

	series := env.create("/api/event-series/", alice, map[string]any{
		"title":      "gym",
		"frequency":  "weekly",
		"start_date": "2024-03-01T00:00:00Z",
	})
	seriesID := series["id"].(string)
	assert.Equal(t, float64(1), series["interval"])
	assert.Nil(t, series["end_date"])

	t.Run("end before start", func(t *testing.T) {
		w := env.do(http.MethodPatch, "/api/event-series/"+seriesID+"/", alice, map[string]any{
			"end_date": "2024-02-01T00:00:00Z",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "end_date")
	})

	t.Run("interval must be positive", func(t *testing.T) {
		w := env.do(http.MethodPatch, "/api/event-series/"+seriesID+"/", alice, map[string]any{"interval": 0})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "interval")
	})

	t.Run("patch sets and clears end_date", func(t *testing.T) {
		item := "/api/event-series/" + seriesID + "/"
		w := env.do(http.MethodPatch, item, alice, map[string]any{"end_date": "2024-06-30T00:00:00Z"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decodeObject(t, w)
		assert.Equal(t, "2024-06-30T00:00:00Z", got["end_date"])
		assert.Equal(t, "gym", got["title"])
		assert.Equal(t, "weekly", got["frequency"])

		w = env.do(http.MethodGet, item, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2024-06-30T00:00:00Z", decodeObject(t, w)["end_date"])

		w = env.do(http.MethodPatch, item, alice, `{"end_date":null}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Nil(t, decodeObject(t, w)["end_date"])

		w = env.do(http.MethodGet, item, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decodeObject(t, w)["end_date"])
	})

	t.Run("put replaces a series", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/event-series/"+seriesID+"/", alice, map[string]any{
			"title":      "gym",
			"frequency":  "daily",
			"interval":   2,
			"start_date": "2024-03-01T00:00:00Z",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decodeObject(t, w)
		assert.Equal(t, "daily", got["frequency"])
		assert.Equal(t, float64(2), got["interval"])
	})

	t.Run("another user's series", func(t *testing.T) {
		body := eventBody("leg day")
		body["series"] = seriesID
		w := env.do(http.MethodPost, "/api/events/", bob, body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeObject(t, w), "series")
	})

	body := eventBody("leg day")
	body["series"] = seriesID
	event := env.create("/api/events/", alice, body)
	eventID := event["id"].(string)
	assert.Equal(t, seriesID, event["series"])

	t.Run("deleting a series detaches its events", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/api/event-series/"+seriesID+"/", alice, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(http.MethodGet, "/api/events/"+eventID+"/", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decodeObject(t, w)["series"])
	})
}
