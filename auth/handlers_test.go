package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/esime/ielec/auth/email"
)

type testEnv struct {
	store    *Store
	handlers *Handlers
	outbox   *email.LogProvider
	mux      *http.ServeMux
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	store := setupTestStore(t)
	issuer, _ := NewIssuer("test-secret", time.Hour)
	outbox := email.NewLogProvider(zap.NewNop())
	mailer := NewMailer(outbox, store, "noreply@example.com", "ielec", "https://ielec.example.com/", zap.NewNop())
	cookies := Cookies{Name: "token"}
	h := NewHandlers(store, issuer, mailer, cookies, opts, zap.NewNop())
	mw := NewMiddleware(issuer, cookies, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", h.RegisterHandler)
	mux.HandleFunc("POST /api/login", h.LoginHandler)
	mux.HandleFunc("POST /api/logout", h.LogoutHandler)
	mux.Handle("GET /api/me", mw.RequireAuth(http.HandlerFunc(h.MeHandler)))
	mux.HandleFunc("POST /api/forgot-password", h.ForgotPasswordHandler)
	mux.HandleFunc("POST /api/reset-password", h.ResetPasswordHandler)

	return &testEnv{store: store, handlers: h, outbox: outbox, mux: mux}
}

func (e *testEnv) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRegisterHandler(t *testing.T) {
	env := newTestEnv(t, Options{RegistrationOpen: true})

	rec := env.post("/api/register", `{"email":"ana@example.com","password":"secreto"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	if decode(t, rec)["userId"] == "" {
		t.Error("expected userId in response")
	}

	if rec := env.post("/api/register", `{"email":"ana@example.com","password":"secreto"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", rec.Code)
	}
	if rec := env.post("/api/register", `{"email":"","password":"secreto"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing email: expected 400, got %d", rec.Code)
	}
	if rec := env.post("/api/register", `{"email":"b@example.com","password":"abc"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("short password: expected 400, got %d", rec.Code)
	}
}

func TestRegisterHandler_Closed(t *testing.T) {
	env := newTestEnv(t, Options{RegistrationOpen: false})

	if rec := env.post("/api/register", `{"email":"first@example.com","password":"secreto"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first user should always register, got %d", rec.Code)
	}
	if rec := env.post("/api/register", `{"email":"second@example.com","password":"secreto"}`); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 once closed, got %d", rec.Code)
	}
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t, Options{RegistrationOpen: true})
	env.store.CreateUser(context.Background(), "ana@example.com", "Ana", "secreto")

	if rec := env.post("/api/login", `{"email":"nadie@example.com","password":"secreto"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user: expected 404, got %d", rec.Code)
	}
	if rec := env.post("/api/login", `{"email":"ana@example.com","password":"mala"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rec.Code)
	}

	rec := env.post("/api/login", `{"email":"ana@example.com","password":"secreto"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "token" || !cookies[0].HttpOnly {
		t.Fatalf("expected httpOnly token cookie, got %+v", cookies)
	}

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	env.mux.ServeHTTP(me, req)
	if me.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", me.Code)
	}
	user := decode(t, me)["user"].(map[string]any)
	if user["email"] != "ana@example.com" || user["name"] != "Ana" {
		t.Errorf("unexpected user %v", user)
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Error("password hash exposed")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t, Options{RegistrationOpen: true, ResetCooldown: time.Minute, MaxResetsPerDay: 10})
	env.store.CreateUser(context.Background(), "ana@example.com", "", "secreto")

	if rec := env.post("/api/forgot-password", `{"email":"nadie@example.com"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown email: expected 404, got %d", rec.Code)
	}

	rec := env.post("/api/forgot-password", `{"email":"ana@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot-password: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	sent := env.outbox.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	i := strings.Index(sent[0].Text, "https://ielec.example.com/reset-password?token=")
	if i < 0 {
		t.Fatalf("reset link missing from %q", sent[0].Text)
	}
	link := strings.Fields(sent[0].Text[i:])[0]
	u, _ := url.Parse(link)
	token := u.Query().Get("token")
	if len(token) != 64 {
		t.Fatalf("expected 64-char hex token, got %q", token)
	}

	// A second request inside the cooldown is refused.
	if rec := env.post("/api/forgot-password", `{"email":"ana@example.com"}`); rec.Code != http.StatusTooManyRequests {
		t.Errorf("cooldown: expected 429, got %d", rec.Code)
	} else if rec.Header().Get("Retry-After") == "" {
		t.Error("cooldown: missing Retry-After")
	}

	if rec := env.post("/api/reset-password", `{"token":"`+token+`","newPassword":"abc"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("short password: expected 400, got %d", rec.Code)
	}
	if rec := env.post("/api/reset-password", `{"token":"bogus","newPassword":"nuevo123"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad token: expected 400, got %d", rec.Code)
	}

	rec = env.post("/api/reset-password", `{"token":"`+token+`","newPassword":"nuevo123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if decode(t, rec)["redirect"] != "/" {
		t.Error("expected redirect to /")
	}
	if rec := env.post("/api/login", `{"email":"ana@example.com","password":"nuevo123"}`); rec.Code != http.StatusOK {
		t.Errorf("login with new password: expected 200, got %d", rec.Code)
	}

	logs, _ := env.store.GetEmailLogs(context.Background(), "", 10)
	if len(logs) != 1 || logs[0].Status != "sent" || logs[0].Provider != "log" {
		t.Errorf("unexpected email log: %+v", logs)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := env.post("/api/logout", "")
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expired cookie, got %+v", cookies)
	}
}
