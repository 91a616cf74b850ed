package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/store/memstore"
)

type mailbox chan goAccount.MailMessage

func (m mailbox) Send(_ context.Context, msg goAccount.MailMessage) error {
	m <- msg
	return nil
}

func newEngine(t *testing.T) (*goAccount.Engine, *memstore.Store, mailbox) {
	t.Helper()
	cfg := goAccount.DefaultConfig()
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	store := memstore.New()
	mail := make(mailbox, 8)
	engine, err := goAccount.New().WithConfig(cfg).WithAccountStore(store).WithNotifier(mail).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, store, mail
}

// loginToken registers, confirms and logs in email, returning the access token.
func loginToken(t *testing.T, engine *goAccount.Engine, mail mailbox, email string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := engine.Register(ctx, goAccount.RegisterInput{Email: email, Password: "pw", FirstName: "Jane"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var msg goAccount.MailMessage
	select {
	case msg = <-mail:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for registration mail")
	}
	token, _ := msg.Data["token"].(string)
	if res, err := engine.Confirm(ctx, token); err != nil || !res.OK() {
		t.Fatalf("Confirm() = %+v, %v", res, err)
	}

	res, err := engine.Login(ctx, email, "pw")
	if err != nil || !res.OK() {
		t.Fatalf("Login() = %+v, %v", res, err)
	}
	return res.AccessToken
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRequireAccessTokenAttachesUser(t *testing.T) {
	engine, _, mail := newEngine(t)
	token := loginToken(t, engine, mail, "jane@example.com")

	var seen *goAccount.User
	h := RequireAccessToken(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if seen == nil || seen.Email != "jane@example.com" {
		t.Fatalf("user in context = %+v", seen)
	}
	if seen.PasswordHash != "" {
		t.Fatal("password hash leaked into context")
	}
}

func TestRequireAccessTokenRejects(t *testing.T) {
	engine, _, _ := newEngine(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	cases := []struct {
		name   string
		engine *goAccount.Engine
		header string
		code   int
	}{
		{"nil engine", nil, "Bearer x", http.StatusUnauthorized},
		{"missing header", engine, "", http.StatusUnauthorized},
		{"wrong scheme", engine, "Basic abc", http.StatusUnauthorized},
		{"empty token", engine, "Bearer   ", http.StatusUnauthorized},
		{"garbage token", engine, "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireAccessToken(tc.engine)(next).ServeHTTP(rec, req)

			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
			if got := decodeBody(t, rec)["code"]; got != float64(tc.code) {
				t.Fatalf("body code = %v", got)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	engine, store, mail := newEngine(t)
	token := loginToken(t, engine, mail, "jane@example.com")

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireAccessToken(engine)(RequireRole("admin")(ok))

	serve := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve(); code != http.StatusForbidden {
		t.Fatalf("status without role = %d, want 403", code)
	}

	res, err := engine.UserDetail(context.Background(), token)
	if err != nil || res.User == nil {
		t.Fatalf("UserDetail() = %+v, %v", res, err)
	}
	if err := store.SetRoles(res.User.ID, []goAccount.Role{{Name: "admin"}}); err != nil {
		t.Fatalf("SetRoles() error = %v", err)
	}
	if code := serve(); code != http.StatusOK {
		t.Fatalf("status with role = %d, want 200", code)
	}
}

func TestRequireRoleWithoutGuard(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireRole("admin")(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := bearerToken("bearer abc"); !ok || tok != "abc" {
		t.Fatalf("bearerToken lower-case = %q, %v", tok, ok)
	}
	if _, ok := bearerToken("Bearer"); ok {
		t.Fatal("expected short header to be rejected")
	}
}
