package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nursery-care-log/internal/ports/auth"
)

type fakeVerifier map[string]auth.Claims

func (f fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	c, ok := f[token]
	if !ok {
		return auth.Claims{}, errors.New("invalid token")
	}
	return c, nil
}

func serve(v auth.AuthVerifier, headers map[string]string) (auth.Claims, bool) {
	var (
		got auth.Claims
		ok  bool
	)
	h := AuthContext(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetClaims(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/actions", nil)
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got, ok
}

func TestAuthContext_DevMode(t *testing.T) {
	c, ok := serve(nil, map[string]string{DebugUserHeader: "agent-1", DebugNurseryHeader: "n1"})
	if !ok || c.UserID != "agent-1" || c.NurseryID != "n1" {
		t.Fatalf("unexpected claims: %+v %v", c, ok)
	}
	if _, ok := serve(nil, nil); ok {
		t.Fatalf("no header must leave request anonymous")
	}
}

func TestAuthContext_Verifier(t *testing.T) {
	v := fakeVerifier{"good": {UserID: "agent-2"}}

	c, ok := serve(v, map[string]string{"Authorization": "Bearer good"})
	if !ok || c.UserID != "agent-2" {
		t.Fatalf("unexpected claims: %+v %v", c, ok)
	}
	if _, ok := serve(v, map[string]string{"Authorization": "Bearer bad"}); ok {
		t.Fatalf("invalid token must not set claims")
	}
	if _, ok := serve(v, map[string]string{DebugUserHeader: "agent-1"}); ok {
		t.Fatalf("debug header must be ignored with a verifier")
	}
}
