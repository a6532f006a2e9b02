package runtime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestSignAndMiddlewareBearer(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := SignJWT("user-42", secret, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := EchoAuthMiddleware(secret)(func(c echo.Context) error {
		called = true
		if c.Get("user_id") != "user-42" {
			t.Fatalf("expected subject in context, got %v", c.Get("user_id"))
		}
		sub, ok := SubjectFromContext(c.Request().Context())
		if !ok || sub != "user-42" {
			t.Fatalf("expected subject in request context, got %q %v", sub, ok)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestMiddlewareCookie(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := SignJWT("user-7", secret, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth", Value: tok})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := EchoAuthMiddleware(secret)(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if c.Get("user_id") != "user-7" {
		t.Fatalf("expected cookie subject, got %v", c.Get("user_id"))
	}
}

func TestMiddlewareRejects(t *testing.T) {
	secret := []byte("test-secret")
	wrong, _ := SignJWT("user-1", []byte("other-secret"), time.Hour)
	expired, _ := SignJWT("user-1", secret, -time.Hour)

	cases := map[string]string{
		"missing": "",
		"invalid": "Bearer not-a-token",
		"wrong":   "Bearer " + wrong,
		"expired": "Bearer " + expired,
	}
	e := echo.New()
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		err := EchoAuthMiddleware(secret)(func(c echo.Context) error { return nil })(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 HTTPError, got %v", name, err)
		}
	}
}
