package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func runProtected(t *testing.T, setup func(req *http.Request)) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	setup(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTMiddleware("secret")(func(c echo.Context) error {
		login, err := GetLoginFromContext(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, login)
	})

	return rec, handler(c)
}

func TestJWTMiddleware_HeaderToken(t *testing.T) {
	token, err := GenerateToken("operator", "secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	rec, err := runProtected(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Body.String() != "operator" {
		t.Errorf("логин в контексте = %q, ожидался operator", rec.Body.String())
	}
}

func TestJWTMiddleware_CookieToken(t *testing.T) {
	token, err := GenerateToken("operator", "secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	_, err = runProtected(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "Authorization", Value: token})
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	_, err := runProtected(t, func(req *http.Request) {})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("err = %v, ожидался 401", err)
	}
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	_, err := runProtected(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer garbage")
	})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("err = %v, ожидался 401", err)
	}
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	token, err := GenerateToken("operator", "secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	_, err = runProtected(t, func(req *http.Request) {
		req.Header.Set("Authorization", token) // без Bearer
	})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("err = %v, ожидался 401", err)
	}
}
