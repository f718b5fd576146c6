package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func csrfRouter(cfg CSRFConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CSRF(cfg))
	r.GET("/predict/", func(c *gin.Context) {
		c.String(http.StatusOK, CSRFTokenFromContext(c))
	})
	r.POST("/predict/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/predict/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func fetchToken(t *testing.T, r *gin.Engine) (string, *http.Cookie) {
	t.Helper()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/predict/", nil))
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CSRFCookie {
		t.Fatalf("expected csrf cookie, got %v", cookies)
	}
	if resp.Body.String() != cookies[0].Value {
		t.Fatalf("context token %q differs from cookie %q", resp.Body.String(), cookies[0].Value)
	}
	return cookies[0].Value, cookies[0]
}

func TestCSRFIssuesCookieOnce(t *testing.T) {
	r := csrfRouter(CSRFConfig{Enforce: true})
	_, cookie := fetchToken(t, r)

	req := httptest.NewRequest(http.MethodGet, "/predict/", nil)
	req.AddCookie(cookie)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if len(resp.Result().Cookies()) != 0 {
		t.Fatalf("existing cookie must be reused")
	}
	if resp.Body.String() != cookie.Value {
		t.Fatalf("expected existing token in context")
	}
}

func TestCSRFAcceptsHeaderAndFormField(t *testing.T) {
	r := csrfRouter(CSRFConfig{Enforce: true})
	token, cookie := fetchToken(t, r)

	req := httptest.NewRequest(http.MethodPost, "/predict/", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("header token: expected 200, got %d", resp.Code)
	}

	form := url.Values{CSRFFormField: {token}, "age": {"30"}}
	req = httptest.NewRequest(http.MethodPost, "/predict/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("form token: expected 200, got %d", resp.Code)
	}
}

func TestCSRFRejectsMissingOrWrongToken(t *testing.T) {
	r := csrfRouter(CSRFConfig{Enforce: true})
	_, cookie := fetchToken(t, r)

	cases := map[string]func(*http.Request){
		"no cookie":   func(req *http.Request) { req.Header.Set(CSRFHeader, cookie.Value) },
		"no token":    func(req *http.Request) { req.AddCookie(cookie) },
		"wrong token": func(req *http.Request) {
			req.AddCookie(cookie)
			req.Header.Set(CSRFHeader, strings.Repeat("0", 64))
		},
	}
	for name, prep := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/predict/", nil)
			prep(req)
			resp := httptest.NewRecorder()
			_ = captureStdout(t, func() { r.ServeHTTP(resp, req) })
			if resp.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", resp.Code)
			}
		})
	}
}

func TestCSRFExemptAndDisabled(t *testing.T) {
	r := csrfRouter(CSRFConfig{Enforce: true, Exempt: []string{"/api/predict/"}})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/predict/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("exempt route: expected 200, got %d", resp.Code)
	}

	r = csrfRouter(CSRFConfig{Enforce: false})
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/predict/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("disabled: expected 200, got %d", resp.Code)
	}
}
