package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"diabetes-backend/internal/shared/server/respond"
)

const (
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"
	CSRFFormField = "csrfmiddlewaretoken"

	csrfTokenKey  = "csrfToken"
	csrfTokenLen  = 32
	csrfCookieAge = 365 * 24 * 60 * 60
)

// CSRFConfig configures CSRF.
type CSRFConfig struct {
	// Enforce rejects unsafe requests whose token does not match the cookie.
	// When false the cookie is still issued.
	Enforce bool
	// Secure marks the cookie Secure.
	Secure bool
	// Exempt lists route patterns that skip the check.
	Exempt []string
}

// CSRF issues a double-submit token cookie and, for unsafe methods, requires
// the same token in the X-CSRFToken header or csrfmiddlewaretoken form field.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	exempt := make(map[string]struct{}, len(cfg.Exempt))
	for _, p := range cfg.Exempt {
		exempt[p] = struct{}{}
	}

	return func(c *gin.Context) {
		token := ""
		if ck, err := c.Request.Cookie(CSRFCookie); err == nil && validCSRFToken(ck.Value) {
			token = ck.Value
		}
		issued := token == ""
		if issued {
			token = newCSRFToken()
		}
		c.Set(csrfTokenKey, token)

		if cfg.Enforce && !safeMethod(c.Request.Method) {
			if _, skip := exempt[c.FullPath()]; !skip {
				if issued || !csrfMatches(token, submittedCSRFToken(c)) {
					respond.Error(c, http.StatusForbidden, "csrf_failed", "CSRF token missing or incorrect", nil)
					return
				}
			}
		}

		if issued {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     CSRFCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   csrfCookieAge,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Next()
	}
}

// CSRFTokenFromContext returns the token for embedding in rendered forms.
func CSRFTokenFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(csrfTokenKey)
}

func submittedCSRFToken(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(CSRFHeader)); v != "" {
		return v
	}
	ct := c.ContentType()
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		return strings.TrimSpace(c.PostForm(CSRFFormField))
	}
	return ""
}

func csrfMatches(expected, got string) bool {
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func validCSRFToken(v string) bool {
	if len(v) != csrfTokenLen*2 {
		return false
	}
	_, err := hex.DecodeString(v)
	return err == nil
}

func newCSRFToken() string {
	var b [csrfTokenLen]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("csrf: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
