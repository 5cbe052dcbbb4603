package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/webhost/errors"
	"github.com/kbukum/webhost/logger"
)

// CSRFFormField is the form field accepted in place of the header.
const CSRFFormField = "_csrf"

// CSRFConfig configures anti-forgery protection.
type CSRFConfig struct {
	// Secret signs tokens. Empty means a random per-process secret.
	Secret      string        `yaml:"secret" mapstructure:"secret"`
	CookieName  string        `yaml:"cookie_name" mapstructure:"cookie_name"`
	HeaderName  string        `yaml:"header_name" mapstructure:"header_name"`
	TTL         time.Duration `yaml:"ttl" mapstructure:"ttl"`
	ExemptPaths []string      `yaml:"exempt_paths" mapstructure:"exempt_paths"`
}

// ApplyDefaults sets the cookie and header names and a 12h token lifetime.
func (c *CSRFConfig) ApplyDefaults() {
	if c.CookieName == "" {
		c.CookieName = "XSRF-TOKEN"
	}
	if c.HeaderName == "" {
		c.HeaderName = "X-CSRF-Token"
	}
	if c.TTL == 0 {
		c.TTL = 12 * time.Hour
	}
}

// Validate checks the configuration for invalid values.
func (c *CSRFConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("csrf.ttl must be non-negative (got: %s)", c.TTL)
	}
	if c.Secret != "" && len(c.Secret) < 16 {
		return fmt.Errorf("csrf.secret must be at least 16 bytes")
	}
	return nil
}

// CSRF issues and validates double-submit tokens. The cookie holds a signed
// token; unsafe requests must echo the same token in the header or form.
type CSRF struct {
	cfg    CSRFConfig
	secret []byte
	now    func() time.Time
	sign   func(gojwt.Claims) (string, error)
	log    *logger.Logger
}

// NewCSRF builds the guard from cfg.
func NewCSRF(cfg CSRFConfig) (*CSRF, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("csrf: generate secret: %w", err)
		}
	}
	g := &CSRF{cfg: cfg, secret: secret, now: time.Now}
	g.sign = func(claims gojwt.Claims) (string, error) {
		return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(g.secret)
	}
	return g, nil
}

// SetLogger sets the logger for token issuing failures; nil uses the global
// logger.
func (g *CSRF) SetLogger(l *logger.Logger) {
	g.log = l
}

func (g *CSRF) logr() *logger.Logger {
	if g.log != nil {
		return g.log
	}
	return logger.GetGlobalLogger()
}

// EnableCSRF registers the validating before-hook and the issuing after-hook.
func EnableCSRF(p *Pipelines, cfg CSRFConfig) (*CSRF, error) {
	guard, err := NewCSRF(cfg)
	if err != nil {
		return nil, err
	}
	if err := p.AddBefore("csrf", guard.Validate); err != nil {
		return nil, err
	}
	if err := p.AddAfter("csrf", guard.Issue); err != nil {
		return nil, err
	}
	return guard, nil
}

// Token creates a fresh signed token.
func (g *CSRF) Token() (string, error) {
	now := g.now()
	claims := gojwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(g.cfg.TTL)),
	}
	signed, err := g.sign(claims)
	if err != nil {
		return "", fmt.Errorf("csrf: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry of token.
func (g *CSRF) Verify(token string) error {
	if token == "" {
		return stderrors.New("csrf: empty token")
	}
	_, err := gojwt.ParseWithClaims(token, &gojwt.RegisteredClaims{}, func(*gojwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return fmt.Errorf("csrf: %w", err)
	}
	return nil
}

// Validate is the before-hook. Safe methods and exempt paths pass.
func (g *CSRF) Validate(c *gin.Context) bool {
	if isSafeMethod(c.Request.Method) || g.exempt(c.Request.URL.Path) {
		return true
	}

	cookie, err := c.Cookie(g.cfg.CookieName)
	if err != nil || cookie == "" {
		AbortWithError(c, errors.CSRFForbidden("missing cookie"))
		return false
	}
	if err := g.Verify(cookie); err != nil {
		AbortWithError(c, errors.CSRFForbidden("invalid cookie"))
		return false
	}

	submitted := c.GetHeader(g.cfg.HeaderName)
	if submitted == "" {
		submitted = c.PostForm(CSRFFormField)
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(cookie)) != 1 {
		AbortWithError(c, errors.CSRFForbidden("token mismatch"))
		return false
	}
	return true
}

// Issue is the after-hook. It sets a new token cookie unless the request
// already carries a valid one.
func (g *CSRF) Issue(c *gin.Context) {
	if cookie, err := c.Cookie(g.cfg.CookieName); err == nil && g.Verify(cookie) == nil {
		return
	}
	token, err := g.Token()
	if err != nil {
		g.logr().WithContext(c.Request.Context()).Error("CSRF token not issued", logger.ErrorFields("csrf_issue", err))
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  g.now().Add(g.cfg.TTL),
		Secure:   c.Request.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func (g *CSRF) exempt(path string) bool {
	for _, prefix := range g.cfg.ExemptPaths {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
