package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valyala/fasthttp"

	"github.com/aivisualpro/SYMXSystems-sub002/pkg/logger"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/xhttp"
)

const sessionCtxKey = "auth.session"

var (
	ErrInvalidToken = errors.New("invalid session token")
)

// Session identifies the back-office user behind an authenticated
// request. Mutations record the session's name in audit fields.
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type sessionClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken mints an HS256 session token. Used by the provisioning CLI
// and by tests.
func IssueToken(secret string, s Session, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Name: s.Name,
		Role: s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token signature and expiry and returns the
// session it carries.
func ParseToken(secret, tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Session{
		UserID: claims.Subject,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil
}

// Required wraps a handler with bearer-token authentication. The parsed
// session is stored on the request context for FromCtx.
func Required(secret string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		header := string(ctx.Request.Header.Peek("Authorization"))
		if header == "" {
			unauthorized(ctx, "authorization token required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(ctx, "invalid authorization header format")
			return
		}

		session, err := ParseToken(secret, parts[1])
		if err != nil {
			logger.Warn("Rejected session token", "error", err)
			unauthorized(ctx, "invalid or expired token")
			return
		}

		ctx.SetUserValue(sessionCtxKey, session)
		next(ctx)
	}
}

// FromCtx returns the session placed on the context by Required, or nil
// for unauthenticated requests.
func FromCtx(ctx *fasthttp.RequestCtx) *Session {
	session, _ := ctx.UserValue(sessionCtxKey).(*Session)
	return session
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.SetStatusCode(xhttp.StatusUnauthorized)
	ctx.SetContentType("application/json")
	_ = json.NewEncoder(ctx).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
