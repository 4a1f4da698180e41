package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/polyspin/backend/internal/config"
)

// OperatorKey is the gin context key holding the authenticated operator.
const OperatorKey = "operator"

var ErrInvalidToken = errors.New("invalid token")

// OperatorClaims are carried in operator JWTs.
type OperatorClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IssueOperatorToken signs an HS256 token for username.
func IssueOperatorToken(cfg *config.Config, username string, roles []string) (string, time.Time, error) {
	hours := cfg.OperatorTokenHours
	if hours <= 0 {
		hours = 12
	}
	exp := time.Now().Add(time.Duration(hours) * time.Hour)
	claims := OperatorClaims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseOperatorToken validates a signed token and returns its claims.
func ParseOperatorToken(cfg *config.Config, token string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// OperatorAuth validates the bearer JWT and stores the operator's claims in
// the context.
func OperatorAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := ParseOperatorToken(cfg, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(OperatorKey, claims)
		c.Next()
	}
}

// CurrentOperator returns the claims OperatorAuth stored, if any.
func CurrentOperator(c *gin.Context) (*OperatorClaims, bool) {
	v, ok := c.Get(OperatorKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*OperatorClaims)
	return claims, ok
}
