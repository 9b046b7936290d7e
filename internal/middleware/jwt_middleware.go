package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by Identity.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// Roles accepted on the management routes.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// TokenVerifier checks HS256 tokens issued by the account service.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a TokenVerifier for secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Issue signs a token for userID with role. The account service owns real
// sign-in; this is used by tooling and tests.
func (v *TokenVerifier) Issue(userID, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(v.secret)
}

// Verify parses tokenString and returns its claims.
func (v *TokenVerifier) Verify(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if uid, _ := claims["user_id"].(string); uid == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	return claims, nil
}

// Identity reads an optional bearer token. Guests pass through untouched; a
// token that is present but invalid is rejected.
func Identity(verifier *TokenVerifier, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			log.Debug("jwt validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalUserID, claims["user_id"].(string))
		if role, ok := claims["role"].(string); ok {
			c.Locals(LocalRole, role)
		}
		return c.Next()
	}
}

// AuthRequired rejects guests. It must run after Identity.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserID(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}
		return c.Next()
	}
}

// RequireRole lets through only users holding one of roles. It must run after Identity.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserID(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}
		if !HasRole(c, roles...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's id, if any.
func UserID(c *fiber.Ctx) (string, bool) {
	uid, ok := c.Locals(LocalUserID).(string)
	return uid, ok && uid != ""
}

// HasRole reports whether the authenticated user holds one of roles.
func HasRole(c *fiber.Ctx, roles ...string) bool {
	role, _ := c.Locals(LocalRole).(string)
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}
