package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lumenworks/sitecms/internal/types"
)

// AuthAdmin validates that the request carries a valid admin token,
// either as a Bearer header or the auth cookie.
func AuthAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, secret, "admin", "cms.authorization.admin")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, secret, role, errorType string) error {
	token := bearerToken(c)
	if token == "" {
		token = c.Cookies("auth_token")
	}
	if token == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Authorization token not found",
			Type:    errorType,
		}
	}

	claims, err := parseToken(token, secret)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Invalid token: %v", err),
			Type:    errorType,
		}
	}

	if claims["role"] != role {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Role %q required", role),
			Type:    errorType,
		}
	}

	if sub, ok := claims["sub"]; ok {
		c.Locals("user", sub)
	}

	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func parseToken(token, secret string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}
