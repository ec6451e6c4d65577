// Package authctx reads the authenticated caller from a Fiber request.
package authctx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LocalsKey is where the JWT middleware stores the parsed token.
const LocalsKey = "user"

var ErrNoUser = errors.New("no authenticated user in context")

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoUser
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// UserID extracts the user UUID from the "sub" claim.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// Email returns the "email" claim, or "" when absent.
func Email(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	email, _ := mc["email"].(string)
	return email
}
