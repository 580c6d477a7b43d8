package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"issueapi/internal/model"
)

// ActorLocalKey is the locals key holding the authenticated model.Actor.
const ActorLocalKey = "actor"

// Claims are the token claims this service reads. The subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
)

// Auth resolves the actor from an HS256 bearer token issued by the account
// service. Requests without a valid token or with a non-UUID subject fail with 401.
func Auth(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		actor, err := parseActor(c.Get(fiber.HeaderAuthorization), key)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals(ActorLocalKey, actor)
		return c.Next()
	}
}

// ActorFrom returns the actor stored by Auth. The zero Actor has no scope.
func ActorFrom(c *fiber.Ctx) model.Actor {
	a, _ := c.Locals(ActorLocalKey).(model.Actor)
	return a
}

// NewToken signs a token for actor. Used by issuectl token and tests.
func NewToken(secret string, actor model.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseActor(header string, key []byte) (model.Actor, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return model.Actor{}, errMissingToken
	}
	if len(key) == 0 {
		return model.Actor{}, errInvalidToken
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return model.Actor{}, errInvalidToken
	}
	// Ownership and assignment columns are UUIDs.
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return model.Actor{}, errInvalidToken
	}

	role := model.RoleUser
	if claims.Role == string(model.RoleAdmin) {
		role = model.RoleAdmin
	}
	return model.Actor{ID: claims.Subject, Role: role}, nil
}
