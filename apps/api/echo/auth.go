package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core/user"
)

const (
	contextTokenKey    = "userToken"
	contextIdentityKey = "identity"

	// DefaultTokenLifetime is the validity of the tokens issued by NewClaims when no lifetime is given.
	DefaultTokenLifetime = 24 * time.Hour
)

// Claims represents the authorization claims transmitted via a JWT.
// The subject is the user id.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role"`
}

func NewClaims(identity user.Identity, issuer string, lifetime time.Duration) *Claims {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(identity.ID, 10),
			ExpiresAt: now.Add(lifetime).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: identity.Role.String(),
	}
}

// Identity returns the caller described by the claims.
// The role is kept as is: unknown roles are resolved by the menu service.
func (c Claims) Identity() (user.Identity, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return user.Identity{}, errors.Errorf("invalid token subject %q", c.Subject)
	}
	return user.Identity{ID: id, Role: user.Role(c.Role)}, nil
}

func newJWTConfig(secretKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextIdentity returns the authenticated caller, nil when the request carries no valid identity.
func getContextIdentity(ctx echo.Context) *user.Identity {
	if identity, ok := ctx.Get(contextIdentityKey).(*user.Identity); ok {
		return identity
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil
	}
	identity, err := claims.Identity()
	if err != nil {
		return nil
	}
	ctx.Set(contextIdentityKey, &identity)
	return &identity
}

// requireIdentity rejects authenticated tokens that do not describe a user.
func requireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if getContextIdentity(ctx) == nil {
			return errUnauthorized
		}
		return next(ctx)
	}
}
