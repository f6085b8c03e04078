package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shelflife/shelflife-backend/pkg/config"
)

var signingMethod = jwt.SigningMethodHS256

var (
	errMissingClaims  = errors.New("missing claims")
	errInvalidSubject = errors.New("token subject is not a user id")
	errInvalidRole    = errors.New("token role is not recognised")
	errNoSecret       = errors.New("jwt secret is required")
	errNoIssuer       = errors.New("jwt issuer is required")
)

// Verifier checks HS256 access tokens against one issuer and, when
// configured, one audience. It is safe for concurrent use.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(cfg config.JWTConfig) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, errNoSecret
	}
	if cfg.Issuer == "" {
		return nil, errNoIssuer
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}, nil
}

// Claims verifies the signature and registered claims of token.
func (v *Verifier) Claims(token string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}

// Actor verifies token and returns the caller it names.
func (v *Verifier) Actor(token string) (Actor, error) {
	claims, err := v.Claims(token)
	if err != nil {
		return Actor{}, err
	}
	return ActorFromClaims(claims)
}

// MintAccessToken signs a token for actor. Production tokens come from the
// identity provider; this serves tests and local tooling.
func MintAccessToken(cfg config.JWTConfig, now time.Time, ttl time.Duration, actor Actor) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", errNoSecret
	case cfg.Issuer == "":
		return "", errNoIssuer
	case ttl <= 0:
		return "", errors.New("token ttl must be positive")
	case !actor.Role.IsValid():
		return "", fmt.Errorf("invalid role %q", actor.Role)
	}

	registered := jwt.RegisteredClaims{
		Subject:   actor.UserID.String(),
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if cfg.Audience != "" {
		registered.Audience = jwt.ClaimStrings{cfg.Audience}
	}
	signed, err := jwt.NewWithClaims(signingMethod, AccessTokenClaims{Role: actor.Role, RegisteredClaims: registered}).
		SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}
