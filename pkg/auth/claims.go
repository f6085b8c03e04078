package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/pkg/enums"
)

// AccessTokenClaims is the token shape issued by the identity provider.
// The subject claim carries the user id.
type AccessTokenClaims struct {
	Role enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller as seen by services.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Is reports whether the actor holds the given role.
func (a Actor) Is(role enums.UserRole) bool {
	return a.UserID != uuid.Nil && a.Role == role
}

// ActorFromClaims converts verified claims into an Actor.
func ActorFromClaims(claims *AccessTokenClaims) (Actor, error) {
	if claims == nil {
		return Actor{}, errMissingClaims
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, errInvalidSubject
	}
	if !claims.Role.IsValid() {
		return Actor{}, errInvalidRole
	}
	return Actor{UserID: userID, Role: claims.Role}, nil
}
