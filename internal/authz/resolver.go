package authz

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/types"
)

// Claims is the verified credential payload. Role travels as a custom
// claim next to the registered set.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Resolver turns an opaque signed credential into a Principal. It is
// stateless: a pure function of the token and the shared secret.
type Resolver struct {
	log    *logger.Logger
	secret []byte
}

func NewResolver(log *logger.Logger, secret string) *Resolver {
	return &Resolver{log: log.With("component", "Resolver"), secret: []byte(secret)}
}

// Resolve fails closed: no credential or an unparseable one is
// Unauthenticated; a credential that parses but does not verify
// (signature, expiry) is InvalidCredential.
func (r *Resolver) Resolve(ctx context.Context, credential string) (Principal, error) {
	if credential == "" {
		return Principal{}, Unauthenticated("missing credential")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Principal{}, Unauthenticated("malformed credential")
		}
		return Principal{}, InvalidCredential("credential verification failed", err)
	}
	if !token.Valid {
		return Principal{}, InvalidCredential("credential not valid", nil)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, InvalidCredential("credential subject is not a user id", err)
	}
	role, err := types.ParseRole(claims.Role)
	if err != nil {
		return Principal{}, InvalidCredential("credential carries an unknown role", err)
	}
	return Principal{ID: id, Role: role}, nil
}

// ResolveWithRoles verifies first and only then checks role membership,
// so a role mismatch is always reported against a proven identity.
func (r *Resolver) ResolveWithRoles(ctx context.Context, credential string, allowed ...types.Role) (Principal, error) {
	p, err := r.Resolve(ctx, credential)
	if err != nil {
		return Principal{}, err
	}
	if len(allowed) == 0 {
		return p, nil
	}
	for _, role := range allowed {
		if p.Role == role {
			return p, nil
		}
	}
	return Principal{}, Forbidden(ReasonInsufficientRole, "role not allowed for this route")
}
