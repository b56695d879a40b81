package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
)

// Common auth errors.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrNotLearner   = errors.New("token does not belong to a learner")
)

// RoleLearner is the role claim carried by learner tokens.
const RoleLearner = "learner"

// Claims extends JWT standard claims with app-specific fields.
// The subject is the learner's UUID.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// LearnerID parses the subject claim.
func (c *Claims) LearnerID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a uuid", ErrTokenInvalid)
	}
	return id, nil
}

// AuthService verifies learner tokens issued by the identity service.
type AuthService struct {
	cfg *config.Config
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

// GenerateLearnerToken signs a learner token. Production tokens come from the
// identity service; this is used by tooling and tests sharing its secret.
func (s *AuthService) GenerateLearnerToken(learnerID uuid.UUID, ttl time.Duration) (string, error) {
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   learnerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: RoleLearner,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a learner JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Role != RoleLearner {
		return nil, ErrNotLearner
	}
	if _, err := claims.LearnerID(); err != nil {
		return nil, err
	}

	return claims, nil
}

// Identity binds a session to the learner who started it. The binding outlives
// the token: a deadline finalize runs with no caller, and a timed exam may
// outlast the access token it was started with. Callers that do pass claims
// through ContextWithClaims must be the same learner; their tokens were
// already validated by the middleware.
func (s *AuthService) Identity(claims *Claims) session.Identity {
	return &claimsIdentity{claims: claims}
}

type claimsKey struct{}

// ContextWithClaims attaches the caller's claims to ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func claimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

type claimsIdentity struct {
	claims *Claims
}

func (i *claimsIdentity) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	if i.claims == nil {
		return uuid.Nil, session.ErrUnauthenticated
	}
	id, err := i.claims.LearnerID()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", session.ErrUnauthenticated, err)
	}

	if caller := claimsFromContext(ctx); caller != nil && caller.Subject != i.claims.Subject {
		return uuid.Nil, fmt.Errorf("%w: caller is not the session owner", session.ErrUnauthenticated)
	}
	return id, nil
}
