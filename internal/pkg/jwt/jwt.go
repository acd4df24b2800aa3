package jwt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

type Service interface {
	GenerateAccessToken(actor user.Actor, email string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]int64
	mu                        sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
	}
}

// GenerateAccessToken signs the actor's identity, role and department into an access token.
func (j *JWTService) GenerateAccessToken(actor user.Actor, email string) (token string, expiresAt int64, err error) {
	if !actor.Role.IsValid() {
		return "", 0, user.ErrInvalidRole
	}

	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":       actor.UserID,
		"email":         email,
		"role":          string(actor.Role),
		"department_id": actor.DepartmentID,
		"type":          tokenTypeAccess,
		"exp":           expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// ActorFromClaims rebuilds the authorization context carried by an access token.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	if tokenType, _ := claims["type"].(string); tokenType != tokenTypeAccess {
		return user.Actor{}, fmt.Errorf("%w: not an access token", user.ErrActorMissing)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return user.Actor{}, fmt.Errorf("%w: user_id claim is missing", user.ErrActorMissing)
	}

	roleClaim, _ := claims["role"].(string)
	role := user.Role(roleClaim)
	if !role.IsValid() {
		return user.Actor{}, user.ErrInvalidRole
	}

	departmentID, _ := claims["department_id"].(string)

	return user.Actor{UserID: userID, Role: role, DepartmentID: departmentID}, nil
}

// ActorFromContext reads the verified token placed on ctx by jwtauth.Verifier.
func ActorFromContext(ctx context.Context) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Actor{}, fmt.Errorf("%w: %v", user.ErrActorMissing, err)
	}
	return ActorFromClaims(claims)
}
