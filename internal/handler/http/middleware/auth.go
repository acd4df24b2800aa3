package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired rejects requests without a valid, unrevoked access token and
// puts the caller's user.Actor on the request context.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil || jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.Unauthorized(w, "Invalid token")
				return
			}

			actor, err := jwt.ActorFromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by AuthRequired.
func ActorFromContext(ctx context.Context) (user.Actor, error) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	if !ok || actor.UserID == "" {
		return user.Actor{}, user.ErrActorMissing
	}
	return actor, nil
}
