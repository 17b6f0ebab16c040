package context

import (
	"context"
	"net/http"

	"github.com/cradoe/carvest/internal/models"
)

type contextKey string

const (
	authenticatedUserContextKey = contextKey("authenticatedUser")
)

func ContextSetAuthenticatedUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), authenticatedUserContextKey, user)
	return r.WithContext(ctx)
}

func ContextGetAuthenticatedUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(authenticatedUserContextKey).(*models.User)
	if !ok {
		return nil
	}

	return user
}

// ActorFromRequest returns the identity recorded on audit rows for the
// authenticated caller.
func ActorFromRequest(r *http.Request) models.Actor {
	user := ContextGetAuthenticatedUser(r)
	if user == nil {
		return models.Actor{}
	}

	return models.Actor{ID: user.ID, Email: user.Email}
}
