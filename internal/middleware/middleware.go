package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cradoe/carvest/internal/config"
	appContext "github.com/cradoe/carvest/internal/context"
	"github.com/cradoe/carvest/internal/errHandler"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/response"

	"github.com/pascaldekloe/jwt"
	"github.com/tomasen/realip"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

type SettingsReader interface {
	Get(ctx context.Context) (models.Settings, error)
}

// KeyStore guards idempotency keys.
type KeyStore interface {
	SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

type Middleware struct {
	errHandler *errHandler.ErrorRepository
	logger     *slog.Logger
	UserRepo   repository.UserRepository
	config     *config.Config
	settings   SettingsReader
	keys       KeyStore
}

func New(errHandler *errHandler.ErrorRepository, logger *slog.Logger, userRepo repository.UserRepository, config *config.Config, settings SettingsReader, keys KeyStore) *Middleware {
	return &Middleware{
		errHandler: errHandler,
		logger:     logger,
		UserRepo:   userRepo,
		config:     config,
		settings:   settings,
		keys:       keys,
	}
}

func (mid *Middleware) RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				w.Header().Set("Connection", "close")
				mid.errHandler.ServerError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (mid *Middleware) LogAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		start := time.Now()
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount, "duration_ms", time.Since(start).Milliseconds())

		mid.logger.Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

func (mid *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")

		if authorizationHeader != "" {
			headerParts := strings.Split(authorizationHeader, " ")

			if len(headerParts) == 2 && headerParts[0] == "Bearer" {
				token := headerParts[1]

				claims, err := jwt.HMACCheck([]byte(token), []byte(mid.config.Jwt.SecretKey))
				if err != nil {
					mid.errHandler.InvalidAuthenticationToken(w, r)
					return
				}

				if !claims.Valid(time.Now()) {
					mid.errHandler.InvalidAuthenticationToken(w, r)
					return
				}

				if claims.Issuer != mid.config.BaseURL {
					mid.errHandler.InvalidAuthenticationToken(w, r)
					return
				}

				if !claims.AcceptAudience(mid.config.BaseURL) {
					mid.errHandler.InvalidAuthenticationToken(w, r)
					return
				}

				user, found, err := mid.UserRepo.GetOne(r.Context(), nil, claims.Subject)
				if err != nil {
					mid.errHandler.ServerError(w, r, err)
					return
				}

				if found {
					r = appContext.ContextSetAuthenticatedUser(r, user)
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (mid *Middleware) RequireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticatedUser := appContext.ContextGetAuthenticatedUser(r)

		if authenticatedUser == nil {
			mid.errHandler.AuthenticationRequired(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireActiveUser also implies authentication.
func (mid *Middleware) RequireActiveUser(next http.Handler) http.Handler {
	fn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !appContext.ContextGetAuthenticatedUser(r).Active {
			mid.errHandler.InactiveAccount(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})

	return mid.RequireAuthenticatedUser(fn)
}

func (mid *Middleware) RequireAdmin(next http.Handler) http.Handler {
	fn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !appContext.ContextGetAuthenticatedUser(r).IsAdmin() {
			mid.errHandler.AdminRequired(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})

	return mid.RequireActiveUser(fn)
}

// MaintenanceGate rejects writes from non-admins while maintenance mode is
// on. Reads and logins stay open.
func (mid *Middleware) MaintenanceGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isReadOnly(r.Method) || r.URL.Path == "/auth/login" {
			next.ServeHTTP(w, r)
			return
		}

		if user := appContext.ContextGetAuthenticatedUser(r); user != nil && user.IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}

		current, err := mid.settings.Get(r.Context())
		if err != nil {
			mid.logger.Warn("maintenance check skipped", "error", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		if current.MaintenanceMode {
			message := current.SystemNotice
			if message == "" {
				message = "The platform is under maintenance, please try again later"
			}
			mid.errHandler.ServiceUnavailable(w, r, message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Idempotent rejects a replay of the same Idempotency-Key from the same
// caller. The key is released when the first attempt fails so it can be
// retried.
func (mid *Middleware) Idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
		if key == "" || mid.keys == nil {
			next.ServeHTTP(w, r)
			return
		}

		owner := "anonymous"
		if user := appContext.ContextGetAuthenticatedUser(r); user != nil {
			owner = user.ID
		}
		storeKey := fmt.Sprintf("idempotency:%s:%s:%s", owner, r.URL.Path, key)

		fresh, err := mid.keys.SetNX(r.Context(), storeKey, time.Now().UTC().Format(time.RFC3339), idempotencyTTL)
		if err != nil {
			mid.logger.Warn("idempotency store unavailable", "error", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		if !fresh {
			mid.errHandler.Conflict(w, r, "A request with this idempotency key was already processed")
			return
		}

		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		if mw.StatusCode >= http.StatusBadRequest {
			if err := mid.keys.Delete(context.WithoutCancel(r.Context()), storeKey); err != nil {
				mid.logger.Warn("could not release idempotency key", "error", err.Error())
			}
		}
	})
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
