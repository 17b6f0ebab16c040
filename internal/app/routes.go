package app

import (
	"net/http"

	"github.com/cradoe/carvest/internal/handler"
	"github.com/cradoe/carvest/internal/middleware"
	"github.com/cradoe/carvest/internal/smtp"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mid := middleware.New(app.errorHandler, app.Logger, app.DB.User(), &app.Config, app.Settings, app.keyStore())

	routeHandler := handler.NewRouteHandler(&handler.RouteHandler{
		DB:         app.DB,
		Config:     &app.Config,
		ErrHandler: app.errorHandler,
		Helper:     app.helper,
		Mailer:     app.mailer(),
		Logger:     app.Logger,
		Ledger:     app.Ledger,
		KYC:        app.KYC,
		Settings:   app.Settings,
		Uploader:   app.uploader(),
	})
	healthHandler := handler.NewHealthCheckHandler(&handler.HealthCheckHandler{
		DB:         app.DB,
		ErrHandler: app.errorHandler,
	})

	user := func(fn http.HandlerFunc) http.Handler { return mid.RequireActiveUser(fn) }
	admin := func(fn http.HandlerFunc) http.Handler { return mid.RequireAdmin(fn) }

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)
	mux.HandleFunc("GET /settings", routeHandler.HandlePublicSettings)

	mux.HandleFunc("POST /auth/register", routeHandler.HandleAuthRegister)
	mux.HandleFunc("POST /auth/login", routeHandler.HandleAuthLogin)

	mux.Handle("GET /wallet", user(routeHandler.HandleGetWallet))
	mux.Handle("POST /wallet", mid.RequireActiveUser(mid.Idempotent(http.HandlerFunc(routeHandler.HandleWalletRequest))))
	mux.Handle("POST /uploads", user(routeHandler.HandleUpload))

	mux.Handle("GET /user/kyc", user(routeHandler.HandleGetKYC))
	mux.Handle("POST /user/kyc/submit", user(routeHandler.HandleSubmitKYC))

	mux.Handle("GET /admin/users", admin(routeHandler.HandleAdminListUsers))
	mux.Handle("GET /admin/users/{id}", admin(routeHandler.HandleAdminGetUser))
	mux.Handle("PATCH /admin/users/{id}/restrictions", admin(routeHandler.HandleAdminSetRestrictions))
	mux.Handle("POST /admin/users/deposit", mid.RequireAdmin(mid.Idempotent(http.HandlerFunc(routeHandler.HandleAdminCredit))))
	mux.Handle("POST /admin/users/debit", mid.RequireAdmin(mid.Idempotent(http.HandlerFunc(routeHandler.HandleAdminDebit))))

	mux.Handle("GET /admin/transactions", admin(routeHandler.HandleAdminListTransactions))
	mux.Handle("PATCH /admin/transactions", admin(routeHandler.HandleAdminDecideTransaction))

	mux.Handle("GET /admin/kyc", admin(routeHandler.HandleAdminListKYC))
	mux.Handle("PATCH /admin/kyc/decision", admin(routeHandler.HandleAdminDecideKYC))

	mux.Handle("GET /admin/settings", admin(routeHandler.HandleAdminGetSettings))
	mux.Handle("PATCH /admin/settings", admin(routeHandler.HandleAdminUpdateSettings))

	mux.Handle("GET /admin/audit", admin(routeHandler.HandleAdminAudit))

	return mid.LogAccess(mid.RecoverPanic(mid.Authenticate(mid.MaintenanceGate(mux))))
}

// The helpers below keep typed nils out of the interfaces so the
// middleware and handlers can detect a missing dependency.
func (app *Application) keyStore() middleware.KeyStore {
	if app.Cache == nil {
		return nil
	}
	return app.Cache
}

func (app *Application) mailer() smtp.MailerInterface {
	if app.Mailer == nil {
		return nil
	}
	return app.Mailer
}

func (app *Application) uploader() handler.Uploader {
	if app.FileUploader == nil {
		return nil
	}
	return app.FileUploader
}
