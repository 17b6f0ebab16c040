package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cradoe/carvest/internal/config"
	"github.com/cradoe/carvest/internal/errHandler"
	"github.com/cradoe/carvest/internal/helper"
	"github.com/cradoe/carvest/internal/ledger"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/response"
	"github.com/cradoe/carvest/internal/settings"
	"github.com/cradoe/carvest/internal/smtp"
)

type LedgerService interface {
	Wallet(ctx context.Context, userID string) (*models.Wallet, error)
	RequestDeposit(ctx context.Context, userID string, input ledger.DepositInput) (*models.Transaction, error)
	RequestWithdrawal(ctx context.Context, userID string, input ledger.WithdrawalInput) (*models.Transaction, error)
	Decide(ctx context.Context, actor models.Actor, input ledger.DecisionInput) (*ledger.Decision, error)
	ApplyOverride(ctx context.Context, actor models.Actor, input ledger.OverrideInput) (*ledger.OverrideResult, error)
	SetWithdrawalLock(ctx context.Context, actor models.Actor, userID string, locked bool) (*models.User, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error)
	AuditTrail(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, error)
}

type KYCService interface {
	Status(ctx context.Context, userID string) (*models.User, error)
	SubmitDocument(ctx context.Context, userID, documentType, filename string, file io.Reader) (*models.User, error)
	Decide(ctx context.Context, actor models.Actor, userID, status, reason string) (*models.User, error)
	ListByLevel(ctx context.Context, level models.KYCLevel, limit, offset int) ([]models.User, error)
}

type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, actor models.Actor, patch settings.Patch) (models.Settings, error)
}

type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

type RouteHandler struct {
	DB         repository.Database
	Config     *config.Config
	ErrHandler *errHandler.ErrorRepository
	Helper     *helper.HelperRepository
	Mailer     smtp.MailerInterface
	Logger     *slog.Logger

	Ledger   LedgerService
	KYC      KYCService
	Settings SettingsService
	Uploader Uploader
}

func NewRouteHandler(handler *RouteHandler) *RouteHandler {
	logger := handler.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RouteHandler{
		DB:         handler.DB,
		Config:     handler.Config,
		ErrHandler: handler.ErrHandler,
		Helper:     handler.Helper,
		Mailer:     handler.Mailer,
		Logger:     logger,
		Ledger:     handler.Ledger,
		KYC:        handler.KYC,
		Settings:   handler.Settings,
		Uploader:   handler.Uploader,
	}
}

type queryStringValues struct {
	Search string
	Limit  int
	Offset int
	Page   int
}

func retrieveUrlQueryValues(r *http.Request) *queryStringValues {
	var queryValues = &queryStringValues{}

	limitStr := r.URL.Query().Get("limit")
	pageStr := r.URL.Query().Get("page")

	page := 1
	limit := 10

	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}
	queryValues.Limit = limit

	if pageStr != "" {
		if parsedPage, err := strconv.Atoi(pageStr); err == nil && parsedPage >= 1 {
			page = parsedPage
		}
	}
	queryValues.Page = page
	queryValues.Offset = (page - 1) * limit

	queryValues.Search = r.URL.Query().Get("search")

	return queryValues
}

func (q *queryStringValues) meta(count int) *response.Meta {
	return &response.Meta{Limit: q.Limit, Page: q.Page, Count: count}
}
