package errHandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/cradoe/carvest/internal/helper"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/response"
	"github.com/cradoe/carvest/internal/smtp"
)

type ErrorRepository struct {
	notificationEmail string
	logger            *slog.Logger
	help              *helper.HelperRepository
	mailer            smtp.MailerInterface
}

func New(notificationEmail string, mailer smtp.MailerInterface, logger *slog.Logger, help *helper.HelperRepository) *ErrorRepository {
	return &ErrorRepository{
		notificationEmail: notificationEmail,
		logger:            logger,
		help:              help,
		mailer:            mailer,
	}
}

func (e *ErrorRepository) ReportServerError(r *http.Request, err error) {
	var (
		message = err.Error()
		method  = ""
		url     = ""
		trace   = string(debug.Stack())
	)

	if r != nil {
		method = r.Method
		url = r.URL.String()
	}

	requestAttrs := slog.Group("request", "method", method, "url", url)
	e.logger.Error(message, requestAttrs, "trace", trace)

	if e.notificationEmail == "" || e.mailer == nil {
		return
	}

	data := e.help.NewEmailData()
	data["Message"] = message
	data["RequestMethod"] = method
	data["RequestURL"] = url
	data["Trace"] = trace

	e.help.BackgroundTask("error-notification", func() error {
		return e.mailer.Send(e.notificationEmail, data, "error-notification.tmpl")
	})
}

type Error struct {
	w       http.ResponseWriter
	r       *http.Request
	errors  any
	status  int
	message string
	headers http.Header
}

func (e *ErrorRepository) ErrorMessage(d *Error) {
	if d.message != "" {
		d.message = strings.ToUpper(d.message[:1]) + d.message[1:]
	}

	err := response.JSONErrorResponse(d.w, d.errors, d.message, d.status, d.headers)
	if err != nil {
		e.ReportServerError(d.r, err)
		d.w.WriteHeader(http.StatusInternalServerError)
	}
}

// DomainError maps service errors onto HTTP statuses. Anything unrecognised
// is treated as a server error.
func (e *ErrorRepository) DomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		e.FailedValidation(w, r, verr.Errors)
	case errors.Is(err, models.ErrInsufficientFunds):
		e.ErrorMessage(&Error{w: w, r: r, status: http.StatusUnprocessableEntity, message: "Insufficient balance"})
	case errors.Is(err, models.ErrWithdrawalLocked):
		e.Forbidden(w, r, "Withdrawals are locked for this account")
	case errors.Is(err, models.ErrWithdrawalsDisabled):
		e.Forbidden(w, r, "Withdrawals are currently disabled")
	case errors.Is(err, models.ErrInvalidState):
		e.Conflict(w, r, err.Error())
	case errors.Is(err, models.ErrNotFound):
		e.NotFound(w, r)
	case errors.Is(err, models.ErrMaintenance):
		e.ServiceUnavailable(w, r, "The platform is under maintenance")
	case errors.Is(err, models.ErrUploadFailed):
		e.ErrorMessage(&Error{w: w, r: r, status: http.StatusBadGateway, message: "Document upload failed, please try again"})
	default:
		e.ServerError(w, r, err)
	}
}

func (e *ErrorRepository) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	e.ReportServerError(r, err)

	message := "The server encountered a problem and could not process your request"
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusInternalServerError,
		message: message,
	})
}

func (e *ErrorRepository) NotFound(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource could not be found"
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusNotFound,
		message: message,
	})
}

func (e *ErrorRepository) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("The %s method is not supported for this resource", r.Method)
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusMethodNotAllowed,
		message: message,
	})
}

func (e *ErrorRepository) BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusBadRequest,
		message: err.Error(),
	})
}

func (e *ErrorRepository) FailedValidation(w http.ResponseWriter, r *http.Request, v any) {
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusUnprocessableEntity,
		message: "Validation failed",
		errors:  v,
	})
}

func (e *ErrorRepository) Forbidden(w http.ResponseWriter, r *http.Request, message string) {
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusForbidden,
		message: message,
	})
}

func (e *ErrorRepository) Conflict(w http.ResponseWriter, r *http.Request, message string) {
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusConflict,
		message: message,
	})
}

func (e *ErrorRepository) ServiceUnavailable(w http.ResponseWriter, r *http.Request, message string) {
	headers := make(http.Header)
	headers.Set("Retry-After", "120")

	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusServiceUnavailable,
		message: message,
		headers: headers,
	})
}

func (e *ErrorRepository) InvalidAuthenticationToken(w http.ResponseWriter, r *http.Request) {
	headers := make(http.Header)
	headers.Set("WWW-Authenticate", "Bearer")

	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusUnauthorized,
		message: "Invalid authentication token",
		headers: headers,
	})
}

func (e *ErrorRepository) AuthenticationRequired(w http.ResponseWriter, r *http.Request) {
	message := "You must be authenticated to access this resource"
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusUnauthorized,
		message: message,
	})
}

func (e *ErrorRepository) InactiveAccount(w http.ResponseWriter, r *http.Request) {
	e.Forbidden(w, r, "Your account has been deactivated")
}

func (e *ErrorRepository) AdminRequired(w http.ResponseWriter, r *http.Request) {
	e.Forbidden(w, r, "You do not have permission to access this resource")
}
