package handler

import (
	"errors"
	"net/http"

	appContext "github.com/cradoe/carvest/internal/context"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/request"
	"github.com/cradoe/carvest/internal/response"
	"github.com/cradoe/carvest/internal/validator"
)

func (h *RouteHandler) HandleGetKYC(w http.ResponseWriter, r *http.Request) {
	user := appContext.ContextGetAuthenticatedUser(r)

	current, err := h.KYC.Status(r.Context(), user.ID)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, newKYCResponse(current), "KYC status retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleSubmitKYC accepts a multipart form with the document under "file"
// and its kind under "documentType".
func (h *RouteHandler) HandleSubmitKYC(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	documentType := r.FormValue("documentType")
	if !validator.NotBlank(documentType) {
		h.ErrHandler.FailedValidation(w, r, []string{"Document type is required"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, errors.New("file is required"))
		return
	}
	defer file.Close()

	user := appContext.ContextGetAuthenticatedUser(r)

	updated, err := h.KYC.SubmitDocument(r.Context(), user.ID, documentType, header.Filename, file)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONCreatedResponse(w, newKYCResponse(updated), "Document submitted for review")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAdminListKYC(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(models.KYCPending)
	}

	level, err := models.ParseKYCLevel(status)
	if err != nil {
		h.ErrHandler.FailedValidation(w, r, []string{"Status must be one of LEVEL_1, PENDING, LEVEL_2 or REJECTED"})
		return
	}

	q := retrieveUrlQueryValues(r)

	users, err := h.KYC.ListByLevel(r.Context(), level, q.Limit, q.Offset)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONPageResponse(w, newUserList(users), "KYC queue retrieved successfully", q.meta(len(users)))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAdminDecideKYC(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID    string              `json:"userId"`
		Status    string              `json:"status"`
		Reason    string              `json:"reason"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.UserID), "User ID is required")
	input.Validator.Check(validator.NotBlank(input.Status), "Status is required")
	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	actor := appContext.ActorFromRequest(r)

	updated, err := h.KYC.Decide(r.Context(), actor, input.UserID, input.Status, input.Reason)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, newUserResponse(updated), "KYC decision recorded", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
