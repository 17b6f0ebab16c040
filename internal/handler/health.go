package handler

import (
	"context"
	"net/http"

	"github.com/cradoe/carvest/internal/errHandler"
	"github.com/cradoe/carvest/internal/response"
	"github.com/cradoe/carvest/internal/version"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthCheckHandler struct {
	DB         Pinger
	ErrHandler *errHandler.ErrorRepository
}

func NewHealthCheckHandler(handler *HealthCheckHandler) *HealthCheckHandler {
	return &HealthCheckHandler{
		DB:         handler.DB,
		ErrHandler: handler.ErrHandler,
	}
}

func (h *HealthCheckHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"version":  version.Get(),
		"database": "up",
	}

	status := http.StatusOK
	message := "Up and running"

	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			data["database"] = "down"
			status = http.StatusServiceUnavailable
			message = "Database unavailable"
		}
	}

	res := &response.Response[any]{
		Status:  status,
		Success: status == http.StatusOK,
		Message: message,
		Data:    data,
	}

	if err := response.JSONWithHeaders(w, res, nil); err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
