package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/carvest/internal/errHandler"
	"github.com/cradoe/carvest/internal/helper"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandleHealthCheck(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errs := errHandler.New("", nil, logger, helper.New("", nil, logger))

	h := NewHealthCheckHandler(&HealthCheckHandler{
		DB:         pingerFunc(func(context.Context) error { return nil }),
		ErrHandler: errs,
	})

	rr := httptest.NewRecorder()
	h.HandleHealthCheck(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"database": "up"`)
	require.Contains(t, rr.Body.String(), `"version"`)

	h.DB = pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	rr = httptest.NewRecorder()
	h.HandleHealthCheck(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Contains(t, rr.Body.String(), `"database": "down"`)
}
