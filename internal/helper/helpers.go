package helper

import (
	"fmt"
	"log/slog"
	"sync"
)

type HelperRepository struct {
	baseUrl string
	WG      *sync.WaitGroup
	logger  *slog.Logger
}

func New(baseUrl string, wg *sync.WaitGroup, logger *slog.Logger) *HelperRepository {
	if wg == nil {
		wg = &sync.WaitGroup{}
	}

	return &HelperRepository{
		baseUrl: baseUrl,
		WG:      wg,
		logger:  logger,
	}
}

func (h *HelperRepository) NewEmailData() map[string]any {
	data := map[string]any{
		"BaseURL": h.baseUrl,
	}

	return data
}

// BackgroundTask runs fn outside the request goroutine. Shutdown waits on WG
// so queued emails and events are not dropped.
func (h *HelperRepository) BackgroundTask(name string, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("background task panicked", "task", name, "error", fmt.Sprintf("%v", rec))
			}
		}()

		if err := fn(); err != nil {
			h.logger.Error("background task failed", "task", name, "error", err.Error())
		}
	}()
}
