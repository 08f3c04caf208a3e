package http

import (
	"errors"
	"net/http"

	"block-backtest/internal/dto"
	"block-backtest/internal/engine"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupBacktest(base *echo.Group) {
	backtestGroup := base.Group("/backtest")
	backtestGroup.POST("", h.runBacktest)
	backtestGroup.POST("/batch", h.runBacktestBatch)
}

func (h *HttpAPIHandler) runBacktest(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.BacktestRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.service.BacktestService.RunBacktest(ctx, *req)
	if err != nil {
		return backtestError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) runBacktestBatch(c echo.Context) error {
	ctx := c.Request().Context()

	var reqs []dto.BacktestRequest
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	for _, req := range reqs {
		if err := h.validator.Struct(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	results, err := h.service.BacktestService.RunBatch(ctx, reqs)
	if err != nil {
		return backtestError(c, err)
	}

	return c.JSON(http.StatusOK, results)
}

// backtestError maps engine failure modes to HTTP statuses: fatal input
// conditions are the client's problem, everything else is ours.
func backtestError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrNoData), errors.Is(err, engine.ErrInvalidGraph):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to run backtest"})
	}
}
