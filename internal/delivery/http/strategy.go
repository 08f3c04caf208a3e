package http

import (
	"net/http"
	"strconv"

	"block-backtest/internal/model"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func (h *HttpAPIHandler) SetupStrategies(base *echo.Group) {
	strategiesGroup := base.Group("/strategies")
	strategiesGroup.POST("", h.createStrategy)
	strategiesGroup.GET("", h.listStrategies)
	strategiesGroup.GET("/:id", h.getStrategy)
	strategiesGroup.PUT("/:id", h.updateStrategy)
	strategiesGroup.DELETE("/:id", h.deleteStrategy)
	strategiesGroup.GET("/:id/runs", h.strategyRuns)
}

func (h *HttpAPIHandler) createStrategy(c echo.Context) error {
	ctx := c.Request().Context()

	strategy := new(model.Strategy)
	if err := c.Bind(strategy); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.service.StrategyService.Create(ctx, strategy); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, strategy)
}

func (h *HttpAPIHandler) listStrategies(c echo.Context) error {
	ctx := c.Request().Context()

	strategies, err := h.service.StrategyService.List(ctx, model.GetStrategiesParam{
		Symbol: c.QueryParam("symbol"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list strategies"})
	}

	return c.JSON(http.StatusOK, strategies)
}

func (h *HttpAPIHandler) getStrategy(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid strategy id"})
	}

	strategy, err := h.service.StrategyService.Get(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "strategy not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get strategy"})
	}

	return c.JSON(http.StatusOK, strategy)
}

func (h *HttpAPIHandler) updateStrategy(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid strategy id"})
	}

	strategy := new(model.Strategy)
	if err := c.Bind(strategy); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	strategy.ID = id

	if err := h.service.StrategyService.Update(ctx, strategy); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, strategy)
}

func (h *HttpAPIHandler) deleteStrategy(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid strategy id"})
	}

	if err := h.service.StrategyService.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete strategy"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *HttpAPIHandler) strategyRuns(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid strategy id"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	runs, err := h.service.StrategyService.History(ctx, id, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list backtest runs"})
	}

	return c.JSON(http.StatusOK, runs)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
