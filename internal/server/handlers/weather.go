package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/internal/aggregator"
	"github.com/vzahanych/weatherpulse/internal/server/utils"
	"github.com/vzahanych/weatherpulse/internal/weather"
)

type WeatherHandler struct {
	aggregator      *aggregator.Aggregator
	logger          *zap.Logger
	maxForecastDays int
}

func NewWeatherHandler(agg *aggregator.Aggregator, logger *zap.Logger, maxForecastDays int) *WeatherHandler {
	return &WeatherHandler{
		aggregator:      agg,
		logger:          logger,
		maxForecastDays: maxForecastDays,
	}
}

// GetWeather serves GET /weather/:city using the default country.
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	var params CityParams
	if err := c.ShouldBindUri(&params); err != nil {
		h.badRequest(c, reqLogger, err)
		return
	}

	h.lookup(c, reqLogger, params.City, "", "", fmt.Sprintf("Weather data not found for %s", params.City))
}

// SearchWeather serves POST /weather/search.
func (h *WeatherHandler) SearchWeather(c *gin.Context) {
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, reqLogger, err)
		return
	}

	h.lookup(c, reqLogger, req.City, req.State, req.Country, "Weather data not found")
}

// GetForecast serves GET /weather/:city/forecast?days=N.
func (h *WeatherHandler) GetForecast(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	var params CityParams
	if err := c.ShouldBindUri(&params); err != nil {
		h.badRequest(c, reqLogger, err)
		return
	}

	var query ForecastQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.badRequest(c, reqLogger, err)
		return
	}
	if h.maxForecastDays > 0 && query.Days > h.maxForecastDays {
		h.badRequest(c, reqLogger, fmt.Errorf("days must be at most %d", h.maxForecastDays))
		return
	}

	reqLogger.Info("Processing forecast request",
		zap.String("city", params.City),
		zap.Int("days", query.Days))

	result, err := h.aggregator.GetForecast(ctx, params.City, query.Days)
	if err != nil {
		h.fail(c, reqLogger, err, fmt.Sprintf("Forecast data not found for %s", params.City))
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *WeatherHandler) lookup(c *gin.Context, reqLogger *zap.Logger, city, state, country, notFound string) {
	ctx := utils.GetContextFromGinContext(c)

	loc, err := h.aggregator.Location(city, state, country)
	if err != nil {
		h.badRequest(c, reqLogger, err)
		return
	}

	reqLogger.Info("Processing weather request",
		zap.String("city", loc.City),
		zap.String("state", loc.State),
		zap.String("country", loc.Country))

	rec, err := h.aggregator.GetCurrentWeather(ctx, loc)
	if err != nil {
		h.fail(c, reqLogger, err, notFound)
		return
	}

	reqLogger.Info("Weather request completed",
		zap.String("city", loc.City),
		zap.String("condition", rec.Current.Condition))

	c.JSON(http.StatusOK, rec)
}

func (h *WeatherHandler) badRequest(c *gin.Context, reqLogger *zap.Logger, err error) {
	reqLogger.Warn("Invalid request parameters", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request parameters",
		Code:    "INVALID_PARAMS",
		Details: utils.DescribeValidationErrors(err),
	})
}

func (h *WeatherHandler) fail(c *gin.Context, reqLogger *zap.Logger, err error, notFound string) {
	if errors.Is(err, weather.ErrInvalidLocation) || errors.Is(err, aggregator.ErrInvalidDays) {
		h.badRequest(c, reqLogger, err)
		return
	}

	_ = c.Error(err)
	switch {
	case errors.Is(err, weather.ErrNoRecord), errors.Is(err, weather.ErrExtractionFailed):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   notFound,
			Code:    "NOT_FOUND",
			Details: err.Error(),
		})
	default:
		reqLogger.Error("Failed to get weather data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to fetch weather data",
			Code:    "INTERNAL_ERROR",
			Details: err.Error(),
		})
	}
}
