package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"OptionPilot/internal/domain/models"
	"OptionPilot/internal/services/recommend"
	"OptionPilot/internal/usecase"
	xhttp "OptionPilot/pkg/http"
	xlogger "OptionPilot/pkg/logger"
)

// RecommendationHandler serves the recommendation engine.
type RecommendationHandler struct {
	logger      *xlogger.Logger
	recommender *usecase.Recommender
}

func NewRecommendationHandler(logger *xlogger.Logger, recommender *usecase.Recommender) *RecommendationHandler {
	return &RecommendationHandler{logger: logger, recommender: recommender}
}

func (h *RecommendationHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/score", h.Score)
}

func (h *RecommendationHandler) Score(c echo.Context) error {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.recommender.Recommend(c.Request().Context(), *req)
	if err != nil {
		if errors.Is(err, recommend.ErrEmptyUniverse) {
			return xhttp.AppErrorResponse(c, xhttp.EmptyUniverseError("no contract in chain snapshot").WithError(err))
		}
		if errors.Is(err, recommend.ErrUnsizablePosition) {
			return xhttp.AppErrorResponse(c, xhttp.UnsizablePositionError("capital and mid do not yield a finite position").WithError(err))
		}
		h.logger.Error("score usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.JSONResponse(c, res)
}
