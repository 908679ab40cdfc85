package api

import (
	models "EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/usecase"
	xhttp "EdgeRunner/pkg/http"
	xlogger "EdgeRunner/pkg/logger"
	"EdgeRunner/pkg/util"

	"github.com/labstack/echo/v4"
)

// Handler exposes the backtest and live-analysis endpoints.
type Handler struct {
	logger   *xlogger.Logger
	runner   *usecase.BacktestRunner
	pipeline *usecase.Pipeline
}

func NewHandler(logger *xlogger.Logger, runner *usecase.BacktestRunner, pipeline *usecase.Pipeline) *Handler {
	return &Handler{logger: logger, runner: runner, pipeline: pipeline}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/backtest", h.StartBacktest)
	g.GET("/backtest", h.ListBacktests)
	g.GET("/backtest/:id", h.GetBacktest)
	g.GET("/analyze/:symbol", h.Analyze)
}

// StartBacktest launches an asynchronous run and returns its ID. The
// run is queried for status and results via GetBacktest.
func (h *Handler) StartBacktest(c echo.Context) error {
	req := &models.RunBacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	start, ok := util.ParseTime(req.StartDate)
	if !ok {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_DATE", Field: "startDate", Message: "startDate must be YYYY-MM-DD or RFC3339",
		}})
	}
	end, ok := util.ParseTime(req.EndDate)
	if !ok {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_DATE", Field: "endDate", Message: "endDate must be YYYY-MM-DD or RFC3339",
		}})
	}
	if !end.After(start) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_RANGE", Field: "endDate", Message: "endDate must be after startDate",
		}})
	}

	tf := models.NormalizeTimeframe(req.Timeframe)
	start, end = util.AlignFromTo(start.UTC(), end.UTC(), string(tf))

	cfg := models.BacktestConfig{
		Symbol:         req.Symbol,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: req.InitialCapital,
		ScoreThreshold: req.ScoreThreshold,
		MaxDailyLoss:   req.MaxDailyLoss,
		Timeframe:      tf,
	}

	id := h.runner.Start(cfg)
	h.logger.Info("backtest started",
		xlogger.String("run_id", id),
		xlogger.String("symbol", cfg.Symbol),
	)
	return xhttp.CreatedResponse(c, models.RunBacktestResponse{ID: id, Status: models.BacktestRunning})
}

func (h *Handler) GetBacktest(c echo.Context) error {
	id := c.Param("id")
	res, ok := h.runner.Get(id)
	if !ok {
		return xhttp.NotFoundResponse(c, "backtest not found")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) ListBacktests(c echo.Context) error {
	runs := h.runner.List()
	total := int64(len(runs))
	if limit := util.ParseIntDefault(c.QueryParam("limit"), 0); limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return xhttp.ListResponse(c, runs, total)
}

// Analyze runs the scoring pipeline for one symbol on demand and
// returns the decision without mutating scheduler state.
func (h *Handler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.RunSymbol(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("analyze pipeline error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
