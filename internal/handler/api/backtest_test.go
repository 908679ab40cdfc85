package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/services/engine"
	"EdgeRunner/internal/usecase"
	"EdgeRunner/pkg/logger"

	"github.com/labstack/echo/v4"
)

type nopMetrics struct{}

func (nopMetrics) RecordDecision(string, string, int) {}
func (nopMetrics) RecordOrderPlaced(string)           {}
func (nopMetrics) RecordOrderRejected(string, string) {}
func (nopMetrics) RecordBacktest(string)              {}
func (nopMetrics) RecordError(string)                 {}
func (nopMetrics) RecordLatency(string, float64)      {}

type emptyProvider struct{}

func (emptyProvider) GetBars(context.Context, string, models.Timeframe, int) ([]models.Bar, error) {
	return nil, nil
}

func (emptyProvider) GetBarsRange(context.Context, string, models.Timeframe, time.Time, time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (emptyProvider) GetQuote(context.Context, string) (models.Quote, error) {
	return models.Quote{}, nil
}

type idleBroker struct{}

func (idleBroker) Name() string { return "idle" }

func (idleBroker) GetAccount(context.Context) (models.AccountState, error) {
	return models.AccountState{Cash: 100000, Equity: 100000}, nil
}

func (idleBroker) PlaceOrder(context.Context, *models.OrderRequest) (models.OrderResult, error) {
	return models.OrderResult{Status: models.OrderRejected}, nil
}

func (idleBroker) CancelOrder(context.Context, string) error { return nil }

func (idleBroker) GetPositions(context.Context) ([]models.Position, error) { return nil, nil }

func (idleBroker) CheckStops(context.Context, map[string]float64) error { return nil }

func testHandler(t *testing.T) (*Handler, *usecase.BacktestRunner) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	eng := usecase.NewBacktestEngine(emptyProvider{}, log, nopMetrics{})
	runner := usecase.NewBacktestRunner(eng, nil, log)
	pipe := usecase.NewPipeline(emptyProvider{}, idleBroker{}, nil, nopMetrics{}, log,
		engine.DefaultRiskConfig(), nil, nil)
	return NewHandler(log, runner, pipe), runner
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func bodyStatus(t *testing.T, rec *httptest.ResponseRecorder) (int, json.RawMessage) {
	t.Helper()
	var resp struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v\n%s", err, rec.Body.String())
	}
	return resp.Status, resp.Data
}

func TestStartBacktestValidatesDates(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()

	c, rec := postJSON(e, "/api/backtest",
		`{"symbol":"NQ","startDate":"not-a-date","endDate":"2025-03-14"}`)
	if err := h.StartBacktest(c); err != nil {
		t.Fatal(err)
	}
	status, _ := bodyStatus(t, rec)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestStartBacktestRejectsInvertedRange(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()

	c, rec := postJSON(e, "/api/backtest",
		`{"symbol":"NQ","startDate":"2025-03-14","endDate":"2025-03-10"}`)
	if err := h.StartBacktest(c); err != nil {
		t.Fatal(err)
	}
	status, _ := bodyStatus(t, rec)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestStartBacktestRunsToTerminalState(t *testing.T) {
	h, runner := testHandler(t)
	e := echo.New()

	c, rec := postJSON(e, "/api/backtest",
		`{"symbol":"NQ","startDate":"2025-03-10","endDate":"2025-03-14"}`)
	if err := h.StartBacktest(c); err != nil {
		t.Fatal(err)
	}
	status, data := bodyStatus(t, rec)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want 201", status)
	}
	var resp models.RunBacktestResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" {
		t.Fatal("empty run id")
	}

	// The provider has no data, so the run fails quickly.
	deadline := time.Now().Add(5 * time.Second)
	for {
		res, ok := runner.Get(resp.ID)
		if !ok {
			t.Fatal("run disappeared")
		}
		if res.Status != models.BacktestRunning {
			if res.Status != models.BacktestFailed {
				t.Errorf("status = %s, want failed without data", res.Status)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run never reached a terminal state")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetBacktestUnknownID(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/backtest/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/backtest/:id")
	c.SetParamNames("id")
	c.SetParamValues("nope")

	if err := h.GetBacktest(c); err != nil {
		t.Fatal(err)
	}
	status, _ := bodyStatus(t, rec)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestAnalyzeWithoutDataReturnsNeutral(t *testing.T) {
	h, _ := testHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/analyze/NQ", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/analyze/:symbol")
	c.SetParamNames("symbol")
	c.SetParamValues("NQ")

	if err := h.Analyze(c); err != nil {
		t.Fatal(err)
	}
	status, data := bodyStatus(t, rec)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	var res usecase.PipelineResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Risk.Approved {
		t.Error("risk approved with no market data")
	}
	if res.Score.Bias != models.BiasNeutral {
		t.Errorf("bias = %s, want neutral", res.Score.Bias)
	}
}
